// Copyright 2026 The gogpu Authors
// SPDX-License-Identifier: BSD-3-Clause

package appcompute

import (
	"fmt"

	"github.com/gogpu/gputypes"
	"github.com/gogpu/wgpu/hal"

	// Import Vulkan backend so it registers via init().
	_ "github.com/gogpu/wgpu/hal/vulkan"
)

// Device wraps a HAL device and queue together with the pipeline cache
// shared by every worker built on it.
type Device struct {
	instance hal.Instance
	device   hal.Device
	queue    hal.Queue
	cache    *PipelineCache

	// owned is true when Open created the instance/device, so Close
	// must destroy them. Shared devices from NewDevice are not owned.
	owned bool
}

// Open creates a standalone compute-only device on the Vulkan backend,
// preferring a discrete or integrated GPU.
func Open() (*Device, error) {
	backend, ok := hal.GetBackend(gputypes.BackendVulkan)
	if !ok {
		return nil, fmt.Errorf("appcompute: vulkan backend not available")
	}
	instance, err := backend.CreateInstance(&hal.InstanceDescriptor{Flags: 0})
	if err != nil {
		return nil, fmt.Errorf("appcompute: create instance: %w", err)
	}

	adapters := instance.EnumerateAdapters(nil)
	if len(adapters) == 0 {
		instance.Destroy()
		return nil, fmt.Errorf("appcompute: no GPU adapters found")
	}

	var selected *hal.ExposedAdapter
	for i := range adapters {
		if adapters[i].Info.DeviceType == gputypes.DeviceTypeDiscreteGPU ||
			adapters[i].Info.DeviceType == gputypes.DeviceTypeIntegratedGPU {
			selected = &adapters[i]
			break
		}
	}
	if selected == nil {
		selected = &adapters[0]
	}

	openDev, err := selected.Adapter.Open(gputypes.Features(0), gputypes.DefaultLimits())
	if err != nil {
		instance.Destroy()
		return nil, fmt.Errorf("appcompute: open device: %w", err)
	}

	d := &Device{
		instance: instance,
		device:   openDev.Device,
		queue:    openDev.Queue,
		owned:    true,
	}
	d.cache = newPipelineCache(d.device)

	slogger().Info("appcompute: GPU initialized", "adapter", selected.Info.Name)
	return d, nil
}

// NewDevice wraps an externally owned HAL device and queue, for hosts
// that already manage a GPU context. Close will not destroy them.
func NewDevice(device hal.Device, queue hal.Queue) *Device {
	d := &Device{device: device, queue: queue}
	d.cache = newPipelineCache(device)
	return d
}

// HAL returns the underlying device and queue.
func (d *Device) HAL() (hal.Device, hal.Queue) { return d.device, d.queue }

// Close releases the pipeline cache and, for devices created by Open,
// the device and instance. Workers built on this device must be closed
// first.
func (d *Device) Close() {
	if d.cache != nil {
		d.cache.Close()
		d.cache = nil
	}
	if d.owned {
		if d.device != nil {
			d.device.Destroy()
		}
		if d.instance != nil {
			d.instance.Destroy()
		}
	}
	d.device = nil
	d.queue = nil
}
