// Copyright 2026 The gogpu Authors
// SPDX-License-Identifier: BSD-3-Clause

package appcompute

import (
	"fmt"
	"strings"
	"sync"

	"github.com/gogpu/gputypes"
	"github.com/gogpu/wgpu/hal"
)

// pipelineEntry holds the compiled GPU objects for one kernel used with
// one binding layout.
type pipelineEntry struct {
	module         hal.ShaderModule
	bgLayout       hal.BindGroupLayout
	pipelineLayout hal.PipelineLayout
	pipeline       hal.ComputePipeline
}

// PipelineCache compiles each (kernel, binding layout) pair once per
// device and reuses the pipeline across workers.
type PipelineCache struct {
	mu      sync.Mutex
	device  hal.Device
	entries map[string]*pipelineEntry
}

func newPipelineCache(device hal.Device) *PipelineCache {
	return &PipelineCache{
		device:  device,
		entries: make(map[string]*pipelineEntry),
	}
}

// layoutSignature encodes the binding kinds of a pass, e.g. "u,ro,rw".
// It distinguishes cache entries for a kernel bound with different
// buffer kinds.
func layoutSignature(kinds []bufferKind) string {
	parts := make([]string, len(kinds))
	for i, k := range kinds {
		switch k {
		case bufferUniform:
			parts[i] = "u"
		case bufferStorage:
			parts[i] = "ro"
		default:
			parts[i] = "rw"
		}
	}
	return strings.Join(parts, ",")
}

// layoutEntries maps positional binding kinds to bind group layout
// entries. Binding N gets the kind of the pass's Nth bound buffer.
func layoutEntries(kinds []bufferKind) []gputypes.BindGroupLayoutEntry {
	entries := make([]gputypes.BindGroupLayoutEntry, len(kinds))
	for i, k := range kinds {
		var bt gputypes.BufferBindingType
		switch k {
		case bufferUniform:
			bt = gputypes.BufferBindingTypeUniform
		case bufferStorage:
			bt = gputypes.BufferBindingTypeReadOnlyStorage
		default:
			bt = gputypes.BufferBindingTypeStorage
		}
		entries[i] = gputypes.BindGroupLayoutEntry{
			Binding:    uint32(i),
			Visibility: gputypes.ShaderStageCompute,
			Buffer:     &gputypes.BufferBindingLayout{Type: bt},
		}
	}
	return entries
}

// get returns the compiled pipeline for the kernel with the given
// binding kinds, compiling it on first use.
func (c *PipelineCache) get(k *Kernel, kinds []bufferKind) (*pipelineEntry, error) {
	c.mu.Lock()
	defer c.mu.Unlock()

	key := k.Name + "/" + layoutSignature(kinds)
	if e, ok := c.entries[key]; ok {
		return e, nil
	}

	module, err := c.device.CreateShaderModule(&hal.ShaderModuleDescriptor{
		Label:  k.Name,
		Source: hal.ShaderSource{WGSL: k.ResolvedSource()},
	})
	if err != nil {
		return nil, fmt.Errorf("appcompute: create shader module for %q: %w", k.Name, err)
	}

	bgLayout, err := c.device.CreateBindGroupLayout(&hal.BindGroupLayoutDescriptor{
		Label:   k.Name + "_bgl",
		Entries: layoutEntries(kinds),
	})
	if err != nil {
		c.device.DestroyShaderModule(module)
		return nil, fmt.Errorf("appcompute: create bind group layout for %q: %w", k.Name, err)
	}

	pipelineLayout, err := c.device.CreatePipelineLayout(&hal.PipelineLayoutDescriptor{
		Label:            k.Name + "_pl",
		BindGroupLayouts: []hal.BindGroupLayout{bgLayout},
	})
	if err != nil {
		c.device.DestroyBindGroupLayout(bgLayout)
		c.device.DestroyShaderModule(module)
		return nil, fmt.Errorf("appcompute: create pipeline layout for %q: %w", k.Name, err)
	}

	pipeline, err := c.device.CreateComputePipeline(&hal.ComputePipelineDescriptor{
		Label:  k.Name,
		Layout: pipelineLayout,
		Compute: hal.ComputeState{
			Module:     module,
			EntryPoint: k.entry(),
		},
	})
	if err != nil {
		c.device.DestroyPipelineLayout(pipelineLayout)
		c.device.DestroyBindGroupLayout(bgLayout)
		c.device.DestroyShaderModule(module)
		return nil, fmt.Errorf("appcompute: create compute pipeline for %q: %w", k.Name, err)
	}

	e := &pipelineEntry{
		module:         module,
		bgLayout:       bgLayout,
		pipelineLayout: pipelineLayout,
		pipeline:       pipeline,
	}
	c.entries[key] = e

	slogger().Debug("appcompute: pipeline created",
		"kernel", k.Name,
		"bindings", len(kinds),
		"shader_bytes", len(k.Source))
	return e, nil
}

// Close destroys every cached pipeline and its layouts.
func (c *PipelineCache) Close() {
	c.mu.Lock()
	defer c.mu.Unlock()

	for key, e := range c.entries {
		if e.pipeline != nil {
			c.device.DestroyComputePipeline(e.pipeline)
		}
		if e.pipelineLayout != nil {
			c.device.DestroyPipelineLayout(e.pipelineLayout)
		}
		if e.bgLayout != nil {
			c.device.DestroyBindGroupLayout(e.bgLayout)
		}
		if e.module != nil {
			c.device.DestroyShaderModule(e.module)
		}
		delete(c.entries, key)
	}
}
