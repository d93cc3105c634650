// Copyright 2026 The gogpu Authors
// SPDX-License-Identifier: BSD-3-Clause

package appcompute

import (
	"fmt"
	"sync"
	"time"

	"github.com/gogpu/gputypes"
	"github.com/gogpu/wgpu/hal"
)

// fenceTimeout bounds how long Execute waits for the GPU.
const fenceTimeout = 5 * time.Second

// workerBuffer is an allocated named buffer, optionally paired with a
// staging buffer and a CPU shadow copy of its last readback.
type workerBuffer struct {
	name    string
	kind    bufferKind
	size    uint64
	buf     hal.Buffer
	staging hal.Buffer // nil unless staged
	shadow  []byte     // last readback, nil unless staged
}

// staged reports whether the buffer has a CPU readback pair.
func (wb *workerBuffer) staged() bool { return wb.shadow != nil }

// workerPass is a compiled compute pass ready to encode.
type workerPass struct {
	kernelName string
	entry      *pipelineEntry
	dispatch   [3]uint32
	bindings   []string
}

// workerStep is one element of the resolved execution sequence.
type workerStep struct {
	pass *workerPass
	swap [2]string
}

// Worker owns a set of named GPU buffers and an ordered sequence of
// compute passes and buffer swaps over them. Execute runs the whole
// sequence synchronously and reads staged buffers back to the CPU.
//
// A worker is safe for concurrent use, but calls serialize on an
// internal mutex.
type Worker struct {
	mu       sync.Mutex
	dev      *Device
	buffers  map[string]*workerBuffer
	steps    []workerStep
	oneShot  bool
	executed bool
	closed   bool
}

// dispatchResources tracks per-execution GPU objects so a single
// cleanup handles both the success and error paths.
type dispatchResources struct {
	device     hal.Device
	bindGroups []hal.BindGroup
	cmdBuf     hal.CommandBuffer
	fence      hal.Fence
}

func (r *dispatchResources) cleanup() {
	if r.fence != nil {
		r.device.DestroyFence(r.fence)
	}
	if r.cmdBuf != nil {
		r.device.FreeCommandBuffer(r.cmdBuf)
	}
	for _, bg := range r.bindGroups {
		r.device.DestroyBindGroup(bg)
	}
}

// Execute encodes the step sequence, submits it, waits for completion
// and copies every staged buffer back into its CPU shadow.
func (w *Worker) Execute() error {
	w.mu.Lock()
	defer w.mu.Unlock()

	if w.closed {
		return ErrWorkerClosed
	}

	device, queue := w.dev.HAL()
	res := &dispatchResources{device: device}
	defer res.cleanup()

	encoder, err := device.CreateCommandEncoder(&hal.CommandEncoderDescriptor{
		Label: "worker_execute",
	})
	if err != nil {
		return fmt.Errorf("appcompute: create command encoder: %w", err)
	}
	if err := encoder.BeginEncoding("worker_execute"); err != nil {
		return fmt.Errorf("appcompute: begin encoding: %w", err)
	}

	for _, st := range w.steps {
		if st.pass == nil {
			// Swapping the handles mid-encode makes later passes (and the
			// staged readback) see the exchanged buffers, since bind
			// groups resolve handles at encode time.
			a := w.buffers[st.swap[0]]
			b := w.buffers[st.swap[1]]
			a.buf, b.buf = b.buf, a.buf
			continue
		}

		entries := make([]gputypes.BindGroupEntry, len(st.pass.bindings))
		for i, name := range st.pass.bindings {
			entries[i] = gputypes.BindGroupEntry{
				Binding: uint32(i),
				Resource: gputypes.BufferBinding{
					Buffer: w.buffers[name].buf.NativeHandle(),
					Offset: 0,
					Size:   0, // 0 = entire buffer
				},
			}
		}
		bg, err := device.CreateBindGroup(&hal.BindGroupDescriptor{
			Label:   st.pass.kernelName + "_bg",
			Layout:  st.pass.entry.bgLayout,
			Entries: entries,
		})
		if err != nil {
			encoder.DiscardEncoding()
			return fmt.Errorf("appcompute: create bind group for %q: %w", st.pass.kernelName, err)
		}
		res.bindGroups = append(res.bindGroups, bg)

		pass := encoder.BeginComputePass(&hal.ComputePassDescriptor{
			Label: st.pass.kernelName,
		})
		pass.SetPipeline(st.pass.entry.pipeline)
		pass.SetBindGroup(0, bg, nil)
		pass.Dispatch(st.pass.dispatch[0], st.pass.dispatch[1], st.pass.dispatch[2])
		pass.End()
	}

	for _, wb := range w.buffers {
		if wb.staging == nil {
			continue
		}
		encoder.CopyBufferToBuffer(wb.buf, wb.staging, []hal.BufferCopy{{
			SrcOffset: 0,
			DstOffset: 0,
			Size:      wb.size,
		}})
	}

	cmdBuf, err := encoder.EndEncoding()
	if err != nil {
		return fmt.Errorf("appcompute: end encoding: %w", err)
	}
	res.cmdBuf = cmdBuf

	fence, err := device.CreateFence()
	if err != nil {
		return fmt.Errorf("appcompute: create fence: %w", err)
	}
	res.fence = fence

	if err := queue.Submit([]hal.CommandBuffer{cmdBuf}, fence, 1); err != nil {
		return fmt.Errorf("appcompute: submit: %w", err)
	}
	ok, err := device.Wait(fence, 1, fenceTimeout)
	if err != nil {
		return fmt.Errorf("appcompute: wait for fence: %w", err)
	}
	if !ok {
		return fmt.Errorf("appcompute: GPU execution timed out after %v", fenceTimeout)
	}

	for _, wb := range w.buffers {
		if wb.staging == nil {
			continue
		}
		if err := queue.ReadBuffer(wb.staging, 0, wb.shadow); err != nil {
			return fmt.Errorf("appcompute: read staging buffer %q: %w", wb.name, err)
		}
	}

	w.executed = true
	slogger().Debug("appcompute: worker executed", "steps", len(w.steps))
	return nil
}

// Ready reports whether results are available, i.e. Execute has
// completed at least once.
func (w *Worker) Ready() bool {
	w.mu.Lock()
	defer w.mu.Unlock()
	return w.executed
}

// OneShot reports whether the worker was built for single-run use.
func (w *Worker) OneShot() bool { return w.oneShot }

func (w *Worker) stagedShadow(name string) ([]byte, error) {
	if w.closed {
		return nil, ErrWorkerClosed
	}
	wb, ok := w.buffers[name]
	if !ok {
		return nil, fmt.Errorf("%w: %q", ErrBufferNotFound, name)
	}
	if !wb.staged() {
		return nil, fmt.Errorf("%w: %q", ErrStagingNotFound, name)
	}
	if !w.executed {
		return nil, fmt.Errorf("%w: buffer %q", ErrNotExecuted, name)
	}
	return wb.shadow, nil
}

// ReadFloat32s returns the staged buffer's last readback as float32
// values.
func (w *Worker) ReadFloat32s(name string) ([]float32, error) {
	w.mu.Lock()
	defer w.mu.Unlock()
	shadow, err := w.stagedShadow(name)
	if err != nil {
		return nil, err
	}
	return float32sFromBytes(shadow), nil
}

// ReadUint32s returns the staged buffer's last readback as uint32
// values.
func (w *Worker) ReadUint32s(name string) ([]uint32, error) {
	w.mu.Lock()
	defer w.mu.Unlock()
	shadow, err := w.stagedShadow(name)
	if err != nil {
		return nil, err
	}
	return uint32sFromBytes(shadow), nil
}

// ReadFloat32 returns the first float32 of the staged buffer's last
// readback.
func (w *Worker) ReadFloat32(name string) (float32, error) {
	vals, err := w.ReadFloat32s(name)
	if err != nil {
		return 0, err
	}
	if len(vals) == 0 {
		return 0, fmt.Errorf("%w: buffer %q holds no float32", ErrSizeMismatch, name)
	}
	return vals[0], nil
}

func (w *Worker) writeBuffer(name string, data []byte) error {
	w.mu.Lock()
	defer w.mu.Unlock()

	if w.closed {
		return ErrWorkerClosed
	}
	wb, ok := w.buffers[name]
	if !ok {
		return fmt.Errorf("%w: %q", ErrBufferNotFound, name)
	}
	if uint64(len(data)) > wb.size {
		return fmt.Errorf("%w: writing %d bytes into %q (%d bytes)",
			ErrSizeMismatch, len(data), name, wb.size)
	}
	_, queue := w.dev.HAL()
	queue.WriteBuffer(wb.buf, 0, data)
	return nil
}

// WriteFloat32s uploads float32 values into the named buffer.
func (w *Worker) WriteFloat32s(name string, vals []float32) error {
	return w.writeBuffer(name, Float32Bytes(vals))
}

// WriteUint32s uploads uint32 values into the named buffer.
func (w *Worker) WriteUint32s(name string, vals []uint32) error {
	return w.writeBuffer(name, Uint32Bytes(vals))
}

// WriteInt32s uploads int32 values into the named buffer.
func (w *Worker) WriteInt32s(name string, vals []int32) error {
	return w.writeBuffer(name, Int32Bytes(vals))
}

// SetDispatch overrides the workgroup dispatch of every pass running
// the named kernel.
func (w *Worker) SetDispatch(kernelName string, dispatch [3]uint32) error {
	w.mu.Lock()
	defer w.mu.Unlock()

	if w.closed {
		return ErrWorkerClosed
	}
	found := false
	for i := range w.steps {
		if p := w.steps[i].pass; p != nil && p.kernelName == kernelName {
			p.dispatch = dispatch
			found = true
		}
	}
	if !found {
		return fmt.Errorf("%w: %q", ErrKernelNotFound, kernelName)
	}
	return nil
}

// ResizeStaging replaces the named staged buffer and its staging pair
// with new ones sized and initialized from data.
func (w *Worker) ResizeStaging(name string, data []byte) error {
	w.mu.Lock()
	defer w.mu.Unlock()

	if w.closed {
		return ErrWorkerClosed
	}
	wb, ok := w.buffers[name]
	if !ok {
		return fmt.Errorf("%w: %q", ErrBufferNotFound, name)
	}
	if !wb.staged() {
		return fmt.Errorf("%w: %q", ErrStagingNotFound, name)
	}
	if len(data) == 0 {
		return fmt.Errorf("appcompute: resize of %q to zero size", name)
	}

	device, queue := w.dev.HAL()
	size := uint64(len(data))

	buf, err := device.CreateBuffer(&hal.BufferDescriptor{
		Label: name,
		Size:  size,
		Usage: wb.kind.usage(),
	})
	if err != nil {
		return fmt.Errorf("appcompute: recreate buffer %q: %w", name, err)
	}
	staging, err := device.CreateBuffer(&hal.BufferDescriptor{
		Label: name + "_staging",
		Size:  size,
		Usage: gputypes.BufferUsageMapRead | gputypes.BufferUsageCopyDst,
	})
	if err != nil {
		device.DestroyBuffer(buf)
		return fmt.Errorf("appcompute: recreate staging buffer %q: %w", name, err)
	}
	queue.WriteBuffer(buf, 0, data)

	device.DestroyBuffer(wb.staging)
	device.DestroyBuffer(wb.buf)
	wb.buf = buf
	wb.staging = staging
	wb.size = size
	wb.shadow = make([]byte, size)
	return nil
}

// Close destroys the worker's buffers. Pipelines stay in the device
// cache for other workers. Close is idempotent.
func (w *Worker) Close() {
	w.mu.Lock()
	defer w.mu.Unlock()

	if w.closed {
		return
	}
	device, _ := w.dev.HAL()
	for _, wb := range w.buffers {
		if wb.staging != nil {
			device.DestroyBuffer(wb.staging)
		}
		if wb.buf != nil {
			device.DestroyBuffer(wb.buf)
		}
	}
	w.buffers = nil
	w.steps = nil
	w.closed = true
}
