// Copyright 2026 The gogpu Authors
// SPDX-License-Identifier: BSD-3-Clause

package appcompute

import (
	"fmt"

	"github.com/gogpu/gputypes"
	"github.com/gogpu/wgpu/hal"
)

// bufferKind selects the GPU usage and bind group layout of a named
// buffer.
type bufferKind int

const (
	bufferUniform bufferKind = iota
	bufferStorage
	bufferRWStorage
)

func (k bufferKind) String() string {
	switch k {
	case bufferUniform:
		return "uniform"
	case bufferStorage:
		return "storage"
	case bufferRWStorage:
		return "rw_storage"
	default:
		return fmt.Sprintf("bufferKind(%d)", int(k))
	}
}

func (k bufferKind) usage() gputypes.BufferUsage {
	switch k {
	case bufferUniform:
		return gputypes.BufferUsageUniform | gputypes.BufferUsageCopyDst
	case bufferStorage:
		return gputypes.BufferUsageStorage | gputypes.BufferUsageCopyDst
	default:
		// Read-write buffers are also copy sources so they can feed
		// staging readback.
		return gputypes.BufferUsageStorage | gputypes.BufferUsageCopyDst | gputypes.BufferUsageCopySrc
	}
}

// bufferSpec records a buffer declared on the builder, before any GPU
// allocation happens.
type bufferSpec struct {
	name string
	kind bufferKind
	size uint64
	data []byte // nil for empty buffers

	// staged is true when the buffer has a paired staging buffer for
	// CPU readback after each execution.
	staged bool
}

// passSpec records a compute pass: which kernel to run, the workgroup
// dispatch, and the buffer names bound positionally to the kernel's
// @binding slots.
type passSpec struct {
	kernel   *Kernel
	dispatch [3]uint32
	bindings []string
}

// step is one element of the execution sequence: either a compute pass
// or a swap of two buffers' contents.
type step struct {
	pass *passSpec
	swap [2]string
}

// Builder accumulates buffer declarations and an ordered step sequence,
// then Build allocates everything on a device. Methods record the first
// error and turn the rest into no-ops, so calls chain without
// per-call error checks.
type Builder struct {
	buffers []bufferSpec
	steps   []step
	oneShot bool
	err     error
}

// NewBuilder returns an empty worker builder.
func NewBuilder() *Builder {
	return &Builder{}
}

func (b *Builder) addBuffer(name string, kind bufferKind, size uint64, data []byte, staged bool) *Builder {
	if b.err != nil {
		return b
	}
	for _, spec := range b.buffers {
		if spec.name == name {
			b.err = fmt.Errorf("%w: %q", ErrDuplicateBuffer, name)
			return b
		}
	}
	if size == 0 {
		b.err = fmt.Errorf("appcompute: buffer %q has zero size", name)
		return b
	}
	b.buffers = append(b.buffers, bufferSpec{
		name:   name,
		kind:   kind,
		size:   size,
		data:   data,
		staged: staged,
	})
	return b
}

// AddUniform declares a uniform buffer initialized with data.
func (b *Builder) AddUniform(name string, data []byte) *Builder {
	return b.addBuffer(name, bufferUniform, uint64(len(data)), data, false)
}

// AddEmptyUniform declares a zero-initialized uniform buffer of size
// bytes.
func (b *Builder) AddEmptyUniform(name string, size uint64) *Builder {
	return b.addBuffer(name, bufferUniform, size, nil, false)
}

// AddStorage declares a read-only storage buffer initialized with data.
func (b *Builder) AddStorage(name string, data []byte) *Builder {
	return b.addBuffer(name, bufferStorage, uint64(len(data)), data, false)
}

// AddRWStorage declares a read-write storage buffer initialized with
// data. Its contents are only visible to the CPU through a staging
// buffer; use AddStaging when readback is needed.
func (b *Builder) AddRWStorage(name string, data []byte) *Builder {
	return b.addBuffer(name, bufferRWStorage, uint64(len(data)), data, false)
}

// AddEmptyRWStorage declares a zero-initialized read-write storage
// buffer of size bytes.
func (b *Builder) AddEmptyRWStorage(name string, size uint64) *Builder {
	return b.addBuffer(name, bufferRWStorage, size, nil, false)
}

// AddStaging declares a read-write storage buffer initialized with data
// plus a paired staging buffer. After each Execute the storage contents
// are copied down and become readable through the worker's Read
// methods.
func (b *Builder) AddStaging(name string, data []byte) *Builder {
	return b.addBuffer(name, bufferRWStorage, uint64(len(data)), data, true)
}

// AddEmptyStaging declares a zero-initialized staged read-write buffer
// of size bytes.
func (b *Builder) AddEmptyStaging(name string, size uint64) *Builder {
	return b.addBuffer(name, bufferRWStorage, size, nil, true)
}

// AddPass appends a compute pass running kernel with the given
// workgroup dispatch. Buffer names bind positionally: bindings[i] is
// bound at @binding(i).
func (b *Builder) AddPass(kernel *Kernel, dispatch [3]uint32, bindings ...string) *Builder {
	if b.err != nil {
		return b
	}
	if kernel == nil {
		b.err = fmt.Errorf("appcompute: AddPass with nil kernel")
		return b
	}
	b.steps = append(b.steps, step{pass: &passSpec{
		kernel:   kernel,
		dispatch: dispatch,
		bindings: bindings,
	}})
	return b
}

// AddSwap appends a step exchanging the contents of two buffers. The
// buffers must have equal sizes.
func (b *Builder) AddSwap(first, second string) *Builder {
	if b.err != nil {
		return b
	}
	b.steps = append(b.steps, step{swap: [2]string{first, second}})
	return b
}

// OneShot marks the worker as single-run: after the first Execute the
// worker stays ready with its results until explicitly executed again.
func (b *Builder) OneShot() *Builder {
	b.oneShot = true
	return b
}

func (b *Builder) findBuffer(name string) *bufferSpec {
	for i := range b.buffers {
		if b.buffers[i].name == name {
			return &b.buffers[i]
		}
	}
	return nil
}

// validate checks the recorded specs for consistency without touching
// the GPU.
func (b *Builder) validate() error {
	if b.err != nil {
		return b.err
	}
	if len(b.steps) == 0 {
		return ErrNoSteps
	}
	for _, st := range b.steps {
		if st.pass != nil {
			for _, name := range st.pass.bindings {
				if b.findBuffer(name) == nil {
					return fmt.Errorf("%w: %q bound by kernel %q", ErrBufferNotFound, name, st.pass.kernel.Name)
				}
			}
			continue
		}
		first := b.findBuffer(st.swap[0])
		second := b.findBuffer(st.swap[1])
		if first == nil {
			return fmt.Errorf("%w: %q in swap", ErrBufferNotFound, st.swap[0])
		}
		if second == nil {
			return fmt.Errorf("%w: %q in swap", ErrBufferNotFound, st.swap[1])
		}
		if first.size != second.size {
			return fmt.Errorf("%w: swap %q (%d bytes) with %q (%d bytes)",
				ErrSizeMismatch, first.name, first.size, second.name, second.size)
		}
	}
	return nil
}

// bindingKinds maps a pass's buffer names to their kinds, in binding
// order.
func (b *Builder) bindingKinds(p *passSpec) []bufferKind {
	kinds := make([]bufferKind, len(p.bindings))
	for i, name := range p.bindings {
		kinds[i] = b.findBuffer(name).kind
	}
	return kinds
}

// Build allocates buffers and pipelines on dev and returns a ready
// worker. On error all partially created resources are destroyed.
func (b *Builder) Build(dev *Device) (*Worker, error) {
	if err := b.validate(); err != nil {
		return nil, err
	}

	w := &Worker{
		dev:     dev,
		oneShot: b.oneShot,
		buffers: make(map[string]*workerBuffer, len(b.buffers)),
	}

	for i := range b.buffers {
		spec := &b.buffers[i]
		if err := w.allocBuffer(spec); err != nil {
			w.Close()
			return nil, err
		}
	}

	for _, st := range b.steps {
		if st.pass == nil {
			w.steps = append(w.steps, workerStep{swap: st.swap})
			continue
		}
		entry, err := dev.cache.get(st.pass.kernel, b.bindingKinds(st.pass))
		if err != nil {
			w.Close()
			return nil, err
		}
		w.steps = append(w.steps, workerStep{pass: &workerPass{
			kernelName: st.pass.kernel.Name,
			entry:      entry,
			dispatch:   st.pass.dispatch,
			bindings:   append([]string(nil), st.pass.bindings...),
		}})
	}

	slogger().Debug("appcompute: worker built",
		"buffers", len(b.buffers),
		"steps", len(b.steps),
		"one_shot", b.oneShot)
	return w, nil
}

// allocBuffer creates the GPU buffer (and staging pair) for one spec
// and registers it on the worker.
func (w *Worker) allocBuffer(spec *bufferSpec) error {
	device, queue := w.dev.HAL()

	buf, err := device.CreateBuffer(&hal.BufferDescriptor{
		Label: spec.name,
		Size:  spec.size,
		Usage: spec.kind.usage(),
	})
	if err != nil {
		return fmt.Errorf("appcompute: create buffer %q: %w", spec.name, err)
	}
	if spec.data != nil {
		queue.WriteBuffer(buf, 0, spec.data)
	}

	wb := &workerBuffer{
		name: spec.name,
		kind: spec.kind,
		size: spec.size,
		buf:  buf,
	}

	if spec.staged {
		staging, err := device.CreateBuffer(&hal.BufferDescriptor{
			Label: spec.name + "_staging",
			Size:  spec.size,
			Usage: gputypes.BufferUsageMapRead | gputypes.BufferUsageCopyDst,
		})
		if err != nil {
			device.DestroyBuffer(buf)
			return fmt.Errorf("appcompute: create staging buffer %q: %w", spec.name, err)
		}
		wb.staging = staging
		wb.shadow = make([]byte, spec.size)
	}

	w.buffers[spec.name] = wb
	return nil
}
