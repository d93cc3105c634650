// Copyright 2026 The gogpu Authors
// SPDX-License-Identifier: BSD-3-Clause

package blur

import (
	"fmt"

	"github.com/gogpu/appcompute"
)

// Filter wires the box-blur kernel into a compute worker: a read-only
// image buffer, a staged result buffer and the two size vectors, bound
// in the kernel's positional order.
type Filter struct {
	worker *appcompute.Worker
	cfg    Config
}

// New validates cfg and builds a filter on dev. The image buffer
// starts zeroed; each Run uploads fresh samples.
func New(dev *appcompute.Device, cfg Config) (*Filter, error) {
	if err := cfg.Validate(); err != nil {
		return nil, err
	}

	worker, err := appcompute.NewBuilder().
		AddStorage("image", make([]byte, 4*Capacity)).
		AddEmptyStaging("result", 4*Capacity).
		AddStorage("image_size", appcompute.Int32Bytes([]int32{
			int32(cfg.ImageWidth), int32(cfg.ImageHeight),
		})).
		AddStorage("blur_size", appcompute.Int32Bytes([]int32{
			int32(cfg.BlurWidth), int32(cfg.BlurHeight),
		})).
		AddPass(Kernel(), cfg.WorkgroupCount(), "image", "result", "image_size", "blur_size").
		Build(dev)
	if err != nil {
		return nil, err
	}
	return &Filter{worker: worker, cfg: cfg}, nil
}

// Config returns the filter's dispatch configuration.
func (f *Filter) Config() Config { return f.cfg }

// Run blurs image on the GPU and returns the ImageWidth*ImageHeight
// result samples. image must hold exactly ImageWidth*ImageHeight
// row-major samples.
func (f *Filter) Run(image []float32) ([]float32, error) {
	want := f.cfg.ImageWidth * f.cfg.ImageHeight
	if len(image) != want {
		return nil, fmt.Errorf("blur: got %d samples, config %dx%d needs %d",
			len(image), f.cfg.ImageWidth, f.cfg.ImageHeight, want)
	}
	if err := f.worker.WriteFloat32s("image", image); err != nil {
		return nil, err
	}
	if err := f.worker.Execute(); err != nil {
		return nil, err
	}
	result, err := f.worker.ReadFloat32s("result")
	if err != nil {
		return nil, err
	}
	return result[:want], nil
}

// Close releases the filter's GPU buffers.
func (f *Filter) Close() {
	f.worker.Close()
}
