// Copyright 2026 The gogpu Authors
// SPDX-License-Identifier: BSD-3-Clause

// Package blur provides a GPU box-blur filter over a fixed-capacity
// row-major float image, plus a bit-identical CPU reference.
//
// The averaging window is deliberately asymmetric: half extents are
// blur_size/2 with truncating division, and the per-axis scan range is
// the half-open [-extent, extent). A window therefore covers
// 2*(blur_size/2) samples per axis, not blur_size. Out-of-bounds
// samples are skipped entirely rather than clamped to the edge.
package blur

import (
	_ "embed"
	"fmt"

	"github.com/gogpu/appcompute"
)

//go:embed blur.wgsl
var blurWGSL string

const (
	// Capacity is the fixed element count of the image and result
	// buffers. ImageWidth*ImageHeight must not exceed it.
	Capacity = 256

	// TileDim is the square workgroup dimension. The dispatch grid is
	// rounded up to whole tiles, so invocations past the image edge do
	// run; see Config.Validate for the resulting width constraint.
	TileDim = 16
)

var kernel = &appcompute.Kernel{
	Name:   "box_blur",
	Source: blurWGSL,
}

// Kernel returns the box-blur compute kernel. Bind positionally:
// image, result, image_size, blur_size.
func Kernel() *appcompute.Kernel { return kernel }

// Config describes one blur dispatch: the logical 2-D shape imposed on
// the flat buffers and the full window extent per axis.
type Config struct {
	ImageWidth  int
	ImageHeight int
	BlurWidth   int
	BlurHeight  int
}

// halfExtents returns the per-axis scan extents, blur dimension divided
// by two with truncation.
func (c Config) halfExtents() (rx, ry int) {
	return c.BlurWidth / 2, c.BlurHeight / 2
}

// WorkgroupCount returns the dispatch grid covering the image with
// TileDim x TileDim workgroups, rounded up per axis.
func (c Config) WorkgroupCount() [3]uint32 {
	tilesX := (c.ImageWidth + TileDim - 1) / TileDim
	tilesY := (c.ImageHeight + TileDim - 1) / TileDim
	return [3]uint32{uint32(tilesX), uint32(tilesY), 1}
}

// Validate checks that the configuration describes a well-defined GPU
// dispatch.
//
// Beyond the basic shape constraints it enforces two host-side rules:
//
//   - Both blur dimensions must be at least 2, so each half extent is
//     at least 1 and every in-bounds coordinate averages at least its
//     own sample. Smaller windows give an empty scan range and a 0/0
//     division; Reference still accepts them for studying that case.
//
//   - ImageWidth must be a whole number of tiles and the rounded-up
//     dispatch span must fit in Capacity. The kernel has no coordinate
//     bounds check, so an invocation past the image edge writes a flat
//     index outside its logical position. With a whole-tile width,
//     those stray writes land past ImageWidth*ImageHeight instead of
//     wrapping into another row's slot, and capping the span keeps
//     them inside the buffer.
func (c Config) Validate() error {
	if c.ImageWidth <= 0 || c.ImageHeight <= 0 {
		return fmt.Errorf("blur: image size %dx%d is not positive", c.ImageWidth, c.ImageHeight)
	}
	if c.ImageWidth*c.ImageHeight > Capacity {
		return fmt.Errorf("blur: image size %dx%d exceeds capacity %d",
			c.ImageWidth, c.ImageHeight, Capacity)
	}
	if c.BlurWidth < 0 || c.BlurHeight < 0 {
		return fmt.Errorf("blur: blur size %dx%d is negative", c.BlurWidth, c.BlurHeight)
	}
	if c.BlurWidth < 2 || c.BlurHeight < 2 {
		return fmt.Errorf("blur: blur size %dx%d gives an empty window; both dimensions must be >= 2",
			c.BlurWidth, c.BlurHeight)
	}
	tiles := c.WorkgroupCount()
	spanX := int(tiles[0]) * TileDim
	spanY := int(tiles[1]) * TileDim
	if c.ImageWidth != spanX {
		return fmt.Errorf("blur: image width %d is not a multiple of tile dimension %d",
			c.ImageWidth, TileDim)
	}
	if c.ImageWidth*spanY > Capacity {
		return fmt.Errorf("blur: dispatch span %dx%d exceeds capacity %d",
			c.ImageWidth, spanY, Capacity)
	}
	return nil
}
