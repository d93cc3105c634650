// Copyright 2026 The gogpu Authors
// SPDX-License-Identifier: BSD-3-Clause

package blur

import (
	"image"

	"golang.org/x/image/draw"
)

// SamplesFromImage scales src to width x height, converts it to
// grayscale and returns row-major samples normalized to [0, 1].
func SamplesFromImage(src image.Image, width, height int) []float32 {
	gray := image.NewGray(image.Rect(0, 0, width, height))
	draw.ApproxBiLinear.Scale(gray, gray.Bounds(), src, src.Bounds(), draw.Src, nil)

	samples := make([]float32, width*height)
	for y := 0; y < height; y++ {
		for x := 0; x < width; x++ {
			samples[y*width+x] = float32(gray.GrayAt(x, y).Y) / 255
		}
	}
	return samples
}

// GrayImage converts row-major samples in [0, 1] back to a grayscale
// image. Values outside [0, 1] are clamped.
func GrayImage(samples []float32, width, height int) *image.Gray {
	gray := image.NewGray(image.Rect(0, 0, width, height))
	for y := 0; y < height; y++ {
		for x := 0; x < width; x++ {
			v := samples[y*width+x]
			if v < 0 {
				v = 0
			}
			if v > 1 {
				v = 1
			}
			gray.Pix[gray.PixOffset(x, y)] = uint8(v*255 + 0.5)
		}
	}
	return gray
}
