// Copyright 2026 The gogpu Authors
// SPDX-License-Identifier: BSD-3-Clause

package blur

// blurAt scans the window centered on (x, y) and returns the float32
// sum of the in-bounds samples plus how many there were. The scan runs
// dx outer, dy inner, both ascending; the accumulation order is part of
// the contract since float32 addition is not associative.
func blurAt(image []float32, cfg Config, x, y int) (sum float32, count int) {
	rx, ry := cfg.halfExtents()
	for dx := -rx; dx < rx; dx++ {
		for dy := -ry; dy < ry; dy++ {
			sx, sy := x+dx, y+dy
			if sx < 0 || sx >= cfg.ImageWidth || sy < 0 || sy >= cfg.ImageHeight {
				continue
			}
			sum += image[sy*cfg.ImageWidth+sx]
			count++
		}
	}
	return sum, count
}

// Reference computes the box blur on the CPU, reproducing the GPU
// kernel bit for bit: float32 accumulation in the same scan order,
// half-open asymmetric windows, skipped out-of-bounds samples and the
// final sum/count division in float32. An empty window yields 0/0,
// i.e. NaN, exactly as the kernel does.
//
// image is row-major with at least ImageWidth*ImageHeight samples. The
// returned slice has exactly ImageWidth*ImageHeight elements.
func Reference(image []float32, cfg Config) []float32 {
	result := make([]float32, cfg.ImageWidth*cfg.ImageHeight)
	for y := 0; y < cfg.ImageHeight; y++ {
		for x := 0; x < cfg.ImageWidth; x++ {
			sum, count := blurAt(image, cfg, x, y)
			result[y*cfg.ImageWidth+x] = sum / float32(count)
		}
	}
	return result
}
