// Copyright 2026 The gogpu Authors
// SPDX-License-Identifier: BSD-3-Clause

package blur

import (
	"math"
	"testing"
)

func TestConfig_Validate(t *testing.T) {
	tests := []struct {
		name    string
		cfg     Config
		wantErr bool
	}{
		{"valid 16x16", Config{16, 16, 3, 3}, false},
		{"valid short image", Config{16, 4, 2, 2}, false},
		{"zero width", Config{0, 16, 2, 2}, true},
		{"negative height", Config{16, -1, 2, 2}, true},
		{"area over capacity", Config{16, 17, 2, 2}, true},
		{"negative blur", Config{16, 16, -1, 2}, true},
		{"empty window x", Config{16, 16, 1, 3}, true},
		{"empty window y", Config{16, 16, 3, 0}, true},
		{"width not tile aligned", Config{8, 8, 2, 2}, true},
		{"dispatch span over capacity", Config{32, 8, 2, 2}, true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := tt.cfg.Validate()
			if (err != nil) != tt.wantErr {
				t.Errorf("Validate() = %v, wantErr %v", err, tt.wantErr)
			}
		})
	}
}

func TestConfig_WorkgroupCount(t *testing.T) {
	tests := []struct {
		name     string
		cfg      Config
		expected [3]uint32
	}{
		{"exact tile", Config{ImageWidth: 16, ImageHeight: 16}, [3]uint32{1, 1, 1}},
		{"partial tile rounds up", Config{ImageWidth: 4, ImageHeight: 17}, [3]uint32{1, 2, 1}},
		{"two by two", Config{ImageWidth: 32, ImageHeight: 32}, [3]uint32{2, 2, 1}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := tt.cfg.WorkgroupCount(); got != tt.expected {
				t.Errorf("WorkgroupCount() = %v, want %v", got, tt.expected)
			}
		})
	}
}

func TestConfig_HalfExtents(t *testing.T) {
	tests := []struct {
		name   string
		cfg    Config
		rx, ry int
	}{
		{"truncating division", Config{BlurWidth: 3, BlurHeight: 5}, 1, 2},
		{"even window", Config{BlurWidth: 4, BlurHeight: 2}, 2, 1},
		{"unit window truncates to zero", Config{BlurWidth: 1, BlurHeight: 1}, 0, 0},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			rx, ry := tt.cfg.halfExtents()
			if rx != tt.rx || ry != tt.ry {
				t.Errorf("halfExtents() = (%d, %d), want (%d, %d)", rx, ry, tt.rx, tt.ry)
			}
		})
	}
}

func TestReference_UniformImage(t *testing.T) {
	// All samples equal: every output must be exactly 1.0 no matter how
	// many samples each window averaged.
	cfg := Config{ImageWidth: 4, ImageHeight: 4, BlurWidth: 2, BlurHeight: 2}
	image := make([]float32, 16)
	for i := range image {
		image[i] = 1
	}

	result := Reference(image, cfg)
	for i, v := range result {
		if v != 1 {
			t.Errorf("result[%d] = %v, want 1", i, v)
		}
	}
}

func TestReference_Window2x2(t *testing.T) {
	// blur 2x2 gives half extents (1, 1), so each output averages the
	// 2x2 block to its upper left: offsets {-1, 0} per axis.
	cfg := Config{ImageWidth: 3, ImageHeight: 3, BlurWidth: 2, BlurHeight: 2}
	image := []float32{1, 2, 3, 4, 5, 6, 7, 8, 9}

	result := Reference(image, cfg)

	// (1,1) averages (0,0), (1,0), (0,1), (1,1) = (1+2+4+5)/4.
	if got := result[1*3+1]; got != 3 {
		t.Errorf("result(1,1) = %v, want 3", got)
	}
	// (0,0) has no in-bounds offsets other than itself: offsets {-1, 0}
	// keep only (0,0).
	if got := result[0]; got != 1 {
		t.Errorf("result(0,0) = %v, want 1", got)
	}
	// (2,2) averages (1,1), (2,1), (1,2), (2,2) = (5+6+8+9)/4.
	if got := result[2*3+2]; got != 7 {
		t.Errorf("result(2,2) = %v, want 7", got)
	}
}

func TestReference_EmptyWindowIsNaN(t *testing.T) {
	// Half extents truncate to zero, the scan range is empty and the
	// average is 0/0.
	image := make([]float32, 16)
	for _, cfg := range []Config{
		{ImageWidth: 4, ImageHeight: 4, BlurWidth: 0, BlurHeight: 0},
		{ImageWidth: 4, ImageHeight: 4, BlurWidth: 1, BlurHeight: 1},
	} {
		result := Reference(image, cfg)
		for i, v := range result {
			if !math.IsNaN(float64(v)) {
				t.Errorf("blur %dx%d: result[%d] = %v, want NaN",
					cfg.BlurWidth, cfg.BlurHeight, i, v)
			}
		}
	}
}

func TestBlurAt_CountShrinksTowardEdge(t *testing.T) {
	// For a fixed window the sample count must not grow as the
	// coordinate walks from the interior to an edge.
	cfg := Config{ImageWidth: 16, ImageHeight: 16, BlurWidth: 6, BlurHeight: 6}
	image := make([]float32, 256)

	prev := -1
	for x := 8; x >= 0; x-- {
		_, count := blurAt(image, cfg, x, 8)
		if prev >= 0 && count > prev {
			t.Errorf("count at x=%d is %d, more than %d at x=%d", x, count, prev, x+1)
		}
		prev = count
	}
}

func TestBlurAt_InteriorCount(t *testing.T) {
	// Interior windows hold 2*(blur/2) samples per axis, the truncated
	// asymmetric extent, not blur itself.
	tests := []struct {
		name     string
		cfg      Config
		expected int
	}{
		{"3x3 window scans 2x2", Config{16, 16, 3, 3}, 4},
		{"4x4 window scans 4x4", Config{16, 16, 4, 4}, 16},
		{"5x3 window scans 4x2", Config{16, 16, 5, 3}, 8},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, count := blurAt(make([]float32, 256), tt.cfg, 8, 8)
			if count != tt.expected {
				t.Errorf("count = %d, want %d", count, tt.expected)
			}
		})
	}
}

func TestReference_Deterministic(t *testing.T) {
	cfg := Config{ImageWidth: 16, ImageHeight: 16, BlurWidth: 5, BlurHeight: 3}
	image := make([]float32, 256)
	for i := range image {
		image[i] = float32(i%7) * 0.137
	}

	first := Reference(image, cfg)
	second := Reference(image, cfg)
	for i := range first {
		if math.Float32bits(first[i]) != math.Float32bits(second[i]) {
			t.Errorf("result[%d] differs between runs: %v vs %v", i, first[i], second[i])
		}
	}
}

func TestReference_DoesNotReadResult(t *testing.T) {
	// The output is computed purely from the input: writing results must
	// never feed back into later windows within the same run.
	cfg := Config{ImageWidth: 4, ImageHeight: 4, BlurWidth: 4, BlurHeight: 4}
	image := []float32{
		1, 2, 3, 4,
		5, 6, 7, 8,
		9, 10, 11, 12,
		13, 14, 15, 16,
	}
	saved := append([]float32(nil), image...)

	result := Reference(image, cfg)

	for i := range saved {
		if image[i] != saved[i] {
			t.Fatalf("input mutated at %d: %v -> %v", i, saved[i], image[i])
		}
	}
	// Spot check one overlapping window: (1,1) with extents (2,2) scans
	// offsets {-2,-1,0,1}, clipped to samples with x,y in {0..2}.
	wantSum, wantCount := blurAt(image, cfg, 1, 1)
	if got := result[1*4+1]; got != wantSum/float32(wantCount) {
		t.Errorf("result(1,1) = %v, want %v", got, wantSum/float32(wantCount))
	}
	if wantCount != 9 {
		t.Errorf("count(1,1) = %d, want 9", wantCount)
	}
}
