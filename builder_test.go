// Copyright 2026 The gogpu Authors
// SPDX-License-Identifier: BSD-3-Clause

package appcompute

import (
	"errors"
	"testing"
)

func TestBuilder_Validate(t *testing.T) {
	kernel := &Kernel{Name: "k", Source: "fn f() {}"}

	tests := []struct {
		name    string
		build   func() *Builder
		wantErr error
	}{
		{
			name: "valid single pass",
			build: func() *Builder {
				return NewBuilder().
					AddStaging("values", Float32Bytes(make([]float32, 4))).
					AddPass(kernel, [3]uint32{1, 1, 1}, "values")
			},
			wantErr: nil,
		},
		{
			name: "no steps",
			build: func() *Builder {
				return NewBuilder().AddStorage("values", Float32Bytes(make([]float32, 4)))
			},
			wantErr: ErrNoSteps,
		},
		{
			name: "duplicate buffer name",
			build: func() *Builder {
				return NewBuilder().
					AddUniform("values", Float32Bytes([]float32{1})).
					AddStorage("values", Float32Bytes([]float32{2})).
					AddPass(kernel, [3]uint32{1, 1, 1}, "values")
			},
			wantErr: ErrDuplicateBuffer,
		},
		{
			name: "unknown binding",
			build: func() *Builder {
				return NewBuilder().
					AddStorage("values", Float32Bytes(make([]float32, 4))).
					AddPass(kernel, [3]uint32{1, 1, 1}, "missing")
			},
			wantErr: ErrBufferNotFound,
		},
		{
			name: "swap unknown buffer",
			build: func() *Builder {
				return NewBuilder().
					AddRWStorage("a", Float32Bytes(make([]float32, 4))).
					AddSwap("a", "b")
			},
			wantErr: ErrBufferNotFound,
		},
		{
			name: "swap size mismatch",
			build: func() *Builder {
				return NewBuilder().
					AddRWStorage("a", Float32Bytes(make([]float32, 4))).
					AddRWStorage("b", Float32Bytes(make([]float32, 8))).
					AddSwap("a", "b")
			},
			wantErr: ErrSizeMismatch,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := tt.build().validate()
			if tt.wantErr == nil {
				if err != nil {
					t.Errorf("validate() = %v, want nil", err)
				}
				return
			}
			if !errors.Is(err, tt.wantErr) {
				t.Errorf("validate() = %v, want %v", err, tt.wantErr)
			}
		})
	}
}

func TestBuilder_FirstErrorSticks(t *testing.T) {
	kernel := &Kernel{Name: "k", Source: "fn f() {}"}

	b := NewBuilder().
		AddUniform("dup", Float32Bytes([]float32{1})).
		AddUniform("dup", Float32Bytes([]float32{2})).
		AddStorage("later", Float32Bytes([]float32{3})).
		AddPass(kernel, [3]uint32{1, 1, 1}, "later")

	if err := b.validate(); !errors.Is(err, ErrDuplicateBuffer) {
		t.Errorf("validate() = %v, want %v", err, ErrDuplicateBuffer)
	}
	// Calls after the first error are no-ops.
	if len(b.buffers) != 1 {
		t.Errorf("buffers = %d, want 1", len(b.buffers))
	}
	if len(b.steps) != 0 {
		t.Errorf("steps = %d, want 0", len(b.steps))
	}
}

func TestBuilder_RejectsZeroSizeAndNilKernel(t *testing.T) {
	t.Run("zero size buffer", func(t *testing.T) {
		b := NewBuilder().AddEmptyStaging("empty", 0)
		if err := b.validate(); err == nil {
			t.Error("validate() = nil, want error for zero-size buffer")
		}
	})

	t.Run("nil kernel", func(t *testing.T) {
		b := NewBuilder().
			AddStorage("values", Float32Bytes([]float32{1})).
			AddPass(nil, [3]uint32{1, 1, 1}, "values")
		if err := b.validate(); err == nil {
			t.Error("validate() = nil, want error for nil kernel")
		}
	})
}

func TestBuilder_BindingKinds(t *testing.T) {
	kernel := &Kernel{Name: "k", Source: "fn f() {}"}

	b := NewBuilder().
		AddUniform("u", Float32Bytes([]float32{1})).
		AddStorage("ro", Float32Bytes([]float32{1})).
		AddStaging("rw", Float32Bytes([]float32{1})).
		AddPass(kernel, [3]uint32{1, 1, 1}, "u", "ro", "rw")

	if err := b.validate(); err != nil {
		t.Fatalf("validate() = %v", err)
	}
	kinds := b.bindingKinds(b.steps[0].pass)
	expected := []bufferKind{bufferUniform, bufferStorage, bufferRWStorage}
	if len(kinds) != len(expected) {
		t.Fatalf("bindingKinds() len = %d, want %d", len(kinds), len(expected))
	}
	for i, k := range expected {
		if kinds[i] != k {
			t.Errorf("bindingKinds()[%d] = %v, want %v", i, kinds[i], k)
		}
	}
}

func TestLayoutSignature(t *testing.T) {
	tests := []struct {
		name     string
		kinds    []bufferKind
		expected string
	}{
		{"empty", nil, ""},
		{"single uniform", []bufferKind{bufferUniform}, "u"},
		{"mixed", []bufferKind{bufferStorage, bufferRWStorage, bufferUniform}, "ro,rw,u"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := layoutSignature(tt.kinds); got != tt.expected {
				t.Errorf("layoutSignature() = %q, want %q", got, tt.expected)
			}
		})
	}
}
