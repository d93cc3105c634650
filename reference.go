// Copyright 2026 The gogpu Authors
// SPDX-License-Identifier: BSD-3-Clause

package appcompute

// CPU reference mirrors of the stock kernels. They reproduce the WGSL
// semantics exactly and back the GPU parity tests.

// AddScalarReference mirrors AddScalarKernel: adds value to every
// element in place.
func AddScalarReference(values []float32, value float32) {
	for i := range values {
		values[i] = values[i] + value
	}
}

// WriteIndexReference mirrors WriteIndexKernel: writes f32(i+1) at
// every index.
func WriteIndexReference(values []float32) {
	for i := range values {
		values[i] = float32(i + 1)
	}
}

// SharedConstantReference mirrors SharedConstantKernel.
func SharedConstantReference() float32 {
	return ImportedConstant
}
