// Copyright 2026 The gogpu Authors
// SPDX-License-Identifier: BSD-3-Clause

// Package appcompute runs WGSL compute kernels over named GPU buffers.
//
// A Worker owns a set of named buffers (uniform, read-only storage,
// read-write storage, or staged for CPU readback) and an ordered list of
// steps: compute passes that bind buffers positionally to a kernel's
// binding slots, and swaps that exchange two buffer handles between
// passes. Execute encodes every step into one command buffer, submits
// it, waits on a fence, and reads all staged buffers back to the CPU.
//
//	dev, err := appcompute.Open()
//	if err != nil { ... }
//	defer dev.Close()
//
//	w, err := appcompute.NewBuilder().
//		AddUniform("value", appcompute.Float32Bytes([]float32{5})).
//		AddStaging("values", appcompute.Float32Bytes([]float32{1, 2, 3, 4})).
//		AddPass(appcompute.AddScalarKernel, [3]uint32{1, 1, 1}, "value", "values").
//		Build(dev)
//	if err != nil { ... }
//	defer w.Close()
//
//	if err := w.Execute(); err != nil { ... }
//	out, _ := w.ReadFloat32s("values") // [6 7 8 9]
//
// The blur subpackage provides the box-blur kernel together with a CPU
// reference implementation that mirrors the shader bit for bit.
package appcompute
