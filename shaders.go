// Copyright 2026 The gogpu Authors
// SPDX-License-Identifier: BSD-3-Clause

// shaders.go embeds the stock kernel sources and exposes them as Kernel
// values. Each kernel has a CPU reference mirror in reference.go.

package appcompute

import _ "embed"

//go:embed shaders/add_scalar.wgsl
var addScalarWGSL string

//go:embed shaders/write_index.wgsl
var writeIndexWGSL string

//go:embed shaders/constants.wgsl
var constantsWGSL string

//go:embed shaders/shared_constant.wgsl
var sharedConstantWGSL string

// ImportedConstant is the value defined in the constants module.
// SharedConstantKernel writes it into its output buffer.
const ImportedConstant float32 = 4.0

// Stock kernels. They share the worker's positional binding contract:
// bind buffers in the order of each kernel's @binding slots.
var (
	// AddScalarKernel adds a uniform scalar (binding 0) to every element
	// of a runtime-sized read-write float buffer (binding 1). A single
	// invocation walks the whole buffer, so dispatch [1,1,1].
	AddScalarKernel = &Kernel{
		Name:   "add_scalar",
		Source: addScalarWGSL,
	}

	// WriteIndexKernel writes f32(index+1) into a read-write float
	// buffer (binding 0) at each invocation's linear index. Dispatch one
	// workgroup per element.
	WriteIndexKernel = &Kernel{
		Name:   "write_index",
		Source: writeIndexWGSL,
	}

	// ConstantsModule defines shared constants. It has no entry point
	// and is only usable as an import.
	ConstantsModule = &Kernel{
		Name:   "constants",
		Source: constantsWGSL,
	}

	// SharedConstantKernel writes ImportedConstant from the imported
	// constants module into a one-element output buffer (binding 0).
	SharedConstantKernel = &Kernel{
		Name:    "shared_constant",
		Source:  sharedConstantWGSL,
		Imports: []*Kernel{ConstantsModule},
	}
)
