// Copyright 2026 The gogpu Authors
// SPDX-License-Identifier: BSD-3-Clause

package appcompute

import (
	"fmt"
	"strings"

	"github.com/gogpu/naga"
)

// Kernel describes one WGSL compute entry point, or a pure source module
// that other kernels import.
//
// Imports lists modules whose source must be visible to this kernel
// (shared constants, helper functions). Import resolution is a
// compile-time concern: ResolvedSource concatenates every imported
// module's source ahead of the kernel's own before the WGSL compiler
// sees it. Modules have no entry point of their own.
type Kernel struct {
	// Name identifies the kernel. Pipeline caching is keyed on it, so
	// two kernels sharing a device must not share a name.
	Name string

	// EntryPoint is the compute entry function. Empty means "main".
	// Pure import modules leave it empty and are never dispatched.
	EntryPoint string

	// Source is the WGSL source of this kernel or module.
	Source string

	// Imports are modules prepended to Source before compilation.
	// Each named module is included at most once.
	Imports []*Kernel
}

// entry returns the effective entry point name.
func (k *Kernel) entry() string {
	if k.EntryPoint == "" {
		return "main"
	}
	return k.EntryPoint
}

// ResolvedSource returns the kernel source with every imported module's
// source prepended, depth first, each module included once.
func (k *Kernel) ResolvedSource() string {
	if len(k.Imports) == 0 {
		return k.Source
	}
	var sb strings.Builder
	seen := map[string]bool{k.Name: true}
	k.appendImports(&sb, seen)
	sb.WriteString(k.Source)
	return sb.String()
}

func (k *Kernel) appendImports(sb *strings.Builder, seen map[string]bool) {
	for _, imp := range k.Imports {
		if imp == nil || seen[imp.Name] {
			continue
		}
		seen[imp.Name] = true
		imp.appendImports(sb, seen)
		sb.WriteString(imp.Source)
		if !strings.HasSuffix(imp.Source, "\n") {
			sb.WriteByte('\n')
		}
	}
}

// Validate compiles the resolved source through naga and reports the
// first compilation error. It does not require a GPU.
func (k *Kernel) Validate() error {
	if k.Source == "" {
		return fmt.Errorf("appcompute: kernel %q has no source", k.Name)
	}
	if _, err := naga.Compile(k.ResolvedSource()); err != nil {
		return fmt.Errorf("appcompute: compile kernel %q: %w", k.Name, err)
	}
	return nil
}
