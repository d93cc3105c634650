// Copyright 2026 The gogpu Authors
// SPDX-License-Identifier: BSD-3-Clause

package appcompute

import (
	"encoding/binary"
	"math"
)

// Byte conversion helpers. All GPU buffer contents are little-endian,
// matching WGSL's in-memory layout for f32/u32/i32.

// Float32Bytes serializes float32 values to little-endian bytes.
func Float32Bytes(vals []float32) []byte {
	buf := make([]byte, len(vals)*4)
	for i, v := range vals {
		binary.LittleEndian.PutUint32(buf[i*4:], math.Float32bits(v))
	}
	return buf
}

// Uint32Bytes serializes uint32 values to little-endian bytes.
func Uint32Bytes(vals []uint32) []byte {
	buf := make([]byte, len(vals)*4)
	for i, v := range vals {
		binary.LittleEndian.PutUint32(buf[i*4:], v)
	}
	return buf
}

// Int32Bytes serializes int32 values to little-endian bytes.
func Int32Bytes(vals []int32) []byte {
	buf := make([]byte, len(vals)*4)
	for i, v := range vals {
		binary.LittleEndian.PutUint32(buf[i*4:], uint32(v))
	}
	return buf
}

// float32sFromBytes deserializes little-endian bytes into float32
// values. Trailing bytes that do not fill a word are dropped.
func float32sFromBytes(buf []byte) []float32 {
	vals := make([]float32, len(buf)/4)
	for i := range vals {
		vals[i] = math.Float32frombits(binary.LittleEndian.Uint32(buf[i*4:]))
	}
	return vals
}

// uint32sFromBytes deserializes little-endian bytes into uint32 values.
func uint32sFromBytes(buf []byte) []uint32 {
	vals := make([]uint32, len(buf)/4)
	for i := range vals {
		vals[i] = binary.LittleEndian.Uint32(buf[i*4:])
	}
	return vals
}
