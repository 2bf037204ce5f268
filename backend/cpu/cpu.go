// Copyright 2026 VQNN Framework. All rights reserved.
// Use of this source code is governed by an Apache 2.0
// license that can be found in the LICENSE file.

// Package cpu provides the pure Go CPU backend for tensor operations.
//
// The backend implements dense kernels for element-wise arithmetic with
// NumPy-compatible broadcasting, BLAS-backed matrix multiplication,
// im2col convolution, reductions, and the index operations used by
// vector quantization (Argmin, OneHot).
package cpu

import (
	internalcpu "github.com/vqnn-ml/vqnn/internal/backend/cpu"
	"github.com/vqnn-ml/vqnn/tensor"
)

// Backend is the CPU backend implementation.
type Backend = internalcpu.CPUBackend

// Compile-time check that Backend implements tensor.Backend.
var _ tensor.Backend = (*Backend)(nil)

// New creates a new CPU backend.
//
// Example:
//
//	backend := cpu.New()
//	x := tensor.Zeros[float32](tensor.Shape{2, 3}, backend)
func New() *Backend {
	return internalcpu.New()
}
