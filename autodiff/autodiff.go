// Copyright 2026 VQNN Framework. All rights reserved.
// Use of this source code is governed by an Apache 2.0
// license that can be found in the LICENSE file.

// Package autodiff provides automatic differentiation capabilities.
//
// This package implements reverse-mode automatic differentiation
// (backpropagation) using a gradient tape. It wraps any backend to add
// autodiff capabilities.
//
// Example:
//
//	base := cpu.New()
//	backend := autodiff.New(base)
//
//	x := tensor.Zeros[float32](tensor.Shape{2, 3}, backend)
//	y := x.Add(x) // Operations recorded on tape
//
//	grads, err := backend.Backward(y.Raw())
package autodiff

import (
	"github.com/vqnn-ml/vqnn/internal/autodiff"
	"github.com/vqnn-ml/vqnn/internal/tensor"
)

// Backend is the autodiff-enabled backend decorator.
type Backend = autodiff.Backend

// New creates a new autodiff backend wrapping the given backend.
//
// Example:
//
//	base := cpu.New()
//	backend := autodiff.New(base)
func New(inner tensor.Backend) *Backend {
	return autodiff.New(inner)
}

// GradientTape records operations for automatic differentiation.
type GradientTape = autodiff.GradientTape

// NewGradientTape creates a new gradient tape.
func NewGradientTape() *GradientTape {
	return autodiff.NewGradientTape()
}

// BackwardCapable is implemented by backends that support
// backpropagation from a chosen output tensor.
type BackwardCapable = autodiff.BackwardCapable
