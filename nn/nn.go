// Copyright 2026 VQNN Framework. All rights reserved.
// Use of this source code is governed by an Apache 2.0
// license that can be found in the LICENSE file.

// Package nn provides the public API for neural network modules of the
// VQNN framework: the vector quantizer bottleneck, masked convolutions
// for autoregressive priors over code grids, and the MSE criterion.
package nn

import (
	"github.com/vqnn-ml/vqnn/internal/nn"
	"github.com/vqnn-ml/vqnn/internal/tensor"
)

// Module interface defines the common interface for all neural network modules.
type Module[B tensor.Backend] = nn.Module[B]

// Parameter represents a trainable parameter in a neural network.
type Parameter[B tensor.Backend] = nn.Parameter[B]

// NewParameter creates a new parameter with the given name and tensor.
func NewParameter[B tensor.Backend](name string, t *tensor.Tensor[float32, B]) *Parameter[B] {
	return nn.NewParameter(name, t)
}

// Layers

// VectorQuantizer maps continuous latents to the nearest entry of a
// learned codebook with straight-through gradients.
type VectorQuantizer[B tensor.Backend] = nn.VectorQuantizer[B]

// QuantizeResult bundles the outputs of a quantization pass.
type QuantizeResult[B tensor.Backend] = nn.QuantizeResult[B]

// NewVectorQuantizer creates a quantizer with numCodes code vectors of
// dimension codeDim and commitment weight beta.
//
// Example:
//
//	backend := autodiff.New(cpu.New())
//	vq := nn.NewVectorQuantizer(512, 64, 0.25, backend)
func NewVectorQuantizer[B tensor.Backend](numCodes, codeDim int, beta float32, backend B) *VectorQuantizer[B] {
	return nn.NewVectorQuantizer(numCodes, codeDim, beta, backend)
}

// NewVectorQuantizerWithCodebook creates a quantizer around an existing
// [numCodes, codeDim] codebook tensor.
func NewVectorQuantizerWithCodebook[B tensor.Backend](codebook *tensor.Tensor[float32, B], beta float32) *VectorQuantizer[B] {
	return nn.NewVectorQuantizerWithCodebook(codebook, beta)
}

// MaskType selects the causal mask variant of a MaskedConv2D.
type MaskType = nn.MaskType

// Mask type constants.
const (
	MaskTypeA MaskType = nn.MaskTypeA
	MaskTypeB MaskType = nn.MaskTypeB
)

// MaskedConv2D is a raster-order causal convolution.
type MaskedConv2D[B tensor.Backend] = nn.MaskedConv2D[B]

// NewMaskedConv2D creates a masked convolution with a square kernel.
//
// Example:
//
//	first := nn.NewMaskedConv2D(1, 64, 7, 1, 3, nn.MaskTypeA, true, backend)
func NewMaskedConv2D[B tensor.Backend](
	inChannels, outChannels int,
	kernelSize, stride, padding int,
	maskType MaskType,
	useBias bool,
	backend B,
) *MaskedConv2D[B] {
	return nn.NewMaskedConv2D(inChannels, outChannels, kernelSize, stride, padding, maskType, useBias, backend)
}

// Loss functions

// MSELoss computes mean squared error.
type MSELoss[B tensor.Backend] = nn.MSELoss[B]

// NewMSELoss creates a new MSE loss function.
func NewMSELoss[B tensor.Backend](backend B) *MSELoss[B] {
	return nn.NewMSELoss(backend)
}

// Initialization

// Uniform creates a tensor with samples from U(low, high).
func Uniform[B tensor.Backend](shape tensor.Shape, low, high float32, backend B) *tensor.Tensor[float32, B] {
	return nn.Uniform(shape, low, high, backend)
}

// Xavier creates a tensor with Xavier/Glorot uniform initialization.
func Xavier[B tensor.Backend](fanIn, fanOut int, shape tensor.Shape, backend B) *tensor.Tensor[float32, B] {
	return nn.Xavier(fanIn, fanOut, shape, backend)
}

// Zeros creates a zero-filled tensor.
func Zeros[B tensor.Backend](shape tensor.Shape, backend B) *tensor.Tensor[float32, B] {
	return nn.Zeros(shape, backend)
}

// Ones creates a one-filled tensor.
func Ones[B tensor.Backend](shape tensor.Shape, backend B) *tensor.Tensor[float32, B] {
	return nn.Ones(shape, backend)
}
