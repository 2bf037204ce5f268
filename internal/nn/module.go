// Package nn implements neural network modules for vector-quantized
// models.
//
// This package provides the building blocks of a VQ-VAE bottleneck:
//   - Module interface: Base interface for all NN components
//   - Parameter: Trainable parameters with gradient tracking
//   - VectorQuantizer: Codebook lookup with straight-through gradients
//   - MaskedConv2D: Autoregressive convolution for PixelCNN-style priors
//   - MSELoss: Mean-squared-error criterion
//
// Design inspired by PyTorch's nn.Module but adapted for Go generics.
package nn

import (
	"github.com/vqnn-ml/vqnn/internal/tensor"
)

// Module is the base interface for all neural network components.
//
// Every NN module must implement:
//   - Forward: Compute output from input
//   - Parameters: Return all trainable parameters
//
// Type parameter B must satisfy the tensor.Backend interface.
type Module[B tensor.Backend] interface {
	// Forward computes the output of the module given an input tensor.
	//
	// The input tensor should have the appropriate shape for this
	// module. VectorQuantizer and MaskedConv2D both expect
	// [batch, channels, height, width].
	Forward(input *tensor.Tensor[float32, B]) *tensor.Tensor[float32, B]

	// Parameters returns all trainable parameters of this module.
	//
	// Returns an empty slice for modules without trainable parameters.
	Parameters() []*Parameter[B]
}
