// Package ops defines the differentiable operations recorded on the
// gradient tape. Each operation keeps its input and output tensors from
// the forward pass and knows how to turn an output gradient into input
// gradients.
package ops

import "github.com/vqnn-ml/vqnn/internal/tensor"

// Operation represents a differentiable operation in the computation
// graph. The tape walks recorded operations in reverse and calls
// Backward with the accumulated gradient of the operation's output.
type Operation interface {
	// Backward computes gradients for the inputs given the output
	// gradient. The returned slice is parallel to Inputs(); a nil entry
	// means no gradient flows to that input.
	Backward(outputGrad *tensor.RawTensor, backend tensor.Backend) []*tensor.RawTensor

	// Inputs returns the input tensors for this operation.
	Inputs() []*tensor.RawTensor

	// Output returns the output tensor produced by this operation.
	Output() *tensor.RawTensor
}
