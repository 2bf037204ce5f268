package ops

import "github.com/vqnn-ml/vqnn/internal/tensor"

// Conv2DOp represents a 2D cross-correlation with stride and padding.
//
// The backward pass delegates to the backend's dedicated kernels:
// the input gradient is a transposed convolution of the output
// gradient with the kernel, and the kernel gradient is a correlation
// of the input with the output gradient.
type Conv2DOp struct {
	inputs  []*tensor.RawTensor // [input, kernel]
	output  *tensor.RawTensor
	stride  int
	padding int
}

// NewConv2DOp creates a new Conv2DOp.
func NewConv2DOp(input, kernel, output *tensor.RawTensor, stride, padding int) *Conv2DOp {
	return &Conv2DOp{
		inputs:  []*tensor.RawTensor{input, kernel},
		output:  output,
		stride:  stride,
		padding: padding,
	}
}

// Backward computes gradients for the convolution input and kernel.
func (op *Conv2DOp) Backward(outputGrad *tensor.RawTensor, backend tensor.Backend) []*tensor.RawTensor {
	input, kernel := op.inputs[0], op.inputs[1]
	gradInput := backend.Conv2DInputBackward(input, kernel, outputGrad, op.stride, op.padding)
	gradKernel := backend.Conv2DKernelBackward(input, kernel, outputGrad, op.stride, op.padding)
	return []*tensor.RawTensor{gradInput, gradKernel}
}

// Inputs returns the input tensors [input, kernel].
func (op *Conv2DOp) Inputs() []*tensor.RawTensor { return op.inputs }

// Output returns the convolution output tensor.
func (op *Conv2DOp) Output() *tensor.RawTensor { return op.output }
