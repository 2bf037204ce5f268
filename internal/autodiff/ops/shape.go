package ops

import "github.com/vqnn-ml/vqnn/internal/tensor"

// ReshapeOp represents a shape change with unchanged element order.
//
// Backward: reshape the output gradient back to the input shape.
type ReshapeOp struct {
	inputs []*tensor.RawTensor // [x]
	output *tensor.RawTensor
}

// NewReshapeOp creates a new ReshapeOp.
func NewReshapeOp(x, output *tensor.RawTensor) *ReshapeOp {
	return &ReshapeOp{inputs: []*tensor.RawTensor{x}, output: output}
}

// Backward reshapes the output gradient to the original input shape.
func (op *ReshapeOp) Backward(outputGrad *tensor.RawTensor, backend tensor.Backend) []*tensor.RawTensor {
	return []*tensor.RawTensor{backend.Reshape(outputGrad, op.inputs[0].Shape())}
}

// Inputs returns the input tensors [x].
func (op *ReshapeOp) Inputs() []*tensor.RawTensor { return op.inputs }

// Output returns the reshaped output tensor.
func (op *ReshapeOp) Output() *tensor.RawTensor { return op.output }

// TransposeOp represents an axis permutation.
//
// Backward: apply the inverse permutation to the output gradient.
type TransposeOp struct {
	inputs []*tensor.RawTensor // [x]
	output *tensor.RawTensor
	axes   []int
}

// NewTransposeOp creates a new TransposeOp for the given permutation.
func NewTransposeOp(x, output *tensor.RawTensor, axes []int) *TransposeOp {
	saved := make([]int, len(axes))
	copy(saved, axes)
	return &TransposeOp{inputs: []*tensor.RawTensor{x}, output: output, axes: saved}
}

// Backward permutes the output gradient with the inverse axes.
func (op *TransposeOp) Backward(outputGrad *tensor.RawTensor, backend tensor.Backend) []*tensor.RawTensor {
	inverse := make([]int, len(op.axes))
	for i, ax := range op.axes {
		inverse[ax] = i
	}
	return []*tensor.RawTensor{backend.Transpose(outputGrad, inverse...)}
}

// Inputs returns the input tensors [x].
func (op *TransposeOp) Inputs() []*tensor.RawTensor { return op.inputs }

// Output returns the transposed output tensor.
func (op *TransposeOp) Output() *tensor.RawTensor { return op.output }
