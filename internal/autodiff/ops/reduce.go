package ops

import "github.com/vqnn-ml/vqnn/internal/tensor"

// SumOp represents a full reduction: output = sum of all elements of x,
// stored as a single-element tensor.
//
// Backward: every input element contributed with weight 1, so the
// scalar output gradient is replicated across the input shape.
type SumOp struct {
	inputs []*tensor.RawTensor // [x]
	output *tensor.RawTensor
}

// NewSumOp creates a new SumOp.
func NewSumOp(x, output *tensor.RawTensor) *SumOp {
	return &SumOp{inputs: []*tensor.RawTensor{x}, output: output}
}

// Backward replicates the scalar output gradient over the input shape.
func (op *SumOp) Backward(outputGrad *tensor.RawTensor, _ tensor.Backend) []*tensor.RawTensor {
	g := outputGrad.AsFloat32()[0]
	return []*tensor.RawTensor{fill(op.inputs[0].Shape(), g)}
}

// Inputs returns the input tensors [x].
func (op *SumOp) Inputs() []*tensor.RawTensor { return op.inputs }

// Output returns the single-element sum tensor.
func (op *SumOp) Output() *tensor.RawTensor { return op.output }

// SumDimOp represents a reduction along one dimension.
//
// Backward: the output gradient is broadcast back across the reduced
// dimension, since each input element along it contributed with
// weight 1.
type SumDimOp struct {
	inputs  []*tensor.RawTensor // [x]
	output  *tensor.RawTensor
	dim     int
	keepDim bool
}

// NewSumDimOp creates a new SumDimOp for a reduction along dim.
func NewSumDimOp(x, output *tensor.RawTensor, dim int, keepDim bool) *SumDimOp {
	return &SumDimOp{inputs: []*tensor.RawTensor{x}, output: output, dim: dim, keepDim: keepDim}
}

// Backward broadcasts the output gradient across the reduced dimension.
func (op *SumDimOp) Backward(outputGrad *tensor.RawTensor, backend tensor.Backend) []*tensor.RawTensor {
	inShape := op.inputs[0].Shape()
	grad := outputGrad
	if !op.keepDim {
		// Reinsert the reduced dimension as size 1 so broadcasting
		// lines the remaining axes up correctly.
		keep := make(tensor.Shape, 0, len(inShape))
		keep = append(keep, grad.Shape()[:op.dim]...)
		keep = append(keep, 1)
		keep = append(keep, grad.Shape()[op.dim:]...)
		grad = backend.Reshape(grad, keep)
	}
	return []*tensor.RawTensor{broadcastTo(grad, inShape)}
}

// Inputs returns the input tensors [x].
func (op *SumDimOp) Inputs() []*tensor.RawTensor { return op.inputs }

// Output returns the reduced output tensor.
func (op *SumDimOp) Output() *tensor.RawTensor { return op.output }

// MeanOp represents a full mean reduction: output = sum(x) / N stored
// as a single-element tensor. An empty input produces mean 0 and, on
// the way back, an empty gradient.
type MeanOp struct {
	inputs []*tensor.RawTensor // [x]
	output *tensor.RawTensor
}

// NewMeanOp creates a new MeanOp.
func NewMeanOp(x, output *tensor.RawTensor) *MeanOp {
	return &MeanOp{inputs: []*tensor.RawTensor{x}, output: output}
}

// Backward distributes the scalar output gradient uniformly, scaled
// by 1/N.
func (op *MeanOp) Backward(outputGrad *tensor.RawTensor, _ tensor.Backend) []*tensor.RawTensor {
	inShape := op.inputs[0].Shape()
	n := op.inputs[0].NumElements()
	if n == 0 {
		return []*tensor.RawTensor{fill(inShape, 0)}
	}
	g := outputGrad.AsFloat32()[0]
	return []*tensor.RawTensor{fill(inShape, g/float32(n))}
}

// Inputs returns the input tensors [x].
func (op *MeanOp) Inputs() []*tensor.RawTensor { return op.inputs }

// Output returns the single-element mean tensor.
func (op *MeanOp) Output() *tensor.RawTensor { return op.output }
