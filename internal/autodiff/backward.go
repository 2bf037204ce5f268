package autodiff

import "github.com/vqnn-ml/vqnn/internal/tensor"

// BackwardCapable is implemented by backends that can run reverse-mode
// differentiation from a chosen output tensor.
type BackwardCapable interface {
	Backward(output *tensor.RawTensor) (map[*tensor.RawTensor]*tensor.RawTensor, error)
}

// Backward computes gradients of output with respect to every tensor on
// the tape that influences it. The backward arithmetic runs on the
// inner backend, so gradient computation itself is never recorded.
func (b *Backend) Backward(output *tensor.RawTensor) (map[*tensor.RawTensor]*tensor.RawTensor, error) {
	return b.tape.Backward(output, b.inner)
}

var _ BackwardCapable = (*Backend)(nil)
