// Package autodiff provides reverse-mode automatic differentiation as a
// backend decorator. Wrap any compute backend in a Backend and every
// differentiable operation executed through it is recorded on a
// GradientTape; a single Backward call then yields gradients for all
// participating tensors.
//
// Gradient blocking falls out of the design: Constant produces a value
// copy with no recorded producer, so gradients reaching it stop there.
package autodiff

import (
	"github.com/vqnn-ml/vqnn/internal/autodiff/ops"
	"github.com/vqnn-ml/vqnn/internal/tensor"
)

// Backend decorates an inner compute backend with gradient recording.
// All arithmetic is delegated to the inner backend; this type only
// appends tape entries.
type Backend struct {
	inner tensor.Backend
	tape  *GradientTape
}

// New wraps inner in a recording backend with a fresh tape.
func New(inner tensor.Backend) *Backend {
	return &Backend{inner: inner, tape: NewGradientTape()}
}

// Tape returns the gradient tape operations are recorded on.
func (b *Backend) Tape() *GradientTape { return b.tape }

// Inner returns the wrapped compute backend.
func (b *Backend) Inner() tensor.Backend { return b.inner }

// Name identifies the decorated backend.
func (b *Backend) Name() string { return "autodiff(" + b.inner.Name() + ")" }

// Device reports the inner backend's device.
func (b *Backend) Device() tensor.Device { return b.inner.Device() }

// Add computes a + b and records the operation.
func (b *Backend) Add(x, y *tensor.RawTensor) *tensor.RawTensor {
	out := b.inner.Add(x, y)
	b.tape.Record(ops.NewAddOp(x, y, out))
	return out
}

// Sub computes a - b and records the operation.
func (b *Backend) Sub(x, y *tensor.RawTensor) *tensor.RawTensor {
	out := b.inner.Sub(x, y)
	b.tape.Record(ops.NewSubOp(x, y, out))
	return out
}

// Mul computes element-wise a * b and records the operation.
func (b *Backend) Mul(x, y *tensor.RawTensor) *tensor.RawTensor {
	out := b.inner.Mul(x, y)
	b.tape.Record(ops.NewMulOp(x, y, out))
	return out
}

// MulScalar computes x * scalar and records the operation.
func (b *Backend) MulScalar(x *tensor.RawTensor, scalar float32) *tensor.RawTensor {
	out := b.inner.MulScalar(x, scalar)
	b.tape.Record(ops.NewMulScalarOp(x, out, scalar))
	return out
}

// MatMul computes a @ b and records the operation.
func (b *Backend) MatMul(x, y *tensor.RawTensor) *tensor.RawTensor {
	out := b.inner.MatMul(x, y)
	b.tape.Record(ops.NewMatMulOp(x, y, out))
	return out
}

// Conv2D computes a 2D cross-correlation and records the operation.
func (b *Backend) Conv2D(input, kernel *tensor.RawTensor, stride, padding int) *tensor.RawTensor {
	out := b.inner.Conv2D(input, kernel, stride, padding)
	b.tape.Record(ops.NewConv2DOp(input, kernel, out, stride, padding))
	return out
}

// Conv2DInputBackward delegates to the inner backend. Gradient kernels
// are not themselves differentiated.
func (b *Backend) Conv2DInputBackward(input, kernel, grad *tensor.RawTensor, stride, padding int) *tensor.RawTensor {
	return b.inner.Conv2DInputBackward(input, kernel, grad, stride, padding)
}

// Conv2DKernelBackward delegates to the inner backend.
func (b *Backend) Conv2DKernelBackward(input, kernel, grad *tensor.RawTensor, stride, padding int) *tensor.RawTensor {
	return b.inner.Conv2DKernelBackward(input, kernel, grad, stride, padding)
}

// Reshape changes the tensor shape and records the operation.
func (b *Backend) Reshape(t *tensor.RawTensor, newShape tensor.Shape) *tensor.RawTensor {
	out := b.inner.Reshape(t, newShape)
	b.tape.Record(ops.NewReshapeOp(t, out))
	return out
}

// Transpose permutes tensor axes and records the operation.
func (b *Backend) Transpose(t *tensor.RawTensor, axes ...int) *tensor.RawTensor {
	out := b.inner.Transpose(t, axes...)
	if len(axes) == 0 {
		// Mirror the inner backend's default of reversing all axes so
		// the recorded permutation can be inverted on the way back.
		ndim := len(t.Shape())
		axes = make([]int, ndim)
		for i := range axes {
			axes[i] = ndim - 1 - i
		}
	}
	b.tape.Record(ops.NewTransposeOp(t, out, axes))
	return out
}

// Sum reduces all elements to a single value and records the operation.
func (b *Backend) Sum(x *tensor.RawTensor) *tensor.RawTensor {
	out := b.inner.Sum(x)
	b.tape.Record(ops.NewSumOp(x, out))
	return out
}

// SumDim reduces along one dimension and records the operation.
func (b *Backend) SumDim(x *tensor.RawTensor, dim int, keepDim bool) *tensor.RawTensor {
	out := b.inner.SumDim(x, dim, keepDim)
	b.tape.Record(ops.NewSumDimOp(x, out, dim, keepDim))
	return out
}

// Mean reduces all elements to their mean and records the operation.
func (b *Backend) Mean(x *tensor.RawTensor) *tensor.RawTensor {
	out := b.inner.Mean(x)
	b.tape.Record(ops.NewMeanOp(x, out))
	return out
}

// Argmin delegates to the inner backend. Index selection is
// non-differentiable and leaves no tape entry.
func (b *Backend) Argmin(x *tensor.RawTensor, dim int) *tensor.RawTensor {
	return b.inner.Argmin(x, dim)
}

// OneHot delegates to the inner backend. The selection matrix enters
// the graph as a constant; gradients flow through the matmul it feeds,
// not through the indices that built it.
func (b *Backend) OneHot(indices *tensor.RawTensor, numClasses int) *tensor.RawTensor {
	return b.inner.OneHot(indices, numClasses)
}

// Constant returns a value-identical copy with no recorded producer.
// Gradients arriving at the copy stop; the original tensor's history is
// unaffected.
func (b *Backend) Constant(x *tensor.RawTensor) *tensor.RawTensor {
	return b.inner.Constant(x)
}
