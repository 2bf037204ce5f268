package tensor

// Typed method wrappers over the backend operations. When the backend
// is an autodiff decorator these calls are what lands on the tape.

// Add performs element-wise addition with broadcasting.
func (t *Tensor[T, B]) Add(other *Tensor[T, B]) *Tensor[T, B] {
	return New[T, B](t.backend.Add(t.raw, other.raw), t.backend)
}

// Sub performs element-wise subtraction with broadcasting.
func (t *Tensor[T, B]) Sub(other *Tensor[T, B]) *Tensor[T, B] {
	return New[T, B](t.backend.Sub(t.raw, other.raw), t.backend)
}

// Mul performs element-wise multiplication with broadcasting.
func (t *Tensor[T, B]) Mul(other *Tensor[T, B]) *Tensor[T, B] {
	return New[T, B](t.backend.Mul(t.raw, other.raw), t.backend)
}

// MulScalar multiplies each element by a scalar value.
func (t *Tensor[T, B]) MulScalar(scalar float32) *Tensor[T, B] {
	return New[T, B](t.backend.MulScalar(t.raw, scalar), t.backend)
}

// MatMul performs 2D matrix multiplication: (M, K) @ (K, N) -> (M, N).
func (t *Tensor[T, B]) MatMul(other *Tensor[T, B]) *Tensor[T, B] {
	return New[T, B](t.backend.MatMul(t.raw, other.raw), t.backend)
}

// Reshape returns a tensor with the same data but a different shape.
// The new shape must have the same number of elements.
func (t *Tensor[T, B]) Reshape(newShape ...int) *Tensor[T, B] {
	return New[T, B](t.backend.Reshape(t.raw, Shape(newShape)), t.backend)
}

// Transpose permutes the tensor's dimensions and returns a
// layout-contiguous copy. If axes is empty, reverses all dimensions.
func (t *Tensor[T, B]) Transpose(axes ...int) *Tensor[T, B] {
	return New[T, B](t.backend.Transpose(t.raw, axes...), t.backend)
}

// T is a shortcut for 2D transpose (swaps rows and columns).
// Panics if the tensor is not 2D.
func (t *Tensor[T, B]) T() *Tensor[T, B] {
	if len(t.Shape()) != 2 {
		panic("T() only works for 2D tensors")
	}
	return t.Transpose(1, 0)
}

// Sum reduces all elements to a single-element tensor.
func (t *Tensor[T, B]) Sum() *Tensor[T, B] {
	return New[T, B](t.backend.Sum(t.raw), t.backend)
}

// SumDim sums along one dimension. With keepDim the reduced dimension
// stays in the shape with size 1.
func (t *Tensor[T, B]) SumDim(dim int, keepDim bool) *Tensor[T, B] {
	return New[T, B](t.backend.SumDim(t.raw, dim, keepDim), t.backend)
}

// Mean reduces all elements to their mean as a single-element tensor.
// The mean over zero elements is defined as 0.
func (t *Tensor[T, B]) Mean() *Tensor[T, B] {
	return New[T, B](t.backend.Mean(t.raw), t.backend)
}

// Argmin returns the index of the minimum along dim as an int32 tensor.
// Ties break toward the lower index.
func (t *Tensor[T, B]) Argmin(dim int) *Tensor[int32, B] {
	return New[int32, B](t.backend.Argmin(t.raw, dim), t.backend)
}

// Constant returns a value-identical copy treated as a constant by
// gradient machinery: no producer is recorded for it, so gradients
// arriving at it during backpropagation stop there.
//
// This is the stop-gradient primitive. The straight-through estimator
// composes it as input + Constant(quantized - input): the forward value
// is quantized, the backward pass sees only the input term.
func (t *Tensor[T, B]) Constant() *Tensor[T, B] {
	return New[T, B](t.backend.Constant(t.raw), t.backend)
}

// Conv2D performs 2D convolution of this tensor [N, C_in, H, W] with
// kernel [C_out, C_in, K_h, K_w].
func (t *Tensor[T, B]) Conv2D(kernel *Tensor[T, B], stride, padding int) *Tensor[T, B] {
	return New[T, B](t.backend.Conv2D(t.raw, kernel.raw, stride, padding), t.backend)
}

// OneHot expands int32 indices [N] into an N×numClasses float32 matrix
// with a single 1 per row at the index position.
func OneHot[B Backend](indices *Tensor[int32, B], numClasses int) *Tensor[float32, B] {
	return New[float32, B](indices.backend.OneHot(indices.raw, numClasses), indices.backend)
}
