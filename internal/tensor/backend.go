package tensor

// Backend defines the interface that compute backends must implement.
//
// Implementations:
//   - cpu.CPUBackend: dense CPU kernels (gonum BLAS under MatMul/Conv2D)
//   - autodiff.Backend: decorator that wraps another backend and records
//     differentiable operations on a gradient tape
type Backend interface {
	// Element-wise binary operations (NumPy-style broadcasting)
	Add(a, b *RawTensor) *RawTensor
	Sub(a, b *RawTensor) *RawTensor
	Mul(a, b *RawTensor) *RawTensor

	// Element-wise scalar operation
	MulScalar(x *RawTensor, scalar float32) *RawTensor

	// Matrix operations
	MatMul(a, b *RawTensor) *RawTensor

	// Convolution
	Conv2D(input, kernel *RawTensor, stride, padding int) *RawTensor
	Conv2DInputBackward(input, kernel, grad *RawTensor, stride, padding int) *RawTensor
	Conv2DKernelBackward(input, kernel, grad *RawTensor, stride, padding int) *RawTensor

	// Shape operations (both produce layout-contiguous copies)
	Reshape(t *RawTensor, newShape Shape) *RawTensor
	Transpose(t *RawTensor, axes ...int) *RawTensor

	// Reductions
	Sum(x *RawTensor) *RawTensor
	SumDim(x *RawTensor, dim int, keepDim bool) *RawTensor
	Mean(x *RawTensor) *RawTensor

	// Indexing. Argmin breaks ties toward the lower index; OneHot builds
	// the N×K selection matrix used for codebook lookup. Both are
	// non-differentiable by construction.
	Argmin(x *RawTensor, dim int) *RawTensor
	OneHot(indices *RawTensor, numClasses int) *RawTensor

	// Constant returns a value-identical copy that is treated as a
	// constant by gradient machinery: it has no recorded producer, so
	// any gradient arriving at it stops. This is the gradient-blocking
	// primitive behind the straight-through estimator.
	Constant(x *RawTensor) *RawTensor

	// Metadata
	Name() string
	Device() Device
}
