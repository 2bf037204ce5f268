package cpu

import (
	"fmt"

	"github.com/vqnn-ml/vqnn/internal/tensor"
)

// Sum reduces all elements to a single-element tensor of shape [1].
func (cpu *CPUBackend) Sum(x *tensor.RawTensor) *tensor.RawTensor {
	if x.DType() != tensor.Float32 {
		panic(fmt.Sprintf("sum: unsupported dtype %s (only float32 supported)", x.DType()))
	}

	result, err := tensor.NewRaw(tensor.Shape{1}, tensor.Float32, cpu.device)
	if err != nil {
		panic(fmt.Sprintf("sum: %v", err))
	}

	var sum float32
	for _, v := range x.AsFloat32() {
		sum += v
	}
	result.AsFloat32()[0] = sum
	return result
}

// Mean reduces all elements to their mean as a tensor of shape [1].
// The mean over zero elements is defined as 0, not NaN, so losses over
// empty batches stay finite.
func (cpu *CPUBackend) Mean(x *tensor.RawTensor) *tensor.RawTensor {
	result := cpu.Sum(x)
	if n := x.NumElements(); n > 0 {
		result.AsFloat32()[0] /= float32(n)
	}
	return result
}

// SumDim sums along a single dimension. With keepDim the reduced
// dimension stays in the output shape with size 1. Supports negative
// dim indexing.
func (cpu *CPUBackend) SumDim(x *tensor.RawTensor, dim int, keepDim bool) *tensor.RawTensor {
	shape := x.Shape()
	ndim := len(shape)
	if dim < 0 {
		dim = ndim + dim
	}
	if dim < 0 || dim >= ndim {
		panic(fmt.Sprintf("sumDim: dimension %d out of range for %dD tensor", dim, ndim))
	}
	if x.DType() != tensor.Float32 {
		panic(fmt.Sprintf("sumDim: unsupported dtype %s (only float32 supported)", x.DType()))
	}

	outShape := make(tensor.Shape, 0, ndim)
	for i := 0; i < ndim; i++ {
		switch {
		case i != dim:
			outShape = append(outShape, shape[i])
		case keepDim:
			outShape = append(outShape, 1)
		}
	}

	result, err := tensor.NewRaw(outShape, tensor.Float32, cpu.device)
	if err != nil {
		panic(fmt.Sprintf("sumDim: %v", err))
	}
	if x.NumElements() == 0 {
		return result
	}

	src := x.AsFloat32()
	dst := result.AsFloat32()
	strides := shape.ComputeStrides()
	dimSize := shape[dim]
	dimStride := strides[dim]

	// outer iterates over dims before dim, inner over dims after it.
	outer := 1
	for i := 0; i < dim; i++ {
		outer *= shape[i]
	}
	inner := dimStride

	idx := 0
	for o := 0; o < outer; o++ {
		base := o * dimSize * inner
		for in := 0; in < inner; in++ {
			var sum float32
			for d := 0; d < dimSize; d++ {
				sum += src[base+d*inner+in]
			}
			dst[idx] = sum
			idx++
		}
	}
	return result
}
