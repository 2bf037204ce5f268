package cpu

import (
	"fmt"

	"github.com/vqnn-ml/vqnn/internal/tensor"
)

// Argmin returns the index of the minimum value along dim as an int32
// tensor with that dimension removed. Ties break toward the lower
// index: the first minimum encountered wins. Supports negative dim
// indexing.
func (cpu *CPUBackend) Argmin(x *tensor.RawTensor, dim int) *tensor.RawTensor {
	shape := x.Shape()
	ndim := len(shape)
	if dim < 0 {
		dim = ndim + dim
	}
	if dim < 0 || dim >= ndim {
		panic(fmt.Sprintf("argmin: dimension %d out of range for %dD tensor", dim, ndim))
	}
	if x.DType() != tensor.Float32 {
		panic(fmt.Sprintf("argmin: unsupported dtype %s (only float32 supported)", x.DType()))
	}
	if shape[dim] == 0 {
		panic(fmt.Sprintf("argmin: dimension %d has size 0", dim))
	}

	outShape := make(tensor.Shape, 0, ndim-1)
	for i := 0; i < ndim; i++ {
		if i != dim {
			outShape = append(outShape, shape[i])
		}
	}

	result, err := tensor.NewRaw(outShape, tensor.Int32, cpu.device)
	if err != nil {
		panic(fmt.Sprintf("argmin: %v", err))
	}
	if x.NumElements() == 0 {
		return result
	}

	src := x.AsFloat32()
	dst := result.AsInt32()
	strides := shape.ComputeStrides()
	dimSize := shape[dim]
	dimStride := strides[dim]

	outer := 1
	for i := 0; i < dim; i++ {
		outer *= shape[i]
	}
	inner := dimStride

	idx := 0
	for o := 0; o < outer; o++ {
		base := o * dimSize * inner
		for in := 0; in < inner; in++ {
			best := src[base+in]
			bestIdx := int32(0)
			for d := 1; d < dimSize; d++ {
				if v := src[base+d*inner+in]; v < best {
					best = v
					bestIdx = int32(d)
				}
			}
			dst[idx] = bestIdx
			idx++
		}
	}
	return result
}

// OneHot expands int32 indices of shape [N] into an N×numClasses
// float32 selection matrix: row i holds a single 1 at column
// indices[i]. Panics on out-of-range indices.
func (cpu *CPUBackend) OneHot(indices *tensor.RawTensor, numClasses int) *tensor.RawTensor {
	if indices.DType() != tensor.Int32 {
		panic(fmt.Sprintf("oneHot: indices must be int32, got %s", indices.DType()))
	}
	if len(indices.Shape()) != 1 {
		panic(fmt.Sprintf("oneHot: indices must be 1D, got shape %v", indices.Shape()))
	}
	if numClasses <= 0 {
		panic(fmt.Sprintf("oneHot: numClasses must be positive, got %d", numClasses))
	}

	n := indices.Shape()[0]
	result, err := tensor.NewRaw(tensor.Shape{n, numClasses}, tensor.Float32, cpu.device)
	if err != nil {
		panic(fmt.Sprintf("oneHot: %v", err))
	}

	src := indices.AsInt32()
	dst := result.AsFloat32()
	for i, idx := range src {
		if idx < 0 || int(idx) >= numClasses {
			panic(fmt.Sprintf("oneHot: index %d out of range [0, %d) at row %d", idx, numClasses, i))
		}
		dst[i*numClasses+int(idx)] = 1
	}
	return result
}
