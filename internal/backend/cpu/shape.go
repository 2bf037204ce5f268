package cpu

import (
	"fmt"

	"github.com/vqnn-ml/vqnn/internal/tensor"
)

// Reshape returns a copy of t with a new shape.
// The new shape must describe the same number of elements.
func (cpu *CPUBackend) Reshape(t *tensor.RawTensor, newShape tensor.Shape) *tensor.RawTensor {
	if err := newShape.Validate(); err != nil {
		panic(fmt.Sprintf("reshape: %v", err))
	}
	if newShape.NumElements() != t.NumElements() {
		panic(fmt.Sprintf("reshape: cannot reshape %v (%d elements) to %v (%d elements)",
			t.Shape(), t.NumElements(), newShape, newShape.NumElements()))
	}

	result, err := tensor.NewRaw(newShape, t.DType(), cpu.device)
	if err != nil {
		panic(fmt.Sprintf("reshape: %v", err))
	}

	switch t.DType() {
	case tensor.Float32:
		copy(result.AsFloat32(), t.AsFloat32())
	case tensor.Int32:
		copy(result.AsInt32(), t.AsInt32())
	}
	return result
}

// Transpose permutes dimensions according to axes and returns a
// layout-contiguous copy. If axes is empty, all dimensions are
// reversed.
//
// The contiguous copy matters: the quantizer's channel-last rearrange
// is immediately followed by a flat reshape, which is only meaningful
// over dense row-major memory.
func (cpu *CPUBackend) Transpose(t *tensor.RawTensor, axes ...int) *tensor.RawTensor {
	shape := t.Shape()
	ndim := len(shape)

	if len(axes) == 0 {
		axes = make([]int, ndim)
		for i := range axes {
			axes[i] = ndim - 1 - i
		}
	}
	if len(axes) != ndim {
		panic(fmt.Sprintf("transpose: got %d axes for %dD tensor", len(axes), ndim))
	}

	seen := make([]bool, ndim)
	newShape := make(tensor.Shape, ndim)
	for i, ax := range axes {
		if ax < 0 || ax >= ndim || seen[ax] {
			panic(fmt.Sprintf("transpose: invalid axes %v for %dD tensor", axes, ndim))
		}
		seen[ax] = true
		newShape[i] = shape[ax]
	}

	result, err := tensor.NewRaw(newShape, t.DType(), cpu.device)
	if err != nil {
		panic(fmt.Sprintf("transpose: %v", err))
	}
	if t.NumElements() == 0 {
		return result
	}

	oldStrides := shape.ComputeStrides()
	newStrides := newShape.ComputeStrides()

	// Source strides reordered into output axis order: walking output
	// coordinates in row-major order while stepping the source by these
	// strides yields the permuted copy.
	srcStrides := make([]int, ndim)
	for i, ax := range axes {
		srcStrides[i] = oldStrides[ax]
	}

	switch t.DType() {
	case tensor.Float32:
		permuteCopy(result.AsFloat32(), t.AsFloat32(), newStrides, srcStrides)
	case tensor.Int32:
		permuteCopy(result.AsInt32(), t.AsInt32(), newStrides, srcStrides)
	}
	return result
}

func permuteCopy[T float32 | int32](dst, src []T, dstStrides, srcStrides []int) {
	for i := range dst {
		srcIdx := 0
		rem := i
		for d := 0; d < len(dstStrides); d++ {
			coord := rem / dstStrides[d]
			rem %= dstStrides[d]
			srcIdx += coord * srcStrides[d]
		}
		dst[i] = src[srcIdx]
	}
}
