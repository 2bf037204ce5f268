package ops

import (
	"fmt"

	"github.com/vqnn-ml/vqnn/internal/tensor"
)

// reduceBroadcast sums outputGrad back down to targetShape, undoing
// forward-pass broadcasting. Broadcast dimensions (size 1 or padded
// leading dims) receive the sum of every gradient element they were
// expanded to.
func reduceBroadcast(grad *tensor.RawTensor, targetShape tensor.Shape, _ tensor.Backend) *tensor.RawTensor {
	if grad.Shape().Equal(targetShape) {
		return grad
	}

	result, err := tensor.NewRaw(targetShape, grad.DType(), grad.Device())
	if err != nil {
		panic(fmt.Sprintf("reduceBroadcast: %v", err))
	}
	if grad.NumElements() == 0 {
		return result
	}

	gradShape := grad.Shape()
	gradStrides := gradShape.ComputeStrides()
	targetStrides := broadcastAdjustedStrides(targetShape, gradShape)

	src := grad.AsFloat32()
	dst := result.AsFloat32()
	for i, v := range src {
		dst[flatTargetIndex(i, gradStrides, targetStrides)] += v
	}
	return result
}

// broadcastTo expands t to targetShape under broadcasting rules.
func broadcastTo(t *tensor.RawTensor, targetShape tensor.Shape) *tensor.RawTensor {
	if t.Shape().Equal(targetShape) {
		return t
	}

	result, err := tensor.NewRaw(targetShape, t.DType(), t.Device())
	if err != nil {
		panic(fmt.Sprintf("broadcastTo: %v", err))
	}
	if result.NumElements() == 0 {
		return result
	}

	srcStrides := broadcastAdjustedStrides(t.Shape(), targetShape)
	dstStrides := targetShape.ComputeStrides()

	src := t.AsFloat32()
	dst := result.AsFloat32()
	for i := range dst {
		dst[i] = src[flatTargetIndex(i, dstStrides, srcStrides)]
	}
	return result
}

// broadcastAdjustedStrides computes strides mapping coordinates of
// outShape onto inShape, with stride 0 on broadcast dimensions.
func broadcastAdjustedStrides(inShape, outShape tensor.Shape) []int {
	outDim := len(outShape)
	strides := make([]int, outDim)
	offset := outDim - len(inShape)
	origStrides := inShape.ComputeStrides()

	for i := 0; i < outDim; i++ {
		inIdx := i - offset
		if inIdx < 0 || inShape[inIdx] == 1 {
			strides[i] = 0
		} else {
			strides[i] = origStrides[inIdx]
		}
	}
	return strides
}

func flatTargetIndex(outIdx int, outStrides, inStrides []int) int {
	flatIdx := 0
	for i := range outStrides {
		coord := outIdx / outStrides[i]
		outIdx %= outStrides[i]
		flatIdx += coord * inStrides[i]
	}
	return flatIdx
}

// negate returns -x.
func negate(x *tensor.RawTensor, backend tensor.Backend) *tensor.RawTensor {
	return backend.MulScalar(x, -1)
}

// fill creates a tensor of the given shape with every element set to v.
func fill(shape tensor.Shape, v float32) *tensor.RawTensor {
	result, err := tensor.NewRaw(shape, tensor.Float32, tensor.CPU)
	if err != nil {
		panic(fmt.Sprintf("fill: %v", err))
	}
	data := result.AsFloat32()
	for i := range data {
		data[i] = v
	}
	return result
}
