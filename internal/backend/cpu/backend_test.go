package cpu

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/vqnn-ml/vqnn/internal/tensor"
)

func fromSlice(t *testing.T, data []float32, shape tensor.Shape) *tensor.RawTensor {
	t.Helper()
	x, err := tensor.FromSlice(data, shape, New())
	require.NoError(t, err)
	return x.Raw()
}

func TestAdd_SameShape(t *testing.T) {
	backend := New()

	a := fromSlice(t, []float32{1, 2, 3, 4}, tensor.Shape{2, 2})
	b := fromSlice(t, []float32{10, 20, 30, 40}, tensor.Shape{2, 2})

	result := backend.Add(a, b)
	assert.Equal(t, []float32{11, 22, 33, 44}, result.AsFloat32())
}

func TestAdd_BroadcastColumnAgainstRow(t *testing.T) {
	backend := New()

	// [2, 1] + [3] -> [2, 3], the shape pattern of the distance matrix
	// assembly |q|^2 + |e|^2.
	col := fromSlice(t, []float32{1, 2}, tensor.Shape{2, 1})
	row := fromSlice(t, []float32{10, 20, 30}, tensor.Shape{3})

	result := backend.Add(col, row)
	assert.True(t, result.Shape().Equal(tensor.Shape{2, 3}))
	assert.Equal(t, []float32{11, 21, 31, 12, 22, 32}, result.AsFloat32())
}

func TestSub_Broadcast(t *testing.T) {
	backend := New()

	a := fromSlice(t, []float32{10, 20, 30, 40}, tensor.Shape{2, 2})
	b := fromSlice(t, []float32{1, 2}, tensor.Shape{2})

	result := backend.Sub(a, b)
	assert.Equal(t, []float32{9, 18, 29, 38}, result.AsFloat32())
}

func TestMulScalar(t *testing.T) {
	backend := New()

	x := fromSlice(t, []float32{1, -2, 3}, tensor.Shape{3})
	result := backend.MulScalar(x, 2)
	assert.Equal(t, []float32{2, -4, 6}, result.AsFloat32())
}

func TestMatMul_KnownValues(t *testing.T) {
	backend := New()

	// [2x3] @ [3x2]
	a := fromSlice(t, []float32{1, 2, 3, 4, 5, 6}, tensor.Shape{2, 3})
	b := fromSlice(t, []float32{7, 8, 9, 10, 11, 12}, tensor.Shape{3, 2})

	result := backend.MatMul(a, b)
	assert.True(t, result.Shape().Equal(tensor.Shape{2, 2}))
	assert.InDeltaSlice(t, []float32{58, 64, 139, 154}, result.AsFloat32(), 1e-5)
}

func TestMatMul_ShapeMismatch(t *testing.T) {
	backend := New()

	a := fromSlice(t, []float32{1, 2, 3, 4}, tensor.Shape{2, 2})
	b := fromSlice(t, []float32{1, 2, 3}, tensor.Shape{3, 1})

	assert.Panics(t, func() { backend.MatMul(a, b) })
}

func TestMatMul_EmptyLeft(t *testing.T) {
	backend := New()

	a := fromSlice(t, nil, tensor.Shape{0, 3})
	b := fromSlice(t, []float32{1, 2, 3, 4, 5, 6}, tensor.Shape{3, 2})

	result := backend.MatMul(a, b)
	assert.True(t, result.Shape().Equal(tensor.Shape{0, 2}))
	assert.Equal(t, 0, result.NumElements())
}

func TestReshape_PreservesOrder(t *testing.T) {
	backend := New()

	x := fromSlice(t, []float32{1, 2, 3, 4, 5, 6}, tensor.Shape{2, 3})
	result := backend.Reshape(x, tensor.Shape{3, 2})

	assert.True(t, result.Shape().Equal(tensor.Shape{3, 2}))
	assert.Equal(t, []float32{1, 2, 3, 4, 5, 6}, result.AsFloat32())
}

func TestReshape_ElementCountMismatch(t *testing.T) {
	backend := New()

	x := fromSlice(t, []float32{1, 2, 3, 4}, tensor.Shape{2, 2})
	assert.Panics(t, func() { backend.Reshape(x, tensor.Shape{3, 2}) })
}

func TestTranspose_2D(t *testing.T) {
	backend := New()

	x := fromSlice(t, []float32{1, 2, 3, 4, 5, 6}, tensor.Shape{2, 3})
	result := backend.Transpose(x, 1, 0)

	assert.True(t, result.Shape().Equal(tensor.Shape{3, 2}))
	assert.Equal(t, []float32{1, 4, 2, 5, 3, 6}, result.AsFloat32())
}

func TestTranspose_ChannelFirstToChannelLast(t *testing.T) {
	backend := New()

	// [1, 2, 1, 3] NCHW -> [1, 1, 3, 2] NHWC: channel becomes the
	// fastest-varying axis.
	x := fromSlice(t, []float32{
		1, 2, 3, // channel 0
		4, 5, 6, // channel 1
	}, tensor.Shape{1, 2, 1, 3})

	result := backend.Transpose(x, 0, 2, 3, 1)
	assert.True(t, result.Shape().Equal(tensor.Shape{1, 1, 3, 2}))
	assert.Equal(t, []float32{1, 4, 2, 5, 3, 6}, result.AsFloat32())
}

func TestTranspose_RoundTrip(t *testing.T) {
	backend := New()

	x := fromSlice(t, []float32{
		1, 2, 3, 4, 5, 6, 7, 8,
		9, 10, 11, 12, 13, 14, 15, 16,
	}, tensor.Shape{2, 2, 2, 2})

	there := backend.Transpose(x, 0, 2, 3, 1)
	back := backend.Transpose(there, 0, 3, 1, 2)

	assert.True(t, back.Shape().Equal(x.Shape()))
	assert.Equal(t, x.AsFloat32(), back.AsFloat32())
}

func TestTranspose_InvalidAxes(t *testing.T) {
	backend := New()

	x := fromSlice(t, []float32{1, 2, 3, 4}, tensor.Shape{2, 2})
	assert.Panics(t, func() { backend.Transpose(x, 0, 0) })
	assert.Panics(t, func() { backend.Transpose(x, 0, 2) })
}

func TestSum(t *testing.T) {
	backend := New()

	x := fromSlice(t, []float32{1, 2, 3, 4}, tensor.Shape{2, 2})
	result := backend.Sum(x)

	assert.True(t, result.Shape().Equal(tensor.Shape{1}))
	assert.InDelta(t, 10.0, result.AsFloat32()[0], 1e-6)
}

func TestMean(t *testing.T) {
	backend := New()

	x := fromSlice(t, []float32{1, 2, 3, 4}, tensor.Shape{4})
	result := backend.Mean(x)
	assert.InDelta(t, 2.5, result.AsFloat32()[0], 1e-6)
}

func TestMean_EmptyIsZero(t *testing.T) {
	backend := New()

	x := fromSlice(t, nil, tensor.Shape{0, 3})
	result := backend.Mean(x)
	assert.InDelta(t, 0.0, result.AsFloat32()[0], 1e-6)
}

func TestSumDim(t *testing.T) {
	backend := New()

	x := fromSlice(t, []float32{1, 2, 3, 4, 5, 6}, tensor.Shape{2, 3})

	rows := backend.SumDim(x, 1, false)
	assert.True(t, rows.Shape().Equal(tensor.Shape{2}))
	assert.Equal(t, []float32{6, 15}, rows.AsFloat32())

	rowsKept := backend.SumDim(x, 1, true)
	assert.True(t, rowsKept.Shape().Equal(tensor.Shape{2, 1}))
	assert.Equal(t, []float32{6, 15}, rowsKept.AsFloat32())

	cols := backend.SumDim(x, 0, false)
	assert.True(t, cols.Shape().Equal(tensor.Shape{3}))
	assert.Equal(t, []float32{5, 7, 9}, cols.AsFloat32())
}

func TestArgmin_Basic(t *testing.T) {
	backend := New()

	x := fromSlice(t, []float32{
		3, 1, 2,
		0, 5, -1,
	}, tensor.Shape{2, 3})

	result := backend.Argmin(x, 1)
	assert.True(t, result.Shape().Equal(tensor.Shape{2}))
	assert.Equal(t, []int32{1, 2}, result.AsInt32())
}

func TestArgmin_TieBreaksToLowerIndex(t *testing.T) {
	backend := New()

	x := fromSlice(t, []float32{
		2, 1, 1, 2,
		0, 0, 0, 0,
	}, tensor.Shape{2, 4})

	result := backend.Argmin(x, 1)
	assert.Equal(t, []int32{1, 0}, result.AsInt32())
}

func TestArgmin_EmptyDimPanics(t *testing.T) {
	backend := New()

	x := fromSlice(t, nil, tensor.Shape{2, 0})
	assert.Panics(t, func() { backend.Argmin(x, 1) })
}

func TestOneHot(t *testing.T) {
	backend := New()

	indices, err := tensor.FromSlice([]int32{2, 0, 1}, tensor.Shape{3}, backend)
	require.NoError(t, err)

	result := backend.OneHot(indices.Raw(), 3)
	assert.True(t, result.Shape().Equal(tensor.Shape{3, 3}))
	assert.Equal(t, []float32{
		0, 0, 1,
		1, 0, 0,
		0, 1, 0,
	}, result.AsFloat32())
}

func TestOneHot_OutOfRangePanics(t *testing.T) {
	backend := New()

	indices, err := tensor.FromSlice([]int32{3}, tensor.Shape{1}, backend)
	require.NoError(t, err)

	assert.Panics(t, func() { backend.OneHot(indices.Raw(), 3) })
}

func TestOneHotMatMul_SelectsRows(t *testing.T) {
	backend := New()

	// The codebook lookup: onehot [N, K] @ codebook [K, D] picks exact
	// codebook rows.
	codebook := fromSlice(t, []float32{
		0, 0,
		10, 10,
		-10, 10,
		10, -10,
	}, tensor.Shape{4, 2})

	indices, err := tensor.FromSlice([]int32{1, 3}, tensor.Shape{2}, backend)
	require.NoError(t, err)

	onehot := backend.OneHot(indices.Raw(), 4)
	selected := backend.MatMul(onehot, codebook)

	assert.InDeltaSlice(t, []float32{10, 10, 10, -10}, selected.AsFloat32(), 1e-6)
}

func TestConstant_IsIndependentCopy(t *testing.T) {
	backend := New()

	x := fromSlice(t, []float32{1, 2, 3}, tensor.Shape{3})
	c := backend.Constant(x)

	assert.Equal(t, x.AsFloat32(), c.AsFloat32())
	c.AsFloat32()[0] = 42
	assert.InDelta(t, 1.0, x.AsFloat32()[0], 1e-6)
}

func TestConv2D_Identity(t *testing.T) {
	backend := New()

	// 1x1 kernel with weight 1 is the identity.
	input := fromSlice(t, []float32{1, 2, 3, 4}, tensor.Shape{1, 1, 2, 2})
	kernel := fromSlice(t, []float32{1}, tensor.Shape{1, 1, 1, 1})

	result := backend.Conv2D(input, kernel, 1, 0)
	assert.True(t, result.Shape().Equal(tensor.Shape{1, 1, 2, 2}))
	assert.InDeltaSlice(t, []float32{1, 2, 3, 4}, result.AsFloat32(), 1e-6)
}

func TestConv2D_KnownValues(t *testing.T) {
	backend := New()

	// 3x3 input, 2x2 kernel of ones: each output is a window sum.
	input := fromSlice(t, []float32{
		1, 2, 3,
		4, 5, 6,
		7, 8, 9,
	}, tensor.Shape{1, 1, 3, 3})
	kernel := fromSlice(t, []float32{1, 1, 1, 1}, tensor.Shape{1, 1, 2, 2})

	result := backend.Conv2D(input, kernel, 1, 0)
	assert.True(t, result.Shape().Equal(tensor.Shape{1, 1, 2, 2}))
	assert.InDeltaSlice(t, []float32{12, 16, 24, 28}, result.AsFloat32(), 1e-5)
}

func TestConv2D_Padding(t *testing.T) {
	backend := New()

	input := fromSlice(t, []float32{1, 2, 3, 4}, tensor.Shape{1, 1, 2, 2})
	kernel := fromSlice(t, []float32{
		0, 0, 0,
		0, 1, 0,
		0, 0, 0,
	}, tensor.Shape{1, 1, 3, 3})

	// Same-padding identity: 3x3 center-only kernel with padding 1.
	result := backend.Conv2D(input, kernel, 1, 1)
	assert.True(t, result.Shape().Equal(tensor.Shape{1, 1, 2, 2}))
	assert.InDeltaSlice(t, []float32{1, 2, 3, 4}, result.AsFloat32(), 1e-6)
}
