package nn

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/vqnn-ml/vqnn/internal/tensor"
)

func TestNewMaskedConv2D_Validation(t *testing.T) {
	backend := newBackend()

	assert.Panics(t, func() { NewMaskedConv2D(0, 1, 3, 1, 1, MaskTypeA, true, backend) })
	assert.Panics(t, func() { NewMaskedConv2D(1, 1, 4, 1, 1, MaskTypeA, true, backend) })
	assert.Panics(t, func() { NewMaskedConv2D(1, 1, 3, 0, 1, MaskTypeA, true, backend) })
	assert.Panics(t, func() { NewMaskedConv2D(1, 1, 3, 1, -1, MaskTypeA, true, backend) })
}

func TestMaskedConv2D_MaskPatternTypeA(t *testing.T) {
	backend := newBackend()

	conv := NewMaskedConv2D(1, 1, 3, 1, 1, MaskTypeA, false, backend)

	// Type A hides the center: only positions strictly before the
	// center in raster order are visible.
	expected := []float32{
		1, 1, 1,
		1, 0, 0,
		0, 0, 0,
	}
	assert.Equal(t, expected, conv.Mask().Data())
}

func TestMaskedConv2D_MaskPatternTypeB(t *testing.T) {
	backend := newBackend()

	conv := NewMaskedConv2D(1, 1, 3, 1, 1, MaskTypeB, false, backend)

	expected := []float32{
		1, 1, 1,
		1, 1, 0,
		0, 0, 0,
	}
	assert.Equal(t, expected, conv.Mask().Data())
}

func TestMaskedConv2D_MaskRepeatsPerChannelPlane(t *testing.T) {
	backend := newBackend()

	conv := NewMaskedConv2D(2, 3, 3, 1, 1, MaskTypeB, false, backend)
	mask := conv.Mask()

	assert.True(t, mask.Shape().Equal(tensor.Shape{3, 2, 3, 3}))

	plane := []float32{
		1, 1, 1,
		1, 1, 0,
		0, 0, 0,
	}
	data := mask.Data()
	for p := 0; p < 6; p++ {
		assert.Equal(t, plane, data[p*9:(p+1)*9], "mask differs in plane %d", p)
	}
}

func TestMaskedConv2D_ForwardIgnoresFuturePositions(t *testing.T) {
	backend := newBackend()

	conv := NewMaskedConv2D(1, 1, 3, 1, 1, MaskTypeA, false, backend)

	// Force all weights to 1; the mask must still zero out the hidden
	// half of the kernel.
	for i, data := 0, conv.weight.Tensor().Data(); i < len(data); i++ {
		data[i] = 1
	}

	// Single hot pixel in the center of a 3x3 input.
	input, err := tensor.FromSlice([]float32{
		0, 0, 0,
		0, 1, 0,
		0, 0, 0,
	}, tensor.Shape{1, 1, 3, 3}, backend)
	require.NoError(t, err)

	output := conv.Forward(input)
	require.True(t, output.Shape().Equal(tensor.Shape{1, 1, 3, 3}))

	// The hot pixel may only influence outputs strictly after it in
	// raster order (type A excludes the center itself).
	expected := []float32{
		0, 0, 0,
		0, 0, 1,
		1, 1, 1,
	}
	assert.InDeltaSlice(t, expected, output.Data(), 1e-5)
}

func TestMaskedConv2D_ForwardWithBias(t *testing.T) {
	backend := newBackend()

	conv := NewMaskedConv2D(1, 2, 3, 1, 1, MaskTypeB, true, backend)

	// Zero weights, bias per output channel: output is the bias map.
	for i, data := 0, conv.weight.Tensor().Data(); i < len(data); i++ {
		data[i] = 0
	}
	conv.bias.Tensor().Set(0.5, 0)
	conv.bias.Tensor().Set(-1.5, 1)

	input := tensor.Zeros[float32](tensor.Shape{1, 1, 2, 2}, backend)
	output := conv.Forward(input)

	require.True(t, output.Shape().Equal(tensor.Shape{1, 2, 2, 2}))
	assert.InDeltaSlice(t, []float32{0.5, 0.5, 0.5, 0.5, -1.5, -1.5, -1.5, -1.5}, output.Data(), 1e-6)
}

func TestMaskedConv2D_MaskedWeightsGetNoGradient(t *testing.T) {
	backend := newBackend()

	conv := NewMaskedConv2D(1, 1, 3, 1, 1, MaskTypeA, false, backend)

	input := tensor.Uniform(tensor.Shape{1, 1, 4, 4}, -1, 1, backend)
	loss := conv.Forward(input).Mul(conv.Forward(input)).Mean()

	grads, err := backend.Backward(loss.Raw())
	require.NoError(t, err)

	weightGrad := grads[conv.weight.Tensor().Raw()]
	require.NotNil(t, weightGrad)

	grad := weightGrad.AsFloat32()
	mask := conv.Mask().Data()
	for i := range mask {
		if mask[i] == 0 {
			assert.InDelta(t, 0.0, grad[i], 1e-6, "hidden position %d received gradient", i)
		}
	}
}

func TestMaskedConv2D_InputValidation(t *testing.T) {
	backend := newBackend()

	conv := NewMaskedConv2D(2, 1, 3, 1, 1, MaskTypeB, false, backend)

	assert.Panics(t, func() {
		conv.Forward(tensor.Zeros[float32](tensor.Shape{2, 2}, backend))
	})
	assert.Panics(t, func() {
		conv.Forward(tensor.Zeros[float32](tensor.Shape{1, 3, 4, 4}, backend))
	})
}

func TestMaskType_String(t *testing.T) {
	assert.Equal(t, "A", MaskTypeA.String())
	assert.Equal(t, "B", MaskTypeB.String())
}
