package nn

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/vqnn-ml/vqnn/internal/tensor"
)

func TestMSELoss_KnownValues(t *testing.T) {
	backend := newBackend()
	mse := NewMSELoss(backend)

	predictions, err := tensor.FromSlice([]float32{1, 2, 3, 4}, tensor.Shape{2, 2}, backend)
	require.NoError(t, err)
	targets, err := tensor.FromSlice([]float32{2, 2, 5, 4}, tensor.Shape{2, 2}, backend)
	require.NoError(t, err)

	loss := mse.Forward(predictions, targets)

	// Squared errors: 1, 0, 4, 0 -> mean 1.25.
	assert.InDelta(t, 1.25, loss.Item(), 1e-6)
}

func TestMSELoss_PerfectPredictionIsZero(t *testing.T) {
	backend := newBackend()
	mse := NewMSELoss(backend)

	x := tensor.Uniform(tensor.Shape{3, 3}, -1, 1, backend)
	loss := mse.Forward(x, x.Clone())

	assert.InDelta(t, 0.0, loss.Item(), 1e-6)
}

func TestMSELoss_ShapeMismatchPanics(t *testing.T) {
	backend := newBackend()
	mse := NewMSELoss(backend)

	a := tensor.Zeros[float32](tensor.Shape{2, 2}, backend)
	b := tensor.Zeros[float32](tensor.Shape{2, 3}, backend)

	assert.Panics(t, func() { mse.Forward(a, b) })
}

func TestMSELoss_GradientFlows(t *testing.T) {
	backend := newBackend()
	mse := NewMSELoss(backend)

	predictions, err := tensor.FromSlice([]float32{3, 5}, tensor.Shape{2}, backend)
	require.NoError(t, err)
	targets, err := tensor.FromSlice([]float32{1, 1}, tensor.Shape{2}, backend)
	require.NoError(t, err)

	loss := mse.Forward(predictions, targets.Constant())

	grads, err := backend.Backward(loss.Raw())
	require.NoError(t, err)

	// d mean((p - t)^2)/dp = 2(p - t)/n = (p - t) for n = 2.
	grad := grads[predictions.Raw()]
	require.NotNil(t, grad)
	assert.InDeltaSlice(t, []float32{2, 4}, grad.AsFloat32(), 1e-5)
	assert.Nil(t, grads[targets.Raw()])
}

func TestMSELoss_EmptyInputIsZero(t *testing.T) {
	backend := newBackend()
	mse := NewMSELoss(backend)

	a := tensor.Zeros[float32](tensor.Shape{0, 4}, backend)
	b := tensor.Zeros[float32](tensor.Shape{0, 4}, backend)

	loss := mse.Forward(a, b)
	assert.InDelta(t, 0.0, loss.Item(), 1e-6)
}
