package optim

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/vqnn-ml/vqnn/internal/autodiff"
	"github.com/vqnn-ml/vqnn/internal/backend/cpu"
	"github.com/vqnn-ml/vqnn/internal/nn"
	"github.com/vqnn-ml/vqnn/internal/tensor"
)

type Backend = *autodiff.Backend

func newParam(t *testing.T, backend Backend, data []float32) *nn.Parameter[Backend] {
	t.Helper()
	x, err := tensor.FromSlice(data, tensor.Shape{len(data)}, backend)
	require.NoError(t, err)
	return nn.NewParameter("test.param", x)
}

func gradsFor(t *testing.T, backend Backend, param *nn.Parameter[Backend], data []float32) map[*tensor.RawTensor]*tensor.RawTensor {
	t.Helper()
	grad, err := tensor.FromSlice(data, tensor.Shape{len(data)}, backend)
	require.NoError(t, err)
	return map[*tensor.RawTensor]*tensor.RawTensor{
		param.Tensor().Raw(): grad.Raw(),
	}
}

func TestSGD_Step(t *testing.T) {
	backend := autodiff.New(cpu.New())

	param := newParam(t, backend, []float32{1, 2, 3})
	sgd := NewSGD([]*nn.Parameter[Backend]{param}, SGDConfig{LR: 0.1}, backend)

	sgd.Step(gradsFor(t, backend, param, []float32{1, -1, 0.5}))

	assert.InDeltaSlice(t, []float32{0.9, 2.1, 2.95}, param.Tensor().Data(), 1e-6)
}

func TestSGD_Momentum(t *testing.T) {
	backend := autodiff.New(cpu.New())

	param := newParam(t, backend, []float32{0})
	sgd := NewSGD([]*nn.Parameter[Backend]{param}, SGDConfig{LR: 0.1, Momentum: 0.9}, backend)

	// Step 1: velocity = 1, param = -0.1.
	sgd.Step(gradsFor(t, backend, param, []float32{1}))
	assert.InDelta(t, -0.1, param.Tensor().Data()[0], 1e-6)

	// Step 2: velocity = 0.9 + 1 = 1.9, param = -0.1 - 0.19 = -0.29.
	sgd.Step(gradsFor(t, backend, param, []float32{1}))
	assert.InDelta(t, -0.29, param.Tensor().Data()[0], 1e-6)
}

func TestSGD_SkipsParamsWithoutGradient(t *testing.T) {
	backend := autodiff.New(cpu.New())

	param := newParam(t, backend, []float32{1, 2})
	sgd := NewSGD([]*nn.Parameter[Backend]{param}, SGDConfig{LR: 0.1}, backend)

	sgd.Step(map[*tensor.RawTensor]*tensor.RawTensor{})

	assert.Equal(t, []float32{1, 2}, param.Tensor().Data())
}

func TestSGD_Defaults(t *testing.T) {
	backend := autodiff.New(cpu.New())

	sgd := NewSGD([]*nn.Parameter[Backend]{}, SGDConfig{}, backend)
	assert.InDelta(t, 0.01, sgd.GetLR(), 1e-9)
}

func TestAdam_FirstStepMovesByLR(t *testing.T) {
	backend := autodiff.New(cpu.New())

	param := newParam(t, backend, []float32{1})
	adam := NewAdam([]*nn.Parameter[Backend]{param}, AdamConfig{LR: 0.1}, backend)

	// With bias correction, the first Adam step is lr * g/(|g| + eps'),
	// essentially a full lr-sized step against the gradient sign.
	adam.Step(gradsFor(t, backend, param, []float32{2}))
	assert.InDelta(t, 0.9, param.Tensor().Data()[0], 1e-3)
}

func TestAdam_ConvergesOnQuadratic(t *testing.T) {
	backend := autodiff.New(cpu.New())

	// Minimize f(x) = mean((x - target)^2) with full autodiff passes.
	target, err := tensor.FromSlice([]float32{3, -2}, tensor.Shape{2}, backend)
	require.NoError(t, err)

	x := newParam(t, backend, []float32{0, 0})
	adam := NewAdam([]*nn.Parameter[Backend]{x}, AdamConfig{LR: 0.1}, backend)

	var loss *tensor.Tensor[float32, Backend]
	for step := 0; step < 300; step++ {
		backend.Tape().Reset()

		diff := x.Tensor().Sub(target.Constant())
		loss = diff.Mul(diff).Mean()

		grads, err := backend.Backward(loss.Raw())
		require.NoError(t, err)

		adam.Step(grads)
		adam.ZeroGrad()
	}

	assert.InDelta(t, 3.0, x.Tensor().Data()[0], 0.05)
	assert.InDelta(t, -2.0, x.Tensor().Data()[1], 0.05)
	assert.Less(t, loss.Item(), float32(0.01))
}

func TestAdam_Defaults(t *testing.T) {
	backend := autodiff.New(cpu.New())

	adam := NewAdam([]*nn.Parameter[Backend]{}, AdamConfig{}, backend)
	assert.InDelta(t, 0.001, adam.GetLR(), 1e-9)
}

func TestZeroGrad_ClearsParameterGradients(t *testing.T) {
	backend := autodiff.New(cpu.New())

	param := newParam(t, backend, []float32{1})
	grad, err := tensor.FromSlice([]float32{0.5}, tensor.Shape{1}, backend)
	require.NoError(t, err)
	param.SetGrad(grad)

	sgd := NewSGD([]*nn.Parameter[Backend]{param}, SGDConfig{LR: 0.1}, backend)
	sgd.ZeroGrad()

	assert.Nil(t, param.Grad())
}
