package nn

import (
	"fmt"

	"github.com/vqnn-ml/vqnn/internal/tensor"
)

// MSELoss computes Mean Squared Error loss.
//
// Loss = mean((predictions - targets)²)
//
// The reduction runs through the backend's Mean so gradients flow when
// the backend records a tape. An empty input (zero elements) produces a
// loss of 0.
//
// Example:
//
//	mse := nn.NewMSELoss(backend)
//	predictions := model.Forward(input)
//	loss := mse.Forward(predictions, targets)
type MSELoss[B tensor.Backend] struct {
	backend B
}

// NewMSELoss creates a new MSE loss function.
func NewMSELoss[B tensor.Backend](backend B) *MSELoss[B] {
	return &MSELoss[B]{
		backend: backend,
	}
}

// Forward computes the MSE loss.
//
// Predictions and targets must have the same shape. Returns a
// single-element tensor of shape [1].
func (m *MSELoss[B]) Forward(predictions, targets *tensor.Tensor[float32, B]) *tensor.Tensor[float32, B] {
	if !predictions.Shape().Equal(targets.Shape()) {
		panic(fmt.Sprintf("MSELoss: shape mismatch %v vs %v",
			predictions.Shape(), targets.Shape()))
	}

	diff := predictions.Sub(targets)
	squared := diff.Mul(diff)
	return squared.Mean()
}

// Parameters returns an empty slice (loss functions have no trainable parameters).
func (m *MSELoss[B]) Parameters() []*Parameter[B] {
	return nil
}
