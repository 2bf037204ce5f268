// Package optim implements optimization algorithms for training
// vector-quantized models.
//
// This package provides:
//   - Optimizer interface: Base interface for all optimizers
//   - SGD: Stochastic Gradient Descent with momentum
//   - Adam: Adaptive Moment Estimation
//
// Design inspired by PyTorch's torch.optim but adapted for Go with type safety.
//
// Example usage:
//
//	optimizer := optim.NewAdam(vq.Parameters(), optim.AdamConfig{
//	    LR: 0.001,
//	}, backend)
//
//	for step := range steps {
//	    result := vq.Quantize(latents)
//	    grads, _ := backend.Tape().Backward(result.Loss.Raw(), backend)
//	    optimizer.Step(grads)
//	    optimizer.ZeroGrad()
//	    backend.Tape().Reset()
//	}
package optim

import (
	"github.com/vqnn-ml/vqnn/internal/nn"
	"github.com/vqnn-ml/vqnn/internal/tensor"
)

// Optimizer is the base interface for all optimization algorithms.
//
// Optimizers update model parameters based on computed gradients to
// minimize the loss function during training.
type Optimizer interface {
	// Step applies gradient updates to all parameters.
	//
	// Takes the gradient map produced by a tape's Backward call and
	// updates parameters in place. Parameters absent from the map are
	// skipped.
	Step(grads map[*tensor.RawTensor]*tensor.RawTensor)

	// ZeroGrad clears all parameter gradients.
	//
	// Call before each backward pass to prevent gradient accumulation
	// from previous iterations.
	ZeroGrad()

	// GetLR returns the current learning rate.
	GetLR() float32
}

// Config is the base configuration for all optimizers.
type Config struct {
	LR float32 // Learning rate
}

// getGradient retrieves the gradient for a parameter.
//
// Returns nil if no gradient is found (parameter wasn't part of the
// computation graph).
func getGradient[B tensor.Backend](param *nn.Parameter[B], grads map[*tensor.RawTensor]*tensor.RawTensor) *tensor.RawTensor {
	if param == nil {
		return nil
	}
	return grads[param.Tensor().Raw()]
}
