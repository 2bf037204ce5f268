package autodiff

import (
	"fmt"

	"github.com/vqnn-ml/vqnn/internal/autodiff/ops"
	"github.com/vqnn-ml/vqnn/internal/tensor"
)

// GradientTape records differentiable operations during the forward
// pass and replays them in reverse to compute gradients.
//
// Operations are appended in execution order. Backward seeds the
// gradient at a caller-chosen output tensor and walks the recorded
// operations from newest to oldest, accumulating per-tensor gradients.
// Tensors with no recorded producer (constants, raw inputs) simply
// never contribute further upstream, which is exactly how detached
// branches stop gradient flow.
//
// A tape is not safe for concurrent use.
type GradientTape struct {
	operations []ops.Operation
	recording  bool
}

// NewGradientTape creates a tape that is already recording.
func NewGradientTape() *GradientTape {
	return &GradientTape{recording: true}
}

// Record appends an operation to the tape if recording is enabled.
func (t *GradientTape) Record(op ops.Operation) {
	if t.recording {
		t.operations = append(t.operations, op)
	}
}

// StopRecording disables recording of new operations.
func (t *GradientTape) StopRecording() { t.recording = false }

// ResumeRecording re-enables recording of new operations.
func (t *GradientTape) ResumeRecording() { t.recording = true }

// Reset clears all recorded operations and resumes recording.
func (t *GradientTape) Reset() {
	t.operations = t.operations[:0]
	t.recording = true
}

// NumOperations returns the number of recorded operations.
func (t *GradientTape) NumOperations() int { return len(t.operations) }

// Backward computes gradients of output with respect to every tensor
// reachable from it through recorded operations. The gradient at
// output is seeded with ones (the usual choice for a scalar loss).
//
// The returned map is keyed by tensor identity; look gradients up with
// the same *RawTensor that went through the forward pass.
func (t *GradientTape) Backward(output *tensor.RawTensor, backend tensor.Backend) (map[*tensor.RawTensor]*tensor.RawTensor, error) {
	if output == nil {
		return nil, fmt.Errorf("backward: output tensor is nil")
	}
	if len(t.operations) == 0 {
		return nil, fmt.Errorf("backward: no operations recorded on tape")
	}

	seed, err := tensor.NewRaw(output.Shape(), output.DType(), output.Device())
	if err != nil {
		return nil, fmt.Errorf("backward: allocating seed gradient: %w", err)
	}
	for i, data := 0, seed.AsFloat32(); i < len(data); i++ {
		data[i] = 1
	}

	grads := map[*tensor.RawTensor]*tensor.RawTensor{output: seed}

	for i := len(t.operations) - 1; i >= 0; i-- {
		op := t.operations[i]
		outputGrad, ok := grads[op.Output()]
		if !ok {
			// This operation's output does not influence the seeded
			// output tensor (a detached or unused branch).
			continue
		}

		inputGrads := op.Backward(outputGrad, backend)
		inputs := op.Inputs()
		if len(inputGrads) != len(inputs) {
			return nil, fmt.Errorf("backward: op %T returned %d gradients for %d inputs",
				op, len(inputGrads), len(inputs))
		}

		for j, grad := range inputGrads {
			if grad == nil {
				continue
			}
			input := inputs[j]
			if existing, ok := grads[input]; ok {
				grads[input] = backend.Add(existing, grad)
			} else {
				grads[input] = grad
			}
		}
	}

	return grads, nil
}
