package nn

import (
	"fmt"

	"github.com/vqnn-ml/vqnn/internal/tensor"
)

// VectorQuantizer maps continuous encoder outputs to the nearest entry
// of a learned codebook, the discrete bottleneck of a VQ-VAE.
//
// Architecture:
//   - Codebook: [NumCodes, CodeDim] learnable parameter, initialized
//     from U(-1/NumCodes, 1/NumCodes)
//   - Forward: latents [batch, CodeDim, h, w] -> quantized latents of
//     the same shape, with straight-through gradients to the input
//   - Training signal: codebook loss + Beta * commitment loss, both
//     plain MSE terms with one side gradient-blocked
//
// The quantizer holds no state besides the codebook; a forward pass is
// deterministic given the input and the codebook values.
//
// Example:
//
//	vq := nn.NewVectorQuantizer[B](512, 64, 0.25, backend)
//	result := vq.Quantize(latents) // latents: [batch, 64, h, w]
//	decoderInput := result.Quantized
//	trainLoss := reconLoss.Add(result.Loss)
type VectorQuantizer[B tensor.Backend] struct {
	Codebook *Parameter[B] // Code vectors [NumCodes, CodeDim]
	NumCodes int           // Number of discrete codes (K)
	CodeDim  int           // Dimension of each code vector (D)
	Beta     float32       // Commitment loss weight
	backend  B
}

// QuantizeResult bundles the outputs of a quantization pass.
type QuantizeResult[B tensor.Backend] struct {
	// Quantized holds the selected code vectors rearranged back to
	// [batch, CodeDim, h, w]. Its values equal the codebook entries;
	// its gradient with respect to the input is the identity.
	Quantized *tensor.Tensor[float32, B]

	// Loss is CodebookLoss + Beta * CommitmentLoss, shape [1].
	Loss *tensor.Tensor[float32, B]

	// CodebookLoss is the MSE between the gradient-blocked quantized
	// values and the encoder input. Minimizing it moves the encoder
	// toward its assigned codes.
	CodebookLoss *tensor.Tensor[float32, B]

	// CommitmentLoss is the MSE between the quantized values and the
	// gradient-blocked encoder input. Minimizing it moves the selected
	// codes toward the encoder outputs.
	CommitmentLoss *tensor.Tensor[float32, B]

	// Indices holds the selected code index per spatial position,
	// shape [batch, h, w].
	Indices *tensor.Tensor[int32, B]

	// CodeUsage counts how many positions selected each code. Entries
	// that stay zero across many batches indicate dead codes.
	CodeUsage []int
}

// NewVectorQuantizer creates a quantizer with numCodes code vectors of
// dimension codeDim and commitment weight beta.
//
// The codebook is initialized with independent uniform samples in
// [-1/numCodes, 1/numCodes].
//
// Panics if numCodes or codeDim is not positive, or if beta is negative.
func NewVectorQuantizer[B tensor.Backend](numCodes, codeDim int, beta float32, backend B) *VectorQuantizer[B] {
	if numCodes <= 0 {
		panic(fmt.Sprintf("vector quantizer: numCodes must be positive, got %d", numCodes))
	}
	if codeDim <= 0 {
		panic(fmt.Sprintf("vector quantizer: codeDim must be positive, got %d", codeDim))
	}
	if beta < 0 {
		panic(fmt.Sprintf("vector quantizer: beta must be non-negative, got %v", beta))
	}

	bound := 1.0 / float32(numCodes)
	codebook := Uniform(tensor.Shape{numCodes, codeDim}, -bound, bound, backend)

	return &VectorQuantizer[B]{
		Codebook: NewParameter[B]("vq.codebook", codebook),
		NumCodes: numCodes,
		CodeDim:  codeDim,
		Beta:     beta,
		backend:  backend,
	}
}

// NewVectorQuantizerWithCodebook creates a quantizer around an existing
// [numCodes, codeDim] codebook tensor. Useful for tests and for loading
// trained weights.
func NewVectorQuantizerWithCodebook[B tensor.Backend](codebook *tensor.Tensor[float32, B], beta float32) *VectorQuantizer[B] {
	shape := codebook.Shape()
	if len(shape) != 2 {
		panic(fmt.Sprintf("vector quantizer: codebook must be 2D, got shape %v", shape))
	}
	if beta < 0 {
		panic(fmt.Sprintf("vector quantizer: beta must be non-negative, got %v", beta))
	}

	return &VectorQuantizer[B]{
		Codebook: NewParameter[B]("vq.codebook", codebook),
		NumCodes: shape[0],
		CodeDim:  shape[1],
		Beta:     beta,
		backend:  codebook.Backend(),
	}
}

// Quantize maps every spatial position of the input to its nearest code
// vector and returns the straight-through quantized tensor together
// with the training losses and selection diagnostics.
//
// The input must have shape [batch, CodeDim, h, w]. Assignment uses
// squared Euclidean distance expanded as |q|^2 + |e|^2 - 2*q.e, so the
// N x K pairwise differences are never materialized. Distance ties
// resolve to the lowest code index.
//
// An empty input (zero batch or zero spatial extent) returns an empty
// quantized tensor, empty indices, and zero losses.
func (q *VectorQuantizer[B]) Quantize(input *tensor.Tensor[float32, B]) *QuantizeResult[B] {
	shape := input.Shape()
	if len(shape) != 4 {
		panic(fmt.Sprintf("vector quantizer: input must be 4D [batch, channels, h, w], got shape %v", shape))
	}
	if shape[1] != q.CodeDim {
		panic(fmt.Sprintf("vector quantizer: input has %d channels, codebook dimension is %d",
			shape[1], q.CodeDim))
	}

	batch, h, w := shape[0], shape[2], shape[3]
	n := batch * h * w

	if input.NumElements() == 0 {
		return q.emptyResult(shape)
	}

	// Channel-last copy, then flatten the spatial axes: every row of
	// flat is one query vector.
	bhwc := input.Transpose(0, 2, 3, 1)
	flat := bhwc.Reshape(n, q.CodeDim)

	// The distance matrix only drives index selection, which is not
	// differentiable, so it is computed on gradient-blocked copies.
	flatC := flat.Constant()
	codebook := q.Codebook.Tensor()
	codeC := codebook.Constant()

	queryNormSq := flatC.Mul(flatC).SumDim(1, true) // [n, 1]
	codeNormSq := codeC.Mul(codeC).SumDim(1, false) // [k]
	cross := flatC.MatMul(codeC.T()).MulScalar(2)   // [n, k]
	distances := queryNormSq.Add(codeNormSq).Sub(cross)

	indices := distances.Argmin(1) // [n]

	// One-hot selection times the live codebook: the matmul is the one
	// place gradients reach the codebook.
	onehot := tensor.OneHot(indices, q.NumCodes)
	quantFlat := onehot.MatMul(codebook)
	quantBHWC := quantFlat.Reshape(batch, h, w, q.CodeDim)

	codebookLoss := q.mse(quantBHWC.Constant(), bhwc)
	commitmentLoss := q.mse(quantBHWC, bhwc.Constant())
	loss := codebookLoss.Add(commitmentLoss.MulScalar(q.Beta))

	// Straight-through estimator: the forward value is the quantized
	// tensor, the backward pass sees only the input term.
	straightThrough := bhwc.Add(quantBHWC.Sub(bhwc).Constant())
	quantized := straightThrough.Transpose(0, 3, 1, 2)

	usage := make([]int, q.NumCodes)
	for _, idx := range indices.Data() {
		usage[idx]++
	}

	return &QuantizeResult[B]{
		Quantized:      quantized,
		Loss:           loss,
		CodebookLoss:   codebookLoss,
		CommitmentLoss: commitmentLoss,
		Indices:        indices.Reshape(batch, h, w),
		CodeUsage:      usage,
	}
}

// Forward quantizes the input and returns the straight-through output.
//
// Use Quantize when the losses or the selected indices are needed; this
// method exists to satisfy the Module interface.
func (q *VectorQuantizer[B]) Forward(input *tensor.Tensor[float32, B]) *tensor.Tensor[float32, B] {
	return q.Quantize(input).Quantized
}

// Parameters returns the codebook parameter.
func (q *VectorQuantizer[B]) Parameters() []*Parameter[B] {
	return []*Parameter[B]{q.Codebook}
}

// mse computes mean((a-b)^2) through the backend so the reduction is
// recorded when the backend carries a tape.
func (q *VectorQuantizer[B]) mse(a, b *tensor.Tensor[float32, B]) *tensor.Tensor[float32, B] {
	diff := a.Sub(b)
	return diff.Mul(diff).Mean()
}

func (q *VectorQuantizer[B]) emptyResult(shape tensor.Shape) *QuantizeResult[B] {
	batch, h, w := shape[0], shape[2], shape[3]
	return &QuantizeResult[B]{
		Quantized:      tensor.Zeros[float32](shape.Clone(), q.backend),
		Loss:           tensor.Zeros[float32](tensor.Shape{1}, q.backend),
		CodebookLoss:   tensor.Zeros[float32](tensor.Shape{1}, q.backend),
		CommitmentLoss: tensor.Zeros[float32](tensor.Shape{1}, q.backend),
		Indices:        tensor.Zeros[int32](tensor.Shape{batch, h, w}, q.backend),
		CodeUsage:      make([]int, q.NumCodes),
	}
}
