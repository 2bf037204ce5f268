package nn

import (
	"fmt"

	"github.com/vqnn-ml/vqnn/internal/tensor"
)

// MaskType selects the causal mask variant of a MaskedConv2D.
type MaskType int

const (
	// MaskTypeA blocks the center position of the kernel. Used for the
	// first layer of an autoregressive prior, where the prediction for
	// a pixel must not see that pixel itself.
	MaskTypeA MaskType = iota

	// MaskTypeB keeps the center position. Used for all subsequent
	// layers, where the center already carries only causal context.
	MaskTypeB
)

// String returns "A" or "B".
func (m MaskType) String() string {
	switch m {
	case MaskTypeA:
		return "A"
	case MaskTypeB:
		return "B"
	default:
		return fmt.Sprintf("MaskType(%d)", int(m))
	}
}

// MaskedConv2D is a 2D convolution whose kernel is masked to respect
// raster-scan order: each output position only sees input positions
// above it, or to its left in the same row. Stacking masked
// convolutions yields a PixelCNN-style autoregressive model over the
// discrete code grid produced by a VectorQuantizer.
//
// Input shape:  [batch, in_channels, height, width]
// Weight shape: [out_channels, in_channels, kernel, kernel]
// Output shape: [batch, out_channels, out_h, out_w]
//
// The mask is applied to the weights on every forward pass, so masked
// positions also receive zero gradient and stay zero under training.
//
// Example:
//
//	first := nn.NewMaskedConv2D[B](1, 64, 7, 1, 3, nn.MaskTypeA, true, backend)
//	hidden := nn.NewMaskedConv2D[B](64, 64, 3, 1, 1, nn.MaskTypeB, true, backend)
type MaskedConv2D[B tensor.Backend] struct {
	inChannels  int
	outChannels int
	kernelSize  int
	stride      int
	padding     int
	maskType    MaskType
	useBias     bool

	weight *Parameter[B]             // [out_channels, in_channels, kernel, kernel]
	bias   *Parameter[B]             // [out_channels] or nil
	mask   *tensor.Tensor[float32, B] // constant 0/1 mask, weight shape

	backend B
}

// NewMaskedConv2D creates a masked convolution with a square kernel and
// Xavier-initialized weights.
//
// The kernel size must be odd so the mask has a well-defined center.
func NewMaskedConv2D[B tensor.Backend](
	inChannels, outChannels int,
	kernelSize, stride, padding int,
	maskType MaskType,
	useBias bool,
	backend B,
) *MaskedConv2D[B] {
	if inChannels <= 0 || outChannels <= 0 {
		panic(fmt.Sprintf("masked conv2d: invalid channels in=%d, out=%d", inChannels, outChannels))
	}
	if kernelSize <= 0 || kernelSize%2 == 0 {
		panic(fmt.Sprintf("masked conv2d: kernel size must be odd and positive, got %d", kernelSize))
	}
	if stride <= 0 {
		panic(fmt.Sprintf("masked conv2d: invalid stride %d", stride))
	}
	if padding < 0 {
		panic(fmt.Sprintf("masked conv2d: invalid padding %d", padding))
	}
	if maskType != MaskTypeA && maskType != MaskTypeB {
		panic(fmt.Sprintf("masked conv2d: unknown mask type %d", int(maskType)))
	}

	weightShape := tensor.Shape{outChannels, inChannels, kernelSize, kernelSize}
	fanIn := inChannels * kernelSize * kernelSize
	fanOut := outChannels * kernelSize * kernelSize
	weight := Xavier(fanIn, fanOut, weightShape, backend)

	var biasParam *Parameter[B]
	if useBias {
		biasParam = NewParameter("maskedconv2d.bias", Zeros(tensor.Shape{outChannels}, backend))
	}

	return &MaskedConv2D[B]{
		inChannels:  inChannels,
		outChannels: outChannels,
		kernelSize:  kernelSize,
		stride:      stride,
		padding:     padding,
		maskType:    maskType,
		useBias:     useBias,
		weight:      NewParameter("maskedconv2d.weight", weight),
		bias:        biasParam,
		mask:        buildRasterMask[B](weightShape, maskType, backend),
		backend:     backend,
	}
}

// buildRasterMask fills a weight-shaped tensor with 1 at positions the
// raster-scan order permits and 0 elsewhere. Rows above the center are
// fully visible, the center row is visible strictly left of center for
// type A and through the center for type B, and rows below the center
// are fully hidden.
func buildRasterMask[B tensor.Backend](shape tensor.Shape, maskType MaskType, backend B) *tensor.Tensor[float32, B] {
	kernelH, kernelW := shape[2], shape[3]
	centerH, centerW := kernelH/2, kernelW/2

	data := make([]float32, shape.NumElements())
	planeSize := kernelH * kernelW
	numPlanes := shape[0] * shape[1]

	for i := 0; i < kernelH; i++ {
		for j := 0; j < kernelW; j++ {
			visible := i < centerH ||
				(i == centerH && (j < centerW || (j == centerW && maskType == MaskTypeB)))
			if !visible {
				continue
			}
			for p := 0; p < numPlanes; p++ {
				data[p*planeSize+i*kernelW+j] = 1
			}
		}
	}

	mask, err := tensor.FromSlice(data, shape.Clone(), backend)
	if err != nil {
		panic(fmt.Sprintf("masked conv2d: building mask: %v", err))
	}
	return mask
}

// Forward applies the masked convolution.
//
// Input: [batch, in_channels, height, width]
// Output: [batch, out_channels, out_h, out_w].
func (c *MaskedConv2D[B]) Forward(input *tensor.Tensor[float32, B]) *tensor.Tensor[float32, B] {
	inputShape := input.Shape()
	if len(inputShape) != 4 {
		panic(fmt.Sprintf("masked conv2d: expected 4D input [N,C,H,W], got %dD", len(inputShape)))
	}
	if inputShape[1] != c.inChannels {
		panic(fmt.Sprintf("masked conv2d: input channels %d != expected %d", inputShape[1], c.inChannels))
	}

	// Masking through a taped Mul keeps the weight gradient masked as
	// well: hidden positions get zero gradient and never move.
	maskedWeight := c.weight.Tensor().Mul(c.mask)
	output := input.Conv2D(maskedWeight, c.stride, c.padding)

	if c.useBias {
		biasReshaped := c.bias.Tensor().Reshape(1, c.outChannels, 1, 1)
		output = output.Add(biasReshaped)
	}

	return output
}

// Parameters returns all trainable parameters.
func (c *MaskedConv2D[B]) Parameters() []*Parameter[B] {
	if c.useBias {
		return []*Parameter[B]{c.weight, c.bias}
	}
	return []*Parameter[B]{c.weight}
}

// String describes the layer configuration.
func (c *MaskedConv2D[B]) String() string {
	return fmt.Sprintf("MaskedConv2D(in_channels=%d, out_channels=%d, kernel_size=%d, stride=%d, padding=%d, mask=%s, bias=%v)",
		c.inChannels, c.outChannels, c.kernelSize, c.stride, c.padding, c.maskType, c.useBias)
}

// Mask returns the 0/1 causal mask applied to the weights.
func (c *MaskedConv2D[B]) Mask() *tensor.Tensor[float32, B] {
	return c.mask
}
