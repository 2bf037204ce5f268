package cpu

import (
	"fmt"

	"gonum.org/v1/gonum/blas"

	"github.com/vqnn-ml/vqnn/internal/tensor"
)

// Conv2D performs 2D convolution using the im2col algorithm.
//
// Input shape: [N, C_in, H, W], kernel shape: [C_out, C_in, K_h, K_w],
// output shape: [N, C_out, H_out, W_out] with
//
//	H_out = (H + 2*padding - K_h)/stride + 1
//	W_out = (W + 2*padding - K_w)/stride + 1
//
// Im2col converts the convolution into one large Sgemm over unrolled
// input patches.
func (cpu *CPUBackend) Conv2D(input, kernel *tensor.RawTensor, stride, padding int) *tensor.RawTensor {
	inputShape := input.Shape()
	kernelShape := kernel.Shape()

	if len(inputShape) != 4 {
		panic(fmt.Sprintf("conv2d: input must be 4D [N,C,H,W], got %dD", len(inputShape)))
	}
	if len(kernelShape) != 4 {
		panic(fmt.Sprintf("conv2d: kernel must be 4D [C_out,C_in,K_h,K_w], got %dD", len(kernelShape)))
	}
	if input.DType() != tensor.Float32 || kernel.DType() != tensor.Float32 {
		panic("conv2d: only float32 supported")
	}

	n, cIn, h, w := inputShape[0], inputShape[1], inputShape[2], inputShape[3]
	cOut, cInK, kh, kw := kernelShape[0], kernelShape[1], kernelShape[2], kernelShape[3]
	if cIn != cInK {
		panic(fmt.Sprintf("conv2d: input channels %d != kernel channels %d", cIn, cInK))
	}

	hOut := (h+2*padding-kh)/stride + 1
	wOut := (w+2*padding-kw)/stride + 1
	if hOut <= 0 || wOut <= 0 {
		panic(fmt.Sprintf("conv2d: invalid output dimensions %dx%d (check stride/padding)", hOut, wOut))
	}

	output, err := tensor.NewRaw(tensor.Shape{n, cOut, hOut, wOut}, tensor.Float32, cpu.device)
	if err != nil {
		panic(fmt.Sprintf("conv2d: failed to create output tensor: %v", err))
	}
	if output.NumElements() == 0 {
		return output
	}

	// Unroll patches: colBuf is [N*H_out*W_out, C_in*K_h*K_w].
	colWidth := cIn * kh * kw
	colHeight := n * hOut * wOut
	colBuf := make([]float32, colHeight*colWidth)
	im2col(colBuf, input.AsFloat32(), n, cIn, h, w, kh, kw, hOut, wOut, stride, padding)

	// kernel [C_out, colWidth] @ colBuf^T -> [C_out, colHeight]
	prod := make([]float32, cOut*colHeight)
	sgemm(blas.NoTrans, blas.Trans, cOut, colHeight, colWidth, kernel.AsFloat32(), colWidth, colBuf, colWidth, prod)

	// Rearrange [C_out, N*H_out*W_out] -> [N, C_out, H_out, W_out].
	outData := output.AsFloat32()
	plane := hOut * wOut
	for c := 0; c < cOut; c++ {
		for b := 0; b < n; b++ {
			src := prod[c*colHeight+b*plane : c*colHeight+(b+1)*plane]
			dst := outData[b*cOut*plane+c*plane : b*cOut*plane+(c+1)*plane]
			copy(dst, src)
		}
	}
	return output
}

// im2col unrolls input patches into rows of colBuf.
// Out-of-bounds (padding) positions stay zero.
func im2col(colBuf, input []float32, n, cIn, h, w, kh, kw, hOut, wOut, stride, padding int) {
	colWidth := cIn * kh * kw
	row := 0
	for b := 0; b < n; b++ {
		inBatch := input[b*cIn*h*w : (b+1)*cIn*h*w]
		for oh := 0; oh < hOut; oh++ {
			for ow := 0; ow < wOut; ow++ {
				dst := colBuf[row*colWidth : (row+1)*colWidth]
				col := 0
				for c := 0; c < cIn; c++ {
					inChan := inBatch[c*h*w : (c+1)*h*w]
					for i := 0; i < kh; i++ {
						hPos := oh*stride - padding + i
						for j := 0; j < kw; j++ {
							wPos := ow*stride - padding + j
							if hPos >= 0 && hPos < h && wPos >= 0 && wPos < w {
								dst[col] = inChan[hPos*w+wPos]
							}
							col++
						}
					}
				}
				row++
			}
		}
	}
}
