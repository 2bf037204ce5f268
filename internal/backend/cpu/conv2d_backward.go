package cpu

import (
	"fmt"

	"github.com/vqnn-ml/vqnn/internal/tensor"
)

// Conv2DInputBackward computes the convolution gradient w.r.t. the
// input (transposed convolution): every output gradient is distributed
// back to the input positions its patch covered, weighted by the
// kernel.
func (cpu *CPUBackend) Conv2DInputBackward(input, kernel, grad *tensor.RawTensor, stride, padding int) *tensor.RawTensor {
	inputShape := input.Shape()
	kernelShape := kernel.Shape()
	gradShape := grad.Shape()

	n, cIn, h, w := inputShape[0], inputShape[1], inputShape[2], inputShape[3]
	cOut, kh, kw := kernelShape[0], kernelShape[2], kernelShape[3]
	hOut, wOut := gradShape[2], gradShape[3]

	inputGrad, err := tensor.NewRaw(tensor.Shape{n, cIn, h, w}, tensor.Float32, cpu.device)
	if err != nil {
		panic(fmt.Sprintf("conv2dInputBackward: %v", err))
	}
	if inputGrad.NumElements() == 0 || grad.NumElements() == 0 {
		return inputGrad
	}

	inputGradData := inputGrad.AsFloat32()
	gradData := grad.AsFloat32()
	kernelData := kernel.AsFloat32()

	for b := 0; b < n; b++ {
		inGradBatch := inputGradData[b*cIn*h*w : (b+1)*cIn*h*w]
		gradBatch := gradData[b*cOut*hOut*wOut : (b+1)*cOut*hOut*wOut]

		for oc := 0; oc < cOut; oc++ {
			gradChan := gradBatch[oc*hOut*wOut : (oc+1)*hOut*wOut]
			kernelOC := kernelData[oc*cIn*kh*kw : (oc+1)*cIn*kh*kw]

			for oh := 0; oh < hOut; oh++ {
				for ow := 0; ow < wOut; ow++ {
					g := gradChan[oh*wOut+ow]
					if g == 0 {
						continue
					}
					for ic := 0; ic < cIn; ic++ {
						inGradChan := inGradBatch[ic*h*w : (ic+1)*h*w]
						kernelIC := kernelOC[ic*kh*kw : (ic+1)*kh*kw]
						for i := 0; i < kh; i++ {
							hPos := oh*stride - padding + i
							if hPos < 0 || hPos >= h {
								continue
							}
							for j := 0; j < kw; j++ {
								wPos := ow*stride - padding + j
								if wPos >= 0 && wPos < w {
									inGradChan[hPos*w+wPos] += g * kernelIC[i*kw+j]
								}
							}
						}
					}
				}
			}
		}
	}
	return inputGrad
}

// Conv2DKernelBackward computes the convolution gradient w.r.t. the
// kernel: correlation of the input with the output gradient.
func (cpu *CPUBackend) Conv2DKernelBackward(input, kernel, grad *tensor.RawTensor, stride, padding int) *tensor.RawTensor {
	inputShape := input.Shape()
	kernelShape := kernel.Shape()
	gradShape := grad.Shape()

	n, cIn, h, w := inputShape[0], inputShape[1], inputShape[2], inputShape[3]
	cOut, kh, kw := kernelShape[0], kernelShape[2], kernelShape[3]
	hOut, wOut := gradShape[2], gradShape[3]

	kernelGrad, err := tensor.NewRaw(tensor.Shape{cOut, cIn, kh, kw}, tensor.Float32, cpu.device)
	if err != nil {
		panic(fmt.Sprintf("conv2dKernelBackward: %v", err))
	}
	if grad.NumElements() == 0 || input.NumElements() == 0 {
		return kernelGrad
	}

	kernelGradData := kernelGrad.AsFloat32()
	gradData := grad.AsFloat32()
	inputData := input.AsFloat32()

	for b := 0; b < n; b++ {
		inBatch := inputData[b*cIn*h*w : (b+1)*cIn*h*w]
		gradBatch := gradData[b*cOut*hOut*wOut : (b+1)*cOut*hOut*wOut]

		for oc := 0; oc < cOut; oc++ {
			gradChan := gradBatch[oc*hOut*wOut : (oc+1)*hOut*wOut]
			kernelGradOC := kernelGradData[oc*cIn*kh*kw : (oc+1)*cIn*kh*kw]

			for oh := 0; oh < hOut; oh++ {
				for ow := 0; ow < wOut; ow++ {
					g := gradChan[oh*wOut+ow]
					if g == 0 {
						continue
					}
					for ic := 0; ic < cIn; ic++ {
						inChan := inBatch[ic*h*w : (ic+1)*h*w]
						kernelGradIC := kernelGradOC[ic*kh*kw : (ic+1)*kh*kw]
						for i := 0; i < kh; i++ {
							hPos := oh*stride - padding + i
							if hPos < 0 || hPos >= h {
								continue
							}
							for j := 0; j < kw; j++ {
								wPos := ow*stride - padding + j
								if wPos >= 0 && wPos < w {
									kernelGradIC[i*kw+j] += g * inChan[hPos*w+wPos]
								}
							}
						}
					}
				}
			}
		}
	}
	return kernelGrad
}
