package cpu

import (
	"fmt"

	"gonum.org/v1/gonum/blas/blas32"

	"github.com/born-ml/mnist-mlp/internal/tensor"
)

// Add performs element-wise addition with NumPy-style broadcasting.
func (cpu *CPUBackend) Add(a, b *tensor.RawTensor) *tensor.RawTensor {
	return cpu.binary("add", a, b, 1, func(x, y float32) float32 { return x + y })
}

// Sub performs element-wise subtraction with broadcasting.
func (cpu *CPUBackend) Sub(a, b *tensor.RawTensor) *tensor.RawTensor {
	return cpu.binary("sub", a, b, -1, func(x, y float32) float32 { return x - y })
}

// Mul performs element-wise multiplication with broadcasting.
func (cpu *CPUBackend) Mul(a, b *tensor.RawTensor) *tensor.RawTensor {
	return cpu.binary("mul", a, b, 0, func(x, y float32) float32 { return x * y })
}

// MulScalar multiplies every element of x by scalar.
func (cpu *CPUBackend) MulScalar(x *tensor.RawTensor, scalar float32) *tensor.RawTensor {
	requireFloat32("mul_scalar", x)

	result := cpu.newResult("mul_scalar", x.Shape(), x.DType())
	out := result.AsFloat32()
	copy(out, x.AsFloat32())
	blas32.Scal(scalar, blas32.Vector{N: len(out), Data: out, Inc: 1})
	return result
}

// binary applies fn element-wise. When the shapes match and axpy is non-zero
// the result is computed as a + axpy*b with BLAS.
func (cpu *CPUBackend) binary(
	op string,
	a, b *tensor.RawTensor,
	axpy float32,
	fn func(x, y float32) float32,
) *tensor.RawTensor {
	requireFloat32(op, a, b)

	outShape, needsBroadcast, err := tensor.BroadcastShapes(a.Shape(), b.Shape())
	if err != nil {
		panic(fmt.Sprintf("%s: %v", op, err))
	}

	result := cpu.newResult(op, outShape, tensor.Float32)
	out := result.AsFloat32()

	if !needsBroadcast {
		aData, bData := a.AsFloat32(), b.AsFloat32()
		if axpy != 0 {
			copy(out, aData)
			blas32.Axpy(axpy,
				blas32.Vector{N: len(bData), Data: bData, Inc: 1},
				blas32.Vector{N: len(out), Data: out, Inc: 1})
			return result
		}
		for i := range out {
			out[i] = fn(aData[i], bData[i])
		}
		return result
	}

	broadcastBinary(out, a, b, outShape, fn)
	return result
}

// broadcastBinary walks the output in row-major order, mapping every output
// index back into a and b. Broadcast dimensions get stride 0.
func broadcastBinary(out []float32, a, b *tensor.RawTensor, outShape tensor.Shape, fn func(x, y float32) float32) {
	aStrides := broadcastStrides(a.Shape(), outShape)
	bStrides := broadcastStrides(b.Shape(), outShape)
	aData, bData := a.AsFloat32(), b.AsFloat32()

	idx := make([]int, len(outShape))
	for i := range out {
		aOff, bOff := 0, 0
		for d, v := range idx {
			aOff += v * aStrides[d]
			bOff += v * bStrides[d]
		}
		out[i] = fn(aData[aOff], bData[bOff])

		// Increment the multi-index.
		for d := len(idx) - 1; d >= 0; d-- {
			idx[d]++
			if idx[d] < outShape[d] {
				break
			}
			idx[d] = 0
		}
	}
}

// broadcastStrides returns strides of shape aligned to outShape, with 0 for
// dimensions that are broadcast.
func broadcastStrides(shape, outShape tensor.Shape) []int {
	strides := make([]int, len(outShape))
	own := shape.ComputeStrides()
	offset := len(outShape) - len(shape)
	for d := range outShape {
		src := d - offset
		if src < 0 || shape[src] == 1 {
			continue
		}
		strides[d] = own[src]
	}
	return strides
}
