package cpu

import (
	"fmt"

	"github.com/born-ml/mnist-mlp/internal/tensor"
)

// SumDim sums x along dim. With keepDim the reduced dimension stays as 1.
func (cpu *CPUBackend) SumDim(x *tensor.RawTensor, dim int, keepDim bool) *tensor.RawTensor {
	requireFloat32("sum_dim", x)
	shape := x.Shape()
	dim = normalizeDim("sum_dim", dim, len(shape))

	outer, size, inner := splitAt(shape, dim)
	result := cpu.newResult("sum_dim", reducedShape(shape, dim, keepDim), tensor.Float32)

	src, dst := x.AsFloat32(), result.AsFloat32()
	for o := 0; o < outer; o++ {
		for s := 0; s < size; s++ {
			base := (o*size + s) * inner
			for i := 0; i < inner; i++ {
				dst[o*inner+i] += src[base+i]
			}
		}
	}
	return result
}

// Argmax returns the int32 index of the maximum along dim. Ties resolve to
// the lowest index.
func (cpu *CPUBackend) Argmax(x *tensor.RawTensor, dim int) *tensor.RawTensor {
	requireFloat32("argmax", x)
	shape := x.Shape()
	dim = normalizeDim("argmax", dim, len(shape))

	outer, size, inner := splitAt(shape, dim)
	outShape := reducedShape(shape, dim, false)
	if len(outShape) == 0 {
		outShape = tensor.Shape{1}
	}
	result := cpu.newResult("argmax", outShape, tensor.Int32)

	src, dst := x.AsFloat32(), result.AsInt32()
	for o := 0; o < outer; o++ {
		for i := 0; i < inner; i++ {
			best := 0
			bestVal := src[o*size*inner+i]
			for s := 1; s < size; s++ {
				if v := src[(o*size+s)*inner+i]; v > bestVal {
					best, bestVal = s, v
				}
			}
			dst[o*inner+i] = int32(best) //nolint:gosec // G115: bounded by dimension size.
		}
	}
	return result
}

func normalizeDim(op string, dim, rank int) int {
	if dim < 0 {
		dim += rank
	}
	if dim < 0 || dim >= rank {
		panic(fmt.Sprintf("%s: dimension %d out of range for rank %d", op, dim, rank))
	}
	return dim
}

// splitAt returns the products of the dimensions before dim, dim itself,
// and the dimensions after dim.
func splitAt(shape tensor.Shape, dim int) (outer, size, inner int) {
	outer, inner = 1, 1
	for i := 0; i < dim; i++ {
		outer *= shape[i]
	}
	for i := dim + 1; i < len(shape); i++ {
		inner *= shape[i]
	}
	return outer, shape[dim], inner
}

func reducedShape(shape tensor.Shape, dim int, keepDim bool) tensor.Shape {
	out := make(tensor.Shape, 0, len(shape))
	for i, d := range shape {
		switch {
		case i != dim:
			out = append(out, d)
		case keepDim:
			out = append(out, 1)
		}
	}
	return out
}
