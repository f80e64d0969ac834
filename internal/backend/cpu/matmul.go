package cpu

import (
	"fmt"

	"gonum.org/v1/gonum/blas"
	"gonum.org/v1/gonum/blas/blas32"

	"github.com/born-ml/mnist-mlp/internal/tensor"
)

// MatMul multiplies row-major matrices [m,k]·[k,n] with a single SGEMM
// call. Both operands must be contiguous float32.
func (cpu *CPUBackend) MatMul(a, b *tensor.RawTensor) *tensor.RawTensor {
	as, bs := a.Shape(), b.Shape()
	if len(as) != 2 || len(bs) != 2 {
		panic(fmt.Sprintf("matmul: want two matrices, got rank %d and %d", len(as), len(bs)))
	}
	requireFloat32("matmul", a, b)
	if as[1] != bs[0] {
		panic(fmt.Sprintf("matmul: inner dimensions differ: %v · %v", as, bs))
	}

	m, k, n := as[0], as[1], bs[1]
	out := cpu.newResult("matmul", tensor.Shape{m, n}, tensor.Float32)
	blas32.Gemm(blas.NoTrans, blas.NoTrans, 1,
		rowMajor(a.AsFloat32(), m, k),
		rowMajor(b.AsFloat32(), k, n),
		0, rowMajor(out.AsFloat32(), m, n))
	return out
}

func rowMajor(data []float32, rows, cols int) blas32.General {
	return blas32.General{Rows: rows, Cols: cols, Stride: cols, Data: data}
}
