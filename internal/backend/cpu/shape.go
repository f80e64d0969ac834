package cpu

import (
	"fmt"

	"github.com/born-ml/mnist-mlp/internal/tensor"
)

// Reshape returns a view of t with newShape. The storage is shared.
func (cpu *CPUBackend) Reshape(t *tensor.RawTensor, newShape tensor.Shape) *tensor.RawTensor {
	result, err := t.View(newShape)
	if err != nil {
		panic(fmt.Sprintf("reshape: %v", err))
	}
	return result
}

// Transpose swaps the two dimensions of a 2D tensor.
// Accepts no axes or the permutation (1, 0).
func (cpu *CPUBackend) Transpose(t *tensor.RawTensor, axes ...int) *tensor.RawTensor {
	shape := t.Shape()
	if len(shape) != 2 {
		panic(fmt.Sprintf("transpose: only 2D tensors supported, got shape %v", shape))
	}
	if len(axes) != 0 && (len(axes) != 2 || axes[0] != 1 || axes[1] != 0) {
		panic(fmt.Sprintf("transpose: unsupported axes %v for 2D tensor", axes))
	}

	rows, cols := shape[0], shape[1]
	result := cpu.newResult("transpose", tensor.Shape{cols, rows}, t.DType())

	switch t.DType() {
	case tensor.Float32:
		transpose2D(result.AsFloat32(), t.AsFloat32(), rows, cols)
	case tensor.Int32:
		transpose2D(result.AsInt32(), t.AsInt32(), rows, cols)
	default:
		panic(fmt.Sprintf("transpose: unsupported dtype %s", t.DType()))
	}
	return result
}

func transpose2D[T float32 | int32](dst, src []T, rows, cols int) {
	for i := 0; i < rows; i++ {
		for j := 0; j < cols; j++ {
			dst[j*rows+i] = src[i*cols+j]
		}
	}
}
