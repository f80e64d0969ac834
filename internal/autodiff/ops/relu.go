package ops

import (
	"fmt"

	"github.com/born-ml/mnist-mlp/internal/tensor"
)

// ReLUOp is out = max(0, x). The gradient is passed only where x was
// strictly positive; the kink at zero gets 0.
type ReLUOp struct{ node }

// NewReLUOp records relu(input) = output.
func NewReLUOp(input, output *tensor.RawTensor) *ReLUOp {
	return &ReLUOp{newNode(output, input)}
}

// Backward implements Operation.
func (op *ReLUOp) Backward(outputGrad *tensor.RawTensor, backend tensor.Backend) []*tensor.RawTensor {
	x := op.in[0]
	gate, err := tensor.NewRaw(x.Shape(), tensor.Float32, backend.Device())
	if err != nil {
		panic(fmt.Sprintf("relu backward: %v", err))
	}

	g := gate.AsFloat32()
	for i, v := range x.AsFloat32() {
		if v > 0 {
			g[i] = 1
		}
	}
	return []*tensor.RawTensor{backend.Mul(outputGrad, gate)}
}
