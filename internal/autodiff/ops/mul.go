package ops

import "github.com/born-ml/mnist-mlp/internal/tensor"

// MulOp is the Hadamard product out = a ⊙ b. Each side receives the
// incoming gradient scaled by the other side.
type MulOp struct{ node }

// NewMulOp records a ⊙ b = output.
func NewMulOp(a, b, output *tensor.RawTensor) *MulOp {
	return &MulOp{newNode(output, a, b)}
}

// Backward implements Operation.
func (op *MulOp) Backward(outputGrad *tensor.RawTensor, backend tensor.Backend) []*tensor.RawTensor {
	a, b := op.in[0], op.in[1]
	return []*tensor.RawTensor{
		reduceBroadcast(backend.Mul(outputGrad, b), a.Shape(), backend),
		reduceBroadcast(backend.Mul(outputGrad, a), b.Shape(), backend),
	}
}

// MulScalarOp is out = s·x for a constant s.
type MulScalarOp struct {
	node
	scalar float32
}

// NewMulScalarOp records scalar·input = output.
func NewMulScalarOp(input, output *tensor.RawTensor, scalar float32) *MulScalarOp {
	return &MulScalarOp{node: newNode(output, input), scalar: scalar}
}

// Backward implements Operation.
func (op *MulScalarOp) Backward(outputGrad *tensor.RawTensor, backend tensor.Backend) []*tensor.RawTensor {
	return []*tensor.RawTensor{backend.MulScalar(outputGrad, op.scalar)}
}
