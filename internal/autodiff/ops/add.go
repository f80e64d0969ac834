package ops

import "github.com/born-ml/mnist-mlp/internal/tensor"

// AddOp is out = a + b. The incoming gradient passes to both sides
// unchanged apart from broadcast reduction.
type AddOp struct{ node }

// NewAddOp records a + b = output.
func NewAddOp(a, b, output *tensor.RawTensor) *AddOp {
	return &AddOp{newNode(output, a, b)}
}

// Backward implements Operation.
func (op *AddOp) Backward(outputGrad *tensor.RawTensor, backend tensor.Backend) []*tensor.RawTensor {
	return []*tensor.RawTensor{
		reduceBroadcast(outputGrad, op.in[0].Shape(), backend),
		reduceBroadcast(outputGrad, op.in[1].Shape(), backend),
	}
}

// SubOp is out = a - b; the right-hand gradient is negated.
type SubOp struct{ node }

// NewSubOp records a - b = output.
func NewSubOp(a, b, output *tensor.RawTensor) *SubOp {
	return &SubOp{newNode(output, a, b)}
}

// Backward implements Operation.
func (op *SubOp) Backward(outputGrad *tensor.RawTensor, backend tensor.Backend) []*tensor.RawTensor {
	neg := backend.MulScalar(outputGrad, -1)
	return []*tensor.RawTensor{
		reduceBroadcast(outputGrad, op.in[0].Shape(), backend),
		reduceBroadcast(neg, op.in[1].Shape(), backend),
	}
}
