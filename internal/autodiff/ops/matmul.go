package ops

import "github.com/born-ml/mnist-mlp/internal/tensor"

// MatMulOp is the 2D product out = A·B with A [m,k] and B [k,n].
//
//	dA = G·Bᵀ   [m,n]·[n,k]
//	dB = Aᵀ·G   [k,m]·[m,n]
type MatMulOp struct{ node }

// NewMatMulOp records a·b = output.
func NewMatMulOp(a, b, output *tensor.RawTensor) *MatMulOp {
	return &MatMulOp{newNode(output, a, b)}
}

// Backward implements Operation.
func (op *MatMulOp) Backward(outputGrad *tensor.RawTensor, backend tensor.Backend) []*tensor.RawTensor {
	bT := backend.Transpose(op.in[1], 1, 0)
	aT := backend.Transpose(op.in[0], 1, 0)
	return []*tensor.RawTensor{
		backend.MatMul(outputGrad, bT),
		backend.MatMul(aT, outputGrad),
	}
}
