package ops

import "github.com/born-ml/mnist-mlp/internal/tensor"

// TransposeOp swaps the two axes of a matrix; so does its backward.
type TransposeOp struct{ node }

// NewTransposeOp records inputᵀ = output.
func NewTransposeOp(input, output *tensor.RawTensor) *TransposeOp {
	return &TransposeOp{newNode(output, input)}
}

// Backward implements Operation.
func (op *TransposeOp) Backward(outputGrad *tensor.RawTensor, backend tensor.Backend) []*tensor.RawTensor {
	return []*tensor.RawTensor{backend.Transpose(outputGrad, 1, 0)}
}

// ReshapeOp changes the logical shape of a tensor. Linear uses it to lift
// the [out] bias to [1,out] before broadcasting, and the gradient must land
// back on the [out] parameter.
type ReshapeOp struct {
	node
	from tensor.Shape
}

// NewReshapeOp records reshape(input) = output.
func NewReshapeOp(input, output *tensor.RawTensor) *ReshapeOp {
	return &ReshapeOp{node: newNode(output, input), from: input.Shape().Clone()}
}

// Backward implements Operation.
func (op *ReshapeOp) Backward(outputGrad *tensor.RawTensor, backend tensor.Backend) []*tensor.RawTensor {
	return []*tensor.RawTensor{backend.Reshape(outputGrad, op.from)}
}
