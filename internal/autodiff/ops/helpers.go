package ops

import "github.com/born-ml/mnist-mlp/internal/tensor"

// node holds the tensors an operation saw during the forward pass.
// Embedding it satisfies the Inputs/Output half of Operation.
type node struct {
	in  []*tensor.RawTensor
	out *tensor.RawTensor
}

func newNode(out *tensor.RawTensor, in ...*tensor.RawTensor) node {
	return node{in: in, out: out}
}

// Inputs returns the tensors gradients are produced for, in argument order.
func (n node) Inputs() []*tensor.RawTensor { return n.in }

// Output returns the tensor the operation produced.
func (n node) Output() *tensor.RawTensor { return n.out }

// reduceBroadcast folds grad back onto target by summing the axes that
// broadcasting expanded. For the Linear bias:
//
//	y[10,500] = x[10,500] + b[1,500]  =>  dL/db = sum_0(dL/dy) -> [1,500]
func reduceBroadcast(grad *tensor.RawTensor, target tensor.Shape, backend tensor.Backend) *tensor.RawTensor {
	if grad.Shape().Equal(target) {
		return grad
	}

	out := grad
	for extra := len(out.Shape()) - len(target); extra > 0; extra-- {
		out = backend.SumDim(out, 0, false)
	}
	for axis, size := range target {
		if size == 1 && out.Shape()[axis] != 1 {
			out = backend.SumDim(out, axis, true)
		}
	}

	if out.Shape().Equal(target) {
		return out
	}
	return backend.Reshape(out, target)
}
