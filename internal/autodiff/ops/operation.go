// Package ops holds the backward rules for every operation the autodiff
// backend can record. An operation remembers the tensors it saw in the
// forward pass and maps the gradient of its output to gradients of its
// inputs:
//
//	Add, Sub      g, ±g, summed over broadcast axes
//	Mul           g⊙b, g⊙a
//	MulScalar     s·g
//	MatMul        g·Bᵀ, Aᵀ·g
//	Transpose     gᵀ
//	Reshape       g in the input's shape
//	ReLU          g where x > 0, else 0
//	CrossEntropy  (softmax(z) − onehot(y)) / n
package ops

import "github.com/born-ml/mnist-mlp/internal/tensor"

// Operation is one entry on the gradient tape.
type Operation interface {
	// Backward returns one gradient per element of Inputs, in the same
	// order. A nil entry means that input receives nothing.
	Backward(outputGrad *tensor.RawTensor, backend tensor.Backend) []*tensor.RawTensor
	Inputs() []*tensor.RawTensor
	Output() *tensor.RawTensor
}
