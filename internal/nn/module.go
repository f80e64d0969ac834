// Package nn implements the neural network modules used to build the MLP.
//
// This package provides:
//   - Module interface: Forward + Parameters
//   - Parameter: trainable tensors with gradient slots
//   - Linear: fully connected layer
//   - ReLU: activation
//   - Sequential: container for stacking layers
//   - CrossEntropyLoss: fused softmax + cross-entropy over logits
//
// Design follows PyTorch's nn.Module, adapted for Go generics.
package nn

import "github.com/born-ml/mnist-mlp/internal/tensor"

// Module is the base interface for all neural network components.
//
//	model := nn.NewSequential[B](
//	    nn.NewLinear(784, 500, backend),
//	    nn.NewReLU[B](),
//	    nn.NewLinear(500, 10, backend),
//	)
type Module[B tensor.Backend] interface {
	// Forward computes the output of the module given an input tensor.
	Forward(input *tensor.Tensor[float32, B]) *tensor.Tensor[float32, B]

	// Parameters returns all trainable parameters of this module, including
	// nested ones. Modules without weights return an empty slice.
	Parameters() []*Parameter[B]
}
