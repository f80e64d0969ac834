package nn

import (
	"fmt"

	"github.com/born-ml/mnist-mlp/internal/tensor"
)

// ReLUBackend is the optional backend capability ReLU needs. Both the CPU
// backend and the autodiff wrapper provide it.
type ReLUBackend interface {
	ReLU(*tensor.RawTensor) *tensor.RawTensor
}

// ReLU zeroes negative inputs elementwise. It has no parameters.
type ReLU[B tensor.Backend] struct{}

func NewReLU[B tensor.Backend]() *ReLU[B] { return &ReLU[B]{} }

// Forward implements Module. It panics if the input's backend lacks ReLU.
func (r *ReLU[B]) Forward(input *tensor.Tensor[float32, B]) *tensor.Tensor[float32, B] {
	b := input.Backend()
	k, ok := any(b).(ReLUBackend)
	if !ok {
		panic(fmt.Sprintf("nn: backend %s has no ReLU kernel", b.Name()))
	}
	return tensor.New[float32, B](k.ReLU(input.Raw()), b)
}

func (r *ReLU[B]) Parameters() []*Parameter[B] { return nil }
