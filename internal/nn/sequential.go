package nn

import (
	"fmt"

	"github.com/born-ml/mnist-mlp/internal/tensor"
)

// Sequential runs its layers in order, feeding each output to the next
// layer. The MLP is Linear, ReLU, Linear:
//
//	net := nn.NewSequential[B](fc1, nn.NewReLU[B](), fc2)
//	logits := net.Forward(x) // [n,784] -> [n,10]
type Sequential[B tensor.Backend] struct {
	layers []Module[B]
}

// NewSequential builds a container over layers. More can be appended
// with Add.
func NewSequential[B tensor.Backend](layers ...Module[B]) *Sequential[B] {
	return &Sequential[B]{layers: layers}
}

// Forward implements Module.
func (s *Sequential[B]) Forward(input *tensor.Tensor[float32, B]) *tensor.Tensor[float32, B] {
	x := input
	for _, layer := range s.layers {
		x = layer.Forward(x)
	}
	return x
}

// Parameters concatenates the layers' parameters, first layer first.
func (s *Sequential[B]) Parameters() []*Parameter[B] {
	params := make([]*Parameter[B], 0, 2*len(s.layers))
	for _, layer := range s.layers {
		params = append(params, layer.Parameters()...)
	}
	return params
}

// Add appends layer to the end of the chain.
func (s *Sequential[B]) Add(layer Module[B]) { s.layers = append(s.layers, layer) }

// Len is the number of layers.
func (s *Sequential[B]) Len() int { return len(s.layers) }

// Module returns layer i and panics when i is out of range.
func (s *Sequential[B]) Module(i int) Module[B] {
	if i < 0 || i >= len(s.layers) {
		panic(fmt.Sprintf("nn: Sequential has %d layers, no index %d", len(s.layers), i))
	}
	return s.layers[i]
}
