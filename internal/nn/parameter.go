package nn

import "github.com/born-ml/mnist-mlp/internal/tensor"

// Parameter is a named, trainable float32 tensor together with the last
// gradient an optimizer computed for it. Its RawTensor pointer never
// changes, so it can key the gradient map returned by autodiff.Backward.
type Parameter[B tensor.Backend] struct {
	name   string
	tensor *tensor.Tensor[float32, B]
	grad   *tensor.Tensor[float32, B]
}

// NewParameter adopts t, which must already be initialised.
func NewParameter[B tensor.Backend](name string, t *tensor.Tensor[float32, B]) *Parameter[B] {
	return &Parameter[B]{name: name, tensor: t}
}

// Name is a dotted path such as "fc1.weight".
func (p *Parameter[B]) Name() string { return p.name }

func (p *Parameter[B]) Tensor() *tensor.Tensor[float32, B] { return p.tensor }

// Grad is nil until the first optimizer step and after ZeroGrad.
func (p *Parameter[B]) Grad() *tensor.Tensor[float32, B] { return p.grad }

func (p *Parameter[B]) SetGrad(g *tensor.Tensor[float32, B]) { p.grad = g }

func (p *Parameter[B]) ZeroGrad() { p.grad = nil }

// NumElements is the number of scalars this parameter contributes.
func (p *Parameter[B]) NumElements() int { return p.tensor.NumElements() }

// CountParameters sums NumElements over params. For the 784-500-10
// network it is 784·500 + 500 + 500·10 + 10 = 397510.
func CountParameters[B tensor.Backend](params []*Parameter[B]) int {
	total := 0
	for _, p := range params {
		total += p.NumElements()
	}
	return total
}
