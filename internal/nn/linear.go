package nn

import (
	"fmt"
	"math/rand"

	"github.com/born-ml/mnist-mlp/internal/tensor"
)

// Init selects the weight initialization scheme of a Linear layer.
type Init int

// Supported initialization schemes.
const (
	// InitLeCun draws weights and bias from U(-1/sqrt(in), 1/sqrt(in)).
	InitLeCun Init = iota
	// InitXavier draws weights from the Glorot uniform distribution and
	// sets the bias to zero.
	InitXavier
)

// LinearOption configures a Linear layer.
type LinearOption func(*linearOptions)

type linearOptions struct {
	name string
	init Init
	rng  *rand.Rand
}

// WithName prefixes parameter names, e.g. "fc1" → "fc1.weight".
func WithName(name string) LinearOption {
	return func(o *linearOptions) { o.name = name }
}

// WithInit selects the initialization scheme.
func WithInit(init Init) LinearOption {
	return func(o *linearOptions) { o.init = init }
}

// WithRand sets the random source used for initialization.
func WithRand(rng *rand.Rand) LinearOption {
	return func(o *linearOptions) { o.rng = rng }
}

// Linear implements a fully connected layer: y = x @ W.T + b
//
//   - x: [batch_size, in_features]
//   - W: [out_features, in_features]
//   - b: [out_features]
//   - y: [batch_size, out_features]
//
// Example:
//
//	layer := nn.NewLinear(784, 500, backend)
//	output := layer.Forward(input) // [batch, 500]
type Linear[B tensor.Backend] struct {
	inFeatures  int
	outFeatures int
	weight      *Parameter[B]
	bias        *Parameter[B]
}

// NewLinear creates a new Linear layer.
//
// Without options weights and bias use InitLeCun drawn from a
// time-independent default source (seed 1).
func NewLinear[B tensor.Backend](inFeatures, outFeatures int, backend B, opts ...LinearOption) *Linear[B] {
	o := linearOptions{init: InitLeCun}
	for _, opt := range opts {
		opt(&o)
	}
	if o.rng == nil {
		o.rng = rand.New(rand.NewSource(1)) //nolint:gosec // weight initialization is not security-critical
	}

	weightShape := tensor.Shape{outFeatures, inFeatures}
	biasShape := tensor.Shape{outFeatures}

	var w, b *tensor.Tensor[float32, B]
	switch o.init {
	case InitXavier:
		w = Xavier(inFeatures, outFeatures, weightShape, o.rng, backend)
		b = Zeros(biasShape, backend)
	default:
		w = LeCunUniform(inFeatures, weightShape, o.rng, backend)
		b = LeCunUniform(inFeatures, biasShape, o.rng, backend)
	}

	return &Linear[B]{
		inFeatures:  inFeatures,
		outFeatures: outFeatures,
		weight:      NewParameter(qualify(o.name, "weight"), w),
		bias:        NewParameter(qualify(o.name, "bias"), b),
	}
}

func qualify(prefix, name string) string {
	if prefix == "" {
		return name
	}
	return prefix + "." + name
}

// Forward computes y = x @ W.T + b.
//
// Panics if input is not [batch_size, in_features].
func (l *Linear[B]) Forward(input *tensor.Tensor[float32, B]) *tensor.Tensor[float32, B] {
	inputShape := input.Shape()
	if len(inputShape) != 2 {
		panic(fmt.Sprintf("Linear.Forward: expected 2D input [batch, features], got shape %v", inputShape))
	}
	if inputShape[1] != l.inFeatures {
		panic(fmt.Sprintf("Linear.Forward: expected input with %d features, got %d", l.inFeatures, inputShape[1]))
	}

	// [batch, in] @ [in, out] = [batch, out]
	output := input.MatMul(l.weight.Tensor().T())

	// Bias [out] is viewed as [1, out] and broadcast over the batch.
	return output.Add(l.bias.Tensor().Reshape(1, l.outFeatures))
}

// Parameters returns [weight, bias].
func (l *Linear[B]) Parameters() []*Parameter[B] {
	return []*Parameter[B]{l.weight, l.bias}
}

// Weight returns the weight parameter.
func (l *Linear[B]) Weight() *Parameter[B] {
	return l.weight
}

// Bias returns the bias parameter.
func (l *Linear[B]) Bias() *Parameter[B] {
	return l.bias
}

// InFeatures returns the number of input features.
func (l *Linear[B]) InFeatures() int {
	return l.inFeatures
}

// OutFeatures returns the number of output features.
func (l *Linear[B]) OutFeatures() int {
	return l.outFeatures
}
