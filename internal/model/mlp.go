// Package model defines the two-layer MLP classifier for MNIST.
package model

import (
	"fmt"
	"math/rand"

	"github.com/born-ml/mnist-mlp/internal/nn"
	"github.com/born-ml/mnist-mlp/internal/tensor"
)

// Config describes the MLP architecture.
type Config struct {
	InputDim  int // 784 for flattened 28x28 images
	HiddenDim int
	OutputDim int // number of classes

	// OutputReLU applies ReLU to the output layer as well. Logits are then
	// clamped at zero before the loss; off by default.
	OutputReLU bool

	Init nn.Init
	Seed int64
}

// DefaultConfig returns the 784 → 500 → 10 architecture.
func DefaultConfig() Config {
	return Config{
		InputDim:  784,
		HiddenDim: 500,
		OutputDim: 10,
		Init:      nn.InitLeCun,
		Seed:      1,
	}
}

// MLP is a fully-connected network with one hidden layer.
//
// Architecture:
//   - Input: InputDim neurons (flattened image)
//   - Hidden: HiddenDim neurons with ReLU activation
//   - Output: OutputDim neurons (logits)
type MLP[B tensor.Backend] struct {
	cfg  Config
	fc1  *nn.Linear[B]
	relu *nn.ReLU[B]
	fc2  *nn.Linear[B]
	net  *nn.Sequential[B]
}

// NewMLP creates the network and initializes its weights from cfg.Seed.
// Panics if any dimension is not positive.
func NewMLP[B tensor.Backend](cfg Config, backend B) *MLP[B] {
	if cfg.InputDim <= 0 || cfg.HiddenDim <= 0 || cfg.OutputDim <= 0 {
		panic(fmt.Sprintf("MLP: dimensions must be positive, got %d → %d → %d", cfg.InputDim, cfg.HiddenDim, cfg.OutputDim))
	}

	rng := rand.New(rand.NewSource(cfg.Seed)) //nolint:gosec // weight initialization is not security-critical
	m := &MLP[B]{
		cfg:  cfg,
		fc1:  nn.NewLinear(cfg.InputDim, cfg.HiddenDim, backend, nn.WithName("fc1"), nn.WithInit(cfg.Init), nn.WithRand(rng)),
		relu: nn.NewReLU[B](),
		fc2:  nn.NewLinear(cfg.HiddenDim, cfg.OutputDim, backend, nn.WithName("fc2"), nn.WithInit(cfg.Init), nn.WithRand(rng)),
	}

	m.net = nn.NewSequential[B](m.fc1, m.relu, m.fc2)
	if cfg.OutputReLU {
		m.net.Add(nn.NewReLU[B]())
	}
	return m
}

// Forward maps a batch [batch_size, InputDim] (or a single [InputDim]
// sample) to logits [batch_size, OutputDim]. No softmax is applied.
func (m *MLP[B]) Forward(input *tensor.Tensor[float32, B]) *tensor.Tensor[float32, B] {
	inputShape := input.Shape()
	if len(inputShape) == 1 && inputShape[0] == m.cfg.InputDim {
		input = input.Reshape(1, m.cfg.InputDim)
	} else if len(inputShape) != 2 || inputShape[1] != m.cfg.InputDim {
		panic(fmt.Sprintf("MLP: input must have shape [batch_size, %d] or [%d], got %v",
			m.cfg.InputDim, m.cfg.InputDim, inputShape))
	}

	return m.net.Forward(input)
}

// Predict returns the most likely class for every row of input.
func (m *MLP[B]) Predict(input *tensor.Tensor[float32, B]) []int32 {
	return m.Forward(input).Argmax(1).Data()
}

// Parameters returns fc1.weight, fc1.bias, fc2.weight, fc2.bias.
func (m *MLP[B]) Parameters() []*nn.Parameter[B] {
	return m.net.Parameters()
}

// NumParameters returns the number of trainable scalars.
func (m *MLP[B]) NumParameters() int {
	return nn.CountParameters(m.Parameters())
}

// Config returns the architecture the model was built with.
func (m *MLP[B]) Config() Config {
	return m.cfg
}

// String describes the layer stack.
func (m *MLP[B]) String() string {
	s := fmt.Sprintf("MLP(fc1: Linear(%d → %d), ReLU, fc2: Linear(%d → %d)",
		m.cfg.InputDim, m.cfg.HiddenDim, m.cfg.HiddenDim, m.cfg.OutputDim)
	if m.cfg.OutputReLU {
		s += ", ReLU"
	}
	return s + ")"
}
