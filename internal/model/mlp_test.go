package model_test

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/born-ml/mnist-mlp/internal/autodiff"
	"github.com/born-ml/mnist-mlp/internal/backend/cpu"
	"github.com/born-ml/mnist-mlp/internal/model"
	"github.com/born-ml/mnist-mlp/internal/nn"
	"github.com/born-ml/mnist-mlp/internal/tensor"
)

type Backend = *autodiff.AutodiffBackend[*cpu.CPUBackend]

func TestNumParameters(t *testing.T) {
	m := model.NewMLP(model.DefaultConfig(), cpu.New())

	// 784*500 + 500 + 500*10 + 10
	assert.Equal(t, 397510, m.NumParameters())

	params := m.Parameters()
	require.Len(t, params, 4)
	names := []string{params[0].Name(), params[1].Name(), params[2].Name(), params[3].Name()}
	assert.Equal(t, []string{"fc1.weight", "fc1.bias", "fc2.weight", "fc2.bias"}, names)
}

func TestNumParametersFollowsConfig(t *testing.T) {
	cfg := model.DefaultConfig()
	cfg.HiddenDim = 32
	m := model.NewMLP(cfg, cpu.New())
	assert.Equal(t, 784*32+32+32*10+10, m.NumParameters())
}

func TestForwardShapes(t *testing.T) {
	backend := autodiff.New(cpu.New())
	m := model.NewMLP(model.DefaultConfig(), backend)

	batch := tensor.Zeros[float32](tensor.Shape{4, 784}, backend)
	assert.Equal(t, tensor.Shape{4, 10}, m.Forward(batch).Shape())

	single := tensor.Zeros[float32](tensor.Shape{784}, backend)
	assert.Equal(t, tensor.Shape{1, 10}, m.Forward(single).Shape())

	assert.Panics(t, func() { m.Forward(tensor.Zeros[float32](tensor.Shape{4, 783}, backend)) })
	assert.Panics(t, func() { m.Forward(tensor.Zeros[float32](tensor.Shape{2, 2, 196}, backend)) })
}

func TestOutputReLU(t *testing.T) {
	backend := cpu.New()
	cfg := model.DefaultConfig()
	cfg.OutputReLU = true
	m := model.NewMLP(cfg, backend)

	input := tensor.Ones[float32](tensor.Shape{3, 784}, backend)
	for _, v := range m.Forward(input).Data() {
		assert.GreaterOrEqual(t, v, float32(0))
	}
	assert.Equal(t, 397510, m.NumParameters())
	assert.Contains(t, m.String(), "ReLU)")
}

func TestSeedDeterminism(t *testing.T) {
	backend := cpu.New()
	a := model.NewMLP(model.DefaultConfig(), backend)
	b := model.NewMLP(model.DefaultConfig(), backend)

	input := tensor.Full[float32](tensor.Shape{2, 784}, 0.5, backend)
	assert.Equal(t, a.Forward(input).Data(), b.Forward(input).Data())

	cfg := model.DefaultConfig()
	cfg.Seed = 2
	c := model.NewMLP(cfg, backend)
	assert.NotEqual(t, a.Forward(input).Data(), c.Forward(input).Data())
}

func TestPredict(t *testing.T) {
	backend := cpu.New()
	cfg := model.Config{InputDim: 2, HiddenDim: 2, OutputDim: 2}
	m := model.NewMLP(cfg, backend)

	// Identity hidden layer, swap at the output.
	params := m.Parameters()
	copy(params[0].Tensor().Data(), []float32{1, 0, 0, 1})
	copy(params[1].Tensor().Data(), []float32{0, 0})
	copy(params[2].Tensor().Data(), []float32{0, 1, 1, 0})
	copy(params[3].Tensor().Data(), []float32{0, 0})

	input, err := tensor.FromSlice([]float32{3, 1, 1, 3}, tensor.Shape{2, 2}, backend)
	require.NoError(t, err)
	assert.Equal(t, []int32{1, 0}, m.Predict(input))
}

func TestInvalidConfigPanics(t *testing.T) {
	assert.Panics(t, func() {
		model.NewMLP(model.Config{InputDim: 784, OutputDim: 10}, cpu.New())
	})
}

var _ nn.Module[Backend] = (*model.MLP[Backend])(nil)
