package nn_test

import (
	"math"
	"math/rand"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/born-ml/mnist-mlp/internal/autodiff"
	"github.com/born-ml/mnist-mlp/internal/backend/cpu"
	"github.com/born-ml/mnist-mlp/internal/nn"
	"github.com/born-ml/mnist-mlp/internal/tensor"
)

type Backend = *autodiff.AutodiffBackend[*cpu.CPUBackend]

func TestLinearShapesAndParameters(t *testing.T) {
	backend := autodiff.New(cpu.New())
	layer := nn.NewLinear(784, 500, backend, nn.WithName("fc1"))

	params := layer.Parameters()
	require.Len(t, params, 2)
	assert.Equal(t, "fc1.weight", params[0].Name())
	assert.Equal(t, "fc1.bias", params[1].Name())
	assert.Equal(t, tensor.Shape{500, 784}, params[0].Tensor().Shape())
	assert.Equal(t, tensor.Shape{500}, params[1].Tensor().Shape())
	assert.Equal(t, 392500, nn.CountParameters(params))

	input := tensor.Zeros[float32](tensor.Shape{3, 784}, backend)
	out := layer.Forward(input)
	assert.Equal(t, tensor.Shape{3, 500}, out.Shape())

	// Zero input yields the bias on every row.
	bias := params[1].Tensor().Data()
	for row := 0; row < 3; row++ {
		assert.InDelta(t, bias[7], out.At(row, 7), 1e-6)
	}
}

func TestLinearDefaultInitBounds(t *testing.T) {
	backend := cpu.New()
	layer := nn.NewLinear(100, 20, backend, nn.WithRand(rand.New(rand.NewSource(42))))

	bound := float32(1 / math.Sqrt(100))
	for _, p := range layer.Parameters() {
		for _, v := range p.Tensor().Data() {
			assert.LessOrEqual(t, v, bound)
			assert.GreaterOrEqual(t, v, -bound)
		}
	}
}

func TestLinearXavierZeroBias(t *testing.T) {
	backend := cpu.New()
	layer := nn.NewLinear(10, 4, backend, nn.WithInit(nn.InitXavier))

	for _, v := range layer.Bias().Tensor().Data() {
		assert.Zero(t, v)
	}
	bound := float32(math.Sqrt(6.0 / 14.0))
	for _, v := range layer.Weight().Tensor().Data() {
		assert.LessOrEqual(t, v, bound)
	}
}

func TestLinearSeedIsDeterministic(t *testing.T) {
	backend := cpu.New()
	a := nn.NewLinear(8, 3, backend, nn.WithRand(rand.New(rand.NewSource(7))))
	b := nn.NewLinear(8, 3, backend, nn.WithRand(rand.New(rand.NewSource(7))))
	assert.Equal(t, a.Weight().Tensor().Data(), b.Weight().Tensor().Data())
}

func TestLinearForwardKnownValues(t *testing.T) {
	backend := cpu.New()
	layer := nn.NewLinear(2, 2, backend)
	copy(layer.Weight().Tensor().Data(), []float32{1, 2, 3, 4})
	copy(layer.Bias().Tensor().Data(), []float32{0.5, -0.5})

	input, err := tensor.FromSlice([]float32{1, 1}, tensor.Shape{1, 2}, backend)
	require.NoError(t, err)

	out := layer.Forward(input)
	assert.Equal(t, []float32{3.5, 6.5}, out.Data())
}

func TestLinearPanicsOnWrongFeatures(t *testing.T) {
	backend := cpu.New()
	layer := nn.NewLinear(4, 2, backend)
	input := tensor.Zeros[float32](tensor.Shape{1, 3}, backend)
	assert.Panics(t, func() { layer.Forward(input) })
}

func TestReLU(t *testing.T) {
	backend := cpu.New()
	input, err := tensor.FromSlice([]float32{-1, 0, 2, -3}, tensor.Shape{2, 2}, backend)
	require.NoError(t, err)

	out := nn.NewReLU[*cpu.CPUBackend]().Forward(input)
	assert.Equal(t, []float32{0, 0, 2, 0}, out.Data())
	assert.Nil(t, nn.NewReLU[*cpu.CPUBackend]().Parameters())
}

func TestSequentialCollectsParameters(t *testing.T) {
	backend := autodiff.New(cpu.New())
	model := nn.NewSequential[Backend](
		nn.NewLinear(784, 500, backend),
		nn.NewReLU[Backend](),
		nn.NewLinear(500, 10, backend),
	)

	assert.Equal(t, 3, model.Len())
	assert.Len(t, model.Parameters(), 4)
	assert.Equal(t, 397510, nn.CountParameters(model.Parameters()))

	out := model.Forward(tensor.Zeros[float32](tensor.Shape{2, 784}, backend))
	assert.Equal(t, tensor.Shape{2, 10}, out.Shape())
	assert.Panics(t, func() { model.Module(3) })
}

func TestCrossEntropyUniformLogits(t *testing.T) {
	backend := cpu.New()
	logits := tensor.Zeros[float32](tensor.Shape{2, 10}, backend)
	targets, err := tensor.FromSlice([]int32{3, 9}, tensor.Shape{2}, backend)
	require.NoError(t, err)

	loss := nn.NewCrossEntropyLoss(backend).Forward(logits, targets)
	assert.InDelta(t, math.Log(10), float64(loss.Item()), 1e-5)
}

func TestCrossEntropyGradientsReachParameters(t *testing.T) {
	backend := autodiff.New(cpu.New())
	layer := nn.NewLinear(4, 3, backend)
	criterion := nn.NewCrossEntropyLoss(backend)

	input, err := tensor.FromSlice([]float32{1, 2, 3, 4, -1, 0, 1, 0}, tensor.Shape{2, 4}, backend)
	require.NoError(t, err)
	targets, err := tensor.FromSlice([]int32{0, 2}, tensor.Shape{2}, backend)
	require.NoError(t, err)

	backend.Tape().StartRecording()
	loss := criterion.Forward(layer.Forward(input), targets)
	grads := autodiff.Backward(loss, backend)
	backend.Tape().StopRecording()

	for _, p := range layer.Parameters() {
		g, ok := grads[p.Tensor().Raw()]
		require.True(t, ok, "missing gradient for %s", p.Name())
		assert.Equal(t, p.Tensor().Shape(), g.Shape())
	}

	// Bias gradient columns sum to zero: softmax minus one-hot, averaged.
	var sum float32
	for _, v := range grads[layer.Bias().Tensor().Raw()].AsFloat32() {
		sum += v
	}
	assert.InDelta(t, 0, sum, 1e-5)
}

func TestParameterGrad(t *testing.T) {
	backend := cpu.New()
	p := nn.NewParameter("w", tensor.Ones[float32](tensor.Shape{2}, backend))
	assert.Nil(t, p.Grad())
	p.SetGrad(tensor.Ones[float32](tensor.Shape{2}, backend))
	assert.NotNil(t, p.Grad())
	p.ZeroGrad()
	assert.Nil(t, p.Grad())
	assert.Equal(t, 2, p.NumElements())
}

func TestCountCorrect(t *testing.T) {
	backend := cpu.New()
	logits, err := tensor.FromSlice([]float32{
		0.1, 0.9, 0.0,
		2.0, 1.0, 0.0,
		0.0, 0.0, 5.0,
	}, tensor.Shape{3, 3}, backend)
	require.NoError(t, err)
	targets, err := tensor.FromSlice([]int32{1, 2, 2}, tensor.Shape{3}, backend)
	require.NoError(t, err)

	assert.Equal(t, 2, nn.CountCorrect(logits, targets))
}
