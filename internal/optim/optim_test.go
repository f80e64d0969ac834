package optim_test

import (
	"testing"

	"github.com/born-ml/mnist-mlp/internal/autodiff"
	"github.com/born-ml/mnist-mlp/internal/backend/cpu"
	"github.com/born-ml/mnist-mlp/internal/nn"
	"github.com/born-ml/mnist-mlp/internal/optim"
	"github.com/born-ml/mnist-mlp/internal/tensor"
)

type adBackend = *autodiff.AutodiffBackend[*cpu.CPUBackend]

// Helper to check float equality with tolerance.
func floatEqual(a, b, eps float32) bool {
	diff := a - b
	if diff < 0 {
		diff = -diff
	}
	return diff < eps
}

func scalarParam(t *testing.T, backend adBackend, value float32) *nn.Parameter[adBackend] {
	t.Helper()
	x, err := tensor.FromSlice([]float32{value}, tensor.Shape{1}, backend)
	if err != nil {
		t.Fatalf("FromSlice: %v", err)
	}
	return nn.NewParameter("x", x)
}

func unitGrad(t *testing.T, backend adBackend, param *nn.Parameter[adBackend]) map[*tensor.RawTensor]*tensor.RawTensor {
	t.Helper()
	grad, err := tensor.NewRaw(tensor.Shape{1}, tensor.Float32, backend.Device())
	if err != nil {
		t.Fatalf("NewRaw: %v", err)
	}
	grad.AsFloat32()[0] = 1.0
	return map[*tensor.RawTensor]*tensor.RawTensor{param.Tensor().Raw(): grad}
}

// TestSGD_SimpleUpdate tests SGD without momentum.
func TestSGD_SimpleUpdate(t *testing.T) {
	backend := autodiff.New(cpu.New())
	param := scalarParam(t, backend, 2.0)

	optimizer := optim.NewSGD([]*nn.Parameter[adBackend]{param}, optim.SGDConfig{LR: 0.1}, backend)
	optimizer.Step(unitGrad(t, backend, param))

	// x_new = 2.0 - 0.1 * 1.0
	if got := param.Tensor().Data()[0]; !floatEqual(got, 1.9, 1e-6) {
		t.Errorf("SGD update: got %f, want 1.9", got)
	}
	if param.Grad() == nil {
		t.Error("expected gradient to be stored on the parameter")
	}
}

// TestSGD_WithMomentum tests SGD with momentum.
func TestSGD_WithMomentum(t *testing.T) {
	backend := autodiff.New(cpu.New())
	param := scalarParam(t, backend, 1.0)

	optimizer := optim.NewSGD([]*nn.Parameter[adBackend]{param},
		optim.SGDConfig{LR: 0.1, Momentum: 0.9},
		backend,
	)
	grads := unitGrad(t, backend, param)

	// Step 1: v = 1, x = 1 - 0.1 = 0.9
	optimizer.Step(grads)
	if got := param.Tensor().Data()[0]; !floatEqual(got, 0.9, 1e-6) {
		t.Errorf("step 1: got %f, want 0.9", got)
	}

	// Step 2: v = 0.9 + 1 = 1.9, x = 0.9 - 0.19 = 0.71
	optimizer.Step(grads)
	if got := param.Tensor().Data()[0]; !floatEqual(got, 0.71, 1e-6) {
		t.Errorf("step 2: got %f, want 0.71", got)
	}
}

func TestSGD_SkipsMissingGradient(t *testing.T) {
	backend := autodiff.New(cpu.New())
	param := scalarParam(t, backend, 3.0)

	optimizer := optim.NewSGD([]*nn.Parameter[adBackend]{param}, optim.SGDConfig{LR: 0.5}, backend)
	optimizer.Step(map[*tensor.RawTensor]*tensor.RawTensor{})

	if got := param.Tensor().Data()[0]; got != 3.0 {
		t.Errorf("parameter changed without gradient: got %f", got)
	}
}

func TestSGD_DefaultsAndLR(t *testing.T) {
	backend := autodiff.New(cpu.New())
	optimizer := optim.NewSGD[adBackend](nil, optim.SGDConfig{}, backend)

	if got := optimizer.GetLR(); got != optim.DefaultLR {
		t.Errorf("default LR: got %f, want %f", got, optim.DefaultLR)
	}
	optimizer.SetLR(0.5)
	if got := optimizer.GetLR(); got != 0.5 {
		t.Errorf("SetLR: got %f, want 0.5", got)
	}

	var _ optim.Optimizer = optimizer
}

func TestSGD_InvalidMomentumPanics(t *testing.T) {
	defer func() {
		if recover() == nil {
			t.Error("expected panic for momentum >= 1")
		}
	}()
	optim.NewSGD[adBackend](nil, optim.SGDConfig{Momentum: 1.0}, autodiff.New(cpu.New()))
}

func TestSGD_ZeroGrad(t *testing.T) {
	backend := autodiff.New(cpu.New())
	param := scalarParam(t, backend, 1.0)
	optimizer := optim.NewSGD([]*nn.Parameter[adBackend]{param}, optim.SGDConfig{LR: 0.1}, backend)

	optimizer.Step(unitGrad(t, backend, param))
	optimizer.ZeroGrad()
	if param.Grad() != nil {
		t.Error("ZeroGrad left a gradient behind")
	}
}

// TestSGD_MinimizesQuadratic runs a full record/backward/step loop on f(x) = x^2.
func TestSGD_MinimizesQuadratic(t *testing.T) {
	backend := autodiff.New(cpu.New())
	param := scalarParam(t, backend, 5.0)
	optimizer := optim.NewSGD([]*nn.Parameter[adBackend]{param}, optim.SGDConfig{LR: 0.1}, backend)

	for range 50 {
		optimizer.ZeroGrad()
		backend.Tape().Clear()
		backend.Tape().StartRecording()
		x := param.Tensor()
		loss := x.Mul(x)
		grads := autodiff.Backward(loss, backend)
		backend.Tape().StopRecording()
		optimizer.Step(grads)
	}

	if got := param.Tensor().Data()[0]; !floatEqual(got, 0, 1e-3) {
		t.Errorf("expected x to converge to 0, got %f", got)
	}
}
