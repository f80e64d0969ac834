package autodiff_test

import (
	"math"
	"testing"

	"github.com/born-ml/mnist-mlp/internal/autodiff"
	"github.com/born-ml/mnist-mlp/internal/backend/cpu"
	"github.com/born-ml/mnist-mlp/internal/tensor"
)

type adBackend = *autodiff.AutodiffBackend[*cpu.CPUBackend]

func float32Near(a, b, eps float32) bool {
	return math.Abs(float64(a-b)) < float64(eps)
}

func TestAutodiffBackend_Name(t *testing.T) {
	backend := autodiff.New(cpu.New())
	if backend.Name() != "Autodiff(CPU)" {
		t.Errorf("Name() = %s, want Autodiff(CPU)", backend.Name())
	}
	if backend.Device() != tensor.CPU {
		t.Errorf("Device() = %v, want CPU", backend.Device())
	}
}

func TestTape_Recording(t *testing.T) {
	backend := autodiff.New(cpu.New())
	tape := backend.Tape()

	if tape.IsRecording() {
		t.Error("Tape should not be recording initially")
	}

	a, _ := tensor.FromSlice([]float32{1, 2}, tensor.Shape{2}, backend)
	_ = a.Add(a)
	if tape.NumOps() != 0 {
		t.Errorf("NumOps() = %d before recording, want 0", tape.NumOps())
	}

	tape.StartRecording()
	_ = a.Add(a).Mul(a)
	if tape.NumOps() != 2 {
		t.Errorf("NumOps() = %d, want 2", tape.NumOps())
	}

	tape.Clear()
	if tape.NumOps() != 0 || !tape.IsRecording() {
		t.Error("Clear() should drop ops and keep recording state")
	}

	tape.StopRecording()
	if tape.IsRecording() {
		t.Error("Tape should not be recording after StopRecording()")
	}
}

func TestBackward_NoOpsPanics(t *testing.T) {
	backend := autodiff.New(cpu.New())
	x, _ := tensor.FromSlice([]float32{1}, tensor.Shape{1}, backend)

	defer func() {
		if recover() == nil {
			t.Error("Backward without recorded ops should panic")
		}
	}()
	autodiff.Backward(x, backend)
}

func TestBackward_NonRootPanics(t *testing.T) {
	backend := autodiff.New(cpu.New())
	backend.Tape().StartRecording()

	x, _ := tensor.FromSlice([]float32{3}, tensor.Shape{1}, backend)
	y := x.Mul(x)
	z := y.MulScalar(2)
	if backend.Tape().Root() != z.Raw() {
		t.Fatal("Root() should be the output of the last operation")
	}

	defer func() {
		if recover() == nil {
			t.Error("Backward on an intermediate tensor should panic")
		}
	}()
	autodiff.Backward(y, backend)
}

func TestBackward_Square(t *testing.T) {
	backend := autodiff.New(cpu.New())
	backend.Tape().StartRecording()

	// y = x * x, dy/dx = 2x
	x, _ := tensor.FromSlice([]float32{3}, tensor.Shape{1}, backend)
	y := x.Mul(x)

	grads := autodiff.Backward(y, backend)
	got := grads[x.Raw()].AsFloat32()[0]
	if !float32Near(got, 6, 1e-6) {
		t.Errorf("dy/dx = %f, want 6", got)
	}
}

func TestBackward_SubAndScalar(t *testing.T) {
	backend := autodiff.New(cpu.New())
	backend.Tape().StartRecording()

	// y = 3 * (a - b)
	a, _ := tensor.FromSlice([]float32{5}, tensor.Shape{1}, backend)
	b, _ := tensor.FromSlice([]float32{2}, tensor.Shape{1}, backend)
	y := a.Sub(b).MulScalar(3)

	grads := autodiff.Backward(y, backend)
	if got := grads[a.Raw()].AsFloat32()[0]; !float32Near(got, 3, 1e-6) {
		t.Errorf("dy/da = %f, want 3", got)
	}
	if got := grads[b.Raw()].AsFloat32()[0]; !float32Near(got, -3, 1e-6) {
		t.Errorf("dy/db = %f, want -3", got)
	}
}

func TestBackward_BroadcastBias(t *testing.T) {
	backend := autodiff.New(cpu.New())
	backend.Tape().StartRecording()

	// y = x + reshape(b) with x [3,2], b [2]; dy/db = column sums of ones = 3.
	x := tensor.Ones[float32](tensor.Shape{3, 2}, backend)
	bias, _ := tensor.FromSlice([]float32{0.5, -0.5}, tensor.Shape{2}, backend)
	y := x.Add(bias.Reshape(1, 2))

	grads := autodiff.Backward(y, backend)
	gb, ok := grads[bias.Raw()]
	if !ok {
		t.Fatal("no gradient reached the bias")
	}
	if !gb.Shape().Equal(tensor.Shape{2}) {
		t.Fatalf("bias grad shape = %v, want [2]", gb.Shape())
	}
	for _, v := range gb.AsFloat32() {
		if !float32Near(v, 3, 1e-6) {
			t.Errorf("bias grad = %v, want [3 3]", gb.AsFloat32())
			break
		}
	}
}

func TestBackward_ReusedTensorAccumulates(t *testing.T) {
	backend := autodiff.New(cpu.New())
	backend.Tape().StartRecording()

	// y = x + x*x at x=2 → dy/dx = 1 + 2x = 5
	x, _ := tensor.FromSlice([]float32{2}, tensor.Shape{1}, backend)
	y := x.Add(x.Mul(x))

	grads := autodiff.Backward(y, backend)
	if got := grads[x.Raw()].AsFloat32()[0]; !float32Near(got, 5, 1e-6) {
		t.Errorf("dy/dx = %f, want 5", got)
	}
}

func TestBackward_ReLUMask(t *testing.T) {
	backend := autodiff.New(cpu.New())
	backend.Tape().StartRecording()

	x, _ := tensor.FromSlice([]float32{-1, 2, 0, 3}, tensor.Shape{4}, backend)
	y := tensor.New[float32](backend.ReLU(x.Raw()), backend)

	if want := []float32{0, 2, 0, 3}; !equalSlices(y.Data(), want) {
		t.Fatalf("ReLU forward = %v, want %v", y.Data(), want)
	}

	grads := autodiff.Backward(y, backend)
	if want := []float32{0, 1, 0, 1}; !equalSlices(grads[x.Raw()].AsFloat32(), want) {
		t.Errorf("ReLU grad = %v, want %v", grads[x.Raw()].AsFloat32(), want)
	}
}

func TestCrossEntropy_ForwardBackward(t *testing.T) {
	backend := autodiff.New(cpu.New())
	backend.Tape().StartRecording()

	// Uniform logits over 4 classes: loss = log(4).
	logits := tensor.Zeros[float32](tensor.Shape{2, 4}, backend)
	targets, _ := tensor.FromSlice([]int32{1, 3}, tensor.Shape{2}, backend)

	loss := tensor.New[float32](backend.CrossEntropy(logits.Raw(), targets.Raw()), backend)
	if !float32Near(loss.Item(), float32(math.Log(4)), 1e-5) {
		t.Errorf("loss = %f, want %f", loss.Item(), math.Log(4))
	}

	grads := autodiff.Backward(loss, backend)
	g := grads[logits.Raw()].AsFloat32()

	// (0.25 - onehot) / 2
	want := []float32{0.125, -0.375, 0.125, 0.125, 0.125, 0.125, 0.125, -0.375}
	for i := range want {
		if !float32Near(g[i], want[i], 1e-6) {
			t.Fatalf("grad = %v, want %v", g, want)
		}
	}
}

func TestCrossEntropy_TargetOutOfRangePanics(t *testing.T) {
	backend := autodiff.New(cpu.New())
	logits := tensor.Zeros[float32](tensor.Shape{1, 3}, backend)
	targets, _ := tensor.FromSlice([]int32{3}, tensor.Shape{1}, backend)

	defer func() {
		if recover() == nil {
			t.Error("expected panic for target out of range")
		}
	}()
	backend.CrossEntropy(logits.Raw(), targets.Raw())
}

func equalSlices(a, b []float32) bool {
	if len(a) != len(b) {
		return false
	}
	for i := range a {
		if !float32Near(a[i], b[i], 1e-6) {
			return false
		}
	}
	return true
}
