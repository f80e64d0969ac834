// Package autodiff adds reverse-mode differentiation to any tensor.Backend.
// AutodiffBackend computes through the backend it wraps and, while its tape
// is recording, logs every differentiable operation so the gradient of a
// scalar loss can be replayed back to the parameters.
//
//	backend := autodiff.New(cpu.New())
//	backend.Tape().StartRecording()
//	logits := model.Forward(images)
//	loss := criterion.Forward(logits, labels)
//	grads := autodiff.Backward(loss, backend)
//	backend.Tape().StopRecording()
package autodiff

import (
	"fmt"

	"github.com/born-ml/mnist-mlp/internal/autodiff/ops"
	"github.com/born-ml/mnist-mlp/internal/tensor"
)

// reluBackend is satisfied by inner backends that implement ReLU natively.
type reluBackend interface {
	ReLU(x *tensor.RawTensor) *tensor.RawTensor
}

// AutodiffBackend is a tensor.Backend that records what it computes.
type AutodiffBackend[B tensor.Backend] struct {
	inner B
	tape  *GradientTape
}

// New wraps backend with a fresh, idle tape.
func New[B tensor.Backend](backend B) *AutodiffBackend[B] {
	return &AutodiffBackend[B]{inner: backend, tape: NewGradientTape()}
}

// Tape exposes the tape so callers can start, stop and clear recording.
func (b *AutodiffBackend[B]) Tape() *GradientTape { return b.tape }

// Inner is the wrapped backend.
func (b *AutodiffBackend[B]) Inner() B { return b.inner }

func (b *AutodiffBackend[B]) Name() string { return "Autodiff(" + b.inner.Name() + ")" }

func (b *AutodiffBackend[B]) Device() tensor.Device { return b.inner.Device() }

// record logs op and hands back its output so forwarding methods stay
// one expression long.
func (b *AutodiffBackend[B]) record(op ops.Operation) *tensor.RawTensor {
	b.tape.Record(op)
	return op.Output()
}

// Differentiable operations. Each runs on the inner backend and logs
// itself on the tape when recording is on.

func (b *AutodiffBackend[B]) Add(x, y *tensor.RawTensor) *tensor.RawTensor {
	return b.record(ops.NewAddOp(x, y, b.inner.Add(x, y)))
}

func (b *AutodiffBackend[B]) Sub(x, y *tensor.RawTensor) *tensor.RawTensor {
	return b.record(ops.NewSubOp(x, y, b.inner.Sub(x, y)))
}

func (b *AutodiffBackend[B]) Mul(x, y *tensor.RawTensor) *tensor.RawTensor {
	return b.record(ops.NewMulOp(x, y, b.inner.Mul(x, y)))
}

func (b *AutodiffBackend[B]) MulScalar(x *tensor.RawTensor, s float32) *tensor.RawTensor {
	return b.record(ops.NewMulScalarOp(x, b.inner.MulScalar(x, s), s))
}

func (b *AutodiffBackend[B]) MatMul(x, y *tensor.RawTensor) *tensor.RawTensor {
	return b.record(ops.NewMatMulOp(x, y, b.inner.MatMul(x, y)))
}

// Reshape is logged because Linear lifts its [out] bias to [1,out]; the
// bias gradient has to be routed back through it.
func (b *AutodiffBackend[B]) Reshape(x *tensor.RawTensor, shape tensor.Shape) *tensor.RawTensor {
	return b.record(ops.NewReshapeOp(x, b.inner.Reshape(x, shape)))
}

// Transpose is logged because Linear multiplies by Wᵀ, a fresh tensor whose
// gradient belongs to W.
func (b *AutodiffBackend[B]) Transpose(x *tensor.RawTensor, axes ...int) *tensor.RawTensor {
	return b.record(ops.NewTransposeOp(x, b.inner.Transpose(x, axes...)))
}

// ReLU prefers the inner backend's kernel and falls back to a plain loop.
func (b *AutodiffBackend[B]) ReLU(x *tensor.RawTensor) *tensor.RawTensor {
	if k, ok := any(b.inner).(reluBackend); ok {
		return b.record(ops.NewReLUOp(x, k.ReLU(x)))
	}

	out, err := tensor.NewRaw(x.Shape(), tensor.Float32, b.Device())
	if err != nil {
		panic(fmt.Sprintf("autodiff: relu: %v", err))
	}
	dst := out.AsFloat32()
	for i, v := range x.AsFloat32() {
		dst[i] = max(v, 0)
	}
	return b.record(ops.NewReLUOp(x, out))
}

// CrossEntropy is the mean softmax cross-entropy of logits [n,k] against
// int32 labels [n]. The result is a scalar.
func (b *AutodiffBackend[B]) CrossEntropy(logits, targets *tensor.RawTensor) *tensor.RawTensor {
	loss := ops.CrossEntropyForward(logits, targets, b.Device())
	return b.record(ops.NewCrossEntropyOp(logits, targets, loss))
}

// Non-differentiable operations pass straight through. SumDim is used by
// backward rules; Argmax is used for accuracy.

func (b *AutodiffBackend[B]) SumDim(x *tensor.RawTensor, dim int, keepDim bool) *tensor.RawTensor {
	return b.inner.SumDim(x, dim, keepDim)
}

func (b *AutodiffBackend[B]) Argmax(x *tensor.RawTensor, dim int) *tensor.RawTensor {
	return b.inner.Argmax(x, dim)
}
