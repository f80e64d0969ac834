package autodiff

import (
	"fmt"

	"github.com/born-ml/mnist-mlp/internal/tensor"
)

// BackwardCapable is a backend with a tape to replay.
type BackwardCapable interface {
	tensor.Backend
	GetTape() *GradientTape
}

// GetTape implements BackwardCapable.
func (b *AutodiffBackend[B]) GetTape() *GradientTape { return b.tape }

// Backward differentiates t, the output of the most recent recorded
// operation, with respect to every tensor on the tape. The seed gradient is
// all ones, which for a scalar loss gives dL/dx directly:
//
//	loss := criterion.Forward(logits, labels)
//	grads := autodiff.Backward(loss, backend)
//	dW := grads[fc1.Weight().Tensor().Raw()]
//
// It panics when nothing was recorded, when t is not float32, or when t is
// not the output of the newest recorded operation.
func Backward[T tensor.DType, B BackwardCapable](t *tensor.Tensor[T, B], backend B) map[*tensor.RawTensor]*tensor.RawTensor {
	tape := backend.GetTape()
	switch {
	case tape.NumOps() == 0:
		panic("autodiff: Backward on an empty tape; call Tape().StartRecording() before the forward pass")
	case t.DType() != tensor.Float32:
		panic(fmt.Sprintf("autodiff: cannot differentiate %s tensor", t.DType()))
	case t.Raw() != tape.Root():
		panic("autodiff: Backward target is not the output of the last recorded operation")
	}

	seed, err := tensor.NewRaw(t.Shape(), tensor.Float32, backend.Device())
	if err != nil {
		panic(fmt.Sprintf("autodiff: seed gradient: %v", err))
	}
	ones := seed.AsFloat32()
	for i := range ones {
		ones[i] = 1
	}
	return tape.Backward(seed, backend)
}
