package nn

import (
	"fmt"

	"github.com/born-ml/mnist-mlp/internal/autodiff/ops"
	"github.com/born-ml/mnist-mlp/internal/tensor"
)

// CrossEntropyBackend is implemented by backends with a fused loss kernel.
// The autodiff backend uses it to log the loss as a single tape entry.
type CrossEntropyBackend interface {
	CrossEntropy(logits, targets *tensor.RawTensor) *tensor.RawTensor
}

// CrossEntropyLoss is mean(−log softmax(logits)[label]) over a batch.
// It takes unnormalised logits; the network output must not be softmaxed.
//
//	loss := nn.NewCrossEntropyLoss(backend).Forward(logits, labels) // scalar
type CrossEntropyLoss[B tensor.Backend] struct {
	backend B
}

func NewCrossEntropyLoss[B tensor.Backend](backend B) *CrossEntropyLoss[B] {
	return &CrossEntropyLoss[B]{backend: backend}
}

// Forward returns the scalar loss for logits [n,k] and int32 labels [n].
// It panics on other shapes or on a label outside [0,k).
func (c *CrossEntropyLoss[B]) Forward(
	logits *tensor.Tensor[float32, B],
	targets *tensor.Tensor[int32, B],
) *tensor.Tensor[float32, B] {
	var loss *tensor.RawTensor
	if k, ok := any(c.backend).(CrossEntropyBackend); ok {
		loss = k.CrossEntropy(logits.Raw(), targets.Raw())
	} else {
		loss = ops.CrossEntropyForward(logits.Raw(), targets.Raw(), c.backend.Device())
	}
	return tensor.New[float32, B](loss, c.backend)
}

func (c *CrossEntropyLoss[B]) Parameters() []*Parameter[B] { return nil }

// CountCorrect is the number of rows whose highest logit is at the label.
// Ties go to the lowest index.
func CountCorrect[B tensor.Backend](
	logits *tensor.Tensor[float32, B],
	targets *tensor.Tensor[int32, B],
) int {
	ls, ts := logits.Shape(), targets.Shape()
	if len(ls) != 2 || len(ts) != 1 || ts[0] != ls[0] {
		panic(fmt.Sprintf("nn: CountCorrect with logits %v and targets %v", ls, ts))
	}

	pred := logits.Argmax(1).Data()
	n := 0
	for i, y := range targets.Data() {
		if pred[i] == y {
			n++
		}
	}
	return n
}
