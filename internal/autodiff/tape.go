package autodiff

import (
	"github.com/born-ml/mnist-mlp/internal/autodiff/ops"
	"github.com/born-ml/mnist-mlp/internal/tensor"
)

// GradientTape is the ordered log of operations performed while recording.
// One training step records a forward pass, replays it in reverse with
// Backward, and then clears the log.
type GradientTape struct {
	ops       []ops.Operation
	recording bool
}

// NewGradientTape returns an empty tape that is not recording.
func NewGradientTape() *GradientTape {
	return &GradientTape{ops: make([]ops.Operation, 0, 16)}
}

// StartRecording and StopRecording toggle whether Record logs operations.
func (t *GradientTape) StartRecording() { t.recording = true }
func (t *GradientTape) StopRecording() { t.recording = false }
func (t *GradientTape) IsRecording() bool { return t.recording }

// NumOps is the number of operations logged since the last Clear.
func (t *GradientTape) NumOps() int { return len(t.ops) }

// Root is the output of the newest logged operation, the tensor Backward
// seeds; nil on an empty tape.
func (t *GradientTape) Root() *tensor.RawTensor {
	if len(t.ops) == 0 {
		return nil
	}
	return t.ops[len(t.ops)-1].Output()
}

// Record appends op while recording; otherwise it is dropped.
func (t *GradientTape) Record(op ops.Operation) {
	if !t.recording {
		return
	}
	t.ops = append(t.ops, op)
}

// Clear forgets every logged operation and keeps the recording flag.
// Entries are zeroed so the tensors they reference can be collected.
func (t *GradientTape) Clear() {
	clear(t.ops)
	t.ops = t.ops[:0]
}

// Backward replays the log from newest to oldest. seed is the gradient of
// the newest operation's output. The result maps every tensor that took
// part to dL/dtensor; a tensor used by several operations receives the sum
// of their contributions. Recording is paused for the duration so the
// gradient arithmetic itself is not logged.
func (t *GradientTape) Backward(seed *tensor.RawTensor, backend tensor.Backend) map[*tensor.RawTensor]*tensor.RawTensor {
	grads := make(map[*tensor.RawTensor]*tensor.RawTensor)
	if len(t.ops) == 0 {
		return grads
	}

	defer func(was bool) { t.recording = was }(t.recording)
	t.recording = false

	accumulate := func(x, g *tensor.RawTensor) {
		if prev, ok := grads[x]; ok {
			g = backend.Add(prev, g)
		}
		grads[x] = g
	}

	grads[t.ops[len(t.ops)-1].Output()] = seed
	for i := len(t.ops) - 1; i >= 0; i-- {
		op := t.ops[i]
		g, ok := grads[op.Output()]
		if !ok {
			continue
		}
		inGrads := op.Backward(g, backend)
		for j, in := range op.Inputs() {
			if j < len(inGrads) && inGrads[j] != nil {
				accumulate(in, inGrads[j])
			}
		}
	}
	return grads
}
