// Package optim updates model parameters from the gradients produced by a
// backward pass. SGD is the only optimizer; one training step looks like:
//
//	opt := optim.NewSGD(model.Parameters(), optim.SGDConfig{LR: 0.01}, backend)
//
//	tape := backend.Tape()
//	tape.Clear()
//	tape.StartRecording()
//	loss := criterion.Forward(model.Forward(batch.Images), batch.Labels)
//	grads := autodiff.Backward(loss, backend)
//	tape.StopRecording()
//	opt.Step(grads)
package optim

import (
	"github.com/born-ml/mnist-mlp/internal/nn"
	"github.com/born-ml/mnist-mlp/internal/tensor"
)

// Optimizer is what the trainer needs from an update rule.
type Optimizer interface {
	// Step modifies parameters in place. grads is the map returned by
	// autodiff.Backward, keyed by each parameter's RawTensor.
	Step(grads map[*tensor.RawTensor]*tensor.RawTensor)
	ZeroGrad()
	GetLR() float32
}

// getGradient looks up param's gradient; nil means it was not reached by
// the backward pass.
func getGradient[B tensor.Backend](param *nn.Parameter[B], grads map[*tensor.RawTensor]*tensor.RawTensor) *tensor.RawTensor {
	if param == nil {
		return nil
	}
	return grads[param.Tensor().Raw()]
}
