package optim

import (
	"fmt"

	"github.com/born-ml/mnist-mlp/internal/nn"
	"github.com/born-ml/mnist-mlp/internal/tensor"
)

// DefaultLR replaces a zero SGDConfig.LR.
const DefaultLR = 0.01

// SGD is minibatch stochastic gradient descent. With Momentum μ > 0 each
// parameter carries a velocity v:
//
//	v ← μ·v + g
//	θ ← θ − lr·v
//
// and with μ = 0 the step is simply θ ← θ − lr·g. Step must be called
// with the tape stopped so the updates are not recorded.
type SGD[B tensor.Backend] struct {
	params     []*nn.Parameter[B]
	lr         float32
	momentum   float32
	velocities map[*nn.Parameter[B]]*tensor.Tensor[float32, B]
	backend    B
}

// SGDConfig configures NewSGD.
type SGDConfig struct {
	LR       float32 // step size; 0 selects DefaultLR
	Momentum float32 // in [0, 1); 0 disables momentum
}

// NewSGD returns an optimizer over params. It panics on a negative LR or a
// Momentum outside [0, 1).
func NewSGD[B tensor.Backend](params []*nn.Parameter[B], config SGDConfig, backend B) *SGD[B] {
	switch {
	case config.LR == 0:
		config.LR = DefaultLR
	case config.LR < 0:
		panic(fmt.Sprintf("optim: negative learning rate %g", config.LR))
	}
	if config.Momentum < 0 || config.Momentum >= 1 {
		panic(fmt.Sprintf("optim: momentum %g outside [0, 1)", config.Momentum))
	}

	return &SGD[B]{
		params:     params,
		lr:         config.LR,
		momentum:   config.Momentum,
		velocities: make(map[*nn.Parameter[B]]*tensor.Tensor[float32, B]),
		backend:    backend,
	}
}

// Step updates every parameter that has an entry in grads and stores that
// gradient on the parameter. Parameters absent from grads are left alone.
func (s *SGD[B]) Step(grads map[*tensor.RawTensor]*tensor.RawTensor) {
	for _, p := range s.params {
		raw := getGradient(p, grads)
		if raw == nil {
			continue
		}
		if want := p.Tensor().Shape(); !raw.Shape().Equal(want) {
			panic(fmt.Sprintf("optim: %s gradient is %v, parameter is %v", p.Name(), raw.Shape(), want))
		}

		g := tensor.New[float32, B](raw, s.backend)
		p.SetGrad(g)
		s.apply(p, s.direction(p, g))
	}
}

// direction is the vector the parameter moves against: the gradient itself,
// or the updated velocity when momentum is on.
func (s *SGD[B]) direction(p *nn.Parameter[B], g *tensor.Tensor[float32, B]) *tensor.Tensor[float32, B] {
	if s.momentum == 0 {
		return g
	}
	v, ok := s.velocities[p]
	if !ok {
		s.velocities[p] = g.Clone()
		return s.velocities[p]
	}
	v = v.MulScalar(s.momentum).Add(g)
	s.velocities[p] = v
	return v
}

// apply writes θ − lr·d back into the parameter's own storage. The
// RawTensor pointer must not change since it keys the gradient map.
func (s *SGD[B]) apply(p *nn.Parameter[B], d *tensor.Tensor[float32, B]) {
	theta := p.Tensor().Raw().AsFloat32()
	next := p.Tensor().Sub(d.MulScalar(s.lr))
	copy(theta, next.Raw().AsFloat32())
}

// ZeroGrad drops the stored gradient of every parameter.
func (s *SGD[B]) ZeroGrad() {
	for _, p := range s.params {
		p.ZeroGrad()
	}
}

func (s *SGD[B]) GetLR() float32 { return s.lr }

// SetLR changes the step size for subsequent Steps.
func (s *SGD[B]) SetLR(lr float32) { s.lr = lr }

func (s *SGD[B]) Momentum() float32 { return s.momentum }
