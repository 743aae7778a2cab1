package lstm

import (
	"fmt"
	"math"

	"github.com/gonum/floats"
)

const adagradEpsilon = 1e-8

// An Optimizer updates the values of Parameters from their accumulated gradients.
type Optimizer interface {
	// Step applies the accumulated gradients.
	Step()
	// ZeroGrad clears the accumulated gradients. It must be called between steps.
	ZeroGrad()
}

// Adagrad scales the learning rate of each weight by the inverse square root
// of the sum of its squared gradients.
type Adagrad struct {
	Params       *Parameters
	LearningRate float64
}

func NewAdagrad(p *Parameters, lr float64) *Adagrad {
	return &Adagrad{Params: p, LearningRate: lr}
}

func (a *Adagrad) Step() {
	for _, w := range a.Params.All() {
		for i, d := range w.D {
			w.M[i] += d * d
			w.V[i] -= a.LearningRate * d / math.Sqrt(w.M[i]+adagradEpsilon)
		}
	}
}

func (a *Adagrad) ZeroGrad() {
	a.Params.ClearGradients()
}

// Train clears the gradients, backpropagates over one sequence and applies
// the resulting gradients.
func (a *Adagrad) Train(x [][]float64, y []int, s State) (*Sequence, error) {
	return train(a, a.Params, x, y, s)
}

// SGDMomentum is stochastic gradient descent with classical momentum.
type SGDMomentum struct {
	Params       *Parameters
	LearningRate float64
	Momentum     float64
	PrevD        [][]float64
}

func NewSGDMomentum(p *Parameters, lr, mt float64) *SGDMomentum {
	s := SGDMomentum{
		Params:       p,
		LearningRate: lr,
		Momentum:     mt,
		PrevD:        make([][]float64, 0, 10),
	}
	for _, w := range p.All() {
		s.PrevD = append(s.PrevD, make([]float64, w.Len()))
	}
	return &s
}

func (s *SGDMomentum) Step() {
	for i, w := range s.Params.All() {
		prev := s.PrevD[i]
		floats.Scale(s.Momentum, prev)
		floats.AddScaled(prev, -s.LearningRate, w.D)
		floats.Add(w.V, prev)
	}
}

func (s *SGDMomentum) ZeroGrad() {
	s.Params.ClearGradients()
}

func (s *SGDMomentum) Train(x [][]float64, y []int, st State) (*Sequence, error) {
	return train(s, s.Params, x, y, st)
}

// NewOptimizer returns the optimizer called name, either "adagrad" or "sgd".
func NewOptimizer(name string, p *Parameters, lr, mt float64) (Optimizer, error) {
	switch name {
	case "adagrad":
		return NewAdagrad(p, lr), nil
	case "sgd":
		return NewSGDMomentum(p, lr, mt), nil
	}
	return nil, fmt.Errorf("unknown optimizer %q", name)
}

func train(o Optimizer, p *Parameters, x [][]float64, y []int, s State) (*Sequence, error) {
	o.ZeroGrad()
	seq, err := ForwardBackward(p, x, y, s)
	if err != nil {
		return nil, err
	}
	o.Step()
	return seq, nil
}
