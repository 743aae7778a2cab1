package lstm

import (
	"fmt"
	"math/rand"

	"github.com/gonum/floats"
)

// DefaultWeightSD is the standard deviation of the normal distribution
// weights are drawn from when a network is created.
const DefaultWeightSD = 0.1

// gateOffset is added to the forget, input and output gate weights at
// initialization so that the gates start mostly open.
const gateOffset = 0.5

// Parameters holds all trainable tensors of an LSTM network.
//
// HSize is the size of the hidden and cell states, ZSize is the size of the
// concatenation of the previous hidden state and the input, and NClasses is
// the size of the output distribution.
type Parameters struct {
	HSize    int
	ZSize    int
	NClasses int

	Wf *Param // forget gate
	Wi *Param // input gate
	WC *Param // candidate cell state
	Wo *Param // output gate
	Wv *Param // output projection

	Bf *Param
	Bi *Param
	BC *Param
	Bo *Param
	Bv *Param
}

// NewParameters creates the parameters of a network with hidden size hSize,
// concatenated input size zSize and nClasses output classes.
// Weights are drawn from rng, or from the default source if rng is nil.
func NewParameters(hSize, zSize, nClasses int, weightSD float64, rng *rand.Rand) (*Parameters, error) {
	if hSize <= 0 || zSize <= 0 || nClasses <= 0 {
		return nil, fmt.Errorf("%w: H=%d Z=%d N=%d", ErrInvalidDimension, hSize, zSize, nClasses)
	}
	if zSize <= hSize {
		return nil, fmt.Errorf("%w: Z=%d leaves no room for input features with H=%d", ErrInvalidDimension, zSize, hSize)
	}
	p := newEmptyParameters(hSize, zSize, nClasses)

	norm := rand.NormFloat64
	if rng != nil {
		norm = rng.NormFloat64
	}
	randn := func(w *Param, offset float64) {
		for i := range w.V {
			w.V[i] = norm()*weightSD + offset
		}
	}
	randn(p.Wf, gateOffset)
	randn(p.Wi, gateOffset)
	randn(p.WC, 0)
	randn(p.Wo, gateOffset)
	randn(p.Wv, 0)
	return p, nil
}

func newEmptyParameters(hSize, zSize, nClasses int) *Parameters {
	return &Parameters{
		HSize:    hSize,
		ZSize:    zSize,
		NClasses: nClasses,

		Wf: newParam("W_f", hSize, zSize),
		Wi: newParam("W_i", hSize, zSize),
		WC: newParam("W_C", hSize, zSize),
		Wo: newParam("W_o", hSize, zSize),
		Wv: newParam("W_v", nClasses, hSize),

		Bf: newParam("b_f", hSize, 1),
		Bi: newParam("b_i", hSize, 1),
		BC: newParam("b_C", hSize, 1),
		Bo: newParam("b_o", hSize, 1),
		Bv: newParam("b_v", nClasses, 1),
	}
}

// XSize returns the size of the input feature vector.
func (p *Parameters) XSize() int {
	return p.ZSize - p.HSize
}

// All returns every Param in a fixed order: the five weight matrices followed
// by the five biases.
func (p *Parameters) All() []*Param {
	return []*Param{p.Wf, p.Wi, p.WC, p.Wo, p.Wv, p.Bf, p.Bi, p.BC, p.Bo, p.Bv}
}

// Param returns the Param with the given name.
func (p *Parameters) Param(name string) (*Param, bool) {
	for _, w := range p.All() {
		if w.Name == name {
			return w, true
		}
	}
	return nil, false
}

// NumWeights returns the total number of scalar weights.
func (p *Parameters) NumWeights() int {
	n := 0
	for _, w := range p.All() {
		n += w.Len()
	}
	return n
}

// ClearGradients sets the gradients of all weights to zero.
func (p *Parameters) ClearGradients() {
	for _, w := range p.All() {
		w.ClearGradient()
	}
}

// AddGradients adds the gradients accumulated in q onto those of p.
func (p *Parameters) AddGradients(q *Parameters) error {
	ps, qs := p.All(), q.All()
	for i := range ps {
		if !ps[i].sameShape(qs[i]) {
			return fmt.Errorf("%w: %s is %dx%d, got %dx%d", ErrShapeMismatch, ps[i].Name, ps[i].Rows, ps[i].Cols, qs[i].Rows, qs[i].Cols)
		}
	}
	for i := range ps {
		floats.Add(ps[i].D, qs[i].D)
	}
	return nil
}

// shadow returns a Parameters that shares its values with p but has its own
// zeroed gradients. Momentum is not shared and stays nil.
func (p *Parameters) shadow() *Parameters {
	s := &Parameters{HSize: p.HSize, ZSize: p.ZSize, NClasses: p.NClasses}
	dst := []**Param{&s.Wf, &s.Wi, &s.WC, &s.Wo, &s.Wv, &s.Bf, &s.Bi, &s.BC, &s.Bo, &s.Bv}
	for i, w := range p.All() {
		*dst[i] = &Param{
			Name: w.Name,
			Rows: w.Rows,
			Cols: w.Cols,
			V:    w.V,
			D:    make([]float64, len(w.D)),
		}
	}
	return s
}
