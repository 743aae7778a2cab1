package lstm

import (
	"fmt"
	"math"

	"github.com/gonum/blas"
	"github.com/gonum/floats"
)

// A Cache holds the intermediate values of one forward timestep, which are
// needed by the backward pass of the same timestep.
type Cache struct {
	Z    []float64 // concatenation of the previous hidden state and the input
	F    []float64 // forget gate
	I    []float64 // input gate
	CBar []float64 // candidate cell state
	C    []float64 // cell state
	O    []float64 // output gate
	H    []float64 // hidden state
	V    []float64 // logits
	Y    []float64 // output distribution
}

// Forward performs one timestep of the network on input x, given the hidden
// state hPrev and cell state cPrev of the previous timestep.
// It only reads p.
func Forward(p *Parameters, x, hPrev, cPrev []float64) (*Cache, error) {
	if len(x) != p.XSize() {
		return nil, fmt.Errorf("%w: input has length %d, want %d", ErrShapeMismatch, len(x), p.XSize())
	}
	if len(hPrev) != p.HSize || len(cPrev) != p.HSize {
		return nil, fmt.Errorf("%w: previous state has lengths %d, %d, want %d", ErrShapeMismatch, len(hPrev), len(cPrev), p.HSize)
	}

	c := Cache{Z: make([]float64, 0, p.ZSize)}
	c.Z = append(c.Z, hPrev...)
	c.Z = append(c.Z, x...)

	c.F = gate(p.Wf, p.Bf, c.Z, Sigmoid)
	c.I = gate(p.Wi, p.Bi, c.Z, Sigmoid)
	c.CBar = gate(p.WC, p.BC, c.Z, Tanh)

	c.C = make([]float64, p.HSize)
	for i := range c.C {
		c.C[i] = c.F[i]*cPrev[i] + c.I[i]*c.CBar[i]
	}

	c.O = gate(p.Wo, p.Bo, c.Z, Sigmoid)
	c.H = make([]float64, p.HSize)
	for i := range c.H {
		c.H[i] = c.O[i] * math.Tanh(c.C[i])
	}

	c.V = make([]float64, p.NClasses)
	copy(c.V, p.Bv.V)
	mulVec(blas.NoTrans, 1, p.Wv.val(), c.H, 1, c.V)
	c.Y = Softmax(nil, c.V)

	return &c, nil
}

// gate returns act(W*z + b).
func gate(w, b *Param, z []float64, act func(float64) float64) []float64 {
	out := make([]float64, w.Rows)
	copy(out, b.V)
	mulVec(blas.NoTrans, 1, w.val(), z, 1, out)
	apply(out, act)
	return out
}

// Backward performs the backward pass of the timestep cached in c, whose
// correct output class is target. dhNext and dcNext are the gradients flowing
// in from the next timestep, or zeros at the end of a sequence, and cPrev is
// the cell state that was passed to Forward.
// Gradients are added onto those already in p, never overwritten.
// The returned gradients are to be passed to the backward pass of the
// previous timestep.
func Backward(p *Parameters, target int, dhNext, dcNext, cPrev []float64, c *Cache) (dhPrev, dcPrev []float64, err error) {
	if target < 0 || target >= p.NClasses {
		return nil, nil, fmt.Errorf("%w: %d not in [0, %d)", ErrInvalidTarget, target, p.NClasses)
	}
	if len(dhNext) != p.HSize || len(dcNext) != p.HSize || len(cPrev) != p.HSize {
		return nil, nil, fmt.Errorf("%w: state gradients have lengths %d, %d, %d, want %d", ErrShapeMismatch, len(dhNext), len(dcNext), len(cPrev), p.HSize)
	}
	if err := checkCache(p, c); err != nil {
		return nil, nil, err
	}

	dv := make([]float64, p.NClasses)
	copy(dv, c.Y)
	dv[target] -= 1
	outerAdd(p.Wv.grad(), dv, c.H)
	floats.Add(p.Bv.D, dv)

	dh := make([]float64, p.HSize)
	copy(dh, dhNext)
	mulVec(blas.Trans, 1, p.Wv.val(), dv, 1, dh)

	tanhC := make([]float64, p.HSize)
	for i := range tanhC {
		tanhC[i] = math.Tanh(c.C[i])
	}

	do := make([]float64, p.HSize)
	dc := make([]float64, p.HSize)
	for i := range do {
		do[i] = DSigmoid(c.O[i]) * dh[i] * tanhC[i]
		dc[i] = dcNext[i] + dh[i]*c.O[i]*DTanh(tanhC[i])
	}

	dcBar := make([]float64, p.HSize)
	di := make([]float64, p.HSize)
	df := make([]float64, p.HSize)
	for i := range dc {
		dcBar[i] = DTanh(c.CBar[i]) * dc[i] * c.I[i]
		di[i] = DSigmoid(c.I[i]) * dc[i] * c.CBar[i]
		df[i] = DSigmoid(c.F[i]) * dc[i] * cPrev[i]
	}

	dz := make([]float64, p.ZSize)
	for _, g := range []struct {
		w, b  *Param
		delta []float64
	}{
		{p.Wo, p.Bo, do},
		{p.WC, p.BC, dcBar},
		{p.Wi, p.Bi, di},
		{p.Wf, p.Bf, df},
	} {
		outerAdd(g.w.grad(), g.delta, c.Z)
		floats.Add(g.b.D, g.delta)
		mulVec(blas.Trans, 1, g.w.val(), g.delta, 1, dz)
	}

	dhPrev = dz[:p.HSize:p.HSize]
	dcPrev = make([]float64, p.HSize)
	for i := range dcPrev {
		dcPrev[i] = c.F[i] * dc[i]
	}
	return dhPrev, dcPrev, nil
}

func checkCache(p *Parameters, c *Cache) error {
	if c == nil {
		return fmt.Errorf("%w: nil cache", ErrShapeMismatch)
	}
	if len(c.Z) != p.ZSize {
		return fmt.Errorf("%w: cached z has length %d, want %d", ErrShapeMismatch, len(c.Z), p.ZSize)
	}
	for _, v := range [][]float64{c.F, c.I, c.CBar, c.C, c.O, c.H} {
		if len(v) != p.HSize {
			return fmt.Errorf("%w: cached state has length %d, want %d", ErrShapeMismatch, len(v), p.HSize)
		}
	}
	if len(c.V) != p.NClasses || len(c.Y) != p.NClasses {
		return fmt.Errorf("%w: cached output has lengths %d, %d, want %d", ErrShapeMismatch, len(c.V), len(c.Y), p.NClasses)
	}
	return nil
}
