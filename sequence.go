package lstm

import (
	"fmt"
	"math"
	"math/rand"
	"sort"

	"github.com/gonum/floats"
)

// State is the hidden and cell state carried between timesteps.
type State struct {
	H []float64
	C []float64
}

// NewState returns the zero state of a network with hidden size hSize.
func NewState(hSize int) State {
	return State{H: make([]float64, hSize), C: make([]float64, hSize)}
}

// A Sequence is the result of unrolling a network over a sequence of inputs.
type Sequence struct {
	Caches []*Cache
	// Init is the state the sequence started from.
	Init State
	// Final is the state after the last timestep, to be carried into the next sequence.
	Final State
	// Loss is the summed cross entropy of the sequence, in nats.
	Loss float64
}

// cellPrev returns the cell state that was fed into timestep t.
func (s *Sequence) cellPrev(t int) []float64 {
	if t == 0 {
		return s.Init.C
	}
	return s.Caches[t-1].C
}

// Unroll runs the forward pass over the inputs xs starting from init.
// If ys is not nil, the loss against the target classes ys is computed.
func Unroll(p *Parameters, xs [][]float64, ys []int, init State) (*Sequence, error) {
	if ys != nil && len(ys) != len(xs) {
		return nil, fmt.Errorf("%w: %d inputs but %d targets", ErrShapeMismatch, len(xs), len(ys))
	}
	seq := &Sequence{Caches: make([]*Cache, len(xs)), Init: init}
	h, c := init.H, init.C
	for t, x := range xs {
		cache, err := Forward(p, x, h, c)
		if err != nil {
			return nil, fmt.Errorf("timestep %d: %w", t, err)
		}
		seq.Caches[t] = cache
		h, c = cache.H, cache.C
		if ys != nil {
			if ys[t] < 0 || ys[t] >= p.NClasses {
				return nil, fmt.Errorf("timestep %d: %w: %d not in [0, %d)", t, ErrInvalidTarget, ys[t], p.NClasses)
			}
			seq.Loss -= math.Log(cache.Y[ys[t]])
		}
	}
	seq.Final = State{H: h, C: c}
	return seq, nil
}

// ForwardBackward unrolls the network over xs and backpropagates the cross
// entropy against ys through time, accumulating gradients into p.
// Gradients are not cleared beforehand.
func ForwardBackward(p *Parameters, xs [][]float64, ys []int, init State) (*Sequence, error) {
	if len(ys) != len(xs) {
		return nil, fmt.Errorf("%w: %d inputs but %d targets", ErrShapeMismatch, len(xs), len(ys))
	}
	seq, err := Unroll(p, xs, ys, init)
	if err != nil {
		return nil, err
	}
	dh := make([]float64, p.HSize)
	dc := make([]float64, p.HSize)
	for t := len(xs) - 1; t >= 0; t-- {
		dh, dc, err = Backward(p, ys[t], dh, dc, seq.cellPrev(t), seq.Caches[t])
		if err != nil {
			return nil, fmt.Errorf("timestep %d: %w", t, err)
		}
	}
	return seq, nil
}

// Predictions returns the output distribution of each timestep.
func Predictions(caches []*Cache) [][]float64 {
	pdts := make([][]float64, len(caches))
	for t := range caches {
		pdts[t] = caches[t].Y
	}
	return pdts
}

// Loss returns the cross entropy of predictions against ys, in nats.
func Loss(predictions [][]float64, ys []int) float64 {
	var l float64 = 0
	for t, y := range ys {
		l -= math.Log(predictions[t][y])
	}
	return l
}

// Sample generates n classes, feeding each sampled class back as the next
// input through encode. The first input is encode(first).
func Sample(p *Parameters, init State, first, n int, encode func(int) []float64, rng *rand.Rand) ([]int, error) {
	if n < 0 {
		return nil, fmt.Errorf("%w: cannot sample %d classes", ErrInvalidDimension, n)
	}
	uniform := rand.Float64
	if rng != nil {
		uniform = rng.Float64
	}
	out := make([]int, 0, n)
	cdf := make([]float64, p.NClasses)
	h, c := init.H, init.C
	idx := first
	for i := 0; i < n; i++ {
		cache, err := Forward(p, encode(idx), h, c)
		if err != nil {
			return nil, err
		}
		h, c = cache.H, cache.C
		floats.CumSum(cdf, cache.Y)
		idx = sort.SearchFloat64s(cdf, uniform()*cdf[len(cdf)-1])
		if idx == len(cdf) {
			idx = len(cdf) - 1
		}
		out = append(out, idx)
	}
	return out, nil
}
