package lstm

import (
	"errors"
	"math"
	"math/rand"
	"testing"

	"github.com/gonum/floats"
)

func TestForwardBackwardMatchesSteps(t *testing.T) {
	rng := rand.New(rand.NewSource(21))
	p, _ := NewParameters(3, 6, 4, DefaultWeightSD, rng)
	x, y := randSeq(rng, 5, p.XSize(), p.NClasses)
	s := randState(rng, p.HSize)

	seq, err := ForwardBackward(p, x, y, s)
	if err != nil {
		t.Fatal(err)
	}
	want := p.Snapshot()
	p.ClearGradients()

	caches := make([]*Cache, len(x))
	cPrevs := make([][]float64, len(x))
	h, c := s.H, s.C
	var loss float64 = 0
	for i := range x {
		caches[i], _ = Forward(p, x[i], h, c)
		cPrevs[i] = c
		h, c = caches[i].H, caches[i].C
		loss -= math.Log(caches[i].Y[y[i]])
	}
	dh, dc := make([]float64, p.HSize), make([]float64, p.HSize)
	for i := len(x) - 1; i >= 0; i-- {
		dh, dc, _ = Backward(p, y[i], dh, dc, cPrevs[i], caches[i])
	}

	if math.Abs(seq.Loss-loss) > 1e-12 {
		t.Errorf("loss expected %g, got %g", loss, seq.Loss)
	}
	if math.Abs(Loss(Predictions(seq.Caches), y)-loss) > 1e-12 {
		t.Errorf("Loss expected %g, got %g", loss, Loss(Predictions(seq.Caches), y))
	}
	if !floats.Equal(seq.Final.H, h) || !floats.Equal(seq.Final.C, c) {
		t.Errorf("final state differs")
	}
	for _, w := range p.All() {
		if !floats.EqualApprox(w.D, want[w.Name].D, 1e-12) {
			t.Errorf("%s gradient differs", w.Name)
		}
	}
}

func TestUnrollErrors(t *testing.T) {
	p, _ := NewParameters(3, 5, 2, DefaultWeightSD, nil)
	x := MakeTensor2(2, 2)
	if _, err := ForwardBackward(p, x, []int{0}, NewState(3)); !errors.Is(err, ErrShapeMismatch) {
		t.Errorf("expected ErrShapeMismatch, got %v", err)
	}
	if _, err := ForwardBackward(p, x, []int{0, 5}, NewState(3)); !errors.Is(err, ErrInvalidTarget) {
		t.Errorf("expected ErrInvalidTarget, got %v", err)
	}
	if _, err := Unroll(p, MakeTensor2(2, 3), nil, NewState(3)); !errors.Is(err, ErrShapeMismatch) {
		t.Errorf("expected ErrShapeMismatch, got %v", err)
	}
	for _, w := range p.All() {
		for _, d := range w.D {
			if d != 0 {
				t.Fatalf("failed unroll modified %s gradient", w.Name)
			}
		}
	}
}

func TestSample(t *testing.T) {
	rng := rand.New(rand.NewSource(17))
	p, _ := NewParameters(5, 9, 4, DefaultWeightSD, rng)
	encode := func(c int) []float64 {
		v := make([]float64, 4)
		v[c] = 1
		return v
	}
	ids, err := Sample(p, NewState(5), 2, 50, encode, rand.New(rand.NewSource(1)))
	if err != nil {
		t.Fatal(err)
	}
	if len(ids) != 50 {
		t.Fatalf("expected 50 samples, got %d", len(ids))
	}
	for _, c := range ids {
		if c < 0 || c >= 4 {
			t.Fatalf("sample %d out of range", c)
		}
	}
	again, _ := Sample(p, NewState(5), 2, 50, encode, rand.New(rand.NewSource(1)))
	for i := range ids {
		if ids[i] != again[i] {
			t.Fatalf("same seed produced different samples")
		}
	}
}

func TestSampleLength(t *testing.T) {
	p, _ := NewParameters(2, 4, 2, DefaultWeightSD, nil)
	encode := func(c int) []float64 {
		v := make([]float64, 2)
		v[c] = 1
		return v
	}
	if _, err := Sample(p, NewState(2), 0, -1, encode, nil); !errors.Is(err, ErrInvalidDimension) {
		t.Errorf("expected ErrInvalidDimension, got %v", err)
	}
	ids, err := Sample(p, NewState(2), 0, 0, encode, nil)
	if err != nil || len(ids) != 0 {
		t.Errorf("expected no samples, got %v, %v", ids, err)
	}
}
