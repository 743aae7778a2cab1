package lstm

import (
	"errors"
	"math/rand"
	"testing"

	"github.com/gonum/floats"
)

func TestForwardBackwardParallel(t *testing.T) {
	rng := rand.New(rand.NewSource(31))
	p, _ := NewParameters(4, 7, 3, DefaultWeightSD, rng)
	examples := make([]Example, 9)
	for i := range examples {
		x, y := randSeq(rng, rng.Intn(5)+1, p.XSize(), p.NClasses)
		examples[i] = Example{X: x, Y: y, Init: NewState(p.HSize)}
	}

	var losses []float64
	for _, e := range examples {
		seq, err := ForwardBackward(p, e.X, e.Y, e.Init)
		if err != nil {
			t.Fatal(err)
		}
		losses = append(losses, seq.Loss)
	}
	want := p.Snapshot()

	for _, workers := range []int{1, 3, 20} {
		p.ClearGradients()
		seqs, err := ForwardBackwardParallel(p, examples, workers)
		if err != nil {
			t.Fatal(err)
		}
		for i, s := range seqs {
			if s.Loss != losses[i] {
				t.Errorf("workers %d: example %d loss expected %g, got %g", workers, i, losses[i], s.Loss)
			}
		}
		for _, w := range p.All() {
			if !floats.EqualApprox(w.D, want[w.Name].D, 1e-10) {
				t.Errorf("workers %d: %s gradient differs", workers, w.Name)
			}
			if w.M == nil {
				t.Fatalf("workers %d: %s lost its momentum buffer", workers, w.Name)
			}
		}
	}
}

func TestForwardBackwardParallelError(t *testing.T) {
	p, _ := NewParameters(2, 3, 2, DefaultWeightSD, nil)
	examples := []Example{
		{X: MakeTensor2(2, 1), Y: []int{0, 1}, Init: NewState(2)},
		{X: MakeTensor2(2, 1), Y: []int{0, 7}, Init: NewState(2)},
	}
	if _, err := ForwardBackwardParallel(p, examples, 2); !errors.Is(err, ErrInvalidTarget) {
		t.Errorf("expected ErrInvalidTarget, got %v", err)
	}
}

func TestMustAddGradientsPanics(t *testing.T) {
	p, _ := NewParameters(2, 3, 2, DefaultWeightSD, nil)
	q, _ := NewParameters(3, 4, 2, DefaultWeightSD, nil)
	defer func() {
		err, ok := recover().(error)
		if !ok || !errors.Is(err, ErrShapeMismatch) {
			t.Errorf("expected panic with ErrShapeMismatch, got %v", err)
		}
	}()
	mustAddGradients(p, q)
}
