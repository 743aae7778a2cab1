package lstm

import (
	"fmt"
	"sync"
)

// An Example is an input sequence, its target classes and the state to start from.
type Example struct {
	X    [][]float64
	Y    []int
	Init State
}

// ForwardBackwardParallel runs ForwardBackward on independent examples using
// up to workers goroutines. Each worker accumulates gradients privately, and
// the private gradients are added onto p one worker at a time.
// The returned sequences are in the order of examples. On error, p may hold
// gradients of the examples that succeeded and should be cleared by the caller.
func ForwardBackwardParallel(p *Parameters, examples []Example, workers int) ([]*Sequence, error) {
	if workers <= 0 {
		workers = 1
	}
	if workers > len(examples) {
		workers = len(examples)
	}

	seqs := make([]*Sequence, len(examples))
	errs := make([]error, len(examples))
	jobs := make(chan int)
	var mu sync.Mutex
	var wg sync.WaitGroup
	for w := 0; w < workers; w++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			s := p.shadow()
			for i := range jobs {
				seqs[i], errs[i] = ForwardBackward(s, examples[i].X, examples[i].Y, examples[i].Init)
			}
			mu.Lock()
			defer mu.Unlock()
			mustAddGradients(p, s)
		}()
	}
	for i := range examples {
		jobs <- i
	}
	close(jobs)
	wg.Wait()

	for i, err := range errs {
		if err != nil {
			return nil, fmt.Errorf("example %d: %w", i, err)
		}
	}
	return seqs, nil
}

// mustAddGradients adds the gradients of a shadow onto p. A shadow always has
// the shapes of p, so an error means the shadow was built wrong.
func mustAddGradients(p, shadow *Parameters) {
	if err := p.AddGradients(shadow); err != nil {
		panic(err)
	}
}
