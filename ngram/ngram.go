package ngram

import (
	"math"
	"math/rand"

	"github.com/gonum/floats"
)

// GenProb generates a probability lookup table for a n-gram model.
func GenProb(rng *rand.Rand, n int) []float64 {
	probs := make([]float64, 1<<uint(n))
	for i := range probs {
		probs[i] = beta(rng)
	}
	return probs
}

// GenSeq generates a bit sequence of length seqLen where each bit is 1 with
// the probability prob assigns to the preceding n bits. Each input is a
// single bit, and the target at time t is the bit at time t+1.
func GenSeq(rng *rand.Rand, prob []float64, seqLen int) ([][]float64, []int) {
	n := int(math.Log2(float64(len(prob))))

	bits := make([]int, seqLen+1)
	for i := 0; i < n && i < len(bits); i++ {
		bits[i] = rng.Intn(2)
	}
	for i := n; i < len(bits); i++ {
		if rng.Float64() < prob[Binarize(bits[i-n:i])] {
			bits[i] = 1
		}
	}

	input := make([][]float64, seqLen)
	for i := range input {
		input[i] = []float64{float64(bits[i])}
	}
	return input, bits[1:]
}

func Binarize(seq []int) int {
	idx := 0
	for i, a := range seq {
		idx += a * (1 << uint(i))
	}
	return idx
}

// Entropy returns the expected cross entropy per bit, in nats, of an
// optimal predictor of long sequences generated from prob. Each context's
// binary entropy is weighted by how often the context occurs, which is the
// stationary distribution of the chain over n-bit contexts.
func Entropy(prob []float64) float64 {
	var h float64 = 0
	for c, w := range Stationary(prob) {
		if p := prob[c]; p > 0 && p < 1 {
			h -= w * (p*math.Log(p) + (1-p)*math.Log(1-p))
		}
	}
	return h
}

const (
	stationaryTol     = 1e-14
	stationaryMaxIter = 1000000
)

// Stationary returns the long run frequency of each n-bit context, indexed as
// in Binarize, of sequences generated from prob.
// It runs power iteration on the lazy chain, which has the same stationary
// distribution but is aperiodic, starting from the uniform distribution.
func Stationary(prob []float64) []float64 {
	n := int(math.Log2(float64(len(prob))))
	pi := make([]float64, len(prob))
	for i := range pi {
		pi[i] = 1 / float64(len(pi))
	}
	if n == 0 {
		return pi
	}

	next := make([]float64, len(prob))
	msb := 1 << uint(n-1)
	for iter := 0; iter < stationaryMaxIter; iter++ {
		for i := range next {
			next[i] = 0.5 * pi[i]
		}
		for c, w := range pi {
			// The oldest bit drops out and the new bit becomes the most significant.
			rest := c >> 1
			next[rest] += 0.5 * w * (1 - prob[c])
			next[rest|msb] += 0.5 * w * prob[c]
		}
		d := floats.Distance(pi, next, 1)
		pi, next = next, pi
		if d < stationaryTol {
			break
		}
	}
	return pi
}

// beta generates a random number from the Beta(1/2, 1/2) distribution.
func beta(rng *rand.Rand) float64 {
	x := gamma(rng)
	y := gamma(rng)
	return x / (x + y)
}

// gamma generates a random number from the Gamma(1/2, 1) distribution.
func gamma(rng *rand.Rand) float64 {
	n := rng.NormFloat64()
	return 0.5 * n * n
}
