package copytask

import (
	"math/rand"
)

// Blank is the target class of timesteps that precede the first echoed symbol.
const Blank = 0

// GenSeq generates size random symbols out of numSymbols, one-hot encoded.
// The target at time t is the symbol seen at time t-delay, shifted by one to
// make room for Blank, or Blank for the first delay timesteps.
func GenSeq(rng *rand.Rand, size, numSymbols, delay int) ([][]float64, []int) {
	data := make([]int, size)
	for i := range data {
		data[i] = rng.Intn(numSymbols)
	}

	input := make([][]float64, size)
	for i := 0; i < len(input); i++ {
		input[i] = make([]float64, numSymbols)
		input[i][data[i]] = 1
	}

	output := make([]int, size)
	for i := 0; i < len(output); i++ {
		if i >= delay {
			output[i] = data[i-delay] + 1
		} else {
			output[i] = Blank
		}
	}

	return input, output
}

// OutputSize returns the number of target classes for numSymbols symbols.
func OutputSize(numSymbols int) int {
	return numSymbols + 1
}
