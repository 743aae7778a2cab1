package lstm

import (
	"math"

	"github.com/gonum/blas"
	"github.com/gonum/blas/blas64"
	"github.com/gonum/floats"
)

func Sigmoid(x float64) float64 {
	return 1.0 / (1 + math.Exp(-x))
}

// DSigmoid returns the derivative of the sigmoid, given its output a = Sigmoid(x).
func DSigmoid(a float64) float64 {
	return a * (1 - a)
}

func Tanh(x float64) float64 {
	return math.Tanh(x)
}

// DTanh returns the derivative of tanh, given its output a = Tanh(x).
func DTanh(a float64) float64 {
	return 1 - a*a
}

// Softmax writes the softmax of v into dst and returns dst.
// If dst is nil a new slice is allocated.
// The max logit is subtracted before math.Exp so that large logits do not overflow.
func Softmax(dst, v []float64) []float64 {
	if dst == nil {
		dst = make([]float64, len(v))
	}
	m := floats.Max(v)
	for i, x := range v {
		dst[i] = math.Exp(x - m)
	}
	floats.Scale(1/floats.Sum(dst), dst)
	return dst
}

func MakeTensor2(n, m int) [][]float64 {
	t := make([][]float64, n)
	for i := 0; i < len(t); i++ {
		t[i] = make([]float64, m)
	}
	return t
}

func vec(data []float64) blas64.Vector {
	return blas64.Vector{Inc: 1, Data: data}
}

// mulVec computes y = alpha*op(W)*x + beta*y, where op is W or its transpose.
func mulVec(t blas.Transpose, alpha float64, w blas64.General, x []float64, beta float64, y []float64) {
	blas64.Gemv(t, alpha, w, vec(x), beta, vec(y))
}

// outerAdd computes a += x*y^T.
func outerAdd(a blas64.General, x, y []float64) {
	blas64.Ger(1, vec(x), vec(y), a)
}

func apply(v []float64, f func(float64) float64) {
	for i, x := range v {
		v[i] = f(x)
	}
}
