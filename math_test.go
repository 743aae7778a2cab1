package lstm

import (
	"math"
	"testing"

	"github.com/gonum/floats"
	"gonum.org/v1/gonum/diff/fd"
	"gonum.org/v1/gonum/mat"
)

func TestActivationDerivatives(t *testing.T) {
	settings := &fd.Settings{Formula: fd.Central}
	for _, x := range []float64{-5, -1, 0, 1, 5} {
		want := fd.Derivative(Sigmoid, x, settings)
		if got := DSigmoid(Sigmoid(x)); math.Abs(got-want) > 1e-7 {
			t.Errorf("sigmoid'(%g) expected %g, got %g", x, want, got)
		}
		want = fd.Derivative(Tanh, x, settings)
		if got := DTanh(Tanh(x)); math.Abs(got-want) > 1e-7 {
			t.Errorf("tanh'(%g) expected %g, got %g", x, want, got)
		}
	}
}

func TestSoftmax(t *testing.T) {
	y := Softmax(nil, []float64{1, 2, 3})
	if sum := floats.Sum(y); math.Abs(sum-1) > 1e-9 {
		t.Errorf("softmax sums to %g", sum)
	}
	for i := 1; i < len(y); i++ {
		if y[i] <= y[i-1] {
			t.Errorf("softmax not monotonic: %v", y)
		}
	}

	shifted := Softmax(nil, []float64{1001, 1002, 1003})
	if !floats.EqualApprox(y, shifted, 1e-12) {
		t.Errorf("softmax not shift invariant: %v != %v", y, shifted)
	}
	for _, p := range shifted {
		if math.IsNaN(p) || math.IsInf(p, 0) {
			t.Fatalf("softmax overflowed: %v", shifted)
		}
	}

	dst := make([]float64, 3)
	if got := Softmax(dst, []float64{1, 2, 3}); &got[0] != &dst[0] {
		t.Errorf("softmax did not write into dst")
	}
}

func TestSoftmaxJacobian(t *testing.T) {
	v := []float64{0.3, -1.2, 2.5, 0}
	n := len(v)
	jac := mat.NewDense(n, n, nil)
	fd.Jacobian(jac, func(y, x []float64) { Softmax(y, x) }, v, &fd.JacobianSettings{Formula: fd.Central})

	y := Softmax(nil, v)
	for i := 0; i < n; i++ {
		for j := 0; j < n; j++ {
			want := -y[i] * y[j]
			if i == j {
				want += y[i]
			}
			if got := jac.At(i, j); math.Abs(got-want) > 1e-7 {
				t.Errorf("dy[%d]/dv[%d] expected %g, got %g", i, j, want, got)
			}
		}
	}
}
