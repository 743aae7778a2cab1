package lstm

import (
	"fmt"

	"github.com/gonum/blas/blas64"
)

// A Param is a trainable tensor of the network. It holds, in row-major order,
// the value of each weight, the gradient accumulated by backward passes, and
// the running sum of squared gradients used by Adagrad.
// V, D and M always have length Rows*Cols.
type Param struct {
	Name string
	Rows int
	Cols int

	V []float64 // value
	D []float64 // gradient
	M []float64 // momentum
}

func newParam(name string, rows, cols int) *Param {
	n := rows * cols
	return &Param{
		Name: name,
		Rows: rows,
		Cols: cols,
		V:    make([]float64, n),
		D:    make([]float64, n),
		M:    make([]float64, n),
	}
}

func (p *Param) String() string {
	return fmt.Sprintf("{%s %dx%d}", p.Name, p.Rows, p.Cols)
}

// Len returns the number of weights in p.
func (p *Param) Len() int {
	return p.Rows * p.Cols
}

// ClearGradient sets all gradients of p to zero.
func (p *Param) ClearGradient() {
	clear(p.D)
}

func (p *Param) val() blas64.General {
	return blas64.General{Rows: p.Rows, Cols: p.Cols, Stride: p.Cols, Data: p.V}
}

func (p *Param) grad() blas64.General {
	return blas64.General{Rows: p.Rows, Cols: p.Cols, Stride: p.Cols, Data: p.D}
}

func (p *Param) sameShape(q *Param) bool {
	return p.Rows == q.Rows && p.Cols == q.Cols
}
