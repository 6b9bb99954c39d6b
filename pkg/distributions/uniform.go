// Package distributions provides the prior distributions consumed by the
// sequential updater: box-uniform, normal, multivariate normal, products of
// independent distributions, and constraint-rejecting wrappers.
package distributions

import (
	"golang.org/x/exp/rand"
	"gonum.org/v1/gonum/mat"
	"gonum.org/v1/gonum/stat/distuv"
)

// Uniform samples each parameter independently from a box [lower_i, upper_i].
type Uniform struct {
	lower []float64
	upper []float64
}

// NewUniform builds a box-uniform distribution. Lower and upper must have
// equal length; the bounds are copied.
func NewUniform(lower, upper []float64) *Uniform {
	if len(lower) != len(upper) {
		panic("distributions: uniform bounds length mismatch")
	}
	l := make([]float64, len(lower))
	u := make([]float64, len(upper))
	copy(l, lower)
	copy(u, upper)
	return &Uniform{lower: l, upper: u}
}

// Dim returns the parameter dimension.
func (d *Uniform) Dim() int {
	return len(d.lower)
}

// Sample draws n vectors, one per row.
func (d *Uniform) Sample(rnd *rand.Rand, n int) *mat.Dense {
	out := mat.NewDense(n, d.Dim(), nil)
	for j := 0; j < d.Dim(); j++ {
		u := distuv.Uniform{Min: d.lower[j], Max: d.upper[j], Src: rnd}
		for i := 0; i < n; i++ {
			out.Set(i, j, u.Rand())
		}
	}
	return out
}
