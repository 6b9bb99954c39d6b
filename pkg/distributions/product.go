package distributions

import (
	"golang.org/x/exp/rand"
	"gonum.org/v1/gonum/mat"

	"github.com/inferkit/smc-go/pkg/core"
)

// Product concatenates independent distributions into one joint prior: the
// sampled vector is the concatenation of one draw from each factor.
type Product struct {
	factors []core.Distribution
	dim     int
}

// NewProduct composes the given factors in order.
func NewProduct(factors ...core.Distribution) *Product {
	dim := 0
	for _, f := range factors {
		dim += f.Dim()
	}
	return &Product{factors: factors, dim: dim}
}

func (d *Product) Dim() int {
	return d.dim
}

func (d *Product) Sample(rnd *rand.Rand, n int) *mat.Dense {
	out := mat.NewDense(n, d.dim, nil)
	col := 0
	for _, f := range d.factors {
		block := f.Sample(rnd, n)
		for j := 0; j < f.Dim(); j++ {
			for i := 0; i < n; i++ {
				out.Set(i, col+j, block.At(i, j))
			}
		}
		col += f.Dim()
	}
	return out
}
