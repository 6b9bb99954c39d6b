package distributions

import (
	"golang.org/x/exp/rand"
	"gonum.org/v1/gonum/mat"

	"github.com/inferkit/smc-go/pkg/core"
)

// Constrained rejection-samples an underlying distribution until every drawn
// vector satisfies a validity predicate, typically a model's parameter
// constraint.
type Constrained struct {
	base     core.Distribution
	valid    func(params []float64) bool
	maxTries int
}

// NewConstrained wraps base with a rejection step. maxTries bounds the
// redraws per vector; past the bound the last rejected draw is kept so that
// sampling always terminates.
func NewConstrained(base core.Distribution, valid func(params []float64) bool, maxTries int) *Constrained {
	if maxTries <= 0 {
		maxTries = 1000
	}
	return &Constrained{base: base, valid: valid, maxTries: maxTries}
}

func (d *Constrained) Dim() int {
	return d.base.Dim()
}

func (d *Constrained) Sample(rnd *rand.Rand, n int) *mat.Dense {
	out := d.base.Sample(rnd, n)
	row := make([]float64, d.Dim())
	for i := 0; i < n; i++ {
		mat.Row(row, i, out)
		if d.valid(row) {
			continue
		}
		for try := 0; try < d.maxTries; try++ {
			redraw := d.base.Sample(rnd, 1)
			mat.Row(row, 0, redraw)
			if d.valid(row) {
				break
			}
		}
		out.SetRow(i, row)
	}
	return out
}
