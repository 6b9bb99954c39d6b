package distributions

import (
	"golang.org/x/exp/rand"
	"gonum.org/v1/gonum/mat"
	"gonum.org/v1/gonum/stat/distmv"
	"gonum.org/v1/gonum/stat/distuv"
)

// Normal samples each parameter independently from N(mu_i, sigma_i^2).
type Normal struct {
	mu    []float64
	sigma []float64
}

// NewNormal builds an axis-aligned normal distribution. Sigma entries must be
// positive.
func NewNormal(mu, sigma []float64) *Normal {
	if len(mu) != len(sigma) {
		panic("distributions: normal parameter length mismatch")
	}
	m := make([]float64, len(mu))
	s := make([]float64, len(sigma))
	copy(m, mu)
	copy(s, sigma)
	return &Normal{mu: m, sigma: s}
}

func (d *Normal) Dim() int {
	return len(d.mu)
}

func (d *Normal) Sample(rnd *rand.Rand, n int) *mat.Dense {
	out := mat.NewDense(n, d.Dim(), nil)
	for j := 0; j < d.Dim(); j++ {
		norm := distuv.Normal{Mu: d.mu[j], Sigma: d.sigma[j], Src: rnd}
		for i := 0; i < n; i++ {
			out.Set(i, j, norm.Rand())
		}
	}
	return out
}

// MultivariateNormal samples parameter vectors from a full-covariance
// Gaussian.
type MultivariateNormal struct {
	mu    []float64
	sigma *mat.SymDense
}

// NewMultivariateNormal builds a multivariate normal prior. Sigma must be
// symmetric positive definite; the check happens lazily at sampling time
// since the factorization needs the RNG-bound distribution object.
func NewMultivariateNormal(mu []float64, sigma *mat.SymDense) *MultivariateNormal {
	if len(mu) != sigma.SymmetricDim() {
		panic("distributions: multivariate normal dimension mismatch")
	}
	m := make([]float64, len(mu))
	copy(m, mu)
	cov := mat.NewSymDense(sigma.SymmetricDim(), nil)
	cov.CopySym(sigma)
	return &MultivariateNormal{mu: m, sigma: cov}
}

func (d *MultivariateNormal) Dim() int {
	return len(d.mu)
}

func (d *MultivariateNormal) Sample(rnd *rand.Rand, n int) *mat.Dense {
	norm, ok := distmv.NewNormal(d.mu, d.sigma, rnd)
	if !ok {
		panic("distributions: covariance not positive definite")
	}
	out := mat.NewDense(n, d.Dim(), nil)
	row := make([]float64, d.Dim())
	for i := 0; i < n; i++ {
		norm.Rand(row)
		out.SetRow(i, row)
	}
	return out
}
