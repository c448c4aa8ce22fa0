package glm

import (
	"fmt"
	"math"
	"sort"

	"gonum.org/v1/gonum/mat"

	"psephos/pkg/domain"
)

// Observation is one training row: the shared categorical predictors, a
// grouping level, and a binary outcome.
type Observation struct {
	Female    bool
	Age       domain.AgeBand
	Education domain.Education
	Group     string
	Outcome   bool
}

// Options tunes the penalized IRLS fit. Zero values select defaults.
type Options struct {
	// MaxOuter bounds the variance re-estimation loop (default 8).
	MaxOuter int
	// MaxInner bounds the IRLS iterations per variance estimate (default 25).
	MaxInner int
	// Tol is the max coefficient change treated as converged (default 1e-6).
	Tol float64
}

func (o Options) withDefaults() Options {
	if o.MaxOuter <= 0 {
		o.MaxOuter = 8
	}
	if o.MaxInner <= 0 {
		o.MaxInner = 25
	}
	if o.Tol <= 0 {
		o.Tol = 1e-6
	}
	return o
}

const (
	minWeight   = 1e-6
	minVariance = 1e-4
)

// Fit estimates a logistic regression with fixed effects for sex, age band,
// and education, plus one normally distributed random intercept per group.
// The likelihood is approximated by penalized quasi-likelihood with a single
// integration point: the random intercepts enter the IRLS working model as
// ridge-penalized coefficients, and the shared variance is re-estimated from
// the current intercepts between IRLS passes. Fitting is pure: it reads obs
// and returns a new Model.
func Fit(obs []Observation, opts Options) (*Model, error) {
	if len(obs) == 0 {
		return nil, fmt.Errorf("glm: no observations")
	}
	opts = opts.withDefaults()

	groupIndex := indexGroups(obs)
	q := len(groupIndex)
	dim := numFixed + q

	// Pre-resolve each observation's active design columns. Columns are
	// ascending: fixed dummies first, the group column last.
	rows := make([][]int, len(obs))
	ys := make([]float64, len(obs))
	for i, ob := range obs {
		cols := activeColumns(ob.Female, ob.Age, ob.Education)
		cols = append(cols, numFixed+groupIndex[ob.Group])
		rows[i] = cols
		if ob.Outcome {
			ys[i] = 1
		}
	}

	theta := make([]float64, dim)
	variance := 1.0

	for outer := 0; outer < opts.MaxOuter; outer++ {
		var err error
		theta, err = irls(rows, ys, theta, dim, variance, opts)
		if err != nil {
			return nil, err
		}

		// Moment update of the shared intercept variance.
		sum := 0.0
		for _, u := range theta[numFixed:] {
			sum += u * u
		}
		next := sum / float64(q)
		if next < minVariance {
			next = minVariance
		}
		if math.Abs(next-variance) < opts.Tol {
			variance = next
			break
		}
		variance = next
	}

	intercepts := make(map[string]float64, q)
	for g, idx := range groupIndex {
		intercepts[g] = theta[numFixed+idx]
	}
	fixed := make([]float64, numFixed)
	copy(fixed, theta[:numFixed])

	return &Model{
		fixed:      fixed,
		intercepts: intercepts,
		variance:   variance,
		groups:     q,
		obs:        len(obs),
	}, nil
}

// irls runs iteratively reweighted least squares on the penalized working
// model. The normal-equation matrix is accumulated sparsely: each observation
// touches at most five columns.
func irls(rows [][]int, ys []float64, start []float64, dim int, variance float64, opts Options) ([]float64, error) {
	theta := make([]float64, dim)
	copy(theta, start)

	a := mat.NewSymDense(dim, nil)
	b := mat.NewVecDense(dim, nil)
	sol := mat.NewVecDense(dim, nil)

	for iter := 0; iter < opts.MaxInner; iter++ {
		a.Zero()
		b.Zero()

		for i, cols := range rows {
			eta := 0.0
			for _, c := range cols {
				eta += theta[c]
			}
			mu := sigmoid(eta)
			w := mu * (1 - mu)
			if w < minWeight {
				w = minWeight
			}
			z := eta + (ys[i]-mu)/w
			wz := w * z
			for ci, c := range cols {
				b.SetVec(c, b.AtVec(c)+wz)
				for _, d := range cols[ci:] {
					a.SetSym(c, d, a.At(c, d)+w)
				}
			}
		}

		// Ridge penalty on the random intercepts: u ~ N(0, variance).
		penalty := 1.0 / variance
		for c := numFixed; c < dim; c++ {
			a.SetSym(c, c, a.At(c, c)+penalty)
		}

		if err := solveSym(a, b, sol, dim); err != nil {
			return nil, err
		}

		delta := 0.0
		for c := 0; c < dim; c++ {
			d := math.Abs(sol.AtVec(c) - theta[c])
			if d > delta {
				delta = d
			}
			theta[c] = sol.AtVec(c)
		}
		if delta < opts.Tol {
			break
		}
	}
	return theta, nil
}

// solveSym solves a*x = b via Cholesky, escalating a diagonal jitter when the
// accumulated matrix is numerically semi-definite (empty dummy columns).
func solveSym(a *mat.SymDense, b, dst *mat.VecDense, dim int) error {
	var chol mat.Cholesky
	jitter := 0.0
	for attempt := 0; attempt < 4; attempt++ {
		if jitter > 0 {
			for c := 0; c < dim; c++ {
				a.SetSym(c, c, a.At(c, c)+jitter)
			}
		}
		if chol.Factorize(a) {
			if err := chol.SolveVecTo(dst, b); err != nil {
				return fmt.Errorf("glm: solve normal equations: %w", err)
			}
			return nil
		}
		if jitter == 0 {
			jitter = 1e-8
		} else {
			jitter *= 100
		}
	}
	return fmt.Errorf("glm: normal equations not positive definite")
}

func indexGroups(obs []Observation) map[string]int {
	names := make([]string, 0)
	seen := make(map[string]struct{})
	for _, ob := range obs {
		if _, ok := seen[ob.Group]; ok {
			continue
		}
		seen[ob.Group] = struct{}{}
		names = append(names, ob.Group)
	}
	sort.Strings(names)
	index := make(map[string]int, len(names))
	for i, n := range names {
		index[n] = i
	}
	return index
}
