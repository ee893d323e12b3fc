// Package solver implements the bounded-step Newton-Raphson iteration the
// modeling engine runs once per sample (and twice during the steady-state
// bootstrap), plus a numerical-Jacobian checker used by tests.
package solver

import (
	"math"

	"github.com/pkg/errors"
	"github.com/rs/zerolog"
)

const (
	// EPS is the convergence tolerance on both the residual norm and the
	// Newton step norm.
	EPS = 1e-8
	// MaxIterations bounds a single Solve call. Exhausting it is not an
	// error: the solver returns the last iterate.
	MaxIterations = 200
)

// Problem is the contract a Newton solve operates against. model.Model
// implements it; the numerical Jacobian checker in jacobian_check.go also
// consumes it directly.
type Problem interface {
	// Size returns the number of dynamic unknowns.
	Size() int
	// Assemble builds the residual vector and Jacobian (one sparse row
	// per dynamic pin) at the problem's current state.
	Assemble(steady bool) (residual []float64, jacobian []map[int]float64)
	// Dynamic returns the current dynamic state vector.
	Dynamic() []float64
	// SetDynamic overwrites the dynamic state vector.
	SetDynamic(values []float64)
}

// Newton runs bounded Newton-Raphson iterations against a Problem, reusing
// one linear system sized for the problem across iterations and samples.
type Newton struct {
	ls     *linearSystem
	Logger zerolog.Logger
}

// NewNewton builds a Newton solver for a problem with the given number of
// dynamic unknowns.
func NewNewton(size int) (*Newton, error) {
	ls, err := newLinearSystem(size)
	if err != nil {
		return nil, err
	}
	return &Newton{ls: ls, Logger: zerolog.Nop()}, nil
}

// Solve runs the bounded Newton iteration described in the modeling
// engine's solver design: assemble, check residual convergence, solve the
// linear system, check step convergence, clamp an oversized step, repeat.
func (n *Newton) Solve(p Problem, steady bool) (NonConvergence, error) {
	var lastNorm float64

	for iter := 0; iter < MaxIterations; iter++ {
		residual, jacobian := p.Assemble(steady)
		lastNorm = normInf(residual)
		if lastNorm < EPS {
			return NonConvergence{Converged: true, Iterations: iter, ResidualNorm: lastNorm}, nil
		}

		n.ls.reset()
		for row, cols := range jacobian {
			for col, v := range cols {
				n.ls.add(row, col, v)
			}
			n.ls.setRHS(row, residual[row])
		}

		delta, err := n.ls.solve()
		if err != nil {
			return NonConvergence{}, errors.Wrapf(err, "newton iteration %d (residual norm %g)", iter, lastNorm)
		}
		if normInf(delta) < EPS {
			return NonConvergence{Converged: true, Iterations: iter, ResidualNorm: lastNorm}, nil
		}

		if maxDelta := maxAbs(delta); maxDelta > 1 {
			for i := range delta {
				delta[i] /= maxDelta
			}
		}

		dynamic := append([]float64(nil), p.Dynamic()...)
		for i := range dynamic {
			dynamic[i] -= delta[i]
		}
		p.SetDynamic(dynamic)
	}

	nc := NonConvergence{Converged: false, Iterations: MaxIterations, ResidualNorm: lastNorm}
	n.Logger.Warn().
		Int("iterations", nc.Iterations).
		Float64("residual_norm", nc.ResidualNorm).
		Msg("newton solver did not converge, accepting last iterate")
	return nc, nil
}

func normInf(v []float64) float64 {
	return maxAbs(v)
}

func maxAbs(v []float64) float64 {
	m := 0.0
	for _, x := range v {
		if a := math.Abs(x); a > m {
			m = a
		}
	}
	return m
}
