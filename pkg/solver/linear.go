package solver

import (
	"github.com/edp1096/sparse"
	"github.com/pkg/errors"
)

// linearSystem wraps github.com/edp1096/sparse for the dense-in-practice
// Jδ=r solve the Newton iteration needs once per pass. It is sized once
// for a problem and reused across iterations and samples, cleared between
// solves the way the teacher repo's CircuitMatrix is reused across
// analysis passes.
type linearSystem struct {
	size int
	m    *sparse.Matrix
	rhs  []float64
}

func newLinearSystem(size int) (*linearSystem, error) {
	config := &sparse.Configuration{
		Real:           true,
		Expandable:     true,
		ModifiedNodal:  true,
		TiesMultiplier: 5,
		PrinterWidth:   140,
	}
	m, err := sparse.Create(int64(size), config)
	if err != nil {
		return nil, errors.Wrap(err, "solver: creating linear system")
	}
	return &linearSystem{size: size, m: m, rhs: make([]float64, size+1)}, nil
}

func (l *linearSystem) reset() {
	l.m.Clear()
	for i := range l.rhs {
		l.rhs[i] = 0
	}
}

// add accumulates value into the (row,col) entry, 0-based indices
// translated to the library's 1-based convention.
func (l *linearSystem) add(row, col int, value float64) {
	l.m.GetElement(int64(row+1), int64(col+1)).Real += value
}

func (l *linearSystem) setRHS(row int, value float64) {
	l.rhs[row+1] = value
}

// solve factors and back-substitutes, returning the 0-based solution
// vector. Both stages can fail on a singular Jacobian.
func (l *linearSystem) solve() ([]float64, error) {
	if err := l.m.Factor(); err != nil {
		return nil, errors.Wrapf(ErrSingularJacobian, "factoring: %v", err)
	}
	sol, err := l.m.Solve(l.rhs)
	if err != nil {
		return nil, errors.Wrapf(ErrSingularJacobian, "back-substitution: %v", err)
	}
	out := make([]float64, l.size)
	for i := 0; i < l.size; i++ {
		out[i] = sol[i+1]
	}
	return out, nil
}
