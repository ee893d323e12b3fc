package solver

import "github.com/pkg/errors"

// ErrSingularJacobian is the root cause wrapped into every error returned
// when the per-iteration linear solve fails, whether at factorization or
// back-substitution.
var ErrSingularJacobian = errors.New("solver: singular jacobian")

// NonConvergence reports the outcome of a Newton solve. It is not an
// error: exhausting MaxIterations returns the last iterate along with a
// NonConvergence describing how far it got, matching the engine's policy
// that non-convergence is not fatal.
type NonConvergence struct {
	Converged    bool
	Iterations   int
	ResidualNorm float64
}
