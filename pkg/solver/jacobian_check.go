package solver

import (
	"gonum.org/v1/gonum/mat"
)

// numericalJacobianDx is the finite-difference step used to approximate
// each Jacobian column.
const numericalJacobianDx = 1e-6

// CheckJacobian assembles the analytic Jacobian for p at its current
// state, then perturbs each dynamic unknown in turn to build the
// finite-difference approximation, returning both as dense matrices for a
// test to compare. It is a diagnostic aid, not part of the solve path:
// building it costs one extra residual assembly per dynamic unknown.
func CheckJacobian(p Problem, steady bool) (analytic, numeric *mat.Dense, err error) {
	n := p.Size()
	residual, jacobian := p.Assemble(steady)

	analytic = mat.NewDense(n, n, nil)
	for row, cols := range jacobian {
		for col, v := range cols {
			analytic.Set(row, col, v)
		}
	}

	numeric = mat.NewDense(n, n, nil)
	base := append([]float64(nil), p.Dynamic()...)
	perturbed := append([]float64(nil), base...)

	for col := 0; col < n; col++ {
		perturbed[col] = base[col] + numericalJacobianDx
		p.SetDynamic(perturbed)
		perturbedResidual, _ := p.Assemble(steady)
		for row := 0; row < n; row++ {
			numeric.Set(row, col, (perturbedResidual[row]-residual[row])/numericalJacobianDx)
		}
		perturbed[col] = base[col]
	}

	p.SetDynamic(base)
	return analytic, numeric, nil
}
