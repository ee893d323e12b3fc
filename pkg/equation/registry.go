// Package equation implements the equation-override mechanism: the table
// that lets a component (an ideal op-amp, a voltage-gain stage) replace the
// Kirchhoff-current equation at one of its dynamic pins with its own
// residual and Jacobian row.
package equation

import (
	"github.com/pkg/errors"

	"github.com/nlcircuit/core/pkg/state"
)

// ErrAlreadyClaimed is returned by Claim when the dynamic pin already has
// an override registered. At most one component may own a given pin.
var ErrAlreadyClaimed = errors.New("equation: dynamic pin already has an override")

// Overrider is implemented by components that substitute their own
// equation for a dynamic pin's Kirchhoff-current row.
type Overrider interface {
	AddEquation(s *state.State, steady bool, eqNumber int) (residual float64, jacobianRow map[int]float64)
}

type claim struct {
	owner    Overrider
	eqNumber int
}

// Registry tracks, per dynamic pin index, which component (if any) has
// claimed that pin's equation.
type Registry struct {
	claims map[int]claim
}

// NewRegistry returns an empty Registry.
func NewRegistry() *Registry {
	return &Registry{claims: make(map[int]claim)}
}

// Claim registers owner as the source of the equation for the dynamic pin
// at dynamicIndex, using eqNumber to let the owner distinguish which of its
// own equations is being requested (components may expose more than one).
func (r *Registry) Claim(dynamicIndex int, owner Overrider, eqNumber int) error {
	if _, exists := r.claims[dynamicIndex]; exists {
		return errors.Wrapf(ErrAlreadyClaimed, "dynamic pin %d", dynamicIndex)
	}
	r.claims[dynamicIndex] = claim{owner: owner, eqNumber: eqNumber}
	return nil
}

// Lookup returns the owner and equation number claiming dynamicIndex, if
// any.
func (r *Registry) Lookup(dynamicIndex int) (owner Overrider, eqNumber int, ok bool) {
	c, ok := r.claims[dynamicIndex]
	return c.owner, c.eqNumber, ok
}
