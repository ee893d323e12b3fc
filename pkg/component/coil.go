package component

import (
	"github.com/pkg/errors"

	"github.com/nlcircuit/core/pkg/equation"
	"github.com/nlcircuit/core/pkg/pin"
	"github.com/nlcircuit/core/pkg/state"
)

// steadyCoilConductance is the fixed large conductance used to approximate
// a coil as a near-short at DC, instead of introducing a branch-current
// unknown for a true MNA treatment.
const steadyCoilConductance = 1e6

// Coil is a two-terminal reactive element discretized with the
// trapezoidal rule, tracking its own internal current i alongside a
// voltage history term veq.
type Coil struct {
	basePins
	name   string
	l      float64
	l2t    float64
	invl2t float64
	veq    float64
	i      float64
}

// NewCoil builds a Coil of the given value in henries.
func NewCoil(name string, henries float64) *Coil {
	return &Coil{name: name, l: henries}
}

func (c *Coil) Name() string { return c.name }

func (c *Coil) Register(pins []pin.Pin, reg *equation.Registry) error {
	if len(pins) != 2 {
		return errors.Wrapf(ErrArity, "coil %s: want 2 pins, got %d", c.name, len(pins))
	}
	c.setPins(pins)
	return nil
}

func (c *Coil) delta(s *state.State) float64 {
	return s.Voltage(c.pins[1]) - s.Voltage(c.pins[0])
}

// UpdateSteadyState recomputes the dt-dependent companion conductance and
// seeds the voltage history term from the coil's current internal current.
func (c *Coil) UpdateSteadyState(s *state.State, dt float64) {
	c.l2t = 2 * c.l / dt
	c.invl2t = 1 / c.l2t
	c.veq = c.l2t * c.i
}

// Precompute recomputes the coil's internal current for this iteration:
// a near-short approximation during the steady-state solve, the
// trapezoidal companion-model value otherwise.
func (c *Coil) Precompute(s *state.State, steady bool) {
	if steady {
		c.i = c.delta(s) * steadyCoilConductance
		return
	}
	c.i = (c.delta(s) + c.veq) * c.invl2t
}

func (c *Coil) Current(row int, s *state.State, steady bool) float64 {
	if row == 0 {
		return c.i
	}
	return -c.i
}

func (c *Coil) Gradient(row, col int, s *state.State, steady bool) float64 {
	g := c.invl2t
	if steady {
		g = steadyCoilConductance
	}
	if col != 1 {
		g = -g
	}
	if row != 0 {
		g = -g
	}
	return g
}

// UpdateState rolls the voltage history term forward.
func (c *Coil) UpdateState(s *state.State) {
	c.veq = 2*c.l2t*c.i - c.veq
}
