package component

import (
	"github.com/pkg/errors"

	"github.com/nlcircuit/core/pkg/equation"
	"github.com/nlcircuit/core/pkg/pin"
	"github.com/nlcircuit/core/pkg/state"
)

// Capacitor is a two-terminal reactive element discretized with the
// trapezoidal rule: a conductance c2t = 2C/dt in parallel with a history
// current source iceq, updated once per converged sample.
type Capacitor struct {
	basePins
	name  string
	c     float64
	c2t   float64
	iceq  float64
}

// NewCapacitor builds a Capacitor of the given value in farads.
func NewCapacitor(name string, farads float64) *Capacitor {
	return &Capacitor{name: name, c: farads}
}

func (c *Capacitor) Name() string { return c.name }

func (c *Capacitor) Register(pins []pin.Pin, reg *equation.Registry) error {
	if len(pins) != 2 {
		return errors.Wrapf(ErrArity, "capacitor %s: want 2 pins, got %d", c.name, len(pins))
	}
	c.setPins(pins)
	return nil
}

func (c *Capacitor) delta(s *state.State) float64 {
	return s.Voltage(c.pins[1]) - s.Voltage(c.pins[0])
}

// UpdateSteadyState recomputes the dt-dependent companion conductance and
// seeds the history term from the current voltage across the capacitor.
func (c *Capacitor) UpdateSteadyState(s *state.State, dt float64) {
	c.c2t = 2 * c.c / dt
	c.iceq = c.c2t * c.delta(s)
}

func (c *Capacitor) Precompute(s *state.State, steady bool) {}

// Current is zero during the steady-state solve (the capacitor is an open
// circuit at DC); during the transient solve it is the companion-model
// current i = c2t*Δv - iceq.
func (c *Capacitor) Current(row int, s *state.State, steady bool) float64 {
	if steady {
		return 0
	}
	i := c.c2t*c.delta(s) - c.iceq
	if row == 0 {
		return i
	}
	return -i
}

func (c *Capacitor) Gradient(row, col int, s *state.State, steady bool) float64 {
	if steady {
		return 0
	}
	g := c.c2t
	if col != 1 {
		g = -g
	}
	if row != 0 {
		g = -g
	}
	return g
}

// UpdateState rolls the history term forward to the new converged voltage.
func (c *Capacitor) UpdateState(s *state.State) {
	c.iceq = 2*c.c2t*c.delta(s) - c.iceq
}
