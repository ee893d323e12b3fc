package component

import (
	"github.com/pkg/errors"

	"github.com/nlcircuit/core/pkg/equation"
	"github.com/nlcircuit/core/pkg/pin"
	"github.com/nlcircuit/core/pkg/state"
)

// Resistor is a linear two-terminal element, G = 1/R.
type Resistor struct {
	basePins
	name string
	g    float64
}

// NewResistor builds a Resistor of the given value in ohms.
func NewResistor(name string, ohms float64) *Resistor {
	return &Resistor{name: name, g: 1.0 / ohms}
}

func (r *Resistor) Name() string { return r.name }

func (r *Resistor) Register(pins []pin.Pin, reg *equation.Registry) error {
	if len(pins) != 2 {
		return errors.Wrapf(ErrArity, "resistor %s: want 2 pins, got %d", r.name, len(pins))
	}
	r.setPins(pins)
	return nil
}

func (r *Resistor) UpdateSteadyState(s *state.State, dt float64) {}
func (r *Resistor) Precompute(s *state.State, steady bool)       {}
func (r *Resistor) UpdateState(s *state.State)                   {}

// Current returns the current the resistor delivers into the node at pin
// row: i = G*(V1-V0) at pin 0, sign-flipped at pin 1 so the two terminals
// sum to zero.
func (r *Resistor) Current(row int, s *state.State, steady bool) float64 {
	v := s.Voltage(r.pins[1]) - s.Voltage(r.pins[0])
	i := r.g * v
	if row == 0 {
		return i
	}
	return -i
}

func (r *Resistor) Gradient(row, col int, s *state.State, steady bool) float64 {
	g := r.g
	if col != 1 {
		g = -g
	}
	if row != 0 {
		g = -g
	}
	return g
}
