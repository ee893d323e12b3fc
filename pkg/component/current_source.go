package component

import (
	"github.com/pkg/errors"

	"github.com/nlcircuit/core/pkg/equation"
	"github.com/nlcircuit/core/pkg/pin"
	"github.com/nlcircuit/core/pkg/state"
)

// CurrentSource is an ideal two-terminal constant current source.
type CurrentSource struct {
	basePins
	name string
	I    float64
}

// NewCurrentSource builds a CurrentSource of the given value in amps.
func NewCurrentSource(name string, amps float64) *CurrentSource {
	return &CurrentSource{name: name, I: amps}
}

func (c *CurrentSource) Name() string { return c.name }

func (c *CurrentSource) Register(pins []pin.Pin, reg *equation.Registry) error {
	if len(pins) != 2 {
		return errors.Wrapf(ErrArity, "current source %s: want 2 pins, got %d", c.name, len(pins))
	}
	c.setPins(pins)
	return nil
}

func (c *CurrentSource) UpdateSteadyState(s *state.State, dt float64) {}
func (c *CurrentSource) Precompute(s *state.State, steady bool)       {}
func (c *CurrentSource) UpdateState(s *state.State)                   {}

func (c *CurrentSource) Current(row int, s *state.State, steady bool) float64 {
	if row == 1 {
		return c.I
	}
	return -c.I
}

func (c *CurrentSource) Gradient(row, col int, s *state.State, steady bool) float64 {
	return 0
}
