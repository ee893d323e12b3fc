package component

import (
	"github.com/pkg/errors"

	"github.com/nlcircuit/core/pkg/equation"
	"github.com/nlcircuit/core/pkg/pin"
	"github.com/nlcircuit/core/pkg/state"
)

// DCVoltage fixes one static pin to a constant rail voltage. It has no
// incident current or gradient: it writes directly into the static vector
// rather than participating in the KCL loop.
type DCVoltage struct {
	basePins
	name string
	V    float64
}

// NewDCVoltage builds a DCVoltage of the given value in volts.
func NewDCVoltage(name string, volts float64) *DCVoltage {
	return &DCVoltage{name: name, V: volts}
}

func (v *DCVoltage) Name() string { return v.name }

func (v *DCVoltage) Register(pins []pin.Pin, reg *equation.Registry) error {
	if len(pins) != 1 {
		return errors.Wrapf(ErrArity, "dc voltage %s: want 1 pin, got %d", v.name, len(pins))
	}
	if pins[0].Kind != pin.Static {
		return errors.Wrapf(ErrWrongPinKind, "dc voltage %s: pin must be static", v.name)
	}
	v.setPins(pins)
	return nil
}

// UpdateSteadyState writes the rail voltage into the static vector. This
// runs every time Setup (re-)bootstraps the circuit, including each step
// of a ramped bootstrap.
func (v *DCVoltage) UpdateSteadyState(s *state.State, dt float64) {
	s.SetStatic(v.pins[0].Index, v.V)
}

func (v *DCVoltage) Precompute(s *state.State, steady bool) {}
func (v *DCVoltage) UpdateState(s *state.State)              {}
