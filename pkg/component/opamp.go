package component

import (
	"github.com/pkg/errors"

	"github.com/nlcircuit/core/pkg/equation"
	"github.com/nlcircuit/core/pkg/pin"
	"github.com/nlcircuit/core/pkg/state"
)

// OpAmp is an ideal operational amplifier with infinite gain and no input
// current. Pins (Vminus=0, Vplus=1, Vout=2); Vout must be a dynamic pin,
// whose equation this component claims: V(Vminus) - V(Vplus) = 0.
type OpAmp struct {
	basePins
	name string
}

// NewOpAmp builds an OpAmp.
func NewOpAmp(name string) *OpAmp {
	return &OpAmp{name: name}
}

func (o *OpAmp) Name() string { return o.name }

func (o *OpAmp) Register(pins []pin.Pin, reg *equation.Registry) error {
	if len(pins) != 3 {
		return errors.Wrapf(ErrArity, "opamp %s: want 3 pins, got %d", o.name, len(pins))
	}
	if pins[2].Kind != pin.Dynamic {
		return errors.Wrapf(ErrWrongPinKind, "opamp %s: output pin must be dynamic", o.name)
	}
	o.setPins(pins)
	if err := reg.Claim(pins[2].Index, o, 0); err != nil {
		return errors.Wrapf(err, "opamp %s", o.name)
	}
	return nil
}

func (o *OpAmp) UpdateSteadyState(s *state.State, dt float64) {}
func (o *OpAmp) Precompute(s *state.State, steady bool)       {}
func (o *OpAmp) UpdateState(s *state.State)                   {}

// AddEquation returns the ideal op-amp's virtual-short residual and its
// Jacobian row, contributing only at the columns that are dynamic pins.
func (o *OpAmp) AddEquation(s *state.State, steady bool, eqNumber int) (float64, map[int]float64) {
	vminus, vplus := o.pins[0], o.pins[1]
	residual := s.Voltage(vminus) - s.Voltage(vplus)
	jac := make(map[int]float64)
	if vminus.Kind == pin.Dynamic {
		jac[vminus.Index] += 1
	}
	if vplus.Kind == pin.Dynamic {
		jac[vplus.Index] += -1
	}
	return residual, jac
}
