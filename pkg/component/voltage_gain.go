package component

import (
	"github.com/pkg/errors"

	"github.com/nlcircuit/core/pkg/equation"
	"github.com/nlcircuit/core/pkg/pin"
	"github.com/nlcircuit/core/pkg/state"
)

// VoltageGain is an ideal voltage-controlled voltage source: a
// differential-input, differential-output gain stage with no input
// current. Pins (Vin+=0, Vin-=1, Vout+=2, Vout-=3); Vout+ must be dynamic,
// whose equation this component claims:
// gain*(V(Vin+)-V(Vin-)) - (V(Vout+)-V(Vout-)) = 0.
type VoltageGain struct {
	basePins
	name string
	Gain float64
}

// NewVoltageGain builds a VoltageGain with the given gain.
func NewVoltageGain(name string, gain float64) *VoltageGain {
	return &VoltageGain{name: name, Gain: gain}
}

func (g *VoltageGain) Name() string { return g.name }

func (g *VoltageGain) Register(pins []pin.Pin, reg *equation.Registry) error {
	if len(pins) != 4 {
		return errors.Wrapf(ErrArity, "voltage gain %s: want 4 pins, got %d", g.name, len(pins))
	}
	if pins[2].Kind != pin.Dynamic {
		return errors.Wrapf(ErrWrongPinKind, "voltage gain %s: Vout+ pin must be dynamic", g.name)
	}
	g.setPins(pins)
	if err := reg.Claim(pins[2].Index, g, 0); err != nil {
		return errors.Wrapf(err, "voltage gain %s", g.name)
	}
	return nil
}

func (g *VoltageGain) UpdateSteadyState(s *state.State, dt float64) {}
func (g *VoltageGain) Precompute(s *state.State, steady bool)       {}
func (g *VoltageGain) UpdateState(s *state.State)                   {}

func (g *VoltageGain) AddEquation(s *state.State, steady bool, eqNumber int) (float64, map[int]float64) {
	vinP, vinN, voutP, voutN := g.pins[0], g.pins[1], g.pins[2], g.pins[3]
	residual := g.Gain*(s.Voltage(vinP)-s.Voltage(vinN)) - (s.Voltage(voutP) - s.Voltage(voutN))
	jac := make(map[int]float64)
	if vinP.Kind == pin.Dynamic {
		jac[vinP.Index] += g.Gain
	}
	if vinN.Kind == pin.Dynamic {
		jac[vinN.Index] += -g.Gain
	}
	if voutP.Kind == pin.Dynamic {
		jac[voutP.Index] += -1
	}
	if voutN.Kind == pin.Dynamic {
		jac[voutN.Index] += 1
	}
	return residual, jac
}
