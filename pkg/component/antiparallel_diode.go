package component

import (
	"github.com/pkg/errors"

	"github.com/nlcircuit/core/internal/phys"
	"github.com/nlcircuit/core/pkg/equation"
	"github.com/nlcircuit/core/pkg/pin"
	"github.com/nlcircuit/core/pkg/state"
)

// AntiparallelDiode is a pair of Shockley diodes wired back to back, a
// common clipping stage in audio circuits. Pins (0=1).
type AntiparallelDiode struct {
	basePins
	name string
	Is   float64
	N    float64
	Vt   float64
	e    float64
}

// NewAntiparallelDiode builds an AntiparallelDiode pair; Vt defaults to
// phys.DefaultVt if zero.
func NewAntiparallelDiode(name string, is, n, vt float64) *AntiparallelDiode {
	if vt == 0 {
		vt = phys.DefaultVt
	}
	return &AntiparallelDiode{name: name, Is: is, N: n, Vt: vt}
}

func (d *AntiparallelDiode) Name() string { return d.name }

func (d *AntiparallelDiode) Register(pins []pin.Pin, reg *equation.Registry) error {
	if len(pins) != 2 {
		return errors.Wrapf(ErrArity, "antiparallel diode %s: want 2 pins, got %d", d.name, len(pins))
	}
	d.setPins(pins)
	return nil
}

func (d *AntiparallelDiode) UpdateSteadyState(s *state.State, dt float64) {}

func (d *AntiparallelDiode) Precompute(s *state.State, steady bool) {
	v := s.Voltage(d.pins[0]) - s.Voltage(d.pins[1])
	d.e = phys.SafeExp(v / (d.N * d.Vt))
}

func (d *AntiparallelDiode) Current(row int, s *state.State, steady bool) float64 {
	i := d.Is * (d.e - 1/d.e)
	if row == 1 {
		return i
	}
	return -i
}

func (d *AntiparallelDiode) Gradient(row, col int, s *state.State, steady bool) float64 {
	g := d.Is / (d.N * d.Vt) * (d.e + 1/d.e)
	if col != 0 {
		g = -g
	}
	if row != 1 {
		g = -g
	}
	return g
}

func (d *AntiparallelDiode) UpdateState(s *state.State) {}
