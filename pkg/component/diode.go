package component

import (
	"github.com/pkg/errors"

	"github.com/nlcircuit/core/internal/phys"
	"github.com/nlcircuit/core/pkg/equation"
	"github.com/nlcircuit/core/pkg/pin"
	"github.com/nlcircuit/core/pkg/state"
)

// Diode is a Shockley-equation junction, pins (Anode=0, Cathode=1).
type Diode struct {
	basePins
	name string
	Is   float64
	N    float64
	Vt   float64
	e    float64
}

// NewDiode builds a Diode with the given saturation current, emission
// coefficient, and thermal voltage. Vt defaults to phys.DefaultVt if zero.
func NewDiode(name string, is, n, vt float64) *Diode {
	if vt == 0 {
		vt = phys.DefaultVt
	}
	return &Diode{name: name, Is: is, N: n, Vt: vt}
}

func (d *Diode) Name() string { return d.name }

func (d *Diode) Register(pins []pin.Pin, reg *equation.Registry) error {
	if len(pins) != 2 {
		return errors.Wrapf(ErrArity, "diode %s: want 2 pins, got %d", d.name, len(pins))
	}
	d.setPins(pins)
	return nil
}

func (d *Diode) UpdateSteadyState(s *state.State, dt float64) {}

// Precompute caches the forward-bias exponential for this iteration.
func (d *Diode) Precompute(s *state.State, steady bool) {
	v := s.Voltage(d.pins[0]) - s.Voltage(d.pins[1])
	d.e = phys.SafeExp(v / (d.N * d.Vt))
}

func (d *Diode) Current(row int, s *state.State, steady bool) float64 {
	i := d.Is * (d.e - 1)
	if row == 1 {
		return i
	}
	return -i
}

func (d *Diode) Gradient(row, col int, s *state.State, steady bool) float64 {
	g := d.Is / (d.N * d.Vt) * d.e
	if col != 0 {
		g = -g
	}
	if row != 1 {
		g = -g
	}
	return g
}

func (d *Diode) UpdateState(s *state.State) {}
