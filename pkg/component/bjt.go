package component

import (
	"github.com/pkg/errors"

	"github.com/nlcircuit/core/internal/phys"
	"github.com/nlcircuit/core/pkg/equation"
	"github.com/nlcircuit/core/pkg/pin"
	"github.com/nlcircuit/core/pkg/state"
)

// BJTPolarity selects the Ebers-Moll current convention.
type BJTPolarity int

const (
	NPN BJTPolarity = iota
	PNP
)

// bjtBase indices, shared between NPN and PNP: Base=0, Collector=1, Emitter=2.
const (
	bjtBase = iota
	bjtCollector
	bjtEmitter
)

// BJT is an Ebers-Moll bipolar transistor. Pins (Base=0, Collector=1,
// Emitter=2). ne, passed to NewBJT, is a non-ideality multiplier folded
// into the device's effective thermal voltage; it applies equally to both
// junctions, matching the prototype this model was distilled from, where
// it is normally only set away from 1 for NPN devices.
//
// The Jacobian below is derived once for both polarities: NPN's Ib/Ic are
// negated relative to PNP's, but PNP's exponentials use a negated argument
// (eBE = exp(-Vbe/vt) instead of exp(Vbe/vt)), and the two negations
// cancel in the derivative, so ib_vbe/ib_vbc/ic_vbe/ic_vbc have the same
// shape for both polarities once each polarity's own exponentials are
// substituted in.
type BJT struct {
	basePins
	name     string
	polarity BJTPolarity
	Is       float64
	Bf       float64
	Br       float64
	vt       float64

	eBE, eBC                     float64
	ibVbe, ibVbc, icVbe, icVbc   float64
}

// NewBJT builds a BJT with the given Ebers-Moll parameters. rawVt is the
// thermal voltage before the Ne correction (phys.DefaultVt if zero); ne is
// the non-ideality multiplier (1 if zero).
func NewBJT(name string, polarity BJTPolarity, is, bf, br, rawVt, ne float64) *BJT {
	if rawVt == 0 {
		rawVt = phys.DefaultVt
	}
	if ne == 0 {
		ne = 1
	}
	return &BJT{name: name, polarity: polarity, Is: is, Bf: bf, Br: br, vt: rawVt * ne}
}

func (t *BJT) Name() string { return t.name }

func (t *BJT) Register(pins []pin.Pin, reg *equation.Registry) error {
	if len(pins) != 3 {
		return errors.Wrapf(ErrArity, "bjt %s: want 3 pins, got %d", t.name, len(pins))
	}
	t.setPins(pins)
	return nil
}

func (t *BJT) UpdateSteadyState(s *state.State, dt float64) {}

func (t *BJT) vbe(s *state.State) float64 {
	return s.Voltage(t.pins[bjtBase]) - s.Voltage(t.pins[bjtEmitter])
}

func (t *BJT) vbc(s *state.State) float64 {
	return s.Voltage(t.pins[bjtBase]) - s.Voltage(t.pins[bjtCollector])
}

func (t *BJT) Precompute(s *state.State, steady bool) {
	vbe, vbc := t.vbe(s), t.vbc(s)
	switch t.polarity {
	case NPN:
		t.eBE = phys.SafeExp(vbe / t.vt)
		t.eBC = phys.SafeExp(vbc / t.vt)
		t.ibVbe = t.Is * t.eBE / (t.vt * t.Bf)
		t.ibVbc = t.Is * t.eBC / (t.vt * t.Br)
		t.icVbe = t.Is * t.eBE / t.vt
		t.icVbc = -t.Is * t.eBC / t.vt * (1 + 1/t.Br)
	default: // PNP
		t.eBE = phys.SafeExp(-vbe / t.vt)
		t.eBC = phys.SafeExp(-vbc / t.vt)
		t.ibVbe = t.Is * t.eBE / (t.vt * t.Bf)
		t.ibVbc = t.Is * t.eBC / (t.vt * t.Br)
		t.icVbe = t.Is * t.eBE / t.vt
		t.icVbc = -t.Is * t.eBC / t.vt * (1 + 1/t.Br)
	}
}

func (t *BJT) currents() (ib, ic, ie float64) {
	ib = t.Is * ((t.eBE-1)/t.Bf + (t.eBC-1)/t.Br)
	ic = t.Is * ((t.eBE - t.eBC) - (t.eBC-1)/t.Br)
	if t.polarity == PNP {
		ib, ic = -ib, -ic
	}
	ie = -(ib + ic)
	return
}

func (t *BJT) Current(row int, s *state.State, steady bool) float64 {
	ib, ic, ie := t.currents()
	switch row {
	case bjtBase:
		return ib
	case bjtCollector:
		return ic
	default:
		return ie
	}
}

// Gradient implements the 3x3 table derived in the type doc comment.
func (t *BJT) Gradient(row, col int, s *state.State, steady bool) float64 {
	gBB := t.ibVbe + t.ibVbc
	gBC := -t.ibVbc
	gBE := -t.ibVbe
	gCB := t.icVbe + t.icVbc
	gCC := -t.icVbc
	gCE := -t.icVbe

	switch {
	case row == bjtBase && col == bjtBase:
		return gBB
	case row == bjtBase && col == bjtCollector:
		return gBC
	case row == bjtBase && col == bjtEmitter:
		return gBE
	case row == bjtCollector && col == bjtBase:
		return gCB
	case row == bjtCollector && col == bjtCollector:
		return gCC
	case row == bjtCollector && col == bjtEmitter:
		return gCE
	case row == bjtEmitter && col == bjtBase:
		return -(gBB + gCB)
	case row == bjtEmitter && col == bjtCollector:
		return -(gBC + gCC)
	default: // row == bjtEmitter && col == bjtEmitter
		return -(gBE + gCE)
	}
}

func (t *BJT) UpdateState(s *state.State) {}
