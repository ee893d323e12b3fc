// Package state holds the three parallel voltage vectors the modeling
// engine operates on: static rails, dynamic unknowns, and per-sample inputs.
package state

import "github.com/nlcircuit/core/pkg/pin"

// State is the mutable voltage storage shared by every component and the
// solver. It is owned by a single model.Model and is not safe for
// concurrent use.
type State struct {
	Static  []float64
	Dynamic []float64
	Input   []float64
}

// New allocates a State with the given pin counts, all voltages zeroed.
func New(nStatic, nDynamic, nInput int) *State {
	return &State{
		Static:  make([]float64, nStatic),
		Dynamic: make([]float64, nDynamic),
		Input:   make([]float64, nInput),
	}
}

// Voltage returns the current value at p, regardless of which vector it
// addresses. Components are written once against Pin values using this
// accessor rather than switching on kind at every call site.
func (s *State) Voltage(p pin.Pin) float64 {
	switch p.Kind {
	case pin.Static:
		return s.Static[p.Index]
	case pin.Input:
		return s.Input[p.Index]
	default:
		return s.Dynamic[p.Index]
	}
}

// SetStatic writes a static rail voltage. Used by DC voltage sources during
// UpdateSteadyState and by the caller to set up the circuit's DC rails.
func (s *State) SetStatic(i int, v float64) {
	s.Static[i] = v
}
