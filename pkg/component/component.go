// Package component defines the polymorphic circuit-element contract the
// modeling engine stamps into its per-sample equations, and provides the
// concrete devices (resistor, capacitor, coil, diode, transistor, sources,
// op-amp) that implement it.
package component

import (
	"github.com/nlcircuit/core/pkg/equation"
	"github.com/nlcircuit/core/pkg/pin"
	"github.com/nlcircuit/core/pkg/state"
)

// Component is the contract every circuit element satisfies. Register is
// called once, at construction time, with the pins the model wired it to;
// a component stores them for later use by Current/Gradient and may claim
// an equation override through reg.
type Component interface {
	// Name identifies the component for diagnostics and error messages.
	Name() string
	// Register stores pins and, if the component replaces a dynamic pin's
	// equation, claims it through reg. Returning an error aborts
	// construction (wrong pin kind, wrong arity, duplicate claim).
	Register(pins []pin.Pin, reg *equation.Registry) error
	// UpdateSteadyState recomputes any dt-dependent companion-model
	// constants and (for reactive elements) seeds or rolls the history
	// term. Called twice during each Setup (before and after the
	// steady-state solve) and, for DC sources, is also where the static
	// rail voltage is written.
	UpdateSteadyState(s *state.State, dt float64)
	// Precompute caches values that are expensive to recompute for every
	// row/column pair touched during one Newton iteration (junction
	// exponentials, diode currents).
	Precompute(s *state.State, steady bool)
	// UpdateState runs after the solver has converged for a sample,
	// advancing any history terms (capacitor/coil companion models) to the
	// new operating point.
	UpdateState(s *state.State)
}

// CurrentContributor is implemented by components that participate in the
// ordinary Kirchhoff-current sum at one or more of their pins. Ideal
// equation-override components (OpAmp, VoltageGain) deliberately do not
// implement it for their controlling inputs: an ideal op-amp draws no
// input current.
type CurrentContributor interface {
	// Current returns the current the component delivers into the node at
	// its local pin localPin (the current leaving the component there).
	Current(localPin int, s *state.State, steady bool) float64
	// Gradient returns d Current(row)/d V(col), both local pin indices.
	Gradient(row, col int, s *state.State, steady bool) float64
}

// Pins returns a component's own registered pin list, used by the model's
// equation assembler to walk a contributor's columns. Components embed
// basePins to get this for free.
type Pins interface {
	Pins() []pin.Pin
}

// basePins is embedded by every concrete component to store the pins the
// model wired it to and satisfy the Pins interface.
type basePins struct {
	pins []pin.Pin
}

func (b *basePins) setPins(p []pin.Pin) { b.pins = p }

func (b *basePins) Pins() []pin.Pin { return b.pins }
