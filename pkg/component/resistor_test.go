package component_test

import (
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/nlcircuit/core/pkg/component"
	"github.com/nlcircuit/core/pkg/equation"
	"github.com/nlcircuit/core/pkg/pin"
	"github.com/nlcircuit/core/pkg/state"
)

func TestResistorCurrentAndGradient(t *testing.T) {
	r := component.NewResistor("R1", 1000)
	reg := equation.NewRegistry()
	require := assert.New(t)
	require.NoError(r.Register([]pin.Pin{pin.D(0), pin.D(1)}, reg))

	s := state.New(0, 2, 0)
	s.Dynamic[0] = 1.0
	s.Dynamic[1] = 3.0

	// V(pin1)-V(pin0) = 2V across 1kOhm => 2mA flows in at pin1 and out at
	// pin0, so the current delivered into the node is +2mA at pin0 and -2mA
	// at pin1.
	require.InDelta(2e-3, r.Current(0, s, false), 1e-12)
	require.InDelta(-2e-3, r.Current(1, s, false), 1e-12)

	g := 1.0 / 1000
	require.InDelta(-g, r.Gradient(0, 0, s, false), 1e-12)
	require.InDelta(g, r.Gradient(0, 1, s, false), 1e-12)
	require.InDelta(g, r.Gradient(1, 0, s, false), 1e-12)
	require.InDelta(-g, r.Gradient(1, 1, s, false), 1e-12)
}

func TestResistorRejectsWrongArity(t *testing.T) {
	r := component.NewResistor("R1", 1000)
	reg := equation.NewRegistry()
	err := r.Register([]pin.Pin{pin.D(0)}, reg)
	assert.ErrorIs(t, err, component.ErrArity)
}
