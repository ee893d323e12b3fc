package netlist_test

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/nlcircuit/core/pkg/netlist"
	"github.com/nlcircuit/core/pkg/pin"
)

func TestParseValueSuffixes(t *testing.T) {
	cases := map[string]float64{
		"4.7k":   4700,
		"100n":   100e-9,
		"2.2meg": 2.2e6, // the corrected, non-buggy value
		"1mil":   2.54e-6,
		"10f":    10e-15,
		"3.3":    3.3,
	}
	for in, want := range cases {
		got, err := netlist.ParseValue(in)
		require.NoError(t, err, in)
		assert.InEpsilon(t, want, got, 1e-9, in)
	}
}

func TestBuildResistiveDivider(t *testing.T) {
	src := `* divider
VCC vcc 0 5
R1 vcc out 2k
R2 out 0 1k
`
	nl, err := netlist.Parse(src)
	require.NoError(t, err)

	m, idx, err := netlist.Build(nl, 1.0/48000.0)
	require.NoError(t, err)

	require.NoError(t, m.Setup())

	outPin, ok := idx.Pin("out")
	require.True(t, ok)
	assert.InDelta(t, 1.6667, m.Dynamic()[outPin.Index], 1e-3)
}

func TestBuildNonDCVoltageSourceBindsInputPin(t *testing.T) {
	src := `* AC-driven divider
V1 in 0 AC 1
R1 in out 1k
R2 out 0 1k
`
	nl, err := netlist.Parse(src)
	require.NoError(t, err)

	m, idx, err := netlist.Build(nl, 1.0/48000.0)
	require.NoError(t, err)

	inPin, ok := idx.Pin("in")
	require.True(t, ok)
	assert.Equal(t, pin.Input, inPin.Kind)

	require.Equal(t, 1, m.InputSize())
	dynamic, err := m.Step([]float64{2})
	require.NoError(t, err)
	assert.InDelta(t, 1.0, dynamic[0], 1e-3)
}

func TestBuildDCVoltageWithExplicitTagBindsStaticPin(t *testing.T) {
	src := `V1 vcc 0 DC 5
R1 vcc out 1k
R2 out 0 1k
`
	nl, err := netlist.Parse(src)
	require.NoError(t, err)

	m, idx, err := netlist.Build(nl, 1.0/48000.0)
	require.NoError(t, err)
	require.NoError(t, m.Setup())

	vccPin, ok := idx.Pin("vcc")
	require.True(t, ok)
	assert.Equal(t, pin.Static, vccPin.Kind)

	outPin, ok := idx.Pin("out")
	require.True(t, ok)
	assert.InDelta(t, 2.5, m.Dynamic()[outPin.Index], 1e-3)
}

func TestBuildRejectsUnknownModel(t *testing.T) {
	src := `Q1 b c e unknownmodel
`
	nl, err := netlist.Parse(src)
	require.NoError(t, err)
	_, _, err = netlist.Build(nl, 1.0/48000.0)
	assert.Error(t, err)
}
