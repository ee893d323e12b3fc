package model_test

import (
	"math"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/nlcircuit/core/pkg/component"
	"github.com/nlcircuit/core/pkg/model"
	"github.com/nlcircuit/core/pkg/pin"
	"github.com/nlcircuit/core/pkg/solver"
)

// Resistive divider: static 5V rail through R1=2k to dynamic node D0,
// D0 through R2=1k to ground (static pin 0, fixed at 0V). Expected
// D0 = 5 * 1k/(2k+1k) = 1.6667V.
func TestResistiveDivider(t *testing.T) {
	m := model.New(1, 2, 0)
	require.NoError(t, m.AddComponent(component.NewDCVoltage("VCC", 5), []pin.Pin{pin.S(1)}))
	require.NoError(t, m.AddComponent(component.NewResistor("R1", 2000), []pin.Pin{pin.S(1), pin.D(0)}))
	require.NoError(t, m.AddComponent(component.NewResistor("R2", 1000), []pin.Pin{pin.D(0), pin.S(0)}))
	require.NoError(t, m.SetTimeStep(1.0/48000.0))

	require.NoError(t, m.Setup())
	assert.InDelta(t, 1.6667, m.Dynamic()[0], 1e-3)

	_, err := m.Step(nil)
	require.NoError(t, err)
	assert.InDelta(t, 1.6667, m.Dynamic()[0], 1e-3)
}

// Non-inverting op-amp with gain 2: Vin (input pin) drives the
// non-inverting input directly; a resistive divider from the output
// feeds the inverting input so V- = Vout/2. At steady state Vout = 2*Vin.
func TestNonInvertingOpAmpGainTwo(t *testing.T) {
	// Pins: D0 = V-, D1 = Vout. Vin is an input pin feeding V+ directly
	// (an op-amp's + input draws no current, so it can be wired straight
	// to an input source without an intervening resistor).
	m := model.New(2, 1, 1)
	require.NoError(t, m.AddComponent(component.NewOpAmp("U1"), []pin.Pin{pin.D(0), pin.I(0), pin.D(1)}))
	require.NoError(t, m.AddComponent(component.NewResistor("RF", 1000), []pin.Pin{pin.D(1), pin.D(0)}))
	require.NoError(t, m.AddComponent(component.NewResistor("RG", 1000), []pin.Pin{pin.D(0), pin.S(0)}))
	require.NoError(t, m.SetTimeStep(1.0/48000.0))

	dynamic, err := m.Step([]float64{5})
	require.NoError(t, err)
	assert.InDelta(t, 5.0, dynamic[0], 1e-3)
	assert.InDelta(t, 10.0, dynamic[1], 1e-3)
}

// Forward-biased diode in series with a resistor from a 5V rail: solving
// Is*(exp(V/(N*Vt))-1) = (5-V)/R converges to ~0.8624V for the prototype's
// default Is/N/Vt and a 1k series resistor.
func TestDiodeForwardVoltage(t *testing.T) {
	m := model.New(1, 2, 0)
	require.NoError(t, m.AddComponent(component.NewDCVoltage("VCC", 5), []pin.Pin{pin.S(1)}))
	require.NoError(t, m.AddComponent(component.NewResistor("R1", 1000), []pin.Pin{pin.S(1), pin.D(0)}))
	require.NoError(t, m.AddComponent(component.NewDiode("D1", 1e-14, 1.24, 26e-3), []pin.Pin{pin.D(0), pin.S(0)}))
	require.NoError(t, m.SetTimeStep(1.0/48000.0))

	require.NoError(t, m.Setup())
	assert.InDelta(t, 0.8624, m.Dynamic()[0], 5e-3)
}

// RC low-pass: after many samples with a constant input, the dynamic
// node must settle to the input voltage (a capacitor blocks DC).
func TestRCStepSettlesToInput(t *testing.T) {
	dt := 1.0 / 48000.0
	tau := 1e3 * 1e-6 // R=1k, C=1uF
	m := model.New(1, 1, 1)
	require.NoError(t, m.AddComponent(component.NewResistor("R1", 1000), []pin.Pin{pin.I(0), pin.D(0)}))
	require.NoError(t, m.AddComponent(component.NewCapacitor("C1", 1e-6), []pin.Pin{pin.D(0), pin.S(0)}))
	require.NoError(t, m.SetTimeStep(dt))

	samples := int(10 * tau / dt)
	var last float64
	for i := 0; i < samples; i++ {
		d, err := m.Step([]float64{1.0})
		require.NoError(t, err)
		last = d[0]
	}
	assert.InDelta(t, 1.0, last, 1e-3)
}

// RL: the same settling property, this time with a coil alongside the
// resistor between the input and the node; the coil looks like a short at
// DC.
func TestRLStepSettlesToInput(t *testing.T) {
	dt := 1.0 / 48000.0
	m := model.New(1, 0, 1)
	require.NoError(t, m.AddComponent(component.NewResistor("R1", 1000), []pin.Pin{pin.I(0), pin.D(0)}))
	require.NoError(t, m.AddComponent(component.NewCoil("L1", 1e-3), []pin.Pin{pin.D(0), pin.I(0)}))
	require.NoError(t, m.SetTimeStep(dt))

	samples := 2000
	var last float64
	for i := 0; i < samples; i++ {
		d, err := m.Step([]float64{1.0})
		require.NoError(t, err)
		last = d[0]
	}
	// The coil shorts D0 to the input rail at DC, so the node settles to
	// the input voltage, not to zero, once the transient has died out.
	assert.InDelta(t, 1.0, last, 1e-3)
}

// NPN common-emitter bias point, matching the prototype's worked example:
// base ~0.4051V, collector ~4.9943V, emitter ~0.000577V.
func TestNPNBiasPoint(t *testing.T) {
	// Pins: D0=Base, D1=Collector, D2=Emitter. Static 5V rail; a
	// 16.67k/1.47k divider from the rail to ground sets the base, a 1k
	// collector resistor runs from the rail to the collector, and a 100 Ohm
	// emitter resistor runs to ground. Default NPN with Is=1e-12.
	m := model.New(3, 2, 0)
	require.NoError(t, m.AddComponent(component.NewDCVoltage("VCC", 5), []pin.Pin{pin.S(1)}))
	require.NoError(t, m.AddComponent(component.NewResistor("RB1", 16_670), []pin.Pin{pin.S(1), pin.D(0)}))
	require.NoError(t, m.AddComponent(component.NewResistor("RB2", 1_470), []pin.Pin{pin.D(0), pin.S(0)}))
	require.NoError(t, m.AddComponent(component.NewResistor("RC", 1_000), []pin.Pin{pin.S(1), pin.D(1)}))
	require.NoError(t, m.AddComponent(component.NewResistor("RE", 100), []pin.Pin{pin.D(2), pin.S(0)}))
	require.NoError(t, m.AddComponent(
		component.NewBJT("Q1", component.NPN, 1e-12, 100, 1, 26e-3, 1),
		[]pin.Pin{pin.D(0), pin.D(1), pin.D(2)}))
	require.NoError(t, m.SetTimeStep(1.0/48000.0))

	require.NoError(t, m.Setup())
	d := m.Dynamic()
	assert.InDelta(t, 0.4051, d[0], 5e-3)
	assert.InDelta(t, 4.9943, d[1], 5e-3)
	assert.InDelta(t, 0.000577, d[2], 2e-4)
}

// The analytic Jacobian must match the finite-difference approximation at
// the operating point of an NPN stage biased through a 1M base resistor.
func TestAnalyticJacobianMatchesNumerical(t *testing.T) {
	m := model.New(3, 2, 0)
	require.NoError(t, m.AddComponent(component.NewDCVoltage("VCC", 5), []pin.Pin{pin.S(1)}))
	require.NoError(t, m.AddComponent(component.NewResistor("RB", 1_000_000), []pin.Pin{pin.S(1), pin.D(0)}))
	require.NoError(t, m.AddComponent(component.NewResistor("RC", 1_000), []pin.Pin{pin.S(1), pin.D(1)}))
	require.NoError(t, m.AddComponent(component.NewResistor("RE", 1_000), []pin.Pin{pin.D(2), pin.S(0)}))
	require.NoError(t, m.AddComponent(
		component.NewBJT("Q1", component.NPN, 1e-14, 100, 1, 26e-3, 1),
		[]pin.Pin{pin.D(0), pin.D(1), pin.D(2)}))
	require.NoError(t, m.SetTimeStep(1.0/48000.0))
	require.NoError(t, m.Setup())

	analytic, numeric, err := solver.CheckJacobian(m, false)
	require.NoError(t, err)
	rows, cols := analytic.Dims()
	for r := 0; r < rows; r++ {
		for c := 0; c < cols; c++ {
			assert.InDelta(t, numeric.At(r, c), analytic.At(r, c), 1e-4,
				"jacobian[%d][%d] mismatch", r, c)
		}
	}
}

func TestDuplicateEquationOverrideIsRejected(t *testing.T) {
	m := model.New(1, 0, 2)
	require.NoError(t, m.AddComponent(component.NewOpAmp("U1"), []pin.Pin{pin.I(0), pin.I(1), pin.D(0)}))
	err := m.AddComponent(component.NewOpAmp("U2"), []pin.Pin{pin.I(0), pin.I(1), pin.D(0)})
	assert.ErrorIs(t, err, model.ErrDuplicateOverride)
}

func TestAddComponentWrongArityIsModelErrArity(t *testing.T) {
	m := model.New(1, 0, 0)
	err := m.AddComponent(component.NewResistor("R1", 1000), []pin.Pin{pin.D(0)})
	assert.ErrorIs(t, err, model.ErrArity)
}

func TestAddComponentWrongPinKindIsModelErrWrongPinKind(t *testing.T) {
	m := model.New(1, 1, 0)
	err := m.AddComponent(component.NewDCVoltage("VCC", 5), []pin.Pin{pin.D(0)})
	assert.ErrorIs(t, err, model.ErrWrongPinKind)
}

func TestSetTimeStepAfterSetupIsRejected(t *testing.T) {
	m := model.New(1, 2, 0)
	require.NoError(t, m.AddComponent(component.NewResistor("R1", 1000), []pin.Pin{pin.S(0), pin.D(0)}))
	require.NoError(t, m.SetTimeStep(1.0/48000.0))
	require.NoError(t, m.Setup())
	err := m.SetTimeStep(1.0 / 44100.0)
	assert.ErrorIs(t, err, model.ErrDtAfterSetup)
}

func TestLastConvergenceReportsConvergedSolve(t *testing.T) {
	// A circuit that converges trivially; verifies LastConvergence reports
	// a sane iteration count rather than asserting a failure path (forcing
	// genuine non-convergence would need a pathological device model).
	m := model.New(1, 2, 0)
	require.NoError(t, m.AddComponent(component.NewDCVoltage("VCC", 1), []pin.Pin{pin.S(1)}))
	require.NoError(t, m.AddComponent(component.NewResistor("R1", 1000), []pin.Pin{pin.S(1), pin.D(0)}))
	require.NoError(t, m.AddComponent(component.NewResistor("R2", 1000), []pin.Pin{pin.D(0), pin.S(0)}))
	require.NoError(t, m.SetTimeStep(1.0/48000.0))
	require.NoError(t, m.Setup())
	nc := m.LastConvergence()
	assert.True(t, nc.Converged)
	assert.Less(t, nc.Iterations, solver.MaxIterations)
	assert.False(t, math.IsNaN(nc.ResidualNorm))
}
