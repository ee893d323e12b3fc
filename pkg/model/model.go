// Package model implements the pin/component modeling engine: component
// registration, the equation assembler, the steady-state bootstrap, and
// the per-sample step.
package model

import (
	"github.com/pkg/errors"
	"github.com/rs/zerolog"

	"github.com/nlcircuit/core/pkg/component"
	"github.com/nlcircuit/core/pkg/equation"
	"github.com/nlcircuit/core/pkg/pin"
	"github.com/nlcircuit/core/pkg/solver"
	"github.com/nlcircuit/core/pkg/state"
)

// incidenceEntry is one (component, local pin) pair incident to a dynamic
// pin, used by the equation assembler to sum currents and walk Jacobian
// columns.
type incidenceEntry struct {
	contributor component.CurrentContributor
	localPin    int
	pins        []pin.Pin
}

// Model owns the circuit's state, its registered components, the
// pin-incidence table the equation assembler walks, and the Newton solver
// that advances it.
type Model struct {
	state *state.State

	components []component.Component
	incidence  [][]incidenceEntry
	registry   *equation.Registry

	dt          float64
	dtSet       bool
	initialized bool

	newton      *solver.Newton
	checkJac    bool
	lastNC      solver.NonConvergence
	logger      zerolog.Logger
}

// New builds a Model with the given pin counts. Components are added with
// AddComponent; the sample period is fixed with SetTimeStep before the
// first Setup or Step call.
func New(nDynamic, nStatic, nInput int) *Model {
	return &Model{
		state:     state.New(nStatic, nDynamic, nInput),
		incidence: make([][]incidenceEntry, nDynamic),
		registry:  equation.NewRegistry(),
		logger:    zerolog.Nop(),
	}
}

// SetLogger attaches a diagnostics sink for non-convergence warnings.
// Defaults to a no-op logger.
func (m *Model) SetLogger(l zerolog.Logger) {
	m.logger = l
	if m.newton != nil {
		m.newton.Logger = l
	}
}

// EnableJacobianCheck wires the numerical-Jacobian comparison into every
// Solve call for diagnostic/test builds. It is expensive (one extra
// residual assembly per dynamic unknown) and is off by default.
func (m *Model) EnableJacobianCheck(on bool) {
	m.checkJac = on
}

// SetTimeStep fixes the sample period used by every reactive component's
// companion model. It must be called before Setup; calling it again after
// the circuit has been set up is a construction error, since the cached
// companion-model constants would otherwise silently go stale.
func (m *Model) SetTimeStep(dt float64) error {
	if m.initialized {
		return errors.Wrapf(ErrDtAfterSetup, "dt=%g", dt)
	}
	m.dt = dt
	m.dtSet = true
	return nil
}

// SetStatic overwrites the static rail vector.
func (m *Model) SetStatic(values []float64) {
	copy(m.state.Static, values)
}

// Static returns the current static rail vector.
func (m *Model) Static() []float64 {
	return m.state.Static
}

// Dynamic returns the current dynamic (solved) state vector.
func (m *Model) Dynamic() []float64 {
	return m.state.Dynamic
}

// Size returns the number of dynamic unknowns, satisfying solver.Problem.
func (m *Model) Size() int {
	return len(m.state.Dynamic)
}

// InputSize returns the number of input pins, so a caller can size the
// vector it passes to Step.
func (m *Model) InputSize() int {
	return len(m.state.Input)
}

// SetDynamic overwrites the dynamic state vector, satisfying
// solver.Problem.
func (m *Model) SetDynamic(values []float64) {
	copy(m.state.Dynamic, values)
}

// AddComponent registers a component and the pins it was wired to,
// validating pin indices, recording pin incidence for any
// CurrentContributor, and letting the component claim an equation
// override through the registry.
func (m *Model) AddComponent(c component.Component, pins []pin.Pin) error {
	for _, p := range pins {
		if !m.validPin(p) {
			return errors.Wrapf(ErrInvalidPin, "component %s: pin %v", c.Name(), p)
		}
	}

	if err := c.Register(pins, m.registry); err != nil {
		return errors.Wrapf(translateRegisterErr(err), "registering component %s", c.Name())
	}
	m.components = append(m.components, c)

	contributor, ok := c.(component.CurrentContributor)
	if !ok {
		return nil
	}
	for local, p := range pins {
		if p.Kind != pin.Dynamic {
			continue
		}
		m.incidence[p.Index] = append(m.incidence[p.Index], incidenceEntry{
			contributor: contributor,
			localPin:    local,
			pins:        pins,
		})
	}
	return nil
}

// translateRegisterErr maps the sentinel errors a component's Register
// (or the equation.Registry.Claim it calls) can fail with onto this
// package's own sentinels. component.ErrArity/ErrWrongPinKind and
// equation.ErrAlreadyClaimed are construction-time details of how a
// component validates itself; AddComponent's contract is documented purely
// in terms of model.ErrArity/ErrWrongPinKind/ErrDuplicateOverride, so
// anything else is passed through unchanged.
func translateRegisterErr(err error) error {
	switch {
	case errors.Is(err, component.ErrArity):
		return errors.Wrap(ErrArity, err.Error())
	case errors.Is(err, component.ErrWrongPinKind):
		return errors.Wrap(ErrWrongPinKind, err.Error())
	case errors.Is(err, equation.ErrAlreadyClaimed):
		return errors.Wrap(ErrDuplicateOverride, err.Error())
	default:
		return err
	}
}

func (m *Model) validPin(p pin.Pin) bool {
	switch p.Kind {
	case pin.Static:
		return p.Index >= 0 && p.Index < len(m.state.Static)
	case pin.Dynamic:
		return p.Index >= 0 && p.Index < len(m.state.Dynamic)
	case pin.Input:
		return p.Index >= 0 && p.Index < len(m.state.Input)
	default:
		return false
	}
}

// Assemble builds the residual and Jacobian for the whole dynamic vector,
// satisfying solver.Problem. For each dynamic pin, either an override
// component supplies the full row, or the Kirchhoff-current sum over
// incident components does.
func (m *Model) Assemble(steady bool) ([]float64, []map[int]float64) {
	for _, c := range m.components {
		c.Precompute(m.state, steady)
	}

	n := len(m.state.Dynamic)
	residual := make([]float64, n)
	jacobian := make([]map[int]float64, n)

	for i := 0; i < n; i++ {
		if owner, eqNumber, ok := m.registry.Lookup(i); ok {
			r, jac := owner.AddEquation(m.state, steady, eqNumber)
			residual[i] = r
			jacobian[i] = jac
			continue
		}

		var r float64
		jac := make(map[int]float64)
		for _, inc := range m.incidence[i] {
			r += inc.contributor.Current(inc.localPin, m.state, steady)
			for otherLocal, p := range inc.pins {
				if p.Kind != pin.Dynamic {
					continue
				}
				jac[p.Index] += inc.contributor.Gradient(inc.localPin, otherLocal, m.state, steady)
			}
		}
		residual[i] = r
		jacobian[i] = jac
	}

	return residual, jacobian
}

func (m *Model) ensureNewton() error {
	if m.newton != nil {
		return nil
	}
	n, err := solver.NewNewton(len(m.state.Dynamic))
	if err != nil {
		return errors.Wrap(err, "model: building newton solver")
	}
	n.Logger = m.logger
	m.newton = n
	return nil
}

func (m *Model) solve(steady bool) error {
	if err := m.ensureNewton(); err != nil {
		return err
	}
	nc, err := m.newton.Solve(m, steady)
	if err != nil {
		return errors.Wrap(err, "model: newton solve failed")
	}
	m.lastNC = nc

	if m.checkJac {
		if _, _, err := solver.CheckJacobian(m, steady); err != nil {
			return errors.Wrap(err, "model: jacobian check failed")
		}
	}
	return nil
}

// LastConvergence reports the outcome of the most recent Newton solve,
// for callers that want to observe non-convergence without it failing the
// sample.
func (m *Model) LastConvergence() solver.NonConvergence {
	return m.lastNC
}

// Setup runs the steady-state bootstrap: update every component's
// companion-model constants for the configured dt, solve the circuit with
// reactives in their steady-state form, then update the companion-model
// constants again now that the operating point is known.
func (m *Model) Setup() error {
	if !m.dtSet {
		return ErrNoTimeStep
	}
	for _, c := range m.components {
		c.UpdateSteadyState(m.state, m.dt)
	}
	if err := m.solve(true); err != nil {
		return err
	}
	for _, c := range m.components {
		c.UpdateSteadyState(m.state, m.dt)
	}
	m.initialized = true
	return nil
}

// Step advances the circuit by one sample: Setup runs automatically on
// first use, the input vector is copied in, the transient solve runs, and
// every component's history is advanced. The returned slice is the
// model's live dynamic buffer, not a copy: callers must not mutate it and
// must consume it before the next Step call.
func (m *Model) Step(input []float64) ([]float64, error) {
	if !m.initialized {
		if err := m.Setup(); err != nil {
			return nil, err
		}
	}
	copy(m.state.Input, input)

	if err := m.solve(false); err != nil {
		return nil, err
	}
	for _, c := range m.components {
		c.UpdateState(m.state)
	}
	return m.state.Dynamic, nil
}

// RampStatic linearly interpolates the static rail vector from its
// current value to target over steps increments, calling Setup after
// each increment and retaining the dynamic state as a warm start between
// increments. This is the bootstrap strategy for circuits whose
// nonlinearities are too stiff to converge from a cold start with the
// rails already at full voltage (a multi-rail transistor ladder, for
// instance).
//
// RampStatic only makes sense for static pins that are not also driven by
// a DCVoltage component: DCVoltage rewrites its pin on every
// UpdateSteadyState call (including the one inside each ramp step's
// Setup), so it would immediately overwrite an interpolated value. Ramp
// rails that are set directly through SetStatic and read by other
// components, not rails fixed by a DCVoltage.
func (m *Model) RampStatic(target []float64, steps int) error {
	if !m.dtSet {
		return ErrNoTimeStep
	}
	if steps < 1 {
		steps = 1
	}
	start := append([]float64(nil), m.state.Static...)
	for step := 1; step <= steps; step++ {
		frac := float64(step) / float64(steps)
		for i := range m.state.Static {
			m.state.Static[i] = start[i] + frac*(target[i]-start[i])
		}
		if err := m.Setup(); err != nil {
			return errors.Wrapf(err, "ramp step %d/%d", step, steps)
		}
	}
	return nil
}
