package model

import "github.com/pkg/errors"

// Construction and setup-time sentinel errors. Each is wrapped with
// call-site context (component name, pin index) before being returned.
// AddComponent never lets a component-level or equation-level sentinel
// (component.ErrArity, component.ErrWrongPinKind, equation.ErrAlreadyClaimed)
// reach the caller directly: translateRegisterErr folds each of them into
// its package-model counterpart below, so callers can match on model.ErrXxx
// regardless of which layer actually detected the problem.
var (
	// ErrInvalidPin is returned when a pin index is out of range for its
	// kind's vector.
	ErrInvalidPin = errors.New("model: pin index out of range")
	// ErrDuplicateOverride is returned when two components attempt to
	// claim the same dynamic pin's equation.
	ErrDuplicateOverride = errors.New("model: dynamic pin already has an equation override")
	// ErrWrongPinKind is returned when a component requires a pin of a
	// specific kind and was wired to a different one.
	ErrWrongPinKind = errors.New("model: pin has wrong kind")
	// ErrArity is returned when a component is wired to the wrong number
	// of pins.
	ErrArity = errors.New("model: wrong number of pins")
	// ErrDtAfterSetup is returned by SetTimeStep once the model has
	// already been set up: the companion-model constants computed during
	// Setup are only valid for the dt they were computed with.
	ErrDtAfterSetup = errors.New("model: time step changed after setup")
	// ErrNoTimeStep is returned by Setup (and RampStatic) if called before
	// any sample period has been configured.
	ErrNoTimeStep = errors.New("model: time step not set")
)
