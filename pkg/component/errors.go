package component

import "github.com/pkg/errors"

// Construction-time sentinel errors returned by Register. Wrapped with
// component-specific context (name, expected arity) at the call site.
var (
	// ErrArity is returned when a component is wired to the wrong number
	// of pins.
	ErrArity = errors.New("component: wrong number of pins")
	// ErrWrongPinKind is returned when a component requires a pin of a
	// specific kind (a DC voltage source's terminal must be static) and
	// was wired to a different one.
	ErrWrongPinKind = errors.New("component: pin has wrong kind")
)
