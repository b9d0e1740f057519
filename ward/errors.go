package ward

import (
	"fmt"
	"runtime/debug"
)

// ParameterisationError means that the Each arguments of a test do not all have the same length, so
// the test cannot be expanded into instances.
type ParameterisationError struct {
	Test        string
	Description string
	Lengths     []int
}

func (e *ParameterisationError) Error() string {
	return fmt.Sprintf("the test %s/%s is parameterised incorrectly: all uses of Each in its arguments "+
		"must have the same number of values, but got lengths %v", e.Test, e.Description, e.Lengths)
}

// FixturePhase says whether a fixture failed while it was being set up or torn down.
type FixturePhase int

const (
	PhaseSetup FixturePhase = iota
	PhaseTeardown
)

func (p FixturePhase) String() string {
	if p == PhaseTeardown {
		return "teardown"
	}
	return "setup"
}

// FixtureError wraps an error returned, or a panic raised, by a fixture function. The original error
// is available through errors.Unwrap, errors.Is and errors.As.
type FixtureError struct {
	Fixture string
	Phase   FixturePhase
	Cause   error
}

func (e *FixtureError) Error() string {
	verb := "resolve"
	if e.Phase == PhaseTeardown {
		verb = "tear down"
	}
	return fmt.Sprintf("unable to %s fixture '%s': %s", verb, e.Fixture, e.Cause)
}

func (e *FixtureError) Unwrap() error {
	return e.Cause
}

// PanicError is the cause recorded when a fixture function panics instead of returning an error.
type PanicError struct {
	Value interface{}
	Stack string
}

func newPanicError(value interface{}) *PanicError {
	return &PanicError{Value: value, Stack: string(debug.Stack())}
}

func (e *PanicError) Error() string {
	return fmt.Sprintf("panic: %v", e.Value)
}

// Unwrap returns the panic value if it was itself an error.
func (e *PanicError) Unwrap() error {
	if err, ok := e.Value.(error); ok {
		return err
	}
	return nil
}
