package resolution

import (
	"errors"
	"fmt"
)

var (
	// ErrNotApplicable means a handler has nothing to do for this actor. The
	// policy moves on to the next handler.
	ErrNotApplicable = errors.New("resolution not applicable")

	// ErrNoRedistribution means non-creditor equity cannot cover the debt.
	ErrNoRedistribution = errors.New("no stock redistribution solution")

	ErrUnresolved     = errors.New("bankruptcy unresolved")
	ErrSystemCollapse = errors.New("financial system has collapsed")
)

// EscalationError is returned by a handler that tried and failed to restore
// solvency. The policy swallows it and tries the next handler.
type EscalationError struct {
	Handler string
	Actor   string
	Reason  string
	Err     error
}

func (e *EscalationError) Error() string {
	msg := fmt.Sprintf("%s %s: %s", e.Handler, e.Actor, e.Reason)
	if e.Err != nil {
		msg += ": " + e.Err.Error()
	}
	return msg
}

func (e *EscalationError) Unwrap() error { return e.Err }

func escalate(handler, actorName string, err error, format string, args ...any) error {
	return &EscalationError{
		Handler: handler,
		Actor:   actorName,
		Reason:  fmt.Sprintf(format, args...),
		Err:     err,
	}
}

// FatalError aborts the run. Err is ErrUnresolved or ErrSystemCollapse; Last
// is the error of the final handler tried, if any.
type FatalError struct {
	Actor string
	Err   error
	Last  error
}

func (e *FatalError) Error() string {
	if e.Last != nil {
		return fmt.Sprintf("%s: %v (last: %v)", e.Actor, e.Err, e.Last)
	}
	return fmt.Sprintf("%s: %v", e.Actor, e.Err)
}

func (e *FatalError) Unwrap() []error {
	out := []error{e.Err}
	if e.Last != nil {
		out = append(out, e.Last)
	}
	return out
}

// IsFatal reports whether err must stop the simulation.
func IsFatal(err error) bool {
	var fe *FatalError
	return errors.As(err, &fe)
}
