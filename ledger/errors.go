package ledger

import (
	"errors"
	"fmt"
)

var (
	ErrNilContract       = errors.New("nil contract")
	ErrDuplicateContract = errors.New("contract already on balance sheet")
	ErrForeignContract   = errors.New("contract does not belong to this balance sheet")
	ErrInsufficientFunds = errors.New("insufficient funds")
	ErrNegativeAmount    = errors.New("amount must not be negative")
	ErrTerminated        = errors.New("contract is terminated")
	ErrMissingParty      = errors.New("contract party is missing")
)

// InvariantError is the panic value raised when an accounting invariant is
// broken. It is never returned as an error: a broken invariant means the
// books can no longer be trusted.
type InvariantError struct {
	Msg string
}

func (e *InvariantError) Error() string {
	return "ledger invariant violated: " + e.Msg
}

func invariant(format string, args ...any) {
	panic(&InvariantError{Msg: fmt.Sprintf(format, args...)})
}
