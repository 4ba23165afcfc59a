package actor

import (
	"errors"
	"fmt"
)

// ErrUnsupported is matched by every UnsupportedError.
var ErrUnsupported = errors.New("operation not supported for actor kind")

// UnsupportedError reports an operation applied to a kind it does not cover.
type UnsupportedError struct {
	Op   string
	Kind string
}

func (e *UnsupportedError) Error() string {
	return fmt.Sprintf("%s: not supported for %s", e.Op, e.Kind)
}

func (e *UnsupportedError) Is(target error) bool { return target == ErrUnsupported }

// Operation has one entry point per concrete actor kind, plus a fallback
// for values that are not actors at all.
type Operation[T any] interface {
	Bank(b *Bank) (T, error)
	CommercialBank(b *CommercialBank) (T, error)
	Firm(f *Firm) (T, error)
	Household(h *Household) (T, error)
	Fund(f *Fund) (T, error)
	Government(g *Government) (T, error)
	Intermediary(i *Intermediary) (T, error)
	Unknown(x any) (T, error)
}

// Dispatch routes x to the op method for its concrete kind. It is the only
// place in the module that switches on actor types.
func Dispatch[T any](x any, op Operation[T]) (T, error) {
	switch v := x.(type) {
	case *CommercialBank:
		return op.CommercialBank(v)
	case *Bank:
		return op.Bank(v)
	case *Firm:
		return op.Firm(v)
	case *Household:
		return op.Household(v)
	case *Fund:
		return op.Fund(v)
	case *Government:
		return op.Government(v)
	case *Intermediary:
		return op.Intermediary(v)
	default:
		return op.Unknown(x)
	}
}

// Raising is the base for operations that apply to a few kinds only. Every
// kind it is not overridden for fails with an UnsupportedError.
type Raising[T any] struct {
	Op string
}

func (r Raising[T]) fail(kind string) (T, error) {
	var zero T
	return zero, &UnsupportedError{Op: r.Op, Kind: kind}
}

func (r Raising[T]) Bank(*Bank) (T, error) { return r.fail(KindBank.String()) }
func (r Raising[T]) CommercialBank(*CommercialBank) (T, error) {
	return r.fail(KindCommercialBank.String())
}
func (r Raising[T]) Firm(*Firm) (T, error)                 { return r.fail(KindFirm.String()) }
func (r Raising[T]) Household(*Household) (T, error)       { return r.fail(KindHousehold.String()) }
func (r Raising[T]) Fund(*Fund) (T, error)                 { return r.fail(KindFund.String()) }
func (r Raising[T]) Government(*Government) (T, error)     { return r.fail(KindGovernment.String()) }
func (r Raising[T]) Intermediary(*Intermediary) (T, error) { return r.fail(KindIntermediary.String()) }
func (r Raising[T]) Unknown(x any) (T, error)              { return r.fail(fmt.Sprintf("%T", x)) }

// Uniform is the base for kind-agnostic operations: every kind funnels into
// Fn. Values that are not actors are rejected.
type Uniform[T any] struct {
	Op string
	Fn func(Actor) (T, error)
}

func (u Uniform[T]) Bank(b *Bank) (T, error)                     { return u.Fn(b) }
func (u Uniform[T]) CommercialBank(b *CommercialBank) (T, error) { return u.Fn(b) }
func (u Uniform[T]) Firm(f *Firm) (T, error)                     { return u.Fn(f) }
func (u Uniform[T]) Household(h *Household) (T, error)           { return u.Fn(h) }
func (u Uniform[T]) Fund(f *Fund) (T, error)                     { return u.Fn(f) }
func (u Uniform[T]) Government(g *Government) (T, error)         { return u.Fn(g) }
func (u Uniform[T]) Intermediary(i *Intermediary) (T, error)     { return u.Fn(i) }

func (u Uniform[T]) Unknown(x any) (T, error) {
	var zero T
	return zero, &UnsupportedError{Op: u.Op, Kind: fmt.Sprintf("%T", x)}
}

// Is reports whether x is an actor of kind k.
func Is(x any, k Kind) bool {
	a, ok := x.(Actor)
	return ok && a.Kind() == k
}

// DepositTaking reports whether x is a regular (non-central, non-bad) bank.
func DepositTaking(x any) bool {
	ok, _ := Dispatch[bool](x, depositTaking{})
	return ok
}

type depositTaking struct {
	Uniform[bool]
}

func (depositTaking) Bank(b *Bank) (bool, error) { return b.Role() == RoleRegular, nil }
func (depositTaking) CommercialBank(b *CommercialBank) (bool, error) {
	return b.Role() == RoleRegular, nil
}
func (depositTaking) Firm(*Firm) (bool, error)                 { return false, nil }
func (depositTaking) Household(*Household) (bool, error)       { return false, nil }
func (depositTaking) Fund(*Fund) (bool, error)                 { return false, nil }
func (depositTaking) Government(*Government) (bool, error)     { return false, nil }
func (depositTaking) Intermediary(*Intermediary) (bool, error) { return false, nil }
