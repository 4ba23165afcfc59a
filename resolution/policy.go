package resolution

import (
	"errors"
	"fmt"
	"strings"

	"github.com/rustyeddy/solvency/actor"
)

// Step is one handler of a policy and the rule deciding whether a failure
// lets the next handler run.
type Step struct {
	Handler  Handler
	Continue func(err error) bool
}

// Recoverable is the default continue rule: anything that is not fatal.
func Recoverable(err error) bool { return !IsFatal(err) }

// Policy is an ordered, immutable chain of resolution handlers.
type Policy struct {
	steps []Step
}

// NewPolicy chains handlers with the default continue rule.
func NewPolicy(handlers ...Handler) *Policy {
	steps := make([]Step, len(handlers))
	for i, h := range handlers {
		steps[i] = Step{Handler: h, Continue: Recoverable}
	}
	return &Policy{steps: steps}
}

// NewPolicyWithSteps builds a policy from explicit steps. A nil Continue
// uses Recoverable.
func NewPolicyWithSteps(steps ...Step) *Policy {
	out := make([]Step, len(steps))
	for i, s := range steps {
		if s.Continue == nil {
			s.Continue = Recoverable
		}
		out[i] = s
	}
	return &Policy{steps: out}
}

// Names lists handler names in order.
func (p *Policy) Names() []string {
	out := make([]string, len(p.steps))
	for i, s := range p.steps {
		out[i] = s.Handler.Name()
	}
	return out
}

func (p *Policy) String() string { return strings.Join(p.Names(), " -> ") }

// ApplyTo runs the handlers in order until one succeeds and returns its
// name. Running out of handlers is fatal.
func (p *Policy) ApplyTo(a actor.Actor) (string, error) {
	var last error
	for _, s := range p.steps {
		err := s.Handler.Resolve(a)
		if err == nil {
			return s.Handler.Name(), nil
		}
		if IsFatal(err) {
			return "", err
		}
		if !s.Continue(err) {
			return "", &FatalError{Actor: a.Name(), Err: ErrUnresolved, Last: err}
		}
		last = err
	}
	return "", &FatalError{Actor: a.Name(), Err: ErrUnresolved, Last: last}
}

var _ actor.Resolver = (*Policy)(nil)

// Handler identifiers accepted by Build.
const (
	IDBailIn    = "bailin"
	IDBailout   = "bailout"
	IDLiquidate = "liquidate"
	IDFirm      = "firm"
)

var ErrUnknownHandler = errors.New("unknown resolution handler")

// Build maps handler identifiers to handlers sharing one set of deps.
func Build(ids []string, d Deps) (*Policy, error) {
	if len(ids) == 0 {
		return nil, errors.New("resolution policy needs at least one handler")
	}
	handlers := make([]Handler, 0, len(ids))
	for _, id := range ids {
		switch strings.ToLower(strings.TrimSpace(id)) {
		case IDBailIn:
			handlers = append(handlers, NewBailIn(d))
		case IDBailout:
			handlers = append(handlers, NewBailout(d))
		case IDLiquidate:
			handlers = append(handlers, NewLiquidate(d))
		case IDFirm:
			handlers = append(handlers, NewFirmResolution(d))
		default:
			return nil, fmt.Errorf("%q: %w", id, ErrUnknownHandler)
		}
	}
	return NewPolicy(handlers...), nil
}
