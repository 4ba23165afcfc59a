// Package actor holds the economic actors that own balance sheets and the
// classifier that dispatches algorithms over their concrete kinds.
package actor

import (
	"errors"
	"fmt"
	"sort"

	"github.com/rustyeddy/solvency/internal/id"
	"github.com/rustyeddy/solvency/ledger"
)

// ErrNoPolicy is returned when a bankrupt actor has no resolution policy.
var ErrNoPolicy = errors.New("no resolution policy configured")

// Kind enumerates the concrete actor types.
type Kind int

const (
	KindBank Kind = iota
	KindCommercialBank
	KindFirm
	KindHousehold
	KindFund
	KindGovernment
	KindIntermediary
)

var kindNames = [...]string{
	KindBank:           "bank",
	KindCommercialBank: "commercial_bank",
	KindFirm:           "firm",
	KindHousehold:      "household",
	KindFund:           "fund",
	KindGovernment:     "government",
	KindIntermediary:   "intermediary",
}

func (k Kind) String() string {
	if int(k) >= 0 && int(k) < len(kindNames) {
		return kindNames[k]
	}
	return fmt.Sprintf("kind(%d)", int(k))
}

// ParseKind is the inverse of Kind.String.
func ParseKind(s string) (Kind, error) {
	for k, name := range kindNames {
		if name == s {
			return Kind(k), nil
		}
	}
	return 0, fmt.Errorf("unknown actor kind %q", s)
}

// Resolver restores an insolvent actor. It returns the name of the handler
// that succeeded.
type Resolver interface {
	ApplyTo(a Actor) (string, error)
}

// Actor is an economic entity with a balance sheet.
type Actor interface {
	ledger.Party
	ID() string
	Kind() Kind
	IsBankrupt() bool

	Markets() []string
	RegisterMarket(name string)
	DeregisterMarkets()
	Orders() []string
	PlaceOrder(orderID string)
	CancelOrders() []string

	Pending() bool
	MarkPending()
	ClearPending()

	Policy() Resolver
	SetPolicy(r Resolver)
}

// Agent carries the state every actor kind shares. Concrete kinds embed it.
type Agent struct {
	id      string
	name    string
	sheet   *ledger.BalanceSheet
	markets map[string]struct{}
	orders  []string
	pending bool
	policy  Resolver
}

func newAgent(name string) Agent {
	return Agent{
		id:      id.New(),
		name:    name,
		sheet:   ledger.NewBalanceSheet(),
		markets: make(map[string]struct{}),
	}
}

func (a *Agent) ID() string                  { return a.id }
func (a *Agent) Name() string                { return a.name }
func (a *Agent) Sheet() *ledger.BalanceSheet { return a.sheet }
func (a *Agent) IsBankrupt() bool            { return a.sheet.IsBankrupt() }

func (a *Agent) RegisterMarket(name string) { a.markets[name] = struct{}{} }

// Markets returns the registered market names, sorted.
func (a *Agent) Markets() []string {
	out := make([]string, 0, len(a.markets))
	for m := range a.markets {
		out = append(out, m)
	}
	sort.Strings(out)
	return out
}

func (a *Agent) DeregisterMarkets() {
	a.markets = make(map[string]struct{})
}

func (a *Agent) PlaceOrder(orderID string) { a.orders = append(a.orders, orderID) }
func (a *Agent) Orders() []string          { return append([]string(nil), a.orders...) }

// CancelOrders drops every outstanding order and returns their ids.
func (a *Agent) CancelOrders() []string {
	out := a.orders
	a.orders = nil
	return out
}

func (a *Agent) Pending() bool        { return a.pending }
func (a *Agent) MarkPending()         { a.pending = true }
func (a *Agent) ClearPending()        { a.pending = false }
func (a *Agent) Policy() Resolver     { return a.policy }
func (a *Agent) SetPolicy(r Resolver) { a.policy = r }

// HandleBankruptcy hands a to the resolution policy configured for it.
func HandleBankruptcy(a Actor) (string, error) {
	p := a.Policy()
	if p == nil {
		return "", fmt.Errorf("%s %s: %w", a.Kind(), a.Name(), ErrNoPolicy)
	}
	return p.ApplyTo(a)
}
