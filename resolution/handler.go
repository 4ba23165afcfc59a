// Package resolution restores insolvent actors. Each Handler is one
// resolution algorithm; a Policy chains them in escalating order.
package resolution

import (
	"io"
	"log"

	"github.com/rustyeddy/solvency/actor"
	"github.com/rustyeddy/solvency/ledger"
	"github.com/rustyeddy/solvency/registry"
	"github.com/rustyeddy/solvency/risk"
)

// Handler is one resolution algorithm. A nil error means the actor was
// handled. Errors matching ErrNotApplicable, actor.ErrUnsupported or
// *EscalationError let the policy continue; *FatalError stops it.
type Handler interface {
	Name() string
	Resolve(a actor.Actor) error
}

// Shares is the part of the ownership registry resolution uses.
type Shares interface {
	PriceOf(issuer string) float64
	SetPrice(issuer string, price float64) error
	SharesOutstanding(issuer string) float64
	Holdings(issuer string) []registry.Holding
	QuantityHeld(issuer string, holder actor.Actor) float64
	ValueHeld(issuer string, holder actor.Actor) float64
	IssueShares(issuer string, holder actor.Actor, qty float64) error
	Transfer(issuer string, from, to actor.Actor, qty float64) error
	TransferAll(from, to actor.Actor) (float64, error)
	EraseAndReplace(issuer string, allocs []registry.Allocation, price float64) error
	TerminateSelfHeldShares(issuer string) float64
}

// ShareListener is told when an issuer's shares were erased and rebuilt so
// that markets can drop stale orders.
type ShareListener interface {
	OnSharesRebuilt(issuer string)
}

// BankDirectory lists every bank in the economy.
type BankDirectory interface {
	Banks() []actor.Actor
}

// RNG picks survivors during liquidation. *rand.Rand satisfies it.
type RNG interface {
	Intn(n int) int
}

// DefaultEpsilon is added to the bail-in sum so that the bank ends strictly
// solvent.
const DefaultEpsilon = 1e-6

// Deps carries the collaborators handlers are built from.
type Deps struct {
	Calc           risk.Calculator
	Shares         Shares
	Intermediaries actor.IntermediaryFactory
	Government     *actor.Government
	Banks          BankDirectory
	RNG            RNG
	Listener       ShareListener
	Compensation   CashCompensation
	Redistribution StockRedistribution
	Epsilon        float64
	Logger         *log.Logger
}

func (d Deps) logger() *log.Logger {
	if d.Logger == nil {
		return log.New(io.Discard, "", 0)
	}
	return d.Logger
}

func (d Deps) notify(issuer string) {
	if d.Listener != nil {
		d.Listener.OnSharesRebuilt(issuer)
	}
}

// CreditorDebt is what one creditor is owed during a single resolution.
type CreditorDebt struct {
	Creditor actor.Actor
	Amount   float64
}

// debtBook aggregates amounts per creditor in first-seen order.
type debtBook struct {
	debts []CreditorDebt
	index map[actor.Actor]int
}

func (b *debtBook) add(c actor.Actor, amount float64) {
	if b.index == nil {
		b.index = make(map[actor.Actor]int)
	}
	if i, ok := b.index[c]; ok {
		b.debts[i].Amount += amount
		return
	}
	b.index[c] = len(b.debts)
	b.debts = append(b.debts, CreditorDebt{Creditor: c, Amount: amount})
}

func (b *debtBook) total() float64 {
	var t float64
	for _, d := range b.debts {
		t += d.Amount
	}
	return t
}

func asActor(p ledger.Party) (actor.Actor, bool) {
	a, ok := p.(actor.Actor)
	return a, ok
}

// shareHolder returns who should receive shares owed to a: a itself, or a
// proxy when a cannot hold shares directly.
func shareHolder(f actor.IntermediaryFactory, a actor.Actor) actor.Actor {
	if ok, _ := actor.Dispatch[bool](a, canHoldShares{}); ok || f == nil {
		return a
	}
	return f.CreateFor(a)
}

// canHoldShares: households and the central bank hold equity through an
// intermediary.
type canHoldShares struct {
	actor.Uniform[bool]
}

func (canHoldShares) Bank(b *actor.Bank) (bool, error) { return b.Role() != actor.RoleCentral, nil }
func (canHoldShares) CommercialBank(b *actor.CommercialBank) (bool, error) {
	return b.Role() != actor.RoleCentral, nil
}
func (canHoldShares) Firm(*actor.Firm) (bool, error)                 { return true, nil }
func (canHoldShares) Household(*actor.Household) (bool, error)       { return false, nil }
func (canHoldShares) Fund(*actor.Fund) (bool, error)                 { return true, nil }
func (canHoldShares) Government(*actor.Government) (bool, error)     { return true, nil }
func (canHoldShares) Intermediary(*actor.Intermediary) (bool, error) { return true, nil }

// allotment is a fraction of an issuer's new shares owed to one party.
type allotment struct {
	to   actor.Actor
	frac float64
}

// proportional turns debts into allotments in proportion to their amounts.
func proportional(debts []CreditorDebt) []allotment {
	var total float64
	for _, d := range debts {
		total += d.Amount
	}
	out := make([]allotment, 0, len(debts))
	if total <= 0 {
		return out
	}
	for _, d := range debts {
		out = append(out, allotment{to: d.Creditor, frac: d.Amount / total})
	}
	return out
}

// rebuildShares erases every share of issuer and issues count×frac new
// shares to each allotment at price.
func rebuildShares(d Deps, issuer string, shares []allotment, count, price float64) error {
	allocs := make([]registry.Allocation, 0, len(shares))
	for _, s := range shares {
		if s.frac <= 0 {
			continue
		}
		allocs = append(allocs, registry.Allocation{
			Holder:   shareHolder(d.Intermediaries, s.to),
			Quantity: s.frac * count,
		})
	}
	if err := d.Shares.EraseAndReplace(issuer, allocs, price); err != nil {
		return err
	}
	d.notify(issuer)
	return nil
}
