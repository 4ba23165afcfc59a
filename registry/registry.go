// Package registry tracks share issuance, ownership and price per issuer.
// Each position is backed by a stock contract on the holder's balance sheet
// whose value is kept at quantity × price.
package registry

import (
	"errors"
	"fmt"
	"sync"
	"time"

	"github.com/rustyeddy/solvency/actor"
	"github.com/rustyeddy/solvency/ledger"
)

var (
	ErrUnknownIssuer      = errors.New("unknown issuer")
	ErrInsufficientShares = errors.New("insufficient shares")
	ErrNegativeQuantity   = errors.New("negative share quantity")
)

// Holding is one holder's position in an issuer.
type Holding struct {
	Holder   actor.Actor
	Quantity float64
	Value    float64
}

// Allocation is a quantity of new shares for one holder.
type Allocation struct {
	Holder   actor.Actor
	Quantity float64
}

type position struct {
	holder actor.Actor
	qty    float64
	stock  *ledger.Contract
}

type issue struct {
	price     float64
	positions []*position
}

type Registry struct {
	mu     sync.RWMutex
	issues map[string]*issue
	clock  func() time.Time
}

func New() *Registry {
	return &Registry{
		issues: make(map[string]*issue),
		clock:  time.Now,
	}
}

// SetClock overrides the creation time stamped on new stock contracts.
func (r *Registry) SetClock(now func() time.Time) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.clock = now
}

// Issuers returns every issuer the registry knows about.
func (r *Registry) Issuers() []string {
	r.mu.RLock()
	defer r.mu.RUnlock()
	out := make([]string, 0, len(r.issues))
	for name := range r.issues {
		out = append(out, name)
	}
	return out
}

func (r *Registry) PriceOf(issuer string) float64 {
	r.mu.RLock()
	defer r.mu.RUnlock()
	if is, ok := r.issues[issuer]; ok {
		return is.price
	}
	return 0
}

// SetPrice sets the price per share and revalues every holding.
func (r *Registry) SetPrice(issuer string, price float64) error {
	if price < 0 {
		return fmt.Errorf("set price %s %.6f: %w", issuer, price, ledger.ErrNegativeAmount)
	}
	r.mu.Lock()
	defer r.mu.Unlock()
	is := r.issueLocked(issuer)
	is.price = price
	for _, p := range is.positions {
		p.stock.SetValue(p.qty * price)
	}
	return nil
}

func (r *Registry) SharesOutstanding(issuer string) float64 {
	r.mu.RLock()
	defer r.mu.RUnlock()
	is, ok := r.issues[issuer]
	if !ok {
		return 0
	}
	var n float64
	for _, p := range is.positions {
		n += p.qty
	}
	return n
}

// Holdings lists positions in issue order.
func (r *Registry) Holdings(issuer string) []Holding {
	r.mu.RLock()
	defer r.mu.RUnlock()
	is, ok := r.issues[issuer]
	if !ok {
		return nil
	}
	out := make([]Holding, 0, len(is.positions))
	for _, p := range is.positions {
		out = append(out, Holding{Holder: p.holder, Quantity: p.qty, Value: p.stock.Value()})
	}
	return out
}

func (r *Registry) QuantityHeld(issuer string, holder actor.Actor) float64 {
	r.mu.RLock()
	defer r.mu.RUnlock()
	if p := r.findLocked(issuer, holder); p != nil {
		return p.qty
	}
	return 0
}

func (r *Registry) ValueHeld(issuer string, holder actor.Actor) float64 {
	r.mu.RLock()
	defer r.mu.RUnlock()
	if p := r.findLocked(issuer, holder); p != nil {
		return p.stock.Value()
	}
	return 0
}

// IssueShares creates qty new shares of issuer for holder at the current
// price.
func (r *Registry) IssueShares(issuer string, holder actor.Actor, qty float64) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.issueSharesLocked(r.issueLocked(issuer), issuer, holder, qty)
}

// Transfer moves qty shares between holders without payment.
func (r *Registry) Transfer(issuer string, from, to actor.Actor, qty float64) error {
	if qty < 0 {
		return fmt.Errorf("transfer %s: %w", issuer, ErrNegativeQuantity)
	}
	r.mu.Lock()
	defer r.mu.Unlock()

	is, ok := r.issues[issuer]
	if !ok {
		return fmt.Errorf("transfer %s: %w", issuer, ErrUnknownIssuer)
	}
	src := r.findLocked(issuer, from)
	if src == nil || src.qty+ledger.Tolerance < qty {
		held := 0.0
		if src != nil {
			held = src.qty
		}
		return fmt.Errorf("transfer %.6f %s from %s (holds %.6f): %w",
			qty, issuer, from.Name(), held, ErrInsufficientShares)
	}
	if qty == 0 || from == to {
		return nil
	}
	src.qty = max(src.qty-qty, 0)
	src.stock.SetValue(src.qty * is.price)
	if src.qty <= ledger.Tolerance {
		r.dropLocked(is, src)
	}
	return r.issueSharesLocked(is, issuer, to, qty)
}

// TransferAll moves every position held by from, in any issuer, to to. It
// returns the value moved.
func (r *Registry) TransferAll(from, to actor.Actor) (float64, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	var moved float64
	for issuer, is := range r.issues {
		src := r.findLocked(issuer, from)
		if src == nil || from == to {
			continue
		}
		qty := src.qty
		moved += src.stock.Value()
		r.dropLocked(is, src)
		if err := r.issueSharesLocked(is, issuer, to, qty); err != nil {
			return moved, err
		}
	}
	return moved, nil
}

// EraseAndReplace terminates every existing share of issuer without
// compensation, sets the new price and issues the allocations. Other readers
// never observe the intermediate state.
func (r *Registry) EraseAndReplace(issuer string, allocs []Allocation, price float64) error {
	if price < 0 {
		return fmt.Errorf("erase and replace %s: price %.6f: %w", issuer, price, ledger.ErrNegativeAmount)
	}
	for _, a := range allocs {
		if a.Quantity < 0 {
			return fmt.Errorf("erase and replace %s: %w", issuer, ErrNegativeQuantity)
		}
	}

	r.mu.Lock()
	defer r.mu.Unlock()

	is := r.issueLocked(issuer)
	for _, p := range is.positions {
		p.stock.Terminate()
	}
	is.positions = nil
	is.price = price
	for _, a := range allocs {
		if err := r.issueSharesLocked(is, issuer, a.Holder, a.Quantity); err != nil {
			return err
		}
	}
	return nil
}

// TerminateSelfHeldShares cancels, uncompensated, any shares the issuer
// holds in itself and returns the quantity cancelled.
func (r *Registry) TerminateSelfHeldShares(issuer string) float64 {
	r.mu.Lock()
	defer r.mu.Unlock()

	is, ok := r.issues[issuer]
	if !ok {
		return 0
	}
	var n float64
	kept := is.positions[:0]
	for _, p := range is.positions {
		if p.holder.Name() == issuer {
			n += p.qty
			p.stock.Terminate()
			continue
		}
		kept = append(kept, p)
	}
	is.positions = kept
	return n
}

func (r *Registry) issueLocked(issuer string) *issue {
	is, ok := r.issues[issuer]
	if !ok {
		is = &issue{}
		r.issues[issuer] = is
	}
	return is
}

func (r *Registry) findLocked(issuer string, holder actor.Actor) *position {
	is, ok := r.issues[issuer]
	if !ok {
		return nil
	}
	for _, p := range is.positions {
		if p.holder == holder {
			return p
		}
	}
	return nil
}

func (r *Registry) dropLocked(is *issue, p *position) {
	for i, q := range is.positions {
		if q == p {
			is.positions = append(is.positions[:i], is.positions[i+1:]...)
			break
		}
	}
	p.stock.Terminate()
}

func (r *Registry) issueSharesLocked(is *issue, issuer string, holder actor.Actor, qty float64) error {
	if holder == nil {
		return fmt.Errorf("issue %s: %w", issuer, ledger.ErrMissingParty)
	}
	if qty < 0 {
		return fmt.Errorf("issue %s to %s: %w", issuer, holder.Name(), ErrNegativeQuantity)
	}
	if qty == 0 {
		return nil
	}
	if p := r.findLocked(issuer, holder); p != nil {
		p.qty += qty
		p.stock.SetValue(p.qty * is.price)
		return nil
	}
	stock, err := ledger.Open(ledger.Terms{
		Kind:       ledger.Stock,
		Holder:     holder,
		Value:      qty * is.price,
		Instrument: issuer,
		At:         r.clock(),
	})
	if err != nil {
		return fmt.Errorf("issue %s to %s: %w", issuer, holder.Name(), err)
	}
	is.positions = append(is.positions, &position{holder: holder, qty: qty, stock: stock})
	return nil
}
