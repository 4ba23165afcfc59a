package resolution

import (
	"fmt"
	"math/rand"

	"github.com/rustyeddy/solvency/actor"
	"github.com/rustyeddy/solvency/ledger"
)

// Liquidate winds a bank down: secured loans first, remaining assets to the
// bad bank, cash pro rata to depositors and lenders.
type Liquidate struct {
	d Deps
}

func NewLiquidate(d Deps) *Liquidate {
	if d.RNG == nil {
		d.RNG = rand.New(rand.NewSource(1))
	}
	return &Liquidate{d: d}
}

func (l *Liquidate) Name() string { return "liquidate" }

func (l *Liquidate) Resolve(a actor.Actor) error {
	bank, err := actor.Dispatch[*actor.Bank](a, bankView{actor.Raising[*actor.Bank]{Op: l.Name()}})
	if err != nil {
		return err
	}
	if bank.CentralBank() == nil || bank.BadBank() == nil {
		l.d.logger().Printf("%s %s: no central bank or bad bank, nothing to do", l.Name(), a.Name())
		return nil
	}
	return l.resolve(a, bank)
}

// bankView exposes the bank roles of both bank kinds.
type bankView struct {
	actor.Raising[*actor.Bank]
}

func (bankView) Bank(b *actor.Bank) (*actor.Bank, error)                     { return b, nil }
func (bankView) CommercialBank(b *actor.CommercialBank) (*actor.Bank, error) { return &b.Bank, nil }

func (l *Liquidate) resolve(a actor.Actor, bank *actor.Bank) error {
	name := a.Name()
	sheet := a.Sheet()
	bad := bank.BadBank()
	log := l.d.logger()

	if err := l.unwindRepos(a); err != nil {
		return err
	}

	for _, c := range sheet.Assets() {
		switch c.Kind() {
		case ledger.Cash, ledger.Stock:
			continue
		}
		c.Release()
		if err := c.TransferTo(bad); err != nil {
			return fmt.Errorf("%s %s: %w", l.Name(), name, err)
		}
	}
	if l.d.Shares != nil {
		if _, err := l.d.Shares.TransferAll(a, bad); err != nil {
			return fmt.Errorf("%s %s: %w", l.Name(), name, err)
		}
	}

	var survivors []actor.Actor
	if l.d.Banks != nil {
		for _, b := range l.d.Banks.Banks() {
			if b != a && actor.DepositTaking(b) && !b.IsBankrupt() {
				survivors = append(survivors, b)
			}
		}
	}
	if len(survivors) < 2 {
		return &FatalError{
			Actor: name,
			Err:   ErrSystemCollapse,
			Last:  fmt.Errorf("%d solvent banks remain", len(survivors)),
		}
	}

	assetValue := max(sheet.CashReserve(), 0)
	deposits := sheet.LiabilitiesOf(ledger.Deposit)
	loans := sheet.LiabilitiesOf(ledger.Loan, ledger.RepoLoan, ledger.InterbankLoan)
	var total float64
	for _, c := range deposits {
		total += c.Value()
	}
	for _, c := range loans {
		total += c.Value()
	}

	// Past the survivor check nothing may fail: payouts are capped at the
	// cash left, so the last claim absorbs any rounding.
	var paid float64
	if total > 0 {
		for _, dep := range deposits {
			to := survivors[l.d.RNG.Intn(len(survivors))]
			share := ledger.TransferUpTo(a, to, assetValue*dep.Value()/total)
			paid += share
			dep.SetValue(share)
			if err := dep.Reassign(to); err != nil {
				panic(&ledger.InvariantError{Msg: fmt.Sprintf("%s %s: reassign deposit: %v", l.Name(), name, err)})
			}
		}
		for _, loan := range loans {
			paid += ledger.TransferUpTo(a, loan.Holder(), assetValue*loan.Value()/total)
			loan.Terminate()
		}
	}

	if l.d.Shares != nil {
		if err := l.d.Shares.SetPrice(name, 0); err != nil {
			panic(&ledger.InvariantError{Msg: fmt.Sprintf("%s %s: write off shares: %v", l.Name(), name, err)})
		}
	}
	sheet.MarkLiquidated()
	a.DeregisterMarkets()
	a.CancelOrders()

	log.Printf("liquidate %s: distributed %.6f of %.6f to %d deposits and %d loans",
		name, paid, assetValue, len(deposits), len(loans))
	return nil
}

// unwindRepos settles every repo loan the bank owes: pledged collateral goes
// to the lender until the debt is covered, any shortfall is paid in cash as
// far as possible, and the loan is closed.
func (l *Liquidate) unwindRepos(a actor.Actor) error {
	sheet := a.Sheet()
	for _, repo := range sheet.LiabilitiesOf(ledger.RepoLoan) {
		lender := repo.Holder()
		owed := repo.Value()
		for _, c := range sheet.Assets() {
			if owed <= ledger.Tolerance {
				break
			}
			if c.PledgedTo() != repo {
				continue
			}
			v := c.Value()
			if err := l.seize(a, c, lender); err != nil {
				return fmt.Errorf("%s %s: seize collateral: %w", l.Name(), a.Name(), err)
			}
			owed -= v
		}
		if owed > ledger.Tolerance {
			pay := min(owed, max(sheet.CashReserve(), 0))
			if err := ledger.Transfer(a, lender, pay); err != nil {
				return fmt.Errorf("%s %s: repo shortfall: %w", l.Name(), a.Name(), err)
			}
		}
		for _, c := range sheet.Assets() {
			if c.PledgedTo() == repo {
				c.Release()
			}
		}
		repo.Terminate()
	}
	return nil
}

func (l *Liquidate) seize(a actor.Actor, c *ledger.Contract, lender ledger.Party) error {
	c.Release()
	if c.Kind() != ledger.Stock {
		return c.TransferTo(lender)
	}
	to, ok := asActor(lender)
	if !ok || l.d.Shares == nil {
		return fmt.Errorf("cannot move stock %s to %s", c.Instrument(), lender.Name())
	}
	return l.d.Shares.Transfer(c.Instrument(), a, to, l.d.Shares.QuantityHeld(c.Instrument(), a))
}
