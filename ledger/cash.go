package ledger

import (
	"fmt"
	"time"
)

// AddCash credits amount to the party's cash reserve, opening a cash
// contract if it holds none.
func AddCash(p Party, amount float64) error {
	if amount < 0 {
		return fmt.Errorf("add cash %.6f to %s: %w", amount, p.Name(), ErrNegativeAmount)
	}
	if c := cashContract(p); c != nil {
		c.SetValue(c.value + amount)
		return nil
	}
	_, err := Open(Terms{Kind: Cash, Holder: p, Value: amount, At: time.Time{}})
	return err
}

// TakeCash debits amount from the party's cash reserve. Nothing changes when
// the reserve is too small.
func TakeCash(p Party, amount float64) error {
	if amount < 0 {
		return fmt.Errorf("take cash %.6f from %s: %w", amount, p.Name(), ErrNegativeAmount)
	}
	reserve := p.Sheet().CashReserve()
	if amount > reserve+Tolerance {
		return fmt.Errorf("take cash %.6f from %s (reserve %.6f): %w",
			amount, p.Name(), reserve, ErrInsufficientFunds)
	}

	remaining := amount
	for _, c := range p.Sheet().AssetsOf(Cash) {
		if remaining <= 0 {
			break
		}
		take := min(c.value, remaining)
		c.SetValue(c.value - take)
		remaining -= take
	}
	return nil
}

// Transfer settles amount in cash from one party to another. It either moves
// the full amount or fails with ErrInsufficientFunds and changes nothing.
func Transfer(from, to Party, amount float64) error {
	if from == nil || to == nil {
		return ErrMissingParty
	}
	if err := TakeCash(from, amount); err != nil {
		return fmt.Errorf("transfer to %s: %w", to.Name(), err)
	}
	if err := AddCash(to, amount); err != nil {
		// AddCash only fails on a negative amount, which TakeCash rejected.
		invariant("credit %s after debiting %s: %v", to.Name(), from.Name(), err)
	}
	return nil
}

// TransferUpTo settles as much of amount as the payer's cash reserve covers
// and returns what was moved. Pro rata payouts use it so rounding on the
// last claim never fails part-way through a distribution.
func TransferUpTo(from, to Party, amount float64) float64 {
	pay := min(max(amount, 0), max(from.Sheet().CashReserve(), 0))
	if pay <= 0 {
		return 0
	}
	if err := Transfer(from, to, pay); err != nil {
		invariant("settle %.6f from %s: %v", pay, from.Name(), err)
	}
	return pay
}

func cashContract(p Party) *Contract {
	for _, c := range p.Sheet().assets {
		if c.kind == Cash {
			return c
		}
	}
	return nil
}
