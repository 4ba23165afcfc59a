package resolution

import (
	"github.com/rustyeddy/solvency/actor"
	"github.com/rustyeddy/solvency/ledger"
)

// BailIn converts creditor claims on a share-issuing bank into equity.
type BailIn struct {
	d Deps
}

func NewBailIn(d Deps) *BailIn {
	if d.Epsilon <= 0 {
		d.Epsilon = DefaultEpsilon
	}
	return &BailIn{d: d}
}

func (b *BailIn) Name() string { return "bailin" }

func (b *BailIn) Resolve(a actor.Actor) error {
	_, err := actor.Dispatch[struct{}](a, bailInOp{
		Raising: actor.Raising[struct{}]{Op: b.Name()},
		b:       b,
	})
	return err
}

type bailInOp struct {
	actor.Raising[struct{}]
	b *BailIn
}

func (op bailInOp) CommercialBank(bank *actor.CommercialBank) (struct{}, error) {
	return struct{}{}, op.b.resolve(bank)
}

type writeDown struct {
	c    *ledger.Contract
	prev float64
}

func (b *BailIn) resolve(bank *actor.CommercialBank) error {
	name := bank.Name()
	sheet := bank.Sheet()
	log := b.d.logger()

	// Irreversible: shares the bank holds in itself are cancelled even if the
	// bail-in then fails.
	if n := b.d.Shares.TerminateSelfHeldShares(name); n > 0 {
		log.Printf("bailin %s: cancelled %.6f self-held shares", name, n)
	}

	sum := b.d.Calc.Target(bank) + b.d.Epsilon
	if sum <= 0 {
		log.Printf("bailin %s: resolution amount %.6f, nothing to do", name, sum)
		return nil
	}

	loans := sheet.LiabilitiesOf(ledger.Loan, ledger.RepoLoan, ledger.InterbankLoan)
	var deposits []*ledger.Contract
	var L, D float64
	for _, c := range loans {
		L += c.Value()
	}
	for _, c := range sheet.LiabilitiesOf(ledger.Deposit) {
		if c.Value() > 0 {
			deposits = append(deposits, c)
			D += c.Value()
		}
	}
	if sum > L+D {
		return escalate(b.Name(), name, nil,
			"bail-in sum %.6f exceeds loan and deposit liabilities %.6f", sum, L+D)
	}
	for _, c := range append(loans, deposits...) {
		if _, ok := asActor(c.Holder()); !ok {
			return escalate(b.Name(), name, nil, "creditor %s cannot receive shares", c.Holder().Name())
		}
	}

	var propLoans, propDeposits float64
	if L > 0 {
		propLoans = min(sum/L, 1)
	}
	if D > 0 {
		propDeposits = max(sum-L, 0) / D
	}

	var (
		losses debtBook
		undo   []writeDown
	)
	apply := func(cs []*ledger.Contract, frac float64) {
		if frac <= 0 {
			return
		}
		for _, c := range cs {
			undo = append(undo, writeDown{c: c, prev: c.Value()})
			lost := c.WriteDown(min(frac, 1))
			creditor, _ := asActor(c.Holder())
			losses.add(creditor, lost)
		}
	}
	apply(loans, propLoans)
	apply(deposits, propDeposits)

	equity := sheet.Equity()
	if equity < 0 {
		for i := len(undo) - 1; i >= 0; i-- {
			undo[i].c.SetValue(undo[i].prev)
		}
		return escalate(b.Name(), name, nil, "equity %.6f still negative after write-down", equity)
	}

	count := b.d.Shares.SharesOutstanding(name)
	if count == 0 {
		log.Printf("bailin %s: no shares outstanding, creating 1 share", name)
		count = 1
	}
	price := equity / count

	shares := make([]allotment, len(losses.debts))
	for i, l := range losses.debts {
		shares[i] = allotment{to: l.Creditor, frac: l.Amount / sum}
	}
	if err := rebuildShares(b.d, name, shares, count, price); err != nil {
		return err
	}

	log.Printf("bailin %s: wrote down %.6f across %d creditors, equity %.6f, price %.6f",
		name, losses.total(), len(losses.debts), equity, price)
	return nil
}
