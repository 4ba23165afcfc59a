package resolution

import (
	"github.com/rustyeddy/solvency/actor"
	"github.com/rustyeddy/solvency/ledger"
)

// Bailout recapitalises a share-issuing bank with government cash in
// exchange for all of its shares.
type Bailout struct {
	d Deps
}

func NewBailout(d Deps) *Bailout { return &Bailout{d: d} }

func (b *Bailout) Name() string { return "bailout" }

func (b *Bailout) Resolve(a actor.Actor) error {
	_, err := actor.Dispatch[struct{}](a, bailoutOp{
		Raising: actor.Raising[struct{}]{Op: b.Name()},
		b:       b,
	})
	return err
}

type bailoutOp struct {
	actor.Raising[struct{}]
	b *Bailout
}

func (op bailoutOp) CommercialBank(bank *actor.CommercialBank) (struct{}, error) {
	return struct{}{}, op.b.resolve(bank)
}

func (b *Bailout) resolve(bank *actor.CommercialBank) error {
	name := bank.Name()
	log := b.d.logger()
	gov := b.d.Government
	if gov == nil {
		return ErrNotApplicable
	}

	if n := b.d.Shares.TerminateSelfHeldShares(name); n > 0 {
		log.Printf("bailout %s: cancelled %.6f self-held shares", name, n)
	}

	sum := b.d.Calc.Target(bank)
	if sum <= 0 {
		log.Printf("bailout %s: resolution amount %.6f, nothing to do", name, sum)
		return nil
	}

	granted, err := gov.Bailout(sum)
	if err != nil {
		return escalate(b.Name(), name, err, "government cannot fund %.6f", sum)
	}
	if err := ledger.AddCash(bank, granted); err != nil {
		return err
	}

	count := b.d.Shares.SharesOutstanding(name)
	if count == 0 {
		log.Printf("bailout %s: no shares outstanding, creating 1 share", name)
		count = 1
	}
	price := bank.Sheet().Equity() / count
	if err := rebuildShares(b.d, name, []allotment{{to: gov, frac: 1}}, count, price); err != nil {
		return err
	}

	log.Printf("bailout %s: injected %.6f from %s, price %.6f", name, granted, gov.Name(), price)
	return nil
}
