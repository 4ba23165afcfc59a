package resolution

import (
	"errors"
	"fmt"

	"github.com/rustyeddy/solvency/actor"
	"github.com/rustyeddy/solvency/ledger"
)

// CashCompensation decides how much cash a bankrupt firm pays its creditors.
// The returned amount must be available in the firm's cash reserve.
type CashCompensation interface {
	Compensate(firm actor.Actor, outstanding float64) (float64, error)
}

// ReserveCompensation pays creditors out of the firm's own cash.
type ReserveCompensation struct{}

func (ReserveCompensation) Compensate(firm actor.Actor, outstanding float64) (float64, error) {
	return min(max(firm.Sheet().CashReserve(), 0), outstanding), nil
}

// StockRedistribution moves existing shares of a firm to its creditors.
// It returns ErrNoRedistribution when no solution exists.
type StockRedistribution interface {
	Redistribute(firm actor.Actor, debts []CreditorDebt) error
}

// FirmResolution resolves a bankrupt firm in three tiers: cash
// compensation, stock redistribution, then a full share reissue to creditors.
type FirmResolution struct {
	d Deps
}

func NewFirmResolution(d Deps) *FirmResolution {
	if d.Compensation == nil {
		d.Compensation = ReserveCompensation{}
	}
	if d.Redistribution == nil {
		d.Redistribution = NewDebtProportionRedistribution(d.Shares, d.Intermediaries)
	}
	return &FirmResolution{d: d}
}

func (f *FirmResolution) Name() string { return "firm" }

func (f *FirmResolution) Resolve(a actor.Actor) error {
	_, err := actor.Dispatch[struct{}](a, firmOp{
		Raising: actor.Raising[struct{}]{Op: f.Name()},
		f:       f,
	})
	return err
}

type firmOp struct {
	actor.Raising[struct{}]
	f *FirmResolution
}

func (op firmOp) Firm(firm *actor.Firm) (struct{}, error) {
	return struct{}{}, op.f.resolve(firm)
}

func (f *FirmResolution) resolve(firm *actor.Firm) error {
	name := firm.Name()
	log := f.d.logger()

	if cancelled := firm.CancelOrders(); len(cancelled) > 0 {
		log.Printf("firm %s: cancelled %d orders", name, len(cancelled))
	}

	// Tier 1: close every loan and pay what cash allows.
	var book debtBook
	for _, loan := range firm.Sheet().LiabilitiesOf(ledger.Loan, ledger.RepoLoan, ledger.InterbankLoan) {
		creditor, ok := asActor(loan.Holder())
		if !ok {
			return fmt.Errorf("firm %s: creditor %s is not an actor", name, loan.Holder().Name())
		}
		book.add(creditor, loan.FaceValue())
		loan.Terminate()
	}
	outstanding := book.total()
	if outstanding <= 0 {
		log.Printf("firm %s: no debt outstanding", name)
		return nil
	}

	funds, err := f.d.Compensation.Compensate(firm, outstanding)
	if err != nil {
		return fmt.Errorf("firm %s: compensation: %w", name, err)
	}
	rationing := min(max(funds, 0)/outstanding, 1)
	remaining := make([]CreditorDebt, 0, len(book.debts))
	for _, d := range book.debts {
		pay := ledger.TransferUpTo(firm, d.Creditor, d.Amount*rationing)
		if left := d.Amount - pay; left > ledger.Tolerance {
			remaining = append(remaining, CreditorDebt{Creditor: d.Creditor, Amount: left})
		}
	}
	if len(remaining) == 0 {
		log.Printf("firm %s: debt %.6f repaid in cash", name, outstanding)
		return nil
	}

	// Tier 2: hand existing shares to creditors.
	err = f.d.Redistribution.Redistribute(firm, remaining)
	if err == nil {
		log.Printf("firm %s: shares redistributed to %d creditors", name, len(remaining))
		return nil
	}
	if !errors.Is(err, ErrNoRedistribution) {
		return fmt.Errorf("firm %s: %w", name, err)
	}

	// Tier 3: creditors become the only shareholders.
	count := f.d.Shares.SharesOutstanding(name)
	if count == 0 {
		count = 1
	}
	price := firm.Sheet().TotalAssets() / count
	if err := rebuildShares(f.d, name, proportional(remaining), count, price); err != nil {
		return fmt.Errorf("firm %s: %w", name, err)
	}
	log.Printf("firm %s: %.6f shares reissued to %d creditors at %.6f", name, count, len(remaining), price)
	return nil
}

type donor struct {
	holder actor.Actor
	qty    float64
}

// DebtProportionRedistribution moves shares from holders that are not
// creditors to the creditors, in proportion to each creditor's debt.
type DebtProportionRedistribution struct {
	shares  Shares
	proxies actor.IntermediaryFactory
}

func NewDebtProportionRedistribution(s Shares, f actor.IntermediaryFactory) *DebtProportionRedistribution {
	return &DebtProportionRedistribution{shares: s, proxies: f}
}

func (r *DebtProportionRedistribution) Redistribute(firm actor.Actor, debts []CreditorDebt) error {
	issuer := firm.Name()
	var totalDebt float64
	creditors := make(map[actor.Actor]bool, len(debts))
	for _, d := range debts {
		totalDebt += d.Amount
		creditors[d.Creditor] = true
		creditors[shareHolder(r.proxies, d.Creditor)] = true
	}
	if totalDebt <= 0 {
		return nil
	}

	var donors []donor
	var available float64
	for _, h := range r.shares.Holdings(issuer) {
		if creditors[h.Holder] {
			continue
		}
		available += h.Value
		donors = append(donors, donor{holder: h.Holder, qty: h.Quantity})
	}
	if available < totalDebt {
		return fmt.Errorf("%s: non-creditor equity %.6f below debt %.6f: %w",
			issuer, available, totalDebt, ErrNoRedistribution)
	}

	rationing := min(totalDebt/available, 1)
	for _, dn := range donors {
		give := dn.qty * rationing
		for _, d := range debts {
			qty := give * d.Amount / totalDebt
			if err := r.shares.Transfer(issuer, dn.holder, shareHolder(r.proxies, d.Creditor), qty); err != nil {
				return err
			}
		}
	}
	return nil
}
