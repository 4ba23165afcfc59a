package risk

import (
	"fmt"

	"github.com/rustyeddy/solvency/ledger"
)

type Violation struct {
	Code string
	Msg  string
}

// Decision summarises the capital position of one party.
type Decision struct {
	Healthy    bool
	Violations []Violation

	Equity float64
	RWA    float64
	CAR    float64
	Target float64
}

func (d *Decision) add(code, msg string) {
	d.Violations = append(d.Violations, Violation{Code: code, Msg: msg})
	d.Healthy = false
}

// Evaluate checks a party against the calculator's capital requirements.
func Evaluate(c Calculator, p ledger.Party) Decision {
	d := Decision{Healthy: true}
	d.Equity = p.Sheet().Equity()
	d.RWA = c.RWA(p)
	d.CAR = CAR(d.Equity, d.RWA)
	d.Target = ResolutionTarget(c.CARTarget, d.RWA, d.Equity)

	if p.Sheet().IsLiquidated() {
		d.add("LIQUIDATED", "balance sheet has been liquidated")
		return d
	}
	if d.Equity < 0 {
		d.add("NEGATIVE_EQUITY", fmt.Sprintf("equity %.2f below zero", d.Equity))
	}
	if d.RWA > 0 && d.CAR < c.CARTarget {
		d.add("CAR_BELOW_TARGET",
			fmt.Sprintf("CAR %.2f%% below target %.2f%%", 100*d.CAR, 100*c.CARTarget))
	}
	return d
}
