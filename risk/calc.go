package risk

import (
	"github.com/rustyeddy/solvency/actor"
	"github.com/rustyeddy/solvency/ledger"
)

// DefaultCARTarget is the capital adequacy ratio resolution aims for.
const DefaultCARTarget = 0.08

// Weight returns the risk weight of a single asset.
func (w Weights) Weight(c *ledger.Contract) float64 {
	switch k := c.Kind(); {
	case k == ledger.Cash:
		return w.Cash
	case k == ledger.Gilt:
		return w.Gilt
	case k == ledger.Stock:
		return w.Equity
	case k.IsLoan():
		if v, err := actor.Dispatch[float64](c.Obligor(), borrowerWeight{
			Uniform: actor.Uniform[float64]{Op: "risk weight", Fn: func(actor.Actor) (float64, error) {
				return w.loanKind(k), nil
			}},
			w: w,
		}); err == nil {
			return v
		}
		return w.loanKind(k)
	default:
		return w.Other
	}
}

func (w Weights) loanKind(k ledger.Kind) float64 {
	switch k {
	case ledger.RepoLoan:
		return w.Repo
	case ledger.InterbankLoan:
		return w.Interbank
	default:
		return w.Other
	}
}

// borrowerWeight picks the weight by who owes the loan. Kinds not overridden
// fall back to the loan's own kind.
type borrowerWeight struct {
	actor.Uniform[float64]
	w Weights
}

func (b borrowerWeight) Household(*actor.Household) (float64, error)   { return b.w.Mortgage, nil }
func (b borrowerWeight) Firm(*actor.Firm) (float64, error)             { return b.w.Commercial, nil }
func (b borrowerWeight) Government(*actor.Government) (float64, error) { return b.w.Gilt, nil }

// RWA is the risk-weighted sum of the party's assets.
func RWA(p ledger.Party, w Weights) float64 {
	var total float64
	for _, c := range p.Sheet().Assets() {
		total += c.Value() * w.Weight(c)
	}
	return total
}

// CAR is equity over RWA. A zero RWA yields ±Inf or NaN.
func CAR(equity, rwa float64) float64 {
	return equity / rwa
}

// RequiredEquity is the equity needed to meet target t on RWA r. A zero RWA
// requires an equity of 1.
func RequiredEquity(t, r float64) float64 {
	if r == 0 {
		return 1
	}
	return t * r
}

// ResolutionTarget is how much equity must be added to reach target t. A
// result at or below zero means nothing needs to be done.
func ResolutionTarget(t, r, equity float64) float64 {
	return RequiredEquity(t, r) - equity
}

// Calculator binds a CAR target to a set of weights.
type Calculator struct {
	CARTarget float64
	Weights   Weights
}

func NewCalculator() Calculator {
	return Calculator{CARTarget: DefaultCARTarget, Weights: DefaultWeights()}
}

func (c Calculator) RWA(p ledger.Party) float64 { return RWA(p, c.Weights) }

func (c Calculator) CAR(p ledger.Party) float64 {
	return CAR(p.Sheet().Equity(), c.RWA(p))
}

// Target returns the equity the party must gain to meet the CAR target.
func (c Calculator) Target(p ledger.Party) float64 {
	return ResolutionTarget(c.CARTarget, c.RWA(p), p.Sheet().Equity())
}
