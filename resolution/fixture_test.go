package resolution

import (
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/rustyeddy/solvency/actor"
	"github.com/rustyeddy/solvency/ledger"
	"github.com/rustyeddy/solvency/registry"
	"github.com/rustyeddy/solvency/risk"
)

// world is a small economy shared by the handler tests.
type world struct {
	reg     *registry.Registry
	proxies *actor.Intermediaries
	gov     *actor.Government
	banks   []actor.Actor
	rebuilt []string
	rng     RNG
}

func newWorld() *world {
	return &world{
		reg:     registry.New(),
		proxies: actor.NewIntermediaries(nil),
		gov:     actor.NewGovernment("treasury"),
		rng:     fixedRNG(0),
	}
}

func (w *world) Banks() []actor.Actor          { return w.banks }
func (w *world) OnSharesRebuilt(issuer string) { w.rebuilt = append(w.rebuilt, issuer) }

func (w *world) deps() Deps {
	return Deps{
		Calc:           risk.NewCalculator(),
		Shares:         w.reg,
		Intermediaries: w.proxies,
		Government:     w.gov,
		Banks:          w,
		RNG:            w.rng,
		Listener:       w,
	}
}

type fixedRNG int

func (r fixedRNG) Intn(n int) int { return int(r) % n }

func book(t *testing.T, kind ledger.Kind, holder, obligor ledger.Party, value float64) *ledger.Contract {
	t.Helper()
	c, err := ledger.Open(ledger.Terms{Kind: kind, Holder: holder, Obligor: obligor, Value: value})
	require.NoError(t, err)
	return c
}

func cash(t *testing.T, p ledger.Party, amount float64) {
	t.Helper()
	require.NoError(t, ledger.AddCash(p, amount))
}

func issue(t *testing.T, w *world, issuer string, holder actor.Actor, qty, price float64) {
	t.Helper()
	require.NoError(t, w.reg.SetPrice(issuer, price))
	require.NoError(t, w.reg.IssueShares(issuer, holder, qty))
}

// privateValue is the net worth of the given actors, ignoring equity
// holdings, which are claims on each other's net worth.
func privateValue(actors ...actor.Actor) float64 {
	var v float64
	for _, a := range actors {
		s := a.Sheet()
		v += s.TotalAssets() - s.TotalLiabilities()
		for _, c := range s.AssetsOf(ledger.Stock) {
			v -= c.Value()
		}
	}
	return v
}
