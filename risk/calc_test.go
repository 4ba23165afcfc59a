package risk

import (
	"math"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/rustyeddy/solvency/actor"
	"github.com/rustyeddy/solvency/ledger"
)

func book(t *testing.T, kind ledger.Kind, holder, obligor ledger.Party, value float64) *ledger.Contract {
	t.Helper()
	terms := ledger.Terms{Kind: kind, Holder: holder, Value: value}
	if obligor != nil {
		terms.Obligor = obligor
	}
	c, err := ledger.Open(terms)
	require.NoError(t, err)
	return c
}

func TestWeightByCategory(t *testing.T) {
	t.Parallel()

	w := DefaultWeights()
	bank := actor.NewBank("bank")
	other := actor.NewBank("other")

	tests := []struct {
		name    string
		kind    ledger.Kind
		obligor ledger.Party
		want    float64
	}{
		{"cash", ledger.Cash, nil, 0},
		{"gilt", ledger.Gilt, actor.NewGovernment("gov"), 0},
		{"mortgage", ledger.Loan, actor.NewHousehold("h"), 0.5},
		{"commercial", ledger.Loan, actor.NewFirm("f"), 1.0},
		{"sovereign loan", ledger.Loan, actor.NewGovernment("g"), 0},
		{"repo", ledger.RepoLoan, other, 0.2},
		{"interbank", ledger.InterbankLoan, other, 0.2},
		{"other loan", ledger.Loan, actor.NewFund("fund"), 1.0},
		{"equity", ledger.Stock, nil, 3.0},
		{"deposit", ledger.Deposit, other, 1.0},
		{"mortgage via repo kind", ledger.RepoLoan, actor.NewHousehold("h2"), 0.5},
	}
	for _, tt := range tests {
		c := book(t, tt.kind, bank, tt.obligor, 10)
		assert.InDelta(t, tt.want, w.Weight(c), 1e-12, tt.name)
	}
}

func TestRWA(t *testing.T) {
	t.Parallel()

	bank := actor.NewBank("bank")
	require.NoError(t, ledger.AddCash(bank, 500))
	book(t, ledger.Loan, bank, actor.NewHousehold("h"), 200)
	book(t, ledger.Loan, bank, actor.NewFirm("f"), 100)
	book(t, ledger.Stock, bank, nil, 10)

	// 200*0.5 + 100*1 + 10*3
	assert.InDelta(t, 230, RWA(bank, DefaultWeights()), 1e-9)
}

func TestCARBoundaries(t *testing.T) {
	t.Parallel()

	assert.True(t, math.IsInf(CAR(10, 0), 1))
	assert.True(t, math.IsInf(CAR(-10, 0), -1))
	assert.True(t, math.IsNaN(CAR(0, 0)))
	assert.InDelta(t, 0.05, CAR(100, 2000), 1e-12)
}

func TestRequiredEquity(t *testing.T) {
	t.Parallel()

	assert.InDelta(t, 160, RequiredEquity(0.08, 2000), 1e-9)
	assert.InDelta(t, 1, RequiredEquity(0.08, 0), 1e-12)
	assert.InDelta(t, 60, ResolutionTarget(0.08, 2000, 100), 1e-9)
	assert.InDelta(t, -40, ResolutionTarget(0.08, 2000, 200), 1e-9)
	assert.InDelta(t, 6, ResolutionTarget(0.08, 0, -5), 1e-9)
}

// A bank with equity 100 and RWA 2000 is 60 short of an 8% target.
func TestCalculatorTarget(t *testing.T) {
	t.Parallel()

	bank := actor.NewCommercialBank("bank")
	depositor := actor.NewHousehold("h")
	book(t, ledger.Loan, bank, actor.NewFirm("f"), 2000)
	book(t, ledger.Deposit, depositor, bank, 1900)

	c := NewCalculator()
	assert.InDelta(t, 2000, c.RWA(bank), 1e-9)
	assert.InDelta(t, 0.05, c.CAR(bank), 1e-12)
	assert.InDelta(t, 60, c.Target(bank), 1e-9)
}

func TestWeightsValidate(t *testing.T) {
	t.Parallel()

	require.NoError(t, DefaultWeights().Validate())
	w := DefaultWeights()
	w.Repo = -0.1
	assert.ErrorContains(t, w.Validate(), "weight repo must be non-negative")
}

func TestEvaluate(t *testing.T) {
	t.Parallel()

	c := NewCalculator()

	healthy := actor.NewBank("healthy")
	require.NoError(t, ledger.AddCash(healthy, 100))
	d := Evaluate(c, healthy)
	assert.True(t, d.Healthy)
	assert.Empty(t, d.Violations)

	weak := actor.NewBank("weak")
	book(t, ledger.Loan, weak, actor.NewFirm("f"), 1000)
	book(t, ledger.Deposit, actor.NewHousehold("h"), weak, 1010)
	d = Evaluate(c, weak)
	assert.False(t, d.Healthy)
	require.Len(t, d.Violations, 2)
	assert.Equal(t, "NEGATIVE_EQUITY", d.Violations[0].Code)
	assert.Equal(t, "CAR_BELOW_TARGET", d.Violations[1].Code)
	assert.InDelta(t, 90, d.Target, 1e-9)

	weak.Sheet().MarkLiquidated()
	d = Evaluate(c, weak)
	require.Len(t, d.Violations, 1)
	assert.Equal(t, "LIQUIDATED", d.Violations[0].Code)
}
