package registry

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/rustyeddy/solvency/actor"
	"github.com/rustyeddy/solvency/ledger"
)

func stockValue(a actor.Actor, issuer string) float64 {
	var v float64
	for _, c := range a.Sheet().AssetsOf(ledger.Stock) {
		if c.Instrument() == issuer {
			v += c.Value()
		}
	}
	return v
}

func TestIssueAndPrice(t *testing.T) {
	t.Parallel()

	r := New()
	h := actor.NewHousehold("alice")
	f := actor.NewFund("fund")

	require.NoError(t, r.SetPrice("bank", 2))
	require.NoError(t, r.IssueShares("bank", h, 10))
	require.NoError(t, r.IssueShares("bank", f, 5))
	require.NoError(t, r.IssueShares("bank", h, 5))

	assert.InDelta(t, 20, r.SharesOutstanding("bank"), 1e-9)
	assert.InDelta(t, 15, r.QuantityHeld("bank", h), 1e-9)
	assert.InDelta(t, 30, r.ValueHeld("bank", h), 1e-9)
	assert.InDelta(t, 30, stockValue(h, "bank"), 1e-9)
	assert.Len(t, h.Sheet().AssetsOf(ledger.Stock), 1)

	require.NoError(t, r.SetPrice("bank", 3))
	assert.InDelta(t, 45, stockValue(h, "bank"), 1e-9)
	assert.InDelta(t, 15, stockValue(f, "bank"), 1e-9)

	hs := r.Holdings("bank")
	require.Len(t, hs, 2)
	assert.Same(t, actor.Actor(h), hs[0].Holder)
	assert.InDelta(t, 45, hs[0].Value, 1e-9)
}

func TestRejectsNegatives(t *testing.T) {
	t.Parallel()

	r := New()
	h := actor.NewHousehold("alice")
	assert.ErrorIs(t, r.SetPrice("bank", -1), ledger.ErrNegativeAmount)
	assert.ErrorIs(t, r.IssueShares("bank", h, -1), ErrNegativeQuantity)
	assert.ErrorIs(t, r.EraseAndReplace("bank", []Allocation{{Holder: h, Quantity: -2}}, 1), ErrNegativeQuantity)
	assert.Zero(t, r.SharesOutstanding("bank"))
	assert.Zero(t, r.PriceOf("nobody"))
}

func TestTransfer(t *testing.T) {
	t.Parallel()

	r := New()
	a := actor.NewFund("a")
	b := actor.NewFund("b")
	require.NoError(t, r.SetPrice("firm", 1))
	require.NoError(t, r.IssueShares("firm", a, 10))

	require.NoError(t, r.Transfer("firm", a, b, 4))
	assert.InDelta(t, 6, r.QuantityHeld("firm", a), 1e-9)
	assert.InDelta(t, 4, r.QuantityHeld("firm", b), 1e-9)

	err := r.Transfer("firm", a, b, 7)
	require.ErrorIs(t, err, ErrInsufficientShares)
	assert.InDelta(t, 6, r.QuantityHeld("firm", a), 1e-9)

	require.NoError(t, r.Transfer("firm", a, b, 6))
	assert.Zero(t, r.QuantityHeld("firm", a))
	assert.Empty(t, a.Sheet().AssetsOf(ledger.Stock))
	assert.InDelta(t, 10, r.SharesOutstanding("firm"), 1e-9)

	assert.ErrorIs(t, r.Transfer("ghost", a, b, 1), ErrUnknownIssuer)
}

func TestTransferAll(t *testing.T) {
	t.Parallel()

	r := New()
	bank := actor.NewBank("bank")
	bad := actor.NewBadBank("bad")
	require.NoError(t, r.SetPrice("x", 2))
	require.NoError(t, r.SetPrice("y", 5))
	require.NoError(t, r.IssueShares("x", bank, 3))
	require.NoError(t, r.IssueShares("y", bank, 1))

	moved, err := r.TransferAll(bank, bad)
	require.NoError(t, err)
	assert.InDelta(t, 11, moved, 1e-9)
	assert.Empty(t, bank.Sheet().AssetsOf(ledger.Stock))
	assert.InDelta(t, 11, bad.Sheet().TotalAssets(), 1e-9)
}

func TestEraseAndReplace(t *testing.T) {
	t.Parallel()

	r := New()
	old := actor.NewHousehold("old")
	c1 := actor.NewFund("c1")
	c2 := actor.NewFund("c2")
	require.NoError(t, r.SetPrice("firm", 10))
	require.NoError(t, r.IssueShares("firm", old, 100))

	require.NoError(t, r.EraseAndReplace("firm", []Allocation{
		{Holder: c1, Quantity: 70},
		{Holder: c2, Quantity: 30},
	}, 0.5))

	assert.Zero(t, r.QuantityHeld("firm", old))
	assert.Zero(t, old.Sheet().TotalAssets())
	assert.InDelta(t, 100, r.SharesOutstanding("firm"), 1e-9)
	assert.InDelta(t, 0.5, r.PriceOf("firm"), 1e-9)
	assert.InDelta(t, 35, r.ValueHeld("firm", c1), 1e-9)
	assert.InDelta(t, 15, r.ValueHeld("firm", c2), 1e-9)
}

func TestTerminateSelfHeldShares(t *testing.T) {
	t.Parallel()

	r := New()
	bank := actor.NewCommercialBank("bank")
	h := actor.NewHousehold("h")
	require.NoError(t, r.SetPrice("bank", 1))
	require.NoError(t, r.IssueShares("bank", bank, 7))
	require.NoError(t, r.IssueShares("bank", h, 3))

	assert.InDelta(t, 7, r.TerminateSelfHeldShares("bank"), 1e-9)
	assert.InDelta(t, 3, r.SharesOutstanding("bank"), 1e-9)
	assert.Empty(t, bank.Sheet().AssetsOf(ledger.Stock))
	assert.Zero(t, r.TerminateSelfHeldShares("bank"))
	assert.Zero(t, r.TerminateSelfHeldShares("unknown"))
}
