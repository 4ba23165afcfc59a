package sim

import (
	"context"
	"testing"

	"github.com/rustyeddy/solvency/actor"
	"github.com/rustyeddy/solvency/config"
	"github.com/rustyeddy/solvency/ledger"
)

// reentrantListener calls back into the engine, which would deadlock if it
// were notified with the engine lock held.
type reentrantListener struct {
	e       *Engine
	issuers []string
	cycles  []int
}

func (l *reentrantListener) OnSharesRebuilt(issuer string) {
	l.issuers = append(l.issuers, issuer)
	l.cycles = append(l.cycles, l.e.Cycle())
}

func TestFromConfigBuildsDemoScenario(t *testing.T) {
	e, err := FromConfig(config.Default(), nil, nil)
	if err != nil {
		t.Fatalf("from config: %v", err)
	}

	// Ten declared actors plus bob's share proxy.
	if got := len(e.Actors()); got != 11 {
		t.Fatalf("actors: got %d want 11", got)
	}
	bob, _ := e.Actor("bob")
	proxy := e.Intermediaries().CreateFor(bob)
	if got := e.Registry().QuantityHeld("acme", proxy); got != 50 {
		t.Fatalf("bob's proxy holds %.2f acme shares, want 50", got)
	}

	a, _ := e.Actor("bank-a")
	bank, ok := a.(*actor.CommercialBank)
	if !ok {
		t.Fatalf("bank-a is %T", a)
	}
	if bank.CentralBank() == nil || bank.CentralBank().Role() != actor.RoleCentral {
		t.Fatalf("bank-a has no central bank")
	}
	if bank.BadBank() == nil || bank.BadBank().Role() != actor.RoleBadBank {
		t.Fatalf("bank-a has no bad bank")
	}
	if bank.Policy() == nil {
		t.Fatalf("bank-a has no policy")
	}
	if !approxEqual(bank.Sheet().Equity(), 100, 1e-9) {
		t.Fatalf("bank-a equity: got %.2f want 100", bank.Sheet().Equity())
	}

	h, _ := e.Actor("alice")
	if h.Policy() != nil {
		t.Fatalf("households are never resolved")
	}
	if !approxEqual(e.SystemValue(), 3100, 1e-9) {
		t.Fatalf("system value: got %.2f want 3100", e.SystemValue())
	}
}

func TestFromConfigRejectsUnknownPolicy(t *testing.T) {
	cfg := config.Default()
	cfg.Resolution.BankPolicy = []string{"bailin", "pray"}

	if _, err := FromConfig(cfg, nil, nil); err == nil {
		t.Fatalf("expected an error for an unknown handler")
	}
}

func TestDemoScenarioRun(t *testing.T) {
	cfg := config.Default()
	j := &testJournal{}
	e, err := FromConfig(cfg, j, nil)
	if err != nil {
		t.Fatalf("from config: %v", err)
	}
	l := &reentrantListener{e: e}
	e.SetShareListener(l)

	sum, err := e.Run(context.Background(), cfg.Run.Cycles)
	if err != nil {
		t.Fatalf("run: %v", err)
	}

	// Cycle 1: the loan write-down sinks bank-a, which bails in its lender.
	// Cycle 2: acme loses its cash and hands its shares to bank-a.
	// Cycle 3: bank-a bails in again, reaching its depositor.
	if len(j.resolutions) != 3 {
		t.Fatalf("resolutions: got %d want 3", len(j.resolutions))
	}
	want := []struct {
		cycle   int
		actor   string
		handler string
	}{
		{1, "bank-a", "bailin"},
		{2, "acme", "firm"},
		{3, "bank-a", "bailin"},
	}
	for i, w := range want {
		rec := j.resolutions[i]
		if rec.Cycle != w.cycle || rec.Actor != w.actor || rec.Handler != w.handler {
			t.Fatalf("resolution %d: got %d/%s/%s", i, rec.Cycle, rec.Actor, rec.Handler)
		}
		if rec.EquityAfter < 0 {
			t.Fatalf("resolution %d left equity %.2f", i, rec.EquityAfter)
		}
	}

	if len(l.issuers) != 3 || l.issuers[0] != "bank-a" || l.issuers[1] != "acme" || l.issuers[2] != "bank-a" {
		t.Fatalf("listener saw %v", l.issuers)
	}
	if l.cycles[0] != 1 || l.cycles[2] != 3 {
		t.Fatalf("listener cycles %v", l.cycles)
	}

	if sum.Cycles != 3 || sum.Resolutions != 3 || sum.Liquidations != 0 || sum.Fatal != "" {
		t.Fatalf("unexpected summary: %+v", sum)
	}
	if sum.ByHandler["bailin"] != 2 || sum.ByHandler["firm"] != 1 {
		t.Fatalf("handler counts: %v", sum.ByHandler)
	}
	// Write-downs of bilateral contracts and resolutions move value between
	// actors; only acme's lost cash leaves the system.
	if !approxEqual(sum.ValueStart, 3100, 1e-6) || !approxEqual(sum.ValueEnd, 1105, 1e-6) {
		t.Fatalf("system value: start %.4f end %.4f", sum.ValueStart, sum.ValueEnd)
	}

	// Alice's deposit loss became shares held by her proxy.
	alice, _ := e.Actor("alice")
	proxy := e.Intermediaries().CreateFor(alice)
	if e.Registry().QuantityHeld("bank-a", proxy) <= 0 {
		t.Fatalf("alice's proxy should hold bank-a shares")
	}
	fund, _ := e.Actor("fund")
	if n := len(fund.Sheet().AssetsOf(ledger.Loan)); n != 1 {
		t.Fatalf("fund loans: got %d", n)
	}
	if v := fund.Sheet().AssetsOf(ledger.Loan)[0].Value(); !approxEqual(v, 0, 1e-6) {
		t.Fatalf("fund loan should be written off, got %.6f", v)
	}

	// 11 actors in cycles 1 and 2; alice's proxy joins in cycle 3.
	if len(j.equity) != 34 {
		t.Fatalf("snapshots: got %d want 34", len(j.equity))
	}
}
