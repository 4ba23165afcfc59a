package sim

import (
	"fmt"
	"log"
	"math/rand"

	"github.com/rustyeddy/solvency/actor"
	"github.com/rustyeddy/solvency/config"
	"github.com/rustyeddy/solvency/journal"
	"github.com/rustyeddy/solvency/ledger"
	"github.com/rustyeddy/solvency/resolution"
	"github.com/rustyeddy/solvency/risk"
)

// FromConfig builds an engine holding cfg's scenario, with resolution
// policies attached to every bank and firm. It must finish before the
// engine is shared between goroutines.
func FromConfig(cfg *config.Config, j journal.Journal, logger *log.Logger) (*Engine, error) {
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	start, err := cfg.Run.StartTime()
	if err != nil {
		return nil, fmt.Errorf("run.start: %w", err)
	}
	step, err := cfg.Run.StepDuration()
	if err != nil {
		return nil, fmt.Errorf("run.step: %w", err)
	}

	calc := risk.Calculator{CARTarget: cfg.Resolution.CARTarget, Weights: cfg.Resolution.Weights}
	e := NewEngine(calc, j, logger)
	e.SetClock(start, step)
	e.SetScenario(cfg.Run.Name)

	b := &builder{e: e, byName: map[string]actor.Actor{}, labels: map[string]*ledger.Contract{}}
	sc := cfg.Scenario
	if err := b.actors(sc.Actors); err != nil {
		return nil, err
	}
	if err := b.contracts(sc.Contracts); err != nil {
		return nil, err
	}
	if err := b.shares(sc.Shares); err != nil {
		return nil, err
	}
	if err := b.pledges(sc.Pledges); err != nil {
		return nil, err
	}
	if err := b.shocks(sc.Shocks); err != nil {
		return nil, err
	}

	deps := e.Deps(b.gov, rand.New(rand.NewSource(cfg.Run.Seed)), cfg.Resolution.BailinEpsilon)
	bankPolicy, err := resolution.Build(cfg.Resolution.BankPolicy, deps)
	if err != nil {
		return nil, fmt.Errorf("resolution.bank_policy: %w", err)
	}
	firmPolicy, err := resolution.Build(cfg.Resolution.FirmPolicy, deps)
	if err != nil {
		return nil, fmt.Errorf("resolution.firm_policy: %w", err)
	}
	for _, a := range e.Actors() {
		switch a.Kind() {
		case actor.KindBank, actor.KindCommercialBank:
			a.SetPolicy(bankPolicy)
		case actor.KindFirm:
			a.SetPolicy(firmPolicy)
		}
	}
	e.logger.Printf("scenario %q: %d actors, bank policy %s, firm policy %s",
		cfg.Run.Name, len(e.Actors()), bankPolicy, firmPolicy)
	return e, nil
}

type builder struct {
	e      *Engine
	gov    *actor.Government
	byName map[string]actor.Actor
	labels map[string]*ledger.Contract
}

func newActor(spec config.ActorSpec) (actor.Actor, error) {
	k, err := actor.ParseKind(spec.Kind)
	if err != nil {
		return nil, err
	}
	switch k {
	case actor.KindBank:
		switch spec.Role {
		case "central":
			return actor.NewCentralBank(spec.Name), nil
		case "bad_bank":
			return actor.NewBadBank(spec.Name), nil
		}
		return actor.NewBank(spec.Name), nil
	case actor.KindCommercialBank:
		return actor.NewCommercialBank(spec.Name), nil
	case actor.KindFirm:
		return actor.NewFirm(spec.Name), nil
	case actor.KindHousehold:
		return actor.NewHousehold(spec.Name), nil
	case actor.KindFund:
		return actor.NewFund(spec.Name), nil
	case actor.KindGovernment:
		return actor.NewGovernment(spec.Name), nil
	}
	return nil, fmt.Errorf("actor %s: kind %s cannot be declared", spec.Name, k)
}

// bankOf returns the embedded *Bank of either bank kind.
func bankOf(a actor.Actor) *actor.Bank {
	switch b := a.(type) {
	case *actor.CommercialBank:
		return &b.Bank
	case *actor.Bank:
		return b
	}
	return nil
}

func (b *builder) actors(specs []config.ActorSpec) error {
	for _, spec := range specs {
		a, err := newActor(spec)
		if err != nil {
			return err
		}
		if err := b.e.Add(a); err != nil {
			return err
		}
		b.byName[spec.Name] = a
		if g, ok := a.(*actor.Government); ok && b.gov == nil {
			b.gov = g
		}
		if spec.Cash > 0 {
			if err := ledger.AddCash(a, spec.Cash); err != nil {
				return err
			}
		}
		for _, m := range spec.Markets {
			a.RegisterMarket(m)
		}
	}

	// Links are resolved once every bank exists.
	for _, spec := range specs {
		if spec.CentralBank == "" && spec.BadBank == "" {
			continue
		}
		bank := bankOf(b.byName[spec.Name])
		if bank == nil {
			return fmt.Errorf("actor %s: only banks link to a central or bad bank", spec.Name)
		}
		if spec.CentralBank != "" {
			bank.SetCentralBank(bankOf(b.byName[spec.CentralBank]))
		}
		if spec.BadBank != "" {
			bank.SetBadBank(bankOf(b.byName[spec.BadBank]))
		}
	}
	return nil
}

func (b *builder) contracts(specs []config.ContractSpec) error {
	for i, spec := range specs {
		k, err := ledger.ParseKind(spec.Kind)
		if err != nil {
			return err
		}
		t := ledger.Terms{
			Kind:      k,
			Holder:    b.byName[spec.Holder],
			Value:     spec.Value,
			FaceValue: spec.FaceValue,
			At:        b.e.start,
		}
		if spec.Obligor != "" {
			t.Obligor = b.byName[spec.Obligor]
		}
		c, err := ledger.Open(t)
		if err != nil {
			return fmt.Errorf("scenario.contracts[%d]: %w", i, err)
		}
		if spec.Label != "" {
			b.labels[spec.Label] = c
		}
	}
	return nil
}

func (b *builder) shares(specs []config.ShareSpec) error {
	reg := b.e.Registry()
	for i, spec := range specs {
		holder := b.byName[spec.Holder]
		if k := holder.Kind(); k == actor.KindHousehold || isCentral(holder) {
			holder = b.e.Intermediaries().CreateFor(holder)
		}
		if err := reg.IssueShares(spec.Issuer, holder, spec.Quantity); err != nil {
			return fmt.Errorf("scenario.shares[%d]: %w", i, err)
		}
		if err := reg.SetPrice(spec.Issuer, spec.Price); err != nil {
			return fmt.Errorf("scenario.shares[%d]: %w", i, err)
		}
	}
	return nil
}

func isCentral(a actor.Actor) bool {
	bank := bankOf(a)
	return bank != nil && bank.Role() == actor.RoleCentral
}

func (b *builder) pledges(specs []config.PledgeSpec) error {
	for i, spec := range specs {
		if err := b.labels[spec.Collateral].Pledge(b.labels[spec.Loan]); err != nil {
			return fmt.Errorf("scenario.pledges[%d]: %w", i, err)
		}
	}
	return nil
}

func (b *builder) shocks(specs []config.ShockSpec) error {
	for _, spec := range specs {
		s := Shock{Cycle: spec.Cycle, WriteDown: spec.WriteDown}
		if spec.Contract != "" {
			s.Contract = b.labels[spec.Contract]
		} else {
			k, err := ledger.ParseKind(spec.Kind)
			if err != nil {
				return err
			}
			s.Actor, s.Kind = b.byName[spec.Actor], k
		}
		b.e.AddShock(s)
	}
	return nil
}
