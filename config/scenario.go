package config

import (
	"fmt"
	"strings"

	"github.com/rustyeddy/solvency/actor"
	"github.com/rustyeddy/solvency/ledger"
)

// Scenario is the starting economy and the shocks applied to it.
type Scenario struct {
	Actors    []ActorSpec    `json:"actors" yaml:"actors"`
	Contracts []ContractSpec `json:"contracts" yaml:"contracts"`
	Shares    []ShareSpec    `json:"shares,omitempty" yaml:"shares,omitempty"`
	Pledges   []PledgeSpec   `json:"pledges,omitempty" yaml:"pledges,omitempty"`
	Shocks    []ShockSpec    `json:"shocks,omitempty" yaml:"shocks,omitempty"`
}

// ActorSpec declares one actor. Role applies to banks: "regular" (default),
// "central" or "bad_bank".
type ActorSpec struct {
	Name        string   `json:"name" yaml:"name"`
	Kind        string   `json:"kind" yaml:"kind"`
	Role        string   `json:"role,omitempty" yaml:"role,omitempty"`
	Cash        float64  `json:"cash,omitempty" yaml:"cash,omitempty"`
	Markets     []string `json:"markets,omitempty" yaml:"markets,omitempty"`
	CentralBank string   `json:"central_bank,omitempty" yaml:"central_bank,omitempty"`
	BadBank     string   `json:"bad_bank,omitempty" yaml:"bad_bank,omitempty"`
}

// ContractSpec opens one contract. Label names it for pledges and shocks.
type ContractSpec struct {
	Label     string  `json:"label,omitempty" yaml:"label,omitempty"`
	Kind      string  `json:"kind" yaml:"kind"`
	Holder    string  `json:"holder" yaml:"holder"`
	Obligor   string  `json:"obligor,omitempty" yaml:"obligor,omitempty"`
	Value     float64 `json:"value" yaml:"value"`
	FaceValue float64 `json:"face_value,omitempty" yaml:"face_value,omitempty"`
}

// ShareSpec issues shares of Issuer to Holder at Price.
type ShareSpec struct {
	Issuer   string  `json:"issuer" yaml:"issuer"`
	Holder   string  `json:"holder" yaml:"holder"`
	Quantity float64 `json:"quantity" yaml:"quantity"`
	Price    float64 `json:"price" yaml:"price"`
}

// PledgeSpec pledges the Collateral contract against the Loan repo loan.
type PledgeSpec struct {
	Collateral string `json:"collateral" yaml:"collateral"`
	Loan       string `json:"loan" yaml:"loan"`
}

// ShockSpec writes down a fraction of a contract's value before the end of
// Cycle. It targets either a labelled contract or every asset of one kind
// held by Actor.
type ShockSpec struct {
	Cycle     int     `json:"cycle" yaml:"cycle"`
	Contract  string  `json:"contract,omitempty" yaml:"contract,omitempty"`
	Actor     string  `json:"actor,omitempty" yaml:"actor,omitempty"`
	Kind      string  `json:"kind,omitempty" yaml:"kind,omitempty"`
	WriteDown float64 `json:"write_down" yaml:"write_down"`
}

// Validate checks names, kinds and references. cycles bounds shock cycles.
func (s *Scenario) Validate(cycles int) error {
	kinds := make(map[string]actor.Kind, len(s.Actors))
	for i, a := range s.Actors {
		if a.Name == "" {
			return fmt.Errorf("scenario.actors[%d].name is required", i)
		}
		if strings.HasPrefix(a.Name, actor.IntermediaryPrefix) {
			return fmt.Errorf("scenario.actors[%d].name %q is reserved for share proxies", i, a.Name)
		}
		if _, dup := kinds[a.Name]; dup {
			return fmt.Errorf("scenario.actors: duplicate name %q", a.Name)
		}
		k, err := actor.ParseKind(a.Kind)
		if err != nil {
			return fmt.Errorf("scenario.actors[%d]: %w", i, err)
		}
		if k == actor.KindIntermediary {
			return fmt.Errorf("scenario.actors[%d]: intermediaries are created on demand", i)
		}
		if a.Cash < 0 {
			return fmt.Errorf("scenario.actors[%d].cash must be non-negative", i)
		}
		switch a.Role {
		case "", "regular":
		case "central", "bad_bank":
			if k != actor.KindBank && k != actor.KindCommercialBank {
				return fmt.Errorf("scenario.actors[%d]: role %q requires a bank", i, a.Role)
			}
		default:
			return fmt.Errorf("scenario.actors[%d]: unknown role %q", i, a.Role)
		}
		kinds[a.Name] = k
	}
	for i, a := range s.Actors {
		for _, ref := range []string{a.CentralBank, a.BadBank} {
			if ref == "" {
				continue
			}
			k, ok := kinds[ref]
			if !ok || (k != actor.KindBank && k != actor.KindCommercialBank) {
				return fmt.Errorf("scenario.actors[%d]: %q is not a bank", i, ref)
			}
		}
	}

	labels := map[string]ledger.Kind{}
	for i, c := range s.Contracts {
		k, err := ledger.ParseKind(c.Kind)
		if err != nil {
			return fmt.Errorf("scenario.contracts[%d]: %w", i, err)
		}
		if k == ledger.Stock {
			return fmt.Errorf("scenario.contracts[%d]: stock is issued through shares", i)
		}
		if _, ok := kinds[c.Holder]; !ok {
			return fmt.Errorf("scenario.contracts[%d]: unknown holder %q", i, c.Holder)
		}
		if k.HolderOnly() {
			if c.Obligor != "" {
				return fmt.Errorf("scenario.contracts[%d]: %s has no obligor", i, k)
			}
		} else if _, ok := kinds[c.Obligor]; !ok {
			return fmt.Errorf("scenario.contracts[%d]: unknown obligor %q", i, c.Obligor)
		}
		if c.Value < 0 || c.FaceValue < 0 {
			return fmt.Errorf("scenario.contracts[%d]: values must be non-negative", i)
		}
		if c.Label != "" {
			if _, dup := labels[c.Label]; dup {
				return fmt.Errorf("scenario.contracts: duplicate label %q", c.Label)
			}
			labels[c.Label] = k
		}
	}

	for i, sh := range s.Shares {
		if _, ok := kinds[sh.Issuer]; !ok {
			return fmt.Errorf("scenario.shares[%d]: unknown issuer %q", i, sh.Issuer)
		}
		if _, ok := kinds[sh.Holder]; !ok {
			return fmt.Errorf("scenario.shares[%d]: unknown holder %q", i, sh.Holder)
		}
		if sh.Quantity <= 0 || sh.Price < 0 {
			return fmt.Errorf("scenario.shares[%d]: quantity must be positive and price non-negative", i)
		}
	}

	for i, p := range s.Pledges {
		if _, ok := labels[p.Collateral]; !ok {
			return fmt.Errorf("scenario.pledges[%d]: unknown collateral %q", i, p.Collateral)
		}
		if k, ok := labels[p.Loan]; !ok || k != ledger.RepoLoan {
			return fmt.Errorf("scenario.pledges[%d]: %q is not a repo loan", i, p.Loan)
		}
	}

	for i, sh := range s.Shocks {
		if sh.Cycle < 1 || sh.Cycle > cycles {
			return fmt.Errorf("scenario.shocks[%d].cycle must be between 1 and %d", i, cycles)
		}
		if sh.WriteDown < 0 || sh.WriteDown > 1 {
			return fmt.Errorf("scenario.shocks[%d].write_down must be between 0 and 1", i)
		}
		switch {
		case sh.Contract != "":
			if _, ok := labels[sh.Contract]; !ok {
				return fmt.Errorf("scenario.shocks[%d]: unknown contract %q", i, sh.Contract)
			}
		case sh.Actor != "":
			if _, ok := kinds[sh.Actor]; !ok {
				return fmt.Errorf("scenario.shocks[%d]: unknown actor %q", i, sh.Actor)
			}
			if _, err := ledger.ParseKind(sh.Kind); err != nil {
				return fmt.Errorf("scenario.shocks[%d]: %w", i, err)
			}
		default:
			return fmt.Errorf("scenario.shocks[%d] needs a contract or an actor", i)
		}
	}
	return nil
}

func demoScenario() Scenario {
	banks := func(name string, cash float64) ActorSpec {
		return ActorSpec{
			Name:        name,
			Kind:        "commercial_bank",
			Cash:        cash,
			Markets:     []string{"deposits", "loans", "stock"},
			CentralBank: "central",
			BadBank:     "badbank",
		}
	}
	return Scenario{
		Actors: []ActorSpec{
			{Name: "treasury", Kind: "government", Cash: 1000},
			{Name: "central", Kind: "bank", Role: "central"},
			{Name: "badbank", Kind: "bank", Role: "bad_bank"},
			banks("bank-a", 0),
			banks("bank-b", 500),
			banks("bank-c", 500),
			{Name: "acme", Kind: "firm", Cash: 2100, Markets: []string{"loans", "stock"}},
			{Name: "alice", Kind: "household", Markets: []string{"deposits"}},
			{Name: "bob", Kind: "household", Markets: []string{"deposits"}},
			{Name: "fund", Kind: "fund", Markets: []string{"stock"}},
		},
		Contracts: []ContractSpec{
			{Label: "a-loan", Kind: "loan", Holder: "bank-a", Obligor: "acme", Value: 2000},
			{Kind: "deposit", Holder: "alice", Obligor: "bank-a", Value: 900},
			{Kind: "loan", Holder: "fund", Obligor: "bank-a", Value: 1000},
			{Kind: "deposit", Holder: "bob", Obligor: "bank-b", Value: 400},
			{Kind: "deposit", Holder: "alice", Obligor: "bank-c", Value: 300},
		},
		Shares: []ShareSpec{
			{Issuer: "bank-a", Holder: "fund", Quantity: 100, Price: 1},
			{Issuer: "acme", Holder: "bob", Quantity: 50, Price: 2},
		},
		Shocks: []ShockSpec{
			{Cycle: 1, Contract: "a-loan", WriteDown: 0.1},
			{Cycle: 2, Actor: "acme", Kind: "cash", WriteDown: 0.95},
		},
	}
}
