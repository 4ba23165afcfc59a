package actor

import (
	"fmt"

	"github.com/rustyeddy/solvency/ledger"
)

// BankRole distinguishes deposit-taking banks from the special banks that
// take part in liquidation.
type BankRole int

const (
	RoleRegular BankRole = iota
	RoleCentral
	RoleBadBank
)

func (r BankRole) String() string {
	switch r {
	case RoleCentral:
		return "central"
	case RoleBadBank:
		return "bad_bank"
	default:
		return "regular"
	}
}

type Bank struct {
	Agent
	role        BankRole
	centralBank *Bank
	badBank     *Bank
}

func NewBank(name string) *Bank {
	return &Bank{Agent: newAgent(name)}
}

func NewCentralBank(name string) *Bank {
	b := NewBank(name)
	b.role = RoleCentral
	return b
}

func NewBadBank(name string) *Bank {
	b := NewBank(name)
	b.role = RoleBadBank
	return b
}

func (b *Bank) Kind() Kind              { return KindBank }
func (b *Bank) Role() BankRole          { return b.role }
func (b *Bank) CentralBank() *Bank      { return b.centralBank }
func (b *Bank) BadBank() *Bank          { return b.badBank }
func (b *Bank) SetCentralBank(cb *Bank) { b.centralBank = cb }
func (b *Bank) SetBadBank(bb *Bank)     { b.badBank = bb }

// CommercialBank is a deposit-taking bank that issues shares.
type CommercialBank struct {
	Bank
}

func NewCommercialBank(name string) *CommercialBank {
	return &CommercialBank{Bank: *NewBank(name)}
}

func (b *CommercialBank) Kind() Kind { return KindCommercialBank }

type Firm struct {
	Agent
}

func NewFirm(name string) *Firm { return &Firm{Agent: newAgent(name)} }

func (f *Firm) Kind() Kind { return KindFirm }

type Household struct {
	Agent
}

func NewHousehold(name string) *Household { return &Household{Agent: newAgent(name)} }

func (h *Household) Kind() Kind { return KindHousehold }

type Fund struct {
	Agent
}

func NewFund(name string) *Fund { return &Fund{Agent: newAgent(name)} }

func (f *Fund) Kind() Kind { return KindFund }

type Government struct {
	Agent
}

func NewGovernment(name string) *Government { return &Government{Agent: newAgent(name)} }

func (g *Government) Kind() Kind { return KindGovernment }

// CashReserveValue is the cash the government can spend on bailouts.
func (g *Government) CashReserveValue() float64 {
	return g.sheet.CashReserve()
}

// Bailout releases amount from the cash reserve and returns the sum granted.
// The reserve is untouched when it cannot cover the request.
func (g *Government) Bailout(amount float64) (float64, error) {
	if amount <= 0 {
		return 0, nil
	}
	if err := ledger.TakeCash(g, amount); err != nil {
		return 0, fmt.Errorf("bailout %.6f: %w", amount, err)
	}
	return amount, nil
}

// Intermediary holds shares on behalf of a single beneficiary that cannot
// hold them directly.
type Intermediary struct {
	Agent
	beneficiary Actor
}

// IntermediaryPrefix starts the name of every proxy.
const IntermediaryPrefix = "intermediary:"

func NewIntermediary(beneficiary Actor) *Intermediary {
	return &Intermediary{
		Agent:       newAgent(IntermediaryPrefix + beneficiary.Name()),
		beneficiary: beneficiary,
	}
}

func (i *Intermediary) Kind() Kind         { return KindIntermediary }
func (i *Intermediary) Beneficiary() Actor { return i.beneficiary }

// IntermediaryFactory returns the proxy holder for a beneficiary.
type IntermediaryFactory interface {
	CreateFor(beneficiary Actor) *Intermediary
}

// Intermediaries creates one proxy per beneficiary on demand and reuses it
// afterwards.
type Intermediaries struct {
	byName   map[string]*Intermediary
	onCreate func(*Intermediary)
}

// NewIntermediaries returns a factory. onCreate, when non-nil, is called once
// for every new proxy so the caller can register it.
func NewIntermediaries(onCreate func(*Intermediary)) *Intermediaries {
	return &Intermediaries{
		byName:   make(map[string]*Intermediary),
		onCreate: onCreate,
	}
}

func (f *Intermediaries) CreateFor(beneficiary Actor) *Intermediary {
	if im, ok := f.byName[beneficiary.Name()]; ok {
		return im
	}
	im := NewIntermediary(beneficiary)
	f.byName[beneficiary.Name()] = im
	if f.onCreate != nil {
		f.onCreate(im)
	}
	return im
}

// All returns the proxies created so far.
func (f *Intermediaries) All() []*Intermediary {
	out := make([]*Intermediary, 0, len(f.byName))
	for _, im := range f.byName {
		out = append(out, im)
	}
	return out
}
