package ledger

import (
	"fmt"
	"time"

	"github.com/rustyeddy/solvency/internal/id"
)

// Tolerance is the absolute slack allowed on contract values before a
// negative value is treated as an invariant violation.
const Tolerance = 1e-7

// Kind classifies a contract for risk weighting and resolution.
type Kind int

const (
	Cash Kind = iota
	Deposit
	Loan
	RepoLoan
	InterbankLoan
	Gilt
	Stock
	Other
)

var kindNames = map[Kind]string{
	Cash:          "cash",
	Deposit:       "deposit",
	Loan:          "loan",
	RepoLoan:      "repo_loan",
	InterbankLoan: "interbank_loan",
	Gilt:          "gilt",
	Stock:         "stock",
	Other:         "other",
}

func (k Kind) String() string {
	if s, ok := kindNames[k]; ok {
		return s
	}
	return fmt.Sprintf("kind(%d)", int(k))
}

// ParseKind is the inverse of Kind.String.
func ParseKind(s string) (Kind, error) {
	for k, name := range kindNames {
		if name == s {
			return k, nil
		}
	}
	return 0, fmt.Errorf("unknown contract kind %q", s)
}

// IsLoan reports whether the kind is one of the loan kinds.
func (k Kind) IsLoan() bool {
	return k == Loan || k == RepoLoan || k == InterbankLoan
}

// HolderOnly reports whether contracts of this kind have no liability side.
// Cash is outside money and a stock holding is a residual claim on the
// issuer's equity, so neither appears on anyone's liabilities.
func (k Kind) HolderOnly() bool {
	return k == Cash || k == Stock
}

// Party is anything that owns a balance sheet.
type Party interface {
	Name() string
	Sheet() *BalanceSheet
}

// Terms describes a contract to open.
type Terms struct {
	Kind       Kind
	Holder     Party // asset side
	Obligor    Party // liability side, nil for holder-only kinds
	Value      float64
	FaceValue  float64 // defaults to Value
	Instrument string  // issuer name for stock holdings
	At         time.Time
}

// Contract is a bilateral claim: an asset of its holder and a liability of
// its obligor. Both balance sheets reference the same *Contract.
type Contract struct {
	id         string
	kind       Kind
	instrument string
	faceValue  float64
	value      float64
	created    time.Time

	holder  Party
	obligor Party

	pledgedTo  *Contract
	terminated bool
}

// Open creates a contract and books it on both sides.
func Open(t Terms) (*Contract, error) {
	if t.Holder == nil {
		return nil, fmt.Errorf("open %s: holder: %w", t.Kind, ErrMissingParty)
	}
	if t.Kind.HolderOnly() {
		if t.Obligor != nil {
			return nil, fmt.Errorf("open %s: holder-only contract cannot have an obligor", t.Kind)
		}
	} else if t.Obligor == nil {
		return nil, fmt.Errorf("open %s: obligor: %w", t.Kind, ErrMissingParty)
	}
	if t.Value < 0 {
		return nil, fmt.Errorf("open %s: value %.6f: %w", t.Kind, t.Value, ErrNegativeAmount)
	}

	face := t.FaceValue
	if face == 0 {
		face = t.Value
	}

	c := &Contract{
		id:         id.New(),
		kind:       t.Kind,
		instrument: t.Instrument,
		faceValue:  face,
		value:      t.Value,
		created:    t.At,
		holder:     t.Holder,
		obligor:    t.Obligor,
	}

	if err := t.Holder.Sheet().AddAsset(c); err != nil {
		return nil, fmt.Errorf("open %s: %w", t.Kind, err)
	}
	if t.Obligor != nil {
		if err := t.Obligor.Sheet().AddLiability(c); err != nil {
			t.Holder.Sheet().RemoveAsset(c)
			return nil, fmt.Errorf("open %s: %w", t.Kind, err)
		}
	}
	return c, nil
}

func (c *Contract) ID() string           { return c.id }
func (c *Contract) Kind() Kind           { return c.kind }
func (c *Contract) Instrument() string   { return c.instrument }
func (c *Contract) Value() float64       { return c.value }
func (c *Contract) FaceValue() float64   { return c.faceValue }
func (c *Contract) CreatedAt() time.Time { return c.created }
func (c *Contract) Holder() Party        { return c.holder }
func (c *Contract) Obligor() Party       { return c.obligor }
func (c *Contract) IsTerminated() bool   { return c.terminated }

// SetValue changes the value seen from both sides.
func (c *Contract) SetValue(v float64) {
	c.value = checkAmount(c, "value", v)
}

func (c *Contract) SetFaceValue(v float64) {
	c.faceValue = checkAmount(c, "face value", v)
}

// WriteDown reduces the value by fraction (0..1) and returns the amount lost
// by the holder.
func (c *Contract) WriteDown(fraction float64) float64 {
	if fraction < 0 || fraction > 1+Tolerance {
		invariant("write-down fraction %.10g out of range on %s", fraction, c.id)
	}
	lost := c.value * fraction
	c.SetValue(c.value - lost)
	return lost
}

func checkAmount(c *Contract, what string, v float64) float64 {
	if c.terminated {
		invariant("%s set on terminated contract %s", what, c.id)
	}
	if v < 0 {
		if v < -Tolerance {
			invariant("negative %s %.10g on contract %s", what, v, c.id)
		}
		return 0
	}
	return v
}

// Terminate removes the contract from both balance sheets. Terminating twice
// is a no-op.
func (c *Contract) Terminate() {
	if c.terminated {
		return
	}
	if !c.holder.Sheet().RemoveAsset(c) {
		invariant("contract %s missing from holder %s", c.id, c.holder.Name())
	}
	if c.obligor != nil && !c.obligor.Sheet().RemoveLiability(c) {
		invariant("contract %s missing from obligor %s", c.id, c.obligor.Name())
	}
	c.terminated = true
	c.pledgedTo = nil
}

// TransferTo moves the asset side to a new holder.
func (c *Contract) TransferTo(p Party) error {
	if c.terminated {
		return ErrTerminated
	}
	if p == nil {
		return ErrMissingParty
	}
	if p == c.holder {
		return nil
	}
	old := c.holder
	if !old.Sheet().RemoveAsset(c) {
		invariant("contract %s missing from holder %s", c.id, old.Name())
	}
	c.holder = p
	if err := p.Sheet().AddAsset(c); err != nil {
		c.holder = old
		if rerr := old.Sheet().AddAsset(c); rerr != nil {
			invariant("restore %s to %s: %v", c.id, old.Name(), rerr)
		}
		return fmt.Errorf("transfer %s to %s: %w", c.id, p.Name(), err)
	}
	return nil
}

// Reassign moves the liability side to a new obligor.
func (c *Contract) Reassign(p Party) error {
	if c.terminated {
		return ErrTerminated
	}
	if c.obligor == nil {
		return fmt.Errorf("reassign %s: holder-only contract", c.id)
	}
	if p == nil {
		return ErrMissingParty
	}
	if p == c.obligor {
		return nil
	}
	old := c.obligor
	if !old.Sheet().RemoveLiability(c) {
		invariant("contract %s missing from obligor %s", c.id, old.Name())
	}
	c.obligor = p
	if err := p.Sheet().AddLiability(c); err != nil {
		c.obligor = old
		if rerr := old.Sheet().AddLiability(c); rerr != nil {
			invariant("restore %s to %s: %v", c.id, old.Name(), rerr)
		}
		return fmt.Errorf("reassign %s to %s: %w", c.id, p.Name(), err)
	}
	return nil
}

// Pledge marks this asset as collateral against a repo loan owed by the
// same party.
func (c *Contract) Pledge(loan *Contract) error {
	if loan == nil || loan.kind != RepoLoan {
		return fmt.Errorf("pledge %s: collateral must back a repo loan", c.id)
	}
	if loan.obligor != c.holder {
		return fmt.Errorf("pledge %s: %s does not owe loan %s", c.id, c.holder.Name(), loan.id)
	}
	c.pledgedTo = loan
	return nil
}

// PledgedTo returns the repo loan this contract secures, or nil.
func (c *Contract) PledgedTo() *Contract { return c.pledgedTo }

// Release clears any collateral pledge.
func (c *Contract) Release() { c.pledgedTo = nil }

func (c *Contract) String() string {
	obligor := "-"
	if c.obligor != nil {
		obligor = c.obligor.Name()
	}
	return fmt.Sprintf("%s[%s %s->%s value=%.6f face=%.6f]",
		c.kind, c.id, obligor, c.holder.Name(), c.value, c.faceValue)
}
