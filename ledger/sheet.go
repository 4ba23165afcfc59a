package ledger

// BalanceSheet holds one party's assets and liabilities. Contracts are added
// and removed through Contract operations so that both sides stay in step.
type BalanceSheet struct {
	assets      []*Contract
	liabilities []*Contract
	liquidated  bool
}

func NewBalanceSheet() *BalanceSheet {
	return &BalanceSheet{}
}

// AddAsset appends c to the assets. The contract must name this sheet on its
// asset side.
func (s *BalanceSheet) AddAsset(c *Contract) error {
	if c == nil {
		return ErrNilContract
	}
	if c.holder == nil || c.holder.Sheet() != s {
		return ErrForeignContract
	}
	if indexOf(s.assets, c) >= 0 {
		return ErrDuplicateContract
	}
	s.assets = append(s.assets, c)
	return nil
}

// AddLiability appends c to the liabilities. The contract must name this
// sheet on its liability side.
func (s *BalanceSheet) AddLiability(c *Contract) error {
	if c == nil {
		return ErrNilContract
	}
	if c.obligor == nil || c.obligor.Sheet() != s {
		return ErrForeignContract
	}
	if indexOf(s.liabilities, c) >= 0 {
		return ErrDuplicateContract
	}
	s.liabilities = append(s.liabilities, c)
	return nil
}

// RemoveAsset removes c by identity and reports whether it was present.
func (s *BalanceSheet) RemoveAsset(c *Contract) bool {
	var ok bool
	s.assets, ok = remove(s.assets, c)
	return ok
}

// RemoveLiability removes c by identity and reports whether it was present.
func (s *BalanceSheet) RemoveLiability(c *Contract) bool {
	var ok bool
	s.liabilities, ok = remove(s.liabilities, c)
	return ok
}

// Assets returns a snapshot of the assets. The slice is owned by the caller;
// terminating contracts while ranging over it is safe.
func (s *BalanceSheet) Assets() []*Contract {
	return append([]*Contract(nil), s.assets...)
}

// Liabilities returns a snapshot of the liabilities.
func (s *BalanceSheet) Liabilities() []*Contract {
	return append([]*Contract(nil), s.liabilities...)
}

// AssetsOf returns a snapshot of the assets matching any of kinds.
func (s *BalanceSheet) AssetsOf(kinds ...Kind) []*Contract {
	return filter(s.assets, kinds)
}

// LiabilitiesOf returns a snapshot of the liabilities matching any of kinds.
func (s *BalanceSheet) LiabilitiesOf(kinds ...Kind) []*Contract {
	return filter(s.liabilities, kinds)
}

func (s *BalanceSheet) TotalAssets() float64      { return sum(s.assets) }
func (s *BalanceSheet) TotalLiabilities() float64 { return sum(s.liabilities) }

// Equity is recomputed on every call; contract values change underneath.
func (s *BalanceSheet) Equity() float64 {
	return s.TotalAssets() - s.TotalLiabilities()
}

// CashReserve is the total value of cash held.
func (s *BalanceSheet) CashReserve() float64 {
	var total float64
	for _, c := range s.assets {
		if c.kind == Cash {
			total += c.value
		}
	}
	return total
}

func (s *BalanceSheet) IsBankrupt() bool {
	return s.liquidated || s.Equity() < 0
}

// MarkLiquidated flags the owner as terminated by liquidation.
func (s *BalanceSheet) MarkLiquidated()    { s.liquidated = true }
func (s *BalanceSheet) IsLiquidated() bool { return s.liquidated }

func indexOf(cs []*Contract, c *Contract) int {
	for i, x := range cs {
		if x == c {
			return i
		}
	}
	return -1
}

func remove(cs []*Contract, c *Contract) ([]*Contract, bool) {
	i := indexOf(cs, c)
	if i < 0 {
		return cs, false
	}
	copy(cs[i:], cs[i+1:])
	cs[len(cs)-1] = nil
	return cs[:len(cs)-1], true
}

func filter(cs []*Contract, kinds []Kind) []*Contract {
	var out []*Contract
	for _, c := range cs {
		for _, k := range kinds {
			if c.kind == k {
				out = append(out, c)
				break
			}
		}
	}
	return out
}

func sum(cs []*Contract) float64 {
	var total float64
	for _, c := range cs {
		total += c.value
	}
	return total
}
