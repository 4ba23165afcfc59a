package sim

import (
	"fmt"

	"github.com/rustyeddy/solvency/actor"
	"github.com/rustyeddy/solvency/ledger"
)

// Shock writes down a fraction of asset value at the end of Cycle. It hits
// either one Contract or every asset of Kind held by Actor.
type Shock struct {
	Cycle     int
	Contract  *ledger.Contract
	Actor     actor.Actor
	Kind      ledger.Kind
	WriteDown float64
}

func (s Shock) targets() []*ledger.Contract {
	if s.Contract != nil {
		if s.Contract.IsTerminated() {
			return nil
		}
		return []*ledger.Contract{s.Contract}
	}
	if s.Actor == nil {
		return nil
	}
	return s.Actor.Sheet().AssetsOf(s.Kind)
}

// apply returns the total value written off.
func (s Shock) apply() float64 {
	var lost float64
	for _, c := range s.targets() {
		lost += c.WriteDown(s.WriteDown)
	}
	return lost
}

func (s Shock) String() string {
	if s.Contract != nil {
		return fmt.Sprintf("%s %s %.0f%%", s.Contract.Kind(), s.Contract.ID(), s.WriteDown*100)
	}
	name := "-"
	if s.Actor != nil {
		name = s.Actor.Name()
	}
	return fmt.Sprintf("%s/%s %.0f%%", name, s.Kind, s.WriteDown*100)
}
