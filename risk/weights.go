package risk

import "fmt"

// Weights are the risk weights applied per asset category.
type Weights struct {
	Cash       float64 `json:"cash" yaml:"cash" env:"CASH"`
	Gilt       float64 `json:"gilt" yaml:"gilt" env:"GILT"`
	Mortgage   float64 `json:"mortgage" yaml:"mortgage" env:"MORTGAGE"`
	Commercial float64 `json:"commercial" yaml:"commercial" env:"COMMERCIAL"`
	Repo       float64 `json:"repo" yaml:"repo" env:"REPO"`
	Interbank  float64 `json:"interbank" yaml:"interbank" env:"INTERBANK"`
	Other      float64 `json:"other" yaml:"other" env:"OTHER"`
	Equity     float64 `json:"equity" yaml:"equity" env:"EQUITY"`
}

func DefaultWeights() Weights {
	return Weights{
		Cash:       0,
		Gilt:       0,
		Mortgage:   0.5,
		Commercial: 1.0,
		Repo:       0.2,
		Interbank:  0.2,
		Other:      1.0,
		Equity:     3.0,
	}
}

// Validate returns an error naming the first negative weight.
func (w Weights) Validate() error {
	for _, f := range []struct {
		name string
		v    float64
	}{
		{"cash", w.Cash},
		{"gilt", w.Gilt},
		{"mortgage", w.Mortgage},
		{"commercial", w.Commercial},
		{"repo", w.Repo},
		{"interbank", w.Interbank},
		{"other", w.Other},
		{"equity", w.Equity},
	} {
		if f.v < 0 {
			return fmt.Errorf("weight %s must be non-negative (got %g)", f.name, f.v)
		}
	}
	return nil
}
