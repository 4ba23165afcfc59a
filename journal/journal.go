package journal

import "time"

// Resolution outcomes.
const (
	OutcomeResolved = "resolved"
	OutcomeFatal    = "fatal"
)

// ResolutionRecord is one bankruptcy handled by the resolution policy.
type ResolutionRecord struct {
	ID           string
	RunID        string
	Cycle        int
	Time         time.Time
	Actor        string
	Kind         string
	Handler      string
	Outcome      string
	EquityBefore float64
	EquityAfter  float64
	Detail       string
}

// EquitySnapshot is one actor's balance sheet at the end of a cycle.
type EquitySnapshot struct {
	RunID       string
	Cycle       int
	Time        time.Time
	Actor       string
	Kind        string
	Assets      float64
	Liabilities float64
	Equity      float64
	CAR         float64
	Bankrupt    bool
}

type Journal interface {
	RecordResolution(ResolutionRecord) error
	RecordEquity(EquitySnapshot) error
	Close() error
}

// Discard drops every record.
type Discard struct{}

func (Discard) RecordResolution(ResolutionRecord) error { return nil }
func (Discard) RecordEquity(EquitySnapshot) error       { return nil }
func (Discard) Close() error                            { return nil }
