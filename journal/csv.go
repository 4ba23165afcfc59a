package journal

import (
	"encoding/csv"
	"math"
	"os"
	"strconv"
	"time"

	"github.com/shopspring/decimal"
)

type CSVJournal struct {
	resolutions *csv.Writer
	equity      *csv.Writer
	rf, ef      *os.File
}

var (
	resolutionHeader = []string{"id", "run_id", "cycle", "time", "actor", "kind", "handler", "outcome", "equity_before", "equity_after", "detail"}
	equityHeader     = []string{"run_id", "cycle", "time", "actor", "kind", "assets", "liabilities", "equity", "car", "bankrupt"}
)

func NewCSV(resolutionsPath, equityPath string) (*CSVJournal, error) {
	rf, err := os.Create(resolutionsPath)
	if err != nil {
		return nil, err
	}
	ef, err := os.Create(equityPath)
	if err != nil {
		_ = rf.Close()
		return nil, err
	}

	rw := csv.NewWriter(rf)
	ew := csv.NewWriter(ef)

	if err := rw.Write(resolutionHeader); err != nil {
		return nil, err
	}
	if err := ew.Write(equityHeader); err != nil {
		return nil, err
	}

	rw.Flush()
	if err := rw.Error(); err != nil {
		return nil, err
	}
	ew.Flush()
	if err := ew.Error(); err != nil {
		return nil, err
	}

	return &CSVJournal{rw, ew, rf, ef}, nil
}

func (j *CSVJournal) RecordResolution(r ResolutionRecord) error {
	err := j.resolutions.Write([]string{
		r.ID,
		r.RunID,
		strconv.Itoa(r.Cycle),
		r.Time.Format(time.RFC3339),
		r.Actor,
		r.Kind,
		r.Handler,
		r.Outcome,
		f(r.EquityBefore),
		f(r.EquityAfter),
		r.Detail,
	})
	if err != nil {
		return err
	}
	j.resolutions.Flush()
	return j.resolutions.Error()
}

func (j *CSVJournal) RecordEquity(e EquitySnapshot) error {
	err := j.equity.Write([]string{
		e.RunID,
		strconv.Itoa(e.Cycle),
		e.Time.Format(time.RFC3339),
		e.Actor,
		e.Kind,
		f(e.Assets),
		f(e.Liabilities),
		f(e.Equity),
		f(e.CAR),
		strconv.FormatBool(e.Bankrupt),
	})
	if err != nil {
		return err
	}

	j.equity.Flush()
	return j.equity.Error()
}

func (j *CSVJournal) Close() error {
	j.resolutions.Flush()
	if err := j.resolutions.Error(); err != nil {
		return err
	}
	j.equity.Flush()
	if err := j.equity.Error(); err != nil {
		return err
	}

	if err := j.rf.Close(); err != nil {
		return err
	}
	if err := j.ef.Close(); err != nil {
		return err
	}
	return nil
}

// f renders an amount with six decimal places. CAR may be infinite or NaN
// when a sheet has no risk-weighted assets.
func f(x float64) string {
	switch {
	case math.IsNaN(x):
		return "NaN"
	case math.IsInf(x, 1):
		return "+Inf"
	case math.IsInf(x, -1):
		return "-Inf"
	}
	return decimal.NewFromFloat(x).StringFixed(6)
}
