package journal

import (
	"database/sql"
	"math"

	_ "github.com/mattn/go-sqlite3"
)

type SQLite struct {
	db *sql.DB
}

func NewSQLite(path string) (*SQLite, error) {
	db, err := sql.Open("sqlite3", path)
	if err != nil {
		return nil, err
	}

	if _, err := db.Exec(Schema); err != nil {
		_ = db.Close()
		return nil, err
	}

	return &SQLite{db: db}, nil
}

func (j *SQLite) RecordResolution(r ResolutionRecord) error {
	_, err := j.db.Exec(`
		INSERT INTO resolutions
		(id, run_id, cycle, time, actor, kind, handler, outcome, equity_before, equity_after, detail)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)`,
		r.ID, r.RunID, r.Cycle, r.Time, r.Actor, r.Kind, r.Handler,
		r.Outcome, r.EquityBefore, r.EquityAfter, r.Detail,
	)
	return err
}

func (j *SQLite) RecordEquity(e EquitySnapshot) error {
	_, err := j.db.Exec(`
		INSERT INTO equity
		(run_id, cycle, time, actor, kind, assets, liabilities, equity, car, bankrupt)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?)`,
		e.RunID, e.Cycle, e.Time, e.Actor, e.Kind,
		e.Assets, e.Liabilities, e.Equity, finite(e.CAR), e.Bankrupt,
	)
	return err
}

// RecordRun stores the summary of a finished run.
func (j *SQLite) RecordRun(r RunSummary) error {
	_, err := j.db.Exec(`
		INSERT OR REPLACE INTO runs
		(run_id, created, scenario, cycles, actors, resolutions, liquidations, value_start, value_end, fatal)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?)`,
		r.RunID, r.Created, r.Scenario, r.Cycles, r.Actors, r.Resolutions,
		r.Liquidations, r.ValueStart, r.ValueEnd, r.Fatal,
	)
	return err
}

func (j *SQLite) Close() error {
	return j.db.Close()
}

// finite maps NaN and ±Inf to NULL.
func finite(x float64) sql.NullFloat64 {
	if math.IsNaN(x) || math.IsInf(x, 0) {
		return sql.NullFloat64{}
	}
	return sql.NullFloat64{Float64: x, Valid: true}
}
