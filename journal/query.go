package journal

import (
	"database/sql"
	"errors"
	"fmt"
	"math"
)

// GetResolution returns a single resolution record by ID.
func (j *SQLite) GetResolution(id string) (ResolutionRecord, error) {
	row := j.db.QueryRow(`
		SELECT id, run_id, cycle, time, actor, kind, handler, outcome, equity_before, equity_after, detail
		FROM resolutions
		WHERE id = ?`, id)

	rec, err := scanResolution(row)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return ResolutionRecord{}, fmt.Errorf("resolution %q not found", id)
		}
		return ResolutionRecord{}, err
	}
	return rec, nil
}

// ListResolutions returns every resolution of a run in cycle order.
func (j *SQLite) ListResolutions(runID string) ([]ResolutionRecord, error) {
	rows, err := j.db.Query(`
		SELECT id, run_id, cycle, time, actor, kind, handler, outcome, equity_before, equity_after, detail
		FROM resolutions
		WHERE run_id = ?
		ORDER BY cycle ASC, rowid ASC`, runID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var out []ResolutionRecord
	for rows.Next() {
		rec, err := scanResolution(rows)
		if err != nil {
			return nil, err
		}
		out = append(out, rec)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}
	return out, nil
}

// ListEquity returns the snapshots of one actor in a run, oldest first.
func (j *SQLite) ListEquity(runID, actor string) ([]EquitySnapshot, error) {
	rows, err := j.db.Query(`
		SELECT run_id, cycle, time, actor, kind, assets, liabilities, equity, car, bankrupt
		FROM equity
		WHERE run_id = ? AND actor = ?
		ORDER BY cycle ASC`, runID, actor)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var out []EquitySnapshot
	for rows.Next() {
		var (
			e   EquitySnapshot
			car sql.NullFloat64
		)
		if err := rows.Scan(
			&e.RunID,
			&e.Cycle,
			&e.Time,
			&e.Actor,
			&e.Kind,
			&e.Assets,
			&e.Liabilities,
			&e.Equity,
			&car,
			&e.Bankrupt,
		); err != nil {
			return nil, err
		}
		e.CAR = math.NaN()
		if car.Valid {
			e.CAR = car.Float64
		}
		out = append(out, e)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}
	return out, nil
}

type scanner interface {
	Scan(dest ...any) error
}

func scanResolution(s scanner) (ResolutionRecord, error) {
	var rec ResolutionRecord
	err := s.Scan(
		&rec.ID,
		&rec.RunID,
		&rec.Cycle,
		&rec.Time,
		&rec.Actor,
		&rec.Kind,
		&rec.Handler,
		&rec.Outcome,
		&rec.EquityBefore,
		&rec.EquityAfter,
		&rec.Detail,
	)
	return rec, err
}
