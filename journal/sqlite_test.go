package journal

import (
	"database/sql"
	"math"
	"path/filepath"
	"testing"
	"time"

	_ "github.com/mattn/go-sqlite3"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newTestSQLite(t *testing.T) (*SQLite, string) {
	t.Helper()

	dir := t.TempDir()
	path := filepath.Join(dir, "test.db")

	j, err := NewSQLite(path)
	require.NoError(t, err)

	return j, path
}

func TestSQLiteSchemaCreated(t *testing.T) {
	t.Parallel()

	j, path := newTestSQLite(t)
	assert.NoError(t, j.Close())

	db, err := sql.Open("sqlite3", path)
	require.NoError(t, err)
	t.Cleanup(func() { _ = db.Close() })

	rows, err := db.Query(`SELECT name FROM sqlite_master WHERE type='table' AND name IN ('resolutions','equity','runs')`)
	require.NoError(t, err)
	defer rows.Close()

	found := map[string]bool{}
	for rows.Next() {
		var name string
		assert.NoError(t, rows.Scan(&name))
		found[name] = true
	}
	assert.NoError(t, rows.Err())

	assert.True(t, found["resolutions"])
	assert.True(t, found["equity"])
	assert.True(t, found["runs"])
}

func TestSQLiteResolutions(t *testing.T) {
	t.Parallel()

	j, _ := newTestSQLite(t)
	t.Cleanup(func() { _ = j.Close() })

	ts := time.Date(2024, 1, 2, 3, 4, 5, 0, time.UTC)
	first := ResolutionRecord{
		ID: "R1", RunID: "run", Cycle: 2, Time: ts, Actor: "bank", Kind: "commercial_bank",
		Handler: "bailout", Outcome: OutcomeResolved, EquityBefore: -5, EquityAfter: 160,
	}
	second := ResolutionRecord{
		ID: "R2", RunID: "run", Cycle: 1, Time: ts, Actor: "acme", Kind: "firm",
		Handler: "firm", Outcome: OutcomeResolved, EquityBefore: -70, EquityAfter: 0,
	}
	other := ResolutionRecord{ID: "R3", RunID: "other", Time: ts, Outcome: OutcomeFatal}
	require.NoError(t, j.RecordResolution(first))
	require.NoError(t, j.RecordResolution(second))
	require.NoError(t, j.RecordResolution(other))

	got, err := j.GetResolution("R1")
	require.NoError(t, err)
	assert.Equal(t, first.Handler, got.Handler)
	assert.InDelta(t, 160, got.EquityAfter, 1e-9)
	assert.True(t, got.Time.Equal(ts))

	_, err = j.GetResolution("missing")
	assert.ErrorContains(t, err, "not found")

	list, err := j.ListResolutions("run")
	require.NoError(t, err)
	require.Len(t, list, 2)
	assert.Equal(t, "R2", list[0].ID)
	assert.Equal(t, "R1", list[1].ID)
}

func TestSQLiteEquity(t *testing.T) {
	t.Parallel()

	j, _ := newTestSQLite(t)
	t.Cleanup(func() { _ = j.Close() })

	ts := time.Date(2024, 2, 3, 4, 5, 6, 0, time.UTC)
	require.NoError(t, j.RecordEquity(EquitySnapshot{
		RunID: "run", Cycle: 2, Time: ts, Actor: "bank", Kind: "bank",
		Assets: 10, Liabilities: 12, Equity: -2, CAR: math.Inf(-1), Bankrupt: true,
	}))
	require.NoError(t, j.RecordEquity(EquitySnapshot{
		RunID: "run", Cycle: 1, Time: ts, Actor: "bank", Kind: "bank",
		Assets: 10, Liabilities: 8, Equity: 2, CAR: 0.2,
	}))

	snaps, err := j.ListEquity("run", "bank")
	require.NoError(t, err)
	require.Len(t, snaps, 2)
	assert.Equal(t, 1, snaps[0].Cycle)
	assert.InDelta(t, 0.2, snaps[0].CAR, 1e-12)
	assert.False(t, snaps[0].Bankrupt)
	assert.True(t, math.IsNaN(snaps[1].CAR))
	assert.True(t, snaps[1].Bankrupt)
}

func TestSQLiteRecordRun(t *testing.T) {
	t.Parallel()

	j, path := newTestSQLite(t)
	run := RunSummary{
		RunID: "run", Created: time.Date(2024, 5, 6, 7, 8, 9, 0, time.UTC),
		Scenario: "demo", Cycles: 3, Actors: 7, Resolutions: 2, Liquidations: 1,
		ValueStart: 100, ValueEnd: 160,
	}
	require.NoError(t, j.RecordRun(run))
	run.Cycles = 4
	require.NoError(t, j.RecordRun(run))
	require.NoError(t, j.Close())

	db, err := sql.Open("sqlite3", path)
	require.NoError(t, err)
	t.Cleanup(func() { _ = db.Close() })

	var (
		n      int
		cycles int
	)
	require.NoError(t, db.QueryRow(`SELECT COUNT(*), MAX(cycles) FROM runs`).Scan(&n, &cycles))
	assert.Equal(t, 1, n)
	assert.Equal(t, 4, cycles)
}
