package journal

import (
	"encoding/csv"
	"math"
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func readRows(t *testing.T, path string) [][]string {
	t.Helper()
	data, err := os.ReadFile(path)
	require.NoError(t, err)
	rows, err := csv.NewReader(strings.NewReader(string(data))).ReadAll()
	require.NoError(t, err)
	return rows
}

func newTestCSV(t *testing.T) (*CSVJournal, string, string) {
	t.Helper()
	dir := t.TempDir()
	rp := filepath.Join(dir, "resolutions.csv")
	ep := filepath.Join(dir, "equity.csv")
	j, err := NewCSV(rp, ep)
	require.NoError(t, err)
	return j, rp, ep
}

func TestCSVJournalHeaders(t *testing.T) {
	t.Parallel()

	j, rp, ep := newTestCSV(t)
	assert.NoError(t, j.Close())

	assert.Equal(t, resolutionHeader, readRows(t, rp)[0])
	assert.Equal(t, equityHeader, readRows(t, ep)[0])
}

func TestCSVJournalRecordResolution(t *testing.T) {
	t.Parallel()

	j, rp, _ := newTestCSV(t)
	ts := time.Date(2024, 1, 2, 3, 4, 5, 0, time.UTC)

	err := j.RecordResolution(ResolutionRecord{
		ID:           "R1",
		RunID:        "run",
		Cycle:        3,
		Time:         ts,
		Actor:        "bank",
		Kind:         "commercial_bank",
		Handler:      "bailin",
		Outcome:      OutcomeResolved,
		EquityBefore: -12.5,
		EquityAfter:  160.0000011,
		Detail:       "ok",
	})
	assert.NoError(t, err)
	assert.NoError(t, j.Close())

	rows := readRows(t, rp)
	require.Len(t, rows, 2)
	want := []string{
		"R1", "run", "3", ts.Format(time.RFC3339), "bank", "commercial_bank",
		"bailin", "resolved", "-12.500000", "160.000001", "ok",
	}
	assert.Equal(t, want, rows[1])
}

func TestCSVJournalRecordEquity(t *testing.T) {
	t.Parallel()

	j, _, ep := newTestCSV(t)
	ts := time.Date(2024, 2, 3, 4, 5, 6, 0, time.UTC)

	assert.NoError(t, j.RecordEquity(EquitySnapshot{
		RunID: "run", Cycle: 1, Time: ts, Actor: "bank", Kind: "bank",
		Assets: 1000.1, Liabilities: 999.9, Equity: 0.2, CAR: math.Inf(1),
	}))
	assert.NoError(t, j.RecordEquity(EquitySnapshot{
		RunID: "run", Cycle: 1, Time: ts, Actor: "h", Kind: "household",
		CAR: math.NaN(), Bankrupt: true,
	}))
	assert.NoError(t, j.Close())

	rows := readRows(t, ep)
	require.Len(t, rows, 3)
	assert.Equal(t, []string{
		"run", "1", ts.Format(time.RFC3339), "bank", "bank",
		"1000.100000", "999.900000", "0.200000", "+Inf", "false",
	}, rows[1])
	assert.Equal(t, "NaN", rows[2][8])
	assert.Equal(t, "true", rows[2][9])
}

func TestFormatAmount(t *testing.T) {
	t.Parallel()

	tests := []struct {
		in   float64
		want string
	}{
		{0, "0.000000"},
		{1.2345678, "1.234568"},
		{-0.5, "-0.500000"},
		{math.Inf(-1), "-Inf"},
	}
	for _, tt := range tests {
		assert.Equal(t, tt.want, f(tt.in))
	}
}

func TestDiscard(t *testing.T) {
	t.Parallel()

	var j Journal = Discard{}
	assert.NoError(t, j.RecordResolution(ResolutionRecord{}))
	assert.NoError(t, j.RecordEquity(EquitySnapshot{}))
	assert.NoError(t, j.Close())
}
