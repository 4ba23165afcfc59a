package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestDefaultIsValid(t *testing.T) {
	t.Parallel()

	cfg := Default()
	require.NoError(t, cfg.Validate())
	assert.InDelta(t, 0.08, cfg.Resolution.CARTarget, 1e-12)
	assert.InDelta(t, 3.0, cfg.Resolution.Weights.Equity, 1e-12)
	assert.Equal(t, []string{"bailin", "bailout", "liquidate"}, cfg.Resolution.BankPolicy)
}

func TestSaveAndLoadRoundTrip(t *testing.T) {
	t.Parallel()

	for _, name := range []string{"cfg.yaml", "cfg.json"} {
		path := filepath.Join(t.TempDir(), name)
		require.NoError(t, Default().SaveToFile(path))

		got, err := LoadFromFile(path)
		require.NoError(t, err, name)
		assert.Equal(t, Default(), got, name)
	}
}

func TestLoadFromFileErrors(t *testing.T) {
	t.Parallel()

	_, err := LoadFromFile(filepath.Join(t.TempDir(), "missing.yaml"))
	assert.ErrorContains(t, err, "read config file")

	path := filepath.Join(t.TempDir(), "bad.yaml")
	require.NoError(t, os.WriteFile(path, []byte("run: [unterminated"), 0644))
	_, err = LoadFromFile(path)
	assert.ErrorContains(t, err, "parse config")

	cfg := Default()
	cfg.Run.Cycles = 0
	path = filepath.Join(t.TempDir(), "invalid.json")
	require.NoError(t, cfg.SaveToFile(path))
	_, err = LoadFromFile(path)
	assert.ErrorContains(t, err, "invalid config: run.cycles must be positive")
}

func TestValidate(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name   string
		mutate func(*Config)
		want   string
	}{
		{"negative car", func(c *Config) { c.Resolution.CARTarget = -0.1 }, "resolution.car_target must be non-negative"},
		{"negative epsilon", func(c *Config) { c.Resolution.BailinEpsilon = -1 }, "resolution.bailin_epsilon"},
		{"negative weight", func(c *Config) { c.Resolution.Weights.Mortgage = -1 }, "weight mortgage"},
		{"empty bank policy", func(c *Config) { c.Resolution.BankPolicy = nil }, "resolution.bank_policy needs at least one handler"},
		{"unknown handler", func(c *Config) { c.Resolution.FirmPolicy = []string{"pray"} }, `unknown handler "pray"`},
		{"bad step", func(c *Config) { c.Run.Step = "soon" }, "run.step"},
		{"bad start", func(c *Config) { c.Run.Start = "yesterday" }, "run.start"},
		{"journal type", func(c *Config) { c.Journal.Type = "xml" }, "journal.type"},
		{"csv files", func(c *Config) { c.Journal.EquityFile = "" }, "equity_file required"},
		{"sqlite path", func(c *Config) { c.Journal.Type = "sqlite" }, "db_path required"},
		{"reserved proxy name", func(c *Config) {
			c.Scenario.Actors = append(c.Scenario.Actors, ActorSpec{Name: "intermediary:bob", Kind: "fund"})
		}, "reserved for share proxies"},
		{"duplicate actor", func(c *Config) { c.Scenario.Actors = append(c.Scenario.Actors, ActorSpec{Name: "acme", Kind: "firm"}) }, `duplicate name "acme"`},
		{"unknown kind", func(c *Config) { c.Scenario.Actors[0].Kind = "pirate" }, "unknown actor kind"},
		{"role on firm", func(c *Config) { c.Scenario.Actors[6].Role = "central" }, "requires a bank"},
		{"bad central ref", func(c *Config) { c.Scenario.Actors[3].CentralBank = "acme" }, `"acme" is not a bank`},
		{"unknown holder", func(c *Config) { c.Scenario.Contracts[0].Holder = "nobody" }, `unknown holder "nobody"`},
		{"cash with obligor", func(c *Config) {
			c.Scenario.Contracts = append(c.Scenario.Contracts, ContractSpec{Kind: "cash", Holder: "bob", Obligor: "alice", Value: 1})
		}, "cash has no obligor"},
		{"stock contract", func(c *Config) { c.Scenario.Contracts[0].Kind = "stock" }, "issued through shares"},
		{"pledge non repo", func(c *Config) {
			c.Scenario.Pledges = []PledgeSpec{{Collateral: "a-loan", Loan: "a-loan"}}
		}, "is not a repo loan"},
		{"shock cycle", func(c *Config) { c.Scenario.Shocks[0].Cycle = 9 }, "cycle must be between 1 and 3"},
		{"shock fraction", func(c *Config) { c.Scenario.Shocks[0].WriteDown = 1.5 }, "write_down"},
		{"shock target", func(c *Config) { c.Scenario.Shocks[0].Contract = "" }, "needs a contract or an actor"},
		{"share qty", func(c *Config) { c.Scenario.Shares[0].Quantity = 0 }, "quantity must be positive"},
	}

	for _, tt := range tests {
		tt := tt
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()
			cfg := Default()
			tt.mutate(cfg)
			assert.ErrorContains(t, cfg.Validate(), tt.want)
		})
	}
}

func TestRunTimes(t *testing.T) {
	t.Parallel()

	var r RunConfig
	start, err := r.StartTime()
	require.NoError(t, err)
	assert.Equal(t, time.Unix(0, 0).UTC(), start)
	step, err := r.StepDuration()
	require.NoError(t, err)
	assert.Equal(t, 24*time.Hour, step)

	r = RunConfig{Start: "2024-01-01T00:00:00Z", Step: "1h"}
	start, err = r.StartTime()
	require.NoError(t, err)
	assert.Equal(t, 2024, start.Year())
	step, _ = r.StepDuration()
	assert.Equal(t, time.Hour, step)
}

func TestApplyEnv(t *testing.T) {
	t.Setenv("SOLVENCY_RESOLUTION_CAR_TARGET", "0.12")
	t.Setenv("SOLVENCY_RESOLUTION_WEIGHT_EQUITY", "2.5")
	t.Setenv("SOLVENCY_RESOLUTION_BANK_POLICY", "bailout,liquidate")
	t.Setenv("SOLVENCY_RUN_CYCLES", "7")
	t.Setenv("SOLVENCY_JOURNAL_TYPE", "none")

	cfg := Default()
	require.NoError(t, ApplyEnv(cfg))

	assert.InDelta(t, 0.12, cfg.Resolution.CARTarget, 1e-12)
	assert.InDelta(t, 2.5, cfg.Resolution.Weights.Equity, 1e-12)
	assert.InDelta(t, 0.5, cfg.Resolution.Weights.Mortgage, 1e-12)
	assert.Equal(t, []string{"bailout", "liquidate"}, cfg.Resolution.BankPolicy)
	assert.Equal(t, 7, cfg.Run.Cycles)
	assert.Equal(t, "none", cfg.Journal.Type)
	assert.Equal(t, "demo", cfg.Run.Name)
	require.NoError(t, cfg.Validate())
}

func TestApplyEnvBadValue(t *testing.T) {
	t.Setenv("SOLVENCY_RUN_CYCLES", "many")

	err := ApplyEnv(Default())
	assert.ErrorContains(t, err, "parse env")
}
