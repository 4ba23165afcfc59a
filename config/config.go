package config

import (
	"encoding/json"
	"fmt"
	"os"
	"strings"
	"time"

	"gopkg.in/yaml.v3"

	"github.com/rustyeddy/solvency/resolution"
	"github.com/rustyeddy/solvency/risk"
)

// Config represents the complete simulation configuration
type Config struct {
	Run        RunConfig        `json:"run" yaml:"run" envPrefix:"RUN_"`
	Resolution ResolutionConfig `json:"resolution" yaml:"resolution" envPrefix:"RESOLUTION_"`
	Journal    JournalConfig    `json:"journal" yaml:"journal" envPrefix:"JOURNAL_"`
	Scenario   Scenario         `json:"scenario" yaml:"scenario"`
}

// RunConfig controls the cycle loop.
type RunConfig struct {
	Name   string `json:"name" yaml:"name" env:"NAME"`
	Cycles int    `json:"cycles" yaml:"cycles" env:"CYCLES"`
	Seed   int64  `json:"seed" yaml:"seed" env:"SEED"`
	Start  string `json:"start,omitempty" yaml:"start,omitempty" env:"START"` // RFC3339
	Step   string `json:"step,omitempty" yaml:"step,omitempty" env:"STEP"`    // e.g. "24h"
}

// StartTime parses Start, defaulting to the Unix epoch.
func (r RunConfig) StartTime() (time.Time, error) {
	if r.Start == "" {
		return time.Unix(0, 0).UTC(), nil
	}
	return time.Parse(time.RFC3339, r.Start)
}

// StepDuration parses Step, defaulting to one day.
func (r RunConfig) StepDuration() (time.Duration, error) {
	if r.Step == "" {
		return 24 * time.Hour, nil
	}
	return time.ParseDuration(r.Step)
}

// ResolutionConfig holds the capital requirement and policy orderings.
type ResolutionConfig struct {
	CARTarget     float64      `json:"car_target" yaml:"car_target" env:"CAR_TARGET"`
	BailinEpsilon float64      `json:"bailin_epsilon" yaml:"bailin_epsilon" env:"BAILIN_EPSILON"`
	Weights       risk.Weights `json:"weights" yaml:"weights" envPrefix:"WEIGHT_"`
	BankPolicy    []string     `json:"bank_policy" yaml:"bank_policy" env:"BANK_POLICY"`
	FirmPolicy    []string     `json:"firm_policy" yaml:"firm_policy" env:"FIRM_POLICY"`
}

// JournalConfig contains journaling parameters
type JournalConfig struct {
	Type            string `json:"type" yaml:"type" env:"TYPE"` // "csv", "sqlite" or "none"
	ResolutionsFile string `json:"resolutions_file,omitempty" yaml:"resolutions_file,omitempty" env:"RESOLUTIONS_FILE"`
	EquityFile      string `json:"equity_file,omitempty" yaml:"equity_file,omitempty" env:"EQUITY_FILE"`
	DBPath          string `json:"db_path,omitempty" yaml:"db_path,omitempty" env:"DB_PATH"`
	OrgFile         string `json:"org_file,omitempty" yaml:"org_file,omitempty" env:"ORG_FILE"`
}

// LoadFromFile loads configuration from a file, applies SOLVENCY_*
// environment overrides and validates the result.
func LoadFromFile(path string) (*Config, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read config file: %w", err)
	}

	cfg := &Config{}

	// Try YAML first, fall back to JSON
	err = yaml.Unmarshal(data, cfg)
	if err != nil {
		err = json.Unmarshal(data, cfg)
		if err != nil {
			return nil, fmt.Errorf("parse config (tried YAML and JSON): %w", err)
		}
	}

	if err := ApplyEnv(cfg); err != nil {
		return nil, err
	}

	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("invalid config: %w", err)
	}

	return cfg, nil
}

// SaveToFile saves configuration to a file (JSON or YAML based on extension)
func (c *Config) SaveToFile(path string) error {
	var data []byte
	var err error

	if strings.HasSuffix(path, ".yaml") || strings.HasSuffix(path, ".yml") {
		data, err = yaml.Marshal(c)
	} else {
		data, err = json.MarshalIndent(c, "", "  ")
	}

	if err != nil {
		return fmt.Errorf("marshal config: %w", err)
	}

	if err := os.WriteFile(path, data, 0644); err != nil {
		return fmt.Errorf("write config file: %w", err)
	}

	return nil
}

// Validate checks if the configuration is valid
func (c *Config) Validate() error {
	if c.Run.Cycles <= 0 {
		return fmt.Errorf("run.cycles must be positive")
	}
	if _, err := c.Run.StartTime(); err != nil {
		return fmt.Errorf("run.start must be RFC3339: %w", err)
	}
	if d, err := c.Run.StepDuration(); err != nil || d <= 0 {
		return fmt.Errorf("run.step must be a positive duration")
	}

	r := c.Resolution
	if r.CARTarget < 0 {
		return fmt.Errorf("resolution.car_target must be non-negative")
	}
	if r.BailinEpsilon < 0 {
		return fmt.Errorf("resolution.bailin_epsilon must be non-negative")
	}
	if err := r.Weights.Validate(); err != nil {
		return fmt.Errorf("resolution.weights: %w", err)
	}
	if err := validatePolicy("resolution.bank_policy", r.BankPolicy); err != nil {
		return err
	}
	if err := validatePolicy("resolution.firm_policy", r.FirmPolicy); err != nil {
		return err
	}

	switch c.Journal.Type {
	case "none":
	case "csv":
		if c.Journal.ResolutionsFile == "" || c.Journal.EquityFile == "" {
			return fmt.Errorf("journal resolutions_file and equity_file required for CSV type")
		}
	case "sqlite":
		if c.Journal.DBPath == "" {
			return fmt.Errorf("journal db_path required for SQLite type")
		}
	default:
		return fmt.Errorf("journal.type must be 'csv', 'sqlite' or 'none'")
	}

	return c.Scenario.Validate(c.Run.Cycles)
}

func validatePolicy(field string, ids []string) error {
	if len(ids) == 0 {
		return fmt.Errorf("%s needs at least one handler", field)
	}
	for _, id := range ids {
		switch strings.ToLower(strings.TrimSpace(id)) {
		case resolution.IDBailIn, resolution.IDBailout, resolution.IDLiquidate, resolution.IDFirm:
		default:
			return fmt.Errorf("%s: unknown handler %q", field, id)
		}
	}
	return nil
}

// Default returns a configuration with sensible defaults and a small demo
// economy: a bank that is bailed in after a loan loss and a firm whose cash
// is wiped out.
func Default() *Config {
	return &Config{
		Run: RunConfig{
			Name:   "demo",
			Cycles: 3,
			Seed:   1,
			Start:  "2024-01-01T00:00:00Z",
			Step:   "24h",
		},
		Resolution: ResolutionConfig{
			CARTarget:     risk.DefaultCARTarget,
			BailinEpsilon: resolution.DefaultEpsilon,
			Weights:       risk.DefaultWeights(),
			BankPolicy:    []string{resolution.IDBailIn, resolution.IDBailout, resolution.IDLiquidate},
			FirmPolicy:    []string{resolution.IDFirm},
		},
		Journal: JournalConfig{
			Type:            "csv",
			ResolutionsFile: "./resolutions.csv",
			EquityFile:      "./equity.csv",
		},
		Scenario: demoScenario(),
	}
}
