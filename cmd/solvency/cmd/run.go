package cmd

import (
	"context"
	"fmt"
	"os"
	"os/signal"

	"github.com/rustyeddy/solvency/config"
	"github.com/rustyeddy/solvency/journal"
	"github.com/rustyeddy/solvency/sim"
	"github.com/spf13/cobra"
)

var runCmd = &cobra.Command{
	Use:   "run",
	Short: "Run a scenario from a config file",
	Long: `Run a resolution scenario using settings from a configuration file.

The config file declares the actors and contracts of the economy, the shocks
applied each cycle and the resolution policy for banks and firms.

Example:
  solvency run -f scenario.yaml`,
	RunE: runRun,
}

var runConfigPath string

func init() {
	rootCmd.AddCommand(runCmd)

	runCmd.Flags().StringVarP(&runConfigPath, "config", "f", "", "path to config file (YAML or JSON) (required)")
	runCmd.MarkFlagRequired("config")
}

func openJournal(cfg config.JournalConfig) (journal.Journal, error) {
	switch cfg.Type {
	case "csv":
		return journal.NewCSV(cfg.ResolutionsFile, cfg.EquityFile)
	case "sqlite":
		return journal.NewSQLite(cfg.DBPath)
	default:
		return journal.Discard{}, nil
	}
}

func runRun(cmd *cobra.Command, args []string) error {
	cfg, err := config.LoadFromFile(runConfigPath)
	if err != nil {
		return fmt.Errorf("load config: %w", err)
	}

	fmt.Printf("Running scenario with config: %s\n", runConfigPath)
	fmt.Printf("  Run: %s (%d cycles, seed %d)\n", cfg.Run.Name, cfg.Run.Cycles, cfg.Run.Seed)
	fmt.Printf("  CAR target: %.2f%%\n", cfg.Resolution.CARTarget*100)
	fmt.Println()

	j, err := openJournal(cfg.Journal)
	if err != nil {
		return fmt.Errorf("create journal: %w", err)
	}
	defer j.Close()

	engine, err := sim.FromConfig(cfg, j, newLogger())
	if err != nil {
		return fmt.Errorf("build scenario: %w", err)
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt)
	defer stop()

	summary, runErr := engine.Run(ctx, cfg.Run.Cycles)

	if sq, ok := j.(*journal.SQLite); ok {
		if err := sq.RecordRun(summary); err != nil {
			return fmt.Errorf("record run: %w", err)
		}
	}
	if cfg.Journal.OrgFile != "" {
		if err := summary.WriteOrg(cfg.Journal.OrgFile); err != nil {
			return fmt.Errorf("write org summary: %w", err)
		}
	}

	fmt.Printf("Results:\n")
	fmt.Printf("  Cycles: %d\n", summary.Cycles)
	fmt.Printf("  Resolutions: %d (liquidations: %d)\n", summary.Resolutions, summary.Liquidations)
	for _, h := range summary.Handlers() {
		fmt.Printf("    %-10s %d\n", h.Handler, h.Count)
	}
	fmt.Printf("  System value: %.2f -> %.2f\n", summary.ValueStart, summary.ValueEnd)
	fmt.Printf("  Run ID: %s\n", summary.RunID)

	switch cfg.Journal.Type {
	case "csv":
		fmt.Printf("\nResults saved to:\n  - %s\n  - %s\n", cfg.Journal.ResolutionsFile, cfg.Journal.EquityFile)
	case "sqlite":
		fmt.Printf("\nResults saved to: %s\n", cfg.Journal.DBPath)
	}

	if runErr != nil {
		return fmt.Errorf("run aborted: %w", runErr)
	}
	fmt.Println("✓ Run complete")
	return nil
}
