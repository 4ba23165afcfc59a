package cmd

import (
	"fmt"
	"math"
	"time"

	"github.com/rustyeddy/solvency/internal/id"
	"github.com/rustyeddy/solvency/journal"
	"github.com/spf13/cobra"
)

var journalCmd = &cobra.Command{
	Use:   "journal",
	Short: "Query resolution journal data",
	Long: `Query and display resolution records from a SQLite journal.

Subcommands:
  resolution  - Get details of a single resolution by ID
  run         - List every resolution of a run
  equity      - Show one actor's balance sheet across a run

Examples:
  solvency journal resolution <id>
  solvency journal run <run-id>
  solvency journal equity <run-id> bank-a`,
}

var journalResolutionCmd = &cobra.Command{
	Use:   "resolution <id>",
	Short: "Get details of a single resolution",
	Args:  cobra.ExactArgs(1),
	RunE:  runJournalResolution,
}

var journalRunCmd = &cobra.Command{
	Use:   "run <run-id>",
	Short: "List every resolution of a run",
	Args:  cobra.ExactArgs(1),
	RunE:  runJournalRun,
}

var journalEquityCmd = &cobra.Command{
	Use:   "equity <run-id> <actor>",
	Short: "Show one actor's balance sheet across a run",
	Args:  cobra.ExactArgs(2),
	RunE:  runJournalEquity,
}

var journalDBPath string

func init() {
	rootCmd.AddCommand(journalCmd)
	journalCmd.AddCommand(journalResolutionCmd)
	journalCmd.AddCommand(journalRunCmd)
	journalCmd.AddCommand(journalEquityCmd)

	journalCmd.PersistentFlags().StringVarP(&journalDBPath, "db", "d", "./solvency.sqlite", "path to SQLite journal DB")
}

func printResolution(r journal.ResolutionRecord) {
	fmt.Printf("%-26s  cycle %3d  %-16s %-16s %-10s %-8s %12.2f -> %12.2f\n",
		r.ID, r.Cycle, r.Actor, r.Kind, r.Handler, r.Outcome, r.EquityBefore, r.EquityAfter)
	if r.Detail != "" {
		fmt.Printf("    %s\n", r.Detail)
	}
}

func runJournalResolution(cmd *cobra.Command, args []string) error {
	j, err := journal.NewSQLite(journalDBPath)
	if err != nil {
		return fmt.Errorf("open db: %w", err)
	}
	defer j.Close()

	rec, err := j.GetResolution(args[0])
	if err != nil {
		return fmt.Errorf("get resolution: %w", err)
	}
	printResolution(rec)
	if at, err := id.Time(rec.ID); err == nil {
		fmt.Printf("    run %s, simulated %s, recorded %s\n",
			rec.RunID, rec.Time.Format(time.RFC3339), at.Format(time.RFC3339))
	}
	return nil
}

func runJournalRun(cmd *cobra.Command, args []string) error {
	j, err := journal.NewSQLite(journalDBPath)
	if err != nil {
		return fmt.Errorf("open db: %w", err)
	}
	defer j.Close()

	recs, err := j.ListResolutions(args[0])
	if err != nil {
		return fmt.Errorf("query resolutions: %w", err)
	}
	if len(recs) == 0 {
		fmt.Println("no resolutions")
		return nil
	}
	for _, r := range recs {
		printResolution(r)
	}
	return nil
}

func runJournalEquity(cmd *cobra.Command, args []string) error {
	j, err := journal.NewSQLite(journalDBPath)
	if err != nil {
		return fmt.Errorf("open db: %w", err)
	}
	defer j.Close()

	snaps, err := j.ListEquity(args[0], args[1])
	if err != nil {
		return fmt.Errorf("query equity: %w", err)
	}
	fmt.Printf("%5s  %12s  %12s  %12s  %8s\n", "cycle", "assets", "liabilities", "equity", "car")
	for _, s := range snaps {
		car := "-"
		if !math.IsNaN(s.CAR) && !math.IsInf(s.CAR, 0) {
			car = fmt.Sprintf("%.4f", s.CAR)
		}
		mark := ""
		if s.Bankrupt {
			mark = "  bankrupt"
		}
		fmt.Printf("%5d  %12.2f  %12.2f  %12.2f  %8s%s\n", s.Cycle, s.Assets, s.Liabilities, s.Equity, car, mark)
	}
	return nil
}
