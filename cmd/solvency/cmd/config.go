package cmd

import (
	"fmt"
	"strings"

	"github.com/rustyeddy/solvency/config"
	"github.com/spf13/cobra"
)

var configCmd = &cobra.Command{
	Use:   "config",
	Short: "Generate or validate configuration files",
	Long: `Manage configuration files for resolution runs.

Subcommands:
  init     - Generate a default configuration file
  validate - Validate an existing configuration file

Examples:
  solvency config init -o scenario.yaml
  solvency config validate -f scenario.yaml`,
}

var configInitCmd = &cobra.Command{
	Use:   "init",
	Short: "Generate a default configuration file",
	Long: `Create a new configuration file holding the demo scenario.

Example:
  solvency config init -o scenario.yaml`,
	RunE: runConfigInit,
}

var configValidateCmd = &cobra.Command{
	Use:   "validate",
	Short: "Validate a configuration file",
	Long: `Check if a configuration file is valid and can be loaded.
Environment overrides (SOLVENCY_*) are applied before validation.

Example:
  solvency config validate -f scenario.yaml`,
	RunE: runConfigValidate,
}

var (
	configInitOutput   string
	configValidatePath string
)

func init() {
	rootCmd.AddCommand(configCmd)
	configCmd.AddCommand(configInitCmd)
	configCmd.AddCommand(configValidateCmd)

	configInitCmd.Flags().StringVarP(&configInitOutput, "output", "o", "scenario.yaml", "output config file path")
	configValidateCmd.Flags().StringVarP(&configValidatePath, "file", "f", "", "path to config file (required)")
	configValidateCmd.MarkFlagRequired("file")
}

func runConfigInit(cmd *cobra.Command, args []string) error {
	cfg := config.Default()
	if err := cfg.SaveToFile(configInitOutput); err != nil {
		return fmt.Errorf("save config: %w", err)
	}

	fmt.Printf("✓ Created default configuration: %s\n", configInitOutput)
	fmt.Println("\nEdit the file and run with:")
	fmt.Printf("  solvency run -f %s\n", configInitOutput)
	return nil
}

func runConfigValidate(cmd *cobra.Command, args []string) error {
	cfg, err := config.LoadFromFile(configValidatePath)
	if err != nil {
		return fmt.Errorf("validation failed: %w", err)
	}

	fmt.Printf("✓ Configuration valid: %s\n", configValidatePath)
	fmt.Printf("  Run: %s (%d cycles, seed %d)\n", cfg.Run.Name, cfg.Run.Cycles, cfg.Run.Seed)
	fmt.Printf("  CAR target: %.2f%%\n", cfg.Resolution.CARTarget*100)
	fmt.Printf("  Bank policy: %s\n", strings.Join(cfg.Resolution.BankPolicy, " -> "))
	fmt.Printf("  Firm policy: %s\n", strings.Join(cfg.Resolution.FirmPolicy, " -> "))
	fmt.Printf("  Scenario: %d actors, %d contracts, %d shocks\n",
		len(cfg.Scenario.Actors), len(cfg.Scenario.Contracts), len(cfg.Scenario.Shocks))
	fmt.Printf("  Journal: %s\n", cfg.Journal.Type)
	return nil
}
