package cmd

import (
	"io"
	"log"
	"os"

	"github.com/spf13/cobra"
)

var rootCmd = &cobra.Command{
	Use:   "solvency",
	Short: "A bank and firm insolvency resolution simulator",
	Long: `Solvency simulates an economy of banks, firms, households, funds and a
government, and resolves every actor that becomes insolvent.

It provides tools for:
  - Running shock scenarios described in a config file
  - Bail-in, bailout and liquidation of banks
  - Three-tier resolution of bankrupt firms
  - Journaling resolutions and balance sheets to CSV or SQLite

Complete documentation is available at https://github.com/rustyeddy/solvency`,
	SilenceUsage: true,
}

var verbose bool

// Execute adds all child commands to the root command and sets flags appropriately.
func Execute() error {
	return rootCmd.Execute()
}

func init() {
	rootCmd.PersistentFlags().BoolVarP(&verbose, "verbose", "v", false, "log every resolution step to stderr")
}

func newLogger() *log.Logger {
	if !verbose {
		return log.New(io.Discard, "", 0)
	}
	return log.New(os.Stderr, "solvency: ", log.LstdFlags)
}
