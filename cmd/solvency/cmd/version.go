package cmd

import (
	"fmt"

	"github.com/spf13/cobra"
)

const version = "0.3.0"

var versionCmd = &cobra.Command{
	Use:   "version",
	Short: "Print the version number",
	Long:  `Display the current version of the solvency CLI.`,
	Run: func(cmd *cobra.Command, args []string) {
		fmt.Printf("solvency version %s\n", version)
		fmt.Println("A bank and firm insolvency resolution simulator")
		fmt.Println("https://github.com/rustyeddy/solvency")
	},
}

func init() {
	rootCmd.AddCommand(versionCmd)
}
