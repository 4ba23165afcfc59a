package main

import (
	"os"

	"github.com/rustyeddy/solvency/cmd/solvency/cmd"
)

func main() {
	if err := cmd.Execute(); err != nil {
		os.Exit(1)
	}
}
