package main

import (
	"os"

	"github.com/qecbench/montesweep/cmd"
)

func main() {
	if err := cmd.NewRootCmd().Execute(); err != nil {
		os.Exit(1)
	}
}
