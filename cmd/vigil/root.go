package main

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"
)

var (
	// Global flags
	cfgFile string
	verbose bool
)

var rootCmd = &cobra.Command{
	Use:   "vigil",
	Short: "Vigil - behavioral property validation for message-passing systems",
	Long: `Vigil parses and validates VPL property documents: declarative,
runtime-verifiable behavioral properties over the channels of a
message-passing system.

It provides:
  - Structural, binding, and pattern validation of property documents
  - A daemon that watches property sources and reloads on change
  - Prometheus metrics and health probes
  - An audit trail of validation outcomes`,
	Version: Version,
}

// Execute runs the root command.
func Execute() {
	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}

func init() {
	rootCmd.PersistentFlags().StringVarP(&cfgFile, "config", "c", "vigil.yaml", "config file path")
	rootCmd.PersistentFlags().BoolVarP(&verbose, "verbose", "v", false, "verbose output")
}
