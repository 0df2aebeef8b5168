package cmd

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"
)

var (
	version = "1.0.0"

	// Global flags
	verbose bool
	profile string
)

var rootCmd = &cobra.Command{
	Use:   "facturx",
	Short: "Generate Factur-X / ZUGFeRD electronic invoices",
	Long: `facturx compiles invoice data into EN 16931 compliant Factur-X XML,
renders the matching visual PDF, and combines both into hybrid ZUGFeRD
documents.

Examples:
  # Generate XML from an invoice description
  facturx generate invoice.json

  # Generate the hybrid PDF with embedded XML
  facturx generate invoice.json --zugferd -o invoice.pdf

  # Show the totals of an invoice file
  facturx info invoice.json

  # Start the HTTP API
  facturx serve --address :8080`,
	Version: version,
}

func Execute() error {
	return rootCmd.Execute()
}

func init() {
	rootCmd.PersistentFlags().BoolVarP(&verbose, "verbose", "v", false, "Enable verbose output")
	rootCmd.PersistentFlags().StringVar(&profile, "profile", "", "Factur-X profile: en16931 or basic (env: FACTURX_PROFILE)")

	cobra.OnInitialize(initConfig)
}

func initConfig() {
	if profile == "" {
		profile = os.Getenv("FACTURX_PROFILE")
	}
}

func printVerbose(format string, args ...interface{}) {
	if verbose {
		fmt.Fprintf(os.Stderr, format, args...)
	}
}
