package cmd

import (
	"os"

	"github.com/spf13/cobra"
)

var rootCmd = &cobra.Command{
	Use:           "storefront",
	Short:         "Storefront catalog API and maintenance commands",
	SilenceUsage:  true,
	SilenceErrors: false,
}

// Execute applies registered commands and runs the CLI.
func Execute() {
	Apply()
	if err := rootCmd.Execute(); err != nil {
		os.Exit(1)
	}
}
