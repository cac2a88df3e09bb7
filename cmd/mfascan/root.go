// Package main provides the entry point for the mfascan CLI.
package main

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"
)

// NewRootCmd creates the root command for mfascan.
func NewRootCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "mfascan",
		Short: "Made-for-advertising site risk scorer",
		Long: `mfascan scores websites for made-for-advertising (MFA) risk.

It analyzes recorded crawl observations for ad-behavior abuse (density,
stacking, refresh, injection, video stuffing) and low-value content
(AI-generated text, clickbait, staleness), then combines both into a
single risk assessment with remediation recommendations.

Assessments are saved to a local history database so that repeated
audits of the same URL can be compared over time.`,
		Version:       getVersion(),
		SilenceUsage:  true,
		SilenceErrors: true,
	}

	// Global flags that apply to all commands
	cmd.PersistentFlags().BoolP("verbose", "v", false, "Enable verbose logging")

	// Add subcommands
	cmd.AddCommand(NewScanCmd())
	cmd.AddCommand(NewCompareCmd())
	cmd.AddCommand(NewInitCmd())
	cmd.AddCommand(NewVersionCmd())

	return cmd
}

// Execute runs the root command.
func Execute() {
	if err := NewRootCmd().Execute(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}
