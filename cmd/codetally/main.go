// Package main provides the entry point for the codetally CLI tool.
package main

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/Sumatoshi-tech/codetally/cmd/codetally/commands"
	"github.com/Sumatoshi-tech/codetally/pkg/version"
)

func main() {
	version.InitBinaryVersion()

	rootCmd := &cobra.Command{
		Use:   "codetally",
		Short: "Codetally - codebase license, holder and language summaries",
		Long: `Codetally rolls up the detections of a file scan into ranked tallies per
directory and for the whole codebase, then selects the declared license,
holders and primary language.

Commands:
  run       Summarize a scan and print the codebase report
  validate  Check a scan against the scan schema and facet set`,
		SilenceUsage:  true,
		SilenceErrors: true,
	}

	rootCmd.AddCommand(commands.NewRunCommand())
	rootCmd.AddCommand(commands.NewValidateCommand())
	rootCmd.AddCommand(versionCmd())

	err := rootCmd.Execute()
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
}

func versionCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "version",
		Short: "Show version information",
		Run: func(cmd *cobra.Command, _ []string) {
			fmt.Fprintln(cmd.OutOrStdout(), version.String())
		},
	}
}
