package main

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"
)

// NewRootCmd creates the root command for ghbuster.
func NewRootCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "ghbuster",
		Short: "Detect inauthentic GitHub users and repositories",
		Long: `ghbuster runs a set of heuristics against a GitHub user or repository and
reports which of them point at inauthentic activity, such as freshly created
accounts, forks of taken-down repositories or stars bought in bulk.

A GitHub token is required. Pass it with --github-token or GITHUB_TOKEN.`,
		Version:       getVersion(),
		SilenceUsage:  true,
		SilenceErrors: true,
	}

	cmd.PersistentFlags().BoolP("debug", "v", false, "Enable debug logging")

	cmd.AddCommand(NewScanCmd())
	cmd.AddCommand(NewHeuristicsCmd())
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
