package main

import (
	"fmt"
	"text/tabwriter"

	"github.com/nao1215/ghbuster/internal/heuristic"
	"github.com/spf13/cobra"
)

// NewHeuristicsCmd creates the heuristics command.
func NewHeuristicsCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "heuristics",
		Short: "List the available heuristics",
		Long: `List every registered heuristic with its id, target kind and name.

Use the ids with scan --include or scan --exclude.`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			tw := tabwriter.NewWriter(cmd.OutOrStdout(), 0, 0, 2, ' ', 0)
			fmt.Fprintln(tw, "ID\tTARGET\tNAME")
			for _, h := range heuristic.All() {
				fmt.Fprintf(tw, "%s\t%s\t%s\n", h.ID(), h.TargetKind(), h.Name())
			}
			return tw.Flush()
		},
	}
}
