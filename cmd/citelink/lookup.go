// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package main

import (
	"strings"

	"github.com/spf13/cobra"

	"github.com/pdiddy/citelink/internal/search"
)

var lookupCmd = &cobra.Command{
	Use:   "lookup <query...>",
	Short: "Look up a citation query on scholarly search APIs",
	Long: `Lookup sends a query, typically one produced by resolve, to Semantic Scholar
and OpenAlex in parallel. Results are deduplicated by identifier and title
and ranked by how highly each backend placed them.

Backends are chosen with search.backends in the config file. API keys are
read from .secrets/ (semantic-scholar-api-key, openalex-email).`,
	Args: cobra.MinimumNArgs(1),
	RunE: runLookup,
}

func runLookup(cmd *cobra.Command, args []string) error {
	if n, _ := cmd.Flags().GetInt("max-results"); n > 0 {
		cfg.Search.MaxResults = n
	}
	if names, _ := cmd.Flags().GetStringSlice("backend"); len(names) > 0 {
		cfg.Search.Backends = names
	}

	backends, err := searchBackends(cfg.Search)
	if err != nil {
		return err
	}

	out, err := search.Lookup(cmd.Context(), strings.Join(args, " "), backends, cfg.Search, cmd.ErrOrStderr())
	if err != nil {
		return err
	}

	if jsonOutput, _ := cmd.Flags().GetBool("json"); jsonOutput {
		return search.FormatJSON(out, cmd.OutOrStdout())
	}
	width, _ := cmd.Flags().GetInt("width")
	search.FormatText(out, cmd.OutOrStdout(), width)
	return nil
}

func init() {
	lookupCmd.Flags().Int("max-results", 0, "results per backend (default: search.max_results)")
	lookupCmd.Flags().StringSlice("backend", nil, "backends to query: semantic_scholar, openalex")
	lookupCmd.Flags().Bool("json", false, "output results as JSON")
	lookupCmd.Flags().Int("width", 80, "wrap width for text output")

	rootCmd.AddCommand(lookupCmd)
}
