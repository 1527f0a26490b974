// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package main

import (
	"encoding/json"
	"fmt"
	"io"
	"strings"

	"github.com/spf13/cobra"

	"github.com/pdiddy/citelink/internal/pattern"
	"github.com/pdiddy/citelink/internal/store"
)

var refsCmd = &cobra.Command{
	Use:   "refs",
	Short: "List and search stored bibliography entries",
}

// --- list subcommand ---

var refsListCmd = &cobra.Command{
	Use:   "list <doc-id>",
	Short: "List the parsed references of a stored document",
	Args:  cobra.ExactArgs(1),
	RunE:  runRefsList,
}

func runRefsList(cmd *cobra.Command, args []string) error {
	st, err := store.Open(cfg.Store)
	if err != nil {
		return err
	}
	defer st.Close()

	if _, err := st.Document(cmd.Context(), args[0]); err != nil {
		return err
	}
	refs, err := st.References(cmd.Context(), args[0])
	if err != nil {
		return err
	}

	hits := make([]store.ReferenceHit, len(refs))
	for i, r := range refs {
		hits[i] = store.ReferenceHit{DocumentID: args[0], ParsedReference: r}
	}
	jsonOutput, _ := cmd.Flags().GetBool("json")
	return formatReferences(cmd.OutOrStdout(), hits, jsonOutput)
}

// --- search subcommand ---

var refsSearchCmd = &cobra.Command{
	Use:   "search <query...>",
	Short: "Full-text search over stored references",
	Long: `Search matches words against the text, title and author segments of every
stored reference. Use --doc to restrict the search to one document.`,
	Args: cobra.MinimumNArgs(1),
	RunE: runRefsSearch,
}

func runRefsSearch(cmd *cobra.Command, args []string) error {
	docID, _ := cmd.Flags().GetString("doc")
	limit, _ := cmd.Flags().GetInt("limit")

	st, err := store.Open(cfg.Store)
	if err != nil {
		return err
	}
	defer st.Close()

	hits, err := st.SearchReferences(cmd.Context(), strings.Join(args, " "), docID, limit)
	if err != nil {
		return err
	}
	jsonOutput, _ := cmd.Flags().GetBool("json")
	return formatReferences(cmd.OutOrStdout(), hits, jsonOutput)
}

func formatReferences(w io.Writer, hits []store.ReferenceHit, jsonOutput bool) error {
	if jsonOutput {
		enc := json.NewEncoder(w)
		enc.SetIndent("", "  ")
		return enc.Encode(hits)
	}

	if len(hits) == 0 {
		fmt.Fprintln(w, "No references found.")
		return nil
	}

	fmt.Fprintf(w, "%-20s  %-5s  %-4s  %s\n", "Document", "Num", "Page", "Reference")
	fmt.Fprintln(w, strings.Repeat("-", 100))
	for _, h := range hits {
		fmt.Fprintf(w, "%-20s  %-5d  %-4d  %s\n",
			pattern.Truncate(h.DocumentID, 20), h.Number, h.PageNumber, pattern.Truncate(h.RawText, 64))
	}
	fmt.Fprintf(w, "\n%d references\n", len(hits))
	return nil
}

func init() {
	refsCmd.PersistentFlags().Bool("json", false, "output as JSON")
	refsSearchCmd.Flags().String("doc", "", "restrict the search to one document id")
	refsSearchCmd.Flags().Int("limit", 20, "maximum number of results")

	refsCmd.AddCommand(refsListCmd)
	refsCmd.AddCommand(refsSearchCmd)

	rootCmd.AddCommand(refsCmd)
}
