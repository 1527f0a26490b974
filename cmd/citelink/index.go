// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package main

import (
	"encoding/json"
	"fmt"
	"io"

	"github.com/spf13/cobra"
	"go.yaml.in/yaml/v3"

	"github.com/pdiddy/citelink/internal/index"
)

var indexCmd = &cobra.Command{
	Use:   "index <pdf>",
	Short: "Build and store the navigation index of a PDF",
	Long: `Index scans every page of a PDF for captions, section headings and the
bibliography, and saves the result in the local store. Reference lists from
the backend service (backend.base_url) take precedence over heuristic parsing.

Pages that fail to extract are reported and skipped; the build continues.`,
	Args: cobra.ExactArgs(1),
	RunE: runIndex,
}

func runIndex(cmd *cobra.Command, args []string) error {
	noStore, _ := cmd.Flags().GetBool("no-store")
	docID := documentID(cmd, args[0])

	doc, st, b, err := openWorkspace(args[0], !noStore)
	if err != nil {
		return err
	}
	defer doc.Close()
	if st != nil {
		defer st.Close()
	}

	idx, err := buildIndex(cmd.Context(), b, st, docID)
	if err != nil {
		return err
	}

	w := cmd.OutOrStdout()
	printSummary(w, idx)
	if st != nil {
		fmt.Fprintf(w, "saved to %s\n", st.Dir())
	}
	return nil
}

func printSummary(w io.Writer, idx *index.DocumentIndex) {
	state := idx.ReferencesState()
	fmt.Fprintf(w, "document:   %s (load %s)\n", idx.DocumentID, idx.LoadID)
	fmt.Fprintf(w, "pages:      %d\n", idx.PageCount)
	fmt.Fprintf(w, "locations:  %d\n", len(idx.Locations()))
	if state.Detected() {
		fmt.Fprintf(w, "references: %d from page %d (%s)\n", len(idx.References()), *state.StartPage, state.Source)
	} else {
		fmt.Fprintf(w, "references: none detected\n")
	}
	if spans := idx.AllCitationSpans(); len(spans) > 0 {
		fmt.Fprintf(w, "citations:  %d backend spans\n", len(spans))
	}
	for _, pe := range idx.PageErrors() {
		fmt.Fprintf(w, "warning: %v\n", pe)
	}
}

// writeFormatted encodes v as yaml or json.
func writeFormatted(w io.Writer, format string, v any) error {
	switch format {
	case "yaml", "":
		enc := yaml.NewEncoder(w)
		enc.SetIndent(2)
		if err := enc.Encode(v); err != nil {
			return err
		}
		return enc.Close()
	case "json":
		enc := json.NewEncoder(w)
		enc.SetIndent("", "  ")
		return enc.Encode(v)
	default:
		return fmt.Errorf("unsupported format %q: use yaml or json", format)
	}
}

func init() {
	indexCmd.Flags().String("doc", "", "document id (default: derived from the file name)")
	indexCmd.Flags().Bool("no-store", false, "build without reading or writing the local store")

	rootCmd.AddCommand(indexCmd)
}
