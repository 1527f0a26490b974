// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package main

import (
	"errors"
	"os"

	"github.com/spf13/cobra"

	"github.com/pdiddy/citelink/internal/index"
	"github.com/pdiddy/citelink/internal/store"
)

var outlineCmd = &cobra.Command{
	Use:   "outline <pdf|doc-id>",
	Short: "Print the navigation outline of a document",
	Long: `Outline prints sections, figures, tables, equations and references grouped
for a navigation sidebar, each sorted by page and position.

The argument is either a PDF, which is indexed first, or the id of a document
already in the store.`,
	Args: cobra.ExactArgs(1),
	RunE: runOutline,
}

func runOutline(cmd *cobra.Command, args []string) error {
	format, _ := cmd.Flags().GetString("format")
	ctx := cmd.Context()

	var idx *index.DocumentIndex
	if isFile(args[0]) {
		doc, st, b, err := openWorkspace(args[0], true)
		if err != nil {
			return err
		}
		defer doc.Close()
		defer st.Close()
		if idx, err = buildIndex(ctx, b, st, documentID(cmd, args[0])); err != nil {
			return err
		}
	} else {
		st, err := store.Open(cfg.Store)
		if err != nil {
			return err
		}
		defer st.Close()
		if idx, err = st.LoadIndex(ctx, args[0]); err != nil {
			if errors.Is(err, store.ErrNotFound) {
				return errors.New(args[0] + " is neither a file nor a stored document")
			}
			return err
		}
	}

	return writeFormatted(cmd.OutOrStdout(), format, idx.Outline())
}

func isFile(path string) bool {
	info, err := os.Stat(path)
	return err == nil && !info.IsDir()
}

func init() {
	outlineCmd.Flags().String("doc", "", "document id when indexing a PDF")
	outlineCmd.Flags().String("format", "yaml", "output format: yaml or json")

	rootCmd.AddCommand(outlineCmd)
}
