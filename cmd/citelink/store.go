// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package main

import (
	"encoding/json"
	"fmt"
	"io"
	"os"
	"strings"

	"github.com/spf13/cobra"

	"github.com/pdiddy/citelink/internal/store"
)

var storeCmd = &cobra.Command{
	Use:   "store",
	Short: "Inspect and manage the local index store",
	Long: `Store manages the SQLite database of built indexes (store.dir, default
.citelink/). Use subcommands to list documents, export one, or delete one.`,
}

// --- list subcommand ---

var storeListCmd = &cobra.Command{
	Use:   "list",
	Short: "List stored documents",
	Args:  cobra.NoArgs,
	RunE:  runStoreList,
}

func runStoreList(cmd *cobra.Command, args []string) error {
	st, err := store.Open(cfg.Store)
	if err != nil {
		return err
	}
	defer st.Close()

	docs, err := st.Documents(cmd.Context())
	if err != nil {
		return err
	}

	w := cmd.OutOrStdout()
	if jsonOutput, _ := cmd.Flags().GetBool("json"); jsonOutput {
		enc := json.NewEncoder(w)
		enc.SetIndent("", "  ")
		return enc.Encode(docs)
	}

	if len(docs) == 0 {
		fmt.Fprintln(w, "No documents stored.")
		return nil
	}
	fmt.Fprintf(w, "%-30s  %-5s  %-9s  %-4s  %-10s  %s\n",
		"Document", "Pages", "Locations", "Refs", "Source", "Indexed")
	fmt.Fprintln(w, strings.Repeat("-", 90))
	for _, d := range docs {
		source := string(d.RefsSource)
		if source == "" {
			source = "-"
		}
		fmt.Fprintf(w, "%-30s  %-5d  %-9d  %-4d  %-10s  %s\n",
			d.ID, d.PageCount, d.Locations, d.References, source, d.IndexedAt)
	}
	return nil
}

// --- export subcommand ---

var storeExportCmd = &cobra.Command{
	Use:   "export <doc-id>",
	Short: "Export a stored document's outline and references",
	Long: `Export writes a stored document's summary, navigation outline and parsed
references as YAML or JSON, to stdout or to --out.`,
	Args: cobra.ExactArgs(1),
	RunE: runStoreExport,
}

func runStoreExport(cmd *cobra.Command, args []string) error {
	format, _ := cmd.Flags().GetString("format")
	outPath, _ := cmd.Flags().GetString("out")

	st, err := store.Open(cfg.Store)
	if err != nil {
		return err
	}
	defer st.Close()

	var w io.Writer = cmd.OutOrStdout()
	if outPath != "" {
		f, err := os.Create(outPath)
		if err != nil {
			return fmt.Errorf("creating %s: %w", outPath, err)
		}
		defer f.Close()
		w = f
	}

	switch format {
	case "yaml", "":
		err = st.ExportYAML(cmd.Context(), args[0], w)
	case "json":
		err = st.ExportJSON(cmd.Context(), args[0], w)
	default:
		return fmt.Errorf("unsupported format %q: use yaml or json", format)
	}
	if err != nil {
		return err
	}
	if outPath != "" {
		fmt.Fprintf(cmd.ErrOrStderr(), "Exported %s to %s\n", args[0], outPath)
	}
	return nil
}

// --- delete subcommand ---

var storeDeleteCmd = &cobra.Command{
	Use:   "delete <doc-id>",
	Short: "Remove a document from the store",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		st, err := store.Open(cfg.Store)
		if err != nil {
			return err
		}
		defer st.Close()
		if err := st.DeleteDocument(cmd.Context(), args[0]); err != nil {
			return err
		}
		fmt.Fprintf(cmd.OutOrStdout(), "deleted %s\n", args[0])
		return nil
	},
}

func init() {
	storeListCmd.Flags().Bool("json", false, "output as JSON")
	storeExportCmd.Flags().String("format", "yaml", "export format: yaml or json")
	storeExportCmd.Flags().String("out", "", "write to a file instead of stdout")

	storeCmd.AddCommand(storeListCmd)
	storeCmd.AddCommand(storeExportCmd)
	storeCmd.AddCommand(storeDeleteCmd)

	rootCmd.AddCommand(storeCmd)
}
