// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package main

import (
	"errors"
	"fmt"
	"log/slog"
	"strings"

	"github.com/spf13/cobra"

	"github.com/pdiddy/citelink/internal/pdftext"
	"github.com/pdiddy/citelink/internal/resolve"
	"github.com/pdiddy/citelink/internal/search"
	"github.com/pdiddy/citelink/pkg/types"
)

var resolveCmd = &cobra.Command{
	Use:   "resolve <pdf>",
	Short: "Resolve clicked text the way the viewer would",
	Long: `Resolve simulates a click on --text at --page and prints the resulting
action: navigate (with the target page and position), search (with the
query), reference_lookup (with the entry number) or noop.

The line containing the click is taken from --line, or found on the page's
text layer when omitted. With --lookup, search actions are sent to the
configured scholarly search backends.`,
	Args: cobra.ExactArgs(1),
	RunE: runResolve,
}

func runResolve(cmd *cobra.Command, args []string) error {
	text, _ := cmd.Flags().GetString("text")
	page, _ := cmd.Flags().GetInt("page")
	lineText, _ := cmd.Flags().GetString("line")
	offset, _ := cmd.Flags().GetInt("offset")
	rendered, _ := cmd.Flags().GetIntSlice("rendered")
	lookup, _ := cmd.Flags().GetBool("lookup")
	format, _ := cmd.Flags().GetString("format")
	noStore, _ := cmd.Flags().GetBool("no-store")

	if strings.TrimSpace(text) == "" || page < 1 {
		return errors.New("--text and --page are required")
	}

	doc, st, b, err := openWorkspace(args[0], !noStore)
	if err != nil {
		return err
	}
	defer doc.Close()
	if st != nil {
		defer st.Close()
	}

	ctx := cmd.Context()
	idx, err := buildIndex(ctx, b, st, documentID(cmd, args[0]))
	if err != nil {
		return err
	}

	if len(rendered) == 0 {
		rendered = []int{page}
	}
	doc.SetRendered(rendered...)

	sel := selection(doc, page, text, lineText, offset)
	r := &resolve.Resolver{Index: idx, Rendered: doc, Logger: slog.Default()}
	action := r.OnTextClicked(text, page, sel)

	w := cmd.OutOrStdout()
	if err := writeFormatted(w, format, action); err != nil {
		return err
	}

	if lookup && action.Kind == types.ActionSearch {
		backends, err := searchBackends(cfg.Search)
		if err != nil {
			return err
		}
		out, err := search.Lookup(ctx, action.Query, backends, cfg.Search, cmd.ErrOrStderr())
		if err != nil {
			return err
		}
		fmt.Fprintln(w)
		search.FormatText(out, w, 80)
	}
	return nil
}

// selection returns the context for a click on text. An explicit line wins;
// otherwise the first line on page containing text is used.
func selection(doc *pdftext.Document, page int, text, lineText string, offset int) *resolve.SelectionContext {
	if lineText != "" {
		if offset < 0 {
			offset = max(strings.Index(lineText, text), 0)
		}
		return &resolve.SelectionContext{LineText: lineText, Offset: offset}
	}
	for _, l := range doc.RenderedLines(page) {
		if i := strings.Index(l.Text, text); i >= 0 {
			return &resolve.SelectionContext{LineText: l.Text, Offset: i}
		}
	}
	return nil
}

func init() {
	resolveCmd.Flags().String("text", "", "clicked fragment text, e.g. \"[12]\" or \"Fig. 3\"")
	resolveCmd.Flags().Int("page", 0, "1-based page of the click")
	resolveCmd.Flags().String("line", "", "full text of the clicked line (default: looked up on the page)")
	resolveCmd.Flags().Int("offset", -1, "byte offset of the click within --line (default: first occurrence of --text)")
	resolveCmd.Flags().IntSlice("rendered", nil, "pages the viewer has rendered, for caption search (default: --page)")
	resolveCmd.Flags().Bool("lookup", false, "run search actions against the scholarly search backends")
	resolveCmd.Flags().String("format", "yaml", "action output format: yaml or json")
	resolveCmd.Flags().String("doc", "", "document id (default: derived from the file name)")
	resolveCmd.Flags().Bool("no-store", false, "build without reading or writing the local store")

	rootCmd.AddCommand(resolveCmd)
}
