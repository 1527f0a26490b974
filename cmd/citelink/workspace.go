// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package main

import (
	"context"
	"fmt"
	"log/slog"
	"net/http"
	"path/filepath"
	"regexp"
	"strings"

	"github.com/spf13/cobra"

	"github.com/pdiddy/citelink/internal/backend"
	"github.com/pdiddy/citelink/internal/index"
	"github.com/pdiddy/citelink/internal/layout"
	"github.com/pdiddy/citelink/internal/pdftext"
	"github.com/pdiddy/citelink/internal/search"
	"github.com/pdiddy/citelink/internal/store"
	"github.com/pdiddy/citelink/pkg/types"
)

var docIDUnsafe = regexp.MustCompile(`[^A-Za-z0-9._-]+`)

// documentID returns the --doc flag, or an id derived from the PDF's file
// name.
func documentID(cmd *cobra.Command, pdfPath string) string {
	if id, _ := cmd.Flags().GetString("doc"); id != "" {
		return id
	}
	base := strings.TrimSuffix(filepath.Base(pdfPath), filepath.Ext(pdfPath))
	return strings.Trim(docIDUnsafe.ReplaceAllString(base, "-"), "-")
}

// openWorkspace opens the PDF and the store and returns a builder wired to
// both. The caller closes the returned document and store.
func openWorkspace(pdfPath string, useStore bool) (*pdftext.Document, *store.Store, *index.Builder, error) {
	doc, err := pdftext.Open(pdfPath)
	if err != nil {
		return nil, nil, nil, err
	}
	doc.Lines = layout.OptionsFrom(cfg.Index)
	doc.Logger = slog.Default()

	var st *store.Store
	if useStore {
		st, err = store.Open(cfg.Store)
		if err != nil {
			doc.Close()
			return nil, nil, nil, err
		}
	}

	b := &index.Builder{
		Source: doc,
		Config: cfg.Index,
		Logger: slog.Default(),
	}
	if p := providers(st); len(p) > 0 {
		b.Provider = p
	}
	return doc, st, b, nil
}

// providers lists the reference providers in precedence order: the local
// cache of earlier backend responses, then the backend service.
func providers(st *store.Store) backend.Chain {
	var chain backend.Chain
	if st != nil {
		chain = append(chain, st)
	}
	if c := backend.New(cfg.Backend); c != nil {
		chain = append(chain, c)
	}
	return chain
}

// buildIndex loads pdfPath through a session and, when st is non-nil,
// saves the result.
func buildIndex(ctx context.Context, b *index.Builder, st *store.Store, docID string) (*index.DocumentIndex, error) {
	idx, err := index.NewSession(b).Load(ctx, docID)
	if err != nil {
		return nil, fmt.Errorf("indexing %s: %w", docID, err)
	}
	if st != nil {
		if err := st.SaveIndex(ctx, idx); err != nil {
			return nil, fmt.Errorf("saving %s: %w", docID, err)
		}
	}
	return idx, nil
}

// searchBackends returns the lookup backends enabled in cfg.Search, in the
// configured order. An empty list enables all of them.
func searchBackends(sc types.SearchConfig) ([]search.Backend, error) {
	client := &http.Client{Timeout: sc.Timeout}
	all := map[string]search.Backend{
		"semantic_scholar": &search.SemanticScholarBackend{Client: client, APIKey: sc.SemanticScholarAPIKey},
		"openalex":         &search.OpenAlexBackend{Client: client, Email: sc.OpenAlexEmail},
	}
	names := sc.Backends
	if len(names) == 0 {
		names = []string{"semantic_scholar", "openalex"}
	}

	var out []search.Backend
	for _, n := range names {
		b, ok := all[strings.TrimSpace(n)]
		if !ok {
			return nil, fmt.Errorf("unknown search backend %q: use semantic_scholar or openalex", n)
		}
		out = append(out, b)
	}
	return out, nil
}
