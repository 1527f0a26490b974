// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

// Package search looks up resolved citation queries in external scholarly
// indexes and returns ranked, deduplicated candidate works.
package search

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"sort"
	"strings"
	"sync"
	"unicode"

	"github.com/muesli/reflow/wordwrap"

	"github.com/pdiddy/citelink/pkg/types"
)

// Backend looks a query up in one scholarly index.
type Backend interface {
	Name() string
	Lookup(ctx context.Context, query string, cfg types.SearchConfig) ([]types.CitedWork, error)
}

// Output holds the merged results and per-backend failures.
type Output struct {
	Query         string            `json:"query" yaml:"query"`
	Works         []types.CitedWork `json:"works" yaml:"works"`
	DupsRemoved   int               `json:"dups_removed" yaml:"dups_removed"`
	BackendErrors []string          `json:"backend_errors,omitempty" yaml:"backend_errors,omitempty"`
}

// Lookup sends query to every backend concurrently, merges duplicate works,
// ranks by score and keeps the top cfg.MaxResults. A failing backend is
// reported on w and in Output.BackendErrors; Lookup fails only when every
// backend does.
func Lookup(ctx context.Context, query string, backends []Backend, cfg types.SearchConfig, w io.Writer) (Output, error) {
	query = strings.TrimSpace(query)
	if query == "" {
		return Output{}, errors.New("query is empty")
	}
	if len(backends) == 0 {
		return Output{}, errors.New("no lookup backends configured")
	}

	type backendResult struct {
		name  string
		works []types.CitedWork
		err   error
	}

	ch := make(chan backendResult, len(backends))
	var wg sync.WaitGroup
	for _, b := range backends {
		wg.Add(1)
		go func(b Backend) {
			defer wg.Done()
			works, err := b.Lookup(ctx, query, cfg)
			ch <- backendResult{name: b.Name(), works: works, err: err}
		}(b)
	}
	go func() {
		wg.Wait()
		close(ch)
	}()

	out := Output{Query: query}
	var all []types.CitedWork
	for br := range ch {
		if br.err != nil {
			out.BackendErrors = append(out.BackendErrors, fmt.Sprintf("%s: %v", br.name, br.err))
			fmt.Fprintf(w, "warning: backend %s failed: %v\n", br.name, br.err)
			continue
		}
		all = append(all, br.works...)
	}
	if len(out.BackendErrors) == len(backends) {
		return out, fmt.Errorf("all lookup backends failed: %s", strings.Join(out.BackendErrors, "; "))
	}

	out.Works, out.DupsRemoved = deduplicate(all)
	sort.SliceStable(out.Works, func(i, j int) bool {
		return out.Works[i].Score > out.Works[j].Score
	})
	if cfg.MaxResults > 0 && len(out.Works) > cfg.MaxResults {
		out.Works = out.Works[:cfg.MaxResults]
	}
	return out, nil
}

// deduplicate merges works sharing an identifier or normalized title.
func deduplicate(works []types.CitedWork) ([]types.CitedWork, int) {
	seen := make(map[string]int)
	var out []types.CitedWork
	removed := 0

	for _, w := range works {
		keys := dedupKeys(w)
		merged := false
		for _, k := range keys {
			if i, ok := seen[k]; ok {
				mergeInto(&out[i], w)
				removed++
				merged = true
				break
			}
		}
		if merged {
			continue
		}
		i := len(out)
		out = append(out, w)
		for _, k := range keys {
			seen[k] = i
		}
	}
	return out, removed
}

func dedupKeys(w types.CitedWork) []string {
	var keys []string
	if w.Identifier != "" {
		keys = append(keys, "id:"+strings.ToLower(w.Identifier))
	}
	if t := normalizeTitle(w.Title); t != "" {
		keys = append(keys, "title:"+t)
	}
	return keys
}

// mergeInto fills empty fields of dst from src and keeps the higher score.
func mergeInto(dst *types.CitedWork, src types.CitedWork) {
	if dst.Title == "" {
		dst.Title = src.Title
	}
	if len(dst.Authors) == 0 {
		dst.Authors = src.Authors
	}
	if dst.Year == 0 {
		dst.Year = src.Year
	}
	if dst.Venue == "" {
		dst.Venue = src.Venue
	}
	if dst.URL == "" {
		dst.URL = src.URL
	}
	if src.Score > dst.Score {
		dst.Score = src.Score
	}
	if !strings.Contains(dst.Source, src.Source) {
		dst.Source += "," + src.Source
	}
}

// normalizeTitle lower-cases a title and drops punctuation.
func normalizeTitle(title string) string {
	var b strings.Builder
	for _, r := range strings.ToLower(title) {
		if unicode.IsLetter(r) || unicode.IsDigit(r) || unicode.IsSpace(r) {
			b.WriteRune(r)
		}
	}
	return strings.Join(strings.Fields(b.String()), " ")
}

// positionScore maps a result's rank to a score in [0.1, 1.0].
func positionScore(i, total int) float64 {
	if total <= 1 {
		return 1.0
	}
	return 1.0 - float64(i)/float64(total-1)*0.9
}

// FormatText writes works as a numbered list, titles wrapped at width.
func FormatText(out Output, w io.Writer, width int) {
	if len(out.Works) == 0 {
		fmt.Fprintf(w, "No works found for %q.\n", out.Query)
		return
	}
	if width <= 0 {
		width = 80
	}

	fmt.Fprintf(w, "Results for %q\n\n", out.Query)
	for i, work := range out.Works {
		prefix := fmt.Sprintf("%2d. ", i+1)
		indent := strings.Repeat(" ", len(prefix))
		title := wordwrap.String(work.Title, width-len(prefix))
		fmt.Fprintf(w, "%s%s\n", prefix, strings.ReplaceAll(title, "\n", "\n"+indent))

		meta := formatAuthors(work.Authors)
		if work.Year > 0 {
			meta = strings.TrimSpace(fmt.Sprintf("%s (%d)", meta, work.Year))
		}
		if work.Venue != "" {
			meta = strings.TrimSpace(meta + " " + work.Venue)
		}
		if meta != "" {
			fmt.Fprintf(w, "%s%s\n", indent, meta)
		}
		fmt.Fprintf(w, "%s%s  [%s, %.2f]\n", indent, work.Identifier, work.Source, work.Score)
	}

	fmt.Fprintf(w, "\n%d works", len(out.Works))
	if out.DupsRemoved > 0 {
		fmt.Fprintf(w, " (%d duplicates removed)", out.DupsRemoved)
	}
	fmt.Fprintln(w)
}

// FormatJSON writes the output as indented JSON.
func FormatJSON(out Output, w io.Writer) error {
	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")
	return enc.Encode(out)
}

func formatAuthors(authors []string) string {
	switch len(authors) {
	case 0:
		return ""
	case 1:
		return authors[0]
	case 2:
		return authors[0] + " and " + authors[1]
	default:
		return authors[0] + " et al."
	}
}
