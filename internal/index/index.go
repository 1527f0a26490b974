// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

// Package index builds the per-document lookup structures: a normalized-ID
// map of figures, tables, algorithms, equations and sections, and the parsed
// bibliography with its detected start page.
//
// A DocumentIndex is built once per document load and never mutated after it
// is published; reloading builds a fresh one.
package index

import (
	"errors"
	"fmt"
	"sort"

	"github.com/pdiddy/citelink/internal/pattern"
	"github.com/pdiddy/citelink/pkg/types"
)

// ErrStaleIndex is returned when a build is overtaken by a newer load of the
// session. Callers discard the result silently.
var ErrStaleIndex = errors.New("index build superseded by a newer load")

// PageScanError records a failure to extract or match one page. It never
// aborts a build.
type PageScanError struct {
	Page int
	Err  error
}

func (e *PageScanError) Error() string {
	return fmt.Sprintf("scanning page %d: %v", e.Page, e.Err)
}

func (e *PageScanError) Unwrap() error { return e.Err }

// DocumentIndex holds the lookup structures for one loaded document.
type DocumentIndex struct {
	// DocumentID identifies the document in the backend service and store.
	DocumentID string

	// LoadID is unique per build and correlates log lines.
	LoadID string

	// Generation is the session generation the index was built for.
	Generation uint64

	// PageCount is the number of pages the build visited.
	PageCount int

	figures map[string]types.FigureLocation
	order   []string

	references   []types.ParsedReference
	refsByNumber map[int]int
	refState     types.ReferencesSectionState

	citationSpans map[int][]types.CitationSpan

	pageErrors []*PageScanError
}

// New returns an empty index for docID.
func New(docID string) *DocumentIndex {
	return &DocumentIndex{
		DocumentID:    docID,
		figures:       make(map[string]types.FigureLocation),
		refsByNumber:  make(map[int]int),
		citationSpans: make(map[int][]types.CitationSpan),
	}
}

// Add inserts loc under its normalized ID unless that ID is already present;
// the first occurrence always wins. A Roman-numeral ID also registers its
// Arabic alias under the same rule. Add reports whether loc was inserted.
// Add must not be called once the index is shared with readers.
func (d *DocumentIndex) Add(loc types.FigureLocation) bool {
	if loc.NormalizedID == "" {
		return false
	}
	if _, exists := d.figures[loc.NormalizedID]; exists {
		return false
	}
	d.figures[loc.NormalizedID] = loc
	d.order = append(d.order, loc.NormalizedID)

	if alias, ok := pattern.ArabicAlias(loc.NormalizedID); ok {
		if _, exists := d.figures[alias]; !exists {
			d.figures[alias] = loc
		}
	}
	return true
}

// Lookup returns the location registered under a normalized ID or alias.
func (d *DocumentIndex) Lookup(normalizedID string) (types.FigureLocation, bool) {
	loc, ok := d.figures[normalizedID]
	return loc, ok
}

// Locations returns every primary entry in insertion order, aliases excluded.
func (d *DocumentIndex) Locations() []types.FigureLocation {
	out := make([]types.FigureLocation, 0, len(d.order))
	for _, id := range d.order {
		out = append(out, d.figures[id])
	}
	return out
}

// SetReferences replaces the reference list and section state wholesale.
// The first entry for a number wins lookups.
func (d *DocumentIndex) SetReferences(refs []types.ParsedReference, state types.ReferencesSectionState) {
	d.references = refs
	d.refState = state
	d.refsByNumber = make(map[int]int, len(refs))
	for i, r := range refs {
		if _, exists := d.refsByNumber[r.Number]; !exists {
			d.refsByNumber[r.Number] = i
		}
	}
}

// Reference returns the parsed entry numbered n.
func (d *DocumentIndex) Reference(n int) (types.ParsedReference, bool) {
	i, ok := d.refsByNumber[n]
	if !ok {
		return types.ParsedReference{}, false
	}
	return d.references[i], true
}

// References returns all parsed entries, including ones outside the valid
// number range.
func (d *DocumentIndex) References() []types.ParsedReference {
	return d.references
}

// ReferencesState returns the detected bibliography start and its source.
func (d *DocumentIndex) ReferencesState() types.ReferencesSectionState {
	return d.refState
}

// InReferences reports whether page lies at or after the detected
// references start page.
func (d *DocumentIndex) InReferences(page int) bool {
	return d.refState.StartPage != nil && page >= *d.refState.StartPage
}

// SetCitationSpans replaces the backend-supplied citation spans.
func (d *DocumentIndex) SetCitationSpans(spans []types.CitationSpan) {
	d.citationSpans = make(map[int][]types.CitationSpan)
	for _, s := range spans {
		d.citationSpans[s.PageNumber] = append(d.citationSpans[s.PageNumber], s)
	}
}

// CitationSpans returns the backend spans on page, nil if the page is not
// covered.
func (d *DocumentIndex) CitationSpans(page int) []types.CitationSpan {
	return d.citationSpans[page]
}

// AllCitationSpans returns every backend span, ordered by page.
func (d *DocumentIndex) AllCitationSpans() []types.CitationSpan {
	pages := make([]int, 0, len(d.citationSpans))
	for p := range d.citationSpans {
		pages = append(pages, p)
	}
	sort.Ints(pages)
	var out []types.CitationSpan
	for _, p := range pages {
		out = append(out, d.citationSpans[p]...)
	}
	return out
}

// PageErrors returns the per-page failures recorded during the build.
func (d *DocumentIndex) PageErrors() []*PageScanError {
	return d.pageErrors
}
