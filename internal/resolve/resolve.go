// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

// Package resolve turns a clicked or selected span of page text into an
// action for the viewer: navigate to a figure, table or section, search for
// a cited work, or look up a bibliography entry.
//
// Misses are not errors. A lookup that exhausts its fallbacks, or a search
// query too thin to be useful, comes back as ok == false or a noop action
// and is logged at debug level.
package resolve

import (
	"log/slog"
	"sort"

	"github.com/pdiddy/citelink/internal/index"
	"github.com/pdiddy/citelink/internal/pattern"
	"github.com/pdiddy/citelink/pkg/types"
)

// RenderedText exposes the lines of pages the viewer currently has
// rendered. It backs the live-search fallback when the index misses.
type RenderedText interface {
	RenderedPages() []int
	RenderedLines(page int) []types.Line
}

// SelectionContext is the text of the line holding the user's selection and
// the byte offset of the selection within it.
type SelectionContext struct {
	LineText string
	Offset   int
}

// Resolver answers click and lookup requests against one document index.
// Index and Rendered may be nil; the resolver then degrades to the tiers
// that remain.
type Resolver struct {
	Index    *index.DocumentIndex
	Rendered RenderedText
	Logger   *slog.Logger
}

func (r *Resolver) logger() *slog.Logger {
	if r.Logger != nil {
		return r.Logger
	}
	return slog.Default()
}

// OnTextClicked is the host entry point. It classifies the clicked fragment
// and resolves it to a navigation, search or reference-lookup action.
func (r *Resolver) OnTextClicked(fragment string, page int, sel *SelectionContext) types.ResolverAction {
	line, offset := "", -1
	if sel != nil {
		line, offset = sel.LineText, sel.Offset
	}
	c := r.ClassifyAt(fragment, page, line, offset)

	switch c.Kind {
	case KindStandaloneCitation:
		var (
			query string
			ok    bool
		)
		if c.Backend != nil && len(c.Backend.ReferenceIDs) > 0 {
			query, ok = r.accept(r.numericQuery(c.Backend.ReferenceIDs, sel))
		}
		if !ok {
			query, ok = r.ResolveSearchQuery(c.Span.Text, sel)
		}
		if !ok {
			return types.Noop()
		}
		return types.ResolverAction{Kind: types.ActionSearch, Query: query, ReferenceNumber: c.ReferenceNumber}

	case KindFigureReference:
		loc, ok := r.ResolveNavigationTarget(c.Span.CanonicalRef)
		if !ok {
			return types.Noop()
		}
		return types.ResolverAction{Kind: types.ActionNavigate, Location: &loc}

	case KindReferenceEntry:
		return types.ResolverAction{Kind: types.ActionReferenceLookup, ReferenceNumber: c.ReferenceNumber}
	}
	return types.Noop()
}

// ResolveNavigationTarget finds where a figure, table, algorithm, equation
// or section reference points. It tries the index, then the Arabic alias of
// a Roman-numeral ID, then a caption search over the rendered pages. The
// first hit at each tier wins.
func (r *Resolver) ResolveNavigationTarget(figRef string) (types.Location, bool) {
	id := pattern.NormalizeID(figRef)
	if id == "" {
		return types.Location{}, false
	}
	alias, hasAlias := "", false
	if pattern.ContainsRoman(id) {
		alias, hasAlias = pattern.ArabicAlias(id)
	}

	if r.Index != nil {
		if loc, ok := r.Index.Lookup(id); ok {
			return loc.Location(), true
		}
		if hasAlias {
			if loc, ok := r.Index.Lookup(alias); ok {
				return loc.Location(), true
			}
		}
	}

	if loc, ok := r.liveSearch(id, alias); ok {
		r.logger().Debug("navigation resolved by live search", "ref", figRef, "page", loc.PageNumber)
		return loc, true
	}

	r.logger().Debug("navigation target not found", "ref", figRef, "id", id)
	return types.Location{}, false
}

// liveSearch scans the rendered pages, in page order, for a caption or
// heading line whose normalized ID matches id or alias.
func (r *Resolver) liveSearch(id, alias string) (types.Location, bool) {
	if r.Rendered == nil {
		return types.Location{}, false
	}
	matches := func(candidate string) bool {
		if candidate == "" {
			return false
		}
		if candidate == id || (alias != "" && candidate == alias) {
			return true
		}
		a, ok := pattern.ArabicAlias(candidate)
		return ok && (a == id || a == alias)
	}

	pages := append([]int(nil), r.Rendered.RenderedPages()...)
	sort.Ints(pages)
	for _, page := range pages {
		for _, line := range r.Rendered.RenderedLines(page) {
			if c, ok := pattern.MatchCaption(line.Text); ok && matches(pattern.NormalizeID(c.Span.CanonicalRef)) {
				return types.Location{PageNumber: page, Y: line.Y}, true
			}
			if pattern.KindOf(id) != types.MatchSection {
				continue
			}
			if h, ok := pattern.MatchSectionHeader(line.Text); ok && matches(pattern.SectionID(h)) {
				return types.Location{PageNumber: page, Y: line.Y}, true
			}
		}
	}
	return types.Location{}, false
}
