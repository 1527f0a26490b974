// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package index

import (
	"context"
	"fmt"
	"log/slog"

	"github.com/google/uuid"
	"golang.org/x/sync/errgroup"

	"github.com/pdiddy/citelink/internal/layout"
	"github.com/pdiddy/citelink/internal/pattern"
	"github.com/pdiddy/citelink/pkg/types"
)

// maxCaptionLen bounds stored caption text.
const maxCaptionLen = 100

// PageSource is the PDF text-extraction collaborator. Page numbers are
// 1-based. PageFragments may fail for individual pages.
type PageSource interface {
	PageCount(ctx context.Context) (int, error)
	PageFragments(ctx context.Context, page int) ([]types.TextFragment, error)
}

// ReferenceProvider is the backend reference/citation service. A nil result
// with a nil error means the data is absent for the document.
type ReferenceProvider interface {
	ExistingReferences(ctx context.Context, docID string) (*types.ExternalReferences, error)
	ExistingCitationSpans(ctx context.Context, docID string) ([]types.CitationSpan, error)
}

// Builder scans a document page by page and produces a DocumentIndex.
type Builder struct {
	Source PageSource

	// Provider is optional. When it supplies a non-empty reference list,
	// heuristic reference parsing is skipped entirely.
	Provider ReferenceProvider

	Config types.IndexConfig
	Logger *slog.Logger
}

func (b *Builder) logger() *slog.Logger {
	if b.Logger != nil {
		return b.Logger
	}
	return slog.Default()
}

// Build indexes the whole document. It is equivalent to a session build
// that can never be superseded.
func (b *Builder) Build(ctx context.Context, docID string) (*DocumentIndex, error) {
	return b.build(ctx, docID, 0, nil)
}

// build runs one pass over every page in order. current, when non-nil, is
// consulted before each page; once it reports false the partial index is
// discarded and ErrStaleIndex returned.
func (b *Builder) build(ctx context.Context, docID string, gen uint64, current func() bool) (*DocumentIndex, error) {
	cfg := b.Config.WithDefaults()
	idx := New(docID)
	idx.LoadID = uuid.NewString()
	idx.Generation = gen
	log := b.logger().With("doc", docID, "load", idx.LoadID)

	count, err := b.Source.PageCount(ctx)
	if err != nil {
		return nil, fmt.Errorf("counting pages: %w", err)
	}
	idx.PageCount = count

	external, spans := b.external(ctx, docID, log)
	idx.SetCitationSpans(spans)

	opts := layout.OptionsFrom(cfg)
	window := cfg.Prefetch
	if window < 1 {
		window = 1
	}

	pages := make([]Page, 0, count)
	for first := 1; first <= count; first += window {
		last := first + window - 1
		if last > count {
			last = count
		}
		batch, err := b.fetch(ctx, first, last)
		if err != nil {
			return nil, err
		}

		// Insertion follows page order, never fetch completion order.
		for i, fr := range batch {
			n := first + i
			if current != nil && !current() {
				log.Debug("discarding stale index build", "page", n)
				return nil, ErrStaleIndex
			}
			if err := ctx.Err(); err != nil {
				return nil, err
			}
			page := Page{Number: n, Err: fr.err}
			if fr.err != nil {
				scanErr := &PageScanError{Page: n, Err: fr.err}
				idx.pageErrors = append(idx.pageErrors, scanErr)
				log.Warn("page scan failed", "page", n, "error", fr.err)
				pages = append(pages, page)
				continue
			}
			page.Lines = layout.Aggregate(fr.fragments, opts)
			indexPage(idx, page)
			pages = append(pages, page)
		}
	}

	if current != nil && !current() {
		return nil, ErrStaleIndex
	}

	if external.Usable() {
		start := external.StartPage
		idx.SetReferences(external.Entries, types.ReferencesSectionState{
			StartPage: &start,
			Source:    types.SourceExternal,
		})
		log.Info("using backend references", "entries", len(external.Entries), "start_page", start)
	} else if start, ok := DetectReferencesSection(pages, cfg.ReferencesScanPages); ok {
		refs := ParseReferenceEntries(pages, start)
		idx.SetReferences(refs, types.ReferencesSectionState{
			StartPage: &start,
			Source:    types.SourceHeuristic,
		})
		log.Info("parsed references", "entries", len(refs), "start_page", start)
	} else {
		log.Info("no references section found")
	}

	log.Info("index built",
		"pages", count,
		"locations", len(idx.order),
		"page_errors", len(idx.pageErrors))
	return idx, nil
}

// external fetches backend data. Failures degrade to "absent".
func (b *Builder) external(ctx context.Context, docID string, log *slog.Logger) (*types.ExternalReferences, []types.CitationSpan) {
	if b.Provider == nil {
		return nil, nil
	}
	refs, err := b.Provider.ExistingReferences(ctx, docID)
	if err != nil {
		log.Warn("backend references unavailable", "error", err)
		refs = nil
	}
	spans, err := b.Provider.ExistingCitationSpans(ctx, docID)
	if err != nil {
		log.Warn("backend citation spans unavailable", "error", err)
		spans = nil
	}
	return refs, spans
}

type fetchResult struct {
	fragments []types.TextFragment
	err       error
}

// fetch extracts pages first..last concurrently. Per-page failures are kept
// in the result; only context cancellation aborts.
func (b *Builder) fetch(ctx context.Context, first, last int) ([]fetchResult, error) {
	results := make([]fetchResult, last-first+1)
	if len(results) == 1 {
		fr, err := b.Source.PageFragments(ctx, first)
		results[0] = fetchResult{fragments: fr, err: err}
		return results, ctx.Err()
	}

	g, gctx := errgroup.WithContext(ctx)
	for i := range results {
		n := first + i
		g.Go(func() error {
			fr, err := b.Source.PageFragments(gctx, n)
			results[n-first] = fetchResult{fragments: fr, err: err}
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return nil, err
	}
	return results, ctx.Err()
}

// indexPage registers caption and section-heading entries for one page,
// in line order.
func indexPage(idx *DocumentIndex, p Page) {
	for _, line := range p.Lines {
		if c, ok := pattern.MatchCaption(line.Text); ok {
			caption := c.Title
			if caption == "" {
				caption = c.Span.Text
			}
			idx.Add(types.FigureLocation{
				Type:         c.Span.Kind,
				RawID:        c.Span.CanonicalRef,
				NormalizedID: pattern.NormalizeID(c.Span.CanonicalRef),
				PageNumber:   p.Number,
				Y:            line.Y,
				Caption:      pattern.Truncate(caption, maxCaptionLen),
			})
		}
		if h, ok := pattern.MatchSectionHeader(line.Text); ok {
			idx.Add(types.FigureLocation{
				Type:         types.MatchSection,
				RawID:        h.Span.Text,
				NormalizedID: pattern.SectionID(h),
				PageNumber:   p.Number,
				Y:            line.Y,
				Caption:      pattern.Truncate(h.Span.Text, maxCaptionLen),
			})
		}
	}
}
