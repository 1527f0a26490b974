// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

// Package pdftext reads the text layer of a PDF file with
// github.com/ledongthuc/pdf and serves it as positioned text fragments.
//
// A Document implements index.PageSource for index builds and
// resolve.RenderedText for the live-search fallback. Which pages count as
// "rendered" is set by the caller, standing in for a viewer's visible
// window.
package pdftext

import (
	"context"
	"fmt"
	"log/slog"
	"os"
	"sort"
	"sync"

	"github.com/ledongthuc/pdf"

	"github.com/pdiddy/citelink/internal/layout"
	"github.com/pdiddy/citelink/pkg/types"
)

// defaultPageHeight is US Letter, used when a page has no usable MediaBox.
const defaultPageHeight = 792.0

// Document is an open PDF file.
type Document struct {
	file   *os.File
	reader *pdf.Reader

	// Lines controls aggregation for RenderedLines.
	Lines  layout.Options
	Logger *slog.Logger

	// mu serializes reader access; the parser keeps shared state.
	mu       sync.Mutex
	rendered []int
}

// Open opens the PDF at path. Close must be called when done.
func Open(path string) (*Document, error) {
	file, reader, err := pdf.Open(path)
	if err != nil {
		return nil, fmt.Errorf("opening pdf %s: %w", path, err)
	}
	return &Document{file: file, reader: reader}, nil
}

// Close releases the underlying file.
func (d *Document) Close() error {
	return d.file.Close()
}

func (d *Document) logger() *slog.Logger {
	if d.Logger != nil {
		return d.Logger
	}
	return slog.Default()
}

// PageCount returns the number of pages.
func (d *Document) PageCount(ctx context.Context) (int, error) {
	if err := ctx.Err(); err != nil {
		return 0, err
	}
	d.mu.Lock()
	defer d.mu.Unlock()
	return d.reader.NumPage(), nil
}

// PageFragments extracts the text runs of a 1-based page. Malformed content
// streams make the parser panic; that is reported as an error for the page.
func (d *Document) PageFragments(ctx context.Context, page int) (frags []types.TextFragment, err error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	d.mu.Lock()
	defer d.mu.Unlock()

	if page < 1 || page > d.reader.NumPage() {
		return nil, fmt.Errorf("page %d out of range 1..%d", page, d.reader.NumPage())
	}

	defer func() {
		if r := recover(); r != nil {
			frags = nil
			err = fmt.Errorf("extracting page %d: %v", page, r)
		}
	}()

	p := d.reader.Page(page)
	if p.V.IsNull() {
		return nil, fmt.Errorf("page %d has no page object", page)
	}
	return mergeRuns(p.Content().Text, page, pageHeight(p)), nil
}

// pageHeight reads the MediaBox, following Parent links for inherited
// boxes.
func pageHeight(p pdf.Page) float64 {
	v := p.V
	for range 16 {
		if v.IsNull() {
			break
		}
		box := v.Key("MediaBox")
		if box.Len() == 4 {
			h := box.Index(3).Float64() - box.Index(1).Float64()
			if h > 0 {
				return h
			}
		}
		v = v.Key("Parent")
	}
	return defaultPageHeight
}

// SetRendered records which pages the viewer currently shows.
func (d *Document) SetRendered(pages ...int) {
	sorted := append([]int(nil), pages...)
	sort.Ints(sorted)
	d.mu.Lock()
	d.rendered = sorted
	d.mu.Unlock()
}

// RenderedPages returns the pages set by SetRendered.
func (d *Document) RenderedPages() []int {
	d.mu.Lock()
	defer d.mu.Unlock()
	return append([]int(nil), d.rendered...)
}

// RenderedLines extracts and aggregates one page's lines. A page that fails
// to extract yields no lines.
func (d *Document) RenderedLines(page int) []types.Line {
	frags, err := d.PageFragments(context.Background(), page)
	if err != nil {
		d.logger().Debug("rendered page unavailable", "page", page, "error", err)
		return nil
	}
	return layout.Aggregate(frags, d.Lines)
}
