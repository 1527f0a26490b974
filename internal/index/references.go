// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package index

import (
	"strings"

	"github.com/pdiddy/citelink/internal/layout"
	"github.com/pdiddy/citelink/internal/pattern"
	"github.com/pdiddy/citelink/pkg/types"
)

// maxTitleLen bounds the title segment of a parsed reference.
const maxTitleLen = 100

// Page is one page's aggregated lines as seen by the index build. Err is
// set when the page could not be extracted; such pages are skipped.
type Page struct {
	Number int
	Lines  []types.Line
	Err    error
}

// lastPage returns the highest page number present.
func lastPage(pages []Page) int {
	last := 0
	for _, p := range pages {
		if p.Number > last {
			last = p.Number
		}
	}
	return last
}

// DetectReferencesSection scans the trailing scanPages pages, from
// max(1, last-scanPages+1) to the last page, and returns the first page whose
// opening 500 characters contain a references heading.
func DetectReferencesSection(pages []Page, scanPages int) (int, bool) {
	if scanPages <= 0 {
		scanPages = types.DefaultIndexConfig().ReferencesScanPages
	}
	last := lastPage(pages)
	first := last - scanPages + 1
	if first < 1 {
		first = 1
	}

	byNumber := make(map[int]Page, len(pages))
	for _, p := range pages {
		byNumber[p.Number] = p
	}

	for n := first; n <= last; n++ {
		p, ok := byNumber[n]
		if !ok || p.Err != nil {
			continue
		}
		if pattern.IsReferencesHeader(layout.PageText(p.Lines)) {
			return n, true
		}
	}
	return 0, false
}

// ParseReferenceEntries parses bibliography entries from startPage to the
// last page. Each line opening with "[n]", "n." or "(n)" starts an entry;
// the remainder is split on ". " into authors and title. Lines without a
// prefix are appended to the previous entry's raw text. On the start page,
// lines above the references heading are ignored.
func ParseReferenceEntries(pages []Page, startPage int) []types.ParsedReference {
	var (
		refs    []types.ParsedReference
		current *types.ParsedReference
	)
	flush := func() {
		if current != nil {
			refs = append(refs, *current)
			current = nil
		}
	}

	for _, p := range pages {
		if p.Number < startPage || p.Err != nil {
			continue
		}
		lines := p.Lines
		if p.Number == startPage {
			lines = afterHeading(lines)
		}
		for _, line := range lines {
			text := strings.TrimSpace(line.Text)
			if text == "" {
				continue
			}
			if n, rest, ok := pattern.MatchReferenceEntry(text); ok {
				flush()
				ref := parseEntry(n, rest, p.Number)
				current = &ref
				continue
			}
			if current != nil {
				current.RawText = strings.TrimSpace(joinWrapped(current.RawText, text))
			}
		}
	}
	flush()
	return refs
}

// afterHeading drops lines up to and including the references heading. If
// no line carries the heading, every line is kept.
func afterHeading(lines []types.Line) []types.Line {
	for i, l := range lines {
		if len(l.Text) <= 40 && pattern.IsReferencesHeader(l.Text) {
			return lines[i+1:]
		}
	}
	return lines
}

// joinWrapped appends a continuation line, rejoining words hyphenated
// across the break.
func joinWrapped(prev, next string) string {
	if strings.HasSuffix(prev, "-") && !strings.HasSuffix(prev, " -") {
		return strings.TrimSuffix(prev, "-") + next
	}
	return prev + " " + next
}

// parseEntry splits an entry's text on ". ": the first segment is taken as
// authors and the second as the title.
func parseEntry(number int, rest string, page int) types.ParsedReference {
	ref := types.ParsedReference{
		Number:     number,
		RawText:    rest,
		PageNumber: page,
	}
	parts := strings.Split(rest, ". ")
	if a := strings.TrimSpace(parts[0]); a != "" {
		ref.Authors = &a
	}
	if len(parts) > 1 {
		title := strings.TrimRight(strings.TrimSpace(parts[1]), ".")
		title = pattern.Truncate(title, maxTitleLen)
		if title != "" {
			ref.Title = &title
		}
	}
	return ref
}
