// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package resolve

import (
	"strings"

	"github.com/pdiddy/citelink/internal/pattern"
	"github.com/pdiddy/citelink/pkg/types"
)

// Kind is the classification of a clicked fragment.
type Kind string

const (
	KindNone               Kind = "none"
	KindStandaloneCitation Kind = "standaloneCitation"
	KindFigureReference    Kind = "figureReference"
	KindReferenceEntry     Kind = "referenceEntry"
)

// Classification is the outcome of Classify.
type Classification struct {
	Kind Kind

	// Span is the matched citation or figure reference.
	Span types.MatchSpan

	// ReferenceNumber is the entry number for reference entries and the
	// first cited number for numeric citations.
	ReferenceNumber int

	// Backend is the service-supplied span the fragment matched, if any.
	Backend *types.CitationSpan
}

// Classify decides what a clicked fragment on page is. line is the full
// text of the line holding the fragment and may be empty.
//
// On bibliography pages an entry prefix wins over everything else. On pages
// covered by backend citation spans, only those spans identify citations.
// Elsewhere a fragment is a citation only if the whole trimmed fragment is
// a marker, so "see [12] for details" is not one.
func (r *Resolver) Classify(fragment string, page int, line string) Classification {
	return r.ClassifyAt(fragment, page, line, -1)
}

// ClassifyAt is Classify with the byte offset of the fragment within line,
// so a fragment whose text repeats in the line resolves to the occurrence
// that was clicked. A negative or mismatched offset falls back to the
// fragment's first occurrence.
func (r *Resolver) ClassifyAt(fragment string, page int, line string, offset int) Classification {
	text := strings.TrimSpace(fragment)
	if text == "" {
		return Classification{Kind: KindNone}
	}

	if r.Index != nil && r.Index.InReferences(page) {
		if n, ok := referenceEntryNumber(text, line); ok {
			return Classification{Kind: KindReferenceEntry, ReferenceNumber: n}
		}
	}

	var covered []types.CitationSpan
	if r.Index != nil {
		covered = r.Index.CitationSpans(page)
	}
	if covered != nil {
		if span, ok := backendSpan(covered, text); ok {
			c := Classification{
				Kind:    KindStandaloneCitation,
				Span:    types.MatchSpan{Kind: types.MatchCitation, Text: text, End: len(text), CanonicalRef: text},
				Backend: span,
			}
			if len(span.ReferenceIDs) > 0 {
				c.ReferenceNumber = span.ReferenceIDs[0]
			}
			return c
		}
	} else if m, ok := pattern.MatchCitation(text); ok {
		c := Classification{Kind: KindStandaloneCitation, Span: m}
		if nums := pattern.CitationNumbers(m.CanonicalRef); len(nums) > 0 && strings.HasPrefix(m.Text, "[") {
			c.ReferenceNumber = nums[0]
		}
		return c
	}

	if m, ok := figureSpan(fragment, line, offset); ok {
		return Classification{Kind: KindFigureReference, Span: m}
	}
	return Classification{Kind: KindNone}
}

// referenceEntryNumber tests the fragment, then its line, for an entry
// prefix.
func referenceEntryNumber(text, line string) (int, bool) {
	if n, _, ok := pattern.MatchReferenceEntry(text); ok {
		return n, true
	}
	if line == "" {
		return 0, false
	}
	n, _, ok := pattern.MatchReferenceEntry(line)
	return n, ok
}

// backendSpan finds the covered span whose raw text is the fragment.
func backendSpan(spans []types.CitationSpan, text string) (*types.CitationSpan, bool) {
	for i := range spans {
		if strings.TrimSpace(spans[i].RawText) == text {
			return &spans[i], true
		}
	}
	return nil, false
}

// figureSpan returns the first figure-family match in the fragment. When
// the fragment holds only part of a reference (text layers often split
// "Fig." from "2"), the match in line that overlaps the fragment's position
// is used.
func figureSpan(fragment, line string, offset int) (types.MatchSpan, bool) {
	text := strings.TrimSpace(fragment)
	if spans := pattern.MatchLine(text); len(spans) > 0 {
		return spans[0], true
	}
	if line == "" {
		return types.MatchSpan{}, false
	}

	// Leading spaces of the fragment sit before the text proper. An offset
	// that does not land on the fragment's text is ignored.
	at := -1
	if offset >= 0 {
		if a := offset + strings.Index(fragment, text); a+len(text) <= len(line) && line[a:a+len(text)] == text {
			at = a
		}
	}
	if at < 0 {
		if at = strings.Index(line, text); at < 0 {
			return types.MatchSpan{}, false
		}
	}
	end := at + len(text)

	for _, s := range pattern.MatchLine(line) {
		if at < s.End && s.Start < end {
			return s, true
		}
	}
	return types.MatchSpan{}, false
}
