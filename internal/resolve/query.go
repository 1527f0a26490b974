// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package resolve

import (
	"regexp"
	"strings"
	"unicode"
	"unicode/utf8"

	"github.com/pdiddy/citelink/internal/pattern"
)

// minQueryLen is the shortest query worth sending to a search service.
const minQueryLen = 5

var numericCitationRe = regexp.MustCompile(`^\d+(?:\s*[-–,]\s*\d+)*$`)

// ResolveSearchQuery builds an external search query for a citation marker.
//
// Numeric markers are looked up in the parsed references (title, then
// authors, then raw text). On a miss, the sentence around the selection is
// used with its citation markers removed. Author-year markers are used as
// they are. Queries shorter than five characters, or made only of digits,
// punctuation and spaces, are rejected.
func (r *Resolver) ResolveSearchQuery(citation string, sel *SelectionContext) (string, bool) {
	cleaned := stripBrackets(citation)

	query := cleaned
	if numericCitationRe.MatchString(cleaned) {
		if q := r.numericQuery(pattern.CitationNumbers(cleaned), sel); q != "" {
			query = q
		}
	}
	return r.accept(query)
}

// numericQuery resolves the first reference number found in the index,
// falling back to the selection's sentence.
func (r *Resolver) numericQuery(numbers []int, sel *SelectionContext) string {
	if r.Index != nil && len(numbers) > 0 {
		if ref, ok := r.Index.Reference(numbers[0]); ok {
			switch {
			case ref.Title != nil && *ref.Title != "":
				return *ref.Title
			case ref.Authors != nil && *ref.Authors != "":
				return *ref.Authors
			case ref.RawText != "":
				return ref.RawText
			}
		}
		r.logger().Debug("reference not in index", "number", numbers[0])
	}
	return sel.sentence()
}

// accept applies the degenerate-query filter.
func (r *Resolver) accept(query string) (string, bool) {
	query = strings.TrimSpace(query)
	if degenerate(query) {
		if query != "" {
			r.logger().Debug("suppressing degenerate query", "query", query)
		}
		return "", false
	}
	return query, true
}

func degenerate(query string) bool {
	if utf8.RuneCountInString(query) < minQueryLen {
		return true
	}
	for _, c := range query {
		if !unicode.IsDigit(c) && !unicode.IsPunct(c) && !unicode.IsSpace(c) && !unicode.IsSymbol(c) {
			return false
		}
	}
	return true
}

// stripBrackets removes surrounding brackets and parentheses.
func stripBrackets(s string) string {
	s = strings.TrimSpace(s)
	for len(s) >= 2 {
		first, last := s[0], s[len(s)-1]
		if (first == '[' && last == ']') || (first == '(' && last == ')') {
			s = strings.TrimSpace(s[1 : len(s)-1])
			continue
		}
		break
	}
	return s
}

// sentence returns the sentence of the selected line that holds the
// selection offset, with citation markers removed.
func (sel *SelectionContext) sentence() string {
	if sel == nil || sel.LineText == "" {
		return ""
	}
	text := sel.LineText
	off := sel.Offset
	if off < 0 {
		off = 0
	}
	if off > len(text) {
		off = len(text)
	}

	start := strings.LastIndexAny(text[:off], ".!?") + 1
	end := len(text)
	if i := strings.IndexAny(text[off:], ".!?"); i >= 0 {
		end = off + i + 1
	}
	return pattern.StripCitationMarkers(strings.TrimSpace(text[start:end]))
}
