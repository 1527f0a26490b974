// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package pattern

import (
	"sort"
	"strconv"
	"strings"
	"unicode/utf8"

	"github.com/pdiddy/citelink/pkg/types"
)

// MatchLine finds figure, table, algorithm, equation and section references
// in a line's full text. Families are tried in priority order and a later
// family never claims text already matched by an earlier one. Results are
// sorted by start offset.
func MatchLine(text string) []types.MatchSpan {
	var spans []types.MatchSpan
	for _, r := range inlineRules {
		for _, m := range r.re.FindAllStringSubmatchIndex(text, -1) {
			start, end := m[0], m[1]
			if overlaps(spans, start, end) {
				continue
			}
			spans = append(spans, types.MatchSpan{
				Kind:         r.kind,
				Text:         text[start:end],
				Start:        start,
				End:          end,
				CanonicalRef: group(text, m, r.group),
			})
		}
	}
	sort.Slice(spans, func(i, j int) bool { return spans[i].Start < spans[j].Start })
	return spans
}

func overlaps(spans []types.MatchSpan, start, end int) bool {
	for _, s := range spans {
		if start < s.End && s.Start < end {
			return true
		}
	}
	return false
}

func group(text string, m []int, g int) string {
	if 2*g+1 >= len(m) || m[2*g] < 0 {
		return ""
	}
	return text[m[2*g]:m[2*g+1]]
}

// MatchCitation reports whether the entire trimmed fragment is a citation
// marker. A marker embedded in prose ("see [12] for details") is rejected.
// Offsets are relative to the trimmed text.
func MatchCitation(fragment string) (types.MatchSpan, bool) {
	text := strings.TrimSpace(fragment)
	for _, r := range citationRules {
		m := r.re.FindStringSubmatchIndex(text)
		if m == nil {
			continue
		}
		return types.MatchSpan{
			Kind:         types.MatchCitation,
			Text:         text,
			Start:        0,
			End:          len(text),
			CanonicalRef: group(text, m, r.group),
		}, true
	}
	return types.MatchSpan{}, false
}

// Caption is a caption definition found at the start of a line.
type Caption struct {
	Span types.MatchSpan

	// Title is the caption text after the separator, possibly empty.
	Title string
}

// MatchCaption tests the caption families anchored at line start.
func MatchCaption(line string) (Caption, bool) {
	for _, r := range captionRules {
		m := r.re.FindStringSubmatchIndex(line)
		if m == nil {
			continue
		}
		raw := group(line, m, 1)
		return Caption{
			Span: types.MatchSpan{
				Kind:         r.kind,
				Text:         strings.TrimSpace(line[m[0]:m[1]]),
				Start:        m[2],
				End:          m[3],
				CanonicalRef: raw,
			},
			Title: strings.TrimSpace(group(line, m, 2)),
		}, true
	}
	return Caption{}, false
}

// SectionHeader is a heading recognised by MatchSectionHeader.
type SectionHeader struct {
	Span types.MatchSpan

	// Number is the printed section number ("2.1", "II"), empty for bare
	// headings such as "Abstract".
	Number string

	Title string
}

// minSectionMatch rejects headings too short to be meaningful.
const minSectionMatch = 3

// MatchSectionHeader tests the section-heading families against a line.
func MatchSectionHeader(line string) (SectionHeader, bool) {
	for _, r := range sectionRules {
		m := r.re.FindStringSubmatchIndex(line)
		if m == nil {
			continue
		}
		matched := strings.TrimSpace(line[m[0]:m[1]])
		if len(matched) < minSectionMatch {
			continue
		}
		if r.title != nil && !r.title(group(line, m, 2)) {
			continue
		}
		return SectionHeader{
			Span: types.MatchSpan{
				Kind:         types.MatchSection,
				Text:         matched,
				Start:        m[0],
				End:          m[1],
				CanonicalRef: matched,
			},
			Number: group(line, m, 1),
			Title:  strings.TrimSpace(group(line, m, 2)),
		}, true
	}
	return SectionHeader{}, false
}

// MatchReferenceEntry tests the reference-number prefixes "[n]", "n." and
// "(n)" at line start and returns the number and the remaining text.
func MatchReferenceEntry(line string) (int, string, bool) {
	for _, re := range referenceEntryRules {
		m := re.FindStringSubmatch(line)
		if m == nil {
			continue
		}
		n, err := strconv.Atoi(m[1])
		if err != nil {
			continue
		}
		return n, strings.TrimSpace(m[2]), true
	}
	return 0, "", false
}

// IsReferencesHeader reports whether a references heading appears as a whole
// word within the first 500 characters of the page text.
func IsReferencesHeader(pageText string) bool {
	return referencesHeaderRe.MatchString(truncateRunes(pageText, referencesHeaderWindow))
}

// StripCitationMarkers removes numeric and author-year markers from prose
// and collapses the whitespace left behind.
func StripCitationMarkers(text string) string {
	for _, re := range citationMarkerRes {
		text = re.ReplaceAllString(text, " ")
	}
	text = strings.Join(strings.Fields(text), " ")
	text = strings.ReplaceAll(text, " ,", ",")
	text = strings.ReplaceAll(text, " .", ".")
	return text
}

// CitationNumbers expands a numeric citation body such as "1, 3-5" into its
// reference numbers, in order of appearance.
func CitationNumbers(body string) []int {
	var nums []int
	for _, part := range strings.Split(body, ",") {
		part = strings.TrimSpace(part)
		if part == "" {
			continue
		}
		lo, hi, isRange := strings.Cut(strings.ReplaceAll(part, "–", "-"), "-")
		a, err := strconv.Atoi(strings.TrimSpace(lo))
		if err != nil {
			continue
		}
		if !isRange {
			nums = append(nums, a)
			continue
		}
		b, err := strconv.Atoi(strings.TrimSpace(hi))
		if err != nil || b < a || b-a > 100 {
			nums = append(nums, a)
			continue
		}
		for n := a; n <= b; n++ {
			nums = append(nums, n)
		}
	}
	return nums
}

// truncateRunes returns at most n runes of s.
func truncateRunes(s string, n int) string {
	if len(s) <= n {
		return s
	}
	i := 0
	for pos := range s {
		if i == n {
			return s[:pos]
		}
		i++
	}
	return s
}

// Truncate shortens s to at most n runes.
func Truncate(s string, n int) string {
	if utf8.RuneCountInString(s) <= n {
		return s
	}
	return truncateRunes(s, n)
}
