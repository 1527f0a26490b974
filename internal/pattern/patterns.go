// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

// Package pattern holds the regular-expression families used to find
// citation markers, figure and table references, captions, section headings
// and bibliography entries in page text.
//
// Families are data: ordered rule tables walked by a single generic loop.
// Adding a venue style means adding a row, not a code path.
package pattern

import (
	"regexp"
	"strings"
	"unicode"
	"unicode/utf8"

	"github.com/pdiddy/citelink/pkg/types"
)

// rule pairs a compiled pattern with the kind it produces and the capture
// group holding the canonical reference.
type rule struct {
	kind  types.MatchKind
	re    *regexp.Regexp
	group int
}

// Roman numerals stay case-sensitive so words like "mix" or "did" are never
// read as numerals; keywords are case-insensitive.
const (
	romanID  = `[IVXLCDM]+\b`
	numberID = `\d+(?:\.\d+)*`
)

// inlineRules are applied to whole line text, in priority order: figures,
// tables, algorithms, equations, sections. IEEE style precedes ACM style
// within a family.
var inlineRules = []rule{
	// IEEE: "Fig. 2", "Figs. 3", "Fig. IV", optionally "Fig. 2(a)".
	{types.MatchFigure, regexp.MustCompile(`\b((?i:figs?\.)\s*(?:\d+|` + romanID + `))(?:\s*\([a-zA-Z]\))?`), 1},
	// ACM: "Figure 2", "Figures 3".
	{types.MatchFigure, regexp.MustCompile(`\b((?i:figures?)\s+\d+)(?:\s*\([a-zA-Z]\))?`), 1},
	// IEEE: "TABLE I", "Table IV".
	{types.MatchTable, regexp.MustCompile(`\b((?i:tables?|tbl\.)\s*` + romanID + `)`), 1},
	// ACM: "Table 1", "Tbl. 2".
	{types.MatchTable, regexp.MustCompile(`\b((?i:tables?|tbl\.)\s*\d+)\b`), 1},
	{types.MatchAlgorithm, regexp.MustCompile(`\b((?i:algorithms?|alg\.)\s*\d+)\b`), 1},
	// "Eq. (3)", "Equation 4", "Eqs. 2".
	{types.MatchEquation, regexp.MustCompile(`\b((?i:equations?|eqs?\.|eqn\.)\s*\(?\d+(?:\.\d+)?\)?)`), 1},
	{types.MatchSection, regexp.MustCompile(`\b((?i:sections?|sec\.)\s*(?:` + numberID + `|` + romanID + `))`), 1},
	{types.MatchSection, regexp.MustCompile(`(§\s*` + numberID + `)`), 1},
}

// captionRule matches a caption definition anchored at the start of a line.
// Group 1 is the raw ID, group 2 the caption text (possibly empty).
type captionRule struct {
	kind types.MatchKind
	re   *regexp.Regexp
}

// captionRules require either a "." or ":" separator after the ID or an ID
// that is the entire line (IEEE tables put the caption on the next line).
// Prose such as "Table 1 shows ..." never matches.
var captionRules = []captionRule{
	{types.MatchFigure, regexp.MustCompile(`^\s*((?i:fig\.|figure)\s*(?:\d+|` + romanID + `))(?:\s*[.:]\s*(.*)|\s*$)`)},
	{types.MatchTable, regexp.MustCompile(`^\s*((?i:table|tbl\.)\s*(?:\d+|` + romanID + `))(?:\s*[.:]\s*(.*)|\s*$)`)},
	{types.MatchAlgorithm, regexp.MustCompile(`^\s*((?i:algorithm|alg\.)\s*\d+)(?:\s*[.:]\s*(.*)|\s*$)`)},
	{types.MatchEquation, regexp.MustCompile(`^\s*((?i:equation|eq\.)\s*\(?\d+\)?)(?:\s*[.:]\s*(.*)|\s*$)`)},
}

// sectionRule matches a heading line. Group 1 is the section number, if any,
// and group 2 the title.
type sectionRule struct {
	re *regexp.Regexp

	// title, when set, must accept the title group.
	title func(string) bool
}

var sectionRules = []sectionRule{
	// "1. Introduction", "2.1 Related Work". Periods in the title are not
	// allowed so numbered bibliography entries do not qualify.
	{re: regexp.MustCompile(`^\s*(\d{1,2}(?:\.\d{1,2})*)\.?\s+([A-Z][A-Za-z][^.]{0,78})$`), title: headingTitle},
	// "II. RELATED WORK".
	{re: regexp.MustCompile(`^\s*([IVXLCDM]+)\.\s+([A-Z][A-Z0-9 \-&,:]{2,78})$`)},
	// "Section 3: Evaluation".
	{re: regexp.MustCompile(`^\s*(?i:section)\s+(\d+(?:\.\d+)*|[IVXLCDM]+)\s*:\s*(.+)$`)},
	// Bare well-known headings.
	{re: regexp.MustCompile(`^\s*()((?i:abstract|introduction|related work|background|preliminaries|methods?|methodology|results|evaluation|experiments|discussion|conclusions?|acknowledge?ments?|references|bibliography|appendix))\s*$`)},
}

// maxHeadingWords bounds a numbered heading title. Longer lines are list
// items or prose.
const maxHeadingWords = 6

// sentenceCaseWords is the longest title accepted in sentence case
// ("Related work"). Longer titles need every word capitalised.
const sentenceCaseWords = 3

// headingConnectors may stay lower case inside a title-case heading.
var headingConnectors = map[string]bool{
	"a": true, "an": true, "and": true, "as": true, "at": true, "by": true,
	"for": true, "from": true, "in": true, "of": true, "on": true, "or": true,
	"the": true, "to": true, "vs": true, "with": true,
}

// headingTitle accepts "Related Work", "Experimental setup" and
// "Results and Discussion" but not "We introduce a benchmark of papers".
func headingTitle(title string) bool {
	words := strings.Fields(title)
	if len(words) == 0 || len(words) > maxHeadingWords {
		return false
	}
	if len(words) <= sentenceCaseWords {
		return true
	}
	for _, w := range words[1:] {
		r, _ := utf8.DecodeRuneInString(w)
		if unicode.IsUpper(r) || unicode.IsDigit(r) {
			continue
		}
		if !headingConnectors[strings.ToLower(strings.Trim(w, ",:;"))] {
			return false
		}
	}
	return true
}

// referenceEntryRules match a bibliography entry prefix at line start.
// Group 1 is the number, group 2 the remainder.
var referenceEntryRules = []*regexp.Regexp{
	regexp.MustCompile(`^\s*\[(\d+)\]\s*(.*)$`),
	regexp.MustCompile(`^\s*(\d+)\.\s+(.*)$`),
	regexp.MustCompile(`^\s*\((\d+)\)\s*(.*)$`),
}

// citationRules must match an entire trimmed fragment.
var citationRules = []rule{
	// IEEE numeric: [12], [3, 7], [4-6], [1, 3-5].
	{types.MatchCitation, regexp.MustCompile(`^\[\s*(\d+(?:\s*[-–]\s*\d+)?(?:\s*,\s*\d+(?:\s*[-–]\s*\d+)?)*)\s*\]$`), 1},
	// Author-year: (Smith, 2020), (Johnson et al., 2019), (Lee & Kim, 2021).
	{types.MatchCitation, regexp.MustCompile(`^\(\s*([A-Z][A-Za-z'\-]+(?:\s+et\s+al\.?|\s+(?:&|and)\s+[A-Z][A-Za-z'\-]+)?,?\s+\d{4}[a-z]?)\s*\)$`), 1},
}

// referencesHeaderRe finds a bibliography heading.
var referencesHeaderRe = regexp.MustCompile(`(?i)\b(references|bibliography|works cited|literature cited|cited literature|reference list)\b`)

// referencesHeaderWindow is how much of a page's text is tested for a
// references heading.
const referencesHeaderWindow = 500

// citationMarkerRes strip inline markers from prose.
var citationMarkerRes = []*regexp.Regexp{
	regexp.MustCompile(`\[\s*\d+(?:\s*[-–,]\s*\d+)*\s*\]`),
	regexp.MustCompile(`\(\s*[A-Z][A-Za-z'\-]+(?:\s+et\s+al\.?|\s+(?:&|and)\s+[A-Z][A-Za-z'\-]+)?,?\s+\d{4}[a-z]?\s*\)`),
}
