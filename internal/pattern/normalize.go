// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package pattern

import (
	"regexp"
	"strings"

	"github.com/pdiddy/citelink/pkg/types"
)

// synonyms collapse keyword variants to one canonical token. Order matters:
// longer spellings come first within each alternation.
var synonyms = []struct {
	re    *regexp.Regexp
	token string
}{
	{regexp.MustCompile(`^(?:figures?|figs?)\.?`), "fig"},
	{regexp.MustCompile(`^(?:tables?|tbls?)\.?`), "table"},
	{regexp.MustCompile(`^(?:algorithms?|algs?)\.?`), "alg"},
	{regexp.MustCompile(`^(?:equations?|eqns?|eqs?)\.?`), "eq"},
	{regexp.MustCompile(`^(?:sections?|secs?|§)\.?`), "sec"},
}

var (
	whitespaceRe = regexp.MustCompile(`\s+`)
	dottedNumRe  = regexp.MustCompile(`(\d)\.(\d)`)
	disallowedRe = regexp.MustCompile(`[^a-z0-9-]`)
	hyphenRunRe  = regexp.MustCompile(`-{2,}`)
)

// NormalizeID produces the lookup key for a figure, table, algorithm,
// equation or section identifier: lower-case, keyword synonyms collapsed,
// whitespace turned into hyphens and everything outside [a-z0-9-] dropped.
// "Fig. 1" and "Figure 1" both become "fig-1"; "TABLE I" becomes "table-i".
// Dotted numbers keep their structure ("Section 2.1" becomes "sec-2-1").
func NormalizeID(raw string) string {
	s := strings.ToLower(strings.TrimSpace(raw))
	for _, syn := range synonyms {
		if loc := syn.re.FindStringIndex(s); loc != nil {
			rest := strings.TrimSpace(s[loc[1]:])
			if rest == "" {
				s = syn.token
			} else {
				s = syn.token + " " + rest
			}
			break
		}
	}
	s = strings.NewReplacer("(", " ", ")", " ").Replace(s)
	s = strings.TrimSpace(s)
	for dottedNumRe.MatchString(s) {
		s = dottedNumRe.ReplaceAllString(s, "$1-$2")
	}
	s = whitespaceRe.ReplaceAllString(s, "-")
	s = disallowedRe.ReplaceAllString(s, "")
	s = hyphenRunRe.ReplaceAllString(s, "-")
	return strings.Trim(s, "-")
}

// SectionID builds the normalized ID of a section heading: numbered
// headings are keyed by number ("sec-2-1", "sec-ii") so inline references
// such as "Section 2.1" resolve; bare headings by title ("sec-abstract").
func SectionID(h SectionHeader) string {
	if h.Number != "" {
		return NormalizeID("section " + h.Number)
	}
	return NormalizeID("section " + h.Title)
}

// KindOf maps a normalized ID's leading token back to its match kind.
func KindOf(normalizedID string) types.MatchKind {
	token, _, _ := strings.Cut(normalizedID, "-")
	switch token {
	case "fig":
		return types.MatchFigure
	case "table":
		return types.MatchTable
	case "alg":
		return types.MatchAlgorithm
	case "eq":
		return types.MatchEquation
	case "sec":
		return types.MatchSection
	default:
		return ""
	}
}
