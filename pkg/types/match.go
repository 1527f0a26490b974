// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package types

// MatchKind classifies a pattern match.
type MatchKind string

const (
	MatchCitation       MatchKind = "citation"
	MatchFigure         MatchKind = "figure"
	MatchTable          MatchKind = "table"
	MatchAlgorithm      MatchKind = "algorithm"
	MatchEquation       MatchKind = "equation"
	MatchSection        MatchKind = "section"
	MatchReferenceEntry MatchKind = "referenceEntry"
)

// MatchSpan is one pattern match inside a line or fragment.
type MatchSpan struct {
	Kind MatchKind `json:"kind" yaml:"kind"`

	// Text is the matched substring.
	Text string `json:"text" yaml:"text"`

	// Start and End are byte offsets relative to the matched input.
	Start int `json:"start" yaml:"start"`
	End   int `json:"end" yaml:"end"`

	// CanonicalRef is the identifier captured from the match, e.g. "Fig. 2"
	// for "Fig. 2(a)" or "12" for "[12]".
	CanonicalRef string `json:"canonical_ref" yaml:"canonical_ref"`
}

// FigureLocation is an indexed caption or section heading.
type FigureLocation struct {
	// Type is one of figure, table, algorithm, equation, section.
	Type MatchKind `json:"type" yaml:"type"`

	// RawID is the identifier as printed, e.g. "Fig. 1" or "TABLE I".
	RawID string `json:"raw_id" yaml:"raw_id"`

	// NormalizedID is the lookup key, e.g. "fig-1" or "table-i".
	NormalizedID string `json:"normalized_id" yaml:"normalized_id"`

	PageNumber int     `json:"page_number" yaml:"page_number"`
	Y          float64 `json:"y" yaml:"y"`

	// Caption is the caption or heading text, truncated to 100 characters.
	Caption string `json:"caption" yaml:"caption"`
}

// Location returns the navigation target for the entry.
func (f FigureLocation) Location() Location {
	return Location{PageNumber: f.PageNumber, Y: f.Y}
}

// Location is a navigation target inside a document.
type Location struct {
	PageNumber int     `json:"page_number" yaml:"page_number"`
	Y          float64 `json:"y" yaml:"y"`
}
