// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

// Package types defines shared data structures for the citelink core.
// Text layer: TextFragment, Line, FragmentSpan.
// Matching and indexing: MatchSpan, FigureLocation, ParsedReference,
// ReferencesSectionState, CitationSpan, Outline.
// Host boundary: Location, ResolverAction.
package types

// BoundingBox is a rectangle in page space used for overlay rendering.
// The core never reads it; it is carried through for the host.
type BoundingBox struct {
	X      float64 `json:"x" yaml:"x"`
	Y      float64 `json:"y" yaml:"y"`
	Width  float64 `json:"width" yaml:"width"`
	Height float64 `json:"height" yaml:"height"`
}

// TextFragment is one positioned run of text from a page's text layer.
type TextFragment struct {
	// Text is the run's text, including any spacing the text layer emitted.
	Text string `json:"text" yaml:"text"`

	// PageNumber is the 1-based page the fragment belongs to.
	PageNumber int `json:"page_number" yaml:"page_number"`

	// Y is the fragment bottom in top-down page coordinates.
	Y float64 `json:"y" yaml:"y"`

	// X is the left edge of the fragment.
	X float64 `json:"x" yaml:"x"`

	// Width is the horizontal extent of the fragment.
	Width float64 `json:"width" yaml:"width"`

	// FontSize is the rendered font size, zero when unknown.
	FontSize float64 `json:"font_size,omitempty" yaml:"font_size,omitempty"`

	// Box is the optional overlay rectangle.
	Box *BoundingBox `json:"box,omitempty" yaml:"box,omitempty"`
}

// FragmentSpan locates one fragment inside a Line's concatenated text.
type FragmentSpan struct {
	Fragment TextFragment `json:"fragment" yaml:"fragment"`
	Start    int          `json:"start" yaml:"start"`
	End      int          `json:"end" yaml:"end"`
}

// Line is a run of fragments judged to sit on the same visual line.
type Line struct {
	// PageNumber is the page of every fragment in the line.
	PageNumber int `json:"page_number" yaml:"page_number"`

	// Y is the bottom of the first fragment, used as the line position.
	Y float64 `json:"y" yaml:"y"`

	// Text is the concatenation of all fragment texts in order.
	Text string `json:"text" yaml:"text"`

	// Fragments maps each fragment to its [Start, End) offsets in Text.
	Fragments []FragmentSpan `json:"fragments" yaml:"fragments"`
}

// FragmentAt returns the span covering byte offset off, or false.
func (l Line) FragmentAt(off int) (FragmentSpan, bool) {
	for _, fs := range l.Fragments {
		if off >= fs.Start && off < fs.End {
			return fs, true
		}
	}
	return FragmentSpan{}, false
}
