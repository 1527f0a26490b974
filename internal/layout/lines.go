// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

// Package layout groups positioned text fragments into logical lines.
package layout

import (
	"math"

	"github.com/pdiddy/citelink/pkg/types"
)

// DefaultTolerance is the bottom-Y distance, in display units, beyond which
// a fragment starts a new line.
const DefaultTolerance = 5.0

// Options tunes line aggregation.
type Options struct {
	// Tolerance is the absolute bottom-Y threshold. Zero means DefaultTolerance.
	Tolerance float64

	// FontRatio, when positive, scales the threshold by each fragment's
	// font size instead. Fragments without a font size fall back to Tolerance.
	FontRatio float64
}

// OptionsFrom derives aggregation options from an index configuration.
func OptionsFrom(cfg types.IndexConfig) Options {
	return Options{Tolerance: cfg.LineTolerance, FontRatio: cfg.LineFontRatio}
}

func (o Options) threshold(f types.TextFragment) float64 {
	if o.FontRatio > 0 && f.FontSize > 0 {
		return o.FontRatio * f.FontSize
	}
	if o.Tolerance > 0 {
		return o.Tolerance
	}
	return DefaultTolerance
}

// Aggregate groups fragments, in emission order, into lines. A fragment
// starts a new line when its bottom differs from the previous fragment's
// bottom by more than the threshold and the current line is non-empty.
// Fragments are never split or reordered.
func Aggregate(fragments []types.TextFragment, opts Options) []types.Line {
	var (
		lines      []types.Line
		current    types.Line
		lastBottom float64
		offset     int
		text       []byte
	)

	flush := func() {
		if len(current.Fragments) == 0 {
			return
		}
		current.Text = string(text)
		lines = append(lines, current)
		current = types.Line{}
		text = text[:0:0]
		offset = 0
	}

	for _, f := range fragments {
		if len(current.Fragments) > 0 && math.Abs(f.Y-lastBottom) > opts.threshold(f) {
			flush()
		}
		if len(current.Fragments) == 0 {
			current.PageNumber = f.PageNumber
			current.Y = f.Y
		}
		text = append(text, f.Text...)
		current.Fragments = append(current.Fragments, types.FragmentSpan{
			Fragment: f,
			Start:    offset,
			End:      offset + len(f.Text),
		})
		offset += len(f.Text)
		lastBottom = f.Y
	}
	flush()

	return lines
}

// PageText joins the text of all lines with newlines.
func PageText(lines []types.Line) string {
	n := 0
	for _, l := range lines {
		n += len(l.Text) + 1
	}
	buf := make([]byte, 0, n)
	for i, l := range lines {
		if i > 0 {
			buf = append(buf, '\n')
		}
		buf = append(buf, l.Text...)
	}
	return string(buf)
}
