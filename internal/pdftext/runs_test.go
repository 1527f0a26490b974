// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package pdftext

import (
	"testing"

	"github.com/ledongthuc/pdf"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/pdiddy/citelink/internal/layout"
)

// glyphs lays out s one glyph per rune, 5 units wide, starting at x.
func glyphs(font string, size, x, y float64, s string) []pdf.Text {
	var out []pdf.Text
	for _, r := range s {
		out = append(out, pdf.Text{Font: font, FontSize: size, X: x, Y: y, W: 5, S: string(r)})
		x += 5
	}
	return out
}

func TestMergeRunsJoinsGlyphs(t *testing.T) {
	texts := glyphs("Times", 10, 72, 700, "Results")
	frags := mergeRuns(texts, 3, 792)

	require.Len(t, frags, 1)
	f := frags[0]
	assert.Equal(t, "Results", f.Text)
	assert.Equal(t, 3, f.PageNumber)
	assert.Equal(t, 92.0, f.Y, "bottom flipped to top-down")
	assert.Equal(t, 72.0, f.X)
	assert.Equal(t, 35.0, f.Width)
	require.NotNil(t, f.Box)
	assert.Equal(t, 82.0, f.Box.Y)
}

func TestMergeRunsInsertsSpaces(t *testing.T) {
	texts := glyphs("Times", 10, 72, 700, "see")
	// 4 units of gap, above the 2-unit space threshold.
	texts = append(texts, glyphs("Times", 10, 91, 700, "Fig.")...)
	frags := mergeRuns(texts, 1, 792)

	require.Len(t, frags, 1)
	assert.Equal(t, "see Fig.", frags[0].Text)
}

func TestMergeRunsSplitsOnFontChange(t *testing.T) {
	texts := glyphs("Times", 10, 72, 700, "as in")
	texts = append(texts, glyphs("Times-Bold", 10, 101, 700, "[12]")...)
	frags := mergeRuns(texts, 1, 792)

	require.Len(t, frags, 2)
	assert.Equal(t, "as in", frags[0].Text)
	assert.Equal(t, " [12]", frags[1].Text)

	lines := layout.Aggregate(frags, layout.Options{})
	require.Len(t, lines, 1)
	assert.Equal(t, "as in [12]", lines[0].Text)
}

func TestMergeRunsSplitsOnBaseline(t *testing.T) {
	texts := glyphs("Times", 10, 72, 700, "Line one")
	texts = append(texts, glyphs("Times", 10, 72, 688, "Line two")...)
	frags := mergeRuns(texts, 1, 792)

	require.Len(t, frags, 2)
	assert.Equal(t, "Line one", frags[0].Text)
	assert.Equal(t, "Line two", frags[1].Text)
	assert.Equal(t, 104.0, frags[1].Y)

	lines := layout.Aggregate(frags, layout.Options{})
	assert.Len(t, lines, 2)
}

func TestMergeRunsSkipsEmptyGlyphs(t *testing.T) {
	texts := []pdf.Text{
		{Font: "Times", FontSize: 10, X: 72, Y: 700, W: 5, S: ""},
		{Font: "Times", FontSize: 10, X: 72, Y: 700, W: 5, S: "\n"},
	}
	assert.Empty(t, mergeRuns(texts, 1, 792))
	assert.Empty(t, mergeRuns(nil, 1, 792))
}

func TestRenderedPagesSorted(t *testing.T) {
	d := &Document{}
	d.SetRendered(4, 2, 3)
	assert.Equal(t, []int{2, 3, 4}, d.RenderedPages())
}

func TestOpenMissingFile(t *testing.T) {
	_, err := Open(t.TempDir() + "/missing.pdf")
	assert.Error(t, err)
}

func TestMergeRunsFoldsLigatures(t *testing.T) {
	texts := glyphs("Times", 10, 72, 700, "ﬁgure")
	texts = append(texts, glyphs("Times", 10, 105, 700, "2 ")...)
	frags := mergeRuns(texts, 1, 792)

	require.Len(t, frags, 1)
	assert.Equal(t, "figure 2 ", frags[0].Text)
}
