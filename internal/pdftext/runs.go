// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package pdftext

import (
	"math"
	"strings"

	"github.com/ledongthuc/pdf"
	"golang.org/x/text/unicode/norm"

	"github.com/pdiddy/citelink/pkg/types"
)

// Glyph spacing thresholds as multiples of font size.
const (
	// spaceGap is the horizontal gap above which a space is inserted.
	spaceGap = 0.2

	// runGap is the horizontal gap above which a new run starts even in the
	// same font.
	runGap = 1.0

	// baselineSlack is the vertical drift tolerated within a run.
	baselineSlack = 0.1

	fallbackFontSize = 10.0
)

// run accumulates glyphs sharing font, size and baseline.
type run struct {
	font     string
	fontSize float64
	baseline float64
	x        float64
	right    float64
	text     strings.Builder
}

// fragment closes the run. NFKC folds ligatures ("ﬁ") and compatibility
// spaces so captions and headings match their plain spelling.
func (r *run) fragment(page int, pageHeight float64) types.TextFragment {
	bottom := pageHeight - r.baseline
	width := r.right - r.x
	return types.TextFragment{
		Text:       norm.NFKC.String(r.text.String()),
		PageNumber: page,
		Y:          bottom,
		X:          r.x,
		Width:      width,
		FontSize:   r.fontSize,
		Box: &types.BoundingBox{
			X:      r.x,
			Y:      bottom - r.fontSize,
			Width:  width,
			Height: r.fontSize,
		},
	}
}

// mergeRuns folds the glyphs of a page, in content-stream order, into text
// runs. A run continues while font, size and baseline hold and the next
// glyph sits within runGap of the previous one; a visible gap becomes a
// space. Y is flipped from PDF's bottom-up space to top-down coordinates.
func mergeRuns(texts []pdf.Text, page int, pageHeight float64) []types.TextFragment {
	var (
		out []types.TextFragment
		cur *run
	)
	for _, t := range texts {
		if t.S == "" || t.S == "\n" || t.S == "\r" {
			continue
		}
		size := t.FontSize
		if size <= 0 {
			size = fallbackFontSize
		}

		if cur != nil {
			sameLine := math.Abs(t.Y-cur.baseline) <= baselineSlack*size
			gap := t.X - cur.right
			if sameLine && t.Font == cur.font && t.FontSize == cur.fontSize && gap > -size && gap <= runGap*size {
				if gap > spaceGap*size && !endsWithSpace(cur.text.String()) && !strings.HasPrefix(t.S, " ") {
					cur.text.WriteByte(' ')
				}
				cur.text.WriteString(t.S)
				cur.right = math.Max(cur.right, t.X+t.W)
				continue
			}

			prev := cur
			out = append(out, prev.fragment(page, pageHeight))
			cur = newRun(t)
			// A new run on the same baseline after a visible gap keeps
			// its word boundary.
			if sameLine && gap > spaceGap*size && !endsWithSpace(prev.text.String()) && !strings.HasPrefix(t.S, " ") {
				cur.text.Reset()
				cur.text.WriteString(" " + t.S)
			}
			continue
		}
		cur = newRun(t)
	}
	if cur != nil {
		out = append(out, cur.fragment(page, pageHeight))
	}
	return out
}

func newRun(t pdf.Text) *run {
	r := &run{
		font:     t.Font,
		fontSize: t.FontSize,
		baseline: t.Y,
		x:        t.X,
		right:    t.X + t.W,
	}
	r.text.WriteString(t.S)
	return r
}

func endsWithSpace(s string) bool {
	return strings.HasSuffix(s, " ")
}
