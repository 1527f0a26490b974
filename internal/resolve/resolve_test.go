// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package resolve

import (
	"io"
	"log/slog"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/pdiddy/citelink/internal/index"
	"github.com/pdiddy/citelink/pkg/types"
)

type fakeRendered map[int][]string

func (f fakeRendered) RenderedPages() []int {
	var pages []int
	for p := range f {
		pages = append(pages, p)
	}
	return pages
}

func (f fakeRendered) RenderedLines(page int) []types.Line {
	var lines []types.Line
	for i, text := range f[page] {
		lines = append(lines, types.Line{PageNumber: page, Y: float64(100 + 20*i), Text: text})
	}
	return lines
}

func strPtr(s string) *string { return &s }

func testIndex() *index.DocumentIndex {
	idx := index.New("doc")
	idx.Add(types.FigureLocation{Type: types.MatchFigure, RawID: "Fig. 2", NormalizedID: "fig-2", PageNumber: 2, Y: 300})
	idx.Add(types.FigureLocation{Type: types.MatchFigure, RawID: "Fig. 4", NormalizedID: "fig-4", PageNumber: 4, Y: 80})
	idx.Add(types.FigureLocation{Type: types.MatchTable, RawID: "TABLE I", NormalizedID: "table-i", PageNumber: 3, Y: 120})

	start := 8
	idx.SetReferences([]types.ParsedReference{
		{Number: 1, RawText: "Smith, J. A Paper Title. Venue, 2020.", Authors: strPtr("Smith, J"), Title: strPtr("A Paper Title"), PageNumber: 8},
		{Number: 2, RawText: "Doe, A", Authors: strPtr("Doe, A"), PageNumber: 8},
		{Number: 3, RawText: "Anonymous technical report", PageNumber: 9},
	}, types.ReferencesSectionState{StartPage: &start, Source: types.SourceHeuristic})

	idx.SetCitationSpans([]types.CitationSpan{
		{RawText: "[7]", PageNumber: 1, ReferenceIDs: []int{1}, Provenance: types.ProvenanceAnnotation},
	})
	return idx
}

func testResolver() *Resolver {
	return &Resolver{
		Index: testIndex(),
		Rendered: fakeRendered{
			5: {"Some prose.", "3. Evaluation"},
			6: {"Figure 7: Late figure", "TABLE II: Costs"},
		},
		Logger: slog.New(slog.NewTextHandler(io.Discard, nil)),
	}
}

func TestClassify(t *testing.T) {
	r := testResolver()
	tests := []struct {
		name     string
		fragment string
		page     int
		line     string
		want     Kind
		number   int
	}{
		{"standalone numeric", "[12]", 2, "", KindStandaloneCitation, 12},
		{"standalone with spaces", "  [3, 5] ", 2, "", KindStandaloneCitation, 3},
		{"author year", "(Johnson et al., 2019)", 2, "", KindStandaloneCitation, 0},
		{"embedded in prose", "see [12] for details", 2, "", KindNone, 0},
		{"figure", "Fig. 2", 2, "", KindFigureReference, 0},
		{"partial figure fragment", "2", 3, "As shown in Fig. 2(a) and Table I, the results", KindFigureReference, 0},
		{"reference entry on bibliography page", "[3]", 9, "[3] Anonymous technical report", KindReferenceEntry, 3},
		{"reference entry from line", "Smith", 8, "[1] Smith, J. A Paper Title.", KindReferenceEntry, 1},
		{"entry prefix before bibliography", "Smith", 4, "[1] Smith, J. A Paper Title.", KindNone, 0},
		{"backend span", "[7]", 1, "", KindStandaloneCitation, 1},
		{"covered page ignores heuristics", "[8]", 1, "", KindNone, 0},
		{"blank", "   ", 2, "", KindNone, 0},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			c := r.Classify(tt.fragment, tt.page, tt.line)
			assert.Equal(t, tt.want, c.Kind)
			assert.Equal(t, tt.number, c.ReferenceNumber)
		})
	}
}

func TestClassifyFigureSpanFromLine(t *testing.T) {
	c := testResolver().Classify("2", 3, "As shown in Fig. 2(a) and Table I, the results")
	assert.Equal(t, types.MatchFigure, c.Span.Kind)
	assert.Equal(t, "Fig. 2", c.Span.CanonicalRef)
}

func TestClassifyAtUsesClickOffset(t *testing.T) {
	r := testResolver()
	line := "See Fig. 2 and Table 2 for details"

	tests := []struct {
		name   string
		offset int
		want   string
	}{
		{"second occurrence", 21, "Table 2"},
		{"first occurrence", 9, "Fig. 2"},
		{"unknown offset", -1, "Fig. 2"},
		{"offset off the fragment", 0, "Fig. 2"},
		{"offset past the line", 99, "Fig. 2"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			c := r.ClassifyAt("2", 3, line, tt.offset)
			require.Equal(t, KindFigureReference, c.Kind)
			assert.Equal(t, tt.want, c.Span.CanonicalRef)
		})
	}
}

func TestResolveNavigationTarget(t *testing.T) {
	r := testResolver()
	tests := []struct {
		name string
		ref  string
		want types.Location
		ok   bool
	}{
		{"direct", "Figure 2", types.Location{PageNumber: 2, Y: 300}, true},
		{"roman exact", "Table I", types.Location{PageNumber: 3, Y: 120}, true},
		{"arabic alias of indexed roman", "Table 1", types.Location{PageNumber: 3, Y: 120}, true},
		{"roman converted to arabic", "Fig. IV", types.Location{PageNumber: 4, Y: 80}, true},
		{"live search caption", "Fig. 7", types.Location{PageNumber: 6, Y: 100}, true},
		{"live search roman caption", "Table 2", types.Location{PageNumber: 6, Y: 120}, true},
		{"live search section", "Section 3", types.Location{PageNumber: 5, Y: 120}, true},
		{"miss", "Fig. 99", types.Location{}, false},
		{"empty", "", types.Location{}, false},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, ok := r.ResolveNavigationTarget(tt.ref)
			assert.Equal(t, tt.ok, ok)
			assert.Equal(t, tt.want, got)
		})
	}
}

func TestResolveNavigationTargetWithoutIndex(t *testing.T) {
	r := &Resolver{Rendered: fakeRendered{1: {"Fig. 1. Overview"}}}
	loc, ok := r.ResolveNavigationTarget("Figure 1")
	require.True(t, ok)
	assert.Equal(t, 1, loc.PageNumber)

	r.Rendered = nil
	_, ok = r.ResolveNavigationTarget("Figure 1")
	assert.False(t, ok)
}

func TestResolveSearchQuery(t *testing.T) {
	r := testResolver()
	line := "Transformers dominate NLP. Attention helps [9] in many tasks. Done."
	sel := &SelectionContext{LineText: line, Offset: strings.Index(line, "[9]")}

	tests := []struct {
		name     string
		citation string
		sel      *SelectionContext
		want     string
		ok       bool
	}{
		{"title preferred", "[1]", nil, "A Paper Title", true},
		{"authors when no title", "[2]", nil, "Doe, A", true},
		{"raw text last", "(3)", nil, "Anonymous technical report", true},
		{"range uses first number", "[1-3]", nil, "A Paper Title", true},
		{"author year passthrough", "(Johnson et al., 2019)", nil, "Johnson et al., 2019", true},
		{"contextual sentence", "[9]", sel, "Attention helps in many tasks.", true},
		{"bare number", "12", nil, "", false},
		{"number list", "12, 13", nil, "", false},
		{"bracketed year", "(1999)", nil, "", false},
		{"too short", "[ab]", nil, "", false},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, ok := r.ResolveSearchQuery(tt.citation, tt.sel)
			assert.Equal(t, tt.ok, ok)
			assert.Equal(t, tt.want, got)
		})
	}
}

func TestResolveSearchQueryNoIndex(t *testing.T) {
	r := &Resolver{}
	got, ok := r.ResolveSearchQuery("(Johnson et al., 2019)", nil)
	require.True(t, ok)
	assert.Equal(t, "Johnson et al., 2019", got)

	_, ok = r.ResolveSearchQuery("12", nil)
	assert.False(t, ok)
}

func TestSentenceOffsets(t *testing.T) {
	tests := []struct {
		name string
		sel  *SelectionContext
		want string
	}{
		{"nil", nil, ""},
		{"first sentence", &SelectionContext{LineText: "Models scale [4]. Data matters.", Offset: 3}, "Models scale."},
		{"offset past end", &SelectionContext{LineText: "One. Two [5] three", Offset: 500}, "Two three"},
		{"negative offset", &SelectionContext{LineText: "Alpha beta (Lee, 2020) gamma", Offset: -4}, "Alpha beta gamma"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, tt.sel.sentence())
		})
	}
}

func TestOnTextClicked(t *testing.T) {
	r := testResolver()

	t.Run("citation searches", func(t *testing.T) {
		a := r.OnTextClicked("[1]", 2, nil)
		assert.Equal(t, types.ActionSearch, a.Kind)
		assert.Equal(t, "A Paper Title", a.Query)
		assert.Equal(t, 1, a.ReferenceNumber)
	})

	t.Run("backend span resolves linked reference", func(t *testing.T) {
		a := r.OnTextClicked("[7]", 1, nil)
		assert.Equal(t, types.ActionSearch, a.Kind)
		assert.Equal(t, "A Paper Title", a.Query)
	})

	t.Run("figure navigates", func(t *testing.T) {
		a := r.OnTextClicked("TABLE I", 5, nil)
		require.Equal(t, types.ActionNavigate, a.Kind)
		require.NotNil(t, a.Location)
		assert.Equal(t, types.Location{PageNumber: 3, Y: 120}, *a.Location)
	})

	t.Run("repeated number navigates to the clicked reference", func(t *testing.T) {
		a := r.OnTextClicked("1", 4, &SelectionContext{LineText: "See Fig. 1 and Table 1 for details", Offset: 21})
		require.Equal(t, types.ActionNavigate, a.Kind)
		require.NotNil(t, a.Location)
		assert.Equal(t, types.Location{PageNumber: 3, Y: 120}, *a.Location)
	})

	t.Run("reference entry", func(t *testing.T) {
		a := r.OnTextClicked("Doe", 8, &SelectionContext{LineText: "[2] Doe, A. Something."})
		assert.Equal(t, types.ActionReferenceLookup, a.Kind)
		assert.Equal(t, 2, a.ReferenceNumber)
	})

	t.Run("degenerate citation is noop", func(t *testing.T) {
		assert.Equal(t, types.Noop(), r.OnTextClicked("[42]", 2, nil))
	})

	t.Run("prose is noop", func(t *testing.T) {
		assert.Equal(t, types.Noop(), r.OnTextClicked("see [12] for details", 2, nil))
	})

	t.Run("unknown figure is noop", func(t *testing.T) {
		assert.Equal(t, types.Noop(), r.OnTextClicked("Fig. 99", 2, nil))
	})
}
