// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package layout

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/pdiddy/citelink/pkg/types"
)

func frag(text string, y float64) types.TextFragment {
	return types.TextFragment{Text: text, PageNumber: 3, Y: y}
}

func TestAggregate(t *testing.T) {
	tests := []struct {
		name      string
		fragments []types.TextFragment
		want      []string
	}{
		{"empty page", nil, nil},
		{"single fragment", []types.TextFragment{frag("Hello", 10)}, []string{"Hello"}},
		{
			name: "same line within tolerance",
			fragments: []types.TextFragment{
				frag("As shown in ", 100), frag("Fig. ", 102), frag("2", 104.5),
			},
			want: []string{"As shown in Fig. 2"},
		},
		{
			name: "break beyond tolerance",
			fragments: []types.TextFragment{
				frag("first", 100), frag("second", 112), frag("third", 124),
			},
			want: []string{"first", "second", "third"},
		},
		{
			name: "threshold is exclusive",
			fragments: []types.TextFragment{
				frag("a", 100), frag("b", 105), frag("c", 110.01),
			},
			want: []string{"ab", "c"},
		},
		{
			name: "drift compares with previous fragment",
			fragments: []types.TextFragment{
				frag("a", 100), frag("b", 104), frag("c", 108), frag("d", 112),
			},
			want: []string{"abcd"},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			lines := Aggregate(tt.fragments, Options{})
			var got []string
			for _, l := range lines {
				got = append(got, l.Text)
			}
			assert.Equal(t, tt.want, got)
		})
	}
}

func TestAggregateOffsets(t *testing.T) {
	lines := Aggregate([]types.TextFragment{
		frag("[1] ", 50), frag("Smith, J. ", 50), frag("A Paper Title.", 51),
	}, Options{})
	require.Len(t, lines, 1)

	l := lines[0]
	assert.Equal(t, 3, l.PageNumber)
	assert.Equal(t, 50.0, l.Y)
	require.Len(t, l.Fragments, 3)
	for _, fs := range l.Fragments {
		assert.Equal(t, fs.Fragment.Text, l.Text[fs.Start:fs.End])
	}
	assert.Equal(t, 0, l.Fragments[0].Start)
	assert.Equal(t, len(l.Text), l.Fragments[2].End)

	fs, ok := l.FragmentAt(5)
	require.True(t, ok)
	assert.Equal(t, "Smith, J. ", fs.Fragment.Text)
}

func TestAggregateDeterministic(t *testing.T) {
	var fragments []types.TextFragment
	y := 10.0
	for i := 0; i < 50; i++ {
		y += float64(i%4) * 2.5
		fragments = append(fragments, frag("x", y))
	}
	first := Aggregate(fragments, Options{})
	second := Aggregate(fragments, Options{})
	assert.Equal(t, first, second)
}

func TestAggregateFontRatio(t *testing.T) {
	fragments := []types.TextFragment{
		{Text: "big", Y: 100, FontSize: 20},
		{Text: "still big", Y: 108, FontSize: 20},
		{Text: "no size", Y: 120},
	}
	lines := Aggregate(fragments, Options{Tolerance: 5, FontRatio: 0.5})
	require.Len(t, lines, 2)
	assert.Equal(t, "bigstill big", lines[0].Text)
	assert.Equal(t, "no size", lines[1].Text)
}

func TestPageText(t *testing.T) {
	lines := Aggregate([]types.TextFragment{frag("one", 10), frag("two", 30)}, Options{})
	assert.Equal(t, "one\ntwo", PageText(lines))
	assert.Equal(t, "", PageText(nil))
}
