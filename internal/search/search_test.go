// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package search

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"io"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/pdiddy/citelink/pkg/types"
)

// --- mock backend ---

type mockBackend struct {
	name  string
	works []types.CitedWork
	err   error
	query string
}

func (m *mockBackend) Name() string { return m.name }

func (m *mockBackend) Lookup(_ context.Context, query string, _ types.SearchConfig) ([]types.CitedWork, error) {
	m.query = query
	return m.works, m.err
}

func testCfg() types.SearchConfig {
	return types.SearchConfig{
		HTTPConfig: types.HTTPConfig{
			Timeout:   10 * time.Second,
			UserAgent: "test/0.1",
		},
		MaxResults: 5,
	}
}

// --- Lookup ---

func TestLookupEmptyQuery(t *testing.T) {
	_, err := Lookup(context.Background(), "   ", []Backend{&mockBackend{name: "a"}}, testCfg(), io.Discard)
	assert.ErrorContains(t, err, "query is empty")
}

func TestLookupNoBackends(t *testing.T) {
	_, err := Lookup(context.Background(), "attention", nil, testCfg(), io.Discard)
	assert.ErrorContains(t, err, "no lookup backends")
}

func TestLookupContinuesAfterBackendFailure(t *testing.T) {
	good := &mockBackend{name: "good", works: []types.CitedWork{{Identifier: "10.1/a", Title: "A Paper Title", Source: "good", Score: 1}}}
	bad := &mockBackend{name: "bad", err: errors.New("connection refused")}

	var warnings bytes.Buffer
	out, err := Lookup(context.Background(), " A Paper Title ", []Backend{good, bad}, testCfg(), &warnings)
	require.NoError(t, err)

	assert.Equal(t, "A Paper Title", good.query)
	require.Len(t, out.Works, 1)
	assert.Equal(t, []string{"bad: connection refused"}, out.BackendErrors)
	assert.Contains(t, warnings.String(), "backend bad failed")
}

func TestLookupAllBackendsFail(t *testing.T) {
	backends := []Backend{
		&mockBackend{name: "a", err: errors.New("down")},
		&mockBackend{name: "b", err: errors.New("down")},
	}
	_, err := Lookup(context.Background(), "query", backends, testCfg(), io.Discard)
	assert.ErrorContains(t, err, "all lookup backends failed")
}

func TestLookupDedupAndRank(t *testing.T) {
	s2 := &mockBackend{name: "semantic_scholar", works: []types.CitedWork{
		{Identifier: "10.1/x", Title: "Attention Is All You Need", Source: "semantic_scholar", Score: 0.4},
		{Identifier: "10.1/y", Title: "Other Work", Source: "semantic_scholar", Score: 0.9},
	}}
	oa := &mockBackend{name: "openalex", works: []types.CitedWork{
		{Identifier: "10.1/X", Title: "Attention is all you need.", Year: 2017, Source: "openalex", Score: 1.0},
	}}

	out, err := Lookup(context.Background(), "attention", []Backend{s2, oa}, testCfg(), io.Discard)
	require.NoError(t, err)

	require.Len(t, out.Works, 2)
	assert.Equal(t, 1, out.DupsRemoved)
	assert.Equal(t, 1.0, out.Works[0].Score)
	assert.Equal(t, 2017, out.Works[0].Year)
	assert.ElementsMatch(t, []string{"semantic_scholar", "openalex"}, strings.Split(out.Works[0].Source, ","))
}

func TestLookupMaxResults(t *testing.T) {
	var works []types.CitedWork
	for i := range 10 {
		works = append(works, types.CitedWork{Identifier: string(rune('a' + i)), Title: strings.Repeat("t", i+1), Score: positionScore(i, 10)})
	}
	cfg := testCfg()
	cfg.MaxResults = 3

	out, err := Lookup(context.Background(), "q", []Backend{&mockBackend{name: "m", works: works}}, cfg, io.Discard)
	require.NoError(t, err)
	require.Len(t, out.Works, 3)
	assert.Equal(t, "a", out.Works[0].Identifier)
}

// --- helpers ---

func TestDeduplicate(t *testing.T) {
	tests := []struct {
		name        string
		works       []types.CitedWork
		wantLen     int
		wantRemoved int
	}{
		{"by identifier", []types.CitedWork{{Identifier: "10.1/a", Title: "One"}, {Identifier: "10.1/A", Title: "Different"}}, 1, 1},
		{"by title", []types.CitedWork{{Identifier: "x", Title: "Deep Learning"}, {Identifier: "y", Title: "deep learning!"}}, 1, 1},
		{"distinct", []types.CitedWork{{Identifier: "x", Title: "One"}, {Identifier: "y", Title: "Two"}}, 2, 0},
		{"no keys", []types.CitedWork{{}, {}}, 2, 0},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, removed := deduplicate(tt.works)
			assert.Len(t, got, tt.wantLen)
			assert.Equal(t, tt.wantRemoved, removed)
		})
	}
}

func TestMergeInto(t *testing.T) {
	dst := types.CitedWork{Title: "T", Source: "semantic_scholar", Score: 0.5}
	mergeInto(&dst, types.CitedWork{Authors: []string{"Lee"}, Year: 2020, Venue: "NeurIPS", URL: "u", Source: "openalex", Score: 0.8})

	assert.Equal(t, []string{"Lee"}, dst.Authors)
	assert.Equal(t, 2020, dst.Year)
	assert.Equal(t, "NeurIPS", dst.Venue)
	assert.Equal(t, 0.8, dst.Score)
	assert.Equal(t, "semantic_scholar,openalex", dst.Source)

	mergeInto(&dst, types.CitedWork{Source: "openalex"})
	assert.Equal(t, "semantic_scholar,openalex", dst.Source)
}

func TestNormalizeTitle(t *testing.T) {
	assert.Equal(t, "bert pretraining of deep transformers", normalizeTitle("BERT: Pre-training of  Deep Transformers."))
	assert.Equal(t, "", normalizeTitle("?!"))
}

func TestPositionScore(t *testing.T) {
	assert.Equal(t, 1.0, positionScore(0, 1))
	assert.Equal(t, 1.0, positionScore(0, 4))
	assert.InDelta(t, 0.1, positionScore(3, 4), 1e-9)
}

// --- formatting ---

func TestFormatText(t *testing.T) {
	out := Output{
		Query: "attention",
		Works: []types.CitedWork{{
			Identifier: "10.1/x",
			Title:      "Attention Is All You Need: a very long title that will certainly wrap",
			Authors:    []string{"Vaswani", "Shazeer", "Parmar"},
			Year:       2017,
			Source:     "semantic_scholar",
			Score:      1,
		}},
		DupsRemoved: 1,
	}
	var buf bytes.Buffer
	FormatText(out, &buf, 40)
	text := buf.String()

	assert.Contains(t, text, `Results for "attention"`)
	assert.Contains(t, text, " 1. Attention Is All You Need:")
	assert.Contains(t, text, "Vaswani et al. (2017)")
	assert.Contains(t, text, "10.1/x  [semantic_scholar, 1.00]")
	assert.Contains(t, text, "1 works (1 duplicates removed)")
	for _, line := range strings.Split(strings.TrimSpace(text), "\n") {
		if strings.HasPrefix(line, " 1.") || strings.HasPrefix(line, "    ") && !strings.Contains(line, "[") {
			assert.LessOrEqual(t, len(line), 40+4, line)
		}
	}
}

func TestFormatTextEmpty(t *testing.T) {
	var buf bytes.Buffer
	FormatText(Output{Query: "nothing"}, &buf, 0)
	assert.Equal(t, "No works found for \"nothing\".\n", buf.String())
}

func TestFormatJSON(t *testing.T) {
	var buf bytes.Buffer
	require.NoError(t, FormatJSON(Output{Query: "q", Works: []types.CitedWork{{Identifier: "x", Title: "T"}}}, &buf))

	var decoded Output
	require.NoError(t, json.Unmarshal(buf.Bytes(), &decoded))
	assert.Equal(t, "q", decoded.Query)
	require.Len(t, decoded.Works, 1)
	assert.Equal(t, "x", decoded.Works[0].Identifier)
}

func TestFormatAuthors(t *testing.T) {
	assert.Equal(t, "", formatAuthors(nil))
	assert.Equal(t, "Lee", formatAuthors([]string{"Lee"}))
	assert.Equal(t, "Lee and Kim", formatAuthors([]string{"Lee", "Kim"}))
	assert.Equal(t, "Lee et al.", formatAuthors([]string{"Lee", "Kim", "Park"}))
}
