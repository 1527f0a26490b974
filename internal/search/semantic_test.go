// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package search

import (
	"context"
	"fmt"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// withSemanticServer points the backend at an httptest server for the
// duration of the test.
func withSemanticServer(t *testing.T, h http.HandlerFunc) *httptest.Server {
	t.Helper()
	ts := httptest.NewServer(h)
	old := semanticAPIBase
	semanticAPIBase = ts.URL
	t.Cleanup(func() {
		semanticAPIBase = old
		ts.Close()
	})
	return ts
}

const semanticBody = `{"total":3,"data":[
 {"paperId":"p1","title":"A Paper Title","year":2020,"venue":"Venue","url":"https://s2/p1",
  "authors":[{"name":"J. Smith"},{"name":"K. Lee"}],"externalIds":{"DOI":"10.1/abc","ArXiv":"2001.00001"}},
 {"paperId":"p2","title":"Preprint","year":2021,"authors":[],"externalIds":{"ArXiv":"2101.00002"}},
 {"paperId":"p3","title":"Opaque","authors":[],"externalIds":{}}
]}`

func TestSemanticLookupRequest(t *testing.T) {
	var captured *http.Request
	ts := withSemanticServer(t, func(w http.ResponseWriter, r *http.Request) {
		captured = r
		fmt.Fprint(w, `{"total":0,"data":[]}`)
	})

	b := &SemanticScholarBackend{Client: ts.Client(), APIKey: "sk-test"}
	works, err := b.Lookup(context.Background(), "A Paper Title", testCfg())
	require.NoError(t, err)
	assert.Empty(t, works)

	q := captured.URL.Query()
	assert.Equal(t, "A Paper Title", q.Get("query"))
	assert.Equal(t, "5", q.Get("limit"))
	assert.Equal(t, semanticFields, q.Get("fields"))
	assert.Equal(t, "sk-test", captured.Header.Get("x-api-key"))
	assert.Equal(t, "test/0.1", captured.Header.Get("User-Agent"))
}

func TestSemanticLookupNoAPIKey(t *testing.T) {
	var captured *http.Request
	ts := withSemanticServer(t, func(w http.ResponseWriter, r *http.Request) {
		captured = r
		fmt.Fprint(w, `{"data":[]}`)
	})

	cfg := testCfg()
	cfg.MaxResults = 0
	b := &SemanticScholarBackend{Client: ts.Client()}
	_, err := b.Lookup(context.Background(), "q", cfg)
	require.NoError(t, err)
	assert.Empty(t, captured.Header.Get("x-api-key"))
	assert.Equal(t, "5", captured.URL.Query().Get("limit"), "default limit")
}

func TestSemanticLookupParsesWorks(t *testing.T) {
	ts := withSemanticServer(t, func(w http.ResponseWriter, _ *http.Request) {
		fmt.Fprint(w, semanticBody)
	})

	b := &SemanticScholarBackend{Client: ts.Client()}
	works, err := b.Lookup(context.Background(), "q", testCfg())
	require.NoError(t, err)
	require.Len(t, works, 3)

	first := works[0]
	assert.Equal(t, "10.1/abc", first.Identifier, "DOI preferred")
	assert.Equal(t, "A Paper Title", first.Title)
	assert.Equal(t, []string{"J. Smith", "K. Lee"}, first.Authors)
	assert.Equal(t, 2020, first.Year)
	assert.Equal(t, "Venue", first.Venue)
	assert.Equal(t, "https://s2/p1", first.URL)
	assert.Equal(t, "semantic_scholar", first.Source)
	assert.Equal(t, 1.0, first.Score)

	assert.Equal(t, "arXiv:2101.00002", works[1].Identifier)
	assert.InDelta(t, 0.55, works[1].Score, 1e-9)
	assert.Equal(t, "p3", works[2].Identifier)
	assert.InDelta(t, 0.1, works[2].Score, 1e-9)
}

func TestSemanticLookupErrors(t *testing.T) {
	tests := []struct {
		name    string
		status  int
		body    string
		wantErr string
	}{
		{"server error", http.StatusInternalServerError, "", "HTTP 500"},
		{"bad request", http.StatusBadRequest, "", "HTTP 400"},
		{"malformed json", http.StatusOK, "{not json", "parsing Semantic Scholar response"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			ts := withSemanticServer(t, func(w http.ResponseWriter, _ *http.Request) {
				w.WriteHeader(tt.status)
				fmt.Fprint(w, tt.body)
			})
			b := &SemanticScholarBackend{Client: ts.Client()}
			_, err := b.Lookup(context.Background(), "q", testCfg())
			assert.ErrorContains(t, err, tt.wantErr)
		})
	}
}

func TestSemanticScholarBackendName(t *testing.T) {
	assert.Equal(t, "semantic_scholar", (&SemanticScholarBackend{}).Name())
}
