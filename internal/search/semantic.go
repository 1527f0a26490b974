// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package search

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"net/url"
	"strconv"

	"github.com/pdiddy/citelink/internal/httputil"
	"github.com/pdiddy/citelink/pkg/types"
)

// semanticAPIBase is the Semantic Scholar paper search endpoint. Declared
// as a var so tests can substitute an httptest server.
var semanticAPIBase = "https://api.semanticscholar.org/graph/v1/paper/search"

const semanticFields = "title,authors,externalIds,year,venue,url"

// SemanticScholarBackend queries the Semantic Scholar Graph API.
type SemanticScholarBackend struct {
	Client *http.Client
	APIKey string
}

// Name returns the backend identifier.
func (b *SemanticScholarBackend) Name() string { return "semantic_scholar" }

// Lookup searches Semantic Scholar for query.
func (b *SemanticScholarBackend) Lookup(ctx context.Context, query string, cfg types.SearchConfig) ([]types.CitedWork, error) {
	limit := cfg.MaxResults
	if limit <= 0 {
		limit = 5
	}
	params := url.Values{
		"query":  {query},
		"limit":  {strconv.Itoa(limit)},
		"fields": {semanticFields},
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, semanticAPIBase+"?"+params.Encode(), nil)
	if err != nil {
		return nil, fmt.Errorf("creating request: %w", err)
	}
	if cfg.UserAgent != "" {
		req.Header.Set("User-Agent", cfg.UserAgent)
	}
	if b.APIKey != "" {
		req.Header.Set("x-api-key", b.APIKey)
	}

	resp, err := httputil.DoWithRetry(ctx, b.Client, req, 0)
	if err != nil {
		return nil, fmt.Errorf("Semantic Scholar API request: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("Semantic Scholar API returned HTTP %d", resp.StatusCode)
	}

	var sr semanticResponse
	if err := json.NewDecoder(resp.Body).Decode(&sr); err != nil {
		return nil, fmt.Errorf("parsing Semantic Scholar response: %w", err)
	}

	works := make([]types.CitedWork, 0, len(sr.Data))
	for i, p := range sr.Data {
		w := types.CitedWork{
			Identifier: p.PaperID,
			Title:      p.Title,
			Year:       p.Year,
			Venue:      p.Venue,
			URL:        p.URL,
			Source:     "semantic_scholar",
			Score:      positionScore(i, len(sr.Data)),
		}
		// Prefer DOI, then arXiv ID, over the opaque paper ID.
		switch {
		case p.ExternalIDs.DOI != "":
			w.Identifier = p.ExternalIDs.DOI
		case p.ExternalIDs.ArXiv != "":
			w.Identifier = "arXiv:" + p.ExternalIDs.ArXiv
		}
		for _, a := range p.Authors {
			w.Authors = append(w.Authors, a.Name)
		}
		works = append(works, w)
	}
	return works, nil
}

type semanticResponse struct {
	Total int             `json:"total"`
	Data  []semanticPaper `json:"data"`
}

type semanticPaper struct {
	PaperID     string              `json:"paperId"`
	Title       string              `json:"title"`
	Year        int                 `json:"year"`
	Venue       string              `json:"venue"`
	URL         string              `json:"url"`
	Authors     []semanticAuthor    `json:"authors"`
	ExternalIDs semanticExternalIDs `json:"externalIds"`
}

type semanticAuthor struct {
	Name string `json:"name"`
}

type semanticExternalIDs struct {
	DOI   string `json:"DOI"`
	ArXiv string `json:"ArXiv"`
}
