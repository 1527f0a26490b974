// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package search

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"net/url"
	"strconv"
	"strings"

	"github.com/pdiddy/citelink/internal/httputil"
	"github.com/pdiddy/citelink/pkg/types"
)

// openAlexSearchBase is the OpenAlex Works search endpoint. Declared as a
// var so tests can substitute an httptest server.
var openAlexSearchBase = "https://api.openalex.org/works"

// OpenAlexBackend queries the OpenAlex Works API.
type OpenAlexBackend struct {
	Client *http.Client

	// Email is sent as mailto parameter for polite pool access.
	Email string
}

// Name returns the backend identifier.
func (b *OpenAlexBackend) Name() string { return "openalex" }

// Lookup searches OpenAlex for query.
func (b *OpenAlexBackend) Lookup(ctx context.Context, query string, cfg types.SearchConfig) ([]types.CitedWork, error) {
	perPage := cfg.MaxResults
	if perPage <= 0 {
		perPage = 5
	}
	if perPage > 200 {
		perPage = 200
	}

	params := url.Values{
		"search":   {query},
		"per_page": {strconv.Itoa(perPage)},
		"select":   {"id,doi,title,publication_year,authorships,primary_location"},
	}
	if b.Email != "" {
		params.Set("mailto", b.Email)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, openAlexSearchBase+"?"+params.Encode(), nil)
	if err != nil {
		return nil, fmt.Errorf("creating request: %w", err)
	}
	if cfg.UserAgent != "" {
		req.Header.Set("User-Agent", cfg.UserAgent)
	}

	resp, err := httputil.DoWithRetry(ctx, b.Client, req, 0)
	if err != nil {
		return nil, fmt.Errorf("OpenAlex API request: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("OpenAlex API returned HTTP %d", resp.StatusCode)
	}

	var oar openAlexResponse
	if err := json.NewDecoder(resp.Body).Decode(&oar); err != nil {
		return nil, fmt.Errorf("parsing OpenAlex response: %w", err)
	}

	works := make([]types.CitedWork, 0, len(oar.Results))
	for i, work := range oar.Results {
		w := types.CitedWork{
			Identifier: work.ID,
			Title:      work.Title,
			Year:       work.PublicationYear,
			URL:        work.ID,
			Source:     "openalex",
			Score:      positionScore(i, len(oar.Results)),
		}
		// OpenAlex is DOI-centric; strip the resolver prefix.
		if work.DOI != "" {
			w.Identifier = strings.TrimPrefix(work.DOI, "https://doi.org/")
			w.URL = work.DOI
		}
		if src := work.PrimaryLocation.Source; src != nil {
			w.Venue = src.DisplayName
		}
		for _, a := range work.Authorships {
			if a.Author.DisplayName != "" {
				w.Authors = append(w.Authors, a.Author.DisplayName)
			}
		}
		works = append(works, w)
	}
	return works, nil
}

type openAlexResponse struct {
	Results []openAlexWork `json:"results"`
}

type openAlexWork struct {
	ID              string               `json:"id"`
	Title           string               `json:"title"`
	DOI             string               `json:"doi"`
	PublicationYear int                  `json:"publication_year"`
	Authorships     []openAlexAuthorship `json:"authorships"`
	PrimaryLocation openAlexLocation     `json:"primary_location"`
}

type openAlexAuthorship struct {
	Author openAlexAuthor `json:"author"`
}

type openAlexAuthor struct {
	DisplayName string `json:"display_name"`
}

type openAlexLocation struct {
	Source *openAlexSource `json:"source"`
}

type openAlexSource struct {
	DisplayName string `json:"display_name"`
}
