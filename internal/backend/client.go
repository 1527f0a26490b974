// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

// Package backend talks to the reference/citation service that extracts
// bibliographies and citation spans from PDFs on the server side.
//
// Endpoints, relative to the configured base URL:
//
//	GET /documents/{id}/references  -> types.ExternalReferences
//	GET /documents/{id}/citations   -> {"spans": [types.CitationSpan, ...]}
//
// A 404 means the service has nothing for the document; it is reported as
// absent (nil, nil), not as an error.
package backend

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"
	"time"

	"github.com/pdiddy/citelink/internal/httputil"
	"github.com/pdiddy/citelink/pkg/types"
)

const defaultTimeout = 30 * time.Second

// Client implements index.ReferenceProvider over HTTP.
type Client struct {
	BaseURL   string
	Token     string
	UserAgent string
	HTTP      *http.Client
}

// New builds a client from configuration. It returns nil when no base URL
// is configured, which callers treat as "no backend".
func New(cfg types.BackendConfig) *Client {
	if strings.TrimSpace(cfg.BaseURL) == "" {
		return nil
	}
	timeout := cfg.Timeout
	if timeout <= 0 {
		timeout = defaultTimeout
	}
	return &Client{
		BaseURL:   strings.TrimRight(cfg.BaseURL, "/"),
		Token:     cfg.Token,
		UserAgent: cfg.UserAgent,
		HTTP:      &http.Client{Timeout: timeout},
	}
}

// ExistingReferences fetches the service's reference list for docID.
func (c *Client) ExistingReferences(ctx context.Context, docID string) (*types.ExternalReferences, error) {
	var refs types.ExternalReferences
	found, err := c.get(ctx, docID, "references", &refs)
	if err != nil || !found {
		return nil, err
	}
	if refs.TotalCount == 0 {
		refs.TotalCount = len(refs.Entries)
	}
	return &refs, nil
}

// ExistingCitationSpans fetches the service's citation spans for docID.
func (c *Client) ExistingCitationSpans(ctx context.Context, docID string) ([]types.CitationSpan, error) {
	var body struct {
		Spans []types.CitationSpan `json:"spans"`
	}
	found, err := c.get(ctx, docID, "citations", &body)
	if err != nil || !found {
		return nil, err
	}
	if body.Spans == nil {
		body.Spans = []types.CitationSpan{}
	}
	return body.Spans, nil
}

// get decodes the JSON document at /documents/{docID}/{resource} into v.
// It reports false for 404.
func (c *Client) get(ctx context.Context, docID, resource string, v any) (bool, error) {
	if docID == "" {
		return false, fmt.Errorf("fetching %s: empty document id", resource)
	}
	reqURL := c.BaseURL + "/documents/" + url.PathEscape(docID) + "/" + resource

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, reqURL, nil)
	if err != nil {
		return false, fmt.Errorf("creating request: %w", err)
	}
	req.Header.Set("Accept", "application/json")
	if c.UserAgent != "" {
		req.Header.Set("User-Agent", c.UserAgent)
	}
	if c.Token != "" {
		req.Header.Set("Authorization", "Bearer "+c.Token)
	}

	client := c.HTTP
	if client == nil {
		client = http.DefaultClient
	}
	resp, err := httputil.DoWithRetry(ctx, client, req, 0)
	if err != nil {
		return false, fmt.Errorf("fetching %s for %s: %w", resource, docID, err)
	}
	defer resp.Body.Close()

	switch {
	case resp.StatusCode == http.StatusNotFound:
		io.Copy(io.Discard, resp.Body)
		return false, nil
	case resp.StatusCode != http.StatusOK:
		snippet, _ := io.ReadAll(io.LimitReader(resp.Body, 512))
		return false, fmt.Errorf("reference service returned HTTP %d for %s: %s",
			resp.StatusCode, resource, strings.TrimSpace(string(snippet)))
	}

	if err := json.NewDecoder(resp.Body).Decode(v); err != nil {
		return false, fmt.Errorf("decoding %s for %s: %w", resource, docID, err)
	}
	return true, nil
}
