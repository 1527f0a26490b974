// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package types

// CitedWork is a candidate match for a resolved search query, returned by
// an external scholarly index.
type CitedWork struct {
	// Identifier is the canonical ID from the source (DOI, arXiv ID or the
	// source's own work ID).
	Identifier string `json:"identifier" yaml:"identifier"`

	Title   string   `json:"title" yaml:"title"`
	Authors []string `json:"authors" yaml:"authors"`

	// Year is the publication year, zero when unknown.
	Year int `json:"year,omitempty" yaml:"year,omitempty"`

	// Venue is the journal or conference name when the source reports one.
	Venue string `json:"venue,omitempty" yaml:"venue,omitempty"`

	// URL links to the work's landing page.
	URL string `json:"url,omitempty" yaml:"url,omitempty"`

	// Source names the backend(s) that returned the work, comma-separated
	// after deduplication (e.g. "semantic_scholar,openalex").
	Source string `json:"source" yaml:"source"`

	// Score is a position-based relevance in [0.1, 1.0].
	Score float64 `json:"score" yaml:"score"`
}
