// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package types

import "time"

// HTTPConfig holds shared HTTP settings used by components that make network requests.
type HTTPConfig struct {
	// Timeout is the HTTP request timeout.
	Timeout time.Duration `json:"timeout" yaml:"timeout" mapstructure:"timeout"`

	// UserAgent is the User-Agent header sent with HTTP requests
	// (e.g. "citelink/0.1").
	UserAgent string `json:"user_agent" yaml:"user_agent" mapstructure:"user_agent"`
}

// IndexConfig holds settings for line aggregation and index builds.
type IndexConfig struct {
	// LineTolerance is the maximum bottom-Y difference, in display units,
	// between fragments on the same line (default 5).
	LineTolerance float64 `json:"line_tolerance" yaml:"line_tolerance" mapstructure:"line_tolerance"`

	// LineFontRatio, when positive, replaces LineTolerance with
	// LineFontRatio * fragment font size for fragments that report one.
	LineFontRatio float64 `json:"line_font_ratio" yaml:"line_font_ratio" mapstructure:"line_font_ratio"`

	// ReferencesScanPages is how many trailing pages are searched for a
	// references header (default 10).
	ReferencesScanPages int `json:"references_scan_pages" yaml:"references_scan_pages" mapstructure:"references_scan_pages"`

	// Prefetch is the number of pages extracted concurrently ahead of the
	// in-order indexing pass. Values below 2 extract sequentially.
	Prefetch int `json:"prefetch" yaml:"prefetch" mapstructure:"prefetch"`
}

// DefaultIndexConfig returns the settings used when none are configured.
func DefaultIndexConfig() IndexConfig {
	return IndexConfig{
		LineTolerance:       5,
		ReferencesScanPages: 10,
	}
}

// WithDefaults fills zero fields from DefaultIndexConfig.
func (c IndexConfig) WithDefaults() IndexConfig {
	d := DefaultIndexConfig()
	if c.LineTolerance <= 0 {
		c.LineTolerance = d.LineTolerance
	}
	if c.ReferencesScanPages <= 0 {
		c.ReferencesScanPages = d.ReferencesScanPages
	}
	return c
}

// BackendConfig holds settings for the backend reference/citation service.
type BackendConfig struct {
	HTTPConfig `yaml:",inline" mapstructure:",squash"`

	// BaseURL is the service root (e.g. "http://localhost:8070/api").
	// Empty disables the backend.
	BaseURL string `json:"base_url" yaml:"base_url" mapstructure:"base_url"`

	// Token is an optional bearer token.
	Token string `json:"token,omitempty" yaml:"token,omitempty" mapstructure:"token"`
}

// SearchConfig holds settings for external lookups of resolved queries.
type SearchConfig struct {
	HTTPConfig `yaml:",inline" mapstructure:",squash"`

	// MaxResults is the maximum number of results to return (default 5).
	MaxResults int `json:"max_results" yaml:"max_results" mapstructure:"max_results"`

	// Backends lists the enabled lookup backends by name
	// ("semantic_scholar", "openalex"). Empty enables all.
	Backends []string `json:"backends,omitempty" yaml:"backends,omitempty" mapstructure:"backends"`

	// SemanticScholarAPIKey is an optional API key for higher rate limits.
	SemanticScholarAPIKey string `json:"semantic_scholar_api_key,omitempty" yaml:"semantic_scholar_api_key,omitempty" mapstructure:"semantic_scholar_api_key"`

	// OpenAlexEmail is sent as the mailto parameter for OpenAlex's polite
	// pool.
	OpenAlexEmail string `json:"openalex_email,omitempty" yaml:"openalex_email,omitempty" mapstructure:"openalex_email"`
}

// StoreConfig holds settings for the local SQLite cache.
type StoreConfig struct {
	// Dir is the directory containing citelink.db.
	Dir string `json:"dir" yaml:"dir" mapstructure:"dir"`
}

// Config groups all component configurations.
type Config struct {
	Index   IndexConfig   `json:"index" yaml:"index" mapstructure:"index"`
	Backend BackendConfig `json:"backend" yaml:"backend" mapstructure:"backend"`
	Search  SearchConfig  `json:"search" yaml:"search" mapstructure:"search"`
	Store   StoreConfig   `json:"store" yaml:"store" mapstructure:"store"`
}
