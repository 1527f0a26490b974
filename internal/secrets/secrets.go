// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

// Package secrets loads credentials from a directory of plain-text files.
// Each file holds one secret: the filename is the key and the trimmed
// contents the value.
package secrets

import (
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"strings"

	"github.com/pdiddy/citelink/pkg/types"
)

// Recognised key files.
const (
	KeySemanticScholar  = "semantic-scholar-api-key"
	KeyOpenAlexEmail    = "openalex-email"
	KeyReferenceService = "reference-service-token"
)

// Load reads all files in dir and returns a map of filename to trimmed
// contents. A missing directory is not an error and yields an empty map.
// Unreadable files are logged and skipped.
func Load(dir string) (map[string]string, error) {
	entries, err := os.ReadDir(dir)
	if err != nil {
		if os.IsNotExist(err) {
			return map[string]string{}, nil
		}
		return nil, fmt.Errorf("reading secrets directory %s: %w", dir, err)
	}

	secrets := make(map[string]string)
	for _, entry := range entries {
		name := entry.Name()
		if entry.IsDir() || strings.HasPrefix(name, ".") {
			continue
		}

		data, err := os.ReadFile(filepath.Join(dir, name))
		if err != nil {
			slog.Warn("could not read secret", "name", name, "error", err)
			continue
		}
		if value := strings.TrimSpace(string(data)); value != "" {
			secrets[name] = value
		}
	}
	return secrets, nil
}

// Apply copies known secrets into cfg. Values already set through the
// config file or environment take precedence.
func Apply(cfg *types.Config, secrets map[string]string) {
	fill := func(dst *string, key string) {
		if *dst == "" {
			*dst = secrets[key]
		}
	}
	fill(&cfg.Search.SemanticScholarAPIKey, KeySemanticScholar)
	fill(&cfg.Search.OpenAlexEmail, KeyOpenAlexEmail)
	fill(&cfg.Backend.Token, KeyReferenceService)
}
