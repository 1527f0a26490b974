// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package store

import (
	"context"
	"encoding/json"
	"fmt"
	"io"

	"go.yaml.in/yaml/v3"

	"github.com/pdiddy/citelink/pkg/types"
)

// Export is the serialized form of one stored document.
type Export struct {
	Document   DocumentSummary         `json:"document" yaml:"document"`
	Outline    types.Outline           `json:"outline" yaml:"outline"`
	References []types.ParsedReference `json:"references" yaml:"references"`
}

// ExportYAML writes the stored document docID to w as YAML.
func (s *Store) ExportYAML(ctx context.Context, docID string, w io.Writer) error {
	e, err := s.export(ctx, docID)
	if err != nil {
		return err
	}
	enc := yaml.NewEncoder(w)
	enc.SetIndent(2)
	if err := enc.Encode(e); err != nil {
		return fmt.Errorf("marshaling YAML: %w", err)
	}
	return enc.Close()
}

// ExportJSON writes the stored document docID to w as indented JSON.
func (s *Store) ExportJSON(ctx context.Context, docID string, w io.Writer) error {
	e, err := s.export(ctx, docID)
	if err != nil {
		return err
	}
	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")
	if err := enc.Encode(e); err != nil {
		return fmt.Errorf("marshaling JSON: %w", err)
	}
	return nil
}

func (s *Store) export(ctx context.Context, docID string) (*Export, error) {
	ds, err := s.Document(ctx, docID)
	if err != nil {
		return nil, err
	}
	idx, err := s.LoadIndex(ctx, docID)
	if err != nil {
		return nil, fmt.Errorf("loading %s for export: %w", docID, err)
	}
	return &Export{
		Document:   ds,
		Outline:    idx.Outline(),
		References: idx.References(),
	}, nil
}
