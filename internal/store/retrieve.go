// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package store

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"

	"github.com/pdiddy/citelink/internal/index"
	"github.com/pdiddy/citelink/pkg/types"
)

const defaultSearchLimit = 20

// DocumentSummary describes one stored document.
type DocumentSummary struct {
	ID             string                 `json:"id" yaml:"id"`
	PageCount      int                    `json:"page_count" yaml:"page_count"`
	RefsSource     types.ReferencesSource `json:"references_source" yaml:"references_source"`
	RefsStartPage  *int                   `json:"references_start_page,omitempty" yaml:"references_start_page,omitempty"`
	PageErrors     int                    `json:"page_errors" yaml:"page_errors"`
	References     int                    `json:"references" yaml:"references"`
	Locations      int                    `json:"locations" yaml:"locations"`
	IndexedAt      string                 `json:"indexed_at" yaml:"indexed_at"`
}

// ReferenceHit is a full-text search result.
type ReferenceHit struct {
	DocumentID string `json:"document_id" yaml:"document_id"`
	types.ParsedReference
}

// ErrNotFound is returned when a document has not been stored.
var ErrNotFound = errors.New("document not stored")

// Documents lists every stored document ordered by id.
func (s *Store) Documents(ctx context.Context) ([]DocumentSummary, error) {
	rows, err := s.db.QueryContext(ctx,
		`SELECT d.id, d.page_count, d.refs_source, d.refs_start_page, d.page_errors, d.indexed_at,
			(SELECT count(*) FROM refs r WHERE r.document_id = d.id),
			(SELECT count(*) FROM locations l WHERE l.document_id = d.id)
		FROM documents d ORDER BY d.id`)
	if err != nil {
		return nil, fmt.Errorf("listing documents: %w", err)
	}
	defer rows.Close()

	var out []DocumentSummary
	for rows.Next() {
		ds, err := scanSummary(rows)
		if err != nil {
			return nil, err
		}
		out = append(out, ds)
	}
	return out, rows.Err()
}

// Document returns the summary for docID, or ErrNotFound.
func (s *Store) Document(ctx context.Context, docID string) (DocumentSummary, error) {
	row := s.db.QueryRowContext(ctx,
		`SELECT d.id, d.page_count, d.refs_source, d.refs_start_page, d.page_errors, d.indexed_at,
			(SELECT count(*) FROM refs r WHERE r.document_id = d.id),
			(SELECT count(*) FROM locations l WHERE l.document_id = d.id)
		FROM documents d WHERE d.id = ?`, docID)
	ds, err := scanSummary(row)
	if errors.Is(err, sql.ErrNoRows) {
		return DocumentSummary{}, fmt.Errorf("%s: %w", docID, ErrNotFound)
	}
	return ds, err
}

type scanner interface {
	Scan(dest ...any) error
}

func scanSummary(sc scanner) (DocumentSummary, error) {
	var (
		ds     DocumentSummary
		source string
		start  sql.NullInt64
	)
	if err := sc.Scan(&ds.ID, &ds.PageCount, &source, &start, &ds.PageErrors, &ds.IndexedAt,
		&ds.References, &ds.Locations); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return ds, err
		}
		return ds, fmt.Errorf("scanning document: %w", err)
	}
	ds.RefsSource = types.ReferencesSource(source)
	if start.Valid {
		p := int(start.Int64)
		ds.RefsStartPage = &p
	}
	return ds, nil
}

// References returns the stored reference list for docID in entry order.
func (s *Store) References(ctx context.Context, docID string) ([]types.ParsedReference, error) {
	rows, err := s.db.QueryContext(ctx,
		`SELECT number, raw_text, authors, title, page FROM refs WHERE document_id = ? ORDER BY seq`, docID)
	if err != nil {
		return nil, fmt.Errorf("querying references: %w", err)
	}
	defer rows.Close()

	var out []types.ParsedReference
	for rows.Next() {
		r, err := scanReference(rows)
		if err != nil {
			return nil, err
		}
		out = append(out, r)
	}
	return out, rows.Err()
}

func scanReference(sc scanner, extra ...any) (types.ParsedReference, error) {
	var (
		r              types.ParsedReference
		authors, title sql.NullString
	)
	dest := append(extra, &r.Number, &r.RawText, &authors, &title, &r.PageNumber)
	if err := sc.Scan(dest...); err != nil {
		return r, fmt.Errorf("scanning reference: %w", err)
	}
	r.Authors = stringPtr(authors)
	r.Title = stringPtr(title)
	return r, nil
}

// Locations returns the stored figure, table, algorithm, equation and
// section entries for docID in index order.
func (s *Store) Locations(ctx context.Context, docID string) ([]types.FigureLocation, error) {
	rows, err := s.db.QueryContext(ctx,
		`SELECT kind, raw_id, normalized_id, page, y, caption FROM locations WHERE document_id = ? ORDER BY seq`, docID)
	if err != nil {
		return nil, fmt.Errorf("querying locations: %w", err)
	}
	defer rows.Close()

	var out []types.FigureLocation
	for rows.Next() {
		var (
			loc     types.FigureLocation
			kind    string
			caption sql.NullString
		)
		if err := rows.Scan(&kind, &loc.RawID, &loc.NormalizedID, &loc.PageNumber, &loc.Y, &caption); err != nil {
			return nil, fmt.Errorf("scanning location: %w", err)
		}
		loc.Type = types.MatchKind(kind)
		loc.Caption = caption.String
		out = append(out, loc)
	}
	return out, rows.Err()
}

// SearchReferences runs a full-text query over stored reference text,
// titles and authors. Every word must match. Hits come back in document and
// entry order; an empty docID searches every document.
func (s *Store) SearchReferences(ctx context.Context, query, docID string, limit int) ([]ReferenceHit, error) {
	q := ftsQuery(query)
	if q == "" {
		return nil, nil
	}
	if limit <= 0 {
		limit = defaultSearchLimit
	}

	stmt := `SELECT r.document_id, r.number, r.raw_text, r.authors, r.title, r.page
		FROM refs_fts
		JOIN refs r ON r.rowid = refs_fts.docid
		WHERE refs_fts MATCH ?`
	args := []any{q}
	if docID != "" {
		stmt += ` AND r.document_id = ?`
		args = append(args, docID)
	}
	stmt += ` ORDER BY r.document_id, r.seq LIMIT ?`
	args = append(args, limit)

	rows, err := s.db.QueryContext(ctx, stmt, args...)
	if err != nil {
		return nil, fmt.Errorf("searching references: %w", err)
	}
	defer rows.Close()

	var hits []ReferenceHit
	for rows.Next() {
		var h ReferenceHit
		r, err := scanReference(rows, &h.DocumentID)
		if err != nil {
			return nil, err
		}
		h.ParsedReference = r
		hits = append(hits, h)
	}
	return hits, rows.Err()
}

// ExistingReferences returns the stored reference list for docID when it
// originally came from the backend service. Heuristic lists and unknown
// documents yield nil.
func (s *Store) ExistingReferences(ctx context.Context, docID string) (*types.ExternalReferences, error) {
	ds, err := s.Document(ctx, docID)
	if errors.Is(err, ErrNotFound) {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	if ds.RefsSource != types.SourceExternal || ds.RefsStartPage == nil {
		return nil, nil
	}

	refs, err := s.References(ctx, docID)
	if err != nil {
		return nil, err
	}
	return &types.ExternalReferences{
		Entries:    refs,
		StartPage:  *ds.RefsStartPage,
		TotalCount: len(refs),
	}, nil
}

// ExistingCitationSpans returns the backend citation spans stored for docID.
func (s *Store) ExistingCitationSpans(ctx context.Context, docID string) ([]types.CitationSpan, error) {
	rows, err := s.db.QueryContext(ctx,
		`SELECT page, raw_text, reference_ids, confidence, provenance, box
		FROM citation_spans WHERE document_id = ? ORDER BY seq`, docID)
	if err != nil {
		return nil, fmt.Errorf("querying citation spans: %w", err)
	}
	defer rows.Close()

	var out []types.CitationSpan
	for rows.Next() {
		var (
			sp         types.CitationSpan
			ids        string
			provenance string
			box        sql.NullString
		)
		if err := rows.Scan(&sp.PageNumber, &sp.RawText, &ids, &sp.Confidence, &provenance, &box); err != nil {
			return nil, fmt.Errorf("scanning citation span: %w", err)
		}
		if err := json.Unmarshal([]byte(ids), &sp.ReferenceIDs); err != nil {
			return nil, fmt.Errorf("decoding reference ids: %w", err)
		}
		if box.Valid {
			sp.Box = &types.BoundingBox{}
			if err := json.Unmarshal([]byte(box.String), sp.Box); err != nil {
				return nil, fmt.Errorf("decoding span box: %w", err)
			}
		}
		sp.Provenance = types.Provenance(provenance)
		out = append(out, sp)
	}
	return out, rows.Err()
}

// LoadIndex rebuilds a DocumentIndex from stored rows. Page errors are not
// persisted beyond their count, so the result reports none.
func (s *Store) LoadIndex(ctx context.Context, docID string) (*index.DocumentIndex, error) {
	ds, err := s.Document(ctx, docID)
	if err != nil {
		return nil, err
	}
	locs, err := s.Locations(ctx, docID)
	if err != nil {
		return nil, err
	}
	refs, err := s.References(ctx, docID)
	if err != nil {
		return nil, err
	}
	spans, err := s.ExistingCitationSpans(ctx, docID)
	if err != nil {
		return nil, err
	}

	idx := index.New(docID)
	idx.PageCount = ds.PageCount
	for _, loc := range locs {
		idx.Add(loc)
	}
	idx.SetReferences(refs, types.ReferencesSectionState{StartPage: ds.RefsStartPage, Source: ds.RefsSource})
	idx.SetCitationSpans(spans)
	return idx, nil
}
