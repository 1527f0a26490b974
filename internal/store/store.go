// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

// Package store persists built document indexes in SQLite so they can be
// listed, searched and exported without re-reading the PDF.
//
// The store also serves as a local index.ReferenceProvider: reference lists
// and citation spans that originally came from the backend service are
// returned on later loads without a network round trip. Heuristic reference
// lists are stored for search and export but never replayed as backend data.
package store

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"

	_ "github.com/mattn/go-sqlite3"

	"github.com/pdiddy/citelink/internal/index"
	"github.com/pdiddy/citelink/pkg/types"
)

const (
	defaultDir = ".citelink"
	dbFile     = "citelink.db"
)

// Store manages the citelink SQLite database.
type Store struct {
	db  *sql.DB
	dir string
}

// Open opens or creates the database at cfg.Dir/citelink.db and creates the
// schema if it does not exist.
func Open(cfg types.StoreConfig) (*Store, error) {
	dir := cfg.Dir
	if dir == "" {
		dir = defaultDir
	}
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return nil, fmt.Errorf("creating store directory: %w", err)
	}

	db, err := sql.Open("sqlite3", filepath.Join(dir, dbFile)+"?_journal_mode=WAL&_foreign_keys=on")
	if err != nil {
		return nil, fmt.Errorf("opening database: %w", err)
	}

	s := &Store{db: db, dir: dir}
	if err := s.createSchema(); err != nil {
		db.Close()
		return nil, fmt.Errorf("creating schema: %w", err)
	}
	return s, nil
}

// Dir returns the directory holding the database.
func (s *Store) Dir() string { return s.dir }

// Close releases the database connection.
func (s *Store) Close() error {
	return s.db.Close()
}

func (s *Store) createSchema() error {
	statements := []string{
		`CREATE TABLE IF NOT EXISTS documents (
			id TEXT PRIMARY KEY,
			load_id TEXT NOT NULL,
			page_count INTEGER NOT NULL,
			refs_source TEXT NOT NULL DEFAULT '',
			refs_start_page INTEGER,
			page_errors INTEGER NOT NULL DEFAULT 0,
			indexed_at TEXT NOT NULL
		)`,
		`CREATE TABLE IF NOT EXISTS refs (
			rowid INTEGER PRIMARY KEY AUTOINCREMENT,
			document_id TEXT NOT NULL REFERENCES documents(id) ON DELETE CASCADE,
			seq INTEGER NOT NULL,
			number INTEGER NOT NULL,
			raw_text TEXT NOT NULL,
			authors TEXT,
			title TEXT,
			page INTEGER NOT NULL
		)`,
		`CREATE INDEX IF NOT EXISTS idx_refs_document ON refs(document_id, seq)`,
		`CREATE TABLE IF NOT EXISTS locations (
			document_id TEXT NOT NULL REFERENCES documents(id) ON DELETE CASCADE,
			normalized_id TEXT NOT NULL,
			seq INTEGER NOT NULL,
			kind TEXT NOT NULL,
			raw_id TEXT NOT NULL,
			page INTEGER NOT NULL,
			y REAL NOT NULL,
			caption TEXT,
			PRIMARY KEY (document_id, normalized_id)
		)`,
		`CREATE TABLE IF NOT EXISTS citation_spans (
			document_id TEXT NOT NULL REFERENCES documents(id) ON DELETE CASCADE,
			seq INTEGER NOT NULL,
			page INTEGER NOT NULL,
			raw_text TEXT NOT NULL,
			reference_ids TEXT NOT NULL,
			confidence REAL NOT NULL,
			provenance TEXT NOT NULL,
			box TEXT,
			PRIMARY KEY (document_id, seq)
		)`,
	}
	for _, stmt := range statements {
		if _, err := s.db.Exec(stmt); err != nil {
			return fmt.Errorf("executing schema statement: %w", err)
		}
	}

	// FTS4 over reference text, kept in sync by triggers. FTS4 ships in the
	// driver's default build; FTS5 needs the sqlite_fts5 tag.
	var ftsExists int
	if err := s.db.QueryRow(
		`SELECT count(*) FROM sqlite_master WHERE type='table' AND name='refs_fts'`,
	).Scan(&ftsExists); err != nil {
		return fmt.Errorf("checking FTS table: %w", err)
	}
	if ftsExists > 0 {
		return nil
	}

	// External-content FTS4 reads old values from refs, so deletes must run
	// before the row goes away.
	ftsStatements := []string{
		`CREATE VIRTUAL TABLE refs_fts USING fts4(content="refs", raw_text, title, authors)`,
		`CREATE TRIGGER refs_bd BEFORE DELETE ON refs BEGIN
			DELETE FROM refs_fts WHERE docid = old.rowid;
		END`,
		`CREATE TRIGGER refs_bu BEFORE UPDATE ON refs BEGIN
			DELETE FROM refs_fts WHERE docid = old.rowid;
		END`,
		`CREATE TRIGGER refs_ai AFTER INSERT ON refs BEGIN
			INSERT INTO refs_fts(docid, raw_text, title, authors) VALUES (new.rowid, new.raw_text, new.title, new.authors);
		END`,
		`CREATE TRIGGER refs_au AFTER UPDATE ON refs BEGIN
			INSERT INTO refs_fts(docid, raw_text, title, authors) VALUES (new.rowid, new.raw_text, new.title, new.authors);
		END`,
	}
	for _, stmt := range ftsStatements {
		if _, err := s.db.Exec(stmt); err != nil {
			return fmt.Errorf("creating FTS infrastructure: %w", err)
		}
	}
	return nil
}

// SaveIndex replaces everything stored for idx.DocumentID with the
// contents of idx, in one transaction.
func (s *Store) SaveIndex(ctx context.Context, idx *index.DocumentIndex) error {
	if idx == nil || idx.DocumentID == "" {
		return errors.New("saving index: missing document id")
	}

	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("beginning transaction: %w", err)
	}
	defer tx.Rollback()

	// Children go explicitly so the FTS delete trigger sees every row.
	for _, table := range []string{"refs", "locations", "citation_spans", "documents"} {
		col := "document_id"
		if table == "documents" {
			col = "id"
		}
		if _, err := tx.ExecContext(ctx, `DELETE FROM `+table+` WHERE `+col+` = ?`, idx.DocumentID); err != nil {
			return fmt.Errorf("clearing %s: %w", table, err)
		}
	}

	state := idx.ReferencesState()
	var startPage sql.NullInt64
	if state.StartPage != nil {
		startPage = sql.NullInt64{Int64: int64(*state.StartPage), Valid: true}
	}
	if _, err := tx.ExecContext(ctx,
		`INSERT INTO documents (id, load_id, page_count, refs_source, refs_start_page, page_errors, indexed_at)
		 VALUES (?, ?, ?, ?, ?, ?, ?)`,
		idx.DocumentID, idx.LoadID, idx.PageCount, string(state.Source), startPage,
		len(idx.PageErrors()), time.Now().UTC().Format(time.RFC3339),
	); err != nil {
		return fmt.Errorf("inserting document: %w", err)
	}

	refStmt, err := tx.PrepareContext(ctx,
		`INSERT INTO refs (document_id, seq, number, raw_text, authors, title, page) VALUES (?, ?, ?, ?, ?, ?, ?)`)
	if err != nil {
		return fmt.Errorf("preparing reference insert: %w", err)
	}
	defer refStmt.Close()
	for i, r := range idx.References() {
		if _, err := refStmt.ExecContext(ctx,
			idx.DocumentID, i, r.Number, r.RawText, nullString(r.Authors), nullString(r.Title), r.PageNumber,
		); err != nil {
			return fmt.Errorf("inserting reference %d: %w", r.Number, err)
		}
	}

	locStmt, err := tx.PrepareContext(ctx,
		`INSERT INTO locations (document_id, normalized_id, seq, kind, raw_id, page, y, caption) VALUES (?, ?, ?, ?, ?, ?, ?, ?)`)
	if err != nil {
		return fmt.Errorf("preparing location insert: %w", err)
	}
	defer locStmt.Close()
	for i, loc := range idx.Locations() {
		if _, err := locStmt.ExecContext(ctx,
			idx.DocumentID, loc.NormalizedID, i, string(loc.Type), loc.RawID, loc.PageNumber, loc.Y, loc.Caption,
		); err != nil {
			return fmt.Errorf("inserting location %s: %w", loc.NormalizedID, err)
		}
	}

	spanStmt, err := tx.PrepareContext(ctx,
		`INSERT INTO citation_spans (document_id, seq, page, raw_text, reference_ids, confidence, provenance, box) VALUES (?, ?, ?, ?, ?, ?, ?, ?)`)
	if err != nil {
		return fmt.Errorf("preparing span insert: %w", err)
	}
	defer spanStmt.Close()
	for i, sp := range idx.AllCitationSpans() {
		ids, _ := json.Marshal(sp.ReferenceIDs)
		var box sql.NullString
		if sp.Box != nil {
			b, _ := json.Marshal(sp.Box)
			box = sql.NullString{String: string(b), Valid: true}
		}
		if _, err := spanStmt.ExecContext(ctx,
			idx.DocumentID, i, sp.PageNumber, sp.RawText, string(ids), sp.Confidence, string(sp.Provenance), box,
		); err != nil {
			return fmt.Errorf("inserting citation span: %w", err)
		}
	}

	return tx.Commit()
}

// DeleteDocument removes a document and everything stored for it.
func (s *Store) DeleteDocument(ctx context.Context, docID string) error {
	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("beginning transaction: %w", err)
	}
	defer tx.Rollback()

	var deleted int64
	for _, table := range []string{"refs", "locations", "citation_spans", "documents"} {
		col := "document_id"
		if table == "documents" {
			col = "id"
		}
		res, err := tx.ExecContext(ctx, `DELETE FROM `+table+` WHERE `+col+` = ?`, docID)
		if err != nil {
			return fmt.Errorf("deleting from %s: %w", table, err)
		}
		if table == "documents" {
			deleted, _ = res.RowsAffected()
		}
	}
	if deleted == 0 {
		return fmt.Errorf("document %s not found", docID)
	}
	return tx.Commit()
}

func nullString(p *string) sql.NullString {
	if p == nil {
		return sql.NullString{}
	}
	return sql.NullString{String: *p, Valid: true}
}

func stringPtr(ns sql.NullString) *string {
	if !ns.Valid {
		return nil
	}
	v := ns.String
	return &v
}

// ftsQuery turns free text into an FTS query of quoted terms, so
// punctuation in citations ("Smith, J.") cannot break the query syntax.
func ftsQuery(text string) string {
	var terms []string
	for _, f := range strings.FieldsFunc(text, func(r rune) bool {
		return !(r == '-' || r == '\'' || r >= '0' && r <= '9' || r >= 'a' && r <= 'z' || r >= 'A' && r <= 'Z' || r > 127)
	}) {
		terms = append(terms, `"`+strings.ReplaceAll(f, `"`, `""`)+`"`)
	}
	return strings.Join(terms, " ")
}
