// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

// Package catalog persists conversion outcomes and builds a full-text
// index over the converted markdown.
// Implements: prd004-catalog (R1-R5);
//
//	docs/ARCHITECTURE § Conversion Catalog.
package catalog

import (
	"context"
	"database/sql"
	"fmt"
	"os"
	"path/filepath"
	"time"

	_ "github.com/mattn/go-sqlite3"

	"github.com/pdiddy/markforge/pkg/types"
)

const (
	catalogDir = ".catalog"
	dbFile     = "markforge.db"
)

// Catalog manages the conversion ledger SQLite database.
type Catalog struct {
	db         *sql.DB
	dir        string
	maxResults int
}

// Exists reports whether a catalog database has been created under
// outputDir. It lets read-only callers avoid creating an empty catalog.
func Exists(outputDir string) bool {
	_, err := os.Stat(filepath.Join(outputDir, catalogDir, dbFile))
	return err == nil
}

// NewCatalog opens or creates the catalog database at
// outputDir/.catalog/markforge.db. It creates the schema if it does not
// exist (R1.1, R1.2).
func NewCatalog(outputDir string, cfg types.CatalogConfig) (*Catalog, error) {
	dir := filepath.Join(outputDir, catalogDir)
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return nil, fmt.Errorf("creating catalog directory: %w", err)
	}

	dbPath := filepath.Join(dir, dbFile)
	db, err := sql.Open("sqlite3", dbPath+"?_journal_mode=WAL&_foreign_keys=on")
	if err != nil {
		return nil, fmt.Errorf("opening database: %w", err)
	}

	maxResults := cfg.MaxResults
	if maxResults <= 0 {
		maxResults = 20
	}

	c := &Catalog{db: db, dir: dir, maxResults: maxResults}

	if err := c.createSchema(); err != nil {
		db.Close()
		return nil, fmt.Errorf("creating schema: %w", err)
	}

	return c, nil
}

// Close releases the database connection.
func (c *Catalog) Close() error {
	return c.db.Close()
}

func (c *Catalog) createSchema() error {
	statements := []string{
		`CREATE TABLE IF NOT EXISTS documents (
			rowid INTEGER PRIMARY KEY AUTOINCREMENT,
			rel_path TEXT NOT NULL UNIQUE,
			source_path TEXT NOT NULL,
			format TEXT NOT NULL,
			backend TEXT,
			status TEXT NOT NULL,
			chunks INTEGER,
			images INTEGER,
			duration_ms INTEGER,
			source_mod_time TEXT,
			converted_at TEXT,
			error TEXT,
			body TEXT
		)`,
		`CREATE INDEX IF NOT EXISTS idx_documents_status ON documents(status)`,
	}

	for _, stmt := range statements {
		if _, err := c.db.Exec(stmt); err != nil {
			return fmt.Errorf("executing schema statement: %w", err)
		}
	}

	// FTS5 virtual table with triggers for sync.
	var ftsExists int
	if err := c.db.QueryRow(
		`SELECT count(*) FROM sqlite_master WHERE type='table' AND name='documents_fts'`,
	).Scan(&ftsExists); err != nil {
		return fmt.Errorf("checking FTS table: %w", err)
	}

	if ftsExists == 0 {
		ftsStatements := []string{
			`CREATE VIRTUAL TABLE documents_fts USING fts5(rel_path, body, content=documents, content_rowid=rowid)`,
			`CREATE TRIGGER documents_ai AFTER INSERT ON documents BEGIN
				INSERT INTO documents_fts(rowid, rel_path, body) VALUES (new.rowid, new.rel_path, new.body);
			END`,
			`CREATE TRIGGER documents_ad AFTER DELETE ON documents BEGIN
				INSERT INTO documents_fts(documents_fts, rowid, rel_path, body) VALUES('delete', old.rowid, old.rel_path, old.body);
			END`,
			`CREATE TRIGGER documents_au AFTER UPDATE ON documents BEGIN
				INSERT INTO documents_fts(documents_fts, rowid, rel_path, body) VALUES('delete', old.rowid, old.rel_path, old.body);
				INSERT INTO documents_fts(rowid, rel_path, body) VALUES (new.rowid, new.rel_path, new.body);
			END`,
		}
		for _, stmt := range ftsStatements {
			if _, err := c.db.Exec(stmt); err != nil {
				return fmt.Errorf("creating FTS infrastructure: %w", err)
			}
		}
	}

	return nil
}

// Record upserts one conversion outcome (R2.1-R2.4). For converted and
// partial documents the markdown body is read from the output file and
// indexed. Skipped documents insert a stub row only when the document has
// never been recorded, so an earlier successful record survives re-runs.
func (c *Catalog) Record(ctx context.Context, res types.Result) error {
	now := time.Now().UTC().Format(time.RFC3339)
	modTime := res.Document.ModTime.UTC().Format(time.RFC3339Nano)

	if res.Status == types.StatusSkipped {
		_, err := c.db.ExecContext(ctx,
			`INSERT OR IGNORE INTO documents
				(rel_path, source_path, format, status, source_mod_time, converted_at, body)
			 VALUES (?, ?, ?, ?, ?, ?, '')`,
			res.Document.RelPath, res.Document.SourcePath, string(res.Document.Format),
			string(res.Status), modTime, now,
		)
		if err != nil {
			return fmt.Errorf("recording skip for %s: %w", res.Document.RelPath, err)
		}
		return nil
	}

	var body string
	if res.Status == types.StatusConverted || res.Status == types.StatusPartial {
		data, err := os.ReadFile(res.OutputPath)
		if err != nil {
			return fmt.Errorf("reading output for %s: %w", res.Document.RelPath, err)
		}
		body = string(data)
	}

	errText := ""
	if res.Err != nil {
		errText = res.Err.Error()
	}

	tx, err := c.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("beginning transaction: %w", err)
	}
	defer tx.Rollback()

	_, err = tx.ExecContext(ctx,
		`INSERT INTO documents
			(rel_path, source_path, format, backend, status, chunks, images,
			 duration_ms, source_mod_time, converted_at, error, body)
		 VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)
		 ON CONFLICT(rel_path) DO UPDATE SET
			source_path=excluded.source_path, format=excluded.format,
			backend=excluded.backend, status=excluded.status,
			chunks=excluded.chunks, images=excluded.images,
			duration_ms=excluded.duration_ms,
			source_mod_time=excluded.source_mod_time,
			converted_at=excluded.converted_at,
			error=excluded.error, body=excluded.body`,
		res.Document.RelPath, res.Document.SourcePath, string(res.Document.Format),
		res.Backend, string(res.Status), res.Chunks, res.Images,
		res.Duration.Milliseconds(), modTime, now, errText, body,
	)
	if err != nil {
		return fmt.Errorf("recording %s: %w", res.Document.RelPath, err)
	}

	return tx.Commit()
}
