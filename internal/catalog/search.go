// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package catalog

import (
	"context"
	"database/sql"
	"fmt"
	"os"
	"time"

	"github.com/pdiddy/markforge/pkg/types"
)

// SearchResult is one full-text match with document metadata (R3.2).
type SearchResult struct {
	RelPath     string `json:"rel_path" yaml:"rel_path"`
	Format      string `json:"format" yaml:"format"`
	Backend     string `json:"backend" yaml:"backend"`
	Status      string `json:"status" yaml:"status"`
	ConvertedAt string `json:"converted_at" yaml:"converted_at"`
	Snippet     string `json:"snippet" yaml:"snippet"`
}

// Search runs an FTS5 query over converted markdown bodies and file
// names. Results are ranked by relevance (R3.1, R3.3). A limit of zero
// uses the catalog default.
func (c *Catalog) Search(ctx context.Context, query string, limit int) ([]SearchResult, error) {
	if query == "" {
		return nil, fmt.Errorf("search query must not be empty")
	}
	if limit <= 0 {
		limit = c.maxResults
	}

	rows, err := c.db.QueryContext(ctx,
		`SELECT d.rel_path, d.format, d.backend, d.status, d.converted_at,
			snippet(documents_fts, 1, '[', ']', '...', 12)
		FROM documents_fts
		JOIN documents d ON d.rowid = documents_fts.rowid
		WHERE documents_fts MATCH ?
		ORDER BY documents_fts.rank
		LIMIT ?`,
		query, limit,
	)
	if err != nil {
		return nil, fmt.Errorf("querying catalog: %w", err)
	}
	defer rows.Close()

	var results []SearchResult
	for rows.Next() {
		var (
			r       SearchResult
			backend sql.NullString
			conv    sql.NullString
		)
		if err := rows.Scan(&r.RelPath, &r.Format, &backend, &r.Status, &conv, &r.Snippet); err != nil {
			return nil, fmt.Errorf("scanning row: %w", err)
		}
		if backend.Valid {
			r.Backend = backend.String
		}
		if conv.Valid {
			r.ConvertedAt = conv.String
		}
		results = append(results, r)
	}

	return results, rows.Err()
}

// Summary aggregates catalog state for the status command (R4.1-R4.4).
type Summary struct {
	Total     int      `json:"total" yaml:"total"`
	Converted int      `json:"converted" yaml:"converted"`
	Partial   int      `json:"partial" yaml:"partial"`
	Skipped   int      `json:"skipped" yaml:"skipped"`
	Failed    int      `json:"failed" yaml:"failed"`
	LastRun   string   `json:"last_run,omitempty" yaml:"last_run,omitempty"`
	Stale     []string `json:"stale,omitempty" yaml:"stale,omitempty"`
	Missing   []string `json:"missing,omitempty" yaml:"missing,omitempty"`
	Failures  []string `json:"failures,omitempty" yaml:"failures,omitempty"`
}

// Summary reports per-status counts, the most recent run time, documents
// whose source changed after conversion (stale), documents whose source
// is gone (missing), and the documents that failed last run.
func (c *Catalog) Summary(ctx context.Context) (Summary, error) {
	rows, err := c.db.QueryContext(ctx,
		`SELECT rel_path, source_path, status, source_mod_time, converted_at, error
		 FROM documents ORDER BY rel_path`,
	)
	if err != nil {
		return Summary{}, fmt.Errorf("querying catalog: %w", err)
	}
	defer rows.Close()

	var s Summary
	var lastRun time.Time

	for rows.Next() {
		var relPath, sourcePath, status string
		var modTime, convertedAt, errText sql.NullString
		if err := rows.Scan(&relPath, &sourcePath, &status, &modTime, &convertedAt, &errText); err != nil {
			return Summary{}, fmt.Errorf("scanning row: %w", err)
		}

		s.Total++
		switch types.ConversionStatus(status) {
		case types.StatusConverted:
			s.Converted++
		case types.StatusPartial:
			s.Partial++
		case types.StatusSkipped:
			s.Skipped++
		case types.StatusFailed:
			s.Failed++
			if errText.Valid && errText.String != "" {
				s.Failures = append(s.Failures, fmt.Sprintf("%s: %s", relPath, errText.String))
			} else {
				s.Failures = append(s.Failures, relPath)
			}
		}

		if convertedAt.Valid {
			if t, err := time.Parse(time.RFC3339, convertedAt.String); err == nil && t.After(lastRun) {
				lastRun = t
			}
		}

		info, err := os.Stat(sourcePath)
		if os.IsNotExist(err) {
			s.Missing = append(s.Missing, relPath)
			continue
		}
		if err != nil || !modTime.Valid {
			continue
		}
		recorded, err := time.Parse(time.RFC3339Nano, modTime.String)
		if err == nil && info.ModTime().UTC().After(recorded) {
			s.Stale = append(s.Stale, relPath)
		}
	}
	if err := rows.Err(); err != nil {
		return Summary{}, err
	}

	if !lastRun.IsZero() {
		s.LastRun = lastRun.Format(time.RFC3339)
	}
	return s, nil
}
