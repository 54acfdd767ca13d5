// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package catalog

import (
	"context"
	"database/sql"
	"fmt"
	"os"
	"path/filepath"

	"go.yaml.in/yaml/v3"
)

// ExportEntry holds the catalog fields written to export.yaml (R5.2).
// Bodies are excluded; the markdown lives in the output tree.
type ExportEntry struct {
	RelPath     string `json:"rel_path" yaml:"rel_path"`
	SourcePath  string `json:"source_path" yaml:"source_path"`
	Format      string `json:"format" yaml:"format"`
	Backend     string `json:"backend,omitempty" yaml:"backend,omitempty"`
	Status      string `json:"status" yaml:"status"`
	Chunks      int    `json:"chunks,omitempty" yaml:"chunks,omitempty"`
	Images      int    `json:"images,omitempty" yaml:"images,omitempty"`
	DurationMS  int64  `json:"duration_ms,omitempty" yaml:"duration_ms,omitempty"`
	ConvertedAt string `json:"converted_at,omitempty" yaml:"converted_at,omitempty"`
	Error       string `json:"error,omitempty" yaml:"error,omitempty"`
}

// ExportYAML writes every catalog entry to .catalog/export.yaml (R5.1),
// a machine-readable ledger of the last known outcome per document.
func (c *Catalog) ExportYAML(ctx context.Context) error {
	entries, err := c.List(ctx)
	if err != nil {
		return err
	}

	data, err := yaml.Marshal(entries)
	if err != nil {
		return fmt.Errorf("marshaling YAML: %w", err)
	}
	return os.WriteFile(filepath.Join(c.dir, "export.yaml"), data, 0o644)
}

// List returns every catalog entry ordered by rel_path.
func (c *Catalog) List(ctx context.Context) ([]ExportEntry, error) {
	rows, err := c.db.QueryContext(ctx,
		`SELECT rel_path, source_path, format, backend, status, chunks, images,
			duration_ms, converted_at, error
		 FROM documents ORDER BY rel_path`,
	)
	if err != nil {
		return nil, fmt.Errorf("querying for export: %w", err)
	}
	defer rows.Close()

	var entries []ExportEntry
	for rows.Next() {
		var (
			e               ExportEntry
			backend, convAt sql.NullString
			errText         sql.NullString
			chunks, images  sql.NullInt64
			durationMS      sql.NullInt64
		)
		if err := rows.Scan(&e.RelPath, &e.SourcePath, &e.Format, &backend, &e.Status,
			&chunks, &images, &durationMS, &convAt, &errText); err != nil {
			return nil, fmt.Errorf("scanning row: %w", err)
		}
		if backend.Valid {
			e.Backend = backend.String
		}
		if convAt.Valid {
			e.ConvertedAt = convAt.String
		}
		if errText.Valid {
			e.Error = errText.String
		}
		e.Chunks = int(chunks.Int64)
		e.Images = int(images.Int64)
		e.DurationMS = durationMS.Int64
		entries = append(entries, e)
	}

	return entries, rows.Err()
}
