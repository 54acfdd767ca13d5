// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

// Package scan discovers convertible documents under an input tree.
// Implements: prd001-discovery (R1, R2, R3);
//
//	docs/ARCHITECTURE § Discovery.
package scan

import (
	"fmt"
	"io/fs"
	"path/filepath"
	"strings"

	"github.com/pdiddy/markforge/pkg/types"
)

// tempChunkMarker appears in the stem of temporary PDF chunks written next
// to their source during conversion. Files carrying it are never inputs.
const tempChunkMarker = "_temp_chunk_"

// Result holds the outcome of a directory scan.
type Result struct {
	// Documents lists recognized files in lexical walk order.
	Documents []types.Document

	// Ignored counts files whose extension is not recognized.
	Ignored int
}

// Detect returns the document format for a path based on its extension.
// The second return value is false for unrecognized extensions.
func Detect(path string) (types.Format, bool) {
	switch strings.ToLower(filepath.Ext(path)) {
	case ".pdf":
		return types.FormatPDF, true
	case ".docx":
		return types.FormatDocx, true
	case ".pptx":
		return types.FormatPptx, true
	case ".xlsx":
		return types.FormatXlsx, true
	case ".txt":
		return types.FormatText, true
	}
	return "", false
}

// Walk recursively scans inputDir and returns every recognized document with
// its path relative to inputDir. Leftover temporary chunk files from an
// interrupted conversion are ignored alongside unrecognized extensions.
func Walk(inputDir string) (Result, error) {
	var res Result
	err := filepath.WalkDir(inputDir, func(path string, d fs.DirEntry, err error) error {
		if err != nil {
			return fmt.Errorf("scanning %s: %w", path, err)
		}
		if d.IsDir() {
			return nil
		}
		format, ok := Detect(path)
		if !ok {
			res.Ignored++
			return nil
		}
		if strings.Contains(stem(path), tempChunkMarker) {
			res.Ignored++
			return nil
		}
		rel, err := filepath.Rel(inputDir, path)
		if err != nil {
			return fmt.Errorf("relativizing %s: %w", path, err)
		}
		info, err := d.Info()
		if err != nil {
			return fmt.Errorf("stat %s: %w", path, err)
		}
		res.Documents = append(res.Documents, types.Document{
			SourcePath: path,
			RelPath:    rel,
			Format:     format,
			ModTime:    info.ModTime(),
			Size:       info.Size(),
		})
		return nil
	})
	if err != nil {
		return Result{}, err
	}
	return res, nil
}

// stem returns the file name without its extension.
func stem(path string) string {
	base := filepath.Base(path)
	return strings.TrimSuffix(base, filepath.Ext(base))
}
