// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

// Package types defines shared data structures for the markforge pipeline.
// Implements: prd001-discovery (Document, R2.1, R3.1);
//
//	prd002-conversion (Result, ConversionStatus, R4.4);
//	prd003-pdf-chunking (PDFBackend, R5.1);
//	prd004-catalog (CatalogConfig, R1.2).
//
// See docs/ARCHITECTURE.md § Pipeline Interface, § Data Structures.
package types

import "time"

// Format identifies the source document format, derived from the file
// extension. Per prd001-discovery R2.1.
type Format string

const (
	FormatPDF  Format = "pdf"
	FormatDocx Format = "docx"
	FormatPptx Format = "pptx"
	FormatXlsx Format = "xlsx"
	FormatText Format = "txt"
)

// ConversionStatus indicates the outcome of a document conversion.
// Per prd002-conversion R4.4.
type ConversionStatus string

const (
	StatusConverted ConversionStatus = "converted"
	StatusSkipped   ConversionStatus = "skipped"
	StatusPartial   ConversionStatus = "partial"
	StatusFailed    ConversionStatus = "failed"
)

// Document is a single source file discovered under the input tree.
// Per prd001-discovery R3.1: absolute source path, path relative to the
// input root (the mirroring key), and detected format.
type Document struct {
	// SourcePath is the absolute path to the input file.
	SourcePath string `json:"source_path" yaml:"source_path"`

	// RelPath is the path relative to the input root. The output file is
	// written at the same relative path with a .md extension.
	RelPath string `json:"rel_path" yaml:"rel_path"`

	// Format is the detected document format.
	Format Format `json:"format" yaml:"format"`

	// ModTime is the source file modification time at scan.
	ModTime time.Time `json:"mod_time" yaml:"mod_time"`

	// Size is the source file size in bytes at scan.
	Size int64 `json:"size" yaml:"size"`
}

// Result records the outcome of converting one document.
type Result struct {
	// Document is the source that was converted.
	Document Document `json:"document" yaml:"document"`

	// OutputPath is the absolute path of the written markdown file.
	OutputPath string `json:"output_path" yaml:"output_path"`

	// Backend identifies which conversion engine produced the markdown
	// (e.g. "marker", "markitdown", "text").
	Backend string `json:"backend" yaml:"backend"`

	// Status is the conversion outcome. Partial means at least one PDF
	// chunk failed but others produced content.
	Status ConversionStatus `json:"status" yaml:"status"`

	// Chunks is the number of PDF chunks processed (0 for non-PDF formats).
	Chunks int `json:"chunks" yaml:"chunks"`

	// Images is the number of images relocated alongside the markdown.
	Images int `json:"images" yaml:"images"`

	// Duration is the wall-clock conversion time.
	Duration time.Duration `json:"duration" yaml:"duration"`

	// Err holds the failure, nil on success or skip.
	Err error `json:"-" yaml:"-"`
}
