// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

// Package convert implements document-to-Markdown conversion with per-format
// converters and pluggable PDF engines.
// Implements: prd002-conversion (R1, R2, R3, R4);
//
//	prd003-pdf-chunking (R1-R4);
//	docs/ARCHITECTURE § Conversion.
package convert

import (
	"context"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/pdiddy/markforge/pkg/types"
)

// Output holds the product of converting one document.
type Output struct {
	// Markdown is the converted body, without frontmatter.
	Markdown string

	// Backend identifies the engine that produced the markdown.
	Backend string

	// Chunks is the number of PDF chunks processed (0 for single-pass formats).
	Chunks int

	// FailedChunks counts chunks whose conversion failed.
	FailedChunks int

	// Images is the number of image files written next to the output.
	Images int
}

// Converter transforms one source document into Markdown. outDir is the
// directory the document's markdown file will be written to; converters
// that extract images place them under outDir.
type Converter interface {
	Convert(ctx context.Context, doc types.Document, outDir string) (Output, error)
}

// BatchResult holds the outcome of a batch conversion run.
type BatchResult struct {
	Converted int
	Skipped   int
	Failed    int
}

// Total returns the total number of documents processed.
func (r BatchResult) Total() int {
	return r.Converted + r.Skipped + r.Failed
}

// HasFailures reports whether any documents failed conversion.
func (r BatchResult) HasFailures() bool {
	return r.Failed > 0
}

// OutputPath returns the mirrored markdown path for a document: the same
// path relative to the output root, with the extension replaced by .md.
func OutputPath(outputDir string, doc types.Document) string {
	rel := strings.TrimSuffix(doc.RelPath, filepath.Ext(doc.RelPath)) + ".md"
	return filepath.Join(outputDir, rel)
}

// ConvertDocument converts a single document and writes the result to its
// mirrored output path. When the output already exists and Force is unset
// the document is skipped. Failures are reported in the Result, never as a
// panic or an aborted batch.
func ConvertDocument(ctx context.Context, convs map[types.Format]Converter, doc types.Document, cfg types.ConvertConfig, w io.Writer) types.Result {
	start := time.Now()
	outPath := OutputPath(cfg.OutputDir, doc)
	res := types.Result{Document: doc, OutputPath: outPath}

	if !cfg.Force {
		if _, err := os.Stat(outPath); err == nil {
			fmt.Fprintf(w, "skipped: %s (already exists)\n", doc.RelPath)
			res.Status = types.StatusSkipped
			res.Duration = time.Since(start)
			return res
		}
	}

	fail := func(err error) types.Result {
		fmt.Fprintf(w, "failed:  %s (%v)\n", doc.RelPath, err)
		res.Status = types.StatusFailed
		res.Err = err
		res.Duration = time.Since(start)
		return res
	}

	conv, ok := convs[doc.Format]
	if !ok {
		return fail(fmt.Errorf("no converter registered for format %s", doc.Format))
	}

	if err := os.MkdirAll(filepath.Dir(outPath), 0o755); err != nil {
		return fail(err)
	}

	out, err := conv.Convert(ctx, doc, filepath.Dir(outPath))
	if err != nil {
		return fail(err)
	}

	res.Backend = out.Backend
	res.Chunks = out.Chunks
	res.Images = out.Images

	if strings.TrimSpace(out.Markdown) == "" {
		if !cfg.WriteEmpty {
			return fail(fmt.Errorf("conversion produced no content"))
		}
		fmt.Fprintf(w, "warning: %s produced no content, saving empty file\n", doc.RelPath)
	}

	content := addFrontmatter(doc, out.Backend, out.Markdown)
	if err := writeFileAtomic(outPath, []byte(content)); err != nil {
		return fail(err)
	}

	res.Status = types.StatusConverted
	if out.FailedChunks > 0 {
		res.Status = types.StatusPartial
	}
	res.Duration = time.Since(start)
	fmt.Fprintf(w, "converted: %s\n", doc.RelPath)
	return res
}

// ConvertBatch processes documents sequentially, printing per-file status to
// w and returning a summary. Results for every document, including failures,
// are passed to record when it is non-nil.
func ConvertBatch(ctx context.Context, convs map[types.Format]Converter, docs []types.Document, cfg types.ConvertConfig, w io.Writer, record func(types.Result)) BatchResult {
	var result BatchResult
	for _, doc := range docs {
		res := ConvertDocument(ctx, convs, doc, cfg, w)
		switch res.Status {
		case types.StatusConverted, types.StatusPartial:
			result.Converted++
		case types.StatusSkipped:
			result.Skipped++
		case types.StatusFailed:
			result.Failed++
		}
		if record != nil {
			record(res)
		}
	}
	fmt.Fprintf(w, "\nBatch summary: %d converted, %d skipped, %d failed (total: %d)\n",
		result.Converted, result.Skipped, result.Failed, result.Total())
	return result
}

// addFrontmatter prepends YAML frontmatter to the converted Markdown content.
func addFrontmatter(doc types.Document, backend, body string) string {
	ts := time.Now().UTC().Format(time.RFC3339)
	var b strings.Builder
	b.WriteString("---\n")
	fmt.Fprintf(&b, "source: %q\n", filepath.ToSlash(doc.RelPath))
	fmt.Fprintf(&b, "format: %q\n", doc.Format)
	if backend != "" {
		fmt.Fprintf(&b, "backend: %q\n", backend)
	}
	fmt.Fprintf(&b, "converted_at: %q\n", ts)
	b.WriteString("---\n\n")
	b.WriteString(body)
	return b.String()
}

// writeFileAtomic writes data to destPath via a temporary file in the same
// directory, so readers never observe a partially written document.
func writeFileAtomic(destPath string, data []byte) error {
	tmpFile, err := os.CreateTemp(filepath.Dir(destPath), ".convert-*.tmp")
	if err != nil {
		return fmt.Errorf("creating temp file: %w", err)
	}
	tmpPath := tmpFile.Name()

	_, writeErr := tmpFile.Write(data)
	closeErr := tmpFile.Close()
	if writeErr != nil {
		os.Remove(tmpPath)
		return fmt.Errorf("writing output: %w", writeErr)
	}
	if closeErr != nil {
		os.Remove(tmpPath)
		return fmt.Errorf("closing temp file: %w", closeErr)
	}

	if err := os.Rename(tmpPath, destPath); err != nil {
		os.Remove(tmpPath)
		return fmt.Errorf("renaming temp file: %w", err)
	}
	return nil
}
