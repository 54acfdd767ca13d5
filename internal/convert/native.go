// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package convert

import (
	"context"
	"fmt"
	"path/filepath"
	"strings"

	"github.com/ledongthuc/pdf"
)

const backendNativeText = "text"

// NativeTextEngine extracts embedded text with a pure-Go PDF parser. It
// needs no external engine, performs no OCR, and extracts no images.
// Scanned documents produce empty output.
type NativeTextEngine struct{}

func (NativeTextEngine) Name() string { return backendNativeText }

func (NativeTextEngine) ConvertChunk(ctx context.Context, path string) (res ChunkResult, err error) {
	// The parser panics on some malformed files; surface that as an error.
	defer func() {
		if r := recover(); r != nil {
			res = ChunkResult{}
			err = fmt.Errorf("extracting text from %s: %v", filepath.Base(path), r)
		}
	}()

	file, reader, err := pdf.Open(path)
	if err != nil {
		return ChunkResult{}, fmt.Errorf("open pdf %s: %w", filepath.Base(path), err)
	}
	defer file.Close()

	var b strings.Builder
	totalPages := reader.NumPage()
	for pageIndex := 1; pageIndex <= totalPages; pageIndex++ {
		page := reader.Page(pageIndex)
		if page.V.IsNull() || page.V.Key("Contents").Kind() == pdf.Null {
			continue
		}

		content, err := page.GetPlainText(nil)
		if err != nil {
			return ChunkResult{}, fmt.Errorf("read page %d of %s: %w", pageIndex, filepath.Base(path), err)
		}

		if strings.TrimSpace(content) == "" {
			continue
		}
		if b.Len() > 0 {
			b.WriteString("\n\n")
		}
		b.WriteString(strings.TrimSpace(content))
	}

	return ChunkResult{Markdown: b.String()}, nil
}
