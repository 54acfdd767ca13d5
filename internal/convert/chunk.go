// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package convert

import (
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"

	"github.com/pdfcpu/pdfcpu/pkg/api"
	rscpdf "rsc.io/pdf"
)

// tempChunkMarker appears in the stem of every temporary chunk file so
// leftover chunks are recognizable after a crash.
const tempChunkMarker = "_temp_chunk_"

// DefaultChunkSize is the maximum page count per chunk when none is
// configured. Sized to keep OCR engine memory bounded.
const DefaultChunkSize = 25

// pageCount returns the number of pages in the PDF at path.
func pageCount(path string) (n int, err error) {
	f, err := os.Open(path)
	if err != nil {
		return 0, fmt.Errorf("opening %s: %w", path, err)
	}
	defer f.Close()

	fi, err := f.Stat()
	if err != nil {
		return 0, fmt.Errorf("stat %s: %w", path, err)
	}

	// rsc.io/pdf panics on malformed files; surface that as a parse error.
	defer func() {
		if r := recover(); r != nil {
			n = 0
			err = fmt.Errorf("parsing %s: %v", path, r)
		}
	}()

	reader, err := rscpdf.NewReader(f, fi.Size())
	if err != nil {
		return 0, fmt.Errorf("parsing %s: %w", path, err)
	}
	return reader.NumPage(), nil
}

// splitPDF writes page-range chunks of at most chunkSize pages into the
// source file's directory and returns their paths in page order. A document
// that fits in one chunk is returned as its original path. Any split
// failure falls back to the original path so conversion proceeds whole-file.
func splitPDF(path string, chunkSize int, w io.Writer) []string {
	total, err := pageCount(path)
	if err != nil {
		fmt.Fprintf(w, "warning: could not split %s: %v\n", filepath.Base(path), err)
		return []string{path}
	}
	if total <= chunkSize {
		return []string{path}
	}

	fmt.Fprintf(w, "splitting %s (%d pages)\n", filepath.Base(path), total)

	base := strings.TrimSuffix(filepath.Base(path), filepath.Ext(path))
	dir := filepath.Dir(path)

	var chunks []string
	for i, start := 0, 1; start <= total; i, start = i+1, start+chunkSize {
		end := start + chunkSize - 1
		if end > total {
			end = total
		}
		chunkPath := filepath.Join(dir, fmt.Sprintf("%s%s%d.pdf", base, tempChunkMarker, i))
		pages := []string{fmt.Sprintf("%d-%d", start, end)}
		if err := api.TrimFile(path, chunkPath, pages, nil); err != nil {
			fmt.Fprintf(w, "warning: could not split %s: %v\n", filepath.Base(path), err)
			removeChunks(chunks, path)
			return []string{path}
		}
		chunks = append(chunks, chunkPath)
	}
	return chunks
}

// removeChunks best-effort deletes temporary chunk files, never the source.
func removeChunks(paths []string, sourcePath string) {
	for _, p := range paths {
		if p != sourcePath {
			os.Remove(p)
		}
	}
}
