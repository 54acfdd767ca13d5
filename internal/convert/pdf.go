// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package convert

import (
	"context"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"

	"github.com/pdfcpu/pdfcpu/pkg/api"

	"github.com/pdiddy/markforge/pkg/types"
)

// ChunkResult holds the engine output for one PDF chunk.
type ChunkResult struct {
	// Markdown is the chunk's converted text.
	Markdown string

	// Images maps engine-assigned file names to encoded image bytes.
	Images map[string][]byte
}

// ChunkConverter converts a single PDF file, either a whole document or one
// page-range chunk of it, into Markdown and extracted images. Engines:
// marker (container), remote (HTTP service), gemini (multimodal API), and
// text (native extraction).
type ChunkConverter interface {
	// Name identifies the engine.
	Name() string

	// ConvertChunk converts the PDF at path.
	ConvertChunk(ctx context.Context, path string) (ChunkResult, error)
}

// PDFConverter splits large PDFs into fixed-size page chunks, converts each
// chunk through the configured engine, relocates extracted images next to
// the output, and stitches the chunk markdown back together. A failed chunk
// loses only its own pages.
type PDFConverter struct {
	engine    ChunkConverter
	chunkSize int
	log       io.Writer
}

// NewPDFConverter wires a chunk engine into the chunked conversion path.
// Progress messages go to log.
func NewPDFConverter(engine ChunkConverter, chunkSize int, log io.Writer) *PDFConverter {
	if chunkSize <= 0 {
		chunkSize = DefaultChunkSize
	}
	if log == nil {
		log = io.Discard
	}
	// Keep pdfcpu from writing a config directory on first use.
	api.DisableConfigDir()
	return &PDFConverter{engine: engine, chunkSize: chunkSize, log: log}
}

func (p *PDFConverter) Convert(ctx context.Context, doc types.Document, outDir string) (Output, error) {
	chunks := splitPDF(doc.SourcePath, p.chunkSize, p.log)
	imgDir, docFolder := imagesDir(outDir, doc.SourcePath)

	out := Output{Backend: p.engine.Name(), Chunks: len(chunks)}
	var body strings.Builder

	for i, chunkPath := range chunks {
		fmt.Fprintf(p.log, "processing part %d/%d of %s\n", i+1, len(chunks), doc.RelPath)

		res, err := p.engine.ConvertChunk(ctx, chunkPath)
		if err == nil {
			text := res.Markdown
			if len(res.Images) > 0 {
				fmt.Fprintf(p.log, "found %d images in part %d\n", len(res.Images), i+1)
				var n int
				text, n, err = relocateImages(text, res.Images, i, imgDir, docFolder)
				out.Images += n
			}
			if err == nil {
				body.WriteString(text)
				body.WriteString("\n\n")
			}
		}
		if err != nil {
			fmt.Fprintf(p.log, "warning: chunk %s failed: %v\n", filepath.Base(chunkPath), err)
			out.FailedChunks++
		}

		if chunkPath != doc.SourcePath {
			os.Remove(chunkPath)
		}
	}

	out.Markdown = body.String()
	return out, nil
}
