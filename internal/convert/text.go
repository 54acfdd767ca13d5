// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package convert

import (
	"context"
	"fmt"
	"os"

	"github.com/pdiddy/markforge/pkg/types"
)

// TextConverter passes plain-text documents through unchanged. The file
// body becomes the markdown body.
type TextConverter struct{}

func (TextConverter) Convert(ctx context.Context, doc types.Document, outDir string) (Output, error) {
	data, err := os.ReadFile(doc.SourcePath)
	if err != nil {
		return Output{}, fmt.Errorf("reading %s: %w", doc.RelPath, err)
	}
	return Output{Markdown: string(data), Backend: "passthrough"}, nil
}
