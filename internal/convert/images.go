// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package convert

import (
	"fmt"
	"os"
	"path"
	"path/filepath"
	"sort"
	"strings"
)

// imagesDirName is the subdirectory next to each markdown output holding
// extracted images, one folder per document.
const imagesDirName = "images"

// imagesDir returns the image directory for a document and the folder name
// used in markdown links: the document stem with spaces replaced by
// underscores, so links need no escaping.
func imagesDir(outDir, sourcePath string) (dir, docFolder string) {
	base := filepath.Base(sourcePath)
	stem := strings.TrimSuffix(base, filepath.Ext(base))
	docFolder = strings.ReplaceAll(stem, " ", "_")
	return filepath.Join(outDir, imagesDirName, docFolder), docFolder
}

// relocateImages writes a chunk's extracted images under imgDir with
// chunk-unique names and rewrites every reference in the markdown to the
// link path relative to the output file. It returns the rewritten markdown
// and the number of images written.
func relocateImages(markdown string, images map[string][]byte, chunkIdx int, imgDir, docFolder string) (string, int, error) {
	if len(images) == 0 {
		return markdown, 0, nil
	}
	if err := os.MkdirAll(imgDir, 0o755); err != nil {
		return markdown, 0, fmt.Errorf("creating images directory: %w", err)
	}

	// Deterministic order keeps output stable across runs.
	names := make([]string, 0, len(images))
	for name := range images {
		names = append(names, name)
	}
	sort.Strings(names)

	written := 0
	for _, name := range names {
		unique := fmt.Sprintf("chunk_%d_%s", chunkIdx, name)
		if err := os.WriteFile(filepath.Join(imgDir, unique), images[name], 0o644); err != nil {
			return markdown, written, fmt.Errorf("saving image %s: %w", unique, err)
		}
		link := path.Join(imagesDirName, docFolder, unique)
		markdown = strings.ReplaceAll(markdown, name, link)
		written++
	}
	return markdown, written, nil
}
