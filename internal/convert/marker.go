// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package convert

import (
	"bytes"
	"context"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"

	"github.com/pdiddy/markforge/internal/container"
)

const (
	imageMarker   = "marker:latest"
	backendMarker = "marker"

	markerMountIn  = "/in"
	markerMountOut = "/out"
)

// MarkerEngine runs the marker OCR/layout engine in a container, mounting
// the chunk's directory and a scratch directory for results. Marker writes
// <stem>/<stem>.md plus sibling image files into the scratch directory.
type MarkerEngine struct {
	runtime container.Runtime
	image   string
	log     io.Writer
}

// NewMarkerEngine creates the engine and verifies the marker image exists
// locally. Container stderr (model loading, page progress) streams to log.
func NewMarkerEngine(rt container.Runtime, image string, log io.Writer) (*MarkerEngine, error) {
	if image == "" {
		image = imageMarker
	}
	if err := rt.ImageExists(image); err != nil {
		return nil, fmt.Errorf("marker image not available in %s: %w", rt.Name(), err)
	}
	if log == nil {
		log = io.Discard
	}
	return &MarkerEngine{runtime: rt, image: image, log: log}, nil
}

func (m *MarkerEngine) Name() string { return backendMarker }

func (m *MarkerEngine) ConvertChunk(ctx context.Context, path string) (ChunkResult, error) {
	scratch, err := os.MkdirTemp("", "markforge-marker-*")
	if err != nil {
		return ChunkResult{}, fmt.Errorf("creating scratch directory: %w", err)
	}
	defer os.RemoveAll(scratch)

	hostDir, err := filepath.Abs(filepath.Dir(path))
	if err != nil {
		return ChunkResult{}, fmt.Errorf("resolving chunk directory: %w", err)
	}

	mounts := []container.Mount{
		{Host: hostDir, Container: markerMountIn},
		{Host: scratch, Container: markerMountOut},
	}
	args := []string{
		"marker_single",
		markerMountIn + "/" + filepath.Base(path),
		"--output_dir", markerMountOut,
		"--output_format", "markdown",
	}

	var stdout bytes.Buffer
	if err := m.runtime.RunMounted(m.image, mounts, args, &stdout, m.log); err != nil {
		return ChunkResult{}, fmt.Errorf("marker on %s: %w", filepath.Base(path), err)
	}

	base := filepath.Base(path)
	return readMarkerOutput(scratch, strings.TrimSuffix(base, filepath.Ext(base)))
}

// readMarkerOutput loads the markdown and sibling images marker wrote for
// one document stem.
func readMarkerOutput(scratch, stem string) (ChunkResult, error) {
	docDir := filepath.Join(scratch, stem)
	data, err := os.ReadFile(filepath.Join(docDir, stem+".md"))
	if err != nil {
		return ChunkResult{}, fmt.Errorf("reading marker output: %w", err)
	}

	res := ChunkResult{Markdown: string(data)}
	entries, err := os.ReadDir(docDir)
	if err != nil {
		return ChunkResult{}, fmt.Errorf("listing marker output: %w", err)
	}
	for _, e := range entries {
		if e.IsDir() || !isImageFile(e.Name()) {
			continue
		}
		img, err := os.ReadFile(filepath.Join(docDir, e.Name()))
		if err != nil {
			return ChunkResult{}, fmt.Errorf("reading marker image %s: %w", e.Name(), err)
		}
		if res.Images == nil {
			res.Images = make(map[string][]byte)
		}
		res.Images[e.Name()] = img
	}
	return res, nil
}

// isImageFile reports whether name has an image extension marker emits.
func isImageFile(name string) bool {
	switch strings.ToLower(filepath.Ext(name)) {
	case ".png", ".jpg", ".jpeg", ".gif", ".webp":
		return true
	}
	return false
}
