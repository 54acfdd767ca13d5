// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package convert

import (
	"bytes"
	"context"
	"fmt"
	"os"
	"os/exec"
	"strings"

	"github.com/pdiddy/markforge/internal/container"
	"github.com/pdiddy/markforge/pkg/types"
)

const imageMarkitdown = "markitdown:latest"

const backendMarkitdown = "markitdown"

// ContainerOffice converts office documents (docx, pptx, xlsx) by piping
// them through the markitdown container image. It depends on a
// container.Runtime (docker or podman) injected at construction time.
type ContainerOffice struct {
	runtime container.Runtime
	image   string
}

// NewContainerOffice creates a converter that uses the given container
// runtime to run the markitdown image. It verifies that the image exists
// locally before returning.
func NewContainerOffice(rt container.Runtime, image string) (*ContainerOffice, error) {
	if image == "" {
		image = imageMarkitdown
	}
	if err := rt.ImageExists(image); err != nil {
		return nil, fmt.Errorf("markitdown image not available in %s: %w", rt.Name(), err)
	}
	return &ContainerOffice{runtime: rt, image: image}, nil
}

// Convert pipes the document through the markitdown container and returns
// the resulting Markdown text.
func (c *ContainerOffice) Convert(ctx context.Context, doc types.Document, outDir string) (Output, error) {
	f, err := os.Open(doc.SourcePath)
	if err != nil {
		return Output{}, fmt.Errorf("opening %s: %w", doc.RelPath, err)
	}
	defer f.Close()

	var out bytes.Buffer
	if err := c.runtime.Run(c.image, f, &out); err != nil {
		return Output{}, fmt.Errorf("converting %s with markitdown: %w", doc.RelPath, err)
	}

	return Output{Markdown: out.String(), Backend: backendMarkitdown}, nil
}

// BinaryOffice converts office documents with a markitdown binary on PATH.
// It is the fallback when no container runtime is available.
type BinaryOffice struct {
	bin string
}

// NewBinaryOffice locates the markitdown binary.
func NewBinaryOffice() (*BinaryOffice, error) {
	path, err := exec.LookPath("markitdown")
	if err != nil {
		return nil, fmt.Errorf("markitdown binary not found on PATH: %w", err)
	}
	return &BinaryOffice{bin: path}, nil
}

// Convert runs markitdown on the source file and captures its stdout.
func (b *BinaryOffice) Convert(ctx context.Context, doc types.Document, outDir string) (Output, error) {
	cmd := exec.CommandContext(ctx, b.bin, doc.SourcePath)
	var out, stderr bytes.Buffer
	cmd.Stdout = &out
	cmd.Stderr = &stderr
	if err := cmd.Run(); err != nil {
		if msg := strings.TrimSpace(stderr.String()); msg != "" {
			return Output{}, fmt.Errorf("markitdown on %s: %s: %w", doc.RelPath, msg, err)
		}
		return Output{}, fmt.Errorf("markitdown on %s: %w", doc.RelPath, err)
	}
	return Output{Markdown: out.String(), Backend: backendMarkitdown}, nil
}

// NewOfficeConverter selects the container engine when a runtime is
// available, falling back to a local markitdown binary when the
// configuration allows it.
func NewOfficeConverter(cfg types.OfficeConfig) (Converter, error) {
	rt, rtErr := container.DetectRuntime()
	if rtErr == nil {
		c, err := NewContainerOffice(rt, cfg.Image)
		if err == nil {
			return c, nil
		}
		rtErr = err
	}

	if cfg.BinaryFallback {
		b, binErr := NewBinaryOffice()
		if binErr == nil {
			return b, nil
		}
		return nil, fmt.Errorf("no office engine: %v; %w", rtErr, binErr)
	}
	return nil, fmt.Errorf("no office engine: %w", rtErr)
}
