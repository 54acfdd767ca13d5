// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package convert

import (
	"context"
	"os"
	"path/filepath"
	"testing"

	"github.com/pdiddy/markforge/pkg/types"
)

func TestTextConverter(t *testing.T) {
	dir := t.TempDir()
	src := filepath.Join(dir, "notes.txt")
	if err := os.WriteFile(src, []byte("line one\nline two\n"), 0o644); err != nil {
		t.Fatal(err)
	}

	doc := types.Document{SourcePath: src, RelPath: "notes.txt", Format: types.FormatText}
	out, err := TextConverter{}.Convert(context.Background(), doc, t.TempDir())
	if err != nil {
		t.Fatalf("Convert: %v", err)
	}
	if out.Markdown != "line one\nline two\n" {
		t.Errorf("markdown = %q, want file content unchanged", out.Markdown)
	}
	if out.Backend != "passthrough" {
		t.Errorf("backend = %q, want %q", out.Backend, "passthrough")
	}
}

func TestTextConverter_MissingFile(t *testing.T) {
	doc := types.Document{SourcePath: "/nonexistent/notes.txt", RelPath: "notes.txt", Format: types.FormatText}
	if _, err := (TextConverter{}).Convert(context.Background(), doc, t.TempDir()); err == nil {
		t.Fatal("expected error for missing file")
	}
}
