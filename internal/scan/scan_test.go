// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package scan

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/pdiddy/markforge/pkg/types"
)

func writeFile(t *testing.T, path string) {
	t.Helper()
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		t.Fatal(err)
	}
	if err := os.WriteFile(path, []byte("content"), 0o644); err != nil {
		t.Fatal(err)
	}
}

func TestDetect(t *testing.T) {
	tests := []struct {
		path       string
		wantFormat types.Format
		wantOK     bool
	}{
		{"report.pdf", types.FormatPDF, true},
		{"Report.PDF", types.FormatPDF, true},
		{"notes.docx", types.FormatDocx, true},
		{"slides.pptx", types.FormatPptx, true},
		{"table.xlsx", types.FormatXlsx, true},
		{"readme.txt", types.FormatText, true},
		{"archive.zip", "", false},
		{"image.png", "", false},
		{"noext", "", false},
	}

	for _, tt := range tests {
		t.Run(tt.path, func(t *testing.T) {
			format, ok := Detect(tt.path)
			if ok != tt.wantOK {
				t.Fatalf("Detect(%q) ok = %v, want %v", tt.path, ok, tt.wantOK)
			}
			if format != tt.wantFormat {
				t.Errorf("Detect(%q) = %q, want %q", tt.path, format, tt.wantFormat)
			}
		})
	}
}

func TestWalk(t *testing.T) {
	dir := t.TempDir()
	writeFile(t, filepath.Join(dir, "a.pdf"))
	writeFile(t, filepath.Join(dir, "sub", "b.docx"))
	writeFile(t, filepath.Join(dir, "sub", "deep", "c.txt"))
	writeFile(t, filepath.Join(dir, "ignore.png"))

	res, err := Walk(dir)
	if err != nil {
		t.Fatalf("Walk: %v", err)
	}

	if len(res.Documents) != 3 {
		t.Fatalf("documents = %d, want 3", len(res.Documents))
	}
	if res.Ignored != 1 {
		t.Errorf("ignored = %d, want 1", res.Ignored)
	}

	wantRel := []string{"a.pdf", filepath.Join("sub", "b.docx"), filepath.Join("sub", "deep", "c.txt")}
	for i, want := range wantRel {
		if res.Documents[i].RelPath != want {
			t.Errorf("documents[%d].RelPath = %q, want %q", i, res.Documents[i].RelPath, want)
		}
	}

	if res.Documents[0].Format != types.FormatPDF {
		t.Errorf("documents[0].Format = %q, want %q", res.Documents[0].Format, types.FormatPDF)
	}
	if res.Documents[0].Size == 0 {
		t.Error("documents[0].Size should be nonzero")
	}
	if res.Documents[0].ModTime.IsZero() {
		t.Error("documents[0].ModTime should be set")
	}
}

func TestWalk_IgnoresTempChunks(t *testing.T) {
	dir := t.TempDir()
	writeFile(t, filepath.Join(dir, "report.pdf"))
	writeFile(t, filepath.Join(dir, "report_temp_chunk_1.pdf"))
	writeFile(t, filepath.Join(dir, "report_temp_chunk_2.pdf"))

	res, err := Walk(dir)
	if err != nil {
		t.Fatalf("Walk: %v", err)
	}

	if len(res.Documents) != 1 {
		t.Fatalf("documents = %d, want 1", len(res.Documents))
	}
	if res.Documents[0].RelPath != "report.pdf" {
		t.Errorf("RelPath = %q, want %q", res.Documents[0].RelPath, "report.pdf")
	}
	if res.Ignored != 2 {
		t.Errorf("ignored = %d, want 2", res.Ignored)
	}
}

func TestWalk_MissingDir(t *testing.T) {
	_, err := Walk(filepath.Join(t.TempDir(), "absent"))
	if err == nil {
		t.Fatal("expected error for missing directory")
	}
}

func TestWalk_EmptyDir(t *testing.T) {
	res, err := Walk(t.TempDir())
	if err != nil {
		t.Fatalf("Walk: %v", err)
	}
	if len(res.Documents) != 0 || res.Ignored != 0 {
		t.Errorf("got %d documents, %d ignored, want 0, 0", len(res.Documents), res.Ignored)
	}
}
