package webui

import (
	"context"
	"errors"
	"fmt"
	"io"
	"net/http"
	"net/http/httptest"
	"net/url"
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/pdiddy/markforge/internal/catalog"
	"github.com/pdiddy/markforge/internal/convert"
	"github.com/pdiddy/markforge/pkg/types"
)

func testServer(t *testing.T, run RunFunc) (*Server, string, string) {
	t.Helper()
	inDir := t.TempDir()
	outDir := t.TempDir()
	base := types.ConvertConfig{InputDir: inDir, OutputDir: outDir}
	s, err := NewServer(base, types.ServeConfig{LogLines: 100}, run)
	if err != nil {
		t.Fatalf("NewServer: %v", err)
	}
	return s, inDir, outDir
}

// waitIdle blocks until the background run has finished and flushed its logs.
func waitIdle(t *testing.T, s *Server) {
	t.Helper()
	deadline := time.Now().Add(2 * time.Second)
	for s.Running() {
		if time.Now().After(deadline) {
			t.Fatal("conversion did not finish in time")
		}
		time.Sleep(5 * time.Millisecond)
	}
}

func postForm(t *testing.T, h http.Handler, form url.Values) *httptest.ResponseRecorder {
	t.Helper()
	req := httptest.NewRequest(http.MethodPost, "/convert", strings.NewReader(form.Encode()))
	req.Header.Set("Content-Type", "application/x-www-form-urlencoded")
	rec := httptest.NewRecorder()
	h.ServeHTTP(rec, req)
	return rec
}

func get(t *testing.T, h http.Handler, path string) *httptest.ResponseRecorder {
	t.Helper()
	req := httptest.NewRequest(http.MethodGet, path, nil)
	rec := httptest.NewRecorder()
	h.ServeHTTP(rec, req)
	return rec
}

func TestIndexPage(t *testing.T) {
	s, inDir, _ := testServer(t, nil)

	rec := get(t, s.Handler(), "/")
	if rec.Code != http.StatusOK {
		t.Fatalf("status = %d, want 200", rec.Code)
	}
	body := rec.Body.String()
	for _, want := range []string{inDir, `name="chunk_size"`, `name="backend"`, "Start conversion"} {
		if !strings.Contains(body, want) {
			t.Errorf("index page missing %q", want)
		}
	}
}

func TestConvertStartsRun(t *testing.T) {
	got := make(chan types.ConvertConfig, 1)
	run := func(cfg types.ConvertConfig, w io.Writer) (convert.BatchResult, error) {
		fmt.Fprintln(w, "converted 1 file")
		got <- cfg
		return convert.BatchResult{Converted: 1}, nil
	}
	s, inDir, _ := testServer(t, run)
	outDir := filepath.Join(t.TempDir(), "out")

	rec := postForm(t, s.Handler(), url.Values{
		"input":      {inDir},
		"output":     {outDir},
		"chunk_size": {"40"},
		"backend":    {"text"},
	})
	if rec.Code != http.StatusSeeOther {
		t.Fatalf("status = %d, want 303", rec.Code)
	}

	var cfg types.ConvertConfig
	select {
	case cfg = <-got:
	case <-time.After(2 * time.Second):
		t.Fatal("run was not invoked")
	}
	if cfg.InputDir != inDir {
		t.Errorf("InputDir = %q, want %q", cfg.InputDir, inDir)
	}
	if cfg.OutputDir != outDir {
		t.Errorf("OutputDir = %q, want %q", cfg.OutputDir, outDir)
	}
	if !cfg.Force {
		t.Error("dashboard runs must set Force")
	}
	if !cfg.WriteEmpty {
		t.Error("dashboard runs must set WriteEmpty")
	}
	if cfg.PDF.ChunkSize != 40 {
		t.Errorf("ChunkSize = %d, want 40", cfg.PDF.ChunkSize)
	}
	if cfg.PDF.Backend != types.BackendText {
		t.Errorf("Backend = %q, want text", cfg.PDF.Backend)
	}

	waitIdle(t, s)
	logs := get(t, s.Handler(), "/logs").Body.String()
	for _, want := range []string{"starting conversion:", "converted 1 file", "done"} {
		if !strings.Contains(logs, want) {
			t.Errorf("logs missing %q, got:\n%s", want, logs)
		}
	}
}

func TestConvertRejectsSecondRun(t *testing.T) {
	started := make(chan struct{})
	release := make(chan struct{})
	run := func(cfg types.ConvertConfig, w io.Writer) (convert.BatchResult, error) {
		close(started)
		<-release
		return convert.BatchResult{}, nil
	}
	s, inDir, outDir := testServer(t, run)
	h := s.Handler()
	form := url.Values{"input": {inDir}, "output": {outDir}}

	if rec := postForm(t, h, form); rec.Code != http.StatusSeeOther {
		t.Fatalf("first run: status = %d, want 303", rec.Code)
	}
	<-started

	if rec := get(t, h, "/status"); !strings.Contains(rec.Body.String(), `"running": true`) {
		t.Errorf("status during run = %s", rec.Body.String())
	}

	rec := postForm(t, h, form)
	if rec.Code != http.StatusConflict {
		t.Errorf("second run: status = %d, want 409", rec.Code)
	}
	if !strings.Contains(rec.Body.String(), "already running") {
		t.Errorf("second run: body = %q", rec.Body.String())
	}

	close(release)
	waitIdle(t, s)

	if rec := get(t, h, "/status"); !strings.Contains(rec.Body.String(), `"running": false`) {
		t.Errorf("status after run = %s", rec.Body.String())
	}
}

func TestConvertRunError(t *testing.T) {
	run := func(cfg types.ConvertConfig, w io.Writer) (convert.BatchResult, error) {
		return convert.BatchResult{}, errors.New("no container runtime found")
	}
	s, inDir, outDir := testServer(t, run)

	rec := postForm(t, s.Handler(), url.Values{"input": {inDir}, "output": {outDir}})
	if rec.Code != http.StatusSeeOther {
		t.Fatalf("status = %d, want 303", rec.Code)
	}
	waitIdle(t, s)

	logs := get(t, s.Handler(), "/logs").Body.String()
	if !strings.Contains(logs, "error: no container runtime found") {
		t.Errorf("logs missing run error, got:\n%s", logs)
	}
}

func TestConvertValidatesInputDir(t *testing.T) {
	s, inDir, outDir := testServer(t, nil)

	rec := postForm(t, s.Handler(), url.Values{
		"input":  {filepath.Join(inDir, "missing")},
		"output": {outDir},
	})
	if rec.Code != http.StatusBadRequest {
		t.Errorf("missing input dir: status = %d, want 400", rec.Code)
	}

	file := filepath.Join(inDir, "plain.txt")
	if err := os.WriteFile(file, []byte("x"), 0o644); err != nil {
		t.Fatal(err)
	}
	rec = postForm(t, s.Handler(), url.Values{"input": {file}, "output": {outDir}})
	if rec.Code != http.StatusBadRequest {
		t.Errorf("input is a file: status = %d, want 400", rec.Code)
	}
}

func TestClampChunkSize(t *testing.T) {
	tests := []struct {
		in   string
		want int
	}{
		{"25", 25},
		{"10", 10},
		{"100", 100},
		{"5", 10},
		{"250", 100},
		{"", convert.DefaultChunkSize},
		{"abc", convert.DefaultChunkSize},
	}
	for _, tt := range tests {
		if got := clampChunkSize(tt.in); got != tt.want {
			t.Errorf("clampChunkSize(%q) = %d, want %d", tt.in, got, tt.want)
		}
	}
}

func TestOutputRel(t *testing.T) {
	tests := []struct {
		in   string
		want string
	}{
		{"report.pdf", "report.md"},
		{"notes/deck.pptx", "notes/deck.md"},
		{"plain.txt", "plain.md"},
	}
	for _, tt := range tests {
		if got := outputRel(tt.in); got != tt.want {
			t.Errorf("outputRel(%q) = %q, want %q", tt.in, got, tt.want)
		}
	}
}

func TestDocsListEmpty(t *testing.T) {
	s, _, _ := testServer(t, nil)

	rec := get(t, s.Handler(), "/docs/")
	if rec.Code != http.StatusOK {
		t.Fatalf("status = %d, want 200", rec.Code)
	}
	if !strings.Contains(rec.Body.String(), "No documents converted yet") {
		t.Errorf("empty listing body = %s", rec.Body.String())
	}
}

func TestDocsList(t *testing.T) {
	s, inDir, outDir := testServer(t, nil)

	mdPath := filepath.Join(outDir, "notes", "report.md")
	if err := os.MkdirAll(filepath.Dir(mdPath), 0o755); err != nil {
		t.Fatal(err)
	}
	if err := os.WriteFile(mdPath, []byte("# Report\n"), 0o644); err != nil {
		t.Fatal(err)
	}

	cat, err := catalog.NewCatalog(outDir, types.CatalogConfig{})
	if err != nil {
		t.Fatalf("NewCatalog: %v", err)
	}
	ctx := context.Background()
	results := []types.Result{
		{
			Document: types.Document{
				SourcePath: filepath.Join(inDir, "notes", "report.pdf"),
				RelPath:    "notes/report.pdf",
				Format:     types.FormatPDF,
				ModTime:    time.Now(),
			},
			OutputPath: mdPath,
			Backend:    "marker",
			Status:     types.StatusConverted,
			Chunks:     1,
		},
		{
			Document: types.Document{
				SourcePath: filepath.Join(inDir, "broken.docx"),
				RelPath:    "broken.docx",
				Format:     types.FormatDocx,
				ModTime:    time.Now(),
			},
			Backend: "markitdown",
			Status:  types.StatusFailed,
			Err:     errors.New("markitdown failed"),
		},
	}
	for _, res := range results {
		if err := cat.Record(ctx, res); err != nil {
			t.Fatalf("Record: %v", err)
		}
	}
	if err := cat.Close(); err != nil {
		t.Fatal(err)
	}

	rec := get(t, s.Handler(), "/docs/")
	if rec.Code != http.StatusOK {
		t.Fatalf("status = %d, want 200", rec.Code)
	}
	body := rec.Body.String()
	if !strings.Contains(body, `href="/docs/notes/report.md"`) {
		t.Errorf("listing missing link to converted document:\n%s", body)
	}
	if !strings.Contains(body, "broken.docx") {
		t.Error("listing missing failed document row")
	}
	if strings.Contains(body, `href="/docs/broken.md"`) {
		t.Error("failed document must not link to missing output")
	}
}

func TestDocPage(t *testing.T) {
	s, _, outDir := testServer(t, nil)

	content := "# Getting started\n\nSome *text*.\n\n```go\nfunc main() {}\n```\n"
	if err := os.WriteFile(filepath.Join(outDir, "guide.md"), []byte(content), 0o644); err != nil {
		t.Fatal(err)
	}

	rec := get(t, s.Handler(), "/docs/guide.md")
	if rec.Code != http.StatusOK {
		t.Fatalf("status = %d, want 200", rec.Code)
	}
	body := rec.Body.String()
	for _, want := range []string{"Getting started", "<h1", "<em>text</em>", ".chroma"} {
		if !strings.Contains(body, want) {
			t.Errorf("rendered page missing %q", want)
		}
	}
}

func TestDocPageMissing(t *testing.T) {
	s, _, _ := testServer(t, nil)

	rec := get(t, s.Handler(), "/docs/nope.md")
	if rec.Code != http.StatusNotFound {
		t.Errorf("status = %d, want 404", rec.Code)
	}
}

func TestDocsServesRawAssets(t *testing.T) {
	s, _, outDir := testServer(t, nil)

	img := []byte{0x89, 'P', 'N', 'G', 0x0d, 0x0a}
	imgPath := filepath.Join(outDir, "images", "guide", "fig.png")
	if err := os.MkdirAll(filepath.Dir(imgPath), 0o755); err != nil {
		t.Fatal(err)
	}
	if err := os.WriteFile(imgPath, img, 0o644); err != nil {
		t.Fatal(err)
	}

	rec := get(t, s.Handler(), "/docs/images/guide/fig.png")
	if rec.Code != http.StatusOK {
		t.Fatalf("status = %d, want 200", rec.Code)
	}
	if rec.Body.String() != string(img) {
		t.Error("raw asset bytes do not round-trip")
	}
}

func TestDocsRejectsTraversal(t *testing.T) {
	s, _, _ := testServer(t, nil)

	rec := get(t, s.Handler(), "/docs/%2e%2e/%2e%2e/etc/passwd")
	if rec.Code != http.StatusNotFound {
		t.Errorf("status = %d, want 404", rec.Code)
	}
}
