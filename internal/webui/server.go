// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

// Package webui serves the conversion dashboard: a form that starts one
// background batch at a time, a filtered log pane, and a browser for the
// converted documents.
// Implements: prd005-dashboard (R1-R5);
//
//	docs/ARCHITECTURE § Dashboard.
package webui

import (
	"errors"
	"fmt"
	"html/template"
	"io"
	"net/http"
	"os"
	"path"
	"path/filepath"
	"strconv"
	"strings"
	"sync"

	"github.com/yuin/goldmark"

	"github.com/pdiddy/markforge/internal/catalog"
	"github.com/pdiddy/markforge/internal/convert"
	"github.com/pdiddy/markforge/internal/logfilter"
	"github.com/pdiddy/markforge/pkg/types"
)

const (
	minChunkSize = 10
	maxChunkSize = 100
)

var errAlreadyRunning = errors.New("a conversion is already running")

// RunFunc executes one batch conversion, writing progress to w. The
// dashboard injects the batch pipeline through it.
type RunFunc func(cfg types.ConvertConfig, w io.Writer) (convert.BatchResult, error)

// Server is the dashboard HTTP server. It owns the single background
// conversion slot and the bounded log buffer behind the log pane.
type Server struct {
	base types.ConvertConfig
	run  RunFunc
	logs *logBuffer
	md   goldmark.Markdown
	css  template.CSS

	mu        sync.Mutex
	running   bool
	outputDir string
}

// NewServer builds a dashboard around the given defaults and batch runner.
func NewServer(base types.ConvertConfig, cfg types.ServeConfig, run RunFunc) (*Server, error) {
	css, err := chromaCSS()
	if err != nil {
		return nil, err
	}
	if base.PDF.ChunkSize <= 0 {
		base.PDF.ChunkSize = convert.DefaultChunkSize
	}
	return &Server{
		base:      base,
		run:       run,
		logs:      newLogBuffer(cfg.LogLines),
		md:        newRenderer(),
		css:       template.CSS(css),
		outputDir: base.OutputDir,
	}, nil
}

// Handler returns the dashboard routes.
func (s *Server) Handler() http.Handler {
	mux := http.NewServeMux()
	mux.HandleFunc("GET /{$}", s.handleIndex)
	mux.HandleFunc("POST /convert", s.handleConvert)
	mux.HandleFunc("GET /logs", s.handleLogs)
	mux.HandleFunc("GET /status", s.handleStatus)
	mux.HandleFunc("GET /docs/{path...}", s.handleDocs)
	return mux
}

// Running reports whether a conversion is in flight.
func (s *Server) Running() bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.running
}

func (s *Server) currentOutputDir() string {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.outputDir
}

// startRun claims the single conversion slot and launches the batch in the
// background. A second start while one is running is rejected.
func (s *Server) startRun(cfg types.ConvertConfig) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.running {
		return errAlreadyRunning
	}
	s.running = true
	s.outputDir = cfg.OutputDir
	s.logs.Reset()

	go func() {
		defer func() {
			s.mu.Lock()
			s.running = false
			s.mu.Unlock()
		}()

		lw := logfilter.New(s.logs)
		defer lw.Flush()

		fmt.Fprintf(lw, "starting conversion: %s -> %s\n", cfg.InputDir, cfg.OutputDir)
		if _, err := s.run(cfg, lw); err != nil {
			fmt.Fprintf(lw, "error: %v\n", err)
			return
		}
		fmt.Fprintf(lw, "done\n")
	}()
	return nil
}

func (s *Server) handleIndex(w http.ResponseWriter, r *http.Request) {
	data := indexData{
		Input:     s.base.InputDir,
		Output:    s.currentOutputDir(),
		ChunkSize: s.base.PDF.ChunkSize,
		Backend:   string(s.base.PDF.Backend),
		Running:   s.Running(),
	}
	if err := indexTmpl.Execute(w, data); err != nil {
		http.Error(w, err.Error(), http.StatusInternalServerError)
	}
}

func (s *Server) handleConvert(w http.ResponseWriter, r *http.Request) {
	if err := r.ParseForm(); err != nil {
		http.Error(w, "invalid form", http.StatusBadRequest)
		return
	}

	cfg := s.base
	if v := r.FormValue("input"); v != "" {
		cfg.InputDir = v
	}
	if v := r.FormValue("output"); v != "" {
		cfg.OutputDir = v
	}
	if v := r.FormValue("backend"); v != "" {
		cfg.PDF.Backend = types.PDFBackend(v)
	}
	cfg.PDF.ChunkSize = clampChunkSize(r.FormValue("chunk_size"))

	// Dashboard runs overwrite prior outputs and keep empty results so
	// every input file is visibly processed.
	cfg.Force = true
	cfg.WriteEmpty = true

	if cfg.InputDir == "" || cfg.OutputDir == "" {
		http.Error(w, "input and output directories are required", http.StatusBadRequest)
		return
	}
	if info, err := os.Stat(cfg.InputDir); err != nil || !info.IsDir() {
		http.Error(w, "input directory does not exist: "+cfg.InputDir, http.StatusBadRequest)
		return
	}

	if err := s.startRun(cfg); err != nil {
		http.Error(w, err.Error(), http.StatusConflict)
		return
	}
	http.Redirect(w, r, "/", http.StatusSeeOther)
}

func (s *Server) handleLogs(w http.ResponseWriter, r *http.Request) {
	w.Header().Set("Content-Type", "text/plain; charset=utf-8")
	io.WriteString(w, s.logs.String())
}

func (s *Server) handleStatus(w http.ResponseWriter, r *http.Request) {
	w.Header().Set("Content-Type", "application/json")
	fmt.Fprintf(w, `{"running": %t}`, s.Running())
}

func (s *Server) handleDocs(w http.ResponseWriter, r *http.Request) {
	rel := r.PathValue("path")
	if rel == "" {
		s.handleDocsList(w, r)
		return
	}

	clean := filepath.Clean(filepath.FromSlash(rel))
	if filepath.IsAbs(clean) || clean == ".." || strings.HasPrefix(clean, ".."+string(filepath.Separator)) {
		http.NotFound(w, r)
		return
	}
	full := filepath.Join(s.currentOutputDir(), clean)

	if strings.EqualFold(filepath.Ext(clean), ".md") {
		s.handleDocPage(w, r, full, rel)
		return
	}
	http.ServeFile(w, r, full)
}

func (s *Server) handleDocsList(w http.ResponseWriter, r *http.Request) {
	outDir := s.currentOutputDir()

	var entries []catalog.ExportEntry
	if catalog.Exists(outDir) {
		cat, err := catalog.NewCatalog(outDir, types.CatalogConfig{})
		if err != nil {
			http.Error(w, err.Error(), http.StatusInternalServerError)
			return
		}
		defer cat.Close()

		entries, err = cat.List(r.Context())
		if err != nil {
			http.Error(w, err.Error(), http.StatusInternalServerError)
			return
		}
	}

	data := docsData{Output: outDir}
	for _, e := range entries {
		d := docEntry{
			RelPath:     e.RelPath,
			Status:      e.Status,
			Backend:     e.Backend,
			ConvertedAt: e.ConvertedAt,
		}
		// Failed documents have no output file to link to.
		if e.Status != string(types.StatusFailed) {
			d.Link = "/docs/" + outputRel(e.RelPath)
		}
		data.Entries = append(data.Entries, d)
	}
	if err := docsTmpl.Execute(w, data); err != nil {
		http.Error(w, err.Error(), http.StatusInternalServerError)
	}
}

func (s *Server) handleDocPage(w http.ResponseWriter, r *http.Request, fullPath, relPath string) {
	content, err := os.ReadFile(fullPath)
	if err != nil {
		http.NotFound(w, r)
		return
	}

	body, err := s.renderMarkdown(content)
	if err != nil {
		http.Error(w, err.Error(), http.StatusInternalServerError)
		return
	}

	data := docPageData{Title: relPath, CSS: s.css, Body: body}
	if err := docPageTmpl.Execute(w, data); err != nil {
		http.Error(w, err.Error(), http.StatusInternalServerError)
	}
}

// outputRel maps a source rel path to its mirrored markdown link path.
func outputRel(relPath string) string {
	rel := filepath.ToSlash(relPath)
	return strings.TrimSuffix(rel, path.Ext(rel)) + ".md"
}

// clampChunkSize parses the form value and clamps it to the allowed range.
func clampChunkSize(v string) int {
	n, err := strconv.Atoi(v)
	if err != nil {
		return convert.DefaultChunkSize
	}
	if n < minChunkSize {
		return minChunkSize
	}
	if n > maxChunkSize {
		return maxChunkSize
	}
	return n
}
