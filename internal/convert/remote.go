// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package convert

import (
	"bytes"
	"context"
	"encoding/base64"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/pdiddy/markforge/internal/httputil"
	"github.com/pdiddy/markforge/pkg/types"
)

const backendRemote = "remote"

const defaultRemoteTimeout = 5 * time.Minute

// inferenceRequest is the JSON body sent to a marker-compatible inference
// service for one PDF chunk.
type inferenceRequest struct {
	Filename  string `json:"filename"`
	PDFBase64 string `json:"pdf_base64"`
	Format    string `json:"output_format"`
}

// inferenceResponse is the service reply: markdown plus base64 images keyed
// by the file names referenced in the markdown.
type inferenceResponse struct {
	Markdown string            `json:"markdown"`
	Images   map[string]string `json:"images,omitempty"`
}

// RemoteEngine posts PDF chunks to a marker-compatible HTTP inference
// service. Rate-limited requests are retried with backoff.
type RemoteEngine struct {
	url    string
	apiKey string
	client *http.Client
	cfg    types.HTTPConfig
}

// NewRemoteEngine validates the endpoint and builds the HTTP client.
func NewRemoteEngine(url, apiKey string, cfg types.HTTPConfig) (*RemoteEngine, error) {
	if url == "" {
		return nil, fmt.Errorf("remote backend requires a service URL")
	}
	timeout := cfg.Timeout
	if timeout <= 0 {
		timeout = defaultRemoteTimeout
	}
	return &RemoteEngine{
		url:    url,
		apiKey: apiKey,
		client: &http.Client{Timeout: timeout},
		cfg:    cfg,
	}, nil
}

func (r *RemoteEngine) Name() string { return backendRemote }

func (r *RemoteEngine) ConvertChunk(ctx context.Context, path string) (ChunkResult, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return ChunkResult{}, fmt.Errorf("reading %s: %w", filepath.Base(path), err)
	}

	payload, err := json.Marshal(inferenceRequest{
		Filename:  filepath.Base(path),
		PDFBase64: base64.StdEncoding.EncodeToString(data),
		Format:    "markdown",
	})
	if err != nil {
		return ChunkResult{}, fmt.Errorf("encoding request: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, r.url, bytes.NewReader(payload))
	if err != nil {
		return ChunkResult{}, fmt.Errorf("creating request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")
	if r.cfg.UserAgent != "" {
		req.Header.Set("User-Agent", r.cfg.UserAgent)
	}
	if r.apiKey != "" {
		req.Header.Set("Authorization", "Bearer "+r.apiKey)
	}

	resp, err := httputil.DoWithRetry(ctx, r.client, req, 0)
	if err != nil {
		return ChunkResult{}, fmt.Errorf("calling inference service: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		body, _ := io.ReadAll(io.LimitReader(resp.Body, 512))
		return ChunkResult{}, fmt.Errorf("inference service returned HTTP %d: %s",
			resp.StatusCode, strings.TrimSpace(string(body)))
	}

	var ir inferenceResponse
	if err := json.NewDecoder(resp.Body).Decode(&ir); err != nil {
		return ChunkResult{}, fmt.Errorf("decoding inference response: %w", err)
	}

	res := ChunkResult{Markdown: ir.Markdown}
	for name, b64 := range ir.Images {
		img, err := base64.StdEncoding.DecodeString(b64)
		if err != nil {
			return ChunkResult{}, fmt.Errorf("decoding image %s: %w", name, err)
		}
		if res.Images == nil {
			res.Images = make(map[string][]byte, len(ir.Images))
		}
		res.Images[name] = img
	}
	return res, nil
}
