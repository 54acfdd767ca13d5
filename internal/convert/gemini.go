// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package convert

import (
	"context"
	"fmt"
	"os"
	"path/filepath"

	"google.golang.org/genai"
)

const (
	backendGemini      = "gemini"
	defaultGeminiModel = "gemini-2.5-flash"
)

const geminiPrompt = "Convert this PDF document to clean Markdown. " +
	"Preserve headings, tables, lists, and equations. " +
	"Output only the Markdown content, without code fences around it."

// GeminiEngine converts PDF chunks by sending the PDF bytes inline to the
// Gemini API. It extracts no images; figures are described in the markdown.
type GeminiEngine struct {
	client *genai.Client
	model  string
}

// NewGeminiEngine builds the API client. The key is required; the model
// defaults to a flash-tier model suitable for long documents.
func NewGeminiEngine(ctx context.Context, apiKey, model string) (*GeminiEngine, error) {
	if apiKey == "" {
		return nil, fmt.Errorf("gemini backend requires an API key")
	}
	if model == "" {
		model = defaultGeminiModel
	}
	client, err := genai.NewClient(ctx, &genai.ClientConfig{APIKey: apiKey})
	if err != nil {
		return nil, fmt.Errorf("creating gemini client: %w", err)
	}
	return &GeminiEngine{client: client, model: model}, nil
}

func (g *GeminiEngine) Name() string { return backendGemini }

func (g *GeminiEngine) ConvertChunk(ctx context.Context, path string) (ChunkResult, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return ChunkResult{}, fmt.Errorf("reading %s: %w", filepath.Base(path), err)
	}

	contents := []*genai.Content{{
		Role: genai.RoleUser,
		Parts: []*genai.Part{
			{Text: geminiPrompt},
			{InlineData: &genai.Blob{MIMEType: "application/pdf", Data: data}},
		},
	}}

	res, err := g.client.Models.GenerateContent(ctx, g.model, contents, nil)
	if err != nil {
		return ChunkResult{}, fmt.Errorf("gemini conversion of %s: %w", filepath.Base(path), err)
	}
	return ChunkResult{Markdown: res.Text()}, nil
}
