package types

import "time"

// HTTPConfig holds shared HTTP settings used by backends that make network
// requests.
type HTTPConfig struct {
	// Timeout is the HTTP request timeout.
	Timeout time.Duration `json:"timeout" yaml:"timeout"`

	// UserAgent is the User-Agent header sent with HTTP requests
	// (e.g. "markforge/0.1"). Per prd003-pdf-chunking R5.2.
	UserAgent string `json:"user_agent" yaml:"user_agent"`
}

// PDFBackend identifies the engine used for PDF chunk conversion.
// Per prd003-pdf-chunking R5.1.
type PDFBackend string

const (
	BackendMarker PDFBackend = "marker"
	BackendRemote PDFBackend = "remote"
	BackendGemini PDFBackend = "gemini"
	BackendText   PDFBackend = "text"
)

// PDFConfig holds settings for the chunked PDF conversion path.
// Per prd003-pdf-chunking R1.1-R1.4, R5.1-R5.5.
type PDFConfig struct {
	HTTPConfig `yaml:",inline"`

	// Backend selects the chunk conversion engine: marker, remote, gemini,
	// or text.
	Backend PDFBackend `json:"backend" yaml:"backend"`

	// ChunkSize is the maximum number of pages per chunk (default 25).
	ChunkSize int `json:"chunk_size" yaml:"chunk_size"`

	// MarkerImage is the container image run by the marker backend.
	MarkerImage string `json:"marker_image" yaml:"marker_image"`

	// RemoteURL is the inference endpoint used by the remote backend.
	RemoteURL string `json:"remote_url,omitempty" yaml:"remote_url,omitempty"`

	// RemoteAPIKey authenticates requests to the remote backend.
	RemoteAPIKey string `json:"remote_api_key,omitempty" yaml:"remote_api_key,omitempty"`

	// Model is the model identifier used by the gemini backend
	// (e.g. "gemini-2.0-flash").
	Model string `json:"model,omitempty" yaml:"model,omitempty"`

	// GeminiAPIKey authenticates requests to the gemini backend.
	GeminiAPIKey string `json:"gemini_api_key,omitempty" yaml:"gemini_api_key,omitempty"`
}

// OfficeConfig holds settings for office document conversion.
// Per prd002-conversion R5.3.
type OfficeConfig struct {
	// Image is the markitdown container image.
	Image string `json:"image" yaml:"image"`

	// BinaryFallback allows falling back to a markitdown binary on PATH
	// when no container runtime is available.
	BinaryFallback bool `json:"binary_fallback" yaml:"binary_fallback"`
}

// ConvertConfig holds settings for a batch conversion run.
// Per prd002-conversion R5.1-R5.4.
type ConvertConfig struct {
	// InputDir is the root of the tree to scan for documents.
	InputDir string `json:"input_dir" yaml:"input_dir"`

	// OutputDir is the root of the mirrored markdown tree.
	OutputDir string `json:"output_dir" yaml:"output_dir"`

	// Force reconverts documents whose output already exists.
	Force bool `json:"force" yaml:"force"`

	// WriteEmpty writes an empty markdown file when conversion produces
	// no content, instead of reporting a failure.
	WriteEmpty bool `json:"write_empty" yaml:"write_empty"`

	PDF    PDFConfig    `json:"pdf" yaml:"pdf"`
	Office OfficeConfig `json:"office" yaml:"office"`
}

// CatalogConfig holds settings for the conversion catalog.
// Per prd004-catalog R1.2.
type CatalogConfig struct {
	// MaxResults is the default maximum number of search results (default 20).
	MaxResults int `json:"max_results" yaml:"max_results"`
}

// ServeConfig holds settings for the dashboard server.
// Per prd005-dashboard R1.1, R4.2.
type ServeConfig struct {
	// Addr is the listen address (e.g. "127.0.0.1:8382").
	Addr string `json:"addr" yaml:"addr"`

	// LogLines caps the in-memory log buffer served to the dashboard.
	LogLines int `json:"log_lines" yaml:"log_lines"`
}

// ToolConfig groups all configuration for the tool.
type ToolConfig struct {
	Convert ConvertConfig `json:"convert" yaml:"convert"`
	Catalog CatalogConfig `json:"catalog" yaml:"catalog"`
	Serve   ServeConfig   `json:"serve" yaml:"serve"`
}
