package main

import (
	"context"
	"fmt"
	"io"
	"os"

	"github.com/spf13/cobra"

	"github.com/pdiddy/markforge/internal/catalog"
	"github.com/pdiddy/markforge/internal/container"
	"github.com/pdiddy/markforge/internal/convert"
	"github.com/pdiddy/markforge/internal/scan"
	"github.com/pdiddy/markforge/pkg/types"
)

var convertCmd = &cobra.Command{
	Use:   "convert",
	Short: "Convert a directory tree of documents to Markdown",
	Long: `Convert scans the input directory for documents (.pdf, .docx, .pptx,
.xlsx, .txt) and writes one Markdown file per document into an output tree
mirroring the input. PDFs are split into page chunks and converted through
an OCR/layout engine; office documents go through markitdown; text files
pass through unchanged.

Outcomes are recorded in a catalog under <output>/.catalog for the search
and status commands. Existing outputs are skipped unless --force is set.`,
	RunE: runConvert,
}

func runConvert(cmd *cobra.Command, args []string) error {
	cfg, err := convertConfigFromFlags(cmd)
	if err != nil {
		return err
	}
	if cfg.InputDir == "" || cfg.OutputDir == "" {
		return fmt.Errorf("--input and --output are required")
	}

	result, err := runBatch(context.Background(), cfg, os.Stdout)
	if err != nil {
		return err
	}
	if result.HasFailures() {
		return fmt.Errorf("%d document(s) failed conversion", result.Failed)
	}
	return nil
}

// runBatch executes one batch conversion: scan, convert, record to the
// catalog, export. The dashboard reuses it as its background task.
func runBatch(ctx context.Context, cfg types.ConvertConfig, w io.Writer) (convert.BatchResult, error) {
	scanRes, err := scan.Walk(cfg.InputDir)
	if err != nil {
		return convert.BatchResult{}, err
	}
	fmt.Fprintf(w, "found %d document(s), %d file(s) ignored\n", len(scanRes.Documents), scanRes.Ignored)
	if len(scanRes.Documents) == 0 {
		return convert.BatchResult{}, nil
	}

	convs, err := buildConverters(ctx, cfg, scanRes.Documents, w)
	if err != nil {
		return convert.BatchResult{}, err
	}

	cat, err := catalog.NewCatalog(cfg.OutputDir, types.CatalogConfig{})
	if err != nil {
		return convert.BatchResult{}, err
	}
	defer cat.Close()

	record := func(res types.Result) {
		if err := cat.Record(ctx, res); err != nil {
			fmt.Fprintf(w, "warning: catalog record for %s failed: %v\n", res.Document.RelPath, err)
		}
	}

	result := convert.ConvertBatch(ctx, convs, scanRes.Documents, cfg, w, record)

	if err := cat.ExportYAML(ctx); err != nil {
		fmt.Fprintf(w, "warning: catalog export failed: %v\n", err)
	}
	return result, nil
}

// buildConverters assembles the per-format converter table, constructing
// only the engines the scanned documents need. A text-only tree converts
// without any container runtime or API key.
func buildConverters(ctx context.Context, cfg types.ConvertConfig, docs []types.Document, w io.Writer) (map[types.Format]convert.Converter, error) {
	need := make(map[types.Format]bool, len(docs))
	for _, d := range docs {
		need[d.Format] = true
	}

	convs := make(map[types.Format]convert.Converter)

	if need[types.FormatPDF] {
		engine, err := pdfEngine(ctx, cfg.PDF, w)
		if err != nil {
			return nil, err
		}
		convs[types.FormatPDF] = convert.NewPDFConverter(engine, cfg.PDF.ChunkSize, w)
	}

	if need[types.FormatDocx] || need[types.FormatPptx] || need[types.FormatXlsx] {
		office, err := convert.NewOfficeConverter(cfg.Office)
		if err != nil {
			return nil, err
		}
		convs[types.FormatDocx] = office
		convs[types.FormatPptx] = office
		convs[types.FormatXlsx] = office
	}

	if need[types.FormatText] {
		convs[types.FormatText] = convert.TextConverter{}
	}
	return convs, nil
}

// pdfEngine builds the chunk conversion engine selected by the backend
// setting.
func pdfEngine(ctx context.Context, cfg types.PDFConfig, w io.Writer) (convert.ChunkConverter, error) {
	switch cfg.Backend {
	case types.BackendMarker, "":
		rt, err := container.DetectRuntime()
		if err != nil {
			return nil, fmt.Errorf("marker backend: %w", err)
		}
		return convert.NewMarkerEngine(rt, cfg.MarkerImage, w)
	case types.BackendRemote:
		return convert.NewRemoteEngine(cfg.RemoteURL, cfg.RemoteAPIKey, cfg.HTTPConfig)
	case types.BackendGemini:
		return convert.NewGeminiEngine(ctx, cfg.GeminiAPIKey, cfg.Model)
	case types.BackendText:
		return convert.NativeTextEngine{}, nil
	}
	return nil, fmt.Errorf("unknown pdf backend %q: use marker, remote, gemini, or text", cfg.Backend)
}

// addConvertFlags registers the conversion flags shared by convert and
// serve.
func addConvertFlags(cmd *cobra.Command) {
	cmd.Flags().String("input", "", "input directory to scan for documents")
	cmd.Flags().String("output", "", "output directory for the mirrored markdown tree")
	cmd.Flags().Int("chunk-size", convert.DefaultChunkSize, "maximum pages per PDF chunk (1-500)")
	cmd.Flags().String("pdf-backend", "marker", "PDF engine: marker, remote, gemini, or text")
	cmd.Flags().String("marker-image", "", "marker container image (default marker:latest)")
	cmd.Flags().String("remote-url", "", "inference endpoint for the remote backend")
	cmd.Flags().String("remote-api-key", "", "remote backend API key (default: .secrets/remote-api-key)")
	cmd.Flags().String("model", "", "gemini model (default gemini-2.5-flash)")
	cmd.Flags().String("gemini-api-key", "", "gemini API key (default: .secrets/gemini-api-key)")
	cmd.Flags().String("office-image", "", "markitdown container image (default markitdown:latest)")
	cmd.Flags().Bool("binary-fallback", false, "fall back to a markitdown binary on PATH when no container runtime is found")
	cmd.Flags().Duration("timeout", 0, "HTTP timeout for the remote backend (default 5m)")
}

// convertConfigFromFlags builds the batch configuration from flags, falling
// back to the config file for unset flags. Directory requiredness is left
// to the caller; the dashboard collects directories through its form.
func convertConfigFromFlags(cmd *cobra.Command) (types.ConvertConfig, error) {
	input := configString(cmd, "input", "convert.input_dir")
	output := configString(cmd, "output", "convert.output_dir")

	chunkSize := configInt(cmd, "chunk-size", "convert.pdf.chunk_size")
	if chunkSize < 1 || chunkSize > 500 {
		return types.ConvertConfig{}, fmt.Errorf("chunk size %d out of range: use 1-500", chunkSize)
	}

	force, _ := cmd.Flags().GetBool("force")
	remoteKey, _ := cmd.Flags().GetString("remote-api-key")
	geminiKey, _ := cmd.Flags().GetString("gemini-api-key")
	binaryFallback, _ := cmd.Flags().GetBool("binary-fallback")
	timeout, _ := cmd.Flags().GetDuration("timeout")

	cfg := types.ConvertConfig{
		InputDir:  input,
		OutputDir: output,
		Force:     force,
		PDF: types.PDFConfig{
			HTTPConfig: types.HTTPConfig{
				Timeout:   timeout,
				UserAgent: "markforge/" + version,
			},
			Backend:      types.PDFBackend(configString(cmd, "pdf-backend", "convert.pdf.backend")),
			ChunkSize:    chunkSize,
			MarkerImage:  configString(cmd, "marker-image", "convert.pdf.marker_image"),
			RemoteURL:    configString(cmd, "remote-url", "convert.pdf.remote_url"),
			RemoteAPIKey: secretDefault("remote-api-key", remoteKey),
			Model:        configString(cmd, "model", "convert.pdf.model"),
			GeminiAPIKey: secretDefault("gemini-api-key", geminiKey),
		},
		Office: types.OfficeConfig{
			Image:          configString(cmd, "office-image", "convert.office.image"),
			BinaryFallback: binaryFallback,
		},
	}
	return cfg, nil
}

func init() {
	addConvertFlags(convertCmd)
	convertCmd.Flags().Bool("force", false, "reconvert documents whose output already exists")

	rootCmd.AddCommand(convertCmd)
}
