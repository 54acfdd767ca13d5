// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package main

import (
	"context"
	"encoding/json"
	"fmt"
	"os"
	"strings"

	"github.com/spf13/cobra"

	"github.com/pdiddy/markforge/internal/catalog"
	"github.com/pdiddy/markforge/pkg/types"
)

var searchCmd = &cobra.Command{
	Use:   "search [query]",
	Short: "Full-text search across converted documents",
	Long: `Search queries the conversion catalog's full-text index over converted
markdown bodies and document paths. Results are rank-ordered and include a
snippet with the matched terms bracketed.`,
	Args: cobra.MinimumNArgs(1),
	RunE: runSearch,
}

func runSearch(cmd *cobra.Command, args []string) error {
	cat, err := openCatalog(cmd)
	if err != nil {
		return err
	}
	defer cat.Close()

	limit, _ := cmd.Flags().GetInt("limit")
	results, err := cat.Search(context.Background(), strings.Join(args, " "), limit)
	if err != nil {
		return err
	}

	jsonOutput, _ := cmd.Flags().GetBool("json")
	return formatSearchOutput(results, jsonOutput)
}

func formatSearchOutput(results []catalog.SearchResult, jsonOutput bool) error {
	if jsonOutput {
		enc := json.NewEncoder(os.Stdout)
		enc.SetIndent("", "  ")
		return enc.Encode(results)
	}

	if len(results) == 0 {
		fmt.Println("No results found.")
		return nil
	}

	fmt.Fprintf(os.Stdout, "%-4s  %-40s  %-9s  %s\n", "Rank", "Document", "Status", "Snippet")
	fmt.Fprintln(os.Stdout, strings.Repeat("-", 100))

	for i, r := range results {
		relPath := r.RelPath
		if len(relPath) > 40 {
			relPath = relPath[:37] + "..."
		}
		snippet := strings.ReplaceAll(r.Snippet, "\n", " ")
		if len(snippet) > 44 {
			snippet = snippet[:41] + "..."
		}
		fmt.Fprintf(os.Stdout, "%-4d  %-40s  %-9s  %s\n", i+1, relPath, r.Status, snippet)
	}

	fmt.Fprintf(os.Stdout, "\n%d results\n", len(results))
	return nil
}

// openCatalog opens the catalog under the output directory, failing when
// no conversion has created one yet.
func openCatalog(cmd *cobra.Command) (*catalog.Catalog, error) {
	output := configString(cmd, "output", "convert.output_dir")
	if output == "" {
		return nil, fmt.Errorf("--output is required")
	}
	if !catalog.Exists(output) {
		return nil, fmt.Errorf("no catalog under %s: run convert first", output)
	}
	maxResults := configInt(cmd, "max-results", "catalog.max_results")
	return catalog.NewCatalog(output, types.CatalogConfig{MaxResults: maxResults})
}

func init() {
	searchCmd.Flags().String("output", "", "output directory containing the catalog")
	searchCmd.Flags().Int("limit", 0, "maximum results (0 = use default)")
	searchCmd.Flags().Int("max-results", 20, "default maximum number of results")
	searchCmd.Flags().Bool("json", false, "output results as JSON")

	rootCmd.AddCommand(searchCmd)
}
