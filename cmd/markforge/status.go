package main

import (
	"context"
	"encoding/json"
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/pdiddy/markforge/internal/catalog"
)

var statusCmd = &cobra.Command{
	Use:   "status",
	Short: "Summarize the conversion catalog",
	Long: `Status reports conversion counts by outcome, the last run time, sources
that changed since they were converted, sources that no longer exist, and
recorded failures.`,
	RunE: runStatus,
}

func runStatus(cmd *cobra.Command, args []string) error {
	cat, err := openCatalog(cmd)
	if err != nil {
		return err
	}
	defer cat.Close()

	summary, err := cat.Summary(context.Background())
	if err != nil {
		return err
	}

	jsonOutput, _ := cmd.Flags().GetBool("json")
	return formatStatusOutput(summary, jsonOutput)
}

func formatStatusOutput(s catalog.Summary, jsonOutput bool) error {
	if jsonOutput {
		enc := json.NewEncoder(os.Stdout)
		enc.SetIndent("", "  ")
		return enc.Encode(s)
	}

	fmt.Printf("Documents: %d total - %d converted, %d partial, %d skipped, %d failed\n",
		s.Total, s.Converted, s.Partial, s.Skipped, s.Failed)
	if s.LastRun != "" {
		fmt.Printf("Last run:  %s\n", s.LastRun)
	}

	if len(s.Stale) > 0 {
		fmt.Println("\nStale (source changed since conversion):")
		for _, p := range s.Stale {
			fmt.Printf("  %s\n", p)
		}
	}
	if len(s.Missing) > 0 {
		fmt.Println("\nMissing sources:")
		for _, p := range s.Missing {
			fmt.Printf("  %s\n", p)
		}
	}
	if len(s.Failures) > 0 {
		fmt.Println("\nFailures:")
		for _, f := range s.Failures {
			fmt.Printf("  %s\n", f)
		}
	}
	return nil
}

func init() {
	statusCmd.Flags().String("output", "", "output directory containing the catalog")
	statusCmd.Flags().Int("max-results", 20, "default maximum number of results")
	statusCmd.Flags().Bool("json", false, "output the summary as JSON")

	rootCmd.AddCommand(statusCmd)
}
