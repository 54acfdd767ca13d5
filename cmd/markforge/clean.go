package main

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/pdiddy/markforge/internal/workspace"
)

var cleanCmd = &cobra.Command{
	Use:   "clean",
	Short: "Reset the workspace: delete outputs and stray temp chunks",
	Long: `Clean deletes the output directory, including the conversion catalog,
and sweeps the input tree for temporary PDF chunk files left behind by an
interrupted conversion. Missing directories are not errors.`,
	RunE: runClean,
}

func runClean(cmd *cobra.Command, args []string) error {
	input := configString(cmd, "input", "convert.input_dir")
	output := configString(cmd, "output", "convert.output_dir")
	if input == "" || output == "" {
		return fmt.Errorf("--input and --output are required")
	}

	summary, err := workspace.Clean(input, output, os.Stdout)
	if err != nil {
		return err
	}
	if summary.Failed > 0 {
		return fmt.Errorf("%d deletion(s) failed", summary.Failed)
	}
	return nil
}

func init() {
	cleanCmd.Flags().String("input", "", "input directory to sweep for stray chunks")
	cleanCmd.Flags().String("output", "", "output directory to delete")

	rootCmd.AddCommand(cleanCmd)
}
