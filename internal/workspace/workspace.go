// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

// Package workspace resets the conversion environment between batch runs.
// Implements: prd006-reset (R1-R3);
//
//	docs/ARCHITECTURE § Workspace Reset.
package workspace

import (
	"fmt"
	"io"
	"io/fs"
	"os"
	"path/filepath"
	"strings"
)

// tempChunkMarker matches the stem marker the PDF splitter puts in
// temporary chunk files.
const tempChunkMarker = "_temp_chunk_"

// CleanSummary holds counts from a workspace reset (R3.1).
type CleanSummary struct {
	OutputRemoved bool
	ChunksRemoved int
	Failed        int
}

// Clean deletes the output directory, including the catalog, and sweeps
// the input tree for stray temporary chunk files left by an interrupted
// run (R1, R2). Missing directories are not errors. Removal failures are
// logged and counted rather than aborting the sweep.
func Clean(inputDir, outputDir string, w io.Writer) (CleanSummary, error) {
	var summary CleanSummary

	if _, err := os.Stat(outputDir); err == nil {
		fmt.Fprintf(w, "removing output directory: %s\n", outputDir)
		if err := os.RemoveAll(outputDir); err != nil {
			fmt.Fprintf(w, "warning: could not remove output directory: %v\n", err)
			summary.Failed++
		} else {
			summary.OutputRemoved = true
		}
	} else {
		fmt.Fprintf(w, "output directory already clean: %s\n", outputDir)
	}

	err := filepath.WalkDir(inputDir, func(path string, d fs.DirEntry, err error) error {
		if err != nil {
			return err
		}
		if d.IsDir() {
			return nil
		}
		name := d.Name()
		if !strings.Contains(name, tempChunkMarker) || !strings.EqualFold(filepath.Ext(name), ".pdf") {
			return nil
		}
		if err := os.Remove(path); err != nil {
			fmt.Fprintf(w, "failed to delete %s: %v\n", name, err)
			summary.Failed++
			return nil
		}
		fmt.Fprintf(w, "deleted: %s\n", name)
		summary.ChunksRemoved++
		return nil
	})
	if err != nil && !os.IsNotExist(err) {
		return summary, fmt.Errorf("sweeping input directory %s: %w", inputDir, err)
	}

	fmt.Fprintf(w, "\nClean summary: %d stray chunks removed, %d failed\n",
		summary.ChunksRemoved, summary.Failed)
	return summary, nil
}
