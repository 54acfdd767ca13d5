// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

// Package main is the entry point for the markforge CLI.
// Implements: prd001-discovery, prd002-conversion, prd003-pdf-chunking,
//             prd004-catalog, prd005-dashboard, prd006-reset (CLI surface).
// See docs/ARCHITECTURE § Pipeline Interface, § Project Structure.
package main

import (
	"fmt"
	"os"
	"path/filepath"
	"sort"

	"github.com/spf13/cobra"
	"github.com/spf13/viper"
	"go.uber.org/automaxprocs/maxprocs"

	"github.com/pdiddy/markforge/internal/secrets"
)

// version is set at build time via ldflags.
var version = "dev"

// loadedSecrets holds API keys loaded from .secrets/ at startup.
var loadedSecrets map[string]string

// secretDefault returns the secret value for key if it exists, or fallback otherwise.
func secretDefault(key, fallback string) string {
	if fallback != "" {
		return fallback
	}
	if v, ok := loadedSecrets[key]; ok {
		return v
	}
	return ""
}

// rootCmd is the base command for the markforge CLI.
var rootCmd = &cobra.Command{
	Use:   "markforge",
	Short: "Batch document-to-Markdown conversion",
	Long: `markforge converts directory trees of documents into Markdown. PDF files
go through a chunked OCR/layout engine; office documents (docx, pptx, xlsx)
go through markitdown; plain text passes through. The output tree mirrors
the input tree, one .md per source file.

Each operation is a subcommand: convert runs a batch, clean resets the
workspace, search and status query the conversion catalog, and serve starts
the local dashboard.`,
	PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
		s, err := secrets.Load(secrets.DefaultDir)
		if err != nil {
			return err
		}
		loadedSecrets = s
		if len(s) > 0 {
			keys := make([]string, 0, len(s))
			for k := range s {
				keys = append(keys, k)
			}
			sort.Strings(keys)
			fmt.Fprintf(os.Stderr, "Loaded secrets: %v\n", keys)
		}
		return nil
	},
}

func init() {
	cobra.OnInitialize(initConfig)

	rootCmd.PersistentFlags().String("config", "", "config file (default: ./markforge.yaml or ~/.config/markforge/config.yaml)")
}

func initConfig() {
	cfgFile, _ := rootCmd.PersistentFlags().GetString("config")
	if cfgFile != "" {
		viper.SetConfigFile(cfgFile)
	} else {
		viper.SetConfigName("markforge")
		viper.SetConfigType("yaml")
		viper.AddConfigPath(".")

		home, err := os.UserHomeDir()
		if err == nil {
			viper.AddConfigPath(filepath.Join(home, ".config", "markforge"))
		}
	}

	viper.SetEnvPrefix("MARKFORGE")
	viper.AutomaticEnv()

	if err := viper.ReadInConfig(); err == nil {
		fmt.Fprintln(os.Stderr, "Using config file:", viper.ConfigFileUsed())
	}
}

// configString returns the config file value for key when the flag was not
// set on the command line. Flags win over the config file.
func configString(cmd *cobra.Command, flag, key string) string {
	if !cmd.Flags().Changed(flag) && viper.IsSet(key) {
		return viper.GetString(key)
	}
	v, _ := cmd.Flags().GetString(flag)
	return v
}

// configInt is configString for integer flags.
func configInt(cmd *cobra.Command, flag, key string) int {
	if !cmd.Flags().Changed(flag) && viper.IsSet(key) {
		return viper.GetInt(key)
	}
	v, _ := cmd.Flags().GetInt(flag)
	return v
}

func main() {
	// Containerized runs get GOMAXPROCS aligned with the CPU quota.
	_, _ = maxprocs.Set(maxprocs.Logger(func(string, ...interface{}) {}))

	if err := rootCmd.Execute(); err != nil {
		os.Exit(1)
	}
}
