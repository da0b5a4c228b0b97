// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package main

import (
	"fmt"
	"log/slog"

	"github.com/spf13/cobra"
	"github.com/spf13/viper"

	"github.com/kaesluder/link-extractor/internal/linkextract"
	"github.com/kaesluder/link-extractor/internal/output"
	"github.com/kaesluder/link-extractor/internal/source"
)

var extractCmd = &cobra.Command{
	Use:   "extract [files...]",
	Short: "Extract links from markdown files",
	Long: `Extract parses each markdown file and writes one record per link:
description, url, and source_file. Directory arguments are expanded to the
markdown files they contain (use --recursive to include subdirectories).

Records are written in document order, file by file, in argument order.`,
	RunE: runExtract,
}

func init() {
	rootCmd.AddCommand(extractCmd)
}

func runExtract(cmd *cobra.Command, args []string) error {
	cfg, err := loadConfig()
	if err != nil {
		return err
	}
	opts, err := output.OptionsFrom(cfg.Output)
	if err != nil {
		return err
	}

	paths, err := source.Expand(args, cfg.Extract.Recursive)
	if err != nil {
		return err
	}

	extractor := linkextract.New(cfg.Extract)
	results, summary := linkextract.ExtractFiles(cmd.Context(), extractor, paths, cfg.Extract.Workers)
	reportFailures(results)

	if err := output.Write(cmd.OutOrStdout(), linkextract.Flatten(results), opts); err != nil {
		return err
	}

	slog.Debug("extraction finished",
		"files", summary.Total(), "failed", summary.Failed, "links", summary.Links)

	if viper.GetBool("strict") && summary.HasFailures() {
		return fmt.Errorf("%d file(s) failed", summary.Failed)
	}
	return nil
}

// reportFailures logs every file that could not be processed.
func reportFailures(results []linkextract.FileResult) {
	for _, r := range results {
		if r.Err != nil {
			slog.Warn("skipping file", "path", r.Path, "error", r.Err)
		}
	}
}
