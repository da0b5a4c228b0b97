// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package main

import (
	"context"
	"fmt"
	"log/slog"

	"github.com/spf13/cobra"
	"github.com/spf13/viper"

	"github.com/kaesluder/link-extractor/internal/linkextract"
	"github.com/kaesluder/link-extractor/internal/output"
	"github.com/kaesluder/link-extractor/internal/source"
	"github.com/kaesluder/link-extractor/internal/watch"
	"github.com/kaesluder/link-extractor/pkg/types"
)

var watchCmd = &cobra.Command{
	Use:   "watch [files or directories...]",
	Short: "Extract links again whenever a markdown file changes",
	Long: `Watch extracts the links of every given file once, then keeps running
and writes the links of a file again each time it is saved. Directory
arguments cover every markdown file in them, including files created later.

Stop with Ctrl-C.`,
	RunE: runWatch,
}

func init() {
	watchCmd.Flags().Duration("debounce", watch.DefaultDebounce, "quiet period before a changed file is re-extracted")
	_ = viper.BindPFlag("watch.debounce", watchCmd.Flags().Lookup("debounce"))

	rootCmd.AddCommand(watchCmd)
}

func runWatch(cmd *cobra.Command, args []string) error {
	if len(args) == 0 {
		return fmt.Errorf("provide one or more markdown files or directories to watch")
	}

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
	results, _ := linkextract.ExtractFiles(cmd.Context(), extractor, paths, cfg.Extract.Workers)
	reportFailures(results)
	if err := output.Write(cmd.OutOrStdout(), linkextract.Flatten(results), opts); err != nil {
		return err
	}

	handle := func(_ context.Context, path string) {
		links, err := extractor.ExtractFile(path)
		if err != nil {
			slog.Warn("skipping file", "path", path, "error", err)
			return
		}
		// Header rows would repeat on every change.
		changeOpts := opts
		changeOpts.Header = false
		if err := output.Write(cmd.OutOrStdout(), links, changeOpts); err != nil {
			slog.Error("writing links", "path", path, "error", err)
		}
	}

	w, err := watch.New(args, cfg.Extract.Recursive, types.WatchConfig{Debounce: cfg.Watch.Debounce}, handle)
	if err != nil {
		return err
	}

	slog.Info("watching for changes", "paths", args)
	return w.Run(cmd.Context())
}
