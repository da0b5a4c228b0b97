// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

// Package main is the entry point for the link-extractor CLI.
package main

import (
	"context"
	"log/slog"
	"os"
	"os/signal"
	"path/filepath"
	"strings"
	"syscall"

	"github.com/spf13/cobra"
	"github.com/spf13/viper"

	"github.com/kaesluder/link-extractor/internal/output"
	"github.com/kaesluder/link-extractor/internal/watch"
	"github.com/kaesluder/link-extractor/pkg/types"
)

// version is set at build time via ldflags.
var version = "dev"

// rootCmd extracts links when called with files, like the extract subcommand.
var rootCmd = &cobra.Command{
	Use:   "link-extractor [files...]",
	Short: "Extract link data from markdown files",
	Long: `link-extractor extracts link data from markdown files, producing JSON,
YAML, or character-delimited text. Output is sent to stdout; diagnostics go
to stderr.

Each link becomes one record with its description (the link text with
formatting removed), its URL, and the file it came from. Files that cannot
be read are reported and skipped.

A file named like a subcommand (index, watch, extract, version) is run as
that subcommand here. Use "link-extractor extract FILE..." to always treat
arguments as files.`,
	Args:         cobra.ArbitraryArgs,
	SilenceUsage: true,
	RunE:         runExtract,
}

func init() {
	cobra.OnInitialize(initConfig)

	pf := rootCmd.PersistentFlags()
	pf.String("config", "", "config file (default: ./link-extractor.yaml or ~/.config/link-extractor/link-extractor.yaml)")
	pf.BoolP("verbose", "v", false, "log debug diagnostics to stderr")

	// Output.
	pf.BoolP("json", "j", false, "output JSON (same as --format json)")
	pf.String("format", string(types.OutputCSV), "output format: csv, json, or yaml")
	pf.StringP("separator", "s", ",", `field separator for csv output (single character, \t for tab)`)
	pf.Bool("header", true, "write a header row in csv output")
	pf.StringSlice("fields", output.DefaultFields, "csv column order")

	// Extraction.
	pf.Bool("gfm", false, "enable GitHub-flavoured markdown, including bare URL links")
	pf.Bool("front-matter", false, "skip a leading YAML/TOML front matter block")
	pf.Int("workers", 0, "files extracted in parallel (0 = one per CPU)")
	pf.BoolP("recursive", "r", false, "descend into subdirectories of directory arguments")
	pf.Bool("strict", false, "exit with an error if any file could not be processed")

	for _, name := range []string{
		"verbose", "json", "format", "separator", "header", "fields",
		"gfm", "front-matter", "workers", "recursive", "strict",
	} {
		_ = viper.BindPFlag(name, pf.Lookup(name))
	}
}

func initConfig() {
	cfgFile, _ := rootCmd.PersistentFlags().GetString("config")
	if cfgFile != "" {
		viper.SetConfigFile(cfgFile)
	} else {
		viper.SetConfigName("link-extractor")
		viper.SetConfigType("yaml")
		viper.AddConfigPath(".")

		home, err := os.UserHomeDir()
		if err == nil {
			viper.AddConfigPath(filepath.Join(home, ".config", "link-extractor"))
		}
	}

	viper.SetEnvPrefix("LINK_EXTRACTOR")
	viper.SetEnvKeyReplacer(strings.NewReplacer(".", "_", "-", "_"))
	viper.AutomaticEnv()

	cfgErr := viper.ReadInConfig()

	level := slog.LevelInfo
	if viper.GetBool("verbose") {
		level = slog.LevelDebug
	}
	slog.SetDefault(slog.New(slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{Level: level})))

	if cfgErr == nil {
		slog.Debug("using config file", "path", viper.ConfigFileUsed())
	}
}

// loadConfig assembles the effective configuration from flags, environment,
// and config file.
func loadConfig() (types.Config, error) {
	format := viper.GetString("format")
	if viper.GetBool("json") {
		format = string(types.OutputJSON)
	}

	fields, err := output.ParseFields(strings.Join(viper.GetStringSlice("fields"), ","))
	if err != nil {
		return types.Config{}, err
	}

	cfg := types.Config{
		Output: types.OutputConfig{
			Format:    types.OutputFormat(format),
			Separator: viper.GetString("separator"),
			Header:    viper.GetBool("header"),
			Fields:    fields,
		},
		Extract: types.ExtractConfig{
			GFM:         viper.GetBool("gfm"),
			FrontMatter: viper.GetBool("front-matter"),
			Workers:     viper.GetInt("workers"),
			Recursive:   viper.GetBool("recursive"),
		},
		Index: types.IndexConfig{
			DBPath:     viper.GetString("index.db"),
			MaxResults: viper.GetInt("index.max-results"),
		},
		Watch: types.WatchConfig{
			Debounce: viper.GetDuration("watch.debounce"),
		},
	}
	if cfg.Watch.Debounce <= 0 {
		cfg.Watch.Debounce = watch.DefaultDebounce
	}
	return cfg, nil
}

func main() {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	if err := rootCmd.ExecuteContext(ctx); err != nil {
		stop()
		os.Exit(1)
	}
}
