// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package main

import (
	"fmt"
	"strings"

	"github.com/spf13/cobra"
	"github.com/spf13/viper"

	"github.com/kaesluder/link-extractor/internal/linkextract"
	"github.com/kaesluder/link-extractor/internal/linkindex"
	"github.com/kaesluder/link-extractor/internal/output"
	"github.com/kaesluder/link-extractor/internal/source"
)

var indexCmd = &cobra.Command{
	Use:   "index",
	Short: "Manage the link index (store, query, export)",
	Long: `Index keeps extracted links in a local SQLite database so they can be
searched across many documents. Use subcommands to index files, query them,
or export the stored links.`,
}

// --- store subcommand ---

var indexStoreCmd = &cobra.Command{
	Use:   "store [files...]",
	Short: "Extract links from markdown files into the index",
	Long: `Store extracts the links of each file and saves them in the index.
Files unchanged since the last run are skipped; changed files have their
links replaced; indexed files that no longer exist are removed.`,
	RunE: runIndexStore,
}

func runIndexStore(cmd *cobra.Command, args []string) error {
	cfg, err := loadConfig()
	if err != nil {
		return err
	}
	paths, err := source.Expand(args, cfg.Extract.Recursive)
	if err != nil {
		return err
	}
	if len(paths) == 0 {
		return fmt.Errorf("provide one or more markdown files or directories")
	}

	store, err := linkindex.NewStore(cfg.Index)
	if err != nil {
		return err
	}
	defer store.Close()

	summary, err := store.IndexFiles(cmd.Context(), linkextract.New(cfg.Extract), paths, cmd.ErrOrStderr())
	if err != nil {
		return err
	}
	if summary.Failed > 0 && viper.GetBool("strict") {
		return fmt.Errorf("%d file(s) failed indexing", summary.Failed)
	}
	return nil
}

// --- query subcommand ---

var indexQueryCmd = &cobra.Command{
	Use:   "query [terms...]",
	Short: "Search the index",
	Long: `Query returns indexed links whose description or URL contains every
search term (case-insensitive), optionally filtered by URL substring or
source file. Results are ordered by source file and document position.`,
	RunE: runIndexQuery,
}

func runIndexQuery(cmd *cobra.Command, args []string) error {
	cfg, err := loadConfig()
	if err != nil {
		return err
	}
	opts, err := output.OptionsFrom(cfg.Output)
	if err != nil {
		return err
	}

	q := queryOptsFromFlags(cmd, args)
	if q.IsEmpty() {
		return fmt.Errorf("query or filter required: provide search terms, --url, or --source")
	}

	store, err := linkindex.NewStore(cfg.Index)
	if err != nil {
		return err
	}
	defer store.Close()

	links, err := store.Retrieve(cmd.Context(), q)
	if err != nil {
		return err
	}
	return output.Write(cmd.OutOrStdout(), links, opts)
}

// --- export subcommand ---

var indexExportCmd = &cobra.Command{
	Use:   "export",
	Short: "Export indexed links",
	Long: `Export writes every indexed link (or the subset matching --url and
--source) in the configured output format, to stdout or to --out.`,
	RunE: runIndexExport,
}

func runIndexExport(cmd *cobra.Command, args []string) error {
	cfg, err := loadConfig()
	if err != nil {
		return err
	}
	opts, err := output.OptionsFrom(cfg.Output)
	if err != nil {
		return err
	}

	store, err := linkindex.NewStore(cfg.Index)
	if err != nil {
		return err
	}
	defer store.Close()

	q := queryOptsFromFlags(cmd, args)
	outPath, _ := cmd.Flags().GetString("out")
	if outPath == "" {
		return store.Export(cmd.Context(), cmd.OutOrStdout(), q, opts)
	}
	if err := store.ExportFile(cmd.Context(), outPath, q, opts); err != nil {
		return err
	}
	fmt.Fprintf(cmd.ErrOrStderr(), "Exported to %s\n", outPath)
	return nil
}

// --- shared helpers ---

func queryOptsFromFlags(cmd *cobra.Command, args []string) linkindex.QueryOptions {
	url, _ := cmd.Flags().GetString("url")
	sourceFile, _ := cmd.Flags().GetString("source")
	limit, _ := cmd.Flags().GetInt("limit")

	return linkindex.QueryOptions{
		Query:      strings.Join(args, " "),
		URL:        url,
		SourceFile: sourceFile,
		MaxResults: limit,
	}
}

func init() {
	// Shared flags on the parent command, inherited by subcommands.
	indexCmd.PersistentFlags().String("db", linkindex.DefaultDBPath, "index database file")
	indexCmd.PersistentFlags().Int("max-results", 20, "default maximum number of query results")
	_ = viper.BindPFlag("index.db", indexCmd.PersistentFlags().Lookup("db"))
	_ = viper.BindPFlag("index.max-results", indexCmd.PersistentFlags().Lookup("max-results"))

	// Query flags.
	indexQueryCmd.Flags().String("url", "", "filter by URL substring")
	indexQueryCmd.Flags().String("source", "", "filter by source file")
	indexQueryCmd.Flags().Int("limit", 0, "maximum results (0 = use --max-results)")

	// Export flags.
	indexExportCmd.Flags().String("url", "", "filter by URL substring")
	indexExportCmd.Flags().String("source", "", "filter by source file")
	indexExportCmd.Flags().String("out", "", "write to this file instead of stdout")

	// Wire subcommands.
	indexCmd.AddCommand(indexStoreCmd)
	indexCmd.AddCommand(indexQueryCmd)
	indexCmd.AddCommand(indexExportCmd)

	rootCmd.AddCommand(indexCmd)
}
