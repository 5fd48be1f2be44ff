package main

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"time"

	"github.com/dgallion1/docsplit/internal/analyze"
	"github.com/dgallion1/docsplit/internal/report"
	"github.com/dgallion1/docsplit/internal/segment"
	"github.com/spf13/cobra"
)

var analyzeCatalog string

var analyzeCmd = &cobra.Command{
	Use:   "analyze",
	Short: "Cross-reference segmented topics against exam catalogs",
	Long: `Match the topics in topics.json against past exam question catalogs
and write fb_analysis_report.md: coverage per round, catalog gaps, topics
whose 출제의도 cites a round, and frequent topics never matched to a
question. Pass --catalog to load rounds from a CSV instead of the built-in
137/138 catalogs.`,
	RunE: func(cmd *cobra.Command, args []string) error {
		cfg := loadConfig()
		out := cmd.OutOrStdout()

		var topics []segment.TopicRecord
		if err := report.LoadJSON(report.TopicsPath(cfg.DataDir), &topics); err != nil {
			if errors.Is(err, os.ErrNotExist) {
				return fmt.Errorf("no topics.json under %s, run the review command first", cfg.DataDir)
			}
			return err
		}
		if len(topics) == 0 {
			return fmt.Errorf("topics.json is empty, run the review command first")
		}

		catalogs := analyze.DefaultCatalogs()
		if analyzeCatalog != "" {
			f, err := os.Open(analyzeCatalog)
			if err != nil {
				return fmt.Errorf("open catalog: %w", err)
			}
			defer f.Close()
			catalogs, err = analyze.LoadCatalogCSV(f)
			if err != nil {
				return fmt.Errorf("load catalog: %w", err)
			}
		}

		md := analyze.Build(topics, catalogs, time.Now())

		path := report.AnalysisPath(cfg.DataDir)
		if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
			return fmt.Errorf("create report dir: %w", err)
		}
		if err := os.WriteFile(path, []byte(md), 0o644); err != nil {
			return fmt.Errorf("write analysis report: %w", err)
		}

		printSummary(out, "Analysis Complete", []string{
			kvInt("Topics", len(topics)),
			kvInt("Rounds", len(catalogs)),
			kv("Report", path),
		})
		return nil
	},
}

func init() {
	analyzeCmd.Flags().StringVar(&analyzeCatalog, "catalog", "", "load exam catalogs from a CSV file")
	rootCmd.AddCommand(analyzeCmd)
}
