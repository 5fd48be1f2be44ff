package main

import (
	"fmt"
	"log/slog"
	"os"

	"github.com/dgallion1/docsplit/internal/config"
	"github.com/spf13/cobra"
)

var (
	flagDataDir   string
	flagSourceDir string
	flagVerbose   bool
)

var rootCmd = &cobra.Command{
	Use:   "docsplit",
	Short: "Split 기술사 study PDFs into per-topic records",
	Long: `docsplit segments multi-topic exam review packets into discrete topic
records, writes per-topic PDFs, and matches the extracted topics against
past exam rounds.

Sources are weekly review packets, exam transcript sets, and the 600제
workbook volumes. Reports land under the data directory as JSON; the
analysis report is markdown.`,
}

func init() {
	rootCmd.PersistentFlags().StringVar(&flagDataDir, "data-dir", "", "reports and split output directory (default $DATA_DIR or ./data)")
	rootCmd.PersistentFlags().StringVar(&flagSourceDir, "source-dir", "", "review packet directory (default $SOURCE_DIR or ./data/source)")
	rootCmd.PersistentFlags().BoolVarP(&flagVerbose, "verbose", "v", false, "debug logging")
}

// loadConfig layers flag overrides onto the environment config.
func loadConfig() config.Config {
	cfg := config.Load()
	if flagDataDir != "" {
		cfg.DataDir = flagDataDir
	}
	if flagSourceDir != "" {
		cfg.SourceDir = flagSourceDir
	}
	return cfg
}

func newLogger() *slog.Logger {
	level := slog.LevelInfo
	if flagVerbose {
		level = slog.LevelDebug
	}
	return slog.New(slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{Level: level}))
}

func main() {
	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}
