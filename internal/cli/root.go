// Package cli implements the hippo CLI commands.
package cli

import (
	"fmt"
	"log/slog"
	"os"

	"github.com/spf13/cobra"

	"github.com/rcliao/hippo/internal/config"
	"github.com/rcliao/hippo/internal/llm"
	"github.com/rcliao/hippo/internal/logging"
	"github.com/rcliao/hippo/internal/store"
)

var (
	cfgPath      string
	dbPath       string
	providerFlag string
	modelFlag    string
	verboseFlag  bool
)

// RootCmd is the top-level command.
var RootCmd = &cobra.Command{
	Use:   "hippo",
	Short: "Local LLM-powered memory management",
	Long:  "Hippo ingests session logs, stores memories in SQLite, scores them for retrieval, and merges duplicates using a local LLM as judge.",
}

func init() {
	RootCmd.PersistentFlags().StringVar(&cfgPath, "config", "", "Config file (default: ~/.hippo/config.yaml)")
	RootCmd.PersistentFlags().StringVarP(&dbPath, "db", "d", "", "Database path (default: $HIPPO_DB or ~/.hippo/memory.db)")
	RootCmd.PersistentFlags().StringVar(&providerFlag, "provider", "", "Inference provider: ollama, openai, anthropic")
	RootCmd.PersistentFlags().StringVarP(&modelFlag, "model", "m", "", "Model name for inference")
	RootCmd.PersistentFlags().BoolVarP(&verboseFlag, "verbose", "v", false, "Debug logging")
}

// loadConfig resolves the effective configuration: file and env via
// config.Load, then CLI flags on top.
func loadConfig() config.Config {
	cfg, err := config.Load(cfgPath)
	if err != nil {
		exitErr("load config", err)
	}
	if dbPath != "" {
		cfg.DBPath = dbPath
	}
	if providerFlag != "" {
		cfg.Provider = providerFlag
	}
	if modelFlag != "" {
		cfg.Model = modelFlag
	}
	return cfg
}

func openStore(cfg config.Config) *store.SQLiteStore {
	s, err := store.NewSQLiteStore(cfg.DBPath)
	if err != nil {
		exitErr("open store", err)
	}
	return s
}

// newCompleter builds the inference provider. Missing capability is fatal
// for the command that needs it.
func newCompleter(cfg config.Config) llm.Completer {
	c, err := llm.New(cfg.Provider, cfg.Model, cfg.APIKey, cfg.BaseURL)
	if err != nil {
		exitErr("inference unavailable", err)
	}
	return c
}

func newLogger() logging.Logger {
	level := slog.LevelInfo
	if verboseFlag {
		level = slog.LevelDebug
	}
	return logging.New(os.Stderr, level)
}

func exitErr(msg string, err error) {
	fmt.Fprintf(os.Stderr, "error: %s: %v\n", msg, err)
	os.Exit(1)
}
