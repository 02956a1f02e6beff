package main

import (
	"encoding/json"
	"fmt"
	"log/slog"
	"os"

	"github.com/spf13/cobra"

	montu "github.com/katha-begin/Montu-sub000"
	"github.com/katha-begin/Montu-sub000/internal/cliconfig"
)

var (
	verbose bool
	dataDir string
	cfgPath string
)

// rootCmd represents the base command when called without any subcommands
var rootCmd = &cobra.Command{
	Use:   "montu",
	Short: "An embedded JSON document store with Mongo-style queries",
	Long: `Montu treats a directory of JSON files as a document database.
Each collection is one JSON file; writes are atomic and safe to share
between processes through flock-based advisory locks.`,
	PersistentPreRun: func(cmd *cobra.Command, args []string) {
		level := slog.LevelInfo
		if verbose {
			level = slog.LevelDebug
		}

		opts := &slog.HandlerOptions{
			Level: level,
		}
		logger := slog.New(slog.NewTextHandler(os.Stderr, opts))
		slog.SetDefault(logger)
	},
}

// Execute adds all child commands to the root command and sets flags appropriately.
// This is called by main.main().
func Execute() {
	if err := rootCmd.Execute(); err != nil {
		fmt.Println(err)
		os.Exit(1)
	}
}

func init() {
	rootCmd.PersistentFlags().BoolVarP(&verbose, "verbose", "v", false, "Enable verbose logging")
	rootCmd.PersistentFlags().StringVar(&dataDir, "dir", "", "Data directory (default: config file, then working directory)")
	rootCmd.PersistentFlags().StringVar(&cfgPath, "config", "", "Path to montu.yaml (default: discover in working directory)")
}

// openStore builds a DB handle from flags and the optional config file.
func openStore() (*montu.DB, error) {
	cfg, err := cliconfig.Load(cfgPath)
	if err != nil {
		return nil, err
	}
	if cfg.Verbose && !verbose {
		logger := slog.New(slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{Level: slog.LevelDebug}))
		slog.SetDefault(logger)
	}

	dir := dataDir
	if dir == "" {
		dir = cfg.Dir
	}
	if dir == "" {
		dir, err = os.Getwd()
		if err != nil {
			return nil, err
		}
	}

	opts := []montu.Option{montu.WithLogger(slog.Default())}
	if cfg.LockTimeout > 0 {
		opts = append(opts, montu.WithLockTimeout(cfg.LockTimeout))
	}
	if cfg.PipelineBudget > 0 {
		opts = append(opts, montu.WithPipelineBudget(cfg.PipelineBudget))
	}
	return montu.Open(dir, opts...)
}

// parseDoc decodes a JSON object argument. An empty string is an empty
// document, which as a filter matches everything.
func parseDoc(arg string) (montu.Document, error) {
	if arg == "" {
		return montu.Document{}, nil
	}
	var doc montu.Document
	if err := json.Unmarshal([]byte(arg), &doc); err != nil {
		return nil, fmt.Errorf("invalid JSON document %q: %w", arg, err)
	}
	return doc, nil
}

// printJSON writes a value to stdout as indented JSON.
func printJSON(v any) error {
	encoder := json.NewEncoder(os.Stdout)
	encoder.SetIndent("", "  ")
	return encoder.Encode(v)
}
