// Package main provides the rag-lens binary: batch analysis of RAG query
// telemetry, as a one-shot CLI or a small report server.
package main

import (
	"context"
	"encoding/json"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"github.com/spf13/cobra"

	"github.com/raglens/rag-lens/internal/analysis"
	"github.com/raglens/rag-lens/internal/config"
	"github.com/raglens/rag-lens/internal/pkg/logger"
	"github.com/raglens/rag-lens/internal/server"
	"github.com/raglens/rag-lens/internal/telemetry"
)

var (
	version = "dev"
	commit  = "none"
	date    = "unknown"
)

func main() {
	rootCmd := &cobra.Command{
		Use:   "rag-lens",
		Short: "rag-lens - batch analysis for RAG query telemetry",
		Long: `rag-lens loads a closed batch of RAG query telemetry records and
computes usage summaries, hourly trends, and optimization advice.

Run 'rag-lens analyze' for a one-shot report on stdout.
Run 'rag-lens serve' to expose the reports over HTTP.`,
		SilenceUsage: true,
	}

	rootCmd.PersistentFlags().StringP("config", "c", "", "config file path")
	rootCmd.PersistentFlags().BoolP("verbose", "v", false, "verbose logging")

	rootCmd.AddCommand(
		analyzeCmd(),
		serveCmd(),
		versionCmd(),
	)

	if err := rootCmd.Execute(); err != nil {
		os.Exit(1)
	}
}

func analyzeCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "analyze",
		Short: "Load a telemetry batch and print reports as JSON",
		Long: `Load the configured telemetry source and print the selected reports
to stdout as JSON. With no report flags, all three are printed.`,
		RunE: runAnalyze,
	}

	cmd.Flags().StringP("log", "l", "", "query log path (overrides config, implies file source)")
	cmd.Flags().Bool("summary", false, "print the summary report")
	cmd.Flags().Bool("trends", false, "print the hourly trend report")
	cmd.Flags().Bool("optimize", false, "print the optimization findings")

	return cmd
}

func runAnalyze(cmd *cobra.Command, _ []string) error {
	cfg, log, err := loadConfig(cmd)
	if err != nil {
		return err
	}

	if logPath, _ := cmd.Flags().GetString("log"); logPath != "" {
		cfg.Source.Type = "file"
		cfg.Source.Path = logPath
	}

	ctx := cmd.Context()

	engine, err := loadEngine(ctx, cfg, log)
	if err != nil {
		return err
	}

	wantSummary, _ := cmd.Flags().GetBool("summary")
	wantTrends, _ := cmd.Flags().GetBool("trends")
	wantOptimize, _ := cmd.Flags().GetBool("optimize")
	if !wantSummary && !wantTrends && !wantOptimize {
		wantSummary, wantTrends, wantOptimize = true, true, true
	}

	enc := json.NewEncoder(os.Stdout)
	enc.SetIndent("", "  ")

	if wantSummary && wantTrends && wantOptimize {
		report, err := engine.Report(ctx)
		if err != nil {
			return err
		}
		return enc.Encode(report)
	}

	out := map[string]any{}
	if wantSummary {
		summary, err := engine.Summary()
		if err != nil {
			return err
		}
		out["summary"] = summary
	}
	if wantTrends {
		out["trends"] = engine.Trends()
	}
	if wantOptimize {
		findings := engine.Optimize()
		if findings == nil {
			findings = []analysis.Finding{}
		}
		out["findings"] = findings
	}
	return enc.Encode(out)
}

func serveCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "serve",
		Short: "Load a telemetry batch and serve reports over HTTP",
		Long: `Load the configured telemetry source once, then expose the reports
at /v1/summary, /v1/trends, /v1/optimize, /v1/report and /v1/health.
The dataset is never reloaded while the server runs.`,
		RunE: runServe,
	}

	cmd.Flags().IntP("port", "p", 0, "HTTP server port (overrides config)")
	cmd.Flags().String("host", "", "HTTP server host (overrides config)")

	return cmd
}

func runServe(cmd *cobra.Command, _ []string) error {
	cfg, log, err := loadConfig(cmd)
	if err != nil {
		return err
	}

	if port, _ := cmd.Flags().GetInt("port"); port != 0 {
		cfg.Port = port
	}
	if host, _ := cmd.Flags().GetString("host"); host != "" {
		cfg.Host = host
	}

	engine, err := loadEngine(cmd.Context(), cfg, log)
	if err != nil {
		return err
	}

	srvCfg := server.DefaultConfig()
	srvCfg.Host = cfg.Host
	srvCfg.Port = cfg.Port
	srvCfg.Version = version
	srvCfg.RateLimit = cfg.Security.RateLimit

	srv := server.New(srvCfg, engine, log)

	errCh := make(chan error, 1)
	go func() {
		errCh <- srv.Start()
	}()

	sigCh := make(chan os.Signal, 1)
	signal.Notify(sigCh, os.Interrupt, syscall.SIGTERM)

	select {
	case err := <-errCh:
		return err
	case <-sigCh:
		log.Info("Shutdown signal received")
		return srv.Stop(context.Background())
	}
}

func versionCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "version",
		Short: "Print version information",
		Run: func(cmd *cobra.Command, args []string) {
			fmt.Printf("rag-lens %s\n", version)
			fmt.Printf("  commit: %s\n", commit)
			fmt.Printf("  built:  %s\n", date)
		},
	}
}

// loadConfig builds the application config and logger from the persistent
// flags.
func loadConfig(cmd *cobra.Command) (*config.Config, *logger.Logger, error) {
	configPath, _ := cmd.Flags().GetString("config")
	verbose, _ := cmd.Flags().GetBool("verbose")

	cfg, err := config.Load(configPath)
	if err != nil {
		return nil, nil, fmt.Errorf("failed to load config: %w", err)
	}

	level := cfg.Log.Level
	if verbose {
		level = "debug"
	}
	log := logger.New(level, cfg.Log.Format)

	return cfg, log, nil
}

// loadEngine reads the full batch from the configured source and builds the
// analysis engine over it.
func loadEngine(ctx context.Context, cfg *config.Config, log *logger.Logger) (*analysis.Engine, error) {
	src, err := telemetry.NewSource(cfg.Source, log)
	if err != nil {
		return nil, err
	}
	defer func() { _ = src.Close() }()

	records, err := src.Load(ctx)
	if err != nil {
		return nil, err
	}
	log.Info("Loaded telemetry batch", "source", cfg.Source.Type, "records", len(records))

	return analysis.NewEngine(records, analysis.Config{
		TrendWindow:        cfg.Analysis.TrendWindow,
		SlowQuantile:       cfg.Analysis.SlowQuantile,
		GenerationQuantile: cfg.Analysis.GenerationQuantile,
		TopDocumentValues:  cfg.Analysis.TopDocumentValues,
	}, log), nil
}
