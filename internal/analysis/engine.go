package analysis

import (
	"context"

	"golang.org/x/sync/errgroup"

	"github.com/raglens/rag-lens/internal/pkg/logger"
	"github.com/raglens/rag-lens/internal/telemetry"
)

// Config holds analysis tuning parameters.
type Config struct {
	// TrendWindow is the number of most recent hourly buckets reported.
	TrendWindow int

	// SlowQuantile and GenerationQuantile are the thresholds for the
	// slow-query and generation-bottleneck heuristics.
	SlowQuantile       float64
	GenerationQuantile float64

	// TopDocumentValues is the size of the documents_retrieved frequency
	// table.
	TopDocumentValues int
}

// DefaultConfig returns the default analysis parameters.
func DefaultConfig() Config {
	return Config{
		TrendWindow:        10,
		SlowQuantile:       0.90,
		GenerationQuantile: 0.90,
		TopDocumentValues:  5,
	}
}

// Engine computes reports over an immutable record set. All operations are
// pure functions of the loaded data: repeated calls yield identical results.
type Engine struct {
	records []telemetry.QueryRecord
	cfg     Config
	log     *logger.Logger
}

// NewEngine creates an engine over the given record set. The records are
// copied so later mutation of the caller's slice cannot affect reports.
func NewEngine(records []telemetry.QueryRecord, cfg Config, log *logger.Logger) *Engine {
	if cfg.TrendWindow < 1 {
		cfg.TrendWindow = DefaultConfig().TrendWindow
	}
	if cfg.SlowQuantile <= 0 || cfg.SlowQuantile >= 1 {
		cfg.SlowQuantile = DefaultConfig().SlowQuantile
	}
	if cfg.GenerationQuantile <= 0 || cfg.GenerationQuantile >= 1 {
		cfg.GenerationQuantile = DefaultConfig().GenerationQuantile
	}
	if cfg.TopDocumentValues < 1 {
		cfg.TopDocumentValues = DefaultConfig().TopDocumentValues
	}
	if log == nil {
		log = logger.Default()
	}

	owned := make([]telemetry.QueryRecord, len(records))
	copy(owned, records)

	return &Engine{
		records: owned,
		cfg:     cfg,
		log:     log.WithComponent("analysis"),
	}
}

// Count returns the number of loaded records.
func (e *Engine) Count() int {
	return len(e.records)
}

// Report computes the summary, trend and optimization reports over the same
// dataset. The three sections are independent and the shared input is
// read-only, so they run concurrently.
func (e *Engine) Report(ctx context.Context) (*FullReport, error) {
	report := &FullReport{}

	g, _ := errgroup.WithContext(ctx)
	g.Go(func() error {
		summary, err := e.Summary()
		if err != nil {
			return err
		}
		report.Summary = summary
		return nil
	})
	g.Go(func() error {
		report.Trends = e.Trends()
		return nil
	})
	g.Go(func() error {
		report.Findings = e.Optimize()
		return nil
	})

	if err := g.Wait(); err != nil {
		return nil, err
	}
	return report, nil
}
