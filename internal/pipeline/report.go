package pipeline

import (
	"context"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"time"

	"sales-kpi-lab/internal/kpi"
	"sales-kpi-lab/internal/reporting"
	"sales-kpi-lab/internal/storage"
)

// Output file names written by the report pipeline.
const (
	ReportFileName = "TOP_CUSTOMERS.md"
	CSVFileName    = "top_customers.csv"
)

// ReportPipeline orchestrates run computation, persistence, and report output.
type ReportPipeline struct {
	engine    *kpi.Engine
	reportGen *reporting.Generator
	outputDir string
	clock     func() time.Time
}

// NewReportPipeline creates a new pipeline.
func NewReportPipeline(
	saleStore storage.SaleStore,
	customerStore storage.CustomerStore,
	runStore storage.RankingRunStore,
	outputDir string,
) *ReportPipeline {
	engine := kpi.NewEngine(saleStore, customerStore, runStore)
	return &ReportPipeline{
		engine:    engine,
		reportGen: reporting.NewGenerator(saleStore, customerStore, engine),
		outputDir: outputDir,
		clock:     func() time.Time { return time.Now().UTC() },
	}
}

// WithClock sets a custom clock function for deterministic output.
func (p *ReportPipeline) WithClock(clock func() time.Time) *ReportPipeline {
	p.clock = clock
	p.engine.WithClock(clock)
	p.reportGen.WithClock(clock)
	return p
}

// Run computes the ranking run for the given periods, persists it, and
// writes output files:
// - TOP_CUSTOMERS.md
// - top_customers.csv
//
// Re-running over unchanged data hits the append-only run store with the
// same run id; the duplicate is tolerated and the files are rewritten.
func (p *ReportPipeline) Run(ctx context.Context, periods []int, threshold int) error {
	if err := os.MkdirAll(p.outputDir, 0755); err != nil {
		return fmt.Errorf("create output dir: %w", err)
	}

	// 1. Compute and persist the run
	_, err := p.engine.ComputeAndStore(ctx, periods, threshold)
	if err != nil && !errors.Is(err, storage.ErrDuplicateKey) {
		return fmt.Errorf("compute and store run: %w", err)
	}

	// 2. Generate report around the same deterministic run
	report, err := p.reportGen.Generate(ctx, periods, threshold)
	if err != nil {
		return err
	}

	// 3. Write TOP_CUSTOMERS.md
	reportMD := reporting.RenderMarkdown(report)
	reportPath := filepath.Join(p.outputDir, ReportFileName)
	if err := os.WriteFile(reportPath, []byte(reportMD), 0644); err != nil {
		return fmt.Errorf("write %s: %w", ReportFileName, err)
	}

	// 4. Write top_customers.csv
	csv := reporting.RenderCSV(report.Rows)
	csvPath := filepath.Join(p.outputDir, CSVFileName)
	if err := os.WriteFile(csvPath, []byte(csv), 0644); err != nil {
		return fmt.Errorf("write %s: %w", CSVFileName, err)
	}

	return nil
}
