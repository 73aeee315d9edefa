// Package main provides the unified service that runs all components:
// - Ingestion (continuous): WebSocket sale feed
// - Reporting (scheduled): ranking runs, TOP_CUSTOMERS.md, top_customers.csv
package main

import (
	"context"
	"encoding/json"
	"errors"
	"flag"
	"fmt"
	"log"
	"net/http"
	"os"
	"os/signal"
	"strconv"
	"strings"
	"sync"
	"syscall"
	"time"

	"sales-kpi-lab/internal/feed"
	"sales-kpi-lab/internal/observability"
	"sales-kpi-lab/internal/pipeline"
	"sales-kpi-lab/internal/storage"
	chstore "sales-kpi-lab/internal/storage/clickhouse"
	"sales-kpi-lab/internal/storage/memory"
	"sales-kpi-lab/internal/storage/migrations"
	pgstore "sales-kpi-lab/internal/storage/postgres"
)

// Server holds all components of the unified service.
type Server struct {
	// Configuration
	wsEndpoint     string
	outputDir      string
	reportInterval time.Duration
	periods        []int
	threshold      int

	// Stores
	saleStore     storage.SaleStore
	customerStore storage.CustomerStore
	runStore      storage.RankingRunStore

	logger *log.Logger

	// State
	mu            sync.Mutex
	feedStarted   time.Time
	lastReportRun time.Time
	reportRunning bool
	reportRuns    int
}

func main() {
	// Load .env file if exists
	loadEnvFile()

	// Parse flags (env vars as defaults)
	wsEndpoint := flag.String("ws-endpoint", os.Getenv("SALES_WS_ENDPOINT"), "Sale feed WebSocket endpoint")
	postgresDSN := flag.String("postgres-dsn", os.Getenv("POSTGRES_DSN"), "PostgreSQL connection string")
	clickhouseDSN := flag.String("clickhouse-dsn", os.Getenv("CLICKHOUSE_DSN"), "ClickHouse connection string")
	outputDir := flag.String("output-dir", "output", "Output directory for reports")
	reportInterval := flag.Duration("report-interval", 6*time.Hour, "Report generation interval")
	periodsFlag := flag.String("periods", "", "Comma-separated list of periods the customer must rank in")
	topN := flag.Int("top", 3, "Rank threshold: customers must place within the top N in every period")
	useMemory := flag.Bool("use-memory", false, "Use in-memory storage instead of databases")
	metricsAddr := flag.String("metrics-addr", ":9090", "HTTP address for metrics/health/status")
	flag.Parse()

	logger := log.New(os.Stdout, "[server] ", log.LstdFlags|log.Lshortfile)

	if *wsEndpoint == "" {
		logger.Fatal("--ws-endpoint is required")
	}
	if !*useMemory && (*postgresDSN == "" || *clickhouseDSN == "") {
		logger.Fatal("--postgres-dsn and --clickhouse-dsn are required (use --use-memory for in-memory storage)")
	}

	periods, err := parsePeriods(*periodsFlag)
	if err != nil {
		logger.Fatalf("Invalid --periods: %v", err)
	}

	ctx, cancel := context.WithCancel(context.Background())

	saleStore, customerStore, runStore, cleanup, err := createStores(ctx, *postgresDSN, *clickhouseDSN, *useMemory)
	if err != nil {
		logger.Fatalf("Failed to create stores: %v", err)
	}
	defer cleanup()

	server := &Server{
		wsEndpoint:     *wsEndpoint,
		outputDir:      *outputDir,
		reportInterval: *reportInterval,
		periods:        periods,
		threshold:      *topN,
		saleStore:      saleStore,
		customerStore:  customerStore,
		runStore:       runStore,
		logger:         logger,
	}

	done := make(chan error, 1)

	// Handle shutdown signals
	sigCh := make(chan os.Signal, 1)
	signal.Notify(sigCh, syscall.SIGINT, syscall.SIGTERM)

	go func() {
		sig := <-sigCh
		logger.Printf("Received signal %v, initiating graceful shutdown...", sig)
		cancel()

		select {
		case sig := <-sigCh:
			logger.Printf("Received second signal %v, forcing immediate shutdown", sig)
			os.Exit(1)
		case <-time.After(30 * time.Second):
			logger.Println("Graceful shutdown timed out after 30s, forcing exit")
			os.Exit(1)
		case <-done:
			// Normal shutdown completed
		}
	}()

	// Start HTTP server
	go server.startHTTPServer(*metricsAddr)

	err = server.Run(ctx)
	done <- err
	cancel()

	if err != nil && !errors.Is(err, context.Canceled) {
		logger.Fatalf("Server error: %v", err)
	}

	logger.Println("Shutdown complete")
}

// parsePeriods parses the -periods flag into a sorted-at-use period list.
func parsePeriods(flagValue string) ([]int, error) {
	if flagValue == "" {
		return nil, fmt.Errorf("--periods is required (e.g., --periods 1998,1999,2001)")
	}

	parts := strings.Split(flagValue, ",")
	periods := make([]int, 0, len(parts))
	for _, part := range parts {
		p, err := strconv.Atoi(strings.TrimSpace(part))
		if err != nil {
			return nil, fmt.Errorf("invalid period %q", part)
		}
		periods = append(periods, p)
	}
	return periods, nil
}

// createStores creates all required stores, applying migrations in DB mode.
func createStores(ctx context.Context, postgresDSN, clickhouseDSN string, useMemory bool) (
	storage.SaleStore,
	storage.CustomerStore,
	storage.RankingRunStore,
	func(),
	error,
) {
	if useMemory {
		return memory.NewSaleStore(), memory.NewCustomerStore(), memory.NewRankingRunStore(), func() {}, nil
	}

	pool, err := pgstore.NewPool(ctx, postgresDSN)
	if err != nil {
		return nil, nil, nil, nil, fmt.Errorf("connect to postgres: %w", err)
	}

	if err := migrations.RunPostgresMigrations(ctx, pool); err != nil {
		pool.Close()
		return nil, nil, nil, nil, fmt.Errorf("run postgres migrations: %w", err)
	}

	chConn, err := migrations.RunClickhouseMigrations(ctx, clickhouseDSN)
	if err != nil {
		pool.Close()
		return nil, nil, nil, nil, fmt.Errorf("run clickhouse migrations: %w", err)
	}

	cleanup := func() {
		chConn.Close()
		pool.Close()
	}

	return pgstore.NewSaleStore(pool), pgstore.NewCustomerStore(pool), chstore.NewRankingRunStore(chConn), cleanup, nil
}

// Run starts the unified server with all components.
func (s *Server) Run(ctx context.Context) error {
	s.logger.Println("Starting unified server...")

	errCh := make(chan error, 2)

	// Start feed ingestion in background
	go func() {
		err := s.runFeed(ctx)
		if err != nil && !errors.Is(err, context.Canceled) {
			errCh <- fmt.Errorf("feed: %w", err)
		}
	}()

	// Start report scheduler in background
	go func() {
		err := s.runReportScheduler(ctx)
		if err != nil && !errors.Is(err, context.Canceled) {
			errCh <- fmt.Errorf("report scheduler: %w", err)
		}
	}()

	select {
	case <-ctx.Done():
		return ctx.Err()
	case err := <-errCh:
		return err
	}
}

// runFeed runs continuous sale ingestion.
func (s *Server) runFeed(ctx context.Context) error {
	s.logger.Println("Starting feed ingestion...")

	source, err := feed.NewWSClient(ctx, s.wsEndpoint, nil)
	if err != nil {
		return fmt.Errorf("connect feed: %w", err)
	}
	defer source.Close()

	s.mu.Lock()
	s.feedStarted = time.Now()
	s.mu.Unlock()

	runner := feed.NewRunner(source, s.saleStore)
	s.logger.Println("Feed ingestion started")
	return runner.Run(ctx)
}

// runReportScheduler runs report generation on schedule.
func (s *Server) runReportScheduler(ctx context.Context) error {
	s.logger.Printf("Starting report scheduler (interval: %v)...", s.reportInterval)

	// Run immediately on start
	s.runReport(ctx)

	ticker := time.NewTicker(s.reportInterval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return ctx.Err()
		case <-ticker.C:
			s.runReport(ctx)
		}
	}
}

// runReport computes a run and writes report files.
func (s *Server) runReport(ctx context.Context) {
	s.mu.Lock()
	if s.reportRunning {
		s.mu.Unlock()
		s.logger.Println("Report generation already running, skipping...")
		return
	}
	s.reportRunning = true
	s.mu.Unlock()

	defer func() {
		s.mu.Lock()
		s.reportRunning = false
		s.lastReportRun = time.Now()
		s.reportRuns++
		s.mu.Unlock()
	}()

	s.logger.Println("Generating report...")
	start := time.Now()

	p := pipeline.NewReportPipeline(s.saleStore, s.customerStore, s.runStore, s.outputDir)
	if err := p.Run(ctx, s.periods, s.threshold); err != nil {
		s.logger.Printf("Report error: %v", err)
		observability.RecordRun("error", time.Since(start).Seconds())
		return
	}

	s.logger.Printf("Report generated in %v to %s/", time.Since(start), s.outputDir)
	observability.RecordRun("success", time.Since(start).Seconds())
	observability.RecordReportGenerated()
	observability.DefaultMetrics.LastSuccessfulRun.Set(float64(time.Now().Unix()))
}

// startHTTPServer starts the HTTP server for health/metrics/status.
func (s *Server) startHTTPServer(addr string) {
	mux := http.NewServeMux()

	// Health check
	mux.HandleFunc("/healthz", func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusOK)
		w.Write([]byte("ok"))
	})

	// Prometheus metrics
	mux.Handle("/metrics", observability.Handler())

	// Status endpoint
	mux.HandleFunc("/status", s.handleStatus)

	s.logger.Printf("Starting HTTP server on %s", addr)
	if err := http.ListenAndServe(addr, mux); err != nil && err != http.ErrServerClosed {
		s.logger.Printf("HTTP server error: %v", err)
	}
}

// StatusResponse is the JSON response for /status endpoint.
type StatusResponse struct {
	Status        string    `json:"status"`
	Uptime        string    `json:"uptime"`
	FeedStarted   time.Time `json:"feed_started"`
	LastReportRun time.Time `json:"last_report_run,omitempty"`
	ReportRuns    int       `json:"report_runs"`
	ReportRunning bool      `json:"report_running"`
}

// handleStatus returns server status as JSON.
func (s *Server) handleStatus(w http.ResponseWriter, r *http.Request) {
	s.mu.Lock()
	defer s.mu.Unlock()

	resp := StatusResponse{
		Status:        "running",
		Uptime:        time.Since(s.feedStarted).String(),
		FeedStarted:   s.feedStarted,
		LastReportRun: s.lastReportRun,
		ReportRuns:    s.reportRuns,
		ReportRunning: s.reportRunning,
	}

	w.Header().Set("Content-Type", "application/json")
	json.NewEncoder(w).Encode(resp)
}

// loadEnvFile loads environment variables from .env file if it exists.
func loadEnvFile() {
	data, err := os.ReadFile(".env")
	if err != nil {
		return // File doesn't exist, use system env vars
	}

	for _, line := range strings.Split(string(data), "\n") {
		line = strings.TrimSpace(line)
		if line == "" || strings.HasPrefix(line, "#") {
			continue
		}

		parts := strings.SplitN(line, "=", 2)
		if len(parts) != 2 {
			continue
		}

		key := strings.TrimSpace(parts[0])
		value := strings.TrimSpace(parts[1])

		// Don't override existing env vars
		if os.Getenv(key) == "" {
			os.Setenv(key, value)
		}
	}
}
