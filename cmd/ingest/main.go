package main

import (
	"context"
	"errors"
	"flag"
	"fmt"
	"log"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"sales-kpi-lab/internal/feed"
	"sales-kpi-lab/internal/observability"
	"sales-kpi-lab/internal/storage"
	"sales-kpi-lab/internal/storage/memory"
	"sales-kpi-lab/internal/storage/migrations"
	pgstore "sales-kpi-lab/internal/storage/postgres"
)

func main() {
	// Parse flags
	wsEndpoint := flag.String("ws-endpoint", "", "Sale feed WebSocket endpoint")
	postgresDSN := flag.String("postgres-dsn", "", "PostgreSQL connection string")
	migrate := flag.Bool("migrate", false, "Apply database migrations on startup")
	useMemory := flag.Bool("use-memory", false, "Use in-memory storage instead of PostgreSQL")
	metricsAddr := flag.String("metrics-addr", ":9090", "Prometheus metrics HTTP address (empty to disable)")
	flag.Parse()

	logger := log.New(os.Stdout, "[ingest] ", log.LstdFlags|log.Lshortfile)

	if *wsEndpoint == "" {
		logger.Fatal("--ws-endpoint is required")
	}
	if !*useMemory && *postgresDSN == "" {
		logger.Fatal("--postgres-dsn is required (or use --use-memory)")
	}

	// Start metrics server if enabled
	if *metricsAddr != "" {
		go func() {
			mux := http.NewServeMux()
			mux.Handle("/metrics", observability.Handler())
			mux.HandleFunc("/health", func(w http.ResponseWriter, r *http.Request) {
				w.WriteHeader(http.StatusOK)
				w.Write([]byte("ok"))
			})
			logger.Printf("Starting metrics server on %s", *metricsAddr)
			if err := http.ListenAndServe(*metricsAddr, mux); err != nil && err != http.ErrServerClosed {
				logger.Printf("Metrics server error: %v", err)
			}
		}()
	}

	ctx, cancel := context.WithCancel(context.Background())

	// Handle shutdown signals with graceful timeout
	sigCh := make(chan os.Signal, 1)
	signal.Notify(sigCh, syscall.SIGINT, syscall.SIGTERM)

	done := make(chan error, 1)

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

	err := runFeed(ctx, logger, *wsEndpoint, *postgresDSN, *migrate, *useMemory)

	done <- err
	cancel()

	if err != nil && !errors.Is(err, context.Canceled) {
		logger.Fatalf("Error: %v", err)
	}

	logger.Println("Shutdown complete")
}

// runFeed connects the WebSocket source to the sale store and consumes
// events until cancelled.
func runFeed(ctx context.Context, logger *log.Logger, wsEndpoint, postgresDSN string, migrate, useMemory bool) error {
	saleStore, cleanup, err := createSaleStore(ctx, postgresDSN, migrate, useMemory)
	if err != nil {
		return err
	}
	defer cleanup()

	source, err := feed.NewWSClient(ctx, wsEndpoint, nil)
	if err != nil {
		return fmt.Errorf("connect feed: %w", err)
	}
	defer source.Close()

	logger.Printf("Consuming sale events from %s", wsEndpoint)

	runner := feed.NewRunner(source, saleStore)
	err = runner.Run(ctx)

	logger.Printf("Feed stopped: processed=%d stored=%d duplicates=%d invalid=%d",
		runner.Processed, runner.Stored, runner.Duplicates, runner.Invalid)

	return err
}

// createSaleStore builds the sale store for the chosen backend.
func createSaleStore(ctx context.Context, postgresDSN string, migrate, useMemory bool) (storage.SaleStore, func(), error) {
	if useMemory {
		return memory.NewSaleStore(), func() {}, nil
	}

	pool, err := pgstore.NewPool(ctx, postgresDSN)
	if err != nil {
		return nil, nil, fmt.Errorf("connect to postgres: %w", err)
	}

	if migrate {
		if err := migrations.RunPostgresMigrations(ctx, pool); err != nil {
			pool.Close()
			return nil, nil, fmt.Errorf("run postgres migrations: %w", err)
		}
	}

	return pgstore.NewSaleStore(pool), pool.Close, nil
}
