package kpi

import (
	"context"
	"errors"
	"fmt"
	"sort"
	"time"

	"sales-kpi-lab/internal/domain"
	"sales-kpi-lab/internal/idhash"
	"sales-kpi-lab/internal/storage"
)

// Engine binds the pure top-N pipeline to stores: it loads the input
// snapshot, runs the computation, and persists the result as an
// append-only RankingRun.
type Engine struct {
	saleStore     storage.SaleStore
	customerStore storage.CustomerStore
	runStore      storage.RankingRunStore

	// MissingCustomers tracks customer_ids referenced by sales but absent
	// from the customer store (for data quality reporting).
	// Key: customer_id, Value: count of sales referencing it.
	MissingCustomers map[string]int

	now func() time.Time // Injectable clock for deterministic output
}

// NewEngine creates a new ranking engine.
func NewEngine(saleStore storage.SaleStore, customerStore storage.CustomerStore, runStore storage.RankingRunStore) *Engine {
	return &Engine{
		saleStore:        saleStore,
		customerStore:    customerStore,
		runStore:         runStore,
		MissingCustomers: make(map[string]int),
		now:              func() time.Time { return time.Now().UTC() },
	}
}

// WithClock sets a custom clock function for deterministic output.
func (e *Engine) WithClock(now func() time.Time) *Engine {
	e.now = now
	return e
}

// ComputeRun loads sales for the required periods, verifies customer
// references, and computes the consistent top-N rows.
// Returns ErrNoSales if no sales match the required periods.
//
// Sales referencing a missing customer are counted in MissingCustomers
// but stay in the computation: attribution uses the customer id on the
// sale row itself, so a missing display record must not shift totals.
func (e *Engine) ComputeRun(ctx context.Context, periods []int, threshold int) (*domain.RankingRun, error) {
	if len(periods) == 0 {
		return nil, ErrNoPeriods
	}
	if threshold < 1 {
		return nil, ErrInvalidThreshold
	}

	// Each run reports the gaps of its own snapshot.
	e.MissingCustomers = make(map[string]int)

	sales, err := e.saleStore.GetByPeriods(ctx, periods)
	if err != nil {
		return nil, fmt.Errorf("load sales: %w", err)
	}
	if len(sales) == 0 {
		return nil, ErrNoSales
	}

	if err := e.checkCustomerReferences(ctx, sales); err != nil {
		return nil, err
	}

	rows, err := ComputeConsistentTopN(sales, periods, threshold)
	if err != nil {
		return nil, err
	}

	var maxSoldAt int64
	for _, s := range sales {
		if s.SoldAt > maxSoldAt {
			maxSoldAt = s.SoldAt
		}
	}

	sorted := dedupePeriods(periods)
	sort.Ints(sorted)

	return &domain.RankingRun{
		RunID:       idhash.ComputeRunID(sorted, threshold, len(sales), maxSoldAt),
		GeneratedAt: e.now().UnixMilli(),
		Periods:     sorted,
		Threshold:   threshold,
		Rows:        rows,
	}, nil
}

// ComputeAndStore computes and persists a run.
// Returns storage.ErrDuplicateKey if the run already exists (append-only).
func (e *Engine) ComputeAndStore(ctx context.Context, periods []int, threshold int) (*domain.RankingRun, error) {
	run, err := e.ComputeRun(ctx, periods, threshold)
	if err != nil {
		return nil, err
	}

	if err := e.runStore.Insert(ctx, run); err != nil {
		return nil, err
	}

	return run, nil
}

// checkCustomerReferences records sales pointing at unknown customers.
// Lookups are cached per distinct customer id.
func (e *Engine) checkCustomerReferences(ctx context.Context, sales []*domain.SaleRecord) error {
	known := make(map[string]bool)

	for _, s := range sales {
		exists, seen := known[s.CustomerID]
		if !seen {
			_, err := e.customerStore.GetByID(ctx, s.CustomerID)
			switch {
			case err == nil:
				exists = true
			case errors.Is(err, storage.ErrNotFound):
				exists = false
			default:
				return fmt.Errorf("check customer %s: %w", s.CustomerID, err)
			}
			known[s.CustomerID] = exists
		}
		if !exists {
			e.MissingCustomers[s.CustomerID]++
		}
	}

	return nil
}

// GetMissingCustomerErrors returns data quality errors for missing customers.
// Returns slice of error messages sorted by customer_id for deterministic output.
func (e *Engine) GetMissingCustomerErrors() []string {
	if len(e.MissingCustomers) == 0 {
		return nil
	}

	keys := make([]string, 0, len(e.MissingCustomers))
	for k := range e.MissingCustomers {
		keys = append(keys, k)
	}
	sort.Strings(keys)

	errs := make([]string, len(keys))
	for i, customerID := range keys {
		errs[i] = fmt.Sprintf("missing customer %s referenced by %d sale(s)", customerID, e.MissingCustomers[customerID])
	}
	return errs
}
