package feed

import (
	"context"
	"errors"
	"fmt"
	"time"

	"sales-kpi-lab/internal/observability"
	"sales-kpi-lab/internal/storage"
)

// Runner consumes a sale event source and persists records. Duplicates
// are expected under replay and counted, not treated as failures.
type Runner struct {
	source    Source
	saleStore storage.SaleStore

	// Counters for the current Run, for status reporting.
	Processed  int
	Stored     int
	Duplicates int
	Invalid    int
}

// NewRunner creates a new feed runner.
func NewRunner(source Source, saleStore storage.SaleStore) *Runner {
	return &Runner{
		source:    source,
		saleStore: saleStore,
	}
}

// Run consumes events until the context is cancelled or the source
// channel closes. Store failures other than duplicates abort the run.
func (r *Runner) Run(ctx context.Context) error {
	for {
		select {
		case <-ctx.Done():
			return ctx.Err()
		case event, ok := <-r.source.Events():
			if !ok {
				return nil
			}
			if err := r.handle(ctx, event); err != nil {
				return err
			}
		}
	}
}

// handle converts and stores one event.
func (r *Runner) handle(ctx context.Context, event SaleEvent) error {
	r.Processed++
	observability.RecordSaleProcessed()

	record, err := event.ToRecord()
	if err != nil {
		r.Invalid++
		observability.RecordEventError("validate")
		return nil
	}

	err = r.saleStore.Insert(ctx, record)
	switch {
	case err == nil:
		r.Stored++
		observability.RecordSaleStored(float64(time.Now().Unix()))
		return nil
	case errors.Is(err, storage.ErrDuplicateKey):
		r.Duplicates++
		observability.RecordSaleDuplicate()
		return nil
	default:
		return fmt.Errorf("store sale %s: %w", record.SaleID, err)
	}
}
