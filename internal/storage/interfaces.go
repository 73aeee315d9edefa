package storage

import (
	"context"

	"sales-kpi-lab/internal/domain"
)

// SaleStore provides access to sales storage.
type SaleStore interface {
	// Insert adds a new sale. Returns ErrDuplicateKey if sale_id exists.
	Insert(ctx context.Context, s *domain.SaleRecord) error

	// InsertBulk adds multiple sales atomically. Fails entire batch on any duplicate.
	InsertBulk(ctx context.Context, sales []*domain.SaleRecord) error

	// GetByID retrieves a sale by its ID. Returns ErrNotFound if not exists.
	GetByID(ctx context.Context, saleID string) (*domain.SaleRecord, error)

	// GetByCustomerID retrieves all sales for a customer, ordered by sold_at ASC.
	GetByCustomerID(ctx context.Context, customerID string) ([]*domain.SaleRecord, error)

	// GetByPeriods retrieves all sales whose period is in the given set,
	// ordered by sold_at ASC, sale_id ASC.
	GetByPeriods(ctx context.Context, periods []int) ([]*domain.SaleRecord, error)
}

// CustomerStore provides access to customers storage.
type CustomerStore interface {
	// Insert adds a new customer. Returns ErrDuplicateKey if customer_id exists.
	Insert(ctx context.Context, c *domain.Customer) error

	// GetByID retrieves a customer by its ID. Returns ErrNotFound if not exists.
	GetByID(ctx context.Context, customerID string) (*domain.Customer, error)

	// GetByChannel retrieves all customers whose first sale was on the
	// given channel, ordered by customer_id ASC.
	GetByChannel(ctx context.Context, channel domain.Channel) ([]*domain.Customer, error)

	// GetAll retrieves all customers, ordered by customer_id ASC.
	GetAll(ctx context.Context) ([]*domain.Customer, error)
}

// RankingRunStore provides access to ranking_runs storage.
type RankingRunStore interface {
	// Insert adds a new run. Returns ErrDuplicateKey if run_id exists.
	Insert(ctx context.Context, r *domain.RankingRun) error

	// GetByRunID retrieves a run by its ID. Returns ErrNotFound if not exists.
	GetByRunID(ctx context.Context, runID string) (*domain.RankingRun, error)

	// GetAll retrieves all runs, ordered by generated_at ASC, run_id ASC.
	GetAll(ctx context.Context) ([]*domain.RankingRun, error)
}
