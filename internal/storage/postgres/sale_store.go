package postgres

import (
	"context"
	"fmt"

	"github.com/jackc/pgx/v5"

	"sales-kpi-lab/internal/domain"
	"sales-kpi-lab/internal/storage"
)

// SaleStore implements storage.SaleStore using PostgreSQL.
type SaleStore struct {
	pool *Pool
}

// NewSaleStore creates a new SaleStore.
func NewSaleStore(pool *Pool) *SaleStore {
	return &SaleStore{pool: pool}
}

// Compile-time interface check.
var _ storage.SaleStore = (*SaleStore)(nil)

const insertSaleQuery = `
	INSERT INTO sales (
		sale_id, customer_id, channel, period, sold_at, amount, currency
	) VALUES (
		$1, $2, $3, $4, $5, $6, $7
	)
`

const selectSaleColumns = `
	sale_id, customer_id, channel, period, sold_at, amount, currency
`

// Insert adds a new sale. Returns ErrDuplicateKey if sale_id exists.
func (s *SaleStore) Insert(ctx context.Context, r *domain.SaleRecord) error {
	_, err := s.pool.Exec(ctx, insertSaleQuery,
		r.SaleID, r.CustomerID, string(r.Channel), r.Period, r.SoldAt, r.Amount, r.Currency,
	)
	if err != nil {
		if isUniqueViolation(err) {
			return storage.ErrDuplicateKey
		}
		return fmt.Errorf("insert sale: %w", err)
	}
	return nil
}

// InsertBulk adds multiple sales atomically. Fails entire batch on any duplicate.
func (s *SaleStore) InsertBulk(ctx context.Context, sales []*domain.SaleRecord) error {
	if len(sales) == 0 {
		return nil
	}

	tx, err := s.pool.Begin(ctx)
	if err != nil {
		return fmt.Errorf("begin tx: %w", err)
	}
	defer tx.Rollback(ctx)

	for _, r := range sales {
		_, err := tx.Exec(ctx, insertSaleQuery,
			r.SaleID, r.CustomerID, string(r.Channel), r.Period, r.SoldAt, r.Amount, r.Currency,
		)
		if err != nil {
			if isUniqueViolation(err) {
				return storage.ErrDuplicateKey
			}
			return fmt.Errorf("insert sale in bulk: %w", err)
		}
	}

	if err := tx.Commit(ctx); err != nil {
		return fmt.Errorf("commit tx: %w", err)
	}

	return nil
}

// GetByID retrieves a sale by its ID. Returns ErrNotFound if not exists.
func (s *SaleStore) GetByID(ctx context.Context, saleID string) (*domain.SaleRecord, error) {
	query := `SELECT` + selectSaleColumns + `FROM sales WHERE sale_id = $1`

	row := s.pool.QueryRow(ctx, query, saleID)
	r, err := scanSale(row)
	if err != nil {
		if isNoRows(err) {
			return nil, storage.ErrNotFound
		}
		return nil, fmt.Errorf("get sale by id: %w", err)
	}
	return r, nil
}

// GetByCustomerID retrieves all sales for a customer, ordered by sold_at ASC.
func (s *SaleStore) GetByCustomerID(ctx context.Context, customerID string) ([]*domain.SaleRecord, error) {
	query := `SELECT` + selectSaleColumns + `
		FROM sales
		WHERE customer_id = $1
		ORDER BY sold_at ASC, sale_id ASC
	`

	rows, err := s.pool.Query(ctx, query, customerID)
	if err != nil {
		return nil, fmt.Errorf("get sales by customer id: %w", err)
	}
	defer rows.Close()

	return scanSales(rows)
}

// GetByPeriods retrieves all sales whose period is in the given set,
// ordered by sold_at ASC, sale_id ASC.
func (s *SaleStore) GetByPeriods(ctx context.Context, periods []int) ([]*domain.SaleRecord, error) {
	query := `SELECT` + selectSaleColumns + `
		FROM sales
		WHERE period = ANY($1)
		ORDER BY sold_at ASC, sale_id ASC
	`

	rows, err := s.pool.Query(ctx, query, periods)
	if err != nil {
		return nil, fmt.Errorf("get sales by periods: %w", err)
	}
	defer rows.Close()

	return scanSales(rows)
}

// scanSale scans a single row into a SaleRecord.
func scanSale(row pgx.Row) (*domain.SaleRecord, error) {
	var (
		r       domain.SaleRecord
		channel string
	)

	err := row.Scan(
		&r.SaleID, &r.CustomerID, &channel, &r.Period, &r.SoldAt, &r.Amount, &r.Currency,
	)
	if err != nil {
		return nil, err
	}

	r.Channel = domain.Channel(channel)
	return &r, nil
}

// scanSales scans multiple rows into a slice of SaleRecord.
func scanSales(rows pgx.Rows) ([]*domain.SaleRecord, error) {
	var sales []*domain.SaleRecord

	for rows.Next() {
		r, err := scanSale(rows)
		if err != nil {
			return nil, fmt.Errorf("scan sale row: %w", err)
		}
		sales = append(sales, r)
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate sale rows: %w", err)
	}

	return sales, nil
}
