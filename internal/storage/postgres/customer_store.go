package postgres

import (
	"context"
	"fmt"

	"github.com/jackc/pgx/v5"

	"sales-kpi-lab/internal/domain"
	"sales-kpi-lab/internal/storage"
)

// CustomerStore implements storage.CustomerStore using PostgreSQL.
type CustomerStore struct {
	pool *Pool
}

// NewCustomerStore creates a new CustomerStore.
func NewCustomerStore(pool *Pool) *CustomerStore {
	return &CustomerStore{pool: pool}
}

// Compile-time interface check.
var _ storage.CustomerStore = (*CustomerStore)(nil)

// Insert adds a new customer. Returns ErrDuplicateKey if customer_id exists.
func (s *CustomerStore) Insert(ctx context.Context, c *domain.Customer) error {
	query := `
		INSERT INTO customers (customer_id, name, city, first_channel, first_seen)
		VALUES ($1, $2, $3, $4, $5)
	`

	_, err := s.pool.Exec(ctx, query, c.CustomerID, c.Name, c.City, c.FirstChannel, c.FirstSeen)
	if err != nil {
		if isUniqueViolation(err) {
			return storage.ErrDuplicateKey
		}
		return fmt.Errorf("insert customer: %w", err)
	}
	return nil
}

// GetByID retrieves a customer by its ID. Returns ErrNotFound if not exists.
func (s *CustomerStore) GetByID(ctx context.Context, customerID string) (*domain.Customer, error) {
	query := `
		SELECT customer_id, name, city, first_channel, first_seen
		FROM customers
		WHERE customer_id = $1
	`

	var c domain.Customer
	err := s.pool.QueryRow(ctx, query, customerID).Scan(&c.CustomerID, &c.Name, &c.City, &c.FirstChannel, &c.FirstSeen)
	if err != nil {
		if isNoRows(err) {
			return nil, storage.ErrNotFound
		}
		return nil, fmt.Errorf("get customer by id: %w", err)
	}
	return &c, nil
}

// GetByChannel retrieves customers whose first sale was on the given
// channel, ordered by customer_id ASC.
func (s *CustomerStore) GetByChannel(ctx context.Context, channel domain.Channel) ([]*domain.Customer, error) {
	query := `
		SELECT customer_id, name, city, first_channel, first_seen
		FROM customers
		WHERE first_channel = $1
		ORDER BY customer_id ASC
	`

	rows, err := s.pool.Query(ctx, query, channel)
	if err != nil {
		return nil, fmt.Errorf("get customers by channel: %w", err)
	}
	defer rows.Close()

	return scanCustomers(rows)
}

// GetAll retrieves all customers, ordered by customer_id ASC.
func (s *CustomerStore) GetAll(ctx context.Context) ([]*domain.Customer, error) {
	query := `
		SELECT customer_id, name, city, first_channel, first_seen
		FROM customers
		ORDER BY customer_id ASC
	`

	rows, err := s.pool.Query(ctx, query)
	if err != nil {
		return nil, fmt.Errorf("get all customers: %w", err)
	}
	defer rows.Close()

	return scanCustomers(rows)
}

func scanCustomers(rows pgx.Rows) ([]*domain.Customer, error) {
	var customers []*domain.Customer
	for rows.Next() {
		var c domain.Customer
		if err := rows.Scan(&c.CustomerID, &c.Name, &c.City, &c.FirstChannel, &c.FirstSeen); err != nil {
			return nil, fmt.Errorf("scan customer row: %w", err)
		}
		customers = append(customers, &c)
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate customer rows: %w", err)
	}

	return customers, nil
}
