package memory

import (
	"context"
	"sort"
	"sync"

	"sales-kpi-lab/internal/domain"
	"sales-kpi-lab/internal/storage"
)

// CustomerStore is an in-memory implementation of storage.CustomerStore.
type CustomerStore struct {
	mu   sync.RWMutex
	data map[string]*domain.Customer // keyed by customer_id
}

// NewCustomerStore creates a new in-memory customer store.
func NewCustomerStore() *CustomerStore {
	return &CustomerStore{
		data: make(map[string]*domain.Customer),
	}
}

// Insert adds a new customer. Returns ErrDuplicateKey if customer_id exists.
func (s *CustomerStore) Insert(_ context.Context, c *domain.Customer) error {
	if c == nil || c.CustomerID == "" {
		return storage.ErrInvalidInput
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	if _, exists := s.data[c.CustomerID]; exists {
		return storage.ErrDuplicateKey
	}

	cp := *c
	s.data[c.CustomerID] = &cp
	return nil
}

// GetByID retrieves a customer by its ID. Returns ErrNotFound if not exists.
func (s *CustomerStore) GetByID(_ context.Context, customerID string) (*domain.Customer, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	c, exists := s.data[customerID]
	if !exists {
		return nil, storage.ErrNotFound
	}

	cp := *c
	return &cp, nil
}

// GetByChannel retrieves customers whose first sale was on the given
// channel, ordered by customer_id ASC.
func (s *CustomerStore) GetByChannel(_ context.Context, channel domain.Channel) ([]*domain.Customer, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	var result []*domain.Customer
	for _, c := range s.data {
		if c.FirstChannel != channel {
			continue
		}
		cp := *c
		result = append(result, &cp)
	}

	sort.Slice(result, func(i, j int) bool {
		return result[i].CustomerID < result[j].CustomerID
	})

	return result, nil
}

// GetAll retrieves all customers, ordered by customer_id ASC.
func (s *CustomerStore) GetAll(_ context.Context) ([]*domain.Customer, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	result := make([]*domain.Customer, 0, len(s.data))
	for _, c := range s.data {
		cp := *c
		result = append(result, &cp)
	}

	sort.Slice(result, func(i, j int) bool {
		return result[i].CustomerID < result[j].CustomerID
	})

	return result, nil
}

var _ storage.CustomerStore = (*CustomerStore)(nil)
