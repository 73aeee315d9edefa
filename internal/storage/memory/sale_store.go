package memory

import (
	"context"
	"sort"
	"sync"

	"sales-kpi-lab/internal/domain"
	"sales-kpi-lab/internal/storage"
)

// SaleStore is an in-memory implementation of storage.SaleStore.
type SaleStore struct {
	mu   sync.RWMutex
	data map[string]*domain.SaleRecord // keyed by sale_id
}

// NewSaleStore creates a new in-memory sale store.
func NewSaleStore() *SaleStore {
	return &SaleStore{
		data: make(map[string]*domain.SaleRecord),
	}
}

// Insert adds a new sale. Returns ErrDuplicateKey if sale_id exists.
func (s *SaleStore) Insert(_ context.Context, r *domain.SaleRecord) error {
	if r == nil || r.SaleID == "" || !r.Valid() {
		return storage.ErrInvalidInput
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	if _, exists := s.data[r.SaleID]; exists {
		return storage.ErrDuplicateKey
	}

	cp := *r
	s.data[r.SaleID] = &cp
	return nil
}

// InsertBulk adds multiple sales atomically. Fails entire batch on any duplicate.
func (s *SaleStore) InsertBulk(_ context.Context, sales []*domain.SaleRecord) error {
	if len(sales) == 0 {
		return nil
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	// Track keys in this batch to detect intra-batch duplicates
	batchKeys := make(map[string]struct{}, len(sales))

	// First pass: check for duplicates (existing + intra-batch)
	for _, r := range sales {
		if r == nil || r.SaleID == "" || !r.Valid() {
			return storage.ErrInvalidInput
		}

		if _, exists := s.data[r.SaleID]; exists {
			return storage.ErrDuplicateKey
		}
		if _, exists := batchKeys[r.SaleID]; exists {
			return storage.ErrDuplicateKey
		}
		batchKeys[r.SaleID] = struct{}{}
	}

	// Second pass: insert all
	for _, r := range sales {
		cp := *r
		s.data[r.SaleID] = &cp
	}

	return nil
}

// GetByID retrieves a sale by its ID. Returns ErrNotFound if not exists.
func (s *SaleStore) GetByID(_ context.Context, saleID string) (*domain.SaleRecord, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	r, exists := s.data[saleID]
	if !exists {
		return nil, storage.ErrNotFound
	}

	cp := *r
	return &cp, nil
}

// GetByCustomerID retrieves all sales for a customer, ordered by sold_at ASC.
func (s *SaleStore) GetByCustomerID(_ context.Context, customerID string) ([]*domain.SaleRecord, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	var result []*domain.SaleRecord
	for _, r := range s.data {
		if r.CustomerID == customerID {
			cp := *r
			result = append(result, &cp)
		}
	}

	sortSales(result)
	return result, nil
}

// GetByPeriods retrieves all sales whose period is in the given set,
// ordered by sold_at ASC, sale_id ASC.
func (s *SaleStore) GetByPeriods(_ context.Context, periods []int) ([]*domain.SaleRecord, error) {
	wanted := make(map[int]struct{}, len(periods))
	for _, p := range periods {
		wanted[p] = struct{}{}
	}

	s.mu.RLock()
	defer s.mu.RUnlock()

	var result []*domain.SaleRecord
	for _, r := range s.data {
		if _, ok := wanted[r.Period]; ok {
			cp := *r
			result = append(result, &cp)
		}
	}

	sortSales(result)
	return result, nil
}

func sortSales(sales []*domain.SaleRecord) {
	sort.Slice(sales, func(i, j int) bool {
		if sales[i].SoldAt != sales[j].SoldAt {
			return sales[i].SoldAt < sales[j].SoldAt
		}
		return sales[i].SaleID < sales[j].SaleID
	})
}

var _ storage.SaleStore = (*SaleStore)(nil)
