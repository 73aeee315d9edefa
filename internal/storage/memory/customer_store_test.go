package memory

import (
	"context"
	"errors"
	"testing"

	"sales-kpi-lab/internal/domain"
	"sales-kpi-lab/internal/storage"
)

func TestCustomerStore_InsertAndGet(t *testing.T) {
	store := NewCustomerStore()
	ctx := context.Background()

	c := &domain.Customer{CustomerID: "c1", Name: "Acme GmbH", City: "Berlin"}
	if err := store.Insert(ctx, c); err != nil {
		t.Fatalf("Insert failed: %v", err)
	}

	got, err := store.GetByID(ctx, "c1")
	if err != nil {
		t.Fatalf("GetByID failed: %v", err)
	}
	if got.Name != "Acme GmbH" {
		t.Errorf("Name mismatch: got %s", got.Name)
	}
}

func TestCustomerStore_DuplicateKey(t *testing.T) {
	store := NewCustomerStore()
	ctx := context.Background()

	c := &domain.Customer{CustomerID: "c1", Name: "Acme"}
	if err := store.Insert(ctx, c); err != nil {
		t.Fatalf("First insert failed: %v", err)
	}

	if err := store.Insert(ctx, c); !errors.Is(err, storage.ErrDuplicateKey) {
		t.Errorf("Expected ErrDuplicateKey, got %v", err)
	}
}

func TestCustomerStore_GetByChannel(t *testing.T) {
	store := NewCustomerStore()
	ctx := context.Background()

	customers := []*domain.Customer{
		{CustomerID: "c3", FirstChannel: domain.ChannelOnline},
		{CustomerID: "c1", FirstChannel: domain.ChannelOnline},
		{CustomerID: "c2", FirstChannel: domain.ChannelStore},
	}
	for _, c := range customers {
		if err := store.Insert(ctx, c); err != nil {
			t.Fatalf("Insert failed: %v", err)
		}
	}

	got, err := store.GetByChannel(ctx, domain.ChannelOnline)
	if err != nil {
		t.Fatalf("GetByChannel failed: %v", err)
	}
	if len(got) != 2 || got[0].CustomerID != "c1" || got[1].CustomerID != "c3" {
		t.Errorf("wrong ONLINE customers: %v", got)
	}

	none, err := store.GetByChannel(ctx, domain.ChannelPartner)
	if err != nil {
		t.Fatalf("GetByChannel failed: %v", err)
	}
	if len(none) != 0 {
		t.Errorf("expected no PARTNER customers, got %v", none)
	}
}

func TestCustomerStore_GetAllOrdered(t *testing.T) {
	store := NewCustomerStore()
	ctx := context.Background()

	for _, id := range []string{"c2", "c1", "c3"} {
		if err := store.Insert(ctx, &domain.Customer{CustomerID: id}); err != nil {
			t.Fatalf("Insert failed: %v", err)
		}
	}

	got, err := store.GetAll(ctx)
	if err != nil {
		t.Fatalf("GetAll failed: %v", err)
	}
	if len(got) != 3 || got[0].CustomerID != "c1" || got[2].CustomerID != "c3" {
		t.Errorf("wrong order: %v", got)
	}
}
