// Package mocks provides in-memory implementations of the persistence and
// messaging contracts, used in tests and as the default store when no
// database is configured.
package mocks

import (
	"context"
	"sort"
	"sync"

	"salesvc/domain/sale"
	"salesvc/domain/shared"
)

// MockSaleRepository is a thread-safe in-memory sale.Repository. It stores
// deep clones so callers can never mutate stored state through a returned
// aggregate, and enforces the same optimistic-lock semantics as the MySQL
// repository.
type MockSaleRepository struct {
	mu    sync.RWMutex
	sales map[string]*sale.Sale
}

func NewMockSaleRepository() *MockSaleRepository {
	return &MockSaleRepository{
		sales: make(map[string]*sale.Sale),
	}
}

func (r *MockSaleRepository) Create(ctx context.Context, s *sale.Sale) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	if _, exists := r.sales[s.ID()]; exists {
		return shared.NewConflictError("sale", "sale already exists: "+s.ID())
	}
	for _, existing := range r.sales {
		if existing.SaleNumber() == s.SaleNumber() {
			return shared.NewConflictError("sale", "sale number already exists: "+s.SaleNumber())
		}
	}

	s.IncrementVersionForSave()
	r.sales[s.ID()] = cloneSale(s)
	return nil
}

func (r *MockSaleRepository) FindByID(ctx context.Context, id string) (*sale.Sale, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	s, ok := r.sales[id]
	if !ok {
		return nil, sale.NewSaleNotFoundError(id)
	}
	return cloneSale(s), nil
}

func (r *MockSaleRepository) FindBySaleNumber(ctx context.Context, saleNumber string) (*sale.Sale, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	for _, s := range r.sales {
		if s.SaleNumber() == saleNumber {
			return cloneSale(s), nil
		}
	}
	return nil, sale.NewSaleNotFoundError(saleNumber)
}

func (r *MockSaleRepository) FindAll(ctx context.Context, page, size int) ([]*sale.Sale, error) {
	return r.FindFiltered(ctx, sale.Filters{}, page, size)
}

func (r *MockSaleRepository) FindFiltered(ctx context.Context, f sale.Filters, page, size int) ([]*sale.Sale, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	matched := r.matchLocked(f)

	start := (page - 1) * size
	if start >= len(matched) {
		return []*sale.Sale{}, nil
	}
	end := start + size
	if end > len(matched) {
		end = len(matched)
	}

	out := make([]*sale.Sale, 0, end-start)
	for _, s := range matched[start:end] {
		out = append(out, cloneSale(s))
	}
	return out, nil
}

func (r *MockSaleRepository) CountFiltered(ctx context.Context, f sale.Filters) (int64, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	return int64(len(r.matchLocked(f))), nil
}

// matchLocked filters and orders newest-first. Callers must hold mu.
func (r *MockSaleRepository) matchLocked(f sale.Filters) []*sale.Sale {
	matched := make([]*sale.Sale, 0, len(r.sales))
	for _, s := range r.sales {
		if f.Matches(s) {
			matched = append(matched, s)
		}
	}
	sort.Slice(matched, func(i, j int) bool {
		if matched[i].CreatedAt().Equal(matched[j].CreatedAt()) {
			return matched[i].ID() < matched[j].ID()
		}
		return matched[i].CreatedAt().After(matched[j].CreatedAt())
	})
	return matched
}

func (r *MockSaleRepository) Update(ctx context.Context, s *sale.Sale) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	existing, ok := r.sales[s.ID()]
	if !ok {
		return sale.NewSaleNotFoundError(s.ID())
	}

	if existing.Version() != s.Version() {
		return sale.NewConcurrentModificationError(s.ID())
	}

	s.IncrementVersionForSave()
	r.sales[s.ID()] = cloneSale(s)
	return nil
}

func (r *MockSaleRepository) Delete(ctx context.Context, id string) (bool, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	if _, ok := r.sales[id]; !ok {
		return false, nil
	}
	delete(r.sales, id)
	return true, nil
}

func (r *MockSaleRepository) Count(ctx context.Context) (int64, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	return int64(len(r.sales)), nil
}

// cloneSale deep-copies an aggregate through its reconstruction DTOs, the
// same path the SQL repositories use to rehydrate from rows.
func cloneSale(s *sale.Sale) *sale.Sale {
	srcItems := s.Items()
	items := make([]sale.SaleItem, len(srcItems))
	for i, item := range srcItems {
		items[i] = sale.RebuildItemFromDTO(sale.ItemReconstructionDTO{
			ID:          item.ID(),
			SaleID:      item.SaleID(),
			Product:     item.Product(),
			Quantity:    item.Quantity(),
			UnitPrice:   item.UnitPrice(),
			Discount:    item.Discount(),
			TotalAmount: item.TotalAmount(),
			Status:      item.ItemStatus(),
		})
	}

	return sale.RebuildFromDTO(sale.ReconstructionDTO{
		ID:          s.ID(),
		SaleNumber:  s.SaleNumber(),
		SaleDate:    s.SaleDate(),
		Customer:    s.Customer(),
		Branch:      s.Branch(),
		Items:       items,
		TotalAmount: s.TotalAmount(),
		Status:      s.Status(),
		Version:     s.Version(),
		CreatedAt:   s.CreatedAt(),
		UpdatedAt:   s.UpdatedAt(),
	})
}

var _ sale.Repository = (*MockSaleRepository)(nil)
