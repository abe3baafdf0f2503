package store

import (
	"context"
	"sort"
	"sync"
	"time"

	"sjsage522/productscraper/internal/scraper"

	"github.com/google/uuid"
)

// MemoryStore keeps products in process memory. It is used when no database
// is configured and in tests.
type MemoryStore struct {
	mu       sync.RWMutex
	products map[string]Product
	seq      map[string]int
	next     int
	now      func() time.Time
}

// NewMemoryStore creates an empty store
func NewMemoryStore() *MemoryStore {
	return &MemoryStore{
		products: make(map[string]Product),
		seq:      make(map[string]int),
		now:      time.Now,
	}
}

func (m *MemoryStore) List(ctx context.Context) ([]Product, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()

	products := make([]Product, 0, len(m.products))
	for _, p := range m.products {
		products = append(products, p)
	}
	sort.Slice(products, func(i, j int) bool {
		if !products[i].CreatedAt.Equal(products[j].CreatedAt) {
			return products[i].CreatedAt.After(products[j].CreatedAt)
		}
		return m.seq[products[i].ID] > m.seq[products[j].ID]
	})
	return products, nil
}

func (m *MemoryStore) Get(ctx context.Context, id string) (*Product, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()

	p, ok := m.products[id]
	if !ok {
		return nil, ErrNotFound
	}
	return &p, nil
}

func (m *MemoryStore) Create(ctx context.Context, sp scraper.ScrapedProduct) (*Product, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	p := Product{
		ID:             uuid.NewString(),
		ScrapedProduct: sp,
		CreatedAt:      m.now().UTC(),
	}
	m.products[p.ID] = p
	m.seq[p.ID] = m.next
	m.next++
	return &p, nil
}

func (m *MemoryStore) Delete(ctx context.Context, id string) (bool, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	if _, ok := m.products[id]; !ok {
		return false, nil
	}
	delete(m.products, id)
	delete(m.seq, id)
	return true, nil
}
