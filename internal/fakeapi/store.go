package fakeapi

import (
	"context"
	"errors"
	"strconv"
	"strings"
	"sync"

	"github.com/five82/shelf/internal/catalog"
)

// ErrNotFound is returned when no product has the requested id.
var ErrNotFound = errors.New("product not found")

// MemStore keeps the catalog in memory in insertion order. Ids are assigned
// from a counter and never reused.
type MemStore struct {
	mu     sync.RWMutex
	items  []catalog.Product
	nextID int
}

// NewMemStore returns an empty store. Call Seed to load demo data.
func NewMemStore() *MemStore {
	return &MemStore{nextID: 1}
}

// Seed appends the demo products, assigning fresh ids.
func (s *MemStore) Seed() {
	for _, p := range demoProducts() {
		_, _ = s.Create(context.Background(), p)
	}
}

// Len reports how many products are stored.
func (s *MemStore) Len() int {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return len(s.items)
}

func (s *MemStore) List(ctx context.Context) ([]catalog.Product, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return catalog.CloneProducts(s.items), nil
}

// ListByCategory matches categories exactly, as the public API does.
func (s *MemStore) ListByCategory(ctx context.Context, category string) ([]catalog.Product, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	out := make([]catalog.Product, 0)
	for _, p := range s.items {
		if p.Category == category {
			out = append(out, p)
		}
	}
	return catalog.CloneProducts(out), nil
}

// Categories returns the distinct categories in first-seen order.
func (s *MemStore) Categories(ctx context.Context) ([]string, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	seen := make(map[string]struct{})
	out := make([]string, 0)
	for _, p := range s.items {
		if p.Category == "" {
			continue
		}
		if _, ok := seen[p.Category]; ok {
			continue
		}
		seen[p.Category] = struct{}{}
		out = append(out, p.Category)
	}
	return out, nil
}

func (s *MemStore) Get(ctx context.Context, id catalog.ID) (catalog.Product, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	i := s.indexOf(id)
	if i < 0 {
		return catalog.Product{}, ErrNotFound
	}
	return catalog.CloneProducts(s.items[i : i+1])[0], nil
}

// Create stores p under a new id and returns the stored copy.
func (s *MemStore) Create(ctx context.Context, p catalog.Product) (catalog.Product, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	p.ID = catalog.ID(strconv.Itoa(s.nextID))
	s.nextID++
	s.items = append(s.items, catalog.CloneProducts([]catalog.Product{p})...)
	return p, nil
}

// Update replaces the product stored under id. The id in p is ignored.
func (s *MemStore) Update(ctx context.Context, id catalog.ID, p catalog.Product) (catalog.Product, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	i := s.indexOf(id)
	if i < 0 {
		return catalog.Product{}, ErrNotFound
	}
	p.ID = s.items[i].ID
	s.items[i] = catalog.CloneProducts([]catalog.Product{p})[0]
	return p, nil
}

// Delete removes the product stored under id and returns it.
func (s *MemStore) Delete(ctx context.Context, id catalog.ID) (catalog.Product, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	i := s.indexOf(id)
	if i < 0 {
		return catalog.Product{}, ErrNotFound
	}
	removed := s.items[i]
	s.items = append(s.items[:i:i], s.items[i+1:]...)
	return removed, nil
}

func (s *MemStore) indexOf(id catalog.ID) int {
	want := strings.TrimSpace(id.String())
	for i, p := range s.items {
		if p.ID.String() == want {
			return i
		}
	}
	return -1
}

func demoProducts() []catalog.Product {
	return []catalog.Product{
		{
			Title:       "Mechanical Keyboard",
			Price:       89.99,
			Description: "Tenkeyless board with hot-swappable switches.",
			Category:    "electronics",
			Rating:      &catalog.Rating{Rate: 4.6, Count: 212},
		},
		{
			Title:       "Wireless Mouse",
			Price:       24.5,
			Description: "Low-latency 2.4GHz mouse with silent buttons.",
			Category:    "electronics",
			Rating:      &catalog.Rating{Rate: 4.1, Count: 98},
		},
		{
			Title:       "Silver Pendant",
			Price:       64,
			Description: "Sterling silver pendant on an 18in chain.",
			Category:    "jewelery",
			Rating:      &catalog.Rating{Rate: 3.9, Count: 41},
		},
		{
			Title:       "Canvas Backpack",
			Price:       109.95,
			Description: "Waxed canvas pack with a padded laptop sleeve.",
			Category:    "men's clothing",
			Rating:      &catalog.Rating{Rate: 3.9, Count: 120},
		},
		{
			Title:       "Rain Jacket",
			Price:       39.99,
			Description: "Lightweight hooded shell that packs into its pocket.",
			Category:    "women's clothing",
			Rating:      &catalog.Rating{Rate: 3.8, Count: 679},
		},
	}
}
