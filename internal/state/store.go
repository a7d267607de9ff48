package state

import (
	"context"
	"fmt"
	"strings"
	"sync"
	"time"

	"go.uber.org/zap"

	"github.com/five82/shelf/internal/catalog"
)

// Snapshot represents the catalog state available to the UI.
type Snapshot struct {
	Products            []catalog.Product
	Loading             bool
	Category            string // filter of the last applied list; empty means all
	LastUpdated         time.Time
	LastError           error
	ConsecutiveFailures int    // consecutive failed list fetches
	Version             uint64 // bumped on every state change
}

// IsOffline returns true when list fetches have failed more than once in a row.
func (s Snapshot) IsOffline() bool {
	return s.ConsecutiveFailures >= 2
}

// Store owns the catalog state and keeps it in step with the remote API.
type Store struct {
	api catalog.API
	log *zap.Logger

	mu       sync.RWMutex
	snapshot Snapshot
	inflight int    // outstanding list fetches
	issued   uint64 // sequence of the newest list fetch
	category string // category of the newest list fetch

	subMu   sync.Mutex
	subs    map[int]chan struct{}
	nextSub int
}

// New builds a Store with an empty product list.
func New(api catalog.API, log *zap.Logger) *Store {
	if log == nil {
		log = zap.NewNop()
	}
	return &Store{
		api:  api,
		log:  log,
		subs: make(map[int]chan struct{}),
	}
}

// Snapshot returns a copy of the current state.
func (s *Store) Snapshot() Snapshot {
	s.mu.RLock()
	defer s.mu.RUnlock()

	snap := s.snapshot
	snap.Products = catalog.CloneProducts(s.snapshot.Products)
	if s.snapshot.LastError != nil {
		snap.LastError = fmt.Errorf("%w", s.snapshot.LastError)
	}
	return snap
}

// Subscribe returns a channel that receives a value after state changes.
// Notifications coalesce: a slow reader sees one pending signal, then reads
// the latest Snapshot. The returned func cancels the subscription.
func (s *Store) Subscribe() (<-chan struct{}, func()) {
	ch := make(chan struct{}, 1)

	s.subMu.Lock()
	id := s.nextSub
	s.nextSub++
	s.subs[id] = ch
	s.subMu.Unlock()

	var once sync.Once
	return ch, func() {
		once.Do(func() {
			s.subMu.Lock()
			delete(s.subs, id)
			s.subMu.Unlock()
			close(ch)
		})
	}
}

func (s *Store) notify() {
	s.subMu.Lock()
	defer s.subMu.Unlock()
	for _, ch := range s.subs {
		select {
		case ch <- struct{}{}:
		default:
		}
	}
}

// FetchAll replaces the product list with the full remote collection.
func (s *Store) FetchAll(ctx context.Context) error {
	return s.fetch(ctx, "")
}

// FilterByCategory replaces the product list with one category's products.
// An empty category is the same as FetchAll.
func (s *Store) FilterByCategory(ctx context.Context, category string) error {
	return s.fetch(ctx, strings.TrimSpace(category))
}

// Refresh re-runs the list fetch for the category applied most recently.
func (s *Store) Refresh(ctx context.Context) error {
	s.mu.RLock()
	category := s.category
	s.mu.RUnlock()
	return s.fetch(ctx, category)
}

func (s *Store) fetch(ctx context.Context, category string) error {
	seq := s.beginFetch(category)
	defer s.endFetch()

	var (
		products []catalog.Product
		err      error
	)
	if category == "" {
		products, err = s.api.ListProducts(ctx)
	} else {
		products, err = s.api.ListByCategory(ctx, category)
	}
	if err != nil {
		s.log.Warn("fetch products failed",
			zap.String("category", category),
			zap.Error(err),
		)
		s.recordFailure(err, seq)
		return err
	}

	if !s.applyList(seq, category, products) {
		s.log.Debug("discarding superseded product list",
			zap.String("category", category),
			zap.Uint64("seq", seq),
		)
	}
	return nil
}

func (s *Store) beginFetch(category string) uint64 {
	s.mu.Lock()
	s.issued++
	seq := s.issued
	s.category = category
	s.inflight++
	s.snapshot.Loading = true
	s.snapshot.Version++
	s.mu.Unlock()

	s.notify()
	return seq
}

func (s *Store) endFetch() {
	s.mu.Lock()
	s.inflight--
	s.snapshot.Loading = s.inflight > 0
	s.snapshot.Version++
	s.mu.Unlock()

	s.notify()
}

// applyList installs products if seq is still the newest fetch issued.
func (s *Store) applyList(seq uint64, category string, products []catalog.Product) bool {
	s.mu.Lock()
	defer s.mu.Unlock()

	if seq != s.issued {
		return false
	}
	if products == nil {
		products = []catalog.Product{}
	}
	s.snapshot.Products = catalog.CloneProducts(products)
	s.snapshot.Category = category
	s.snapshot.LastError = nil
	s.snapshot.LastUpdated = time.Now()
	s.snapshot.ConsecutiveFailures = 0
	s.snapshot.Version++
	return true
}

// Create posts p and prepends the server's copy to the list.
func (s *Store) Create(ctx context.Context, p catalog.Product) (catalog.Product, error) {
	created, err := s.api.CreateProduct(ctx, p)
	if err != nil {
		s.log.Warn("create product failed", zap.String("title", p.Title), zap.Error(err))
		s.recordFailure(err, 0)
		return catalog.Product{}, err
	}

	s.mutate(func(snap *Snapshot) {
		items := make([]catalog.Product, 0, len(snap.Products)+1)
		items = append(items, created)
		snap.Products = append(items, snap.Products...)
	})
	return created, nil
}

// Update replaces the product at id. The first list entry with that id takes
// the server's copy; when no entry matches the response is dropped.
func (s *Store) Update(ctx context.Context, id catalog.ID, patch catalog.Product) (catalog.Product, error) {
	updated, err := s.api.UpdateProduct(ctx, id, patch)
	if err != nil {
		s.log.Warn("update product failed", zap.Stringer("id", id), zap.Error(err))
		s.recordFailure(err, 0)
		return catalog.Product{}, err
	}

	found := false
	s.mutate(func(snap *Snapshot) {
		for i := range snap.Products {
			if snap.Products[i].ID == id {
				snap.Products[i] = updated
				found = true
				return
			}
		}
	})
	if !found {
		s.log.Debug("updated product not in list", zap.Stringer("id", id))
	}
	return updated, nil
}

// Remove deletes the product at id and drops every list entry with that id.
func (s *Store) Remove(ctx context.Context, id catalog.ID) error {
	if err := s.api.DeleteProduct(ctx, id); err != nil {
		s.log.Warn("delete product failed", zap.Stringer("id", id), zap.Error(err))
		s.recordFailure(err, 0)
		return err
	}

	s.mutate(func(snap *Snapshot) {
		kept := snap.Products[:0:0]
		for _, p := range snap.Products {
			if p.ID != id {
				kept = append(kept, p)
			}
		}
		snap.Products = kept
	})
	return nil
}

func (s *Store) mutate(fn func(*Snapshot)) {
	s.mu.Lock()
	fn(&s.snapshot)
	s.snapshot.LastError = nil
	s.snapshot.Version++
	s.mu.Unlock()

	s.notify()
}

// recordFailure keeps the products untouched and records err for display.
// seq is the list fetch sequence, or zero for item operations. Failures of
// superseded fetches are not recorded.
func (s *Store) recordFailure(err error, seq uint64) {
	s.mu.Lock()
	if seq != 0 && seq != s.issued {
		s.mu.Unlock()
		return
	}
	s.snapshot.LastError = err
	if seq != 0 {
		s.snapshot.ConsecutiveFailures++
	}
	s.snapshot.Version++
	s.mu.Unlock()

	s.notify()
}
