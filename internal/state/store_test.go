package state

import (
	"context"
	"errors"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
	"go.uber.org/zap/zaptest/observer"

	"github.com/five82/shelf/internal/catalog"
)

// stubAPI is a scriptable catalog.API. Each field is consulted per call.
type stubAPI struct {
	mu sync.Mutex

	list       func(ctx context.Context, category string) ([]catalog.Product, error)
	create     func(p catalog.Product) (catalog.Product, error)
	update     func(id catalog.ID, p catalog.Product) (catalog.Product, error)
	remove     func(id catalog.ID) error
	categories []string

	listCalls []string
}

func (s *stubAPI) ListProducts(ctx context.Context) ([]catalog.Product, error) {
	return s.ListByCategory(ctx, "")
}

func (s *stubAPI) ListByCategory(ctx context.Context, category string) ([]catalog.Product, error) {
	s.mu.Lock()
	s.listCalls = append(s.listCalls, category)
	fn := s.list
	s.mu.Unlock()
	if fn == nil {
		return nil, nil
	}
	return fn(ctx, category)
}

func (s *stubAPI) CreateProduct(_ context.Context, p catalog.Product) (catalog.Product, error) {
	return s.create(p)
}

func (s *stubAPI) UpdateProduct(_ context.Context, id catalog.ID, p catalog.Product) (catalog.Product, error) {
	return s.update(id, p)
}

func (s *stubAPI) DeleteProduct(_ context.Context, id catalog.ID) error {
	return s.remove(id)
}

func (s *stubAPI) ListCategories(context.Context) ([]string, error) {
	return s.categories, nil
}

func (s *stubAPI) calls() []string {
	s.mu.Lock()
	defer s.mu.Unlock()
	return append([]string(nil), s.listCalls...)
}

var errRemote = errors.New("remote failed")

func products(ids ...string) []catalog.Product {
	out := make([]catalog.Product, 0, len(ids))
	for _, id := range ids {
		out = append(out, catalog.Product{ID: catalog.ID(id), Title: "item " + id})
	}
	return out
}

func ids(items []catalog.Product) []catalog.ID {
	out := make([]catalog.ID, 0, len(items))
	for _, p := range items {
		out = append(out, p.ID)
	}
	return out
}

// seed installs items as the current list through a successful fetch.
func seed(t *testing.T, s *Store, api *stubAPI, items []catalog.Product) {
	t.Helper()
	api.list = func(context.Context, string) ([]catalog.Product, error) { return items, nil }
	require.NoError(t, s.FetchAll(context.Background()))
	api.list = nil
}

func TestNew_InitialState(t *testing.T) {
	s := New(&stubAPI{}, nil)
	snap := s.Snapshot()
	assert.Empty(t, snap.Products)
	assert.False(t, snap.Loading)
	assert.NoError(t, snap.LastError)
	assert.False(t, snap.IsOffline())
}

func TestFetchAll_ReplacesProducts(t *testing.T) {
	want := []catalog.Product{{ID: "1", Title: "A"}}
	api := &stubAPI{list: func(context.Context, string) ([]catalog.Product, error) {
		return want, nil
	}}
	s := New(api, zap.NewNop())

	require.NoError(t, s.FetchAll(context.Background()))

	snap := s.Snapshot()
	assert.Equal(t, want, snap.Products)
	assert.False(t, snap.Loading)
	assert.Equal(t, "", snap.Category)
	assert.False(t, snap.LastUpdated.IsZero())
	assert.Equal(t, []string{""}, api.calls())
}

func TestFetchAll_FailureKeepsProductsAndLogs(t *testing.T) {
	core, logs := observer.New(zap.WarnLevel)
	api := &stubAPI{}
	s := New(api, zap.New(core))
	seed(t, s, api, products("1", "2"))

	api.list = func(context.Context, string) ([]catalog.Product, error) { return nil, errRemote }
	err := s.FetchAll(context.Background())
	require.ErrorIs(t, err, errRemote)

	snap := s.Snapshot()
	assert.Equal(t, []catalog.ID{"1", "2"}, ids(snap.Products))
	assert.False(t, snap.Loading)
	assert.ErrorIs(t, snap.LastError, errRemote)
	assert.Equal(t, 1, snap.ConsecutiveFailures)

	entries := logs.FilterMessage("fetch products failed").All()
	require.Len(t, entries, 1)
	assert.Equal(t, errRemote.Error(), entries[0].ContextMap()["error"])
}

func TestFetchAll_LoadingTrueWhileOutstanding(t *testing.T) {
	release := make(chan struct{})
	entered := make(chan struct{})
	api := &stubAPI{list: func(context.Context, string) ([]catalog.Product, error) {
		close(entered)
		<-release
		return products("1"), nil
	}}
	s := New(api, nil)

	done := make(chan error, 1)
	go func() { done <- s.FetchAll(context.Background()) }()

	<-entered
	assert.True(t, s.Snapshot().Loading)

	close(release)
	require.NoError(t, <-done)
	assert.False(t, s.Snapshot().Loading)
}

func TestFilterByCategory_EmptyMatchesFetchAll(t *testing.T) {
	for _, category := range []string{"", "   "} {
		api := &stubAPI{list: func(_ context.Context, c string) ([]catalog.Product, error) {
			if c != "" {
				return products("9"), nil
			}
			return products("1", "2"), nil
		}}
		s := New(api, nil)

		require.NoError(t, s.FilterByCategory(context.Background(), category))
		filtered := s.Snapshot()

		require.NoError(t, s.FetchAll(context.Background()))
		all := s.Snapshot()

		assert.Equal(t, all.Products, filtered.Products)
		assert.Equal(t, []string{"", ""}, api.calls())
	}
}

func TestFilterByCategory_UsesCategoryEndpoint(t *testing.T) {
	api := &stubAPI{list: func(_ context.Context, c string) ([]catalog.Product, error) {
		return products("5"), nil
	}}
	s := New(api, nil)

	require.NoError(t, s.FilterByCategory(context.Background(), " jewelery "))

	snap := s.Snapshot()
	assert.Equal(t, []string{"jewelery"}, api.calls())
	assert.Equal(t, "jewelery", snap.Category)
	assert.Equal(t, []catalog.ID{"5"}, ids(snap.Products))
	assert.False(t, snap.Loading)
}

func TestFilterByCategory_FailureKeepsProducts(t *testing.T) {
	api := &stubAPI{}
	s := New(api, nil)
	seed(t, s, api, products("1"))

	api.list = func(context.Context, string) ([]catalog.Product, error) { return nil, errRemote }
	require.Error(t, s.FilterByCategory(context.Background(), "electronics"))

	snap := s.Snapshot()
	assert.Equal(t, []catalog.ID{"1"}, ids(snap.Products))
	assert.Equal(t, "", snap.Category)
	assert.False(t, snap.Loading)
}

func TestRefresh_RepeatsLastCategory(t *testing.T) {
	api := &stubAPI{list: func(context.Context, string) ([]catalog.Product, error) {
		return products("1"), nil
	}}
	s := New(api, nil)

	require.NoError(t, s.Refresh(context.Background()))
	require.NoError(t, s.FilterByCategory(context.Background(), "electronics"))
	require.NoError(t, s.Refresh(context.Background()))

	assert.Equal(t, []string{"", "electronics", "electronics"}, api.calls())
}

func TestCreate_PrependsServerCopy(t *testing.T) {
	api := &stubAPI{}
	s := New(api, nil)
	seed(t, s, api, products("1", "2"))

	api.create = func(p catalog.Product) (catalog.Product, error) {
		assert.True(t, p.ID.IsZero())
		p.ID = "21"
		return p, nil
	}
	created, err := s.Create(context.Background(), catalog.Product{Title: "new"})
	require.NoError(t, err)
	assert.Equal(t, catalog.ID("21"), created.ID)

	snap := s.Snapshot()
	require.Len(t, snap.Products, 3)
	assert.Equal(t, catalog.ID("21"), snap.Products[0].ID)
	assert.Equal(t, "new", snap.Products[0].Title)
	assert.False(t, snap.Loading)
}

func TestCreate_IntoEmptyStore(t *testing.T) {
	api := &stubAPI{create: func(p catalog.Product) (catalog.Product, error) {
		p.ID = "1"
		return p, nil
	}}
	s := New(api, nil)

	_, err := s.Create(context.Background(), catalog.Product{Title: "first"})
	require.NoError(t, err)
	assert.Equal(t, []catalog.ID{"1"}, ids(s.Snapshot().Products))
}

func TestCreate_FailureLeavesListUnchanged(t *testing.T) {
	api := &stubAPI{}
	s := New(api, nil)
	seed(t, s, api, products("1"))

	api.create = func(catalog.Product) (catalog.Product, error) { return catalog.Product{}, errRemote }
	_, err := s.Create(context.Background(), catalog.Product{Title: "new"})
	require.ErrorIs(t, err, errRemote)

	snap := s.Snapshot()
	assert.Len(t, snap.Products, 1)
	assert.ErrorIs(t, snap.LastError, errRemote)
	assert.Equal(t, 0, snap.ConsecutiveFailures)
}

func TestUpdate_ReplacesMatchingEntry(t *testing.T) {
	api := &stubAPI{}
	s := New(api, nil)
	seed(t, s, api, []catalog.Product{{ID: "1", Title: "A"}})

	api.update = func(id catalog.ID, p catalog.Product) (catalog.Product, error) {
		p.ID = id
		return p, nil
	}
	_, err := s.Update(context.Background(), "1", catalog.Product{Title: "B"})
	require.NoError(t, err)

	assert.Equal(t, []catalog.Product{{ID: "1", Title: "B"}}, s.Snapshot().Products)
}

func TestUpdate_OnlyFirstDuplicateReplaced(t *testing.T) {
	api := &stubAPI{}
	s := New(api, nil)
	seed(t, s, api, []catalog.Product{{ID: "1", Title: "A"}, {ID: "2"}, {ID: "1", Title: "A2"}})

	api.update = func(id catalog.ID, p catalog.Product) (catalog.Product, error) {
		p.ID = id
		return p, nil
	}
	_, err := s.Update(context.Background(), "1", catalog.Product{Title: "B"})
	require.NoError(t, err)

	snap := s.Snapshot()
	require.Len(t, snap.Products, 3)
	assert.Equal(t, "B", snap.Products[0].Title)
	assert.Equal(t, "A2", snap.Products[2].Title)
}

func TestUpdate_NoMatchDiscardsResponse(t *testing.T) {
	api := &stubAPI{}
	s := New(api, nil)
	seed(t, s, api, products("1", "2"))
	before := s.Snapshot().Products

	api.update = func(id catalog.ID, p catalog.Product) (catalog.Product, error) {
		p.ID = id
		return p, nil
	}
	_, err := s.Update(context.Background(), "99", catalog.Product{Title: "ghost"})
	require.NoError(t, err)

	assert.Equal(t, before, s.Snapshot().Products)
}

func TestUpdate_FailureLeavesListUnchanged(t *testing.T) {
	api := &stubAPI{}
	s := New(api, nil)
	seed(t, s, api, []catalog.Product{{ID: "1", Title: "A"}})

	api.update = func(catalog.ID, catalog.Product) (catalog.Product, error) { return catalog.Product{}, errRemote }
	_, err := s.Update(context.Background(), "1", catalog.Product{Title: "B"})
	require.Error(t, err)

	assert.Equal(t, "A", s.Snapshot().Products[0].Title)
}

func TestRemove_DropsEveryMatch(t *testing.T) {
	cases := []struct {
		name  string
		start []string
		id    catalog.ID
		want  []catalog.ID
	}{
		{"single", []string{"1", "2"}, "1", []catalog.ID{"2"}},
		{"duplicates", []string{"1", "2", "1", "3"}, "1", []catalog.ID{"2", "3"}},
		{"no match", []string{"1", "2"}, "7", []catalog.ID{"1", "2"}},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			api := &stubAPI{}
			s := New(api, nil)
			seed(t, s, api, products(tc.start...))

			var deleted catalog.ID
			api.remove = func(id catalog.ID) error {
				deleted = id
				return nil
			}
			require.NoError(t, s.Remove(context.Background(), tc.id))
			assert.Equal(t, tc.id, deleted)
			assert.Equal(t, tc.want, ids(s.Snapshot().Products))
		})
	}
}

func TestRemove_FailureLeavesListUnchanged(t *testing.T) {
	api := &stubAPI{}
	s := New(api, nil)
	seed(t, s, api, products("1", "2"))

	api.remove = func(catalog.ID) error { return errRemote }
	require.ErrorIs(t, s.Remove(context.Background(), "1"), errRemote)

	assert.Equal(t, []catalog.ID{"1", "2"}, ids(s.Snapshot().Products))
}

func TestFetch_StaleResponseDoesNotOverwriteNewer(t *testing.T) {
	slowEntered := make(chan struct{})
	releaseSlow := make(chan struct{})
	api := &stubAPI{list: func(_ context.Context, category string) ([]catalog.Product, error) {
		if category == "slow" {
			close(slowEntered)
			<-releaseSlow
			return products("old"), nil
		}
		return products("new"), nil
	}}
	s := New(api, nil)

	slowDone := make(chan error, 1)
	go func() { slowDone <- s.FilterByCategory(context.Background(), "slow") }()
	<-slowEntered

	require.NoError(t, s.FetchAll(context.Background()))

	// The older fetch is still outstanding.
	assert.True(t, s.Snapshot().Loading)

	close(releaseSlow)
	require.NoError(t, <-slowDone)

	snap := s.Snapshot()
	assert.Equal(t, []catalog.ID{"new"}, ids(snap.Products))
	assert.Equal(t, "", snap.Category)
	assert.False(t, snap.Loading)
}

func TestFetch_StaleFailureNotRecorded(t *testing.T) {
	slowEntered := make(chan struct{})
	releaseSlow := make(chan struct{})
	api := &stubAPI{list: func(_ context.Context, category string) ([]catalog.Product, error) {
		if category == "slow" {
			close(slowEntered)
			<-releaseSlow
			return nil, errRemote
		}
		return products("new"), nil
	}}
	s := New(api, nil)

	slowDone := make(chan error, 1)
	go func() { slowDone <- s.FilterByCategory(context.Background(), "slow") }()
	<-slowEntered
	require.NoError(t, s.FetchAll(context.Background()))
	close(releaseSlow)
	require.Error(t, <-slowDone)

	snap := s.Snapshot()
	assert.NoError(t, snap.LastError)
	assert.Equal(t, 0, snap.ConsecutiveFailures)
}

func TestSnapshot_IsIndependentCopy(t *testing.T) {
	api := &stubAPI{}
	s := New(api, nil)
	seed(t, s, api, products("1"))

	snap := s.Snapshot()
	snap.Products[0].Title = "mutated"
	assert.Equal(t, "item 1", s.Snapshot().Products[0].Title)
}

func TestConsecutiveFailures_OfflineAndReset(t *testing.T) {
	api := &stubAPI{list: func(context.Context, string) ([]catalog.Product, error) { return nil, errRemote }}
	s := New(api, nil)

	_ = s.FetchAll(context.Background())
	assert.False(t, s.Snapshot().IsOffline())
	_ = s.FetchAll(context.Background())
	assert.True(t, s.Snapshot().IsOffline())

	api.list = func(context.Context, string) ([]catalog.Product, error) { return products("1"), nil }
	require.NoError(t, s.FetchAll(context.Background()))
	assert.False(t, s.Snapshot().IsOffline())
	assert.NoError(t, s.Snapshot().LastError)
}

func TestSubscribe_NotifiesAndCancels(t *testing.T) {
	api := &stubAPI{list: func(context.Context, string) ([]catalog.Product, error) { return products("1"), nil }}
	s := New(api, nil)

	ch, cancel := s.Subscribe()
	before := s.Snapshot().Version
	require.NoError(t, s.FetchAll(context.Background()))

	select {
	case <-ch:
	case <-time.After(time.Second):
		t.Fatal("no change notification after FetchAll")
	}
	assert.Greater(t, s.Snapshot().Version, before)

	cancel()
	cancel()
	for range ch {
		// drain the pending signal; the loop ends once the channel is closed
	}

	// Notifying with no subscribers must not block or panic.
	require.NoError(t, s.FetchAll(context.Background()))
}
