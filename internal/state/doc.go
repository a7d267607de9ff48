// Package state holds the product catalog as the UI sees it.
//
// # Overview
//
// Store owns the current product list and a loading flag and keeps both in step
// with the remote catalog API. Each operation makes one remote call and then
// makes one local change:
//
//	FetchAll          GET    /products                 replace list
//	FilterByCategory  GET    /products/category/{c}    replace list
//	Create            POST   /products                 prepend server copy
//	Update            PUT    /products/{id}            replace first match
//	Remove            DELETE /products/{id}            drop every match
//
// On failure the list is left exactly as it was. The error is logged on the
// zap logger and returned to the caller.
//
// # Lifecycle
//
// A Store is built once with New at application start and handed by pointer to
// every consumer (the poller and the UI). There is no package-level instance.
//
// # Loading
//
// Loading is true while at least one list fetch is outstanding. It is tracked
// as a counter, so a slow fetch finishing never clears the flag while a newer
// fetch is still running. Create, Update and Remove do not touch it.
//
// # Ordering
//
// Every list fetch takes a sequence number when it starts. A response is
// installed only if its number is still the newest one issued, so overlapping
// fetches resolve to the most recently requested list regardless of which
// response arrives last:
//
//	FilterByCategory("a")  seq 1 ─────────────────────────┐ (dropped)
//	FetchAll()                 seq 2 ──────┐ (installed)   │
//	                                       ▼               ▼
//
// Failures of superseded fetches are returned to their caller but are not
// recorded in the snapshot.
//
// # Reading state
//
// Snapshot returns a copy that the caller may keep and modify. Subscribe
// returns a channel that receives a signal after each change; signals coalesce,
// so a consumer should read a fresh Snapshot when woken:
//
//	ch, cancel := store.Subscribe()
//	defer cancel()
//	for range ch {
//		render(store.Snapshot())
//	}
//
// # Concurrency
//
// All methods are safe for concurrent use. The lock is held only while copying
// or mutating the in-memory list, never across network I/O.
package state
