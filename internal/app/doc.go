// Package app is the composition root of shelf.
//
// Run wires the pieces in this order:
//
//  1. config.Load: TOML file, .env, environment
//  2. logging.New: zap logger writing to the configured log file
//  3. prefs.Load: theme and last category
//  4. catalog.NewClient with request metrics on a private Prometheus registry
//  5. state.New: the catalog store, shared by the UI and the poller
//  6. startMetrics: optional /metrics listener when metrics_addr is set
//  7. StartPoller: optional periodic Refresh when refresh_interval is set
//  8. ui.Run: blocks until the user quits or the context is cancelled
//
// The initial list fetch is issued by the UI so the loading state is visible.
// The category comes from the -category flag, then the saved preference.
//
// Only configuration, logger and client construction errors are fatal.
// Remote failures are recorded in the store and shown by the UI.
package app
