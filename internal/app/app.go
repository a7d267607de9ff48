package app

import (
	"context"
	"fmt"
	"strings"
	"time"

	"go.uber.org/zap"

	"github.com/five82/shelf/internal/catalog"
	"github.com/five82/shelf/internal/config"
	"github.com/five82/shelf/internal/logging"
	"github.com/five82/shelf/internal/prefs"
	"github.com/five82/shelf/internal/state"
	"github.com/five82/shelf/internal/ui"
)

const service = "shelf"

// Options configure the shelf application.
type Options struct {
	ConfigPath   string
	PrefsPath    string // empty uses default ~/.config/shelf/prefs.toml
	RefreshEvery int    // seconds; zero keeps the configured interval
	Category     string // initial filter; empty uses the saved preference
}

// Run boots the shelf TUI until the user quits or the context is cancelled.
func Run(ctx context.Context, opts Options) error {
	cfg, err := config.Load(opts.ConfigPath)
	if err != nil {
		return fmt.Errorf("load config: %w", err)
	}

	log, err := logging.New(service, cfg.LogLevel, cfg.LogFile)
	if err != nil {
		return fmt.Errorf("init logging: %w", err)
	}
	defer func() { _ = log.Sync() }()

	userPrefs := prefs.Load(opts.PrefsPath)

	reg := newRegistry()
	client, err := catalog.NewClient(cfg.APIURL,
		catalog.WithTimeout(cfg.RequestTimeout),
		catalog.WithMetrics(catalog.NewMetrics(reg)),
	)
	if err != nil {
		return fmt.Errorf("init catalog client: %w", err)
	}

	store := state.New(client, log)

	interval := cfg.RefreshInterval
	if opts.RefreshEvery > 0 {
		interval = time.Duration(opts.RefreshEvery) * time.Second
	}

	category := initialCategory(opts.Category, userPrefs)

	log.Info("shelf starting",
		zap.String("api_url", client.BaseURL()),
		zap.String("category", category),
		zap.Duration("refresh_interval", interval),
		zap.String("metrics_addr", cfg.MetricsAddr),
	)

	startMetrics(ctx, cfg.MetricsAddr, reg, log)
	StartPoller(ctx, store, interval, log)

	return ui.Run(ui.Options{
		Context:   ctx,
		Store:     store,
		API:       client,
		Log:       log,
		Prefs:     userPrefs,
		PrefsPath: opts.PrefsPath,
		Category:  category,
		APIURL:    client.BaseURL(),
		LogPath:   cfg.LogFile,
	})
}

// initialCategory picks the first filter: the flag wins over the saved
// preference.
func initialCategory(flag string, p prefs.Prefs) string {
	if v := strings.TrimSpace(flag); v != "" {
		return v
	}
	return p.Category
}
