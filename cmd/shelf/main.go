package main

import (
	"context"
	"flag"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"github.com/five82/shelf/internal/app"
)

func main() {
	os.Exit(run())
}

func run() int {
	configPath := flag.String("config", "", "config file path (optional, defaults to ~/.config/shelf/config.toml)")
	refreshSeconds := flag.Int("refresh", 0, "background refresh interval in seconds (optional, overrides config)")
	category := flag.String("category", "", "initial category filter (optional, overrides saved preference)")
	flag.Parse()

	ctx, cancel := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer cancel()

	opts := app.Options{
		ConfigPath: *configPath,
		Category:   *category,
	}
	if s := *refreshSeconds; s > 0 {
		opts.RefreshEvery = s
	}

	if err := app.Run(ctx, opts); err != nil {
		fmt.Fprintf(os.Stderr, "shelf: %v\n", err)
		return 1
	}
	return 0
}
