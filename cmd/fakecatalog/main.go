package main

import (
	"context"
	"flag"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"github.com/prometheus/client_golang/prometheus"
	"go.uber.org/zap"

	"github.com/five82/shelf/internal/fakeapi"
	"github.com/five82/shelf/internal/httpserver"
	"github.com/five82/shelf/internal/logging"
)

func main() {
	os.Exit(run())
}

func run() int {
	addr := flag.String("addr", "127.0.0.1:8080", "listen address")
	seed := flag.Bool("seed", true, "load demo products")
	level := flag.String("log-level", "info", "log level")
	flag.Parse()

	log, err := logging.New("fakecatalog", *level, "")
	if err != nil {
		fmt.Fprintf(os.Stderr, "fakecatalog: %v\n", err)
		return 1
	}
	defer func() { _ = log.Sync() }()

	ctx, cancel := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer cancel()

	store := fakeapi.NewMemStore()
	if *seed {
		store.Seed()
	}

	h := fakeapi.NewHandler(&fakeapi.Server{Store: store, Log: log}, fakeapi.Deps{
		Log:      log,
		Registry: prometheus.NewRegistry(),
	})

	log.Info("fake catalog ready", zap.Int("products", store.Len()))
	if err := httpserver.Run(ctx, *addr, h, log); err != nil {
		log.Error("http server stopped", zap.Error(err))
		return 1
	}
	return 0
}
