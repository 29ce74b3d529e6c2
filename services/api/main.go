package main

import (
	"context"
	"log"
	"os/signal"
	"syscall"

	"github.com/harborlight/harborlight/internal/query"
	"github.com/harborlight/harborlight/internal/store"
	"github.com/harborlight/harborlight/services/api/config"
	httpserver "github.com/harborlight/harborlight/services/api/http"
)

func main() {
	cfg, err := config.Load()
	if err != nil {
		log.Fatalf("config error: %v", err)
	}

	ctx, cancel := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer cancel()

	st, err := store.New(ctx, cfg.DatabaseURL)
	if err != nil {
		log.Fatalf("db connection error: %v", err)
	}
	defer st.Close()

	srv := httpserver.New(cfg, query.New(st))
	log.Printf("REST API listening on %s", cfg.ListenAddr())

	if err := srv.Run(ctx); err != nil {
		log.Fatalf("server error: %v", err)
	}
}
