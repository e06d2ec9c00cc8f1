package main

import (
	"context"
	"log"
	"os/signal"
	"syscall"

	"github.com/jbuehler23/eryndor-mmo/internal/app"
)

func main() {
	cfg, err := app.LoadConfig()
	if err != nil {
		log.Fatalf("configuration: %v", err)
	}

	server, err := app.New(cfg)
	if err != nil {
		log.Fatalf("startup: %v", err)
	}

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	if err := server.Run(ctx); err != nil {
		log.Fatalf("server: %v", err)
	}
}
