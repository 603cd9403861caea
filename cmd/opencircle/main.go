package main

import (
	"context"
	"log"
	"os"
	"os/signal"
	"syscall"

	"github.com/prometheus/client_golang/prometheus"

	"github.com/llwyd-bot123/opencircle-client/internal/client/cli"
	"github.com/llwyd-bot123/opencircle-client/internal/client/config"
	"github.com/llwyd-bot123/opencircle-client/internal/logging"
)

func main() {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	cfg := config.Load()
	logger := logging.NewTextLogger(os.Stderr)

	app, err := cli.NewApp(ctx, cfg, prometheus.DefaultRegisterer, logger)
	if err != nil {
		log.Fatalf("failed to start: %v", err)
	}

	app.Run(ctx)
}
