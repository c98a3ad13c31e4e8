package main

import (
	"context"
	"log"
	"os"
	"os/signal"
	"syscall"

	"tank-arena/server/internal/app"
	"tank-arena/server/internal/telemetry"
)

func main() {
	if err := app.LoadDotEnv(); err != nil {
		log.Fatalf("failed to load .env: %v", err)
	}

	cfg := app.LoadEnv(app.DefaultConfig(), os.LookupEnv, telemetry.WrapLogger(log.Default()))
	cfg.Logger = telemetry.WrapCharm(app.NewLogger(cfg.LogLevel))

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	if err := app.Run(ctx, cfg); err != nil {
		log.Fatalf("%v", err)
	}
}
