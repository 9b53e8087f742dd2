package main

import (
	"context"
	"os"
	"os/signal"
	"syscall"

	"github.com/sirupsen/logrus"

	"addictiontube/internal/config"
	"addictiontube/internal/gateway"
	"addictiontube/internal/logger"
)

func main() {
	cfg := config.Get()

	log, err := logger.Setup(cfg.Log.Level, cfg.Log.JSON)
	if err != nil {
		logrus.Fatalf("logger: %v", err)
	}

	srv, err := gateway.New(cfg, nil, log)
	if err != nil {
		log.Fatalf("failed to build gateway: %v", err)
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	log.WithField("routes", len(cfg.Routes)).Infof("🌐 Gateway starting on %s", cfg.Gateway.FullURL())
	if err := srv.Run(ctx); err != nil {
		log.Fatalf("gateway stopped: %v", err)
	}
}
