package main

import (
	"context"
	"errors"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/andy6609/budgetchat/internal/chat"
	"github.com/andy6609/budgetchat/internal/config"
	"github.com/andy6609/budgetchat/internal/observe"
)

func main() {
	cfg, err := config.Load(os.Args[1:])
	if err != nil {
		slog.Error("invalid configuration", "error", err)
		os.Exit(1)
	}
	level, _ := config.ParseLevel(cfg.LogLevel)

	logger := slog.New(slog.NewJSONHandler(os.Stdout, &slog.HandlerOptions{
		Level: level,
	}))

	var metrics *http.Server
	if cfg.MetricsAddr != "" {
		metrics = observe.NewServer(cfg.MetricsAddr)
		go func() {
			if err := metrics.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
				logger.Error("metrics endpoint stopped", "addr", cfg.MetricsAddr, "error", err)
			}
		}()
	}

	srv := chat.NewServer(cfg.Addr, chat.Options{
		OutBuffer:    cfg.OutBuffer,
		WriteTimeout: cfg.WriteTimeout,
		FlushTimeout: cfg.FlushTimeout,
	}, logger)
	if err := srv.Start(); err != nil {
		logger.Error("failed to start server", "error", err)
		os.Exit(1)
	}

	sigCh := make(chan os.Signal, 1)
	signal.Notify(sigCh, os.Interrupt, syscall.SIGTERM)
	<-sigCh

	srv.Stop()

	if metrics != nil {
		ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		if err := metrics.Shutdown(ctx); err != nil {
			logger.Error("metrics shutdown failed", "error", err)
		}
	}
}
