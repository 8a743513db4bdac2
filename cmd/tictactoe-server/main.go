// Command tictactoe-server serves the browser game.
package main

import (
	"context"
	"errors"
	"flag"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"

	"github.com/jaminalder/codex-tic-tac-toe/internal/app"
	"github.com/jaminalder/codex-tic-tac-toe/internal/config"
	"github.com/jaminalder/codex-tic-tac-toe/internal/web"
)

func main() {
	cfg, err := config.FromOS()
	if err != nil {
		if errors.Is(err, flag.ErrHelp) {
			return
		}
		slog.Error("config", "err", err)
		os.Exit(2)
	}

	logger := slog.New(slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{Level: parseLevel(cfg.LogLevel)}))
	slog.SetDefault(logger)

	svc := app.NewServiceWithOptions(app.Options{ThinkDelay: cfg.ThinkDelay, Logger: logger})
	handler := web.NewServerWithOptions(svc, web.Options{
		Heartbeat:     cfg.Heartbeat,
		AllowedOrigin: cfg.AllowedOrigin,
		Logger:        logger,
	})

	srv := &http.Server{Addr: cfg.Addr, Handler: handler}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	errCh := make(chan error, 1)
	go func() {
		logger.Info("listening", "addr", cfg.Addr, "think_delay", cfg.ThinkDelay)
		errCh <- srv.ListenAndServe()
	}()

	select {
	case err := <-errCh:
		if !errors.Is(err, http.ErrServerClosed) {
			logger.Error("server", "err", err)
			os.Exit(1)
		}
	case <-ctx.Done():
		logger.Info("shutting down")
		shutdownCtx, cancel := context.WithTimeout(context.Background(), cfg.ShutdownTimeout)
		defer cancel()
		if err := srv.Shutdown(shutdownCtx); err != nil {
			logger.Error("shutdown", "err", err)
		}
	}
}

func parseLevel(s string) slog.Level {
	var l slog.Level
	if err := l.UnmarshalText([]byte(s)); err != nil {
		return slog.LevelInfo
	}
	return l
}
