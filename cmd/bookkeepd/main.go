package main

import (
	"context"
	"flag"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"strings"
	"syscall"
	"time"

	"github.com/joho/godotenv"

	"github.com/tinoosan/bookkeep/internal/config"
	"github.com/tinoosan/bookkeep/internal/engine"
	httpapi "github.com/tinoosan/bookkeep/internal/httpapi/v1"
	"github.com/tinoosan/bookkeep/internal/storage/memory"
)

func main() {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	// .env is optional; real env still wins inside config.Load.
	_ = godotenv.Load()

	configPath := flag.String("config", os.Getenv("BOOKKEEP_CONFIG"), "path to YAML config file")
	flag.Parse()

	cfg, err := config.Load(*configPath)
	if err != nil {
		slog.Error("failed to load config", "err", err)
		os.Exit(1)
	}

	logger := buildLogger(cfg.Log)
	slog.SetDefault(logger)

	opts := engine.Options{
		Logger:          logger,
		DefaultCurrency: cfg.Book.DefaultCurrency,
		ReminderHorizon: cfg.ReminderHorizon(),
	}
	backend := "sqlite"
	if cfg.Book.Path == "" {
		// No book path means an ephemeral in-memory book.
		opts.Store = memory.New()
		backend = "memory"
	}
	eng, err := engine.Boot(cfg.Book.Path, cfg.Book.Password, opts)
	if err != nil {
		logger.Error("failed to open book", "path", cfg.Book.Path, "err", err)
		os.Exit(1)
	}
	logger.Info("book open", "backend", backend, "path", cfg.Book.Path)

	srv := &http.Server{
		Addr:              cfg.Addr,
		Handler:           httpapi.New(eng, logger).Handler(),
		ReadTimeout:       5 * time.Second,
		ReadHeaderTimeout: 5 * time.Second,
		WriteTimeout:      10 * time.Second,
		IdleTimeout:       60 * time.Second,
	}

	errCh := make(chan error, 1)
	go func() {
		logger.Info("bookkeep service listening", "addr", srv.Addr)
		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			errCh <- err
		}
	}()

	select {
	case <-ctx.Done():
		ctxShutdown, cancel := context.WithTimeout(context.Background(), 10*time.Second)
		defer cancel()
		if err := srv.Shutdown(ctxShutdown); err != nil {
			logger.Error("server shutdown error", "err", err)
		}
	case err := <-errCh:
		logger.Error("server error", "err", err)
	}
	if err := eng.Close(); err != nil {
		logger.Error("book close error", "err", err)
	}
}

// parseLogLevel maps config values to slog.Leveler
func parseLogLevel(s string) slog.Leveler {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "debug":
		return slog.LevelDebug
	case "warn", "warning":
		return slog.LevelWarn
	case "error", "err":
		return slog.LevelError
	default:
		return slog.LevelInfo
	}
}

func buildLogger(cfg config.LogConfig) *slog.Logger {
	level := parseLogLevel(cfg.Level)
	if strings.ToLower(strings.TrimSpace(cfg.Format)) == "text" {
		return slog.New(slog.NewTextHandler(os.Stdout, &slog.HandlerOptions{Level: level}))
	}
	// default to JSON
	return slog.New(slog.NewJSONHandler(os.Stdout, &slog.HandlerOptions{Level: level}))
}
