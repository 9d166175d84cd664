package main

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/neexbeast/skycast/internal/api"
	"github.com/neexbeast/skycast/internal/config"
	"github.com/neexbeast/skycast/internal/provider"
	"github.com/neexbeast/skycast/internal/session"
	"github.com/neexbeast/skycast/internal/storage"
)

func main() {
	log := slog.New(slog.NewJSONHandler(os.Stdout, nil))

	if err := run(log); err != nil {
		log.Error("server exited with error", "err", err)
		os.Exit(1)
	}
}

func run(log *slog.Logger) error {
	cfg, err := config.Load()
	if err != nil {
		return fmt.Errorf("loading config: %w", err)
	}

	ctx := context.Background()

	store, err := storage.Open(ctx, cfg.Storage())
	if err != nil {
		return fmt.Errorf("opening %s store: %w", cfg.StoreBackend, err)
	}
	defer func() {
		if err := store.Close(); err != nil {
			log.Error("closing store", "err", err)
		}
	}()
	log.Info("store opened", "backend", cfg.StoreBackend)

	remote := provider.NewClient(cfg.APIKey)
	if cfg.BaseURL != "" {
		remote = provider.NewClientWithURL(cfg.BaseURL, cfg.APIKey)
	}

	sess := session.New(remote, store, log, cfg.Session())
	sessCtx, stopSession := context.WithCancel(ctx)
	defer stopSession()

	sessDone := make(chan struct{})
	go func() {
		defer close(sessDone)
		defer func() {
			if r := recover(); r != nil {
				log.Error("session goroutine panicked", "recover", r)
			}
		}()
		if err := sess.Run(sessCtx); err != nil {
			log.Error("session stopped with error", "err", err)
		}
	}()

	select {
	case <-sess.Ready():
	case <-sessDone:
		return fmt.Errorf("session stopped before serving")
	}

	handlers := api.NewHandlers(sess, log)
	router := api.NewRouter(handlers, cfg.APIToken, store, log)

	srv := &http.Server{
		Addr:         ":" + cfg.Port,
		Handler:      router,
		ReadTimeout:  15 * time.Second,
		WriteTimeout: 15 * time.Second,
		IdleTimeout:  60 * time.Second,
	}

	// Graceful shutdown on SIGINT / SIGTERM.
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)

	errCh := make(chan error, 1)
	go func() {
		defer func() {
			if r := recover(); r != nil {
				log.Error("server goroutine panicked", "recover", r)
				errCh <- fmt.Errorf("server panicked: %v", r)
			}
		}()
		log.Info("server starting", "port", cfg.Port)
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			errCh <- fmt.Errorf("listening: %w", err)
		}
	}()

	var serveErr error
	select {
	case sig := <-quit:
		log.Info("shutdown signal received", "signal", sig)
	case serveErr = <-errCh:
	}

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()

	if serveErr == nil {
		if err := srv.Shutdown(shutdownCtx); err != nil {
			serveErr = fmt.Errorf("graceful shutdown: %w", err)
		}
	}

	// Stop the session after the last request so pending saves are flushed.
	stopSession()
	select {
	case <-sessDone:
	case <-shutdownCtx.Done():
		log.Error("session did not stop before the shutdown deadline")
	}

	if serveErr != nil {
		return serveErr
	}
	log.Info("server shut down cleanly")
	return nil
}
