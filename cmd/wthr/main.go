package main

import (
	"context"
	"errors"
	"fmt"
	"io"
	"io/fs"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/prometheus/client_golang/prometheus/promhttp"

	"github.com/swelljoe/wthr-widget/internal/config"
	"github.com/swelljoe/wthr-widget/internal/db"
	"github.com/swelljoe/wthr-widget/internal/handlers"
	"github.com/swelljoe/wthr-widget/internal/logger"
	"github.com/swelljoe/wthr-widget/internal/prefs"
	"github.com/swelljoe/wthr-widget/internal/weather"
	"github.com/swelljoe/wthr-widget/internal/widget"
	"github.com/swelljoe/wthr-widget/web"
)

const shutdownTimeout = 10 * time.Second

// preferenceStore is what the server needs from either backend.
type preferenceStore interface {
	prefs.Store
	handlers.Pinger
	io.Closer
}

func main() {
	logger.InitLogger()
	defer func() { _ = logger.Close() }()

	if err := run(); err != nil {
		logger.GetLogger().Errorw("Server exited", "error", err)
		_ = logger.Close()
		os.Exit(1)
	}
}

func run() error {
	log := logger.GetLogger()

	cfg, err := config.Load()
	if err != nil {
		return fmt.Errorf("load config: %w", err)
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	store, err := openStore(ctx, cfg.Storage)
	if err != nil {
		return err
	}
	defer func() {
		if err := store.Close(); err != nil {
			log.Warnw("Failed to close preference store", "error", err)
		}
	}()
	log.Infow("Preference store connected", "backend", cfg.Storage.Backend)

	client := weather.NewClient(cfg.Weather.APIKey, cfg.Weather.BaseURL, cfg.Weather.Timeout)
	pipeline := weather.NewPipeline(client, cfg.Weather.DefaultCity)

	sessions := widget.NewRegistry(store, widget.Options{
		IconBaseURL:   cfg.Weather.IconBaseURL,
		SoundBasePath: cfg.Sound.BasePath,
		Volume:        cfg.Sound.Volume,
	})
	go sessions.RunSweeper(ctx, time.Minute, cfg.Server.SessionIdleTimeout)

	h := handlers.New(sessions, pipeline, store)
	mux, err := newMux(h)
	if err != nil {
		return err
	}

	srv := &http.Server{
		Addr:              cfg.ListenAddr(),
		Handler:           mux,
		ReadHeaderTimeout: 5 * time.Second,
		// Lookups may take up to the provider timeout.
		WriteTimeout: cfg.Weather.Timeout + 5*time.Second,
		IdleTimeout:  60 * time.Second,
	}

	errCh := make(chan error, 1)
	go func() {
		log.Infow("Server starting", "addr", srv.Addr, "environment", cfg.Server.Environment)
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			errCh <- err
		}
		close(errCh)
	}()

	select {
	case err := <-errCh:
		return err
	case <-ctx.Done():
	}

	log.Info("Shutting down server")
	shutdownCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
	defer cancel()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		return fmt.Errorf("shutdown: %w", err)
	}
	return nil
}

func openStore(ctx context.Context, cfg config.StorageConfig) (preferenceStore, error) {
	switch cfg.Backend {
	case config.BackendRedis:
		client, err := prefs.NewRedisClient(ctx, cfg.Redis.Address, cfg.Redis.Password, cfg.Redis.DB)
		if err != nil {
			return nil, err
		}
		return redisStore{RedisStore: prefs.NewRedisStore(client), Closer: client}, nil
	default:
		database, err := db.NewDB(cfg.DBPath)
		if err != nil {
			return nil, fmt.Errorf("open preference database: %w", err)
		}
		return database, nil
	}
}

type redisStore struct {
	*prefs.RedisStore
	io.Closer
}

// newMux wires the routes onto a ServeMux.
func newMux(h *handlers.Handlers) (*http.ServeMux, error) {
	static, err := fs.Sub(web.Static, "static")
	if err != nil {
		return nil, fmt.Errorf("static assets: %w", err)
	}

	mux := http.NewServeMux()
	mux.Handle("GET /static/", http.StripPrefix("/static/", http.FileServerFS(static)))
	mux.Handle("GET /metrics", promhttp.Handler())

	mux.HandleFunc("GET /{$}", h.HandleIndex)
	mux.HandleFunc("GET /api/weather", h.HandleWeatherAPI)
	mux.HandleFunc("POST /settings/darkmode", h.HandleToggleDarkMode)
	mux.HandleFunc("POST /settings/sound", h.HandleToggleSound)
	mux.HandleFunc("GET /health", h.HandleHealth)
	return mux, nil
}
