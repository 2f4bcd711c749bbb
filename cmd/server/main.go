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

	"connectrpc.com/connect"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"golang.org/x/net/http2"
	"golang.org/x/net/http2/h2c"

	"github.com/mmynk/chatbook/internal/auth"
	"github.com/mmynk/chatbook/internal/config"
	"github.com/mmynk/chatbook/internal/editor"
	"github.com/mmynk/chatbook/internal/metrics"
	"github.com/mmynk/chatbook/internal/middleware"
	"github.com/mmynk/chatbook/internal/repository"
	"github.com/mmynk/chatbook/internal/service"
	"github.com/mmynk/chatbook/internal/storage"
	"github.com/mmynk/chatbook/internal/storage/memory"
	"github.com/mmynk/chatbook/internal/storage/redis"
	"github.com/mmynk/chatbook/internal/storage/sqlite"
	"github.com/mmynk/chatbook/pkg/logging"
)

func main() {
	cfg, err := config.Load()
	if err != nil {
		slog.Error("Failed to load config", "error", err)
		os.Exit(1)
	}
	logging.Setup(cfg.LogLevel)

	if err := cfg.Validate(); err != nil {
		slog.Error("Invalid config", "error", err)
		os.Exit(1)
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	store, err := openStore(ctx, cfg)
	if err != nil {
		slog.Error("Failed to initialize storage", "backend", cfg.StoreBackend, "error", err)
		os.Exit(1)
	}
	defer store.Close()

	chats := repository.NewChatRepository(store)
	contacts := repository.NewContactRepository(store, chats)

	// Finish any contact delete interrupted before its history was removed.
	if n, err := contacts.SweepOrphans(ctx); err != nil {
		slog.Warn("Orphan sweep skipped", "error", err)
	} else if n > 0 {
		slog.Info("Orphaned histories removed", "count", n)
	}

	var jwtManager *auth.JWTManager
	if cfg.APISecret != "" {
		jwtManager = auth.NewJWTManager(cfg.APISecret, cfg.TokenTTL)
	}

	mux := http.NewServeMux()
	service.Register(mux,
		service.NewContactService(contacts),
		service.NewChatService(contacts, chats, editor.New(chats, editor.WithContactCheck(contacts.RequireContact))),
		connect.WithInterceptors(middleware.Interceptors(jwtManager)...),
	)
	mux.Handle("/metrics", promhttp.Handler())
	mux.HandleFunc("/healthz", func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusOK)
		fmt.Fprintln(w, "ok")
	})

	// Wrap with h2c for HTTP/2 without TLS (required for Connect)
	handler := h2c.NewHandler(loggingMiddleware(corsMiddleware(mux)), &http2.Server{})

	server := &http.Server{
		Addr:              cfg.Addr(),
		Handler:           handler,
		ReadHeaderTimeout: 10 * time.Second,
	}

	go func() {
		<-ctx.Done()
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		if err := server.Shutdown(shutdownCtx); err != nil {
			slog.Error("Shutdown failed", "error", err)
		}
	}()

	slog.Info("Connect server starting",
		"address", server.Addr,
		"url", fmt.Sprintf("http://%s", server.Addr),
		"backend", cfg.StoreBackend,
		"auth", cfg.APISecret != "",
	)
	if err := server.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
		slog.Error("Server failed", "error", err)
		os.Exit(1)
	}
	slog.Info("Server stopped")
}

// openStore opens the configured backend wrapped with metrics.
func openStore(ctx context.Context, cfg *config.Config) (storage.Store, error) {
	var (
		store storage.Store
		err   error
	)

	switch cfg.StoreBackend {
	case config.BackendSQLite:
		store, err = sqlite.New(cfg.DBPath)
		if err == nil {
			slog.Info("Storage initialized", "backend", cfg.StoreBackend, "database", cfg.DBPath)
		}
	case config.BackendRedis:
		store, err = redis.New(ctx, redis.Options{
			Addr:      cfg.RedisAddr(),
			Password:  cfg.RedisPassword,
			DB:        cfg.RedisDB,
			Namespace: cfg.RedisNamespace,
		})
	case config.BackendMemory:
		store = memory.New()
		slog.Info("Storage initialized", "backend", cfg.StoreBackend)
	default:
		err = fmt.Errorf("unknown store backend %q", cfg.StoreBackend)
	}
	if err != nil {
		return nil, err
	}

	return metrics.InstrumentStore(store, cfg.StoreBackend), nil
}

// loggingMiddleware logs all incoming requests
func loggingMiddleware(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		start := time.Now()

		slog.Debug("Request received",
			"method", r.Method,
			"path", r.URL.Path,
			"remote_addr", r.RemoteAddr,
		)

		next.ServeHTTP(w, r)

		slog.Debug("Request completed",
			"method", r.Method,
			"path", r.URL.Path,
			"duration_ms", time.Since(start).Milliseconds(),
		)
	})
}

// corsMiddleware lets the browser mockup call the API from another origin.
func corsMiddleware(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Access-Control-Allow-Origin", "*")
		w.Header().Set("Access-Control-Allow-Methods", "POST, GET, OPTIONS")
		w.Header().Set("Access-Control-Allow-Headers", "Authorization, Content-Type, Connect-Protocol-Version, Connect-Timeout-Ms")
		w.Header().Set("Access-Control-Expose-Headers", "Connect-Protocol-Version, Connect-Timeout-Ms")

		if r.Method == http.MethodOptions {
			w.WriteHeader(http.StatusOK)
			return
		}

		next.ServeHTTP(w, r)
	})
}
