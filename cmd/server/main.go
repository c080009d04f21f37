package main

import (
	"context"
	"errors"
	"flag"
	"fmt"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"calorie-tracker/internal/auth"
	"calorie-tracker/internal/catalog"
	"calorie-tracker/internal/config"
	"calorie-tracker/internal/handlers"
	"calorie-tracker/internal/logging"
	"calorie-tracker/internal/metrics"
	"calorie-tracker/internal/storage"
	"calorie-tracker/internal/tracker"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

func main() {
	configPath := flag.String("config", os.Getenv("CONFIG_PATH"), "Path to YAML config file")
	flag.Parse()

	if err := run(*configPath); err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
}

func run(configPath string) error {
	cfg, err := config.Load(configPath, os.Getenv)
	if err != nil {
		return err
	}

	logger := logging.New(cfg.LogLevel, os.Stderr)
	slog.SetDefault(logger)

	store, err := storage.Open(cfg.Storage.Backend, cfg.Storage.Path, logger)
	if err != nil {
		return fmt.Errorf("failed to open store: %w", err)
	}
	defer store.Close()

	policy, err := auth.NewPasswordPolicy(cfg.PasswordMode)
	if err != nil {
		return err
	}
	gate := auth.NewGate(store, policy)

	if err := seedAdmin(store, gate, cfg.Admin, logger); err != nil {
		return err
	}

	cat, err := catalog.Load(cfg.Catalog.Path, logger)
	if err != nil {
		return fmt.Errorf("failed to load catalog: %w", err)
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	if cfg.Catalog.Watch {
		go func() {
			if err := cat.Watch(ctx); err != nil {
				logger.Warn("Catalog watcher stopped", "error", err)
			}
		}()
	}

	reg := prometheus.NewRegistry()
	reg.MustRegister(collectors.NewGoCollector(), collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}))
	m := metrics.New(reg)

	trk := tracker.New(store, cat, cfg.Goals, tracker.WithMetrics(m), tracker.WithLogger(logger))

	h := handlers.NewHandlers(handlers.Deps{
		Gate:     gate,
		Sessions: auth.NewSessions(),
		Tracker:  trk,
		Logger:   logger,
		Metrics:  m,
	}, cfg.Web.TemplateDir, cfg.Web.SecureCookie)

	mux := setupRouter(h, cfg.Web.StaticDir)
	mux.Handle("GET /metrics", promhttp.HandlerFor(reg, promhttp.HandlerOpts{}))

	srv := &http.Server{
		Addr:              cfg.Addr,
		Handler:           h.LogRequests(mux),
		ReadHeaderTimeout: 10 * time.Second,
	}

	errCh := make(chan error, 1)
	go func() {
		logger.Info("Server starting", "addr", cfg.Addr, "backend", cfg.Storage.Backend, "store", cfg.Storage.Path)
		errCh <- srv.ListenAndServe()
	}()

	select {
	case err := <-errCh:
		if !errors.Is(err, http.ErrServerClosed) {
			return err
		}
		return nil
	case <-ctx.Done():
	}

	logger.Info("Shutting down")
	shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	return srv.Shutdown(shutdownCtx)
}

// seedAdmin creates the configured account when the store has no users yet.
func seedAdmin(store storage.Store, gate *auth.Gate, admin config.AdminConfig, logger *slog.Logger) error {
	if admin.User == "" || admin.Password == "" {
		return nil
	}
	count, err := store.UserCount()
	if err != nil {
		return fmt.Errorf("failed to count users: %w", err)
	}
	if count > 0 {
		return nil
	}
	if err := gate.Signup(admin.User, admin.Password); err != nil {
		return fmt.Errorf("failed to seed admin user: %w", err)
	}
	logger.Info("Seeded admin user", "user", admin.User)
	return nil
}

func setupRouter(h *handlers.Handlers, staticDir string) *http.ServeMux {
	mux := http.NewServeMux()

	// Static files
	fs := http.FileServer(http.Dir(staticDir))
	mux.Handle("GET /static/", http.StripPrefix("/static/", fs))

	// Public routes
	mux.HandleFunc("GET /login", h.LoginForm)
	mux.HandleFunc("POST /login", h.Login)
	mux.HandleFunc("GET /signup", h.SignupForm)
	mux.HandleFunc("POST /signup", h.Signup)
	mux.HandleFunc("POST /logout", h.Logout)

	// Protected routes
	mux.Handle("GET /{$}", h.AuthMiddleware(http.RedirectHandler("/log", http.StatusFound)))
	mux.Handle("GET /log", h.AuthMiddleware(http.HandlerFunc(h.ShowLog)))
	mux.Handle("POST /log/foods", h.AuthMiddleware(http.HandlerFunc(h.AddFood)))
	mux.Handle("POST /log/catalog", h.AuthMiddleware(http.HandlerFunc(h.AddCatalogFood)))
	mux.Handle("POST /log/reset", h.AuthMiddleware(http.HandlerFunc(h.ResetLog)))
	mux.Handle("GET /stats", h.AuthMiddleware(http.HandlerFunc(h.Statistics)))
	mux.Handle("GET /api/summary", h.AuthMiddleware(http.HandlerFunc(h.SummaryJSON)))

	return mux
}
