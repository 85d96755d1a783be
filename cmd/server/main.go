package main

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"math/rand/v2"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/redis/go-redis/v9"
	"golang.org/x/sync/errgroup"

	"github.com/tensortrade/council-dashboard/internal/backend"
	"github.com/tensortrade/council-dashboard/internal/config"
	"github.com/tensortrade/council-dashboard/internal/dashboard"
	"github.com/tensortrade/council-dashboard/internal/metrics"
	"github.com/tensortrade/council-dashboard/internal/render"
	"github.com/tensortrade/council-dashboard/internal/session"
	"github.com/tensortrade/council-dashboard/internal/store"
	"github.com/tensortrade/council-dashboard/web"
)

const (
	// Non-analysis routes keep a short budget; analyze gets the backend
	// timeout plus headroom to write the response.
	requestTimeout  = 30 * time.Second
	analyzeHeadroom = 15 * time.Second
	shutdownTimeout = 5 * time.Second
	sweepInterval   = 5 * time.Minute
)

func main() {
	cfg := config.Load()

	logger := slog.New(slog.NewJSONHandler(os.Stdout, &slog.HandlerOptions{Level: cfg.LogLevel}))
	slog.SetDefault(logger)

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	// --- Initialize store ---
	st, cleanup, err := openStore(ctx, cfg)
	if err != nil {
		slog.Error("store init failed", "err", err)
		os.Exit(1)
	}
	defer cleanup()

	renderer, err := render.New()
	if err != nil {
		slog.Error("template init failed", "err", err)
		os.Exit(1)
	}

	client := backend.NewClient(
		backend.WithTimeout(cfg.AnalyzeTimeout),
		backend.WithRatePerMinute(cfg.BackendRatePerMin),
	)
	sessions := session.NewManager(st, cfg.SessionTTL)

	// --- Pressure feed ---
	board := dashboard.NewPressureBoard(rand.New(rand.NewPCG(uint64(time.Now().UnixNano()), 0)))
	wsHub := dashboard.NewWSHub(board.Message)
	board.Attach(wsHub)

	svc := dashboard.NewService(sessions, client, renderer, st, board, dashboard.Options{
		BackendURL:     cfg.BackendURL,
		DefaultUserID:  cfg.DefaultUserID,
		AnalyzeTimeout: cfg.AnalyzeTimeout,
		WSPath:         "/ws",
	})

	// --- HTTP router ---
	r := chi.NewRouter()
	r.Use(middleware.Logger)
	r.Use(middleware.Recoverer)
	r.Use(middleware.RequestID)
	r.Use(middleware.RealIP)
	r.Use(metrics.Middleware)

	r.Get("/health", func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		w.Write([]byte(`{"status":"ok","service":"council-dashboard"}`))
	})
	r.Handle("/metrics", metrics.Handler())
	r.Get("/ws", wsHub.HandleWS)
	r.Handle("/static/*", web.Static())

	r.Group(func(r chi.Router) {
		r.Use(middleware.Timeout(requestTimeout))
		r.Get("/", svc.Index)
		r.Post("/api/sessions/{sessionID}/share/{platform}", svc.Share)
		r.Get("/api/sessions/{sessionID}/summary.md", svc.Summary)
		r.Get("/api/history", svc.ListHistory)
		r.Get("/api/history/{runID}/summary.md", svc.HistorySummary)
	})
	r.With(middleware.Timeout(cfg.AnalyzeTimeout+analyzeHeadroom)).
		Post("/api/sessions/{sessionID}/analyze", svc.Analyze)

	// --- Server ---
	srv := &http.Server{
		Addr:         ":" + cfg.Port,
		Handler:      r,
		ReadTimeout:  10 * time.Second,
		WriteTimeout: cfg.AnalyzeTimeout + 2*analyzeHeadroom,
		IdleTimeout:  60 * time.Second,
	}

	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error { return wsHub.Run(gctx) })
	g.Go(func() error { return board.Run(gctx, cfg.TickerInterval) })
	g.Go(func() error { return sessions.Run(gctx, sweepInterval) })
	g.Go(func() error {
		slog.Info("council-dashboard listening", "port", cfg.Port, "backend_url", cfg.BackendURL)
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			return fmt.Errorf("serve: %w", err)
		}
		return nil
	})
	g.Go(func() error {
		<-gctx.Done()
		slog.Info("shutting down council-dashboard...")
		shutdownCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
		defer cancel()
		return srv.Shutdown(shutdownCtx)
	})

	if err := g.Wait(); err != nil && !errors.Is(err, context.Canceled) {
		slog.Error("server error", "err", err)
		os.Exit(1)
	}
	fmt.Println("council-dashboard stopped")
}

// openStore picks Postgres when DATABASE_URL is set, optionally fronted by
// Redis, and falls back to memory otherwise.
func openStore(ctx context.Context, cfg *config.Config) (store.Store, func(), error) {
	if cfg.DatabaseURL == "" {
		slog.Warn("DATABASE_URL not set, using in-memory store (sessions will not survive restart)")
		return store.NewMemoryStore(), func() {}, nil
	}

	var cleanup []func()
	closeAll := func() {
		for i := len(cleanup) - 1; i >= 0; i-- {
			cleanup[i]()
		}
	}

	pool, err := pgxpool.New(ctx, cfg.DatabaseURL)
	if err != nil {
		return nil, nil, fmt.Errorf("database connection: %w", err)
	}
	cleanup = append(cleanup, pool.Close)

	pg := store.NewPostgresStore(pool)
	if err := pg.EnsureSchema(ctx); err != nil {
		closeAll()
		return nil, nil, fmt.Errorf("ensure schema: %w", err)
	}
	slog.Info("connected to PostgreSQL")

	var st store.Store = pg
	if cfg.RedisURL != "" {
		opt, err := redis.ParseURL(cfg.RedisURL)
		if err != nil {
			closeAll()
			return nil, nil, fmt.Errorf("invalid REDIS_URL: %w", err)
		}
		rdb := redis.NewClient(opt)
		cleanup = append(cleanup, func() { rdb.Close() })
		st = store.NewCachedStore(st, rdb, cfg.CacheTTL)
		slog.Info("Redis cache enabled", "ttl", cfg.CacheTTL)
	}
	return st, closeAll, nil
}
