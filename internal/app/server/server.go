package server

import (
	"context"
	"log"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"

	"payrun/internal/domain/audit"
	"payrun/internal/domain/payrun"
	"payrun/internal/platform/config"
	"payrun/internal/platform/crypto"
	"payrun/internal/platform/db"
	"payrun/internal/platform/jobs"
	"payrun/internal/platform/metrics"
	"payrun/internal/transport/http/api"
	payrunhandler "payrun/internal/transport/http/handlers/payrun"
	"payrun/internal/transport/http/middleware"
)

type App struct {
	Config config.Config
	DB     *db.Pool
	Router http.Handler
}

// New wires the full application against an existing pool. Run uses it,
// and integration tests build an App directly to get the real router.
func New(ctx context.Context, cfg config.Config, pool *db.Pool) (*App, error) {
	cryptoSvc, err := crypto.New(cfg.DataEncryptionKey)
	if err != nil {
		return nil, err
	}

	jobsSvc := jobs.New(pool)
	jobsSvc.Start(ctx)

	collector := metrics.New()
	store := &payrun.Store{DB: pool}
	service := payrun.NewService(store,
		payrun.WithRetryQueue(jobsSvc),
		payrun.WithCrypto(cryptoSvc),
		payrun.WithPayslipDir(cfg.PayslipDir),
		payrun.WithTimeouts(cfg.PopulateTimeout, cfg.ReconcileTimeout),
	)
	auditSvc := audit.New(pool)
	idemStore := middleware.NewIdempotencyStore(pool)

	router := chi.NewRouter()
	router.Use(middleware.RequestID)
	router.Use(middleware.Logger)
	router.Use(middleware.Recoverer)
	router.Use(middleware.SecureHeaders(cfg.Environment == "production"))
	router.Use(middleware.BodyLimit(cfg.MaxBodyBytes))
	router.Use(middleware.Auth(cfg.JWTSecret))
	router.Use(middleware.RateLimit(cfg.RateLimitPerMinute, time.Minute))
	if cfg.MetricsEnabled {
		router.Use(middleware.Metrics(collector))
	}

	router.Get("/healthz", func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusOK)
		_, _ = w.Write([]byte("ok"))
	})

	router.Get("/readyz", func(w http.ResponseWriter, r *http.Request) {
		ctx, cancel := context.WithTimeout(r.Context(), 2*time.Second)
		defer cancel()
		if err := pool.Ping(ctx); err != nil {
			http.Error(w, "db not ready", http.StatusServiceUnavailable)
			return
		}
		w.WriteHeader(http.StatusOK)
		_, _ = w.Write([]byte("ready"))
	})

	router.Get("/metrics", func(w http.ResponseWriter, r *http.Request) {
		api.Success(w, collector.Snapshot(), middleware.GetRequestID(r.Context()))
	})

	router.Route("/api/v1", func(r chi.Router) {
		handler := payrunhandler.NewHandler(service, auditSvc, idemStore, collector)
		handler.RegisterRoutes(r)
	})

	return &App{Config: cfg, DB: pool, Router: router}, nil
}

func Run() {
	cfg := config.Load()
	if err := cfg.Validate(); err != nil {
		log.Fatalf("invalid configuration: %v", err)
	}

	ctx := context.Background()
	pool, err := db.Connect(ctx, cfg)
	if err != nil {
		log.Fatalf("db connect failed: %v", err)
	}
	defer pool.Close()

	if cfg.RunMigrations {
		if err := db.Migrate(ctx, pool, cfg.MigrationsDir); err != nil {
			log.Fatalf("migrations failed: %v", err)
		}
	}
	if cfg.RunSeed {
		if err := db.Seed(ctx, pool); err != nil {
			log.Fatalf("seed failed: %v", err)
		}
	}

	app, err := New(ctx, cfg, pool)
	if err != nil {
		log.Fatalf("app init failed: %v", err)
	}

	log.Printf("payrun server listening on %s", cfg.Addr)
	if err := http.ListenAndServe(cfg.Addr, app.Router); err != nil {
		log.Fatalf("server failed: %v", err)
	}
}
