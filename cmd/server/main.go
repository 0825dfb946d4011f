package main

import (
	"context"
	"database/sql"
	"errors"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/go-chi/chi/v5"
	chiMiddleware "github.com/go-chi/chi/v5/middleware"
	"github.com/go-chi/cors"
	_ "github.com/lib/pq"
	"github.com/pressly/goose/v3"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"github.com/redis/go-redis/v9"

	"Chirp/internal/api/middleware"
	"Chirp/internal/api/routes"
	"Chirp/internal/auth"
	"Chirp/internal/config"
	"Chirp/internal/core/livefeed"
	"Chirp/internal/core/posts"
	"Chirp/internal/core/ratelimit"
	"Chirp/internal/core/users"
	postgresRepo "Chirp/internal/db/postgres"
)

func main() {
	cfg, err := config.Load()
	if err != nil {
		slog.Error("invalid configuration", slog.String("error", err.Error()))
		os.Exit(1)
	}

	setupLogger(cfg)

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	if err := run(ctx, cfg); err != nil {
		slog.Error("server stopped with error", slog.String("error", err.Error()))
		os.Exit(1)
	}
}

// setupLogger installs the default slog logger: text in development, JSON otherwise
func setupLogger(cfg *config.Config) {
	opts := &slog.HandlerOptions{Level: cfg.LogLevel}
	var handler slog.Handler
	if cfg.IsDevEnv {
		handler = slog.NewTextHandler(os.Stdout, opts)
	} else {
		handler = slog.NewJSONHandler(os.Stdout, opts)
	}
	slog.SetDefault(slog.New(handler))
}

func run(ctx context.Context, cfg *config.Config) error {
	db, err := sql.Open("postgres", cfg.DatabaseURL)
	if err != nil {
		return err
	}
	defer func() {
		if closeErr := db.Close(); closeErr != nil {
			slog.Warn("failed to close database", slog.String("error", closeErr.Error()))
		}
	}()

	if err := db.PingContext(ctx); err != nil {
		return err
	}
	slog.Info("connected to AppView database")

	// Run migrations
	if err := goose.SetDialect("postgres"); err != nil {
		return err
	}
	if err := goose.Up(db, "internal/db/migrations"); err != nil {
		return err
	}
	slog.Info("migrations completed successfully")

	// Write limiter: Redis when configured, in-process otherwise
	store, closeStore, err := newRateLimitStore(ctx, cfg)
	if err != nil {
		return err
	}
	defer closeStore()

	limiter, err := ratelimit.New(store, cfg.RateLimit)
	if err != nil {
		return err
	}

	verifier, err := newVerifier(ctx, cfg)
	if err != nil {
		return err
	}
	authMiddleware := middleware.NewAuthMiddleware(verifier)

	// Initialize repositories and services
	hub := livefeed.NewHub(livefeed.DefaultBuffer)
	userService := users.NewUserService(postgresRepo.NewUserRepository(db))
	postService := posts.NewPostService(postgresRepo.NewPostRepository(db), limiter, hub)

	r := chi.NewRouter()
	r.Use(chiMiddleware.RequestID)
	r.Use(chiMiddleware.RealIP)
	r.Use(chiMiddleware.Logger)
	r.Use(chiMiddleware.Recoverer)

	if len(cfg.CORSOrigins) > 0 {
		r.Use(cors.Handler(cors.Options{
			AllowedOrigins:   cfg.CORSOrigins,
			AllowedMethods:   []string{http.MethodGet, http.MethodPost, http.MethodOptions},
			AllowedHeaders:   []string{"Authorization", "Content-Type"},
			ExposedHeaders:   []string{"Retry-After"},
			AllowCredentials: true,
			MaxAge:           300,
		}))
	}

	ipLimiter := middleware.NewIPRateLimiter(cfg.IPRateLimitRPS, cfg.IPRateLimitBurst, 10*time.Minute)
	defer ipLimiter.Close()
	r.Use(ipLimiter.Middleware)

	// Mount XRPC routes
	routes.RegisterPostRoutes(r, postService, userService, authMiddleware)
	routes.RegisterActorRoutes(r, userService)
	routes.RegisterStreamRoutes(r, hub, cfg.CORSOrigins)

	r.Get("/health", func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusOK)
		_, _ = w.Write([]byte("OK"))
	})
	r.Handle("/metrics", promhttp.Handler())

	server := &http.Server{
		Addr:              ":" + cfg.Port,
		Handler:           r,
		ReadTimeout:       cfg.ReadTimeout,
		ReadHeaderTimeout: 5 * time.Second,
		IdleTimeout:       120 * time.Second,
		// WriteTimeout does not apply to hijacked WebSocket connections
		WriteTimeout: cfg.WriteTimeout,
	}

	errCh := make(chan error, 1)
	go func() {
		slog.Info("Chirp AppView starting",
			slog.String("port", cfg.Port),
			slog.Bool("redis_rate_limit", cfg.RedisURL != ""),
			slog.Bool("rate_limit_fail_open", cfg.RateLimit.FailOpen),
		)
		errCh <- server.ListenAndServe()
	}()

	select {
	case err := <-errCh:
		if errors.Is(err, http.ErrServerClosed) {
			return nil
		}
		return err
	case <-ctx.Done():
	}

	slog.Info("shutting down")
	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	return server.Shutdown(shutdownCtx)
}

func newRateLimitStore(ctx context.Context, cfg *config.Config) (ratelimit.Store, func(), error) {
	if cfg.RedisURL == "" {
		slog.Warn("REDIS_URL not set, post rate limits are per process")
		mem := ratelimit.NewMemoryStore(cfg.RateLimit.Window)
		return mem, mem.Close, nil
	}

	opts, err := redis.ParseURL(cfg.RedisURL)
	if err != nil {
		return nil, nil, err
	}
	client := redis.NewClient(opts)
	if err := client.Ping(ctx).Err(); err != nil {
		// Not fatal: the limiter's fail-closed/fail-open policy covers outages
		slog.Warn("redis unreachable at startup", slog.String("error", err.Error()))
	}
	return ratelimit.NewRedisStore(client), func() { _ = client.Close() }, nil
}

func newVerifier(ctx context.Context, cfg *config.Config) (*auth.Verifier, error) {
	var keys auth.KeyFetcher
	if cfg.AuthJWKSURL != "" {
		fetcher, err := auth.NewJWKSKeyFetcher(ctx, cfg.AuthJWKSURL, 15*time.Minute)
		if err != nil {
			return nil, err
		}
		keys = fetcher
	}
	return auth.NewVerifier(auth.VerifierConfig{
		Issuer:      cfg.AuthIssuer,
		HS256Secret: []byte(cfg.AuthHS256Secret),
	}, keys), nil
}
