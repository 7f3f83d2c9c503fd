package main

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"log/slog"
	"net"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/go-chi/chi/v5"
	chiMiddleware "github.com/go-chi/chi/v5/middleware"
	"github.com/go-chi/cors"
	_ "github.com/lib/pq"

	"Swipeline/internal/api/handlers/stream"
	"Swipeline/internal/api/middleware"
	"Swipeline/internal/api/routes"
	"Swipeline/internal/config"
	"Swipeline/internal/core/account"
	"Swipeline/internal/core/feed"
	"Swipeline/internal/core/messages"
	"Swipeline/internal/core/posts"
	"Swipeline/internal/core/ratings"
	"Swipeline/internal/core/users"
	"Swipeline/internal/db/migrations"
	postgresRepo "Swipeline/internal/db/postgres"
	"Swipeline/internal/metrics"
	"Swipeline/internal/realtime"
	"Swipeline/internal/supabase"
)

// repositories is the storage surface shared by both backends
type repositories struct {
	posts    posts.Repository
	ratings  ratings.Repository
	users    users.UserRepository
	messages messages.Repository
	// listen feeds backend insert events into the hub until ctx is done
	listen func(ctx context.Context) error
	close  func() error
}

func main() {
	cfg, err := config.Load()
	if err != nil {
		slog.Error("failed to load config", "error", err)
		os.Exit(1)
	}

	logger := cfg.NewLogger(os.Stdout)
	slog.SetDefault(logger)

	if err := run(cfg, logger); err != nil {
		logger.Error("server exited", "error", err)
		os.Exit(1)
	}
}

func run(cfg *config.Config, logger *slog.Logger) error {
	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	hub := realtime.NewHub(logger)

	repos, err := openBackend(cfg, hub, logger)
	if err != nil {
		return err
	}
	defer func() {
		if err := repos.close(); err != nil {
			logger.Warn("failed to close backend", "error", err)
		}
	}()

	go func() {
		if err := repos.listen(ctx); err != nil && !errors.Is(err, context.Canceled) {
			logger.Error("change feed stopped", "error", err)
		}
	}()

	// Services
	authorCache := users.NewAuthorCache(cfg.AuthorCacheSize, cfg.AuthorCacheTTL)
	userService := users.NewUserService(repos.users, authorCache, logger)
	postService := posts.NewPostService(repos.posts, userService, logger)
	recorder := ratings.NewRecorder(repos.ratings, logger)
	loader := feed.NewLoader(repos.posts, repos.ratings)
	messageService := messages.NewMessageService(repos.messages, repos.ratings, userService, hub, logger)
	accountService := account.NewService(userService, repos.posts, repos.ratings, logger)

	r := chi.NewRouter()

	r.Use(chiMiddleware.RequestID)
	r.Use(chiMiddleware.RealIP)
	r.Use(chiMiddleware.Logger)
	r.Use(chiMiddleware.Recoverer)
	r.Use(cors.Handler(cors.Options{
		AllowedOrigins:   cfg.CORSOrigins,
		AllowedMethods:   []string{"GET", "POST", "PUT", "OPTIONS"},
		AllowedHeaders:   []string{"Accept", "Authorization", "Content-Type", "X-Request-ID"},
		AllowCredentials: true,
		MaxAge:           300,
	}))

	rateLimiter := middleware.NewRateLimiter(cfg.RateLimitRPS, cfg.RateLimitBurst, 10*time.Minute)
	r.Use(rateLimiter.Middleware)
	go func() {
		ticker := time.NewTicker(5 * time.Minute)
		defer ticker.Stop()
		for {
			select {
			case <-ctx.Done():
				return
			case <-ticker.C:
				if n := rateLimiter.Cleanup(); n > 0 {
					logger.Debug("rate limiter cleanup", "removed", n)
				}
			}
		}
	}()

	authMiddleware := middleware.NewAuthMiddleware(cfg.JWTSecret, logger)
	upgrader := stream.NewUpgrader(cfg.CORSOrigins)

	deps := feed.Deps{
		Loader:     loader,
		Ratings:    recorder,
		Subscriber: hub,
		Authors:    userService,
		Logger:     logger,
	}
	opts := feed.Options{BannerDuration: cfg.BannerDuration}

	routes.RegisterFeedRoutes(r, deps, opts, upgrader, authMiddleware, logger)
	routes.RegisterPostRoutes(r, postService, recorder, authMiddleware)
	routes.RegisterUserRoutes(r, userService, accountService, authMiddleware)
	routes.RegisterMessageRoutes(r, messageService, upgrader, authMiddleware, logger)

	r.Handle("/metrics", metrics.Handler())
	r.Get("/health", func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusOK)
		_, _ = w.Write([]byte("OK"))
	})

	// Sockets hold their request context; cancelling the base context ends them on shutdown
	baseCtx, cancelBase := context.WithCancel(context.Background())
	defer cancelBase()

	server := &http.Server{
		Addr:              ":" + cfg.Port,
		Handler:           r,
		ReadHeaderTimeout: 10 * time.Second,
		BaseContext:       func(net.Listener) context.Context { return baseCtx },
	}

	errCh := make(chan error, 1)
	go func() {
		logger.Info("swipeline starting", "port", cfg.Port, "backend", cfg.Backend)
		if err := server.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			errCh <- err
		}
		close(errCh)
	}()

	select {
	case err := <-errCh:
		return fmt.Errorf("server failed: %w", err)
	case <-ctx.Done():
	}

	logger.Info("shutting down")
	cancelBase()

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 15*time.Second)
	defer cancel()
	if err := server.Shutdown(shutdownCtx); err != nil {
		return fmt.Errorf("shutdown failed: %w", err)
	}
	return nil
}

func openBackend(cfg *config.Config, sink realtime.Sink, logger *slog.Logger) (*repositories, error) {
	switch cfg.Backend {
	case config.BackendSupabase:
		client, err := supabase.New(supabase.Config{URL: cfg.SupabaseURL, APIKey: cfg.SupabaseKey})
		if err != nil {
			return nil, fmt.Errorf("failed to create supabase client: %w", err)
		}
		connector, err := supabase.NewRealtimeConnector(cfg.SupabaseURL, cfg.SupabaseKey, sink, logger)
		if err != nil {
			return nil, fmt.Errorf("failed to create realtime connector: %w", err)
		}
		logger.Info("using supabase backend", "url", cfg.SupabaseURL)
		return &repositories{
			posts:    supabase.NewPostRepository(client),
			ratings:  supabase.NewRatingRepository(client),
			users:    supabase.NewUserRepository(client),
			messages: supabase.NewMessageRepository(client),
			listen:   connector.Start,
			close:    func() error { return nil },
		}, nil

	default:
		db, err := sql.Open("postgres", cfg.DatabaseURL)
		if err != nil {
			return nil, fmt.Errorf("failed to connect to database: %w", err)
		}
		if err := db.Ping(); err != nil {
			_ = db.Close()
			return nil, fmt.Errorf("failed to ping database: %w", err)
		}
		logger.Info("connected to database")

		if err := migrations.Up(db); err != nil {
			_ = db.Close()
			return nil, fmt.Errorf("failed to run migrations: %w", err)
		}
		logger.Info("migrations completed successfully")

		connector := postgresRepo.NewNotifyConnector(cfg.DatabaseURL, db, sink, logger)
		return &repositories{
			posts:    postgresRepo.NewPostRepository(db),
			ratings:  postgresRepo.NewRatingRepository(db),
			users:    postgresRepo.NewUserRepository(db),
			messages: postgresRepo.NewMessageRepository(db),
			listen:   connector.Start,
			close:    db.Close,
		}, nil
	}
}
