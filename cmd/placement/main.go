package main

import (
	"context"
	"errors"
	"fmt"
	"io/fs"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"strings"
	"syscall"
	"time"

	"github.com/google/uuid"
	"github.com/joho/godotenv"
	"github.com/redis/go-redis/v9"

	"github.com/example/placement-portal/internal/application"
	"github.com/example/placement-portal/internal/config"
	"github.com/example/placement-portal/internal/events"
	httptransport "github.com/example/placement-portal/internal/http"
	"github.com/example/placement-portal/internal/logging"
	"github.com/example/placement-portal/internal/persistence"
	"github.com/example/placement-portal/internal/persistence/memory"
	"github.com/example/placement-portal/internal/persistence/mongo"
	"github.com/example/placement-portal/internal/persistence/sqlite"
	"github.com/example/placement-portal/internal/ratelimit"
	"github.com/example/placement-portal/internal/repository"
	"github.com/example/placement-portal/internal/security"
	"github.com/example/placement-portal/internal/workflow"
)

const serviceName = "placement-portal"

func main() {
	envErr := godotenv.Load()

	cfg, err := config.Load()
	if err != nil {
		slog.New(slog.NewJSONHandler(os.Stderr, nil)).Error("failed to load configuration", "error", err)
		os.Exit(1)
	}

	logger := logging.New(os.Stdout, cfg.LogLevel, serviceName)
	slog.SetDefault(logger)
	if envErr != nil && !errors.Is(envErr, fs.ErrNotExist) {
		logger.Warn("failed to read .env file", "error", envErr)
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	if err := run(ctx, cfg, logger); err != nil {
		logger.Error("placement portal stopped", "error", err)
		os.Exit(1)
	}
}

func run(ctx context.Context, cfg config.Config, logger *slog.Logger) error {
	store, err := openStore(ctx, cfg, logger)
	if err != nil {
		return err
	}
	defer func() {
		if cerr := store.Close(); cerr != nil {
			logger.Error("failed to close storage", "error", cerr)
		}
	}()

	if err := store.Migrate(ctx); err != nil {
		return fmt.Errorf("apply migrations: %w", err)
	}

	var publisher application.EventPublisher
	if cfg.RabbitMQURL != "" {
		amqpPublisher, err := events.Dial(cfg.RabbitMQURL, cfg.EventsQueue, logger.With("component", "events"))
		if err != nil {
			logger.Error("event publishing disabled", "error", err)
		} else {
			publisher = amqpPublisher
			defer func() {
				if cerr := amqpPublisher.Close(); cerr != nil {
					logger.Error("failed to close event publisher", "error", cerr)
				}
			}()
		}
	}

	limiter, closeLimiter := newLimiter(ctx, cfg, logger)
	defer closeLimiter()

	handler, err := newHandler(cfg, store, publisher, limiter, time.Now, logger)
	if err != nil {
		return err
	}

	server := &http.Server{
		Addr:              cfg.Addr(),
		Handler:           handler,
		ReadHeaderTimeout: 10 * time.Second,
		ReadTimeout:       30 * time.Second,
		WriteTimeout:      30 * time.Second,
		IdleTimeout:       60 * time.Second,
	}

	go func() {
		<-ctx.Done()
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
		defer cancel()
		if err := server.Shutdown(shutdownCtx); err != nil && !errors.Is(err, http.ErrServerClosed) {
			logger.Error("failed to shutdown server", "error", err)
		}
	}()

	logger.Info("placement API listening", "addr", server.Addr, "store", cfg.Store)
	if err := server.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
		return fmt.Errorf("serve: %w", err)
	}
	return nil
}

func openStore(ctx context.Context, cfg config.Config, logger *slog.Logger) (persistence.Store, error) {
	storeLogger := logger.With("component", "store", "store", cfg.Store)
	switch cfg.Store {
	case config.StoreMemory:
		storeLogger.Warn("using in-memory store, data is lost on exit")
		return memory.New(), nil
	case config.StoreMongo:
		storage, err := mongo.Connect(ctx, mongo.Config{URI: cfg.MongoURI, Database: cfg.MongoDatabase}, storeLogger)
		if err != nil {
			return nil, fmt.Errorf("connect mongo: %w", err)
		}
		return storage, nil
	default:
		storage, err := sqlite.Open(cfg.SQLiteDSN, storeLogger)
		if err != nil {
			return nil, fmt.Errorf("open sqlite: %w", err)
		}
		return storage, nil
	}
}

// newLimiter shares counters through Redis when configured and reachable,
// falling back to a process local limiter.
func newLimiter(ctx context.Context, cfg config.Config, logger *slog.Logger) (ratelimit.Limiter, func()) {
	local := ratelimit.NewMemoryLimiter(time.Now)
	if cfg.RedisAddr == "" {
		return local, func() {}
	}

	opts, err := redisOptions(cfg.RedisAddr)
	if err != nil {
		logger.Error("redis address invalid, using in-process rate limiter", "error", err)
		return local, func() {}
	}
	client := redis.NewClient(opts)

	pingCtx, cancel := context.WithTimeout(ctx, 2*time.Second)
	defer cancel()
	if err := client.Ping(pingCtx).Err(); err != nil {
		logger.Error("redis ping failed, using in-process rate limiter", "error", err)
		_ = client.Close()
		return local, func() {}
	}

	return ratelimit.NewRedisLimiter(client, serviceName+":ratelimit:"), func() {
		if err := client.Close(); err != nil {
			logger.Error("redis close failed", "error", err)
		}
	}
}

func redisOptions(addr string) (*redis.Options, error) {
	if strings.HasPrefix(addr, "redis://") || strings.HasPrefix(addr, "rediss://") {
		return redis.ParseURL(addr)
	}
	return &redis.Options{Addr: addr}, nil
}

func newHandler(cfg config.Config, store persistence.Store, publisher application.EventPublisher, limiter ratelimit.Limiter, now func() time.Time, logger *slog.Logger) (http.Handler, error) {
	tokens, err := security.NewJWTIssuer(cfg.JWTSecret, cfg.TokenTTL, now)
	if err != nil {
		return nil, fmt.Errorf("token issuer: %w", err)
	}

	repos := repository.NewSet(store)
	machine := workflow.NewMachine(workflow.WithStrictTerminal(cfg.StrictTerminal))

	authService := application.NewAuthServiceWithLogger(repos.Users, tokens, application.HashPassword, application.VerifyPassword, uuid.NewString, now, logger)
	profileService := application.NewProfileServiceWithLogger(repos.Users, now, logger)
	jobService := application.NewJobServiceWithLogger(repos.Jobs, uuid.NewString, now, logger)
	applicationService := application.NewApplicationServiceWithLogger(repos.Applications, repos.Jobs, repos.Users, machine, publisher, uuid.NewString, now, logger)
	statsService := application.NewStatsServiceWithLogger(repos.Users, repos.Jobs, repos.Applications, application.StatsOptions{
		CacheTTL:     cfg.StatsCacheTTL,
		PushInterval: cfg.StatsPushInterval,
	}, now, logger)
	messageService := application.NewMessageServiceWithLogger(repos.Messages, uuid.NewString, now, logger)

	return httptransport.NewRouter(httptransport.RouterConfig{
		Health:       httptransport.NewHealthHandler(store, now, logger),
		Auth:         httptransport.NewAuthHandler(authService, logger),
		Profiles:     httptransport.NewProfileHandler(profileService, logger),
		Jobs:         httptransport.NewJobHandler(jobService, logger),
		Applications: httptransport.NewApplicationHandler(applicationService, logger),
		Stats:        httptransport.NewStatsHandler(statsService, logger),
		Messages:     httptransport.NewMessageHandler(messageService, logger),
		Tokens:       authService,
		Limiter:      limiter,
		RateLimit:    cfg.RateLimit,
		RateWindow:   httptransport.DefaultRateWindow,
		Logger:       logger,
		Middleware: []func(http.Handler) http.Handler{
			httptransport.RequestLogger(logger),
			httptransport.CORS(cfg.CORSOrigin),
		},
	}), nil
}
