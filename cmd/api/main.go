package main

import (
	"context"
	"fmt"
	"log"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/fiber/v2/middleware/adaptor"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"go.uber.org/zap"

	httptransport "github.com/spec-kit/vendor-signup-service/internal/api/http"
	"github.com/spec-kit/vendor-signup-service/internal/api/http/handlers"
	"github.com/spec-kit/vendor-signup-service/internal/auth"
	"github.com/spec-kit/vendor-signup-service/internal/config"
	"github.com/spec-kit/vendor-signup-service/internal/events"
	"github.com/spec-kit/vendor-signup-service/internal/observability"
	"github.com/spec-kit/vendor-signup-service/internal/persistence"
	"github.com/spec-kit/vendor-signup-service/internal/repository"
	"github.com/spec-kit/vendor-signup-service/internal/service"
	"github.com/spec-kit/vendor-signup-service/internal/worker"
)

func main() {
	cfg, err := config.Load()
	if err != nil {
		log.Fatalf("failed to load config: %v", err)
	}

	logger, err := observability.NewLogger(cfg.App, cfg.Logger)
	if err != nil {
		log.Fatalf("failed to init logger: %v", err)
	}
	defer logger.Sync() //nolint:errcheck

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	stores, err := openStores(ctx, cfg, logger)
	if err != nil {
		logger.Fatal("failed to open signup store", zap.Error(err))
	}
	defer stores.close()

	if cfg.Store.SeedDemo {
		seeded, err := repository.SeedSignupRequests(ctx, stores.requests, repository.DemoSignupRequests(time.Now().UTC()))
		if err != nil {
			logger.Fatal("failed to seed signup requests", zap.Error(err))
		}
		logger.Info("demo signup requests seeded", zap.Int("count", seeded))
	}

	metrics := observability.NewMetrics(prometheus.DefaultRegisterer)
	dispatcher := events.NewInMemoryDispatcher()

	notificationService := service.NewNotificationService(dispatcher, logger, cfg.Notification, nil)
	workerCtx, stopWorker := context.WithCancel(ctx)
	defer stopWorker()
	workerDone := worker.StartNotificationWorker(workerCtx, notificationService, logger)

	signupService := service.NewSignupRequestService(service.SignupRequestDependencies{
		RequestRepo: stores.requests,
		HistoryRepo: stores.history,
		Dispatcher:  dispatcher,
		Metrics:     metrics,
		Logger:      logger,
	})

	bootstrap, err := service.BootstrapAdmin(cfg.Auth)
	if err != nil {
		logger.Fatal("failed to bootstrap admin", zap.Error(err))
	}
	adminRepo := repository.NewMemoryAdminRepository(bootstrap)
	authService := service.NewAuthService(*cfg, adminRepo)
	authMiddleware := auth.NewAuthMiddleware(authService.TokenManager(), adminRepo)

	app := fiber.New(fiber.Config{
		AppName:               cfg.App.Name,
		DisableStartupMessage: cfg.App.Env != "development",
	})
	httptransport.RegisterMiddlewares(app, logger, metrics, cfg.App.RequestTimeout())

	httptransport.RegisterRoutes(app, httptransport.RouteConfig{
		Health:         handlers.NewHealthHandler(cfg.App.Name, cfg.App.Version, cfg.Store.Driver, stores.pingers),
		Auth:           handlers.NewAuthHandler(authService),
		SignupRequests: handlers.NewSignupRequestsHandler(signupService),
		AuthMiddleware: authMiddleware,
		LoginLimiter:   httptransport.NewIPRateLimiter(cfg.Auth.LoginRatePerMinute, cfg.Auth.LoginBurst),
		Metrics:        adaptor.HTTPHandler(promhttp.Handler()),
	})

	go func() {
		if err := app.Listen(cfg.App.Addr()); err != nil {
			logger.Fatal("fiber listen", zap.Error(err))
		}
	}()

	waitForShutdown(logger)

	if err := app.ShutdownWithTimeout(10 * time.Second); err != nil {
		logger.Error("shutdown", zap.Error(err))
	}

	stopWorker()
	select {
	case <-workerDone:
	case <-time.After(10 * time.Second):
		logger.Warn("notification worker did not drain before shutdown")
	}
}

type storeSet struct {
	requests repository.SignupRequestRepository
	history  repository.SignupRequestHistoryRepository
	pingers  map[string]handlers.Pinger
	close    func()
}

// openStores builds the signup request and history stores for the configured
// driver. History lives in Postgres only with the postgres driver.
func openStores(ctx context.Context, cfg *config.Config, logger *zap.Logger) (*storeSet, error) {
	set := &storeSet{
		history: repository.NewMemorySignupRequestHistoryRepository(),
		pingers: map[string]handlers.Pinger{},
		close:   func() {},
	}

	switch cfg.Store.Driver {
	case config.StoreDriverPostgres:
		pg, err := persistence.NewPostgres(ctx, cfg.Postgres, cfg.App.Name, logger)
		if err != nil {
			return nil, fmt.Errorf("connect postgres: %w", err)
		}
		if cfg.Postgres.RunMigrations {
			if err := persistence.RunMigrations(ctx, pg.Pool, cfg.Postgres.MigrationsDir, logger); err != nil {
				pg.Close()
				return nil, fmt.Errorf("run migrations: %w", err)
			}
		}
		set.requests = repository.NewSignupRequestRepository(pg.Pool)
		set.history = repository.NewSignupRequestHistoryRepository(pg.Pool)
		set.pingers["postgres"] = pg
		set.close = pg.Close
	case config.StoreDriverRedis:
		rdb := persistence.NewRedis(ctx, cfg.Redis, cfg.App.Name, logger)
		set.requests = repository.NewRedisSignupRequestRepository(rdb.Client, cfg.Redis.KeyPrefix, logger)
		set.pingers["redis"] = rdb
		set.close = rdb.Close
	default:
		var opts []repository.MemoryOption
		if latency := cfg.Store.Latency(); latency > 0 {
			opts = append(opts, repository.WithLatency(latency))
		}
		requests, err := repository.NewMemorySignupRequestRepository(nil, opts...)
		if err != nil {
			return nil, err
		}
		set.requests = requests
	}

	logger.Info("signup store ready", zap.String("driver", cfg.Store.Driver))
	return set, nil
}

func waitForShutdown(logger *zap.Logger) {
	sigCh := make(chan os.Signal, 1)
	signal.Notify(sigCh, syscall.SIGINT, syscall.SIGTERM)

	sig := <-sigCh
	logger.Info("shutting down", zap.String("signal", sig.String()))
}
