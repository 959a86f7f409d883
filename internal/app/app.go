// Package app wires configuration into the running HTTP service.
package app

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/go-playground/validator/v10"
	"github.com/jmoiron/sqlx"
	"github.com/redis/go-redis/v9"
	swaggerFiles "github.com/swaggo/files"
	ginSwagger "github.com/swaggo/gin-swagger"
	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"

	_ "github.com/byebilly/waitlist-api/api/swagger"
	"github.com/byebilly/waitlist-api/internal/handler"
	"github.com/byebilly/waitlist-api/internal/middleware"
	"github.com/byebilly/waitlist-api/internal/models"
	"github.com/byebilly/waitlist-api/internal/repository"
	"github.com/byebilly/waitlist-api/internal/service"
	"github.com/byebilly/waitlist-api/pkg/cache"
	"github.com/byebilly/waitlist-api/pkg/config"
	"github.com/byebilly/waitlist-api/pkg/database"
	"github.com/byebilly/waitlist-api/pkg/logger"
	corsmiddleware "github.com/byebilly/waitlist-api/pkg/middleware/cors"
	reqidmiddleware "github.com/byebilly/waitlist-api/pkg/middleware/requestid"
	"github.com/byebilly/waitlist-api/pkg/ratelimit"
)

const (
	shutdownTimeout = 10 * time.Second
	enrollScope     = "enroll"
	rateLimitPrefix = "ratelimit:"
)

type store interface {
	FindByEmail(ctx context.Context, email string) (*models.WaitlistEntry, error)
	InsertIfAbsent(ctx context.Context, email string, name *string) (*models.WaitlistEntry, error)
	CountAtOrBefore(ctx context.Context, ts time.Time) (int, error)
	Stats(ctx context.Context, since time.Time) (*models.WaitlistStats, error)
	Recent(ctx context.Context, limit int) ([]models.WaitlistEntry, error)
	List(ctx context.Context, filter models.WaitlistFilter) ([]models.WaitlistEntry, int, error)
	All(ctx context.Context) ([]models.WaitlistEntry, error)
	Ping(ctx context.Context) error
}

// App holds the wired service graph.
type App struct {
	cfg      *config.Config
	logger   *zap.Logger
	version  string
	db       *sqlx.DB
	redis    *redis.Client
	metrics  *service.MetricsService
	limiter  *ratelimit.Limiter
	waitlist *service.WaitlistService
}

// New connects the configured store and Redis and builds the services.
// Redis is optional: when it cannot be reached the stats cache and the rate
// limiter are disabled and a warning is logged.
func New(ctx context.Context, cfg *config.Config, log *zap.Logger, version string) (*App, error) {
	if log == nil {
		log = zap.NewNop()
	}
	a := &App{cfg: cfg, logger: log, version: version, metrics: service.NewMetricsService()}

	repo, err := a.openStore(ctx)
	if err != nil {
		return nil, err
	}

	client, err := cache.NewRedis(ctx, cfg.Redis)
	if err != nil {
		log.Warn("redis unavailable, continuing without cache and rate limiting", zap.Error(err))
	}
	a.redis = client

	var cacheSvc *service.CacheService
	if client != nil && cfg.Stats.CacheEnabled {
		cacheSvc = service.NewCacheService(repository.NewCacheRepository(client), a.metrics, cfg.Stats.CacheTTL, log, true)
	}

	if client != nil && cfg.RateLimit.Enabled {
		a.limiter, err = ratelimit.New(ratelimit.Config{
			Client: client,
			Limit:  cfg.RateLimit.EnrollMax,
			Window: cfg.RateLimit.EnrollWindow,
			Prefix: rateLimitPrefix,
		})
		if err != nil {
			_ = a.Close()
			return nil, fmt.Errorf("configure rate limiter: %w", err)
		}
	}

	validate, err := service.NewWaitlistValidator(validator.New())
	if err != nil {
		_ = a.Close()
		return nil, fmt.Errorf("register validators: %w", err)
	}

	a.waitlist = service.NewWaitlistService(repo, validate, cacheSvc, a.metrics, service.WaitlistConfig{
		RecentLimit: cfg.Stats.RecentLimit,
		StatsTTL:    cfg.Stats.CacheTTL,
	}, log)
	return a, nil
}

func (a *App) openStore(ctx context.Context) (store, error) {
	switch a.cfg.StoreDriver {
	case config.StoreDriverMemory:
		a.logger.Warn("using in-memory store, data is lost on restart")
		return repository.NewMemoryWaitlistRepository(), nil
	case config.StoreDriverPostgres, "":
		db, err := database.NewPostgres(ctx, a.cfg.Database)
		if err != nil {
			return nil, fmt.Errorf("connect postgres: %w", err)
		}
		a.db = db
		if a.cfg.Database.AutoMigrate {
			n, err := database.MigrateUp(ctx, db.DB)
			if err != nil {
				_ = db.Close()
				return nil, err
			}
			a.logger.Info("migrations applied", zap.Int("count", n))
		}
		return repository.NewWaitlistRepository(db, a.cfg.Database.QueryTimeout, a.metrics), nil
	default:
		return nil, fmt.Errorf("unknown store driver %q", a.cfg.StoreDriver)
	}
}

// Router builds the gin engine with every route mounted.
func (a *App) Router() *gin.Engine {
	if a.cfg.Env == config.EnvProduction {
		gin.SetMode(gin.ReleaseMode)
	}

	r := gin.New()
	if err := r.SetTrustedProxies(a.cfg.TrustedProxies); err != nil {
		a.logger.Error("invalid trusted proxies, ignoring forwarding headers", zap.Strings("trusted_proxies", a.cfg.TrustedProxies), zap.Error(err))
		_ = r.SetTrustedProxies(nil)
	}
	r.Use(gin.Recovery())
	r.Use(reqidmiddleware.Middleware())
	r.Use(logger.GinMiddleware(a.logger))
	r.Use(corsmiddleware.New(a.cfg.CORS.AllowedOrigins))
	r.Use(middleware.Metrics(a.metrics))

	health := handler.NewHealthHandler(a.metrics, a.waitlist, a.version)
	r.GET("/health", health.Health)
	r.GET("/ready", health.Ready)
	r.GET("/metrics", health.Prometheus)

	if a.cfg.Env != config.EnvProduction {
		r.GET("/docs/*any", ginSwagger.WrapHandler(swaggerFiles.Handler))
	}

	waitlist := handler.NewWaitlistHandler(a.waitlist)
	api := r.Group(a.cfg.APIPrefix)
	api.POST("/waitlist", middleware.RateLimit(a.limiter, enrollScope, a.metrics, a.logger), waitlist.Enroll)
	api.GET("/waitlist", waitlist.Stats)
	api.GET("/waitlist/entries", waitlist.List)
	api.GET("/waitlist/export", waitlist.Export)

	return r
}

// Serve runs the HTTP server until ctx is cancelled, then drains in-flight
// requests for up to shutdownTimeout.
func (a *App) Serve(ctx context.Context) error {
	srv := &http.Server{
		Addr:              fmt.Sprintf(":%d", a.cfg.Port),
		Handler:           a.Router(),
		ReadHeaderTimeout: 5 * time.Second,
	}

	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		a.logger.Info("server starting", zap.String("addr", srv.Addr), zap.String("env", a.cfg.Env))
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			return fmt.Errorf("listen: %w", err)
		}
		return nil
	})
	g.Go(func() error {
		<-gctx.Done()
		a.logger.Info("server shutting down")
		shutdownCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
		defer cancel()
		return srv.Shutdown(shutdownCtx)
	})
	return g.Wait()
}

// Close releases the store and Redis connections.
func (a *App) Close() error {
	var errs []error
	if a.redis != nil {
		errs = append(errs, a.redis.Close())
	}
	if a.db != nil {
		errs = append(errs, a.db.Close())
	}
	return errors.Join(errs...)
}
