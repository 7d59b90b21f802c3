package app

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"github.com/redis/go-redis/v9"
	"github.com/spf13/viper"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"

	"createform/internal/cache"
	"createform/internal/config"
	"createform/internal/metrics"
	"createform/internal/repository"
	"createform/internal/service"
	"createform/internal/transport/rest"
	"createform/internal/transport/rest/middleware"
	"createform/internal/transport/ws"
)

// App owns every long-lived resource of the API server
type App struct {
	cfg   *config.Config
	log   *zap.Logger
	level *zap.AtomicLevel

	mongo  *mongo.Client
	redis  *redis.Client
	hub    *ws.Hub
	cors   *rest.CORS
	server *http.Server
}

// New connects the stores and wires repositories, caches, services and the router.
// level may be nil when the log level should not follow config reloads.
func New(ctx context.Context, cfg *config.Config, level *zap.AtomicLevel, log *zap.Logger) (*App, error) {
	a := &App{cfg: cfg, log: log, level: level}

	connectCtx, cancel := context.WithTimeout(ctx, cfg.Mongo.ConnectTimeout)
	defer cancel()

	mongoClient, err := mongo.Connect(connectCtx, options.Client().ApplyURI(cfg.Mongo.URI))
	if err != nil {
		return nil, fmt.Errorf("failed to connect to MongoDB: %w", err)
	}
	a.mongo = mongoClient
	if err := mongoClient.Ping(connectCtx, nil); err != nil {
		a.Close()
		return nil, fmt.Errorf("failed to ping MongoDB: %w", err)
	}
	log.Info("Connected to MongoDB", zap.String("database", cfg.Mongo.Database))

	db := mongoClient.Database(cfg.Mongo.Database)
	if err := repository.EnsureIndexes(connectCtx, db); err != nil {
		a.Close()
		return nil, err
	}

	redisOpts, err := cfg.Redis.Options()
	if err != nil {
		a.Close()
		return nil, err
	}
	a.redis = redis.NewClient(redisOpts)
	if err := a.redis.Ping(connectCtx).Err(); err != nil {
		a.Close()
		return nil, fmt.Errorf("failed to ping Redis: %w", err)
	}
	log.Info("Connected to Redis", zap.String("addr", redisOpts.Addr))

	registry := prometheus.NewRegistry()
	registry.MustRegister(
		collectors.NewGoCollector(),
		collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}),
	)
	recorder, err := metrics.NewRecorder("createform", registry)
	if err != nil {
		a.Close()
		return nil, err
	}

	a.hub = ws.NewHub(log)

	// Initialize repositories
	workspaceRepo := repository.NewWorkspaceRepo(db)
	surveyRepo := repository.NewSurveyRepo(db)
	questionRepo := repository.NewQuestionRepo(db)
	outcomeRepo := repository.NewOutcomeRepo(db)
	submissionRepo := repository.NewSubmissionRepo(db)

	// Initialize caches
	formCache := cache.NewLayeredFormCache(
		cache.NewFormCache(a.redis, cfg.Cache.FormTTL),
		cfg.Cache.LocalFormSize,
		cfg.Cache.LocalFormTTL,
	)
	analyticsCache := cache.NewAnalyticsCache(a.redis, cfg.Cache.AnalyticsTTL)
	limiter := cache.NewRateLimiter(a.redis, cfg.Submissions.RateLimit, cfg.Submissions.RateWindow)

	// Initialize services
	authSvc, err := service.NewAuthService(cfg.Auth)
	if err != nil {
		a.Close()
		return nil, err
	}
	workspaceSvc := service.NewWorkspaceService(workspaceRepo, surveyRepo, log)
	surveySvc := service.NewSurveyService(surveyRepo, questionRepo, outcomeRepo, workspaceSvc, formCache, analyticsCache, log)
	submissionSvc := service.NewSubmissionService(
		surveyRepo, questionRepo, outcomeRepo, submissionRepo,
		service.NewRecorder(submissionRepo), limiter, analyticsCache, log,
	)
	analyticsSvc := service.NewAnalyticsService(surveyRepo, questionRepo, submissionRepo, analyticsCache, log)
	exportSvc := service.NewExportService(surveyRepo, questionRepo, submissionRepo)

	// Inject broadcaster (hub implements service.Broadcaster)
	surveySvc.SetBroadcaster(a.hub)
	submissionSvc.SetBroadcaster(a.hub)
	submissionSvc.SetMetrics(recorder)
	submissionSvc.SetFeedOptions(cfg.Feed.PollInterval, cfg.Feed.SnapshotLimit)

	a.cors = rest.NewCORS(cfg.CORS)
	proxies, err := middleware.NewTrustedProxies(cfg.Server.TrustedProxies)
	if err != nil {
		a.Close()
		return nil, fmt.Errorf("config: server.trusted_proxies: %w", err)
	}

	router := rest.NewRouter(&rest.Container{
		AuthService:       authSvc,
		WorkspaceService:  workspaceSvc,
		SurveyService:     surveySvc,
		SubmissionService: submissionSvc,
		AnalyticsService:  analyticsSvc,
		ExportService:     exportSvc,
		WSHub:             a.hub,
		CORS:              a.cors,
		Metrics:           recorder,
		Gatherer:          registry,
		Logger:            log,
		TrustedProxies:    proxies,
		Health:            a.health,
	})

	a.server = &http.Server{
		Addr:         ":" + cfg.Server.Port,
		Handler:      router,
		ReadTimeout:  cfg.Server.ReadTimeout,
		WriteTimeout: cfg.Server.WriteTimeout,
	}
	return a, nil
}

// WatchConfig applies log level and CORS changes from the config file without a restart
func (a *App) WatchConfig(v *viper.Viper) {
	config.Watch(v, a.log, func(cfg *config.Config) {
		if a.level != nil {
			if err := a.level.UnmarshalText([]byte(cfg.Logging.Level)); err != nil {
				a.log.Warn("Ignoring invalid log level", zap.String("level", cfg.Logging.Level))
			}
		}
		a.cors.Update(cfg.CORS)
		a.log.Info("Configuration applied",
			zap.String("level", cfg.Logging.Level),
			zap.String("origins", cfg.CORS.AllowedOrigins))
	})
}

// Run serves HTTP until ctx is cancelled, then shuts the server down gracefully
func (a *App) Run(ctx context.Context) error {
	g, gctx := errgroup.WithContext(ctx)

	g.Go(func() error {
		a.log.Info("Server starting", zap.String("addr", a.server.Addr))
		if err := a.server.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			return fmt.Errorf("listen and serve: %w", err)
		}
		return nil
	})

	g.Go(func() error {
		<-gctx.Done()
		a.log.Info("Shutting down server...")
		shutdownCtx, cancel := context.WithTimeout(context.Background(), a.cfg.Server.ShutdownTimeout)
		defer cancel()
		if err := a.server.Shutdown(shutdownCtx); err != nil {
			return fmt.Errorf("server forced to shutdown: %w", err)
		}
		return nil
	})

	return g.Wait()
}

// Close stops the hub and disconnects the stores
func (a *App) Close() {
	if a.hub != nil {
		a.hub.Stop()
	}
	if a.redis != nil {
		if err := a.redis.Close(); err != nil {
			a.log.Warn("Failed to close Redis client", zap.Error(err))
		}
	}
	if a.mongo != nil {
		ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		if err := a.mongo.Disconnect(ctx); err != nil {
			a.log.Warn("Failed to disconnect MongoDB", zap.Error(err))
		}
	}
}

func (a *App) health(ctx context.Context) error {
	if err := a.mongo.Ping(ctx, nil); err != nil {
		return fmt.Errorf("mongo: %w", err)
	}
	if err := a.redis.Ping(ctx).Err(); err != nil {
		return fmt.Errorf("redis: %w", err)
	}
	return nil
}
