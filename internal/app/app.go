// Package app wires the call dashboard's stores, services and transport.
package app

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"time"

	"github.com/redis/go-redis/v9"
	"github.com/sirupsen/logrus"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"

	"callmood/internal/cache"
	"callmood/internal/config"
	"callmood/internal/metrics"
	"callmood/internal/repository"
	"callmood/internal/service"
	"callmood/internal/transport/rest"
	"callmood/internal/transport/ws"
)

const (
	pingTimeout  = 5 * time.Second
	drainTimeout = 15 * time.Second
)

// App holds every long-lived dependency of the server.
type App struct {
	Config *config.Config
	Logger *logrus.Logger

	Mongo *mongo.Client
	Redis *redis.Client

	CallRepo     repository.CallRepo
	AnalysisRepo repository.AnalysisRepo
	Dashboards   cache.DashboardCache
	JobLock      cache.JobLock
	Metrics      *metrics.Metrics

	AuthService     *service.AuthService
	CallService     *service.CallService
	AnalysisService *service.AnalysisService
	WSHub           *ws.Hub

	cancelJobs context.CancelFunc
}

// New connects to MongoDB and Redis and builds the services on top of them.
func New(ctx context.Context, cfg *config.Config, logger *logrus.Logger) (*App, error) {
	mongoClient, err := mongo.Connect(ctx, options.Client().ApplyURI(cfg.Mongo.URI))
	if err != nil {
		return nil, fmt.Errorf("connect mongo: %w", err)
	}

	pingCtx, cancel := context.WithTimeout(ctx, pingTimeout)
	defer cancel()
	if err := mongoClient.Ping(pingCtx, nil); err != nil {
		_ = mongoClient.Disconnect(ctx)
		return nil, fmt.Errorf("ping mongo: %w", err)
	}
	logger.WithField("database", cfg.Mongo.Database).Info("connected to MongoDB")

	rdb := redis.NewClient(&redis.Options{Addr: cfg.Redis.HostAddr()})
	if err := rdb.Ping(pingCtx).Err(); err != nil {
		_ = rdb.Close()
		_ = mongoClient.Disconnect(ctx)
		return nil, fmt.Errorf("ping redis: %w", err)
	}
	logger.WithField("addr", cfg.Redis.HostAddr()).Info("connected to Redis")

	db := mongoClient.Database(cfg.Mongo.Database)
	if err := repository.EnsureIndexes(ctx, db); err != nil {
		logger.WithError(err).Warn("failed to create call indexes")
	}

	a := &App{
		Config:       cfg,
		Logger:       logger,
		Mongo:        mongoClient,
		Redis:        rdb,
		CallRepo:     repository.NewCallRepo(db),
		AnalysisRepo: repository.NewAnalysisRepo(db),
		Dashboards:   cache.NewDashboardCache(rdb, cfg.Redis.DashboardTTL),
		JobLock:      cache.NewJobLock(rdb, cfg.Redis.JobLockTTL),
		Metrics:      metrics.New(),
	}
	a.wire()
	return a, nil
}

func (a *App) wire() {
	jobCtx, cancel := context.WithCancel(context.Background())
	a.cancelJobs = cancel

	inference := service.NewInferenceClient(a.Config.Inference, a.Metrics, a.Logger)
	if !a.Config.Inference.IsEnabled() {
		a.Logger.Warn("inference base URL not set, analysis requests will be rejected")
	}

	a.AuthService = service.NewAuthService(a.Config.Auth)
	a.CallService = service.NewCallService(a.CallRepo, a.AnalysisRepo, a.Dashboards, a.Metrics, a.Logger, a.Config.Analysis.MinDurationMS)
	a.AnalysisService = service.NewAnalysisService(jobCtx, a.CallRepo, a.AnalysisRepo, a.Dashboards, a.JobLock, inference, a.Metrics, a.Logger)

	a.WSHub = ws.NewHub(a.Logger)
	a.AnalysisService.SetBroadcaster(a.WSHub)
}

// Router builds the HTTP handler.
func (a *App) Router() http.Handler {
	return rest.NewRouter(&rest.Container{
		AuthService:     a.AuthService,
		CallService:     a.CallService,
		AnalysisService: a.AnalysisService,
		WSHub:           a.WSHub,
		Metrics:         a.Metrics,
		Logger:          a.Logger,
		AllowedOrigins:  a.Config.CORS.AllowedOrigins,
	})
}

// Close stops background jobs and releases connections. Jobs still running
// when ctx expires are cancelled and given drainTimeout to record their
// failure before the stores are closed.
func (a *App) Close(ctx context.Context) error {
	if err := a.AnalysisService.Wait(ctx); err != nil {
		a.Logger.WithError(err).Warn("analysis jobs still running, cancelling")
	}
	a.cancelJobs()

	drainCtx, cancel := context.WithTimeout(context.WithoutCancel(ctx), drainTimeout)
	defer cancel()
	if err := a.AnalysisService.Wait(drainCtx); err != nil {
		a.Logger.WithError(err).Error("cancelled analysis jobs did not finish")
	}
	a.WSHub.Close()

	var errs []error
	if err := a.Redis.Close(); err != nil {
		errs = append(errs, fmt.Errorf("close redis: %w", err))
	}
	if err := a.Mongo.Disconnect(drainCtx); err != nil {
		errs = append(errs, fmt.Errorf("disconnect mongo: %w", err))
	}
	return errors.Join(errs...)
}
