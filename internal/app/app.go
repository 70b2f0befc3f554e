package app

import (
	"context"
	"database/sql"
	"time"

	"github.com/prometheus/client_golang/prometheus/promhttp"
	"github.com/redis/go-redis/v9"
	"go.uber.org/zap"

	"github.com/elementsenergies/metalware-monitor/internal/cache"
	"github.com/elementsenergies/metalware-monitor/internal/config"
	"github.com/elementsenergies/metalware-monitor/internal/db"
	httpserver "github.com/elementsenergies/metalware-monitor/internal/http"
	"github.com/elementsenergies/metalware-monitor/internal/http/handlers"
	"github.com/elementsenergies/metalware-monitor/internal/live"
	"github.com/elementsenergies/metalware-monitor/internal/repository"
	"github.com/elementsenergies/metalware-monitor/internal/service"
	"github.com/elementsenergies/metalware-monitor/internal/tariff"
)

// App wires monitor-api dependencies.
type App struct {
	server      *httpserver.Server
	hub         *live.Hub
	db          *sql.DB
	redisClient *redis.Client
	logger      *zap.Logger
}

// New constructs the application graph.
func New(cfg *config.Config, logger *zap.Logger) (*App, error) {
	sqlDB, err := db.NewPostgres(cfg.Database.DSN)
	if err != nil {
		return nil, err
	}

	// Redis is optional: without it the service still answers every request,
	// just without the response cache.
	var redisClient *redis.Client
	if cfg.Redis.Addr != "" {
		redisClient, err = cache.NewRedisClient(cfg.Redis.Addr, cfg.Redis.Password)
		if err != nil {
			logger.Warn("redis unavailable, caching disabled", zap.Error(err))
			redisClient = nil
		}
	}
	respCache := cache.NewResponseCache(redisClient, time.Duration(cfg.Redis.TTLSeconds)*time.Second, logger)

	store := repository.NewReadingRepository(sqlDB)
	svc := service.NewMonitorService(store, tariff.Default(), respCache, cfg.Demand.ThresholdKVA, logger)

	hub := live.NewHub(svc, time.Duration(cfg.Demand.LiveIntervalSeconds)*time.Second, logger)

	consumption := handlers.NewConsumptionHandlers(svc, logger)
	demand := handlers.NewDemandHandlers(svc, logger)

	routes := httpserver.Routes{
		HourlyConsumption:     consumption.Hourly(repository.CounterKWh),
		HourlyKVAhConsumption: consumption.Hourly(repository.CounterKVAh),
		MeterConsumption:      consumption.MeterWise,
		RangeConsumption:      consumption.Range,
		PeriodConsumption:     consumption.Period,
		ZoneConsumption:       consumption.ZoneHourly(repository.CounterKWh),
		ZoneKVAhConsumption:   consumption.ZoneHourly(repository.CounterKVAh),
		PowerFactor:           consumption.PowerFactor,
		HighLowConsumption:    consumption.HighLow,
		MinuteDemand:          demand.MinuteSeries,
		DemandAboveThreshold:  demand.AboveThreshold,
		PeakDemand:            demand.Peak,
		TotalConsumption:      demand.TotalConsumption,
		ConsumptionCost:       handlers.NewCostHandler(svc, logger),
		Dashboard:             handlers.NewDashboardHandler(svc, logger),
		Zones:                 handlers.NewZonesHandler(svc),
		LiveDemand:            hub,
		Health:                handlers.NewHealthHandler(),
		Metrics:               promhttp.Handler(),
	}

	router := httpserver.NewRouter(routes)
	server := httpserver.NewServer(cfg.HTTPAddress(), router, logger)

	return &App{
		server:      server,
		hub:         hub,
		db:          sqlDB,
		redisClient: redisClient,
		logger:      logger,
	}, nil
}

// Run starts the live feed and the HTTP server, blocking until ctx ends.
func (a *App) Run(ctx context.Context) error {
	go a.hub.Run(ctx)
	return a.server.Run(ctx)
}

// Close releases resources.
func (a *App) Close() {
	if a.db != nil {
		if err := a.db.Close(); err != nil {
			a.logger.Warn("closing database failed", zap.Error(err))
		}
	}
	if a.redisClient != nil {
		if err := a.redisClient.Close(); err != nil {
			a.logger.Warn("closing redis failed", zap.Error(err))
		}
	}
}
