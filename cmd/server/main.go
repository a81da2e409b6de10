// Command server runs the Turnout backend: the tracking HTTP API, the
// delayed-task sweeper, and the periodic region-link refresh.
//
// Configuration comes from the environment (a local .env file is honored in
// development). The process shuts down gracefully on SIGINT/SIGTERM: the HTTP
// server drains in-flight requests and background loops stop at their next
// tick.
//
// @title       Turnout Backend API
// @version     1.0
// @description Civic engagement action tracking, status projection, ballot-delivery link resolution, and outbound dispatch.
// @BasePath    /v1
package main

import (
	"context"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/joho/godotenv"
	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"

	_ "github.com/votehq/turnout-backend/docs"
	"github.com/votehq/turnout-backend/internal/config"
	"github.com/votehq/turnout-backend/internal/gateway"
	httpapi "github.com/votehq/turnout-backend/internal/http"
	"github.com/votehq/turnout-backend/internal/observability"
	"github.com/votehq/turnout-backend/internal/repo"
	"github.com/votehq/turnout-backend/internal/services"
	"github.com/votehq/turnout-backend/internal/sysutil"
)

// version is stamped at build time via -ldflags.
var version = "dev"

func main() {
	// Local development convenience; absence of .env is not an error.
	_ = godotenv.Load()

	cfg := config.MustLoad()

	sysutil.SetLogLevel(cfg.LogLevel)
	if cfg.LogPretty {
		log.Logger = log.Output(zerolog.ConsoleWriter{Out: os.Stderr, TimeFormat: time.RFC3339})
	}
	gin.SetMode(cfg.GinMode)

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	db, err := repo.OpenSQLite(cfg.DBPath)
	if err != nil {
		log.Fatal().Err(err).Str("path", cfg.DBPath).Msg("open database")
	}
	if err := repo.AutoMigrate(db); err != nil {
		log.Fatal().Err(err).Msg("migrate database")
	}

	shutdownOTel, err := observability.SetupOTel(ctx, cfg.OTEL, version)
	if err != nil {
		log.Fatal().Err(err).Msg("setup tracing")
	}
	defer func() {
		if err := shutdownOTel(context.Background()); err != nil {
			log.Warn().Err(err).Msg("tracing shutdown")
		}
	}()

	// Task registry and scheduler.
	registry := services.NewRegistry()
	scheduler := services.NewScheduler(db, registry, cfg.DelayedTasksInterval)

	// Outbound fax dispatch.
	var faxGateway services.FaxGateway
	if len(cfg.Fax.Brokers) > 0 {
		kg, err := gateway.NewKafkaFaxGateway(cfg.Fax.Brokers, cfg.Fax.Topic)
		if err != nil {
			log.Fatal().Err(err).Msg("connect fax gateway")
		}
		defer kg.Close()
		faxGateway = kg
	}
	faxSvc := &services.FaxService{
		DB:           db,
		Gateway:      faxGateway,
		Runner:       registry,
		CallbackURL:  cfg.Fax.CallbackURL,
		Disable:      cfg.Fax.Disable,
		OverrideDest: cfg.Fax.OverrideDest,
	}

	eventSvc := services.NewEventService(db)
	statusSvc := services.NewStatusService(db)

	// Region links, optionally serialized across instances via Redis.
	linkSvc := services.NewRegionLinkService(db,
		&http.Client{Timeout: cfg.RegionLinks.Timeout},
		cfg.RegionLinks.SourceURL, cfg.RegionLinks.State)
	if cfg.RedisURL != "" {
		rc, err := gateway.ConnectRedis(ctx, cfg.RedisURL)
		if err != nil {
			log.Fatal().Err(err).Msg("connect redis")
		}
		defer rc.Close()
		linkSvc.Lock = gateway.NewRedisRefreshLock(rc)
	}

	absenteeSvc := &services.AbsenteeService{
		DB:        db,
		Fax:       faxSvc,
		Events:    eventSvc,
		WWWOrigin: cfg.WWWOrigin,
	}
	absenteeSvc.RegisterTasks(registry)
	registry.Register(services.TaskRefreshRegionOVBM, func(ctx context.Context, _ []any) error {
		return linkSvc.Refresh(ctx)
	})

	// Background loops.
	go sweepDelayedTasks(ctx, scheduler, cfg.DelayedTasksInterval)
	if cfg.RegionLinks.Interval > 0 {
		go refreshRegionLinks(ctx, linkSvc, cfg.RegionLinks.Interval)
	}

	// HTTP transport.
	engine := gin.New()
	httpapi.RegisterRoutes(engine, db, httpapi.Services{
		Events: eventSvc,
		Status: statusSvc,
		Links:  linkSvc,
		Fax:    faxSvc,
	}, cfg)

	srv := &http.Server{
		Addr:              ":" + cfg.Port,
		Handler:           engine,
		ReadTimeout:       cfg.ReadTimeout,
		ReadHeaderTimeout: cfg.ReadHeaderTimeout,
		WriteTimeout:      cfg.WriteTimeout,
		IdleTimeout:       cfg.IdleTimeout,
		MaxHeaderBytes:    cfg.MaxHeaderBytes,
	}

	go func() {
		log.Info().Str("addr", srv.Addr).Str("version", version).Msg("server listening")
		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			log.Fatal().Err(err).Msg("server")
		}
	}()

	<-ctx.Done()
	log.Info().Msg("shutting down")

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 15*time.Second)
	defer cancel()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		log.Error().Err(err).Msg("server shutdown")
	}
}

// sweepDelayedTasks delivers due delayed tasks once per interval until the
// context is canceled.
func sweepDelayedTasks(ctx context.Context, sched *services.Scheduler, interval time.Duration) {
	ticker := time.NewTicker(interval)
	defer ticker.Stop()
	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			n, err := sched.DeliverDueTasks(ctx)
			if err != nil {
				log.Error().Err(err).Msg("delayed task sweep")
				continue
			}
			if n > 0 {
				log.Info().Int("delivered", n).Msg("delayed tasks delivered")
			}
		}
	}
}

// refreshRegionLinks re-scrapes the ballot-delivery links once per interval.
// A refresh held by another instance, or a scrape failure, keeps the current
// links and is retried on the next tick.
func refreshRegionLinks(ctx context.Context, links *services.RegionLinkService, interval time.Duration) {
	ticker := time.NewTicker(interval)
	defer ticker.Stop()
	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			if err := links.Refresh(ctx); err != nil {
				log.Warn().Err(err).Msg("region link refresh")
			}
		}
	}
}
