// Command server runs the prayer-time HTTP service: timing resolution and
// calendar export over a three-tier cache, with Prometheus metrics and
// optional OTLP tracing.
package main

import (
	"context"
	"errors"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/joho/godotenv"
	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"

	"github.com/gfarooqi/prayersync-sub001/internal/cache"
	"github.com/gfarooqi/prayersync-sub001/internal/config"
	httpapi "github.com/gfarooqi/prayersync-sub001/internal/http"
	"github.com/gfarooqi/prayersync-sub001/internal/observability"
	"github.com/gfarooqi/prayersync-sub001/internal/repo"
	"github.com/gfarooqi/prayersync-sub001/internal/services"
	"github.com/gfarooqi/prayersync-sub001/internal/sysutil"
	"github.com/gfarooqi/prayersync-sub001/internal/tzconv"
	"github.com/gfarooqi/prayersync-sub001/internal/upstream"
)

// version is set at build time via ldflags:
//
//	go build -ldflags "-X main.version=v1.0.0"
var version = "dev"

func main() {
	_ = godotenv.Load()
	cfg := config.MustLoad()

	zerolog.TimeFieldFormat = zerolog.TimeFormatUnix
	if cfg.LogPretty {
		log.Logger = log.Output(zerolog.ConsoleWriter{Out: os.Stderr})
	}
	sysutil.SetLogLevel(cfg.LogLevel)
	log.Info().Str("version", version).Str("port", cfg.Port).Msg("starting prayersync")

	ctx := context.Background()
	shutdownOTel, err := observability.SetupOTel(ctx, cfg.OTEL, version)
	if err != nil {
		log.Fatal().Err(err).Msg("otel setup")
	}

	// Durable tier: Redis when configured, SQLite file otherwise.
	var durable cache.Store
	if cfg.Cache.RedisAddr != "" {
		rc := cache.NewRedis(cfg.Cache.RedisAddr, cfg.Cache.RedisUser, cfg.Cache.RedisPass)
		pingCtx, cancel := context.WithTimeout(ctx, 5*time.Second)
		if err := rc.Ping(pingCtx); err != nil {
			cancel()
			log.Fatal().Err(err).Str("addr", cfg.Cache.RedisAddr).Msg("redis unreachable")
		}
		cancel()
		durable = rc
		log.Info().Str("addr", cfg.Cache.RedisAddr).Msg("durable cache: redis")
	} else {
		db, err := repo.OpenSQLite(cfg.Cache.SQLitePath)
		if err != nil {
			log.Fatal().Err(err).Str("path", cfg.Cache.SQLitePath).Msg("open cache db")
		}
		if err := repo.AutoMigrate(db); err != nil {
			log.Fatal().Err(err).Msg("migrate cache db")
		}
		durable = cache.NewSQLite(db)
		log.Info().Str("path", cfg.Cache.SQLitePath).Msg("durable cache: sqlite")
	}

	conv := tzconv.NewConverter()
	fetch := upstream.NewClient(cfg.Upstream)
	zones := services.NewTimezoneService(durable, fetch)
	times := services.NewTimesService(cache.NewMemory(), durable, fetch, zones, conv,
		cfg.Cache.TimesTTL, cfg.Upstream.Timeout)
	cal := services.NewCalendarService(times, zones, conv,
		cfg.Export.EventDuration, cfg.Export.AlarmOffset)

	gin.SetMode(cfg.GinMode)
	r := gin.New()
	httpapi.RegisterRoutes(r, times, cal, cfg)

	srv := &http.Server{
		Addr:              ":" + cfg.Port,
		Handler:           r,
		ReadHeaderTimeout: cfg.ReadHeaderTimeout,
		ReadTimeout:       cfg.ReadTimeout,
		WriteTimeout:      cfg.WriteTimeout,
		IdleTimeout:       cfg.IdleTimeout,
		MaxHeaderBytes:    cfg.MaxHeaderBytes,
	}

	go func() {
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			log.Fatal().Err(err).Msg("http server")
		}
	}()

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit
	log.Info().Msg("shutting down")

	shutdownCtx, cancel := context.WithTimeout(ctx, 15*time.Second)
	defer cancel()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		log.Error().Err(err).Msg("server shutdown")
	}
	if err := shutdownOTel(shutdownCtx); err != nil {
		log.Error().Err(err).Msg("otel shutdown")
	}
	log.Info().Msg("stopped")
}
