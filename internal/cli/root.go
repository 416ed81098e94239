// Package cli implements the prayersync command tree.
//
// The commands share one resolution engine with the HTTP service: the same
// tiered cache, upstream client, and converter, wired from the same
// environment configuration. Output goes to the command's stdout so the
// binary composes with shells and cron jobs.
package cli

import (
	"fmt"

	"github.com/joho/godotenv"
	"github.com/rs/zerolog/log"
	"github.com/spf13/cobra"

	"github.com/gfarooqi/prayersync-sub001/internal/cache"
	"github.com/gfarooqi/prayersync-sub001/internal/config"
	"github.com/gfarooqi/prayersync-sub001/internal/domain"
	"github.com/gfarooqi/prayersync-sub001/internal/repo"
	"github.com/gfarooqi/prayersync-sub001/internal/services"
	"github.com/gfarooqi/prayersync-sub001/internal/sysutil"
	"github.com/gfarooqi/prayersync-sub001/internal/tzconv"
	"github.com/gfarooqi/prayersync-sub001/internal/upstream"
)

// Global flags shared across all subcommands.
var (
	flagLat    float64
	flagLon    float64
	flagMethod int
)

// loadedConfig holds the config loaded during PersistentPreRunE.
var loadedConfig config.Config

// NewRootCmd creates the root command for the prayersync CLI. The version
// parameter is set by the calling binary via ldflags.
func NewRootCmd(version string) *cobra.Command {
	rootCmd := &cobra.Command{
		Use:     "prayersync",
		Short:   "Prayer time resolution and calendar export",
		Long:    "Resolves daily prayer times through a tiered cache and exports them as iCalendar documents.",
		Version: version,
		PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
			_ = godotenv.Load()
			cfg, err := config.Load()
			if err != nil {
				return fmt.Errorf("load config: %w", err)
			}
			sysutil.SetLogLevel(cfg.LogLevel)
			loadedConfig = cfg
			return nil
		},
		SilenceUsage:  true,
		SilenceErrors: true,
	}

	pf := rootCmd.PersistentFlags()
	pf.Float64Var(&flagLat, "lat", 0, "Latitude in decimal degrees")
	pf.Float64Var(&flagLon, "lon", 0, "Longitude in decimal degrees")
	pf.IntVar(&flagMethod, "method", int(domain.DefaultMethod), "Calculation method id")

	rootCmd.AddCommand(newTimingsCmd())
	rootCmd.AddCommand(newExportCmd())
	rootCmd.AddCommand(newMethodsCmd())

	return rootCmd
}

// flagCoordinate validates the shared lat/lon flags.
func flagCoordinate() (domain.Coordinate, error) {
	coord := domain.Coordinate{Lat: flagLat, Lon: flagLon}
	if !coord.Valid() {
		return domain.Coordinate{}, fmt.Errorf("coordinate %.4f,%.4f out of range", flagLat, flagLon)
	}
	return coord, nil
}

// flagCalcMethod validates the shared method flag.
func flagCalcMethod() (domain.CalculationMethod, error) {
	m := domain.CalculationMethod(flagMethod)
	if !m.Known() {
		return 0, fmt.Errorf("unknown calculation method %d (see 'prayersync methods')", flagMethod)
	}
	return m, nil
}

// engine bundles the wired services and their cleanup.
type engine struct {
	times *services.TimesService
	cal   *services.CalendarService
	close func()
}

// buildEngine wires the tiered cache, upstream client, and services from
// the loaded configuration. Redis is preferred for the durable tier when
// configured, otherwise the SQLite file is used.
func buildEngine(cfg config.Config) (*engine, error) {
	var (
		durable cache.Store
		cleanup = func() {}
	)
	if cfg.Cache.RedisAddr != "" {
		durable = cache.NewRedis(cfg.Cache.RedisAddr, cfg.Cache.RedisUser, cfg.Cache.RedisPass)
	} else {
		db, err := repo.OpenSQLite(cfg.Cache.SQLitePath)
		if err != nil {
			return nil, fmt.Errorf("open cache db: %w", err)
		}
		if err := repo.AutoMigrate(db); err != nil {
			return nil, fmt.Errorf("migrate cache db: %w", err)
		}
		durable = cache.NewSQLite(db)
		cleanup = func() {
			if sqlDB, err := db.DB(); err == nil {
				if cerr := sqlDB.Close(); cerr != nil {
					log.Warn().Err(cerr).Msg("closing cache db")
				}
			}
		}
	}

	conv := tzconv.NewConverter()
	fetch := upstream.NewClient(cfg.Upstream)
	zones := services.NewTimezoneService(durable, fetch)
	times := services.NewTimesService(cache.NewMemory(), durable, fetch, zones, conv,
		cfg.Cache.TimesTTL, cfg.Upstream.Timeout)
	cal := services.NewCalendarService(times, zones, conv,
		cfg.Export.EventDuration, cfg.Export.AlarmOffset)

	return &engine{times: times, cal: cal, close: cleanup}, nil
}
