package main

import (
	"context"
	"flag"
	"fmt"

	httpadapter "github.com/mikejamescalvert/TheFarmerWasReplacedSolutions/internal/adapter/http"
	metricsinmem "github.com/mikejamescalvert/TheFarmerWasReplacedSolutions/internal/adapter/metrics/inmemory"
	gormrepo "github.com/mikejamescalvert/TheFarmerWasReplacedSolutions/internal/adapter/repo/gorm"
	"github.com/mikejamescalvert/TheFarmerWasReplacedSolutions/internal/adapter/repo/memory"
	"github.com/mikejamescalvert/TheFarmerWasReplacedSolutions/internal/adapter/world/sim"
	"github.com/mikejamescalvert/TheFarmerWasReplacedSolutions/internal/app/ports"
	"github.com/mikejamescalvert/TheFarmerWasReplacedSolutions/internal/app/replay"
	"github.com/mikejamescalvert/TheFarmerWasReplacedSolutions/internal/app/runs"
	"github.com/mikejamescalvert/TheFarmerWasReplacedSolutions/internal/app/sweep"
	"github.com/mikejamescalvert/TheFarmerWasReplacedSolutions/internal/config"
	"github.com/mikejamescalvert/TheFarmerWasReplacedSolutions/internal/logging"
	"github.com/mikejamescalvert/TheFarmerWasReplacedSolutions/migrations"

	"github.com/cloudwego/hertz/pkg/app/server"
	"github.com/rs/zerolog/log"
)

type repos struct {
	runs    ports.SweepRunRepository
	visits  ports.VisitRepository
	tx      ports.TxManager
	backend string
}

func main() {
	configPath := flag.String("config", "", "path to a .toml or .yaml config file")
	flag.Parse()

	logging.ConfigureRuntime()
	logger := log.Logger

	cfg, err := config.Load(*configPath)
	if err != nil {
		logger.Fatal().Err(err).Msg("load config")
	}

	ctx := context.Background()
	r, err := buildRepos(ctx, cfg.Database)
	if err != nil {
		logger.Fatal().Err(err).Msg("build repositories")
	}

	farmHost := buildFarm(cfg.Farm)
	kpiRecorder := metricsinmem.NewRecorder()
	svc := runs.NewService(sweep.UseCase{
		Host:      farmHost,
		Runs:      r.runs,
		Visits:    r.visits,
		TxManager: r.tx,
		Metrics:   kpiRecorder,
		Logger:    &logger,
	}, r.runs, &logger)

	h := httpadapter.Handler{
		Runs:       svc,
		ReplayUC:   replay.UseCase{Runs: r.runs, Visits: r.visits},
		Farm:       farmHost,
		KPI:        kpiRecorder,
		CORSOrigin: cfg.Server.CORSOrigin,
	}

	s := server.Default(
		server.WithHostPorts(cfg.Server.Addr),
		server.WithExitWaitTime(cfg.Server.ShutdownTimeout()),
	)
	h.RegisterRoutes(s)
	s.OnShutdown = append(s.OnShutdown, func(ctx context.Context) {
		if err := svc.Shutdown(ctx); err != nil {
			logger.Error().Err(err).Msg("stop active sweep")
		}
	})

	if cfg.Sweep.AutoStart {
		run, err := svc.Start(ctx, startRequest(cfg.Sweep))
		if err != nil {
			logger.Fatal().Err(err).Msg("start sweep")
		}
		logger.Info().Str("run_id", run.ID).Msg("sweep started at boot")
	}

	logger.Info().
		Str("addr", cfg.Server.Addr).
		Str("journal", r.backend).
		Int("farm_size", cfg.Farm.Size).
		Msg("farmsweep server listening")
	s.Spin()
}

// buildRepos journals to postgres when a DSN is configured and keeps the
// journal in memory otherwise.
func buildRepos(ctx context.Context, cfg config.DatabaseConfig) (repos, error) {
	if cfg.DSN == "" {
		store := memory.NewStore()
		return repos{
			runs:    memory.NewSweepRunRepo(store),
			visits:  memory.NewVisitRepo(store),
			tx:      memory.NewTxManager(store),
			backend: "memory",
		}, nil
	}
	db, err := gormrepo.OpenPostgres(cfg.DSN, gormrepo.PoolConfig{
		MaxOpenConns:    cfg.MaxOpenConns,
		MaxIdleConns:    cfg.MaxIdleConns,
		ConnMaxLifetime: cfg.ConnMaxLifetime(),
	})
	if err != nil {
		return repos{}, err
	}
	if cfg.AutoMigrate {
		if err := gormrepo.ApplyMigrations(ctx, db, migrations.Files); err != nil {
			return repos{}, fmt.Errorf("apply migrations: %w", err)
		}
	}
	return repos{
		runs:    gormrepo.NewSweepRunRepo(db),
		visits:  gormrepo.NewVisitRepo(db),
		tx:      gormrepo.NewTxManager(db),
		backend: "postgres",
	}, nil
}

func buildFarm(cfg config.FarmConfig) *sim.Farm {
	simCfg := sim.DefaultConfig()
	simCfg.Size = cfg.Size
	simCfg.Seed = cfg.Seed
	simCfg.CompanionRate = cfg.CompanionRate
	simCfg.CompanionFaultRate = cfg.CompanionFaultRate
	simCfg.InitialWater = cfg.InitialWater
	return sim.NewFarm(simCfg)
}

func startRequest(cfg config.SweepConfig) runs.StartRequest {
	interval := cfg.CompanionInterval
	return runs.StartRequest{
		CompanionInterval: &interval,
		Debug:             cfg.Debug,
		Passes:            cfg.Passes,
	}
}
