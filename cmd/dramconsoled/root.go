package main

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"github.com/joho/godotenv"
	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/tpaukrt/DRAMConsole/internal/app"
	"github.com/tpaukrt/DRAMConsole/internal/capture"
	"github.com/tpaukrt/DRAMConsole/internal/config"
	"github.com/tpaukrt/DRAMConsole/internal/domain/lastlog"
	"github.com/tpaukrt/DRAMConsole/internal/infrastructure/auth"
	dbinfra "github.com/tpaukrt/DRAMConsole/internal/infrastructure/db"
	"github.com/tpaukrt/DRAMConsole/internal/infrastructure/logging"
	"github.com/tpaukrt/DRAMConsole/internal/infrastructure/monitoring"
	"github.com/tpaukrt/DRAMConsole/internal/infrastructure/ratelimit"
	redisinfra "github.com/tpaukrt/DRAMConsole/internal/infrastructure/redis"
	"github.com/tpaukrt/DRAMConsole/internal/region"
	"github.com/tpaukrt/DRAMConsole/internal/stream"
)

var (
	envFile string

	rootCmd = &cobra.Command{
		Use:   "dramconsoled",
		Short: "dramconsoled records the trailing log output of each run and serves the previous run's tail",
		RunE: func(cmd *cobra.Command, args []string) error {
			return serve()
		},
	}
)

func init() {
	rootCmd.PersistentFlags().StringVar(&envFile, "env-file", "", "path to an env file loaded before the environment")
	rootCmd.AddCommand(&cobra.Command{
		Use:   "serve",
		Short: "run the capture service (default)",
		RunE: func(cmd *cobra.Command, args []string) error {
			return serve()
		},
	})
}

func serve() error {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	if envFile != "" {
		if err := godotenv.Load(envFile); err != nil {
			return fmt.Errorf("load env file: %w", err)
		}
	}
	cfg, err := config.Load()
	if err != nil {
		return fmt.Errorf("load config: %w", err)
	}

	// Acquire the backing region. A mapping failure is fatal: the core
	// must not run with absent buffers.
	var backing region.Region
	if cfg.Capture.RegionPath != "" {
		backing, err = region.OpenFile(cfg.Capture.RegionPath, capture.RegionSize(cfg.Capture.Size))
		if err != nil {
			return err
		}
	} else {
		backing = region.Anonymous(capture.RegionSize(cfg.Capture.Size))
	}
	defer backing.Close()

	ring, err := capture.NewRing(backing.Bytes())
	if err != nil {
		return err
	}
	snap := capture.NewLinear(cfg.Capture.Size)

	// Freeze the previous cycle before anything can write, then hand
	// the ring to the new cycle.
	recovered := capture.TakeSnapshot(ring, snap)
	ring.Reinit()

	hub := stream.NewHub(nil)
	sink := capture.NewSink(ring, hub.Publish)

	logger, err := logging.New(cfg.App.Env, sink)
	if err != nil {
		return fmt.Errorf("init logger: %w", err)
	}
	defer logging.Sync(logger)
	logger.Info("previous cycle snapshot frozen", zap.Int("bytes", recovered))

	if err := monitoring.InitSentry(cfg.Monitoring, cfg.App); err != nil {
		logger.Warn("sentry init failed", zap.Error(err))
	}
	defer monitoring.Flush()
	monitoring.ReportRecovery(recovered)
	if cfg.Monitoring.PrometheusEnabled {
		monitoring.Init()
		monitoring.RegisterCapture(ring, snap)
	}

	var archiveRepo lastlog.ArchiveRepository
	if cfg.Database.DSN != "" {
		dbManager, err := dbinfra.Connect(ctx, cfg.Database, logger)
		if err != nil {
			logger.Error("archive db connect failed", zap.Error(err))
			return err
		}
		defer dbManager.Close()
		archiveRepo = dbinfra.NewSnapshotRepository(dbManager.DB)
	}

	service := lastlog.NewService(ring, snap, archiveRepo, logger)
	service.ArchiveSnapshot(ctx)

	var limiter ratelimit.Limiter
	if cfg.RateLimit.Enabled {
		limiter = ratelimit.NewMemoryLimiter(cfg.RateLimit.RequestsPerMinute)
		if cfg.Redis.Addr != "" {
			if client, err := redisinfra.Connect(cfg.Redis, logger); err == nil {
				defer client.Close()
				limiter = ratelimit.NewRedisLimiter(client.Native, cfg.RateLimit.RequestsPerMinute, cfg.RateLimit.RedisPrefix)
			} else {
				logger.Warn("redis connect failed, using in-process limiter", zap.Error(err))
			}
		}
	}

	router := app.NewRouter(app.RouterDeps{
		Config:      cfg,
		Lastlog:     lastlog.NewHandler(service),
		Stream:      hub,
		AuthManager: auth.NewManager(cfg.Auth),
		Logger:      logger,
		Limiter:     limiter,
	})

	server := &app.Server{Engine: router, Addr: ":" + cfg.App.Port, Logger: logger}
	if err := server.Run(ctx); err != nil {
		logger.Error("server error", zap.Error(err))
		return err
	}
	return nil
}
