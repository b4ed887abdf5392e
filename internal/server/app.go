// Package server wires the Cecil server together: credential store,
// services, the gRPC and operator HTTP servers and the invite purge job.
package server

import (
	"context"
	"database/sql"
	"fmt"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/calebglawson/cecil/internal/logging"
	"github.com/calebglawson/cecil/internal/server/auth"
	"github.com/calebglawson/cecil/internal/server/config"
	"github.com/calebglawson/cecil/internal/server/library"
	"github.com/calebglawson/cecil/internal/server/ops"
	"github.com/calebglawson/cecil/internal/server/repositories/repomanager"
	"github.com/calebglawson/cecil/internal/server/services"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"github.com/robfig/cron/v3"
	"golang.org/x/sync/errgroup"

	gs "github.com/calebglawson/cecil/internal/server/grpc"
)

// importDrainTimeout bounds how long shutdown waits for running list imports.
const importDrainTimeout = 30 * time.Second

type App struct {
	config  *config.Config
	logger  logging.Logger
	db      *sql.DB
	grpc    *gs.GRPCServer
	ops     *ops.Server
	invites *services.InviteService
	library *services.LibraryService
	cron    *cron.Cron
}

// NewApp opens and migrates the store, makes sure an admin exists and builds
// every service and server. Nothing listens until Run.
func NewApp(ctx context.Context, cfg *config.Config) (*App, error) {
	logger := logging.NewJSONLogger(os.Stdout, cfg.LogLevel)

	db, m, err := repomanager.Open(ctx, cfg.DatabaseDSN)
	if err != nil {
		return nil, fmt.Errorf("db init error: %w", err)
	}

	app, err := build(ctx, cfg, logger, db, m)
	if err != nil {
		_ = db.Close()
		return nil, err
	}
	return app, nil
}

func build(ctx context.Context, cfg *config.Config, logger logging.Logger, db *sql.DB, m *repomanager.SQLRepositoryManager) (*App, error) {
	if err := m.RunMigrations(ctx, db); err != nil {
		return nil, fmt.Errorf("migrations error: %w", err)
	}

	hasher := auth.NewPasswordHasher(cfg.BcryptCost)
	if _, err := services.Bootstrap(ctx, db, m, hasher, logger); err != nil {
		return nil, fmt.Errorf("bootstrap error: %w", err)
	}

	codec, err := auth.NewTokenCodec([]byte(cfg.SecretKey), cfg.HashingAlgorithm)
	if err != nil {
		return nil, fmt.Errorf("token codec error: %w", err)
	}

	s3c, err := library.NewS3Client(ctx, library.S3Options{
		AccessKey:    cfg.S3AccessKey,
		SecretKey:    cfg.S3SecretKey,
		Region:       cfg.S3Region,
		BaseEndpoint: cfg.S3BaseEndpoint,
	})
	if err != nil {
		return nil, fmt.Errorf("s3 client error: %w", err)
	}

	reg := prometheus.NewRegistry()
	reg.MustRegister(
		collectors.NewGoCollector(),
		collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}),
		collectors.NewDBStatsCollector(db, "cecil"),
	)

	app := &App{
		config:  cfg,
		logger:  logger,
		db:      db,
		invites: services.NewInviteService(db, m, hasher, cfg.InviteTTL, logger),
		library: services.NewLibraryService(library.NewS3Library(s3c, cfg.S3Bucket), logger),
	}

	app.grpc = gs.NewGRPCServer(cfg.EndpointAddrGRPC, logger, gs.Services{
		Gate:    services.NewGate(db, m, codec, logger),
		Auth:    services.NewAuthService(db, m, hasher, codec, cfg.TokenTTL, logger),
		Invites: app.invites,
		Users:   services.NewUserAdminService(db, m, logger),
		Library: app.library,
	}, gs.NewMetrics(reg))

	app.ops = ops.NewServer(cfg.OpsAddr, ops.NewRouter(db, reg), logger)

	app.cron = cron.New()
	if _, err := app.cron.AddFunc(cfg.InvitePurgeSchedule, app.purgeInvites); err != nil {
		return nil, fmt.Errorf("invite purge schedule %q: %w", cfg.InvitePurgeSchedule, err)
	}

	return app, nil
}

func (app *App) purgeInvites() {
	ctx := context.Background()
	if _, err := app.invites.PurgeExpired(ctx); err != nil {
		app.logger.Error(ctx, "invite purge failed", "error", err)
	}
}

func (app *App) initSignalHandler(cancelFunc context.CancelFunc) {
	// Channel to catch OS signals.
	sigs := make(chan os.Signal, 1)
	signal.Notify(sigs, syscall.SIGINT, syscall.SIGTERM, syscall.SIGQUIT)

	go func() {
		<-sigs
		cancelFunc()
	}()
}

// Run serves until ctx is done, a signal arrives or a server fails, then
// tears everything down.
func (app *App) Run(ctx context.Context) error {
	ctx, cancelFunc := context.WithCancel(ctx)
	defer cancelFunc()

	app.logger.Info(ctx, "Starting app...")

	app.initSignalHandler(cancelFunc)
	app.cron.Start()

	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error { return app.grpc.Run(gctx) })
	g.Go(func() error { return app.ops.Run(gctx) })

	err := g.Wait()
	app.shutdown()
	return err
}

func (app *App) shutdown() {
	ctx := context.Background()

	<-app.cron.Stop().Done()

	drainCtx, cancel := context.WithTimeout(ctx, importDrainTimeout)
	defer cancel()
	if err := app.library.WaitImports(drainCtx); err != nil {
		app.logger.Warn(ctx, "list imports still running at shutdown", "error", err)
	}

	if err := app.db.Close(); err != nil {
		app.logger.Error(ctx, "db close error", "error", err)
	}

	app.logger.Info(ctx, "App stopped")
}
