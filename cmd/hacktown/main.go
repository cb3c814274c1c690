package main

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/google/uuid"
	"golang.org/x/sync/errgroup"

	"github.com/example/hacktown-ops/internal/application"
	"github.com/example/hacktown-ops/internal/client"
	"github.com/example/hacktown-ops/internal/config"
	httptransport "github.com/example/hacktown-ops/internal/http"
	"github.com/example/hacktown-ops/internal/logging"
	"github.com/example/hacktown-ops/internal/metrics"
	"github.com/example/hacktown-ops/internal/persistence/sqlstore"
	"github.com/example/hacktown-ops/internal/realtime"
	"github.com/example/hacktown-ops/internal/report"
	"github.com/example/hacktown-ops/internal/scheduler"
)

const (
	jobSessions      = "sessions"
	sessionsSchedule = "@hourly"
	shutdownTimeout  = 10 * time.Second
)

func main() {
	cfg, err := config.Load()
	if err != nil {
		logging.New(os.Stderr, "info").Error("failed to load configuration", "error", err)
		os.Exit(1)
	}
	logger := logging.New(os.Stdout, cfg.LogLevel)

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	if err := run(ctx, cfg, logger); err != nil {
		logger.Error("hacktown service stopped", "error", err)
		os.Exit(1)
	}
}

// service holds the wired components of the daemon.
type service struct {
	logger    *slog.Logger
	app       *application.AppContext
	hub       *realtime.Hub
	metrics   *metrics.Metrics
	scheduler *scheduler.Scheduler
	exporter  *report.Exporter
	handler   http.Handler

	local *sqlstore.Store
	stop  context.CancelFunc
}

type job struct {
	name string
	spec string
	run  func(context.Context) error
}

func run(ctx context.Context, cfg config.Config, logger *slog.Logger) error {
	svc, err := newService(ctx, cfg, logger)
	if err != nil {
		return err
	}
	svc.start(ctx)

	server := &http.Server{
		Addr:              fmt.Sprintf(":%d", cfg.HTTPPort),
		Handler:           svc.handler,
		ReadHeaderTimeout: 10 * time.Second,
		ReadTimeout:       30 * time.Second,
		IdleTimeout:       60 * time.Second,
	}

	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		logger.Info("hacktown API listening", "addr", server.Addr, "backend", cfg.Backend)
		if err := server.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			return fmt.Errorf("serve http: %w", err)
		}
		return nil
	})
	g.Go(func() error {
		<-gctx.Done()
		shutdownCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
		defer cancel()
		if err := server.Shutdown(shutdownCtx); err != nil && !errors.Is(err, http.ErrServerClosed) {
			logger.Error("failed to shutdown server", "error", err)
		}
		return svc.shutdown(shutdownCtx)
	})
	return g.Wait()
}

func newService(ctx context.Context, cfg config.Config, logger *slog.Logger) (*service, error) {
	local, err := openLocalStore(ctx, cfg, logger)
	if err != nil {
		return nil, err
	}
	svc := &service{logger: logger, local: local}

	backend, credentials := selectBackend(cfg, local, logger)
	svc.app = application.NewAppContext(backend, credentials, logger)
	if remote, ok := backend.(*client.Client); ok {
		svc.app.OnSessionExpired(func(error) {
			remote.ClearToken()
			logger.Error("remote backend rejected the token, refresh HACKTOWN_REMOTE_TOKEN")
		})
	}

	svc.metrics = metrics.New()
	svc.hub = realtime.NewHub(logger, realtime.WithObserver(svc.metrics))
	svc.app.Store.SetRecorder(svc.metrics)
	svc.app.Store.SetNotifier(svc.hub)

	accounts := newAccountStoreAdapter(local)
	sessions := newSessionRepositoryAdapter(local)
	auth := application.NewAuthServiceWithLogger(accounts, sessions, application.AuthConfig{
		Secret:     []byte(cfg.SessionSecret),
		SessionTTL: cfg.SessionTTL,
		NewID:      uuid.NewString,
		Now:        time.Now,
	}, logger)

	if cfg.AdminEmail != "" {
		accountService := application.NewAccountServiceWithLogger(accounts, uuid.NewString, time.Now, logger)
		if _, err := accountService.EnsureAdmin(ctx, application.EnsureAdminParams{
			Email:    cfg.AdminEmail,
			Password: cfg.AdminPassword,
		}); err != nil {
			_ = local.Close()
			return nil, fmt.Errorf("seed admin account: %w", err)
		}
	}

	sink, err := newReportSink(ctx, cfg)
	if err != nil {
		_ = local.Close()
		return nil, err
	}
	svc.exporter = report.NewExporterWithLogger(report.NewBuilder(svc.app.Store), sink, logger)

	svc.scheduler = scheduler.New(logger, scheduler.WithObserver(svc.metrics))
	jobs := []job{
		{scheduler.JobRefresh, cfg.RefreshSchedule, svc.app.Store.Reload},
		{jobSessions, sessionsSchedule, func(ctx context.Context) error {
			return sessions.DeleteExpiredSessions(ctx, time.Now())
		}},
	}
	if cfg.ReportSchedule != "" {
		jobs = append(jobs, job{scheduler.JobReport, cfg.ReportSchedule, func(ctx context.Context) error {
			_, err := svc.exporter.Export(ctx)
			return err
		}})
	}
	for _, j := range jobs {
		if err := svc.scheduler.Add(j.name, j.spec, j.run); err != nil {
			_ = local.Close()
			return nil, err
		}
	}

	svc.handler = httptransport.NewRouter(httptransport.RouterConfig{
		Auth:            httptransport.NewAuthHandler(auth, logger),
		Dashboard:       httptransport.NewDashboardHandler(svc.app.Store, svc.app.Checklists, logger),
		Venues:          httptransport.NewVenueHandler(svc.app.Facade, svc.app.Store, logger),
		Schedules:       httptransport.NewScheduleHandler(svc.app.Facade, logger),
		Events:          httptransport.NewEventHandler(svc.app.Facade, svc.app.Store, logger),
		Checklists:      httptransport.NewChecklistHandler(svc.app.Checklists, logger),
		Reports:         httptransport.NewReportHandler(svc.exporter, logger),
		Session:         auth,
		Realtime:        svc.hub,
		Metrics:         svc.metrics.Handler(),
		Readiness:       svc.ready(backend),
		Middleware:      []func(http.Handler) http.Handler{httptransport.RequestLogger(logger)},
		RouteMiddleware: []func(http.Handler) http.Handler{svc.metrics.Middleware},
		Logger:          logger,
	})
	return svc, nil
}

// start loads the store and launches the hub and the scheduler. A failed
// initial load is not fatal: views stay empty and the refresh job retries.
func (s *service) start(ctx context.Context) {
	hubCtx, cancel := context.WithCancel(context.Background())
	s.stop = cancel
	go s.hub.Run(hubCtx)

	if err := s.app.Init(ctx); err != nil {
		s.logger.Error("initial store load failed, waiting for the next refresh", "error", err, "error_kind", application.ErrorKind(err))
	}
	s.scheduler.Start()
}

// ready reports whether the store has loaded and the backend still answers.
func (s *service) ready(backend application.Backend) func(context.Context) error {
	pinger, _ := backend.(interface{ Ping(context.Context) error })
	return func(ctx context.Context) error {
		if !s.app.Store.Ready() {
			return application.ErrNotReady
		}
		if pinger == nil {
			return nil
		}
		return pinger.Ping(ctx)
	}
}

func (s *service) shutdown(ctx context.Context) error {
	var errs []error
	if err := s.scheduler.Stop(ctx); err != nil {
		errs = append(errs, fmt.Errorf("stop scheduler: %w", err))
	}
	if err := s.app.Teardown(ctx); err != nil {
		errs = append(errs, fmt.Errorf("teardown store: %w", err))
	}
	if s.stop != nil {
		s.stop()
	}
	if err := s.local.Close(); err != nil {
		errs = append(errs, fmt.Errorf("close database: %w", err))
	}
	return errors.Join(errs...)
}

// openLocalStore opens the SQL database that always holds accounts and
// sessions, and the event data too unless the backend is remote.
func openLocalStore(ctx context.Context, cfg config.Config, logger *slog.Logger) (*sqlstore.Store, error) {
	dbCfg := sqlstore.DefaultSQLiteConfig(cfg.SQLiteDSN)
	if cfg.Backend == config.BackendPostgres {
		dbCfg = sqlstore.DefaultPostgresConfig(cfg.PostgresDSN)
	}
	store, err := sqlstore.Open(ctx, dbCfg, sqlstore.WithLogger(logger))
	if err != nil {
		return nil, fmt.Errorf("open %s database: %w", dbCfg.Driver, err)
	}
	return store, nil
}

func selectBackend(cfg config.Config, local *sqlstore.Store, logger *slog.Logger) (application.Backend, *application.Credentials) {
	if cfg.Backend != config.BackendRemote {
		return sqlBackend{Store: local}, nil
	}
	remote := client.New(client.Config{
		BaseURL: cfg.RemoteURL,
		Token:   cfg.RemoteToken,
		Timeout: cfg.RemoteTimeout,
	}, client.WithLogger(logger))
	return remote, application.NewCredentials(cfg.RemoteToken)
}

func newReportSink(ctx context.Context, cfg config.Config) (report.Sink, error) {
	if cfg.ReportSink == config.ReportSinkS3 {
		sink, err := report.NewS3Sink(ctx, report.S3Options{
			Bucket:          cfg.S3.Bucket,
			Region:          cfg.S3.Region,
			Endpoint:        cfg.S3.Endpoint,
			PathStyle:       cfg.S3.PathStyle,
			AccessKeyID:     cfg.S3.AccessKeyID,
			SecretAccessKey: cfg.S3.SecretAccessKey,
			Prefix:          "reports",
		})
		if err != nil {
			return nil, fmt.Errorf("configure s3 report sink: %w", err)
		}
		return sink, nil
	}
	sink, err := report.NewFileSink(cfg.ReportDir)
	if err != nil {
		return nil, fmt.Errorf("configure file report sink: %w", err)
	}
	return sink, nil
}
