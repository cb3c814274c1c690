// Package scheduler runs the periodic store refresh and report export on cron
// schedules.
package scheduler

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"sync"
	"time"

	"github.com/robfig/cron/v3"
)

// Job names used by the daemon.
const (
	JobRefresh = "refresh"
	JobReport  = "report"
)

// ErrUnknownJob is returned by RunNow for a name that was never added.
var ErrUnknownJob = errors.New("scheduler: unknown job")

// Observer records job outcomes, typically into metrics.
type Observer interface {
	ObserveJob(job string, duration time.Duration, err error)
}

// Scheduler wraps a cron runner. Runs of the same job never overlap.
type Scheduler struct {
	cron     *cron.Cron
	logger   *slog.Logger
	observer Observer
	timeout  time.Duration

	mu     sync.Mutex
	jobs   map[string]func(context.Context) error
	ctx    context.Context
	cancel context.CancelFunc
}

type Option func(*Scheduler)

// WithObserver reports every run to observer.
func WithObserver(observer Observer) Option {
	return func(s *Scheduler) {
		s.observer = observer
	}
}

// WithTimeout bounds each run. Zero disables the bound.
func WithTimeout(timeout time.Duration) Option {
	return func(s *Scheduler) {
		s.timeout = timeout
	}
}

// WithLocation evaluates specs in loc instead of UTC.
func WithLocation(loc *time.Location) Option {
	return func(s *Scheduler) {
		if loc != nil {
			s.cron = newCron(s.logger, loc)
		}
	}
}

func newCron(logger *slog.Logger, loc *time.Location) *cron.Cron {
	cl := cronLogger{logger: logger}
	return cron.New(
		cron.WithLocation(loc),
		cron.WithLogger(cl),
		cron.WithChain(cron.Recover(cl), cron.SkipIfStillRunning(cl)),
	)
}

func New(logger *slog.Logger, opts ...Option) *Scheduler {
	if logger == nil {
		logger = slog.Default()
	}
	logger = logger.With("component", "scheduler")
	s := &Scheduler{
		cron:    newCron(logger, time.UTC),
		logger:  logger,
		timeout: 5 * time.Minute,
		jobs:    make(map[string]func(context.Context) error),
	}
	for _, opt := range opts {
		opt(s)
	}
	s.ctx, s.cancel = context.WithCancel(context.Background())
	return s
}

// Add registers run under name on a standard five-field spec or a
// descriptor such as "@every 5m". Jobs must be added before Start.
func (s *Scheduler) Add(name, spec string, run func(context.Context) error) error {
	if name == "" {
		return fmt.Errorf("scheduler: job name is required")
	}
	if run == nil {
		return fmt.Errorf("scheduler: job %q has no function", name)
	}

	s.mu.Lock()
	defer s.mu.Unlock()
	if _, exists := s.jobs[name]; exists {
		return fmt.Errorf("scheduler: job %q already added", name)
	}
	if _, err := s.cron.AddFunc(spec, func() { _ = s.execute(s.ctx, name, run) }); err != nil {
		return fmt.Errorf("scheduler: job %q: invalid spec %q: %w", name, spec, err)
	}
	s.jobs[name] = run
	s.logger.Info("job scheduled", "job", name, "spec", spec)
	return nil
}

// RunNow executes a registered job synchronously, outside the cron schedule.
func (s *Scheduler) RunNow(ctx context.Context, name string) error {
	s.mu.Lock()
	run, ok := s.jobs[name]
	s.mu.Unlock()
	if !ok {
		return fmt.Errorf("%w: %s", ErrUnknownJob, name)
	}
	return s.execute(ctx, name, run)
}

func (s *Scheduler) execute(ctx context.Context, name string, run func(context.Context) error) (err error) {
	if s.timeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, s.timeout)
		defer cancel()
	}

	start := time.Now()
	defer func() {
		elapsed := time.Since(start)
		if s.observer != nil {
			s.observer.ObserveJob(name, elapsed, err)
		}
		if err != nil {
			s.logger.Error("job failed", "job", name, "duration", elapsed, "error", err)
			return
		}
		s.logger.Debug("job completed", "job", name, "duration", elapsed)
	}()
	return run(ctx)
}

// Start begins dispatching on the cron schedule.
func (s *Scheduler) Start() {
	s.cron.Start()
	s.logger.Info("scheduler started", "jobs", len(s.cron.Entries()))
}

// Stop cancels in-flight runs and waits for them to return or for ctx to end.
func (s *Scheduler) Stop(ctx context.Context) error {
	stopped := s.cron.Stop()
	s.cancel()
	select {
	case <-stopped.Done():
		s.logger.Info("scheduler stopped")
		return nil
	case <-ctx.Done():
		return ctx.Err()
	}
}

// cronLogger adapts slog to cron.Logger.
type cronLogger struct {
	logger *slog.Logger
}

func (l cronLogger) Info(msg string, keysAndValues ...interface{}) {
	l.logger.Debug("cron: "+msg, keysAndValues...)
}

func (l cronLogger) Error(err error, msg string, keysAndValues ...interface{}) {
	l.logger.Error("cron: "+msg, append(keysAndValues, "error", err)...)
}
