package application

import (
	"context"
	"log/slog"
	"sync"
	"sync/atomic"
	"time"

	"golang.org/x/sync/errgroup"

	"github.com/example/hacktown-ops/internal/event"
)

const storeServiceName = "store"

// LoadState tracks the store lifecycle.
type LoadState int32

const (
	StateUninitialized LoadState = iota
	StateLoading
	StateReady
)

func (s LoadState) String() string {
	switch s {
	case StateLoading:
		return "loading"
	case StateReady:
		return "ready"
	default:
		return "uninitialized"
	}
}

// Snapshot is an immutable view of every collection. Callers must not mutate
// the slices they read from it.
type Snapshot struct {
	Config             event.EventConfig
	Venues             []event.Venue
	SlotTemplates      []event.SlotTemplate
	DaySlotActivities  []event.DaySlotActivity
	VenueDayActivities []event.VenueDayActivity
	BackgroundLoaded   bool
	LoadedAt           time.Time

	seq uint64
	rev uint64
}

// Seq returns the reload sequence that produced the snapshot.
func (s *Snapshot) Seq() uint64 {
	return s.seq
}

func (s *Snapshot) clone() *Snapshot {
	out := *s
	out.Config.SelectedDays = append([]event.WeekDay(nil), s.Config.SelectedDays...)
	out.Venues = append([]event.Venue(nil), s.Venues...)
	out.SlotTemplates = append([]event.SlotTemplate(nil), s.SlotTemplates...)
	out.DaySlotActivities = append([]event.DaySlotActivity(nil), s.DaySlotActivities...)
	out.VenueDayActivities = append([]event.VenueDayActivity(nil), s.VenueDayActivities...)
	return &out
}

// StoreChange describes an installed snapshot.
type StoreChange struct {
	Seq      uint64
	Reason   string
	LoadedAt time.Time
}

// Notifier receives a StoreChange after every installed snapshot.
type Notifier interface {
	Publish(change StoreChange)
}

// Recorder observes store reloads and façade mutations.
type Recorder interface {
	ObserveReload(phase string, duration time.Duration, err error)
	ObserveMutation(operation string, duration time.Duration, err error)
}

type nopRecorder struct{}

func (nopRecorder) ObserveReload(string, time.Duration, error)   {}
func (nopRecorder) ObserveMutation(string, time.Duration, error) {}

type nopNotifier struct{}

func (nopNotifier) Publish(StoreChange) {}

// Store holds the authoritative in-memory collections loaded from the backend.
type Store struct {
	backend  Backend
	logger   *slog.Logger
	now      func() time.Time
	recorder Recorder
	notifier Notifier

	state     atomic.Int32
	current   atomic.Pointer[Snapshot]
	seq       atomic.Uint64
	rev       atomic.Uint64
	installMu sync.Mutex

	bgCtx    context.Context
	bgCancel context.CancelFunc
	bg       sync.WaitGroup

	hookMu         sync.RWMutex
	onSessionError func(error)

	views *viewCache
}

// NewStore constructs a Store backed by the given collaborator.
func NewStore(backend Backend, logger *slog.Logger) *Store {
	ctx, cancel := context.WithCancel(context.Background())
	s := &Store{
		backend:  backend,
		logger:   defaultLogger(logger),
		now:      time.Now,
		recorder: nopRecorder{},
		notifier: nopNotifier{},
		bgCtx:    ctx,
		bgCancel: cancel,
	}
	s.views = newViewCache(time.Minute, 16, func() time.Time { return s.now() })
	return s
}

// SetRecorder replaces the metrics recorder. It must be called before Load.
func (s *Store) SetRecorder(recorder Recorder) {
	if recorder != nil {
		s.recorder = recorder
	}
}

// SetNotifier replaces the change notifier. It must be called before Load.
func (s *Store) SetNotifier(notifier Notifier) {
	if notifier != nil {
		s.notifier = notifier
	}
}

// SetClock overrides the time source used for LoadedAt.
func (s *Store) SetClock(now func() time.Time) {
	if now != nil {
		s.now = now
	}
}

// OnSessionError registers a hook invoked when a backend call fails with a
// session error.
func (s *Store) OnSessionError(fn func(error)) {
	s.hookMu.Lock()
	s.onSessionError = fn
	s.hookMu.Unlock()
}

// State returns the current lifecycle state.
func (s *Store) State() LoadState {
	return LoadState(s.state.Load())
}

// Ready reports whether views can be computed.
func (s *Store) Ready() bool {
	return s.State() == StateReady
}

// Snapshot returns the installed snapshot when the store is ready.
func (s *Store) Snapshot() (*Snapshot, bool) {
	if !s.Ready() {
		return nil, false
	}
	snap := s.current.Load()
	return snap, snap != nil
}

// Load runs the essential phase (config and venues) and returns once the
// store is ready. Slot templates and activity bindings load in the
// background; WaitBackground awaits them.
func (s *Store) Load(ctx context.Context) (err error) {
	logger := serviceLogger(ctx, s.logger, storeServiceName, "Load")
	started := s.now()
	defer func() {
		s.recorder.ObserveReload("essential", s.now().Sub(started), err)
		if err != nil {
			s.noteError(err)
			logger.Error("essential load failed", "error", err, "error_kind", ErrorKind(err))
			return
		}
		logger.Info("essential load completed")
	}()

	previous := s.State()
	s.state.Store(int32(StateLoading))
	seq := s.seq.Add(1)

	var (
		cfg    event.EventConfig
		venues []event.Venue
	)
	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		var fetchErr error
		cfg, fetchErr = s.backend.GetEventConfig(gctx)
		return mapBackendError("GetEventConfig", fetchErr)
	})
	g.Go(func() error {
		var fetchErr error
		venues, fetchErr = s.backend.ListVenues(gctx)
		return mapBackendError("ListVenues", fetchErr)
	})
	if err = g.Wait(); err != nil {
		s.state.Store(int32(previous))
		return err
	}

	next := &Snapshot{LoadedAt: s.now(), seq: seq}
	if cur := s.current.Load(); cur != nil {
		next = cur.clone()
		next.LoadedAt = s.now()
		next.seq = seq
	}
	next.Config = normalizeConfig(cfg)
	next.Venues = venues
	installed := s.install(next, "load")
	s.state.Store(int32(StateReady))
	if !installed {
		return nil
	}

	s.bg.Add(1)
	go s.loadBackground(seq)
	return nil
}

func (s *Store) loadBackground(seq uint64) {
	defer s.bg.Done()

	ctx := s.bgCtx
	logger := serviceLogger(ctx, s.logger, storeServiceName, "LoadBackground")
	started := s.now()

	var (
		templates []event.SlotTemplate
		dsas      []event.DaySlotActivity
		vdas      []event.VenueDayActivity
	)
	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		var err error
		templates, err = s.backend.ListSlotTemplates(gctx)
		return mapBackendError("ListSlotTemplates", err)
	})
	g.Go(func() error {
		var err error
		dsas, err = s.backend.ListDaySlotActivities(gctx)
		return mapBackendError("ListDaySlotActivities", err)
	})
	g.Go(func() error {
		var err error
		vdas, err = s.backend.ListVenueDayActivities(gctx)
		return mapBackendError("ListVenueDayActivities", err)
	})
	err := g.Wait()
	s.recorder.ObserveReload("background", s.now().Sub(started), err)
	if err != nil {
		s.noteError(err)
		logger.Error("background load failed", "error", err, "error_kind", ErrorKind(err))
		return
	}

	s.installMu.Lock()
	cur := s.current.Load()
	if cur == nil || cur.seq != seq {
		s.installMu.Unlock()
		logger.Debug("background load superseded", "seq", seq)
		return
	}
	next := cur.clone()
	next.SlotTemplates = templates
	next.DaySlotActivities = dsas
	next.VenueDayActivities = vdas
	next.BackgroundLoaded = true
	next.LoadedAt = s.now()
	next.rev = s.rev.Add(1)
	s.current.Store(next)
	s.installMu.Unlock()
	s.views.Invalidate()

	s.notifier.Publish(StoreChange{Seq: seq, Reason: "background", LoadedAt: next.LoadedAt})
	logger.Info("background load completed", "templates", len(templates), "day_activities", len(dsas))
}

// WaitBackground blocks until the background phase of every Load returned.
func (s *Store) WaitBackground(ctx context.Context) error {
	done := make(chan struct{})
	go func() {
		s.bg.Wait()
		close(done)
	}()
	select {
	case <-done:
		return nil
	case <-ctx.Done():
		return ctx.Err()
	}
}

// Reload fetches every collection in parallel and installs the result
// unless a newer reload was installed first.
func (s *Store) Reload(ctx context.Context) (err error) {
	return s.reload(ctx, "reload")
}

func (s *Store) reload(ctx context.Context, reason string) (err error) {
	logger := serviceLogger(ctx, s.logger, storeServiceName, "Reload", "reason", reason)
	started := s.now()
	seq := s.seq.Add(1)
	defer func() {
		s.recorder.ObserveReload("full", s.now().Sub(started), err)
		if err != nil {
			s.noteError(err)
			logger.Error("reload failed", "seq", seq, "error", err, "error_kind", ErrorKind(err))
			return
		}
		logger.Debug("reload completed", "seq", seq)
	}()

	next := &Snapshot{BackgroundLoaded: true, seq: seq}
	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		cfg, fetchErr := s.backend.GetEventConfig(gctx)
		next.Config = normalizeConfig(cfg)
		return mapBackendError("GetEventConfig", fetchErr)
	})
	g.Go(func() error {
		var fetchErr error
		next.Venues, fetchErr = s.backend.ListVenues(gctx)
		return mapBackendError("ListVenues", fetchErr)
	})
	g.Go(func() error {
		var fetchErr error
		next.SlotTemplates, fetchErr = s.backend.ListSlotTemplates(gctx)
		return mapBackendError("ListSlotTemplates", fetchErr)
	})
	g.Go(func() error {
		var fetchErr error
		next.DaySlotActivities, fetchErr = s.backend.ListDaySlotActivities(gctx)
		return mapBackendError("ListDaySlotActivities", fetchErr)
	})
	g.Go(func() error {
		var fetchErr error
		next.VenueDayActivities, fetchErr = s.backend.ListVenueDayActivities(gctx)
		return mapBackendError("ListVenueDayActivities", fetchErr)
	})
	if err = g.Wait(); err != nil {
		return err
	}

	next.LoadedAt = s.now()
	if s.install(next, reason) {
		s.state.Store(int32(StateReady))
	}
	return nil
}

// install swaps in next unless a snapshot from a newer sequence is present.
func (s *Store) install(next *Snapshot, reason string) bool {
	s.installMu.Lock()
	if cur := s.current.Load(); cur != nil && cur.seq > next.seq {
		s.installMu.Unlock()
		return false
	}
	next.rev = s.rev.Add(1)
	s.current.Store(next)
	s.installMu.Unlock()
	s.views.Invalidate()

	s.notifier.Publish(StoreChange{Seq: next.seq, Reason: reason, LoadedAt: next.LoadedAt})
	return true
}

// update applies fn to a copy of the current snapshot and installs it under
// a fresh sequence.
func (s *Store) update(reason string, fn func(*Snapshot)) {
	s.installMu.Lock()
	cur := s.current.Load()
	if cur == nil {
		s.installMu.Unlock()
		return
	}
	next := cur.clone()
	fn(next)
	next.seq = s.seq.Add(1)
	next.LoadedAt = s.now()
	next.rev = s.rev.Add(1)
	s.current.Store(next)
	s.installMu.Unlock()
	s.views.Invalidate()

	s.notifier.Publish(StoreChange{Seq: next.seq, Reason: reason, LoadedAt: next.LoadedAt})
}

func (s *Store) noteError(err error) {
	if !IsSessionError(err) {
		return
	}
	s.hookMu.RLock()
	hook := s.onSessionError
	s.hookMu.RUnlock()
	if hook != nil {
		hook(err)
	}
}

// Close cancels the background phase and waits for it.
func (s *Store) Close() {
	s.bgCancel()
	s.bg.Wait()
}

func normalizeConfig(cfg event.EventConfig) event.EventConfig {
	cfg.SelectedDays = event.SortDays(cfg.SelectedDays)
	return cfg
}
