package application

import (
	"context"
	"fmt"
	"log/slog"
	"sync"
	"time"

	"github.com/go-playground/validator/v10"
)

const facadeServiceName = "Facade"

// Facade is the only write path into the store. Every mutation validates its
// input, writes through the backend, applies an optimistic local update and
// reloads all collections before returning. Mutations are serialised.
type Facade struct {
	store    *Store
	backend  Backend
	validate *validator.Validate
	now      func() time.Time
	logger   *slog.Logger

	mu sync.Mutex
}

// NewFacade constructs a façade over the store and its backend.
func NewFacade(store *Store, backend Backend) *Facade {
	return NewFacadeWithLogger(store, backend, nil)
}

// NewFacadeWithLogger constructs a façade with a specified logger.
func NewFacadeWithLogger(store *Store, backend Backend, logger *slog.Logger) *Facade {
	return &Facade{
		store:    store,
		backend:  backend,
		validate: newValidator(),
		now:      time.Now,
		logger:   defaultLogger(logger),
	}
}

// Store exposes the store the façade writes to.
func (f *Facade) Store() *Store {
	return f.store
}

type mutation struct {
	f         *Facade
	ctx       context.Context
	logger    *slog.Logger
	operation string
	started   time.Time
}

// begin takes the writer lock; end releases it.
func (f *Facade) begin(ctx context.Context, operation string, attrs ...any) *mutation {
	f.mu.Lock()
	return &mutation{
		f:         f,
		ctx:       ctx,
		logger:    serviceLogger(ctx, f.logger, facadeServiceName, operation, attrs...),
		operation: operation,
		started:   f.now(),
	}
}

func (m *mutation) ready() error {
	if m.f == nil || m.f.store == nil || m.f.backend == nil {
		return fmt.Errorf("facade not configured")
	}
	if !m.f.store.Ready() {
		return ErrNotReady
	}
	return nil
}

func (m *mutation) snapshot() *Snapshot {
	snap, _ := m.f.store.Snapshot()
	return snap
}

func (m *mutation) end(err error, message string, attrs ...any) {
	defer m.f.mu.Unlock()
	m.f.store.recorder.ObserveMutation(m.operation, m.f.now().Sub(m.started), err)
	if err != nil {
		m.f.store.noteError(err)
		m.logger.ErrorContext(m.ctx, "mutation failed", "error", err, "error_kind", ErrorKind(err))
		return
	}
	m.logger.With(attrs...).InfoContext(m.ctx, message)
}

// reload refreshes the store after a successful write. A failure is logged
// and not returned; the optimistic snapshot stays installed.
func (m *mutation) reload() {
	if err := m.f.store.reload(m.ctx, m.operation); err != nil {
		m.logger.WarnContext(m.ctx, "reload after write failed", "error", err, "error_kind", ErrorKind(err))
	}
}
