package application

import (
	"context"
	"fmt"
	"log/slog"
	"sync"
)

// Credentials holds the bearer token used against a remote backend.
type Credentials struct {
	mu    sync.RWMutex
	token string
}

// NewCredentials returns credentials seeded with token.
func NewCredentials(token string) *Credentials {
	return &Credentials{token: token}
}

// Token returns the current token or the empty string.
func (c *Credentials) Token() string {
	if c == nil {
		return ""
	}
	c.mu.RLock()
	defer c.mu.RUnlock()
	return c.token
}

// Set replaces the token.
func (c *Credentials) Set(token string) {
	c.mu.Lock()
	c.token = token
	c.mu.Unlock()
}

// Clear drops the token.
func (c *Credentials) Clear() {
	c.Set("")
}

// AppContext owns the credentials, the store and the services built on it.
// Init loads the store; Teardown stops background work.
type AppContext struct {
	Credentials *Credentials
	Store       *Store
	Facade      *Facade
	Checklists  *ChecklistService

	logger *slog.Logger

	mu        sync.Mutex
	onExpired func(error)
	started   bool
}

// NewAppContext wires a store, a façade and a checklist service over backend.
func NewAppContext(backend Backend, credentials *Credentials, logger *slog.Logger) *AppContext {
	logger = defaultLogger(logger)
	if credentials == nil {
		credentials = &Credentials{}
	}
	store := NewStore(backend, logger)
	app := &AppContext{
		Credentials: credentials,
		Store:       store,
		Facade:      NewFacadeWithLogger(store, backend, logger),
		Checklists:  NewChecklistServiceWithLogger(store, backend, logger),
		logger:      logger,
	}
	store.OnSessionError(app.sessionExpired)
	return app
}

// OnSessionExpired registers the hook run after a session error cleared the
// credentials.
func (a *AppContext) OnSessionExpired(fn func(error)) {
	a.mu.Lock()
	a.onExpired = fn
	a.mu.Unlock()
}

func (a *AppContext) sessionExpired(err error) {
	a.Credentials.Clear()
	a.mu.Lock()
	hook := a.onExpired
	a.mu.Unlock()
	a.logger.Warn("backend session ended", "error", err, "error_kind", ErrorKind(err))
	if hook != nil {
		hook(err)
	}
}

// Init runs the essential store load.
func (a *AppContext) Init(ctx context.Context) error {
	a.mu.Lock()
	if a.started {
		a.mu.Unlock()
		return fmt.Errorf("application context already initialized")
	}
	a.started = true
	a.mu.Unlock()

	if err := a.Store.Load(ctx); err != nil {
		a.mu.Lock()
		a.started = false
		a.mu.Unlock()
		return fmt.Errorf("load store: %w", err)
	}
	return nil
}

// Teardown waits for the background load until ctx ends, then cancels it.
func (a *AppContext) Teardown(ctx context.Context) error {
	err := a.Store.WaitBackground(ctx)
	a.Store.Close()
	a.mu.Lock()
	a.started = false
	a.mu.Unlock()
	return err
}
