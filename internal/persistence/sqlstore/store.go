package sqlstore

import (
	"context"
	"database/sql"
	"encoding/json"
	"fmt"
	"log/slog"
	"time"

	"github.com/google/uuid"

	"github.com/example/hacktown-ops/internal/event"
)

// timeLayout is fixed width so text timestamps sort chronologically.
const timeLayout = "2006-01-02T15:04:05.000000Z"

func formatTime(t time.Time) string {
	return t.UTC().Format(timeLayout)
}

func parseTime(value string) (time.Time, error) {
	t, err := time.Parse(timeLayout, value)
	if err != nil {
		// Older rows may carry RFC3339.
		return time.Parse(time.RFC3339Nano, value)
	}
	return t, nil
}

// Store implements the event collections, account and session repositories on
// top of a ConnectionPool.
type Store struct {
	pool   *ConnectionPool
	retry  *retryHelper
	newID  func() string
	now    func() time.Time
	logger *slog.Logger
}

// Option customizes a Store.
type Option func(*Store)

// WithIDGenerator overrides the uuid based record identifiers.
func WithIDGenerator(fn func() string) Option {
	return func(s *Store) {
		if fn != nil {
			s.newID = fn
		}
	}
}

// WithClock overrides the timestamp source.
func WithClock(fn func() time.Time) Option {
	return func(s *Store) {
		if fn != nil {
			s.now = fn
		}
	}
}

// WithLogger sets the logger used for retried writes and migrations.
func WithLogger(logger *slog.Logger) Option {
	return func(s *Store) {
		if logger != nil {
			s.logger = logger
		}
	}
}

// WithRetryConfig overrides the retry policy for transient write failures.
func WithRetryConfig(config RetryConfig) Option {
	return func(s *Store) {
		s.retry = newRetryHelper(config)
	}
}

// New returns a store bound to pool. The schema must already be migrated.
func New(pool *ConnectionPool, opts ...Option) *Store {
	s := &Store{
		pool:   pool,
		retry:  newRetryHelper(DefaultRetryConfig()),
		newID:  uuid.NewString,
		now:    time.Now,
		logger: slog.Default(),
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// Open connects, migrates and returns a ready store.
func Open(ctx context.Context, config Config, opts ...Option) (*Store, error) {
	pool, err := NewConnectionPool(ctx, config)
	if err != nil {
		return nil, err
	}
	s := New(pool, opts...)
	if err := RunMigrations(ctx, pool, s.logger); err != nil {
		_ = pool.Close()
		return nil, err
	}
	return s, nil
}

// Pool exposes the connection pool.
func (s *Store) Pool() *ConnectionPool {
	return s.pool
}

// Close releases the underlying pool.
func (s *Store) Close() error {
	return s.pool.Close()
}

// Ping checks database connectivity.
func (s *Store) Ping(ctx context.Context) error {
	return s.pool.Ping(ctx)
}

func (s *Store) timestamp() string {
	return formatTime(s.now())
}

// write runs fn in a transaction, retrying transient failures.
func (s *Store) write(ctx context.Context, op string, fn func(tx *sql.Tx) error) error {
	attempts := 0
	err := s.retry.do(ctx, func() error {
		attempts++
		return s.pool.WithTransaction(ctx, fn)
	})
	if attempts > 1 {
		s.logger.Warn("sqlstore write retried",
			slog.String("operation", op),
			slog.Int("attempts", attempts),
			slog.Bool("ok", err == nil))
	}
	return err
}

// requireAffected turns a zero row update into ErrNotFound.
func requireAffected(res sql.Result) error {
	n, err := res.RowsAffected()
	if err != nil {
		return err
	}
	if n == 0 {
		return sql.ErrNoRows
	}
	return nil
}

func encodeDays(days []event.WeekDay) (string, error) {
	raw := make([]string, 0, len(days))
	for _, day := range days {
		raw = append(raw, string(day))
	}
	data, err := json.Marshal(raw)
	if err != nil {
		return "", fmt.Errorf("encode days: %w", err)
	}
	return string(data), nil
}

func decodeDays(value string) ([]event.WeekDay, error) {
	if value == "" {
		return nil, nil
	}
	var raw []string
	if err := json.Unmarshal([]byte(value), &raw); err != nil {
		return nil, fmt.Errorf("decode days %q: %w", value, err)
	}
	days := make([]event.WeekDay, 0, len(raw))
	for _, r := range raw {
		days = append(days, event.WeekDay(r))
	}
	return days, nil
}

// encodeScope stores AllSelected as NULL and explicit scopes as a JSON list.
func encodeScope(scope event.DayScope) (sql.NullString, error) {
	if scope.IsAllSelected() {
		return sql.NullString{}, nil
	}
	value, err := encodeDays(scope.Days())
	if err != nil {
		return sql.NullString{}, err
	}
	return sql.NullString{String: value, Valid: true}, nil
}

func decodeScope(value sql.NullString) (event.DayScope, error) {
	if !value.Valid {
		return event.AllSelected(), nil
	}
	days, err := decodeDays(value.String)
	if err != nil {
		return event.DayScope{}, err
	}
	return event.Explicit(days...), nil
}

func nullableString(value *string) sql.NullString {
	if value == nil {
		return sql.NullString{}
	}
	return sql.NullString{String: *value, Valid: true}
}

func stringPointer(value sql.NullString) *string {
	if !value.Valid {
		return nil
	}
	v := value.String
	return &v
}
