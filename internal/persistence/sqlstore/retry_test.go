package sqlstore

import (
	"context"
	"errors"
	"fmt"
	"testing"
	"time"

	"github.com/jackc/pgx/v5/pgconn"

	"github.com/example/hacktown-ops/internal/persistence"
)

func noSleepRetry(max int) (*retryHelper, *[]time.Duration) {
	var delays []time.Duration
	rh := newRetryHelper(RetryConfig{MaxRetries: max, InitialDelay: 10 * time.Millisecond, MaxDelay: 25 * time.Millisecond, BackoffFactor: 2})
	rh.sleep = func(ctx context.Context, d time.Duration) error {
		delays = append(delays, d)
		return ctx.Err()
	}
	return rh, &delays
}

func TestRetryHelper(t *testing.T) {
	t.Parallel()

	t.Run("retries transient errors with capped backoff", func(t *testing.T) {
		t.Parallel()

		rh, delays := noSleepRetry(3)
		calls := 0
		err := rh.do(context.Background(), func() error {
			calls++
			if calls < 4 {
				return errors.New("database is locked (5)")
			}
			return nil
		})
		if err != nil {
			t.Fatalf("expected success, got %v", err)
		}
		want := []time.Duration{10 * time.Millisecond, 20 * time.Millisecond, 25 * time.Millisecond}
		if fmt.Sprint(*delays) != fmt.Sprint(want) {
			t.Fatalf("expected delays %v, got %v", want, *delays)
		}
	})

	t.Run("gives up after max retries", func(t *testing.T) {
		t.Parallel()

		rh, _ := noSleepRetry(2)
		calls := 0
		err := rh.do(context.Background(), func() error {
			calls++
			return &pgconn.PgError{Code: pgSerializationFailure, Message: "could not serialize"}
		})
		if !errors.Is(err, errTransient) || calls != 3 {
			t.Fatalf("expected 3 attempts ending transient, got %d attempts and %v", calls, err)
		}
	})

	t.Run("does not retry constraint errors", func(t *testing.T) {
		t.Parallel()

		rh, _ := noSleepRetry(3)
		calls := 0
		err := rh.do(context.Background(), func() error {
			calls++
			return &pgconn.PgError{Code: pgUniqueViolation, Message: "duplicate key"}
		})
		if !errors.Is(err, persistence.ErrDuplicate) || calls != 1 {
			t.Fatalf("expected one attempt with ErrDuplicate, got %d and %v", calls, err)
		}
	})

	t.Run("stops when the context ends", func(t *testing.T) {
		t.Parallel()

		rh, _ := noSleepRetry(3)
		ctx, cancel := context.WithCancel(context.Background())
		cancel()
		err := rh.do(ctx, func() error { return errors.New("SQLITE_BUSY") })
		if !errors.Is(err, context.Canceled) {
			t.Fatalf("expected context.Canceled, got %v", err)
		}
	})
}

func TestMapError(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name string
		err  error
		want error
	}{
		{"sqlite unique", errors.New("constraint failed: UNIQUE constraint failed: venues.code (2067)"), persistence.ErrDuplicate},
		{"sqlite foreign key", errors.New("constraint failed: FOREIGN KEY constraint failed (787)"), persistence.ErrForeignKeyViolation},
		{"sqlite check", errors.New("constraint failed: CHECK constraint failed: capacity >= 0 (275)"), persistence.ErrConstraintViolation},
		{"pg foreign key", &pgconn.PgError{Code: pgForeignKeyViolation}, persistence.ErrForeignKeyViolation},
		{"pg not null", &pgconn.PgError{Code: pgNotNullViolation}, persistence.ErrConstraintViolation},
		{"already mapped", fmt.Errorf("wrap: %w", persistence.ErrNotFound), persistence.ErrNotFound},
	}
	for _, tt := range tests {
		if got := mapError(tt.err); !errors.Is(got, tt.want) {
			t.Fatalf("%s: expected %v, got %v", tt.name, tt.want, got)
		}
	}
}
