package testfixtures

import (
	"sync"
	"testing"
	"time"
)

func TestClock(t *testing.T) {
	t.Parallel()

	t.Run("defaults to the event start", func(t *testing.T) {
		t.Parallel()
		if got := NewClock(time.Time{}).Now(); !got.Equal(EventStart) {
			t.Fatalf("expected %v, got %v", EventStart, got)
		}
	})

	t.Run("advance and set", func(t *testing.T) {
		t.Parallel()
		clock := NewClock(time.Time{})
		if got := clock.Advance(90 * time.Minute); !got.Equal(EventStart.Add(90 * time.Minute)) {
			t.Fatalf("expected 10:30, got %v", got)
		}
		later := EventStart.Add(48 * time.Hour)
		clock.Set(later)
		if got := clock.NowFunc()(); !got.Equal(later) {
			t.Fatalf("expected %v, got %v", later, got)
		}
	})

	t.Run("ticker advances per call", func(t *testing.T) {
		t.Parallel()
		clock := NewClock(time.Time{})
		tick := clock.Ticker(time.Second)
		first, second := tick(), tick()
		if got := second.Sub(first); got != time.Second {
			t.Fatalf("expected one second between ticks, got %v", got)
		}
	})

	t.Run("nil clock uses wall time", func(t *testing.T) {
		t.Parallel()
		var clock *Clock
		if clock.NowFunc()().IsZero() {
			t.Fatal("expected wall clock time")
		}
	})

	t.Run("concurrent advance", func(t *testing.T) {
		t.Parallel()
		clock := NewClock(time.Time{})
		var wg sync.WaitGroup
		for i := 0; i < 50; i++ {
			wg.Add(1)
			go func() {
				defer wg.Done()
				clock.Advance(time.Minute)
			}()
		}
		wg.Wait()
		if got := clock.Now(); !got.Equal(EventStart.Add(50 * time.Minute)) {
			t.Fatalf("expected 50 minutes later, got %v", got)
		}
	})
}
