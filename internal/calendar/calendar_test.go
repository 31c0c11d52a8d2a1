// Package calendar_test provides tests for the trading-window gate.
package calendar_test

import (
	"testing"
	"time"

	"github.com/indexflow/trading-engine/internal/calendar"
)

func ist(year int, month time.Month, day, hour, min int) time.Time {
	return time.Date(year, month, day, hour, min, 0, 0, calendar.IST)
}

func TestWindowBoundaries(t *testing.T) {
	cases := []struct {
		name string
		now  time.Time
		want bool
	}{
		{"monday mid-session", ist(2025, time.June, 2, 11, 0), true},
		{"open boundary inclusive", ist(2025, time.June, 2, 9, 15), true},
		{"close boundary inclusive", ist(2025, time.June, 2, 15, 30), true},
		{"one minute before open", ist(2025, time.June, 2, 9, 14), false},
		{"one minute after close", ist(2025, time.June, 2, 15, 31), false},
		{"friday close", ist(2025, time.June, 6, 15, 30), true},
		{"saturday", ist(2025, time.June, 7, 11, 0), false},
		{"sunday", ist(2025, time.June, 8, 11, 0), false},
		{"weekday midnight", ist(2025, time.June, 3, 0, 0), false},
	}

	for _, tc := range cases {
		if got := calendar.IsTradableWindow(tc.now, false); got != tc.want {
			t.Errorf("%s: IsTradableWindow(%v, false) = %v, want %v", tc.name, tc.now, got, tc.want)
		}
	}
}

func TestForceOverridesWindow(t *testing.T) {
	closed := []time.Time{
		ist(2025, time.June, 7, 11, 0), // Saturday
		ist(2025, time.June, 2, 3, 0),  // weekday pre-open
		ist(2025, time.June, 2, 23, 0), // weekday post-close
	}
	for _, now := range closed {
		if !calendar.IsTradableWindow(now, true) {
			t.Errorf("force=true must open the gate at %v", now)
		}
	}
}

func TestGateIsPure(t *testing.T) {
	now := ist(2025, time.June, 2, 10, 0)
	first := calendar.IsTradableWindow(now, false)
	for i := 0; i < 100; i++ {
		if calendar.IsTradableWindow(now, false) != first {
			t.Fatal("same input produced different results")
		}
	}
}

func TestHostZoneIrrelevant(t *testing.T) {
	// 04:00 UTC on a Monday is 09:30 IST, inside the window regardless of
	// how the host clock is zoned.
	utc := time.Date(2025, time.June, 2, 4, 0, 0, 0, time.UTC)
	if !calendar.IsTradableWindow(utc, false) {
		t.Error("expected 04:00 UTC Monday (09:30 IST) to be tradable")
	}
	// 11:00 UTC is 16:30 IST, after close.
	utc = time.Date(2025, time.June, 2, 11, 0, 0, 0, time.UTC)
	if calendar.IsTradableWindow(utc, false) {
		t.Error("expected 11:00 UTC Monday (16:30 IST) to be closed")
	}
}
