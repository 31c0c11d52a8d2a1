// Package calendar decides whether an instant falls inside the exchange
// trading window. All functions are pure; time is always an argument.
package calendar

import "time"

// IST is the exchange zone, a fixed UTC+5:30 offset. The host zone is
// never consulted so behavior is identical across deployment regions.
var IST = time.FixedZone("IST", 5*3600+30*60)

// Window boundaries, minutes from midnight IST. The session is
// [09:15, 15:30] inclusive on both ends.
const (
	openMinute  = 9*60 + 15
	closeMinute = 15*60 + 30
)

// IsTradableWindow reports whether now is inside the trading window.
// force always yields true.
func IsTradableWindow(now time.Time, force bool) bool {
	if force {
		return true
	}
	ist := now.In(IST)
	switch ist.Weekday() {
	case time.Saturday, time.Sunday:
		return false
	}
	minute := ist.Hour()*60 + ist.Minute()
	return minute >= openMinute && minute <= closeMinute
}

// Now returns the current instant in IST.
func Now() time.Time {
	return time.Now().In(IST)
}
