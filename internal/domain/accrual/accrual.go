// Package accrual converts a per-hour rate into whole units over aligned periods,
// carrying the fractional part forward as a milli-unit remainder.
package accrual

import (
	"math"
	"time"
)

const (
	// MinPeriod is the shortest accrual period accepted.
	MinPeriod = time.Minute
	// MilliPerUnit is the remainder scale.
	MilliPerUnit = 1000

	hourMs = int64(time.Hour / time.Millisecond)
)

// Outcome is the result of advancing an accrual clock.
// When Periods is zero nothing should be persisted.
type Outcome struct {
	Periods        int64
	MilliPerPeriod int64
	Whole          int64
	Remainder      int64
	Boundary       time.Time
	PreviousAnchor time.Time
}

// ClampPeriod enforces MinPeriod.
func ClampPeriod(period time.Duration) time.Duration {
	if period < MinPeriod {
		return MinPeriod
	}
	return period
}

// MilliPerPeriod converts a per-hour rate to milli-units per period, rounded.
func MilliPerPeriod(perHour float64, period time.Duration) int64 {
	if perHour <= 0 || math.IsNaN(perHour) || math.IsInf(perHour, 0) {
		return 0
	}
	periodMs := period.Milliseconds()
	return int64(math.Round(perHour * float64(periodMs) / float64(hourMs) * MilliPerUnit))
}

// Align floors t to a period boundary measured from the unix epoch.
func Align(t time.Time, period time.Duration) time.Time {
	periodMs := ClampPeriod(period).Milliseconds()
	ms := t.UnixMilli()
	return time.UnixMilli(floorDiv(ms, periodMs) * periodMs)
}

// Advance computes the growth between last and now. The returned Boundary is always
// lastBoundary + Periods*period, never now, so sub-period time carries into the next call.
func Advance(last, now time.Time, period time.Duration, perHour float64, remainderMilli int64) Outcome {
	period = ClampPeriod(period)
	periodMs := period.Milliseconds()

	lastBoundary := floorDiv(last.UnixMilli(), periodMs) * periodMs
	currentBoundary := floorDiv(now.UnixMilli(), periodMs) * periodMs
	periods := (currentBoundary - lastBoundary) / periodMs

	if remainderMilli < 0 {
		remainderMilli = 0
	}

	out := Outcome{
		Remainder:      remainderMilli,
		Boundary:       time.UnixMilli(lastBoundary),
		PreviousAnchor: last,
	}
	if periods <= 0 {
		return out
	}

	micro := MilliPerPeriod(perHour, period)
	total := micro*periods + remainderMilli

	out.Periods = periods
	out.MilliPerPeriod = micro
	out.Whole = total / MilliPerUnit
	out.Remainder = total % MilliPerUnit
	out.Boundary = time.UnixMilli(lastBoundary + periods*periodMs)
	return out
}

func floorDiv(a, b int64) int64 {
	q := a / b
	if (a%b != 0) && ((a < 0) != (b < 0)) {
		q--
	}
	return q
}
