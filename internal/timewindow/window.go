package timewindow

import (
	"errors"
	"fmt"
	"sync"
	"time"
)

// ErrInvalidDate marks malformed or inconsistent date/timestamp input.
var ErrInvalidDate = errors.New("invalid date")

var (
	facilityOnce sync.Once
	facilityLoc  *time.Location
)

// FacilityLocation returns the facility's fixed timezone (Asia/Kolkata).
func FacilityLocation() *time.Location {
	facilityOnce.Do(func() {
		loc, err := time.LoadLocation("Asia/Kolkata")
		if err != nil {
			// IST has no DST, a fixed offset is equivalent.
			loc = time.FixedZone("IST", 5*3600+30*60)
		}
		facilityLoc = loc
	})
	return facilityLoc
}

// Window is an inclusive [Start, End] span of wall-clock time.
// Invariant: Start is never after End.
type Window struct {
	Start time.Time
	End   time.Time
}

// Duration returns the span covered by the window. A zero-length window
// (Start == End) covers a single instant and reports zero.
func (w Window) Duration() time.Duration {
	return w.End.Sub(w.Start)
}

// Contains reports whether t falls inside the window, bounds included.
func (w Window) Contains(t time.Time) bool {
	return !t.Before(w.Start) && !t.After(w.End)
}

// ResolveDay computes the inclusive bounds of a calendar day. When date is
// the same calendar day as asOf, the end is clamped to asOf (whole seconds)
// because counters for future minutes do not exist yet.
func ResolveDay(date, asOf time.Time) (Window, error) {
	loc := FacilityLocation()
	if date.IsZero() || asOf.IsZero() {
		return Window{}, fmt.Errorf("%w: zero date or as-of time", ErrInvalidDate)
	}

	date = date.In(loc)
	asOf = asOf.In(loc).Truncate(time.Second)

	y, m, d := date.Date()
	start := time.Date(y, m, d, 0, 0, 0, 0, loc)
	if asOf.Before(start) {
		return Window{}, fmt.Errorf("%w: as-of time %s precedes start of %s", ErrInvalidDate, asOf.Format("2006-01-02 15:04:05"), start.Format("2006-01-02"))
	}

	end := time.Date(y, m, d, 23, 59, 59, 0, loc)
	if sameDay(start, asOf) {
		end = asOf
	}
	return Window{Start: start, End: end}, nil
}

// ResolveWeek computes the Sunday-to-Saturday week containing date, with the
// end clamped to asOf when the week is still in progress.
func ResolveWeek(date, asOf time.Time) (Window, error) {
	loc := FacilityLocation()
	if date.IsZero() || asOf.IsZero() {
		return Window{}, fmt.Errorf("%w: zero date or as-of time", ErrInvalidDate)
	}

	date = date.In(loc)
	asOf = asOf.In(loc).Truncate(time.Second)

	y, m, d := date.Date()
	dayStart := time.Date(y, m, d, 0, 0, 0, 0, loc)
	start := dayStart.AddDate(0, 0, -int(dayStart.Weekday()))
	if asOf.Before(start) {
		return Window{}, fmt.Errorf("%w: as-of time precedes start of week", ErrInvalidDate)
	}

	end := start.AddDate(0, 0, 6)
	end = time.Date(end.Year(), end.Month(), end.Day(), 23, 59, 59, 0, loc)
	if asOf.Before(end) {
		end = asOf
	}
	return Window{Start: start, End: end}, nil
}

// ResolveMonth computes the calendar month containing date, with the end
// clamped to asOf when the month is still in progress.
func ResolveMonth(date, asOf time.Time) (Window, error) {
	loc := FacilityLocation()
	if date.IsZero() || asOf.IsZero() {
		return Window{}, fmt.Errorf("%w: zero date or as-of time", ErrInvalidDate)
	}

	date = date.In(loc)
	asOf = asOf.In(loc).Truncate(time.Second)

	start := time.Date(date.Year(), date.Month(), 1, 0, 0, 0, 0, loc)
	if asOf.Before(start) {
		return Window{}, fmt.Errorf("%w: as-of time precedes start of month", ErrInvalidDate)
	}

	end := start.AddDate(0, 1, 0).Add(-time.Second)
	if asOf.Before(end) {
		end = asOf
	}
	return Window{Start: start, End: end}, nil
}

// HourlyWindows partitions a window at whole-hour boundaries. Sub-windows are
// contiguous, non-overlapping, and their union equals the input exactly; the
// last one is truncated when the window ends mid-hour. A zero-length window
// yields itself.
func HourlyWindows(w Window) []Window {
	if !w.End.After(w.Start) {
		return []Window{w}
	}

	var out []Window
	cur := w.Start
	for {
		boundary := startOfNextHour(cur)
		if boundary.After(w.End) {
			out = append(out, Window{Start: cur, End: w.End})
			return out
		}
		out = append(out, Window{Start: cur, End: boundary.Add(-time.Second)})
		cur = boundary
	}
}

func startOfNextHour(t time.Time) time.Time {
	y, m, d := t.Date()
	return time.Date(y, m, d, t.Hour()+1, 0, 0, 0, t.Location())
}

func sameDay(a, b time.Time) bool {
	ay, am, ad := a.Date()
	by, bm, bd := b.Date()
	return ay == by && am == bm && ad == bd
}
