package tariff

import (
	"errors"
	"fmt"
	"sort"
	"time"

	"github.com/shopspring/decimal"

	"github.com/elementsenergies/metalware-monitor/internal/timewindow"
)

// ErrUnclassifiedHour means no band matched an hour. A valid schedule covers
// every hour, so hitting this is a schedule bug, not a caller error.
var ErrUnclassifiedHour = errors.New("hour not covered by tariff schedule")

// Band is a time-of-day interval with an electricity rate. EndHour is
// exclusive; EndHour <= StartHour means the band wraps past midnight
// (e.g. 19:00-03:00).
type Band struct {
	StartHour int
	EndHour   int
	Label     string
	Rate      decimal.Decimal
}

// Wraps reports whether the band crosses midnight.
func (b Band) Wraps() bool {
	return b.EndHour <= b.StartHour
}

// ContainsHour reports whether the given hour of day falls inside the band,
// with circular wraparound.
func (b Band) ContainsHour(hour int) bool {
	if b.Wraps() {
		return hour >= b.StartHour || hour < b.EndHour
	}
	return hour >= b.StartHour && hour < b.EndHour
}

// PeriodName renders the band the way the front end displays it,
// e.g. "Peak Hour (19:00:00 - 03:00:00)".
func (b Band) PeriodName() string {
	return fmt.Sprintf("%s Hour (%02d:00:00 - %02d:00:00)", b.Label, b.StartHour, b.EndHour%24)
}

// segment is a band projected onto a non-wrapping [startHour, endHour) range
// within a single day.
type segment struct {
	startHour int
	endHour   int // 1..24
	band      Band
}

// Schedule is an immutable, validated set of bands covering all 24 hours.
type Schedule struct {
	bands    []Band
	segments []segment
}

// NewSchedule validates that the bands cover the full day exactly once when
// normalized to a circular 0-24 range.
func NewSchedule(bands ...Band) (Schedule, error) {
	if len(bands) == 0 {
		return Schedule{}, errors.New("tariff: empty schedule")
	}

	var segs []segment
	for _, b := range bands {
		if b.StartHour < 0 || b.StartHour > 23 || b.EndHour < 1 || b.EndHour > 24 {
			return Schedule{}, fmt.Errorf("tariff: band %q has hours outside 0-24", b.Label)
		}
		if b.Wraps() {
			segs = append(segs,
				segment{startHour: b.StartHour, endHour: 24, band: b},
				segment{startHour: 0, endHour: b.EndHour, band: b},
			)
		} else {
			segs = append(segs, segment{startHour: b.StartHour, endHour: b.EndHour, band: b})
		}
	}

	sort.Slice(segs, func(i, j int) bool { return segs[i].startHour < segs[j].startHour })

	cursor := 0
	for _, s := range segs {
		if s.startHour < cursor {
			return Schedule{}, fmt.Errorf("tariff: bands %q overlap at hour %d", s.band.Label, s.startHour)
		}
		if s.startHour > cursor {
			return Schedule{}, fmt.Errorf("tariff: no band covers hour %d", cursor)
		}
		cursor = s.endHour
	}
	if cursor != 24 {
		return Schedule{}, fmt.Errorf("tariff: no band covers hour %d", cursor)
	}

	return Schedule{bands: bands, segments: segs}, nil
}

// Bands returns the schedule's bands in configured order.
func (s Schedule) Bands() []Band {
	out := make([]Band, len(s.bands))
	copy(out, s.bands)
	return out
}

// ClassifyHour returns the unique band containing the given hour of day.
func (s Schedule) ClassifyHour(hour int) (Band, error) {
	for _, b := range s.bands {
		if b.ContainsHour(hour) {
			return b, nil
		}
	}
	return Band{}, fmt.Errorf("%w: hour %d", ErrUnclassifiedHour, hour)
}

// Classify returns the band the timestamp falls into, in facility-local time.
func (s Schedule) Classify(t time.Time) (Band, error) {
	return s.ClassifyHour(t.In(timewindow.FacilityLocation()).Hour())
}

// BandWindow pairs a band with the sub-window during which it applies.
type BandWindow struct {
	Band   Band
	Window timewindow.Window
}

// BandsOverlapping decomposes a window into the maximal sub-windows during
// which a single band applies, in chronological order. The sub-windows form
// the same gap-free, non-overlapping partition as timewindow.HourlyWindows.
func (s Schedule) BandsOverlapping(w timewindow.Window) []BandWindow {
	loc := timewindow.FacilityLocation()
	start := w.Start.In(loc)
	end := w.End.In(loc)

	var out []BandWindow
	for day := startOfDay(start); !day.After(end); day = day.AddDate(0, 0, 1) {
		for _, seg := range s.segments {
			segStart := day.Add(time.Duration(seg.startHour) * time.Hour)
			segEnd := day.Add(time.Duration(seg.endHour) * time.Hour).Add(-time.Second)

			subStart := laterOf(segStart, start)
			subEnd := earlierOf(segEnd, end)
			if subStart.After(subEnd) {
				continue
			}
			out = append(out, BandWindow{
				Band:   seg.band,
				Window: timewindow.Window{Start: subStart, End: subEnd},
			})
		}
	}

	return out
}

func startOfDay(t time.Time) time.Time {
	y, m, d := t.Date()
	return time.Date(y, m, d, 0, 0, 0, 0, t.Location())
}

func laterOf(a, b time.Time) time.Time {
	if a.After(b) {
		return a
	}
	return b
}

func earlierOf(a, b time.Time) time.Time {
	if a.Before(b) {
		return a
	}
	return b
}
