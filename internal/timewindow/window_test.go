package timewindow

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func mustTime(t *testing.T, value string) time.Time {
	t.Helper()
	parsed, err := time.ParseInLocation("2006-01-02 15:04:05", value, FacilityLocation())
	require.NoError(t, err)
	return parsed
}

func mustDate(t *testing.T, value string) time.Time {
	t.Helper()
	parsed, err := time.ParseInLocation("2006-01-02", value, FacilityLocation())
	require.NoError(t, err)
	return parsed
}

func TestResolveDayClampsToAsOfForToday(t *testing.T) {
	asOf := mustTime(t, "2025-03-14 14:23:07")

	w, err := ResolveDay(mustDate(t, "2025-03-14"), asOf)
	require.NoError(t, err)

	assert.Equal(t, mustTime(t, "2025-03-14 00:00:00"), w.Start)
	assert.Equal(t, asOf, w.End)
}

func TestResolveDayPastDateEndsAtMidnight(t *testing.T) {
	asOf := mustTime(t, "2025-03-14 14:23:07")

	w, err := ResolveDay(mustDate(t, "2025-03-13"), asOf)
	require.NoError(t, err)

	assert.Equal(t, mustTime(t, "2025-03-13 00:00:00"), w.Start)
	assert.Equal(t, mustTime(t, "2025-03-13 23:59:59"), w.End)
}

func TestResolveDayRejectsFutureDate(t *testing.T) {
	asOf := mustTime(t, "2025-03-14 14:23:07")

	_, err := ResolveDay(mustDate(t, "2025-03-15"), asOf)
	require.ErrorIs(t, err, ErrInvalidDate)
}

func TestResolveDayTruncatesAsOfToSeconds(t *testing.T) {
	asOf := mustTime(t, "2025-03-14 14:23:07").Add(300 * time.Millisecond)

	w, err := ResolveDay(mustDate(t, "2025-03-14"), asOf)
	require.NoError(t, err)
	assert.Equal(t, mustTime(t, "2025-03-14 14:23:07"), w.End)
}

func TestResolveWeekStartsOnSunday(t *testing.T) {
	// 2025-03-12 is a Wednesday; its week starts Sunday 2025-03-09.
	asOf := mustTime(t, "2025-03-20 10:00:00")

	w, err := ResolveWeek(mustDate(t, "2025-03-12"), asOf)
	require.NoError(t, err)

	assert.Equal(t, mustTime(t, "2025-03-09 00:00:00"), w.Start)
	assert.Equal(t, mustTime(t, "2025-03-15 23:59:59"), w.End)
}

func TestResolveWeekClampsInProgressWeek(t *testing.T) {
	asOf := mustTime(t, "2025-03-12 09:30:00")

	w, err := ResolveWeek(mustDate(t, "2025-03-12"), asOf)
	require.NoError(t, err)
	assert.Equal(t, asOf, w.End)
}

func TestResolveMonthBounds(t *testing.T) {
	asOf := mustTime(t, "2025-04-02 08:00:00")

	w, err := ResolveMonth(mustDate(t, "2025-03-15"), asOf)
	require.NoError(t, err)

	assert.Equal(t, mustTime(t, "2025-03-01 00:00:00"), w.Start)
	assert.Equal(t, mustTime(t, "2025-03-31 23:59:59"), w.End)
}

func TestHourlyWindowsPartitionInvariant(t *testing.T) {
	cases := []struct {
		name  string
		start string
		end   string
		count int
	}{
		{"full day", "2025-03-13 00:00:00", "2025-03-13 23:59:59", 24},
		{"mid-hour tail", "2025-03-13 00:00:00", "2025-03-13 14:23:07", 15},
		{"inside one hour", "2025-03-13 05:10:00", "2025-03-13 05:40:00", 1},
		{"cross one boundary", "2025-03-13 05:50:00", "2025-03-13 06:10:00", 2},
	}

	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			w := Window{Start: mustTime(t, tc.start), End: mustTime(t, tc.end)}
			parts := HourlyWindows(w)
			require.Len(t, parts, tc.count)

			// Contiguous, non-overlapping, union equals the input.
			assert.Equal(t, w.Start, parts[0].Start)
			assert.Equal(t, w.End, parts[len(parts)-1].End)
			for i, p := range parts {
				assert.False(t, p.End.Before(p.Start), "sub-window %d inverted", i)
				if i > 0 {
					assert.Equal(t, parts[i-1].End.Add(time.Second), p.Start, "gap before sub-window %d", i)
				}
			}
		})
	}
}

func TestHourlyWindowsZeroLength(t *testing.T) {
	at := mustTime(t, "2025-03-13 00:00:00")
	parts := HourlyWindows(Window{Start: at, End: at})
	require.Len(t, parts, 1)
	assert.Equal(t, at, parts[0].Start)
	assert.Equal(t, at, parts[0].End)
}

func TestWindowContains(t *testing.T) {
	w := Window{Start: mustTime(t, "2025-03-13 05:00:00"), End: mustTime(t, "2025-03-13 06:00:00")}
	assert.True(t, w.Contains(w.Start))
	assert.True(t, w.Contains(w.End))
	assert.False(t, w.Contains(w.End.Add(time.Second)))
}
