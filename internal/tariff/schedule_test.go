package tariff

import (
	"testing"
	"time"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/elementsenergies/metalware-monitor/internal/timewindow"
)

func mustTime(t *testing.T, value string) time.Time {
	t.Helper()
	parsed, err := time.ParseInLocation("2006-01-02 15:04:05", value, timewindow.FacilityLocation())
	require.NoError(t, err)
	return parsed
}

func TestClassificationTotality(t *testing.T) {
	s := Default()
	for hour := 0; hour < 24; hour++ {
		band, err := s.ClassifyHour(hour)
		require.NoError(t, err, "hour %d unclassified", hour)

		matches := 0
		for _, b := range s.Bands() {
			if b.ContainsHour(hour) {
				matches++
			}
		}
		assert.Equal(t, 1, matches, "hour %d matched %d bands (%s)", hour, matches, band.Label)
	}
}

func TestWraparoundClassification(t *testing.T) {
	s := Default()

	for _, value := range []string{"2025-03-13 23:30:00", "2025-03-14 00:30:00", "2025-03-14 02:59:00"} {
		band, err := s.Classify(mustTime(t, value))
		require.NoError(t, err)
		assert.Equal(t, "Peak", band.Label, "timestamp %s", value)
	}

	band, err := s.Classify(mustTime(t, "2025-03-14 03:00:00"))
	require.NoError(t, err)
	assert.Equal(t, "Normal", band.Label)

	band, err = s.Classify(mustTime(t, "2025-03-14 05:00:00"))
	require.NoError(t, err)
	assert.Equal(t, "Off-Peak", band.Label)
}

func TestFacilityRates(t *testing.T) {
	s := Default()

	band, err := s.ClassifyHour(20)
	require.NoError(t, err)
	assert.True(t, band.Rate.Equal(decimal.RequireFromString("8.165")))

	band, err = s.ClassifyHour(7)
	require.NoError(t, err)
	assert.True(t, band.Rate.Equal(decimal.RequireFromString("6.035")))
}

func TestNewScheduleRejectsGaps(t *testing.T) {
	_, err := NewSchedule(
		Band{StartHour: 0, EndHour: 12, Label: "A", Rate: decimal.NewFromInt(1)},
		Band{StartHour: 13, EndHour: 24, Label: "B", Rate: decimal.NewFromInt(2)},
	)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "no band covers hour 12")
}

func TestNewScheduleRejectsOverlap(t *testing.T) {
	_, err := NewSchedule(
		Band{StartHour: 0, EndHour: 13, Label: "A", Rate: decimal.NewFromInt(1)},
		Band{StartHour: 12, EndHour: 24, Label: "B", Rate: decimal.NewFromInt(2)},
	)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "overlap")
}

func TestBandsOverlappingFullDay(t *testing.T) {
	s := Default()
	w := timewindow.Window{
		Start: mustTime(t, "2025-03-13 00:00:00"),
		End:   mustTime(t, "2025-03-13 23:59:59"),
	}

	bands := s.BandsOverlapping(w)
	require.Len(t, bands, 5)

	// Chronological: Peak tail, Normal, Off-Peak, Normal, Peak head.
	labels := make([]string, 0, len(bands))
	for _, bw := range bands {
		labels = append(labels, bw.Band.Label)
	}
	assert.Equal(t, []string{"Peak", "Normal", "Off-Peak", "Normal", "Peak"}, labels)

	// Partition invariant: contiguous, union equals the window.
	assert.Equal(t, w.Start, bands[0].Window.Start)
	assert.Equal(t, w.End, bands[len(bands)-1].Window.End)
	for i := 1; i < len(bands); i++ {
		assert.Equal(t, bands[i-1].Window.End.Add(time.Second), bands[i].Window.Start)
	}
}

func TestBandsOverlappingPartialWindow(t *testing.T) {
	s := Default()
	w := timewindow.Window{
		Start: mustTime(t, "2025-03-13 09:30:00"),
		End:   mustTime(t, "2025-03-13 10:30:00"),
	}

	bands := s.BandsOverlapping(w)
	require.Len(t, bands, 2)
	assert.Equal(t, "Off-Peak", bands[0].Band.Label)
	assert.Equal(t, mustTime(t, "2025-03-13 09:59:59"), bands[0].Window.End)
	assert.Equal(t, "Normal", bands[1].Band.Label)
	assert.Equal(t, mustTime(t, "2025-03-13 10:00:00"), bands[1].Window.Start)
}

func TestBandsOverlappingZeroLengthWindow(t *testing.T) {
	s := Default()
	at := mustTime(t, "2025-03-13 05:00:00")

	bands := s.BandsOverlapping(timewindow.Window{Start: at, End: at})
	require.Len(t, bands, 1)
	assert.Equal(t, "Off-Peak", bands[0].Band.Label)
	assert.Equal(t, at, bands[0].Window.Start)
	assert.Equal(t, at, bands[0].Window.End)
}

func TestBandsOverlappingSpansMidnight(t *testing.T) {
	s := Default()
	w := timewindow.Window{
		Start: mustTime(t, "2025-03-13 22:00:00"),
		End:   mustTime(t, "2025-03-14 04:00:00"),
	}

	bands := s.BandsOverlapping(w)
	require.Len(t, bands, 3)
	assert.Equal(t, "Peak", bands[0].Band.Label)
	assert.Equal(t, "Peak", bands[1].Band.Label)
	assert.Equal(t, "Normal", bands[2].Band.Label)
	assert.Equal(t, mustTime(t, "2025-03-14 00:00:00"), bands[1].Window.Start)
	assert.Equal(t, mustTime(t, "2025-03-14 02:59:59"), bands[1].Window.End)
}

func TestPeriodName(t *testing.T) {
	band, err := Default().ClassifyHour(23)
	require.NoError(t, err)
	assert.Equal(t, "Peak Hour (19:00:00 - 03:00:00)", band.PeriodName())
}
