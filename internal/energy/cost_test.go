package energy

import (
	"testing"
	"time"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/elementsenergies/metalware-monitor/internal/tariff"
	"github.com/elementsenergies/metalware-monitor/internal/timewindow"
)

func mustTime(t *testing.T, value string) time.Time {
	t.Helper()
	parsed, err := time.ParseInLocation("2006-01-02 15:04:05", value, timewindow.FacilityLocation())
	require.NoError(t, err)
	return parsed
}

func reading(t *testing.T, meterID int, ts string, counter float64) MeterReading {
	t.Helper()
	return MeterReading{
		MeterID:   meterID,
		Timestamp: mustTime(t, ts),
		Counter:   decimal.NewFromFloat(counter),
	}
}

func dayWindow(t *testing.T, date string) timewindow.Window {
	t.Helper()
	return timewindow.Window{
		Start: mustTime(t, date+" 00:00:00"),
		End:   mustTime(t, date+" 23:59:59"),
	}
}

func TestComputeCostFullDayBreakdown(t *testing.T) {
	readings := []MeterReading{
		reading(t, 1, "2025-03-13 00:00:00", 100),
		reading(t, 1, "2025-03-13 02:59:59", 110),
		reading(t, 1, "2025-03-13 03:00:00", 110),
		reading(t, 1, "2025-03-13 04:59:59", 120),
		reading(t, 1, "2025-03-13 05:00:00", 120),
		reading(t, 1, "2025-03-13 09:59:59", 150),
		reading(t, 1, "2025-03-13 10:00:00", 150),
		reading(t, 1, "2025-03-13 18:59:59", 200),
		reading(t, 1, "2025-03-13 19:00:00", 200),
		reading(t, 1, "2025-03-13 23:59:59", 230),
	}

	breakdown := ComputeCost(readings, dayWindow(t, "2025-03-13"), tariff.Default())

	require.Len(t, breakdown.PerBand, 4)
	byLabel := map[string]BandConsumption{}
	for _, b := range breakdown.PerBand {
		byLabel[b.Band.PeriodName()] = b
	}

	// Peak covers both the 00:00-03:00 tail and 19:00-24:00: 10 + 30.
	peak := byLabel["Peak Hour (19:00:00 - 03:00:00)"]
	assert.Equal(t, "40", peak.Consumption.String())
	assert.Equal(t, "326.6", peak.Cost.String())

	offPeak := byLabel["Off-Peak Hour (05:00:00 - 10:00:00)"]
	assert.Equal(t, "30", offPeak.Consumption.String())
	assert.Equal(t, "181.05", offPeak.Cost.String())

	normalDay := byLabel["Normal Hour (10:00:00 - 19:00:00)"]
	assert.Equal(t, "50", normalDay.Consumption.String())
	assert.Equal(t, "355", normalDay.Cost.String())

	normalNight := byLabel["Normal Hour (03:00:00 - 05:00:00)"]
	assert.Equal(t, "10", normalNight.Consumption.String())
	assert.Equal(t, "71", normalNight.Cost.String())

	assert.Equal(t, "130", breakdown.TotalConsumption.String())
	assert.Equal(t, "933.65", breakdown.TotalCost.String())
}

func TestComputeCostAdditivity(t *testing.T) {
	readings := []MeterReading{
		reading(t, 1, "2025-03-13 06:00:00", 1000.123),
		reading(t, 1, "2025-03-13 09:00:00", 1033.789),
		reading(t, 2, "2025-03-13 11:00:00", 500.5),
		reading(t, 2, "2025-03-13 18:00:00", 551.25),
		reading(t, 3, "2025-03-13 20:00:00", 90.01),
		reading(t, 3, "2025-03-13 22:00:00", 99.99),
	}

	breakdown := ComputeCost(readings, dayWindow(t, "2025-03-13"), tariff.Default())

	sum := decimal.Zero
	for _, b := range breakdown.PerBand {
		sum = sum.Add(b.Consumption.Mul(b.Band.Rate))
	}
	assert.True(t, breakdown.TotalCost.Sub(sum).Abs().LessThan(decimal.RequireFromString("0.000001")),
		"total cost %s != per-band sum %s", breakdown.TotalCost, sum)
}

func TestComputeCostClampsCounterRollback(t *testing.T) {
	// Meter resets mid-window: a later sample is smaller than an earlier one.
	readings := []MeterReading{
		reading(t, 1, "2025-03-13 06:00:00", 500),
		reading(t, 1, "2025-03-13 07:00:00", 510),
		reading(t, 1, "2025-03-13 08:00:00", 3),
		reading(t, 1, "2025-03-13 09:00:00", 8),
	}

	breakdown := ComputeCost(readings, dayWindow(t, "2025-03-13"), tariff.Default())
	for _, b := range breakdown.PerBand {
		assert.False(t, b.Consumption.IsNegative(), "band %s went negative", b.Band.Label)
	}
	assert.False(t, breakdown.TotalConsumption.IsNegative())
	assert.False(t, breakdown.TotalCost.IsNegative())
}

func TestComputeCostMultipleMetersSummed(t *testing.T) {
	readings := []MeterReading{
		reading(t, 1, "2025-03-13 06:00:00", 100),
		reading(t, 1, "2025-03-13 09:00:00", 110),
		reading(t, 2, "2025-03-13 06:30:00", 200),
		reading(t, 2, "2025-03-13 09:30:00", 215),
	}

	breakdown := ComputeCost(readings, dayWindow(t, "2025-03-13"), tariff.Default())

	require.Len(t, breakdown.PerBand, 1)
	assert.Equal(t, "Off-Peak", breakdown.PerBand[0].Band.Label)
	assert.Equal(t, "25", breakdown.PerBand[0].Consumption.String())
}

func TestComputeCostNoReadings(t *testing.T) {
	breakdown := ComputeCost(nil, dayWindow(t, "2025-03-13"), tariff.Default())

	assert.True(t, breakdown.Empty())
	assert.True(t, breakdown.TotalConsumption.IsZero())
	assert.True(t, breakdown.TotalCost.IsZero())
}

func TestComputeCostMeterOutsideSubWindowContributesZero(t *testing.T) {
	readings := []MeterReading{
		reading(t, 1, "2025-03-13 06:00:00", 100),
	}

	breakdown := ComputeCost(readings, dayWindow(t, "2025-03-13"), tariff.Default())
	// A single sample gives max == min, so every band stays at zero.
	assert.True(t, breakdown.TotalConsumption.IsZero())
}
