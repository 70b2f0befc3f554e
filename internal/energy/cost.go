package energy

import (
	"time"

	"github.com/shopspring/decimal"

	"github.com/elementsenergies/metalware-monitor/internal/tariff"
	"github.com/elementsenergies/metalware-monitor/internal/timewindow"
)

// MeterReading is a cumulative counter sample for one meter.
type MeterReading struct {
	MeterID   int
	Timestamp time.Time
	Counter   decimal.Decimal
}

// BandConsumption is the consumption and cost attributed to one tariff band.
type BandConsumption struct {
	Band        tariff.Band
	Consumption decimal.Decimal
	Cost        decimal.Decimal
}

// CostBreakdown is the derived output of a cost computation. Values keep
// full precision; callers round at the output boundary.
type CostBreakdown struct {
	TotalConsumption decimal.Decimal
	TotalCost        decimal.Decimal
	PerBand          []BandConsumption
}

// Empty reports whether no meter contributed any reading.
func (c CostBreakdown) Empty() bool {
	for _, b := range c.PerBand {
		if !b.Consumption.IsZero() {
			return false
		}
	}
	return c.TotalConsumption.IsZero()
}

// ComputeCost splits the window into tariff sub-windows and prices each
// meter's counter delta within them. Consumption per meter per sub-window is
// max - min of the counter samples inside it, clamped at zero when a counter
// reset makes the delta negative; meters with no samples contribute zero.
// A window with no data at all yields an all-zero breakdown, not an error.
func ComputeCost(readings []MeterReading, w timewindow.Window, schedule tariff.Schedule) CostBreakdown {
	byMeter := make(map[int][]MeterReading)
	for _, r := range readings {
		byMeter[r.MeterID] = append(byMeter[r.MeterID], r)
	}

	type bandKey struct {
		startHour int
		endHour   int
		label     string
	}

	perBand := make(map[bandKey]decimal.Decimal)
	var order []bandKey

	for _, bw := range schedule.BandsOverlapping(w) {
		sub := bw.Window
		subTotal := decimal.Zero

		for _, samples := range byMeter {
			subTotal = subTotal.Add(windowDelta(samples, sub))
		}

		key := bandKey{startHour: bw.Band.StartHour, endHour: bw.Band.EndHour, label: bw.Band.Label}
		if _, seen := perBand[key]; !seen {
			order = append(order, key)
		}
		perBand[key] = perBand[key].Add(subTotal)
	}

	out := CostBreakdown{
		TotalConsumption: decimal.Zero,
		TotalCost:        decimal.Zero,
	}
	for _, key := range order {
		band, _ := lookupBand(schedule, key.startHour, key.endHour, key.label)
		consumption := perBand[key]
		cost := consumption.Mul(band.Rate)

		out.PerBand = append(out.PerBand, BandConsumption{
			Band:        band,
			Consumption: consumption,
			Cost:        cost,
		})
		out.TotalConsumption = out.TotalConsumption.Add(consumption)
		out.TotalCost = out.TotalCost.Add(cost)
	}
	return out
}

// windowDelta returns max - min of the samples inside the window, clamped
// at zero.
func windowDelta(samples []MeterReading, w timewindow.Window) decimal.Decimal {
	var (
		found    bool
		min, max decimal.Decimal
	)
	for _, s := range samples {
		if !w.Contains(s.Timestamp) {
			continue
		}
		if !found {
			min, max = s.Counter, s.Counter
			found = true
			continue
		}
		if s.Counter.LessThan(min) {
			min = s.Counter
		}
		if s.Counter.GreaterThan(max) {
			max = s.Counter
		}
	}
	if !found {
		return decimal.Zero
	}
	delta := max.Sub(min)
	if delta.IsNegative() {
		return decimal.Zero
	}
	return delta
}

func lookupBand(schedule tariff.Schedule, startHour, endHour int, label string) (tariff.Band, bool) {
	for _, b := range schedule.Bands() {
		if b.StartHour == startHour && b.EndHour == endHour && b.Label == label {
			return b, true
		}
	}
	return tariff.Band{}, false
}
