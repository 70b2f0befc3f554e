package models

import "time"

// MeterCount is the number of physical sub-metering points in the facility.
const MeterCount = 11

// Reading is one sampled row of the modbus_data table. Counters are
// cumulative; kVA is instantaneous apparent power.
type Reading struct {
	MeterID   int       `db:"energy_meter_id" json:"energy_meter_id"`
	Timestamp time.Time `db:"timestamp" json:"timestamp"`
	KWh       float64   `db:"kwh" json:"kWh"`
	KVAh      float64   `db:"kvah" json:"kVAh"`
	KVA       float64   `db:"total_kva" json:"total_kVA"`
}

// HourlyTotal is a summed counter delta for one hour bucket.
type HourlyTotal struct {
	Hour  time.Time
	Total float64
}

// DayHourTotal is a summed counter delta bucketed by day and hour of day.
type DayHourTotal struct {
	Day   time.Time
	Hour  int
	Total float64
}

// MeterDelta is a counter delta for one meter over a window.
type MeterDelta struct {
	MeterID     int
	Consumption float64
}

// MinuteDemand is the facility-wide apparent power total for one minute.
type MinuteDemand struct {
	Minute   time.Time
	TotalKVA float64
}

// PeakDemandStats summarises minute-level demand over a window.
type PeakDemandStats struct {
	PeakKVA          float64
	MinutesEvaluated int
	FirstMinute      time.Time
	LastMinute       time.Time
}

// HourlyPowerFactor carries the counter deltas needed to derive a power
// factor (kWh delta / kVAh delta) for one hour bucket.
type HourlyPowerFactor struct {
	Hour      time.Time
	KWhDelta  float64
	KVAhDelta float64
}

// PowerFactor returns kWh/kVAh clamped to [0, 1]; hours without apparent
// energy report zero.
func (h HourlyPowerFactor) PowerFactor() float64 {
	if h.KVAhDelta <= 0 {
		return 0
	}
	pf := h.KWhDelta / h.KVAhDelta
	if pf < 0 {
		return 0
	}
	if pf > 1 {
		return 1
	}
	return pf
}
