package models

// Response DTOs. Field names and number formatting mirror what the React
// front end already consumes; several values are fixed-point strings because
// the charts expect them that way.

// HourlyPoint is one hour bucket of a consumption series.
type HourlyPoint struct {
	Hour             string `json:"hour"`
	TotalConsumption string `json:"total_consumption"`
}

// DayHourPoint is one (day, hour-of-day) bucket of a multi-day series.
type DayHourPoint struct {
	Day              string `json:"day"`
	Hour             int    `json:"hour"`
	TotalConsumption string `json:"total_consumption"`
}

// MeterConsumptionEntry is one meter's consumption over a window.
type MeterConsumptionEntry struct {
	EnergyMeterID int    `json:"energy_meter_id"`
	Consumption   string `json:"consumption"`
}

// PeriodConsumptionEntry is one meter's consumption for a day/week/month
// period request.
type PeriodConsumptionEntry struct {
	MeterID     int    `json:"meterId"`
	Consumption string `json:"consumption"`
}

// ZoneConsumptionEntry is one zone's consumption with numeric value, used by
// the high/low comparison view.
type ZoneConsumptionEntry struct {
	MeterID     int     `json:"meter_id"`
	Zone        string  `json:"zone,omitempty"`
	Consumption float64 `json:"consumption"`
}

// HighLowResponse carries per-zone consumption plus the extremes.
type HighLowResponse struct {
	ConsumptionData []ZoneConsumptionEntry `json:"consumptionData"`
	HighZone        ZoneConsumptionEntry   `json:"highZone"`
	LowZone         ZoneConsumptionEntry   `json:"lowZone"`
}

// MinutePoint is one minute bucket of the demand series.
type MinutePoint struct {
	Minute   string `json:"minute"`
	TotalKVA string `json:"total_kVA"`
}

// ThresholdExceedance is a minute whose demand crossed the sanctioned limit.
type ThresholdExceedance struct {
	ID       int    `json:"id"`
	Minute   string `json:"minute"`
	TotalKVA string `json:"total_kVA"`
}

// PowerFactorPoint is one hour bucket of a zone's power factor series.
type PowerFactorPoint struct {
	Hour        string  `json:"hour"`
	PowerFactor float64 `json:"power_factor"`
}

// PeakDemandSummary answers the single-figure peak demand request.
type PeakDemandSummary struct {
	Success           bool    `json:"success"`
	PeakDemand        float64 `json:"peakDemand"`
	Unit              string  `json:"unit"`
	Timestamp         string  `json:"timestamp"`
	MinutesEvaluated  int     `json:"minutesEvaluated"`
	CalculationWindow string  `json:"calculationWindow"`
	DataAvailable     bool    `json:"dataAvailable"`
}

// TotalConsumptionSummary answers the whole-day total consumption request.
type TotalConsumptionSummary struct {
	Success        bool    `json:"success"`
	Consumption    float64 `json:"consumption"`
	Unit           string  `json:"unit"`
	StartTimestamp string  `json:"startTimestamp"`
	EndTimestamp   string  `json:"endTimestamp"`
	MeterCount     int     `json:"meterCount"`
}

// CostSummary is the tariff-period cost breakdown response.
type CostSummary struct {
	TotalConsumption string  `json:"totalConsumption"`
	TotalCost        string  `json:"totalCost"`
	CurrentRate      float64 `json:"currentRate"`
	CurrentPeriod    string  `json:"currentPeriod"`
	Currency         string  `json:"currency"`
}

// ValueUnit is a number with its measurement unit.
type ValueUnit struct {
	Value float64 `json:"value"`
	Unit  string  `json:"unit"`
}

// DashboardData groups the summary figures shown on the landing dashboard.
type DashboardData struct {
	TotalConsumption     ValueUnit               `json:"totalConsumption"`
	PeakDemand           ValueUnit               `json:"peakDemand"`
	MeterWiseConsumption []MeterConsumptionEntry `json:"meterWiseConsumption"`
}

// DashboardResponse is the combined dashboard payload.
type DashboardResponse struct {
	Success   bool          `json:"success"`
	Timestamp string        `json:"timestamp"`
	Data      DashboardData `json:"data"`
}

// LiveDemandUpdate is one push of the live demand stream.
type LiveDemandUpdate struct {
	Minute   string  `json:"minute"`
	TotalKVA float64 `json:"total_kVA"`
}
