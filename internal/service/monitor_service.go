package service

import (
	"context"
	"errors"
	"fmt"
	"math"
	"time"

	"go.uber.org/zap"

	"github.com/elementsenergies/metalware-monitor/internal/cache"
	"github.com/elementsenergies/metalware-monitor/internal/energy"
	"github.com/elementsenergies/metalware-monitor/internal/models"
	"github.com/elementsenergies/metalware-monitor/internal/repository"
	"github.com/elementsenergies/metalware-monitor/internal/tariff"
	"github.com/elementsenergies/metalware-monitor/internal/timewindow"
)

// ErrNoData marks a window that produced no readings at all, for endpoints
// whose contract is 404 rather than an empty payload.
var ErrNoData = errors.New("no readings in window")

// ErrInvalidPeriod marks an unknown period keyword.
var ErrInvalidPeriod = errors.New("period must be day, week or month")

const (
	timestampLayout = "2006-01-02 15:04:05"
	dayLayout       = "2006-01-02"
)

// ReadingStore is the aggregation surface the service needs from the
// reading store.
type ReadingStore interface {
	HourlyConsumption(ctx context.Context, w timewindow.Window, counter repository.Counter) ([]models.HourlyTotal, error)
	MeterConsumption(ctx context.Context, w timewindow.Window, counter repository.Counter) ([]models.MeterDelta, error)
	ZoneHourlyConsumption(ctx context.Context, w timewindow.Window, meterID int, counter repository.Counter) ([]models.HourlyTotal, error)
	DailyHourlyConsumption(ctx context.Context, w timewindow.Window) ([]models.DayHourTotal, error)
	MinuteDemand(ctx context.Context, w timewindow.Window) ([]models.MinuteDemand, error)
	MinuteDemandAbove(ctx context.Context, w timewindow.Window, thresholdKVA float64) ([]models.MinuteDemand, error)
	PeakDemand(ctx context.Context, w timewindow.Window) (models.PeakDemandStats, error)
	TotalConsumption(ctx context.Context, w timewindow.Window) (float64, error)
	Readings(ctx context.Context, w timewindow.Window) ([]energy.MeterReading, error)
	PowerFactorByHour(ctx context.Context, w timewindow.Window, meterID int) ([]models.HourlyPowerFactor, error)
}

// MonitorService turns windows and store aggregates into the response
// payloads the dashboard charts consume.
type MonitorService struct {
	store        ReadingStore
	schedule     tariff.Schedule
	cache        *cache.ResponseCache
	thresholdKVA float64
	logger       *zap.Logger
}

// NewMonitorService returns service instance.
func NewMonitorService(store ReadingStore, schedule tariff.Schedule, respCache *cache.ResponseCache, thresholdKVA float64, logger *zap.Logger) *MonitorService {
	return &MonitorService{
		store:        store,
		schedule:     schedule,
		cache:        respCache,
		thresholdKVA: thresholdKVA,
		logger:       logger,
	}
}

// HourlyConsumption returns the facility-wide hourly series for one day.
// Only hours with readings appear.
func (s *MonitorService) HourlyConsumption(ctx context.Context, date, asOf time.Time, counter repository.Counter) ([]models.HourlyPoint, error) {
	w, err := timewindow.ResolveDay(date, asOf)
	if err != nil {
		return nil, err
	}

	totals, err := s.store.HourlyConsumption(ctx, w, counter)
	if err != nil {
		return nil, err
	}

	out := make([]models.HourlyPoint, 0, len(totals))
	for _, h := range totals {
		out = append(out, models.HourlyPoint{
			Hour:             h.Hour.Format(timestampLayout),
			TotalConsumption: fmt.Sprintf("%.1f", h.Total),
		})
	}
	return out, nil
}

// MeterWiseConsumption returns each meter's kWh delta for one day.
func (s *MonitorService) MeterWiseConsumption(ctx context.Context, date, asOf time.Time) ([]models.MeterConsumptionEntry, error) {
	w, err := timewindow.ResolveDay(date, asOf)
	if err != nil {
		return nil, err
	}

	deltas, err := s.store.MeterConsumption(ctx, w, repository.CounterKWh)
	if err != nil {
		return nil, err
	}

	out := make([]models.MeterConsumptionEntry, 0, len(deltas))
	for _, d := range deltas {
		out = append(out, models.MeterConsumptionEntry{
			EnergyMeterID: d.MeterID,
			Consumption:   fmt.Sprintf("%.1f", clampNonNegative(d.Consumption)),
		})
	}
	return out, nil
}

// PeriodConsumption returns per-meter consumption for a day, week or month
// window. An empty result is ErrNoData: that endpoint's contract is 404.
func (s *MonitorService) PeriodConsumption(ctx context.Context, date, asOf time.Time, period string) ([]models.PeriodConsumptionEntry, error) {
	var (
		w   timewindow.Window
		err error
	)
	switch period {
	case "day":
		w, err = timewindow.ResolveDay(date, asOf)
	case "week":
		w, err = timewindow.ResolveWeek(date, asOf)
	case "month":
		w, err = timewindow.ResolveMonth(date, asOf)
	default:
		return nil, fmt.Errorf("%w: got %q", ErrInvalidPeriod, period)
	}
	if err != nil {
		return nil, err
	}

	deltas, err := s.store.MeterConsumption(ctx, w, repository.CounterKWh)
	if err != nil {
		return nil, err
	}
	if len(deltas) == 0 {
		return nil, ErrNoData
	}

	out := make([]models.PeriodConsumptionEntry, 0, len(deltas))
	for _, d := range deltas {
		out = append(out, models.PeriodConsumptionEntry{
			MeterID:     d.MeterID,
			Consumption: fmt.Sprintf("%.1f", clampNonNegative(d.Consumption)),
		})
	}
	return out, nil
}

// RangeHourlyConsumption returns hourly buckets for a multi-day range,
// clipped to asOf.
func (s *MonitorService) RangeHourlyConsumption(ctx context.Context, startDate, endDate, asOf time.Time) ([]models.DayHourPoint, error) {
	loc := timewindow.FacilityLocation()
	if endDate.Before(startDate) {
		return nil, fmt.Errorf("%w: range end before start", timewindow.ErrInvalidDate)
	}

	startDate = startDate.In(loc)
	start := time.Date(startDate.Year(), startDate.Month(), startDate.Day(), 0, 0, 0, 0, loc)
	endDate = endDate.In(loc)
	end := time.Date(endDate.Year(), endDate.Month(), endDate.Day(), 23, 59, 59, 0, loc)
	asOf = asOf.In(loc).Truncate(time.Second)
	if asOf.Before(start) {
		return nil, fmt.Errorf("%w: as-of time precedes range start", timewindow.ErrInvalidDate)
	}
	if asOf.Before(end) {
		end = asOf
	}

	buckets, err := s.store.DailyHourlyConsumption(ctx, timewindow.Window{Start: start, End: end})
	if err != nil {
		return nil, err
	}

	out := make([]models.DayHourPoint, 0, len(buckets))
	for _, b := range buckets {
		out = append(out, models.DayHourPoint{
			Day:              b.Day.Format(dayLayout),
			Hour:             b.Hour,
			TotalConsumption: fmt.Sprintf("%.2f", b.Total),
		})
	}
	return out, nil
}

// ZoneHourlyConsumption returns one zone's hourly series for a day, with
// zero-filled buckets for hours that have no readings so the chart axis
// stays continuous.
func (s *MonitorService) ZoneHourlyConsumption(ctx context.Context, date, asOf time.Time, meterID int, counter repository.Counter) ([]models.HourlyPoint, error) {
	w, err := timewindow.ResolveDay(date, asOf)
	if err != nil {
		return nil, err
	}

	totals, err := s.store.ZoneHourlyConsumption(ctx, w, meterID, counter)
	if err != nil {
		return nil, err
	}

	byHour := make(map[string]float64, len(totals))
	for _, h := range totals {
		byHour[h.Hour.Format(timestampLayout)] += h.Total
	}

	hours := timewindow.HourlyWindows(w)
	out := make([]models.HourlyPoint, 0, len(hours))
	for _, hw := range hours {
		key := hw.Start.Format(timestampLayout)
		out = append(out, models.HourlyPoint{
			Hour:             key,
			TotalConsumption: fmt.Sprintf("%.1f", byHour[key]),
		})
	}
	return out, nil
}

// ZonePowerFactor returns one zone's hourly power factor for a day.
func (s *MonitorService) ZonePowerFactor(ctx context.Context, date, asOf time.Time, meterID int) ([]models.PowerFactorPoint, error) {
	w, err := timewindow.ResolveDay(date, asOf)
	if err != nil {
		return nil, err
	}

	hours, err := s.store.PowerFactorByHour(ctx, w, meterID)
	if err != nil {
		return nil, err
	}

	out := make([]models.PowerFactorPoint, 0, len(hours))
	for _, h := range hours {
		out = append(out, models.PowerFactorPoint{
			Hour:        h.Hour.Format(timestampLayout),
			PowerFactor: round3(h.PowerFactor()),
		})
	}
	return out, nil
}

// HighLowConsumption returns per-zone consumption and the highest and lowest
// consuming zones. Zones with zero consumption are ignored for the low
// extreme so an offline meter does not always win.
func (s *MonitorService) HighLowConsumption(ctx context.Context, date, asOf time.Time) (models.HighLowResponse, error) {
	w, err := timewindow.ResolveDay(date, asOf)
	if err != nil {
		return models.HighLowResponse{}, err
	}

	deltas, err := s.store.MeterConsumption(ctx, w, repository.CounterKWh)
	if err != nil {
		return models.HighLowResponse{}, err
	}

	resp := models.HighLowResponse{ConsumptionData: make([]models.ZoneConsumptionEntry, 0, len(deltas))}
	for _, d := range deltas {
		entry := models.ZoneConsumptionEntry{
			MeterID:     d.MeterID,
			Consumption: round1(clampNonNegative(d.Consumption)),
		}
		if z, ok := models.ZoneByMeter(d.MeterID); ok {
			entry.Zone = z.Name
		}
		resp.ConsumptionData = append(resp.ConsumptionData, entry)

		if entry.Consumption > resp.HighZone.Consumption {
			resp.HighZone = entry
		}
		if entry.Consumption > 0 && (resp.LowZone.MeterID == 0 || entry.Consumption < resp.LowZone.Consumption) {
			resp.LowZone = entry
		}
	}
	return resp, nil
}

// MinuteDemandSeries returns the facility's summed kVA per minute for a day.
func (s *MonitorService) MinuteDemandSeries(ctx context.Context, date, asOf time.Time) ([]models.MinutePoint, error) {
	w, err := timewindow.ResolveDay(date, asOf)
	if err != nil {
		return nil, err
	}

	var cached []models.MinutePoint
	cacheKey := []string{"opeakdemand", w.Start.Format(dayLayout), w.End.Truncate(time.Minute).Format(timestampLayout)}
	if s.cache.Get(ctx, &cached, cacheKey...) {
		return cached, nil
	}

	minutes, err := s.store.MinuteDemand(ctx, w)
	if err != nil {
		return nil, err
	}

	out := make([]models.MinutePoint, 0, len(minutes))
	for _, m := range minutes {
		out = append(out, models.MinutePoint{
			Minute:   m.Minute.Format(timestampLayout),
			TotalKVA: fmt.Sprintf("%.1f", m.TotalKVA),
		})
	}
	s.cache.Set(ctx, out, cacheKey...)
	return out, nil
}

// DemandAboveThreshold returns minutes whose summed kVA exceeded the
// sanctioned-demand threshold, numbered for the exceedance table.
func (s *MonitorService) DemandAboveThreshold(ctx context.Context, date, asOf time.Time) ([]models.ThresholdExceedance, error) {
	w, err := timewindow.ResolveDay(date, asOf)
	if err != nil {
		return nil, err
	}

	minutes, err := s.store.MinuteDemandAbove(ctx, w, s.thresholdKVA)
	if err != nil {
		return nil, err
	}

	out := make([]models.ThresholdExceedance, 0, len(minutes))
	for i, m := range minutes {
		out = append(out, models.ThresholdExceedance{
			ID:       i + 1,
			Minute:   m.Minute.Format(timestampLayout),
			TotalKVA: fmt.Sprintf("%.1f", m.TotalKVA),
		})
	}
	return out, nil
}

// PeakDemandSummary returns the day's highest minute-level demand up to asOf.
func (s *MonitorService) PeakDemandSummary(ctx context.Context, asOf time.Time) (models.PeakDemandSummary, error) {
	w, err := timewindow.ResolveDay(asOf, asOf)
	if err != nil {
		return models.PeakDemandSummary{}, err
	}

	stats, err := s.store.PeakDemand(ctx, w)
	if err != nil {
		return models.PeakDemandSummary{}, err
	}

	window := "No data available"
	if stats.MinutesEvaluated > 0 {
		window = fmt.Sprintf("%s - %s", stats.FirstMinute.Format("15:04:05"), stats.LastMinute.Format("15:04:05"))
	}

	return models.PeakDemandSummary{
		Success:           true,
		PeakDemand:        round2(stats.PeakKVA),
		Unit:              "kVA",
		Timestamp:         asOf.In(timewindow.FacilityLocation()).Format(timestampLayout),
		MinutesEvaluated:  stats.MinutesEvaluated,
		CalculationWindow: window,
		DataAvailable:     stats.MinutesEvaluated > 0,
	}, nil
}

// TotalDayConsumption returns the summed first-to-last kWh delta across all
// meters for asOf's day.
func (s *MonitorService) TotalDayConsumption(ctx context.Context, asOf time.Time) (models.TotalConsumptionSummary, error) {
	w, err := timewindow.ResolveDay(asOf, asOf)
	if err != nil {
		return models.TotalConsumptionSummary{}, err
	}

	total, err := s.store.TotalConsumption(ctx, w)
	if err != nil {
		return models.TotalConsumptionSummary{}, err
	}

	return models.TotalConsumptionSummary{
		Success:        true,
		Consumption:    round2(total),
		Unit:           "kWh",
		StartTimestamp: w.Start.Format(timestampLayout),
		EndTimestamp:   w.End.Format(timestampLayout),
		MeterCount:     models.MeterCount,
	}, nil
}

// ConsumptionCost prices the day's kVAh consumption per tariff band, from
// midnight up to asOf. No readings at all is ErrNoData (404 contract).
func (s *MonitorService) ConsumptionCost(ctx context.Context, asOf time.Time) (models.CostSummary, error) {
	w, err := timewindow.ResolveDay(asOf, asOf)
	if err != nil {
		return models.CostSummary{}, err
	}

	var cached models.CostSummary
	cacheKey := []string{"cc", w.End.Truncate(time.Minute).Format(timestampLayout)}
	if s.cache.Get(ctx, &cached, cacheKey...) {
		return cached, nil
	}

	readings, err := s.store.Readings(ctx, w)
	if err != nil {
		return models.CostSummary{}, err
	}
	if len(readings) == 0 {
		return models.CostSummary{}, ErrNoData
	}

	breakdown := energy.ComputeCost(readings, w, s.schedule)

	currentBand, err := s.schedule.Classify(w.End)
	if err != nil {
		return models.CostSummary{}, err
	}

	out := models.CostSummary{
		TotalConsumption: breakdown.TotalConsumption.StringFixed(2),
		TotalCost:        breakdown.TotalCost.StringFixed(2),
		CurrentRate:      currentBand.Rate.InexactFloat64(),
		CurrentPeriod:    currentBand.PeriodName(),
		Currency:         "₹",
	}
	s.cache.Set(ctx, out, cacheKey...)
	return out, nil
}

// Dashboard combines the landing page summary figures.
func (s *MonitorService) Dashboard(ctx context.Context, asOf time.Time) (models.DashboardResponse, error) {
	w, err := timewindow.ResolveDay(asOf, asOf)
	if err != nil {
		return models.DashboardResponse{}, err
	}

	var cached models.DashboardResponse
	cacheKey := []string{"dashboard", w.End.Truncate(time.Minute).Format(timestampLayout)}
	if s.cache.Get(ctx, &cached, cacheKey...) {
		return cached, nil
	}

	total, err := s.store.TotalConsumption(ctx, w)
	if err != nil {
		return models.DashboardResponse{}, err
	}
	peak, err := s.store.PeakDemand(ctx, w)
	if err != nil {
		return models.DashboardResponse{}, err
	}
	meterWise, err := s.MeterWiseConsumption(ctx, asOf, asOf)
	if err != nil {
		return models.DashboardResponse{}, err
	}

	out := models.DashboardResponse{
		Success:   true,
		Timestamp: asOf.In(timewindow.FacilityLocation()).Format(timestampLayout),
		Data: models.DashboardData{
			TotalConsumption:     models.ValueUnit{Value: round2(total), Unit: "kWh"},
			PeakDemand:           models.ValueUnit{Value: round2(peak.PeakKVA), Unit: "kVA"},
			MeterWiseConsumption: meterWise,
		},
	}
	s.cache.Set(ctx, out, cacheKey...)
	return out, nil
}

// LatestDemand returns the most recent minute's facility demand for today,
// feeding the live stream.
func (s *MonitorService) LatestDemand(ctx context.Context) (models.LiveDemandUpdate, error) {
	now := time.Now().In(timewindow.FacilityLocation()).Truncate(time.Second)
	w, err := timewindow.ResolveDay(now, now)
	if err != nil {
		return models.LiveDemandUpdate{}, err
	}

	minutes, err := s.store.MinuteDemand(ctx, w)
	if err != nil {
		return models.LiveDemandUpdate{}, err
	}
	if len(minutes) == 0 {
		return models.LiveDemandUpdate{}, ErrNoData
	}

	last := minutes[len(minutes)-1]
	return models.LiveDemandUpdate{
		Minute:   last.Minute.Format(timestampLayout),
		TotalKVA: round1(last.TotalKVA),
	}, nil
}

// Zones returns the meter-to-zone mapping.
func (s *MonitorService) Zones() []models.Zone {
	return models.Zones()
}

func clampNonNegative(v float64) float64 {
	if v < 0 {
		return 0
	}
	return v
}

func round1(v float64) float64 {
	return math.Round(v*10) / 10
}

func round2(v float64) float64 {
	return math.Round(v*100) / 100
}

func round3(v float64) float64 {
	return math.Round(v*1000) / 1000
}
