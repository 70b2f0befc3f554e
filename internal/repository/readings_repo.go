package repository

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"github.com/shopspring/decimal"

	"github.com/elementsenergies/metalware-monitor/internal/energy"
	"github.com/elementsenergies/metalware-monitor/internal/models"
	"github.com/elementsenergies/metalware-monitor/internal/timewindow"
)

// ErrDataUnavailable wraps reading-store failures. Callers decide whether to
// retry; the repository never does.
var ErrDataUnavailable = errors.New("reading store unavailable")

// Counter selects which cumulative counter column an aggregation runs over.
type Counter string

const (
	CounterKWh  Counter = "kwh"
	CounterKVAh Counter = "kvah"
)

func (c Counter) column() (string, error) {
	switch c {
	case CounterKWh, CounterKVAh:
		return string(c), nil
	}
	return "", fmt.Errorf("unknown counter %q", string(c))
}

// ReadingRepository runs aggregation queries against the modbus_data table.
// Sentinel glitch rows (zero/negative counters) are excluded in SQL so the
// core layers never see them.
type ReadingRepository struct {
	db *sql.DB
}

// NewReadingRepository returns repository.
func NewReadingRepository(db *sql.DB) *ReadingRepository {
	return &ReadingRepository{db: db}
}

// Ping verifies store connectivity.
func (r *ReadingRepository) Ping(ctx context.Context) error {
	if err := r.db.PingContext(ctx); err != nil {
		return storeErr("ping", err)
	}
	return nil
}

// HourlyConsumption returns the facility-wide counter delta per hour bucket:
// each meter's max-min within the hour, summed across meters.
func (r *ReadingRepository) HourlyConsumption(ctx context.Context, w timewindow.Window, counter Counter) ([]models.HourlyTotal, error) {
	col, err := counter.column()
	if err != nil {
		return nil, err
	}

	query := fmt.Sprintf(`
		SELECT hour, SUM(diff) AS total
		FROM (
			SELECT date_trunc('hour', timestamp) AS hour,
			       MAX(%[1]s) - MIN(%[1]s) AS diff
			FROM modbus_data
			WHERE timestamp BETWEEN $1 AND $2
			  AND energy_meter_id BETWEEN 1 AND $3
			  AND %[1]s > 0
			GROUP BY energy_meter_id, date_trunc('hour', timestamp)
		) deltas
		GROUP BY hour
		ORDER BY hour
	`, col)

	rows, err := r.db.QueryContext(ctx, query, w.Start, w.End, models.MeterCount)
	if err != nil {
		return nil, storeErr("hourly consumption", err)
	}
	defer rows.Close()

	var out []models.HourlyTotal
	for rows.Next() {
		var h models.HourlyTotal
		if err := rows.Scan(&h.Hour, &h.Total); err != nil {
			return nil, storeErr("hourly consumption", err)
		}
		h.Hour = h.Hour.In(timewindow.FacilityLocation())
		out = append(out, h)
	}
	if err := rows.Err(); err != nil {
		return nil, storeErr("hourly consumption", err)
	}
	return out, nil
}

// MeterConsumption returns each meter's counter delta over the window.
func (r *ReadingRepository) MeterConsumption(ctx context.Context, w timewindow.Window, counter Counter) ([]models.MeterDelta, error) {
	col, err := counter.column()
	if err != nil {
		return nil, err
	}

	query := fmt.Sprintf(`
		SELECT energy_meter_id, MAX(%[1]s) - MIN(%[1]s) AS diff
		FROM modbus_data
		WHERE timestamp BETWEEN $1 AND $2
		  AND energy_meter_id BETWEEN 1 AND $3
		  AND %[1]s > 0
		GROUP BY energy_meter_id
		ORDER BY energy_meter_id
	`, col)

	rows, err := r.db.QueryContext(ctx, query, w.Start, w.End, models.MeterCount)
	if err != nil {
		return nil, storeErr("meter consumption", err)
	}
	defer rows.Close()

	var out []models.MeterDelta
	for rows.Next() {
		var d models.MeterDelta
		if err := rows.Scan(&d.MeterID, &d.Consumption); err != nil {
			return nil, storeErr("meter consumption", err)
		}
		out = append(out, d)
	}
	if err := rows.Err(); err != nil {
		return nil, storeErr("meter consumption", err)
	}
	return out, nil
}

// ZoneHourlyConsumption returns one meter's counter delta per hour bucket.
func (r *ReadingRepository) ZoneHourlyConsumption(ctx context.Context, w timewindow.Window, meterID int, counter Counter) ([]models.HourlyTotal, error) {
	col, err := counter.column()
	if err != nil {
		return nil, err
	}

	query := fmt.Sprintf(`
		SELECT date_trunc('hour', timestamp) AS hour,
		       MAX(%[1]s) - MIN(%[1]s) AS diff
		FROM modbus_data
		WHERE timestamp BETWEEN $1 AND $2
		  AND energy_meter_id = $3
		  AND %[1]s > 0
		GROUP BY date_trunc('hour', timestamp)
		ORDER BY hour
	`, col)

	rows, err := r.db.QueryContext(ctx, query, w.Start, w.End, meterID)
	if err != nil {
		return nil, storeErr("zone hourly consumption", err)
	}
	defer rows.Close()

	var out []models.HourlyTotal
	for rows.Next() {
		var h models.HourlyTotal
		if err := rows.Scan(&h.Hour, &h.Total); err != nil {
			return nil, storeErr("zone hourly consumption", err)
		}
		h.Hour = h.Hour.In(timewindow.FacilityLocation())
		out = append(out, h)
	}
	if err := rows.Err(); err != nil {
		return nil, storeErr("zone hourly consumption", err)
	}
	return out, nil
}

// DailyHourlyConsumption returns facility-wide hourly deltas bucketed by day
// and hour of day, for multi-day charting.
func (r *ReadingRepository) DailyHourlyConsumption(ctx context.Context, w timewindow.Window) ([]models.DayHourTotal, error) {
	const query = `
		SELECT day, hour, SUM(diff) AS total
		FROM (
			SELECT date_trunc('day', timestamp) AS day,
			       EXTRACT(HOUR FROM timestamp)::int AS hour,
			       MAX(kwh) - MIN(kwh) AS diff
			FROM modbus_data
			WHERE timestamp BETWEEN $1 AND $2
			  AND energy_meter_id BETWEEN 1 AND $3
			  AND kwh > 0
			GROUP BY energy_meter_id, date_trunc('day', timestamp), EXTRACT(HOUR FROM timestamp)
		) deltas
		GROUP BY day, hour
		ORDER BY day, hour
	`

	rows, err := r.db.QueryContext(ctx, query, w.Start, w.End, models.MeterCount)
	if err != nil {
		return nil, storeErr("daily hourly consumption", err)
	}
	defer rows.Close()

	var out []models.DayHourTotal
	for rows.Next() {
		var d models.DayHourTotal
		if err := rows.Scan(&d.Day, &d.Hour, &d.Total); err != nil {
			return nil, storeErr("daily hourly consumption", err)
		}
		d.Day = d.Day.In(timewindow.FacilityLocation())
		out = append(out, d)
	}
	if err := rows.Err(); err != nil {
		return nil, storeErr("daily hourly consumption", err)
	}
	return out, nil
}

// MinuteDemand returns the summed apparent power per minute bucket.
func (r *ReadingRepository) MinuteDemand(ctx context.Context, w timewindow.Window) ([]models.MinuteDemand, error) {
	const query = `
		SELECT date_trunc('minute', timestamp) AS minute,
		       SUM(total_kva) AS total_kva
		FROM modbus_data
		WHERE timestamp BETWEEN $1 AND $2
		  AND energy_meter_id BETWEEN 1 AND $3
		GROUP BY date_trunc('minute', timestamp)
		ORDER BY minute
	`
	return r.minuteDemand(ctx, query, w.Start, w.End, models.MeterCount)
}

// MinuteDemandAbove returns only the minutes whose summed apparent power
// exceeded the given threshold.
func (r *ReadingRepository) MinuteDemandAbove(ctx context.Context, w timewindow.Window, thresholdKVA float64) ([]models.MinuteDemand, error) {
	const query = `
		SELECT date_trunc('minute', timestamp) AS minute,
		       SUM(total_kva) AS total_kva
		FROM modbus_data
		WHERE timestamp BETWEEN $1 AND $2
		  AND energy_meter_id BETWEEN 1 AND $3
		GROUP BY date_trunc('minute', timestamp)
		HAVING SUM(total_kva) > $4
		ORDER BY minute
	`
	return r.minuteDemand(ctx, query, w.Start, w.End, models.MeterCount, thresholdKVA)
}

func (r *ReadingRepository) minuteDemand(ctx context.Context, query string, args ...any) ([]models.MinuteDemand, error) {
	rows, err := r.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, storeErr("minute demand", err)
	}
	defer rows.Close()

	var out []models.MinuteDemand
	for rows.Next() {
		var m models.MinuteDemand
		if err := rows.Scan(&m.Minute, &m.TotalKVA); err != nil {
			return nil, storeErr("minute demand", err)
		}
		m.Minute = m.Minute.In(timewindow.FacilityLocation())
		out = append(out, m)
	}
	if err := rows.Err(); err != nil {
		return nil, storeErr("minute demand", err)
	}
	return out, nil
}

// PeakDemand returns the highest minute-level demand total in the window.
func (r *ReadingRepository) PeakDemand(ctx context.Context, w timewindow.Window) (models.PeakDemandStats, error) {
	const query = `
		WITH minute_totals AS (
			SELECT date_trunc('minute', timestamp) AS minute,
			       SUM(total_kva) AS total_kva
			FROM modbus_data
			WHERE timestamp BETWEEN $1 AND $2
			  AND energy_meter_id BETWEEN 1 AND $3
			GROUP BY date_trunc('minute', timestamp)
		)
		SELECT COALESCE(MAX(total_kva), 0),
		       COUNT(minute),
		       MIN(minute),
		       MAX(minute)
		FROM minute_totals
	`

	var (
		stats       models.PeakDemandStats
		first, last sql.NullTime
	)
	err := r.db.QueryRowContext(ctx, query, w.Start, w.End, models.MeterCount).
		Scan(&stats.PeakKVA, &stats.MinutesEvaluated, &first, &last)
	if err != nil {
		return models.PeakDemandStats{}, storeErr("peak demand", err)
	}
	if first.Valid {
		stats.FirstMinute = first.Time.In(timewindow.FacilityLocation())
	}
	if last.Valid {
		stats.LastMinute = last.Time.In(timewindow.FacilityLocation())
	}
	return stats, nil
}

// TotalConsumption sums each meter's first-to-last kWh delta over the window,
// clamping meters whose counters rolled back.
func (r *ReadingRepository) TotalConsumption(ctx context.Context, w timewindow.Window) (float64, error) {
	const query = `
		SELECT COALESCE(SUM(GREATEST(last_kwh - first_kwh, 0)), 0)
		FROM (
			SELECT energy_meter_id,
			       (array_agg(kwh ORDER BY timestamp ASC))[1]  AS first_kwh,
			       (array_agg(kwh ORDER BY timestamp DESC))[1] AS last_kwh
			FROM modbus_data
			WHERE timestamp BETWEEN $1 AND $2
			  AND energy_meter_id BETWEEN 1 AND $3
			  AND kwh > 0
			GROUP BY energy_meter_id
		) spans
	`

	var total float64
	if err := r.db.QueryRowContext(ctx, query, w.Start, w.End, models.MeterCount).Scan(&total); err != nil {
		return 0, storeErr("total consumption", err)
	}
	return total, nil
}

// Readings returns raw kVAh counter samples for the cost calculator, ordered
// by meter then time.
func (r *ReadingRepository) Readings(ctx context.Context, w timewindow.Window) ([]energy.MeterReading, error) {
	const query = `
		SELECT energy_meter_id, timestamp, kvah
		FROM modbus_data
		WHERE timestamp BETWEEN $1 AND $2
		  AND energy_meter_id BETWEEN 1 AND $3
		  AND kvah > 0
		ORDER BY energy_meter_id, timestamp
	`

	rows, err := r.db.QueryContext(ctx, query, w.Start, w.End, models.MeterCount)
	if err != nil {
		return nil, storeErr("readings", err)
	}
	defer rows.Close()

	var out []energy.MeterReading
	for rows.Next() {
		var (
			meterID int
			ts      time.Time
			kvah    float64
		)
		if err := rows.Scan(&meterID, &ts, &kvah); err != nil {
			return nil, storeErr("readings", err)
		}
		out = append(out, energy.MeterReading{
			MeterID:   meterID,
			Timestamp: ts.In(timewindow.FacilityLocation()),
			Counter:   decimal.NewFromFloat(kvah),
		})
	}
	if err := rows.Err(); err != nil {
		return nil, storeErr("readings", err)
	}
	return out, nil
}

// PowerFactorByHour returns one meter's kWh and kVAh deltas per hour bucket.
func (r *ReadingRepository) PowerFactorByHour(ctx context.Context, w timewindow.Window, meterID int) ([]models.HourlyPowerFactor, error) {
	const query = `
		SELECT date_trunc('hour', timestamp) AS hour,
		       MAX(kwh) - MIN(kwh)   AS kwh_diff,
		       MAX(kvah) - MIN(kvah) AS kvah_diff
		FROM modbus_data
		WHERE timestamp BETWEEN $1 AND $2
		  AND energy_meter_id = $3
		  AND kwh > 0
		  AND kvah > 0
		GROUP BY date_trunc('hour', timestamp)
		ORDER BY hour
	`

	rows, err := r.db.QueryContext(ctx, query, w.Start, w.End, meterID)
	if err != nil {
		return nil, storeErr("power factor", err)
	}
	defer rows.Close()

	var out []models.HourlyPowerFactor
	for rows.Next() {
		var h models.HourlyPowerFactor
		if err := rows.Scan(&h.Hour, &h.KWhDelta, &h.KVAhDelta); err != nil {
			return nil, storeErr("power factor", err)
		}
		h.Hour = h.Hour.In(timewindow.FacilityLocation())
		out = append(out, h)
	}
	if err := rows.Err(); err != nil {
		return nil, storeErr("power factor", err)
	}
	return out, nil
}

func storeErr(op string, err error) error {
	return fmt.Errorf("%s: %w: %w", op, ErrDataUnavailable, err)
}
