package handlers

import (
	"net/http"
	"time"

	"go.uber.org/zap"

	"github.com/elementsenergies/metalware-monitor/internal/repository"
	"github.com/elementsenergies/metalware-monitor/internal/service"
	"github.com/elementsenergies/metalware-monitor/internal/timewindow"
)

// ConsumptionHandlers serves the consumption chart endpoints.
type ConsumptionHandlers struct {
	svc    *service.MonitorService
	logger *zap.Logger
}

// NewConsumptionHandlers builds handler set.
func NewConsumptionHandlers(svc *service.MonitorService, logger *zap.Logger) *ConsumptionHandlers {
	return &ConsumptionHandlers{svc: svc, logger: logger}
}

// Hourly handles GET /api/hconsumption (kWh) and GET /api/hkVAhconsumption
// (kVAh), distinguished by counter.
func (h *ConsumptionHandlers) Hourly(counter repository.Counter) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		date, err := queryDate(r, "date")
		if err != nil {
			writeError(w, http.StatusBadRequest, err.Error())
			return
		}
		asOf, err := queryTimestamp(r, "currentDateTime")
		if err != nil {
			writeError(w, http.StatusBadRequest, err.Error())
			return
		}

		points, err := h.svc.HourlyConsumption(r.Context(), date, asOf, counter)
		if err != nil {
			respondServiceError(w, h.logger, err, "No consumption data found")
			return
		}
		writeJSON(w, http.StatusOK, map[string]interface{}{"consumptionData": points})
	}
}

// MeterWise handles GET /api/econsumption.
func (h *ConsumptionHandlers) MeterWise(w http.ResponseWriter, r *http.Request) {
	date, err := queryDate(r, "date")
	if err != nil {
		writeError(w, http.StatusBadRequest, err.Error())
		return
	}
	asOf, err := queryTimestamp(r, "currentDateTime")
	if err != nil {
		writeError(w, http.StatusBadRequest, err.Error())
		return
	}

	entries, err := h.svc.MeterWiseConsumption(r.Context(), date, asOf)
	if err != nil {
		respondServiceError(w, h.logger, err, "No consumption data found")
		return
	}
	writeJSON(w, http.StatusOK, map[string]interface{}{"consumptionData": entries})
}

// Period handles GET /api/consumption with period=day|week|month.
func (h *ConsumptionHandlers) Period(w http.ResponseWriter, r *http.Request) {
	date, err := queryDate(r, "date")
	if err != nil {
		writeError(w, http.StatusBadRequest, err.Error())
		return
	}
	asOf, err := queryTimestamp(r, "currentDateTime")
	if err != nil {
		writeError(w, http.StatusBadRequest, err.Error())
		return
	}
	period := r.URL.Query().Get("period")
	if period == "" {
		writeError(w, http.StatusBadRequest, "period is required")
		return
	}

	entries, err := h.svc.PeriodConsumption(r.Context(), date, asOf, period)
	if err != nil {
		respondServiceError(w, h.logger, err, "No consumption data found")
		return
	}
	writeJSON(w, http.StatusOK, map[string]interface{}{"consumptionData": entries})
}

// Range handles GET /api/ehconsumption. Absent range parameters default to
// the last 30 days ending now, matching what the front end relied on.
func (h *ConsumptionHandlers) Range(w http.ResponseWriter, r *http.Request) {
	q := r.URL.Query()

	if q.Get("startDate") == "" || q.Get("endDate") == "" || q.Get("currentDateTime") == "" {
		asOf := time.Now().In(timewindow.FacilityLocation()).Truncate(time.Second)
		points, err := h.svc.RangeHourlyConsumption(r.Context(), asOf.AddDate(0, 0, -30), asOf, asOf)
		if err != nil {
			respondServiceError(w, h.logger, err, "No consumption data found")
			return
		}
		writeJSON(w, http.StatusOK, map[string]interface{}{"consumptionData": points})
		return
	}

	startDate, err := queryDate(r, "startDate")
	if err != nil {
		writeError(w, http.StatusBadRequest, err.Error())
		return
	}
	endDate, err := queryDate(r, "endDate")
	if err != nil {
		writeError(w, http.StatusBadRequest, err.Error())
		return
	}
	asOf, err := queryTimestamp(r, "currentDateTime")
	if err != nil {
		writeError(w, http.StatusBadRequest, err.Error())
		return
	}

	points, err := h.svc.RangeHourlyConsumption(r.Context(), startDate, endDate, asOf)
	if err != nil {
		respondServiceError(w, h.logger, err, "No consumption data found")
		return
	}
	writeJSON(w, http.StatusOK, map[string]interface{}{"consumptionData": points})
}

// ZoneHourly handles GET /api/zconsumption (kWh) and GET
// /api/zkVAhconsumption (kVAh) for one zone's meter.
func (h *ConsumptionHandlers) ZoneHourly(counter repository.Counter) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		date, err := queryDate(r, "date")
		if err != nil {
			writeError(w, http.StatusBadRequest, err.Error())
			return
		}
		asOf, err := queryTimestamp(r, "currentDateTime")
		if err != nil {
			writeError(w, http.StatusBadRequest, err.Error())
			return
		}
		meterID, err := queryMeterID(r, "zone")
		if err != nil {
			writeError(w, http.StatusBadRequest, err.Error())
			return
		}

		points, err := h.svc.ZoneHourlyConsumption(r.Context(), date, asOf, meterID, counter)
		if err != nil {
			respondServiceError(w, h.logger, err, "No consumption data found")
			return
		}
		writeJSON(w, http.StatusOK, map[string]interface{}{"consumptionData": points})
	}
}

// PowerFactor handles GET /api/pf for one zone's meter.
func (h *ConsumptionHandlers) PowerFactor(w http.ResponseWriter, r *http.Request) {
	date, err := queryDate(r, "date")
	if err != nil {
		writeError(w, http.StatusBadRequest, err.Error())
		return
	}
	asOf, err := queryTimestamp(r, "currentDateTime")
	if err != nil {
		writeError(w, http.StatusBadRequest, err.Error())
		return
	}
	meterID, err := queryMeterID(r, "zone")
	if err != nil {
		writeError(w, http.StatusBadRequest, err.Error())
		return
	}

	points, err := h.svc.ZonePowerFactor(r.Context(), date, asOf, meterID)
	if err != nil {
		respondServiceError(w, h.logger, err, "No power factor data found")
		return
	}
	writeJSON(w, http.StatusOK, map[string]interface{}{"powerFactorData": points})
}

// HighLow handles GET /api/hlcons.
func (h *ConsumptionHandlers) HighLow(w http.ResponseWriter, r *http.Request) {
	date, err := queryDate(r, "date")
	if err != nil {
		writeError(w, http.StatusBadRequest, err.Error())
		return
	}
	asOf, err := queryTimestamp(r, "currentDateTime")
	if err != nil {
		writeError(w, http.StatusBadRequest, err.Error())
		return
	}

	resp, err := h.svc.HighLowConsumption(r.Context(), date, asOf)
	if err != nil {
		respondServiceError(w, h.logger, err, "No consumption data found")
		return
	}
	writeJSON(w, http.StatusOK, resp)
}
