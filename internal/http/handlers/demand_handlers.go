package handlers

import (
	"net/http"

	"go.uber.org/zap"

	"github.com/elementsenergies/metalware-monitor/internal/service"
)

// DemandHandlers serves the apparent-power demand endpoints.
type DemandHandlers struct {
	svc    *service.MonitorService
	logger *zap.Logger
}

// NewDemandHandlers builds handler set.
func NewDemandHandlers(svc *service.MonitorService, logger *zap.Logger) *DemandHandlers {
	return &DemandHandlers{svc: svc, logger: logger}
}

// MinuteSeries handles GET /api/opeakdemand.
func (h *DemandHandlers) MinuteSeries(w http.ResponseWriter, r *http.Request) {
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

	points, err := h.svc.MinuteDemandSeries(r.Context(), date, asOf)
	if err != nil {
		respondServiceError(w, h.logger, err, "No demand data found")
		return
	}
	writeJSON(w, http.StatusOK, map[string]interface{}{"peakDemandData": points})
}

// AboveThreshold handles GET /api/apd.
func (h *DemandHandlers) AboveThreshold(w http.ResponseWriter, r *http.Request) {
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

	rows, err := h.svc.DemandAboveThreshold(r.Context(), date, asOf)
	if err != nil {
		respondServiceError(w, h.logger, err, "No demand data found")
		return
	}
	writeJSON(w, http.StatusOK, map[string]interface{}{"peakDemandAboveThreshold": rows})
}

// Peak handles GET /api/mcpeak.
func (h *DemandHandlers) Peak(w http.ResponseWriter, r *http.Request) {
	asOf, err := queryTimestamp(r, "timestamp")
	if err != nil {
		writeError(w, http.StatusBadRequest, err.Error())
		return
	}

	summary, err := h.svc.PeakDemandSummary(r.Context(), asOf)
	if err != nil {
		respondServiceError(w, h.logger, err, "No demand data found")
		return
	}
	writeJSON(w, http.StatusOK, summary)
}

// TotalConsumption handles GET /api/mccons.
func (h *DemandHandlers) TotalConsumption(w http.ResponseWriter, r *http.Request) {
	asOf, err := queryTimestamp(r, "timestamp")
	if err != nil {
		writeError(w, http.StatusBadRequest, err.Error())
		return
	}

	summary, err := h.svc.TotalDayConsumption(r.Context(), asOf)
	if err != nil {
		respondServiceError(w, h.logger, err, "No consumption data found")
		return
	}
	writeJSON(w, http.StatusOK, summary)
}
