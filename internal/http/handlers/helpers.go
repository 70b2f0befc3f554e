package handlers

import (
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"strconv"
	"time"

	"go.uber.org/zap"

	"github.com/elementsenergies/metalware-monitor/internal/models"
	"github.com/elementsenergies/metalware-monitor/internal/service"
	"github.com/elementsenergies/metalware-monitor/internal/timewindow"
)

const (
	dateLayout      = "2006-01-02"
	timestampLayout = "2006-01-02 15:04:05"
)

func writeJSON(w http.ResponseWriter, status int, payload interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if payload == nil {
		return
	}
	_ = json.NewEncoder(w).Encode(payload)
}

func writeError(w http.ResponseWriter, status int, message string) {
	writeJSON(w, status, map[string]string{"error": message})
}

// queryDate reads a required YYYY-MM-DD parameter in facility local time.
func queryDate(r *http.Request, name string) (time.Time, error) {
	raw := r.URL.Query().Get(name)
	if raw == "" {
		return time.Time{}, fmt.Errorf("%s is required", name)
	}
	t, err := time.ParseInLocation(dateLayout, raw, timewindow.FacilityLocation())
	if err != nil {
		return time.Time{}, fmt.Errorf("%s must be formatted as YYYY-MM-DD", name)
	}
	return t, nil
}

// queryTimestamp reads a required YYYY-MM-DD HH:mm:ss parameter in facility
// local time.
func queryTimestamp(r *http.Request, name string) (time.Time, error) {
	raw := r.URL.Query().Get(name)
	if raw == "" {
		return time.Time{}, fmt.Errorf("%s is required", name)
	}
	t, err := time.ParseInLocation(timestampLayout, raw, timewindow.FacilityLocation())
	if err != nil {
		return time.Time{}, fmt.Errorf("%s must be formatted as YYYY-MM-DD HH:mm:ss", name)
	}
	return t, nil
}

// queryMeterID reads a required meter id parameter and range-checks it.
func queryMeterID(r *http.Request, name string) (int, error) {
	raw := r.URL.Query().Get(name)
	if raw == "" {
		return 0, fmt.Errorf("%s is required", name)
	}
	id, err := strconv.Atoi(raw)
	if err != nil || !models.ValidMeterID(id) {
		return 0, fmt.Errorf("%s must be a meter id between 1 and %d", name, models.MeterCount)
	}
	return id, nil
}

// respondServiceError maps service errors onto the status codes the front
// end expects. Internal detail stays in the log, not the response body.
func respondServiceError(w http.ResponseWriter, logger *zap.Logger, err error, notFoundMsg string) {
	switch {
	case errors.Is(err, timewindow.ErrInvalidDate), errors.Is(err, service.ErrInvalidPeriod):
		writeError(w, http.StatusBadRequest, err.Error())
	case errors.Is(err, service.ErrNoData):
		writeError(w, http.StatusNotFound, notFoundMsg)
	default:
		logger.Error("request failed", zap.Error(err))
		writeError(w, http.StatusInternalServerError, "Database query failed")
	}
}
