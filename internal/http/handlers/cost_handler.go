package handlers

import (
	"net/http"

	"go.uber.org/zap"

	"github.com/elementsenergies/metalware-monitor/internal/service"
)

// NewCostHandler returns GET /api/cc handler.
func NewCostHandler(svc *service.MonitorService, logger *zap.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		asOf, err := queryTimestamp(r, "timestamp")
		if err != nil {
			writeError(w, http.StatusBadRequest, err.Error())
			return
		}

		summary, err := svc.ConsumptionCost(r.Context(), asOf)
		if err != nil {
			respondServiceError(w, logger, err, "No consumption data available")
			return
		}
		writeJSON(w, http.StatusOK, summary)
	}
}

// NewDashboardHandler returns GET /api/dashboard handler.
func NewDashboardHandler(svc *service.MonitorService, logger *zap.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		asOf, err := queryTimestamp(r, "timestamp")
		if err != nil {
			writeError(w, http.StatusBadRequest, err.Error())
			return
		}

		resp, err := svc.Dashboard(r.Context(), asOf)
		if err != nil {
			respondServiceError(w, logger, err, "No dashboard data available")
			return
		}
		writeJSON(w, http.StatusOK, resp)
	}
}
