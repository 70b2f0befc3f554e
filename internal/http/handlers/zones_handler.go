package handlers

import (
	"net/http"

	"github.com/elementsenergies/metalware-monitor/internal/service"
)

// NewZonesHandler returns GET /api/zones handler.
func NewZonesHandler(svc *service.MonitorService) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		writeJSON(w, http.StatusOK, map[string]interface{}{"zones": svc.Zones()})
	}
}
