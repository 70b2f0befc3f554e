package httpserver

import (
	"net/http"
	"strconv"
	"time"

	"github.com/elementsenergies/metalware-monitor/internal/metrics"
)

// Routes groups handlers.
type Routes struct {
	HourlyConsumption     http.HandlerFunc
	HourlyKVAhConsumption http.HandlerFunc
	MeterConsumption      http.HandlerFunc
	RangeConsumption      http.HandlerFunc
	PeriodConsumption     http.HandlerFunc
	ZoneConsumption       http.HandlerFunc
	ZoneKVAhConsumption   http.HandlerFunc
	PowerFactor           http.HandlerFunc
	HighLowConsumption    http.HandlerFunc
	MinuteDemand          http.HandlerFunc
	DemandAboveThreshold  http.HandlerFunc
	PeakDemand            http.HandlerFunc
	TotalConsumption      http.HandlerFunc
	ConsumptionCost       http.HandlerFunc
	Dashboard             http.HandlerFunc
	Zones                 http.HandlerFunc
	LiveDemand            http.Handler
	Health                http.HandlerFunc
	Metrics               http.Handler
}

// NewRouter registers endpoints.
func NewRouter(routes Routes) http.Handler {
	mux := http.NewServeMux()
	register := func(path string, handler http.HandlerFunc) {
		if handler != nil {
			mux.Handle(path, method(http.MethodGet, instrument(path, handler)))
		}
	}

	register("/api/hconsumption", routes.HourlyConsumption)
	register("/api/hkVAhconsumption", routes.HourlyKVAhConsumption)
	register("/api/econsumption", routes.MeterConsumption)
	register("/api/ehconsumption", routes.RangeConsumption)
	register("/api/consumption", routes.PeriodConsumption)
	register("/api/zconsumption", routes.ZoneConsumption)
	register("/api/zkVAhconsumption", routes.ZoneKVAhConsumption)
	register("/api/pf", routes.PowerFactor)
	register("/api/hlcons", routes.HighLowConsumption)
	register("/api/opeakdemand", routes.MinuteDemand)
	register("/api/apd", routes.DemandAboveThreshold)
	register("/api/mcpeak", routes.PeakDemand)
	register("/api/mccons", routes.TotalConsumption)
	register("/api/cc", routes.ConsumptionCost)
	register("/api/dashboard", routes.Dashboard)
	register("/api/zones", routes.Zones)
	register("/health", routes.Health)

	if routes.LiveDemand != nil {
		mux.Handle("/api/live/demand", method(http.MethodGet, routes.LiveDemand.ServeHTTP))
	}
	if routes.Metrics != nil {
		mux.Handle("/metrics", method(http.MethodGet, routes.Metrics.ServeHTTP))
	}
	return mux
}

func method(expected string, handler http.HandlerFunc) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if r.Method != expected {
			w.Header().Set("Allow", expected)
			w.WriteHeader(http.StatusMethodNotAllowed)
			return
		}
		handler(w, r)
	}
}

// statusRecorder captures the response status for the error counter.
type statusRecorder struct {
	http.ResponseWriter
	status int
}

func (r *statusRecorder) WriteHeader(status int) {
	r.status = status
	r.ResponseWriter.WriteHeader(status)
}

func instrument(path string, handler http.HandlerFunc) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		start := time.Now()
		rec := &statusRecorder{ResponseWriter: w, status: http.StatusOK}

		handler(rec, r)

		metrics.RequestsTotal.WithLabelValues(path).Inc()
		metrics.RequestDurationSeconds.WithLabelValues(path).Observe(time.Since(start).Seconds())
		if rec.status >= http.StatusBadRequest {
			metrics.RequestErrorsTotal.WithLabelValues(path, strconv.Itoa(rec.status)).Inc()
		}
	}
}
