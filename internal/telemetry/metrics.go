package telemetry

import (
	"expvar"
	"net/http"
	"strings"
	"time"

	"github.com/go-chi/chi/v5"
)

var (
	apiRequestsTotal         = expvar.NewInt("api_requests_total")
	apiRequestsErrorsTotal   = expvar.NewInt("api_requests_errors_total")
	apiRequestLatencyMsTotal = expvar.NewInt("api_request_latency_ms_total")
	apiRequestLatencySamples = expvar.NewInt("api_request_latency_samples_total")
	apiRequestsByRoute       = expvar.NewMap("api_requests_by_route")
	apiRequestErrorsByRoute  = expvar.NewMap("api_request_errors_by_route")

	refreshTicksTotal        = expvar.NewInt("refresh_ticks_total")
	refreshTickErrorsTotal   = expvar.NewInt("refresh_tick_errors_total")
	refreshCoinsUpdatedTotal = expvar.NewInt("refresh_coins_updated_total")
	refreshCoinsSkippedTotal = expvar.NewInt("refresh_coins_skipped_total")
	refreshStatsPrunedTotal  = expvar.NewInt("refresh_stats_pruned_total")
)

// Refresh-side counters, bumped by the tick service.

func RecordRefreshTick()               { refreshTicksTotal.Add(1) }
func RecordRefreshTickError()          { refreshTickErrorsTotal.Add(1) }
func RecordRefreshCoinUpdated()        { refreshCoinsUpdatedTotal.Add(1) }
func RecordRefreshCoinSkipped()        { refreshCoinsSkippedTotal.Add(1) }
func RecordRefreshStatsPruned(n int64) { refreshStatsPrunedTotal.Add(n) }

type statusRecorder struct {
	http.ResponseWriter
	status int
}

func (r *statusRecorder) WriteHeader(status int) {
	r.status = status
	r.ResponseWriter.WriteHeader(status)
}

// APIRequestMetricsMiddleware records request volume, error rate, and latency per route.
func APIRequestMetricsMiddleware(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		start := time.Now()
		recorder := &statusRecorder{ResponseWriter: w, status: http.StatusOK}

		next.ServeHTTP(recorder, r)

		route := requestRoute(r)
		key := strings.TrimSpace(r.Method + " " + route)
		if key == "" {
			key = r.Method + " /unknown"
		}

		apiRequestsTotal.Add(1)
		apiRequestsByRoute.Add(key, 1)

		if recorder.status >= http.StatusBadRequest {
			apiRequestsErrorsTotal.Add(1)
			apiRequestErrorsByRoute.Add(key, 1)
		}

		apiRequestLatencyMsTotal.Add(time.Since(start).Milliseconds())
		apiRequestLatencySamples.Add(1)
	})
}

func requestRoute(r *http.Request) string {
	if rctx := chi.RouteContext(r.Context()); rctx != nil {
		if pattern := strings.TrimSpace(rctx.RoutePattern()); pattern != "" {
			return pattern
		}
	}
	return r.URL.Path
}
