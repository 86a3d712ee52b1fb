package middleware

import (
	"net/http"
	"strconv"
	"time"

	"github.com/go-chi/chi/v5"

	"github.com/turtacn/aether-intel/internal/infrastructure/monitoring/prometheus"
)

// HTTPMetrics returns middleware that records request counts, durations,
// and the in-flight gauge.  The path label uses the chi route pattern so
// that parameterized routes share one series.
func HTTPMetrics(m *prometheus.AppMetrics) func(http.Handler) http.Handler {
	if m == nil {
		m = prometheus.NewNopMetrics()
	}
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			start := time.Now()
			m.HTTPActiveRequests.WithLabelValues(r.Method).Inc()
			defer m.HTTPActiveRequests.WithLabelValues(r.Method).Dec()

			wrapped := newWrappedResponseWriter(w)
			next.ServeHTTP(wrapped, r)

			pattern := r.URL.Path
			if rctx := chi.RouteContext(r.Context()); rctx != nil {
				if p := rctx.RoutePattern(); p != "" {
					pattern = p
				}
			}

			m.HTTPRequestsTotal.WithLabelValues(r.Method, pattern,
				strconv.Itoa(wrapped.statusCode)).Inc()
			m.HTTPRequestDuration.WithLabelValues(r.Method, pattern).
				Observe(time.Since(start).Seconds())
		})
	}
}
