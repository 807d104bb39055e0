package middlewares

import (
	"net/http"
	"time"

	"github.com/dropDatabas3/mailgate/internal/metrics"
)

// WithMetrics cuenta requests por método/ruta/status y mide la latencia.
func WithMetrics() Middleware {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			start := time.Now()
			metrics.InflightAdd(1)
			defer metrics.InflightAdd(-1)

			rec := newStatusRecorder(w)
			next.ServeHTTP(rec, r)

			metrics.ObserveHTTP(r.Method, r.URL.Path, rec.status, time.Since(start).Seconds())
		})
	}
}
