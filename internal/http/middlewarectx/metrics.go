package middlewarectx

import (
	"net/http"

	"github.com/magabrotheeeer/datify-auth/internal/metrics"
)

// MetricsMiddleware считает обработанные запросы по пути.
func MetricsMiddleware(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		metrics.RequestsTotal.WithLabelValues(r.URL.Path).Inc()
		next.ServeHTTP(w, r)
	})
}
