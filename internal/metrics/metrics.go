// Package metrics содержит счетчики Prometheus приложения.
package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

var (
	// RequestsTotal считает обработанные HTTP-запросы по маршрутам.
	RequestsTotal = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "datify_http_requests_total",
		Help: "Total number of HTTP requests by path.",
	}, []string{"path"})

	// RateLimitedTotal считает запросы, отклоненные ограничителем.
	RateLimitedTotal = promauto.NewCounter(prometheus.CounterOpts{
		Name: "datify_rate_limited_requests_total",
		Help: "Total number of requests rejected by the rate limiter.",
	})
)
