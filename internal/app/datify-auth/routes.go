// Package datifyauth предоставляет маршруты сервиса аутентификации.
package datifyauth

import (
	"log/slog"

	"github.com/go-chi/chi"
	"github.com/go-chi/chi/middleware"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	httpSwagger "github.com/swaggo/http-swagger"

	"github.com/magabrotheeeer/datify-auth/internal/http/handlers/auth/dashboard"
	"github.com/magabrotheeeer/datify-auth/internal/http/handlers/auth/login"
	"github.com/magabrotheeeer/datify-auth/internal/http/handlers/auth/register"
	"github.com/magabrotheeeer/datify-auth/internal/http/handlers/health"
	"github.com/magabrotheeeer/datify-auth/internal/http/handlers/welcome"
	"github.com/magabrotheeeer/datify-auth/internal/http/middlewarectx"
	"github.com/magabrotheeeer/datify-auth/internal/ratelimit"
	services "github.com/magabrotheeeer/datify-auth/internal/services/auth"
)

// RegisterRoutes регистрирует все маршруты приложения.
// Ограничитель запросов действует на все маршруты, включая корневой.
func RegisterRoutes(r chi.Router, logger *slog.Logger, authService *services.AuthService, db health.Pinger, limiter ratelimit.Limiter) {
	// Глобальные middleware
	r.Use(
		middleware.RequestID,
		middleware.Logger,
		middleware.Recoverer,
		middleware.URLFormat,
		middlewarectx.MetricsMiddleware,
		middlewarectx.RateLimitMiddleware(limiter, logger),
	)

	r.Get("/", welcome.New().ServeHTTP)
	r.Post("/register", register.New(logger, authService).ServeHTTP)
	r.Post("/login", login.New(logger, authService).ServeHTTP)
	r.Get("/dashboard", dashboard.New(logger, authService).ServeHTTP)
	r.Get("/health", health.New(logger, db).ServeHTTP)

	r.Handle("/metrics", promhttp.Handler())
	// Swagger docs endpoint
	r.Get("/docs/*", httpSwagger.WrapHandler)
}
