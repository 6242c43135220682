// Package middlewarectx содержит HTTP middleware приложения.
//
// RateLimitMiddleware ограничивает частоту запросов на клиентский адрес
// для всех маршрутов; превышение лимита дает 429 с телом
// {"error":"Too many requests, please try again later"}.
package middlewarectx

import (
	"log/slog"
	"net"
	"net/http"
	"strings"

	"github.com/go-chi/render"

	"github.com/magabrotheeeer/datify-auth/internal/http/response"
	"github.com/magabrotheeeer/datify-auth/internal/lib/sl"
	"github.com/magabrotheeeer/datify-auth/internal/metrics"
	"github.com/magabrotheeeer/datify-auth/internal/ratelimit"
)

// RateLimitMiddleware возвращает middleware, пропускающее запрос через
// ограничитель. Ограничитель передается явно: счетчики не прячутся
// в глобальном состоянии пакета.
//
// Ошибка самого ограничителя (например, недоступный Redis) не блокирует
// запрос: отказ инфраструктуры деградирует троттлинг, а не аутентификацию.
func RateLimitMiddleware(limiter ratelimit.Limiter, log *slog.Logger) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			key := clientKey(r)

			allowed, err := limiter.Allow(r.Context(), key)
			if err != nil {
				log.Error("rate limiter failed, admitting request", sl.Err(err))
				next.ServeHTTP(w, r)
				return
			}
			if !allowed {
				log.Info("too many requests", slog.String("client", key))
				metrics.RateLimitedTotal.Inc()
				w.WriteHeader(http.StatusTooManyRequests)
				render.JSON(w, r, response.Error("Too many requests, please try again later"))
				return
			}
			next.ServeHTTP(w, r)
		})
	}
}

// clientKey определяет клиента: первый адрес из X-Forwarded-For,
// иначе адрес соединения без порта.
func clientKey(r *http.Request) string {
	if forwarded := r.Header.Get("X-Forwarded-For"); forwarded != "" {
		parts := strings.Split(forwarded, ",")
		return strings.TrimSpace(parts[0])
	}
	host, _, err := net.SplitHostPort(r.RemoteAddr)
	if err != nil {
		return r.RemoteAddr
	}
	return host
}
