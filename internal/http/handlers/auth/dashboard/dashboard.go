// Package dashboard реализует HTTP-обработчик защищенного ресурса.
//
// Любой отказ проверки токена — отсутствующий заголовок, плохая подпись,
// истекший или вытесненный токен — возвращает один и тот же ответ
// 401 {"error":"Unauthorized"} без уточнения причины.
package dashboard

import (
	"errors"
	"fmt"
	"log/slog"
	"net/http"

	"github.com/go-chi/chi/middleware"
	"github.com/go-chi/render"

	"github.com/magabrotheeeer/datify-auth/internal/http/response"
	"github.com/magabrotheeeer/datify-auth/internal/lib/sl"
	services "github.com/magabrotheeeer/datify-auth/internal/services/auth"
)

// Handler обрабатывает HTTP-запросы к защищенному дашборду.
type Handler struct {
	log  *slog.Logger
	auth Service
}

// New создает новый экземпляр Handler.
func New(log *slog.Logger, auth Service) *Handler {
	return &Handler{
		log:  log,
		auth: auth,
	}
}

// ServeHTTP godoc
// @Summary Дашборд пользователя
// @Description Возвращает приветствие владельцу действующего токена.
// @Tags Auth
// @Produce  json
// @Security BearerAuth
// @Success 200 {object} map[string]any "Приветствие"
// @Failure 401 {object} response.ErrorResponse "Отсутствующий, невалидный или вытесненный токен"
// @Failure 500 {object} response.ErrorResponse "Внутренняя ошибка сервера"
// @Router /dashboard [get]
func (h *Handler) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	const op = "handlers.auth.dashboard"

	log := h.log.With(
		slog.String("op", op),
		slog.String("request_id", middleware.GetReqID(r.Context())),
	)

	username, err := h.auth.Dashboard(r.Context(), r.Header.Get("Authorization"))
	if err != nil {
		if errors.Is(err, services.ErrUnauthorized) {
			log.Info("unauthorized dashboard access")
			w.WriteHeader(http.StatusUnauthorized)
			render.JSON(w, r, response.Error("Unauthorized"))
			return
		}
		log.Error("dashboard access failed", sl.Err(err))
		w.WriteHeader(http.StatusInternalServerError)
		render.JSON(w, r, response.Error("internal error"))
		return
	}

	render.JSON(w, r, map[string]any{
		"message": fmt.Sprintf("Welcome to your dashboard, %s", username),
	})
}
