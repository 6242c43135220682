// Package health реализует обработчик проверки состояния сервиса.
package health

import (
	"log/slog"
	"net/http"

	"github.com/go-chi/render"
)

// Pinger проверяет доступность базы данных.
type Pinger interface {
	Ping() error
}

type Handler struct {
	log *slog.Logger
	db  Pinger
}

func New(log *slog.Logger, db Pinger) *Handler {
	return &Handler{
		log: log,
		db:  db,
	}
}

func (h *Handler) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	const op = "handlers.health"

	dbStatus := "connected"
	if err := h.db.Ping(); err != nil {
		h.log.Error("database ping failed", slog.String("op", op), slog.String("error", err.Error()))
		dbStatus = "disconnected"
	}

	render.JSON(w, r, map[string]any{
		"status":   "ok",
		"database": dbStatus,
	})
}
