// Package welcome реализует корневой обработчик с приветствием API.
package welcome

import (
	"net/http"

	"github.com/go-chi/render"
)

type Handler struct{}

func New() *Handler {
	return &Handler{}
}

func (h *Handler) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	render.PlainText(w, r, "Welcome to Datify API!💖")
}
