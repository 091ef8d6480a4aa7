package metrics

import (
	"net/http"

	"github.com/go-chi/chi/v5"

	"search-insight-miner/internal/observability"
	"search-insight-miner/internal/router"
)

type Handler struct {
	h http.Handler
}

func NewHandler(m *observability.Metrics) *Handler {
	return &Handler{h: m.Handler()}
}

func (h *Handler) RegisterRoute(r *chi.Mux) {
	r.Get("/metrics", h.Handle)
}

func (h *Handler) Handle(w http.ResponseWriter, r *http.Request) {
	h.h.ServeHTTP(w, r)
}

var _ router.Handler = (*Handler)(nil)
