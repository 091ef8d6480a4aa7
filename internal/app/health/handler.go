package health

import (
	"net/http"

	"github.com/go-chi/chi/v5"

	"search-insight-miner/config"
	"search-insight-miner/internal/pkg/render"
)

type Handler struct {
	cfg *config.Config
}

func NewHandler(cfg *config.Config) *Handler { return &Handler{cfg: cfg} }

func (h *Handler) RegisterRoute(r *chi.Mux) {
	r.Get("/health", h.Handle)
}

func (h *Handler) Handle(w http.ResponseWriter, r *http.Request) {
	render.ChiJSON(w, r, http.StatusOK, map[string]any{
		"ok":    true,
		"store": h.cfg.StoreDriver,
	})
}
