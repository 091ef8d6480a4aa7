package productinsights

import (
	"context"
	"net/http"
	"strings"

	"github.com/go-chi/chi/v5"
	"go.uber.org/zap"

	"search-insight-miner/internal/insights"
	"search-insight-miner/internal/pkg/render"
	"search-insight-miner/internal/router"
)

const msgMissingTerm = "searchTerm is required for insights"

type requester interface {
	Request(ctx context.Context, term string) insights.Response
}

type Handler struct {
	requester requester
	logger    *zap.SugaredLogger
}

func NewHandler(r *insights.Requester, logger *zap.SugaredLogger) *Handler {
	return &Handler{requester: r, logger: logger}
}

func (h *Handler) RegisterRoute(r *chi.Mux) {
	r.Post("/v1/insights", h.Handle)
}

type insightsRequest struct {
	SearchTerm string `json:"searchTerm"`
}

func (h *Handler) Handle(w http.ResponseWriter, r *http.Request) {
	var req insightsRequest
	if err := render.DecodeJSON(r, &req); err != nil || strings.TrimSpace(req.SearchTerm) == "" {
		render.ChiMessage(w, r, http.StatusBadRequest, msgMissingTerm)
		return
	}
	term := strings.TrimSpace(req.SearchTerm)

	resp := h.requester.Request(r.Context(), term)
	if !resp.Success {
		h.logger.Warnw("insights_request_failed", "search_term", term, "error", resp.Error)
		render.ChiJSON(w, r, http.StatusInternalServerError, resp)
		return
	}
	render.ChiJSON(w, r, http.StatusOK, resp)
}

var _ router.Handler = (*Handler)(nil)
