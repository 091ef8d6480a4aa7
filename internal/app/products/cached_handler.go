package products

import (
	"context"
	"fmt"
	"net/http"
	"strings"

	"github.com/go-chi/chi/v5"
	"go.uber.org/fx"
	"go.uber.org/zap"

	"search-insight-miner/internal/finder"
	"search-insight-miner/internal/pkg/render"
	"search-insight-miner/internal/product"
	"search-insight-miner/internal/router"
)

type cacheLookup interface {
	Lookup(ctx context.Context, term string) ([]product.Record, error)
}

// CachedHandler serves what is already cached for a term; it never scrapes.
type CachedHandler struct {
	finder cacheLookup
	logger *zap.SugaredLogger
}

type NewCachedHandlerParams struct {
	fx.In

	Finder *finder.Finder
	Logger *zap.SugaredLogger
}

func NewCachedHandler(p NewCachedHandlerParams) *CachedHandler {
	return &CachedHandler{finder: p.Finder, logger: p.Logger}
}

func (h *CachedHandler) RegisterRoute(r *chi.Mux) {
	r.Get("/v1/products/cached/{searchTerm}", h.Handle)
}

type cachedResponse struct {
	SearchTerm     string           `json:"search_term"`
	ProductDetails []product.Record `json:"product_details"`
}

func (h *CachedHandler) Handle(w http.ResponseWriter, r *http.Request) {
	term := strings.TrimSpace(chi.URLParam(r, "searchTerm"))
	if term == "" {
		render.ChiMessage(w, r, http.StatusBadRequest, msgMissingTerm)
		return
	}

	records, err := h.finder.Lookup(r.Context(), term)
	if err != nil {
		h.logger.Errorw("cached_products_lookup_failed", "search_term", term, "err", err)
		render.ChiErr(w, r, http.StatusInternalServerError, err)
		return
	}
	if len(records) == 0 {
		render.ChiMessage(w, r, http.StatusNotFound, fmt.Sprintf("No cached results found for search term: %s", term))
		return
	}

	render.ChiJSON(w, r, http.StatusOK, cachedResponse{SearchTerm: term, ProductDetails: records})
}

var _ router.Handler = (*CachedHandler)(nil)
