package products

import (
	"context"
	"errors"
	"net/http"
	"strings"

	"github.com/go-chi/chi/v5"
	"github.com/go-playground/validator/v10"
	"go.uber.org/fx"
	"go.uber.org/zap"

	"search-insight-miner/internal/finder"
	"search-insight-miner/internal/pkg/render"
	"search-insight-miner/internal/product"
	"search-insight-miner/internal/router"
)

const (
	msgMissingTerm = "searchTerm is required in the request body"
	msgNoProducts  = "No products found."
	msgCached      = "Cached results found"
	msgFetched     = "Execution completed successfully."
	msgUnexpected  = "An unexpected error occurred"
)

type productFinder interface {
	GetOrFetch(ctx context.Context, term string) (finder.Outcome, error)
}

type Handler struct {
	finder   productFinder
	logger   *zap.SugaredLogger
	validate *validator.Validate
}

type NewHandlerParams struct {
	fx.In

	Finder *finder.Finder
	Logger *zap.SugaredLogger
}

func NewHandler(p NewHandlerParams) *Handler {
	return newHandler(p.Finder, p.Logger)
}

func newHandler(f productFinder, logger *zap.SugaredLogger) *Handler {
	return &Handler{finder: f, logger: logger, validate: validator.New()}
}

func (h *Handler) RegisterRoute(r *chi.Mux) {
	r.Post("/v1/products/search", h.Handle)
}

type searchRequest struct {
	SearchTerm string `json:"searchTerm" validate:"required"`
}

type searchResponse struct {
	Message        string           `json:"message"`
	S3FileURL      string           `json:"s3_file_url"`
	ProductDetails []product.Record `json:"product_details"`
}

type errorResponse struct {
	Message string `json:"message"`
	Error   string `json:"error"`
}

func (h *Handler) Handle(w http.ResponseWriter, r *http.Request) {
	var req searchRequest
	if err := render.DecodeJSON(r, &req); err != nil {
		render.ChiMessage(w, r, http.StatusBadRequest, msgMissingTerm)
		return
	}
	req.SearchTerm = strings.TrimSpace(req.SearchTerm)
	if err := h.validate.Struct(req); err != nil {
		render.ChiMessage(w, r, http.StatusBadRequest, msgMissingTerm)
		return
	}

	out, err := h.finder.GetOrFetch(r.Context(), req.SearchTerm)
	if errors.Is(err, finder.ErrNoProducts) {
		render.ChiMessage(w, r, http.StatusBadRequest, msgNoProducts)
		return
	}
	if err != nil {
		h.logger.Errorw("product_search_failed", "search_term", req.SearchTerm, "err", err)
		render.ChiJSON(w, r, http.StatusInternalServerError, errorResponse{Message: msgUnexpected, Error: err.Error()})
		return
	}

	msg := msgFetched
	if out.Cached {
		msg = msgCached
	}
	records := out.Records
	if records == nil {
		records = []product.Record{}
	}
	render.ChiJSON(w, r, http.StatusOK, searchResponse{
		Message:        msg,
		S3FileURL:      out.ExportURL,
		ProductDetails: records,
	})
}

var _ router.Handler = (*Handler)(nil)
