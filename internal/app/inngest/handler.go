package inngest

import (
	"net/http"

	"search-insight-miner/config"
	pkginngest "search-insight-miner/internal/pkg/inngest"
	"search-insight-miner/internal/router"

	"github.com/go-chi/chi/v5"
	"github.com/inngest/inngestgo"
	"go.uber.org/fx"
	"go.uber.org/zap"
)

type InngestHandler struct {
	logger *zap.SugaredLogger
	cfg    *config.Config
	client inngestgo.Client
}

type NewInngestHandlerParams struct {
	fx.In

	Logger *zap.SugaredLogger
	Config *config.Config
	Client inngestgo.Client
}

func NewInngestHandler(p NewInngestHandlerParams) *InngestHandler {
	return &InngestHandler{
		logger: p.Logger,
		cfg:    p.Config,
		client: p.Client,
	}
}

func (h *InngestHandler) RegisterRoute(r *chi.Mux) {
	path := pkginngest.ServePath(h.cfg)

	r.Post(path, h.Handle)
	r.Put(path, h.Handle)
	r.Get(path, h.Handle)
}

// Handle delegates to the client; the disabled client answers 501 itself.
func (h *InngestHandler) Handle(w http.ResponseWriter, r *http.Request) {
	h.client.Serve().ServeHTTP(w, r)
}

var _ router.Handler = (*InngestHandler)(nil)
