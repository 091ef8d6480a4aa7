package inngest

import (
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/go-chi/chi/v5"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"search-insight-miner/config"
	pkginngest "search-insight-miner/internal/pkg/inngest"
)

func TestInngestHandler_DisabledAnswersNotImplemented(t *testing.T) {
	cfg := &config.Config{}
	cfg.Inngest.ServePath = "/api/inngest"

	client, err := pkginngest.NewInngestClient(cfg)
	require.NoError(t, err)

	h := NewInngestHandler(NewInngestHandlerParams{
		Logger: zap.NewNop().Sugar(),
		Config: cfg,
		Client: client,
	})
	mux := chi.NewRouter()
	h.RegisterRoute(mux)

	for _, method := range []string{http.MethodGet, http.MethodPut, http.MethodPost} {
		w := httptest.NewRecorder()
		mux.ServeHTTP(w, httptest.NewRequest(method, "/api/inngest", nil))
		require.Equal(t, http.StatusNotImplemented, w.Code, method)
	}
}
