package fx

import (
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/go-chi/chi/v5"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"search-insight-miner/config"
	"search-insight-miner/internal/router"
)

type pingHandler struct{}

func (pingHandler) RegisterRoute(r *chi.Mux) { r.Post("/v1/ping", pingHandler{}.Handle) }

func (pingHandler) Handle(w http.ResponseWriter, _ *http.Request) { w.WriteHeader(http.StatusOK) }

func TestNewMux_AllowsAnyOriginByDefault(t *testing.T) {
	r := NewMux(muxParams{
		Cfg:      &config.Config{},
		Logger:   zap.NewNop().Sugar(),
		Handlers: []router.Handler{pingHandler{}},
	})

	req := httptest.NewRequest(http.MethodPost, "/v1/ping", nil)
	req.Header.Set("Origin", "https://frontend.example")
	w := httptest.NewRecorder()
	r.ServeHTTP(w, req)

	require.Equal(t, http.StatusOK, w.Code)
	require.Equal(t, "*", w.Header().Get("Access-Control-Allow-Origin"))
}

func TestNewMux_CORSPreflight_RestrictedOrigins(t *testing.T) {
	cfg := &config.Config{CORSAllowedOrigins: []string{"http://localhost:5173"}}
	r := NewMux(muxParams{Cfg: cfg, Logger: zap.NewNop().Sugar()})

	req := httptest.NewRequest(http.MethodOptions, "/v1/products/search", nil)
	req.Header.Set("Origin", "http://localhost:5173")
	req.Header.Set("Access-Control-Request-Method", "POST")
	w := httptest.NewRecorder()
	r.ServeHTTP(w, req)

	require.Equal(t, "http://localhost:5173", w.Header().Get("Access-Control-Allow-Origin"))
	require.NotEmpty(t, w.Header().Get("Access-Control-Allow-Methods"))

	req = httptest.NewRequest(http.MethodOptions, "/v1/products/search", nil)
	req.Header.Set("Origin", "https://evil.example")
	req.Header.Set("Access-Control-Request-Method", "POST")
	w = httptest.NewRecorder()
	r.ServeHTTP(w, req)

	require.Empty(t, w.Header().Get("Access-Control-Allow-Origin"))
}
