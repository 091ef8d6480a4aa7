package inngest

import (
	"context"
	"errors"
	"net/http"
	"net/url"
	"strings"

	"search-insight-miner/config"
	"search-insight-miner/internal/pkg/render"

	"github.com/inngest/inngestgo"
)

const DefaultServePath = "/api/inngest"

// ErrDisabled is returned by the client used when INNGEST_APP_ID is empty.
var ErrDisabled = errors.New("inngest disabled")

// ServePath returns the configured serve path or DefaultServePath.
func ServePath(cfg *config.Config) string {
	if cfg != nil {
		if v := strings.TrimSpace(cfg.Inngest.ServePath); v != "" {
			return v
		}
	}
	return DefaultServePath
}

// Enabled reports whether INNGEST_APP_ID is set.
func Enabled(cfg *config.Config) bool {
	return cfg != nil && strings.TrimSpace(cfg.Inngest.AppID) != ""
}

func NewInngestClient(cfg *config.Config) (inngestgo.Client, error) {
	appID := strings.TrimSpace(cfg.Inngest.AppID)
	if appID == "" {
		return disabledClient{reason: "inngest disabled: set INNGEST_APP_ID to enable"}, nil
	}

	scheme := "https"
	if cfg.Inngest.Dev == "1" {
		scheme = "http"
	}

	opts := inngestgo.ClientOpts{
		AppID: appID,
		Dev:   inngestgo.BoolPtr(cfg.Inngest.Dev == "1"),
	}

	if signingKey := strings.TrimSpace(cfg.Inngest.SigningKey); signingKey != "" {
		opts.SigningKey = &signingKey
	}
	c, err := inngestgo.NewClient(opts)
	if err != nil {
		return nil, err
	}

	if serveHost := strings.TrimSpace(cfg.Inngest.ServeHost); serveHost != "" {
		c.SetURL(&url.URL{
			Scheme: scheme,
			Host:   serveHost,
			Path:   ServePath(cfg),
		})
	}

	return c, nil
}

type disabledClient struct {
	reason string
}

func (c disabledClient) AppID() string { return "" }

func (c disabledClient) Send(ctx context.Context, evt any) (string, error) {
	return "", ErrDisabled
}

func (c disabledClient) SendMany(ctx context.Context, evt []any) ([]string, error) {
	return nil, ErrDisabled
}

func (c disabledClient) Options() inngestgo.ClientOpts { return inngestgo.ClientOpts{} }

func (c disabledClient) Serve() http.Handler { return c.ServeWithOpts(inngestgo.ServeOpts{}) }

func (c disabledClient) ServeWithOpts(opts inngestgo.ServeOpts) http.Handler {
	msg := strings.TrimSpace(c.reason)
	if msg == "" {
		msg = "inngest disabled"
	}
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		render.ChiErr(w, r, http.StatusNotImplemented, errors.New(msg))
	})
}

func (c disabledClient) SetOptions(opts inngestgo.ClientOpts) error { return ErrDisabled }
func (c disabledClient) SetURL(u *url.URL)                           {}
