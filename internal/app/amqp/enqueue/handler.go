package enqueue

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"strings"
	"time"

	"search-insight-miner/config"
	"search-insight-miner/internal/app/amqp/searchworker"
	"search-insight-miner/internal/pkg/amqpclient"
	"search-insight-miner/internal/pkg/render"
	"search-insight-miner/internal/router"

	"github.com/go-chi/chi/v5"
	"github.com/google/uuid"
	amqp "github.com/rabbitmq/amqp091-go"
	"go.uber.org/fx"
	"go.uber.org/zap"
)

type exchangeDeclarer interface {
	ExchangeDeclare(name, kind string, durable, autoDelete, internal, noWait bool, args amqp.Table) error
}

type Handler struct {
	cfg      *config.Config
	declarer exchangeDeclarer
	logger   *zap.SugaredLogger

	publish func(ctx context.Context, exchange, key string, mandatory, immediate bool, msg amqp.Publishing) error
	newID   func() string
}

type NewHandlerParams struct {
	fx.In

	Cfg     *config.Config
	Channel *amqp.Channel `optional:"true"`
	Logger  *zap.SugaredLogger
}

func NewHandler(p NewHandlerParams) *Handler {
	h := &Handler{
		cfg:    p.Cfg,
		logger: p.Logger,
		newID:  uuid.NewString,
	}
	if p.Channel != nil {
		h.declarer = p.Channel
		h.publish = p.Channel.PublishWithContext
	}
	return h
}

func (h *Handler) RegisterRoute(r *chi.Mux) {
	r.Post("/v1/search/enqueue", h.Handle)
}

type enqueueRequest struct {
	SearchTerm string `json:"searchTerm"`
	Insights   bool   `json:"insights"`
}

type enqueueResponse struct {
	OK      bool   `json:"ok"`
	EventID string `json:"event_id"`
}

func (h *Handler) Handle(w http.ResponseWriter, r *http.Request) {
	var req enqueueRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		render.ChiErr(w, r, http.StatusBadRequest, fmt.Errorf("invalid json"))
		return
	}

	term := strings.TrimSpace(req.SearchTerm)
	if term == "" {
		render.ChiErr(w, r, http.StatusBadRequest, fmt.Errorf("missing searchTerm"))
		return
	}

	if h.cfg.RabbitMQ.URL == "" || h.publish == nil {
		render.ChiErr(w, r, http.StatusServiceUnavailable, fmt.Errorf("rabbitmq disabled"))
		return
	}

	t := amqpclient.TopologyFrom(h.cfg)
	now := time.Now().UTC()
	eventID := h.newID()

	env := searchworker.SearchRequestedEnvelope{
		EventName: searchworker.EventName,
		EventID:   eventID,
		TS:        now,
		Data: searchworker.SearchRequestedEventData{
			SearchTerm: term,
			Insights:   req.Insights,
		},
	}
	body, err := json.Marshal(env)
	if err != nil {
		h.logger.Errorw("enqueue_marshal_failed", "err", err)
		render.ChiErr(w, r, http.StatusInternalServerError, fmt.Errorf("failed to encode message"))
		return
	}

	if h.declarer != nil && h.cfg.RabbitMQ.DeclareTopology {
		if err := h.declarer.ExchangeDeclare(t.Exchange, "topic", true, false, false, false, nil); err != nil {
			h.logger.Errorw("enqueue_exchange_declare_failed", "exchange", t.Exchange, "err", err)
			render.ChiErr(w, r, http.StatusBadGateway, fmt.Errorf("rabbitmq exchange declare failed: %s", t.Exchange))
			return
		}
	}

	if err := h.publish(r.Context(), t.Exchange, t.RoutingKey, false, false, amqp.Publishing{
		DeliveryMode: amqp.Persistent,
		ContentType:  "application/json",
		Timestamp:    now,
		MessageId:    eventID,
		Body:         body,
	}); err != nil {
		h.logger.Errorw(
			"enqueue_publish_failed",
			"exchange", t.Exchange,
			"routing_key", t.RoutingKey,
			"event_id", eventID,
			"search_term", term,
			"err", err,
		)
		render.ChiErr(w, r, http.StatusBadGateway, fmt.Errorf("failed to publish message"))
		return
	}

	h.logger.Infow("enqueue_published", "exchange", t.Exchange, "routing_key", t.RoutingKey, "event_id", eventID, "search_term", term)
	render.ChiJSON(w, r, http.StatusAccepted, enqueueResponse{OK: true, EventID: eventID})
}

var _ router.Handler = (*Handler)(nil)
