package amqpclient

import (
	"context"
	"fmt"
	"strings"

	"search-insight-miner/config"

	amqp "github.com/rabbitmq/amqp091-go"
	"go.uber.org/fx"
	"go.uber.org/zap"
)

const (
	DefaultExchange   = "events"
	DefaultQueue      = "search.term.requested.v1"
	DefaultRoutingKey = "search.term.requested.v1"
)

// Topology is the exchange, queue and routing key used for search requests,
// with defaults applied.
type Topology struct {
	Exchange   string
	Queue      string
	RoutingKey string
}

func (t Topology) DeadLetterExchange() string { return t.Exchange + ".dlx" }

func (t Topology) DeadLetterQueue() string { return t.Queue + ".dlq" }

func TopologyFrom(cfg *config.Config) Topology {
	t := Topology{Exchange: DefaultExchange, Queue: DefaultQueue, RoutingKey: DefaultRoutingKey}
	if cfg == nil {
		return t
	}
	if v := strings.TrimSpace(cfg.RabbitMQ.Exchange); v != "" {
		t.Exchange = v
	}
	if v := strings.TrimSpace(cfg.RabbitMQ.Queue); v != "" {
		t.Queue = v
	}
	if v := strings.TrimSpace(cfg.RabbitMQ.RoutingKey); v != "" {
		t.RoutingKey = v
	}
	return t
}

type NewAMQPParams struct {
	fx.In

	Lifecycle fx.Lifecycle
	Config    *config.Config
	Logger    *zap.SugaredLogger
}

type AMQPOut struct {
	fx.Out

	Conn    *amqp.Connection
	Channel *amqp.Channel
}

// NewAMQP dials RabbitMQ when RABBITMQ_URL is set; otherwise both outputs are nil.
func NewAMQP(p NewAMQPParams) (AMQPOut, error) {
	url := ""
	if p.Config != nil {
		url = strings.TrimSpace(p.Config.RabbitMQ.URL)
	}
	if url == "" {
		p.Logger.Infow("rabbitmq_disabled", "reason", "missing RABBITMQ_URL")
		return AMQPOut{}, nil
	}

	conn, err := amqp.Dial(url)
	if err != nil {
		return AMQPOut{}, fmt.Errorf("rabbitmq dial: %w", err)
	}

	ch, err := conn.Channel()
	if err != nil {
		_ = conn.Close()
		return AMQPOut{}, fmt.Errorf("rabbitmq channel: %w", err)
	}

	p.Lifecycle.Append(fx.Hook{
		OnStop: func(context.Context) error {
			_ = ch.Close()
			_ = conn.Close()
			return nil
		},
	})

	t := TopologyFrom(p.Config)
	p.Logger.Infow(
		"rabbitmq_enabled",
		"exchange", t.Exchange,
		"queue", t.Queue,
		"routing_key", t.RoutingKey,
		"prefetch", p.Config.RabbitMQ.Prefetch,
		"declare_topology", p.Config.RabbitMQ.DeclareTopology,
	)

	return AMQPOut{Conn: conn, Channel: ch}, nil
}
