package searchworker

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"strings"
	"sync"

	"search-insight-miner/config"
	"search-insight-miner/internal/pkg/amqpclient"

	amqp "github.com/rabbitmq/amqp091-go"
	"go.uber.org/fx"
	"go.uber.org/zap"
)

var ErrHandlerMissing = errors.New("searchworker handler missing")

type Handler interface {
	Handle(ctx context.Context, msg SearchRequestedEnvelope) error
}

// channel is the subset of *amqp.Channel the consumer uses.
type channel interface {
	Qos(prefetchCount, prefetchSize int, global bool) error
	Consume(queue, consumer string, autoAck, exclusive, noLocal, noWait bool, args amqp.Table) (<-chan amqp.Delivery, error)
	Cancel(consumer string, noWait bool) error
	ExchangeDeclare(name, kind string, durable, autoDelete, internal, noWait bool, args amqp.Table) error
	QueueDeclare(name string, durable, autoDelete, exclusive, noWait bool, args amqp.Table) (amqp.Queue, error)
	QueueBind(name, key, exchange string, noWait bool, args amqp.Table) error
}

type Consumer struct {
	cfg     *config.Config
	channel channel
	handler Handler
	logger  *zap.SugaredLogger

	consumerTag string

	cancel context.CancelFunc
	wg     sync.WaitGroup
}

type NewConsumerParams struct {
	fx.In

	Config  *config.Config
	Channel *amqp.Channel `optional:"true"`
	Handler Handler       `optional:"true"`
	Logger  *zap.SugaredLogger
}

func NewConsumer(p NewConsumerParams) *Consumer {
	c := newConsumer(p.Config, nil, p.Handler, p.Logger)
	if p.Channel != nil {
		c.channel = p.Channel
	}
	return c
}

func newConsumer(cfg *config.Config, ch channel, h Handler, logger *zap.SugaredLogger) *Consumer {
	if h == nil {
		h = missingHandler{}
	}
	return &Consumer{
		cfg:         cfg,
		channel:     ch,
		handler:     h,
		logger:      logger,
		consumerTag: "searchworker",
	}
}

// Start begins consuming. Deliveries are processed on a background goroutine
// until Stop; the start context only bounds the setup calls.
func (c *Consumer) Start(ctx context.Context) error {
	if c.cfg == nil || strings.TrimSpace(c.cfg.RabbitMQ.URL) == "" || c.channel == nil {
		c.logger.Infow("searchworker_disabled", "reason", "missing rabbitmq config or channel")
		return nil
	}

	t := amqpclient.TopologyFrom(c.cfg)
	if c.cfg.RabbitMQ.DeclareTopology {
		if err := c.declareTopology(t); err != nil {
			return err
		}
	}

	prefetch := c.cfg.RabbitMQ.Prefetch
	if prefetch <= 0 {
		prefetch = 1
	}
	if err := c.channel.Qos(prefetch, 0, false); err != nil {
		return fmt.Errorf("rabbitmq qos: %w", err)
	}

	deliveries, err := c.channel.Consume(
		t.Queue,
		c.consumerTag,
		false, // autoAck
		false, // exclusive
		false, // noLocal
		false, // noWait
		nil,   // args
	)
	if err != nil {
		return fmt.Errorf("rabbitmq consume: %w", err)
	}

	c.logger.Infow("searchworker_started", "queue", t.Queue, "prefetch", prefetch)

	runCtx, cancel := context.WithCancel(context.Background())
	c.cancel = cancel
	c.wg.Add(1)
	go func() {
		defer c.wg.Done()
		for {
			select {
			case <-runCtx.Done():
				return
			case d, ok := <-deliveries:
				if !ok {
					return
				}
				c.handleDelivery(runCtx, d)
			}
		}
	}()

	return nil
}

func (c *Consumer) Stop(ctx context.Context) error {
	if c.channel == nil || c.cancel == nil {
		return nil
	}
	_ = c.channel.Cancel(c.consumerTag, false)
	c.cancel()

	done := make(chan struct{})
	go func() {
		c.wg.Wait()
		close(done)
	}()
	select {
	case <-done:
		return nil
	case <-ctx.Done():
		return ctx.Err()
	}
}

func (c *Consumer) declareTopology(t amqpclient.Topology) error {
	dlx := t.DeadLetterExchange()
	dlq := t.DeadLetterQueue()

	if err := c.channel.ExchangeDeclare(t.Exchange, "topic", true, false, false, false, nil); err != nil {
		return fmt.Errorf("rabbitmq exchange declare %q: %w", t.Exchange, err)
	}
	if err := c.channel.ExchangeDeclare(dlx, "topic", true, false, false, false, nil); err != nil {
		return fmt.Errorf("rabbitmq dlx exchange declare %q: %w", dlx, err)
	}

	args := amqp.Table{
		"x-dead-letter-exchange": dlx,
	}
	if _, err := c.channel.QueueDeclare(t.Queue, true, false, false, false, args); err != nil {
		return fmt.Errorf("rabbitmq queue declare %q: %w", t.Queue, err)
	}
	if _, err := c.channel.QueueDeclare(dlq, true, false, false, false, nil); err != nil {
		return fmt.Errorf("rabbitmq dlq declare %q: %w", dlq, err)
	}

	if err := c.channel.QueueBind(t.Queue, t.RoutingKey, t.Exchange, false, nil); err != nil {
		return fmt.Errorf("rabbitmq queue bind queue=%q key=%q ex=%q: %w", t.Queue, t.RoutingKey, t.Exchange, err)
	}
	if err := c.channel.QueueBind(dlq, t.RoutingKey, dlx, false, nil); err != nil {
		return fmt.Errorf("rabbitmq dlq bind queue=%q key=%q ex=%q: %w", dlq, t.RoutingKey, dlx, err)
	}

	c.logger.Infow(
		"searchworker_topology_declared",
		"exchange", t.Exchange,
		"queue", t.Queue,
		"routing_key", t.RoutingKey,
		"dlx", dlx,
		"dlq", dlq,
	)
	return nil
}

// handleDelivery acks handled messages and rejects (dead-letters) the rest.
func (c *Consumer) handleDelivery(ctx context.Context, d amqp.Delivery) {
	eventID := strings.TrimSpace(d.MessageId)
	if eventID == "" {
		eventID = strings.TrimSpace(d.CorrelationId)
	}

	var msg SearchRequestedEnvelope
	if err := json.Unmarshal(d.Body, &msg); err != nil {
		c.logger.Errorw("searchworker_invalid_json", "err", err, "message_id", eventID)
		_ = d.Reject(false)
		return
	}

	if strings.TrimSpace(msg.EventID) == "" {
		msg.EventID = eventID
	}
	if strings.TrimSpace(msg.EventID) == "" {
		c.logger.Errorw("searchworker_missing_event_id", "event_name", msg.EventName)
		_ = d.Reject(false)
		return
	}

	if err := c.handler.Handle(ctx, msg); err != nil {
		c.logger.Errorw("searchworker_handle_failed",
			"err", err,
			"event_id", msg.EventID,
			"search_term", msg.Data.SearchTerm,
		)
		_ = d.Reject(false)
		return
	}

	_ = d.Ack(false)
}

type missingHandler struct{}

func (missingHandler) Handle(context.Context, SearchRequestedEnvelope) error {
	return ErrHandlerMissing
}
