package amqp

import (
	"context"
	"fmt"
	"sync"
	"time"

	"github.com/dafibh/giderler/giderler-backend/internal/websocket"
	"github.com/rabbitmq/amqp091-go"
	"github.com/rs/zerolog/log"
)

const publishTimeout = 5 * time.Second

// channel is the part of *amqp091.Channel the publisher uses
type channel interface {
	PublishWithContext(ctx context.Context, exchange, key string, mandatory, immediate bool, msg amqp091.Publishing) error
	Close() error
}

// Publisher forwards live-update events to a topic exchange, routed by
// event type (e.g. "expense.created")
type Publisher struct {
	conn     *amqp091.Connection
	channel  channel
	exchange string
	mu       sync.Mutex
}

var _ websocket.EventPublisher = (*Publisher)(nil)

// NewPublisher dials url and declares a durable topic exchange
func NewPublisher(url, exchange string) (*Publisher, error) {
	conn, err := amqp091.Dial(url)
	if err != nil {
		return nil, fmt.Errorf("dial AMQP: %w", err)
	}

	ch, err := conn.Channel()
	if err != nil {
		conn.Close()
		return nil, fmt.Errorf("open channel: %w", err)
	}

	err = ch.ExchangeDeclare(
		exchange, // name
		"topic",  // type
		true,     // durable
		false,    // auto-deleted
		false,    // internal
		false,    // no-wait
		nil,      // arguments
	)
	if err != nil {
		ch.Close()
		conn.Close()
		return nil, fmt.Errorf("declare exchange: %w", err)
	}

	return &Publisher{conn: conn, channel: ch, exchange: exchange}, nil
}

// Publish sends the event. Failures are logged and never reach the caller.
func (p *Publisher) Publish(event websocket.Event) {
	msg, err := newPublishing(event)
	if err != nil {
		log.Error().Err(err).Str("event_type", event.Type).Msg("Failed to encode event for AMQP")
		return
	}

	ctx, cancel := context.WithTimeout(context.Background(), publishTimeout)
	defer cancel()

	// amqp091 channels are not safe for concurrent publishing
	p.mu.Lock()
	err = p.channel.PublishWithContext(
		ctx,
		p.exchange, // exchange
		event.Type, // routing key
		false,      // mandatory
		false,      // immediate
		msg,
	)
	p.mu.Unlock()

	if err != nil {
		log.Warn().
			Err(err).
			Str("exchange", p.exchange).
			Str("event_type", event.Type).
			Msg("Failed to publish event to AMQP")
		return
	}

	log.Debug().
		Str("exchange", p.exchange).
		Str("event_type", event.Type).
		Str("owner_id", event.OwnerID).
		Msg("Published event to AMQP")
}

// Close closes the channel and the connection
func (p *Publisher) Close() error {
	if p.channel != nil {
		p.channel.Close()
	}
	if p.conn != nil {
		return p.conn.Close()
	}
	return nil
}

func newPublishing(event websocket.Event) (amqp091.Publishing, error) {
	body, err := event.ToJSON()
	if err != nil {
		return amqp091.Publishing{}, fmt.Errorf("marshal event: %w", err)
	}

	headers := amqp091.Table{"entity": string(event.Entity)}
	if event.OwnerID != "" {
		headers["owner_id"] = event.OwnerID
	}

	return amqp091.Publishing{
		ContentType:  "application/json",
		DeliveryMode: amqp091.Persistent,
		Timestamp:    event.Timestamp,
		Type:         event.Type,
		Headers:      headers,
		Body:         body,
	}, nil
}
