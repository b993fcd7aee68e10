package amqp

import (
	"context"
	"encoding/json"
	"errors"
	"testing"

	"github.com/dafibh/giderler/giderler-backend/internal/websocket"
	"github.com/rabbitmq/amqp091-go"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type published struct {
	exchange string
	key      string
	msg      amqp091.Publishing
}

type fakeChannel struct {
	published []published
	err       error
	closed    bool
}

func (f *fakeChannel) PublishWithContext(ctx context.Context, exchange, key string, mandatory, immediate bool, msg amqp091.Publishing) error {
	if f.err != nil {
		return f.err
	}
	f.published = append(f.published, published{exchange: exchange, key: key, msg: msg})
	return nil
}

func (f *fakeChannel) Close() error {
	f.closed = true
	return nil
}

func TestPublisher_RoutesByEventType(t *testing.T) {
	ch := &fakeChannel{}
	p := &Publisher{channel: ch, exchange: "giderler.events"}

	p.Publish(websocket.ExpenseCreated("ayse", map[string]string{"id": "e1"}))

	require.Len(t, ch.published, 1)
	got := ch.published[0]
	assert.Equal(t, "giderler.events", got.exchange)
	assert.Equal(t, "expense.created", got.key)
	assert.Equal(t, "application/json", got.msg.ContentType)
	assert.Equal(t, amqp091.Persistent, got.msg.DeliveryMode)
	assert.Equal(t, "ayse", got.msg.Headers["owner_id"])
	assert.Equal(t, "expense", got.msg.Headers["entity"])

	var body map[string]interface{}
	require.NoError(t, json.Unmarshal(got.msg.Body, &body))
	assert.Equal(t, "expense.created", body["type"])
	assert.Equal(t, map[string]interface{}{"id": "e1"}, body["payload"])
}

func TestPublisher_UnownedEventHasNoOwnerHeader(t *testing.T) {
	ch := &fakeChannel{}
	p := &Publisher{channel: ch, exchange: "x"}

	p.Publish(websocket.ExpensesSeeded(5))

	require.Len(t, ch.published, 1)
	assert.NotContains(t, ch.published[0].msg.Headers, "owner_id")
	assert.Equal(t, "expense.seeded", ch.published[0].key)
}

func TestPublisher_FailureIsSwallowed(t *testing.T) {
	ch := &fakeChannel{err: errors.New("channel closed")}
	p := &Publisher{channel: ch, exchange: "x"}

	assert.NotPanics(t, func() {
		p.Publish(websocket.ExpenseDeleted("", "e1"))
	})
}

func TestPublisher_Close(t *testing.T) {
	ch := &fakeChannel{}
	p := &Publisher{channel: ch, exchange: "x"}

	require.NoError(t, p.Close())
	assert.True(t, ch.closed)
}

func TestPublisher_ImplementsEventPublisher(t *testing.T) {
	var _ websocket.EventPublisher = (*Publisher)(nil)
}
