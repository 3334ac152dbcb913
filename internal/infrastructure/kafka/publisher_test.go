package kafka

import (
	"encoding/json"
	"errors"
	"io"
	"log/slog"
	"testing"
	"time"

	"github.com/stretchr/testify/require"

	"github.com/LavaJover/festival-order-service/internal/domain"
)

type recordingPort struct {
	topics []string
	msgs   []domain.Message
	err    error
}

func (r *recordingPort) Publish(topic string, msgs ...domain.Message) error {
	r.topics = append(r.topics, topic)
	r.msgs = append(r.msgs, msgs...)
	return r.err
}

func TestEventPublisherRoutesByTopicAndKey(t *testing.T) {
	port := &recordingPort{}
	p := NewEventPublisher(port, "orders", "games", slog.New(slog.NewTextHandler(io.Discard, nil)))

	p.PublishOrder(OrderEvent{Type: EventOrderPaid, OrderCode: "TSXHL1", Total: 60000, OccurredAt: time.Unix(0, 0).UTC()})
	p.PublishGame(GameEvent{Type: EventGamePlayed, Phone: "0901", Game: "wheel"})

	require.Equal(t, []string{"orders", "games"}, port.topics)
	require.Equal(t, "TSXHL1", string(port.msgs[0].Key))
	require.Equal(t, "0901", string(port.msgs[1].Key))

	var got OrderEvent
	require.NoError(t, json.Unmarshal(port.msgs[0].Value, &got))
	require.Equal(t, EventOrderPaid, got.Type)
	require.EqualValues(t, 60000, got.Total)
	require.NotEmpty(t, got.ID)
}

func TestEventPublisherSwallowsErrors(t *testing.T) {
	port := &recordingPort{err: errors.New("broker down")}
	p := NewEventPublisher(port, "orders", "games", slog.New(slog.NewTextHandler(io.Discard, nil)))
	require.NotPanics(t, func() { p.PublishOrder(OrderEvent{OrderCode: "x"}) })

	var nilPublisher *EventPublisher
	require.NotPanics(t, func() { nilPublisher.PublishGame(GameEvent{Phone: "x"}) })
}
