package event

import (
	"context"
	"errors"
	"sync"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/wagginmeals/backend/internal/domain/order"
	"github.com/wagginmeals/backend/internal/domain/shared"
	"github.com/wagginmeals/backend/internal/domain/subscription"
	"go.uber.org/zap"
	"go.uber.org/zap/zaptest/observer"
)

type testEvent struct {
	shared.BaseDomainEvent
}

func newTestEvent(eventType string) *testEvent {
	return &testEvent{BaseDomainEvent: shared.NewBaseDomainEvent(eventType, "Test", uuid.New())}
}

type testHandler struct {
	eventTypes []string
	mu         sync.Mutex
	handled    []shared.DomainEvent
	err        error
	panicWith  any
	sawCtx     context.Context
}

func newTestHandler(eventTypes ...string) *testHandler {
	return &testHandler{eventTypes: eventTypes}
}

func (h *testHandler) Handle(ctx context.Context, event shared.DomainEvent) error {
	h.mu.Lock()
	defer h.mu.Unlock()
	if h.panicWith != nil {
		panic(h.panicWith)
	}
	h.handled = append(h.handled, event)
	h.sawCtx = ctx
	return h.err
}

func (h *testHandler) EventTypes() []string { return h.eventTypes }

func (h *testHandler) count() int {
	h.mu.Lock()
	defer h.mu.Unlock()
	return len(h.handled)
}

func TestInMemoryEventBus_Routing(t *testing.T) {
	bus := NewInMemoryEventBus(zap.NewNop())

	crm := newTestHandler(subscription.EventTypePaymentFailed, order.EventTypePlaced)
	mail := newTestHandler(order.EventTypePlaced)
	audit := newTestHandler()
	bus.Subscribe(crm)
	bus.Subscribe(mail)
	bus.Subscribe(audit)

	require.NoError(t, bus.Publish(context.Background(),
		newTestEvent(order.EventTypePlaced),
		newTestEvent(subscription.EventTypePaymentFailed),
		newTestEvent(order.EventTypeShipped),
	))

	assert.Equal(t, 2, crm.count())
	assert.Equal(t, 1, mail.count())
	assert.Equal(t, 3, audit.count(), "wildcard handler sees everything")

	published, failed := bus.Stats()
	assert.Equal(t, int64(3), published)
	assert.Zero(t, failed)
}

func TestInMemoryEventBus_HandlerFailuresAreContained(t *testing.T) {
	core, logs := observer.New(zap.ErrorLevel)
	bus := NewInMemoryEventBus(zap.New(core))

	failing := newTestHandler(order.EventTypePlaced)
	failing.err = errors.New("crm webhook returned 502")
	panicking := newTestHandler(order.EventTypePlaced)
	panicking.panicWith = "boom"
	healthy := newTestHandler(order.EventTypePlaced)
	bus.Subscribe(failing)
	bus.Subscribe(panicking)
	bus.Subscribe(healthy)

	err := bus.Publish(context.Background(), newTestEvent(order.EventTypePlaced))

	require.NoError(t, err)
	assert.Equal(t, 1, healthy.count())
	assert.Equal(t, 2, logs.FilterMessage("event handler failed").Len())
	_, failed := bus.Stats()
	assert.Equal(t, int64(2), failed)
}

func TestInMemoryEventBus_HandlersOutliveRequestContext(t *testing.T) {
	bus := NewInMemoryEventBus(zap.NewNop(), WithHandlerTimeout(time.Second))
	h := newTestHandler()
	bus.Subscribe(h)

	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	require.NoError(t, bus.Publish(ctx, newTestEvent(order.EventTypePlaced)))

	require.Equal(t, 1, h.count())
	assert.NoError(t, h.sawCtx.Err())
	_, hasDeadline := h.sawCtx.Deadline()
	assert.True(t, hasDeadline)
}

func TestInMemoryEventBus_Unsubscribe(t *testing.T) {
	bus := NewInMemoryEventBus(zap.NewNop())
	h := newTestHandler(order.EventTypeShipped)
	bus.Subscribe(h)
	bus.Unsubscribe(h)

	require.NoError(t, bus.Publish(context.Background(), newTestEvent(order.EventTypeShipped)))
	assert.Zero(t, h.count())
}

func TestInMemoryEventBus_StopDropsEvents(t *testing.T) {
	bus := NewInMemoryEventBus(zap.NewNop())
	h := newTestHandler()
	bus.Subscribe(h)

	require.NoError(t, bus.Stop(context.Background()))
	require.NoError(t, bus.Publish(context.Background(), newTestEvent(order.EventTypePlaced)))
	assert.Zero(t, h.count())

	require.NoError(t, bus.Start(context.Background()))
	require.NoError(t, bus.Publish(context.Background(), newTestEvent(order.EventTypePlaced)))
	assert.Equal(t, 1, h.count())
}
