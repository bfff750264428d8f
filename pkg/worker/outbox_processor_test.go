package worker

import (
	"context"
	"errors"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/cliniga/cliniga-api/internal/model"
	"github.com/cliniga/cliniga-api/internal/repository/memory"
	"github.com/cliniga/cliniga-api/pkg/logger"
	"github.com/cliniga/cliniga-api/pkg/metrics"
)

type fakeBroker struct {
	mu        sync.Mutex
	published []string
	failures  int
}

func (b *fakeBroker) Publish(ctx context.Context, channel string, message interface{}) error {
	b.mu.Lock()
	defer b.mu.Unlock()
	if b.failures > 0 {
		b.failures--
		return errors.New("broker unavailable")
	}
	b.published = append(b.published, channel)
	return nil
}

func (b *fakeBroker) Subscribe(ctx context.Context, channel string) (<-chan []byte, error) {
	ch := make(chan []byte)
	close(ch)
	return ch, nil
}

func (b *fakeBroker) Close() error { return nil }

func (b *fakeBroker) channels() []string {
	b.mu.Lock()
	defer b.mu.Unlock()
	return append([]string(nil), b.published...)
}

var testMetrics = metrics.NewMetrics("cliniga", "worker_test")

func newProcessor(broker *fakeBroker) (*OutboxProcessor, *memory.Store) {
	store := memory.NewStore()
	p := NewOutboxProcessor(store.Outbox(), broker, OutboxProcessorConfig{
		BatchSize:     10,
		PollInterval:  time.Millisecond,
		RetryAttempts: 2,
		RetryDelay:    time.Millisecond,
	}, logger.NewLogger(nil), testMetrics)
	return p, store
}

func TestProcessEventsPublishesAndMarks(t *testing.T) {
	broker := &fakeBroker{}
	p, store := newProcessor(broker)
	ctx := context.Background()

	require.NoError(t, store.Outbox().Create(ctx, &model.OutboxEvent{
		EventType: model.EventAppointmentCreated,
		Payload:   []byte(`{"date":"2030-05-01"}`),
	}))
	require.NoError(t, store.Outbox().Create(ctx, &model.OutboxEvent{
		EventType: model.EventAppointmentConfirmed,
		Payload:   []byte(`{"date":"2030-05-01"}`),
	}))

	require.NoError(t, p.processEvents(ctx))

	assert.ElementsMatch(t, []string{
		model.EventAppointmentCreated,
		model.EventAppointmentConfirmed,
	}, broker.channels())

	pending, err := store.Outbox().GetPendingEvents(ctx, 10)
	require.NoError(t, err)
	assert.Empty(t, pending)
}

func TestProcessEventsRetriesTransientFailures(t *testing.T) {
	broker := &fakeBroker{failures: 1}
	p, store := newProcessor(broker)
	ctx := context.Background()

	require.NoError(t, store.Outbox().Create(ctx, &model.OutboxEvent{
		EventType: model.EventAppointmentCreated,
		Payload:   []byte(`{}`),
	}))

	require.NoError(t, p.processEvents(ctx))

	assert.Len(t, broker.channels(), 1, "second attempt succeeds")
	pending, err := store.Outbox().GetPendingEvents(ctx, 10)
	require.NoError(t, err)
	assert.Empty(t, pending)
}

func TestProcessEventsMarksFailedAfterRetries(t *testing.T) {
	broker := &fakeBroker{failures: 100}
	p, store := newProcessor(broker)
	ctx := context.Background()

	event := &model.OutboxEvent{EventType: model.EventAppointmentCreated, Payload: []byte(`{}`)}
	require.NoError(t, store.Outbox().Create(ctx, event))

	require.NoError(t, p.processEvents(ctx))

	pending, err := store.Outbox().GetPendingEvents(ctx, 10)
	require.NoError(t, err)
	assert.Empty(t, pending, "exhausted events move to failed, not back to pending")
}

func TestProcessEventsRejectsMalformedPayload(t *testing.T) {
	broker := &fakeBroker{}
	p, store := newProcessor(broker)
	ctx := context.Background()

	require.NoError(t, store.Outbox().Create(ctx, &model.OutboxEvent{
		EventType: model.EventAppointmentCreated,
		Payload:   []byte(`{not json`),
	}))

	require.NoError(t, p.processEvents(ctx))

	assert.Empty(t, broker.channels(), "malformed payloads never reach the broker")
}

func TestStartStopsOnContextCancel(t *testing.T) {
	broker := &fakeBroker{}
	p, _ := newProcessor(broker)

	ctx, cancel := context.WithCancel(context.Background())
	done := make(chan struct{})
	go func() {
		p.Start(ctx)
		close(done)
	}()

	cancel()
	select {
	case <-done:
	case <-time.After(time.Second):
		t.Fatal("processor did not stop after cancel")
	}
}
