// Package eventbus is the desk's single event channel: every analytics
// module, agent, and execution component emits typed events here, and
// anything that needs to react subscribes. Delivery to live subscribers is
// best-effort and in-process; the Postgres log behind Recent is the
// authoritative at-least-once record consumers replay against for
// idempotent reprocessing.
package eventbus

import (
	"context"
	"sync"

	"github.com/google/uuid"
	"github.com/rs/zerolog"

	"github.com/sawpanic/riskdesk/internal/models"
	"github.com/sawpanic/riskdesk/internal/timeutil"
)

// Handler processes one delivered event. A handler that panics is
// recovered and logged by the bus so one bad subscriber can't take down the
// dispatch loop for the rest.
type Handler func(ctx context.Context, evt models.Event)

// Log is the durable, at-least-once event record. PostgresLog is the
// production implementation; nil is a valid Bus.log for tests that only
// care about live fan-out.
type Log interface {
	Append(ctx context.Context, evt models.Event) error
	Recent(ctx context.Context, limit int) ([]models.Event, error)
}

// Bus is the in-process event bus. Emit fans out synchronously to every
// subscriber of the event's type (and to wildcard subscribers), then
// appends to the durable log if one is configured.
type Bus struct {
	mu          sync.RWMutex
	subscribers map[string][]Handler
	wildcard    []Handler
	log         Log
	logger      zerolog.Logger
}

// New creates a Bus. log may be nil to disable durable persistence, e.g. in
// unit tests or the sandbox/replay engines which run against an isolated
// event record.
func New(log Log, logger zerolog.Logger) *Bus {
	return &Bus{
		subscribers: make(map[string][]Handler),
		log:         log,
		logger:      logger.With().Str("component", "eventbus").Logger(),
	}
}

// Subscribe registers handler for eventType. Passing "" subscribes to every
// event type.
func (b *Bus) Subscribe(eventType string, handler Handler) {
	b.mu.Lock()
	defer b.mu.Unlock()
	if eventType == "" {
		b.wildcard = append(b.wildcard, handler)
		return
	}
	b.subscribers[eventType] = append(b.subscribers[eventType], handler)
}

// Emit publishes an event: it is dispatched to live subscribers
// synchronously, then appended to the durable log (if configured). The
// returned id is the event's UUID regardless of whether persistence
// succeeds, matching the original bus's emit-never-blocks-on-storage
// behavior.
func (b *Bus) Emit(ctx context.Context, eventType, source string, payload map[string]interface{}) string {
	if payload == nil {
		payload = map[string]interface{}{}
	}
	evt := models.Event{
		ID:        uuid.NewString(),
		EventType: eventType,
		Source:    source,
		Payload:   payload,
		Ts:        timeutil.NowUTC(),
	}

	b.dispatch(ctx, evt)

	if b.log != nil {
		if err := b.log.Append(ctx, evt); err != nil {
			b.logger.Warn().Err(err).Str("event_type", eventType).Msg("failed to persist event")
		}
	}

	b.logger.Info().Str("event_type", eventType).Str("source", source).Str("id", evt.ID).Msg("event emitted")
	return evt.ID
}

func (b *Bus) dispatch(ctx context.Context, evt models.Event) {
	b.mu.RLock()
	handlers := append([]Handler{}, b.subscribers[evt.EventType]...)
	handlers = append(handlers, b.wildcard...)
	b.mu.RUnlock()

	for _, h := range handlers {
		b.safeInvoke(ctx, h, evt)
	}
}

func (b *Bus) safeInvoke(ctx context.Context, h Handler, evt models.Event) {
	defer func() {
		if r := recover(); r != nil {
			b.logger.Error().Interface("panic", r).Str("event_type", evt.EventType).Msg("subscriber panicked")
		}
	}()
	h(ctx, evt)
}

// Recent returns the most recent events from the durable log, newest first.
// It returns an empty slice (not an error) when no log is configured.
func (b *Bus) Recent(ctx context.Context, limit int) ([]models.Event, error) {
	if b.log == nil {
		return nil, nil
	}
	return b.log.Recent(ctx, limit)
}
