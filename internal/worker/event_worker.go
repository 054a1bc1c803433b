package worker

import (
	"context"
	"time"

	"github.com/ramgerassy/ace-ai-sub001/internal/event"
	"github.com/ramgerassy/ace-ai-sub001/internal/metrics"
	"github.com/rs/zerolog"
)

const (
	EventQueueSize      = 256
	EventPublishTimeout = 5 * time.Second
	EventDrainTimeout   = 10 * time.Second
)

// EventWorker publishes domain events off the request path. Enqueue never
// blocks; when the queue is full the event is dropped and counted.
type EventWorker struct {
	publisher event.Publisher
	queue     chan event.Event
	done      chan struct{}
	log       zerolog.Logger
}

func NewEventWorker(publisher event.Publisher, size int, log zerolog.Logger) *EventWorker {
	if size <= 0 {
		size = EventQueueSize
	}
	return &EventWorker{
		publisher: publisher,
		queue:     make(chan event.Event, size),
		done:      make(chan struct{}),
		log:       log.With().Str("component", "event_worker").Logger(),
	}
}

// Enqueue hands e to the worker and reports whether it was accepted.
func (w *EventWorker) Enqueue(e event.Event) bool {
	select {
	case w.queue <- e:
		return true
	default:
		metrics.EventDropped("queue_full")
		w.log.Warn().Str("type", e.Type).Msg("Event queue full, dropping event")
		return false
	}
}

// Start runs the publish loop until ctx is cancelled, then drains what is
// left. Call in a goroutine.
func (w *EventWorker) Start(ctx context.Context) {
	w.log.Info().Msg("EventWorker started")
	defer close(w.done)

	for {
		select {
		case <-ctx.Done():
			w.log.Info().Msg("Shutdown requested. Draining event queue...")
			w.drain()
			w.log.Info().Msg("EventWorker stopped")
			return
		case e := <-w.queue:
			w.publish(ctx, e)
		}
	}
}

// Done is closed once Start has returned.
func (w *EventWorker) Done() <-chan struct{} { return w.done }

func (w *EventWorker) publish(ctx context.Context, e event.Event) {
	ctx, cancel := context.WithTimeout(ctx, EventPublishTimeout)
	defer cancel()

	if err := w.publisher.Publish(ctx, e); err != nil {
		metrics.EventDropped("publish_error")
		w.log.Error().Err(err).Str("type", e.Type).Str("event_id", e.ID).Msg("Publish error")
	}
}

func (w *EventWorker) drain() {
	ctx, cancel := context.WithTimeout(context.Background(), EventDrainTimeout)
	defer cancel()

	drained := 0
	for {
		select {
		case e := <-w.queue:
			w.publish(ctx, e)
			drained++
		default:
			if drained > 0 {
				w.log.Info().Int("count", drained).Msg("Drained remaining events")
			}
			return
		}
	}
}
