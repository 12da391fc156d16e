package events

import (
	"context"
	"log/slog"
	"sync"
)

// DispatchMode selects how a subscription's handler executes.
type DispatchMode int

const (
	// Sync handlers run before Publish returns; an error aborts the
	// remaining handlers of the event and propagates to the publisher.
	Sync DispatchMode = iota

	// Background handlers are scheduled after the synchronous wave
	// completes and run on their own goroutine; errors are logged and
	// never propagate.
	Background
)

// HandlerFunc processes one event.
type HandlerFunc func(ctx context.Context, event Event) error

// Publisher is the narrow interface components use to emit events.
type Publisher interface {
	Publish(ctx context.Context, event Event) error
}

type subscription struct {
	mode DispatchMode
	fn   HandlerFunc
}

// Bus dispatches events to subscribed handlers. See the package
// documentation for the ordering and error contract.
type Bus struct {
	mu     sync.RWMutex
	subs   map[string][]subscription
	logger *slog.Logger
	wg     sync.WaitGroup
}

var _ Publisher = (*Bus)(nil)

// NewBus creates an empty Bus.
func NewBus(logger *slog.Logger) *Bus {
	if logger == nil {
		logger = slog.Default()
	}
	return &Bus{
		subs:   make(map[string][]subscription),
		logger: logger.With(slog.String("component", "event_bus")),
	}
}

// Subscribe registers a handler for the given event type. Handlers run in
// registration order within their mode's lane.
func (b *Bus) Subscribe(eventType string, mode DispatchMode, fn HandlerFunc) {
	b.mu.Lock()
	defer b.mu.Unlock()
	b.subs[eventType] = append(b.subs[eventType], subscription{mode: mode, fn: fn})
	b.logger.Debug("registered handler",
		"event_type", eventType,
		"mode", mode,
		"handler_count", len(b.subs[eventType]))
}

// dispatchKey marks a context as belonging to an in-flight Publish call.
type dispatchKey struct{}

// dispatchState is the per-Publish pending queue and background backlog.
type dispatchState struct {
	queue      []Event
	background []backgroundRun
}

type backgroundRun struct {
	event Event
	fn    HandlerFunc
}

// Publish delivers the event synchronously to all matching handlers, then
// drains any events those handlers published, before returning. When called
// from inside a sync handler it only appends to the outer call's queue, so
// nested publications dispatch breadth-first after the current event's
// handlers finish.
func (b *Bus) Publish(ctx context.Context, event Event) error {
	if st, ok := ctx.Value(dispatchKey{}).(*dispatchState); ok && st != nil {
		st.queue = append(st.queue, event)
		return nil
	}

	st := &dispatchState{queue: []Event{event}}
	ctx = context.WithValue(ctx, dispatchKey{}, st)

	err := b.drain(ctx, st)

	// Background handlers enqueued by completed sync handlers run even if
	// a later handler failed; their triggering work already happened.
	b.runBackground(ctx, st)
	return err
}

func (b *Bus) drain(ctx context.Context, st *dispatchState) error {
	for len(st.queue) > 0 {
		event := st.queue[0]
		st.queue = st.queue[1:]

		b.mu.RLock()
		subs := make([]subscription, len(b.subs[event.EventType()]))
		copy(subs, b.subs[event.EventType()])
		b.mu.RUnlock()

		if len(subs) == 0 {
			b.logger.Debug("no handlers for event", "event_type", event.EventType())
			continue
		}

		for _, sub := range subs {
			if sub.mode == Background {
				st.background = append(st.background, backgroundRun{event: event, fn: sub.fn})
				continue
			}
			if err := sub.fn(ctx, event); err != nil {
				b.logger.Error("sync handler failed",
					"event_type", event.EventType(),
					"error", err)
				return err
			}
		}
	}
	return nil
}

func (b *Bus) runBackground(ctx context.Context, st *dispatchState) {
	if len(st.background) == 0 {
		return
	}

	// Background work outlives the Publish call and must not append to
	// its queue: detach cancellation and blank the dispatch marker so a
	// nested Publish starts its own dispatch.
	bgCtx := context.WithValue(context.WithoutCancel(ctx), dispatchKey{}, (*dispatchState)(nil))

	for _, run := range st.background {
		b.wg.Add(1)
		go func(run backgroundRun) {
			defer b.wg.Done()
			defer func() {
				if p := recover(); p != nil {
					b.logger.Error("background handler panicked",
						"event_type", run.event.EventType(),
						"panic", p)
				}
			}()
			if err := run.fn(bgCtx, run.event); err != nil {
				b.logger.Error("background handler failed",
					"event_type", run.event.EventType(),
					"error", err)
			}
		}(run)
	}
}

// Wait blocks until all scheduled background handlers have finished.
// Used by tests and graceful shutdown.
func (b *Bus) Wait() {
	b.wg.Wait()
}
