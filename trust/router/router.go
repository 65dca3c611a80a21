// Package router implements the typed publish/subscribe bus at the center of
// the trust pipeline, with a bounded in-memory history buffer for audit and
// replay-style queries.
package router

import (
	"context"
	"fmt"
	"log/slog"
	"sync"
	"time"

	"github.com/jmenichole/tiltcheck-monorepo-sub008/trust/event"
)

// DefaultMaxHistory bounds the in-memory event buffer; oldest entries are
// evicted once the ceiling is reached.
const DefaultMaxHistory = 1000

// Handler receives a published event. Handlers run sequentially in
// registration order on the publisher's goroutine; a returned error (or a
// panic) is logged and does not stop delivery to later handlers.
type Handler func(ctx context.Context, evt event.Event) error

type subscription struct {
	subscriberID string
	handler      Handler
}

// Router decouples producers from consumers. Delivery contract: "attempted
// once, for all subscribers registered at publish time" - no retries, no
// cross-type ordering guarantee.
type Router struct {
	logger *slog.Logger

	mu         sync.Mutex
	subs       map[event.Type][]subscription
	history    []event.Event
	maxHistory int
}

func New(logger *slog.Logger, maxHistory int) *Router {
	if logger == nil {
		logger = slog.Default()
	}
	if maxHistory <= 0 {
		maxHistory = DefaultMaxHistory
	}
	return &Router{
		logger:     logger.With("component", "router"),
		subs:       make(map[event.Type][]subscription),
		maxHistory: maxHistory,
	}
}

// Publish constructs an event with a fresh ID and current timestamp, appends
// it to history, then invokes every subscriber for that exact type. The
// history append happens before dispatch, so a handler calling GetHistory
// already sees the triggering event. Returns the published event.
func (r *Router) Publish(ctx context.Context, t event.Type, source string, data any, userID string) event.Event {
	evt := event.New(t, source, data, userID)

	r.mu.Lock()
	r.history = append(r.history, evt)
	if len(r.history) > r.maxHistory {
		evicted := len(r.history) - r.maxHistory
		r.history = append([]event.Event{}, r.history[evicted:]...)
		historyEvictions.Add(float64(evicted))
	}
	// dispatch on a snapshot, outside the lock, so handlers can re-publish
	targets := make([]subscription, len(r.subs[t]))
	copy(targets, r.subs[t])
	r.mu.Unlock()

	eventsPublished.WithLabelValues(string(t)).Inc()
	start := time.Now()
	for _, sub := range targets {
		r.invoke(ctx, sub, evt)
	}
	dispatchDuration.WithLabelValues(string(t)).Observe(time.Since(start).Seconds())
	return evt
}

// invoke runs one handler, isolating its failure from the publisher and from
// other subscribers.
func (r *Router) invoke(ctx context.Context, sub subscription, evt event.Event) {
	defer func() {
		if rec := recover(); rec != nil {
			handlerPanics.WithLabelValues(string(evt.Type), sub.subscriberID).Inc()
			r.logger.Error("subscriber panic during event dispatch",
				"type", evt.Type, "subscriber", sub.subscriberID, "panic", rec)
		}
	}()
	if err := sub.handler(ctx, evt); err != nil {
		handlerErrors.WithLabelValues(string(evt.Type), sub.subscriberID).Inc()
		r.logger.Warn("subscriber handler failed",
			"type", evt.Type, "subscriber", sub.subscriberID, "err", err)
	}
}

// Subscribe registers a handler for one event type, tagged with the owning
// module's ID. Registering the same (type, subscriberID) pair twice is an
// error. Returns an unsubscribe func.
func (r *Router) Subscribe(t event.Type, subscriberID string, h Handler) (func(), error) {
	if h == nil {
		return nil, fmt.Errorf("nil handler for %s/%s", t, subscriberID)
	}
	r.mu.Lock()
	defer r.mu.Unlock()
	for _, existing := range r.subs[t] {
		if existing.subscriberID == subscriberID {
			return nil, fmt.Errorf("duplicate subscription: %s already subscribed to %s", subscriberID, t)
		}
	}
	r.subs[t] = append(r.subs[t], subscription{subscriberID: subscriberID, handler: h})

	unsub := func() {
		r.mu.Lock()
		defer r.mu.Unlock()
		list := r.subs[t]
		for i, s := range list {
			if s.subscriberID == subscriberID {
				r.subs[t] = append(list[:i], list[i+1:]...)
				return
			}
		}
	}
	return unsub, nil
}

// HistoryFilter narrows a GetHistory query. Zero values mean "no filter".
type HistoryFilter struct {
	Type  event.Type
	Limit int
}

// GetHistory returns a copy snapshot of the history buffer, oldest first,
// optionally filtered by type and truncated to the most recent Limit entries.
func (r *Router) GetHistory(filter HistoryFilter) []event.Event {
	r.mu.Lock()
	defer r.mu.Unlock()
	out := make([]event.Event, 0, len(r.history))
	for _, evt := range r.history {
		if filter.Type != "" && evt.Type != filter.Type {
			continue
		}
		out = append(out, evt)
	}
	if filter.Limit > 0 && len(out) > filter.Limit {
		out = out[len(out)-filter.Limit:]
	}
	return out
}

// Stats is an introspection snapshot, used by the admin API and tests.
type Stats struct {
	Subscriptions int `json:"subscriptions"`
	EventTypes    int `json:"eventTypes"`
	HistorySize   int `json:"historySize"`
}

func (r *Router) Stats() Stats {
	r.mu.Lock()
	defer r.mu.Unlock()
	total := 0
	types := 0
	for _, list := range r.subs {
		if len(list) > 0 {
			types++
			total += len(list)
		}
	}
	return Stats{Subscriptions: total, EventTypes: types, HistorySize: len(r.history)}
}

// ClearHistory wipes the history buffer. Test isolation only.
func (r *Router) ClearHistory() {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.history = nil
}
