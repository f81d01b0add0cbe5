// Package hub implements the in-process publish/subscribe broker that
// connects alert producers (synthetic feed, ingestion endpoint) to the
// streaming endpoints. It is a transient conduit: no backlog, no replay,
// delivery only to currently registered subscribers.
package hub

import (
	"sync"
	"sync/atomic"

	"go.uber.org/zap"

	"github.com/sri5hat/aptdetection/internal/domain"
)

// Channel names one of the hub's event streams.
type Channel string

const (
	// ChannelLog carries formatted log lines.
	ChannelLog Channel = "log"
	// ChannelAlert carries structured alerts.
	ChannelAlert Channel = "alert"
)

// Subscription is the handle returned by Subscribe* calls. Pass it to
// Unsubscribe to deregister; unsubscribing twice is a no-op.
type Subscription struct {
	id      uint64
	channel Channel
}

// Channel returns the channel this subscription is attached to.
func (s *Subscription) Channel() Channel {
	return s.channel
}

type logEntry struct {
	id uint64
	fn func(string)
}

type alertEntry struct {
	id uint64
	fn func(*domain.Alert)
}

// Stats counts hub activity since construction.
type Stats struct {
	LogsPublished    int64 `json:"logs_published"`
	AlertsPublished  int64 `json:"alerts_published"`
	Deliveries       int64 `json:"deliveries"`
	HandlerPanics    int64 `json:"handler_panics"`
}

// Hub is a single-process broadcast broker for the log and alert channels.
// Within a channel, publish order is delivery order and handlers run in
// registration order. Handlers are invoked synchronously on the
// publisher's goroutine; a panicking handler is isolated and must not
// prevent delivery to the handlers after it.
type Hub struct {
	mu        sync.RWMutex
	nextID    uint64
	logSubs   []logEntry
	alertSubs []alertEntry

	log *zap.Logger

	logsPublished   atomic.Int64
	alertsPublished atomic.Int64
	deliveries      atomic.Int64
	handlerPanics   atomic.Int64
}

// New creates an empty hub.
func New(log *zap.Logger) *Hub {
	if log == nil {
		log = zap.NewNop()
	}
	return &Hub{log: log}
}

// SubscribeLogs registers fn for every future log publish.
func (h *Hub) SubscribeLogs(fn func(string)) *Subscription {
	h.mu.Lock()
	defer h.mu.Unlock()
	h.nextID++
	h.logSubs = append(h.logSubs, logEntry{id: h.nextID, fn: fn})
	return &Subscription{id: h.nextID, channel: ChannelLog}
}

// SubscribeAlerts registers fn for every future alert publish.
func (h *Hub) SubscribeAlerts(fn func(*domain.Alert)) *Subscription {
	h.mu.Lock()
	defer h.mu.Unlock()
	h.nextID++
	h.alertSubs = append(h.alertSubs, alertEntry{id: h.nextID, fn: fn})
	return &Subscription{id: h.nextID, channel: ChannelAlert}
}

// Unsubscribe removes the handler behind sub. Safe to call more than once
// and safe to call from inside a handler: broadcast iterates over a
// snapshot, so removal never races the delivery pass.
func (h *Hub) Unsubscribe(sub *Subscription) {
	if sub == nil {
		return
	}
	h.mu.Lock()
	defer h.mu.Unlock()
	switch sub.channel {
	case ChannelLog:
		for i, e := range h.logSubs {
			if e.id == sub.id {
				h.logSubs = append(h.logSubs[:i], h.logSubs[i+1:]...)
				return
			}
		}
	case ChannelAlert:
		for i, e := range h.alertSubs {
			if e.id == sub.id {
				h.alertSubs = append(h.alertSubs[:i], h.alertSubs[i+1:]...)
				return
			}
		}
	}
}

// PublishLog broadcasts a log line to every log subscriber.
func (h *Hub) PublishLog(line string) {
	h.mu.RLock()
	snapshot := make([]logEntry, len(h.logSubs))
	copy(snapshot, h.logSubs)
	h.mu.RUnlock()

	h.logsPublished.Add(1)
	for _, e := range snapshot {
		h.invokeLog(e, line)
	}
}

// PublishAlert broadcasts an alert to every alert subscriber.
func (h *Hub) PublishAlert(a *domain.Alert) {
	h.mu.RLock()
	snapshot := make([]alertEntry, len(h.alertSubs))
	copy(snapshot, h.alertSubs)
	h.mu.RUnlock()

	h.alertsPublished.Add(1)
	for _, e := range snapshot {
		h.invokeAlert(e, a)
	}
}

func (h *Hub) invokeLog(e logEntry, line string) {
	defer h.recoverHandler(ChannelLog, e.id)
	e.fn(line)
	h.deliveries.Add(1)
}

func (h *Hub) invokeAlert(e alertEntry, a *domain.Alert) {
	defer h.recoverHandler(ChannelAlert, e.id)
	e.fn(a)
	h.deliveries.Add(1)
}

func (h *Hub) recoverHandler(ch Channel, id uint64) {
	if r := recover(); r != nil {
		h.handlerPanics.Add(1)
		h.log.Error("subscriber handler panicked",
			zap.String("channel", string(ch)),
			zap.Uint64("subscription_id", id),
			zap.Any("panic", r),
		)
	}
}

// SubscriberCount returns the number of live subscriptions on ch.
func (h *Hub) SubscriberCount(ch Channel) int {
	h.mu.RLock()
	defer h.mu.RUnlock()
	switch ch {
	case ChannelLog:
		return len(h.logSubs)
	case ChannelAlert:
		return len(h.alertSubs)
	}
	return 0
}

// TotalSubscribers returns the live subscription count across both channels.
func (h *Hub) TotalSubscribers() int {
	h.mu.RLock()
	defer h.mu.RUnlock()
	return len(h.logSubs) + len(h.alertSubs)
}

// Stats returns a snapshot of the hub's counters.
func (h *Hub) Stats() Stats {
	return Stats{
		LogsPublished:   h.logsPublished.Load(),
		AlertsPublished: h.alertsPublished.Load(),
		Deliveries:      h.deliveries.Load(),
		HandlerPanics:   h.handlerPanics.Load(),
	}
}
