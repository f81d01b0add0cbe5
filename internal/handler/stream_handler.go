package handler

import (
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"sync"
	"sync/atomic"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	"github.com/sri5hat/aptdetection/internal/domain"
	"github.com/sri5hat/aptdetection/internal/feed"
	"github.com/sri5hat/aptdetection/internal/hub"
)

// streamBuffer sizes the per-client bridge between the hub's synchronous
// handler and the SSE write loop. Overflow drops events: delivery is
// best-effort, at-most-once, and a slow client must never block the hub.
const streamBuffer = 256

// StreamHandler serves the long-lived SSE endpoints and owns the
// generator lifecycle: the feed runs while at least one stream client
// (log or alert) is connected, and stops when the last one disconnects.
type StreamHandler struct {
	hub  *hub.Hub
	feed *feed.Generator
	log  *zap.Logger

	mu      sync.Mutex
	clients int
}

// NewStreamHandler creates the streaming handler.
func NewStreamHandler(h *hub.Hub, g *feed.Generator, log *zap.Logger) *StreamHandler {
	return &StreamHandler{hub: h, feed: g, log: log}
}

// attach registers a hub subscription and starts the generator on the
// 0→1 client transition. subscribe runs under the lifecycle lock so a
// concurrent detach cannot stop the feed out from under a new client.
func (h *StreamHandler) attach(subscribe func() *hub.Subscription) *hub.Subscription {
	h.mu.Lock()
	defer h.mu.Unlock()
	sub := subscribe()
	h.clients++
	if h.clients == 1 {
		h.feed.Start()
	}
	return sub
}

// detach unsubscribes and stops the generator on the 1→0 transition.
func (h *StreamHandler) detach(sub *hub.Subscription) {
	h.mu.Lock()
	defer h.mu.Unlock()
	h.hub.Unsubscribe(sub)
	h.clients--
	if h.clients == 0 {
		h.feed.Stop()
	}
}

// Clients returns the number of connected stream clients.
func (h *StreamHandler) Clients() int {
	h.mu.Lock()
	defer h.mu.Unlock()
	return h.clients
}

// LogStream implements GET /api/logs/stream.
func (h *StreamHandler) LogStream(c *gin.Context) {
	events := make(chan string, streamBuffer)
	var dropped atomic.Int64

	sub := h.attach(func() *hub.Subscription {
		return h.hub.SubscribeLogs(func(line string) {
			select {
			case events <- line:
			default:
				dropped.Add(1)
			}
		})
	})
	defer h.detach(sub)

	h.serve(c, func(w io.Writer) bool {
		select {
		case <-c.Request.Context().Done():
			return false
		case line := <-events:
			fmt.Fprintf(w, "data: %s\n\n", line)
			return true
		}
	}, &dropped, "log")
}

// AlertStream implements GET /api/alerts/stream.
func (h *StreamHandler) AlertStream(c *gin.Context) {
	events := make(chan *domain.Alert, streamBuffer)
	var dropped atomic.Int64

	sub := h.attach(func() *hub.Subscription {
		return h.hub.SubscribeAlerts(func(a *domain.Alert) {
			select {
			case events <- a:
			default:
				dropped.Add(1)
			}
		})
	})
	defer h.detach(sub)

	h.serve(c, func(w io.Writer) bool {
		select {
		case <-c.Request.Context().Done():
			return false
		case a := <-events:
			payload, err := json.Marshal(a)
			if err != nil {
				h.log.Error("failed to encode alert for stream", zap.Error(err))
				return true
			}
			fmt.Fprintf(w, "data: %s\n\n", payload)
			return true
		}
	}, &dropped, "alert")
}

func (h *StreamHandler) serve(c *gin.Context, step func(io.Writer) bool, dropped *atomic.Int64, channel string) {
	c.Header("Content-Type", "text/event-stream")
	c.Header("Cache-Control", "no-cache")
	c.Header("Connection", "keep-alive")
	c.Writer.WriteHeader(http.StatusOK)
	c.Writer.Flush()

	c.Stream(step)

	if n := dropped.Load(); n > 0 {
		h.log.Warn("events dropped for slow stream client",
			zap.String("channel", channel),
			zap.Int64("dropped", n),
		)
	}
}
