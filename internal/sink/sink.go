// Package sink mirrors published alerts to optional external destinations
// (JSONL file, HTTP endpoint, Redis channel). Sinks are process-owned hub
// subscribers: failures are logged and never surfaced to producers.
package sink

import (
	"context"
	"time"

	"go.uber.org/zap"

	"github.com/sri5hat/aptdetection/internal/domain"
	"github.com/sri5hat/aptdetection/internal/hub"
)

// Sink writes one alert to a destination.
type Sink interface {
	WriteAlert(ctx context.Context, a *domain.Alert) error
	Name() string
	Close() error
}

const writeTimeout = 5 * time.Second

// Attach subscribes every sink to the hub's alert channel and returns the
// subscriptions so the process can detach them on shutdown.
func Attach(h *hub.Hub, sinks []Sink, log *zap.Logger) []*hub.Subscription {
	if log == nil {
		log = zap.NewNop()
	}
	subs := make([]*hub.Subscription, 0, len(sinks))
	for _, s := range sinks {
		s := s
		subs = append(subs, h.SubscribeAlerts(func(a *domain.Alert) {
			ctx, cancel := context.WithTimeout(context.Background(), writeTimeout)
			defer cancel()
			if err := s.WriteAlert(ctx, a); err != nil {
				log.Warn("alert sink write failed",
					zap.String("sink", s.Name()),
					zap.String("alert_id", a.ID),
					zap.Error(err),
				)
			}
		}))
	}
	return subs
}
