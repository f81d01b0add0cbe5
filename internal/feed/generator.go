// Package feed produces the synthetic log and alert stream: low-signal
// filler lines plus a scripted data-exfiltration scenario. One generator
// is shared by every connected client; the streaming handlers start it when
// the first subscriber attaches and stop it when the last one detaches.
package feed

import (
	"context"
	"math/rand"
	"sync"
	"time"

	"go.uber.org/zap"

	"github.com/sri5hat/aptdetection/internal/domain"
	"github.com/sri5hat/aptdetection/internal/hub"
)

// Config controls generator cadence.
type Config struct {
	// Interval between ticks.
	Interval time.Duration
	// ScenarioEvery runs the next scenario step every Nth tick.
	ScenarioEvery int
	// ResetEvery rearms a completed scenario on a tick counter multiple.
	ResetEvery int
}

// DefaultConfig returns the production cadence: one log line every 1.5s,
// a scenario step every 15th line.
func DefaultConfig() Config {
	return Config{
		Interval:      1500 * time.Millisecond,
		ScenarioEvery: 15,
		ResetEvery:    25,
	}
}

func (c Config) withDefaults() Config {
	d := DefaultConfig()
	if c.Interval <= 0 {
		c.Interval = d.Interval
	}
	if c.ScenarioEvery <= 0 {
		c.ScenarioEvery = d.ScenarioEvery
	}
	if c.ResetEvery <= 0 {
		c.ResetEvery = d.ResetEvery
	}
	return c
}

// Generator emits synthetic logs and alerts onto the hub.
type Generator struct {
	cfg Config
	hub *hub.Hub
	log *zap.Logger

	mu      sync.Mutex
	running bool
	cancel  context.CancelFunc
	done    chan struct{}

	logCounter   int
	scenarioStep int

	now func() time.Time
	rng *rand.Rand
}

// NewGenerator creates a stopped generator publishing to h.
func NewGenerator(cfg Config, h *hub.Hub, log *zap.Logger) *Generator {
	if log == nil {
		log = zap.NewNop()
	}
	return &Generator{
		cfg: cfg.withDefaults(),
		hub: h,
		log: log,
		now: time.Now,
		rng: rand.New(rand.NewSource(time.Now().UnixNano())),
	}
}

// Start begins the periodic tick. Idempotent: if the generator is already
// running this is a no-op, so racing clients collapse into one timer.
func (g *Generator) Start() {
	g.mu.Lock()
	defer g.mu.Unlock()
	if g.running {
		return
	}
	ctx, cancel := context.WithCancel(context.Background())
	g.cancel = cancel
	g.done = make(chan struct{})
	g.running = true
	g.log.Info("synthetic feed started", zap.Duration("interval", g.cfg.Interval))
	go g.run(ctx, g.done)
}

// Stop cancels the periodic tick and waits for the tick goroutine to exit.
// Safe to call when not running.
func (g *Generator) Stop() {
	g.mu.Lock()
	if !g.running {
		g.mu.Unlock()
		return
	}
	cancel := g.cancel
	done := g.done
	g.running = false
	g.cancel = nil
	g.done = nil
	g.mu.Unlock()

	cancel()
	<-done
	g.log.Info("synthetic feed stopped")
}

// Running reports whether the tick loop is active.
func (g *Generator) Running() bool {
	g.mu.Lock()
	defer g.mu.Unlock()
	return g.running
}

func (g *Generator) run(ctx context.Context, done chan struct{}) {
	defer close(done)
	ticker := time.NewTicker(g.cfg.Interval)
	defer ticker.Stop()
	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			g.tick()
		}
	}
}

// tick advances the generator by one step: either the next scenario step,
// a scenario reset, or a filler log line.
func (g *Generator) tick() {
	g.mu.Lock()
	defer g.mu.Unlock()

	counter := g.logCounter
	switch {
	case counter%g.cfg.ScenarioEvery == 0 && g.scenarioStep < len(scenarioSteps):
		scenarioSteps[g.scenarioStep](g)
		g.scenarioStep++
	case g.scenarioStep == len(scenarioSteps) && counter%g.cfg.ResetEvery == 0:
		g.scenarioStep = 0
		g.emitLog(domain.SeverityInfo, "[system] Scenario reset. Waiting for next execution.")
	default:
		g.hub.PublishLog(g.fillerLine())
	}
	g.logCounter++
}

func (g *Generator) emitLog(sev domain.Severity, msg string) {
	g.hub.PublishLog(domain.FormatLogLine(g.now(), sev, msg))
}

// newAlert returns an alert with every field defaulted; scenario steps
// override what they need before publishing.
func (g *Generator) newAlert() *domain.Alert {
	return &domain.Alert{
		ID:                        domain.NewAlertID(),
		Time:                      domain.Timestamp(g.now()),
		Host:                      "unknown",
		AlertType:                 domain.AlertNetworkAnomaly,
		Score:                     0.5,
		MitreTactic:               domain.TacticDiscovery,
		SrcIP:                     randomInternalIP(g.rng),
		DstIP:                     randomExternalIP(g.rng),
		Evidence:                  "N/A",
		Status:                    domain.StatusNew,
		RuleBasedScore:            g.rng.Float64(),
		AnomalyDetectionScore:     g.rng.Float64(),
		SupervisedClassifierScore: g.rng.Float64(),
		TopRuleHits:               []string{},
		TopFeatures:               []string{},
	}
}
