package feed

import (
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/sri5hat/aptdetection/internal/domain"
	"github.com/sri5hat/aptdetection/internal/hub"
)

func newTestGenerator(t *testing.T) (*Generator, *[]string, *[]*domain.Alert) {
	t.Helper()
	h := hub.New(nil)

	var logs []string
	var alerts []*domain.Alert
	h.SubscribeLogs(func(line string) { logs = append(logs, line) })
	h.SubscribeAlerts(func(a *domain.Alert) { alerts = append(alerts, a) })

	// Interval is irrelevant for tick-driven tests; keep it long so a
	// started timer never fires on its own.
	g := NewGenerator(Config{Interval: time.Hour}, h, nil)
	return g, &logs, &alerts
}

func TestStartIsIdempotent(t *testing.T) {
	g, _, _ := newTestGenerator(t)

	g.Start()
	g.Start()
	assert.True(t, g.Running())

	g.Stop()
	assert.False(t, g.Running())
}

func TestStopWhenNotRunningIsNoOp(t *testing.T) {
	g, _, _ := newTestGenerator(t)

	g.Stop()
	assert.False(t, g.Running())

	g.Start()
	g.Stop()
	g.Stop()
	assert.False(t, g.Running())

	g.Start()
	assert.True(t, g.Running())
	g.Stop()
}

func TestScenarioStepsFireInOrder(t *testing.T) {
	g, logs, alerts := newTestGenerator(t)

	// Counters 0, 15 and 30 activate the three scenario steps.
	for i := 0; i < 31; i++ {
		g.tick()
	}

	require.Len(t, *alerts, 2)

	staging := (*alerts)[0]
	assert.Equal(t, domain.AlertFileStaging, staging.AlertType)
	assert.Equal(t, 0.78, staging.Score)
	assert.Equal(t, domain.TacticCollection, staging.MitreTactic)
	assert.Contains(t, staging.Evidence, stagingFile)
	assert.Equal(t, domain.StatusNew, staging.Status)

	exfil := (*alerts)[1]
	assert.Equal(t, domain.AlertDataExfiltration, exfil.AlertType)
	assert.Equal(t, 0.95, exfil.Score)
	assert.Equal(t, domain.TacticExfiltration, exfil.MitreTactic)
	assert.Contains(t, exfil.Evidence, exfilDomain)
	assert.Contains(t, exfil.Evidence, exfilIP)

	// The discovery log line precedes both alert-bearing steps.
	require.NotEmpty(t, *logs)
	assert.Contains(t, (*logs)[0], sensitiveFile)
	assert.Contains(t, (*logs)[0], "[INFO]")

	var stagingIdx, exfilIdx int
	for i, line := range *logs {
		if strings.Contains(line, "Compress-Archive") {
			stagingIdx = i
		}
		if strings.Contains(line, "bytes_sent=12582912") {
			exfilIdx = i
		}
	}
	assert.Greater(t, stagingIdx, 0)
	assert.Greater(t, exfilIdx, stagingIdx)
}

func TestScenarioResetsAfterCompletion(t *testing.T) {
	g, logs, alerts := newTestGenerator(t)

	// Run through the full scenario, the reset at counter 50, and the
	// restarted scenario's first two steps at counters 60 and 75.
	for i := 0; i < 76; i++ {
		g.tick()
	}

	var resets int
	for _, line := range *logs {
		if strings.Contains(line, "Scenario reset") {
			resets++
		}
	}
	assert.Equal(t, 1, resets)

	// Two alerts from the first pass, one (staging) from the second.
	require.Len(t, *alerts, 3)
	assert.Equal(t, domain.AlertFileStaging, (*alerts)[2].AlertType)
}

func TestSyntheticAlertDefaults(t *testing.T) {
	g, _, alerts := newTestGenerator(t)

	for i := 0; i < 16; i++ {
		g.tick()
	}
	require.Len(t, *alerts, 1)

	a := (*alerts)[0]
	assert.True(t, strings.HasPrefix(a.ID, "alert-"))
	assert.Equal(t, domain.StatusNew, a.Status)
	assert.True(t, domain.MitreTacticPattern.MatchString(a.MitreTactic))

	_, err := time.Parse(time.RFC3339, a.Time)
	assert.NoError(t, err)

	for _, s := range []float64{a.RuleBasedScore, a.AnomalyDetectionScore, a.SupervisedClassifierScore} {
		assert.GreaterOrEqual(t, s, 0.0)
		assert.LessOrEqual(t, s, 1.0)
	}
}

func TestFillerLinesAvoidScenarioHost(t *testing.T) {
	g, logs, _ := newTestGenerator(t)

	// Counters 1..14 are all filler.
	g.tick()
	for i := 0; i < 14; i++ {
		g.tick()
	}

	require.Greater(t, len(*logs), 1)
	for _, line := range (*logs)[1:] {
		assert.NotContains(t, line, scenarioHost)
	}
}
