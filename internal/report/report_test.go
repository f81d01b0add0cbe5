package report

import (
	"context"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/sri5hat/aptdetection/internal/domain"
)

type stubNarrator struct {
	text string
	err  error
}

func (s stubNarrator) Generate(ctx context.Context, task, prompt string) (string, error) {
	return s.text, s.err
}

func exfilAlert() *domain.Alert {
	return &domain.Alert{
		ID:          "alert-1756300000000-abcd1234",
		Time:        "2026-08-27T12:00:00Z",
		Host:        "WIN-CLIENT-02",
		AlertType:   domain.AlertDataExfiltration,
		Score:       0.95,
		MitreTactic: domain.TacticExfiltration,
		SrcIP:       "10.0.1.23",
		DstIP:       "185.199.108.153",
		Evidence:    "Large upload (12.5MB) to transfer.sh (185.199.108.153)",
		Status:      domain.StatusNew,
		TopFeatures: []string{"dst_ip:185.199.108.153", "bytes_sent>10MB"},
	}
}

func TestBuildRendersTemplateSections(t *testing.T) {
	b := NewBuilder(stubNarrator{err: errors.New("down")}, nil)
	out := b.Build(context.Background(), exfilAlert())

	assert.Contains(t, out.Report, "# Incident Report: DataExfiltration on WIN-CLIENT-02")
	assert.Contains(t, out.Report, "- **Severity**: High")
	assert.Contains(t, out.Report, "[TA0010](https://attack.mitre.org/tactics/TA0010)")
	assert.Contains(t, out.Report, "## Intelligence Analysis")
	assert.Contains(t, out.Report, "internal or unassigned") // src is 10.x
	assert.Contains(t, out.Report, "MALICIOUS")              // dst is known-bad
	assert.Contains(t, out.Report, "`dst_ip:185.199.108.153`")
	assert.Contains(t, out.Report, "## Escalation")
}

func TestJustificationFallsBackWhenNarratorFails(t *testing.T) {
	b := NewBuilder(stubNarrator{err: errors.New("timeout")}, nil)
	out := b.Build(context.Background(), exfilAlert())

	assert.Contains(t, out.Justification, "DataExfiltration")
	assert.Contains(t, out.Justification, "WIN-CLIENT-02")
	assert.Contains(t, out.Justification, "0.95")
}

func TestJustificationUsesNarratorWhenAvailable(t *testing.T) {
	b := NewBuilder(stubNarrator{text: "Sensitive archive was uploaded to a known file-sharing site."}, nil)
	out := b.Build(context.Background(), exfilAlert())

	assert.Equal(t, "Sensitive archive was uploaded to a known file-sharing site.", out.Justification)
}

func TestSeverityBand(t *testing.T) {
	assert.Equal(t, "High", SeverityBand(0.86))
	assert.Equal(t, "Medium", SeverityBand(0.7))
	assert.Equal(t, "Low", SeverityBand(0.6))
	assert.Equal(t, "Low", SeverityBand(0.1))
}
