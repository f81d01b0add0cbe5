// Package report assembles analyst-facing incident reports for alerts.
// The markdown body is built locally from a fixed template so it is always
// available; only the one-line justification is delegated to the narrative
// collaborator, with a deterministic local fallback.
package report

import (
	"context"
	"fmt"
	"strings"

	"go.uber.org/zap"

	"github.com/sri5hat/aptdetection/internal/domain"
	"github.com/sri5hat/aptdetection/internal/intel"
	"github.com/sri5hat/aptdetection/internal/narrative"
)

// Output is the generated report pair.
type Output struct {
	Report        string `json:"report"`
	Justification string `json:"justification"`
}

// Builder generates incident reports.
type Builder struct {
	narrator narrative.Narrator
	log      *zap.Logger
}

// NewBuilder creates a report builder.
func NewBuilder(narrator narrative.Narrator, log *zap.Logger) *Builder {
	if narrator == nil {
		narrator = narrative.Disabled{}
	}
	if log == nil {
		log = zap.NewNop()
	}
	return &Builder{narrator: narrator, log: log}
}

// Build produces the markdown report and justification for an alert.
func (b *Builder) Build(ctx context.Context, a *domain.Alert) Output {
	srcIntel := intel.Lookup(a.SrcIP)
	dstIntel := intel.Lookup(a.DstIP)

	return Output{
		Report:        renderReport(a, srcIntel, dstIntel),
		Justification: b.justification(ctx, a),
	}
}

func (b *Builder) justification(ctx context.Context, a *domain.Alert) string {
	prompt := fmt.Sprintf(
		"Provide a concise, single-sentence justification for why this alert is suspicious, without preamble. Type: %s. Host: %s. Evidence: %s. Top features: %s.",
		a.AlertType, a.Host, a.Evidence, strings.Join(a.TopFeatures, ", "))

	text, err := b.narrator.Generate(ctx, "alert-justification", prompt)
	if err != nil {
		b.log.Warn("narrator unavailable, using local justification",
			zap.String("alert_id", a.ID), zap.Error(err))
		return fallbackJustification(a)
	}
	return text
}

func fallbackJustification(a *domain.Alert) string {
	return fmt.Sprintf("%s activity on %s scored %.2f based on the recorded evidence: %s.",
		a.AlertType, a.Host, a.Score, a.Evidence)
}

// SeverityBand maps a composite score to the report's severity label.
func SeverityBand(score float64) string {
	switch {
	case score > 0.85:
		return "High"
	case score > 0.6:
		return "Medium"
	default:
		return "Low"
	}
}

func renderReport(a *domain.Alert, srcIntel, dstIntel intel.Verdict) string {
	var b strings.Builder

	fmt.Fprintf(&b, "# Incident Report: %s on %s\n\n", a.AlertType, a.Host)

	b.WriteString("## Summary\n")
	fmt.Fprintf(&b, "- **Title**: Alert: %s on %s\n", a.AlertType, a.Host)
	fmt.Fprintf(&b, "- **Date/Time**: %s\n", a.Time)
	fmt.Fprintf(&b, "- **Severity**: %s\n", SeverityBand(a.Score))
	b.WriteString("- **Detection Source**: ExfilSense Platform\n\n")

	b.WriteString("## Event Details\n")
	fmt.Fprintf(&b, "- **Alert ID**: `%s`\n", a.ID)
	fmt.Fprintf(&b, "- **Host**: `%s`\n", a.Host)
	fmt.Fprintf(&b, "- **Source IP**: `%s`\n", a.SrcIP)
	fmt.Fprintf(&b, "- **Destination IP**: `%s`\n", a.DstIP)
	fmt.Fprintf(&b, "- **MITRE ATT&CK**: [%s](https://attack.mitre.org/tactics/%s)\n\n", a.MitreTactic, a.MitreTactic)

	b.WriteString("## Intelligence Analysis\n")
	fmt.Fprintf(&b, "- **Threat Intel on Source IP (%s)**: %s\n", a.SrcIP, intelSummary(srcIntel))
	fmt.Fprintf(&b, "- **Threat Intel on Destination IP (%s)**: %s\n\n", a.DstIP, intelSummary(dstIntel))

	b.WriteString("## Evidence\n")
	fmt.Fprintf(&b, "- **Raw Evidence**: `%s`\n", a.Evidence)
	fmt.Fprintf(&b, "- **Alert Score**: **%.2f**\n", a.Score)
	if len(a.TopFeatures) > 0 {
		fmt.Fprintf(&b, "- **Top Contributing Features**: %s\n", backticked(a.TopFeatures))
	}
	b.WriteString("\n")

	b.WriteString("## Actions Taken\n")
	b.WriteString("- Alert triggered and ingested for review.\n")
	b.WriteString("- Threat intelligence lookup performed on source and destination IPs.\n")
	b.WriteString("- No automated response actions taken.\n\n")

	b.WriteString("## Recommendation\n")
	b.WriteString("- Analyst to review the alert and associated evidence.\n")
	b.WriteString("- If confirmed malicious, escalate to SOC L2.\n")
	b.WriteString("- Consider blocking the source IP at the firewall if the activity is deemed hostile.\n\n")

	b.WriteString("## Escalation\n")
	b.WriteString("- **Escalated to**: SOC L1 (Pending Review)\n")
	b.WriteString("- **Ticket ID**: Pending Triage\n")

	return b.String()
}

func intelSummary(v intel.Verdict) string {
	if !v.IsMalicious {
		return v.ReportSummary
	}
	return fmt.Sprintf("MALICIOUS, known for %s. %s", strings.Join(v.KnownFor, ", "), v.ReportSummary)
}

func backticked(items []string) string {
	quoted := make([]string, len(items))
	for i, it := range items {
		quoted[i] = "`" + it + "`"
	}
	return strings.Join(quoted, ", ")
}
