package domain

import (
	"fmt"
	"time"
)

// Severity classifies synthetic log lines.
type Severity string

const (
	SeverityInfo     Severity = "INFO"
	SeverityWarning  Severity = "WARNING"
	SeverityCritical Severity = "CRITICAL"
)

// FormatLogLine renders a log line the way the streaming endpoint emits it:
// "<RFC3339 timestamp> [<SEVERITY>] <message>".
func FormatLogLine(t time.Time, sev Severity, msg string) string {
	return fmt.Sprintf("%s [%s] %s", t.UTC().Format(time.RFC3339), sev, msg)
}
