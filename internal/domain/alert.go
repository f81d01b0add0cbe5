package domain

import (
	"crypto/rand"
	"encoding/hex"
	"fmt"
	"regexp"
	"time"
)

// AlertStatus tracks analyst triage state. Alerts always start as New;
// transitions happen on the consumer side, never inside the pipeline.
type AlertStatus string

const (
	StatusNew           AlertStatus = "New"
	StatusInvestigating AlertStatus = "Investigating"
	StatusResolved      AlertStatus = "Resolved"
)

// AlertType is the closed set of detection categories.
type AlertType string

const (
	AlertDataExfiltration AlertType = "DataExfiltration"
	AlertDNSExfiltration  AlertType = "DNSExfiltration"
	AlertFileStaging      AlertType = "FileStaging"
	AlertNetworkAnomaly   AlertType = "NetworkAnomaly"
	AlertProcessAnomaly   AlertType = "ProcessAnomaly"
	AlertLateralMovement  AlertType = "LateralMovement"
	AlertBeaconing        AlertType = "Beaconing"
	AlertFileAccess       AlertType = "FileAccess"
)

// AlertTypes lists every valid AlertType.
var AlertTypes = []AlertType{
	AlertDataExfiltration,
	AlertDNSExfiltration,
	AlertFileStaging,
	AlertNetworkAnomaly,
	AlertProcessAnomaly,
	AlertLateralMovement,
	AlertBeaconing,
	AlertFileAccess,
}

// ValidAlertType reports whether s is a member of the closed enum.
func ValidAlertType(s string) bool {
	for _, t := range AlertTypes {
		if string(t) == s {
			return true
		}
	}
	return false
}

// MitreTacticPattern matches MITRE ATT&CK tactic identifiers (e.g. TA0010).
var MitreTacticPattern = regexp.MustCompile(`^TA\d{4}$`)

// Well-known tactic IDs used by the synthetic feed.
// See https://attack.mitre.org/tactics/enterprise/
const (
	TacticCollection   = "TA0009"
	TacticExfiltration = "TA0010"
	TacticDiscovery    = "TA0007"
)

// Alert is the canonical detection event flowing through the hub.
// Detector scores are immutable once set; only Status is ever mutated,
// and that happens outside this process.
type Alert struct {
	ID          string      `json:"id"`
	Time        string      `json:"time"`
	Host        string      `json:"host"`
	AlertType   AlertType   `json:"alertType"`
	Score       float64     `json:"score"`
	MitreTactic string      `json:"mitreTactic"`
	SrcIP       string      `json:"srcIp"`
	DstIP       string      `json:"dstIp"`
	Evidence    string      `json:"evidence"`
	Status      AlertStatus `json:"status"`

	// Independent detector outputs backing the composite score.
	RuleBasedScore            float64 `json:"ruleBasedScore"`
	AnomalyDetectionScore     float64 `json:"anomalyDetectionScore"`
	SupervisedClassifierScore float64 `json:"supervisedClassifierScore"`

	// Ranked supporting evidence, most relevant first.
	TopRuleHits []string `json:"topRuleHits"`
	TopFeatures []string `json:"topFeatures"`
}

// NewAlertID builds a unique alert id from the current time plus a random
// suffix.
func NewAlertID() string {
	buf := make([]byte, 4)
	if _, err := rand.Read(buf); err != nil {
		return fmt.Sprintf("alert-%d", time.Now().UnixNano())
	}
	return fmt.Sprintf("alert-%d-%s", time.Now().UnixMilli(), hex.EncodeToString(buf))
}

// Timestamp formats t the way alert times appear on the wire.
func Timestamp(t time.Time) string {
	return t.UTC().Format(time.RFC3339)
}
