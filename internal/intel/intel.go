// Package intel is a stand-in threat-intelligence provider. Verdicts are
// synthetic: private and documentation indicators are always benign, a
// short table covers the indicators the synthetic feed uses, and anything
// else gets a stable pseudo-random verdict so the same indicator always
// reports the same way.
package intel

import (
	"hash/fnv"
	"strings"
)

// Verdict is the result of an indicator lookup.
type Verdict struct {
	Indicator     string   `json:"indicator"`
	IsMalicious   bool     `json:"isMalicious"`
	KnownFor      []string `json:"knownFor"`
	ReportSummary string   `json:"reportSummary"`
}

var benignPrefixes = []string{"10.", "192.168.", "127.", "172.16."}

var benignExact = map[string]struct{}{
	"-":             {},
	"example.com":   {},
	"93.184.216.34": {},
	"localhost":     {},
}

// knownBad maps indicators from the synthetic exfiltration chain to fixed
// verdicts.
var knownBad = map[string]Verdict{
	"185.199.108.153": {
		IsMalicious:   true,
		KnownFor:      []string{"Data Exfiltration", "File Sharing Abuse"},
		ReportSummary: "IP associated with anonymous file sharing infrastructure abused for data exfiltration.",
	},
	"transfer.sh": {
		IsMalicious:   true,
		KnownFor:      []string{"Data Exfiltration", "File Sharing Abuse"},
		ReportSummary: "Anonymous file sharing service frequently abused for staging and exfiltrating stolen data.",
	},
	"c2-server-blog.com": {
		IsMalicious:   true,
		KnownFor:      []string{"Malware C2"},
		ReportSummary: "Domain observed acting as command-and-control infrastructure.",
	},
}

var threatCategories = []string{"Brute Force", "Phishing Host", "Malware C2", "Scanning", "Spam Source"}

// Lookup returns the synthetic verdict for an indicator (IP, domain or hash).
func Lookup(indicator string) Verdict {
	ind := strings.TrimSpace(indicator)

	if isInternal(ind) {
		return Verdict{
			Indicator:     ind,
			KnownFor:      []string{},
			ReportSummary: "This is an internal or unassigned indicator; no external threat intel is available.",
		}
	}

	if v, ok := knownBad[ind]; ok {
		v.Indicator = ind
		return v
	}

	// Deterministic pseudo-random verdict for everything else.
	h := fnv.New32a()
	h.Write([]byte(ind))
	sum := h.Sum32()
	if sum%3 != 0 {
		return Verdict{
			Indicator:     ind,
			KnownFor:      []string{},
			ReportSummary: "No threat intelligence findings for this indicator.",
		}
	}
	category := threatCategories[int(sum/3)%len(threatCategories)]
	return Verdict{
		Indicator:     ind,
		IsMalicious:   true,
		KnownFor:      []string{category},
		ReportSummary: "Indicator has been reported for " + category + " activity.",
	}
}

// isInternal reports whether the indicator should never be looked up:
// private ranges, loopback, documentation addresses and placeholders.
func isInternal(ind string) bool {
	if _, ok := benignExact[ind]; ok {
		return true
	}
	for _, p := range benignPrefixes {
		if strings.HasPrefix(ind, p) {
			return true
		}
	}
	return ind == ""
}
