package feed

import (
	"fmt"
	"math/rand"

	"github.com/sri5hat/aptdetection/internal/domain"
)

// Pools for filler log lines.
var (
	fillerHosts = []string{"WIN-CLIENT-02", "WEB-SERVER-03", "LINUX-VM-07", "DEV-STATION-11", "DB-SERVER-01"}
	fillerUsers = []string{"jdoe", "admin", "svc_account", "guest", "dsmith"}
	fillerProcs = []string{"powershell.exe", "cmd.exe", "svchost.exe", "WINWORD.EXE", "curl.exe", "sshd"}
)

// Fixed cast of the scripted data-exfiltration chain.
const (
	scenarioHost  = "WIN-CLIENT-02"
	scenarioUser  = "dsmith"
	exfilDomain   = "transfer.sh"
	exfilIP       = "185.199.108.153"
	sensitiveFile = `C:\Users\dsmith\Documents\project_europa_brief.docx`
	stagingFile   = `C:\Users\dsmith\AppData\Local\Temp\archive.zip`
)

// scenarioSteps is the ordered exfiltration chain: discovery, staging,
// exfiltration. Steps fire in strict order, one per activation.
var scenarioSteps = []func(*Generator){
	// 1. Discovery: user reads a sensitive file.
	func(g *Generator) {
		g.emitLog(domain.SeverityInfo,
			fmt.Sprintf("[file] user=%s host=%s action=read path=%s", scenarioUser, scenarioHost, sensitiveFile))
	},
	// 2. Staging: powershell compresses the file into a temp archive.
	func(g *Generator) {
		g.emitLog(domain.SeverityWarning,
			fmt.Sprintf(`[process] user=%s host=%s process=powershell.exe ppid=explorer.exe cmdline="powershell Compress-Archive -Path %s -DestinationPath %s"`,
				scenarioUser, scenarioHost, sensitiveFile, stagingFile))

		a := g.newAlert()
		a.AlertType = domain.AlertFileStaging
		a.Host = scenarioHost
		a.Score = 0.78
		a.MitreTactic = domain.TacticCollection
		a.Evidence = fmt.Sprintf("powershell.exe used to create archive %s", stagingFile)
		a.TopRuleHits = []string{"Suspicious Compression Activity"}
		a.TopFeatures = []string{"process:powershell.exe", "cmdline:Compress-Archive", "file_path:" + stagingFile}
		g.hub.PublishAlert(a)
	},
	// 3. Exfiltration: the archive is uploaded to a file sharing site.
	func(g *Generator) {
		g.emitLog(domain.SeverityCritical,
			fmt.Sprintf("[net] src=%s dst=%s:443 protocol=tcp bytes_sent=12582912", scenarioHost, exfilIP))

		a := g.newAlert()
		a.AlertType = domain.AlertDataExfiltration
		a.Host = scenarioHost
		a.Score = 0.95
		a.MitreTactic = domain.TacticExfiltration
		a.Evidence = fmt.Sprintf("Large upload (12.5MB) to %s (%s)", exfilDomain, exfilIP)
		a.TopRuleHits = []string{"Exfiltration to File Sharing Site", "Anomalous Data Transfer Size"}
		a.TopFeatures = []string{"dst_ip:" + exfilIP, "bytes_sent>10MB", "domain:" + exfilDomain}
		g.hub.PublishAlert(a)
	},
}

// fillerLine builds a benign log line from the fixed pools, always on a
// host other than the scenario host.
func (g *Generator) fillerLine() string {
	host := scenarioHost
	for host == scenarioHost {
		host = fillerHosts[g.rng.Intn(len(fillerHosts))]
	}
	var msg string
	switch g.rng.Intn(3) {
	case 0:
		msg = fmt.Sprintf("[dns] query for google.com from %s", host)
	case 1:
		msg = fmt.Sprintf("[auth] user=%s host=%s action=login result=success", fillerUsers[g.rng.Intn(len(fillerUsers))], host)
	default:
		msg = fmt.Sprintf("[process] host=%s process=%s action=start", host, fillerProcs[g.rng.Intn(len(fillerProcs))])
	}
	return domain.FormatLogLine(g.now(), domain.SeverityInfo, msg)
}

func randomInternalIP(rng *rand.Rand) string {
	return fmt.Sprintf("10.0.1.%d", rng.Intn(254)+1)
}

func randomExternalIP(rng *rand.Rand) string {
	return fmt.Sprintf("203.0.113.%d", rng.Intn(254)+1)
}
