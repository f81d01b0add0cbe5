package intel

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestInternalIndicatorsAreBenign(t *testing.T) {
	for _, ind := range []string{"10.0.1.55", "192.168.1.1", "127.0.0.1", "-", "example.com", "93.184.216.34", ""} {
		v := Lookup(ind)
		assert.False(t, v.IsMalicious, "indicator %q", ind)
		assert.Empty(t, v.KnownFor)
		assert.NotEmpty(t, v.ReportSummary)
	}
}

func TestKnownExfilInfrastructureIsMalicious(t *testing.T) {
	v := Lookup("185.199.108.153")
	assert.True(t, v.IsMalicious)
	assert.Contains(t, v.KnownFor, "Data Exfiltration")

	v = Lookup("transfer.sh")
	assert.True(t, v.IsMalicious)

	v = Lookup("c2-server-blog.com")
	assert.True(t, v.IsMalicious)
	assert.Contains(t, v.KnownFor, "Malware C2")
}

func TestVerdictsAreStable(t *testing.T) {
	first := Lookup("203.0.113.77")
	second := Lookup("203.0.113.77")
	assert.Equal(t, first, second)
}
