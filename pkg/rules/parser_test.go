package rules

import (
	"os"
	"path/filepath"
	"testing"

	"fwdctl/pkg/reporting"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func writeRuleFile(t *testing.T, content string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "forwards.conf")
	require.NoError(t, os.WriteFile(path, []byte(content), 0644))
	return path
}

func TestLoadMissingFile(t *testing.T) {
	rep := &reporting.CaptureReporter{}
	_, err := Load(filepath.Join(t.TempDir(), "nope.conf"), rep)
	require.Error(t, err)
	assert.True(t, rep.Has(reporting.KeyRuleFileMissing))
}

func TestParseBothLineShapes(t *testing.T) {
	rep := &reporting.CaptureReporter{}
	path := writeRuleFile(t, "2277 10.77.77.2:22\n")
	colonForm, err := Load(path, rep)
	require.NoError(t, err)

	path = writeRuleFile(t, "2277 10.77.77.2 22\n")
	spacedForm, err := Load(path, rep)
	require.NoError(t, err)

	require.Len(t, colonForm, 1)
	assert.Equal(t, colonForm[2277], spacedForm[2277])
	assert.Equal(t, "10.77.77.2:22", colonForm[2277].Destination())
	assert.Equal(t, TCP, colonForm[2277].Proto, "protocol defaults to tcp")
	assert.Empty(t, rep.Reports)
}

func TestParseExplicitProtocol(t *testing.T) {
	rep := &reporting.CaptureReporter{}
	path := writeRuleFile(t, "53 10.0.0.53:53 udp\n8443 10.0.0.1 443 TCP\n")
	rs, err := Load(path, rep)
	require.NoError(t, err)
	require.Len(t, rs, 2)
	assert.Equal(t, UDP, rs[53].Proto)
	assert.Equal(t, TCP, rs[8443].Proto)
}

func TestParseCommentsAndBlanks(t *testing.T) {
	rep := &reporting.CaptureReporter{}
	path := writeRuleFile(t, `
# all of this line is comment

8080 192.168.1.10:80   # trailing comment
`)
	rs, err := Load(path, rep)
	require.NoError(t, err)
	require.Len(t, rs, 1)
	assert.Equal(t, "192.168.1.10:80", rs[8080].Destination())
	assert.Empty(t, rep.Reports)
}

func TestParseOutOfRangePortSkipsLineOnly(t *testing.T) {
	rep := &reporting.CaptureReporter{}
	path := writeRuleFile(t, "70000 10.0.0.1:22 tcp\n2277 10.77.77.2:22\n")
	rs, err := Load(path, rep)
	require.NoError(t, err, "a single bad line never aborts the load")

	require.Len(t, rs, 1)
	_, present := rs[70000]
	assert.False(t, present)
	assert.Equal(t, "10.77.77.2:22", rs[2277].Destination())
	assert.True(t, rep.Has(reporting.KeyRuleBadPort))
}

func TestParseMalformedLines(t *testing.T) {
	rep := &reporting.CaptureReporter{}
	path := writeRuleFile(t, `8080
8081 justahost
8082 host 99999
8083 host 80 sctp
8084 :1234
9090 10.1.1.1:9090
`)
	rs, err := Load(path, rep)
	require.NoError(t, err)

	require.Len(t, rs, 1)
	assert.Equal(t, "10.1.1.1:9090", rs[9090].Destination())
	assert.True(t, rep.Has(reporting.KeyRuleBadLine))
	assert.True(t, rep.Has(reporting.KeyRuleBadPort))
	assert.True(t, rep.Has(reporting.KeyRuleBadProto))
	assert.Len(t, rep.Reports, 5, "one warning per bad line")
}

func TestParseDuplicatePortLastWins(t *testing.T) {
	rep := &reporting.CaptureReporter{}
	path := writeRuleFile(t, "8080 10.0.0.1:80\n8080 10.0.0.2:8000\n")
	rs, err := Load(path, rep)
	require.NoError(t, err)

	require.Len(t, rs, 1)
	assert.Equal(t, "10.0.0.2:8000", rs[8080].Destination())
}

func TestRuleSetPortsSorted(t *testing.T) {
	rs := RuleSet{
		9090: {LocalPort: 9090},
		80:   {LocalPort: 80},
		2277: {LocalPort: 2277},
	}
	assert.Equal(t, []int{80, 2277, 9090}, rs.Ports())
}
