package output

import (
	"bytes"
	"encoding/json"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestSARIFWriter_Empty(t *testing.T) {
	var buf bytes.Buffer
	w := &SARIFWriter{}
	require.NoError(t, w.Write(&buf, emptyReport()))

	var log sarifLog
	require.NoError(t, json.Unmarshal(buf.Bytes(), &log))
	assert.Equal(t, "2.1.0", log.Version)
	require.Len(t, log.Runs, 1)
	assert.Equal(t, "commitleak", log.Runs[0].Tool.Driver.Name)
	assert.Empty(t, log.Runs[0].Results)
	assert.Contains(t, buf.String(), `"results": []`)
}

func TestSARIFWriter_WithFindings(t *testing.T) {
	var buf bytes.Buffer
	w := &SARIFWriter{}
	require.NoError(t, w.Write(&buf, testReport()))

	var log sarifLog
	require.NoError(t, json.Unmarshal(buf.Bytes(), &log))
	run := log.Runs[0]

	require.Len(t, run.Tool.Driver.Rules, 2)
	assert.Equal(t, "commitleak/brace", run.Tool.Driver.Rules[0].ID)
	assert.Equal(t, "commitleak/keyvalue", run.Tool.Driver.Rules[1].ID)
	assert.Equal(t, "1.0", run.Tool.Driver.Version)

	require.Len(t, run.Results, 2)
	first := run.Results[0]
	assert.Equal(t, "commitleak/brace", first.RuleID)
	assert.Equal(t, "error", first.Level)
	assert.Equal(t, `Possible hardcoded credential committed in 0123456: password := "[REDACTED]"`, first.Message.Text)
	require.Len(t, first.Locations, 1)
	assert.Equal(t, "cmd/main.go", first.Locations[0].PhysicalLocation.ArtifactLocation.URI)
	require.NotNil(t, first.Locations[0].PhysicalLocation.Region)
	assert.Equal(t, 12, first.Locations[0].PhysicalLocation.Region.StartLine)
	assert.Equal(t, "aaaaaaaaaaaaaaaa", first.PartialFingerprints["commitleak/v1"])
	assert.Equal(t, "jane@example.org", first.Properties.Author)

	assert.Nil(t, run.Results[1].Locations[0].PhysicalLocation.Region, "unknown line has no region")
}

func TestRuleID(t *testing.T) {
	assert.Equal(t, "commitleak/json", ruleID("json"))
}
