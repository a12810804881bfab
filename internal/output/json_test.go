package output

import (
	"bytes"
	"encoding/json"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/dshills/commitleak/internal/search"
)

func TestJSONWriter(t *testing.T) {
	var buf bytes.Buffer
	w := &JSONWriter{}
	require.NoError(t, w.Write(&buf, testReport()))

	var got search.Report
	require.NoError(t, json.Unmarshal(buf.Bytes(), &got))
	assert.Equal(t, "commitleak", got.Tool)
	assert.Equal(t, 2, got.Summary.Files)
	assert.Equal(t, map[string]int{"password": 1, "pwd": 1}, got.Summary.ByKeyword)
	require.Len(t, got.Findings, 2)
	assert.Equal(t, 12, got.Findings[0].Line)
	assert.Equal(t, "jane@example.org", got.Findings[0].Commit.Author.Email)

	var raw map[string]any
	require.NoError(t, json.Unmarshal(buf.Bytes(), &raw))
	second := raw["findings"].([]any)[1].(map[string]any)
	_, hasLine := second["line"]
	assert.False(t, hasLine, "zero line should be omitted")
}
