package logx

import (
	"bytes"
	"encoding/json"
	"os"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestWithFieldsWritesJSON(t *testing.T) {
	var buf bytes.Buffer
	Configure(&buf, false)
	SetLevel(LevelInfo)
	t.Cleanup(func() { Configure(os.Stderr, true) })

	WithFields(Fields{"path": "/manage/job", "status": 404}).Errorf("request error: %s", "not found")

	var entry map[string]any
	require.NoError(t, json.Unmarshal(buf.Bytes(), &entry))
	assert.Equal(t, "error", entry["level"])
	assert.Equal(t, "/manage/job", entry["path"])
	assert.Equal(t, "request error: not found", entry["message"])
}

func TestSetLevelFilters(t *testing.T) {
	var buf bytes.Buffer
	Configure(&buf, false)
	SetLevel(LevelWarn)
	t.Cleanup(func() {
		Configure(os.Stderr, true)
		SetLevel(LevelInfo)
	})

	Info("hidden")
	Warn("shown")

	out := buf.String()
	assert.False(t, strings.Contains(out, "hidden"))
	assert.True(t, strings.Contains(out, "shown"))
}

func TestParseLevel(t *testing.T) {
	assert.Equal(t, LevelDebug, ParseLevel("debug"))
	assert.Equal(t, LevelError, ParseLevel("error"))
	assert.Equal(t, LevelInfo, ParseLevel("whatever"))
}
