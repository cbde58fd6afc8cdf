package logging

import (
	"bytes"
	"encoding/json"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNew_JSONForBuffers(t *testing.T) {
	var buf bytes.Buffer
	l := Component(New("debug", &buf), "download")

	l.Debug().Str("path", "a.mcap").Msg("open")

	var rec map[string]any
	require.NoError(t, json.Unmarshal(buf.Bytes(), &rec))
	assert.Equal(t, "debug", rec["level"])
	assert.Equal(t, "download", rec["component"])
	assert.Equal(t, "a.mcap", rec["path"])
	assert.Contains(t, rec, "time")
}

func TestNew_LevelFilter(t *testing.T) {
	var buf bytes.Buffer
	l := New("WARN", &buf)

	l.Info().Msg("hidden")
	assert.Zero(t, buf.Len())

	l.Warn().Msg("shown")
	assert.NotZero(t, buf.Len())
}

func TestNew_UnknownLevelIsInfo(t *testing.T) {
	var buf bytes.Buffer
	l := New("chatty", &buf)

	l.Debug().Msg("hidden")
	assert.Zero(t, buf.Len())
	l.Info().Msg("shown")
	assert.NotZero(t, buf.Len())
}
