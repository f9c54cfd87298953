package logger

import (
	"bytes"
	"encoding/json"
	"testing"

	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNewToWritesJSON(t *testing.T) {
	var buf bytes.Buffer
	l := NewTo(&buf, "production", "scheduler")
	l.Info().Int("runs", 2).Msg("scan complete")

	var line map[string]any
	require.NoError(t, json.Unmarshal(buf.Bytes(), &line))
	assert.Equal(t, "scheduler", line["component"])
	assert.Equal(t, "scan complete", line["message"])
	assert.Equal(t, "info", line["level"])
	assert.EqualValues(t, 2, line["runs"])
	assert.Contains(t, line, "time")
}

func TestNewToConsole(t *testing.T) {
	var buf bytes.Buffer
	l := NewTo(&buf, "dev", "cli")
	l.Warn().Msg("battery below reserve")
	assert.Contains(t, buf.String(), "battery below reserve")
	assert.False(t, json.Valid(buf.Bytes()))
}

func TestSetLevel(t *testing.T) {
	prev := zerolog.GlobalLevel()
	defer zerolog.SetGlobalLevel(prev)

	require.NoError(t, SetLevel("WARN"))
	assert.Equal(t, zerolog.WarnLevel, zerolog.GlobalLevel())

	var buf bytes.Buffer
	l := NewTo(&buf, "production", "api")
	l.Info().Msg("hidden")
	assert.Empty(t, buf.String())

	assert.Error(t, SetLevel("loud"))
}
