package logger

import (
	"bytes"
	"encoding/json"
	"testing"

	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"framelink-support/internal/config"
)

func TestJSONLoggerCarriesServiceFields(t *testing.T) {
	var buf bytes.Buffer
	log := newWithWriter(&config.Config{
		ServiceName: "framelink-support",
		Environment: "test",
		LogLevel:    "debug",
		LogFormat:   "json",
	}, &buf)

	log.Info().Str("component", "logger-test").Msg("hello")

	var line map[string]any
	require.NoError(t, json.Unmarshal(buf.Bytes(), &line))
	assert.Equal(t, "framelink-support", line["service"])
	assert.Equal(t, "test", line["environment"])
	assert.Equal(t, "logger-test", line["component"])
	assert.Equal(t, "hello", line["message"])
}

func TestParseLevel(t *testing.T) {
	assert.Equal(t, zerolog.InfoLevel, parseLevel(""))
	assert.Equal(t, zerolog.DebugLevel, parseLevel("DEBUG"))
	assert.Equal(t, zerolog.InfoLevel, parseLevel("chatty"))
}
