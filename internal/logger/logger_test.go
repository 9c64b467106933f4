package logger

import (
	"bytes"
	"encoding/json"
	"testing"

	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestInit_JSON(t *testing.T) {
	var buf bytes.Buffer
	initTo(&buf, "debug", false)
	t.Cleanup(func() { zerolog.SetGlobalLevel(zerolog.InfoLevel) })

	log.Debug().Str("symbol", "ITC").Msg("loaded")

	var entry map[string]any
	require.NoError(t, json.Unmarshal(buf.Bytes(), &entry))
	assert.Equal(t, "loaded", entry["message"])
	assert.Equal(t, "ITC", entry["symbol"])
	assert.Equal(t, "stockranker", entry["service"])
}

func TestInit_LevelFallback(t *testing.T) {
	var buf bytes.Buffer
	initTo(&buf, "chatty", false)
	assert.Equal(t, zerolog.InfoLevel, zerolog.GlobalLevel())

	log.Debug().Msg("hidden")
	assert.Zero(t, buf.Len())
}
