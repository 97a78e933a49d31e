package logging_test

import (
	"bytes"
	"testing"

	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"

	"github.com/derickschaefer/ezdota/internal/logging"
)

func TestLevel(t *testing.T) {
	assert.Equal(t, zerolog.WarnLevel, logging.Level(false, false, false))
	assert.Equal(t, zerolog.InfoLevel, logging.Level(false, true, false))
	assert.Equal(t, zerolog.DebugLevel, logging.Level(false, true, true))
	assert.Equal(t, zerolog.Disabled, logging.Level(true, true, true))
}

func TestNewFiltersBelowLevel(t *testing.T) {
	var buf bytes.Buffer
	log := logging.New(&buf, zerolog.WarnLevel)
	log.Info().Msg("hidden")
	log.Warn().Str("key", "value").Msg("shown")

	out := buf.String()
	assert.NotContains(t, out, "hidden")
	assert.Contains(t, out, "shown")
	assert.Contains(t, out, "key=value")
	assert.NotContains(t, out, "\x1b[", "non-terminal output is uncoloured")
}

func TestNewDisabled(t *testing.T) {
	var buf bytes.Buffer
	log := logging.New(&buf, zerolog.Disabled)
	log.Error().Msg("nothing")
	assert.Zero(t, buf.Len())
}

func TestJSON(t *testing.T) {
	var buf bytes.Buffer
	log := logging.JSON(&buf, zerolog.InfoLevel)
	log.Info().Int("matches", 3).Msg("loaded")
	assert.Contains(t, buf.String(), `"matches":3`)
	assert.Contains(t, buf.String(), `"message":"loaded"`)
}
