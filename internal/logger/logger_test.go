package logger

import (
	"bytes"
	"encoding/json"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestMask(t *testing.T) {
	assert.Equal(t, "", Mask(""))
	assert.Equal(t, "***", Mask("ab"))
	assert.Equal(t, "***", Mask("abcd"))
	assert.Equal(t, "abcd***", Mask("abcdefgh"))
}

func TestIsDevelopment(t *testing.T) {
	for _, env := range []string{"", "dev", "Development", " dev "} {
		assert.True(t, IsDevelopment(env), env)
	}
	for _, env := range []string{"prod", "production", "test"} {
		assert.False(t, IsDevelopment(env), env)
	}
}

func TestNewProductionWritesJSON(t *testing.T) {
	var buf bytes.Buffer
	log := NewProduction(&buf)
	log.Info().Str("url", "http://svc.local").Msg("hello")

	var entry map[string]interface{}
	require.NoError(t, json.Unmarshal(buf.Bytes(), &entry))
	assert.Equal(t, "info", entry["level"])
	assert.Equal(t, "http://svc.local", entry["url"])
	assert.Equal(t, "hello", entry["message"])
	assert.Contains(t, entry, "time")
}

func TestNewDevelopmentWritesConsole(t *testing.T) {
	var buf bytes.Buffer
	log := NewDevelopment(&buf)
	log.Info().Msg("hello")

	assert.Contains(t, buf.String(), "INF")
	assert.Contains(t, buf.String(), "hello")
}
