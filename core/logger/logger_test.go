package logger

import (
	"bytes"
	"os"
	"path/filepath"
	"testing"

	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestParseLevel(t *testing.T) {
	cases := map[string]struct {
		want zerolog.Level
		ok   bool
	}{
		"":        {DefaultLevel, false},
		"bogus":   {DefaultLevel, false},
		"trace":   {zerolog.TraceLevel, true},
		" DEBUG ": {zerolog.DebugLevel, true},
		"info":    {zerolog.InfoLevel, true},
		"warning": {zerolog.WarnLevel, true},
		"error":   {zerolog.ErrorLevel, true},
		"off":     {zerolog.Disabled, true},
	}

	for raw, tc := range cases {
		got, ok := ParseLevel(raw)
		assert.Equal(t, tc.want, got, "level for %q", raw)
		assert.Equal(t, tc.ok, ok, "ok for %q", raw)
	}
}

func TestNew(t *testing.T) {
	t.Run("default", func(t *testing.T) {
		t.Setenv(EnvLogLevel, "")
		var buf bytes.Buffer
		log := New(&buf, false)

		log.Debug().Msg("hidden")
		log.Warn().Msg("shown")

		assert.NotContains(t, buf.String(), "hidden")
		assert.Contains(t, buf.String(), "shown")
		assert.Contains(t, buf.String(), "app=dev")
	})

	t.Run("verbose", func(t *testing.T) {
		t.Setenv(EnvLogLevel, "")
		var buf bytes.Buffer
		log := New(&buf, true)

		log.Debug().Msg("visible")
		assert.Contains(t, buf.String(), "visible")
	})

	t.Run("environment wins", func(t *testing.T) {
		t.Setenv(EnvLogLevel, "off")
		var buf bytes.Buffer
		log := New(&buf, true)

		log.Error().Msg("silenced")
		assert.Empty(t, buf.String())
	})
}

func TestIsTerminal(t *testing.T) {
	var buf bytes.Buffer
	assert.False(t, IsTerminal(&buf))

	f, err := os.Create(filepath.Join(t.TempDir(), "log"))
	require.NoError(t, err)
	defer f.Close()
	assert.False(t, IsTerminal(f))
}

func TestNew_plainOutputOffTerminal(t *testing.T) {
	t.Setenv(EnvLogLevel, "")
	var buf bytes.Buffer
	log := New(&buf, false)

	log.Error().Msg("plain")
	assert.Contains(t, buf.String(), "plain")
	assert.NotContains(t, buf.String(), "\x1b[")
}
