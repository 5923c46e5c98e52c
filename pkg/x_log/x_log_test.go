package x_log

import (
	"bytes"
	"context"
	"encoding/json"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestParseLevel(t *testing.T) {
	cases := map[string]Level{
		"":        InfoLevel,
		"debug":   DebugLevel,
		"TRACE":   DebugLevel,
		"info":    InfoLevel,
		"Warning": WarnLevel,
		"error":   ErrorLevel,
		"fatal":   FatalLevel,
	}
	for in, want := range cases {
		got, err := ParseLevel(in)
		assert.NoError(t, err, in)
		assert.Equal(t, want, got, in)
	}

	_, err := ParseLevel("loud")
	assert.ErrorIs(t, err, ErrInvalidLevelValue)
}

func TestInitWithConfigSetsGlobalLevel(t *testing.T) {
	InitWithConfig(&Config{Level: "debug"}, "test")
	assert.Equal(t, zerolog.DebugLevel, zerolog.GlobalLevel())

	InitWithConfig(&Config{Level: "error"}, "test")
	assert.Equal(t, zerolog.ErrorLevel, zerolog.GlobalLevel())

	InitWithConfig(nil, "")
	assert.Equal(t, zerolog.InfoLevel, zerolog.GlobalLevel())
}

func TestFileLogging(t *testing.T) {
	path := filepath.Join(t.TempDir(), "shop.log")

	InitWithConfig(&Config{Level: "info", ToFile: true, LogFile: path}, "files")
	Info().Str("address", "/0/1/").Msg("node resolved")
	Debug().Msg("filtered out")

	content, err := os.ReadFile(path)
	require.NoError(t, err)

	line := strings.TrimSpace(string(content))
	var entry map[string]any
	require.NoError(t, json.Unmarshal([]byte(line), &entry))
	assert.Equal(t, "node resolved", entry["message"])
	assert.Equal(t, "/0/1/", entry["address"])
	assert.Equal(t, "files", entry["module"])
	assert.NotContains(t, string(content), "filtered out")

	InitWithConfig(nil, "")
}

func TestNewAddsModule(t *testing.T) {
	var buf bytes.Buffer
	zerolog.SetGlobalLevel(zerolog.DebugLevel)
	log.Logger = zerolog.New(&buf)

	l := New("bot")
	l.Info().Msg("hello")

	assert.Contains(t, buf.String(), `"module":"bot"`)
	assert.Contains(t, buf.String(), `"message":"hello"`)
}

func TestContextLogger(t *testing.T) {
	var buf bytes.Buffer
	l := zerolog.New(&buf).With().Str("chat", "42").Logger()

	ctx := WithLogger(context.Background(), &l)
	From(ctx).Info().Msg("from context")
	assert.Contains(t, buf.String(), `"chat":"42"`)

	assert.Same(t, &log.Logger, From(context.Background()))
}

func TestConsoleWriterWithStyles(t *testing.T) {
	var buf bytes.Buffer
	styles := DefaultStylesByName("light")
	styles.Out = &buf

	l := zerolog.New(ConsoleWriterWithStyles(styles)).With().Timestamp().Logger()
	l.Warn().Str("address", "/2/").Str("user", "ann").Msg("stale token")

	out := buf.String()
	assert.Contains(t, out, "stale token")
	assert.Contains(t, out, "address")
	assert.Contains(t, out, "/2/")
	assert.Contains(t, out, "WAR")
}

func TestDefaultStylesByName(t *testing.T) {
	for _, name := range []string{"dark", "light", "unknown"} {
		s := DefaultStylesByName(name)
		for _, lvl := range []Level{DebugLevel, InfoLevel, WarnLevel, ErrorLevel, FatalLevel} {
			_, ok := s.Levels[lvl]
			assert.True(t, ok, "%s theme lacks %s", name, lvl)
		}
	}
}

func TestConfigComplete(t *testing.T) {
	assert.Equal(t, DefaultConfig(), Config{
		ToConsole: true,
		Compress:  true,
	}.Complete())

	cfg := Config{Level: "debug", ToFile: true, Style: "Light", MaxSize: 20, MaxAge: -1}.Complete()
	assert.Equal(t, "debug", cfg.Level)
	assert.True(t, cfg.ToFile)
	assert.False(t, cfg.ToConsole)
	assert.Equal(t, "Light", cfg.Style)
	assert.Equal(t, 20, cfg.MaxSize)
	assert.Equal(t, defaultConfig.MaxAge, cfg.MaxAge)
	assert.Equal(t, "logs/shopbot.log", cfg.LogFile)

	assert.Equal(t, "dark", Config{Style: "neon"}.Complete().Style)
}
