package utilities

import (
	"os"
	"path/filepath"
	"strconv"
	"testing"

	"github.com/segmentio/ksuid"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
)

func TestLevelFromString(t *testing.T) {
	cases := map[string]zapcore.Level{
		"debug":   zapcore.DebugLevel,
		"info":    zapcore.InfoLevel,
		"warn":    zapcore.WarnLevel,
		"warning": zapcore.WarnLevel,
		"error":   zapcore.ErrorLevel,
		"bogus":   zapcore.InfoLevel,
	}
	for in, want := range cases {
		require.Equal(t, want, levelFromString(in), in)
	}
}

func TestConfigFromEnv(t *testing.T) {
	t.Setenv("LOG_DEV", "1")
	t.Setenv("LOG_LEVEL", "")
	t.Setenv("LOG_FILE", "")
	t.Setenv("LOG_MAX_AGE", "3")

	cfg := ConfigFromEnv()
	require.True(t, cfg.Dev)
	require.Equal(t, "debug", cfg.Level)
	require.Equal(t, float64(72), cfg.MaxAge.Hours())

	t.Setenv("LOG_DEV", "")
	t.Setenv("LOG_LEVEL", "warn")
	cfg = ConfigFromEnv()
	require.False(t, cfg.Dev)
	require.Equal(t, "warn", cfg.Level)
}

func TestInit_Production(t *testing.T) {
	lg, err := Init(Config{Level: "error"})
	require.NoError(t, err)
	require.False(t, lg.Core().Enabled(zapcore.WarnLevel))
	require.True(t, lg.Core().Enabled(zapcore.ErrorLevel))
}

func TestInit_WritesRotatingFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "daystatus.log")
	lg, err := Init(Config{Level: "info", File: path})
	require.NoError(t, err)

	lg.Info("hello file", zap.String("k", "v"))
	_ = lg.Sync() // stdout may not support fsync

	data, err := os.ReadFile(path)
	require.NoError(t, err)
	require.Contains(t, string(data), `"msg":"hello file"`)
	require.Contains(t, string(data), `"k":"v"`)
}

func TestIDGenerator_Unique(t *testing.T) {
	g := NewIDGenerator(7)
	seen := make(map[string]struct{}, 1000)
	for i := 0; i < 1000; i++ {
		id := g.Next()
		_, err := strconv.ParseInt(id, 10, 64)
		require.NoError(t, err, "snowflake ids are numeric")
		_, dup := seen[id]
		require.False(t, dup, "duplicate id %s", id)
		seen[id] = struct{}{}
	}
}

func TestIDGenerator_FallsBackToKSUID(t *testing.T) {
	g := NewIDGenerator(1 << 20) // out of the 10-bit node range
	_, err := ksuid.Parse(g.Next())
	require.NoError(t, err)

	var nilGen *IDGenerator
	_, err = ksuid.Parse(nilGen.Next())
	require.NoError(t, err)
}

func TestNodeFromEnv(t *testing.T) {
	t.Setenv("SNOWFLAKE_NODE", "")
	require.EqualValues(t, 1, NodeFromEnv())
	t.Setenv("SNOWFLAKE_NODE", "12")
	require.EqualValues(t, 12, NodeFromEnv())
	t.Setenv("SNOWFLAKE_NODE", "abc")
	require.EqualValues(t, 1, NodeFromEnv())
}
