package logger

import (
	"bytes"
	"encoding/json"
	"path/filepath"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
)

func TestDefaultConfig(t *testing.T) {
	cfg := DefaultConfig()

	assert.Equal(t, "info", cfg.Level)
	assert.Equal(t, "console", cfg.Format)
	assert.Equal(t, "stderr", cfg.Output)
	assert.NotEmpty(t, cfg.TimeFormat)
}

func TestNew(t *testing.T) {
	tests := []struct {
		name    string
		cfg     *Config
		wantErr bool
	}{
		{name: "default config", cfg: DefaultConfig()},
		{name: "nil config", cfg: nil},
		{name: "json to stdout", cfg: &Config{Level: "debug", Format: "json", Output: "stdout"}},
		{name: "file output", cfg: &Config{Level: "info", Format: "json", Output: filepath.Join(t.TempDir(), "fleet.log")}},
		{name: "unwritable file", cfg: &Config{Output: filepath.Join(t.TempDir(), "missing", "fleet.log")}, wantErr: true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			log, err := New(tt.cfg)
			if tt.wantErr {
				assert.Error(t, err)
				return
			}
			require.NoError(t, err)
			assert.NotNil(t, log)
		})
	}
}

func TestParseLevel(t *testing.T) {
	tests := []struct {
		input    string
		expected zapcore.Level
	}{
		{"debug", zapcore.DebugLevel},
		{"INFO", zapcore.InfoLevel},
		{"warn", zapcore.WarnLevel},
		{"warning", zapcore.WarnLevel},
		{"error", zapcore.ErrorLevel},
		{"verbose", zapcore.InfoLevel},
		{"", zapcore.InfoLevel},
	}

	for _, tt := range tests {
		t.Run(tt.input, func(t *testing.T) {
			assert.Equal(t, tt.expected, parseLevel(tt.input))
		})
	}
}

func TestNewWithWriter_JSON(t *testing.T) {
	var buf bytes.Buffer
	log := NewWithWriter(&Config{Level: "info", Format: "json"}, &buf)

	Named(log, "fiscal").Warn("fallback", zap.Int("seller_name_bytes", 300))
	log.Debug("filtered")

	lines := strings.Split(strings.TrimSpace(buf.String()), "\n")
	require.Len(t, lines, 1)

	var entry map[string]any
	require.NoError(t, json.Unmarshal([]byte(lines[0]), &entry))
	assert.Equal(t, "warn", entry["level"])
	assert.Equal(t, "fiscal", entry["logger"])
	assert.Equal(t, "fallback", entry["msg"])
	assert.Equal(t, float64(300), entry["seller_name_bytes"])
}

func TestNewWithWriter_Console(t *testing.T) {
	var buf bytes.Buffer
	log := NewWithWriter(DefaultConfig(), &buf)

	log.Info("settled", zap.String("contract", "C-1"))

	assert.Contains(t, buf.String(), "INFO")
	assert.Contains(t, buf.String(), "settled")
	assert.Contains(t, buf.String(), "C-1")
}

func TestNamed_NilLogger(t *testing.T) {
	assert.NotNil(t, Named(nil, "x"))
}

func TestSync(t *testing.T) {
	log := NewWithWriter(nil, &bytes.Buffer{})
	assert.NoError(t, Sync(log))
}
