package infrastructure

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/w-flo/eu-emission-factors/internal/config"
	apperrors "github.com/w-flo/eu-emission-factors/internal/errors"
)

func decodeLines(t *testing.T, buf *bytes.Buffer) []map[string]interface{} {
	t.Helper()
	var entries []map[string]interface{}
	for _, line := range strings.Split(strings.TrimSpace(buf.String()), "\n") {
		if line == "" {
			continue
		}
		var entry map[string]interface{}
		require.NoError(t, json.Unmarshal([]byte(line), &entry), line)
		entries = append(entries, entry)
	}
	return entries
}

func TestInitializeLogger(t *testing.T) {
	ResetLoggerForTesting()
	defer ResetLoggerForTesting()
	previous := slog.Default()
	defer slog.SetDefault(previous)

	logFile := filepath.Join(t.TempDir(), "logs", "test.log")
	cfg := config.LoggingConfig{
		Level:    "info",
		Format:   "json",
		Output:   "file",
		FilePath: logFile,
	}

	logger, err := InitializeLogger(cfg)
	require.NoError(t, err)
	require.NotNil(t, logger)
	assert.Same(t, logger, GetLogger())

	logger.Info("test message", "key", "value")
	logger.Debug("filtered out")
	require.NoError(t, CloseLogFile())

	content, err := os.ReadFile(logFile)
	require.NoError(t, err)
	entries := decodeLines(t, bytes.NewBuffer(content))
	require.Len(t, entries, 1)
	assert.Equal(t, "test message", entries[0]["msg"])
	assert.Equal(t, "value", entries[0]["key"])
	assert.Equal(t, "INFO", entries[0]["level"])
}

func TestInitializeLoggerOnce(t *testing.T) {
	ResetLoggerForTesting()
	defer ResetLoggerForTesting()
	previous := slog.Default()
	defer slog.SetDefault(previous)

	first, err := InitializeLogger(config.LoggingConfig{Level: "info", Format: "json", Output: "console"})
	require.NoError(t, err)
	second, err := InitializeLogger(config.LoggingConfig{Level: "debug", Format: "text", Output: "console"})
	require.NoError(t, err)
	assert.Same(t, first, second)
}

func TestRunHandlerInjectsRunID(t *testing.T) {
	var buf bytes.Buffer
	logger := NewLogger(config.LoggingConfig{Level: "debug", Format: "json"}, &buf)

	ctx := WithRunID(context.Background(), "run-123")
	logger.InfoContext(ctx, "with run")
	logger.Info("without run")
	logger.With("component", "matching").WarnContext(ctx, "derived logger")

	entries := decodeLines(t, &buf)
	require.Len(t, entries, 3)
	assert.Equal(t, "run-123", entries[0]["run_id"])
	assert.NotContains(t, entries[1], "run_id")
	assert.Equal(t, "run-123", entries[2]["run_id"])
	assert.Equal(t, "matching", entries[2]["component"])
}

func TestTextFormat(t *testing.T) {
	var buf bytes.Buffer
	logger := NewLogger(config.LoggingConfig{Level: "warn", Format: "text"}, &buf)

	logger.Info("quiet")
	logger.Warn("loud", "country", "DE")

	out := buf.String()
	assert.NotContains(t, out, "quiet")
	assert.Contains(t, out, "msg=loud")
	assert.Contains(t, out, "country=DE")
}

func TestParseLogLevel(t *testing.T) {
	tests := []struct {
		input string
		want  slog.Level
	}{
		{"debug", slog.LevelDebug},
		{"INFO", slog.LevelInfo},
		{"warn", slog.LevelWarn},
		{"warning", slog.LevelWarn},
		{"error", slog.LevelError},
		{"bogus", slog.LevelInfo},
	}

	for _, tt := range tests {
		t.Run(tt.input, func(t *testing.T) {
			assert.Equal(t, tt.want, parseLogLevel(tt.input))
		})
	}
}

func TestRunIDContext(t *testing.T) {
	ctx := context.Background()
	assert.Empty(t, GetRunID(ctx))

	ctx = EnsureRunID(ctx)
	runID := GetRunID(ctx)
	assert.Len(t, runID, 36)

	assert.Equal(t, runID, GetRunID(EnsureRunID(ctx)), "existing run id is kept")
}

func TestWithError(t *testing.T) {
	var buf bytes.Buffer
	logger := NewLogger(config.LoggingConfig{Level: "info", Format: "json"}, &buf)

	assert.Same(t, logger, WithError(logger, nil))
	WithError(logger, assert.AnError).Error("failed")

	entries := decodeLines(t, &buf)
	require.Len(t, entries, 1)
	assert.Equal(t, assert.AnError.Error(), entries[0]["error"])
}

func TestWithErrorAddsAppErrorDetail(t *testing.T) {
	var buf bytes.Buffer
	logger := NewLogger(config.LoggingConfig{Level: "info", Format: "json"}, &buf)

	err := fmt.Errorf("step calculate: %w",
		apperrors.NewNotFoundError("degree days for country XX").WithContext("country", "XX"))
	WithError(logger, err).Error("failed")

	entries := decodeLines(t, &buf)
	require.Len(t, entries, 1)
	detail, ok := entries[0]["detail"].(map[string]any)
	require.True(t, ok)
	assert.Equal(t, "NOT_FOUND", detail["type"])
	assert.Equal(t, "XX", detail["country"])
}
