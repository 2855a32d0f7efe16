package logging

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"io"
	"log/slog"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/charmbracelet/log"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func decode(t *testing.T, b []byte) map[string]any {
	t.Helper()

	var entry map[string]any
	require.NoError(t, json.Unmarshal(b, &entry))

	return entry
}

func TestFromContext(t *testing.T) {
	t.Run("nil context", func(t *testing.T) {
		assert.Equal(t, defaultLogger, FromContext(nil)) //nolint:staticcheck // nil guard
	})

	t.Run("no logger", func(t *testing.T) {
		assert.Equal(t, defaultLogger, FromContext(context.Background()))
	})

	t.Run("stored logger", func(t *testing.T) {
		custom := slog.New(slog.NewTextHandler(io.Discard, nil))
		ctx := WithContext(context.Background(), custom)
		assert.Equal(t, custom, FromContext(ctx))
	})
}

func TestContextIDs(t *testing.T) {
	var buf bytes.Buffer
	logger := slog.New(slog.NewJSONHandler(&buf, nil))

	ctx := WithContext(context.Background(), logger)
	ctx = WithRequestID(ctx, "req-123")
	ctx = WithCorrelationID(ctx, "corr-789")
	ctx = WithSubmissionID(ctx, "65f0c0ffee")

	FromContext(ctx).InfoContext(ctx, "stored")

	entry := decode(t, buf.Bytes())
	assert.Equal(t, "req-123", entry["request_id"])
	assert.Equal(t, "corr-789", entry["correlation_id"])
	assert.Equal(t, "65f0c0ffee", entry["submission_id"])
}

func TestSetDefault(t *testing.T) {
	original := defaultLogger
	t.Cleanup(func() { SetDefault(original) })

	custom := slog.New(slog.NewTextHandler(io.Discard, nil))
	SetDefault(custom)

	assert.Equal(t, custom, FromContext(context.Background()))
}

func TestNewWithWriter_JSONFormat(t *testing.T) {
	var buf bytes.Buffer
	logger := NewWithWriter(&Config{
		Level:   "info",
		Format:  "json",
		Service: "contact-form-service",
		Version: "1.0.0",
	}, &buf)

	logger.Info("submission stored", slog.String("email", "jane@example.com"))

	entry := decode(t, buf.Bytes())
	assert.Equal(t, "submission stored", entry["msg"])
	assert.Equal(t, "contact-form-service", entry["service_name"])
	assert.Equal(t, "1.0.0", entry["service_version"])
	assert.Equal(t, "jane@example.com", entry["email"])
}

func TestNewWithWriter_TextFormat(t *testing.T) {
	var buf bytes.Buffer
	logger := NewWithWriter(&Config{Level: "debug", Format: "text", Service: "svc"}, &buf)

	logger.Debug("debug message")

	assert.Contains(t, buf.String(), "debug message")
	assert.Contains(t, buf.String(), "service_name=svc")
}

func TestNewWithWriter_LevelFiltering(t *testing.T) {
	var buf bytes.Buffer
	logger := NewWithWriter(&Config{Level: "warn", Format: "json"}, &buf)

	logger.Info("hidden")
	assert.Empty(t, buf.String())

	logger.Log(context.Background(), LevelTrace, "also hidden")
	assert.Empty(t, buf.String())

	logger.Warn("shown")
	assert.Contains(t, buf.String(), "shown")
}

func TestNewWithWriter_PrettyFormat(t *testing.T) {
	var buf bytes.Buffer
	logger := NewWithWriter(&Config{Level: "info", Format: "pretty"}, &buf)

	logger.Info("pretty message", slog.String("password", "hunter2"))

	out := buf.String()
	assert.Contains(t, out, "pretty message")
	assert.NotContains(t, out, "hunter2")
}

func TestNewWithWriter_FileSink(t *testing.T) {
	logFile := filepath.Join(t.TempDir(), "app.log")

	var buf bytes.Buffer
	logger := NewWithWriter(&Config{
		Level:  "info",
		Format: "json",
		File: FileConfig{
			Enabled:    true,
			Path:       logFile,
			MaxSizeMB:  1,
			MaxBackups: 3,
			MaxAgeDays: 7,
		},
	}, &buf)

	logger.Info("relay accepted message")

	assert.Contains(t, buf.String(), "relay accepted message")
	require.FileExists(t, logFile)

	content, err := os.ReadFile(logFile)
	require.NoError(t, err)
	assert.Contains(t, string(content), "relay accepted message")
}

func TestParseLevel(t *testing.T) {
	tests := []struct {
		input    string
		expected slog.Level
	}{
		{"trace", LevelTrace},
		{"debug", slog.LevelDebug},
		{"info", slog.LevelInfo},
		{"warn", slog.LevelWarn},
		{"warning", slog.LevelWarn},
		{"error", slog.LevelError},
		{"ERROR", slog.LevelError},
		{"unknown", slog.LevelInfo},
		{"", slog.LevelInfo},
	}

	for _, tt := range tests {
		t.Run(tt.input, func(t *testing.T) {
			assert.Equal(t, tt.expected, parseLevel(tt.input))
		})
	}
}

func TestSlogToCharmLevel(t *testing.T) {
	tests := []struct {
		name     string
		input    slog.Level
		expected log.Level
	}{
		{"trace", LevelTrace, log.DebugLevel},
		{"debug", slog.LevelDebug, log.DebugLevel},
		{"info", slog.LevelInfo, log.InfoLevel},
		{"warn", slog.LevelWarn, log.WarnLevel},
		{"error", slog.LevelError, log.ErrorLevel},
		{"above error", slog.Level(12), log.ErrorLevel},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.expected, slogToCharmLevel(tt.input))
		})
	}
}

func TestMultiHandler_Handle(t *testing.T) {
	var debugBuf, infoBuf bytes.Buffer

	multi := NewMultiHandler(
		slog.NewJSONHandler(&debugBuf, &slog.HandlerOptions{Level: slog.LevelDebug}),
		slog.NewJSONHandler(&infoBuf, &slog.HandlerOptions{Level: slog.LevelInfo}),
	)
	logger := slog.New(multi).With(slog.String("component", "dispatcher")).WithGroup("mail")

	logger.Info("sent", slog.String("provider", "smtp"))
	assert.Contains(t, debugBuf.String(), `"component":"dispatcher"`)
	assert.Contains(t, infoBuf.String(), `"mail":{"provider":"smtp"}`)

	debugBuf.Reset()
	infoBuf.Reset()

	logger.Debug("queued")
	assert.Contains(t, debugBuf.String(), "queued")
	assert.Empty(t, infoBuf.String())
}

func TestMultiHandler_Enabled(t *testing.T) {
	errorOnly := slog.NewTextHandler(io.Discard, &slog.HandlerOptions{Level: slog.LevelError})
	debug := slog.NewTextHandler(io.Discard, &slog.HandlerOptions{Level: slog.LevelDebug})

	assert.True(t, NewMultiHandler(errorOnly, debug).Enabled(context.Background(), slog.LevelInfo))
	assert.False(t, NewMultiHandler(errorOnly, errorOnly).Enabled(context.Background(), slog.LevelInfo))
}

type failingHandler struct{ slog.Handler }

var errSinkDown = errors.New("sink down")

func (failingHandler) Handle(context.Context, slog.Record) error { return errSinkDown } //nolint:gocritic // slog.Handler interface requires value

func TestMultiHandler_HandleJoinsErrors(t *testing.T) {
	var buf bytes.Buffer

	multi := NewMultiHandler(
		failingHandler{slog.NewTextHandler(io.Discard, nil)},
		slog.NewJSONHandler(&buf, nil),
	)

	err := multi.Handle(context.Background(), slog.NewRecord(time.Now(), slog.LevelInfo, "x", 0))
	require.ErrorIs(t, err, errSinkDown)
	assert.Contains(t, buf.String(), `"msg":"x"`)
}

func TestNewReplaceAttr(t *testing.T) {
	tests := []struct {
		name         string
		field        string
		value        string
		shouldRedact bool
	}{
		{"relay password", "password", "app-password", true},
		{"short pass", "pass", "app-password", true},
		{"mailgun key", "api_key", "key-abc123", true},
		{"store uri field", "mongo_uri", "mongodb://localhost:27017", true},
		{"credential uri value", "target", "mongodb://admin:s3cret@db:27017/contactform", true},
		{"bearer value", "header", "Bearer abc123xyz456", true},
		{"secret prefix", "secret_config", "sensitive-data", true},
		{"submitter email", "email", "jane@example.com", false},
		{"submitter name", "name", "Jane Doe", false},
		{"plain uri", "target", "mongodb://localhost:27017", false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			var buf bytes.Buffer
			logger := slog.New(slog.NewJSONHandler(&buf, &slog.HandlerOptions{ReplaceAttr: NewReplaceAttr()}))

			logger.Info("test", slog.String(tt.field, tt.value))

			out := buf.String()
			assert.Contains(t, out, tt.field)
			if tt.shouldRedact {
				assert.NotContains(t, out, tt.value)
			} else {
				assert.Contains(t, out, tt.value)
			}
		})
	}
}
