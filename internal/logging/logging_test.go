package logging

import (
	"bytes"
	"log/slog"
	"strings"
	"testing"
)

func TestNewLoggerWithWriter_Formats(t *testing.T) {
	t.Run("text", func(t *testing.T) {
		var buf bytes.Buffer
		logger := NewLoggerWithWriter(slog.LevelInfo, "text", &buf)
		logger.Info("hello", "account", "NL01")

		out := buf.String()
		if !strings.Contains(out, "hello") || !strings.Contains(out, "account=NL01") {
			t.Errorf("unexpected text output: %s", out)
		}
	})

	t.Run("json", func(t *testing.T) {
		var buf bytes.Buffer
		logger := NewLoggerWithWriter(slog.LevelInfo, "json", &buf)
		logger.Info("hello", "account", "NL01")

		out := buf.String()
		if !strings.Contains(out, `"msg":"hello"`) || !strings.Contains(out, `"account":"NL01"`) {
			t.Errorf("unexpected json output: %s", out)
		}
	})
}

func TestNewLoggerWithWriter_LevelFiltering(t *testing.T) {
	var buf bytes.Buffer
	logger := NewLoggerWithWriter(slog.LevelWarn, "text", &buf)

	logger.Debug("hidden")
	logger.Warn("visible")

	out := buf.String()
	if strings.Contains(out, "hidden") {
		t.Errorf("debug message leaked at warn level: %s", out)
	}
	if !strings.Contains(out, "visible") {
		t.Errorf("warn message missing: %s", out)
	}
}

func TestParseLevel(t *testing.T) {
	tests := []struct {
		in   string
		want slog.Level
	}{
		{"debug", slog.LevelDebug},
		{"INFO", slog.LevelInfo},
		{"warn", slog.LevelWarn},
		{"warning", slog.LevelWarn},
		{"error", slog.LevelError},
		{"bogus", slog.LevelInfo},
		{"", slog.LevelInfo},
	}
	for _, tt := range tests {
		if got := ParseLevel(tt.in); got != tt.want {
			t.Errorf("ParseLevel(%q) = %v, want %v", tt.in, got, tt.want)
		}
	}
}
