package logging

import (
	"bytes"
	"strings"
	"testing"

	"github.com/rs/zerolog"
)

func TestDefaultConfig(t *testing.T) {
	cfg := DefaultConfig()

	if cfg.Level != LevelInfo {
		t.Errorf("Expected default level to be Info, got %s", cfg.Level)
	}

	if cfg.Pretty != false {
		t.Error("Expected default pretty to be false")
	}
}

func TestSetup(t *testing.T) {
	tests := []struct {
		name     string
		level    LogLevel
		logAt    func(zerolog.Logger, string)
		msg      string
		expected bool
	}{
		{
			name:     "info_logged_at_info",
			level:    LevelInfo,
			logAt:    func(l zerolog.Logger, m string) { l.Info().Msg(m) },
			msg:      "artifact loaded",
			expected: true,
		},
		{
			name:     "debug_suppressed_at_info",
			level:    LevelInfo,
			logAt:    func(l zerolog.Logger, m string) { l.Debug().Msg(m) },
			msg:      "cache miss",
			expected: false,
		},
		{
			name:     "debug_logged_at_debug",
			level:    LevelDebug,
			logAt:    func(l zerolog.Logger, m string) { l.Debug().Msg(m) },
			msg:      "cache miss",
			expected: true,
		},
		{
			name:     "warn_logged_at_warn",
			level:    LevelWarn,
			logAt:    func(l zerolog.Logger, m string) { l.Warn().Msg(m) },
			msg:      "cache get failed",
			expected: true,
		},
		{
			name:     "info_suppressed_at_error",
			level:    LevelError,
			logAt:    func(l zerolog.Logger, m string) { l.Info().Msg(m) },
			msg:      "server started",
			expected: false,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			var buf bytes.Buffer
			logger := Setup(Config{Level: tt.level, Output: &buf})

			tt.logAt(logger, tt.msg)

			got := strings.Contains(buf.String(), tt.msg)
			if got != tt.expected {
				t.Errorf("message logged = %v, want %v (output: %q)", got, tt.expected, buf.String())
			}
		})
	}
}

func TestParseLevel(t *testing.T) {
	tests := []struct {
		in   LogLevel
		want zerolog.Level
	}{
		{LevelDebug, zerolog.DebugLevel},
		{LevelInfo, zerolog.InfoLevel},
		{LevelWarn, zerolog.WarnLevel},
		{"warning", zerolog.WarnLevel},
		{LevelError, zerolog.ErrorLevel},
		{"bogus", zerolog.InfoLevel},
	}

	for _, tt := range tests {
		if got := parseLevel(tt.in); got != tt.want {
			t.Errorf("parseLevel(%q) = %v, want %v", tt.in, got, tt.want)
		}
	}
}

func TestNewLogger_Component(t *testing.T) {
	var buf bytes.Buffer
	Setup(Config{Level: LevelDebug, Output: &buf})

	logger := NewLogger("predict")
	logger.Info().Msg("hello")

	if !strings.Contains(buf.String(), `"component":"predict"`) {
		t.Errorf("component field missing from output: %q", buf.String())
	}
}
