package logger

import (
	"bytes"
	"encoding/json"
	"errors"
	"strings"
	"testing"

	"github.com/rs/zerolog"
)

func newBufferLogger(level zerolog.Level) (*Logger, *bytes.Buffer) {
	var buf bytes.Buffer
	return NewWithWriter(&buf, level), &buf
}

func decodeEntry(t *testing.T, buf *bytes.Buffer) map[string]interface{} {
	t.Helper()
	var entry map[string]interface{}
	if err := json.Unmarshal(buf.Bytes(), &entry); err != nil {
		t.Fatalf("Expected valid JSON output, got error: %v (%q)", err, buf.String())
	}
	return entry
}

func TestNew_Environments(t *testing.T) {
	tests := []struct {
		env      string
		level    string
		expected zerolog.Level
	}{
		{env: "development", expected: zerolog.DebugLevel},
		{env: "production", expected: zerolog.InfoLevel},
		{env: "production", level: "debug", expected: zerolog.DebugLevel},
		{env: "development", level: "WARN", expected: zerolog.WarnLevel},
		{env: "production", level: "loud", expected: zerolog.InfoLevel},
	}

	for _, tt := range tests {
		t.Run(tt.env+"/"+tt.level, func(t *testing.T) {
			log := NewWithLevel(tt.env, tt.level)
			if log == nil || log.GetZerolog() == nil {
				t.Fatal("Expected logger to be created")
			}
			if log.Level() != tt.expected {
				t.Errorf("Expected level %s, got %s", tt.expected, log.Level())
			}
		})
	}

	if New("production").Level() != zerolog.InfoLevel {
		t.Error("Expected New to use the environment default level")
	}
}

func TestDebug(t *testing.T) {
	log, buf := newBufferLogger(zerolog.DebugLevel)

	log.Debug("filter applied", map[string]interface{}{
		"location": "austin",
		"matches":  3,
	})

	output := buf.String()
	if !strings.Contains(output, "filter applied") {
		t.Error("Expected log output to contain message")
	}
	if !strings.Contains(output, "austin") {
		t.Error("Expected log output to contain field value")
	}
}

func TestInfoAndWarn(t *testing.T) {
	log, buf := newBufferLogger(zerolog.DebugLevel)

	log.Info("property created", map[string]interface{}{"property_id": 9})
	entry := decodeEntry(t, buf)
	if entry["message"] != "property created" || entry["level"] != "info" {
		t.Errorf("Unexpected info entry: %v", entry)
	}
	if entry["property_id"] != float64(9) {
		t.Errorf("Expected property_id field, got %v", entry["property_id"])
	}

	buf.Reset()
	log.Warn("toggle rejected", map[string]interface{}{"reason": "in_flight"})
	entry = decodeEntry(t, buf)
	if entry["level"] != "warn" || entry["reason"] != "in_flight" {
		t.Errorf("Unexpected warn entry: %v", entry)
	}
}

func TestError(t *testing.T) {
	log, buf := newBufferLogger(zerolog.DebugLevel)

	log.Error("failed to toggle saved property", errors.New("store unavailable"), map[string]interface{}{
		"property_id": 5,
	})

	entry := decodeEntry(t, buf)
	if entry["error"] != "store unavailable" {
		t.Errorf("Expected error field, got %v", entry["error"])
	}
	if entry["level"] != "error" {
		t.Errorf("Expected error level, got %v", entry["level"])
	}
}

func TestWith(t *testing.T) {
	log, buf := newBufferLogger(zerolog.InfoLevel)

	child := log.With(map[string]interface{}{
		"backend": "memory",
		"version": "1.0",
	})
	child.Info("store ready", nil)

	entry := decodeEntry(t, buf)
	if entry["backend"] != "memory" || entry["version"] != "1.0" {
		t.Errorf("Expected context fields, got %v", entry)
	}
}

func TestWithRequestIDAndComponent(t *testing.T) {
	log, buf := newBufferLogger(zerolog.InfoLevel)

	log.WithComponent("saved_service").WithRequestID("req-12345").Info("request received", nil)

	entry := decodeEntry(t, buf)
	if entry["request_id"] != "req-12345" {
		t.Errorf("Expected request_id field, got %v", entry["request_id"])
	}
	if entry["component"] != "saved_service" {
		t.Errorf("Expected component field, got %v", entry["component"])
	}
}

func TestLogLevels_Production(t *testing.T) {
	log, buf := newBufferLogger(zerolog.InfoLevel)

	log.Debug("debug message", nil)
	if buf.Len() != 0 {
		t.Error("Debug message should not appear at info level")
	}

	log.Info("info message", nil)
	if !strings.Contains(buf.String(), "info message") {
		t.Error("Info message should appear at info level")
	}
}

func TestNop(t *testing.T) {
	log := Nop()
	// Should not panic or write anywhere
	log.Info("discarded", map[string]interface{}{"k": "v"})
	log.WithComponent("x").Error("discarded", errors.New("boom"), nil)
}

func TestNilFields(t *testing.T) {
	log, buf := newBufferLogger(zerolog.InfoLevel)

	log.Info("message with nil fields", nil)

	if !strings.Contains(buf.String(), "message with nil fields") {
		t.Error("Expected message to be logged even with nil fields")
	}
}
