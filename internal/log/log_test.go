package log

import (
	"bytes"
	"encoding/json"
	"log/slog"
	"strings"
	"testing"
)

func TestNewWithWriterText(t *testing.T) {
	var buf bytes.Buffer
	logger := NewWithWriter(&buf, Config{Level: slog.LevelDebug})

	logger.Debug("chunking document", "chunks", 3)

	got := buf.String()
	if !strings.Contains(got, "chunking document") {
		t.Errorf("expected message in output, got %q", got)
	}
	if !strings.Contains(got, "chunks=3") {
		t.Errorf("expected attribute in output, got %q", got)
	}
}

func TestNewWithWriterJSON(t *testing.T) {
	var buf bytes.Buffer
	logger := NewWithWriter(&buf, Config{JSON: true})

	logger.Info("indexed resource", "resource_id", "abc")

	var entry map[string]any
	if err := json.Unmarshal(buf.Bytes(), &entry); err != nil {
		t.Fatalf("output is not valid JSON: %v", err)
	}
	if entry["msg"] != "indexed resource" {
		t.Errorf("msg = %v, want %q", entry["msg"], "indexed resource")
	}
	if entry["resource_id"] != "abc" {
		t.Errorf("resource_id = %v, want %q", entry["resource_id"], "abc")
	}
}

func TestLevelFiltering(t *testing.T) {
	var buf bytes.Buffer
	logger := NewWithWriter(&buf, Config{Level: slog.LevelWarn})

	logger.Info("should be filtered")
	logger.Warn("should appear")

	got := buf.String()
	if strings.Contains(got, "should be filtered") {
		t.Errorf("info entry should have been filtered, got %q", got)
	}
	if !strings.Contains(got, "should appear") {
		t.Errorf("warn entry missing, got %q", got)
	}
}

func TestNewNopDiscards(t *testing.T) {
	logger := NewNop()
	// Must not panic and must accept any level.
	logger.Debug("discarded")
	logger.Error("discarded too")
}
