package logging

import (
	"bytes"
	"encoding/json"
	"strings"
	"testing"
	"time"
)

func TestInitLoggerJSONFormat(t *testing.T) {
	var buf bytes.Buffer
	InitLoggerTo(&buf, LevelInfo, FormatJSON)
	t.Cleanup(func() { InitLogger(LevelWarn, FormatText) })

	Info("test message", "key", "value")

	var entry map[string]any
	if err := json.Unmarshal(buf.Bytes(), &entry); err != nil {
		t.Fatalf("log output is not JSON: %v", err)
	}
	if entry["msg"] != "test message" || entry["key"] != "value" {
		t.Errorf("unexpected entry: %v", entry)
	}
}

func TestLevelFiltering(t *testing.T) {
	var buf bytes.Buffer
	InitLoggerTo(&buf, LevelError, FormatText)
	t.Cleanup(func() { InitLogger(LevelWarn, FormatText) })

	Debug("hidden")
	Info("hidden")
	Warn("hidden")
	Error("visible")

	out := buf.String()
	if strings.Contains(out, "hidden") {
		t.Errorf("suppressed levels leaked: %q", out)
	}
	if !strings.Contains(out, "visible") {
		t.Errorf("error level missing: %q", out)
	}
}

func TestConversionFields(t *testing.T) {
	var buf bytes.Buffer
	InitLoggerTo(&buf, LevelInfo, FormatJSON)
	t.Cleanup(func() { InitLogger(LevelWarn, FormatText) })

	Conversion("markdown", "html", 120, 340, 2, 5*time.Millisecond)

	var entry map[string]any
	if err := json.Unmarshal(buf.Bytes(), &entry); err != nil {
		t.Fatal(err)
	}
	if entry["from"] != "markdown" || entry["to"] != "html" {
		t.Errorf("format fields missing: %v", entry)
	}
	if entry["warnings"] != float64(2) {
		t.Errorf("warnings = %v, want 2", entry["warnings"])
	}
}
