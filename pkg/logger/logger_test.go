package logger

import (
	"bytes"
	"os"
	"strings"
	"testing"
	"time"
)

func TestLevelString(t *testing.T) {
	tests := []struct {
		level    Level
		expected string
	}{
		{DEBUG, "DEBUG"},
		{INFO, "INFO"},
		{WARN, "WARN"},
		{ERROR, "ERROR"},
		{FATAL, "FATAL"},
		{Level(99), "UNKNOWN"},
	}

	for _, test := range tests {
		if result := test.level.String(); result != test.expected {
			t.Errorf("Level(%d).String() = %s, expected %s", test.level, result, test.expected)
		}
	}
}

func TestDefaultConfig(t *testing.T) {
	config := DefaultConfig()

	if config.Level != INFO {
		t.Errorf("Default level should be INFO, got %v", config.Level)
	}
	if config.Prefix != "prism" {
		t.Errorf("Default prefix should be 'prism', got %s", config.Prefix)
	}
	if config.Output != os.Stdout {
		t.Error("Default output should be os.Stdout")
	}
	if config.TimeFmt != time.RFC3339 {
		t.Error("Default time format should be time.RFC3339")
	}
	if config.UseJSON {
		t.Error("Default should not use JSON")
	}
}

func TestNewLoggerWithNilConfig(t *testing.T) {
	l := NewLogger(nil)

	if l.level != INFO {
		t.Errorf("logger level should be INFO, got %v", l.level)
	}
	if l.prefix != "prism" {
		t.Errorf("logger prefix should be 'prism', got %s", l.prefix)
	}
	if l.output != os.Stdout {
		t.Error("logger output should be os.Stdout")
	}
}

func TestLogRespectsLevelFloor(t *testing.T) {
	var buf bytes.Buffer
	l := NewLogger(&Config{Level: WARN, Prefix: "test", Output: &buf, TimeFmt: time.RFC3339})

	l.Info("should not appear")
	l.Warn("should appear")

	out := buf.String()
	if strings.Contains(out, "should not appear") {
		t.Error("Info message logged below the WARN floor")
	}
	if !strings.Contains(out, "should appear") {
		t.Error("Warn message was not logged")
	}
}

func TestWithFieldsAppendsKeyValuePairsToTextOutput(t *testing.T) {
	var buf bytes.Buffer
	base := NewLogger(&Config{Level: INFO, Prefix: "test", Output: &buf, TimeFmt: time.RFC3339})
	derived := base.WithFields(map[string]interface{}{"chain": "voter-3"})

	derived.Info("block inserted")

	out := buf.String()
	if !strings.Contains(out, "chain=voter-3") {
		t.Errorf("expected bound field in output, got %q", out)
	}
}

func TestWithFieldsDoesNotMutateParentLogger(t *testing.T) {
	var buf bytes.Buffer
	base := NewLogger(&Config{Level: INFO, Prefix: "test", Output: &buf, TimeFmt: time.RFC3339})
	_ = base.WithFields(map[string]interface{}{"chain": "voter-3"})

	base.Info("plain message")

	if strings.Contains(buf.String(), "chain=voter-3") {
		t.Error("WithFields leaked its fields back onto the parent logger")
	}
}

func TestJSONOutputIncludesBoundFields(t *testing.T) {
	var buf bytes.Buffer
	base := NewLogger(&Config{Level: INFO, Prefix: "test", Output: &buf, TimeFmt: time.RFC3339, UseJSON: true})
	derived := base.WithFields(map[string]interface{}{"peer": "abc123"})

	derived.Info("ping received")

	out := buf.String()
	if !strings.Contains(out, `"peer":"abc123"`) {
		t.Errorf("expected JSON output to carry bound field, got %q", out)
	}
}
