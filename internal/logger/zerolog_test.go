package logger

import (
	"bytes"
	"encoding/json"
	"errors"
	"strings"
	"testing"

	"github.com/rs/zerolog"
)

func TestZerologAdapterFields(t *testing.T) {
	var buf bytes.Buffer
	log := NewZerolog(&buf, zerolog.InfoLevel)

	log.Info("Canny", "edges detected", map[string]interface{}{
		"edge_pixels": 42,
	})

	var entry map[string]interface{}
	if err := json.Unmarshal(buf.Bytes(), &entry); err != nil {
		t.Fatalf("log line is not JSON: %v (%q)", err, buf.String())
	}

	if entry["component"] != "Canny" {
		t.Errorf("component = %v, want Canny", entry["component"])
	}
	if entry["message"] != "edges detected" {
		t.Errorf("message = %v, want %q", entry["message"], "edges detected")
	}
	if entry["edge_pixels"] != float64(42) {
		t.Errorf("edge_pixels = %v, want 42", entry["edge_pixels"])
	}
	if entry["level"] != "info" {
		t.Errorf("level = %v, want info", entry["level"])
	}
}

func TestZerologAdapterError(t *testing.T) {
	var buf bytes.Buffer
	log := NewZerolog(&buf, zerolog.InfoLevel)

	log.Error("ImageLoader", errors.New("no such file"), map[string]interface{}{"path": "a.png"})

	out := buf.String()
	for _, want := range []string{`"error":"no such file"`, `"path":"a.png"`, `"level":"error"`} {
		if !strings.Contains(out, want) {
			t.Errorf("output %q missing %s", out, want)
		}
	}
}

func TestZerologAdapterLevelFiltering(t *testing.T) {
	var buf bytes.Buffer
	log := NewZerolog(&buf, zerolog.WarnLevel)

	log.Debug("Coordinator", "hidden", nil)
	log.Info("Coordinator", "hidden", nil)
	if buf.Len() != 0 {
		t.Fatalf("expected no output below warn level, got %q", buf.String())
	}

	log.Warning("Coordinator", "shown", nil)
	if !strings.Contains(buf.String(), "shown") {
		t.Errorf("warning not written: %q", buf.String())
	}
}

func TestNewNop(t *testing.T) {
	log := NewNop()
	log.Info("Test", "discarded", map[string]interface{}{"k": 1})
	log.Error("Test", errors.New("discarded"), nil)
}

func TestParseLevel(t *testing.T) {
	tests := []struct {
		in      string
		want    zerolog.Level
		wantErr bool
	}{
		{"", zerolog.InfoLevel, false},
		{"debug", zerolog.DebugLevel, false},
		{"INFO", zerolog.InfoLevel, false},
		{"warn", zerolog.WarnLevel, false},
		{"warning", zerolog.WarnLevel, false},
		{"error", zerolog.ErrorLevel, false},
		{"off", zerolog.Disabled, false},
		{"verbose", zerolog.InfoLevel, true},
	}

	for _, tt := range tests {
		got, err := ParseLevel(tt.in)
		if (err != nil) != tt.wantErr {
			t.Errorf("ParseLevel(%q) error = %v, wantErr %v", tt.in, err, tt.wantErr)
		}
		if got != tt.want {
			t.Errorf("ParseLevel(%q) = %v, want %v", tt.in, got, tt.want)
		}
	}
}
