package logger

import (
	"bytes"
	"encoding/json"
	"strings"
	"testing"
)

func TestNew_JSON_IncludesFieldsAndApp(t *testing.T) {
	var buf bytes.Buffer
	l := New(Options{Level: Info, Format: FormatJSON, App: "pet-wellness", Output: &buf})

	l.With(map[string]any{"pet_id": "p1"}).Info("report computed", map[string]any{"windows": 8, "": "ignored"})

	var entry map[string]any
	if err := json.Unmarshal(bytes.TrimSpace(buf.Bytes()), &entry); err != nil {
		t.Fatalf("invalid json line %q: %v", buf.String(), err)
	}
	if entry["msg"] != "report computed" {
		t.Fatalf("msg=%v", entry["msg"])
	}
	if entry["app"] != "pet-wellness" || entry["pet_id"] != "p1" {
		t.Fatalf("missing base fields: %v", entry)
	}
	if entry["windows"] != float64(8) {
		t.Fatalf("windows=%v", entry["windows"])
	}
	if _, ok := entry[""]; ok {
		t.Fatalf("empty key should be dropped")
	}
}

func TestNew_LevelFilters(t *testing.T) {
	var buf bytes.Buffer
	l := New(Options{Level: Warn, Format: FormatText, Output: &buf})

	l.Debug("debug", nil)
	l.Info("info", nil)
	if buf.Len() != 0 {
		t.Fatalf("expected nothing below warn, got %q", buf.String())
	}

	l.Warn("careful", map[string]any{"k": "v"})
	if !strings.Contains(buf.String(), "careful") || !strings.Contains(buf.String(), "k=v") {
		t.Fatalf("unexpected text output %q", buf.String())
	}
}

func TestParseLevelAndFormat(t *testing.T) {
	if ParseLevel("WARNING") != Warn || ParseLevel("") != Info || ParseLevel("nope") != Info {
		t.Fatalf("ParseLevel mismatch")
	}
	if ParseFormat(" JSON ") != FormatJSON || ParseFormat("") != FormatText {
		t.Fatalf("ParseFormat mismatch")
	}
}
