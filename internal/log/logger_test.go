package log

import (
	"bytes"
	"errors"
	"log/slog"
	"strings"
	"testing"
)

func TestLoggerAddsComponent(t *testing.T) {
	var buf bytes.Buffer
	l := New(Config{Level: slog.LevelDebug, Output: &buf, NoColor: true, Component: ComponentSheets})
	l.Info("Appended row", FieldRowRef, "Sheet1!A2:F2")
	out := buf.String()
	if !strings.Contains(out, "component=sheets") || !strings.Contains(out, "row_ref=Sheet1!A2:F2") {
		t.Fatalf("unexpected log line: %q", out)
	}

	buf.Reset()
	l.WithComponent(ComponentWorker).Warn("Sync failed")
	if !strings.Contains(buf.String(), "component=worker") {
		t.Fatalf("component not switched: %q", buf.String())
	}
}

func TestLoggerRespectsLevel(t *testing.T) {
	var buf bytes.Buffer
	l := New(Config{Level: slog.LevelWarn, Output: &buf, NoColor: true})
	l.Info("hidden")
	if buf.Len() != 0 {
		t.Fatalf("info logged at warn level: %q", buf.String())
	}
}

func TestParseLevel(t *testing.T) {
	cases := map[string]slog.Level{
		"debug": slog.LevelDebug,
		"INFO":  slog.LevelInfo,
		"warn":  slog.LevelWarn,
		"error": slog.LevelError,
		"":      slog.LevelWarn,
		"bogus": slog.LevelWarn,
	}
	for in, want := range cases {
		if got := ParseLevel(in, slog.LevelWarn); got != want {
			t.Errorf("ParseLevel(%q) = %v, want %v", in, got, want)
		}
	}
}

func TestLogFields(t *testing.T) {
	f := NewFields().WithOperation(OpAppend).WithError(errors.New("boom")).WithError(nil)
	if f[FieldOperation] != OpAppend || f[FieldError] != "boom" {
		t.Fatalf("fields = %v", f)
	}
	if got := len(f.ToSlice()); got != 4 {
		t.Fatalf("slice length = %d, want 4", got)
	}
}
