package log

import (
	"bytes"
	"errors"
	"os"
	"path/filepath"
	"strings"
	"testing"
)

func TestPushIndent(t *testing.T) {
	var buf bytes.Buffer
	SetOutput(&buf, "debug")

	Info().Msg("outer")
	pop := PushIndent()
	Info().Msg("inner")
	pop()
	pop()
	Info().Msg("after")

	if Indent() != 0 {
		t.Fatalf("indent = %d, want 0", Indent())
	}

	lines := strings.Split(strings.TrimSpace(buf.String()), "\n")
	if len(lines) != 3 {
		t.Fatalf("got %d lines, want 3:\n%s", len(lines), buf.String())
	}
	if !strings.Contains(lines[1], "  inner") {
		t.Errorf("inner message not indented: %q", lines[1])
	}
	if strings.Contains(lines[2], "  after") {
		t.Errorf("message after pop still indented: %q", lines[2])
	}
}

func TestLevelFilter(t *testing.T) {
	var buf bytes.Buffer
	SetOutput(&buf, "warn")

	Info().Msg("hidden")
	Warn().Str("platform", "android").Msg("shown")

	out := buf.String()
	if strings.Contains(out, "hidden") {
		t.Errorf("info message written at warn level: %q", out)
	}
	if !strings.Contains(out, "shown") || !strings.Contains(out, "platform=android") {
		t.Errorf("warn message missing: %q", out)
	}
}

func TestParseLevel(t *testing.T) {
	tests := map[string]string{
		"debug": "debug",
		"WARN":  "warn",
		"error": "error",
		"":      "info",
		"bogus": "info",
	}
	for in, want := range tests {
		if got := parseLevel(in).String(); got != want {
			t.Errorf("parseLevel(%q) = %s, want %s", in, got, want)
		}
	}
}

func TestInitClosesPreviousFile(t *testing.T) {
	dir := t.TempDir()
	defer SetOutput(os.Stdout, "info")

	if err := Init(filepath.Join(dir, "first.log"), "info"); err != nil {
		t.Fatal(err)
	}
	first := logFile
	if first == nil {
		t.Fatal("log file not kept after Init")
	}

	if err := Init(filepath.Join(dir, "logs", "second.log"), "info"); err != nil {
		t.Fatal(err)
	}
	if _, err := first.Write([]byte("x")); !errors.Is(err, os.ErrClosed) {
		t.Errorf("first log file still open: write err = %v", err)
	}

	Info().Msg("to second")
	if err := Close(); err != nil {
		t.Fatal(err)
	}
	if logFile != nil {
		t.Error("Close did not reset the log file")
	}
	data, err := os.ReadFile(filepath.Join(dir, "logs", "second.log"))
	if err != nil {
		t.Fatal(err)
	}
	if !strings.Contains(string(data), "to second") {
		t.Errorf("second log file = %q", data)
	}
}
