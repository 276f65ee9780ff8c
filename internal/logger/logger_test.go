package logger

import (
	"bytes"
	"log/slog"
	"os"
	"path/filepath"
	"strings"
	"testing"
)

func TestNewStderrByDefault(t *testing.T) {
	lg, closer, err := New(Config{})
	if err != nil {
		t.Fatalf("New: %v", err)
	}
	if lg == nil {
		t.Fatal("expected logger")
	}
	if closer != nil {
		t.Fatal("stderr logger must not need closing")
	}
}

func TestNewFileLogger(t *testing.T) {
	dir := t.TempDir()
	lg, closer, err := New(Config{Dir: dir, Level: "debug"})
	if err != nil {
		t.Fatalf("New: %v", err)
	}
	if closer == nil {
		t.Fatal("file logger must return a closer")
	}
	lg.Info("hello", "subject", "counter")
	if err := closer.Close(); err != nil {
		t.Fatalf("close: %v", err)
	}

	b, err := os.ReadFile(filepath.Join(dir, "statewatch.log"))
	if err != nil {
		t.Fatalf("read log: %v", err)
	}
	if !strings.Contains(string(b), "counter") {
		t.Errorf("log output missing attribute: %s", b)
	}
}

func TestExplicitPathOverridesDir(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "custom.log")
	lg, closer, err := New(Config{Dir: dir, Path: path})
	if err != nil {
		t.Fatalf("New: %v", err)
	}
	lg.Warn("warned")
	_ = closer.Close()
	if _, err := os.Stat(path); err != nil {
		t.Fatalf("expected log at custom path: %v", err)
	}
}

func TestParseLevel(t *testing.T) {
	cases := map[string]slog.Level{
		"debug": slog.LevelDebug,
		"info":  slog.LevelInfo,
		"warn":  slog.LevelWarn,
		"error": slog.LevelError,
		"":      slog.LevelInfo,
		"junk":  slog.LevelInfo,
	}
	for in, want := range cases {
		if got := parseLevel(in); got != want {
			t.Errorf("parseLevel(%q) = %v, want %v", in, got, want)
		}
	}
}

func TestColorTextHandlerColorsLevel(t *testing.T) {
	var buf bytes.Buffer
	lg := slog.New(NewColorTextHandler(&buf, nil, true))
	lg.Error("broken")
	out := buf.String()
	if !strings.Contains(out, "\033[31m") {
		t.Errorf("expected red color code in output: %q", out)
	}
	if !strings.Contains(out, "broken") {
		t.Errorf("expected message in output: %q", out)
	}
}
