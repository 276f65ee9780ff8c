package logger

import (
	"io"
	"log/slog"
	"os"
	"path/filepath"

	lj "gopkg.in/natefinch/lumberjack.v2"
)

// Default rotation configuration constants
const (
	DefaultMaxSizeMB  = 10 // MB
	DefaultMaxBackups = 3  // number of backup files
	DefaultMaxAgeDays = 7  // days
)

// Config describes the diagnostic log destination. With an empty Dir and
// Path the logger writes colorized text to stderr; otherwise it writes to a
// rotated file. Rotation parameters follow lumberjack semantics.
type Config struct {
	Dir        string // base directory; file becomes Dir/statewatch.log
	Path       string // explicit file path overrides Dir
	Level      string // debug, info, warn, error (default info)
	MaxSizeMB  int    // megabytes before rotation (default 10)
	MaxBackups int    // number of backups to keep (default 3)
	MaxAgeDays int    // days to keep (default 7)
	Compress   bool   // gzip rotated files
}

// New builds the slog.Logger used as the observer's diagnostic side channel.
// The returned closer is non-nil when a rotated file is in use.
func New(c Config) (*slog.Logger, io.Closer, error) {
	opts := &slog.HandlerOptions{Level: parseLevel(c.Level)}

	path := c.Path
	if path == "" && c.Dir != "" {
		path = filepath.Join(c.Dir, "statewatch.log")
	}
	if path == "" {
		return slog.New(NewColorTextHandler(os.Stderr, opts, true)), nil, nil
	}

	w := &lj.Logger{
		Filename:   path,
		MaxSize:    valOr(c.MaxSizeMB, DefaultMaxSizeMB),
		MaxBackups: valOr(c.MaxBackups, DefaultMaxBackups),
		MaxAge:     valOr(c.MaxAgeDays, DefaultMaxAgeDays),
		Compress:   c.Compress,
	}
	return slog.New(slog.NewTextHandler(w, opts)), w, nil
}

func parseLevel(s string) slog.Level {
	switch s {
	case "debug":
		return slog.LevelDebug
	case "warn":
		return slog.LevelWarn
	case "error":
		return slog.LevelError
	default:
		return slog.LevelInfo
	}
}

func valOr(v int, def int) int {
	if v <= 0 {
		return def
	}
	return v
}
