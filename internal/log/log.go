// Package log holds the process-wide logger.
package log

import (
	"io"
	"os"
	"path/filepath"

	"github.com/natefinch/lumberjack"
	"github.com/sirupsen/logrus"
)

// Log is the shared logger. It writes to stderr until Init redirects it.
var Log = logrus.New()

// Options controls where log lines go
type Options struct {
	Level string
	// File, when set, receives rotated log output instead of stderr.
	// The TUI owns the terminal, so it always logs to a file.
	File       string
	MaxSizeMB  int
	MaxBackups int
}

// Init configures Log from opts
func Init(opts Options) {
	level, err := logrus.ParseLevel(opts.Level)
	if err != nil {
		level = logrus.InfoLevel
	}
	Log.SetLevel(level)
	Log.SetFormatter(&logrus.TextFormatter{
		FullTimestamp:   true,
		TimestampFormat: "2006-01-02T15:04:05.000Z07:00",
	})

	if opts.File == "" {
		Log.SetOutput(os.Stderr)
		return
	}

	if err := os.MkdirAll(filepath.Dir(opts.File), 0755); err != nil {
		Log.SetOutput(os.Stderr)
		Log.WithError(err).Warn("log dir unavailable, logging to stderr")
		return
	}

	maxSize := opts.MaxSizeMB
	if maxSize <= 0 {
		maxSize = 5
	}
	Log.SetOutput(&lumberjack.Logger{
		Filename:   opts.File,
		MaxSize:    maxSize,
		MaxBackups: opts.MaxBackups,
		Compress:   false,
	})
}

// Discard silences the logger; tests use it to keep output clean.
func Discard() {
	Log.SetOutput(io.Discard)
}
