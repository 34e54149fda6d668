// Package logging writes the per-session structured log file.
package logging

import (
	"fmt"
	"io"
	"log/slog"
	"os"
	"path/filepath"
	"time"
)

// SessionLog is an open session log file and the logger writing to it
type SessionLog struct {
	Logger *slog.Logger
	Path   string
	file   *os.File
}

// Dir returns the log directory (~/.spiffs-uploader/logs)
func Dir() (string, error) {
	home, err := os.UserHomeDir()
	if err != nil {
		return "", fmt.Errorf("failed to get home directory: %w", err)
	}
	return filepath.Join(home, ".spiffs-uploader", "logs"), nil
}

// Open creates ~/.spiffs-uploader/logs/session-{timestamp}.log and returns a
// JSON logger writing to it. Debug lowers the level so tool output is kept.
func Open(debug bool) (*SessionLog, error) {
	dir, err := Dir()
	if err != nil {
		return nil, err
	}
	return OpenIn(dir, debug)
}

// OpenIn is Open with an explicit directory
func OpenIn(dir string, debug bool) (*SessionLog, error) {
	if err := os.MkdirAll(dir, 0755); err != nil {
		return nil, fmt.Errorf("failed to create log directory: %w", err)
	}

	path := filepath.Join(dir, fmt.Sprintf("session-%s.log", time.Now().Format("20060102-150405")))
	f, err := os.OpenFile(path, os.O_CREATE|os.O_WRONLY|os.O_APPEND, 0644)
	if err != nil {
		return nil, fmt.Errorf("failed to create log file: %w", err)
	}

	return &SessionLog{
		Logger: New(f, debug),
		Path:   path,
		file:   f,
	}, nil
}

// New returns a JSON logger on w
func New(w io.Writer, debug bool) *slog.Logger {
	level := slog.LevelInfo
	if debug {
		level = slog.LevelDebug
	}
	return slog.New(slog.NewJSONHandler(w, &slog.HandlerOptions{Level: level}))
}

// Discard returns a logger that drops everything
func Discard() *SessionLog {
	return &SessionLog{Logger: slog.New(slog.NewTextHandler(io.Discard, nil))}
}

// Close closes the log file
func (s *SessionLog) Close() error {
	if s == nil || s.file == nil {
		return nil
	}
	err := s.file.Close()
	s.file = nil
	return err
}
