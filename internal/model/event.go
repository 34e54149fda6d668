package model

import (
	"log/slog"
	"time"
)

// EventLevel categorises a log event
type EventLevel string

const (
	EventSuccess EventLevel = "success"
	EventError   EventLevel = "error"
	EventInfo    EventLevel = "info"
)

// Tag returns the bracketed prefix shown in the log pane
func (l EventLevel) Tag() string {
	switch l {
	case EventSuccess:
		return "[SUCCESS]"
	case EventError:
		return "[ERROR]"
	default:
		return "[INFO]"
	}
}

// SlogLevel maps the event level onto the session log file levels.
// Info events are tool chatter, so they go to debug.
func (l EventLevel) SlogLevel() slog.Level {
	switch l {
	case EventError:
		return slog.LevelError
	case EventSuccess:
		return slog.LevelInfo
	default:
		return slog.LevelDebug
	}
}

// Event is a single entry in the user-visible log
type Event struct {
	Level     EventLevel
	Message   string
	Action    string // "probe", "build", "upload"
	RunID     string // groups events from one action
	Timestamp time.Time
}

// String formats the event as "[LEVEL] 2006-01-02 15:04:05: message"
func (e Event) String() string {
	return e.Level.Tag() + " " + e.Timestamp.Format("2006-01-02 15:04:05") + ": " + e.Message
}

// Visible reports whether the event is shown when debug output is off
func (e Event) Visible(debug bool) bool {
	return debug || e.Level != EventInfo
}

// CountLevel returns how many events have the given level
func CountLevel(events []Event, level EventLevel) int {
	n := 0
	for _, e := range events {
		if e.Level == level {
			n++
		}
	}
	return n
}
