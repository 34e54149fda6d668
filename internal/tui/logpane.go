package tui

import (
	"strings"

	"github.com/charmbracelet/lipgloss"
	"github.com/charmbracelet/x/ansi"

	"github.com/m5dial/spiffs-uploader/internal/model"
)

// LogPane keeps the event log shown under the actions. Info events are only
// rendered while debug output is on.
type LogPane struct {
	debug  bool
	events []model.Event
	buffer int // Max events to keep
}

// NewLogPane creates a log pane
func NewLogPane(debug bool) LogPane {
	return LogPane{
		debug:  debug,
		buffer: 500,
	}
}

// Debug reports whether info events are shown
func (p *LogPane) Debug() bool {
	return p.debug
}

// ToggleDebug flips info event visibility
func (p *LogPane) ToggleDebug() {
	p.debug = !p.debug
}

// Add appends events, dropping the oldest past the buffer size
func (p *LogPane) Add(events ...model.Event) {
	p.events = append(p.events, events...)
	if len(p.events) > p.buffer {
		p.events = p.events[len(p.events)-p.buffer:]
	}
}

// Clear drops all events
func (p *LogPane) Clear() {
	p.events = nil
}

// Visible returns the events rendered at the current debug setting
func (p *LogPane) Visible() []model.Event {
	var out []model.Event
	for _, e := range p.events {
		if e.Visible(p.debug) {
			out = append(out, e)
		}
	}
	return out
}

func levelStyle(level model.EventLevel) lipgloss.Style {
	switch level {
	case model.EventSuccess:
		return SuccessStyle
	case model.EventError:
		return ErrorStyle
	default:
		return DimStyle
	}
}

// Render renders the most recent visible lines that fit in the pane
func (p *LogPane) Render(width, height int) string {
	title := PanelTitleStyle.Render("Log")
	if p.debug {
		title += " " + WarningStyle.Render("(debug)")
	}

	// Available height for content (minus title and borders)
	contentHeight := height - 3
	if contentHeight < 1 {
		contentHeight = 1
	}
	maxLen := width - 4
	if maxLen < 10 {
		maxLen = 10
	}

	var lines []string
	for _, e := range p.Visible() {
		style := levelStyle(e.Level)
		for _, raw := range strings.Split(e.String(), "\n") {
			if raw == "" {
				continue
			}
			if ansi.StringWidth(raw) > maxLen {
				raw = ansi.Truncate(raw, maxLen, "...")
			}
			lines = append(lines, style.Render(raw))
		}
	}
	if len(lines) > contentHeight {
		lines = lines[len(lines)-contentHeight:]
	}
	if len(lines) == 0 {
		lines = append(lines, DimStyle.Render("No activity yet."))
	}
	for len(lines) < contentHeight {
		lines = append(lines, "")
	}

	return LogPaneStyle.
		Width(width - 2).
		Render(title + "\n" + strings.Join(lines, "\n"))
}
