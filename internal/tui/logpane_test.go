package tui

import (
	"fmt"
	"strings"
	"testing"
	"time"
	"unicode/utf8"

	"github.com/charmbracelet/lipgloss"

	"github.com/m5dial/spiffs-uploader/internal/model"
)

func TestLogPaneBuffer(t *testing.T) {
	p := NewLogPane(true)
	for i := 0; i < 510; i++ {
		p.Add(model.Event{Level: model.EventInfo, Message: fmt.Sprintf("line %d", i)})
	}

	visible := p.Visible()
	if len(visible) != 500 {
		t.Fatalf("kept %d events, want 500", len(visible))
	}
	if visible[0].Message != "line 10" {
		t.Errorf("oldest kept = %q, want line 10", visible[0].Message)
	}

	p.Clear()
	if len(p.Visible()) != 0 {
		t.Error("Clear() left events behind")
	}
}

func TestLogPaneRender(t *testing.T) {
	ts := time.Date(2024, 5, 1, 12, 0, 0, 0, time.UTC)

	tests := []struct {
		name    string
		debug   bool
		events  []model.Event
		want    []string
		notWant []string
	}{
		{
			name: "empty",
			want: []string{"Log", "No activity yet."},
		},
		{
			name: "info hidden without debug",
			events: []model.Event{
				{Level: model.EventInfo, Message: "Command: mkspiffs -c data", Timestamp: ts},
				{Level: model.EventSuccess, Message: "SPIFFS image created successfully!", Timestamp: ts},
			},
			want:    []string{"[SUCCESS] 2024-05-01 12:00:00: SPIFFS image created successfully!"},
			notWant: []string{"Command:", "(debug)"},
		},
		{
			name:  "debug shows info",
			debug: true,
			events: []model.Event{
				{Level: model.EventInfo, Message: "Return code: 2", Timestamp: ts},
				{Level: model.EventError, Message: "Failed to connect", Timestamp: ts},
			},
			want: []string{"(debug)", "[INFO]", "Return code: 2", "[ERROR]"},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			p := NewLogPane(tt.debug)
			p.Add(tt.events...)
			out := p.Render(120, 12)

			for _, w := range tt.want {
				if !strings.Contains(out, w) {
					t.Errorf("render missing %q:\n%s", w, out)
				}
			}
			for _, nw := range tt.notWant {
				if strings.Contains(out, nw) {
					t.Errorf("render should not contain %q", nw)
				}
			}
		})
	}
}

func TestLogPaneRenderKeepsNewest(t *testing.T) {
	p := NewLogPane(false)
	for i := 0; i < 20; i++ {
		p.Add(model.Event{Level: model.EventError, Message: fmt.Sprintf("failure %02d", i)})
	}

	out := p.Render(80, 8)
	if !strings.Contains(out, "failure 19") {
		t.Error("newest event not rendered")
	}
	if strings.Contains(out, "failure 00") {
		t.Error("oldest event should scroll out")
	}
}

func TestLogPaneTruncatesByCell(t *testing.T) {
	p := NewLogPane(false)
	p.Add(model.Event{
		Level:   model.EventError,
		Message: "Failed to upload " + strings.Repeat("données/日本語/", 12) + "spiffs.bin",
	})

	out := p.Render(60, 6)
	if !utf8.ValidString(out) {
		t.Fatal("render split a multi-byte rune")
	}
	if !strings.Contains(out, "...") {
		t.Error("long line was not truncated")
	}
	for _, line := range strings.Split(out, "\n") {
		if w := lipgloss.Width(line); w > 60 {
			t.Errorf("line is %d cells wide, want at most 60: %q", w, line)
		}
	}
}
