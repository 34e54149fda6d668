package logging

import (
	"bufio"
	"bytes"
	"encoding/json"
	"os"
	"path/filepath"
	"strings"
	"testing"
)

func TestOpenIn_WritesJSONLines(t *testing.T) {
	dir := filepath.Join(t.TempDir(), "logs")

	sl, err := OpenIn(dir, false)
	if err != nil {
		t.Fatalf("OpenIn() error: %v", err)
	}
	if !strings.HasPrefix(filepath.Base(sl.Path), "session-") || filepath.Ext(sl.Path) != ".log" {
		t.Errorf("unexpected log path %s", sl.Path)
	}

	sl.Logger.Info("probe finished", "run_id", "abc", "action", "probe")
	sl.Logger.Debug("Command stdout", "run_id", "abc")
	if err := sl.Close(); err != nil {
		t.Fatalf("Close() error: %v", err)
	}

	f, err := os.Open(sl.Path)
	if err != nil {
		t.Fatal(err)
	}
	defer f.Close()

	var lines []map[string]interface{}
	sc := bufio.NewScanner(f)
	for sc.Scan() {
		var entry map[string]interface{}
		if err := json.Unmarshal(sc.Bytes(), &entry); err != nil {
			t.Fatalf("invalid JSON line %q: %v", sc.Text(), err)
		}
		lines = append(lines, entry)
	}

	// Debug line is filtered at info level
	if len(lines) != 1 {
		t.Fatalf("got %d lines, want 1", len(lines))
	}
	if lines[0]["msg"] != "probe finished" || lines[0]["run_id"] != "abc" {
		t.Errorf("unexpected entry %v", lines[0])
	}
}

func TestNew_DebugLevel(t *testing.T) {
	var buf bytes.Buffer
	New(&buf, true).Debug("tool output")
	if !strings.Contains(buf.String(), "tool output") {
		t.Errorf("debug logger dropped debug line: %q", buf.String())
	}
}

func TestDiscardAndDoubleClose(t *testing.T) {
	sl := Discard()
	sl.Logger.Error("ignored")
	if err := sl.Close(); err != nil {
		t.Errorf("Close() on discard logger: %v", err)
	}

	opened, err := OpenIn(t.TempDir(), true)
	if err != nil {
		t.Fatal(err)
	}
	if err := opened.Close(); err != nil {
		t.Fatal(err)
	}
	if err := opened.Close(); err != nil {
		t.Errorf("second Close() = %v, want nil", err)
	}
}
