package process

import (
	"context"
	"errors"
	"os/exec"
	"runtime"
	"testing"
)

func requireShell(t *testing.T) string {
	t.Helper()
	if runtime.GOOS == "windows" {
		t.Skip("shell-based runner tests need a POSIX sh")
	}
	sh, err := exec.LookPath("sh")
	if err != nil {
		t.Skip("sh not available")
	}
	return sh
}

func TestExecRunner_Success(t *testing.T) {
	sh := requireShell(t)

	res, err := ExecRunner{}.Run(context.Background(), []string{sh, "-c", "echo 'Detected flash size: 8MB'; echo warn >&2"})
	if err != nil {
		t.Fatalf("Run() error: %v", err)
	}
	if res.ExitCode != 0 {
		t.Errorf("ExitCode = %d, want 0", res.ExitCode)
	}
	if res.Stdout != "Detected flash size: 8MB\n" {
		t.Errorf("Stdout = %q", res.Stdout)
	}
	if res.Stderr != "warn\n" {
		t.Errorf("Stderr = %q", res.Stderr)
	}
}

func TestExecRunner_NonZeroExit(t *testing.T) {
	sh := requireShell(t)

	res, err := ExecRunner{}.Run(context.Background(), []string{sh, "-c", "echo 'A fatal error occurred' >&2; exit 2"})
	if !errors.Is(err, ErrNonZeroExit) {
		t.Fatalf("Run() error = %v, want ErrNonZeroExit", err)
	}
	if res.ExitCode != 2 {
		t.Errorf("ExitCode = %d, want 2", res.ExitCode)
	}
	if got := res.Diagnostic(); got != "A fatal error occurred" {
		t.Errorf("Diagnostic() = %q", got)
	}
}

func TestExecRunner_NotFound(t *testing.T) {
	res, err := ExecRunner{}.Run(context.Background(), []string{"definitely-not-a-real-tool-7f3a"})
	if !errors.Is(err, ErrToolNotFound) {
		t.Fatalf("Run() error = %v, want ErrToolNotFound", err)
	}
	if res.ExitCode != -1 {
		t.Errorf("ExitCode = %d, want -1", res.ExitCode)
	}

	if _, err := (ExecRunner{}).Run(context.Background(), nil); !errors.Is(err, ErrToolNotFound) {
		t.Errorf("Run(nil) error = %v, want ErrToolNotFound", err)
	}
}

func TestExecRunner_Cancelled(t *testing.T) {
	sh := requireShell(t)

	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	_, err := ExecRunner{}.Run(ctx, []string{sh, "-c", "sleep 5"})
	if err == nil {
		t.Fatal("Run() with cancelled context returned nil error")
	}
	if errors.Is(err, ErrNonZeroExit) {
		t.Errorf("cancelled run reported as non-zero exit: %v", err)
	}
}

func TestResultCommandLine(t *testing.T) {
	r := Result{Command: []string{"mkspiffs", "-c", "/my data", "out.bin", ""}}
	want := `mkspiffs -c "/my data" out.bin ""`
	if got := r.CommandLine(); got != want {
		t.Errorf("CommandLine() = %q, want %q", got, want)
	}
}

func TestStripANSI(t *testing.T) {
	tests := []struct {
		name string
		in   string
		want string
	}{
		{"plain", "Connecting....\n", "Connecting....\n"},
		{"color", "\x1b[1;31mA fatal error\x1b[0m", "A fatal error"},
		{"progress redraw", "Writing at 0x00290000... (10 %)\rWriting at 0x002a0000... (20 %)\n", "Writing at 0x002a0000... (20 %)\n"},
		{"crlf", "line one\r\nline two\r\n", "line one\nline two\n"},
		{"stray escape", "abc\x1bdef", "abcdef"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := StripANSI(tt.in); got != tt.want {
				t.Errorf("StripANSI(%q) = %q, want %q", tt.in, got, tt.want)
			}
		})
	}
}
