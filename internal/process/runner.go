package process

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"io/fs"
	"os/exec"
	"path/filepath"
	"strings"
)

var (
	ErrToolNotFound = errors.New("external tool not found")
	ErrNonZeroExit  = errors.New("external tool exited with non-zero status")
)

// Result holds everything captured from one external tool invocation
type Result struct {
	Command  []string
	Stdout   string
	Stderr   string
	ExitCode int // -1 when the process never ran or was killed
}

// CommandLine returns the command as a single space-joined string, quoting
// arguments that contain spaces
func (r Result) CommandLine() string {
	parts := make([]string, len(r.Command))
	for i, a := range r.Command {
		if a == "" || strings.ContainsAny(a, " \t") {
			a = `"` + a + `"`
		}
		parts[i] = a
	}
	return strings.Join(parts, " ")
}

// Diagnostic returns the last non-empty line of stderr, falling back to stdout
func (r Result) Diagnostic() string {
	for _, s := range []string{r.Stderr, r.Stdout} {
		lines := strings.Split(strings.TrimSpace(StripANSI(s)), "\n")
		for i := len(lines) - 1; i >= 0; i-- {
			if line := strings.TrimSpace(lines[i]); line != "" {
				return line
			}
		}
	}
	return ""
}

// Runner runs a single external command to completion
type Runner interface {
	Run(ctx context.Context, argv []string) (Result, error)
}

// ExecRunner runs commands with os/exec, inheriting the caller's environment
// and working directory unless Dir is set
type ExecRunner struct {
	Dir string
}

// Run blocks until argv exits or ctx is cancelled. A non-zero exit is reported
// as ErrNonZeroExit with the Result still populated.
func (r ExecRunner) Run(ctx context.Context, argv []string) (Result, error) {
	res := Result{Command: argv, ExitCode: -1}
	if len(argv) == 0 {
		return res, fmt.Errorf("%w: empty command", ErrToolNotFound)
	}

	cmd := exec.CommandContext(ctx, argv[0], argv[1:]...)
	cmd.Dir = r.Dir

	var stdout, stderr bytes.Buffer
	cmd.Stdout = &stdout
	cmd.Stderr = &stderr

	err := cmd.Run()
	res.Stdout = stdout.String()
	res.Stderr = stderr.String()
	if cmd.ProcessState != nil {
		res.ExitCode = cmd.ProcessState.ExitCode()
	}

	if err == nil {
		return res, nil
	}

	name := filepath.Base(argv[0])
	var exitErr *exec.ExitError
	switch {
	case errors.As(err, &exitErr):
		if ctxErr := ctx.Err(); ctxErr != nil {
			return res, fmt.Errorf("%s: %w", name, ctxErr)
		}
		return res, fmt.Errorf("%s exited with status %d: %w", name, res.ExitCode, ErrNonZeroExit)
	case errors.Is(err, exec.ErrNotFound), errors.Is(err, fs.ErrNotExist):
		return res, fmt.Errorf("%w: %s", ErrToolNotFound, argv[0])
	default:
		return res, fmt.Errorf("failed to start %s: %w", name, err)
	}
}
