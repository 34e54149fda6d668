// Package uploader implements the connect, build and upload actions. Each
// action takes the current session state and returns the next state plus the
// log events it produced; nothing is returned as an error.
package uploader

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"strings"
	"time"

	"github.com/google/uuid"

	"github.com/m5dial/spiffs-uploader/internal/esptool"
	"github.com/m5dial/spiffs-uploader/internal/mkspiffs"
	"github.com/m5dial/spiffs-uploader/internal/model"
	"github.com/m5dial/spiffs-uploader/internal/process"
)

var (
	ErrNotConnected = errors.New("no device connected")
	ErrNoPort       = errors.New("no serial port selected")
)

// ToolLocator resolves the external binaries. *process.Tools implements it.
type ToolLocator interface {
	FlashTool() ([]string, error)
	Packer() (string, error)
}

// Service runs the external tools on behalf of the UI and the CLI
type Service struct {
	Runner process.Runner
	Tools  ToolLocator
	Logger *slog.Logger
	Now    func() time.Time
}

// New creates a Service with an exec-based runner
func New(tools ToolLocator, logger *slog.Logger) *Service {
	if logger == nil {
		logger = slog.New(slog.NewTextHandler(io.Discard, nil))
	}
	return &Service{
		Runner: process.ExecRunner{},
		Tools:  tools,
		Logger: logger,
		Now:    time.Now,
	}
}

// recorder collects the events of one action and mirrors them to the log file
type recorder struct {
	ctx    context.Context
	action string
	runID  string
	now    func() time.Time
	logger *slog.Logger
	events []model.Event
}

func (s *Service) begin(ctx context.Context, action string) *recorder {
	now := s.Now
	if now == nil {
		now = time.Now
	}
	logger := s.Logger
	if logger == nil {
		logger = slog.New(slog.NewTextHandler(io.Discard, nil))
	}
	return &recorder{
		ctx:    ctx,
		action: action,
		runID:  uuid.NewString(),
		now:    now,
		logger: logger,
	}
}

func (r *recorder) add(level model.EventLevel, format string, args ...any) {
	msg := fmt.Sprintf(format, args...)
	r.events = append(r.events, model.Event{
		Level:     level,
		Message:   msg,
		Action:    r.action,
		RunID:     r.runID,
		Timestamp: r.now(),
	})
	r.logger.Log(r.ctx, level.SlogLevel(), msg,
		slog.String("action", r.action),
		slog.String("run_id", r.runID),
		slog.String("level", string(level)),
	)
}

func (r *recorder) info(format string, args ...any)    { r.add(model.EventInfo, format, args...) }
func (r *recorder) success(format string, args ...any) { r.add(model.EventSuccess, format, args...) }
func (r *recorder) fail(format string, args ...any)    { r.add(model.EventError, format, args...) }

// logResult records the captured process output as info events
func (r *recorder) logResult(res process.Result) {
	r.info("Command stdout: %s", strings.TrimSpace(process.StripANSI(res.Stdout)))
	r.info("Command stderr: %s", strings.TrimSpace(process.StripANSI(res.Stderr)))
	r.info("Return code: %d", res.ExitCode)
}

func command(prefix []string, args ...string) []string {
	argv := make([]string, 0, len(prefix)+len(args))
	argv = append(argv, prefix...)
	return append(argv, args...)
}

// failure joins err with the tool's last diagnostic line when it adds anything
func failure(err error, res process.Result) string {
	msg := err.Error()
	if d := res.Diagnostic(); d != "" && !strings.Contains(msg, d) {
		msg += ": " + d
	}
	return msg
}

// Probe runs `flash_id` on the selected port and parses the flash size.
// Success moves the session to Connected; any failure to Disconnected.
func (s *Service) Probe(ctx context.Context, st model.Session) (model.Session, []model.Event) {
	rec := s.begin(ctx, "probe")

	size, err := s.probe(ctx, rec, st.Port)
	if err != nil {
		rec.fail("Failed to connect to the device or detect flash size: %v", err)
		return st.WithProbeFailure(), rec.events
	}

	next := st.WithProbeSuccess(size)
	if end := int64(esptool.WriteOffset) + mkspiffs.ImageSize; end > size {
		rec.info("SPIFFS region 0x%08X-0x%08X exceeds detected flash size %s",
			esptool.WriteOffset, end, esptool.FormatSize(size))
	}
	rec.success("Device connected and flash size detected successfully (%s).", esptool.FormatSize(size))
	return next, rec.events
}

func (s *Service) probe(ctx context.Context, rec *recorder, port string) (int64, error) {
	if port == "" {
		return 0, ErrNoPort
	}
	prefix, err := s.Tools.FlashTool()
	if err != nil {
		return 0, err
	}

	argv := command(prefix, esptool.ProbeArgs(port)...)
	res, runErr := s.Runner.Run(ctx, argv)
	rec.info("Running command: %s", res.CommandLine())
	rec.logResult(res)

	// A missing or unstartable tool leaves nothing to parse
	if runErr != nil && !errors.Is(runErr, process.ErrNonZeroExit) {
		return 0, runErr
	}

	outcome := esptool.ParseFlashSize(process.StripANSI(res.Stdout))
	if outcome.Kind == esptool.FlashSizeDetected {
		return outcome.Bytes, nil
	}
	if runErr != nil {
		return 0, errors.New(failure(runErr, res))
	}
	return 0, outcome.Err()
}

// Build packs dir into an image at out. It refuses to run while the session
// is Disconnected; the state is returned unchanged.
func (s *Service) Build(ctx context.Context, st model.Session, dir, out string) (model.Session, []model.Event) {
	rec := s.begin(ctx, "build")

	if !st.BuildEnabled() {
		rec.fail("Failed to create SPIFFS image. Error: %v", ErrNotConnected)
		return st, rec.events
	}

	packer, err := s.Tools.Packer()
	if err != nil {
		rec.fail("Failed to create SPIFFS image. Error: %v", err)
		return st, rec.events
	}

	out = mkspiffs.OutputPath(out)
	argv := command([]string{packer}, mkspiffs.BuildArgs(dir, out)...)

	rec.info("Creating SPIFFS image...")
	res, err := s.Runner.Run(ctx, argv)
	rec.info("Running command: %s", res.CommandLine())
	rec.logResult(res)
	if err != nil {
		rec.fail("Failed to create SPIFFS image. Error: %s", failure(err, res))
		return st, rec.events
	}

	rec.success("SPIFFS image created successfully! (%s)", out)
	return st, rec.events
}

// Upload writes image to the SPIFFS partition. It is allowed in either
// state; without a prior probe an info event says so.
func (s *Service) Upload(ctx context.Context, st model.Session, image string) (model.Session, []model.Event) {
	rec := s.begin(ctx, "upload")

	if st.Port == "" {
		rec.fail("Failed to upload SPIFFS image. Error: %v", ErrNoPort)
		return st, rec.events
	}
	if !st.Connected {
		rec.info("No successful probe on %s; uploading anyway.", st.Port)
	}

	prefix, err := s.Tools.FlashTool()
	if err != nil {
		rec.fail("Failed to upload SPIFFS image. Error: %v", err)
		return st, rec.events
	}

	argv := command(prefix, esptool.WriteArgs(st.Port, image)...)

	rec.info("Uploading SPIFFS image...")
	res, err := s.Runner.Run(ctx, argv)
	rec.info("Running command: %s", res.CommandLine())
	rec.logResult(res)
	if err != nil {
		rec.fail("Failed to upload SPIFFS image. Error: %s", failure(err, res))
		return st, rec.events
	}

	rec.success("SPIFFS image uploaded successfully!")
	return st, rec.events
}
