package cmd

import (
	"context"
	"errors"
	"fmt"
	"os"
	"os/signal"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/spf13/cobra"

	"github.com/m5dial/spiffs-uploader/internal/config"
	"github.com/m5dial/spiffs-uploader/internal/logging"
	"github.com/m5dial/spiffs-uploader/internal/process"
	"github.com/m5dial/spiffs-uploader/internal/serialport"
	"github.com/m5dial/spiffs-uploader/internal/tui"
	"github.com/m5dial/spiffs-uploader/internal/uploader"
)

var (
	// Global flags
	debug      bool
	configPath string
	portFlag   string
)

// errActionFailed is returned after the failure has already been printed
var errActionFailed = errors.New("action failed")

var rootCmd = &cobra.Command{
	Use:   "spiffs-uploader",
	Short: "Pack a directory into a SPIFFS image and flash it to an M5Dial",
	Long: `spiffs-uploader builds SPIFFS filesystem images with mkspiffs and writes
them to an ESP32-S3 (M5Dial) with esptool.

Run without a subcommand to open the interactive uploader.

Examples:
  spiffs-uploader                          # Launch the terminal UI
  spiffs-uploader ports                    # List serial ports
  spiffs-uploader probe -p /dev/ttyACM0    # Detect flash size
  spiffs-uploader build ./data spiffs.bin  # Probe, then pack ./data
  spiffs-uploader upload -p COM6 spiffs.bin`,
	Args:          cobra.NoArgs,
	SilenceUsage:  true,
	SilenceErrors: true,
	RunE:          runUI,
}

// Execute runs the root command
func Execute() {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt)
	defer stop()

	if err := rootCmd.ExecuteContext(ctx); err != nil {
		if !errors.Is(err, errActionFailed) {
			fmt.Fprintln(os.Stderr, "Error:", err)
		}
		stop()
		os.Exit(1)
	}
}

func init() {
	rootCmd.PersistentFlags().BoolVarP(&debug, "debug", "d", false, "show tool output and log at debug level")
	rootCmd.PersistentFlags().StringVar(&configPath, "config", "", "config file, JSON or YAML (default .spiffs-uploader/config.json, then ~/.spiffs-uploader/config.json)")
	rootCmd.PersistentFlags().StringVarP(&portFlag, "port", "p", "", "serial port (default: last used, then configured, then first found)")
}

// app holds what every command needs
type app struct {
	cfg   *config.Config
	log   *logging.SessionLog
	svc   *uploader.Service
	debug bool
}

// newApp builds the app for each command; tests swap in a scripted runner
var newApp = setup

func setup() (*app, error) {
	var (
		cfg *config.Config
		err error
	)
	if configPath != "" {
		cfg, err = config.LoadFrom(configPath)
	} else {
		cfg, err = config.Load()
	}
	if err != nil {
		return nil, fmt.Errorf("load config: %w", err)
	}

	verbose := debug || cfg.Debug
	sl, err := logging.Open(verbose)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Warning: %v; session log disabled\n", err)
		sl = logging.Discard()
	}
	sl.Logger.Debug("session started", "config", configPath, "log", sl.Path)

	tools := process.NewTools(cfg.FlashTool, cfg.Packer)
	return &app{
		cfg:   cfg,
		log:   sl,
		svc:   uploader.New(tools, sl.Logger),
		debug: verbose,
	}, nil
}

func (a *app) close() {
	a.log.Close()
}

// port resolves the serial port for headless commands
func (a *app) port() string {
	if portFlag != "" {
		return portFlag
	}
	return a.cfg.InitialPort(serialport.ListPorts())
}

func runUI(cmd *cobra.Command, args []string) error {
	a, err := newApp()
	if err != nil {
		return err
	}
	defer a.close()

	m := tui.NewRootModel(tui.Options{
		Config:     a.cfg,
		Actions:    a.svc,
		SaveConfig: config.Save,
		Context:    cmd.Context(),
		Debug:      a.debug,
		Port:       portFlag,
	})

	p := tea.NewProgram(m, tea.WithAltScreen(), tea.WithContext(cmd.Context()))
	if _, err := p.Run(); err != nil {
		if errors.Is(err, tea.ErrProgramKilled) {
			return nil
		}
		return fmt.Errorf("error running program: %w", err)
	}
	return nil
}
