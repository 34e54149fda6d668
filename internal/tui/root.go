package tui

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/charmbracelet/bubbles/filepicker"
	"github.com/charmbracelet/bubbles/help"
	"github.com/charmbracelet/bubbles/key"
	"github.com/charmbracelet/bubbles/spinner"
	"github.com/charmbracelet/bubbles/textinput"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"

	"github.com/m5dial/spiffs-uploader/internal/config"
	"github.com/m5dial/spiffs-uploader/internal/esptool"
	"github.com/m5dial/spiffs-uploader/internal/mkspiffs"
	"github.com/m5dial/spiffs-uploader/internal/model"
	"github.com/m5dial/spiffs-uploader/internal/serialport"
)

// ViewMode represents the current view
type ViewMode int

const (
	ViewModeMain       ViewMode = iota // Connection panel, actions and log
	ViewModePorts                      // Serial port selection
	ViewModePickDir                    // Directory to pack
	ViewModeOutputPath                 // Where to write the image
	ViewModePickImage                  // Image to upload
	ViewModeHelp                       // Help overlay
)

// Actions runs the external tools. *uploader.Service implements it.
type Actions interface {
	Probe(ctx context.Context, st model.Session) (model.Session, []model.Event)
	Build(ctx context.Context, st model.Session, dir, out string) (model.Session, []model.Event)
	Upload(ctx context.Context, st model.Session, image string) (model.Session, []model.Event)
}

// Messages
type portsLoadedMsg struct {
	ports []serialport.PortInfo
	err   error
}

// actionFinishedMsg carries the result of a probe, build or upload
type actionFinishedMsg struct {
	action string
	state  model.Session
	events []model.Event
}

type configSavedMsg struct {
	err error
}

// Options configures NewRootModel
type Options struct {
	Config     *config.Config
	Actions    Actions
	ListPorts  func() ([]serialport.PortInfo, error)
	SaveConfig func(*config.Config) error
	Context    context.Context
	Debug      bool   // show info events regardless of config
	Port       string // preselected port; wins over config for this run
}

// Help text shown in the help overlay
var usageSteps = []string{
	"1. Connect to the device to detect flash size and enable SPIFFS creation.",
	"2. Use 'Create SPIFFS Image' to generate a SPIFFS image from a directory.",
	"3. Use 'Upload SPIFFS Image' to upload the image to your ESP32 device.",
	fmt.Sprintf("4. Images are %s bytes and are written at offset %s.", mkspiffs.SizeHex(), esptool.OffsetHex()),
}

// Model is the root Bubble Tea model
type Model struct {
	// Terminal dimensions
	width  int
	height int

	// View state
	viewMode ViewMode

	cfg        *config.Config
	actions    Actions
	listPorts  func() ([]serialport.PortInfo, error)
	saveConfig func(*config.Config) error

	// Session
	session model.Session

	// Ports
	ports       []serialport.PortInfo
	portIdx     int
	portsErr    string
	portsLoaded bool
	portPinned  bool

	// Log
	logs LogPane

	// Build/upload inputs
	picker      filepicker.Model
	outputInput textinput.Model
	buildDir    string

	// Running state; one external command at a time
	busy       bool
	busyAction string
	ctx        context.Context
	cancel     context.CancelFunc

	spinner spinner.Model
	help    help.Model
	keys    KeyMap

	ready bool
}

// NewRootModel creates a new root model
func NewRootModel(opts Options) Model {
	cfg := opts.Config
	if cfg == nil {
		cfg = config.DefaultConfig()
	}
	listPorts := opts.ListPorts
	if listPorts == nil {
		listPorts = serialport.ListDetailed
	}
	saveConfig := opts.SaveConfig
	if saveConfig == nil {
		saveConfig = config.Save
	}
	parent := opts.Context
	if parent == nil {
		parent = context.Background()
	}
	ctx, cancel := context.WithCancel(parent)

	port := opts.Port
	if port == "" {
		port = cfg.InitialPort(nil)
	}

	s := spinner.New()
	s.Spinner = spinner.Dot
	s.Style = lipgloss.NewStyle().Foreground(ColorOrange)

	h := help.New()
	h.ShowAll = false

	ti := textinput.New()
	ti.Placeholder = "spiffs.bin"
	ti.Prompt = "Save image as: "
	ti.PromptStyle = ActionKeyStyle
	ti.CharLimit = 0
	ti.Width = 60

	m := Model{
		viewMode:    ViewModeMain,
		cfg:         cfg,
		actions:     opts.Actions,
		listPorts:   listPorts,
		saveConfig:  saveConfig,
		session:     model.NewSession(port),
		portPinned:  opts.Port != "",
		logs:        NewLogPane(cfg.Debug || opts.Debug),
		picker:      filepicker.New(),
		outputInput: ti,
		ctx:         ctx,
		cancel:      cancel,
		spinner:     s,
		help:        h,
		keys:        DefaultKeyMap(),
	}
	m.syncKeys()
	return m
}

// Session returns the current session state
func (m Model) Session() model.Session {
	return m.session
}

// Init initializes the model
func (m Model) Init() tea.Cmd {
	return m.loadPortsCmd()
}

// loadPortsCmd enumerates serial ports off the UI loop
func (m Model) loadPortsCmd() tea.Cmd {
	listPorts := m.listPorts
	return func() tea.Msg {
		ports, err := listPorts()
		return portsLoadedMsg{ports: ports, err: err}
	}
}

// saveConfigCmd persists the config (last used port)
func (m Model) saveConfigCmd() tea.Cmd {
	cfg := *m.cfg
	save := m.saveConfig
	return func() tea.Msg {
		return configSavedMsg{err: save(&cfg)}
	}
}

// syncKeys enables only the bindings valid in the current state
func (m *Model) syncKeys() {
	idle := !m.busy
	m.keys.Connect.SetEnabled(idle)
	m.keys.Build.SetEnabled(idle && m.session.BuildEnabled())
	m.keys.Upload.SetEnabled(idle)
	m.keys.Ports.SetEnabled(idle)
}

// startAction marks the model busy and runs fn in a command
func (m *Model) startAction(action string, fn func(ctx context.Context, st model.Session) (model.Session, []model.Event)) tea.Cmd {
	m.busy = true
	m.busyAction = action
	m.syncKeys()

	ctx := m.ctx
	st := m.session
	run := func() tea.Msg {
		next, events := fn(ctx, st)
		return actionFinishedMsg{action: action, state: next, events: events}
	}
	return tea.Batch(run, m.spinner.Tick)
}

func (m *Model) startProbe() tea.Cmd {
	actions := m.actions
	return m.startAction("probe", actions.Probe)
}

func (m *Model) startBuild(dir, out string) tea.Cmd {
	actions := m.actions
	return m.startAction("build", func(ctx context.Context, st model.Session) (model.Session, []model.Event) {
		return actions.Build(ctx, st, dir, out)
	})
}

func (m *Model) startUpload(image string) tea.Cmd {
	actions := m.actions
	return m.startAction("upload", func(ctx context.Context, st model.Session) (model.Session, []model.Event) {
		return actions.Upload(ctx, st, image)
	})
}

// openPicker configures the shared file picker for a directory or an image
func (m *Model) openPicker(mode ViewMode) tea.Cmd {
	m.picker.Path = ""
	if mode == ViewModePickDir {
		m.picker.DirAllowed = false
		m.picker.FileAllowed = false
		m.picker.AllowedTypes = nil
	} else {
		m.picker.DirAllowed = false
		m.picker.FileAllowed = true
		m.picker.AllowedTypes = []string{mkspiffs.DefaultExt}
	}
	m.picker.ShowHidden = false
	if cwd, err := os.Getwd(); err == nil {
		m.picker.CurrentDirectory = cwd
	} else {
		m.picker.CurrentDirectory = "."
	}
	if m.height > 0 {
		m.picker, _ = m.picker.Update(tea.WindowSizeMsg{Width: m.width, Height: m.pickerHeight()})
	}
	m.viewMode = mode
	return m.picker.Init()
}

// pickerHeight leaves room for the header and hints around the picker
func (m Model) pickerHeight() int {
	h := m.height - 4
	if h < 8 {
		h = 8
	}
	return h
}

func (m Model) pickerActive() bool {
	return m.viewMode == ViewModePickDir || m.viewMode == ViewModePickImage
}

// Update handles messages and updates the model
func (m Model) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.WindowSizeMsg:
		m.width = msg.Width
		m.height = msg.Height
		m.help.Width = msg.Width
		m.outputInput.Width = msg.Width - len(m.outputInput.Prompt) - 4
		m.ready = true
		var cmd tea.Cmd
		m.picker, cmd = m.picker.Update(tea.WindowSizeMsg{Width: msg.Width, Height: m.pickerHeight()})
		return m, cmd

	case portsLoadedMsg:
		m.ports = msg.ports
		m.portsErr = ""
		if msg.err != nil {
			m.portsErr = msg.err.Error()
		}
		names := make([]string, len(m.ports))
		for i, p := range m.ports {
			names[i] = p.Name
		}
		if !m.portsLoaded && !m.busy && !m.portPinned {
			m.session = m.session.WithPort(m.cfg.InitialPort(names))
		}
		m.portsLoaded = true
		m.portIdx = 0
		for i, n := range names {
			if n == m.session.Port {
				m.portIdx = i
			}
		}
		return m, nil

	case actionFinishedMsg:
		m.busy = false
		m.busyAction = ""
		m.session = msg.state
		m.logs.Add(msg.events...)
		m.syncKeys()
		return m, nil

	case configSavedMsg:
		if msg.err != nil {
			m.logs.Add(model.Event{
				Level:     model.EventInfo,
				Message:   "Could not save config: " + msg.err.Error(),
				Timestamp: time.Now(),
			})
		}
		return m, nil

	case spinner.TickMsg:
		if !m.busy {
			return m, nil
		}
		var cmd tea.Cmd
		m.spinner, cmd = m.spinner.Update(msg)
		return m, cmd

	case tea.KeyMsg:
		return m.handleKey(msg)
	}

	// Directory listings and cursor blinks go to whichever input is open
	switch {
	case m.pickerActive():
		var cmd tea.Cmd
		m.picker, cmd = m.picker.Update(msg)
		return m, cmd
	case m.viewMode == ViewModeOutputPath:
		var cmd tea.Cmd
		m.outputInput, cmd = m.outputInput.Update(msg)
		return m, cmd
	}
	return m, nil
}

func (m Model) handleKey(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	if key.Matches(msg, m.keys.Interrupt) {
		m.cancel()
		return m, tea.Quit
	}

	switch m.viewMode {
	case ViewModeHelp:
		if key.Matches(msg, m.keys.Escape, m.keys.Help, m.keys.Quit, m.keys.Enter) {
			m.viewMode = ViewModeMain
		}
		return m, nil
	case ViewModePorts:
		return m.handlePortsKey(msg)
	case ViewModePickDir, ViewModePickImage:
		return m.handlePickerKey(msg)
	case ViewModeOutputPath:
		return m.handleOutputKey(msg)
	}

	switch {
	case key.Matches(msg, m.keys.Quit):
		m.cancel()
		return m, tea.Quit

	case key.Matches(msg, m.keys.Help):
		m.viewMode = ViewModeHelp
		return m, nil

	case key.Matches(msg, m.keys.Debug):
		m.logs.ToggleDebug()
		return m, nil

	case key.Matches(msg, m.keys.Clear):
		m.logs.Clear()
		return m, nil
	}

	// Everything below launches a tool or changes the port
	if m.busy {
		return m, nil
	}

	switch {
	case key.Matches(msg, m.keys.Connect):
		return m, m.startProbe()

	case key.Matches(msg, m.keys.Build):
		if !m.session.BuildEnabled() {
			return m, nil
		}
		return m, m.openPicker(ViewModePickDir)

	case key.Matches(msg, m.keys.Upload):
		return m, m.openPicker(ViewModePickImage)

	case key.Matches(msg, m.keys.Ports):
		m.viewMode = ViewModePorts
		return m, m.loadPortsCmd()

	case key.Matches(msg, m.keys.Refresh):
		return m, m.loadPortsCmd()
	}
	return m, nil
}

func (m Model) handlePortsKey(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	switch {
	case key.Matches(msg, m.keys.Escape, m.keys.Quit):
		m.viewMode = ViewModeMain
	case key.Matches(msg, m.keys.Up):
		if m.portIdx > 0 {
			m.portIdx--
		}
	case key.Matches(msg, m.keys.Down):
		if m.portIdx < len(m.ports)-1 {
			m.portIdx++
		}
	case key.Matches(msg, m.keys.Refresh):
		return m, m.loadPortsCmd()
	case key.Matches(msg, m.keys.Enter):
		if len(m.ports) == 0 {
			return m, nil
		}
		port := m.ports[m.portIdx].Name
		m.session = m.session.WithPort(port)
		m.viewMode = ViewModeMain
		if m.cfg.LastPort == port {
			return m, nil
		}
		m.cfg.LastPort = port
		return m, m.saveConfigCmd()
	}
	return m, nil
}

func (m Model) handlePickerKey(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	if key.Matches(msg, m.keys.Escape) {
		m.viewMode = ViewModeMain
		return m, nil
	}

	if m.viewMode == ViewModePickDir && key.Matches(msg, m.keys.SelectDir) {
		m.buildDir = m.picker.CurrentDirectory
		m.outputInput.SetValue(defaultOutputPath(m.buildDir))
		m.outputInput.CursorEnd()
		m.viewMode = ViewModeOutputPath
		return m, m.outputInput.Focus()
	}

	var cmd tea.Cmd
	m.picker, cmd = m.picker.Update(msg)

	if m.viewMode == ViewModePickImage {
		if didSelect, path := m.picker.DidSelectFile(msg); didSelect {
			m.viewMode = ViewModeMain
			return m, m.startUpload(path)
		}
	}
	return m, cmd
}

func (m Model) handleOutputKey(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	switch {
	case key.Matches(msg, m.keys.Escape):
		m.outputInput.Blur()
		m.viewMode = ViewModeMain
		return m, nil
	case key.Matches(msg, m.keys.Enter):
		out := strings.TrimSpace(m.outputInput.Value())
		if out == "" {
			return m, nil
		}
		m.outputInput.Blur()
		m.viewMode = ViewModeMain
		return m, m.startBuild(m.buildDir, mkspiffs.OutputPath(out))
	}

	var cmd tea.Cmd
	m.outputInput, cmd = m.outputInput.Update(msg)
	return m, cmd
}

// defaultOutputPath suggests <parent>/<dir>.bin next to the packed directory
func defaultOutputPath(dir string) string {
	base := filepath.Base(dir)
	if base == "." || base == string(filepath.Separator) || base == "" {
		base = "spiffs"
	}
	return filepath.Join(filepath.Dir(dir), base+mkspiffs.DefaultExt)
}

// View renders the model
func (m Model) View() string {
	if !m.ready {
		return "Initializing..."
	}

	switch m.viewMode {
	case ViewModeHelp:
		return m.helpView()
	case ViewModePorts:
		return m.portsView()
	case ViewModePickDir, ViewModePickImage:
		return m.pickerView()
	case ViewModeOutputPath:
		return m.outputPathView()
	default:
		return m.mainView()
	}
}

func (m Model) mainView() string {
	header := HeaderStyle.Render("M5Dial SPIFFS Uploader")
	conn := m.renderConnection()
	actions := m.renderActions()
	helpBar := m.help.View(m.keys)

	used := lipgloss.Height(header) + lipgloss.Height(conn) + lipgloss.Height(actions) + lipgloss.Height(helpBar)
	logHeight := m.height - used
	if logHeight < 5 {
		logHeight = 5
	}

	return lipgloss.JoinVertical(lipgloss.Left,
		header,
		conn,
		actions,
		m.logs.Render(m.width, logHeight),
		helpBar,
	)
}

func (m Model) renderConnection() string {
	port := m.session.Port
	if port == "" {
		port = "(none)"
	}

	status := StatusDisconnectedStyle.Render("● " + m.session.StatusText())
	if m.session.Connected {
		status = StatusConnectedStyle.Render("● " + m.session.StatusText())
	}

	flash := "-"
	if m.session.HasFlashSize {
		flash = esptool.FormatSize(m.session.FlashSize)
	}

	line := LabelStyle.Render("Port: ") + ValueStyle.Render(port) + "   " +
		status + "   " +
		LabelStyle.Render("Flash: ") + ValueStyle.Render(flash)

	if m.portsErr != "" {
		line += "\n" + ErrorStyle.Render("Port enumeration failed: "+m.portsErr)
	}

	width := m.width - 2
	if width < 20 {
		width = 20
	}
	return PanelStyle.Width(width).Render(PanelTitleStyle.Render("Device") + "\n" + line)
}

func renderAction(k, label string, enabled bool) string {
	if !enabled {
		return ActionDisabledStyle.Render("["+k+"] "+label)
	}
	return ActionKeyStyle.Render("["+k+"]") + " " + ActionStyle.Render(label)
}

func (m Model) renderActions() string {
	idle := !m.busy
	line := strings.Join([]string{
		renderAction("c", "Connect", idle),
		renderAction("b", "Create SPIFFS Image", idle && m.session.BuildEnabled()),
		renderAction("u", "Upload SPIFFS Image", idle),
	}, "   ")

	if m.busy {
		line += "\n" + m.spinner.View() + " " + WarningStyle.Render(busyLabel(m.busyAction))
	}
	return " " + line
}

func busyLabel(action string) string {
	switch action {
	case "probe":
		return "Detecting flash size..."
	case "build":
		return "Creating SPIFFS image..."
	case "upload":
		return "Uploading SPIFFS image..."
	default:
		return "Working..."
	}
}

func (m Model) portsView() string {
	var b strings.Builder
	b.WriteString(HeaderStyle.Render("Select Serial Port"))
	b.WriteString("\n\n")

	if len(m.ports) == 0 {
		b.WriteString(DimStyle.Render("  No serial ports found. Press r to refresh."))
		b.WriteString("\n")
	}
	for i, p := range m.ports {
		label := p.Label()
		if p.Name == m.session.Port {
			label += " (current)"
		}
		if i == m.portIdx {
			b.WriteString(SelectedItemStyle.Render("❯ " + label))
		} else {
			b.WriteString(ItemStyle.Render("  " + label))
		}
		b.WriteString("\n")
	}
	if m.portsErr != "" {
		b.WriteString("\n" + ErrorStyle.Render(m.portsErr) + "\n")
	}

	b.WriteString("\n")
	b.WriteString(DimStyle.Render("↑/↓ move • enter select • r refresh • esc back"))
	return b.String()
}

func (m Model) pickerView() string {
	title := "Select Directory to Pack into SPIFFS"
	hint := "enter/→ open • ←/backspace up • s pack this directory • esc cancel"
	if m.viewMode == ViewModePickImage {
		title = "Select SPIFFS Image to Upload"
		hint = "enter select .bin • ←/backspace up • esc cancel"
	}

	return HeaderStyle.Render(title) + "\n" +
		DimStyle.Render("Directory: "+m.picker.CurrentDirectory) + "\n\n" +
		m.picker.View() + "\n" +
		DimStyle.Render(hint)
}

func (m Model) outputPathView() string {
	return HeaderStyle.Render("Save SPIFFS Image As") + "\n\n" +
		LabelStyle.Render("Source: ") + ValueStyle.Render(m.buildDir) + "\n\n" +
		m.outputInput.View() + "\n\n" +
		DimStyle.Render("enter create • esc cancel • "+mkspiffs.DefaultExt+" is added when no extension is given")
}

func (m Model) helpView() string {
	var b strings.Builder
	b.WriteString(HelpTitleStyle.Render("Help"))
	b.WriteString("\n\n")
	for _, step := range usageSteps {
		b.WriteString(HelpDescStyle.Render(step))
		b.WriteString("\n")
	}
	b.WriteString("\n")

	full := m.help
	full.ShowAll = true
	b.WriteString(full.View(m.keys))
	b.WriteString("\n\n")
	b.WriteString(DimStyle.Render("Press ? or esc to close"))

	return HelpStyle.Render(b.String())
}
