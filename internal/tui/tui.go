package tui

import (
	"context"
	"errors"
	"fmt"
	"strconv"
	"strings"
	"time"

	"github.com/charmbracelet/bubbles/progress"
	"github.com/charmbracelet/bubbles/spinner"
	"github.com/charmbracelet/bubbles/textinput"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"

	"github.com/handiism/img2gif/internal/config"
	"github.com/handiism/img2gif/internal/convert"
	"github.com/handiism/img2gif/internal/model"
)

// Palette
var (
	titleStyle = lipgloss.NewStyle().
			Bold(true).
			Foreground(lipgloss.Color("#F25F5C")).
			MarginBottom(1)

	subtitleStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("#70C1B3"))

	successStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("#8AC926"))

	errorStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("#F25F5C"))

	warningStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("#FFCA3A"))

	infoStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("#9AD1D4"))

	dimStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("#7A7F86"))

	boxStyle = lipgloss.NewStyle().
			Border(lipgloss.RoundedBorder()).
			BorderForeground(lipgloss.Color("#70C1B3")).
			Padding(1, 2)
)

// State represents the current UI state.
type State int

const (
	StateInput State = iota
	StateConverting
	StateComplete
	StateError
)

// Input fields, in focus order.
const (
	fieldInput = iota
	fieldOutput
	fieldFPS
	fieldWidth
	fieldCount
)

// maxLogs bounds the log pane.
const maxLogs = 10

// LogEntry represents a log message in the UI.
type LogEntry struct {
	Message string
	Level   convert.ProgressLevel
}

// Model is the converter form and progress view.
type Model struct {
	state    State
	inputs   []textinput.Model
	focus    int
	spinner  spinner.Model
	progress progress.Model
	settings *config.Settings

	// settingsPath receives the form options of every started conversion;
	// empty disables saving.
	settingsPath string
	logs     []LogEntry
	result   *model.ConversionResult
	err      error

	// Conversion context
	ctx    context.Context
	cancel context.CancelFunc

	converter *convert.Converter
	events    chan convert.ProgressEvent

	// Frame counters
	done  int
	total int

	// Options
	optimize   bool
	keepAspect bool
	skipBad    bool
	natural    bool
	verbose    bool

	width  int
	height int
}

// NewModel creates a new TUI model seeded from settings. When settingsPath
// is set, the options of each started conversion are saved there.
func NewModel(settings *config.Settings, settingsPath string) Model {
	if settings == nil {
		settings = config.DefaultSettings()
	}

	inputs := make([]textinput.Model, fieldCount)
	for i := range inputs {
		ti := textinput.New()
		ti.CharLimit = 1000
		ti.Width = 60
		inputs[i] = ti
	}
	inputs[fieldInput].Placeholder = "./frames  or  a.png, b.png, c.png"
	inputs[fieldOutput].Placeholder = "animation.gif"
	inputs[fieldFPS].Placeholder = "1"
	inputs[fieldFPS].CharLimit = 8
	inputs[fieldWidth].Placeholder = "source width"
	inputs[fieldWidth].CharLimit = 5
	if settings.FPS > 0 {
		inputs[fieldFPS].SetValue(strconv.FormatFloat(settings.FPS, 'f', -1, 64))
	} else if settings.Duration > 0 {
		inputs[fieldFPS].SetValue(strconv.FormatFloat(1/settings.Duration, 'f', -1, 64))
	}
	if settings.Width > 0 {
		inputs[fieldWidth].SetValue(strconv.Itoa(settings.Width))
	}
	inputs[fieldInput].Focus()

	sp := spinner.New()
	sp.Spinner = spinner.Dot
	sp.Style = lipgloss.NewStyle().Foreground(lipgloss.Color("#F25F5C"))

	prog := progress.New(progress.WithDefaultGradient())
	prog.Width = 50

	ctx, cancel := context.WithCancel(context.Background())

	return Model{
		state:      StateInput,
		inputs:     inputs,
		spinner:    sp,
		progress:   prog,
		settings:     settings,
		settingsPath: settingsPath,
		logs:       make([]LogEntry, 0),
		ctx:        ctx,
		cancel:     cancel,
		optimize:   settings.Optimize,
		keepAspect: settings.MaintainAspectRatio,
		skipBad:    settings.OnError == string(model.PolicySkip),
		natural:    settings.Sort == string(model.SortNatural),
	}
}

// Init initializes the model.
func (m Model) Init() tea.Cmd {
	return tea.Batch(textinput.Blink, m.spinner.Tick)
}

// Messages
type (
	// ProgressMsg is sent for every converter progress event.
	ProgressMsg struct {
		Event convert.ProgressEvent
	}

	// ConvertDoneMsg is sent when the conversion finishes.
	ConvertDoneMsg struct {
		Result *model.ConversionResult
		Err    error
	}

	// TickMsg is for periodic progress updates.
	TickMsg struct{}
)

// Update handles messages and updates the model.
func (m Model) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	var cmds []tea.Cmd

	switch msg := msg.(type) {
	case tea.WindowSizeMsg:
		m.width = msg.Width
		m.height = msg.Height
		m.progress.Width = min(max(msg.Width-20, 20), 80)
		return m, nil

	case tea.KeyMsg:
		switch msg.String() {
		case "ctrl+c":
			m.cancel()
			return m, tea.Quit

		case "esc":
			if m.state == StateInput {
				return m, tea.Quit
			}
			if m.state == StateConverting {
				m.cancel()
			}
			return m, nil

		case "tab", "down":
			if m.state == StateInput {
				m.setFocus((m.focus + 1) % fieldCount)
				return m, nil
			}

		case "shift+tab", "up":
			if m.state == StateInput {
				m.setFocus((m.focus + fieldCount - 1) % fieldCount)
				return m, nil
			}

		case "enter":
			if m.state == StateInput && m.inputs[fieldInput].Value() != "" && m.inputs[fieldOutput].Value() != "" {
				return m.start()
			}
			return m, nil

		case "ctrl+o":
			if m.state == StateInput {
				m.optimize = !m.optimize
			}
			return m, nil

		case "ctrl+r":
			if m.state == StateInput {
				m.keepAspect = !m.keepAspect
			}
			return m, nil

		case "ctrl+s":
			if m.state == StateInput {
				m.skipBad = !m.skipBad
			}
			return m, nil

		case "ctrl+t":
			if m.state == StateInput {
				m.natural = !m.natural
			}
			return m, nil

		case "ctrl+g":
			if m.state == StateInput {
				m.verbose = !m.verbose
			}
			return m, nil

		case "q":
			if m.state == StateComplete || m.state == StateError {
				return m, tea.Quit
			}

		case "r":
			if m.state == StateComplete || m.state == StateError {
				// Reset for a new conversion, keeping the fields
				m.state = StateInput
				m.logs = nil
				m.result = nil
				m.err = nil
				m.done, m.total = 0, 0
				m.converter = nil
				m.events = nil
				m.ctx, m.cancel = context.WithCancel(context.Background())
				m.setFocus(fieldInput)
				return m, textinput.Blink
			}
		}

	case spinner.TickMsg:
		var cmd tea.Cmd
		m.spinner, cmd = m.spinner.Update(msg)
		cmds = append(cmds, cmd)

	case ProgressMsg:
		cmds = append(cmds, waitForEvent(m.events))
		// Verbose lines only when asked for
		if msg.Event.Level != convert.LevelVerbose || m.verbose {
			m.logs = append(m.logs, LogEntry{Message: msg.Event.Message, Level: msg.Event.Level})
			if len(m.logs) > maxLogs {
				m.logs = m.logs[len(m.logs)-maxLogs:]
			}
		}

	case ConvertDoneMsg:
		m.result = msg.Result
		switch {
		case errors.Is(msg.Err, context.Canceled):
			m.state = StateError
			m.err = fmt.Errorf("cancelled by user")
		case msg.Err != nil:
			m.state = StateError
			m.err = msg.Err
		default:
			m.state = StateComplete
			m.done, m.total = msg.Result.FrameCount, msg.Result.FrameCount+msg.Result.Skipped()
		}

	case TickMsg:
		// Update progress from the converter
		if m.converter != nil && m.state == StateConverting {
			decoded, transformed, total := m.converter.Progress()
			m.done = (decoded + transformed) / 2
			m.total = total

			var percent float64
			if total > 0 {
				percent = float64(decoded+transformed) / float64(2*total)
			}
			cmds = append(cmds, m.progress.SetPercent(percent), m.tickProgress())
		}

	case progress.FrameMsg:
		progressModel, cmd := m.progress.Update(msg)
		m.progress = progressModel.(progress.Model)
		cmds = append(cmds, cmd)
	}

	// Update the focused text input
	if m.state == StateInput {
		var cmd tea.Cmd
		m.inputs[m.focus], cmd = m.inputs[m.focus].Update(msg)
		cmds = append(cmds, cmd)
	}

	return m, tea.Batch(cmds...)
}

func (m *Model) setFocus(i int) {
	m.inputs[m.focus].Blur()
	m.focus = i
	m.inputs[m.focus].Focus()
}

// start validates the form and launches the conversion.
func (m Model) start() (tea.Model, tea.Cmd) {
	settings, cfg, err := m.buildConfig()
	if err != nil {
		m.state = StateError
		m.err = err
		return m, nil
	}
	if m.settingsPath != "" {
		if err := settings.Save(m.settingsPath); err != nil {
			m.logs = append(m.logs, LogEntry{Message: fmt.Sprintf("Could not save settings: %v", err), Level: convert.LevelWarning})
		} else {
			m.settings = settings
		}
	}

	m.state = StateConverting
	m.events = make(chan convert.ProgressEvent, 64)
	events := m.events
	m.converter = convert.NewConverter(nil, func(event convert.ProgressEvent) {
		select {
		case events <- event:
		default:
			// The log pane only shows the latest lines; drop when the UI lags.
		}
	})

	input := parseInputs(m.inputs[fieldInput].Value())
	output := strings.TrimSpace(m.inputs[fieldOutput].Value())
	return m, tea.Batch(
		m.runConversion(input, output, cfg),
		waitForEvent(m.events),
		m.tickProgress(),
		m.spinner.Tick,
	)
}

// buildConfig merges the form into a copy of the settings and validates it.
func (m Model) buildConfig() (*config.Settings, model.GifConfig, error) {
	s := *m.settings
	s.Optimize = m.optimize
	s.MaintainAspectRatio = m.keepAspect
	s.OnError = string(model.PolicyAbort)
	if m.skipBad {
		s.OnError = string(model.PolicySkip)
	}
	s.Sort = string(model.SortLexical)
	if m.natural {
		s.Sort = string(model.SortNatural)
	}

	if v := strings.TrimSpace(m.inputs[fieldFPS].Value()); v != "" {
		fps, err := strconv.ParseFloat(v, 64)
		if err != nil {
			return nil, model.GifConfig{}, formError(fmt.Errorf("fps %q is not a number", v))
		}
		s.FPS, s.Duration = fps, 0
	}
	if v := strings.TrimSpace(m.inputs[fieldWidth].Value()); v != "" {
		w, err := strconv.Atoi(v)
		if err != nil {
			return nil, model.GifConfig{}, formError(fmt.Errorf("width %q is not a whole number", v))
		}
		s.Width = w
	}
	cfg, err := s.ToGifConfig()
	if err != nil {
		return nil, model.GifConfig{}, err
	}
	return &s, cfg, nil
}

func formError(err error) error {
	return model.NewError(model.ErrConfiguration, model.StageConfig, "", err)
}

// parseInputs splits a comma-separated list of paths.
func parseInputs(value string) []string {
	var paths []string
	for _, p := range strings.Split(value, ",") {
		if p = strings.TrimSpace(p); p != "" {
			paths = append(paths, p)
		}
	}
	return paths
}

// runConversion runs the converter in the background and closes the event
// channel once it returns, which ends the pending waitForEvent.
func (m Model) runConversion(input []string, output string, cfg model.GifConfig) tea.Cmd {
	ctx, converter, events := m.ctx, m.converter, m.events
	return func() tea.Msg {
		result, err := converter.ConvertWithConfig(ctx, input, output, cfg)
		if events != nil {
			close(events)
		}
		return ConvertDoneMsg{Result: result, Err: err}
	}
}

// waitForEvent delivers the next progress event as a ProgressMsg.
func waitForEvent(events <-chan convert.ProgressEvent) tea.Cmd {
	if events == nil {
		return nil
	}
	return func() tea.Msg {
		event, ok := <-events
		if !ok {
			return nil
		}
		return ProgressMsg{Event: event}
	}
}

// tickProgress returns a command to tick progress updates.
func (m Model) tickProgress() tea.Cmd {
	return tea.Tick(200*time.Millisecond, func(_ time.Time) tea.Msg {
		return TickMsg{}
	})
}

// View renders the UI.
func (m Model) View() string {
	var b strings.Builder

	// Header
	b.WriteString(titleStyle.Render("img2gif"))
	b.WriteString("\n")
	b.WriteString(dimStyle.Render("Turn a sequence of images into an animated GIF"))
	b.WriteString("\n\n")

	switch m.state {
	case StateInput:
		b.WriteString(m.viewInput())
	case StateConverting:
		b.WriteString(m.viewConverting())
	case StateComplete:
		b.WriteString(m.viewComplete())
	case StateError:
		b.WriteString(m.viewError())
	}

	// Footer
	b.WriteString("\n")
	b.WriteString(dimStyle.Render(m.getHelpText()))

	return b.String()
}

func (m Model) viewInput() string {
	var b strings.Builder

	labels := [fieldCount]string{"Input directory or files:", "Output GIF:", "Frames per second:", "Width (px):"}
	for i, label := range labels {
		b.WriteString(subtitleStyle.Render(label))
		b.WriteString("\n")
		b.WriteString(m.inputs[i].View())
		b.WriteString("\n\n")
	}

	b.WriteString(infoStyle.Render("Options:"))
	b.WriteString("\n")
	b.WriteString(fmt.Sprintf("  %s Optimize palette (ctrl+o)\n", check(m.optimize)))
	b.WriteString(fmt.Sprintf("  %s Keep aspect ratio (ctrl+r)\n", check(m.keepAspect)))
	b.WriteString(fmt.Sprintf("  %s Skip bad frames (ctrl+s)\n", check(m.skipBad)))
	b.WriteString(fmt.Sprintf("  %s Natural sort (ctrl+t)\n", check(m.natural)))
	b.WriteString(fmt.Sprintf("  %s Verbose output (ctrl+g)\n", check(m.verbose)))

	return b.String()
}

func check(on bool) string {
	if on {
		return "[×]"
	}
	return "[ ]"
}

func (m Model) viewConverting() string {
	var b strings.Builder

	b.WriteString(m.spinner.View())
	b.WriteString(" ")
	b.WriteString(subtitleStyle.Render("Converting..."))
	b.WriteString("\n\n")

	b.WriteString(m.progress.View())
	b.WriteString("\n")
	b.WriteString(infoStyle.Render(fmt.Sprintf("Frames: %d/%d", m.done, m.total)))
	b.WriteString("\n\n")

	b.WriteString(m.renderLogs())

	return b.String()
}

func (m Model) viewComplete() string {
	var b strings.Builder

	r := m.result
	box := boxStyle.Render(fmt.Sprintf(
		"✨ GIF created!\n\n"+
			"File: %s\n"+
			"Frames: %d (skipped %d)\n"+
			"Size: %dx%d, %.1f KB",
		r.OutputPath,
		r.FrameCount,
		r.Skipped(),
		r.Width, r.Height,
		float64(r.Bytes)/1024,
	))
	b.WriteString(box)
	b.WriteString("\n\n")
	b.WriteString(m.renderLogs())

	return b.String()
}

func (m Model) viewError() string {
	var b strings.Builder

	b.WriteString(errorStyle.Render("✗ Error occurred:"))
	b.WriteString("\n\n")
	if m.err != nil {
		b.WriteString(fmt.Sprintf("  %s", m.err.Error()))
	}

	return b.String()
}

func (m Model) renderLogs() string {
	var b strings.Builder

	for _, log := range m.logs {
		var style lipgloss.Style
		prefix := "•"
		switch log.Level {
		case convert.LevelError:
			style = errorStyle
			prefix = "✗"
		case convert.LevelWarning:
			style = warningStyle
			prefix = "!"
		case convert.LevelSuccess:
			style = successStyle
			prefix = "✓"
		case convert.LevelInfo:
			style = infoStyle
			prefix = "›"
		default:
			style = dimStyle
		}
		b.WriteString(style.Render(prefix + " " + log.Message))
		b.WriteString("\n")
	}

	return b.String()
}

func (m Model) getHelpText() string {
	switch m.state {
	case StateInput:
		return "enter: convert • tab: next field • ctrl+o/r/s/t/g: toggle options • esc: quit"
	case StateConverting:
		return "esc: cancel"
	case StateComplete, StateError:
		return "r: new conversion • q: quit"
	}
	return ""
}

// Run starts the TUI application with the user's settings file and
// environment applied.
func Run() error {
	settings, err := config.Load(config.DefaultPath())
	if err != nil {
		return fmt.Errorf("load settings: %w", err)
	}
	if err := settings.ApplyEnv(nil); err != nil {
		return err
	}

	p := tea.NewProgram(NewModel(settings, config.DefaultPath()), tea.WithAltScreen())
	_, err = p.Run()
	return err
}
