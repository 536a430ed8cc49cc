package tui

import (
	"context"
	"fmt"
	"path/filepath"
	"strings"
	"time"

	"github.com/charmbracelet/bubbles/help"
	"github.com/charmbracelet/bubbles/key"
	"github.com/charmbracelet/bubbles/spinner"
	"github.com/charmbracelet/bubbles/textinput"
	tea "github.com/charmbracelet/bubbletea"

	"github.com/bodybybuddha/bbl-shutter-cam/internal/camera"
	"github.com/bodybybuddha/bbl-shutter-cam/internal/config"
)

// mode is the interaction state of the tuning screen.
type mode int

const (
	modeBrowse mode = iota
	modeEdit
	modeCapturing
)

// Model is the bubbletea model for the interactive tuning screen.
type Model struct {
	configPath  string
	profileName string
	outputDir   string

	rp       config.Rpicam // settings being edited
	original config.Rpicam // snapshot for rollback

	fields []field
	cursor int
	mode   mode

	input     textinput.Model
	spin      spinner.Model
	inputErr  string
	statusMsg string
	statusErr bool

	testCount int

	keys   KeyMap
	styles Styles
	help   help.Model
	width  int
	height int
}

// photoTakenMsg is the result of an async test capture.
type photoTakenMsg struct {
	path string
	err  error
}

// NewModel builds the tuning model for a profile.
func NewModel(configPath string, prof *config.Profile) Model {
	ti := textinput.New()
	ti.CharLimit = 16
	ti.Width = 20

	styles := DefaultStyles()
	sp := spinner.New(
		spinner.WithSpinner(spinner.Dot),
		spinner.WithStyle(styles.Highlight),
	)

	return Model{
		configPath:  configPath,
		profileName: prof.Name,
		outputDir:   camera.SettingsFromProfile(prof).OutputDir,
		rp:          prof.Camera.Rpicam,
		original:    prof.Camera.Rpicam,
		fields:      tuneFields(),
		input:       ti,
		spin:        sp,
		keys:        DefaultKeyMap(),
		styles:      styles,
		help:        help.New(),
	}
}

// Init implements tea.Model.
func (m Model) Init() tea.Cmd {
	return nil
}

// Update implements tea.Model.
func (m Model) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.WindowSizeMsg:
		m.width = msg.Width
		m.height = msg.Height
		m.help.Width = msg.Width
		return m, nil

	case spinner.TickMsg:
		if m.mode != modeCapturing {
			return m, nil
		}
		var cmd tea.Cmd
		m.spin, cmd = m.spin.Update(msg)
		return m, cmd

	case photoTakenMsg:
		m.mode = modeBrowse
		if msg.err != nil {
			m.statusMsg = fmt.Sprintf("Capture failed: %v", msg.err)
			m.statusErr = true
		} else {
			m.statusMsg = fmt.Sprintf("Saved %s", filepath.Base(msg.path))
			m.statusErr = false
		}
		return m, nil

	case tea.KeyMsg:
		switch m.mode {
		case modeEdit:
			return m.updateEdit(msg)
		case modeCapturing:
			// Only allow quitting while a capture is in flight.
			if s := msg.String(); s == "ctrl+c" || s == "q" {
				return m, tea.Quit
			}
			return m, nil
		default:
			return m.updateBrowse(msg)
		}
	}

	return m, nil
}

func (m Model) updateBrowse(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	switch {
	case key.Matches(msg, m.keys.Quit):
		return m, tea.Quit

	case key.Matches(msg, m.keys.Help):
		m.help.ShowAll = !m.help.ShowAll
		return m, nil

	case key.Matches(msg, m.keys.Up):
		if m.cursor > 0 {
			m.cursor--
		}
		return m, nil

	case key.Matches(msg, m.keys.Down):
		if m.cursor < len(m.fields)-1 {
			m.cursor++
		}
		return m, nil

	case key.Matches(msg, m.keys.Select):
		f := m.fields[m.cursor]
		switch f.kind {
		case fieldBool:
			f.toggle(&m.rp)
		case fieldEnum:
			f.cycle(&m.rp)
		case fieldText:
			m.mode = modeEdit
			m.input.SetValue("")
			m.input.Placeholder = f.hint
			m.input.Focus()
			m.inputErr = ""
			return m, textinput.Blink
		}
		m.statusMsg = ""
		return m, nil

	case key.Matches(msg, m.keys.Clear):
		if f := m.fields[m.cursor]; f.clear != nil {
			f.clear(&m.rp)
			m.statusMsg = ""
		}
		return m, nil

	case key.Matches(msg, m.keys.Test):
		m.mode = modeCapturing
		m.testCount++
		m.statusMsg = ""
		return m, tea.Batch(m.spin.Tick, m.testCaptureCmd())

	case key.Matches(msg, m.keys.Rollback):
		m.rp = m.original
		m.statusMsg = "Rolled back to saved settings."
		m.statusErr = false
		return m, nil

	case key.Matches(msg, m.keys.Save):
		if err := config.UpdateCamera(m.configPath, m.profileName, m.rp); err != nil {
			m.statusMsg = fmt.Sprintf("Save failed: %v", err)
			m.statusErr = true
			return m, nil
		}
		return m, tea.Quit
	}

	return m, nil
}

func (m Model) updateEdit(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	switch msg.String() {
	case "esc":
		m.mode = modeBrowse
		m.input.Blur()
		m.inputErr = ""
		return m, nil

	case "enter":
		f := m.fields[m.cursor]
		val := strings.TrimSpace(m.input.Value())
		if val == "" {
			m.mode = modeBrowse
			m.input.Blur()
			m.inputErr = ""
			return m, nil
		}
		if err := f.set(&m.rp, val); err != nil {
			m.inputErr = err.Error()
			return m, nil
		}
		m.mode = modeBrowse
		m.input.Blur()
		m.inputErr = ""
		m.statusMsg = ""
		return m, nil
	}

	var cmd tea.Cmd
	m.input, cmd = m.input.Update(msg)
	return m, cmd
}

// testCaptureCmd takes a test photo with the current (unsaved) settings into
// a tune/ subdirectory of the profile's output dir.
func (m Model) testCaptureCmd() tea.Cmd {
	settings := camera.Settings{
		OutputDir:      filepath.Join(m.outputDir, "tune"),
		FilenameFormat: fmt.Sprintf("tune_%03d_%%Y%%m%%d_%%H%%M%%S.jpg", m.testCount),
		Rpicam:         m.rp,
	}
	return func() tea.Msg {
		outfile, err := settings.Outfile(time.Now())
		if err != nil {
			return photoTakenMsg{err: err}
		}
		if err := settings.CaptureTo(context.Background(), outfile); err != nil {
			return photoTakenMsg{err: err}
		}
		return photoTakenMsg{path: outfile}
	}
}

// View implements tea.Model.
func (m Model) View() string {
	var b strings.Builder

	b.WriteString(m.styles.Title.Render("Camera Tuning"))
	b.WriteString("  ")
	b.WriteString(m.styles.Subtitle.Render(fmt.Sprintf("profile: %s", m.profileName)))
	b.WriteString("\n\n")

	lastSection := ""
	for i, f := range m.fields {
		if f.section != lastSection {
			if lastSection != "" {
				b.WriteString("\n")
			}
			b.WriteString(m.styles.Section.Render(f.section))
			b.WriteString("\n")
			lastSection = f.section
		}

		line := fmt.Sprintf("%-14s %s", f.name, f.value(&m.rp))
		if i == m.cursor {
			b.WriteString(m.styles.MenuItemSelected.Render("> " + line))
			if m.mode == modeEdit {
				b.WriteString("  " + m.input.View())
				if m.inputErr != "" {
					b.WriteString("  " + m.styles.Error.Render(m.inputErr))
				}
			} else if f.hint != "" {
				b.WriteString("  " + m.styles.Muted.Render(f.hint))
			}
		} else {
			b.WriteString(m.styles.MenuItem.Render("  " + line))
		}
		b.WriteString("\n")
	}

	b.WriteString("\n")
	switch {
	case m.mode == modeCapturing:
		b.WriteString(m.spin.View())
		b.WriteString(m.styles.Warning.Render(fmt.Sprintf("Taking test photo #%d...", m.testCount)))
		b.WriteString("\n")
	case m.statusMsg != "" && m.statusErr:
		b.WriteString(m.styles.Error.Render(m.statusMsg))
		b.WriteString("\n")
	case m.statusMsg != "":
		b.WriteString(m.styles.Success.Render(m.statusMsg))
		b.WriteString("\n")
	}

	b.WriteString(m.styles.Help.Render(m.help.View(m.keys)))
	b.WriteString("\n")

	return m.styles.App.Render(b.String())
}
