// Package ui provides the interactive read-aloud screen: a text area, a
// voice list, speak/stop buttons and a status bar.
package ui

import (
	"fmt"
	"strings"

	"github.com/charmbracelet/bubbles/help"
	"github.com/charmbracelet/bubbles/key"
	"github.com/charmbracelet/bubbles/list"
	"github.com/charmbracelet/bubbles/textarea"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"
	"github.com/charmbracelet/log"
	"github.com/dgnsrekt/readaloud/internal/playback"
	"github.com/dgnsrekt/readaloud/internal/speech"
	"github.com/dgnsrekt/readaloud/internal/voice"
	"github.com/muesli/reflow/ansi"
	"github.com/muesli/reflow/truncate"
	te "github.com/muesli/termenv"
)

const ellipsis = "…"

// NewProgram returns a new Tea program reading aloud through host.
func NewProgram(cfg Config, host speech.Host) (*tea.Program, error) {
	layout, err := playback.ParseLayout(cfg.Layout)
	if err != nil {
		return nil, err
	}
	log.Debug(
		"Starting readaloud",
		"engine", host.Name(),
		"layout", layout,
		"language", cfg.Language,
	)

	switch {
	case cfg.NoColor:
		lipgloss.SetColorProfile(te.Ascii)
	case cfg.HighContrast:
		lipgloss.SetColorProfile(te.ANSI)
	}
	lipgloss.SetHasDarkBackground(te.HasDarkBackground())

	opts := []tea.ProgramOption{tea.WithAltScreen()}
	if cfg.EnableMouse {
		opts = append(opts, tea.WithMouseCellMotion())
	}
	if cfg.InputTTY {
		opts = append(opts, tea.WithInputTTY())
	}
	return tea.NewProgram(newModel(cfg, host, layout), opts...), nil
}

// focus is the widget receiving key presses.
type focus int

const (
	focusText focus = iota
	focusVoices
	focusSpeak
	focusStop
)

func (f focus) String() string {
	return map[focus]string{
		focusText:   "text",
		focusVoices: "voices",
		focusSpeak:  "speak",
		focusStop:   "stop",
	}[f]
}

type voiceItem struct {
	speech.Voice
}

func (i voiceItem) Title() string       { return i.Name }
func (i voiceItem) Description() string { return voice.Describe(i.Voice) + " · " + i.Language }
func (i voiceItem) FilterValue() string { return i.Name }

type model struct {
	cfg    Config
	host   speech.Host
	ctl    *playback.Controller
	ui     *controls
	layout playback.Layout

	keys   keyMap
	help   help.Model
	text   textarea.Model
	voices list.Model
	focus  focus

	width  int
	height int
}

func newModel(cfg Config, host speech.Host, layout playback.Layout) model {
	prefix := cfg.Language
	if prefix == "" {
		prefix = voice.DefaultPrefix
	}
	dir := voice.NewDirectory(prefix)
	ui := &controls{speakLabel: playback.LabelSpeak}
	ctl := playback.New(host, dir, voice.NewSelector(dir), ui, playback.Options{
		Layout:      layout,
		ListTimeout: cfg.ListTimeout,
	})

	ta := textarea.New()
	ta.Placeholder = "Type something to read aloud..."
	ta.ShowLineNumbers = false
	ta.CharLimit = 0
	ta.SetValue(cfg.Text)
	ta.Focus()

	l := list.New(nil, list.NewDefaultDelegate(), 0, 0)
	l.Title = "Voices"
	l.Styles.Title = sectionTitleStyle
	l.SetShowHelp(false)
	l.SetStatusBarItemName("voice", "voices")
	l.DisableQuitKeybindings()

	return model{
		cfg:    cfg,
		host:   host,
		ctl:    ctl,
		ui:     ui,
		layout: layout,
		keys:   newKeyMap(),
		help:   help.New(),
		text:   ta,
		voices: l,
		focus:  focusText,
	}
}

func (m model) Init() tea.Cmd {
	return tea.Batch(textarea.Blink, m.ctl.Start())
}

func (m model) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	var cmds []tea.Cmd

	switch msg := msg.(type) {
	case tea.WindowSizeMsg:
		m.width, m.height = msg.Width, msg.Height
		m.resize()

	case tea.KeyMsg:
		if cmd, ok := m.handleKey(msg); ok {
			return m, tea.Batch(cmd, m.sync())
		}
		cmds = append(cmds, m.updateFocused(msg))
		return m, tea.Batch(append(cmds, m.sync())...)

	case playback.VoicesListedMsg, playback.HostClosedMsg,
		speech.VoicesChanged, speech.UtteranceEnd, speech.UtteranceError:
		return m, tea.Batch(m.ctl.Update(msg), m.sync())
	}

	var cmd tea.Cmd
	m.text, cmd = m.text.Update(msg)
	cmds = append(cmds, cmd)
	m.voices, cmd = m.voices.Update(msg)
	cmds = append(cmds, cmd)
	return m, tea.Batch(cmds...)
}

// handleKey handles global bindings. It reports false for keys that belong
// to the focused widget.
func (m *model) handleKey(msg tea.KeyMsg) (tea.Cmd, bool) {
	filtering := m.focus == focusVoices && m.voices.FilterState() == list.Filtering

	switch {
	case key.Matches(msg, m.keys.Quit):
		if m.ctl.State() == playback.Speaking {
			m.ctl.Update(playback.StopMsg{})
		}
		return tea.Quit, true

	case filtering:
		return nil, false

	case key.Matches(msg, m.keys.Help):
		m.help.ShowAll = !m.help.ShowAll
		m.resize()
		return nil, true

	case key.Matches(msg, m.keys.Speak):
		return m.pressSpeak(), true

	case key.Matches(msg, m.keys.Stop):
		// esc first clears an applied filter.
		if m.focus == focusVoices && m.voices.FilterState() == list.FilterApplied {
			return nil, false
		}
		return m.ctl.Update(playback.StopMsg{}), true

	case key.Matches(msg, m.keys.Next):
		return m.setFocus(m.nextFocus(1)), true

	case key.Matches(msg, m.keys.Prev):
		return m.setFocus(m.nextFocus(-1)), true

	case key.Matches(msg, m.keys.Reload):
		if !m.ctl.Supported() {
			return nil, true
		}
		return playback.ListVoicesCmd(m.host, m.cfg.ListTimeout), true

	case key.Matches(msg, m.keys.Press):
		switch m.focus {
		case focusSpeak:
			return m.pressSpeak(), true
		case focusStop:
			if m.ui.stopEnabled {
				return m.ctl.Update(playback.StopMsg{}), true
			}
			return nil, true
		}
	}
	return nil, false
}

func (m *model) pressSpeak() tea.Cmd {
	if !m.ui.speakEnabled {
		return nil
	}
	if m.layout == playback.LayoutToggle {
		return m.ctl.Update(playback.ToggleMsg{Text: m.text.Value()})
	}
	return m.ctl.Update(playback.SpeakMsg{Text: m.text.Value()})
}

func (m *model) updateFocused(msg tea.KeyMsg) tea.Cmd {
	var cmd tea.Cmd
	switch m.focus {
	case focusText:
		m.text, cmd = m.text.Update(msg)
	case focusVoices:
		m.voices, cmd = m.voices.Update(msg)
		if it, ok := m.voices.SelectedItem().(voiceItem); ok && it.Name != m.ui.chosen {
			m.ui.chosen = it.Name
			m.ctl.Update(playback.ChooseVoiceMsg{Name: it.Name})
			m.voices.Title = "Voices · " + it.Name
		}
	}
	return cmd
}

func (m *model) nextFocus(step int) focus {
	order := []focus{focusText, focusVoices, focusSpeak, focusStop}
	if m.layout == playback.LayoutToggle {
		order = order[:3]
	}
	i := 0
	for j, f := range order {
		if f == m.focus {
			i = j
			break
		}
	}
	return order[(i+step+len(order))%len(order)]
}

func (m *model) setFocus(f focus) tea.Cmd {
	log.Debug("focus changed", "from", m.focus, "to", f)
	m.focus = f
	if f == focusText {
		return m.text.Focus()
	}
	m.text.Blur()
	return nil
}

// sync copies voice changes made by the controller into the list widget.
func (m *model) sync() tea.Cmd {
	if !m.ui.voicesDirty {
		return nil
	}
	m.ui.voicesDirty = false

	items := make([]list.Item, len(m.ui.voices))
	selected := 0
	for i, v := range m.ui.voices {
		items[i] = voiceItem{v}
		if v.Name == m.ui.chosen {
			selected = i
		}
	}
	cmd := m.voices.SetItems(items)
	m.voices.Select(selected)

	m.voices.Title = "Voices"
	if m.ui.chosen != "" {
		m.voices.Title += " · " + m.ui.chosen
	}
	return cmd
}

func (m *model) resize() {
	w := max(10, m.width-paneStyle.GetHorizontalFrameSize())

	// header, buttons, status bar and help
	chrome := 3 + lipgloss.Height(m.help.View(m.keys)) + 2*paneStyle.GetVerticalFrameSize()
	avail := max(6, m.height-chrome)
	textHeight := max(3, avail*2/5)

	m.text.SetWidth(w)
	m.text.SetHeight(textHeight)
	m.voices.SetSize(w, max(3, avail-textHeight))
	m.help.Width = m.width
}

func (m model) View() string {
	pane := func(f focus, s string) string {
		if m.focus == f {
			return focusedPaneStyle.Render(s)
		}
		return paneStyle.Render(s)
	}

	return lipgloss.JoinVertical(lipgloss.Left,
		m.headerView(),
		pane(focusText, m.text.View()),
		pane(focusVoices, m.voices.View()),
		m.buttonsView(),
		m.statusBarView(),
		m.help.View(m.keys),
	)
}

func (m model) headerView() string {
	return logoStyle.Render("readaloud") + " " +
		lipgloss.NewStyle().Foreground(gray).Render("engine: "+m.host.Name())
}

func (m model) buttonsView() string {
	button := func(label string, enabled, focused bool) string {
		switch {
		case !enabled:
			return disabledButtonStyle.Render(label)
		case focused:
			return focusedButtonStyle.Render(label)
		default:
			return buttonStyle.Render(label)
		}
	}

	row := []string{button(m.ui.speakLabel, m.ui.speakEnabled, m.focus == focusSpeak)}
	if m.layout == playback.LayoutSplit {
		row = append(row, button(playback.LabelStop, m.ui.stopEnabled, m.focus == focusStop))
	}
	return " " + lipgloss.JoinHorizontal(lipgloss.Top, row...)
}

func (m model) statusBarView() string {
	var b strings.Builder

	icon := "■"
	if m.ctl.State() == playback.Speaking {
		icon = "▶"
	}
	state := statusBarStateStyle(fmt.Sprintf(" %s %s ", icon, m.ctl.State()))

	style := statusBarMessageStyle
	switch {
	case m.ui.status.Text == "":
		style = statusBarNoteStyle
	case m.ui.status.Level == playback.LevelError:
		style = statusBarErrorStyle
	}

	note := truncate.StringWithTail(" "+m.ui.status.Text+" ", uint(max(0, //nolint:gosec
		m.width-ansi.PrintableRuneWidth(state),
	)), ellipsis)
	note = style(note)

	padding := max(0, m.width-ansi.PrintableRuneWidth(state)-ansi.PrintableRuneWidth(note))
	fmt.Fprintf(&b, "%s%s%s", note, style(strings.Repeat(" ", padding)), state)
	return b.String()
}
