// Package tui implements the interactive chat screen.
package tui

import (
	"context"
	"errors"
	"fmt"
	"strconv"
	"strings"

	"github.com/charmbracelet/bubbles/help"
	"github.com/charmbracelet/bubbles/key"
	"github.com/charmbracelet/bubbles/spinner"
	"github.com/charmbracelet/bubbles/textinput"
	"github.com/charmbracelet/bubbles/viewport"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"
	"github.com/longkey1/llmchat/internal/chat"
	"github.com/longkey1/llmchat/internal/launch"
	"github.com/longkey1/llmchat/internal/markup"
	"github.com/muesli/reflow/wordwrap"
	"github.com/muesli/reflow/wrap"
)

const (
	defaultTitle = "llmchat"
	placeholder  = "Type your message"

	// title bar, input line, footer and the blank line above the input
	chromeHeight = 4
)

// completionMsg carries a finished job back to Update.
type completionMsg chat.Outcome

// Options configures the screen
type Options struct {
	Title    string
	Model    string
	Opener   launch.Opener
	Renderer *lipgloss.Renderer
}

type styles struct {
	title   lipgloss.Style
	model   lipgloss.Style
	status  lipgloss.Style
	spinner lipgloss.Style
}

func newStyles(r *lipgloss.Renderer) styles {
	return styles{
		title:   r.NewStyle().Bold(true).Foreground(lipgloss.Color("#" + markup.ColorLink)),
		model:   r.NewStyle().Faint(true),
		status:  r.NewStyle().Faint(true),
		spinner: r.NewStyle().Foreground(lipgloss.Color("#" + markup.ColorLink)),
	}
}

// Model is the Bubble Tea model of the chat screen. The session is only
// touched from Update.
type Model struct {
	ctx     context.Context
	cancel  context.CancelFunc
	session *chat.Session
	opener  launch.Opener
	painter *markup.Painter
	refs    []markup.Ref

	viewport viewport.Model
	input    textinput.Model
	spinner  spinner.Model
	help     help.Model
	keys     keyMap
	styles   styles

	title    string
	model    string
	width    int
	height   int
	ready    bool
	quitting bool
}

// New creates the screen model. Jobs run under a context derived from ctx
// that is cancelled when the screen quits.
func New(ctx context.Context, session *chat.Session, opts Options) Model {
	renderer := opts.Renderer
	if renderer == nil {
		renderer = lipgloss.DefaultRenderer()
	}
	opener := opts.Opener
	if opener == nil {
		opener = launch.System{}
	}
	title := opts.Title
	if title == "" {
		title = defaultTitle
	}

	painter := markup.NewPainter(renderer)
	// OSC 8 sequences confuse line wrapping; references are opened with /open.
	painter.Hyperlinks = false

	ti := textinput.New()
	ti.Placeholder = placeholder
	ti.Prompt = "> "
	ti.CharLimit = 4096
	ti.Focus()

	st := newStyles(renderer)
	sp := spinner.New()
	sp.Spinner = spinner.Dot
	sp.Style = st.spinner

	ctx, cancel := context.WithCancel(ctx)
	return Model{
		ctx:     ctx,
		cancel:  cancel,
		session: session,
		opener:  opener,
		painter: painter,
		input:   ti,
		spinner: sp,
		help:    help.New(),
		keys:    defaultKeyMap(),
		styles:  st,
		title:   title,
		model:   opts.Model,
	}
}

func (m Model) Init() tea.Cmd {
	return textinput.Blink
}

func (m Model) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.WindowSizeMsg:
		m.resize(msg.Width, msg.Height)
		return m, nil

	case tea.KeyMsg:
		switch {
		case key.Matches(msg, m.keys.Quit):
			return m.quit()
		case key.Matches(msg, m.keys.Submit):
			return m.submit()
		case key.Matches(msg, m.keys.PageUp, m.keys.PageDown):
			var cmd tea.Cmd
			m.viewport, cmd = m.viewport.Update(msg)
			return m, cmd
		}
		var cmd tea.Cmd
		m.input, cmd = m.input.Update(msg)
		return m, cmd

	case tea.MouseMsg:
		var cmd tea.Cmd
		m.viewport, cmd = m.viewport.Update(msg)
		return m, cmd

	case completionMsg:
		if _, ok := m.session.Complete(chat.Outcome(msg)); ok {
			m.refresh()
		}
		return m, nil

	case spinner.TickMsg:
		if m.session.InFlight() == 0 {
			return m, nil
		}
		var cmd tea.Cmd
		m.spinner, cmd = m.spinner.Update(msg)
		return m, cmd
	}

	var cmd tea.Cmd
	m.input, cmd = m.input.Update(msg)
	return m, cmd
}

func (m Model) View() string {
	if m.quitting {
		return ""
	}
	if !m.ready {
		return "Initializing..."
	}

	header := m.styles.title.Render(m.title)
	if m.model != "" {
		header += " " + m.styles.model.Render(m.model)
	}

	var footer string
	if n := m.session.InFlight(); n > 0 {
		footer = fmt.Sprintf("%s %s", m.spinner.View(), m.styles.status.Render(waitingText(n)))
	} else {
		footer = m.help.View(m.keys)
	}

	return fmt.Sprintf("%s\n%s\n\n%s\n%s", header, m.viewport.View(), m.input.View(), footer)
}

func waitingText(n int) string {
	if n == 1 {
		return "Waiting for reply..."
	}
	return fmt.Sprintf("Waiting for %d replies...", n)
}

func (m *Model) resize(width, height int) {
	m.width = width
	m.height = height
	vpHeight := max(height-chromeHeight, 1)

	if !m.ready {
		m.viewport = viewport.New(width, vpHeight)
		m.ready = true
	} else {
		m.viewport.Width = width
		m.viewport.Height = vpHeight
	}
	m.input.Width = max(width-len(m.input.Prompt)-1, 1)
	m.help.Width = width
	m.refresh()
}

// refresh repaints the transcript and renumbers the references.
func (m *Model) refresh() {
	var b strings.Builder
	m.refs = nil
	for i, turn := range m.session.Transcript() {
		if i > 0 {
			b.WriteString("\n\n")
		}
		painted := m.painter.Paint(turn.Text, len(m.refs)+1)
		m.refs = append(m.refs, painted.Refs...)
		b.WriteString(painted.Text)
	}

	if !m.ready {
		return
	}
	content := b.String()
	if w := m.viewport.Width; w > 0 {
		content = wrap.String(wordwrap.String(content, w), w)
	}
	m.viewport.SetContent(content)
	m.viewport.GotoBottom()
}

func (m Model) submit() (tea.Model, tea.Cmd) {
	value := m.input.Value()
	m.input.Reset()

	if name, arg, ok := parseCommand(value); ok {
		switch name {
		case "quit":
			return m.quit()
		case "open":
			m.open(arg)
			m.refresh()
			return m, nil
		}
	}

	idle := m.session.InFlight() == 0
	job, ok := m.session.Submit(value)
	if !ok {
		return m, nil
	}
	m.refresh()

	cmds := []tea.Cmd{runJob(m.ctx, job)}
	if idle {
		cmds = append(cmds, m.spinner.Tick)
	}
	return m, tea.Batch(cmds...)
}

func (m *Model) open(arg string) {
	if len(m.refs) == 0 {
		m.session.ReportLinkError(arg, errors.New("there are no links to open"))
		return
	}
	n, err := strconv.Atoi(arg)
	if err != nil || n < 1 || n > len(m.refs) {
		m.session.ReportLinkError(arg, fmt.Errorf("no link numbered %q, choose 1-%d", arg, len(m.refs)))
		return
	}
	url := m.refs[n-1].URL
	if err := m.opener.Open(url); err != nil {
		m.session.ReportLinkError(url, err)
	}
}

func (m Model) quit() (tea.Model, tea.Cmd) {
	m.quitting = true
	m.cancel()
	m.session.Close()
	return m, tea.Quit
}

func runJob(ctx context.Context, job chat.Job) tea.Cmd {
	return func() tea.Msg {
		return completionMsg(job(ctx))
	}
}

// parseCommand recognises "/quit" and "/open N".
func parseCommand(input string) (name, arg string, ok bool) {
	fields := strings.Fields(input)
	if len(fields) == 0 || !strings.HasPrefix(fields[0], "/") {
		return "", "", false
	}
	name = strings.TrimPrefix(fields[0], "/")
	switch {
	case name == "quit" && len(fields) == 1:
		return name, "", true
	case name == "open" && len(fields) <= 2:
		if len(fields) == 2 {
			arg = fields[1]
		}
		return name, arg, true
	}
	return "", "", false
}

// Run shows the chat screen until the user quits or ctx is done.
func Run(ctx context.Context, session *chat.Session, opts Options) error {
	p := tea.NewProgram(
		New(ctx, session, opts),
		tea.WithAltScreen(),
		tea.WithMouseCellMotion(),
		tea.WithContext(ctx),
	)
	if _, err := p.Run(); err != nil {
		return fmt.Errorf("error running chat screen: %w", err)
	}
	return nil
}
