package tui

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/charmbracelet/bubbles/key"
	"github.com/charmbracelet/bubbles/textinput"
	"github.com/charmbracelet/bubbles/viewport"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"

	"github.com/nathoo/duelcore/cli"
	"github.com/nathoo/duelcore/engine"
	"github.com/nathoo/duelcore/engine/save"
	"github.com/nathoo/duelcore/engine/state"
	"github.com/nathoo/duelcore/types"
)

// rawLine stores an unstyled output line with its classification,
// so we can re-wrap and re-style when the terminal is resized.
type rawLine struct {
	text     string
	kind     lineKind
	isInput  bool // true for echoed player input
	isSystem bool // true for system messages
}

// Model is the Bubble Tea model for the duelcore TUI.
type Model struct {
	session *engine.Session

	viewport viewport.Model
	input    textinput.Model
	history  *History

	rawLines []rawLine // accumulated battle log lines (unstyled, for re-wrapping)

	width    int
	height   int
	ready    bool
	trace    bool
	quitting bool
	lastCmd  string
	saveDir  string
	pending  *types.BattleAction // skill waiting for its target
}

// gameOutputMsg carries output from the engine into the Update loop.
type gameOutputMsg struct {
	input    string   // echoed player input (empty for intro)
	lines    []string // output lines
	isSystem bool     // true for meta-command output
	isError  bool     // true when the action was rejected
}

// New creates a TUI model wired to the given session.
func New(s *engine.Session) Model {
	ti := textinput.New()
	ti.Prompt = promptFor(s, nil)
	ti.Focus()
	ti.CharLimit = 256
	ti.PromptStyle = styleInputPrompt

	return Model{
		session: s,
		input:   ti,
		history: NewHistory(100),
		saveDir: cli.DefaultSaveDir(),
	}
}

// Options adjusts a TUI started with Run.
type Options struct {
	SaveDir string // default ~/.duelcore/saves
	Trace   bool
}

// Run starts the Bubble Tea program.
func Run(s *engine.Session, opts Options) error {
	m := New(s)
	if opts.SaveDir != "" {
		m.saveDir = opts.SaveDir
	}
	m.trace = opts.Trace
	p := tea.NewProgram(m, tea.WithAltScreen(), tea.WithMouseCellMotion())
	_, err := p.Run()
	return err
}

// Init returns the initial command that produces the title and intro.
func (m Model) Init() tea.Cmd {
	return tea.Batch(textinput.Blink, m.initialOutput())
}

func (m Model) initialOutput() tea.Cmd {
	return func() tea.Msg {
		g := m.session.Defs.Game
		title := g.Title
		if g.Version != "" {
			title += " v" + g.Version
		}
		if g.Author != "" {
			title += " by " + g.Author
		}
		lines := []string{title, ""}
		if g.Intro != "" {
			lines = append(lines, g.Intro, "")
		}
		lines = append(lines, "Type /help for commands. Start with: begin")
		return gameOutputMsg{lines: lines}
	}
}

// Update handles messages (key presses, window resize, game output).
func (m Model) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	var cmds []tea.Cmd

	switch msg := msg.(type) {
	case tea.WindowSizeMsg:
		m.width = msg.Width
		m.height = msg.Height

		if !m.ready {
			m.viewport = viewport.New(m.width, m.logHeight())
			m.viewport.KeyMap = viewportKeyMap()
			m.ready = true
		} else {
			m.viewport.Width = m.width
			m.viewport.Height = m.logHeight()
		}

		m.refreshViewport()

	case tea.KeyMsg:
		switch msg.String() {
		case "ctrl+c":
			m.quitting = true
			return m, tea.Quit

		case "esc":
			if m.pending != nil {
				m.pending = nil
				m.input.Prompt = promptFor(m.session, nil)
				m = m.appendOutput(gameOutputMsg{lines: []string{"Target request cancelled."}, isSystem: true})
			}
			return m, nil

		case "enter":
			return m.handleEnter()

		case "up":
			if prev, ok := m.history.Prev(); ok {
				m.input.SetValue(prev)
				m.input.CursorEnd()
			}
			return m, nil

		case "down":
			if next, ok := m.history.Next(); ok {
				m.input.SetValue(next)
				m.input.CursorEnd()
			} else {
				m.input.SetValue("")
				m.history.ResetCursor()
			}
			return m, nil

		case "pgup", "pgdown":
			var vpCmd tea.Cmd
			m.viewport, vpCmd = m.viewport.Update(msg)
			return m, vpCmd
		}

	case gameOutputMsg:
		m = m.appendOutput(msg)
	}

	var inputCmd tea.Cmd
	m.input, inputCmd = m.input.Update(msg)
	cmds = append(cmds, inputCmd)

	return m, tea.Batch(cmds...)
}

// logHeight is what is left for the log after the board, status bar and
// input line.
func (m Model) logHeight() int {
	h := m.height - lipgloss.Height(m.renderBoard()) - 2
	if h < 1 {
		h = 1
	}
	return h
}

// handleEnter processes the submitted input line.
func (m Model) handleEnter() (tea.Model, tea.Cmd) {
	input := strings.TrimSpace(m.input.Value())
	m.input.SetValue("")

	if input == "" {
		return m, nil
	}

	m.history.Push(input)
	m.history.ResetCursor()

	// Meta-commands.
	if strings.HasPrefix(input, "/") {
		output, quit := m.handleMeta(input)
		m = m.appendOutput(gameOutputMsg{input: input, lines: output, isSystem: true})
		m.input.Prompt = promptFor(m.session, m.pending)
		if m.ready {
			m.viewport.Height = m.logHeight()
		}
		if quit {
			m.quitting = true
			return m, tea.Quit
		}
		return m, nil
	}

	var res engine.Result
	if m.pending != nil {
		pending := *m.pending
		m.pending = nil
		res = m.session.Target(pending, input)
	} else {
		// Handle "again" / "g".
		lower := strings.ToLower(input)
		if lower == "again" || lower == "g" {
			if m.lastCmd == "" {
				m = m.appendOutput(gameOutputMsg{
					input: input, lines: []string{"Nothing to repeat."}, isSystem: true,
				})
				return m, nil
			}
			input = m.lastCmd
		} else {
			m.lastCmd = input
		}
		res = m.session.Step(input)
	}

	output := res.Output
	if m.trace {
		output = append(output, formatTrace(res)...)
	}
	if res.Pending != nil {
		m.pending = res.Pending
	}
	m = m.appendOutput(gameOutputMsg{input: input, lines: output, isError: res.Err != nil && res.Pending == nil})
	m.input.Prompt = promptFor(m.session, m.pending)
	if m.ready {
		m.viewport.Height = m.logHeight()
	}
	return m, nil
}

func promptFor(s *engine.Session, p *types.BattleAction) string {
	if p != nil {
		return "target> "
	}
	return s.State.Turn.CurrentPlayerID + "> "
}

// appendOutput adds lines to the log and refreshes the viewport.
func (m Model) appendOutput(msg gameOutputMsg) Model {
	if msg.input != "" {
		m.rawLines = append(m.rawLines, rawLine{
			text: "> " + msg.input, isInput: true,
		})
	}

	for _, line := range msg.lines {
		rl := rawLine{text: line, isSystem: msg.isSystem}
		switch {
		case msg.isSystem:
		case msg.isError:
			rl.kind = kindError
		default:
			rl.kind = classifyLine(line)
		}
		m.rawLines = append(m.rawLines, rl)
	}

	// Blank line separator between actions.
	m.rawLines = append(m.rawLines, rawLine{})

	m.refreshViewport()

	return m
}

// refreshViewport re-wraps and re-styles all raw lines at the current width
// and updates the viewport content.
func (m *Model) refreshViewport() {
	if !m.ready {
		return
	}

	width := m.width
	if width < 10 {
		width = 10
	}

	var styled []string
	for _, rl := range m.rawLines {
		if rl.text == "" {
			styled = append(styled, "")
			continue
		}

		wrapped := wordWrap(rl.text, width)

		switch {
		case rl.isInput:
			styled = append(styled, stylePlayerInput.Render(wrapped))
		case rl.isSystem:
			styled = append(styled, styledSystemMsg(wrapped))
		default:
			styled = append(styled, renderLineKind(wrapped, rl.kind))
		}
	}

	m.viewport.SetContent(strings.Join(styled, "\n"))
	m.viewport.GotoBottom()
}

// wordWrap wraps text to fit within the given width, breaking at word
// boundaries.
func wordWrap(text string, width int) string {
	if width <= 0 || len(text) <= width {
		return text
	}

	var result strings.Builder
	words := strings.Fields(text)
	lineLen := 0

	for i, word := range words {
		wLen := len(word)

		if i == 0 {
			result.WriteString(word)
			lineLen = wLen
			continue
		}

		if lineLen+1+wLen > width {
			result.WriteString("\n")
			result.WriteString(word)
			lineLen = wLen
		} else {
			result.WriteString(" ")
			result.WriteString(word)
			lineLen += 1 + wLen
		}
	}

	return result.String()
}

// View renders the full TUI layout: board + log + status bar + input.
func (m Model) View() string {
	if m.quitting {
		return ""
	}
	if !m.ready {
		return "Loading..."
	}

	return m.renderBoard() + "\n" + m.viewport.View() + "\n" + m.renderStatusBar() + "\n" + m.input.View()
}

// handleMeta dispatches meta-commands. Returns output lines and quit flag.
func (m *Model) handleMeta(input string) ([]string, bool) {
	parts := strings.Fields(input)
	cmd := parts[0]
	var arg string
	if len(parts) > 1 {
		arg = parts[1]
	}

	switch cmd {
	case "/quit", "/exit":
		return []string{"Goodbye."}, true

	case "/save":
		return m.cmdSave(arg), false

	case "/load":
		return m.cmdLoad(arg), false

	case "/undo":
		m.pending = nil
		if !m.session.Undo() {
			return []string{"Nothing to undo."}, false
		}
		t := m.session.State.Turn
		return []string{fmt.Sprintf("Undone. Turn %d, %s, %s phase.", t.TurnNumber, t.CurrentPlayerID, t.Phase)}, false

	case "/cancel":
		if m.pending == nil {
			return []string{"Nothing to cancel."}, false
		}
		m.pending = nil
		return []string{"Target request cancelled."}, false

	case "/help":
		return m.cmdHelp(), false

	case "/state":
		return m.cmdState(), false

	case "/trace":
		m.trace = !m.trace
		if m.trace {
			return []string{"Trace output enabled."}, false
		}
		return []string{"Trace output disabled."}, false

	default:
		return []string{fmt.Sprintf("Unknown command: %s. Type /help for available commands.", cmd)}, false
	}
}

func (m *Model) cmdSave(name string) []string {
	if name == "" {
		name = "quicksave"
	}

	data, err := save.Save(m.session.State, m.session.Content, m.session.Seed)
	if err != nil {
		return []string{fmt.Sprintf("Save failed: %v", err)}
	}

	if err := os.MkdirAll(m.saveDir, 0o755); err != nil {
		return []string{fmt.Sprintf("Save failed: %v", err)}
	}

	path := filepath.Join(m.saveDir, name+".json")
	if err := os.WriteFile(path, data, 0o644); err != nil {
		return []string{fmt.Sprintf("Save failed: %v", err)}
	}

	return []string{fmt.Sprintf("Battle saved to %s.", name)}
}

func (m *Model) cmdLoad(name string) []string {
	if name == "" {
		name = "quicksave"
	}

	path := filepath.Join(m.saveDir, name+".json")
	data, err := os.ReadFile(path)
	if err != nil {
		return []string{fmt.Sprintf("Load failed: %v", err)}
	}

	sd, err := save.Load(data)
	if err != nil {
		return []string{fmt.Sprintf("Load failed: %v", err)}
	}

	var output []string
	if sd.Content != "" && m.session.Content != "" && sd.Content != m.session.Content {
		output = append(output, fmt.Sprintf("Warning: save was made with %s, running %s.", sd.Content, m.session.Content))
	}
	m.pending = nil
	m.session.Reset(sd.Battle)
	m.session.Seed = sd.Seed
	return append(output, fmt.Sprintf("Battle loaded from %s (turn %d).", name, sd.Battle.Turn.TurnNumber))
}

func (m *Model) cmdHelp() []string {
	return []string{
		"System:",
		"  /save [name]  - Save battle (default: quicksave)",
		"  /load [name]  - Load battle (default: quicksave)",
		"  /undo         - Take back the last action",
		"  /cancel       - Drop a pending target request (or Esc)",
		"  /quit         - Exit",
		"  /help         - Show this help",
		"  /state        - Debug: dump current state",
		"  /trace        - Toggle event trace output",
		"",
		"Battle commands:",
		"  begin (b)                    - Start your turn",
		"  move <piece> <x> <y> (m)     - Move a piece",
		"  skill <piece> <skill> [on <target>] (s)",
		"  super <piece> <skill> [on <target>]",
		"  end (e)                      - End your turn",
		"  grant <n> [to <player>]      - Add charge points",
		"  surrender (ff)               - Give up",
		"  again (g)                    - Repeat your last command",
		"",
		"Navigation: PgUp/PgDn to scroll, Up/Down for command history",
	}
}

func (m *Model) cmdState() []string {
	b := m.session.State
	output := []string{
		fmt.Sprintf("Turn: %d (%s, %s phase)", b.Turn.TurnNumber, b.Turn.CurrentPlayerID, b.Turn.Phase),
	}
	for i := range b.Pieces {
		p := &b.Pieces[i]
		pos := "off board"
		if x, y, ok := state.Position(p); ok {
			pos = fmt.Sprintf("(%d, %d)", x, y)
		}
		output = append(output, fmt.Sprintf("%s %d/%d hp at %s", p.InstanceID, p.CurrentHP, p.MaxHP, pos))
	}
	output = append(output, fmt.Sprintf("Rules: %d, undo depth: %d", len(b.Rules), m.session.CanUndo()))
	return output
}

func formatTrace(res engine.Result) []string {
	var lines []string
	if len(res.Events) > 0 {
		lines = append(lines, fmt.Sprintf("[trace] Events: %d", len(res.Events)))
		for _, e := range res.Events {
			lines = append(lines, fmt.Sprintf("[trace]   %s", e))
		}
	}
	return lines
}

// viewportKeyMap returns a viewport keymap with Up/Down disabled
// (we use those for input history).
func viewportKeyMap() viewport.KeyMap {
	return viewport.KeyMap{
		PageDown:     key.NewBinding(key.WithKeys("pgdown")),
		PageUp:       key.NewBinding(key.WithKeys("pgup")),
		HalfPageDown: key.NewBinding(key.WithKeys("ctrl+d")),
		HalfPageUp:   key.NewBinding(key.WithKeys("ctrl+u")),
		Up:           key.NewBinding(key.WithDisabled()),
		Down:         key.NewBinding(key.WithDisabled()),
	}
}
