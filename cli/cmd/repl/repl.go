package repl

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"maps"
	"path/filepath"
	"slices"
	"strconv"
	"strings"

	"github.com/charmbracelet/bubbles/textinput"
	"github.com/charmbracelet/lipgloss"
	"github.com/sahilm/fuzzy"

	tea "github.com/charmbracelet/bubbletea"

	"github.com/ardnew/umbra/lang"
	"github.com/ardnew/umbra/log"
	"github.com/ardnew/umbra/placeholder"
)

// Session configures a REPL run.
type Session struct {
	// Vars holds the static placeholder values. The REPL's set, unset, and
	// edit commands modify it in place.
	Vars placeholder.Map
	// Derive maps placeholder names to expressions over Vars.
	Derive map[string]string
	// Functions are the available filters. Nil selects [lang.Builtins].
	Functions lang.FunctionMap
	// CacheDir holds the history file. Empty keeps history in memory.
	CacheDir string
	Logger   log.Logger
}

// editVarsMsg is sent when placeholder editing completes successfully.
type editVarsMsg struct{ vars placeholder.Map }

// editCancelledMsg is sent when the user cleared the editor content.
type editCancelledMsg struct{}

// editDeclinedMsg is sent when the user declined to re-edit after an error.
type editDeclinedMsg struct{}

// editErrorMsg is sent when the edit process fails.
type editErrorMsg struct{ err error }

const (
	evalPrompt = "➜ "
	ctrlPrompt = " :"
)

// cacheCapacity bounds the templates kept parsed while typing.
const cacheCapacity = 512

func helpMessage() string {
	return `
: Commands (press Esc to toggle mode):

  help              Print this cruft
  list              List placeholders and their values
  filters           List filter functions
  set NAME VALUE    Set a placeholder
  unset NAME        Remove a placeholder
  edit              Edit placeholders as YAML in $EDITOR
  clear             Clear screen
  quit              Exit REPL

Usage:
  Type a template to preview it; press Enter to render it
  Completions for placeholders and filters appear as you type inside [ ]
  Press Tab / Shift-Tab to cycle through candidates
  Press Space to accept the current candidate
  Press Esc to toggle between template and command modes
  Use Up/Down arrows for history navigation (mode switches automatically)
  Use Shift+Up/Shift+Down for history navigation within current mode only
  Press Ctrl+C on empty line or Ctrl+D to exit
`
}

// inputMode represents the current input mode.
type inputMode int

const (
	modeEval inputMode = iota
	modeCtrl
)

// Styles.
var (
	promptStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("6")).
			Bold(true)
	ctrlPromptStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("5")).
			Bold(true)
	inputStyle      = lipgloss.NewStyle().Foreground(lipgloss.Color("15"))
	resultStyle     = lipgloss.NewStyle().Foreground(lipgloss.Color("2"))
	errorStyle      = lipgloss.NewStyle().Foreground(lipgloss.Color("1"))
	hintStyle       = lipgloss.NewStyle().Foreground(lipgloss.Color("8"))
	suggestionStyle = lipgloss.NewStyle().Foreground(lipgloss.Color("4"))
	matchStyle      = lipgloss.NewStyle().
			Foreground(lipgloss.Color("4")).
			Bold(true)
	selectedStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("0")).
			Background(lipgloss.Color("4"))
	selectedMatchStyle = selectedStyle.Bold(true)
)

// formatCommand formats the echo line of a submitted template.
func formatCommand(input string) string {
	return promptStyle.Render(evalPrompt) + inputStyle.Render(input)
}

// formatCtrlCommand formats the echo line of a submitted command.
func formatCtrlCommand(input string) string {
	return ctrlPromptStyle.Render(ctrlPrompt) + inputStyle.Render(input)
}

// model is the Bubble Tea model for the REPL.
type model struct {
	ctxFunc      func() context.Context
	input        textinput.Model
	cache        *lang.Cache
	functions    lang.FunctionMap
	vars         placeholder.Map
	derive       map[string]string
	provider     lang.Placeholders
	logger       log.Logger
	history      *History
	historyIdx   int
	matches      fuzzy.Matches // current fuzzy match results
	wordStart    int           // byte offset of current word start
	wordEnd      int           // byte offset of current word end
	suggIdx      int           // selected candidate index
	tabActive    bool          // whether user is tab-cycling
	preTabText   string        // input text before tab-cycling began
	preTabCursor int           // cursor position before tab-cycling began
	width        int           // terminal width for ellipsization
	quitting     bool
	mode         inputMode
	evalText     string
	evalCursor   int
	ctrlText     string
	ctrlCursor   int
}

// Run starts the REPL and blocks until the user quits.
func Run(ctx context.Context, s Session) (err error) {
	ctx, cancel := context.WithCancelCause(ctx)

	defer func(err *error) { cancel(*err) }(&err)

	m, err := newModel(ctx, s)
	if err != nil {
		return err
	}

	if err := m.history.Load(); err != nil {
		s.Logger.WarnContext(ctx, "could not load history", slog.Any("error", err))
	}

	s.Logger.TraceContext(
		ctx,
		"repl start",
		slog.String("cache_dir", s.CacheDir),
		slog.Int("placeholders", len(m.vars)),
		slog.Int("filters", len(m.functions)),
		slog.Int("history", m.history.Len()),
	)

	m.historyIdx = m.history.Len()

	p := tea.NewProgram(m, tea.WithContext(ctx))
	_, err = p.Run()

	return err
}

const defaultWidth = 80

func newModel(ctx context.Context, s Session) (model, error) {
	ti := textinput.New()
	ti.Prompt = promptStyle.Render(evalPrompt)
	ti.Focus()
	ti.CharLimit = 1024
	ti.Width = defaultWidth

	vars := s.Vars
	if vars == nil {
		vars = make(placeholder.Map)
	}

	functions := s.Functions
	if functions == nil {
		functions = lang.Builtins()
	}

	var historyPath string
	if s.CacheDir != "" {
		historyPath = filepath.Join(s.CacheDir, baseHistory)
	}

	m := model{
		ctxFunc: func() context.Context { return ctx },
		input:   ti,
		cache: lang.NewCache(
			lang.WithCapacity(cacheCapacity),
			lang.WithCacheLogger(s.Logger),
		),
		functions: functions,
		vars:      vars,
		derive:    s.Derive,
		logger:    s.Logger,
		history:   NewHistory(historyPath),
		width:     defaultWidth,
		mode:      modeEval,
		suggIdx:   -1,
	}

	if err := m.rebuild(); err != nil {
		return model{}, err
	}

	return m, nil
}

// rebuild recomputes the placeholder provider after vars change, so derived
// placeholders see the new values.
func (m *model) rebuild() error {
	if len(m.derive) == 0 {
		m.provider = m.vars

		return nil
	}

	derived, err := placeholder.NewDerived(m.vars, m.derive)
	if err != nil {
		return err
	}

	m.provider = placeholder.Chain{m.vars, derived}

	return nil
}

func (m model) Init() tea.Cmd {
	return textinput.Blink
}

func (m model) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.KeyMsg:
		return m.handleKey(msg)

	case tea.WindowSizeMsg:
		m.width = msg.Width
		m.input.Width = msg.Width - len(evalPrompt) - 2

		return m, nil

	case editVarsMsg:
		clear(m.vars)
		m.vars.Merge(msg.vars)

		if err := m.rebuild(); err != nil {
			return m, tea.Println(errorStyle.Render("error: " + err.Error()))
		}

		m.logger.TraceContext(
			m.ctxFunc(),
			"repl edit complete",
			slog.Int("placeholders", len(m.vars)),
		)

		return m, tea.Println(resultStyle.Render(
			"placeholders updated (" + strconv.Itoa(len(m.vars)) + ")",
		))

	case editCancelledMsg:
		return m, tea.Println(hintStyle.Render("edit cancelled"))

	case editDeclinedMsg:
		m.quitting = true

		return m, tea.Quit

	case editErrorMsg:
		return m, tea.Println(errorStyle.Render("error: " + msg.err.Error()))
	}

	var cmd tea.Cmd

	m.input, cmd = m.input.Update(msg)

	return m, cmd
}

func (m model) View() string {
	if m.quitting {
		return ""
	}

	var b strings.Builder

	b.WriteString(m.input.View())
	b.WriteString("\n")

	input := m.input.Value()

	switch {
	case m.historyIdx < m.history.Len():
		hint := fmt.Sprintf("%s/%d",
			lipgloss.NewStyle().Bold(true).Render(strconv.Itoa(m.historyIdx+1)),
			m.history.Len())
		b.WriteString(hintStyle.Render(hint))

	case strings.TrimSpace(input) == "":
		if m.mode == modeEval {
			b.WriteString(hintStyle.Render(
				"Type a template or press Esc for commands"))
		} else {
			b.WriteString(hintStyle.Render(
				"Type: help, list, filters, set, unset, edit, clear, quit (press Esc to return)"))
		}

	case len(m.matches) > 0:
		b.WriteString(renderCandidateBar(m.matches, m.suggIdx, m.tabActive, m.width))

	case m.mode == modeEval:
		if hint := m.filterHint(); hint != "" {
			b.WriteString(hint)
		} else {
			b.WriteString(m.preview(input))
		}
	}

	b.WriteString("\n")

	return b.String()
}

func (m model) handleKey(msg tea.KeyMsg) (model, tea.Cmd) {
	m.logger.TraceContext(
		m.ctxFunc(),
		"repl keypress",
		slog.String("key", msg.String()),
		slog.Int("type", int(msg.Type)),
	)

	switch msg.Type {
	case tea.KeyCtrlC:
		if m.input.Value() == "" {
			m.quitting = true

			return m, tea.Quit
		}

		m.input.SetValue("")
		m.tabActive = false
		m.historyIdx = m.history.Len()
		refreshMatches(&m, false)

		return m, nil

	case tea.KeyCtrlD:
		if m.input.Value() == "" {
			m.quitting = true

			return m, tea.Quit
		}

		return m, nil

	case tea.KeyEnter:
		if !m.tabActive || len(m.matches) == 0 {
			return m.executeInput()
		}
		// Lock in the current tab candidate without executing.
		m.tabActive = false
		refreshMatches(&m, true)

		return m, nil

	case tea.KeyTab:
		return m.cycle(1), nil

	case tea.KeyShiftTab:
		return m.cycle(-1), nil

	case tea.KeyUp:
		return m.historyMove(-1, false), nil

	case tea.KeyDown:
		return m.historyMove(1, false), nil

	case tea.KeyShiftUp:
		return m.historyMove(-1, true), nil

	case tea.KeyShiftDown:
		return m.historyMove(1, true), nil

	case tea.KeyEsc:
		if m.tabActive {
			m.tabActive = false
			m.input.SetValue(m.preTabText)
			m.input.SetCursor(m.preTabCursor)
			refreshMatches(&m, false)

			return m, nil
		}

		return m.toggleMode(), nil

	case tea.KeyRunes, tea.KeySpace:
		// Typing (including Space) ends tab-cycling, keeping the candidate.
		m.tabActive = false

		var cmd tea.Cmd

		m.historyIdx = m.history.Len()
		m.input, cmd = m.input.Update(msg)
		refreshMatches(&m, true)

		return m, cmd
	}

	// For any other key (backspace, delete, arrows, etc.),
	// update input and recompute matches without auto-confirm.
	var cmd tea.Cmd

	m.tabActive = false
	m.historyIdx = m.history.Len()
	m.input, cmd = m.input.Update(msg)
	refreshMatches(&m, false)

	return m, cmd
}

// cycle moves the tab selection by step, wrapping at either end. A single
// candidate is completed and confirmed immediately.
func (m model) cycle(step int) model {
	n := len(m.matches)
	if n == 0 {
		return m
	}

	if n == 1 {
		replaceCurrentWord(&m, m.matches[0].Str)
		m.tabActive = false
		m.suggIdx = -1
		m.matches = nil

		return m
	}

	if m.tabActive {
		m.suggIdx = (m.suggIdx + step + n) % n
	} else {
		m.tabActive = true
		m.preTabText = m.input.Value()
		m.preTabCursor = m.input.Position()

		m.suggIdx = 0
		if step < 0 {
			m.suggIdx = n - 1
		}
	}

	replaceCurrentWord(&m, m.matches[m.suggIdx].Str)

	return m
}

// replaceCurrentWord replaces the current word boundaries in the input with
// the given replacement text and repositions the cursor.
func replaceCurrentWord(m *model, replacement string) {
	input := m.input.Value()
	newInput := input[:m.wordStart] + replacement + input[m.wordEnd:]
	newCursor := m.wordStart + len(replacement)

	m.input.SetValue(newInput)
	m.input.SetCursor(newCursor)

	m.wordEnd = newCursor
}

// refreshMatches recomputes fuzzy matches for the current input state.
// When autoConfirm is true it also auto-confirms the completion when exactly
// one candidate remains and the typed word already equals that candidate.
// autoConfirm should be false for deletions and cursor navigation so that
// the user can freely edit without unexpected completions.
func refreshMatches(m *model, autoConfirm bool) {
	// Tab-cycling keeps the match list it started with.
	if m.tabActive {
		return
	}

	m.matches, m.wordStart, m.wordEnd = m.computeMatches()
	m.suggIdx = -1

	if !autoConfirm || len(m.matches) != 1 {
		return
	}

	candidate := m.matches[0].Str
	if m.input.Value()[m.wordStart:m.wordEnd] == candidate {
		m.matches = nil
	}
}

func (m model) executeInput() (model, tea.Cmd) {
	input := strings.TrimSpace(m.input.Value())
	if input == "" {
		return m, nil
	}

	m.evalText, m.evalCursor = "", 0
	m.ctrlText, m.ctrlCursor = "", 0
	m.input.SetValue("")
	m.matches = nil

	if err := m.history.Add(input, m.mode); err != nil {
		m.logger.WarnContext(m.ctxFunc(), "history write failed", slog.Any("error", err))
	}

	m.historyIdx = m.history.Len()

	if m.mode == modeCtrl {
		m.logger.TraceContext(m.ctxFunc(), "repl command", slog.String("input", input))

		return m.executeCommand(input)
	}

	m.logger.TraceContext(m.ctxFunc(), "repl render", slog.String("input", input))

	echo := tea.Println(formatCommand(input))

	script, err := m.cache.Get(m.ctxFunc(), input)
	if err != nil {
		msg := err.Error()

		var perr *lang.ParseError
		if errors.As(err, &perr) {
			msg = perr.Format()
		}

		return m, tea.Sequence(echo, tea.Println(errorStyle.Render(msg)))
	}

	out := script.Evaluate(m.functions, m.provider)

	return m, tea.Sequence(echo, tea.Println(resultStyle.Render(out)))
}

func (m model) executeCommand(input string) (model, tea.Cmd) {
	cmd, rest, _ := strings.Cut(input, " ")
	rest = strings.TrimSpace(rest)

	echo := tea.Println(formatCtrlCommand(input))

	m.logger.TraceContext(
		m.ctxFunc(),
		"repl exec command",
		slog.String("command", cmd),
		slog.String("args", rest),
	)

	switch cmd {
	case "q", "quit", "exit":
		m.quitting = true

		return m, tea.Sequence(echo, tea.Quit)

	case "h", "help":
		return m, tea.Sequence(echo, tea.Println(helpMessage()))

	case "l", "list":
		return m, tea.Sequence(echo, tea.Println(m.listPlaceholders()))

	case "f", "filters":
		return m, tea.Sequence(echo, tea.Println(m.listFilters()))

	case "s", "set":
		name, value, _ := strings.Cut(rest, " ")
		if name == "" {
			return m, tea.Sequence(echo, tea.Println(errorStyle.Render("usage: set NAME VALUE")))
		}

		m.vars.Set(name, strings.TrimSpace(value))

		return m.changed(echo)

	case "u", "unset":
		if rest == "" {
			return m, tea.Sequence(echo, tea.Println(errorStyle.Render("usage: unset NAME")))
		}

		for _, name := range strings.Fields(rest) {
			delete(m.vars, strings.ToLower(name))
		}

		return m.changed(echo)

	case "c", "clear":
		return m, tea.ClearScreen

	case "e", "edit":
		return m, tea.Sequence(echo, m.edit())

	default:
		return m, tea.Println(
			errorStyle.Render("Unknown command: " + cmd + " (try 'help')"),
		)
	}
}

// changed rebuilds the provider after a placeholder command.
func (m model) changed(echo tea.Cmd) (model, tea.Cmd) {
	if err := m.rebuild(); err != nil {
		return m, tea.Sequence(echo, tea.Println(errorStyle.Render("error: "+err.Error())))
	}

	return m, echo
}

func (m model) edit() tea.Cmd {
	cmd := &editVarsCommand{
		vars:    m.vars,
		ctxFunc: m.ctxFunc,
		logger:  m.logger,
	}

	return tea.Exec(cmd, func(err error) tea.Msg {
		if errors.Is(err, ErrEditDeclined) {
			return editDeclinedMsg{}
		}

		if err != nil {
			return editErrorMsg{err: err}
		}

		if cmd.newVars == nil {
			return editCancelledMsg{}
		}

		return editVarsMsg{vars: cmd.newVars}
	})
}

// historyMove steps through history by dir (-1 older, +1 newer). With
// sameMode it skips entries from the other mode; otherwise the input mode
// follows the entry. Moving past the newest entry clears the input.
func (m model) historyMove(dir int, sameMode bool) model {
	for i := m.historyIdx + dir; i >= 0 && i < m.history.Len(); i += dir {
		entry, err := m.history.Entry(i)
		if err != nil {
			break
		}

		if sameMode && entry.Mode != m.mode {
			continue
		}

		if entry.Mode != m.mode {
			m = m.switchToMode(entry.Mode)
		}

		m.historyIdx = i
		m.input.SetValue(entry.Line)
		m.input.SetCursor(len(entry.Line))
		refreshMatches(&m, false)

		return m
	}

	if dir > 0 && m.historyIdx < m.history.Len() {
		m.historyIdx = m.history.Len()
		m.input.SetValue("")
		refreshMatches(&m, false)
	}

	return m
}

func (m model) listPlaceholders() string {
	var b strings.Builder

	for _, name := range m.vars.Names() {
		fmt.Fprintf(&b, "  %s %s\n", name, hintStyle.Render(strconv.Quote(m.vars[name])))
	}

	for _, name := range slices.Sorted(maps.Keys(m.derive)) {
		src := m.derive[name]
		value, _ := m.provider.Placeholder(name)
		fmt.Fprintf(&b, "  %s %s %s\n",
			strings.ToLower(name), hintStyle.Render(strconv.Quote(value)), hintStyle.Render("= "+src))
	}

	if b.Len() == 0 {
		return hintStyle.Render("  (no placeholders)")
	}

	return b.String()
}

func (m model) listFilters() string {
	var b strings.Builder

	for _, name := range m.filterNames() {
		desc, ok := filterHelp[name]
		if !ok {
			desc = "user filter"
		}

		fmt.Fprintf(&b, "  %-12s %s\n", name, hintStyle.Render(desc))
	}

	return b.String()
}

// toggleMode switches between eval and control modes, preserving input state.
func (m model) toggleMode() model {
	if m.mode == modeEval {
		return m.switchToMode(modeCtrl)
	}

	return m.switchToMode(modeEval)
}

// switchToMode switches to the specified mode, preserving input state.
func (m model) switchToMode(mode inputMode) model {
	if m.mode == modeEval {
		m.evalText = m.input.Value()
		m.evalCursor = m.input.Position()
	} else {
		m.ctrlText = m.input.Value()
		m.ctrlCursor = m.input.Position()
	}

	m.mode = mode
	if mode == modeEval {
		m.input.Prompt = promptStyle.Render(evalPrompt)
		m.input.SetValue(m.evalText)
		m.input.SetCursor(m.evalCursor)
	} else {
		m.input.Prompt = ctrlPromptStyle.Render(ctrlPrompt)
		m.input.SetValue(m.ctrlText)
		m.input.SetCursor(m.ctrlCursor)
	}

	refreshMatches(&m, false)

	return m
}
