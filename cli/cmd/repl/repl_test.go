package repl

import (
	"context"
	"path/filepath"
	"strings"
	"testing"

	tea "github.com/charmbracelet/bubbletea"

	"github.com/ardnew/umbra/placeholder"
)

func testModel(t *testing.T, s Session) model {
	t.Helper()

	m, err := newModel(context.Background(), s)
	if err != nil {
		t.Fatalf("newModel() = %v", err)
	}

	return m
}

func typeText(m model, text string) model {
	m, _ = m.handleKey(tea.KeyMsg{Type: tea.KeyRunes, Runes: []rune(text)})

	return m
}

func press(m model, key tea.KeyType) (model, tea.Cmd) {
	return m.handleKey(tea.KeyMsg{Type: key})
}

func TestNewModel(t *testing.T) {
	m := testModel(t, Session{})

	if m.vars == nil || len(m.functions) == 0 {
		t.Error("newModel did not default vars and functions")
	}

	if m.history.path != "" {
		t.Errorf("history path without cache dir = %q", m.history.path)
	}

	dir := t.TempDir()
	m = testModel(t, Session{CacheDir: dir})

	if want := filepath.Join(dir, baseHistory); m.history.path != want {
		t.Errorf("history path = %q, want %q", m.history.path, want)
	}

	if _, err := newModel(context.Background(), Session{
		Derive: map[string]string{"x": "1 +"},
	}); err == nil {
		t.Error("invalid derive expression accepted")
	}
}

func TestModel_Preview(t *testing.T) {
	m := testModel(t, Session{Vars: placeholder.Map{"hp": "12", "name": "ada"}})

	tests := []struct {
		input string
		want  string
	}{
		{"[hp]", "= 12"},
		{"Hi [name | upper]!", "= Hi ADA!"},
		{"[name | nosuch]", "(unknown: nosuch)"},
		{"[hp >", "… expected expression"},
	}

	for _, tt := range tests {
		t.Run(tt.input, func(t *testing.T) {
			if got := m.preview(tt.input); !strings.Contains(got, tt.want) {
				t.Errorf("preview(%q) = %q, want it to contain %q", tt.input, got, tt.want)
			}
		})
	}
}

func TestModel_View(t *testing.T) {
	m := testModel(t, Session{Vars: placeholder.Map{"hp": "12"}})

	if !strings.Contains(m.View(), "Type a template") {
		t.Errorf("empty eval view = %q", m.View())
	}

	m = typeText(m, "[hp]")

	if !strings.Contains(m.View(), "= 12") {
		t.Errorf("view after typing = %q", m.View())
	}

	m = typeText(testModel(t, Session{}), "[a | upper")

	if !strings.Contains(m.View(), "upper: upper case") {
		t.Errorf("filter hint missing: %q", m.View())
	}
}

func TestModel_TabCompletion(t *testing.T) {
	m := testModel(t, Session{Vars: placeholder.Map{"hp": "12", "name": "ada"}})

	m = typeText(m, "[h")
	if len(m.matches) != 1 || m.matches[0].Str != "hp" {
		t.Fatalf("matches = %v", m.matches)
	}

	m, _ = press(m, tea.KeyTab)

	if got := m.input.Value(); got != "[hp" {
		t.Errorf("completed input = %q, want %q", got, "[hp")
	}

	if m.tabActive || m.matches != nil {
		t.Error("single candidate did not confirm")
	}
}

func TestModel_TabCycle(t *testing.T) {
	m := testModel(t, Session{Vars: placeholder.Map{"ab": "1", "abc": "2", "abcd": "3"}})

	m = typeText(m, "[ab")
	if len(m.matches) != 3 {
		t.Fatalf("matches = %v", m.matches)
	}

	m, _ = press(m, tea.KeyTab)
	first := m.input.Value()

	m, _ = press(m, tea.KeyTab)
	second := m.input.Value()

	if !m.tabActive || first == second {
		t.Errorf("tab did not cycle: %q then %q", first, second)
	}

	m, _ = press(m, tea.KeyShiftTab)

	if got := m.input.Value(); got != first {
		t.Errorf("shift-tab = %q, want %q", got, first)
	}

	m, _ = press(m, tea.KeyEsc)

	if got := m.input.Value(); got != "[ab" || m.tabActive {
		t.Errorf("esc during cycling = %q, want %q", got, "[ab")
	}
}

func TestModel_Commands(t *testing.T) {
	vars := placeholder.Map{"hp": "12", "name": "ada"}
	m := testModel(t, Session{
		Vars:   vars,
		Derive: map[string]string{"double": "hp * 2"},
	})

	m, _ = press(m, tea.KeyEsc)
	if m.mode != modeCtrl {
		t.Fatal("esc did not switch to command mode")
	}

	run := func(line string) {
		t.Helper()

		m = typeText(m, line)
		m, _ = press(m, tea.KeyEnter)

		if m.input.Value() != "" {
			t.Errorf("input not cleared after %q", line)
		}
	}

	run("set HP 5")

	if vars["hp"] != "5" {
		t.Errorf("set: hp = %q", vars["hp"])
	}

	if v, _ := m.provider.Placeholder("double"); v != "10" {
		t.Errorf("derived value after set = %q, want 10", v)
	}

	run("unset name")

	if _, ok := vars["name"]; ok {
		t.Error("unset did not remove name")
	}

	run("bogus")

	if m.quitting {
		t.Error("unknown command quit the REPL")
	}

	list := m.listPlaceholders()
	for _, want := range []string{"hp", `"5"`, "double", `"10"`, "= hp * 2"} {
		if !strings.Contains(list, want) {
			t.Errorf("list missing %q:\n%s", want, list)
		}
	}

	if got := m.history.Len(); got != 3 {
		t.Errorf("history length = %d, want 3", got)
	}

	run("quit")

	if !m.quitting {
		t.Error("quit did not stop the REPL")
	}
}

func TestModel_History(t *testing.T) {
	m := testModel(t, Session{Vars: placeholder.Map{"hp": "12"}})

	for _, e := range []HistoryEntry{
		{"[hp]", modeEval},
		{"list", modeCtrl},
		{"Hi", modeEval},
	} {
		if err := m.history.Add(e.Line, e.Mode); err != nil {
			t.Fatal(err)
		}
	}

	m.historyIdx = m.history.Len()

	m, _ = press(m, tea.KeyUp)
	if m.input.Value() != "Hi" || m.mode != modeEval {
		t.Errorf("up = %q (mode %d)", m.input.Value(), m.mode)
	}

	m, _ = press(m, tea.KeyUp)
	if m.input.Value() != "list" || m.mode != modeCtrl {
		t.Errorf("up = %q (mode %d), want command", m.input.Value(), m.mode)
	}

	m, _ = press(m, tea.KeyShiftUp)
	if m.mode != modeCtrl || m.input.Value() != "list" {
		t.Errorf("shift-up left command history: %q", m.input.Value())
	}

	m, _ = press(m, tea.KeyDown)
	m, _ = press(m, tea.KeyDown)

	if m.input.Value() != "" || m.historyIdx != m.history.Len() {
		t.Errorf("down past newest = %q at %d", m.input.Value(), m.historyIdx)
	}
}

func TestModel_Quit(t *testing.T) {
	m := testModel(t, Session{})

	m = typeText(m, "x")
	m, _ = press(m, tea.KeyCtrlC)

	if m.quitting || m.input.Value() != "" {
		t.Error("ctrl-c with input should clear it")
	}

	m, cmd := press(m, tea.KeyCtrlC)
	if !m.quitting || cmd == nil {
		t.Error("ctrl-c on empty input should quit")
	}

	if m.View() != "" {
		t.Error("view after quit is not empty")
	}
}
