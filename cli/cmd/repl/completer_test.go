package repl

import (
	"slices"
	"strings"
	"testing"

	"github.com/sahilm/fuzzy"
)

func TestWordBounds(t *testing.T) {
	tests := []struct {
		name      string
		input     string
		cursor    int
		wantWord  string
		wantStart int
		wantEnd   int
	}{
		{"simple", "foo", 3, "foo", 0, 3},
		{"after_bracket", "Hi [na", 6, "na", 4, 6},
		{"after_pipe", "[a | up", 7, "up", 5, 7},
		{"after_plus", "[a+fo", 5, "fo", 3, 5},
		{"in_ternary", "[x ? fo", 7, "fo", 5, 7},
		{"after_comparison", "[a > fo", 7, "fo", 5, 7},
		{"underscore", "[max_hp", 7, "max_hp", 1, 7},
		{"digits", "[hp2", 4, "hp2", 1, 4},
		{"empty_at_boundary", "[a + ", 5, "", 5, 5},
		{"empty_after_close", "[a]", 3, "", 3, 3},
		{"mid_word", "[foobar]", 4, "foobar", 1, 7},
		{"at_start", "foo", 0, "foo", 0, 3},
		{"cursor_clamped", "foo", 10, "foo", 0, 3},
		{"multibyte", "[héllo", 7, "héllo", 1, 7},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			word, start, end := wordBounds(tt.input, tt.cursor)
			if word != tt.wantWord || start != tt.wantStart || end != tt.wantEnd {
				t.Errorf("wordBounds(%q, %d) = (%q, %d, %d), want (%q, %d, %d)",
					tt.input, tt.cursor, word, start, end,
					tt.wantWord, tt.wantStart, tt.wantEnd)
			}
		})
	}
}

func TestPositionAt(t *testing.T) {
	tests := []struct {
		name  string
		input string
		at    int
		want  position
	}{
		{"plain_text", "hello", 0, inText},
		{"after_open", "Hi [na", 4, atPlaceholder},
		{"after_operator", "[a + b", 5, atPlaceholder},
		{"after_pipe", "[a | up", 5, atFilter},
		{"after_pipe_no_space", "[a|up", 3, atFilter},
		{"after_close", "[a] b", 4, inText},
		{"nested_group", "[[a] | up", 7, atFilter},
		{"open_string", `["na`, 2, inText},
		{"closed_string", `["x" + na`, 7, atPlaceholder},
		{"ternary_branch", "[a ? b : c", 9, atPlaceholder},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := positionAt(tt.input, tt.at); got != tt.want {
				t.Errorf("positionAt(%q, %d) = %d, want %d", tt.input, tt.at, got, tt.want)
			}
		})
	}
}

func TestCandidates(t *testing.T) {
	m := testModel(t, Session{
		Vars:   map[string]string{"hp": "12", "name": "Ada"},
		Derive: map[string]string{"Double": "hp * 2"},
	})

	placeholders := []string{"double", "hp", "name"}

	tests := []struct {
		name  string
		mode  inputMode
		input string
		want  []string
	}{
		{"placeholder", modeEval, "[na", placeholders},
		{"filter", modeEval, "[name | up", m.filterNames()},
		{"text", modeEval, "na", nil},
		{"command", modeCtrl, "se", ctrlCommands},
		{"set_name", modeCtrl, "set h", placeholders},
		{"unset_name", modeCtrl, "unset h", placeholders},
		{"set_value", modeCtrl, "set hp 1", nil},
		{"other_command", modeCtrl, "list x", nil},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			m.mode = tt.mode

			_, start, _ := wordBounds(tt.input, len(tt.input))
			if got := m.candidates(tt.input, start); !slices.Equal(got, tt.want) {
				t.Errorf("candidates(%q) = %q, want %q", tt.input, got, tt.want)
			}
		})
	}
}

func TestComputeMatches(t *testing.T) {
	m := testModel(t, Session{Vars: map[string]string{"hp": "1", "max_hp": "2", "name": "x"}})

	m.input.SetValue("Hi [hp")
	m.input.SetCursor(6)

	matches, start, end := m.computeMatches()
	if start != 4 || end != 6 {
		t.Errorf("word bounds = (%d, %d), want (4, 6)", start, end)
	}

	var got []string
	for _, match := range matches {
		got = append(got, match.Str)
	}

	slices.Sort(got)

	if want := []string{"hp", "max_hp"}; !slices.Equal(got, want) {
		t.Errorf("matches = %q, want %q", got, want)
	}

	m.input.SetValue("Hi [")
	m.input.SetCursor(4)

	if matches, _, _ := m.computeMatches(); len(matches) != 0 {
		t.Errorf("empty word produced matches: %v", matches)
	}
}

func TestRenderCandidateBar(t *testing.T) {
	matches := fuzzy.Find("a", []string{"alpha", "beta", "gamma", "delta"})

	if bar := renderCandidateBar(nil, 0, false, 80); bar != "" {
		t.Errorf("bar without matches = %q", bar)
	}

	full := renderCandidateBar(matches, -1, false, 80)
	for _, name := range []string{"alpha", "beta", "gamma", "delta"} {
		if !strings.Contains(full, name) {
			t.Errorf("bar %q missing %q", full, name)
		}
	}

	narrow := renderCandidateBar(matches, 0, true, 12)
	if !strings.HasSuffix(narrow, "...") {
		t.Errorf("narrow bar not ellipsized: %q", narrow)
	}
}
