package repl

import (
	"errors"
	"os"
	"path/filepath"
	"slices"
	"testing"
)

func TestHistory_Persist(t *testing.T) {
	path := filepath.Join(t.TempDir(), baseHistory)

	h := NewHistory(path)
	if err := h.Load(); err != nil {
		t.Fatalf("Load() on missing file = %v", err)
	}

	for _, e := range []HistoryEntry{
		{"Hello [name]", modeEval},
		{"set name Ada", modeCtrl},
		{"  ", modeEval},
		{"[hp]", modeEval},
		{"[hp]", modeEval},
	} {
		if err := h.Add(e.Line, e.Mode); err != nil {
			t.Fatalf("Add(%q) = %v", e.Line, err)
		}
	}

	want := []HistoryEntry{
		{"Hello [name]", modeEval},
		{"set name Ada", modeCtrl},
		{"[hp]", modeEval},
	}

	if got := h.Entries(); !slices.Equal(got, want) {
		t.Errorf("Entries() = %v, want %v", got, want)
	}

	data, err := os.ReadFile(path)
	if err != nil {
		t.Fatal(err)
	}

	if string(data) != "E:Hello [name]\nC:set name Ada\nE:[hp]\n" {
		t.Errorf("history file = %q", data)
	}

	reloaded := NewHistory(path)
	if err := reloaded.Load(); err != nil {
		t.Fatal(err)
	}

	if got := reloaded.Entries(); !slices.Equal(got, want) {
		t.Errorf("reloaded Entries() = %v, want %v", got, want)
	}
}

func TestHistory_MoveDuplicate(t *testing.T) {
	path := filepath.Join(t.TempDir(), baseHistory)
	h := NewHistory(path)

	for _, line := range []string{"a", "b", "a"} {
		if err := h.Add(line, modeEval); err != nil {
			t.Fatal(err)
		}
	}

	// Same text in another mode is a distinct entry.
	if err := h.Add("b", modeCtrl); err != nil {
		t.Fatal(err)
	}

	want := []HistoryEntry{{"b", modeEval}, {"a", modeEval}, {"b", modeCtrl}}
	if got := h.Entries(); !slices.Equal(got, want) {
		t.Errorf("Entries() = %v, want %v", got, want)
	}

	data, err := os.ReadFile(path)
	if err != nil {
		t.Fatal(err)
	}

	if string(data) != "E:b\nE:a\nC:b\n" {
		t.Errorf("history file = %q", data)
	}
}

func TestHistory_Entry(t *testing.T) {
	h := NewHistory("")

	if err := h.Add("x", modeEval); err != nil {
		t.Fatal(err)
	}

	if e, err := h.Entry(0); err != nil || e.Line != "x" {
		t.Errorf("Entry(0) = %v, %v", e, err)
	}

	for _, i := range []int{-1, 1} {
		if _, err := h.Entry(i); !errors.Is(err, ErrOutOfBounds) {
			t.Errorf("Entry(%d) error = %v, want ErrOutOfBounds", i, err)
		}
	}
}

func TestDecodeEntry(t *testing.T) {
	tests := []struct {
		line string
		want HistoryEntry
	}{
		{"E:[a]", HistoryEntry{"[a]", modeEval}},
		{"C:list", HistoryEntry{"list", modeCtrl}},
		{"legacy", HistoryEntry{"legacy", modeEval}},
	}

	for _, tt := range tests {
		if got := decodeEntry(tt.line); got != tt.want {
			t.Errorf("decodeEntry(%q) = %v, want %v", tt.line, got, tt.want)
		}

		if got := decodeEntry(tt.want.encode()[:len(tt.want.encode())-1]); got != tt.want {
			t.Errorf("decodeEntry(encode(%v)) = %v", tt.want, got)
		}
	}
}
