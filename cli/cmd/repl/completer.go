package repl

import (
	"slices"
	"strings"
	"unicode"
	"unicode/utf8"

	"github.com/charmbracelet/lipgloss"
	"github.com/sahilm/fuzzy"

	"github.com/ardnew/umbra/lang"
)

// ctrlCommands are the available control-mode commands.
var ctrlCommands = []string{
	"help", "list", "filters", "set", "unset", "edit", "clear", "quit",
}

// isWordRune reports whether r can appear in a placeholder or filter name.
func isWordRune(r rune) bool {
	return unicode.IsLetter(r) || unicode.IsDigit(r) || r == '_'
}

// wordBounds returns the name at the cursor position and its byte boundaries
// within input. The word is empty when the cursor does not touch a name.
func wordBounds(input string, cursor int) (word string, start, end int) {
	cursor = min(max(cursor, 0), len(input))

	start = cursor
	for start > 0 {
		r, size := utf8.DecodeLastRuneInString(input[:start])
		if !isWordRune(r) {
			break
		}

		start -= size
	}

	end = cursor
	for end < len(input) {
		r, size := utf8.DecodeRuneInString(input[end:])
		if !isWordRune(r) {
			break
		}

		end += size
	}

	return input[start:end], start, end
}

// position classifies what a name at some offset in a template refers to.
type position int

const (
	inText        position = iota // plain text or a quoted literal
	atPlaceholder                 // an identifier inside brackets
	atFilter                      // the function name after '|'
)

// positionAt reports what a name beginning at byte offset at would be,
// judging by the tokens before it.
func positionAt(input string, at int) position {
	prefix := input[:at]

	var (
		depth int
		last  lang.Token
		seen  bool
	)

	for tok := range lang.Tokenize(prefix).All() {
		switch tok.Kind {
		case lang.TokenOpenBracket:
			depth++

		case lang.TokenCloseBracket:
			depth--
		}

		last, seen = tok, true
	}

	if depth <= 0 || !seen {
		return inText
	}

	if inOpenString(prefix, last) {
		return inText
	}

	if last.Kind == lang.TokenPipe {
		return atFilter
	}

	return atPlaceholder
}

// inOpenString reports whether last is a quoted literal still open at the end
// of prefix.
func inOpenString(prefix string, last lang.Token) bool {
	if last.Kind != lang.TokenText {
		return false
	}

	runes := []rune(prefix)
	if last.End != len(runes) || runes[last.Start] != '"' {
		return false
	}

	return last.End-last.Start < 2 || runes[last.End-1] != '"'
}

// candidates returns the completion list for a word starting at wordStart.
func (m model) candidates(input string, wordStart int) []string {
	if m.mode == modeCtrl {
		fields := strings.Fields(input[:wordStart])

		switch {
		case len(fields) == 0:
			return ctrlCommands

		case len(fields) == 1 && (fields[0] == "set" || fields[0] == "unset"):
			return m.placeholderNames()

		default:
			return nil
		}
	}

	switch positionAt(input, wordStart) {
	case atPlaceholder:
		return m.placeholderNames()

	case atFilter:
		return m.filterNames()

	default:
		return nil
	}
}

func (m model) placeholderNames() []string {
	names := m.vars.Names()
	for name := range m.derive {
		names = append(names, strings.ToLower(name))
	}

	slices.Sort(names)

	return slices.Compact(names)
}

func (m model) filterNames() []string {
	names := make([]string, 0, len(m.functions))
	for name := range m.functions {
		names = append(names, name)
	}

	slices.Sort(names)

	return names
}

// computeMatches calculates the fuzzy match results for the word at the
// cursor, ranked best-first, along with the word boundaries. An empty word
// yields no matches so the hint line stays visible.
func (m model) computeMatches() (
	matches fuzzy.Matches,
	wordStart, wordEnd int,
) {
	input := m.input.Value()

	word, wordStart, wordEnd := wordBounds(input, m.input.Position())
	if word == "" {
		return nil, wordStart, wordEnd
	}

	candidates := m.candidates(input, wordStart)
	if len(candidates) == 0 {
		return nil, wordStart, wordEnd
	}

	return fuzzy.Find(word, candidates), wordStart, wordEnd
}

// renderCandidateBar builds the single-line completion bar, ellipsized to fit
// within the given terminal width. Each candidate is rendered with its matched
// characters highlighted. The selected candidate (when tabbing) uses the
// selected style.
func renderCandidateBar(
	matches fuzzy.Matches,
	suggIdx int,
	tabActive bool,
	width int,
) string {
	if len(matches) == 0 || width <= 0 {
		return ""
	}

	const sep = "  "

	sepWidth := lipgloss.Width(sep)
	ellipsis := hintStyle.Render("...")
	ellipsisWidth := lipgloss.Width(ellipsis)

	var b strings.Builder

	used := 0

	for i, match := range matches {
		rendered := renderCandidate(match, tabActive && i == suggIdx)

		entryWidth := lipgloss.Width(rendered)
		if i > 0 {
			entryWidth += sepWidth
		}

		if i > 0 && used+entryWidth+ellipsisWidth > width {
			b.WriteString(sep)
			b.WriteString(ellipsis)

			break
		}

		if i > 0 {
			b.WriteString(sep)
		}

		b.WriteString(rendered)

		used += entryWidth
	}

	return b.String()
}

// renderCandidate renders a single candidate with matched characters
// highlighted.
func renderCandidate(match fuzzy.Match, selected bool) string {
	base, highlight := suggestionStyle, matchStyle
	if selected {
		base, highlight = selectedStyle, selectedMatchStyle
	}

	var b strings.Builder

	for i, r := range match.Str {
		if slices.Contains(match.MatchedIndexes, i) {
			b.WriteString(highlight.Render(string(r)))
		} else {
			b.WriteString(base.Render(string(r)))
		}
	}

	return b.String()
}
