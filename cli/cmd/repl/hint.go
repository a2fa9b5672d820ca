package repl

import (
	"errors"
	"strings"

	"github.com/charmbracelet/lipgloss"

	"github.com/ardnew/umbra/lang"
)

// filterHelp describes the builtin filters.
var filterHelp = map[string]string{
	"upper":      "upper case",
	"lower":      "lower case",
	"title":      "title case of every word",
	"capitalize": "upper case of the first character",
	"trim":       "strip leading and trailing whitespace",
	"squash":     "collapse runs of whitespace",
	"reverse":    "characters in reverse order",
	"length":     "number of characters",
	"snake":      "lower-case words joined by '_'",
}

var (
	filterNameStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("6")).
			Bold(true)
	filterDescStyle = lipgloss.NewStyle().Foreground(lipgloss.Color("8"))
)

// filterHint returns the description line for the filter named by the word
// at the cursor, or "" if the cursor is not on a known filter.
func (m model) filterHint() string {
	input := m.input.Value()

	word, start, _ := wordBounds(input, m.input.Position())
	if word == "" || positionAt(input, start) != atFilter {
		return ""
	}

	name := strings.ToLower(word)
	if _, ok := m.functions[name]; !ok {
		return ""
	}

	desc, ok := filterHelp[name]
	if !ok {
		desc = "user filter"
	}

	return filterNameStyle.Render(name) + filterDescStyle.Render(": "+desc)
}

// preview renders input for the live preview line. A template that does not
// parse yet shows the parser's message instead of a value.
func (m model) preview(input string) string {
	script, err := m.cache.Get(m.ctxFunc(), input)
	if err != nil {
		var perr *lang.ParseError
		if errors.As(err, &perr) {
			return hintStyle.Render("… " + perr.Message)
		}

		return errorStyle.Render(err.Error())
	}

	out := resultStyle.Render("= " + script.Evaluate(m.functions, m.provider))

	if unknown := script.UnknownFunctions(m.functions); len(unknown) > 0 {
		out += hintStyle.Render("  (unknown: " + strings.Join(unknown, ", ") + ")")
	}

	return out
}
