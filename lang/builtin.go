package lang

import (
	"maps"
	"strconv"
	"strings"
	"sync"
	"unicode"
	"unicode/utf8"

	"golang.org/x/text/cases"
	"golang.org/x/text/language"
)

var (
	builtinOnce sync.Once
	builtins    FunctionMap
)

// Builtins returns a new map of the standard filter functions. Callers may
// add to or override entries in the returned map.
//
//	upper       Unicode upper case
//	lower       Unicode lower case
//	title       Unicode title case of every word
//	capitalize  upper case of the first character only
//	trim        leading and trailing whitespace removed
//	squash      runs of whitespace collapsed to one space, trimmed
//	reverse     characters in reverse order
//	length      number of characters
//	snake       lower-case words joined by '_'
func Builtins() FunctionMap {
	builtinOnce.Do(func() {
		builtins = FunctionMap{
			"upper":      caser(func() cases.Caser { return cases.Upper(language.Und) }),
			"lower":      caser(func() cases.Caser { return cases.Lower(language.Und) }),
			"title":      caser(func() cases.Caser { return cases.Title(language.Und) }),
			"capitalize": capitalize,
			"trim":       strings.TrimSpace,
			"squash":     squash,
			"reverse":    reverse,
			"length":     length,
			"snake":      snake,
		}
	})

	return maps.Clone(builtins)
}

// caser adapts a cases.Caser constructor to a Filter. A Caser carries state,
// so each call gets its own.
func caser(mk func() cases.Caser) Filter {
	return func(s string) string { return mk().String(s) }
}

func capitalize(s string) string {
	r, n := utf8.DecodeRuneInString(s)
	if n == 0 {
		return s
	}

	return string(unicode.ToUpper(r)) + s[n:]
}

func squash(s string) string { return strings.Join(strings.Fields(s), " ") }

func reverse(s string) string {
	r := []rune(s)
	for i, j := 0, len(r)-1; i < j; i, j = i+1, j-1 {
		r[i], r[j] = r[j], r[i]
	}

	return string(r)
}

func length(s string) string { return strconv.Itoa(utf8.RuneCountInString(s)) }

func snake(s string) string {
	words := strings.FieldsFunc(s, func(r rune) bool {
		return !unicode.IsLetter(r) && !unicode.IsDigit(r)
	})

	for i, w := range words {
		words[i] = strings.ToLower(w)
	}

	return strings.Join(words, "_")
}
