package lang

import (
	"iter"
	"maps"
	"slices"
	"strings"
)

// Set is a set of lower-cased names.
type Set map[string]struct{}

// Has reports whether name is in the set. The lookup is case-insensitive.
func (s Set) Has(name string) bool {
	_, ok := s[strings.ToLower(name)]

	return ok
}

// Len returns the number of names in the set.
func (s Set) Len() int { return len(s) }

// Sorted returns the names in lexical order.
func (s Set) Sorted() []string {
	if len(s) == 0 {
		return nil
	}

	return slices.Sorted(maps.Keys(s))
}

// All returns an iterator over the names in lexical order.
func (s Set) All() iter.Seq[string] {
	return slices.Values(s.Sorted())
}

func (s Set) add(name string) { s[strings.ToLower(name)] = struct{}{} }

// Scan extracts the placeholder names and filter function names referenced
// by the bracketed expressions in a token stream, then rewinds the stream.
//
// Scan tolerates malformed templates and never fails, so it can run on
// partially typed text. Nesting is tracked with a depth counter: every
// identifier inside any bracket level is a dependency unless it directly
// follows a pipe, in which case it is a function name.
func Scan(s *Stream) (dependencies, functions Set) {
	dependencies, functions = Set{}, Set{}

	s.Rewind()
	defer s.Rewind()

	depth := 0
	nextIsFunction := false

	for tok, ok := s.Next(); ok; tok, ok = s.Next() {
		switch tok.Kind {
		case TokenOpenBracket:
			depth++
			nextIsFunction = false

		case TokenCloseBracket:
			if depth > 0 {
				depth--
			}

			nextIsFunction = false

		case TokenPipe:
			nextIsFunction = depth > 0

		case TokenIdentifier:
			if depth == 0 {
				continue
			}

			if nextIsFunction {
				functions.add(tok.Text)
			} else {
				dependencies.add(tok.Text)
			}

			nextIsFunction = false

		default:
			nextIsFunction = false
		}
	}

	return dependencies, functions
}
