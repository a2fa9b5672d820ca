package lang

import (
	"context"
	"errors"
	"testing"
	"unicode/utf8"
)

// FuzzParseEvaluate checks that tokenizing never panics, that Parse either
// succeeds or returns a *ParseError, and that evaluation is total.
func FuzzParseEvaluate(f *testing.F) {
	f.Add("Hello [Name]!")
	f.Add(`[A > B ? "yes" : "no"]`)
	f.Add("[Name | upper | nosuch]")
	f.Add("[A +]")
	f.Add("[[A + B] | f] ] [")
	f.Add(`["unterminated`)
	f.Add("[A = B == C < 1.5.5 > @]")

	fns := Builtins()
	vars := PlaceholderMap{"a": "1", "b": "true", "name": "x"}

	f.Fuzz(func(t *testing.T, input string) {
		if !utf8.ValidString(input) {
			t.Skip("invalid UTF-8")
		}

		n := utf8.RuneCountInString(input)

		for tok := range Tokenize(input).All() {
			if tok.Start < 0 || tok.End > n || tok.Start > tok.End {
				t.Fatalf("token %v has invalid span for %d characters", tok, n)
			}
		}

		s, err := Parse(context.Background(), input)
		if err != nil {
			var pe *ParseError
			if !errors.As(err, &pe) {
				t.Fatalf("Parse(%q) error %T is not *ParseError", input, err)
			}

			if pe.Column < 0 || pe.Column > n {
				t.Fatalf("column %d out of range for %q", pe.Column, input)
			}

			return
		}

		first := s.Evaluate(fns, vars)
		if second := s.Evaluate(fns, vars); first != second {
			t.Fatalf("Evaluate not idempotent: %q != %q", first, second)
		}
	})
}
