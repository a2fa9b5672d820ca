package lang

import (
	"context"
	"errors"
	"strings"
	"testing"
)

func TestParse_Structure(t *testing.T) {
	tests := []struct {
		name  string
		input string
		want  []string // String() of each top-level node
	}{
		{
			name:  "empty",
			input: "",
			want:  nil,
		},
		{
			name:  "plain text",
			input: "no expressions here",
			want:  []string{`"no expressions here"`},
		},
		{
			name:  "placeholder in text",
			input: "Hello [Name]!",
			want:  []string{`"Hello "`, "name", `"!"`},
		},
		{
			name:  "concatenation is left-associative",
			input: "[A + B + C]",
			want:  []string{"a + b + c"},
		},
		{
			name:  "comparison binds tighter than ternary",
			input: `[A > B ? "yes" : "no"]`,
			want:  []string{`[a > b] ? "yes" : "no"`},
		},
		{
			name:  "false branch nests right",
			input: "[A ? B : C ? D : E]",
			want:  []string{"a ? b : [c ? d : e]"},
		},
		{
			name:  "true branch is a concatenation",
			input: "[A ? B + C]",
			want:  []string{"a ? [b + c]"},
		},
		{
			name:  "ternary operand of concatenation",
			input: `[A ? "x" : "y" + Z]`,
			want:  []string{`[a ? "x" : "y"] + z`},
		},
		{
			name:  "pipe chain",
			input: "[A | f | g]",
			want:  []string{"a | f | g"},
		},
		{
			name:  "pipe binds tighter than comparison",
			input: "[A | f == B]",
			want:  []string{"a | f == b"},
		},
		{
			name:  "comparison is left-associative",
			input: "[A == B == C]",
			want:  []string{"[a == b] == c"},
		},
		{
			name:  "grouping brackets",
			input: "[[A + B] | upper]",
			want:  []string{"[a + b] | upper"},
		},
		{
			name:  "names are lower-cased",
			input: "[NAME | UPPER]",
			want:  []string{"name | upper"},
		},
		{
			name:  "literals",
			input: `[1.5 + "s"]`,
			want:  []string{`1.5 + "s"`},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			s, err := Parse(context.Background(), tt.input)
			if err != nil {
				t.Fatalf("Parse(%q): %v", tt.input, err)
			}

			nodes := s.Context().Nodes
			if len(nodes) != len(tt.want) {
				t.Fatalf("got %d nodes, want %d", len(nodes), len(tt.want))
			}

			for i, n := range nodes {
				if got := n.String(); got != tt.want[i] {
					t.Errorf("node %d = %s, want %s", i, got, tt.want[i])
				}
			}
		})
	}
}

func TestParse_Errors(t *testing.T) {
	tests := []struct {
		name    string
		input   string
		column  int
		snippet string
		message string
	}{
		{"missing operand", "[A +]", 4, "]", "expected expression"},
		{"empty brackets", "[]", 1, "]", "expected expression"},
		{"unclosed", "[A", 2, "", "expected ']'"},
		{"lone bracket", "[", 1, "", "expected expression"},
		{"single equals", "[A = B]", 3, "=", "expected '=='"},
		{"invalid character", "[A @ B]", 3, "@", "expected ']'"},
		{"pipe needs identifier", "[A | 1]", 5, "1", "expected identifier"},
		{"adjacent operands", "[A B]", 3, "B", "expected ']'"},
		{"empty true branch", "[A ? ]", 5, "]", "expected expression"},
		{"empty false branch", "[A ? B : ]", 9, "]", "expected expression"},
		{"unicode column", "é [A +]", 6, "]", "expected expression"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := Parse(context.Background(), tt.input)

			var pe *ParseError
			if !errors.As(err, &pe) {
				t.Fatalf("Parse(%q) error = %v, want *ParseError", tt.input, err)
			}

			if !errors.Is(err, ErrParse) {
				t.Error("error does not match ErrParse")
			}

			if pe.Column != tt.column {
				t.Errorf("Column = %d, want %d", pe.Column, tt.column)
			}

			if pe.Snippet != tt.snippet {
				t.Errorf("Snippet = %q, want %q", pe.Snippet, tt.snippet)
			}

			if !strings.Contains(pe.Message, tt.message) {
				t.Errorf("Message = %q, want it to contain %q", pe.Message, tt.message)
			}

			if pe.Source != tt.input {
				t.Errorf("Source = %q, want %q", pe.Source, tt.input)
			}
		})
	}
}

func TestParse_MaxDepth(t *testing.T) {
	ctx := context.Background()

	_, err := Parse(ctx, "[[[A]]]", WithMaxDepth(2))
	if !errors.Is(err, ErrMaxDepthExceeded) {
		t.Fatalf("error = %v, want ErrMaxDepthExceeded", err)
	}

	if !errors.Is(err, ErrParse) {
		t.Error("depth error does not match ErrParse")
	}

	var pe *ParseError
	if errors.As(err, &pe) && pe.Column != 3 {
		t.Errorf("Column = %d, want 3", pe.Column)
	}

	if _, err := Parse(ctx, "[[[A]]]", WithMaxDepth(3)); err != nil {
		t.Errorf("depth 3: %v", err)
	}

	deep := strings.Repeat("[", 500) + "A" + strings.Repeat("]", 500)

	if _, err := Parse(ctx, deep); !errors.Is(err, ErrMaxDepthExceeded) {
		t.Errorf("default limit: error = %v", err)
	}

	if _, err := Parse(ctx, deep, WithMaxDepth(0), WithMaxTokens(0)); err != nil {
		t.Errorf("unlimited: %v", err)
	}

	chain := "[A" + strings.Repeat(" ? B : A", 150) + "]"
	if _, err := Parse(ctx, chain); !errors.Is(err, ErrMaxDepthExceeded) {
		t.Errorf("ternary chain: error = %v", err)
	}
}

func TestParse_MaxTokens(t *testing.T) {
	_, err := Parse(context.Background(), "[A + B]", WithMaxTokens(3))
	if !errors.Is(err, ErrMaxTokensExceeded) {
		t.Fatalf("error = %v, want ErrMaxTokensExceeded", err)
	}

	var pe *ParseError
	if !errors.As(err, &pe) {
		t.Fatalf("error = %v, want *ParseError", err)
	}

	if pe.Column != 5 || pe.Snippet != "B" {
		t.Errorf("got column %d snippet %q, want 5 \"B\"", pe.Column, pe.Snippet)
	}
}

func TestParse_TemplateRoundTrip(t *testing.T) {
	for _, input := range []string{
		"Hello [Name]!",
		`[A > B ? "yes" : "no"] and [C | upper | trim]`,
		"[A ? B : C ? D : E]",
		"[A ? B + C]",
		"[[A + B] | upper]",
		`[A ? "x" : "y" + Z]`,
		"[A == B == C]",
	} {
		t.Run(input, func(t *testing.T) {
			first := MustParse(input)
			again := MustParse(first.Context().Template())

			if a, b := first.Context().Template(), again.Context().Template(); a != b {
				t.Errorf("round trip changed template:\n%s\n%s", a, b)
			}
		})
	}
}

func TestParseError_Format(t *testing.T) {
	_, err := Parse(context.Background(), "[A +]")

	var pe *ParseError
	if !errors.As(err, &pe) {
		t.Fatalf("error = %v, want *ParseError", err)
	}

	want := "parse error at column 4: expected expression \"]\"\n" +
		"  | [A +]\n" +
		"        ^\n"

	if got := pe.Format(); got != want {
		t.Errorf("Format() =\n%s\nwant:\n%s", got, want)
	}
}

func TestPrint(t *testing.T) {
	var sb strings.Builder

	MustParse(`Hi [A > 1 ? B | upper : "none"]`).Context().Print(&sb)

	want := `Text: "Hi "
Ternary
  Condition
    Comparison: >
      Identifier: a
      Number: 1
  WhenTrue
    Pipe: upper
      Identifier: b
  WhenFalse
    Text: "none"
`
	if sb.String() != want {
		t.Errorf("Print() =\n%s\nwant:\n%s", sb.String(), want)
	}
}
