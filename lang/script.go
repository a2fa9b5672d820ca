package lang

import (
	"context"
	"log/slog"
	"slices"
	"unicode/utf8"
)

// Script is a parsed template. It is immutable after construction and safe
// for concurrent use.
type Script struct {
	source  string
	context *ScriptContext
	deps    []string
	funcs   []string
}

// Parse tokenizes, scans, and parses source into a Script.
//
// Plain text never fails to parse. A malformed bracketed expression returns a
// *ParseError; callers rendering untrusted templates should fall back to
// displaying source verbatim.
func Parse(ctx context.Context, source string, opts ...Option) (*Script, error) {
	o := makeOptions(opts...)

	o.logger.TraceContext(
		ctx,
		"parse start",
		slog.Int("source_length", utf8.RuneCountInString(source)),
		slog.Int("max_depth", o.maxDepth),
		slog.Int("max_tokens", o.maxTokens),
	)

	stream := Tokenize(source)

	o.logger.TraceContext(ctx, "tokenized", slog.Int("tokens", stream.Len()))

	sc, err := parseStream(stream, o)
	if err != nil {
		o.logger.TraceContext(ctx, "parse failed", slog.Any("error", err))

		return nil, err
	}

	s := &Script{
		source:  source,
		context: sc,
		deps:    sc.Dependencies.Sorted(),
		funcs:   sc.Functions.Sorted(),
	}

	o.logger.TraceContext(
		ctx,
		"parse complete",
		slog.Int("nodes", len(sc.Nodes)),
		slog.Any("dependencies", s.deps),
		slog.Any("functions", s.funcs),
	)

	return s, nil
}

// MustParse is like Parse but panics on error. It is intended for templates
// known at compile time.
func MustParse(source string, opts ...Option) *Script {
	s, err := Parse(context.Background(), source, opts...)
	if err != nil {
		panic(err)
	}

	return s
}

// Source returns the template text.
func (s *Script) Source() string { return s.source }

// Context returns the parse result. The returned value must not be modified.
func (s *Script) Context() *ScriptContext { return s.context }

// Dependencies returns the lower-cased placeholder names the template
// references, sorted.
func (s *Script) Dependencies() []string { return slices.Clone(s.deps) }

// Functions returns the lower-cased filter function names the template
// references, sorted.
func (s *Script) Functions() []string { return slices.Clone(s.funcs) }

// DependsOn reports whether any of the changed placeholder names is
// referenced by the template. It lets callers skip re-rendering when
// unrelated values change.
func (s *Script) DependsOn(changed ...string) bool {
	for _, name := range changed {
		if s.context.Dependencies.Has(name) {
			return true
		}
	}

	return false
}

// UnknownFunctions returns the referenced filter names that functions cannot
// resolve, sorted. Evaluation treats these as identity, so this is the place
// to warn a template author.
func (s *Script) UnknownFunctions(functions Functions) []string {
	var unknown []string

	for _, name := range s.funcs {
		if functions != nil {
			if _, ok := functions.Function(name); ok {
				continue
			}
		}

		unknown = append(unknown, name)
	}

	return unknown
}

// Evaluate renders the template. Either provider may be nil.
//
// Evaluate never fails: missing placeholders render as the empty string,
// unknown filters leave their input unchanged, and a filter that panics is
// treated as unknown. The result depends only on the template and the
// providers.
func (s *Script) Evaluate(functions Functions, placeholders Placeholders) string {
	return evaluator{
		functions:    functions,
		placeholders: placeholders,
	}.render(s.context.Nodes)
}

// String returns the template text.
func (s *Script) String() string { return s.source }
