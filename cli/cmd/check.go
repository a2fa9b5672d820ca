package cmd

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"strings"

	"github.com/ardnew/umbra/lang"
	"github.com/ardnew/umbra/log"
)

// Check parses templates and reports their placeholders and filters, or a
// diagnostic for each one that does not parse.
type Check struct {
	Templates []string `arg:"" help:"Templates to check (default: read from --source)" name:"template" optional:""`

	MaxDepth  int `default:"${maxDepth}"  help:"Maximum bracket and ternary nesting."`
	MaxTokens int `default:"${maxTokens}" help:"Maximum number of tokens per template."`
}

// Run executes the check command.
func (c *Check) Run(ctx context.Context) (err error) {
	ctx, cancel := context.WithCancelCause(ctx)

	defer func(err *error) { cancel(*err) }(&err)

	out := outputFrom(ctx)
	fns := lang.Builtins()

	var total, failed int

	for source, err := range templates(ctx, c.Templates) {
		if err != nil {
			return err
		}

		total++

		script, err := lang.Parse(ctx, source,
			lang.WithMaxDepth(c.MaxDepth),
			lang.WithMaxTokens(c.MaxTokens),
			lang.WithLogger(log.Default()),
		)
		if err != nil {
			var perr *lang.ParseError
			if !errors.As(err, &perr) {
				return err
			}

			failed++

			fmt.Fprintln(out, perr.Format())

			continue
		}

		report(out, script, fns)
	}

	if failed > 0 {
		return ErrCheck.With(
			slog.Int("failed", failed),
			slog.Int("total", total),
		)
	}

	return nil
}

func report(w io.Writer, s *lang.Script, fns lang.Functions) {
	list := func(names []string) string {
		if len(names) == 0 {
			return "-"
		}

		return strings.Join(names, ", ")
	}

	fmt.Fprintf(w, "ok %q\n", s.Source())
	fmt.Fprintf(w, "  placeholders: %s\n", list(s.Dependencies()))
	fmt.Fprintf(w, "  filters:      %s\n", list(s.Functions()))

	if unknown := s.UnknownFunctions(fns); len(unknown) > 0 {
		fmt.Fprintf(w, "  unknown:      %s\n", list(unknown))
	}
}
