package cmd

import (
	"context"
	"fmt"
	"log/slog"

	"github.com/ardnew/umbra/lang"
	"github.com/ardnew/umbra/log"
)

// Render evaluates templates against placeholder values and prints one line
// per template.
type Render struct {
	Values `embed:""`

	Templates []string `arg:"" help:"Templates to render (default: read from --source)" name:"template" optional:""`

	Strict   bool `help:"Fail on a template that does not parse instead of printing it verbatim." negatable:""`
	Capacity int  `default:"256" help:"Maximum number of distinct templates kept parsed."`
}

// Run executes the render command.
func (r *Render) Run(ctx context.Context) (err error) {
	ctx, cancel := context.WithCancelCause(ctx)

	defer func(err *error) { cancel(*err) }(&err)

	_, vars, err := r.load(ctx)
	if err != nil {
		return err
	}

	cache := lang.NewCache(
		lang.WithCapacity(r.Capacity),
		lang.WithCacheLogger(log.Default()),
		lang.WithParseOptions(lang.WithLogger(log.Default())),
	)
	fns := lang.Builtins()
	out := outputFrom(ctx)

	for source, err := range templates(ctx, r.Templates) {
		if err != nil {
			return err
		}

		line, err := r.render(ctx, cache, source, fns, vars)
		if err != nil {
			return err
		}

		if _, err := fmt.Fprintln(out, line); err != nil {
			return err
		}
	}

	stats := cache.Stats()
	log.DebugContext(ctx, "render complete",
		slog.Int("cached", cache.Len()),
		slog.Uint64("hits", stats.Hits),
		slog.Uint64("misses", stats.Misses),
		slog.Uint64("evictions", stats.Evictions),
	)

	return nil
}

func (r *Render) render(
	ctx context.Context,
	cache *lang.Cache,
	source string,
	fns lang.Functions,
	vars lang.Placeholders,
) (string, error) {
	if !r.Strict {
		return cache.Render(ctx, source, fns, vars), nil
	}

	script, err := cache.Get(ctx, source)
	if err != nil {
		return "", ErrRender.With(slog.String("template", source)).Wrap(err)
	}

	if unknown := script.UnknownFunctions(fns); len(unknown) > 0 {
		log.WarnContext(ctx, "unknown filter functions",
			slog.String("template", source),
			slog.Any("functions", unknown),
		)
	}

	return script.Evaluate(fns, vars), nil
}
