package cmd

import (
	"context"
	"log/slog"

	"github.com/ardnew/umbra/lang"
	"github.com/ardnew/umbra/log"
	"github.com/ardnew/umbra/placeholder"
)

// Values are the placeholder sources shared by render and repl.
//
// Later sources override earlier ones: environment variables, then --vars
// files in order, then --define. Derived placeholders are consulted only for
// names none of those define.
type Values struct {
	Env    string            `help:"Expose environment variables starting with PREFIX as placeholders." placeholder:"PREFIX"`
	Vars   []string          `help:"Load placeholder values from a YAML file."                          placeholder:"FILE"        type:"existingfile"`
	Define map[string]string `help:"Set a placeholder value."                                            placeholder:"NAME=VALUE"  mapsep:"none"       short:"D"`
	Derive map[string]string `help:"Compute a placeholder from an expression over the others."           placeholder:"NAME=EXPR"   mapsep:"none"`
}

// base merges the static placeholder sources.
func (v *Values) base(ctx context.Context) (placeholder.Map, error) {
	m := make(placeholder.Map)

	if v.Env != "" {
		m.Merge(placeholder.Env(v.Env))
	}

	for _, path := range v.Vars {
		vars, err := placeholder.LoadFile(path)
		if err != nil {
			return nil, ErrPlaceholders.Wrap(err)
		}

		m.Merge(vars)
	}

	m.Merge(placeholder.FromMap(v.Define))

	log.DebugContext(ctx, "placeholders loaded",
		slog.Int("count", len(m)),
		slog.Int("files", len(v.Vars)),
	)

	return m, nil
}

// provider layers the derived placeholders under base.
func (v *Values) provider(base placeholder.Map) (lang.Placeholders, error) {
	if len(v.Derive) == 0 {
		return base, nil
	}

	derived, err := placeholder.NewDerived(base, v.Derive)
	if err != nil {
		return nil, ErrPlaceholders.Wrap(err)
	}

	return placeholder.Chain{base, derived}, nil
}

// load returns the merged static values and the full provider.
func (v *Values) load(ctx context.Context) (placeholder.Map, lang.Placeholders, error) {
	base, err := v.base(ctx)
	if err != nil {
		return nil, nil, err
	}

	p, err := v.provider(base)
	if err != nil {
		return nil, nil, err
	}

	return base, p, nil
}
