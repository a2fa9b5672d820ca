package placeholder

import (
	"log/slog"
	"maps"
	"slices"
	"strconv"
	"strings"
	"sync"

	"github.com/expr-lang/expr"
	"github.com/expr-lang/expr/vm"
)

// Derived computes placeholder values from expr-lang expressions evaluated
// against a base Map.
//
// Each expression is compiled once by [NewDerived] and run on every lookup.
// Base values that parse as numbers or booleans are exposed to expressions
// with those types, so
//
//	hp_pct: hp * 100 / max_hp
//
// evaluates arithmetically. Base names are lower-cased. Expressions may also
// call the path and pathlist helpers (path.join, pathlist.prefix, ...). An
// expression that fails at run time renders as a missing placeholder.
type Derived struct {
	base     Map
	programs map[string]*vm.Program

	once sync.Once
	env  map[string]any
}

// NewDerived compiles defs, a map of placeholder name to expression.
func NewDerived(base Map, defs map[string]string) (*Derived, error) {
	d := &Derived{
		base:     base,
		programs: make(map[string]*vm.Program, len(defs)),
	}

	for name, src := range defs {
		program, err := expr.Compile(src, expr.AllowUndefinedVariables())
		if err != nil {
			return nil, ErrCompile.Wrap(err).With(
				slog.String("name", name),
				slog.String("expression", src),
			)
		}

		d.programs[strings.ToLower(name)] = program
	}

	return d, nil
}

// Names returns the derived placeholder names in lexical order.
func (d *Derived) Names() []string { return slices.Sorted(maps.Keys(d.programs)) }

// Placeholder implements [lang.Placeholders].
func (d *Derived) Placeholder(name string) (string, bool) {
	program, ok := d.programs[strings.ToLower(name)]
	if !ok {
		return "", false
	}

	d.once.Do(d.makeEnv)

	out, err := expr.Run(program, d.env)
	if err != nil {
		return "", false
	}

	return format(out), true
}

func (d *Derived) makeEnv() {
	d.env = helpers()

	for k, v := range d.base {
		d.env[k] = coerce(v)
	}
}

// coerce converts s to an int, float64, or bool when it parses as one.
func coerce(s string) any {
	t := strings.TrimSpace(s)

	if i, err := strconv.Atoi(t); err == nil {
		return i
	}

	if f, err := strconv.ParseFloat(t, 64); err == nil {
		return f
	}

	switch strings.ToLower(t) {
	case "true":
		return true
	case "false":
		return false
	}

	return s
}

func format(v any) string {
	switch v := v.(type) {
	case float64:
		return strconv.FormatFloat(v, 'f', -1, 64)
	case float32:
		return strconv.FormatFloat(float64(v), 'f', -1, 32)
	default:
		return scalar(v)
	}
}
