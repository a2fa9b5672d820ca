package placeholder

import (
	"maps"
	"os"
	"slices"
	"strings"

	"github.com/ardnew/umbra/lang"
)

// Map is a static set of placeholder values. Keys are stored lower-cased, so
// lookups are case-insensitive.
type Map map[string]string

var _ lang.Placeholders = Map(nil)

// FromMap returns a Map holding the entries of m with keys folded.
func FromMap(m map[string]string) Map {
	out := make(Map, len(m))
	for k, v := range m {
		out.Set(k, v)
	}

	return out
}

// Placeholder implements [lang.Placeholders].
func (m Map) Placeholder(name string) (string, bool) {
	v, ok := m[strings.ToLower(name)]

	return v, ok
}

// Set stores value under the folded name.
func (m Map) Set(name, value string) { m[strings.ToLower(name)] = value }

// Merge copies every entry of other into m, replacing existing values.
func (m Map) Merge(other Map) {
	for k, v := range other {
		m.Set(k, v)
	}
}

// Names returns the placeholder names in lexical order.
func (m Map) Names() []string { return slices.Sorted(maps.Keys(m)) }

// Env returns the process environment variables whose names begin with
// prefix, keyed by the remainder of the name. An empty prefix selects every
// variable.
func Env(prefix string) Map {
	return fromEnviron(os.Environ(), prefix)
}

func fromEnviron(environ []string, prefix string) Map {
	m := make(Map)

	for _, kv := range environ {
		name, value, ok := strings.Cut(kv, "=")
		if !ok {
			continue
		}

		name, ok = strings.CutPrefix(name, prefix)
		if !ok || name == "" {
			continue
		}

		m.Set(name, value)
	}

	return m
}

// Chain resolves a name from the first provider that has it. Nil providers
// are skipped.
type Chain []lang.Placeholders

// Placeholder implements [lang.Placeholders].
func (c Chain) Placeholder(name string) (string, bool) {
	for _, p := range c {
		if p == nil {
			continue
		}

		if v, ok := p.Placeholder(name); ok {
			return v, true
		}
	}

	return "", false
}
