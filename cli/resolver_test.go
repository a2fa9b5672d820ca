package cli

import (
	"context"
	"reflect"
	"strings"
	"testing"

	"github.com/alecthomas/kong"
)

func load(t *testing.T, src string) config {
	t.Helper()

	r, err := resolve(context.Background(), "test.yaml")(strings.NewReader(src))
	if err != nil {
		t.Fatalf("loader returned error: %v", err)
	}

	c, ok := r.(config)
	if !ok {
		t.Fatalf("loader returned %T", r)
	}

	return c
}

func flag(name string) *kong.Flag {
	return &kong.Flag{Value: &kong.Value{Name: name}}
}

func TestResolve_Flatten(t *testing.T) {
	c := load(t, `
log:
  level: debug
  pretty: false
log_format: json
max_depth: 12
vars: [a.yaml, b.yaml]
render:
  strict: true
  define:
    player: Ada
    hp: 12
`)

	tests := []struct {
		key  string
		want any
	}{
		{"log-level", "debug"},
		{"log-pretty", "false"},
		{"log-format", "json"},
		{"max-depth", "12"},
		{"vars", []any{"a.yaml", "b.yaml"}},
		{"render-strict", "true"},
		{"render-define", map[string]any{"player": "Ada", "hp": "12"}},
		{"render-define-player", "Ada"},
	}

	for _, tt := range tests {
		if got := c[tt.key]; !reflect.DeepEqual(got, tt.want) {
			t.Errorf("c[%q] = %#v, want %#v", tt.key, got, tt.want)
		}
	}
}

func TestResolve_Lookup(t *testing.T) {
	c := load(t, `
strict: false
render:
  strict: true
log-level: info
`)

	render := &kong.Path{Command: &kong.Command{Name: "render"}}
	check := &kong.Path{Command: &kong.Command{Name: "check"}}

	tests := []struct {
		name   string
		parent *kong.Path
		flag   string
		want   any
	}{
		{"command_scoped", render, "strict", "true"},
		{"top_level_fallback", check, "strict", "false"},
		{"no_parent", nil, "log-level", "info"},
		{"missing", render, "capacity", nil},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := c.Resolve(nil, tt.parent, flag(tt.flag))
			if err != nil {
				t.Fatalf("Resolve: %v", err)
			}

			if !reflect.DeepEqual(got, tt.want) {
				t.Errorf("Resolve(%q) = %#v, want %#v", tt.flag, got, tt.want)
			}
		})
	}

	if err := c.Validate(nil); err != nil {
		t.Errorf("Validate: %v", err)
	}
}

func TestResolve_Invalid(t *testing.T) {
	for _, src := range []string{"", "- just\n- a list\n", "key: [unclosed"} {
		c := load(t, src)
		if len(c) != 0 {
			t.Errorf("load(%q) = %v, want empty config", src, c)
		}
	}
}
