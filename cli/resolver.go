package cli

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"strings"

	"github.com/alecthomas/kong"
	"github.com/goccy/go-yaml"

	"github.com/ardnew/umbra/log"
)

// resolve returns a [kong.ConfigurationLoader] that reads YAML config files.
//
// It is used with [kong.Configuration] like this:
//
//	kong.Configuration(resolve(ctx, path), path)
//
// Nested mappings are flattened by joining keys with '-', and underscores are
// accepted in place of hyphens, so each of these sets --log-level:
//
//	log-level: debug
//	log_level: debug
//	log:
//	  level: debug
//
// Subcommand flags may be given at the top level or under the command name:
//
//	render:
//	  strict: true
//	  define:
//	    player: Ada
//
// A file that fails to decode is logged and ignored. Command-line flags
// override config file values.
func resolve(ctx context.Context, path string) kong.ConfigurationLoader {
	return func(r io.Reader) (kong.Resolver, error) {
		var doc map[string]any

		err := yaml.NewDecoder(r).DecodeContext(ctx, &doc)
		if err != nil {
			if !errors.Is(err, io.EOF) {
				log.WarnContext(ctx, "ignoring configuration file",
					slog.String("path", path),
					slog.Any("error", err),
				)
			}

			return config{}, nil
		}

		c := make(config)
		c.flatten("", doc)

		log.TraceContext(ctx, "configuration loaded",
			slog.String("path", path),
			slog.Int("keys", len(c)),
		)

		return c, nil
	}
}

// config implements [kong.Resolver] for YAML configs. Keys are normalized
// flag names.
type config map[string]any

// Validate implements [kong.Resolver].
func (config) Validate(*kong.Application) error { return nil }

// Resolve implements [kong.Resolver].
func (c config) Resolve(
	_ *kong.Context,
	parent *kong.Path,
	flag *kong.Flag,
) (any, error) {
	if parent != nil && parent.Command != nil {
		if v, ok := c[normalize(parent.Command.Name+"-"+flag.Name)]; ok {
			return v, nil
		}
	}

	if v, ok := c[normalize(flag.Name)]; ok {
		return v, nil
	}

	return nil, nil
}

// flatten stores v under key and, for mappings, every nested entry under the
// joined key. Scalars are stored as strings so kong can parse them with the
// flag's own mapper.
func (c config) flatten(key string, v any) {
	switch v := v.(type) {
	case map[string]any:
		if key != "" {
			c[key] = stringMap(v)
		}

		for k, child := range v {
			c.flatten(join(key, normalize(k)), child)
		}

	case []any:
		c[key] = stringSlice(v)

	default:
		if key != "" {
			c[key] = scalar(v)
		}
	}
}

func join(prefix, key string) string {
	if prefix == "" {
		return key
	}

	return prefix + "-" + key
}

func normalize(name string) string {
	return strings.ToLower(strings.ReplaceAll(name, "_", "-"))
}

// stringMap converts a mapping to the shape kong expects for map flags.
func stringMap(m map[string]any) map[string]any {
	out := make(map[string]any, len(m))
	for k, v := range m {
		out[k] = scalar(v)
	}

	return out
}

// stringSlice converts a sequence to the shape kong expects for slice flags.
func stringSlice(s []any) []any {
	out := make([]any, len(s))
	for i, v := range s {
		out[i] = scalar(v)
	}

	return out
}

func scalar(v any) string {
	if v == nil {
		return ""
	}

	return fmt.Sprint(v)
}
