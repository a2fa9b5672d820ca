package cli

import (
	"context"
	"log/slog"
	"slices"
	"strconv"
	"strings"

	"github.com/alecthomas/kong"

	"github.com/ardnew/umbra/log"
)

// logFormat is a custom type that configures the logger format as a side
// effect of parsing via encoding.TextUnmarshaler.
type logFormat string

// UnmarshalText implements encoding.TextUnmarshaler.
// Kong calls it while parsing --log-format, early enough for the new format
// to apply to errors reported during parsing.
func (f *logFormat) UnmarshalText(text []byte) error {
	*f = logFormat(text)
	log.Config(log.WithFormat(log.ParseFormat(string(*f))))

	return nil
}

// logLevel is a custom type that configures the logger level as a side
// effect of parsing via encoding.TextUnmarshaler.
type logLevel string

// UnmarshalText implements encoding.TextUnmarshaler.
func (l *logLevel) UnmarshalText(text []byte) error {
	*l = logLevel(text)
	log.Config(log.WithLevel(log.ParseLevel(string(*l))))

	return nil
}

type logConfig struct {
	Level      logLevel  `default:"warn"    enum:"${logLevelEnum}"  help:"Set log level (${enum})."`
	Format     logFormat `default:"text"    enum:"${logFormatEnum}" help:"Set log format (${enum})."`
	TimeLayout string    `default:"kitchen"                         help:"Set timestamp format (Go layout or name, 'none' to omit)."`
	Caller     bool      `default:"false"                           help:"Include caller information."       negatable:""`
	Pretty     bool      `default:"true"                            help:"Enable colorized pretty printing." negatable:""`
}

func (*logConfig) vars() kong.Vars {
	return kong.Vars{
		"logLevelEnum":  strings.Join(slices.Collect(log.Levels()), ","),
		"logFormatEnum": strings.Join(slices.Collect(log.Formats()), ","),
	}
}

func (*logConfig) group() kong.Group {
	return kong.Group{Key: "log", Title: "Logging options"}
}

// start applies the fully parsed configuration, including the options that
// have no TextUnmarshaler.
func (f *logConfig) start(ctx context.Context) {
	log.Config(
		log.WithLevel(log.ParseLevel(string(f.Level))),
		log.WithFormat(log.ParseFormat(string(f.Format))),
		log.WithTimeLayout(f.TimeLayout),
		log.WithCaller(f.Caller),
		log.WithPretty(f.Pretty),
	)

	log.DebugContext(ctx, "logger initialized",
		slog.String("level", string(f.Level)),
		slog.String("format", string(f.Format)),
		slog.String("time", f.TimeLayout),
		slog.Bool("caller", f.Caller),
		slog.Bool("pretty", f.Pretty),
	)
}

// scan applies logger flags from args before kong begins parsing, so the
// logger is configured regardless of where the flags appear on the command
// line. Boolean flags like --log-pretty never reach a TextUnmarshaler, so
// this pass is the only early hook for them.
func (f *logConfig) scan(args []string) {
	bools := map[string]func(bool){
		"pretty": func(v bool) { f.Pretty = v; log.Config(log.WithPretty(v)) },
		"caller": func(v bool) { f.Caller = v; log.Config(log.WithCaller(v)) },
	}

	for i := 0; i < len(args); i++ {
		arg := args[i]
		if arg == "--" {
			return
		}

		name, negated := strings.CutPrefix(arg, "--no-log-")
		if !negated {
			var ok bool
			if name, ok = strings.CutPrefix(arg, "--log-"); !ok {
				continue
			}
		}

		name, value, assigned := strings.Cut(name, "=")

		switch name {
		case "level", "format":
			if negated {
				continue
			}

			// Consume the next arg as the value if not assigned.
			if !assigned && i+1 < len(args) && !strings.HasPrefix(args[i+1], "-") {
				i++
				value = args[i]
			}

			if name == "level" {
				_ = f.Level.UnmarshalText([]byte(value))
			} else {
				_ = f.Format.UnmarshalText([]byte(value))
			}

		case "pretty", "caller":
			v := true

			if assigned {
				var err error
				if v, err = strconv.ParseBool(value); err != nil {
					continue
				}
			}

			bools[name](v != negated)
		}
	}
}
