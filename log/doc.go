// Package log provides a concurrency-safe simplified logging interface
// based on [log/slog].
//
// # Basic Usage
//
//	logger := log.Make(os.Stderr)
//	logger.Info("template rendered", slog.Int("bytes", n))
//
// The zero [Logger] discards everything, so library types can embed one and
// let callers opt in to logging with an option such as lang.WithLogger.
//
// # Configuration
//
// Configure the logger using functional options:
//
//	logger := log.Make(os.Stderr,
//		log.WithLevel(log.LevelTrace),
//		log.WithFormat(log.FormatText),
//		log.WithTimeLayout("kitchen"),
//		log.WithCaller(true))
//
// The package-level functions ([Info], [Warn], ...) write through a default
// logger that [Config] reconfigures.
//
// # Levels
//
// In addition to slog's four levels the package defines [LevelTrace], used
// for per-operation diagnostics such as parser and cache activity. Levels are
// written by name ("TRACE" rather than "DEBUG-4").
//
// # Output Formats
//
// Two output formats are supported: [FormatJSON] (default) and [FormatText].
// With [WithPretty], both are rendered for people: string values are
// unquoted, groups are flattened into dotted keys, JSON is indented, and
// output to a terminal is colorized.
package log
