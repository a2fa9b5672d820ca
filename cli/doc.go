// Package cli contains the command line interface for umbra.
//
// # Usage
//
// Templates are given as arguments or read one per line from --source files.
// The default command is render:
//
//	umbra -D name=Ada -D hp=12 'Hello [name]! [hp < 20 ? "LOW " : ""][hp]'
//	umbra --vars party.yaml --source labels.txt
//	umbra check '[hp | upper'
//	umbra ast -o yaml '[a ? "x" : "y"] + z'
//
// # Configuration Files
//
// Flag defaults are read from config.json and config.yaml in the user
// configuration directory (for example ~/.config/umbra on Linux). The YAML
// loader accepts nested keys:
//
//	log:
//	  level: debug
//	render:
//	  define:
//	    player: Ada
//
// # Logging Options
//
//   - --log-level: Set minimum log level (trace, debug, info, warn, error)
//   - --log-format: Set log output format (json, text)
//   - --log-time-layout: Set timestamp format (RFC3339, kitchen, none, ...)
//   - --log-caller: Include caller information in log output
//   - --[no-]log-pretty: Colorize and unquote log output
//
// # Profiling Options
//
// Profiling is only available when built with the pprof build tag:
//
//	go build -tags pprof .
//
//   - --pprof-mode: Enable profiling (allocs, block, clock, cpu, goroutine,
//     heap, mem, mutex, thread, trace)
//   - --pprof-dir: Set profile output directory (default: the pprof
//     directory under the user cache directory)
package cli
