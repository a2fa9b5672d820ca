// Package profile provides optional runtime profiling for umbra.
//
// Profiling is backed by [github.com/pkg/profile] and is compiled in only
// when building with the "pprof" build tag:
//
//	go build -tags pprof .
//
// Without the tag, [Modes] is empty and [Profiler.Start] returns a no-op.
//
// # Usage
//
//	p := profile.Make(
//		profile.WithMode("cpu"),
//		profile.WithPath(dir),
//	)
//	defer p.Start().Stop()
//
// Profiles are written to the configured directory with names matching the
// mode (cpu.pprof, mem.pprof, ...). Rendering a large batch of templates with
// the cpu mode is the usual way to inspect parser and cache hot paths:
//
//	umbra --pprof-mode cpu render --file labels.txt
//	go tool pprof -http=: ~/.cache/umbra/pprof/cpu.pprof
//
// With the tag, the package also imports [net/http/pprof], registering the
// /debug/pprof/ handlers on [net/http.DefaultServeMux].
package profile

// Tag is the build tag required to enable pprof profiling.
const Tag = `pprof`
