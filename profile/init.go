package profile

// Profiler holds the settings for one profiling session.
type Profiler struct {
	Mode  string
	Path  string
	Quiet bool
}

// Option modifies a [Profiler].
type Option func(Profiler) Profiler

// Make returns a [Profiler] with opts applied.
func Make(opts ...Option) Profiler {
	var p Profiler

	for _, opt := range opts {
		p = opt(p)
	}

	return p
}

// Start begins profiling and returns a handle for stopping it.
//
// If the package was built without the pprof tag, or Mode is empty or not one
// of [Modes], Start returns a no-op. Both Start and Stop are always safe to
// call.
func (p Profiler) Start() interface{ Stop() } {
	if p.Mode == "" {
		return ignore{}
	}

	return start(p.Mode, p.Path, p.Quiet)
}

// WithMode sets the profiling mode.
func WithMode(mode string) Option {
	return func(p Profiler) Profiler {
		p.Mode = mode

		return p
	}
}

// WithPath sets the profile output directory.
func WithPath(path string) Option {
	return func(p Profiler) Profiler {
		p.Path = path

		return p
	}
}

// WithQuiet suppresses the profiler's own log output.
func WithQuiet(quiet bool) Option {
	return func(p Profiler) Profiler {
		p.Quiet = quiet

		return p
	}
}

type ignore struct{}

func (ignore) Stop() {}
