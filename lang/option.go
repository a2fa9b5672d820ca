package lang

import "github.com/ardnew/umbra/log"

// DefaultMaxDepth is the default maximum nesting depth of bracketed
// sub-expressions and ternary branches.
// Users may modify this before parsing to change the default.
var DefaultMaxDepth = 100

// DefaultMaxTokens is the default maximum number of tokens in one template.
// Users may modify this before parsing to change the default.
var DefaultMaxTokens = 4096

// options holds parse configuration.
type options struct {
	maxDepth  int
	maxTokens int
	logger    log.Logger // zero value discards all records
}

// Option configures parsing behavior.
type Option func(*options)

// WithMaxDepth sets the maximum nesting depth. Values below 1 disable the
// limit.
func WithMaxDepth(depth int) Option {
	return func(o *options) {
		o.maxDepth = depth
	}
}

// WithMaxTokens sets the maximum token count. Values below 1 disable the
// limit.
func WithMaxTokens(n int) Option {
	return func(o *options) {
		o.maxTokens = n
	}
}

// WithLogger sets the structured logger for trace-level debugging.
// If not provided, the logger is zero-valued and all logging is a no-op.
func WithLogger(logger log.Logger) Option {
	return func(o *options) {
		o.logger = logger
	}
}

// makeOptions applies opts over the defaults.
func makeOptions(opts ...Option) options {
	o := options{
		maxDepth:  DefaultMaxDepth,
		maxTokens: DefaultMaxTokens,
	}

	for _, opt := range opts {
		opt(&o)
	}

	return o
}
