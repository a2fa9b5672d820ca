package lang

import (
	"context"
	"sync"
)

// Template is a template string owned by a configuration value. It keeps the
// parse result for the current text and reparses only when the text changes,
// so the parsed form lives exactly as long as its owner.
//
// A Template is safe for concurrent use.
type Template struct {
	mu     sync.RWMutex
	source string
	script *Script
	err    error
	opts   []Option
}

// NewTemplate parses source into a new Template. A parse failure is recorded
// and reported by [Template.Err]; the Template still renders as raw text.
func NewTemplate(source string, opts ...Option) *Template {
	t := &Template{opts: opts}
	t.parse(source)

	return t
}

// Set replaces the template text, reporting whether it changed.
func (t *Template) Set(source string) bool {
	t.mu.Lock()
	defer t.mu.Unlock()

	if source == t.source {
		return false
	}

	t.parse(source)

	return true
}

// Source returns the current template text.
func (t *Template) Source() string {
	t.mu.RLock()
	defer t.mu.RUnlock()

	return t.source
}

// Script returns the parsed template, or nil if the text does not parse.
func (t *Template) Script() *Script {
	t.mu.RLock()
	defer t.mu.RUnlock()

	return t.script
}

// Err returns the error from parsing the current text, if any.
func (t *Template) Err() error {
	t.mu.RLock()
	defer t.mu.RUnlock()

	return t.err
}

// Render evaluates the template, or returns the raw text if it does not
// parse.
func (t *Template) Render(functions Functions, placeholders Placeholders) string {
	t.mu.RLock()
	defer t.mu.RUnlock()

	if t.script == nil {
		return t.source
	}

	return t.script.Evaluate(functions, placeholders)
}

// parse must be called with t.mu held for writing, or before t is shared.
func (t *Template) parse(source string) {
	t.source = source
	t.script, t.err = Parse(context.Background(), source, t.opts...)
}
