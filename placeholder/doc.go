// Package placeholder provides [lang.Placeholders] implementations: static
// maps, the process environment, YAML files, values computed by expr-lang
// expressions, and chains of these.
package placeholder

import "github.com/ardnew/umbra/lang"

// Predefined errors (sentinel values).
var (
	ErrDecode  = lang.NewError("failed to decode placeholders")
	ErrCompile = lang.NewError("failed to compile derived placeholder")
)
