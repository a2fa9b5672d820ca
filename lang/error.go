package lang

import (
	"errors"
	"log/slog"
	"strconv"
	"strings"
	"unicode/utf8"
)

// Predefined errors (sentinel values).
var (
	ErrParse             = NewError("parse error")
	ErrMaxDepthExceeded  = NewError("maximum nesting depth exceeded")
	ErrMaxTokensExceeded = NewError("maximum token count exceeded")
	ErrReadInput         = NewError("failed to read input")
)

// Error represents an error with optional structured logging attributes.
// It implements both error and slog.LogValuer interfaces.
type Error struct {
	msg   string
	err   error       // Wrapped error (for errors.Unwrap)
	attrs []slog.Attr // Attributes for structured logging
}

// NewError creates a new Error with a message.
func NewError(msg string) *Error {
	return &Error{msg: msg}
}

// WrapError wraps a standard error into an Error.
func WrapError(err error) *Error {
	ee := &Error{}
	if errors.As(err, &ee) {
		return ee
	}

	return &Error{err: err}
}

// Error implements the error interface.
func (e *Error) Error() string {
	// Build error message using the first available format,
	// depending on which fields are set:
	//
	//   1. "<msg>: <err>" // base and wrapped error both set
	//   2. "<msg>"        // wrapped error is nil
	//   3. "<err>"        // base error message is empty
	//   4. ""             // no fields are set
	part := make([]string, 0, 2)

	if e.msg != "" {
		part = append(part, e.msg)
	}

	if e.err != nil {
		part = append(part, e.err.Error())
	}

	return strings.Join(part, ": ")
}

// Unwrap implements error unwrapping for errors.Is/As.
func (e *Error) Unwrap() error { return e.err }

// Is reports whether target is the same sentinel as e. Derived errors created
// by Wrap and With keep the sentinel's message, so they match it.
func (e *Error) Is(target error) bool {
	t, ok := target.(*Error)
	if !ok {
		return false
	}

	return t.msg != "" && t.msg == e.msg
}

// LogValue implements slog.LogValuer for rich structured logging.
func (e *Error) LogValue() slog.Value {
	attrs := make([]slog.Attr, 0, len(e.attrs)+2)

	if e.msg != "" {
		attrs = append(attrs, slog.String("error", e.msg))
	}

	if e.err != nil {
		attrs = append(attrs, slog.String("cause", e.err.Error()))
	}

	return slog.GroupValue(append(attrs, e.attrs...)...)
}

// Wrap creates a new Error wrapping another error.
func (e *Error) Wrap(err error) *Error {
	return &Error{
		msg:   e.msg,
		err:   err,
		attrs: e.attrs, // Share attrs
	}
}

// With adds attributes to the error for structured logging.
// This creates a new Error instance to maintain immutability.
func (e *Error) With(attrs ...slog.Attr) *Error {
	newAttrs := make([]slog.Attr, len(e.attrs)+len(attrs))
	copy(newAttrs, e.attrs)
	copy(newAttrs[len(e.attrs):], attrs)

	return &Error{
		msg:   e.msg,
		err:   e.err,
		attrs: newAttrs,
	}
}

// ParseError describes a grammar violation in a template.
//
// Column is the 0-based character offset of the offending token in Source.
// When the template ends in the middle of an expression, Snippet is empty and
// Column is the length of Source in characters.
type ParseError struct {
	Message string
	Snippet string
	Column  int
	Source  string
	cause   error
}

func newParseError(source, msg string, tok Token) *ParseError {
	return &ParseError{
		Message: msg,
		Snippet: tok.Text,
		Column:  tok.Start,
		Source:  source,
		cause:   ErrParse,
	}
}

func newEOFError(source, msg string) *ParseError {
	return &ParseError{
		Message: msg,
		Column:  utf8.RuneCountInString(source),
		Source:  source,
		cause:   ErrParse,
	}
}

// Error implements the error interface.
func (e *ParseError) Error() string {
	var sb strings.Builder

	sb.WriteString("parse error at column ")
	sb.WriteString(strconv.Itoa(e.Column))
	sb.WriteString(": ")
	sb.WriteString(e.Message)

	if e.Snippet != "" {
		sb.WriteString(" ")
		sb.WriteString(strconv.Quote(e.Snippet))
	} else {
		sb.WriteString(" (end of input)")
	}

	return sb.String()
}

// Unwrap returns the sentinel the error was raised under, so callers can test
// with errors.Is(err, ErrParse).
func (e *ParseError) Unwrap() error { return e.cause }

// LogValue implements slog.LogValuer.
func (e *ParseError) LogValue() slog.Value {
	return slog.GroupValue(
		slog.String("error", e.Message),
		slog.String("snippet", e.Snippet),
		slog.Int("column", e.Column),
	)
}

// Format renders the error with the offending template and a marker pointing
// at the column, suitable for a terminal or a template editor.
func (e *ParseError) Format() string {
	var buf strings.Builder

	buf.WriteString(e.Error())
	buf.WriteRune('\n')

	// Templates are single-line labels; newlines are shown as spaces so the
	// marker stays aligned.
	line := strings.Map(func(r rune) rune {
		if r == '\n' || r == '\r' || r == '\t' {
			return ' '
		}

		return r
	}, e.Source)

	// 2 leading spaces + "| " (2 chars)
	const gutter = "  | "

	buf.WriteString(gutter)
	buf.WriteString(line)
	buf.WriteRune('\n')
	buf.WriteString(strings.Repeat(" ", len(gutter)+e.Column))
	buf.WriteString("^")

	if n := utf8.RuneCountInString(e.Snippet); n > 1 {
		buf.WriteString(strings.Repeat("~", n-1))
	}

	buf.WriteRune('\n')

	return buf.String()
}
