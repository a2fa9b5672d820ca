package log

import (
	"bytes"
	"context"
	"io"
	"log/slog"
	"strconv"
	"strings"
	"sync"
	"time"

	"github.com/charmbracelet/lipgloss"
)

// palette holds the styles used by prettyHandler. Styles come from a
// renderer bound to the output, so colors are emitted only when the output
// is a terminal.
type palette struct {
	key, text, number, yes, no, duration, null lipgloss.Style

	trace, debug, info, warn, error lipgloss.Style
}

func newPalette(w io.Writer) palette {
	r := lipgloss.NewRenderer(w)
	fg := func(c string) lipgloss.Style {
		return r.NewStyle().Foreground(lipgloss.Color(c))
	}

	return palette{
		key:      fg("8"),
		text:     fg("6"),
		number:   fg("3"),
		yes:      fg("2"),
		no:       fg("1"),
		duration: fg("5"),
		null:     fg("8"),
		trace:    fg("8"),
		debug:    fg("4"),
		info:     fg("2"),
		warn:     fg("3").Bold(true),
		error:    fg("1").Bold(true),
	}
}

func (p palette) level(l slog.Level) lipgloss.Style {
	switch {
	case l >= slog.LevelError:
		return p.error
	case l >= slog.LevelWarn:
		return p.warn
	case l >= slog.LevelInfo:
		return p.info
	case l >= slog.LevelDebug:
		return p.debug
	default:
		return p.trace
	}
}

// prettyHandler writes human-oriented records, either on one line as
// key=value pairs (FormatText) or as an indented object (FormatJSON). String
// values are unquoted. Groups, including those returned by
// [slog.LogValuer] values, are flattened into dotted keys.
type prettyHandler struct {
	opts   slog.HandlerOptions
	format Format
	style  palette
	mu     *sync.Mutex
	w      io.Writer
	attrs  []slog.Attr // from WithAttrs, already qualified
	prefix string      // from WithGroup, e.g. "req."
}

func newPrettyHandler(
	w io.Writer,
	format Format,
	opts *slog.HandlerOptions,
) *prettyHandler {
	return &prettyHandler{
		opts:   *opts,
		format: format,
		style:  newPalette(w),
		mu:     &sync.Mutex{},
		w:      w,
	}
}

func (h *prettyHandler) Enabled(_ context.Context, level slog.Level) bool {
	return level >= h.opts.Level.Level()
}

func (h *prettyHandler) Handle(_ context.Context, r slog.Record) error {
	fields := make([]slog.Attr, 0, 4+len(h.attrs)+r.NumAttrs())

	if !r.Time.IsZero() {
		fields = h.builtin(fields, slog.Time(slog.TimeKey, r.Time))
	}

	fields = h.builtin(fields, slog.Any(slog.LevelKey, r.Level))

	if h.opts.AddSource {
		if src := r.Source(); src != nil && src.File != "" {
			fields = h.builtin(fields, slog.String(
				slog.SourceKey, src.File+":"+strconv.Itoa(src.Line),
			))
		}
	}

	fields = h.builtin(fields, slog.String(slog.MessageKey, r.Message))
	fields = append(fields, h.attrs...)

	r.Attrs(func(a slog.Attr) bool {
		fields = flatten(fields, h.prefix, a)

		return true
	})

	buf := new(bytes.Buffer)

	if h.format == FormatJSON {
		h.writeObject(buf, fields, r.Level)
	} else {
		h.writeLine(buf, fields, r.Level)
	}

	h.mu.Lock()
	defer h.mu.Unlock()

	_, err := h.w.Write(buf.Bytes())

	return err
}

func (h *prettyHandler) WithAttrs(attrs []slog.Attr) slog.Handler {
	c := *h
	c.attrs = h.attrs[:len(h.attrs):len(h.attrs)]

	for _, a := range attrs {
		c.attrs = flatten(c.attrs, h.prefix, a)
	}

	return &c
}

func (h *prettyHandler) WithGroup(name string) slog.Handler {
	if name == "" {
		return h
	}

	c := *h
	c.prefix = h.prefix + name + "."

	return &c
}

// builtin appends a standard record field after passing it through
// ReplaceAttr. Fields replaced by an empty Attr are dropped.
func (h *prettyHandler) builtin(fields []slog.Attr, a slog.Attr) []slog.Attr {
	if h.opts.ReplaceAttr != nil {
		a = h.opts.ReplaceAttr(nil, a)
	}

	if a.Key == "" {
		return fields
	}

	return append(fields, a)
}

// flatten appends a, resolving LogValuer values and expanding groups into
// dotted keys.
func flatten(fields []slog.Attr, prefix string, a slog.Attr) []slog.Attr {
	a.Value = a.Value.Resolve()

	if a.Value.Kind() != slog.KindGroup {
		if a.Key == "" {
			return fields
		}

		return append(fields, slog.Attr{Key: prefix + a.Key, Value: a.Value})
	}

	if a.Key != "" {
		prefix += a.Key + "."
	}

	for _, sub := range a.Value.Group() {
		fields = flatten(fields, prefix, sub)
	}

	return fields
}

func (h *prettyHandler) writeLine(
	buf *bytes.Buffer,
	fields []slog.Attr,
	level slog.Level,
) {
	for i, a := range fields {
		if i > 0 {
			buf.WriteByte(' ')
		}

		buf.WriteString(h.style.key.Render(a.Key))
		buf.WriteByte('=')
		buf.WriteString(h.value(a, level))
	}

	buf.WriteByte('\n')
}

func (h *prettyHandler) writeObject(
	buf *bytes.Buffer,
	fields []slog.Attr,
	level slog.Level,
) {
	buf.WriteString("{\n")

	for i, a := range fields {
		if i > 0 {
			buf.WriteString(",\n")
		}

		buf.WriteString("  ")
		buf.WriteString(h.style.key.Render(a.Key))
		buf.WriteString(": ")
		buf.WriteString(h.value(a, level))
	}

	buf.WriteString("\n}\n")
}

// value renders an attribute value with its style.
func (h *prettyHandler) value(a slog.Attr, level slog.Level) string {
	v := a.Value

	if a.Key == slog.LevelKey {
		s := v.String()
		if l, ok := v.Any().(slog.Level); ok {
			s = strings.ToUpper(Level(l).String())
		}

		return h.style.level(level).Render(s)
	}

	switch v.Kind() {
	case slog.KindString:
		return h.style.text.Render(v.String())

	case slog.KindInt64:
		return h.style.number.Render(strconv.FormatInt(v.Int64(), 10))

	case slog.KindUint64:
		return h.style.number.Render(strconv.FormatUint(v.Uint64(), 10))

	case slog.KindFloat64:
		return h.style.number.Render(strconv.FormatFloat(v.Float64(), 'g', -1, 64))

	case slog.KindBool:
		if v.Bool() {
			return h.style.yes.Render("true")
		}

		return h.style.no.Render("false")

	case slog.KindDuration:
		return h.style.duration.Render(v.Duration().String())

	case slog.KindTime:
		return h.style.text.Render(v.Time().Format(time.RFC3339))

	default:
		if v.Any() == nil {
			return h.style.null.Render("null")
		}

		return h.style.text.Render(v.String())
	}
}
