package log

import (
	"slices"
	"testing"
	"time"
)

func TestLevel_String(t *testing.T) {
	tests := []struct {
		level Level
		want  string
	}{
		{LevelTrace, "trace"},
		{LevelDebug, "debug"},
		{LevelInfo, "info"},
		{LevelWarn, "warn"},
		{LevelError, "error"},
		{LevelInfo + 2, "info+2"},
		{LevelDebug - 2, "trace+2"},
		{LevelTrace - 1, "trace-1"},
		{LevelError + 4, "error+4"},
	}

	for _, tt := range tests {
		if got := tt.level.String(); got != tt.want {
			t.Errorf("Level(%d).String() = %q, want %q", int(tt.level), got, tt.want)
		}
	}
}

func TestParseLevel(t *testing.T) {
	tests := []struct {
		in   string
		want Level
	}{
		{"trace", LevelTrace},
		{" TRACE ", LevelTrace},
		{"debug", LevelDebug},
		{"INFO", LevelInfo},
		{"warn", LevelWarn},
		{"error", LevelError},
		{"info+2", LevelInfo + 2},
		{"bogus", DefaultLevel},
		{"", DefaultLevel},
	}

	for _, tt := range tests {
		if got := ParseLevel(tt.in); got != tt.want {
			t.Errorf("ParseLevel(%q) = %v, want %v", tt.in, got, tt.want)
		}
	}
}

func TestLevelsAndFormats(t *testing.T) {
	levels := slices.Collect(Levels())
	if want := []string{"trace", "debug", "info", "warn", "error"}; !slices.Equal(levels, want) {
		t.Errorf("Levels() = %v, want %v", levels, want)
	}

	formats := slices.Collect(Formats())
	if want := []string{"json", "text"}; !slices.Equal(formats, want) {
		t.Errorf("Formats() = %v, want %v", formats, want)
	}

	for _, f := range formats {
		if ParseFormat(f).String() != f {
			t.Errorf("ParseFormat(%q) does not round trip", f)
		}
	}

	if ParseFormat("yaml") != DefaultFormat {
		t.Error("unknown format did not yield DefaultFormat")
	}
}

func TestOptions(t *testing.T) {
	c := apply(config{},
		WithLevel(LevelWarn),
		WithFormat(FormatText),
		WithCaller(true),
		WithPretty(false),
		WithOutput(nil),
	)

	if c.mutex == nil {
		t.Fatal("options did not allocate a mutex")
	}

	if c.level != LevelWarn || c.format != FormatText || !c.caller || c.pretty {
		t.Errorf("options not applied: %+v", c)
	}

	if c.output == nil {
		t.Error("WithOutput(nil) left a nil writer")
	}
}

func TestMakeFormatTimeFunc(t *testing.T) {
	at := time.Date(2024, 3, 9, 14, 5, 6, 0, time.UTC)

	tests := []struct {
		layout string
		want   string
	}{
		{"RFC3339", at.Format(time.RFC3339)},
		{"rfc-3339", at.Format(time.RFC3339)},
		{"Kitchen", "2:05PM"},
		{"DateTime", "2024-03-09 14:05:06"},
		{"none", ""},
		{"", ""},
		{"2006/01/02", "2024/03/09"},
	}

	for _, tt := range tests {
		if got := makeFormatTimeFunc(tt.layout)(at); got != tt.want {
			t.Errorf("layout %q: got %q, want %q", tt.layout, got, tt.want)
		}
	}
}
