package cmd

import (
	"context"
	"errors"
	"os"
	"path/filepath"
	"slices"
	"testing"
)

func writeFile(t *testing.T, dir, name, content string) string {
	t.Helper()

	path := filepath.Join(dir, name)
	if err := os.WriteFile(path, []byte(content), 0o600); err != nil {
		t.Fatal(err)
	}

	return path
}

func collect(t *testing.T, seq func(func(string, error) bool)) ([]string, error) {
	t.Helper()

	var got []string

	for line, err := range seq {
		if err != nil {
			return got, err
		}

		got = append(got, line)
	}

	return got, nil
}

func TestWithSources_Empty(t *testing.T) {
	for _, sources := range [][]string{nil, {}, {"/no/such/file"}} {
		ctx := WithSources(context.Background(), sources)

		if s := sourcesFrom(ctx); !s.IsZero() {
			t.Errorf("WithSources(%q) = %+v, want zero", sources, s)
		}
	}
}

func TestWithSources_Dedup(t *testing.T) {
	dir := t.TempDir()
	a := writeFile(t, dir, "a.txt", "one\n")
	b := writeFile(t, dir, "b.txt", "two\n")

	link := filepath.Join(dir, "link.txt")
	if err := os.Symlink(a, link); err != nil {
		t.Skipf("symlinks unsupported: %v", err)
	}

	ctx := WithSources(context.Background(), []string{a, link, b, a, "-", "-"})
	s := sourcesFrom(ctx)

	if s == nil {
		t.Fatal("sources not stored")
	}

	if len(s.paths) != 2 {
		t.Errorf("paths = %q, want 2 entries", s.paths)
	}

	if !s.hasStdin {
		t.Error("stdin source dropped")
	}
}

func TestSources_Templates(t *testing.T) {
	dir := t.TempDir()
	a := writeFile(t, dir, "a.txt", "Hello [name]!\r\n\n   \nsecond\n")
	b := writeFile(t, dir, "b.txt", "third")

	ctx := WithSources(context.Background(), []string{a, b})

	got, err := collect(t, sourcesFrom(ctx).Templates())
	if err != nil {
		t.Fatal(err)
	}

	want := []string{"Hello [name]!", "second", "third"}
	if !slices.Equal(got, want) {
		t.Errorf("Templates() = %q, want %q", got, want)
	}
}

func TestSources_TemplatesStop(t *testing.T) {
	dir := t.TempDir()
	a := writeFile(t, dir, "a.txt", "1\n2\n3\n")

	ctx := WithSources(context.Background(), []string{a})

	var n int
	for range sourcesFrom(ctx).Templates() {
		n++
		if n == 2 {
			break
		}
	}

	if n != 2 {
		t.Errorf("iterated %d lines, want 2", n)
	}
}

func TestSources_ReadError(t *testing.T) {
	dir := t.TempDir()
	a := writeFile(t, dir, "a.txt", "1\n")

	ctx := WithSources(context.Background(), []string{a})

	if err := os.Remove(a); err != nil {
		t.Fatal(err)
	}

	_, err := collect(t, sourcesFrom(ctx).Templates())
	if !errors.Is(err, ErrReadSource) {
		t.Errorf("error = %v, want ErrReadSource", err)
	}
}

func TestTemplates(t *testing.T) {
	dir := t.TempDir()
	a := writeFile(t, dir, "a.txt", "from file\n")

	ctx := WithSources(context.Background(), []string{a})

	got, err := collect(t, templates(ctx, []string{"x", "y"}))
	if err != nil || !slices.Equal(got, []string{"x", "y"}) {
		t.Errorf("templates(args) = %q, %v", got, err)
	}

	got, err = collect(t, templates(ctx, nil))
	if err != nil || !slices.Equal(got, []string{"from file"}) {
		t.Errorf("templates(sources) = %q, %v", got, err)
	}

	_, err = collect(t, templates(context.Background(), nil))
	if !errors.Is(err, ErrNoTemplate) {
		t.Errorf("templates() error = %v, want ErrNoTemplate", err)
	}
}

func TestError(t *testing.T) {
	cause := errors.New("boom")
	err := ErrRender.Wrap(cause)

	if err.Error() != "render template: boom" {
		t.Errorf("Error() = %q", err.Error())
	}

	if !errors.Is(err, ErrRender) || !errors.Is(err, cause) {
		t.Error("wrapped error does not match its sentinel and cause")
	}

	if errors.Is(err, ErrCheck) {
		t.Error("wrapped error matches an unrelated sentinel")
	}

	if NewError("").Wrap(cause).Error() != "boom" {
		t.Error("error without message does not render its cause")
	}
}
