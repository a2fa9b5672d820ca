package cmd

import (
	"bufio"
	"context"
	"io"
	"iter"
	"log/slog"
	"os"
	"path/filepath"
	"strings"
	"syscall"

	"github.com/alecthomas/kong"
	"github.com/klauspost/readahead"

	"github.com/ardnew/umbra/log"
)

// ContextKey is used to store a [kong.Context] value in [context.Context].
type contextKey struct{}

// WithContext returns a new context.Context containing the given kong.Context.
func WithContext(ctx context.Context, ktx *kong.Context) context.Context {
	return context.WithValue(ctx, contextKey{}, ktx)
}

func kongContextFrom(ctx context.Context) *kong.Context {
	ktx, ok := ctx.Value(contextKey{}).(*kong.Context)
	if !ok || ktx == nil {
		return nil
	}

	return ktx
}

// kongVar returns the kong variable named id, or "" if there is no kong
// context or no such variable.
func kongVar(ctx context.Context, id string) string {
	ktx := kongContextFrom(ctx)
	if ktx == nil {
		return ""
	}

	return ktx.Model.Vars()[id]
}

type outputKey struct{}

// WithOutput returns a new context.Context whose commands write to w.
func WithOutput(ctx context.Context, w io.Writer) context.Context {
	return context.WithValue(ctx, outputKey{}, w)
}

func outputFrom(ctx context.Context) io.Writer {
	if w, ok := ctx.Value(outputKey{}).(io.Writer); ok && w != nil {
		return w
	}

	return os.Stdout
}

type sourcesKey struct{}

// Sources is a deduplicated list of template files.
type Sources struct {
	paths    []string
	hasStdin bool
}

// IsZero reports whether there are no source files.
func (s *Sources) IsZero() bool {
	return s == nil || (len(s.paths) == 0 && !s.hasStdin)
}

// Templates returns an iterator over the non-blank lines of every source
// file, in order, with stdin last. Iteration stops at the first read error.
func (s *Sources) Templates() iter.Seq2[string, error] {
	return func(yield func(string, error) bool) {
		if s == nil {
			return
		}

		for _, path := range s.paths {
			if !readLines(path, yield) {
				return
			}
		}

		if s.hasStdin {
			scanLines(os.Stdin, stdinSource, yield)
		}
	}
}

// fileKey uniquely identifies a file by its device and inode numbers.
// This handles deduplication across symlinks, absolute/relative paths, and
// special device files.
type fileKey struct {
	dev uint64
	ino uint64
}

// stdinSource is the special source indicator for reading from stdin.
const stdinSource = "-"

// WithSources returns a new context.Context containing the template files
// named by sources.
//
// Paths are deduplicated by resolving symlinks and comparing device/inode
// pairs. Every "-" (or path naming stdin) collapses to a single stdin source
// read after all regular files. Paths that cannot be resolved are logged and
// skipped.
func WithSources(ctx context.Context, sources []string) context.Context {
	return context.WithValue(ctx, sourcesKey{}, buildSources(ctx, sources))
}

func sourcesFrom(ctx context.Context) *Sources {
	s, _ := ctx.Value(sourcesKey{}).(*Sources)

	return s
}

func buildSources(ctx context.Context, sources []string) *Sources {
	if len(sources) == 0 {
		return nil
	}

	var srcs Sources

	seen := make(map[fileKey]struct{})

	stdinKey, stdinOK := statKey(os.Stdin.Stat())

	for _, src := range sources {
		if src == stdinSource {
			srcs.hasStdin = true

			continue
		}

		path, key, err := resolve(src)
		if err != nil {
			log.WarnContext(ctx, "skipping source",
				slog.String("path", src),
				slog.Any("error", err),
			)

			continue
		}

		if stdinOK && key == stdinKey {
			srcs.hasStdin = true

			continue
		}

		if _, dup := seen[key]; dup {
			continue
		}

		seen[key] = struct{}{}
		srcs.paths = append(srcs.paths, path)
	}

	if srcs.IsZero() {
		return nil
	}

	return &srcs
}

// resolve returns the symlink-free absolute path of path and its file key.
func resolve(path string) (string, fileKey, error) {
	abs, err := filepath.Abs(path)
	if err != nil {
		return "", fileKey{}, err
	}

	resolved, err := filepath.EvalSymlinks(abs)
	if err != nil {
		return "", fileKey{}, err
	}

	key, ok := statKey(os.Stat(resolved))
	if !ok {
		return "", fileKey{}, ErrReadSource.With(slog.String("path", path))
	}

	return resolved, key, nil
}

// statKey creates a fileKey from the result of a stat call.
// Returns false if the stat failed or Sys() is not a *syscall.Stat_t.
func statKey(info os.FileInfo, err error) (fileKey, bool) {
	if err != nil || info == nil {
		return fileKey{}, false
	}

	stat, ok := info.Sys().(*syscall.Stat_t)
	if !ok {
		return fileKey{}, false
	}

	return fileKey{dev: uint64(stat.Dev), ino: stat.Ino}, true //nolint:unconvert
}

func readLines(path string, yield func(string, error) bool) bool {
	f, err := os.Open(path)
	if err != nil {
		return yield("", ErrReadSource.With(slog.String("path", path)).Wrap(err))
	}
	defer f.Close()

	ra := readahead.NewReader(f)
	defer ra.Close()

	return scanLines(ra, path, yield)
}

func scanLines(r io.Reader, name string, yield func(string, error) bool) bool {
	scanner := bufio.NewScanner(r)
	for scanner.Scan() {
		line := strings.TrimRight(scanner.Text(), "\r")
		if strings.TrimSpace(line) == "" {
			continue
		}

		if !yield(line, nil) {
			return false
		}
	}

	if err := scanner.Err(); err != nil {
		return yield("", ErrReadSource.With(slog.String("path", name)).Wrap(err))
	}

	return true
}

// templates returns args when any are given, otherwise the templates read
// from the context's sources.
func templates(ctx context.Context, args []string) iter.Seq2[string, error] {
	if len(args) > 0 {
		return func(yield func(string, error) bool) {
			for _, a := range args {
				if !yield(a, nil) {
					return
				}
			}
		}
	}

	srcs := sourcesFrom(ctx)
	if srcs.IsZero() {
		return func(yield func(string, error) bool) {
			yield("", ErrNoTemplate)
		}
	}

	return srcs.Templates()
}
