package repl

import (
	"bufio"
	"context"
	"fmt"
	"io"
	"log/slog"
	"os"
	"os/exec"
	"strings"

	"github.com/goccy/go-yaml"

	"github.com/ardnew/umbra/log"
	"github.com/ardnew/umbra/placeholder"
)

const defaultEditor = "vi"

// editVarsCommand implements [tea.ExecCommand] for the placeholder
// edit-parse-retry loop. It writes the current placeholder values to a temp
// YAML file, opens the user's editor, and loads the result. On a decode
// error the user is prompted to re-edit; declining exits the program.
type editVarsCommand struct {
	vars    placeholder.Map
	ctxFunc func() context.Context
	newVars placeholder.Map
	logger  log.Logger
	stdin   io.Reader
	stdout  io.Writer
	stderr  io.Writer
}

// SetStdin sets the stdin reader for the command.
func (c *editVarsCommand) SetStdin(r io.Reader) { c.stdin = r }

// SetStdout sets the stdout writer for the command.
func (c *editVarsCommand) SetStdout(w io.Writer) { c.stdout = w }

// SetStderr sets the stderr writer for the command.
func (c *editVarsCommand) SetStderr(w io.Writer) { c.stderr = w }

// Run executes the edit loop. An emptied file cancels the edit and leaves
// newVars nil. If the user declines to re-edit after an error, Run returns
// [ErrEditDeclined].
func (c *editVarsCommand) Run() error {
	ctx := c.ctxFunc()

	content, err := yaml.Marshal(map[string]string(c.vars))
	if err != nil {
		return fmt.Errorf("encode placeholders: %w", err)
	}

	f, err := os.CreateTemp("", "umbra-vars-*.yaml")
	if err != nil {
		return err
	}

	tmpPath := f.Name()

	defer os.Remove(tmpPath)

	if err := f.Chmod(0o600); err != nil {
		f.Close()

		return err
	}

	f.Close()

	for {
		if err := os.WriteFile(tmpPath, content, 0o600); err != nil {
			return err
		}

		if err := runEditor(ctx, c.stdin, c.stdout, c.stderr, tmpPath); err != nil {
			return err
		}

		data, err := os.ReadFile(tmpPath)
		if err != nil {
			return err
		}

		if strings.TrimSpace(string(data)) == "" {
			return nil
		}

		vars, loadErr := placeholder.LoadYAML(strings.NewReader(string(data)))
		c.logger.TraceContext(
			ctx,
			"editor load attempt",
			slog.Int("content_length", len(data)),
			slog.Bool("success", loadErr == nil),
		)

		if loadErr == nil {
			c.newVars = vars

			return nil
		}

		fmt.Fprintf(c.stderr, "\nError: %s\n", loadErr)
		fmt.Fprintf(c.stdout, "Re-edit? [Y/n] ")

		if !confirm(c.stdin) {
			return ErrEditDeclined
		}

		content = data
	}
}

// confirm reads one line from r and reports whether it is not a "no".
func confirm(r io.Reader) bool {
	scanner := bufio.NewScanner(r)
	if !scanner.Scan() {
		return false
	}

	switch strings.ToLower(strings.TrimSpace(scanner.Text())) {
	case "n", "no":
		return false
	}

	return true
}

// runEditor launches the user's editor on the given file path.
func runEditor(
	ctx context.Context,
	stdin io.Reader,
	stdout io.Writer,
	stderr io.Writer,
	path string,
) error {
	args := strings.Fields(os.Getenv("VISUAL"))
	if len(args) == 0 {
		args = strings.Fields(os.Getenv("EDITOR"))
	}

	if len(args) == 0 {
		args = []string{defaultEditor}
	}

	cmd := exec.CommandContext(ctx, args[0], append(args[1:], path)...)
	cmd.Stdin = stdin
	cmd.Stdout = stdout
	cmd.Stderr = stderr

	return cmd.Run()
}
