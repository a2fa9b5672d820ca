package cmd

import (
	"context"

	"github.com/ardnew/umbra/cli/cmd/repl"
	"github.com/ardnew/umbra/lang"
	"github.com/ardnew/umbra/log"
)

// Repl starts an interactive template editor with a live preview.
type Repl struct {
	Values `embed:""`
}

// Run executes the repl command.
func (r *Repl) Run(ctx context.Context) error {
	base, err := r.base(ctx)
	if err != nil {
		return err
	}

	// Fail on a bad --derive before taking over the terminal.
	if _, err := r.provider(base); err != nil {
		return err
	}

	return repl.Run(ctx, repl.Session{
		Vars:      base,
		Derive:    r.Derive,
		Functions: lang.Builtins(),
		CacheDir:  kongVar(ctx, CacheIdentifier),
		Logger:    log.Default(),
	})
}
