package cli

import (
	"context"
	"strconv"

	"github.com/alecthomas/kong"

	"github.com/ardnew/umbra/cli/cmd"
	"github.com/ardnew/umbra/lang"
	"github.com/ardnew/umbra/pkg"
)

// baseConfig is the base name of the configuration files.
const baseConfig = "config"

// CLI is the top-level command-line interface for umbra.
type CLI struct {
	Log   logConfig   `embed:"" group:"log"   prefix:"log-"`
	Pprof pprofConfig `embed:"" group:"pprof" prefix:"pprof-"`

	Version kong.VersionFlag `help:"Print version and exit." short:"V"`

	Source []string `help:"Template file(s), one template per line, or '-' for stdin." name:"source" short:"s" type:"existingfile"`

	Render cmd.Render `cmd:"" default:"withargs" help:"Render templates (default)."`
	Check  cmd.Check  `cmd:""                    help:"Parse templates and report their placeholders and filters."`
	Tokens cmd.Tokens `cmd:""                    help:"Print the token stream of templates."`
	AST    cmd.AST    `cmd:""                    help:"Print the syntax tree of templates." name:"ast"`
	Repl   cmd.Repl   `cmd:""                    help:"Edit templates interactively with a live preview."`
}

// Run executes the umbra CLI with the given context and arguments.
// The exit function is called with the appropriate exit code upon completion.
func Run(
	ctx context.Context,
	exit func(code int),
	args ...string,
) error {
	var cli CLI

	err := pkg.MkdirAll()
	if err != nil {
		return err
	}

	configFilePath := pkg.ConfigPath(baseConfig)

	vars := kong.Vars{
		"version":            pkg.Version,
		"maxDepth":           strconv.Itoa(lang.DefaultMaxDepth),
		"maxTokens":          strconv.Itoa(lang.DefaultMaxTokens),
		cmd.ConfigIdentifier: configFilePath,
		cmd.CacheIdentifier:  pkg.CacheDir(),
	}.
		CloneWith(cli.Log.vars()).
		CloneWith(cli.Pprof.vars())

	ctx, cancel := context.WithCancel(ctx)
	defer cancel()

	// Pre-scan for logger flags so they apply regardless of flag position.
	cli.Log.scan(args)

	parser, err := kong.New(&cli,
		kong.Name(pkg.Name),
		kong.Description(pkg.Description),
		kong.UsageOnError(),
		kong.Exit(exit),
		kong.ExplicitGroups(
			[]kong.Group{cli.Log.group(), cli.Pprof.group()},
		),
		kong.BindSingletonProvider(func() context.Context {
			return ctx
		}),
		kong.ConfigureHelp(
			kong.HelpOptions{
				Compact:             true,
				Summary:             true,
				Tree:                true,
				NoExpandSubcommands: true,
			}),
		kong.Configuration(kong.JSON, configFilePath+".json"),
		kong.Configuration(resolve(ctx, configFilePath+".yaml"), configFilePath+".yaml"),
		vars,
	)
	if err != nil {
		return err
	}

	ktx, err := parser.Parse(args)
	if err != nil {
		return err
	}

	// Finalize logger configuration with all parsed values, including
	// TimeLayout and Caller which don't use TextUnmarshaler.
	cli.Log.start(ctx)

	ctx = cmd.WithContext(ctx, ktx)
	ctx = cmd.WithSources(ctx, cli.Source)

	// [pprofConfig.start] is no-op unless built with tag pprof and enabled.
	defer cli.Pprof.start(ctx)()

	return ktx.Run()
}
