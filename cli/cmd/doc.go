// Package cmd implements the umbra subcommands: render, check, tokens, ast,
// and repl.
//
// Templates are taken from positional arguments or, when none are given, one
// per line from the files named by the global --source flag. Output goes to
// the writer stored with [WithOutput], which defaults to standard output.
package cmd

var (
	// CacheIdentifier is the kong variable identifier containing the path to
	// the runtime cache directory.
	CacheIdentifier = "cache"

	// ConfigIdentifier is the kong variable identifier containing the path to
	// the configuration file, without extension.
	ConfigIdentifier = "config"
)
