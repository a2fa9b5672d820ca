package cmd

import (
	"context"
	"fmt"
	"io"
	"strconv"

	"github.com/jedib0t/go-pretty/v6/table"
	"github.com/jedib0t/go-pretty/v6/text"

	"github.com/ardnew/umbra/lang"
)

// Tokens prints the token stream of each template, one token per line.
type Tokens struct {
	Templates []string `arg:"" help:"Templates to tokenize (default: read from --source)" name:"template" optional:""`

	Table bool `help:"Print each token stream as a table." short:"t"`
}

// Run executes the tokens command.
func (t *Tokens) Run(ctx context.Context) error {
	out := outputFrom(ctx)
	first := true

	for source, err := range templates(ctx, t.Templates) {
		if err != nil {
			return err
		}

		if !first {
			fmt.Fprintln(out)
		}

		first = false

		if t.Table {
			printTokenTable(out, source)

			continue
		}

		fmt.Fprintf(out, "# %s\n", strconv.Quote(source))

		for tok := range lang.Tokenize(source).All() {
			fmt.Fprintf(out, "%4d:%-4d %-12s %s\n",
				tok.Start, tok.End, tok.Kind, strconv.Quote(tok.Text))
		}
	}

	return nil
}

func printTokenTable(w io.Writer, source string) {
	tw := table.NewWriter()
	tw.SetOutputMirror(w)
	tw.SetStyle(table.StyleLight)
	tw.SetTitle(strconv.Quote(source))
	tw.AppendHeader(table.Row{"start", "end", "kind", "text"})

	for tok := range lang.Tokenize(source).All() {
		tw.AppendRow(table.Row{tok.Start, tok.End, tok.Kind.String(), strconv.Quote(tok.Text)})
	}

	tw.SetColumnConfigs([]table.ColumnConfig{
		{Number: 1, Align: text.AlignRight},
		{Number: 2, Align: text.AlignRight},
	})
	tw.Render()
}
