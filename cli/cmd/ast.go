package cmd

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"log/slog"
	"strings"

	"github.com/goccy/go-yaml"

	"github.com/ardnew/umbra/lang"
	"github.com/ardnew/umbra/log"
)

// AST prints the syntax tree of each template.
type AST struct {
	Templates []string `arg:"" help:"Templates to parse (default: read from --source)" name:"template" optional:""`

	Format string `default:"text" enum:"text,json,yaml" help:"Output format (${enum})." short:"o"`
	Indent int    `default:"2"                          help:"Indent width for json and yaml output." short:"i"`
}

// Run executes the ast command.
func (a *AST) Run(ctx context.Context) (err error) {
	ctx, cancel := context.WithCancelCause(ctx)

	defer func(err *error) { cancel(*err) }(&err)

	out := outputFrom(ctx)

	var docs []astDocument

	for source, err := range templates(ctx, a.Templates) {
		if err != nil {
			return err
		}

		script, err := lang.Parse(ctx, source, lang.WithLogger(log.Default()))
		if err != nil {
			return err
		}

		if a.Format == "text" {
			fmt.Fprintf(out, "# %q\n", source)
			script.Context().Print(out)

			continue
		}

		docs = append(docs, makeDocument(script))
	}

	switch a.Format {
	case "json":
		return a.writeJSON(out, docs)

	case "yaml":
		return a.writeYAML(ctx, out, docs)
	}

	return nil
}

func (a *AST) writeJSON(w io.Writer, docs []astDocument) error {
	data, err := json.MarshalIndent(docs, "", strings.Repeat(" ", a.Indent))
	if err != nil {
		return ErrMarshal.With(slog.String("format", "json")).Wrap(err)
	}

	_, err = fmt.Fprintln(w, string(data))

	return err
}

func (a *AST) writeYAML(ctx context.Context, w io.Writer, docs []astDocument) error {
	var opts []yaml.EncodeOption
	if a.Indent > 0 {
		opts = append(opts, yaml.Indent(a.Indent))
	}

	data, err := yaml.MarshalContext(ctx, docs, opts...)
	if err != nil {
		return ErrMarshal.With(slog.String("format", "yaml")).Wrap(err)
	}

	_, err = w.Write(data)

	return err
}

// astDocument is the serialized form of a parsed template.
type astDocument struct {
	Source       string    `json:"source"                 yaml:"source"`
	Dependencies []string  `json:"dependencies,omitempty" yaml:"dependencies,omitempty"`
	Functions    []string  `json:"functions,omitempty"    yaml:"functions,omitempty"`
	Nodes        []astNode `json:"nodes"                  yaml:"nodes"`
}

// astNode is the serialized form of a [lang.Node].
type astNode struct {
	Kind     string    `json:"kind"               yaml:"kind"`
	Pos      int       `json:"pos"                yaml:"pos"`
	Value    string    `json:"value,omitempty"    yaml:"value,omitempty"`
	Op       string    `json:"op,omitempty"       yaml:"op,omitempty"`
	Function string    `json:"function,omitempty" yaml:"function,omitempty"`
	Children []astNode `json:"children,omitempty" yaml:"children,omitempty"`
}

func makeDocument(s *lang.Script) astDocument {
	doc := astDocument{
		Source:       s.Source(),
		Dependencies: s.Dependencies(),
		Functions:    s.Functions(),
		Nodes:        make([]astNode, 0, len(s.Context().Nodes)),
	}

	for _, n := range s.Context().Nodes {
		doc.Nodes = append(doc.Nodes, makeNode(n))
	}

	return doc
}

func makeNode(n lang.Node) astNode {
	node := astNode{Pos: n.Pos()}

	switch n := n.(type) {
	case *lang.TextNode:
		node.Kind, node.Value = "text", n.Literal

	case *lang.NumberNode:
		node.Kind, node.Value = "number", n.Literal

	case *lang.IdentifierNode:
		node.Kind, node.Value = "identifier", n.Name

	case *lang.ConcatNode:
		node.Kind = "concat"
		node.Children = []astNode{makeNode(n.Left), makeNode(n.Right)}

	case *lang.TernaryNode:
		node.Kind = "ternary"
		node.Children = []astNode{makeNode(n.Condition), makeNode(n.WhenTrue)}

		if n.WhenFalse != nil {
			node.Children = append(node.Children, makeNode(n.WhenFalse))
		}

	case *lang.ComparisonNode:
		node.Kind, node.Op = "comparison", n.Op.String()
		node.Children = []astNode{makeNode(n.Left), makeNode(n.Right)}

	case *lang.PipeNode:
		node.Kind, node.Function = "pipe", n.Function
		node.Children = []astNode{makeNode(n.Value)}
	}

	return node
}
