package lang

import (
	"log/slog"
	"strconv"
	"strings"
)

// parser holds the parser state.
type parser struct {
	tokens *Stream
	depth  int
	opts   options
}

// parseStream parses a full template from s. The stream must be positioned
// at its first token.
func parseStream(s *Stream, o options) (*ScriptContext, error) {
	if o.maxTokens > 0 && s.Len() > o.maxTokens {
		tok := s.tokens[o.maxTokens]
		err := newParseError(s.source, "template has too many tokens", tok)
		err.cause = ErrMaxTokensExceeded.
			With(slog.Int("tokens", s.Len())).
			With(slog.Int("max_tokens", o.maxTokens)).
			Wrap(ErrParse)

		return nil, err
	}

	deps, funcs := Scan(s)

	p := &parser{tokens: s, opts: o}

	nodes, err := p.parseTemplate()
	if err != nil {
		return nil, err
	}

	return &ScriptContext{
		Nodes:        nodes,
		Dependencies: deps,
		Functions:    funcs,
	}, nil
}

// parseTemplate parses: (TEXT | NUMBER | bracketed)*.
func (p *parser) parseTemplate() ([]Node, error) {
	nodes := make([]Node, 0)

	for {
		tok, ok := p.tokens.Peek()
		if !ok {
			break
		}

		switch tok.Kind {
		case TokenText:
			p.tokens.Next()
			nodes = append(nodes, &TextNode{Literal: tok.Text, At: tok.Start})

		case TokenNumber:
			p.tokens.Next()
			nodes = append(nodes, &NumberNode{Literal: tok.Text, At: tok.Start})

		case TokenOpenBracket:
			n, err := p.parseBracketed()
			if err != nil {
				return nil, err
			}

			nodes = append(nodes, n)

		default:
			return nil, p.errorAt("unexpected token", tok)
		}
	}

	return nodes, nil
}

// parseBracketed parses: '[' concat ']'.
func (p *parser) parseBracketed() (Node, error) {
	_, err := p.tokens.Consume(TokenOpenBracket)
	if err != nil {
		return nil, err
	}

	n, err := p.parseConcat()
	if err != nil {
		return nil, err
	}

	_, err = p.tokens.Consume(TokenCloseBracket)
	if err != nil {
		return nil, err
	}

	return n, nil
}

// parseConcat parses: ternary ('+' ternary)*.
func (p *parser) parseConcat() (Node, error) {
	err := p.enter()
	if err != nil {
		return nil, err
	}
	defer p.leave()

	left, err := p.parseTernary()
	if err != nil {
		return nil, err
	}

	for p.next(TokenPlus) {
		p.tokens.Next()

		right, err := p.parseTernary()
		if err != nil {
			return nil, err
		}

		left = &ConcatNode{Left: left, Right: right, At: left.Pos()}
	}

	return left, nil
}

// parseTernary parses: comparison ('?' concat (':' ternary)?)?.
func (p *parser) parseTernary() (Node, error) {
	cond, err := p.parseComparison()
	if err != nil {
		return nil, err
	}

	if !p.next(TokenQuestionMark) {
		return cond, nil
	}

	p.tokens.Next()

	whenTrue, err := p.parseConcat()
	if err != nil {
		return nil, err
	}

	node := &TernaryNode{Condition: cond, WhenTrue: whenTrue, At: cond.Pos()}

	if !p.next(TokenColon) {
		return node, nil
	}

	p.tokens.Next()

	err = p.enter()
	if err != nil {
		return nil, err
	}
	defer p.leave()

	node.WhenFalse, err = p.parseTernary()
	if err != nil {
		return nil, err
	}

	return node, nil
}

// parseComparison parses: pipe (('==' | '<' | '>') pipe)*.
func (p *parser) parseComparison() (Node, error) {
	left, err := p.parsePipe()
	if err != nil {
		return nil, err
	}

	for {
		tok, ok := p.tokens.Peek()
		if !ok {
			return left, nil
		}

		var op Op

		switch tok.Kind {
		case TokenEquals:
			if tok.Text != "==" {
				return nil, p.errorAt("expected '=='", tok)
			}

			op = OpEq

		case TokenLessThan:
			op = OpLt

		case TokenGreaterThan:
			op = OpGt

		default:
			return left, nil
		}

		p.tokens.Next()

		right, err := p.parsePipe()
		if err != nil {
			return nil, err
		}

		left = &ComparisonNode{Op: op, Left: left, Right: right, At: left.Pos()}
	}
}

// parsePipe parses: primary ('|' IDENTIFIER)*.
func (p *parser) parsePipe() (Node, error) {
	value, err := p.parsePrimary()
	if err != nil {
		return nil, err
	}

	for p.next(TokenPipe) {
		p.tokens.Next()

		fn, err := p.tokens.Consume(TokenIdentifier)
		if err != nil {
			return nil, err
		}

		value = &PipeNode{
			Value:    value,
			Function: strings.ToLower(fn.Text),
			At:       value.Pos(),
		}
	}

	return value, nil
}

// parsePrimary parses: IDENTIFIER | NUMBER | STRING | '[' concat ']'.
func (p *parser) parsePrimary() (Node, error) {
	tok, ok := p.tokens.Peek()
	if !ok {
		return nil, newEOFError(p.tokens.source, "expected expression")
	}

	switch tok.Kind {
	case TokenIdentifier:
		p.tokens.Next()

		return &IdentifierNode{Name: strings.ToLower(tok.Text), At: tok.Start}, nil

	case TokenNumber:
		p.tokens.Next()

		return &NumberNode{Literal: tok.Text, At: tok.Start}, nil

	case TokenText:
		p.tokens.Next()

		return &TextNode{Literal: tok.Text, At: tok.Start}, nil

	case TokenOpenBracket:
		return p.parseBracketed()

	default:
		return nil, p.errorAt("expected expression", tok)
	}
}

// next reports whether the next token has the given kind.
func (p *parser) next(kind TokenKind) bool {
	tok, ok := p.tokens.Peek()

	return ok && tok.Kind == kind
}

// enter increments the nesting depth, failing once it exceeds the limit.
func (p *parser) enter() error {
	p.depth++

	if p.opts.maxDepth <= 0 || p.depth <= p.opts.maxDepth {
		return nil
	}

	tok, ok := p.tokens.Peek()
	if !ok {
		tok = Token{Start: len([]rune(p.tokens.source))}
	}

	err := newParseError(
		p.tokens.source,
		"expression nested deeper than "+strconv.Itoa(p.opts.maxDepth),
		tok,
	)
	err.cause = ErrMaxDepthExceeded.
		With(slog.Int("max_depth", p.opts.maxDepth)).
		Wrap(ErrParse)

	return err
}

func (p *parser) leave() { p.depth-- }

func (p *parser) errorAt(msg string, tok Token) error {
	return newParseError(p.tokens.source, msg, tok)
}
