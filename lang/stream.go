package lang

import (
	"iter"
	"slices"
	"strings"
)

// Stream is a rewindable cursor over the tokens of one template.
//
// A Stream is not safe for concurrent use; each Parse call tokenizes into its
// own Stream.
type Stream struct {
	source string
	tokens []Token
	pos    int
}

func newStream(source string, tokens []Token) *Stream {
	return &Stream{source: source, tokens: tokens}
}

// Source returns the template text the stream was built from.
func (s *Stream) Source() string { return s.source }

// Len returns the total number of tokens.
func (s *Stream) Len() int { return len(s.tokens) }

// Pos returns the index of the next token to be consumed.
func (s *Stream) Pos() int { return s.pos }

// Peek returns the next token without consuming it.
func (s *Stream) Peek() (Token, bool) {
	if s.pos >= len(s.tokens) {
		return Token{}, false
	}

	return s.tokens[s.pos], true
}

// Next consumes and returns the next token unconditionally.
func (s *Stream) Next() (Token, bool) {
	tok, ok := s.Peek()
	if ok {
		s.pos++
	}

	return tok, ok
}

// Consume consumes the next token if it has the expected kind. Otherwise it
// returns a ParseError naming the offending token and leaves the cursor
// unchanged.
func (s *Stream) Consume(kind TokenKind) (Token, error) {
	return s.ConsumeOneOf(kind)
}

// ConsumeOneOf consumes the next token if its kind is any of kinds.
func (s *Stream) ConsumeOneOf(kinds ...TokenKind) (Token, error) {
	tok, ok := s.Peek()
	if !ok {
		return Token{}, newEOFError(s.source, "expected "+describeKinds(kinds))
	}

	if !slices.Contains(kinds, tok.Kind) {
		return Token{}, newParseError(
			s.source,
			"unexpected token, expected "+describeKinds(kinds),
			tok,
		)
	}

	s.pos++

	return tok, nil
}

// Rewind resets the cursor to the first token.
func (s *Stream) Rewind() { s.pos = 0 }

// All returns an iterator over every token, independent of the cursor.
func (s *Stream) All() iter.Seq[Token] {
	return func(yield func(Token) bool) {
		for _, tok := range s.tokens {
			if !yield(tok) {
				return
			}
		}
	}
}

// describeKinds renders kinds for diagnostics, e.g. "']' or '+'".
func describeKinds(kinds []TokenKind) string {
	desc := make([]string, 0, len(kinds))

	for _, k := range kinds {
		switch k {
		case TokenText:
			desc = append(desc, "text")
		case TokenNumber:
			desc = append(desc, "number")
		case TokenIdentifier:
			desc = append(desc, "identifier")
		case TokenOpenBracket:
			desc = append(desc, "'['")
		case TokenCloseBracket:
			desc = append(desc, "']'")
		case TokenPipe:
			desc = append(desc, "'|'")
		case TokenQuestionMark:
			desc = append(desc, "'?'")
		case TokenColon:
			desc = append(desc, "':'")
		case TokenPlus:
			desc = append(desc, "'+'")
		case TokenEquals:
			desc = append(desc, "'=='")
		case TokenLessThan:
			desc = append(desc, "'<'")
		case TokenGreaterThan:
			desc = append(desc, "'>'")
		default:
			desc = append(desc, k.String())
		}
	}

	return strings.Join(desc, " or ")
}
