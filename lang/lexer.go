package lang

import (
	"strings"
	"unicode"
)

// Tokenize converts template text into a rewindable token stream.
//
// Tokenize never fails. Outside brackets every character up to the next '['
// belongs to a plain Text token. Inside brackets the tokenizer recognizes
// operators, quoted strings, numbers, and identifiers; anything else becomes a
// single-character TokenInvalid for the parser to reject.
func Tokenize(source string) *Stream {
	l := &lexer{input: []rune(source)}
	l.run()

	return newStream(source, l.tokens)
}

// lexer holds the tokenizer state.
type lexer struct {
	input  []rune
	pos    int
	depth  int // bracket nesting; 0 means plain text mode
	tokens []Token
}

// single maps one-character operators to their token kinds.
var single = map[rune]TokenKind{
	'|': TokenPipe,
	'?': TokenQuestionMark,
	':': TokenColon,
	'+': TokenPlus,
	'<': TokenLessThan,
	'>': TokenGreaterThan,
}

func (l *lexer) run() {
	for !l.eof() {
		if l.depth == 0 {
			l.lexText()
		} else {
			l.lexExpression()
		}
	}
}

func (l *lexer) eof() bool { return l.pos >= len(l.input) }

func (l *lexer) emit(kind TokenKind, text string, start int) {
	l.tokens = append(l.tokens, Token{
		Kind:  kind,
		Text:  text,
		Start: start,
		End:   l.pos,
	})
}

// lexText consumes plain text up to and including the next '['.
func (l *lexer) lexText() {
	start := l.pos

	for !l.eof() && l.input[l.pos] != '[' {
		l.pos++
	}

	if l.pos > start {
		l.emit(TokenText, string(l.input[start:l.pos]), start)
	}

	if !l.eof() {
		l.pos++
		l.depth++
		l.emit(TokenOpenBracket, "[", l.pos-1)
	}
}

// lexExpression consumes a single token (or whitespace) inside brackets.
func (l *lexer) lexExpression() {
	start := l.pos
	r := l.input[l.pos]

	switch {
	case unicode.IsSpace(r):
		l.pos++

	case r == '[':
		l.pos++
		l.depth++
		l.emit(TokenOpenBracket, "[", start)

	case r == ']':
		l.pos++
		l.depth--
		l.emit(TokenCloseBracket, "]", start)

	case r == '=':
		l.pos++
		if !l.eof() && l.input[l.pos] == '=' {
			l.pos++
		}

		l.emit(TokenEquals, string(l.input[start:l.pos]), start)

	case r == '"':
		l.lexString()

	case isDigit(r):
		l.lexNumber()

	case isIdentifierStart(r):
		for !l.eof() && isIdentifierContinue(l.input[l.pos]) {
			l.pos++
		}

		l.emit(TokenIdentifier, string(l.input[start:l.pos]), start)

	default:
		l.pos++

		if kind, ok := single[r]; ok {
			l.emit(kind, string(r), start)
		} else {
			l.emit(TokenInvalid, string(r), start)
		}
	}
}

// lexString consumes a double-quoted literal and emits its unescaped contents
// as a Text token. An unterminated literal runs to the end of the input.
func (l *lexer) lexString() {
	start := l.pos
	l.pos++ // skip opening quote

	var sb strings.Builder

	for !l.eof() {
		r := l.input[l.pos]
		l.pos++

		switch r {
		case '"':
			l.emit(TokenText, sb.String(), start)

			return

		case '\\':
			if l.eof() {
				sb.WriteRune(r)

				continue
			}

			esc := l.input[l.pos]
			l.pos++

			switch esc {
			case 'n':
				sb.WriteRune('\n')
			case 't':
				sb.WriteRune('\t')
			default:
				sb.WriteRune(esc)
			}

		default:
			sb.WriteRune(r)
		}
	}

	l.emit(TokenText, sb.String(), start)
}

// lexNumber consumes a maximal run of digits containing at most one '.'.
func (l *lexer) lexNumber() {
	start := l.pos
	dot := false

	for !l.eof() {
		r := l.input[l.pos]
		if r == '.' && !dot {
			dot = true
		} else if !isDigit(r) {
			break
		}

		l.pos++
	}

	l.emit(TokenNumber, string(l.input[start:l.pos]), start)
}

// Character classification

func isDigit(r rune) bool { return r >= '0' && r <= '9' }

func isIdentifierStart(r rune) bool {
	return unicode.IsLetter(r) || r == '_'
}

func isIdentifierContinue(r rune) bool {
	return unicode.IsLetter(r) || unicode.IsDigit(r) || r == '_'
}
