package lang

import "strconv"

// TokenKind identifies the lexical class of a Token.
type TokenKind int

const (
	// TokenText is a run of plain template text outside brackets, or the
	// unescaped contents of a quoted string inside brackets.
	TokenText TokenKind = iota

	// TokenNumber is a run of digits with at most one decimal point.
	TokenNumber

	// TokenIdentifier names a placeholder or, after a pipe, a filter.
	TokenIdentifier

	TokenOpenBracket  // [
	TokenCloseBracket // ]
	TokenPipe         // |
	TokenQuestionMark // ?
	TokenColon        // :
	TokenPlus         // +
	TokenEquals       // == (a lone = is also lexed as TokenEquals)
	TokenLessThan     // <
	TokenGreaterThan  // >

	// TokenInvalid is a character inside brackets that cannot begin any other
	// token. The tokenizer never fails; the parser rejects these.
	TokenInvalid
)

// String returns a string representation of the token kind.
func (k TokenKind) String() string {
	switch k {
	case TokenText:
		return "Text"

	case TokenNumber:
		return "Number"

	case TokenIdentifier:
		return "Identifier"

	case TokenOpenBracket:
		return "OpenBracket"

	case TokenCloseBracket:
		return "CloseBracket"

	case TokenPipe:
		return "Pipe"

	case TokenQuestionMark:
		return "QuestionMark"

	case TokenColon:
		return "Colon"

	case TokenPlus:
		return "Plus"

	case TokenEquals:
		return "Equals"

	case TokenLessThan:
		return "LessThan"

	case TokenGreaterThan:
		return "GreaterThan"

	case TokenInvalid:
		return "Invalid"

	default:
		return "Unknown"
	}
}

// Token is a lexical unit of a template. Start and End are character offsets
// into the source and are used only for diagnostics.
type Token struct {
	Kind  TokenKind
	Text  string
	Start int
	End   int
}

// String returns a compact representation such as Identifier("name")@3.
func (t Token) String() string {
	return t.Kind.String() + "(" + strconv.Quote(t.Text) + ")@" +
		strconv.Itoa(t.Start)
}
