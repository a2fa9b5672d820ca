package lang

import (
	"errors"
	"slices"
	"testing"
)

func TestStream_PeekNextRewind(t *testing.T) {
	s := Tokenize("[A]")

	if s.Len() != 3 {
		t.Fatalf("Len() = %d, want 3", s.Len())
	}

	tok, ok := s.Peek()
	if !ok || tok.Kind != TokenOpenBracket {
		t.Fatalf("Peek() = %v, %v", tok, ok)
	}

	if s.Pos() != 0 {
		t.Errorf("Peek advanced the cursor to %d", s.Pos())
	}

	for range 3 {
		if _, ok := s.Next(); !ok {
			t.Fatal("Next() ran out early")
		}
	}

	if _, ok := s.Next(); ok {
		t.Error("Next() past the end reported ok")
	}

	if _, ok := s.Peek(); ok {
		t.Error("Peek() past the end reported ok")
	}

	s.Rewind()

	if s.Pos() != 0 {
		t.Errorf("Rewind() left cursor at %d", s.Pos())
	}
}

func TestStream_Consume(t *testing.T) {
	s := Tokenize("[A]")

	if _, err := s.Consume(TokenOpenBracket); err != nil {
		t.Fatalf("Consume(OpenBracket): %v", err)
	}

	_, err := s.Consume(TokenCloseBracket)

	var pe *ParseError
	if !errors.As(err, &pe) {
		t.Fatalf("Consume(CloseBracket) error = %v, want *ParseError", err)
	}

	if pe.Column != 1 || pe.Snippet != "A" {
		t.Errorf("got column %d snippet %q, want 1 \"A\"", pe.Column, pe.Snippet)
	}

	if !errors.Is(err, ErrParse) {
		t.Error("error does not match ErrParse")
	}

	if s.Pos() != 1 {
		t.Errorf("failed Consume moved cursor to %d", s.Pos())
	}

	tok, err := s.ConsumeOneOf(TokenNumber, TokenIdentifier)
	if err != nil || tok.Text != "A" {
		t.Fatalf("ConsumeOneOf() = %v, %v", tok, err)
	}

	_, _ = s.Next()

	_, err = s.Consume(TokenCloseBracket)
	if !errors.As(err, &pe) {
		t.Fatalf("Consume at end error = %v, want *ParseError", err)
	}

	if pe.Column != 3 || pe.Snippet != "" {
		t.Errorf("end of input: got column %d snippet %q", pe.Column, pe.Snippet)
	}
}

func TestStream_AllIgnoresCursor(t *testing.T) {
	s := Tokenize("a[b]c")
	_, _ = s.Next()
	_, _ = s.Next()

	kinds := make([]TokenKind, 0, s.Len())
	for tok := range s.All() {
		kinds = append(kinds, tok.Kind)
	}

	want := []TokenKind{
		TokenText, TokenOpenBracket, TokenIdentifier, TokenCloseBracket, TokenText,
	}
	if !slices.Equal(kinds, want) {
		t.Errorf("All() kinds = %v, want %v", kinds, want)
	}
}
