package parser

import (
	"errors"
	"fmt"
	"strings"

	"github.com/gnolang/fparse/lexer"
)

// ErrUnexpectedEOF matches, through errors.Is, every SyntaxError raised
// because the input ended where a token was required.
var ErrUnexpectedEOF = errors.New("unexpected end of input")

// SyntaxError reports the first token the grammar could not accept.
type SyntaxError struct {
	Token    lexer.Token  // offending lookahead, Kind EOF at end of input
	Expected []lexer.Kind // what the failing production accepts, may be empty
	Note     string       // optional extra explanation
}

func newSyntaxError(tok lexer.Token, expected ...lexer.Kind) *SyntaxError {
	return &SyntaxError{Token: tok, Expected: expected}
}

// markStatement notes that the offending token stands where a statement
// could start. Only READ and WRITE get a note: they are keywords without
// a statement form.
func (e *SyntaxError) markStatement() *SyntaxError {
	if e.Token.Kind == lexer.READ || e.Token.Kind == lexer.WRITE {
		e.Note = fmt.Sprintf("%s statements are not supported", e.Token.Kind)
	}
	return e
}

// Unsupported reports whether the error is a READ or WRITE statement.
func (e *SyntaxError) Unsupported() bool {
	return e.Note != ""
}

func (e *SyntaxError) Error() string {
	var b strings.Builder
	if e.EOF() {
		b.WriteString("syntax error: ")
	} else {
		fmt.Fprintf(&b, "syntax error at line %d, column %d: ", e.Token.Line, e.Token.Column)
	}
	b.WriteString(e.Detail())
	if len(e.Expected) > 0 {
		b.WriteString(", expected ")
		b.WriteString(e.ExpectedString())
	}
	return b.String()
}

// Detail describes the offending token without its position.
func (e *SyntaxError) Detail() string {
	if e.EOF() {
		return "unexpected end of input"
	}
	return fmt.Sprintf("unexpected token '%s'", e.Token.Literal)
}

// EOF reports whether the input ended before the grammar was satisfied.
func (e *SyntaxError) EOF() bool {
	return e.Token.Kind == lexer.EOF
}

func (e *SyntaxError) Is(target error) bool {
	return target == ErrUnexpectedEOF && e.EOF()
}

// Position returns the 1-based line and column of the error.
func (e *SyntaxError) Position() (line, column int) {
	return e.Token.Line, e.Token.Column
}

// ExpectedString joins the expected kinds as "A", "A or B", "A, B or C".
func (e *SyntaxError) ExpectedString() string {
	names := make([]string, len(e.Expected))
	for i, k := range e.Expected {
		names[i] = k.Describe()
	}
	switch len(names) {
	case 0:
		return ""
	case 1:
		return names[0]
	default:
		return strings.Join(names[:len(names)-1], ", ") + " or " + names[len(names)-1]
	}
}
