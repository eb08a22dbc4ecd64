package lexer

import (
	"fmt"
	"strconv"
	"unicode/utf8"
)

// commentMarker starts a comment that runs to the end of the line.
const commentMarker = '!'

// Lexer is responsible for scanning the input string and producing tokens.
type Lexer struct {
	input     string // the entire input to tokenize
	position  int    // current reading position in input
	line      int    // current line, 1-based
	lineStart int    // offset of the first byte of the current line

	tokens   []Token
	warnings []Warning
	comments []Comment
}

// New returns a new Lexer for the given input.
func New(input string) *Lexer {
	return &Lexer{input: input}
}

// Tokenize is a shorthand for New(input).Tokenize().
func Tokenize(input string) ([]Token, []Warning) {
	return New(input).Tokenize()
}

// Tokenize scans the whole input and returns the tokens, terminated by a
// single EOF token, along with any warnings raised on the way.
// Tokenize never fails: illegal characters are reported and skipped.
// Calling it again rescans the input from the beginning.
func (l *Lexer) Tokenize() ([]Token, []Warning) {
	l.reset()

	for l.position < len(l.input) {
		switch c := l.input[l.position]; {
		case c == '\n':
			l.lexNewlines()

		case c == ' ' || c == '\t' || c == '\r':
			l.position++

		// "!=" is an operator, any other '!' opens a comment.
		case c == commentMarker && !l.hasPrefix("!="):
			l.lexComment()

		case isLetter(c):
			l.lexIdent()

		case isDigit(c):
			l.lexNumber()

		default:
			if !l.lexOperator() {
				l.lexIllegal()
			}
		}
	}

	l.addToken(EOF, "", nil, l.position)
	return l.tokens, l.warnings
}

// Warnings returns the warnings of the last Tokenize call.
func (l *Lexer) Warnings() []Warning { return l.warnings }

// Comments returns the comments skipped by the last Tokenize call.
func (l *Lexer) Comments() []Comment { return l.comments }

func (l *Lexer) reset() {
	l.position = 0
	l.line = 1
	l.lineStart = 0
	l.tokens = make([]Token, 0)
	l.warnings = nil
	l.comments = nil
}

// lexNewlines consumes a run of newlines and advances the line counter
// by the length of the run.
func (l *Lexer) lexNewlines() {
	start := l.position
	for l.position < len(l.input) && l.input[l.position] == '\n' {
		l.position++
	}
	l.line += l.position - start
	l.lineStart = l.position
}

func (l *Lexer) lexComment() {
	start := l.position
	for l.position < len(l.input) && l.input[l.position] != '\n' {
		l.position++
	}
	l.comments = append(l.comments, Comment{
		Text:   l.input[start+1 : l.position],
		Line:   l.line,
		Column: l.column(start),
	})
}

// lexIdent scans a letter followed by letters or digits and classifies it
// as a keyword or an identifier.
func (l *Lexer) lexIdent() {
	start := l.position
	for l.position < len(l.input) && (isLetter(l.input[l.position]) || isDigit(l.input[l.position])) {
		l.position++
	}
	text := l.input[start:l.position]
	l.addToken(LookupIdent(text), text, text, start)
}

// lexNumber scans digit+ ('.' digit+)?. A dot that is not followed by a
// digit is left for the next iteration.
func (l *Lexer) lexNumber() {
	start := l.position
	l.skipDigits()

	isFloat := false
	if l.position+1 < len(l.input) && l.input[l.position] == '.' && isDigit(l.input[l.position+1]) {
		isFloat = true
		l.position++
		l.skipDigits()
	}

	text := l.input[start:l.position]
	if isFloat {
		v, err := strconv.ParseFloat(text, 64)
		if err != nil {
			l.warn(NumberOverflow, text, fmt.Sprintf("number %s is out of range", text), start)
		}
		l.addToken(NUMBER, text, v, start)
		return
	}

	v, err := strconv.ParseInt(text, 10, 64)
	if err != nil {
		// keep the value, with float precision
		f, _ := strconv.ParseFloat(text, 64)
		l.warn(NumberOverflow, text, fmt.Sprintf("integer %s overflows int64, using %g", text, f), start)
		l.addToken(NUMBER, text, f, start)
		return
	}
	l.addToken(NUMBER, text, v, start)
}

func (l *Lexer) skipDigits() {
	for l.position < len(l.input) && isDigit(l.input[l.position]) {
		l.position++
	}
}

// lexOperator matches the fixed operator and delimiter set, longest
// lexeme first.
func (l *Lexer) lexOperator() bool {
	if l.position+1 < len(l.input) {
		text := l.input[l.position : l.position+2]
		if k, ok := twoCharOps[text]; ok {
			l.addToken(k, text, text, l.position)
			l.position += 2
			return true
		}
	}
	if k, ok := oneCharOps[l.input[l.position]]; ok {
		text := l.input[l.position : l.position+1]
		l.addToken(k, text, text, l.position)
		l.position++
		return true
	}
	return false
}

// lexIllegal reports the character at the current position and skips it.
func (l *Lexer) lexIllegal() {
	r, size := utf8.DecodeRuneInString(l.input[l.position:])
	char := l.input[l.position : l.position+size]
	l.warn(IllegalCharacter, char, fmt.Sprintf("illegal character %q", r), l.position)
	l.position += size
}

// addToken is a helper to append a new token to the lexer's token list.
func (l *Lexer) addToken(kind Kind, literal string, value any, offset int) {
	l.tokens = append(l.tokens, Token{
		Kind:    kind,
		Literal: literal,
		Value:   value,
		Line:    l.line,
		Column:  l.column(offset),
		Offset:  offset,
	})
}

func (l *Lexer) warn(kind WarningKind, char, msg string, offset int) {
	l.warnings = append(l.warnings, Warning{
		Kind:    kind,
		Char:    char,
		Message: msg,
		Line:    l.line,
		Column:  l.column(offset),
		Offset:  offset,
	})
}

// column is measured from the last newline before offset.
func (l *Lexer) column(offset int) int {
	return offset - l.lineStart + 1
}

func (l *Lexer) hasPrefix(s string) bool {
	return len(l.input)-l.position >= len(s) && l.input[l.position:l.position+len(s)] == s
}

func isLetter(c byte) bool {
	return 'a' <= c && c <= 'z' || 'A' <= c && c <= 'Z'
}

func isDigit(c byte) bool {
	return '0' <= c && c <= '9'
}
