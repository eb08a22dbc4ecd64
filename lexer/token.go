package lexer

import (
	"fmt"
	"strings"
)

// Kind defines the type of a token.
type Kind int

const (
	EOF Kind = iota

	IDENT  // X, RESULT, I2
	NUMBER // 10, 3.14

	// operators
	PLUS         // +
	MINUS        // -
	TIMES        // *
	DIVIDE       // /
	ASSIGN       // =
	EQUALS       // ==
	NOTEQUALS    // !=
	LESS         // <
	GREATER      // >
	LESSEQUAL    // <=
	GREATEREQUAL // >=

	// delimiters
	LPAREN // (
	RPAREN // )
	COMMA  // ,

	// keywords
	IF
	THEN
	ENDIF
	DO
	ENDDO
	READ
	WRITE
)

var kindNames = [...]string{
	EOF:          "EOF",
	IDENT:        "ID",
	NUMBER:       "NUMBER",
	PLUS:         "PLUS",
	MINUS:        "MINUS",
	TIMES:        "TIMES",
	DIVIDE:       "DIVIDE",
	ASSIGN:       "ASSIGN",
	EQUALS:       "EQUALS",
	NOTEQUALS:    "NOTEQUALS",
	LESS:         "LESS",
	GREATER:      "GREATER",
	LESSEQUAL:    "LESSEQUAL",
	GREATEREQUAL: "GREATEREQUAL",
	LPAREN:       "LPAREN",
	RPAREN:       "RPAREN",
	COMMA:        "COMMA",
	IF:           "IF",
	THEN:         "THEN",
	ENDIF:        "ENDIF",
	DO:           "DO",
	ENDDO:        "ENDDO",
	READ:         "READ",
	WRITE:        "WRITE",
}

func (k Kind) String() string {
	if k >= 0 && int(k) < len(kindNames) {
		return kindNames[k]
	}
	return fmt.Sprintf("Kind(%d)", int(k))
}

// Describe returns the form used in diagnostics: the lexeme for
// fixed-spelling tokens ('(' or 'ENDDO') and the class name otherwise.
func (k Kind) Describe() string {
	switch k {
	case EOF:
		return "end of input"
	case IDENT:
		return "identifier"
	case NUMBER:
		return "number"
	}
	if s, ok := kindSpelling[k]; ok {
		return "'" + s + "'"
	}
	return k.String()
}

// IsKeyword reports whether k is one of the reserved words.
func (k Kind) IsKeyword() bool {
	return k >= IF && k <= WRITE
}

// IsOperator reports whether k is an arithmetic, relational or
// assignment operator.
func (k Kind) IsOperator() bool {
	return k >= PLUS && k <= GREATEREQUAL
}

var keywords = map[string]Kind{
	"if":    IF,
	"then":  THEN,
	"endif": ENDIF,
	"do":    DO,
	"enddo": ENDDO,
	"read":  READ,
	"write": WRITE,
}

// LookupIdent maps an identifier to its keyword kind, ignoring case.
// Anything that is not a keyword is an IDENT.
func LookupIdent(ident string) Kind {
	if k, ok := keywords[strings.ToLower(ident)]; ok {
		return k
	}
	return IDENT
}

// twoCharOps must be tried before oneCharOps so that "<=" never splits
// into "<" and "=".
var twoCharOps = map[string]Kind{
	"==": EQUALS,
	"!=": NOTEQUALS,
	"<=": LESSEQUAL,
	">=": GREATEREQUAL,
}

var oneCharOps = map[byte]Kind{
	'+': PLUS,
	'-': MINUS,
	'*': TIMES,
	'/': DIVIDE,
	'=': ASSIGN,
	'<': LESS,
	'>': GREATER,
	'(': LPAREN,
	')': RPAREN,
	',': COMMA,
}

var kindSpelling = map[Kind]string{
	PLUS:         "+",
	MINUS:        "-",
	TIMES:        "*",
	DIVIDE:       "/",
	ASSIGN:       "=",
	EQUALS:       "==",
	NOTEQUALS:    "!=",
	LESS:         "<",
	GREATER:      ">",
	LESSEQUAL:    "<=",
	GREATEREQUAL: ">=",
	LPAREN:       "(",
	RPAREN:       ")",
	COMMA:        ",",
	IF:           "IF",
	THEN:         "THEN",
	ENDIF:        "ENDIF",
	DO:           "DO",
	ENDDO:        "ENDDO",
	READ:         "READ",
	WRITE:        "WRITE",
}

// Token represents a single lexical token.
type Token struct {
	Kind    Kind
	Literal string // exact source text; empty for EOF
	// Value is the decoded payload: int64 or float64 for NUMBER, the
	// source text for everything else.
	Value  any
	Line   int // 1-based
	Column int // 1-based
	Offset int // byte offset into the input
}

// End returns the byte offset just past the token.
func (t Token) End() int {
	return t.Offset + len(t.Literal)
}

func (t Token) String() string {
	if t.Kind == EOF {
		return fmt.Sprintf("%d:%d EOF", t.Line, t.Column)
	}
	return fmt.Sprintf("%d:%d %s %q", t.Line, t.Column, t.Kind, t.Literal)
}

// Warning is a non-fatal lexical problem. Tokenization continues past it.
type Warning struct {
	Kind    WarningKind
	Char    string // offending character or literal
	Message string
	Line    int
	Column  int
	Offset  int
}

type WarningKind int

const (
	IllegalCharacter WarningKind = iota
	NumberOverflow
)

func (w Warning) String() string {
	return fmt.Sprintf("line %d col %d: %s", w.Line, w.Column, w.Message)
}

// Comment is a skipped line comment, kept aside for tools that read
// directives from comments. It never appears in the token stream.
type Comment struct {
	Text   string // without the leading marker
	Line   int
	Column int
}
