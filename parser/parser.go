package parser

import (
	"github.com/gnolang/fparse/lexer"
)

// Parser is a predictive recursive-descent parser over a token slice.
// It looks at exactly one token (cur) to choose a production and never
// backtracks. A Parser is not safe for concurrent use; create one per
// goroutine.
//
// Grammar (left recursion rewritten into tails):
//
//	program        → statement_list
//	statement_list → statement statement_list | ε
//	statement      → assignment | if_statement | do_loop
//	assignment     → ID '=' expression
//	if_statement   → IF '(' expression ')' THEN statement_list ENDIF
//	do_loop        → DO ID '=' expression ',' expression statement_list ENDDO
//	expression     → term expression_tail
//	expression_tail→ (addop | relop) term expression_tail | ε
//	term           → factor term_tail
//	term_tail      → mulop factor term_tail | ε
//	factor         → ID | NUMBER | '(' expression ')'
type Parser struct {
	tokens []lexer.Token
	pos    int         // index of the token after cur
	cur    lexer.Token // lookahead
}

// New creates a parser over tokens as produced by lexer.Tokenize.
// A missing trailing EOF token is synthesized.
func New(tokens []lexer.Token) *Parser {
	return &Parser{tokens: tokens}
}

// Parse runs the grammar from the first token and returns the Program
// node. On the first unexpected token it returns a *SyntaxError and no
// tree. Parse may be called again; each call starts from scratch.
func (p *Parser) Parse() (*Node, error) {
	p.pos = 0
	p.cur = lexer.Token{}
	p.advance()

	prog, err := p.parseProgram()
	if err != nil {
		return nil, err
	}
	return &prog, nil
}

// Parse tokenizes and parses src in one step.
func Parse(src string) (*Node, []lexer.Warning, error) {
	tokens, warnings := lexer.Tokenize(src)
	node, err := New(tokens).Parse()
	return node, warnings, err
}

// advance consumes the current token, loads the next one into cur and
// returns the consumed token.
func (p *Parser) advance() lexer.Token {
	prev := p.cur
	if p.pos < len(p.tokens) {
		p.cur = p.tokens[p.pos]
		p.pos++
	} else {
		p.cur = p.eof()
	}
	return prev
}

// expect consumes the current token if it has the given kind.
func (p *Parser) expect(kind lexer.Kind) (lexer.Token, error) {
	if p.cur.Kind != kind {
		return lexer.Token{}, newSyntaxError(p.cur, kind)
	}
	return p.advance(), nil
}

// eof builds the end-of-input sentinel, placed right after the last token.
func (p *Parser) eof() lexer.Token {
	if len(p.tokens) == 0 {
		return lexer.Token{Kind: lexer.EOF, Line: 1, Column: 1}
	}
	last := p.tokens[len(p.tokens)-1]
	if last.Kind == lexer.EOF {
		return last
	}
	return lexer.Token{
		Kind:   lexer.EOF,
		Line:   last.Line,
		Column: last.Column + len(last.Literal),
		Offset: last.End(),
	}
}

// startsStatement reports whether k is in FIRST(statement).
func startsStatement(k lexer.Kind) bool {
	switch k {
	case lexer.IDENT, lexer.IF, lexer.DO:
		return true
	default:
		return false
	}
}

func isAddOrRelOp(k lexer.Kind) bool {
	switch k {
	case lexer.PLUS, lexer.MINUS,
		lexer.EQUALS, lexer.NOTEQUALS, lexer.LESS, lexer.GREATER, lexer.LESSEQUAL, lexer.GREATEREQUAL:
		return true
	default:
		return false
	}
}

func isMulOp(k lexer.Kind) bool {
	return k == lexer.TIMES || k == lexer.DIVIDE
}

// program → statement_list, followed by end of input.
func (p *Parser) parseProgram() (Node, error) {
	start := p.cur
	list, err := p.parseStatementList()
	if err != nil {
		return Node{}, err
	}
	// Whatever stopped the list at top level is not a statement, so the
	// statement dispatch always rejects it.
	if p.cur.Kind != lexer.EOF {
		_, err := p.parseStatement()
		return Node{}, err
	}
	return Node{
		Type:     NodeProgram,
		Children: []Node{list},
		Line:     start.Line,
		Column:   start.Column,
	}, nil
}

// statement_list → statement statement_list | ε
//
// The list ends on any lookahead outside FIRST(statement); the enclosing
// production decides whether that token is acceptable.
func (p *Parser) parseStatementList() (Node, error) {
	list := Node{
		Type:   NodeStatementList,
		Line:   p.cur.Line,
		Column: p.cur.Column,
	}
	for startsStatement(p.cur.Kind) {
		stmt, err := p.parseStatement()
		if err != nil {
			return Node{}, err
		}
		list.Children = append(list.Children, stmt)
	}
	return list, nil
}

func (p *Parser) parseStatement() (Node, error) {
	switch p.cur.Kind {
	case lexer.IDENT:
		return p.parseAssignment()
	case lexer.IF:
		return p.parseIfStatement()
	case lexer.DO:
		return p.parseDoLoop()
	default:
		return Node{}, newSyntaxError(p.cur, lexer.IDENT, lexer.IF, lexer.DO).markStatement()
	}
}

// expectEnd consumes the terminator of a block body. The body has just
// ended, so a mismatch stands where another statement could start.
func (p *Parser) expectEnd(kind lexer.Kind) error {
	if p.cur.Kind != kind {
		return newSyntaxError(p.cur, kind).markStatement()
	}
	p.advance()
	return nil
}

// assignment → ID '=' expression
func (p *Parser) parseAssignment() (Node, error) {
	id, err := p.expect(lexer.IDENT)
	if err != nil {
		return Node{}, err
	}
	if _, err := p.expect(lexer.ASSIGN); err != nil {
		return Node{}, err
	}
	expr, err := p.parseExpression()
	if err != nil {
		return Node{}, err
	}
	return Node{
		Type:     NodeAssignment,
		Children: []Node{identifier(id), expr},
		Line:     id.Line,
		Column:   id.Column,
	}, nil
}

// if_statement → IF '(' expression ')' THEN statement_list ENDIF
func (p *Parser) parseIfStatement() (Node, error) {
	ifTok, err := p.expect(lexer.IF)
	if err != nil {
		return Node{}, err
	}
	if _, err := p.expect(lexer.LPAREN); err != nil {
		return Node{}, err
	}
	cond, err := p.parseExpression()
	if err != nil {
		return Node{}, err
	}
	if _, err := p.expect(lexer.RPAREN); err != nil {
		return Node{}, err
	}
	if _, err := p.expect(lexer.THEN); err != nil {
		return Node{}, err
	}
	body, err := p.parseStatementList()
	if err != nil {
		return Node{}, err
	}
	if err := p.expectEnd(lexer.ENDIF); err != nil {
		return Node{}, err
	}
	return Node{
		Type:     NodeIfStatement,
		Children: []Node{cond, body},
		Line:     ifTok.Line,
		Column:   ifTok.Column,
	}, nil
}

// do_loop → DO ID '=' expression ',' expression statement_list ENDDO
func (p *Parser) parseDoLoop() (Node, error) {
	doTok, err := p.expect(lexer.DO)
	if err != nil {
		return Node{}, err
	}
	loopVar, err := p.expect(lexer.IDENT)
	if err != nil {
		return Node{}, err
	}
	if _, err := p.expect(lexer.ASSIGN); err != nil {
		return Node{}, err
	}
	from, err := p.parseExpression()
	if err != nil {
		return Node{}, err
	}
	if _, err := p.expect(lexer.COMMA); err != nil {
		return Node{}, err
	}
	to, err := p.parseExpression()
	if err != nil {
		return Node{}, err
	}
	body, err := p.parseStatementList()
	if err != nil {
		return Node{}, err
	}
	if err := p.expectEnd(lexer.ENDDO); err != nil {
		return Node{}, err
	}
	return Node{
		Type:     NodeDoLoop,
		Children: []Node{identifier(loopVar), from, to, body},
		Line:     doTok.Line,
		Column:   doTok.Column,
	}, nil
}

// expression → term expression_tail
//
// The tail is a loop that folds the accumulated left operand, which
// keeps additive and relational operators left-associative.
func (p *Parser) parseExpression() (Node, error) {
	left, err := p.parseTerm()
	if err != nil {
		return Node{}, err
	}
	for isAddOrRelOp(p.cur.Kind) {
		op := p.advance()
		right, err := p.parseTerm()
		if err != nil {
			return Node{}, err
		}
		left = binaryOp(op, left, right)
	}
	return left, nil
}

// term → factor term_tail
func (p *Parser) parseTerm() (Node, error) {
	left, err := p.parseFactor()
	if err != nil {
		return Node{}, err
	}
	for isMulOp(p.cur.Kind) {
		op := p.advance()
		right, err := p.parseFactor()
		if err != nil {
			return Node{}, err
		}
		left = binaryOp(op, left, right)
	}
	return left, nil
}

// factor → ID | NUMBER | '(' expression ')'
func (p *Parser) parseFactor() (Node, error) {
	switch p.cur.Kind {
	case lexer.IDENT:
		return identifier(p.advance()), nil
	case lexer.NUMBER:
		tok := p.advance()
		return Node{
			Type:   NodeNumberLiteral,
			Value:  tok.Value,
			Line:   tok.Line,
			Column: tok.Column,
		}, nil
	case lexer.LPAREN:
		p.advance()
		expr, err := p.parseExpression()
		if err != nil {
			return Node{}, err
		}
		if _, err := p.expect(lexer.RPAREN); err != nil {
			return Node{}, err
		}
		return expr, nil
	default:
		return Node{}, newSyntaxError(p.cur, lexer.IDENT, lexer.NUMBER, lexer.LPAREN)
	}
}

func identifier(tok lexer.Token) Node {
	return Node{
		Type:   NodeIdentifier,
		Value:  tok.Literal,
		Line:   tok.Line,
		Column: tok.Column,
	}
}

func binaryOp(op lexer.Token, left, right Node) Node {
	return Node{
		Type:     NodeBinaryOp,
		Children: []Node{left, right},
		Value:    op.Literal,
		Line:     op.Line,
		Column:   op.Column,
	}
}
