/*
Package parser builds an abstract syntax tree from the tokens produced by
package lexer, using a hand-written LL(1) recursive-descent parser.

# Overview

Every grammar rule is a method on Parser. The parser holds one token of
lookahead and picks a production from it alone: a statement list keeps
going while the lookahead is an identifier, IF or DO, and stops on
anything else. The arithmetic rules, naturally left-recursive, are
written as a term followed by a loop over operators so that

	A - B - C

parses as BinaryOp(-, BinaryOp(-, A, B), C).

Relational and additive operators share one precedence level,
multiplicative operators bind tighter, and parentheses override both.

# AST Node Types

  - Program: root, one StatementList child
  - StatementList: zero or more Assignment, IfStatement, DoLoop
  - Assignment: Identifier, expression
  - IfStatement: condition, StatementList
  - DoLoop: Identifier, start, end, StatementList
  - BinaryOp: left, right; Value is the operator
  - Identifier: Value is the name
  - NumberLiteral: Value is int64 or float64

# Errors

Parsing stops at the first unexpected token and returns a *SyntaxError
with the token, its position and the kinds that would have been
accepted. No partial tree is returned. Running out of tokens where one is
required is reported as unexpected end of input and matches
ErrUnexpectedEOF.

# Usage Example

	tokens, warnings := lexer.Tokenize("DO I = 1, 10\n  X = X + I\nENDDO")
	ast, err := parser.New(tokens).Parse()

or, as a single call that also reports success or failure as a value:

	res := parser.Analyze(src)
	if !res.OK {
		fmt.Println(res.Message)
	}
*/
package parser
