package parser

import (
	"github.com/gnolang/fparse/lexer"
)

const MessageSuccess = "analysis succeeded"

// Result is the outcome of Analyze. Exactly one of AST and Err is set;
// OK tells which.
type Result struct {
	OK       bool
	Message  string
	AST      *Node
	Tokens   []lexer.Token
	Warnings []lexer.Warning
	Comments []lexer.Comment
	Err      error
}

// Analyze tokenizes and parses src with fresh lexer and parser instances.
// Lexical warnings are reported on both outcomes.
func Analyze(src string) Result {
	lx := lexer.New(src)
	tokens, warnings := lx.Tokenize()

	res := Result{
		Tokens:   tokens,
		Warnings: warnings,
		Comments: lx.Comments(),
	}

	ast, err := New(tokens).Parse()
	if err != nil {
		res.Message = err.Error()
		res.Err = err
		return res
	}

	res.OK = true
	res.Message = MessageSuccess
	res.AST = ast
	return res
}
