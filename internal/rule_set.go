package internal

import (
	"errors"
	"go/token"

	tt "github.com/gnolang/fparse/internal/types"
	"github.com/gnolang/fparse/lexer"
	"github.com/gnolang/fparse/parser"
)

/*
* Each rule turns one kind of lexer or parser outcome into issues.
 */

// Rule defines the interface for all checking rules.
type Rule interface {
	// Check inspects the outcome of analyzing filename and returns the
	// issues this rule is responsible for.
	Check(filename string, res *parser.Result) []tt.Issue

	// Name returns the name of the rule.
	Name() string

	Severity() tt.Severity
	SetSeverity(tt.Severity)
}

type severityHolder struct {
	severity tt.Severity
}

func (h *severityHolder) Severity() tt.Severity       { return h.severity }
func (h *severityHolder) SetSeverity(sev tt.Severity) { h.severity = sev }

type IllegalCharacterRule struct{ severityHolder }

func NewIllegalCharacterRule() Rule {
	return &IllegalCharacterRule{severityHolder{tt.SeverityWarning}}
}

func (r *IllegalCharacterRule) Check(filename string, res *parser.Result) []tt.Issue {
	var issues []tt.Issue
	for _, w := range res.Warnings {
		if w.Kind != lexer.IllegalCharacter {
			continue
		}
		issues = append(issues, tt.Issue{
			Rule:       r.Name(),
			Category:   tt.CategoryLexical,
			Filename:   filename,
			Message:    w.Message,
			Suggestion: "remove the character, it is skipped when parsing",
			Severity:   r.severity,
			Start:      warningStart(filename, w),
			End:        warningEnd(filename, w),
		})
	}
	return issues
}

func (r *IllegalCharacterRule) Name() string {
	return tt.RuleIllegalCharacter
}

type NumberOverflowRule struct{ severityHolder }

func NewNumberOverflowRule() Rule {
	return &NumberOverflowRule{severityHolder{tt.SeverityWarning}}
}

func (r *NumberOverflowRule) Check(filename string, res *parser.Result) []tt.Issue {
	var issues []tt.Issue
	for _, w := range res.Warnings {
		if w.Kind != lexer.NumberOverflow {
			continue
		}
		issues = append(issues, tt.Issue{
			Rule:     r.Name(),
			Category: tt.CategoryLexical,
			Filename: filename,
			Message:  w.Message,
			Note:     "the literal is stored as a floating-point number and may lose precision",
			Severity: r.severity,
			Start:    warningStart(filename, w),
			End:      warningEnd(filename, w),
		})
	}
	return issues
}

func (r *NumberOverflowRule) Name() string {
	return tt.RuleNumberOverflow
}

// -----------------------------------------------------------------------------

type SyntaxErrorRule struct{ severityHolder }

func NewSyntaxErrorRule() Rule {
	return &SyntaxErrorRule{severityHolder{tt.SeverityError}}
}

func (r *SyntaxErrorRule) Check(filename string, res *parser.Result) []tt.Issue {
	synErr := syntaxError(res)
	if synErr == nil || synErr.Unsupported() {
		return nil
	}
	return []tt.Issue{syntaxIssue(r.Name(), filename, synErr, r.severity)}
}

func (r *SyntaxErrorRule) Name() string {
	return tt.RuleSyntaxError
}

// UnsupportedStatementRule reports READ and WRITE statements, which are
// recognized by the lexer but have no grammar production.
type UnsupportedStatementRule struct{ severityHolder }

func NewUnsupportedStatementRule() Rule {
	return &UnsupportedStatementRule{severityHolder{tt.SeverityError}}
}

func (r *UnsupportedStatementRule) Check(filename string, res *parser.Result) []tt.Issue {
	synErr := syntaxError(res)
	if synErr == nil || !synErr.Unsupported() {
		return nil
	}
	return []tt.Issue{syntaxIssue(r.Name(), filename, synErr, r.severity)}
}

func (r *UnsupportedStatementRule) Name() string {
	return tt.RuleUnsupportedStatement
}

// -----------------------------------------------------------------------------

func syntaxError(res *parser.Result) *parser.SyntaxError {
	var synErr *parser.SyntaxError
	if res.OK || !errors.As(res.Err, &synErr) {
		return nil
	}
	return synErr
}

func syntaxIssue(rule, filename string, e *parser.SyntaxError, sev tt.Severity) tt.Issue {
	issue := tt.Issue{
		Rule:     rule,
		Category: tt.CategorySyntax,
		Filename: filename,
		Message:  e.Detail(),
		Note:     e.Note,
		Severity: sev,
		Start: token.Position{
			Filename: filename,
			Offset:   e.Token.Offset,
			Line:     e.Token.Line,
			Column:   e.Token.Column,
		},
	}
	if len(e.Expected) > 0 {
		issue.Suggestion = "expected " + e.ExpectedString()
	}
	width := len(e.Token.Literal)
	if width == 0 {
		width = 1
	}
	issue.End = token.Position{
		Filename: filename,
		Offset:   e.Token.Offset + width,
		Line:     e.Token.Line,
		Column:   e.Token.Column + width,
	}
	return issue
}

func warningStart(filename string, w lexer.Warning) token.Position {
	return token.Position{Filename: filename, Offset: w.Offset, Line: w.Line, Column: w.Column}
}

func warningEnd(filename string, w lexer.Warning) token.Position {
	return token.Position{
		Filename: filename,
		Offset:   w.Offset + len(w.Char),
		Line:     w.Line,
		Column:   w.Column + len(w.Char),
	}
}
