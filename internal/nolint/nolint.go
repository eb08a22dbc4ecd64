package nolint

import (
	"fmt"
	"go/token"
	"strings"

	"github.com/gnolang/fparse/lexer"
)

// nolintPrefix follows the comment marker, with optional spaces before it.
const nolintPrefix = "nolint"

// Manager manages nolint scopes and checks if a position is nolinted.
type Manager struct {
	// scopes maps filename to a slice of nolint scopes.
	scopes map[string][]nolintScope
}

// nolintScope represents a range of lines where nolint applies.
type nolintScope struct {
	rules map[string]struct{}
	start int
	end   int
}

// ParseComments builds a Manager from the comments and tokens of one file.
//
// A nolint comment placed before the first token covers the whole file.
// A comment that follows code on the same line covers that line. A
// standalone comment covers itself and the next line holding a token.
func ParseComments(filename string, comments []lexer.Comment, tokens []lexer.Token) *Manager {
	manager := Manager{
		scopes: make(map[string][]nolintScope),
	}
	firstLine, codeLines := indexTokenLines(tokens)

	for _, c := range comments {
		ns, err := parseComment(c, firstLine, codeLines)
		if err != nil {
			// ignore invalid nolint comments
			continue
		}
		manager.scopes[filename] = append(manager.scopes[filename], ns)
	}
	return &manager
}

func parseComment(c lexer.Comment, firstLine int, codeLines map[int]int) (nolintScope, error) {
	var ns nolintScope
	text := strings.TrimSpace(c.Text)

	if !strings.HasPrefix(text, nolintPrefix) {
		return ns, fmt.Errorf("invalid nolint comment")
	}
	rest := text[len(nolintPrefix):]

	// A nolint comment can either have a list of rules after a colon (:)
	// or if no rules are specified, it applies to all rules
	if len(rest) > 0 && rest[0] != ':' {
		return ns, fmt.Errorf("invalid nolint comment format")
	}
	if len(rest) > 0 {
		rest = strings.TrimSpace(rest[1:])
		if rest == "" {
			return ns, fmt.Errorf("invalid nolint comment: no rules specified after colon")
		}
	}
	ns.rules = parseIgnoreRuleNames(rest)

	switch {
	case firstLine == 0 || c.Line < firstLine:
		ns.start, ns.end = 1, int(^uint(0)>>1)
	case isInlineComment(c, codeLines):
		ns.start, ns.end = c.Line, c.Line
	default:
		ns.start, ns.end = c.Line, nextCodeLine(c.Line, codeLines)
	}
	return ns, nil
}

// parseIgnoreRuleNames parses the rule list from the nolint comment.
func parseIgnoreRuleNames(text string) map[string]struct{} {
	rulesMap := make(map[string]struct{})
	if text == "" {
		return rulesMap
	}
	for _, rule := range strings.Split(text, ",") {
		rule = strings.TrimSpace(rule)
		if rule != "" {
			rulesMap[rule] = struct{}{}
		}
	}
	return rulesMap
}

// indexTokenLines returns the line of the first token and, for every line
// holding tokens, the column of its first token. EOF is not code.
func indexTokenLines(tokens []lexer.Token) (int, map[int]int) {
	first := 0
	lines := make(map[int]int)
	for _, tok := range tokens {
		if tok.Kind == lexer.EOF {
			continue
		}
		if first == 0 {
			first = tok.Line
		}
		if _, ok := lines[tok.Line]; !ok {
			lines[tok.Line] = tok.Column
		}
	}
	return first, lines
}

func isInlineComment(c lexer.Comment, codeLines map[int]int) bool {
	col, ok := codeLines[c.Line]
	return ok && col < c.Column
}

// nextCodeLine finds the first line after line that holds a token, or
// returns line itself when there is none.
func nextCodeLine(line int, codeLines map[int]int) int {
	next := 0
	for l := range codeLines {
		if l > line && (next == 0 || l < next) {
			next = l
		}
	}
	if next == 0 {
		return line
	}
	return next
}

// IsNolint checks if a given position and rule are nolinted.
func (m *Manager) IsNolint(pos token.Position, ruleName string) bool {
	scopes, exists := m.scopes[pos.Filename]
	if !exists {
		return false
	}
	for _, ns := range scopes {
		if pos.Line < ns.start || pos.Line > ns.end {
			continue
		}
		// If the rules list is empty, nolint applies to all rules
		if len(ns.rules) == 0 {
			return true
		}
		if _, exists := ns.rules[ruleName]; exists {
			return true
		}
	}
	return false
}
