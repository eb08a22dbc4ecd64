package nolint

import (
	"go/token"
	"testing"

	"github.com/gnolang/fparse/lexer"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestParseNolintRules(t *testing.T) {
	t.Parallel()
	result := parseIgnoreRuleNames("rule1, rule2,rule3,")
	assert.Len(t, result, 3)
	for _, rule := range []string{"rule1", "rule2", "rule3"} {
		assert.Contains(t, result, rule)
	}
	assert.Empty(t, parseIgnoreRuleNames(""))
}

func managerFor(t *testing.T, src string) *Manager {
	t.Helper()
	lx := lexer.New(src)
	tokens, _ := lx.Tokenize()
	manager := ParseComments("test.f", lx.Comments(), tokens)
	require.NotNil(t, manager)
	return manager
}

func TestIsNolint(t *testing.T) {
	t.Parallel()
	source := `X = 1
! nolint
Y = 2 @
Z = 3 #
W = 4 $ ! nolint:illegal-character
!nolint:syntax-error

V = 5
! nolint: other
`
	manager := managerFor(t, source)

	tests := []struct {
		rule     string
		line     int
		expected bool
	}{
		{"anyrule", 1, false},
		{"anyrule", 3, true}, // standalone comment covers the next line
		{"anyrule", 4, false},
		{"illegal-character", 5, true},
		{"syntax-error", 5, false},
		{"syntax-error", 8, true}, // blank lines are skipped
		{"illegal-character", 8, false},
		{"other", 9, true}, // no code follows, covers itself only
		{"other", 10, false},
	}

	for _, test := range tests {
		pos := token.Position{Filename: "test.f", Line: test.line, Column: 1}
		assert.Equal(t, test.expected, manager.IsNolint(pos, test.rule),
			"line %d rule %s", test.line, test.rule)
	}

	other := token.Position{Filename: "other.f", Line: 3}
	assert.False(t, manager.IsNolint(other, "anyrule"))
}

func TestNolintBeforeFirstStatement(t *testing.T) {
	t.Parallel()
	manager := managerFor(t, "! nolint:number-overflow\n\nX = 1\nY = 99999999999999999999\n")

	assert.True(t, manager.IsNolint(token.Position{Filename: "test.f", Line: 4}, "number-overflow"))
	assert.False(t, manager.IsNolint(token.Position{Filename: "test.f", Line: 4}, "illegal-character"))
}

func TestInvalidNolintComments(t *testing.T) {
	t.Parallel()
	manager := managerFor(t, "X = 1\n! nolintx\nY = 2\n! nolint:\nZ = 3\n! plain comment\nW = 4\n")

	for _, line := range []int{3, 5, 7} {
		assert.False(t, manager.IsNolint(token.Position{Filename: "test.f", Line: line}, "anyrule"), "line %d", line)
	}
}
