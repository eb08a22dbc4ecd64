package formatter

import (
	"go/token"
	"testing"

	"github.com/fatih/color"
	"github.com/stretchr/testify/assert"

	"github.com/gnolang/fparse/internal"
	tt "github.com/gnolang/fparse/internal/types"
)

func init() {
	color.NoColor = true
}

func TestFormatIllegalCharacter(t *testing.T) {
	t.Parallel()
	code := &internal.SourceCode{Lines: []string{"Z = X + @ Y"}}

	issues := []tt.Issue{
		{
			Rule:       tt.RuleIllegalCharacter,
			Filename:   "prog.f",
			Severity:   tt.SeverityWarning,
			Start:      token.Position{Line: 1, Column: 9},
			End:        token.Position{Line: 1, Column: 10},
			Message:    "illegal character '@'",
			Suggestion: "remove the character, it is skipped when parsing",
		},
	}

	expected := `warning: illegal-character
 --> prog.f:1:9
  |
1 | Z = X + @ Y
  |         ~
  = illegal character '@'
  = help: remove the character, it is skipped when parsing

`
	assert.Equal(t, expected, GenerateFormattedIssue(issues, code))
}

func TestFormatUnexpectedEndOfInput(t *testing.T) {
	t.Parallel()
	code := internal.NewSourceCode([]byte("DO I = 1, 10\n  X = X + I\n"))

	issues := []tt.Issue{
		{
			Rule:       tt.RuleSyntaxError,
			Filename:   "loop.f",
			Severity:   tt.SeverityError,
			Start:      token.Position{Line: 3, Column: 1},
			End:        token.Position{Line: 3, Column: 2},
			Message:    "unexpected end of input",
			Suggestion: "expected 'ENDDO'",
		},
	}

	expected := "error: syntax-error\n" +
		" --> loop.f:3:1\n" +
		"  |\n" +
		"2 | X = X + I\n" +
		"3 | \n" +
		"  | ~\n" +
		"  = unexpected end of input\n" +
		"  = help: expected 'ENDDO'\n" +
		"\n"
	assert.Equal(t, expected, GenerateFormattedIssue(issues, code))
}

func TestFormatMultipleDigitsLineNumbers(t *testing.T) {
	t.Parallel()
	lines := make([]string, 0, 10)
	for i := 0; i < 9; i++ {
		lines = append(lines, "X = 1")
	}
	lines = append(lines, "READ X")
	code := &internal.SourceCode{Lines: lines}

	issues := []tt.Issue{
		{
			Rule:       tt.RuleUnsupportedStatement,
			Filename:   "io.f",
			Severity:   tt.SeverityError,
			Start:      token.Position{Line: 10, Column: 1},
			End:        token.Position{Line: 10, Column: 5},
			Message:    "unexpected token 'READ'",
			Suggestion: "expected identifier, 'IF' or 'DO'",
			Note:       "READ statements are not supported",
		},
	}

	expected := `error: unsupported-statement
  --> io.f:10:1
   |
 9 | X = 1
10 | READ X
   | ~~~~
   = unexpected token 'READ'
   = help: expected identifier, 'IF' or 'DO'
   = note: READ statements are not supported

`
	assert.Equal(t, expected, GenerateFormattedIssue(issues, code))
}

func TestFormatSeveralIssues(t *testing.T) {
	t.Parallel()
	code := &internal.SourceCode{Lines: []string{"\tX = 1 @", "\tY = 2 #"}}

	issues := []tt.Issue{
		{
			Rule:     tt.RuleIllegalCharacter,
			Filename: "tabs.f",
			Severity: tt.SeverityInfo,
			Start:    token.Position{Line: 1, Column: 8},
			End:      token.Position{Line: 1, Column: 9},
			Message:  "illegal character '@'",
		},
		{
			Rule:     tt.RuleIllegalCharacter,
			Filename: "tabs.f",
			Severity: tt.SeverityInfo,
			Start:    token.Position{Line: 2, Column: 8},
			End:      token.Position{Line: 2, Column: 9},
			Message:  "illegal character '#'",
		},
	}

	expected := `info: illegal-character
 --> tabs.f:1:8
  |
1 | X = 1 @
  |       ~
  = illegal character '@'

info: illegal-character
 --> tabs.f:2:8
  |
2 | Y = 2 #
  |       ~
  = illegal character '#'

`
	assert.Equal(t, expected, GenerateFormattedIssue(issues, code))
}

func TestFormatWithoutSource(t *testing.T) {
	t.Parallel()
	issues := []tt.Issue{
		{
			Rule:     tt.RuleSyntaxError,
			Start:    token.Position{Line: 4, Column: 2},
			End:      token.Position{Line: 4, Column: 3},
			Message:  "unexpected token ')'",
			Severity: tt.SeverityError,
		},
	}

	expected := `error: syntax-error
 --> <input>:4:2
  |
  | unexpected token ')'

`
	assert.Equal(t, expected, GenerateFormattedIssue(issues, nil))
}

func TestFindCommonIndent(t *testing.T) {
	t.Parallel()
	tests := []struct {
		name     string
		lines    []string
		expected string
	}{
		{"empty", nil, ""},
		{"no indent", []string{"X = 1", "  Y = 2"}, ""},
		{"spaces", []string{"    X = 1", "  Y = 2"}, "  "},
		{"blank lines ignored", []string{"    X = 1", "", "    Y = 2"}, "    "},
		{"tabs", []string{"\tX = 1", "\t\tY = 2"}, "\t"},
	}
	for _, tc := range tests {
		assert.Equal(t, tc.expected, findCommonIndent(tc.lines), tc.name)
	}
}

func TestCalculateVisualColumn(t *testing.T) {
	t.Parallel()
	assert.Equal(t, 0, calculateVisualColumn("X = 1", 1))
	assert.Equal(t, 4, calculateVisualColumn("X = 1", 5))
	assert.Equal(t, 8, calculateVisualColumn("\tX", 2))
	assert.Equal(t, 9, calculateVisualColumn("ab\tX = 1", 5))
	assert.Equal(t, 0, calculateVisualColumn("X", -1))
}

func TestPreviousCodeLine(t *testing.T) {
	t.Parallel()
	lines := []string{"X = 1", "", "   ", "Y = "}
	assert.Equal(t, 1, previousCodeLine(lines, 4))
	assert.Equal(t, 1, previousCodeLine(lines, 1))
	assert.Equal(t, 4, previousCodeLine(lines, 5))
}
