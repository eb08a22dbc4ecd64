package cmd

import (
	"bytes"
	"encoding/json"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/fatih/color"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/gnolang/fparse/check"
	"github.com/gnolang/fparse/internal/types"
	"github.com/gnolang/fparse/parser"
)

func init() {
	color.NoColor = true
}

// execute runs the root command with args. Commands share package-level
// flag variables, so they are reset first and tests here are not parallel.
func execute(t *testing.T, stdin string, args ...string) (string, string, error) {
	t.Helper()

	cfgFile = ""
	timeout = defaultTimeout
	verbose = false
	ignoreRules, ignorePaths = "", ""
	checkJsonOutput, outPath = false, ""
	strict, showProgress = false, false
	astJsonOutput, tokensJsonOutput = false, false
	forceInit = false

	var stdout, stderr bytes.Buffer
	rootCmd.SetIn(strings.NewReader(stdin))
	rootCmd.SetOut(&stdout)
	rootCmd.SetErr(&stderr)
	rootCmd.SetArgs(args)

	err := rootCmd.Execute()
	return stdout.String(), stderr.String(), err
}

func writeSource(t *testing.T, dir, name, content string) string {
	t.Helper()
	path := filepath.Join(dir, name)
	require.NoError(t, os.WriteFile(path, []byte(content), 0o644))
	return path
}

func TestCheckCommand(t *testing.T) {
	dir := t.TempDir()
	good := writeSource(t, dir, "good.f", "X = 1\nIF (X > 0) THEN\n  Y = X\nENDIF\n")
	bad := writeSource(t, dir, "bad.f", "DO I = 1, 10\n  X = X + I\n")
	noisy := writeSource(t, dir, "noisy.f", "A = 1 @ + 2\n")

	t.Run("clean file", func(t *testing.T) {
		stdout, _, err := execute(t, "", "check", good)
		require.NoError(t, err)
		assert.Empty(t, stdout)
	})

	t.Run("syntax error", func(t *testing.T) {
		stdout, _, err := execute(t, "", "check", bad)
		assert.ErrorIs(t, err, ErrIssuesFound)
		assert.Contains(t, stdout, "error: syntax-error")
		assert.Contains(t, stdout, bad+":3:1")
		assert.Contains(t, stdout, "unexpected end of input")
		assert.Contains(t, stdout, "help: expected 'ENDDO'")
	})

	t.Run("warnings pass unless strict", func(t *testing.T) {
		stdout, _, err := execute(t, "", "check", noisy)
		require.NoError(t, err)
		assert.Contains(t, stdout, "warning: illegal-character")

		_, _, err = execute(t, "", "check", "--strict", noisy)
		assert.ErrorIs(t, err, ErrIssuesFound)
	})

	t.Run("ignored rule", func(t *testing.T) {
		stdout, _, err := execute(t, "", "check", "--ignore", "syntax-error", bad)
		require.NoError(t, err)
		assert.Empty(t, stdout)
	})

	t.Run("directory", func(t *testing.T) {
		stdout, _, err := execute(t, "", "check", dir)
		assert.ErrorIs(t, err, ErrIssuesFound)
		assert.Contains(t, stdout, bad)
		assert.Contains(t, stdout, noisy)
		assert.NotContains(t, stdout, good)
	})

	t.Run("root command checks paths", func(t *testing.T) {
		_, _, err := execute(t, "", bad)
		assert.ErrorIs(t, err, ErrIssuesFound)
	})

	t.Run("missing path", func(t *testing.T) {
		_, _, err := execute(t, "", "check", filepath.Join(dir, "missing.f"))
		require.Error(t, err)
		assert.NotErrorIs(t, err, ErrIssuesFound)
	})

	t.Run("missing path keeps other issues", func(t *testing.T) {
		missing := filepath.Join(dir, "missing.f")
		stdout, _, err := execute(t, "", "check", bad, missing, noisy)
		require.Error(t, err)
		assert.NotErrorIs(t, err, ErrIssuesFound)
		assert.ErrorContains(t, err, missing)
		assert.Contains(t, stdout, "error: syntax-error")
		assert.Contains(t, stdout, bad+":3:1")
		assert.Contains(t, stdout, "warning: illegal-character")
	})
}

func TestCheckCommandJSON(t *testing.T) {
	dir := t.TempDir()
	bad := writeSource(t, dir, "bad.f", "X = (1 + 2\n")

	stdout, _, err := execute(t, "", "check", "--json", bad)
	assert.ErrorIs(t, err, ErrIssuesFound)

	var byFile map[string][]types.Issue
	require.NoError(t, json.Unmarshal([]byte(stdout), &byFile))
	require.Len(t, byFile[bad], 1)
	issue := byFile[bad][0]
	assert.Equal(t, types.RuleSyntaxError, issue.Rule)
	assert.Equal(t, types.SeverityError, issue.Severity)
	assert.Equal(t, 2, issue.Start.Line)

	out := filepath.Join(dir, "issues.json")
	stdout, _, err = execute(t, "", "check", "--json", "-o", out, bad)
	assert.ErrorIs(t, err, ErrIssuesFound)
	assert.Empty(t, stdout)
	data, err := os.ReadFile(out)
	require.NoError(t, err)
	assert.True(t, json.Valid(data))
}

func TestCheckCommandStdin(t *testing.T) {
	stdout, _, err := execute(t, "READ X\n", "check", "-")
	assert.ErrorIs(t, err, ErrIssuesFound)
	assert.Contains(t, stdout, "error: unsupported-statement")
	assert.Contains(t, stdout, "<input>:1:1")
	assert.Contains(t, stdout, "1 | READ X")
	assert.Contains(t, stdout, "note: READ statements are not supported")
}

func TestASTCommand(t *testing.T) {
	const src = "X = A + B * 2\nDO I = 1, N\n  X = X - I\nENDDO\n"
	dir := t.TempDir()
	path := writeSource(t, dir, "prog.f", src)

	stdout, stderr, err := execute(t, "", "ast", path)
	require.NoError(t, err)
	assert.Empty(t, stderr)

	res := parser.Analyze(src)
	require.True(t, res.OK)
	assert.Equal(t, res.AST.String()+"\n", stdout)

	stdout, _, err = execute(t, "", "ast", "--json", path)
	require.NoError(t, err)
	expected, err := json.Marshal(res.AST)
	require.NoError(t, err)
	assert.JSONEq(t, string(expected), stdout)
}

func TestASTCommandReportsIssues(t *testing.T) {
	stdout, stderr, err := execute(t, "X = 1 # + 2\nY = \n", "ast", "-")
	assert.ErrorIs(t, err, ErrIssuesFound)
	assert.Empty(t, stdout)
	assert.Contains(t, stderr, "warning: illegal-character")
	assert.Contains(t, stderr, "error: syntax-error")

	stdout, stderr, err = execute(t, "X = 1 # + 2\n", "ast", "-")
	require.NoError(t, err)
	assert.NotEmpty(t, stdout)
	assert.Contains(t, stderr, "illegal character '#'")
}

func TestTokensCommand(t *testing.T) {
	stdout, _, err := execute(t, "X = 42\n", "tokens", "-")
	require.NoError(t, err)

	lines := strings.Split(strings.TrimRight(stdout, "\n"), "\n")
	require.Len(t, lines, 4)
	assert.Equal(t, []string{"1:1", "ID", "X"}, strings.Fields(lines[0]))
	assert.Equal(t, []string{"1:3", "ASSIGN", "="}, strings.Fields(lines[1]))
	assert.Equal(t, []string{"1:5", "NUMBER", "42"}, strings.Fields(lines[2]))
	assert.Equal(t, []string{"2:1", "EOF"}, strings.Fields(lines[3]))

	stdout, _, err = execute(t, "X = 42\n", "tokens", "--json", "-")
	require.NoError(t, err)

	var toks []map[string]any
	require.NoError(t, json.Unmarshal([]byte(stdout), &toks))
	require.Len(t, toks, 4)
	assert.Equal(t, "ID", toks[0]["kind"])
	assert.NotContains(t, toks[0], "value")
	assert.Equal(t, float64(42), toks[2]["value"])
	assert.Equal(t, "EOF", toks[3]["kind"])
}

func TestInitCommand(t *testing.T) {
	path := filepath.Join(t.TempDir(), ".fparse.yaml")

	stdout, _, err := execute(t, "", "init", "--config", path)
	require.NoError(t, err)
	assert.Contains(t, stdout, path)

	config, err := check.LoadConfig(path)
	require.NoError(t, err)
	assert.Equal(t, check.DefaultConfig(), config)

	_, _, err = execute(t, "", "init", "--config", path)
	assert.ErrorContains(t, err, "already exists")

	_, _, err = execute(t, "", "init", "--config", path, "--force")
	assert.NoError(t, err)
}

func TestCheckCommandUsesConfig(t *testing.T) {
	dir := t.TempDir()
	noisy := writeSource(t, dir, "noisy.f", "A = 1 @ + 2\n")
	config := writeSource(t, dir, "fparse.toml", "[rules.illegal-character]\nseverity = \"ERROR\"\n")

	stdout, _, err := execute(t, "", "check", "--config", config, noisy)
	assert.ErrorIs(t, err, ErrIssuesFound)
	assert.Contains(t, stdout, "error: illegal-character")
}

func TestFailing(t *testing.T) {
	tests := []struct {
		name       string
		severities []types.Severity
		strict     bool
		want       bool
	}{
		{"none", nil, false, false},
		{"error", []types.Severity{types.SeverityError}, false, true},
		{"warning", []types.Severity{types.SeverityWarning}, false, false},
		{"warning strict", []types.Severity{types.SeverityWarning}, true, true},
		{"info strict", []types.Severity{types.SeverityInfo}, true, false},
		{"mixed", []types.Severity{types.SeverityInfo, types.SeverityError}, false, true},
	}
	for _, tc := range tests {
		issues := make([]types.Issue, 0, len(tc.severities))
		for _, s := range tc.severities {
			issues = append(issues, types.Issue{Severity: s})
		}
		assert.Equal(t, tc.want, failing(issues, tc.strict), tc.name)
	}
}
