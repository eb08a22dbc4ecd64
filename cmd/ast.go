package cmd

import (
	"fmt"
	"io"
	"os"

	"github.com/spf13/cobra"

	"github.com/gnolang/fparse/check"
	"github.com/gnolang/fparse/formatter"
	"github.com/gnolang/fparse/internal"
	"github.com/gnolang/fparse/parser"
)

var astJsonOutput bool

var astCmd = &cobra.Command{
	Use:   "ast <file>",
	Short: "Parse a program and print its syntax tree",
	Long: `Parse a single program and print its syntax tree, one node per line,
indented by depth. Use "-" to read from standard input. Lexical warnings
and syntax errors go to standard error.`,
	Args: cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		source, filename, err := readInput(cmd.InOrStdin(), args[0])
		if err != nil {
			return err
		}

		res, err := analyzeAndReport(cmd, source, filename)
		if err != nil {
			return err
		}
		if !res.OK {
			return ErrIssuesFound
		}

		if astJsonOutput {
			return writeJSON(cmd.OutOrStdout(), res.AST, "")
		}
		fmt.Fprintln(cmd.OutOrStdout(), res.AST.String())
		return nil
	},
}

func init() {
	astCmd.Flags().BoolVar(&astJsonOutput, "json", false, "Output the tree in JSON format")
}

// readInput returns the content of name, or of stdin when name is "-".
// The returned file name is empty for stdin.
func readInput(stdin io.Reader, name string) ([]byte, string, error) {
	if name == stdinName {
		source, err := io.ReadAll(stdin)
		if err != nil {
			return nil, "", fmt.Errorf("error reading standard input: %w", err)
		}
		return source, "", nil
	}
	source, err := os.ReadFile(name)
	if err != nil {
		return nil, "", fmt.Errorf("error reading file: %w", err)
	}
	return source, name, nil
}

// analyzeAndReport runs the lexer and parser on source and prints the
// resulting issues, filtered by the configured rules, to stderr.
func analyzeAndReport(cmd *cobra.Command, source []byte, filename string) (parser.Result, error) {
	engine, _, err := check.New(cfgFile)
	if err != nil {
		return parser.Result{}, fmt.Errorf("failed to initialize engine: %w", err)
	}
	engine.SetLogger(logger)

	res := parser.Analyze(string(source))
	if issues := engine.CheckResult(filename, &res); len(issues) > 0 {
		fmt.Fprint(cmd.ErrOrStderr(), formatter.GenerateFormattedIssue(issues, internal.NewSourceCode(source)))
	}
	return res, nil
}
