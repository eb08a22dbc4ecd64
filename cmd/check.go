package cmd

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"os"
	"sort"
	"strings"

	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/gnolang/fparse/check"
	"github.com/gnolang/fparse/formatter"
	"github.com/gnolang/fparse/internal"
	tt "github.com/gnolang/fparse/internal/types"
)

// stdinName is the path argument that selects standard input.
const stdinName = "-"

var (
	ignoreRules     string
	ignorePaths     string
	checkJsonOutput bool
	outPath         string
	strict          bool
	showProgress    bool
)

var checkCmd = &cobra.Command{
	Use:   "check [paths...]",
	Short: "Tokenize and parse source files and report problems",
	Long: `Tokenize and parse every given file, or every source file under the
given directories, and report lexical warnings and syntax errors.
Use "-" to read a single program from standard input.`,
	RunE: func(cmd *cobra.Command, args []string) error {
		if len(args) == 0 {
			return fmt.Errorf("please provide file or directory paths")
		}

		ctx, cancel := context.WithTimeout(cmd.Context(), timeout)
		defer cancel()

		engine, config, err := check.New(cfgFile)
		if err != nil {
			return fmt.Errorf("failed to initialize engine: %w", err)
		}
		engine.SetLogger(logger)
		applyIgnoreFlags(engine)

		var progress io.Writer
		if showProgress && !checkJsonOutput {
			progress = cmd.ErrOrStderr()
		}
		opts := check.Options{Extensions: config.Extensions, Progress: progress}

		// Files that failed do not hide the issues of the others.
		issues, sources, runErr := runCheck(ctx, engine, args, opts, cmd.InOrStdin())
		if err := engine.FlushCache(); err != nil {
			logger.Warn("Failed to write cache", zap.Error(err))
		}
		if err := printIssues(cmd.OutOrStdout(), logger, issues, sources, checkJsonOutput, outPath); err != nil {
			return err
		}
		if runErr != nil {
			return runErr
		}

		if failing(issues, strict) {
			return ErrIssuesFound
		}
		return nil
	},
}

func init() {
	checkCmd.Flags().StringVar(&ignoreRules, "ignore", "", "Comma-separated list of rules to ignore")
	checkCmd.Flags().StringVar(&ignorePaths, "ignore-paths", "", "Comma-separated list of paths to ignore")
	checkCmd.Flags().BoolVar(&checkJsonOutput, "json", false, "Output issues in JSON format")
	checkCmd.Flags().StringVarP(&outPath, "output", "o", "", "Output path (when using JSON)")
	checkCmd.Flags().BoolVar(&strict, "strict", false, "Fail on warnings as well as errors")
	checkCmd.Flags().BoolVar(&showProgress, "progress", true, "Show a progress bar when checking directories")
}

func applyIgnoreFlags(engine check.Engine) {
	if ignoreRules != "" {
		for _, rule := range strings.Split(ignoreRules, ",") {
			engine.IgnoreRule(strings.TrimSpace(rule))
		}
	}
	if ignorePaths != "" {
		for _, path := range strings.Split(ignorePaths, ",") {
			engine.IgnorePath(strings.TrimSpace(path))
		}
	}
}

// runCheck checks paths, or standard input when the only path is "-".
// Sources read from memory are returned keyed by issue file name so they
// can be shown in snippets. On error the issues found so far are still
// returned.
func runCheck(ctx context.Context, engine check.Engine, paths []string, opts check.Options, stdin io.Reader) ([]tt.Issue, map[string]*internal.SourceCode, error) {
	if len(paths) == 1 && paths[0] == stdinName {
		source, err := io.ReadAll(stdin)
		if err != nil {
			return nil, nil, fmt.Errorf("error reading standard input: %w", err)
		}
		issues, err := check.ProcessSources(ctx, logger, engine, [][]byte{source}, check.ProcessSource)
		if err != nil {
			return nil, nil, err
		}
		return issues, map[string]*internal.SourceCode{"": internal.NewSourceCode(source)}, nil
	}

	issues, err := check.ProcessFiles(ctx, logger, engine, paths, opts, check.ProcessFile)
	if err != nil {
		logger.Error("Error processing files", zap.Error(err))
	}
	return issues, nil, err
}

// failing reports whether issues should make the run fail. Errors always
// do; warnings only in strict mode.
func failing(issues []tt.Issue, strict bool) bool {
	for _, issue := range issues {
		switch issue.Severity {
		case tt.SeverityError:
			return true
		case tt.SeverityWarning:
			if strict {
				return true
			}
		}
	}
	return false
}

func printIssues(
	w io.Writer,
	logger *zap.Logger,
	issues []tt.Issue,
	sources map[string]*internal.SourceCode,
	isJson bool,
	jsonOutput string,
) error {
	issuesByFile := make(map[string][]tt.Issue)
	for _, issue := range issues {
		issuesByFile[issue.Filename] = append(issuesByFile[issue.Filename], issue)
	}

	sortedFiles := make([]string, 0, len(issuesByFile))
	for filename := range issuesByFile {
		sortedFiles = append(sortedFiles, filename)
	}
	sort.Strings(sortedFiles)

	if isJson {
		return writeJSON(w, issuesByFile, jsonOutput)
	}

	for _, filename := range sortedFiles {
		fileIssues := issuesByFile[filename]
		sourceCode, ok := sources[filename]
		if !ok && filename != "" {
			var err error
			sourceCode, err = internal.ReadSourceCode(filename)
			if err != nil {
				logger.Error("Error reading source file", zap.String("file", filename), zap.Error(err))
				continue
			}
		}
		fmt.Fprint(w, formatter.GenerateFormattedIssue(fileIssues, sourceCode))
	}
	return nil
}

func writeJSON(w io.Writer, v any, jsonOutput string) error {
	d, err := json.Marshal(v)
	if err != nil {
		return fmt.Errorf("error marshalling to JSON: %w", err)
	}
	if jsonOutput == "" {
		_, err = fmt.Fprintln(w, string(d))
		return err
	}
	f, err := os.Create(jsonOutput)
	if err != nil {
		return fmt.Errorf("error creating JSON output file: %w", err)
	}
	defer f.Close()
	if _, err := f.Write(d); err != nil {
		return fmt.Errorf("error writing JSON output file: %w", err)
	}
	return nil
}
