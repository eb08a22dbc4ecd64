package internal

import (
	"fmt"
	"go/token"
	"os"
	"path/filepath"
	"sort"
	"strings"
	"sync"

	"github.com/fsnotify/fsnotify"
	"go.uber.org/zap"

	"github.com/gnolang/fparse/internal/nolint"
	tt "github.com/gnolang/fparse/internal/types"
	"github.com/gnolang/fparse/parser"
)

// Engine checks source files by running the lexer and parser and turning
// their outcome into issues. Run and RunSource are safe for concurrent
// use once the engine is configured.
type Engine struct {
	ignoredRules map[string]bool
	ignoredPaths []string
	rules        map[string]Rule
	cache        *Cache
	logger       *zap.Logger

	// watch mode
	mu         sync.Mutex
	watcher    *fsnotify.Watcher
	watchDirs  []string
	extensions []string
	isWatching bool
	stop       chan struct{}
	done       chan struct{}
	onIssues   func(filename string, issues []tt.Issue)
}

// NewEngine creates a new engine. Rules missing from the map keep their
// default severity; a rule set to off is not run.
func NewEngine(rules map[string]tt.ConfigRule) (*Engine, error) {
	engine := &Engine{logger: zap.NewNop()}
	if err := engine.applyRules(rules); err != nil {
		return nil, err
	}
	return engine, nil
}

type ruleConstructor func() Rule

var allRuleConstructors = map[string]ruleConstructor{
	tt.RuleIllegalCharacter:     NewIllegalCharacterRule,
	tt.RuleNumberOverflow:       NewNumberOverflowRule,
	tt.RuleSyntaxError:          NewSyntaxErrorRule,
	tt.RuleUnsupportedStatement: NewUnsupportedStatementRule,
}

// RuleNames lists every known rule in a stable order.
func RuleNames() []string {
	names := make([]string, 0, len(allRuleConstructors))
	for name := range allRuleConstructors {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}

// DefaultRules returns the configuration equivalent of running with no
// rule overrides.
func DefaultRules() map[string]tt.ConfigRule {
	rules := make(map[string]tt.ConfigRule, len(allRuleConstructors))
	for name, newRule := range allRuleConstructors {
		rules[name] = tt.ConfigRule{Severity: newRule().Severity()}
	}
	return rules
}

func (e *Engine) applyRules(rules map[string]tt.ConfigRule) error {
	e.rules = make(map[string]Rule, len(allRuleConstructors))
	for key, newRule := range allRuleConstructors {
		e.rules[key] = newRule()
	}

	for key, rule := range rules {
		r, ok := e.rules[key]
		if !ok {
			return fmt.Errorf("unknown rule %q", key)
		}
		if rule.Severity == tt.SeverityOff {
			e.IgnoreRule(key)
		}
		r.SetSeverity(rule.Severity)
	}
	return nil
}

// SetLogger replaces the no-op logger.
func (e *Engine) SetLogger(logger *zap.Logger) {
	if logger != nil {
		e.logger = logger
	}
}

// EnableCache stores results under dir. Changes to any of deps, such as
// the configuration file, invalidate all entries.
func (e *Engine) EnableCache(dir string, deps ...string) (*Cache, error) {
	cache, err := NewCache(dir)
	if err != nil {
		return nil, err
	}
	if err := cache.SetDependencies(deps...); err != nil {
		return nil, err
	}
	e.cache = cache
	return cache, nil
}

// FlushCache writes cached results to disk. It is a no-op without a
// cache.
func (e *Engine) FlushCache() error {
	if e.cache == nil {
		return nil
	}
	return e.cache.Flush()
}

func (e *Engine) IgnoreRule(rule string) {
	if e.ignoredRules == nil {
		e.ignoredRules = make(map[string]bool)
	}
	e.ignoredRules[rule] = true
}

// IgnorePath skips files matching pattern, a filepath.Match pattern tried
// against both the full path and the base name, or a directory prefix.
func (e *Engine) IgnorePath(pattern string) {
	e.ignoredPaths = append(e.ignoredPaths, pattern)
}

func (e *Engine) isIgnoredPath(filename string) bool {
	clean := filepath.Clean(filename)
	for _, pattern := range e.ignoredPaths {
		if ok, _ := filepath.Match(pattern, clean); ok {
			return true
		}
		if ok, _ := filepath.Match(pattern, filepath.Base(clean)); ok {
			return true
		}
		dir := filepath.Clean(pattern)
		if strings.HasPrefix(clean, dir+string(filepath.Separator)) {
			return true
		}
	}
	return false
}

// Parse reads filename and runs the lexer and parser on it.
func (e *Engine) Parse(filename string) (*parser.Result, error) {
	content, err := os.ReadFile(filename)
	if err != nil {
		return nil, fmt.Errorf("error reading file: %w", err)
	}
	res := parser.Analyze(string(content))
	return &res, nil
}

// Run checks the given file and returns its issues sorted by position.
func (e *Engine) Run(filename string) ([]tt.Issue, error) {
	if e.isIgnoredPath(filename) {
		e.logger.Debug("skipping ignored file", zap.String("file", filename))
		return nil, nil
	}

	if e.cache != nil {
		if issues, ok := e.cache.Get(filename); ok {
			e.logger.Debug("cache hit", zap.String("file", filename))
			return issues, nil
		}
	}

	res, err := e.Parse(filename)
	if err != nil {
		return nil, err
	}
	issues := e.check(filename, res)

	if e.cache != nil {
		if err := e.cache.Set(filename, issues); err != nil {
			e.logger.Warn("failed to cache issues", zap.String("file", filename), zap.Error(err))
		}
	}
	return issues, nil
}

// RunSource checks the given source and returns its issues sorted by
// position. Issues carry no file name.
func (e *Engine) RunSource(source []byte) ([]tt.Issue, error) {
	res := parser.Analyze(string(source))
	return e.check("", &res), nil
}

// CheckResult converts an existing analysis of filename into issues,
// for callers that also need the tokens or the tree.
func (e *Engine) CheckResult(filename string, res *parser.Result) []tt.Issue {
	return e.check(filename, res)
}

func (e *Engine) check(filename string, res *parser.Result) []tt.Issue {
	nolintMgr := nolint.ParseComments(filename, res.Comments, res.Tokens)

	var allIssues []tt.Issue
	for name, rule := range e.rules {
		if e.ignoredRules[name] {
			continue
		}
		issues := rule.Check(filename, res)
		allIssues = append(allIssues, filterNolintIssues(nolintMgr, issues)...)
	}

	sortIssues(allIssues)
	e.logger.Debug("checked",
		zap.String("file", filename),
		zap.Bool("parsed", res.OK),
		zap.Int("issues", len(allIssues)),
	)
	return allIssues
}

// filterNolintIssues filters issues based on nolint comments.
func filterNolintIssues(mgr *nolint.Manager, issues []tt.Issue) []tt.Issue {
	filtered := make([]tt.Issue, 0, len(issues))
	for _, issue := range issues {
		pos := token.Position{
			Filename: issue.Filename,
			Line:     issue.Start.Line,
		}
		if !mgr.IsNolint(pos, issue.Rule) {
			filtered = append(filtered, issue)
		}
	}
	return filtered
}

func sortIssues(issues []tt.Issue) {
	sort.SliceStable(issues, func(i, j int) bool {
		a, b := issues[i].Start, issues[j].Start
		if a.Line != b.Line {
			return a.Line < b.Line
		}
		if a.Column != b.Column {
			return a.Column < b.Column
		}
		return issues[i].Rule < issues[j].Rule
	})
}

// SourceCode stores the content of a source code file.
type SourceCode struct {
	Lines []string
}

// ReadSourceCode reads the content of a file and returns it as a `SourceCode` struct.
func ReadSourceCode(filename string) (*SourceCode, error) {
	content, err := os.ReadFile(filename)
	if err != nil {
		return nil, err
	}
	return NewSourceCode(content), nil
}

func NewSourceCode(content []byte) *SourceCode {
	text := strings.ReplaceAll(string(content), "\r\n", "\n")
	return &SourceCode{Lines: strings.Split(text, "\n")}
}
