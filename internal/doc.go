// Package internal provides the checking engine behind the fparse command.
//
// The engine runs the lexer and the LL(1) parser over a source file and
// converts what they report into issues: lexical warnings become
// illegal-character and number-overflow issues, and the single syntax
// error of a failed parse becomes a syntax-error or, for READ and WRITE,
// an unsupported-statement issue.
//
// Key components:
//
// Engine: coordinates a run. It holds the rule set with per-rule
// severities, ignored rules and paths, an optional on-disk Cache and the
// watch mode state.
//
// Rule: turns one kind of outcome into issues. Rules never fail; a rule
// that finds nothing returns no issues.
//
// Cache: gob-encoded issues per file, invalidated when the file, its
// modification time or a dependency such as the configuration changes.
//
// SourceCode: the lines of a file, used to render diagnostics.
//
// Issues can be silenced with comments:
//
//	X = 1 @  ! nolint:illegal-character
//	! nolint
//	Y = (A +
//
// Usage:
//
//	engine, err := internal.NewEngine(nil)
//	if err != nil {
//	    // handle error
//	}
//
//	issues, err := engine.Run("path/to/prog.f")
//	if err != nil {
//	    // handle error
//	}
//
//	for _, issue := range issues {
//	    fmt.Printf("%s: %s at %s\n", issue.Rule, issue.Message, issue.Start)
//	}
//
// This package is intended for internal use within fparse and should not
// be imported by external packages.
package internal
