package formatter

// SyntaxErrorFormatter also prints the closest non-blank line above the
// error. At end of input the offending position is often an empty last
// line, and the statement left open is the useful context.
type SyntaxErrorFormatter struct{}

func (f *SyntaxErrorFormatter) IssueTemplate() string {
	return `{{header .Rule .Severity .MaxLineNumWidth .Filename .StartLine .StartColumn -}}
{{snippet .SnippetLines .ContextLine .EndLine .MaxLineNumWidth .CommonIndent .Padding -}}
{{underlineAndMessage .Message .Padding .StartLine .EndLine .StartColumn .EndColumn .SnippetLines .CommonIndent -}}
{{suggestion .Suggestion .Padding -}}
{{note .Note .Padding}}
`
}
