package types

import (
	"fmt"
	"go/token"
	"strings"

	"gopkg.in/yaml.v3"
)

// Rule names. Each issue carries exactly one of them.
const (
	RuleIllegalCharacter     = "illegal-character"
	RuleNumberOverflow       = "number-overflow"
	RuleSyntaxError          = "syntax-error"
	RuleUnsupportedStatement = "unsupported-statement"
)

// Issue categories.
const (
	CategoryLexical = "lexical"
	CategorySyntax  = "syntax"
)

// Issue represents a problem found in a source file.
type Issue struct {
	Rule       string         `json:"rule"`
	Category   string         `json:"category"`
	Filename   string         `json:"filename"`
	Message    string         `json:"message"`
	Suggestion string         `json:"suggestion,omitempty"`
	Note       string         `json:"note,omitempty"`
	Severity   Severity       `json:"severity"`
	Start      token.Position `json:"start"`
	End        token.Position `json:"end"`
}

type Severity int

const (
	SeverityError Severity = iota
	SeverityWarning
	SeverityInfo
	SeverityOff
)

var severityNames = map[Severity]string{
	SeverityError:   "ERROR",
	SeverityWarning: "WARNING",
	SeverityInfo:    "INFO",
	SeverityOff:     "OFF",
}

func (s Severity) String() string {
	if name, ok := severityNames[s]; ok {
		return name
	}
	return fmt.Sprintf("Severity(%d)", int(s))
}

// ParseSeverity accepts the severity names in any case.
func ParseSeverity(s string) (Severity, error) {
	for sev, name := range severityNames {
		if strings.EqualFold(s, name) {
			return sev, nil
		}
	}
	return SeverityError, fmt.Errorf("invalid severity %q", s)
}

func (s Severity) MarshalText() ([]byte, error) {
	return []byte(s.String()), nil
}

// UnmarshalText is used by the TOML decoder and encoding/json.
func (s *Severity) UnmarshalText(text []byte) error {
	sev, err := ParseSeverity(string(text))
	if err != nil {
		return err
	}
	*s = sev
	return nil
}

func (s Severity) MarshalYAML() (interface{}, error) {
	return s.String(), nil
}

func (s *Severity) UnmarshalYAML(value *yaml.Node) error {
	var str string
	if err := value.Decode(&str); err != nil {
		return err
	}
	return s.UnmarshalText([]byte(str))
}

// ConfigRule is the per-rule section of the configuration file.
type ConfigRule struct {
	Severity Severity `yaml:"severity" toml:"severity"`
}
