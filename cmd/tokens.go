package cmd

import (
	"fmt"
	"text/tabwriter"

	"github.com/spf13/cobra"

	"github.com/gnolang/fparse/lexer"
)

var tokensJsonOutput bool

var tokensCmd = &cobra.Command{
	Use:   "tokens <file>",
	Short: "Tokenize a program and print its tokens",
	Long: `Tokenize a single program and print one token per line with its
position, kind and text. Use "-" to read from standard input.`,
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

		if tokensJsonOutput {
			out := make([]tokenJSON, 0, len(res.Tokens))
			for _, tok := range res.Tokens {
				out = append(out, newTokenJSON(tok))
			}
			return writeJSON(cmd.OutOrStdout(), out, "")
		}

		tw := tabwriter.NewWriter(cmd.OutOrStdout(), 0, 4, 2, ' ', 0)
		for _, tok := range res.Tokens {
			fmt.Fprintf(tw, "%d:%d\t%s\t%s\n", tok.Line, tok.Column, tok.Kind, tok.Literal)
		}
		return tw.Flush()
	},
}

func init() {
	tokensCmd.Flags().BoolVar(&tokensJsonOutput, "json", false, "Output tokens in JSON format")
}

type tokenJSON struct {
	Kind    string `json:"kind"`
	Literal string `json:"literal,omitempty"`
	Value   any    `json:"value,omitempty"`
	Line    int    `json:"line"`
	Column  int    `json:"column"`
}

func newTokenJSON(tok lexer.Token) tokenJSON {
	out := tokenJSON{
		Kind:    tok.Kind.String(),
		Literal: tok.Literal,
		Line:    tok.Line,
		Column:  tok.Column,
	}
	if tok.Kind == lexer.NUMBER {
		out.Value = tok.Value
	}
	return out
}
