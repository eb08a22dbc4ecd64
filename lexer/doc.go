/*
Package lexer turns source text of the fparse language into a flat slice
of tokens.

# Token Types

  - IDENT: a letter followed by letters or digits, e.g. "X", "RESULT", "I2"
  - NUMBER: digits with an optional fraction, e.g. "10", "3.14"
  - Operators: + - * / = == != < > <= >=
  - Delimiters: ( ) ,
  - Keywords (case-insensitive): IF THEN ENDIF DO ENDDO READ WRITE
  - EOF: end of input marker, always the last token

Spaces, tabs and newlines separate tokens and are not emitted. A '!'
starts a comment that runs to the end of the line, except in "!=".

# Errors

The lexer never fails. A character outside the language is reported as a
Warning carrying the character, line and column, and is skipped:

	tokens, warnings := lexer.Tokenize("Z = X @ Y")
	// tokens:   ID(Z) ASSIGN ID(X) ID(Y) EOF
	// warnings: line 1 col 7: illegal character '@'
*/
package lexer
