// printer.go: token reporting for the scan subcommand.
package mitscript

import (
	"fmt"
	"io"
)

func tokenCategory(k TokenKind) string {
	switch k {
	case STRING:
		return " STRINGLITERAL"
	case INTEGER:
		return " INTLITERAL"
	case BOOLEAN:
		return " BOOLEANLITERAL"
	case ID:
		return " IDENTIFIER"
	default:
		return ""
	}
}

// PrintTokens writes one line per token as `<line> <CATEGORY> <lexeme>`, the
// category blank for structural and operator tokens. ERROR and EOF tokens are
// suppressed.
func PrintTokens(w io.Writer, tokens []Token) error {
	for _, t := range tokens {
		if t.Kind == EOF || t.Kind == ERROR {
			continue
		}
		if _, err := fmt.Fprintf(w, "%d%s %s\n", t.Line, tokenCategory(t.Kind), t.Lexeme); err != nil {
			return err
		}
	}
	return nil
}
