package shell

import (
	"fmt"
	"strings"
	"unicode"
)

// Tokenize splits a command line on whitespace. Double-quoted spans form a
// single token so that multi-word city names can be passed:
//
//	search "Seattle WA" "Boston MA" 1 10 2
//
// There are no escape sequences; a quote cannot appear inside a token.
func Tokenize(line string) ([]string, error) {
	var (
		tokens  []string
		cur     strings.Builder
		inQuote bool
		started bool
	)

	for _, r := range line {
		switch {
		case r == '"':
			inQuote = !inQuote
			started = true
		case unicode.IsSpace(r) && !inQuote:
			if started {
				tokens = append(tokens, cur.String())
				cur.Reset()
				started = false
			}
		default:
			cur.WriteRune(r)
			started = true
		}
	}

	if inQuote {
		return nil, fmt.Errorf("unterminated quote")
	}
	if started {
		tokens = append(tokens, cur.String())
	}
	return tokens, nil
}
