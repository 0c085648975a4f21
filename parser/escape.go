package parser

import (
	"fmt"
	"strconv"
)

// parseEscapeAt parses a single escape sequence starting at s[i] (which
// must be '\\') and returns the number of source characters consumed and
// the decoded byte. Supports \n \t \\ \r and \xHH, plus \' and \" for
// quote characters.
func parseEscapeAt(s string, i int) (consumed int, b byte, ok bool) {
	if i+1 >= len(s) || s[i] != '\\' {
		return 0, 0, false
	}

	switch s[i+1] {
	case 'n':
		return 2, '\n', true
	case 't':
		return 2, '\t', true
	case 'r':
		return 2, '\r', true
	case '\\':
		return 2, '\\', true
	case '\'':
		return 2, '\'', true
	case '"':
		return 2, '"', true
	case 'x':
		if i+3 >= len(s) {
			return 0, 0, false
		}
		val, err := strconv.ParseUint(s[i+2:i+4], 16, 8)
		if err != nil {
			return 0, 0, false
		}
		return 4, byte(val), true
	default:
		return 0, 0, false
	}
}

// decodeQuotedBody decodes the escapes inside the body of a char or
// string literal (the text between the quotes, quotes already stripped).
func decodeQuotedBody(body string) ([]byte, error) {
	out := make([]byte, 0, len(body))
	i := 0
	for i < len(body) {
		if body[i] == '\\' {
			consumed, b, ok := parseEscapeAt(body, i)
			if !ok {
				return nil, fmt.Errorf("unknown escape sequence at offset %d", i)
			}
			out = append(out, b)
			i += consumed
			continue
		}
		out = append(out, body[i])
		i++
	}
	return out, nil
}
