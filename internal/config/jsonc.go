package config

import (
	"fmt"
	"strings"
)

// normalizeJSONC turns a JSONC document into strict JSON: comments are
// blanked in place (so decode offsets still map to the original lines) and
// trailing commas are dropped.
func normalizeJSONC(content string) (string, error) {
	stripped, err := blankComments(content)
	if err != nil {
		return "", err
	}
	return dropTrailingCommas(stripped), nil
}

func blankComments(content string) (string, error) {
	var out strings.Builder
	out.Grow(len(content))

	const (
		modeCode = iota
		modeString
		modeLineComment
		modeBlockComment
	)
	mode := modeCode
	escape := false

	for i := 0; i < len(content); i++ {
		ch := content[i]

		switch mode {
		case modeLineComment:
			if ch == '\n' || ch == '\r' {
				mode = modeCode
				out.WriteByte(ch)
			} else {
				out.WriteByte(' ')
			}

		case modeBlockComment:
			if ch == '*' && i+1 < len(content) && content[i+1] == '/' {
				mode = modeCode
				out.WriteString("  ")
				i++
			} else if ch == '\n' || ch == '\r' || ch == '\t' {
				out.WriteByte(ch)
			} else {
				out.WriteByte(' ')
			}

		case modeString:
			out.WriteByte(ch)
			switch {
			case escape:
				escape = false
			case ch == '\\':
				escape = true
			case ch == '"':
				mode = modeCode
			}

		default:
			if ch == '"' {
				mode = modeString
				out.WriteByte(ch)
				continue
			}
			if ch == '/' && i+1 < len(content) {
				if content[i+1] == '/' {
					mode = modeLineComment
					out.WriteString("  ")
					i++
					continue
				}
				if content[i+1] == '*' {
					mode = modeBlockComment
					out.WriteString("  ")
					i++
					continue
				}
			}
			out.WriteByte(ch)
		}
	}

	if mode == modeBlockComment {
		return "", fmt.Errorf("unterminated block comment in JSONC")
	}

	return out.String(), nil
}

func dropTrailingCommas(content string) string {
	var out strings.Builder
	out.Grow(len(content))

	inString := false
	escape := false

	for i := 0; i < len(content); i++ {
		ch := content[i]

		if inString {
			out.WriteByte(ch)
			switch {
			case escape:
				escape = false
			case ch == '\\':
				escape = true
			case ch == '"':
				inString = false
			}
			continue
		}

		if ch == '"' {
			inString = true
			out.WriteByte(ch)
			continue
		}

		if ch == ',' {
			j := i + 1
			for j < len(content) && isJSONWhitespace(content[j]) {
				j++
			}
			if j < len(content) && (content[j] == '}' || content[j] == ']') {
				continue
			}
		}

		out.WriteByte(ch)
	}

	return out.String()
}

func isJSONWhitespace(ch byte) bool {
	switch ch {
	case ' ', '\n', '\r', '\t':
		return true
	default:
		return false
	}
}
