package reader

import "github.com/ptclisp/ptclisp/internal/token"

// precheckForbiddenSyntax rejects the handful of Clojure-ish forms the
// language does not support, scanning with string/comment contents
// masked out so quoted text never trips a false positive.
func precheckForbiddenSyntax(src string) *ParseError {
	isCode := make([]bool, len(src))
	inString := false
	inComment := false
	escaped := false
	for i := 0; i < len(src); i++ {
		c := src[i]
		if c == '\n' {
			inComment = false
			escaped = false
			continue
		}
		if inComment {
			continue
		}
		if inString {
			if escaped {
				escaped = false
			} else if c == '\\' {
				escaped = true
			} else if c == '"' {
				inString = false
			}
			continue
		}
		switch c {
		case ';':
			inComment = true
		case '"':
			inString = true
		default:
			isCode[i] = true
		}
	}

	line, col := 1, 0
	for i := 0; i < len(src); i++ {
		c := src[i]
		col++
		if c == '\n' {
			line++
			col = 0
			continue
		}
		if !isCode[i] {
			continue
		}
		pos := token.Pos{Line: line, Column: col}
		switch {
		case c == '#' && i+1 < len(src) && src[i+1] == '"':
			return newParseError(pos, `regex literals (#"...") are not supported; use string builtins like split/replace instead`)
		case c == '#' && i+1 < len(src) && src[i+1] == '_':
			return newParseError(pos, "reader discard (#_) is not supported")
		case c == '@':
			return newParseError(pos, "deref (@name) is not supported")
		case c == '\'' && !(i > 0 && src[i-1] == '#'):
			return newParseError(pos, "quote ('x) is not supported")
		}
	}
	return nil
}
