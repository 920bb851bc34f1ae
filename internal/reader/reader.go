// Package reader implements the PTC-Lisp Reader: it tokenizes and parses
// source text directly into Raw AST nodes in one recursive-descent pass,
// a rune-at-a-time scanner tracking line/column. Forms are built
// directly; a Lisp reader's grammar is simple enough that a separate
// token stream buys nothing.
package reader

import (
	"math"
	"math/big"
	"strconv"
	"strings"
	"unicode"
	"unicode/utf8"

	"github.com/ptclisp/ptclisp/internal/ast"
	"github.com/ptclisp/ptclisp/internal/runtimevalue"
	"github.com/ptclisp/ptclisp/internal/token"
)

func infFloat(sign int) float64 { return math.Inf(sign) }
func nanFloat() float64         { return math.NaN() }

type reader struct {
	input        string
	position     int
	readPosition int
	ch           rune
	line, col    int
	formsSeen    int
}

// Parse reads src and returns the Raw AST: a single form, a RawProgram
// wrapping more than one top-level form, or a nil literal for empty
// input.
func Parse(src string) (ast.RawNode, error) {
	if err := precheckForbiddenSyntax(src); err != nil {
		return nil, err
	}

	r := newReader(src)
	r.skipAtmosphere()

	var forms []ast.RawNode
	for r.ch != 0 {
		form, err := r.readForm()
		if err != nil {
			return nil, r.diagnose(err)
		}
		forms = append(forms, form)
		r.formsSeen++
		r.skipAtmosphere()
	}

	switch len(forms) {
	case 0:
		return ast.NewNilAt(token.Pos{Line: 1, Column: 0}), nil
	case 1:
		return forms[0], nil
	default:
		return &ast.RawProgram{Base: ast.Base{At: forms[0].Pos()}, Forms: forms}, nil
	}
}

// diagnose prefers a delimiter-balance diagnosis when nothing has been
// read yet; an imbalance message beats "unexpected end of input".
func (r *reader) diagnose(err error) error {
	if r.formsSeen == 0 {
		if diag := delimiterDiagnostic(r.input); diag != nil {
			return diag
		}
	}
	return err
}

func newReader(input string) *reader {
	r := &reader{input: input, line: 1, col: 0}
	r.readChar()
	return r
}

func (r *reader) pos() token.Pos { return token.Pos{Line: r.line, Column: r.col} }

func (r *reader) readChar() {
	if r.ch == '\n' {
		r.line++
		r.col = 0
	}
	if r.readPosition >= len(r.input) {
		r.ch = 0
		r.position = r.readPosition
		return
	}
	rn, w := utf8.DecodeRuneInString(r.input[r.readPosition:])
	r.ch = rn
	r.position = r.readPosition
	r.readPosition += w
	r.col++
}

func (r *reader) peekChar() rune {
	if r.readPosition >= len(r.input) {
		return 0
	}
	rn, _ := utf8.DecodeRuneInString(r.input[r.readPosition:])
	return rn
}

// skipAtmosphere skips whitespace, commas (treated as whitespace), and
// `;` line comments.
func (r *reader) skipAtmosphere() {
	for {
		switch {
		case r.ch == ' ' || r.ch == '\t' || r.ch == '\n' || r.ch == '\r' || r.ch == ',':
			r.readChar()
		case r.ch == ';':
			for r.ch != '\n' && r.ch != 0 {
				r.readChar()
			}
		default:
			return
		}
	}
}

func isSymbolChar(ch rune) bool {
	if unicode.IsLetter(ch) || unicode.IsDigit(ch) {
		return true
	}
	switch ch {
	case '+', '-', '*', '/', '<', '>', '=', '?', '!', '_', '%', '.', '&':
		return true
	}
	return false
}

func (r *reader) readForm() (ast.RawNode, error) {
	r.skipAtmosphere()
	pos := r.pos()

	switch {
	case r.ch == 0:
		return nil, newParseError(pos, "unexpected end of input")
	case r.ch == '(':
		return r.readSeq('(', ')', func(items []ast.RawNode, p token.Pos) ast.RawNode {
			return &ast.RawList{Base: ast.Base{At: p}, Items: items}
		})
	case r.ch == '[':
		return r.readSeq('[', ']', func(items []ast.RawNode, p token.Pos) ast.RawNode {
			return &ast.RawVector{Base: ast.Base{At: p}, Items: items}
		})
	case r.ch == '{':
		return r.readMap()
	case r.ch == '#':
		return r.readDispatch()
	case r.ch == '"':
		return r.readString()
	case r.ch == ':':
		return r.readKeyword()
	case r.ch == '\\':
		return r.readCharLiteral()
	case r.ch == '-' && isDigit(r.peekChar()):
		return r.readNumber()
	case isDigit(r.ch):
		return r.readNumber()
	default:
		return r.readSymbolic()
	}
}

func isDigit(ch rune) bool { return ch >= '0' && ch <= '9' }

func (r *reader) readSeq(open, close rune, build func([]ast.RawNode, token.Pos) ast.RawNode) (ast.RawNode, error) {
	pos := r.pos()
	r.readChar() // consume open
	var items []ast.RawNode
	for {
		r.skipAtmosphere()
		if r.ch == 0 {
			return nil, newParseError(pos, "unexpected end of input, expected '%c'", close)
		}
		if r.ch == close {
			r.readChar()
			return build(items, pos), nil
		}
		item, err := r.readForm()
		if err != nil {
			return nil, err
		}
		items = append(items, item)
	}
}

func (r *reader) readMap() (ast.RawNode, error) {
	pos := r.pos()
	node, err := r.readSeq('{', '}', func(items []ast.RawNode, p token.Pos) ast.RawNode {
		return &ast.RawVector{Base: ast.Base{At: p}, Items: items}
	})
	if err != nil {
		return nil, err
	}
	flat := node.(*ast.RawVector).Items
	if len(flat)%2 != 0 {
		return nil, newParseError(pos, "map literal has an odd number of forms: %d", len(flat))
	}
	pairs := make([]ast.RawPair, 0, len(flat)/2)
	for i := 0; i < len(flat); i += 2 {
		pairs = append(pairs, ast.RawPair{Key: flat[i], Value: flat[i+1]})
	}
	return &ast.RawMap{Base: ast.Base{At: pos}, Pairs: pairs}, nil
}

// readDispatch handles every `#`-prefixed form: #{...} sets, #(...)
// short-fns, #'name var references, and the ##Inf/##-Inf/##NaN special
// float literals. #"..." and #_ are rejected earlier, in precheck.
func (r *reader) readDispatch() (ast.RawNode, error) {
	pos := r.pos()
	r.readChar() // consume '#'
	switch r.ch {
	case '{':
		return r.readSeq('{', '}', func(items []ast.RawNode, p token.Pos) ast.RawNode {
			return &ast.RawSet{Base: ast.Base{At: p}, Items: items}
		})
	case '(':
		body, err := r.readSeq('(', ')', func(items []ast.RawNode, p token.Pos) ast.RawNode {
			return &ast.RawList{Base: ast.Base{At: p}, Items: items}
		})
		if err != nil {
			return nil, err
		}
		return &ast.RawShortFn{Base: ast.Base{At: pos}, Body: body}, nil
	case '\'':
		r.readChar() // consume '\''
		return r.readSymbolic()
	case '#':
		r.readChar() // consume second '#'
		word := r.readBareWord()
		switch word {
		case "Inf":
			return &ast.RawLiteral{Base: ast.Base{At: pos}, Value: runtimevalue.Float{Value: infFloat(1)}}, nil
		case "-Inf":
			return &ast.RawLiteral{Base: ast.Base{At: pos}, Value: runtimevalue.Float{Value: infFloat(-1)}}, nil
		case "NaN":
			return &ast.RawLiteral{Base: ast.Base{At: pos}, Value: runtimevalue.Float{Value: nanFloat()}}, nil
		default:
			return nil, newParseError(pos, "unsupported ##%s literal", word)
		}
	default:
		return nil, newParseError(pos, "unsupported '#' dispatch form")
	}
}

func (r *reader) readBareWord() string {
	var b strings.Builder
	for isSymbolChar(r.ch) {
		b.WriteRune(r.ch)
		r.readChar()
	}
	return b.String()
}

func (r *reader) readString() (ast.RawNode, error) {
	pos := r.pos()
	r.readChar() // consume opening quote
	var b strings.Builder
	for {
		if r.ch == 0 {
			return nil, newParseError(pos, "unterminated string literal")
		}
		if r.ch == '"' {
			r.readChar()
			return &ast.RawLiteral{Base: ast.Base{At: pos}, Value: runtimevalue.String{Value: b.String()}}, nil
		}
		if r.ch == '\\' {
			r.readChar()
			switch r.ch {
			case 'n':
				b.WriteByte('\n')
			case 't':
				b.WriteByte('\t')
			case 'r':
				b.WriteByte('\r')
			case '"':
				b.WriteByte('"')
			case '\\':
				b.WriteByte('\\')
			default:
				// Unknown escape: preserve the backslash.
				b.WriteByte('\\')
				b.WriteRune(r.ch)
			}
			r.readChar()
			continue
		}
		b.WriteRune(r.ch)
		r.readChar()
	}
}

var namedChars = map[string]rune{
	"newline":   '\n',
	"space":     ' ',
	"tab":       '\t',
	"return":    '\r',
	"backspace": '\b',
	"formfeed":  '\f',
}

func (r *reader) readCharLiteral() (ast.RawNode, error) {
	pos := r.pos()
	r.readChar() // consume backslash
	if r.ch == 0 {
		return nil, newParseError(pos, "unterminated char literal")
	}
	if unicode.IsLetter(r.ch) {
		start := r.position
		for unicode.IsLetter(r.ch) {
			r.readChar()
		}
		word := r.input[start:r.position]
		if mapped, ok := namedChars[word]; ok {
			return &ast.RawLiteral{Base: ast.Base{At: pos}, Value: runtimevalue.String{Value: string(mapped)}}, nil
		}
		// Not a named char: only the first rune of the word is the literal;
		// re-park the reader right after that first rune.
		first, w := utf8.DecodeRuneInString(word)
		r.rewindTo(start + w)
		return &ast.RawLiteral{Base: ast.Base{At: pos}, Value: runtimevalue.String{Value: string(first)}}, nil
	}
	ch := r.ch
	r.readChar()
	return &ast.RawLiteral{Base: ast.Base{At: pos}, Value: runtimevalue.String{Value: string(ch)}}, nil
}

// rewindTo re-seeks the scanner to byte offset target, recomputing line
// and column by rescanning from the start of input. Only used by the rare
// `\word` char-literal backtrack, so the O(n) rescan is not a concern.
func (r *reader) rewindTo(target int) {
	r.position = 0
	r.readPosition = 0
	r.ch = 0
	r.line = 1
	r.col = 0
	r.readChar()
	for r.position < target && r.ch != 0 {
		r.readChar()
	}
}

func (r *reader) readKeyword() (ast.RawNode, error) {
	pos := r.pos()
	r.readChar() // consume ':'
	name := r.readBareWord()
	if name == "" {
		return nil, newParseError(pos, "empty keyword")
	}
	return &ast.RawLiteral{Base: ast.Base{At: pos}, Value: runtimevalue.Keyword{Name: name}}, nil
}

func (r *reader) readNumber() (ast.RawNode, error) {
	pos := r.pos()
	start := r.position
	if r.ch == '-' {
		r.readChar()
	}
	for isDigit(r.ch) {
		r.readChar()
	}
	isFloat := false
	if r.ch == '.' && isDigit(r.peekChar()) {
		isFloat = true
		r.readChar()
		for isDigit(r.ch) {
			r.readChar()
		}
	}
	if r.ch == 'e' || r.ch == 'E' {
		isFloat = true
		r.readChar()
		if r.ch == '+' || r.ch == '-' {
			r.readChar()
		}
		for isDigit(r.ch) {
			r.readChar()
		}
	}
	text := r.input[start:r.position]
	if isFloat {
		f, err := strconv.ParseFloat(text, 64)
		if err != nil {
			return nil, newParseError(pos, "invalid float literal %q", text)
		}
		return &ast.RawLiteral{Base: ast.Base{At: pos}, Value: runtimevalue.Float{Value: f}}, nil
	}
	i, ok := new(big.Int).SetString(text, 10)
	if !ok {
		return nil, newParseError(pos, "invalid integer literal %q", text)
	}
	return &ast.RawLiteral{Base: ast.Base{At: pos}, Value: runtimevalue.Int{Value: i}}, nil
}

// readSymbolic reads nil/true/false, a plain or namespaced symbol, or a
// turn-history reference (*1, *2, *3).
func (r *reader) readSymbolic() (ast.RawNode, error) {
	pos := r.pos()
	if !isSymbolChar(r.ch) {
		return nil, newParseError(pos, "unexpected character %q", r.ch)
	}
	start := r.position
	for isSymbolChar(r.ch) {
		r.readChar()
	}
	text := r.input[start:r.position]

	switch text {
	case "nil":
		return &ast.RawLiteral{Base: ast.Base{At: pos}, Value: runtimevalue.NilValue}, nil
	case "true":
		return &ast.RawLiteral{Base: ast.Base{At: pos}, Value: runtimevalue.True}, nil
	case "false":
		return &ast.RawLiteral{Base: ast.Base{At: pos}, Value: runtimevalue.False}, nil
	case "*1":
		return &ast.RawTurnHistory{Base: ast.Base{At: pos}, N: 1}, nil
	case "*2":
		return &ast.RawTurnHistory{Base: ast.Base{At: pos}, N: 2}, nil
	case "*3":
		return &ast.RawTurnHistory{Base: ast.Base{At: pos}, N: 3}, nil
	}

	if idx := strings.IndexByte(text, '/'); idx > 0 {
		ns, name := text[:idx], text[idx+1:]
		return &ast.RawNsSymbol{Base: ast.Base{At: pos}, Namespace: ns, Name: name}, nil
	}
	return &ast.RawSymbol{Base: ast.Base{At: pos}, Name: text}, nil
}
