package cdecl

import "fmt"

type tokenKind int

const (
	tokenEOF tokenKind = iota
	tokenIdent
	tokenNumber
	tokenStar      // "*"
	tokenLParen    // "("
	tokenRParen    // ")"
	tokenLBracket  // "["
	tokenRBracket  // "]"
	tokenComma     // ","
	tokenSemicolon // ";"
	tokenEllipsis  // "..."
)

var tokenNames = map[tokenKind]string{
	tokenEOF:       "end of line",
	tokenIdent:     "identifier",
	tokenNumber:    "number",
	tokenStar:      "'*'",
	tokenLParen:    "'('",
	tokenRParen:    "')'",
	tokenLBracket:  "'['",
	tokenRBracket:  "']'",
	tokenComma:     "','",
	tokenSemicolon: "';'",
	tokenEllipsis:  "'...'",
}

func (k tokenKind) String() string {
	return tokenNames[k]
}

// token is a lexeme of the prototype dialect. spaced records whether
// whitespace preceded it, which decides where the parameter name starts.
type token struct {
	kind   tokenKind
	text   string
	offset int
	spaced bool
}

type lexer struct {
	src    string
	cur    int
	spaced bool
	tokens []token
}

func lex(src string) ([]token, error) {
	l := &lexer{src: src}
	for {
		l.skipWhitespace()
		if l.cur >= len(l.src) {
			l.tokens = append(l.tokens, token{kind: tokenEOF, offset: l.cur, spaced: l.spaced})
			return l.tokens, nil
		}
		start := l.cur
		ch := l.src[l.cur]
		switch {
		case isAlpha(ch):
			l.emit(tokenIdent, start, l.scanWhile(isAlphaNum))
		case isDigit(ch):
			l.emit(tokenNumber, start, l.scanWhile(isAlphaNum))
		case ch == '.' && len(l.src)-l.cur >= 3 && l.src[l.cur:l.cur+3] == "...":
			l.cur += 3
			l.emit(tokenEllipsis, start, "...")
		default:
			kind, ok := punctuation[ch]
			if !ok {
				return nil, fmt.Errorf("%w: unexpected %q at column %d", ErrNotDeclaration, ch, start+1)
			}
			l.cur++
			l.emit(kind, start, string(ch))
		}
	}
}

var punctuation = map[byte]tokenKind{
	'*': tokenStar,
	'(': tokenLParen,
	')': tokenRParen,
	'[': tokenLBracket,
	']': tokenRBracket,
	',': tokenComma,
	';': tokenSemicolon,
}

func (l *lexer) emit(kind tokenKind, offset int, text string) {
	l.tokens = append(l.tokens, token{kind: kind, text: text, offset: offset, spaced: l.spaced})
	l.spaced = false
}

func (l *lexer) skipWhitespace() {
	for l.cur < len(l.src) {
		switch l.src[l.cur] {
		case ' ', '\t', '\r', '\n', '\v', '\f':
			l.spaced = true
			l.cur++
		default:
			return
		}
	}
}

func (l *lexer) scanWhile(accept func(byte) bool) string {
	start := l.cur
	for l.cur < len(l.src) && accept(l.src[l.cur]) {
		l.cur++
	}
	return l.src[start:l.cur]
}

func isDigit(b byte) bool    { return b >= '0' && b <= '9' }
func isAlpha(b byte) bool    { return (b >= 'a' && b <= 'z') || (b >= 'A' && b <= 'Z') || b == '_' }
func isAlphaNum(b byte) bool { return isAlpha(b) || isDigit(b) }
