// Package cdecl recognizes single-line C prototypes.
//
// The accepted grammar is
//
//	decl    := rettype IDENT '(' arglist ')' [';']
//	rettype := (IDENT | '*')+
//	arglist := 'void' | <empty> | param (',' param)*
//	param   := (IDENT | '*')+ name
//	name    := '*'* IDENT ('[' [NUMBER | IDENT] ']')*
//
// The parameter name is the last whitespace separated chunk of a parameter,
// so "Vector3 *v" declares name "*v" of type "Vector3" while "Vector3* v"
// declares name "v" of type "Vector3*".
package cdecl

import (
	"errors"
	"fmt"
	"strings"

	"github.com/viant/shimgen/inspector/graph"
)

// ErrNotDeclaration is wrapped by every error returned for a line that is not a prototype
var ErrNotDeclaration = errors.New("not a declaration")

// Parser parses prototype lines
type Parser struct {
	qualifiers map[string]bool
}

// Option configures a Parser
type Option func(*Parser)

// WithQualifiers registers decorations (e.g. extern, RLAPI) dropped from the front of a return type
func WithQualifiers(words ...string) Option {
	return func(p *Parser) {
		for _, word := range words {
			p.qualifiers[word] = true
		}
	}
}

// NewParser creates a parser
func NewParser(opts ...Option) *Parser {
	ret := &Parser{qualifiers: map[string]bool{}}
	for _, opt := range opts {
		opt(ret)
	}
	return ret
}

// Parse extracts every prototype of a header; lines that do not parse are reported, never fatal
func (p *Parser) Parse(text string) ([]*graph.Function, []*graph.Skipped) {
	var functions []*graph.Function
	var skipped []*graph.Skipped
	for _, line := range Prefilter(text) {
		function, err := p.ParseLine(line.Text)
		if err != nil {
			skipped = append(skipped, &graph.Skipped{Line: line.Number, Text: line.Text, Reason: err.Error()})
			continue
		}
		function.Line = line.Number
		functions = append(functions, function)
	}
	return functions, skipped
}

// ParseLine parses one prototype; a non-prototype yields an error wrapping ErrNotDeclaration
func (p *Parser) ParseLine(line string) (*graph.Function, error) {
	tokens, err := lex(line)
	if err != nil {
		return nil, err
	}
	s := &state{tokens: tokens}
	function, err := p.parseDeclaration(s)
	if err != nil {
		return nil, err
	}
	function.Raw = line
	return function, nil
}

type state struct {
	tokens []token
	pos    int
}

func (s *state) peek() token {
	return s.tokens[s.pos]
}

func (s *state) peekN(n int) token {
	if s.pos+n >= len(s.tokens) {
		return s.tokens[len(s.tokens)-1]
	}
	return s.tokens[s.pos+n]
}

func (s *state) next() token {
	tok := s.tokens[s.pos]
	if tok.kind != tokenEOF {
		s.pos++
	}
	return tok
}

func (s *state) expect(kind tokenKind) (token, error) {
	tok := s.next()
	if tok.kind != kind {
		return tok, unexpected(tok, kind.String())
	}
	return tok, nil
}

func unexpected(tok token, want string) error {
	got := tok.kind.String()
	if tok.text != "" {
		got = fmt.Sprintf("%q", tok.text)
	}
	return fmt.Errorf("%w: expected %s, got %s at column %d", ErrNotDeclaration, want, got, tok.offset+1)
}

func (p *Parser) parseDeclaration(s *state) (*graph.Function, error) {
	returnType, err := p.parseReturnType(s)
	if err != nil {
		return nil, err
	}
	name, err := s.expect(tokenIdent)
	if err != nil {
		return nil, err
	}
	if _, err = s.expect(tokenLParen); err != nil {
		return nil, err
	}
	params, err := parseArgList(s)
	if err != nil {
		return nil, err
	}
	if s.peek().kind == tokenSemicolon {
		s.next()
	}
	if tok := s.next(); tok.kind != tokenEOF {
		return nil, unexpected(tok, tokenEOF.String())
	}
	return &graph.Function{ReturnType: returnType, Name: name.text, Parameters: params}, nil
}

// parseReturnType consumes every type token up to the identifier that opens the parameter list
func (p *Parser) parseReturnType(s *state) (string, error) {
	var typeTokens []token
	for {
		tok := s.peek()
		if tok.kind == tokenIdent && s.peekN(1).kind == tokenLParen {
			break
		}
		if tok.kind != tokenIdent && tok.kind != tokenStar {
			if len(typeTokens) == 0 {
				return "", unexpected(tok, "return type")
			}
			return "", unexpected(tok, "function name followed by '('")
		}
		typeTokens = append(typeTokens, s.next())
	}
	for len(typeTokens) > 1 && typeTokens[0].kind == tokenIdent && p.qualifiers[typeTokens[0].text] {
		typeTokens = typeTokens[1:]
		typeTokens[0].spaced = false
	}
	if len(typeTokens) == 0 {
		return "", fmt.Errorf("%w: missing return type", ErrNotDeclaration)
	}
	return render(typeTokens), nil
}

func parseArgList(s *state) ([]*graph.Parameter, error) {
	if s.peek().kind == tokenRParen {
		s.next()
		return nil, nil
	}
	if tok := s.peek(); tok.kind == tokenIdent && tok.text == "void" && s.peekN(1).kind == tokenRParen {
		s.next()
		s.next()
		return nil, nil
	}
	var params []*graph.Parameter
	for {
		param, err := parseParam(s)
		if err != nil {
			return nil, err
		}
		params = append(params, param)
		switch tok := s.next(); tok.kind {
		case tokenComma:
			continue
		case tokenRParen:
			return params, nil
		default:
			return nil, unexpected(tok, "',' or ')'")
		}
	}
}

// parseParam collects the tokens of one parameter and splits them into type and name chunks
func parseParam(s *state) (*graph.Parameter, error) {
	var paramTokens []token
	depth := 0
	for {
		tok := s.peek()
		switch tok.kind {
		case tokenEOF:
			return nil, fmt.Errorf("%w: unterminated parameter list", ErrNotDeclaration)
		case tokenLParen:
			return nil, fmt.Errorf("%w: function pointer parameter at column %d", ErrNotDeclaration, tok.offset+1)
		case tokenEllipsis:
			return nil, fmt.Errorf("%w: variadic parameter at column %d", ErrNotDeclaration, tok.offset+1)
		case tokenSemicolon:
			return nil, unexpected(tok, "parameter")
		case tokenLBracket:
			depth++
		case tokenRBracket:
			depth--
		case tokenComma, tokenRParen:
			if depth == 0 {
				return splitParam(paramTokens, tok)
			}
		}
		paramTokens = append(paramTokens, s.next())
	}
}

func splitParam(paramTokens []token, at token) (*graph.Parameter, error) {
	if len(paramTokens) == 0 {
		return nil, unexpected(at, "parameter")
	}
	nameStart := 0
	for i := 1; i < len(paramTokens); i++ {
		if paramTokens[i].spaced {
			nameStart = i
		}
	}
	if nameStart == 0 {
		return nil, fmt.Errorf("%w: unnamed parameter %q", ErrNotDeclaration, render(paramTokens))
	}
	typeTokens, nameTokens := paramTokens[:nameStart], paramTokens[nameStart:]
	for _, tok := range typeTokens {
		if tok.kind != tokenIdent && tok.kind != tokenStar {
			return nil, unexpected(tok, "parameter type")
		}
	}
	if err := validateName(nameTokens); err != nil {
		return nil, err
	}
	name := render(nameTokens)
	return &graph.Parameter{
		Type:              render(typeTokens),
		Name:              name,
		IsPointerDeclared: strings.HasPrefix(name, "*"),
	}, nil
}

func validateName(nameTokens []token) error {
	i := 0
	for i < len(nameTokens) && nameTokens[i].kind == tokenStar {
		i++
	}
	if i >= len(nameTokens) || nameTokens[i].kind != tokenIdent {
		return fmt.Errorf("%w: missing parameter name in %q", ErrNotDeclaration, render(nameTokens))
	}
	for i++; i < len(nameTokens); i++ {
		if nameTokens[i].kind != tokenLBracket {
			return unexpected(nameTokens[i], "'['")
		}
		if i+1 < len(nameTokens) && (nameTokens[i+1].kind == tokenNumber || nameTokens[i+1].kind == tokenIdent) {
			i++
		}
		if i+1 >= len(nameTokens) || nameTokens[i+1].kind != tokenRBracket {
			return fmt.Errorf("%w: malformed array suffix in %q", ErrNotDeclaration, render(nameTokens))
		}
		i++
	}
	return nil
}

// render joins tokens back, keeping a single space wherever the source had whitespace
func render(tokens []token) string {
	builder := &strings.Builder{}
	for i, tok := range tokens {
		if i > 0 && tok.spaced {
			builder.WriteByte(' ')
		}
		builder.WriteString(tok.text)
	}
	return builder.String()
}
