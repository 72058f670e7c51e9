package expr

import (
	"errors"
	"fmt"
	"strconv"
	"strings"

	"github.com/goliatone/go-formflow/pkg/visibility"
)

// Evaluator is the small, dependency-free rule language used by form
// catalogs.
//
// Supported forms:
//   - truthiness: `newsletter` (non-empty, not "false")
//   - comparisons: `role == "pro"`, `role != user`, `count == 3`, `x == null`
//   - composition: `a == "x" && !b`, `a || (b && c)`
//
// Identifiers read form values; `extras.<key>` reads visibility.Context.Extras.
type Evaluator struct{}

// New returns an Evaluator.
func New() *Evaluator { return &Evaluator{} }

var (
	_ visibility.Evaluator = (*Evaluator)(nil)
	_ visibility.Compiler  = (*Evaluator)(nil)
)

// Eval compiles and runs rule in one step. An empty rule is always true.
func (e *Evaluator) Eval(_ string, rule string, ctx visibility.Context) (bool, error) {
	program, err := e.Compile(rule)
	if err != nil {
		return false, err
	}
	return program.Eval(ctx)
}

// Compile parses rule once so it can be evaluated on every value change.
func (e *Evaluator) Compile(rule string) (visibility.Program, error) {
	trimmed := strings.TrimSpace(rule)
	if trimmed == "" {
		return program{}, nil
	}
	tokens, err := tokenize(trimmed)
	if err != nil {
		return nil, err
	}
	root, err := parseExpression(tokens)
	if err != nil {
		return nil, err
	}
	idents := make(map[string]struct{})
	root.collect(idents)
	out := make([]string, 0, len(idents))
	for name := range idents {
		out = append(out, name)
	}
	return program{root: root, idents: out}, nil
}

type program struct {
	root   exprNode
	idents []string
}

func (p program) Eval(ctx visibility.Context) (bool, error) {
	if p.root == nil {
		return true, nil
	}
	return p.root.eval(ctx)
}

func (p program) Identifiers() []string {
	return append([]string(nil), p.idents...)
}

type tokenKind int

const (
	tokenIdentifier tokenKind = iota
	tokenString
	tokenNumber
	tokenBool
	tokenNull
	tokenEq
	tokenNeq
	tokenAnd
	tokenOr
	tokenNot
	tokenLParen
	tokenRParen
)

type token struct {
	kind tokenKind
	raw  string
}

func isDelimiter(c byte) bool {
	switch c {
	case ' ', '\t', '\n', '\r', '(', ')', '!', '=', '&', '|':
		return true
	}
	return false
}

func tokenize(input string) ([]token, error) {
	var tokens []token
	for i := 0; i < len(input); {
		ch := input[i]
		switch {
		case ch == ' ' || ch == '\t' || ch == '\n' || ch == '\r':
			i++
		case ch == '(':
			tokens = append(tokens, token{kind: tokenLParen, raw: "("})
			i++
		case ch == ')':
			tokens = append(tokens, token{kind: tokenRParen, raw: ")"})
			i++
		case ch == '!':
			if i+1 < len(input) && input[i+1] == '=' {
				tokens = append(tokens, token{kind: tokenNeq, raw: "!="})
				i += 2
				continue
			}
			tokens = append(tokens, token{kind: tokenNot, raw: "!"})
			i++
		case ch == '=':
			if i+1 >= len(input) || input[i+1] != '=' {
				return nil, errors.New("visibility/expr: unexpected '='; use '=='")
			}
			tokens = append(tokens, token{kind: tokenEq, raw: "=="})
			i += 2
		case ch == '&':
			if i+1 >= len(input) || input[i+1] != '&' {
				return nil, errors.New("visibility/expr: unexpected '&'; use '&&'")
			}
			tokens = append(tokens, token{kind: tokenAnd, raw: "&&"})
			i += 2
		case ch == '|':
			if i+1 >= len(input) || input[i+1] != '|' {
				return nil, errors.New("visibility/expr: unexpected '|'; use '||'")
			}
			tokens = append(tokens, token{kind: tokenOr, raw: "||"})
			i += 2
		case ch == '"' || ch == '\'':
			value, next, err := readString(input, i)
			if err != nil {
				return nil, err
			}
			tokens = append(tokens, token{kind: tokenString, raw: value})
			i = next
		default:
			start := i
			for i < len(input) && !isDelimiter(input[i]) {
				i++
			}
			tokens = append(tokens, classifyWord(input[start:i]))
		}
	}
	return tokens, nil
}

// readString consumes a quoted literal starting at input[start] and returns
// its unquoted value plus the index after the closing quote.
func readString(input string, start int) (string, int, error) {
	quote := input[start]
	escaped := false
	for i := start + 1; i < len(input); i++ {
		c := input[i]
		if escaped {
			escaped = false
			continue
		}
		if c == '\\' {
			escaped = true
			continue
		}
		if c != quote {
			continue
		}
		body := input[start+1 : i]
		if quote == '\'' {
			body = strings.ReplaceAll(body, `"`, `\"`)
			body = strings.ReplaceAll(body, `\'`, `'`)
		}
		value, err := strconv.Unquote(`"` + body + `"`)
		if err != nil {
			return "", 0, fmt.Errorf("visibility/expr: invalid string literal: %w", err)
		}
		return value, i + 1, nil
	}
	return "", 0, errors.New("visibility/expr: unterminated string literal")
}

func classifyWord(raw string) token {
	switch strings.ToLower(raw) {
	case "true", "false":
		return token{kind: tokenBool, raw: strings.ToLower(raw)}
	case "null", "nil":
		return token{kind: tokenNull, raw: "null"}
	}
	if c := raw[0]; (c >= '0' && c <= '9') || c == '-' || c == '+' {
		return token{kind: tokenNumber, raw: raw}
	}
	return token{kind: tokenIdentifier, raw: raw}
}

type exprNode interface {
	eval(ctx visibility.Context) (bool, error)
	collect(idents map[string]struct{})
}

type exprOr struct{ left, right exprNode }

func (n exprOr) eval(ctx visibility.Context) (bool, error) {
	ok, err := n.left.eval(ctx)
	if err != nil || ok {
		return ok, err
	}
	return n.right.eval(ctx)
}

func (n exprOr) collect(idents map[string]struct{}) {
	n.left.collect(idents)
	n.right.collect(idents)
}

type exprAnd struct{ left, right exprNode }

func (n exprAnd) eval(ctx visibility.Context) (bool, error) {
	ok, err := n.left.eval(ctx)
	if err != nil || !ok {
		return false, err
	}
	return n.right.eval(ctx)
}

func (n exprAnd) collect(idents map[string]struct{}) {
	n.left.collect(idents)
	n.right.collect(idents)
}

type exprNot struct{ inner exprNode }

func (n exprNot) eval(ctx visibility.Context) (bool, error) {
	ok, err := n.inner.eval(ctx)
	if err != nil {
		return false, err
	}
	return !ok, nil
}

func (n exprNot) collect(idents map[string]struct{}) {
	n.inner.collect(idents)
}

type literal struct {
	kind tokenKind
	raw  string
	num  float64
}

type exprCompare struct {
	identifier string
	negate     bool
	literal    literal
}

func (n exprCompare) eval(ctx visibility.Context) (bool, error) {
	value, _ := lookup(ctx, n.identifier)

	var equal bool
	switch n.literal.kind {
	case tokenNull:
		equal = value == nil || coerceString(value) == ""
	case tokenBool:
		equal = truthy(value) == (n.literal.raw == "true")
	case tokenNumber:
		got, ok := coerceNumber(value)
		equal = ok && got == n.literal.num
	default:
		equal = coerceString(value) == n.literal.raw
	}
	if n.negate {
		return !equal, nil
	}
	return equal, nil
}

func (n exprCompare) collect(idents map[string]struct{}) {
	addIdentifier(idents, n.identifier)
}

type exprTruthy struct{ identifier string }

func (n exprTruthy) eval(ctx visibility.Context) (bool, error) {
	value, ok := lookup(ctx, n.identifier)
	return ok && truthy(value), nil
}

func (n exprTruthy) collect(idents map[string]struct{}) {
	addIdentifier(idents, n.identifier)
}

func addIdentifier(idents map[string]struct{}, name string) {
	if isExtras(name) {
		return
	}
	idents[name] = struct{}{}
}

type tokenStream struct {
	tokens []token
	pos    int
}

func parseExpression(tokens []token) (exprNode, error) {
	stream := &tokenStream{tokens: tokens}
	node, err := parseOr(stream)
	if err != nil {
		return nil, err
	}
	if stream.pos < len(stream.tokens) {
		return nil, fmt.Errorf("visibility/expr: unexpected token %q", stream.tokens[stream.pos].raw)
	}
	return node, nil
}

func parseOr(stream *tokenStream) (exprNode, error) {
	left, err := parseAnd(stream)
	if err != nil {
		return nil, err
	}
	for stream.match(tokenOr) {
		right, err := parseAnd(stream)
		if err != nil {
			return nil, err
		}
		left = exprOr{left: left, right: right}
	}
	return left, nil
}

func parseAnd(stream *tokenStream) (exprNode, error) {
	left, err := parseUnary(stream)
	if err != nil {
		return nil, err
	}
	for stream.match(tokenAnd) {
		right, err := parseUnary(stream)
		if err != nil {
			return nil, err
		}
		left = exprAnd{left: left, right: right}
	}
	return left, nil
}

func parseUnary(stream *tokenStream) (exprNode, error) {
	if stream.match(tokenNot) {
		inner, err := parseUnary(stream)
		if err != nil {
			return nil, err
		}
		return exprNot{inner: inner}, nil
	}
	return parsePrimary(stream)
}

func parsePrimary(stream *tokenStream) (exprNode, error) {
	if stream.match(tokenLParen) {
		inner, err := parseOr(stream)
		if err != nil {
			return nil, err
		}
		if !stream.match(tokenRParen) {
			return nil, errors.New("visibility/expr: missing closing ')'")
		}
		return inner, nil
	}

	ident, ok := stream.consume(tokenIdentifier)
	if !ok {
		if stream.pos >= len(stream.tokens) {
			return nil, errors.New("visibility/expr: empty expression")
		}
		return nil, fmt.Errorf("visibility/expr: expected identifier, got %q", stream.tokens[stream.pos].raw)
	}

	for _, op := range []tokenKind{tokenEq, tokenNeq} {
		if !stream.match(op) {
			continue
		}
		lit, err := stream.consumeLiteral()
		if err != nil {
			return nil, err
		}
		return exprCompare{identifier: ident.raw, negate: op == tokenNeq, literal: lit}, nil
	}
	return exprTruthy{identifier: ident.raw}, nil
}

func (s *tokenStream) match(kind tokenKind) bool {
	_, ok := s.consume(kind)
	return ok
}

func (s *tokenStream) consume(kind tokenKind) (token, bool) {
	if s.pos >= len(s.tokens) || s.tokens[s.pos].kind != kind {
		return token{}, false
	}
	out := s.tokens[s.pos]
	s.pos++
	return out, true
}

func (s *tokenStream) consumeLiteral() (literal, error) {
	if s.pos >= len(s.tokens) {
		return literal{}, errors.New("visibility/expr: missing literal")
	}
	tok := s.tokens[s.pos]
	s.pos++
	switch tok.kind {
	case tokenString, tokenBool, tokenNull:
		return literal{kind: tok.kind, raw: tok.raw}, nil
	case tokenNumber:
		num, err := strconv.ParseFloat(tok.raw, 64)
		if err != nil {
			return literal{}, fmt.Errorf("visibility/expr: invalid number literal %q", tok.raw)
		}
		return literal{kind: tokenNumber, raw: tok.raw, num: num}, nil
	case tokenIdentifier:
		// Bare words compare as strings: `role == pro`.
		return literal{kind: tokenString, raw: tok.raw}, nil
	default:
		return literal{}, fmt.Errorf("visibility/expr: expected literal, got %q", tok.raw)
	}
}

func isExtras(key string) bool {
	return strings.HasPrefix(strings.ToLower(key), "extras.")
}

func lookup(ctx visibility.Context, key string) (any, bool) {
	if isExtras(key) {
		v, ok := ctx.Extras[key[len("extras."):]]
		return v, ok
	}
	v, ok := ctx.Values[key]
	return v, ok
}

func truthy(value any) bool {
	switch v := value.(type) {
	case nil:
		return false
	case bool:
		return v
	case string:
		trimmed := strings.TrimSpace(v)
		if parsed, err := strconv.ParseBool(trimmed); err == nil {
			return parsed
		}
		return trimmed != ""
	case int:
		return v != 0
	case float64:
		return v != 0
	default:
		return true
	}
}

func coerceNumber(value any) (float64, bool) {
	switch v := value.(type) {
	case float64:
		return v, true
	case int:
		return float64(v), true
	case int64:
		return float64(v), true
	case string:
		f, err := strconv.ParseFloat(strings.TrimSpace(v), 64)
		return f, err == nil
	default:
		return 0, false
	}
}

func coerceString(value any) string {
	switch v := value.(type) {
	case nil:
		return ""
	case string:
		return v
	default:
		return fmt.Sprint(value)
	}
}
