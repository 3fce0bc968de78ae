package engine

import (
	"strconv"
	"strings"
	"time"
	"unicode"
)

// Kind selects the expression variant being parsed.
type Kind int

const (
	// KindRule is a boolean expression prefixed with "If"; comparison and
	// logical operators are allowed.
	KindRule Kind = iota
	// KindFormula is a purely arithmetic expression; comparison and
	// logical operators make it grammatically invalid.
	KindFormula
)

func (k Kind) String() string {
	if k == KindFormula {
		return "Formula"
	}
	return "Rule"
}

type tokenType int

const (
	tokEOF tokenType = iota
	tokNumber
	tokDate
	tokField // {ident} or {ident[±N]}
	tokFunc  // sum mean median min max count sqrt days today
	tokLParen
	tokRParen
	tokPlus
	tokMinus
	tokStar
	tokSlash
	tokPercent
	tokPower      // **
	tokFloorDiv   // //
	tokGT
	tokLT
	tokGE
	tokLE
	tokEQ
	tokNE
	tokAnd
	tokOr
	tokNot
)

type token struct {
	typ   tokenType
	pos   int // byte offset in source
	text  string
	num   float64   // tokNumber
	date  time.Time // tokDate
	field string    // tokField: base identifier
	index *int      // tokField: optional [±N] index
}

// invalidError marks a candidate that fails the token grammar outright.
// It carries no position: the whole string is rejected.
type invalidError struct {
	kind Kind
}

func (e *invalidError) Error() string {
	return e.kind.String() + " is invalid"
}

// syntaxError marks a structurally broken expression built from legal
// tokens. Pos is the byte offset the parser stopped at.
type syntaxError struct {
	kind Kind
	pos  int
	src  string
}

func (e *syntaxError) Error() string {
	return e.kind.String() + ` syntax invalid "` + e.src[:e.pos] + caretMarker + e.src[e.pos:] + `"`
}

const caretMarker = ">>>here>>>"

var functionNames = map[string]bool{
	"count": true, "max": true, "mean": true, "median": true,
	"min": true, "sum": true,
	"sqrt": true, "days": true, "today": true,
}

// aggregateNames are the functions whose single argument must be a bare
// field reference bound to a (possibly list-valued) answer.
var aggregateNames = map[string]bool{
	"count": true, "max": true, "mean": true, "median": true,
	"min": true, "sum": true,
}

// lex splits src into tokens. Any character or word outside the closed
// grammar makes the whole candidate invalid, as does a comparison or
// logical token inside a formula, or a rule missing its "If" prefix.
// A stray dot is the one exception: it pins a position, so it is
// reported as a syntax error instead.
func lex(src string, kind Kind) ([]token, error) {
	rest := src
	if kind == KindRule {
		trimmed := strings.TrimLeft(src, " \t")
		if !strings.HasPrefix(trimmed, "If") {
			return nil, &invalidError{kind}
		}
		after := trimmed[2:]
		if after != "" && !isSpace(after[0]) && after[0] != '(' {
			return nil, &invalidError{kind}
		}
		rest = after
	}

	base := len(src) - len(rest)
	toks := make([]token, 0, 16)
	i := 0
	for i < len(rest) {
		c := rest[i]
		pos := base + i
		switch {
		case isSpace(c):
			i++
		case c == '(':
			toks = append(toks, token{typ: tokLParen, pos: pos, text: "("})
			i++
		case c == ')':
			toks = append(toks, token{typ: tokRParen, pos: pos, text: ")"})
			i++
		case c == '+':
			toks = append(toks, token{typ: tokPlus, pos: pos, text: "+"})
			i++
		case c == '-':
			toks = append(toks, token{typ: tokMinus, pos: pos, text: "-"})
			i++
		case c == '*':
			if i+1 < len(rest) && rest[i+1] == '*' {
				toks = append(toks, token{typ: tokPower, pos: pos, text: "**"})
				i += 2
			} else {
				toks = append(toks, token{typ: tokStar, pos: pos, text: "*"})
				i++
			}
		case c == '/':
			if i+1 < len(rest) && rest[i+1] == '/' {
				toks = append(toks, token{typ: tokFloorDiv, pos: pos, text: "//"})
				i += 2
			} else {
				toks = append(toks, token{typ: tokSlash, pos: pos, text: "/"})
				i++
			}
		case c == '%':
			toks = append(toks, token{typ: tokPercent, pos: pos, text: "%"})
			i++
		case c == '.':
			// A dot can only appear inside a number literal, so a stray
			// one marks a precise break point rather than rejecting the
			// whole candidate.
			return nil, &syntaxError{kind: kind, pos: pos, src: src}
		case c == '>' || c == '<' || c == '=' || c == '!':
			typ, width, ok := lexComparison(rest[i:])
			if !ok || kind == KindFormula {
				return nil, &invalidError{kind}
			}
			toks = append(toks, token{typ: typ, pos: pos, text: rest[i : i+width]})
			i += width
		case c == '{':
			tok, width, ok := lexField(rest[i:], pos)
			if !ok {
				return nil, &invalidError{kind}
			}
			toks = append(toks, tok)
			i += width
		case c >= '0' && c <= '9':
			tok, width, ok := lexNumberOrDate(rest[i:], pos)
			if !ok {
				return nil, &invalidError{kind}
			}
			toks = append(toks, tok)
			i += width
		case isLetter(c):
			j := i
			for j < len(rest) && (isLetter(rest[j]) || rest[j] >= '0' && rest[j] <= '9') {
				j++
			}
			word := rest[i:j]
			switch {
			case word == "and" || word == "or" || word == "not":
				if kind == KindFormula {
					return nil, &invalidError{kind}
				}
				typ := tokAnd
				if word == "or" {
					typ = tokOr
				} else if word == "not" {
					typ = tokNot
				}
				toks = append(toks, token{typ: typ, pos: pos, text: word})
			case functionNames[word]:
				toks = append(toks, token{typ: tokFunc, pos: pos, text: word})
			default:
				return nil, &invalidError{kind}
			}
			i = j
		default:
			return nil, &invalidError{kind}
		}
	}
	toks = append(toks, token{typ: tokEOF, pos: len(src), text: ""})
	return toks, nil
}

func lexComparison(s string) (tokenType, int, bool) {
	if len(s) >= 2 {
		switch s[:2] {
		case ">=":
			return tokGE, 2, true
		case "<=":
			return tokLE, 2, true
		case "==":
			return tokEQ, 2, true
		case "!=":
			return tokNE, 2, true
		}
	}
	switch s[0] {
	case '>':
		return tokGT, 1, true
	case '<':
		return tokLT, 1, true
	}
	return 0, 0, false
}

// lexField scans {ident} or {ident[±N]}. The identifier grammar is
// letters, digits and underscores only.
func lexField(s string, pos int) (token, int, bool) {
	end := strings.IndexByte(s, '}')
	if end < 0 {
		return token{}, 0, false
	}
	inner := s[1:end]
	name := inner
	var index *int

	if open := strings.IndexByte(inner, '['); open >= 0 {
		if !strings.HasSuffix(inner, "]") {
			return token{}, 0, false
		}
		name = inner[:open]
		n, err := strconv.Atoi(inner[open+1 : len(inner)-1])
		if err != nil {
			return token{}, 0, false
		}
		index = &n
	}

	if !ValidFieldName(name) {
		return token{}, 0, false
	}

	return token{typ: tokField, pos: pos, text: s[:end+1], field: name, index: index}, end + 1, true
}

// lexNumberOrDate scans a decimal number, preferring an ISO date literal
// (YYYY-MM-DD) when one starts at this offset.
func lexNumberOrDate(s string, pos int) (token, int, bool) {
	if len(s) >= 10 && isDateLiteral(s[:10]) && (len(s) == 10 || !isDigit(s[10])) {
		d, err := time.Parse("2006-01-02", s[:10])
		if err != nil {
			return token{}, 0, false
		}
		return token{typ: tokDate, pos: pos, text: s[:10], date: d}, 10, true
	}

	j := 0
	for j < len(s) && isDigit(s[j]) {
		j++
	}
	if j < len(s) && s[j] == '.' {
		j++
		for j < len(s) && isDigit(s[j]) {
			j++
		}
	}
	num, err := strconv.ParseFloat(s[:j], 64)
	if err != nil {
		return token{}, 0, false
	}
	return token{typ: tokNumber, pos: pos, text: s[:j], num: num}, j, true
}

func isDateLiteral(s string) bool {
	for i, c := range []byte(s) {
		if i == 4 || i == 7 {
			if c != '-' {
				return false
			}
		} else if !isDigit(c) {
			return false
		}
	}
	return true
}

// ValidFieldName reports whether s is a legal question field name:
// letters, digits and underscores only, non-empty.
func ValidFieldName(s string) bool {
	if s == "" {
		return false
	}
	for _, r := range s {
		if !unicode.IsLetter(r) && !unicode.IsDigit(r) && r != '_' {
			return false
		}
		if r > unicode.MaxASCII {
			return false
		}
	}
	return true
}

func isSpace(c byte) bool  { return c == ' ' || c == '\t' || c == '\n' || c == '\r' }
func isDigit(c byte) bool  { return c >= '0' && c <= '9' }
func isLetter(c byte) bool { return c >= 'a' && c <= 'z' || c >= 'A' && c <= 'Z' || c == '_' }
