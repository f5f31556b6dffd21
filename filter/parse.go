// Copyright (C) 2025 CardinalHQ, Inc
//
// This program is free software: you can redistribute it and/or modify
// it under the terms of the GNU Affero General Public License as
// published by the Free Software Foundation, version 3.
//
// This program is distributed in the hope that it will be useful,
// but WITHOUT ANY WARRANTY; without even the implied warranty of
// MERCHANTABILITY or FITNESS FOR A PARTICULAR PURPOSE. See the
// GNU Affero General Public License for more details.
//
// You should have received a copy of the GNU Affero General Public License
// along with this program. If not, see <http://www.gnu.org/licenses/>.

package filter

import (
	"fmt"
	"strconv"
	"strings"
	"unicode"
)

// Parse builds a predicate from a small text form, e.g.
//
//	id > 1
//	name = "a" and id <= 10
//	status in ("ok", "late") or not retries >= 3
//
// Comparison operators are = == != <> > >= < <=. "and" binds tighter than
// "or"; parentheses group. Literals are integers, floats, quoted strings,
// true, and false.
func Parse(input string) (*Predicate, error) {
	p := &parser{input: input}
	p.next()
	pred, err := p.parseOr()
	if err != nil {
		return nil, err
	}
	if p.tok.kind != tokEOF {
		return nil, fmt.Errorf("unexpected %q at offset %d", p.tok.text, p.tok.pos)
	}
	return pred, nil
}

type tokenKind int

const (
	tokEOF tokenKind = iota
	tokIdent
	tokNumber
	tokString
	tokOp
	tokLParen
	tokRParen
	tokComma
)

type token struct {
	kind tokenKind
	text string
	pos  int
}

type parser struct {
	input string
	pos   int
	tok   token
}

func (p *parser) next() {
	for p.pos < len(p.input) && unicode.IsSpace(rune(p.input[p.pos])) {
		p.pos++
	}
	start := p.pos
	if p.pos >= len(p.input) {
		p.tok = token{kind: tokEOF, pos: start}
		return
	}

	c := p.input[p.pos]
	switch {
	case c == '(':
		p.pos++
		p.tok = token{kind: tokLParen, text: "(", pos: start}
	case c == ')':
		p.pos++
		p.tok = token{kind: tokRParen, text: ")", pos: start}
	case c == ',':
		p.pos++
		p.tok = token{kind: tokComma, text: ",", pos: start}
	case c == '"' || c == '\'':
		quote := c
		p.pos++
		var sb strings.Builder
		for p.pos < len(p.input) && p.input[p.pos] != quote {
			if p.input[p.pos] == '\\' && p.pos+1 < len(p.input) {
				p.pos++
			}
			sb.WriteByte(p.input[p.pos])
			p.pos++
		}
		if p.pos >= len(p.input) {
			p.tok = token{kind: tokEOF, text: "unterminated string", pos: start}
			return
		}
		p.pos++
		p.tok = token{kind: tokString, text: sb.String(), pos: start}
	case strings.ContainsRune("=!<>", rune(c)):
		for p.pos < len(p.input) && strings.ContainsRune("=!<>", rune(p.input[p.pos])) {
			p.pos++
		}
		p.tok = token{kind: tokOp, text: p.input[start:p.pos], pos: start}
	case c == '-' || c == '.' || unicode.IsDigit(rune(c)):
		for p.pos < len(p.input) && (p.input[p.pos] == '-' || p.input[p.pos] == '+' ||
			p.input[p.pos] == '.' || p.input[p.pos] == 'e' || p.input[p.pos] == 'E' ||
			unicode.IsDigit(rune(p.input[p.pos]))) {
			p.pos++
		}
		p.tok = token{kind: tokNumber, text: p.input[start:p.pos], pos: start}
	default:
		for p.pos < len(p.input) {
			r := rune(p.input[p.pos])
			if !unicode.IsLetter(r) && !unicode.IsDigit(r) && r != '_' && r != '.' {
				break
			}
			p.pos++
		}
		if p.pos == start {
			p.tok = token{kind: tokEOF, text: string(c), pos: start}
			return
		}
		p.tok = token{kind: tokIdent, text: p.input[start:p.pos], pos: start}
	}
}

func (p *parser) parseOr() (*Predicate, error) {
	left, err := p.parseAnd()
	if err != nil {
		return nil, err
	}
	terms := []*Predicate{left}
	for p.tok.kind == tokIdent && strings.EqualFold(p.tok.text, "or") {
		p.next()
		right, err := p.parseAnd()
		if err != nil {
			return nil, err
		}
		terms = append(terms, right)
	}
	if len(terms) == 1 {
		return left, nil
	}
	return Or(terms...), nil
}

func (p *parser) parseAnd() (*Predicate, error) {
	left, err := p.parseFactor()
	if err != nil {
		return nil, err
	}
	terms := []*Predicate{left}
	for p.tok.kind == tokIdent && strings.EqualFold(p.tok.text, "and") {
		p.next()
		right, err := p.parseFactor()
		if err != nil {
			return nil, err
		}
		terms = append(terms, right)
	}
	if len(terms) == 1 {
		return left, nil
	}
	return And(terms...), nil
}

func (p *parser) parseFactor() (*Predicate, error) {
	switch {
	case p.tok.kind == tokIdent && strings.EqualFold(p.tok.text, "not"):
		p.next()
		child, err := p.parseFactor()
		if err != nil {
			return nil, err
		}
		return Not(child), nil

	case p.tok.kind == tokLParen:
		p.next()
		inner, err := p.parseOr()
		if err != nil {
			return nil, err
		}
		if p.tok.kind != tokRParen {
			return nil, fmt.Errorf("expected ) at offset %d", p.tok.pos)
		}
		p.next()
		return inner, nil

	case p.tok.kind == tokIdent:
		return p.parseComparison()

	default:
		return nil, fmt.Errorf("expected expression at offset %d", p.tok.pos)
	}
}

func (p *parser) parseComparison() (*Predicate, error) {
	column := p.tok.text
	p.next()

	if p.tok.kind == tokIdent && strings.EqualFold(p.tok.text, "in") {
		p.next()
		if p.tok.kind != tokLParen {
			return nil, fmt.Errorf("expected ( after in at offset %d", p.tok.pos)
		}
		p.next()
		var values []any
		for {
			v, err := p.parseLiteral()
			if err != nil {
				return nil, err
			}
			values = append(values, v)
			if p.tok.kind == tokComma {
				p.next()
				continue
			}
			break
		}
		if p.tok.kind != tokRParen {
			return nil, fmt.Errorf("expected ) at offset %d", p.tok.pos)
		}
		p.next()
		return In(column, values...), nil
	}

	if p.tok.kind != tokOp {
		return nil, fmt.Errorf("expected comparison operator after %q at offset %d", column, p.tok.pos)
	}
	op := p.tok.text
	p.next()

	value, err := p.parseLiteral()
	if err != nil {
		return nil, err
	}

	switch op {
	case "=", "==":
		return Eq(column, value), nil
	case "!=", "<>":
		return Ne(column, value), nil
	case ">":
		return Gt(column, value), nil
	case ">=":
		return Ge(column, value), nil
	case "<":
		return Lt(column, value), nil
	case "<=":
		return Le(column, value), nil
	default:
		return nil, fmt.Errorf("unknown operator %q", op)
	}
}

func (p *parser) parseLiteral() (any, error) {
	switch p.tok.kind {
	case tokString:
		s := p.tok.text
		p.next()
		return s, nil
	case tokNumber:
		text := p.tok.text
		p.next()
		if strings.ContainsAny(text, ".eE") {
			f, err := strconv.ParseFloat(text, 64)
			if err != nil {
				return nil, fmt.Errorf("invalid number %q: %w", text, err)
			}
			return f, nil
		}
		i, err := strconv.ParseInt(text, 10, 64)
		if err != nil {
			return nil, fmt.Errorf("invalid number %q: %w", text, err)
		}
		return i, nil
	case tokIdent:
		switch {
		case strings.EqualFold(p.tok.text, "true"):
			p.next()
			return true, nil
		case strings.EqualFold(p.tok.text, "false"):
			p.next()
			return false, nil
		}
		return nil, fmt.Errorf("unexpected identifier %q at offset %d", p.tok.text, p.tok.pos)
	default:
		return nil, fmt.Errorf("expected literal at offset %d", p.tok.pos)
	}
}
