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

// Package filter provides predicate expressions that can be pushed down into
// Parquet reads. A predicate is compiled against a file schema, used to prune
// row groups via column-index statistics, and then applied row by row so that
// reads return exactly the matching rows.
package filter

import (
	"fmt"
	"strings"

	"github.com/cespare/xxhash/v2"
)

// Op identifies a predicate node kind.
type Op uint8

const (
	OpEq Op = iota
	OpNe
	OpGt
	OpGe
	OpLt
	OpLe
	OpIn
	OpAnd
	OpOr
	OpNot
)

var opNames = map[Op]string{
	OpEq:  "eq",
	OpNe:  "ne",
	OpGt:  "gt",
	OpGe:  "ge",
	OpLt:  "lt",
	OpLe:  "le",
	OpIn:  "in",
	OpAnd: "and",
	OpOr:  "or",
	OpNot: "not",
}

// String returns the canonical lowercase name of the operator.
func (o Op) String() string {
	if n, ok := opNames[o]; ok {
		return n
	}
	return fmt.Sprintf("op(%d)", uint8(o))
}

// Predicate is an immutable filter expression tree. Leaf nodes compare a
// named column against one or more literal values; interior nodes combine
// children with and/or/not. Construct predicates with the package-level
// constructors; the zero value is not a valid predicate.
type Predicate struct {
	op       Op
	column   string
	values   []any
	children []*Predicate
}

// Eq matches rows where column equals value.
func Eq(column string, value any) *Predicate {
	return &Predicate{op: OpEq, column: column, values: []any{value}}
}

// Ne matches rows where column does not equal value.
func Ne(column string, value any) *Predicate {
	return &Predicate{op: OpNe, column: column, values: []any{value}}
}

// Gt matches rows where column is greater than value.
func Gt(column string, value any) *Predicate {
	return &Predicate{op: OpGt, column: column, values: []any{value}}
}

// Ge matches rows where column is greater than or equal to value.
func Ge(column string, value any) *Predicate {
	return &Predicate{op: OpGe, column: column, values: []any{value}}
}

// Lt matches rows where column is less than value.
func Lt(column string, value any) *Predicate {
	return &Predicate{op: OpLt, column: column, values: []any{value}}
}

// Le matches rows where column is less than or equal to value.
func Le(column string, value any) *Predicate {
	return &Predicate{op: OpLe, column: column, values: []any{value}}
}

// In matches rows where column equals any of the given values.
func In(column string, values ...any) *Predicate {
	vs := make([]any, len(values))
	copy(vs, values)
	return &Predicate{op: OpIn, column: column, values: vs}
}

// And matches rows satisfying every child predicate.
func And(children ...*Predicate) *Predicate {
	return &Predicate{op: OpAnd, children: copyChildren(children)}
}

// Or matches rows satisfying at least one child predicate.
func Or(children ...*Predicate) *Predicate {
	return &Predicate{op: OpOr, children: copyChildren(children)}
}

// Not matches rows not satisfying the child predicate.
func Not(child *Predicate) *Predicate {
	return &Predicate{op: OpNot, children: []*Predicate{child}}
}

func copyChildren(children []*Predicate) []*Predicate {
	cs := make([]*Predicate, len(children))
	copy(cs, children)
	return cs
}

// Op returns the node's operator.
func (p *Predicate) Op() Op { return p.op }

// Column returns the column name for comparison nodes, or "" for combinators.
func (p *Predicate) Column() string { return p.column }

// String renders the predicate in a canonical s-expression form, e.g.
// (and (gt id 1) (eq name "a")). Two predicates with the same structure
// always render identically, so the string form doubles as an equality key.
func (p *Predicate) String() string {
	var sb strings.Builder
	p.render(&sb)
	return sb.String()
}

func (p *Predicate) render(sb *strings.Builder) {
	sb.WriteByte('(')
	sb.WriteString(p.op.String())
	if p.column != "" {
		sb.WriteByte(' ')
		sb.WriteString(p.column)
	}
	for _, v := range p.values {
		sb.WriteByte(' ')
		renderValue(sb, v)
	}
	for _, c := range p.children {
		sb.WriteByte(' ')
		c.render(sb)
	}
	sb.WriteByte(')')
}

func renderValue(sb *strings.Builder, v any) {
	switch t := v.(type) {
	case string:
		fmt.Fprintf(sb, "%q", t)
	case []byte:
		fmt.Fprintf(sb, "%q", string(t))
	case float32:
		fmt.Fprintf(sb, "%g", t)
	case float64:
		fmt.Fprintf(sb, "%g", t)
	default:
		fmt.Fprintf(sb, "%v", t)
	}
}

// Equal reports whether two predicates have the same structure, columns, and
// literal values. Either side may be nil; two nils are equal.
func (p *Predicate) Equal(other *Predicate) bool {
	if p == nil || other == nil {
		return p == other
	}
	return p.String() == other.String()
}

// Fingerprint returns a 64-bit hash of the canonical form. Equal predicates
// have equal fingerprints.
func (p *Predicate) Fingerprint() uint64 {
	if p == nil {
		return 0
	}
	return xxhash.Sum64String(p.String())
}
