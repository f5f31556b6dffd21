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
	"reflect"
	"strings"
)

// Matcher evaluates a compiled predicate against rows of one concrete Go
// type. Column names resolve to struct fields (by parquet tag, else field
// name) or to map keys when the row type is a map with string keys.
type Matcher struct {
	root    *compiledNode
	getters map[string]getter
}

type getter func(row reflect.Value) (any, bool)

// Bind builds a Matcher for the given row type. Pointer types are followed.
// It fails when a predicate column has no corresponding field in rowType.
func (c *Compiled) Bind(rowType reflect.Type) (*Matcher, error) {
	for rowType.Kind() == reflect.Pointer {
		rowType = rowType.Elem()
	}

	m := &Matcher{root: c.root, getters: make(map[string]getter)}
	if err := bindNode(c.root, rowType, m.getters); err != nil {
		return nil, err
	}
	return m, nil
}

func bindNode(n *compiledNode, rowType reflect.Type, getters map[string]getter) error {
	if n.column != "" {
		if _, done := getters[n.column]; !done {
			g, err := getterFor(rowType, n.column)
			if err != nil {
				return err
			}
			getters[n.column] = g
		}
	}
	for _, child := range n.children {
		if err := bindNode(child, rowType, getters); err != nil {
			return err
		}
	}
	return nil
}

func getterFor(rowType reflect.Type, column string) (getter, error) {
	switch rowType.Kind() {
	case reflect.Map:
		if rowType.Key().Kind() != reflect.String {
			return nil, fmt.Errorf("row type %s has non-string map keys", rowType)
		}
		key := reflect.ValueOf(column)
		return func(row reflect.Value) (any, bool) {
			v := row.MapIndex(key)
			if !v.IsValid() {
				return nil, false
			}
			iv := v.Interface()
			if iv == nil {
				return nil, false
			}
			return iv, true
		}, nil

	case reflect.Struct:
		for i := 0; i < rowType.NumField(); i++ {
			f := rowType.Field(i)
			if !f.IsExported() {
				continue
			}
			if parquetFieldName(f) == column {
				idx := i
				deref := f.Type.Kind() == reflect.Pointer
				return func(row reflect.Value) (any, bool) {
					fv := row.Field(idx)
					if deref {
						if fv.IsNil() {
							return nil, false
						}
						fv = fv.Elem()
					}
					return fv.Interface(), true
				}, nil
			}
		}
		return nil, fmt.Errorf("row type %s has no field for column %q", rowType, column)

	default:
		return nil, fmt.Errorf("row type %s is not a struct or map", rowType)
	}
}

// parquetFieldName returns the column name a struct field maps to: the first
// element of its parquet tag when present, otherwise the field name.
func parquetFieldName(f reflect.StructField) string {
	tag := f.Tag.Get("parquet")
	if tag == "" {
		return f.Name
	}
	name, _, _ := strings.Cut(tag, ",")
	if name == "" {
		return f.Name
	}
	return name
}

// Match reports whether the row satisfies the predicate. Comparisons against
// missing or type-incompatible values are false; Not inverts its child.
func (m *Matcher) Match(row any) bool {
	rv := reflect.ValueOf(row)
	for rv.Kind() == reflect.Pointer {
		rv = rv.Elem()
	}
	return m.eval(m.root, rv)
}

func (m *Matcher) eval(n *compiledNode, row reflect.Value) bool {
	switch n.op {
	case OpAnd:
		for _, child := range n.children {
			if !m.eval(child, row) {
				return false
			}
		}
		return true
	case OpOr:
		for _, child := range n.children {
			if m.eval(child, row) {
				return true
			}
		}
		return false
	case OpNot:
		return !m.eval(n.children[0], row)
	}

	val, present := m.getters[n.column](row)
	if !present {
		return false
	}

	switch n.op {
	case OpIn:
		for _, lit := range n.lits {
			if cmp, ok := compareGo(val, lit); ok && cmp == 0 {
				return true
			}
		}
		return false
	case OpEq:
		cmp, ok := compareGo(val, n.lits[0])
		return ok && cmp == 0
	case OpNe:
		cmp, ok := compareGo(val, n.lits[0])
		return ok && cmp != 0
	case OpGt:
		cmp, ok := compareGo(val, n.lits[0])
		return ok && cmp > 0
	case OpGe:
		cmp, ok := compareGo(val, n.lits[0])
		return ok && cmp >= 0
	case OpLt:
		cmp, ok := compareGo(val, n.lits[0])
		return ok && cmp < 0
	case OpLe:
		cmp, ok := compareGo(val, n.lits[0])
		return ok && cmp <= 0
	default:
		return false
	}
}
