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
	"math"

	"github.com/parquet-go/parquet-go"
)

// Compiled is a predicate resolved against a concrete file schema. Column
// names are bound to leaf column indexes and literals are coerced to the
// column's physical type, so row-group pruning and row evaluation need no
// further type negotiation.
type Compiled struct {
	pred *Predicate
	root *compiledNode
}

type compiledNode struct {
	op       Op
	column   string
	colIndex int
	kind     parquet.Kind
	lits     []literal
	children []*compiledNode
}

// literal holds one comparison operand in two representations: a normalized
// Go value for row evaluation and a parquet.Value of the column's physical
// kind for statistics comparison.
type literal struct {
	goVal any
	pv    parquet.Value
}

// Compile resolves pred against schema. It fails if a referenced column does
// not exist as a leaf in the schema, or if a literal cannot be coerced to the
// column's physical type.
func Compile(pred *Predicate, schema *parquet.Schema) (*Compiled, error) {
	if pred == nil {
		return nil, fmt.Errorf("predicate is nil")
	}
	root, err := compileNode(pred, schema)
	if err != nil {
		return nil, err
	}
	return &Compiled{pred: pred, root: root}, nil
}

// Predicate returns the source predicate.
func (c *Compiled) Predicate() *Predicate { return c.pred }

func compileNode(p *Predicate, schema *parquet.Schema) (*compiledNode, error) {
	n := &compiledNode{op: p.op, column: p.column, colIndex: -1}

	switch p.op {
	case OpAnd, OpOr, OpNot:
		if len(p.children) == 0 {
			return nil, fmt.Errorf("%s predicate has no children", p.op)
		}
		for _, child := range p.children {
			cn, err := compileNode(child, schema)
			if err != nil {
				return nil, err
			}
			n.children = append(n.children, cn)
		}
		return n, nil

	case OpEq, OpNe, OpGt, OpGe, OpLt, OpLe, OpIn:
		leaf, ok := schema.Lookup(p.column)
		if !ok {
			return nil, fmt.Errorf("column %q not found in schema %q", p.column, schema.Name())
		}
		n.colIndex = leaf.ColumnIndex
		n.kind = leaf.Node.Type().Kind()
		if len(p.values) == 0 {
			return nil, fmt.Errorf("%s predicate on column %q has no values", p.op, p.column)
		}
		for _, v := range p.values {
			lit, err := coerceLiteral(v, n.kind)
			if err != nil {
				return nil, fmt.Errorf("column %q: %w", p.column, err)
			}
			n.lits = append(n.lits, lit)
		}
		return n, nil

	default:
		return nil, fmt.Errorf("unknown predicate operator %s", p.op)
	}
}

// coerceLiteral converts v to the normalized Go representation and the
// parquet physical representation for the given column kind.
func coerceLiteral(v any, kind parquet.Kind) (literal, error) {
	switch kind {
	case parquet.Boolean:
		b, ok := v.(bool)
		if !ok {
			return literal{}, fmt.Errorf("cannot use %T literal with boolean column", v)
		}
		return literal{goVal: b, pv: parquet.ValueOf(b)}, nil

	case parquet.Int32:
		i, ok := asInt64(v)
		if !ok {
			return literal{}, fmt.Errorf("cannot use %T literal with int32 column", v)
		}
		return literal{goVal: i, pv: parquet.ValueOf(int32(i))}, nil

	case parquet.Int64:
		i, ok := asInt64(v)
		if !ok {
			return literal{}, fmt.Errorf("cannot use %T literal with int64 column", v)
		}
		return literal{goVal: i, pv: parquet.ValueOf(i)}, nil

	case parquet.Float:
		f, ok := asFloat64(v)
		if !ok {
			return literal{}, fmt.Errorf("cannot use %T literal with float column", v)
		}
		return literal{goVal: f, pv: parquet.ValueOf(float32(f))}, nil

	case parquet.Double:
		f, ok := asFloat64(v)
		if !ok {
			return literal{}, fmt.Errorf("cannot use %T literal with double column", v)
		}
		return literal{goVal: f, pv: parquet.ValueOf(f)}, nil

	case parquet.ByteArray, parquet.FixedLenByteArray:
		s, ok := asString(v)
		if !ok {
			return literal{}, fmt.Errorf("cannot use %T literal with byte array column", v)
		}
		return literal{goVal: s, pv: parquet.ValueOf([]byte(s))}, nil

	default:
		return literal{}, fmt.Errorf("unsupported column kind %s", kind)
	}
}

func asInt64(v any) (int64, bool) {
	switch t := v.(type) {
	case int:
		return int64(t), true
	case int8:
		return int64(t), true
	case int16:
		return int64(t), true
	case int32:
		return int64(t), true
	case int64:
		return t, true
	case uint:
		return int64(t), true
	case uint8:
		return int64(t), true
	case uint16:
		return int64(t), true
	case uint32:
		return int64(t), true
	case uint64:
		return int64(t), true
	default:
		return 0, false
	}
}

func asFloat64(v any) (float64, bool) {
	switch t := v.(type) {
	case float32:
		return float64(t), true
	case float64:
		return t, true
	default:
		if i, ok := asInt64(v); ok {
			return float64(i), true
		}
		return 0, false
	}
}

func asString(v any) (string, bool) {
	switch t := v.(type) {
	case string:
		return t, true
	case []byte:
		return string(t), true
	default:
		return "", false
	}
}

// compareGo compares a normalized row value against a literal's normalized
// Go value. Both sides must already be in the same family (bool, int64,
// float64, or string). The second return is false when the row value is
// missing or of an incompatible type.
func compareGo(rowVal any, lit literal) (int, bool) {
	switch lv := lit.goVal.(type) {
	case bool:
		rb, ok := rowVal.(bool)
		if !ok {
			return 0, false
		}
		switch {
		case rb == lv:
			return 0, true
		case !rb:
			return -1, true
		default:
			return 1, true
		}
	case int64:
		ri, ok := asInt64(rowVal)
		if !ok {
			return 0, false
		}
		switch {
		case ri < lv:
			return -1, true
		case ri > lv:
			return 1, true
		default:
			return 0, true
		}
	case float64:
		rf, ok := asFloat64(rowVal)
		if !ok {
			return 0, false
		}
		// NaN is unordered: no comparison against it can hold.
		if math.IsNaN(rf) || math.IsNaN(lv) {
			return 0, false
		}
		switch {
		case rf < lv:
			return -1, true
		case rf > lv:
			return 1, true
		default:
			return 0, true
		}
	case string:
		rs, ok := asString(rowVal)
		if !ok {
			return 0, false
		}
		switch {
		case rs < lv:
			return -1, true
		case rs > lv:
			return 1, true
		default:
			return 0, true
		}
	default:
		return 0, false
	}
}
