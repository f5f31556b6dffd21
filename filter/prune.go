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
	"github.com/parquet-go/parquet-go"
)

// MayMatchRowGroup reports whether rows satisfying the predicate could exist
// in the given row group, judged from column-index min/max statistics. It is
// conservative: a row group is only discarded when the statistics prove no
// row can match, so there are never false negatives. Missing or unreadable
// statistics keep the group.
func (c *Compiled) MayMatchRowGroup(rg parquet.RowGroup) bool {
	return mayMatch(c.root, rg)
}

func mayMatch(n *compiledNode, rg parquet.RowGroup) bool {
	switch n.op {
	case OpAnd:
		for _, child := range n.children {
			if !mayMatch(child, rg) {
				return false
			}
		}
		return true
	case OpOr:
		for _, child := range n.children {
			if mayMatch(child, rg) {
				return true
			}
		}
		return false
	case OpNot:
		// Min/max bounds cannot prove a negation empty without exact
		// value sets, so negations never prune.
		return true
	case OpNe:
		return true
	default:
		return leafMayMatch(n, rg)
	}
}

func leafMayMatch(n *compiledNode, rg parquet.RowGroup) bool {
	chunks := rg.ColumnChunks()
	if n.colIndex < 0 || n.colIndex >= len(chunks) {
		return true
	}
	chunk := chunks[n.colIndex]
	min, max, ok := chunkBounds(chunk)
	if !ok {
		return true
	}
	typ := chunk.Type()

	switch n.op {
	case OpEq:
		v := n.lits[0].pv
		return typ.Compare(v, min) >= 0 && typ.Compare(v, max) <= 0
	case OpIn:
		for _, lit := range n.lits {
			if typ.Compare(lit.pv, min) >= 0 && typ.Compare(lit.pv, max) <= 0 {
				return true
			}
		}
		return false
	case OpGt:
		return typ.Compare(max, n.lits[0].pv) > 0
	case OpGe:
		return typ.Compare(max, n.lits[0].pv) >= 0
	case OpLt:
		return typ.Compare(min, n.lits[0].pv) < 0
	case OpLe:
		return typ.Compare(min, n.lits[0].pv) <= 0
	default:
		return true
	}
}

// chunkBounds returns the min and max values across all pages of a column
// chunk, skipping null-only pages. ok is false when the chunk carries no
// usable column index.
func chunkBounds(chunk parquet.ColumnChunk) (min, max parquet.Value, ok bool) {
	ci, err := chunk.ColumnIndex()
	if err != nil || ci == nil {
		return min, max, false
	}
	typ := chunk.Type()
	for i := 0; i < ci.NumPages(); i++ {
		if ci.NullPage(i) {
			continue
		}
		pmin := ci.MinValue(i)
		pmax := ci.MaxValue(i)
		if pmin.IsNull() || pmax.IsNull() {
			continue
		}
		if !ok {
			min, max, ok = pmin, pmax, true
			continue
		}
		if typ.Compare(pmin, min) < 0 {
			min = pmin
		}
		if typ.Compare(pmax, max) > 0 {
			max = pmax
		}
	}
	return min, max, ok
}
