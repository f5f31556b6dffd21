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

package parquetrow

import (
	"fmt"

	"github.com/parquet-go/parquet-go"
)

// NodeForValue returns a parquet.Node describing the dynamic type of v.
// Leaf nodes are optional and dictionary-encoded. Not all types are
// supported.
func NodeForValue(v any) (parquet.Node, error) {
	enc := func(n parquet.Node) parquet.Node {
		return parquet.Encoded(n, &parquet.RLEDictionary)
	}

	switch v.(type) {
	case bool:
		return parquet.Optional(parquet.Leaf(parquet.BooleanType)), nil
	case int, int64:
		return parquet.Optional(enc(parquet.Int(64))), nil
	case int32:
		return parquet.Optional(enc(parquet.Int(32))), nil
	case float32:
		return parquet.Optional(enc(parquet.Leaf(parquet.FloatType))), nil
	case float64:
		return parquet.Optional(enc(parquet.Leaf(parquet.DoubleType))), nil
	case string:
		return parquet.Optional(enc(parquet.String())), nil
	case []byte:
		return parquet.Optional(parquet.Leaf(parquet.ByteArrayType)), nil
	default:
		return nil, fmt.Errorf("unsupported type %T", v)
	}
}

// SchemaFromSample builds a schema named name from the non-nil values of a
// sample row. It is intended for map-typed rows where no schema can be
// derived by reflection, e.g. rows decoded from JSON.
func SchemaFromSample(name string, sample map[string]any) (*parquet.Schema, error) {
	nodes := make(map[string]parquet.Node, len(sample))
	for k, v := range sample {
		if v == nil {
			continue
		}
		node, err := NodeForValue(v)
		if err != nil {
			return nil, fmt.Errorf("column %s: %w", k, err)
		}
		nodes[k] = node
	}
	if len(nodes) == 0 {
		return nil, fmt.Errorf("sample row has no usable columns")
	}
	return parquet.NewSchema(name, parquet.Group(nodes)), nil
}
