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
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/cardinalhq/rowio/filter"
)

func TestAdapterDefaults(t *testing.T) {
	adapter, err := New[event]()
	require.NoError(t, err)

	assert.Equal(t, Zstd, adapter.Compression())
	assert.Nil(t, adapter.Predicate())
	assert.Empty(t, adapter.Properties())
	assert.Equal(t, "event", adapter.SchemaName())
}

func TestAdapterEqualityIgnoresPropertyOrder(t *testing.T) {
	a, err := New[event](
		WithProperty("k1", "v1"),
		WithProperty("k2", "v2"),
		WithProperty("k3", "v3"),
	)
	require.NoError(t, err)

	b, err := New[event](
		WithProperty("k3", "v3"),
		WithProperty("k1", "v1"),
		WithProperty("k2", "v2"),
	)
	require.NoError(t, err)

	assert.True(t, a.Equal(b))
	assert.True(t, b.Equal(a))
	assert.Equal(t, a.Hash(), b.Hash())
}

func TestAdapterEqualityStructural(t *testing.T) {
	base, err := New[event](WithProperty("k", "v"))
	require.NoError(t, err)

	t.Run("reflexive", func(t *testing.T) {
		assert.True(t, base.Equal(base))
	})

	t.Run("different_compression", func(t *testing.T) {
		other, err := New[event](WithCompression(Snappy), WithProperty("k", "v"))
		require.NoError(t, err)
		assert.False(t, base.Equal(other))
		assert.NotEqual(t, base.Hash(), other.Hash())
	})

	t.Run("different_property_value", func(t *testing.T) {
		other, err := New[event](WithProperty("k", "other"))
		require.NoError(t, err)
		assert.False(t, base.Equal(other))
		assert.NotEqual(t, base.Hash(), other.Hash())
	})

	t.Run("extra_property", func(t *testing.T) {
		other, err := New[event](WithProperty("k", "v"), WithProperty("k2", "v2"))
		require.NoError(t, err)
		assert.False(t, base.Equal(other))
	})

	t.Run("predicate_differs", func(t *testing.T) {
		other, err := NewFiltered[event](filter.Gt("id", int64(1)), WithProperty("k", "v"))
		require.NoError(t, err)
		assert.False(t, base.Equal(other))
		assert.NotEqual(t, base.Hash(), other.Hash())
	})

	t.Run("same_predicate_rebuilt", func(t *testing.T) {
		p1, err := NewFiltered[event](filter.And(filter.Gt("id", int64(1)), filter.Eq("name", "a")))
		require.NoError(t, err)
		p2, err := NewFiltered[event](filter.And(filter.Gt("id", int64(1)), filter.Eq("name", "a")))
		require.NoError(t, err)
		assert.True(t, p1.Equal(p2))
		assert.Equal(t, p1.Hash(), p2.Hash())
	})

	t.Run("nil_other", func(t *testing.T) {
		assert.False(t, base.Equal(nil))
	})
}

func TestAdapterPropertiesCopied(t *testing.T) {
	props := map[string]string{"k": "v"}
	adapter, err := New[event](WithProperties(props))
	require.NoError(t, err)

	// Mutating the source map or the returned copy never changes the adapter.
	props["k"] = "mutated"
	got := adapter.Properties()
	assert.Equal(t, map[string]string{"k": "v"}, got)
	got["k"] = "mutated"
	assert.Equal(t, map[string]string{"k": "v"}, adapter.Properties())
}

func TestAdapterDescribe(t *testing.T) {
	adapter, err := New[event](WithCompression(Gzip), WithProperty("k", "v"))
	require.NoError(t, err)

	attrs := adapter.Describe()
	require.Len(t, attrs, 3)
	assert.Equal(t, "compression.codec.name", string(attrs[0].Key))
	assert.Equal(t, "gzip", attrs[0].Value.AsString())
	assert.Equal(t, "schema.name", string(attrs[1].Key))
	assert.Equal(t, "event", attrs[1].Value.AsString())
	assert.Equal(t, "properties.count", string(attrs[2].Key))
	assert.EqualValues(t, 1, attrs[2].Value.AsInt64())
}

func TestAdapterDescribeMapRows(t *testing.T) {
	adapter, err := New[map[string]any]()
	require.NoError(t, err)

	attrs := adapter.Describe()
	require.Len(t, attrs, 3)
	assert.Equal(t, "(from file)", attrs[1].Value.AsString())
}

func TestAdapterUnknownCodec(t *testing.T) {
	_, err := New[event](WithCompression(Compression(99)))
	assert.ErrorIs(t, err, ErrCodecUnavailable)
}
