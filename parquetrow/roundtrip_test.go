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
	"bytes"
	"context"
	"fmt"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/cardinalhq/rowio/filter"
)

type event struct {
	ID   int64  `parquet:"id"`
	Name string `parquet:"name"`
}

// writeEvents runs rows through a fresh sink of the adapter and returns the
// finished file bytes.
func writeEvents(t *testing.T, adapter *Adapter[event], rows []event) []byte {
	t.Helper()

	var buf bytes.Buffer
	sink := adapter.NewSink()
	require.NoError(t, sink.Open(&buf))
	for _, row := range rows {
		require.NoError(t, sink.Write(row))
	}
	require.NoError(t, sink.Close(context.Background()))
	return buf.Bytes()
}

// readEvents drains a fresh reader of the adapter over the given file bytes.
func readEvents(t *testing.T, adapter *Adapter[event], data []byte) []event {
	t.Helper()

	ctx := context.Background()
	reader := adapter.NewReader()
	require.NoError(t, reader.Open(ctx, bytes.NewReader(data), int64(len(data))))
	defer func() { require.NoError(t, reader.Close()) }()

	var out []event
	for reader.HasNext() {
		row, err := reader.Next(ctx)
		require.NoError(t, err)
		out = append(out, row)
	}
	return out
}

func TestRoundTripZstd(t *testing.T) {
	adapter, err := New[event](WithCompression(Zstd))
	require.NoError(t, err)

	rows := []event{
		{ID: 1, Name: "a"},
		{ID: 2, Name: "b"},
		{ID: 3, Name: "c"},
	}
	data := writeEvents(t, adapter, rows)

	assert.Equal(t, rows, readEvents(t, adapter, data))

	filtered, err := NewFiltered[event](filter.Gt("id", int64(1)))
	require.NoError(t, err)
	assert.Equal(t, rows[1:], readEvents(t, filtered, data))
}

func TestRoundTripAllCodecs(t *testing.T) {
	rows := make([]event, 50)
	for i := range rows {
		rows[i] = event{ID: int64(i), Name: fmt.Sprintf("row-%02d", i)}
	}

	for _, codec := range []Compression{Uncompressed, Snappy, Gzip, Zstd, Lz4} {
		t.Run(codec.String(), func(t *testing.T) {
			adapter, err := New[event](WithCompression(codec))
			require.NoError(t, err)

			data := writeEvents(t, adapter, rows)
			assert.Equal(t, rows, readEvents(t, adapter, data))
		})
	}
}

func TestRoundTripEmpty(t *testing.T) {
	adapter, err := New[event]()
	require.NoError(t, err)

	data := writeEvents(t, adapter, nil)

	ctx := context.Background()
	reader := adapter.NewReader()
	require.NoError(t, reader.Open(ctx, bytes.NewReader(data), int64(len(data))))
	assert.False(t, reader.HasNext())

	_, err = reader.Next(ctx)
	assert.ErrorIs(t, err, ErrReaderExhausted)
	require.NoError(t, reader.Close())
}

func TestPredicateSoundness(t *testing.T) {
	rows := make([]event, 100)
	for i := range rows {
		rows[i] = event{ID: int64(i), Name: fmt.Sprintf("row-%02d", i%7)}
	}

	adapter, err := New[event]()
	require.NoError(t, err)
	data := writeEvents(t, adapter, rows)

	tests := []struct {
		pred  *filter.Predicate
		match func(event) bool
	}{
		{filter.Gt("id", int64(50)), func(e event) bool { return e.ID > 50 }},
		{filter.Le("id", int64(10)), func(e event) bool { return e.ID <= 10 }},
		{filter.Eq("name", "row-03"), func(e event) bool { return e.Name == "row-03" }},
		{
			filter.And(filter.Ge("id", int64(20)), filter.Lt("id", int64(40))),
			func(e event) bool { return e.ID >= 20 && e.ID < 40 },
		},
		{
			filter.Or(filter.Eq("id", int64(0)), filter.Eq("id", int64(99))),
			func(e event) bool { return e.ID == 0 || e.ID == 99 },
		},
		{filter.Not(filter.Eq("name", "row-00")), func(e event) bool { return e.Name != "row-00" }},
		{
			filter.In("id", int64(3), int64(77), int64(500)),
			func(e event) bool { return e.ID == 3 || e.ID == 77 || e.ID == 500 },
		},
	}

	for _, tt := range tests {
		t.Run(tt.pred.String(), func(t *testing.T) {
			filtered, err := NewFiltered[event](tt.pred)
			require.NoError(t, err)

			var want []event
			for _, row := range rows {
				if tt.match(row) {
					want = append(want, row)
				}
			}
			assert.Equal(t, want, readEvents(t, filtered, data))
		})
	}
}

func TestRowGroupPruning(t *testing.T) {
	rows := make([]event, 100)
	for i := range rows {
		rows[i] = event{ID: int64(i), Name: fmt.Sprintf("row-%02d", i)}
	}

	adapter, err := New[event](WithProperty(PropMaxRowGroupRows, "10"))
	require.NoError(t, err)
	data := writeEvents(t, adapter, rows)

	filtered, err := NewFiltered[event](filter.Ge("id", int64(95)))
	require.NoError(t, err)

	ctx := context.Background()
	reader := filtered.NewReader()
	require.NoError(t, reader.Open(ctx, bytes.NewReader(data), int64(len(data))))

	var got []event
	for reader.HasNext() {
		row, err := reader.Next(ctx)
		require.NoError(t, err)
		got = append(got, row)
	}
	require.NoError(t, reader.Close())

	assert.Equal(t, rows[95:], got)
	assert.EqualValues(t, 9, reader.RowGroupsPruned())
	assert.EqualValues(t, 5, reader.TotalRowsRead())
}
