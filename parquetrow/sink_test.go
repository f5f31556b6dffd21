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
	"errors"
	"testing"

	"github.com/parquet-go/parquet-go"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestSinkStateViolations(t *testing.T) {
	adapter, err := New[event]()
	require.NoError(t, err)
	ctx := context.Background()

	t.Run("write_before_open", func(t *testing.T) {
		sink := adapter.NewSink()
		assert.ErrorIs(t, sink.Write(event{ID: 1}), ErrSinkNotOpen)
	})

	t.Run("close_before_open", func(t *testing.T) {
		sink := adapter.NewSink()
		assert.ErrorIs(t, sink.Close(ctx), ErrSinkNotOpen)
	})

	t.Run("double_open", func(t *testing.T) {
		sink := adapter.NewSink()
		var buf bytes.Buffer
		require.NoError(t, sink.Open(&buf))
		assert.ErrorIs(t, sink.Open(&buf), ErrSinkAlreadyOpen)
		require.NoError(t, sink.Close(ctx))
	})

	t.Run("double_close", func(t *testing.T) {
		sink := adapter.NewSink()
		var buf bytes.Buffer
		require.NoError(t, sink.Open(&buf))
		require.NoError(t, sink.Close(ctx))
		assert.ErrorIs(t, sink.Close(ctx), ErrSinkClosed)
	})

	t.Run("write_after_close", func(t *testing.T) {
		sink := adapter.NewSink()
		var buf bytes.Buffer
		require.NoError(t, sink.Open(&buf))
		require.NoError(t, sink.Close(ctx))
		assert.ErrorIs(t, sink.Write(event{ID: 1}), ErrSinkClosed)
	})
}

func TestSinkMapRowsRequireSchema(t *testing.T) {
	adapter, err := New[map[string]any]()
	require.NoError(t, err)

	sink := adapter.NewSink()
	var buf bytes.Buffer
	err = sink.Open(&buf)

	var formatErr *FormatError
	require.ErrorAs(t, err, &formatErr)
	assert.Equal(t, "open", formatErr.Phase)
}

func TestSinkMapRowsWithSchema(t *testing.T) {
	schema, err := SchemaFromSample("events", map[string]any{
		"id":   int64(0),
		"name": "",
	})
	require.NoError(t, err)

	adapter, err := New[map[string]any](WithSchema(schema))
	require.NoError(t, err)

	ctx := context.Background()
	var buf bytes.Buffer
	sink := adapter.NewSink()
	require.NoError(t, sink.Open(&buf))
	require.NoError(t, sink.Write(map[string]any{"id": int64(1), "name": "a"}))
	require.NoError(t, sink.Write(map[string]any{"id": int64(2), "name": "b"}))
	require.NoError(t, sink.Close(ctx))
	assert.EqualValues(t, 2, sink.TotalRowsWritten())

	reader := adapter.NewReader()
	require.NoError(t, reader.Open(ctx, bytes.NewReader(buf.Bytes()), int64(buf.Len())))
	row, err := reader.Next(ctx)
	require.NoError(t, err)
	assert.Equal(t, int64(1), row["id"])
	assert.Equal(t, "a", row["name"])
	require.NoError(t, reader.Close())
}

func TestSinkFooterMetadata(t *testing.T) {
	adapter, err := New[event](
		WithProperty("written.by", "rowio-test"),
		WithProperty("pipeline.stage", "unit"),
	)
	require.NoError(t, err)

	data := writeEvents(t, adapter, []event{{ID: 1, Name: "a"}})

	pf, err := parquet.OpenFile(bytes.NewReader(data), int64(len(data)))
	require.NoError(t, err)

	v, ok := pf.Lookup("written.by")
	require.True(t, ok)
	assert.Equal(t, "rowio-test", v)

	v, ok = pf.Lookup("pipeline.stage")
	require.True(t, ok)
	assert.Equal(t, "unit", v)
}

func TestSinkTuningProperties(t *testing.T) {
	t.Run("row_group_split", func(t *testing.T) {
		adapter, err := New[event](WithProperty(PropMaxRowGroupRows, "5"))
		require.NoError(t, err)

		rows := make([]event, 20)
		for i := range rows {
			rows[i] = event{ID: int64(i), Name: "x"}
		}
		data := writeEvents(t, adapter, rows)

		pf, err := parquet.OpenFile(bytes.NewReader(data), int64(len(data)))
		require.NoError(t, err)
		assert.Len(t, pf.RowGroups(), 4)
	})

	t.Run("invalid_value", func(t *testing.T) {
		adapter, err := New[event](WithProperty(PropPageBufferSize, "not-a-number"))
		require.NoError(t, err)

		sink := adapter.NewSink()
		var buf bytes.Buffer
		var formatErr *FormatError
		assert.ErrorAs(t, sink.Open(&buf), &formatErr)
	})
}

// failingWriter accepts up to limit bytes, then fails every write.
type failingWriter struct {
	limit   int
	written int
}

func (w *failingWriter) Write(p []byte) (int, error) {
	if w.written+len(p) > w.limit {
		return 0, errors.New("disk full")
	}
	w.written += len(p)
	return len(p), nil
}

func TestSinkReleaseOnWriteFailure(t *testing.T) {
	adapter, err := New[event]()
	require.NoError(t, err)

	sink := adapter.NewSink()
	require.NoError(t, sink.Open(&failingWriter{limit: 64}))

	// Column data is buffered, so writes may succeed until the flush hits
	// the failing stream. Either way the failure must surface by Close.
	var failed error
	for i := 0; i < 5000; i++ {
		if failed = sink.Write(event{ID: int64(i), Name: "payload-payload-payload"}); failed != nil {
			break
		}
	}
	closeErr := sink.Close(context.Background())
	require.Error(t, errors.Join(failed, closeErr))

	// The sink released its writer exactly once; further use is a
	// contract violation, not a crash or a second flush.
	assert.ErrorIs(t, sink.Write(event{ID: 1}), ErrSinkClosed)
	assert.ErrorIs(t, sink.Close(context.Background()), ErrSinkClosed)
}
