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
	"context"
	"errors"
	"fmt"
	"io"
	"sort"
	"strconv"

	"github.com/parquet-go/parquet-go"
)

// Writer tuning properties recognized by Sink.Open. Unrecognized properties
// are recorded verbatim as key-value metadata in the file footer.
const (
	PropPageBufferSize  = "parquet.page.buffer.size"
	PropMaxRowGroupRows = "parquet.rowgroup.max.rows"
)

const (
	defaultPageBufferSize  = 32 * 1024
	defaultMaxRowGroupRows = 80_000
)

type sinkState int

const (
	sinkUnopened sinkState = iota
	sinkOpen
	sinkClosed
)

// Sink pushes typed rows into a single Parquet stream. Rows land in the file
// in Write call order. A Sink is bound to exactly one stream for its whole
// life and must be used by a single goroutine.
//
// Lifecycle: Open once, Write any number of rows, then Close exactly once to
// finalize the footer, on every exit path including errors.
type Sink[T any] struct {
	compression Compression
	props       map[string]string
	schema      *parquet.Schema

	state sinkState
	w     *parquet.GenericWriter[T]
	rows  int64
}

// Open binds the sink to dst and constructs the native writer with the
// captured schema, codec, and properties.
func (s *Sink[T]) Open(dst io.Writer) error {
	switch s.state {
	case sinkOpen:
		return ErrSinkAlreadyOpen
	case sinkClosed:
		return ErrSinkClosed
	}
	if s.schema == nil {
		return &FormatError{
			Phase: "open",
			Err:   errors.New("no schema derivable for row type, configure one with WithSchema"),
		}
	}

	opts, err := s.writerOptions()
	if err != nil {
		return &FormatError{Phase: "open", Err: err}
	}

	s.w = parquet.NewGenericWriter[T](dst, opts...)
	s.state = sinkOpen
	return nil
}

func (s *Sink[T]) writerOptions() ([]parquet.WriterOption, error) {
	pageBufferSize := defaultPageBufferSize
	maxRowGroupRows := int64(defaultMaxRowGroupRows)

	var metaKeys []string
	for k := range s.props {
		switch k {
		case PropPageBufferSize:
			n, err := strconv.Atoi(s.props[k])
			if err != nil || n <= 0 {
				return nil, fmt.Errorf("invalid %s value %q", k, s.props[k])
			}
			pageBufferSize = n
		case PropMaxRowGroupRows:
			n, err := strconv.ParseInt(s.props[k], 10, 64)
			if err != nil || n <= 0 {
				return nil, fmt.Errorf("invalid %s value %q", k, s.props[k])
			}
			maxRowGroupRows = n
		default:
			metaKeys = append(metaKeys, k)
		}
	}
	sort.Strings(metaKeys)

	opts := []parquet.WriterOption{
		s.schema,
		parquet.Compression(s.compression.codec()),
		parquet.PageBufferSize(pageBufferSize),
		parquet.MaxRowsPerRowGroup(maxRowGroupRows),
	}
	for _, k := range metaKeys {
		opts = append(opts, parquet.KeyValueMetadata(k, s.props[k]))
	}
	return opts, nil
}

// Write appends one row. Must be called between Open and Close.
func (s *Sink[T]) Write(row T) error {
	switch s.state {
	case sinkUnopened:
		return ErrSinkNotOpen
	case sinkClosed:
		return ErrSinkClosed
	}

	if _, err := s.w.Write([]T{row}); err != nil {
		return &FormatError{Phase: "write", Err: err}
	}
	s.rows++
	return nil
}

// Close flushes buffered column data, writes the footer, and releases the
// native writer. It must be called exactly once after Open, even when an
// upstream error cut the row stream short; a second call is a contract
// violation. The stream itself remains owned by the caller.
func (s *Sink[T]) Close(ctx context.Context) error {
	switch s.state {
	case sinkUnopened:
		return ErrSinkNotOpen
	case sinkClosed:
		return ErrSinkClosed
	}
	s.state = sinkClosed

	err := s.w.Close()
	s.w = nil
	rowsWrittenCounter.Add(ctx, s.rows)
	if err != nil {
		return &FormatError{Phase: "close", Err: err}
	}
	return nil
}

// TotalRowsWritten returns the number of rows accepted by Write so far.
func (s *Sink[T]) TotalRowsWritten() int64 { return s.rows }
