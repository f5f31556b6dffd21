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
	"io"
	"reflect"

	"github.com/parquet-go/parquet-go"

	"github.com/cardinalhq/rowio/filter"
)

type readerState int

const (
	readerUnopened readerState = iota
	readerReady
	readerExhausted
	readerClosed
)

// Reader pulls typed rows out of a single Parquet stream. It holds one row
// of lookahead so HasNext answers without side effects; Next returns the
// held row and eagerly refills. A Reader is bound to exactly one stream for
// its whole life and must be used by a single goroutine.
//
// Lifecycle: Open once, iterate with HasNext/Next, then Close exactly once,
// on every exit path including errors.
type Reader[T any] struct {
	pred *filter.Predicate

	state     readerState
	pf        *parquet.File
	groups    []parquet.RowGroup
	groupIdx  int
	cur       *parquet.GenericReader[T]
	matcher   *filter.Matcher
	lookahead T
	makeRow   func() T
	mapRows   bool
	rowsRead  int64
	pruned    int64
}

// Open binds the reader to src and prepares the first row. The predicate, if
// any, is compiled against the file's schema here; row groups whose column
// statistics prove no match are skipped entirely. A zero-row file opens
// successfully with HasNext false.
func (r *Reader[T]) Open(ctx context.Context, src io.ReaderAt, size int64) error {
	switch r.state {
	case readerClosed:
		return ErrReaderClosed
	case readerReady, readerExhausted:
		return ErrReaderAlreadyOpen
	}

	pf, err := parquet.OpenFile(src, size)
	if err != nil {
		return &FormatError{Phase: "open", Err: err}
	}
	r.pf = pf
	r.makeRow, r.mapRows = rowAllocator[T]()

	groups := pf.RowGroups()
	if r.pred != nil {
		compiled, err := filter.Compile(r.pred, pf.Schema())
		if err != nil {
			return &FilterError{Err: err}
		}
		var zero T
		matcher, err := compiled.Bind(reflect.TypeOf(&zero).Elem())
		if err != nil {
			return &FilterError{Err: err}
		}
		r.matcher = matcher

		kept := groups[:0]
		for _, rg := range groups {
			if compiled.MayMatchRowGroup(rg) {
				kept = append(kept, rg)
			} else {
				r.pruned++
			}
		}
		groups = kept
		if r.pruned > 0 {
			groupsPrunedCounter.Add(ctx, r.pruned)
		}
	}
	r.groups = groups

	r.state = readerReady
	if err := r.advance(ctx); err != nil {
		r.state = readerExhausted
		return err
	}
	return nil
}

// rowAllocator returns a constructor for fresh row values and whether the
// row type is a map. Map row types need a non-nil map for the decoder to
// populate; everything else starts from the zero value.
func rowAllocator[T any]() (func() T, bool) {
	var zero T
	t := reflect.TypeOf(&zero).Elem()
	if t.Kind() != reflect.Map {
		return func() T { var v T; return v }, false
	}
	return func() T {
		return reflect.MakeMap(t).Interface().(T)
	}, true
}

// HasNext reports whether a row is currently buffered. It never blocks and
// never touches the stream.
func (r *Reader[T]) HasNext() bool {
	return r.state == readerReady
}

// Next returns the buffered row and refills the lookahead with one more
// native read. Calling Next when HasNext is false is a contract violation.
func (r *Reader[T]) Next(ctx context.Context) (T, error) {
	var zero T
	switch r.state {
	case readerUnopened:
		return zero, ErrReaderNotOpen
	case readerExhausted:
		return zero, ErrReaderExhausted
	case readerClosed:
		return zero, ErrReaderClosed
	}

	row := r.lookahead
	r.rowsRead++
	rowsReadCounter.Add(ctx, 1)

	if err := r.advance(ctx); err != nil {
		r.state = readerExhausted
		return zero, err
	}
	return row, nil
}

// advance pulls rows from the current row group until one passes the
// predicate or the file is exhausted, moving to the next kept row group as
// each one drains.
func (r *Reader[T]) advance(ctx context.Context) error {
	for {
		if r.cur == nil {
			if r.groupIdx >= len(r.groups) {
				var zero T
				r.lookahead = zero
				r.state = readerExhausted
				return nil
			}
			r.cur = r.openGroup(r.groups[r.groupIdx])
			r.groupIdx++
		}

		rows := []T{r.makeRow()}
		n, err := r.cur.Read(rows)

		matched := false
		if n > 0 {
			if r.matcher == nil || r.matcher.Match(rows[0]) {
				matched = true
			} else {
				rowsFilteredCounter.Add(ctx, 1)
			}
		}

		if err != nil && !errors.Is(err, io.EOF) {
			return &FormatError{Phase: "read", Err: err}
		}
		if errors.Is(err, io.EOF) || n == 0 {
			cerr := r.cur.Close()
			r.cur = nil
			if cerr != nil {
				return &FormatError{Phase: "read", Err: cerr}
			}
		}
		if matched {
			r.lookahead = rows[0]
			r.state = readerReady
			return nil
		}
	}
}

// openGroup builds the native reader for one row group. Map row types have
// no schema of their own, so the file's schema drives reconstruction; for
// struct row types the schema is derived from T.
func (r *Reader[T]) openGroup(rg parquet.RowGroup) *parquet.GenericReader[T] {
	if r.mapRows {
		return parquet.NewGenericRowGroupReader[T](rg, r.pf.Schema())
	}
	return parquet.NewGenericRowGroupReader[T](rg)
}

// Close releases the native reader. It must be called exactly once after a
// successful Open; a second call is a contract violation.
func (r *Reader[T]) Close() error {
	switch r.state {
	case readerUnopened:
		return ErrReaderNotOpen
	case readerClosed:
		return ErrReaderClosed
	}
	r.state = readerClosed

	var err error
	if r.cur != nil {
		err = r.cur.Close()
		r.cur = nil
	}
	r.pf = nil
	r.groups = nil
	if err != nil {
		return &FormatError{Phase: "close", Err: err}
	}
	return nil
}

// TotalRowsRead returns the number of rows returned by Next so far.
func (r *Reader[T]) TotalRowsRead() int64 { return r.rowsRead }

// RowGroupsPruned returns the number of row groups skipped via column
// statistics during Open.
func (r *Reader[T]) RowGroupsPruned() int64 { return r.pruned }
