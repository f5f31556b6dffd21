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

import "errors"

// Contract-violation errors. These indicate API misuse by the caller, not
// data problems, and are returned immediately without touching the stream.
var (
	ErrReaderNotOpen     = errors.New("parquetrow: reader is not open")
	ErrReaderAlreadyOpen = errors.New("parquetrow: reader is already open")
	ErrReaderExhausted   = errors.New("parquetrow: reader has no more rows")
	ErrReaderClosed      = errors.New("parquetrow: reader is already closed")
	ErrSinkNotOpen       = errors.New("parquetrow: sink is not open")
	ErrSinkAlreadyOpen   = errors.New("parquetrow: sink is already open")
	ErrSinkClosed        = errors.New("parquetrow: sink is already closed")
)

// ErrCodecUnavailable is returned when the requested compression codec is not
// usable in this build.
var ErrCodecUnavailable = errors.New("parquetrow: compression codec not available")

// FormatError indicates that stream bytes do not form a valid Parquet file of
// the expected schema, or that the schema cannot be materialized for writing.
// Phase identifies the failing step: open, read, write, or close.
type FormatError struct {
	Phase string
	Err   error
}

func (e *FormatError) Error() string {
	return "parquetrow: " + e.Phase + ": " + e.Err.Error()
}

func (e *FormatError) Unwrap() error { return e.Err }

// FilterError indicates that a predicate could not be translated for the
// file being opened, e.g. an unknown column or an uncoercible literal. It is
// surfaced from Reader.Open before any row is produced.
type FilterError struct {
	Err error
}

func (e *FilterError) Error() string {
	return "parquetrow: filter: " + e.Err.Error()
}

func (e *FilterError) Unwrap() error { return e.Err }
