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

// Package parquetrow layers typed row readers and writers on top of Parquet
// streams. An Adapter captures immutable configuration (compression codec,
// opaque writer properties, optional filter predicate) and manufactures
// Readers and Sinks bound to a row type. Readers pull rows one ahead so
// callers can always ask whether another row exists without consuming it;
// Sinks push rows in call order into a finalized Parquet file.
//
// The adapter never touches file paths: Readers bind to an io.ReaderAt and
// Sinks to an io.Writer supplied by the caller, who also owns the lifetime
// of those streams outside of the read or write session.
package parquetrow
