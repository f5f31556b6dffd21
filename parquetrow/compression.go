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
	"fmt"
	"sync"

	"github.com/parquet-go/parquet-go"
	"github.com/parquet-go/parquet-go/compress"
)

// Compression identifies the codec used for column chunk data.
type Compression int

const (
	Uncompressed Compression = iota
	Snappy
	Gzip
	Zstd
	Lz4
)

// DefaultCompression is used when an adapter is built without an explicit
// codec.
const DefaultCompression = Zstd

var compressionNames = map[Compression]string{
	Uncompressed: "uncompressed",
	Snappy:       "snappy",
	Gzip:         "gzip",
	Zstd:         "zstd",
	Lz4:          "lz4",
}

// String returns the canonical lowercase codec name.
func (c Compression) String() string {
	if n, ok := compressionNames[c]; ok {
		return n
	}
	return fmt.Sprintf("compression(%d)", int(c))
}

// ParseCompression maps a codec name to its Compression value. Matching is
// exact on the canonical lowercase names.
func ParseCompression(name string) (Compression, error) {
	for c, n := range compressionNames {
		if n == name {
			return c, nil
		}
	}
	return Uncompressed, fmt.Errorf("parquetrow: unknown compression codec %q", name)
}

func (c Compression) codec() compress.Codec {
	switch c {
	case Uncompressed:
		return &parquet.Uncompressed
	case Snappy:
		return &parquet.Snappy
	case Gzip:
		return &parquet.Gzip
	case Zstd:
		return &parquet.Zstd
	case Lz4:
		return &parquet.Lz4Raw
	default:
		return nil
	}
}

var codecChecks sync.Map // Compression -> *codecCheck

type codecCheck struct {
	once sync.Once
	err  error
}

// ensureCodec verifies once per process that the codec can round-trip data.
// The result is cached, so repeated adapter construction does not repeat the
// probe.
func ensureCodec(c Compression) error {
	v, _ := codecChecks.LoadOrStore(c, &codecCheck{})
	check := v.(*codecCheck)
	check.once.Do(func() {
		codec := c.codec()
		if codec == nil {
			check.err = fmt.Errorf("%w: %s", ErrCodecUnavailable, c)
			return
		}
		probe := []byte("parquetrow codec probe")
		enc, err := codec.Encode(nil, probe)
		if err != nil {
			check.err = fmt.Errorf("%w: %s: %v", ErrCodecUnavailable, c, err)
			return
		}
		dec, err := codec.Decode(nil, enc)
		if err != nil || !bytes.Equal(dec, probe) {
			check.err = fmt.Errorf("%w: %s failed self test", ErrCodecUnavailable, c)
		}
	})
	return check.err
}
