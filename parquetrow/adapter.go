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
	"encoding/binary"
	"maps"
	"reflect"
	"sort"

	"github.com/cespare/xxhash/v2"
	"github.com/parquet-go/parquet-go"
	"go.opentelemetry.io/otel/attribute"

	"github.com/cardinalhq/rowio/filter"
)

// Option configures an Adapter at construction time.
type Option func(*settings)

type settings struct {
	compression Compression
	props       map[string]string
	pred        *filter.Predicate
	schema      *parquet.Schema
}

// WithCompression selects the codec used when writing.
func WithCompression(c Compression) Option {
	return func(s *settings) { s.compression = c }
}

// WithProperty adds one opaque writer property.
func WithProperty(key, value string) Option {
	return func(s *settings) { s.props[key] = value }
}

// WithProperties adds all entries of the given map as writer properties.
func WithProperties(props map[string]string) Option {
	return func(s *settings) { maps.Copy(s.props, props) }
}

// WithPredicate restricts reads to rows matching the predicate. Writes are
// unaffected.
func WithPredicate(pred *filter.Predicate) Option {
	return func(s *settings) { s.pred = pred }
}

// WithSchema sets an explicit Parquet schema. Required when the row type is
// a map, for which no schema can be derived by reflection.
func WithSchema(schema *parquet.Schema) Option {
	return func(s *settings) { s.schema = schema }
}

// Adapter is an immutable configuration value that manufactures Readers and
// Sinks for rows of type T. It holds no stream and no native handle, so a
// single adapter may be shared freely across goroutines; each Reader or Sink
// it produces is an independent single-owner instance.
//
// Adapters are comparable: Equal and Hash are structural over the
// compression codec, the property set (order-insensitive), and the
// predicate, so callers can deduplicate logically identical adapters.
type Adapter[T any] struct {
	compression Compression
	props       map[string]string
	pred        *filter.Predicate
	schema      *parquet.Schema
}

// New builds an adapter for rows of type T. Without options it writes with
// DefaultCompression and reads unfiltered. The codec is verified usable once
// per process; an unusable codec fails construction with ErrCodecUnavailable.
func New[T any](opts ...Option) (*Adapter[T], error) {
	s := settings{
		compression: DefaultCompression,
		props:       make(map[string]string),
	}
	for _, opt := range opts {
		opt(&s)
	}
	if err := ensureCodec(s.compression); err != nil {
		return nil, err
	}
	return &Adapter[T]{
		compression: s.compression,
		props:       s.props,
		pred:        s.pred,
		schema:      schemaFor[T](s.schema),
	}, nil
}

// NewFiltered builds a read-oriented adapter with the given predicate and
// the default compression codec.
func NewFiltered[T any](pred *filter.Predicate, opts ...Option) (*Adapter[T], error) {
	return New[T](append([]Option{WithPredicate(pred)}, opts...)...)
}

// schemaFor derives a schema from T by reflection when no override is given.
// Map row types have no derivable schema and yield nil; Sinks reject them at
// Open unless WithSchema was used.
func schemaFor[T any](override *parquet.Schema) *parquet.Schema {
	if override != nil {
		return override
	}
	var zero T
	t := reflect.TypeOf(&zero).Elem()
	for t.Kind() == reflect.Pointer {
		t = t.Elem()
	}
	if t.Kind() != reflect.Struct {
		return nil
	}
	return parquet.SchemaOf(zero)
}

// Compression returns the configured codec.
func (a *Adapter[T]) Compression() Compression { return a.compression }

// Predicate returns the configured read predicate, or nil.
func (a *Adapter[T]) Predicate() *filter.Predicate { return a.pred }

// Properties returns a copy of the opaque property map.
func (a *Adapter[T]) Properties() map[string]string {
	return maps.Clone(a.props)
}

// SchemaName returns the display name of the adapter's schema, or "" when
// the schema comes from the file at read time.
func (a *Adapter[T]) SchemaName() string {
	if a.schema == nil {
		return ""
	}
	return a.schema.Name()
}

// NewReader returns a fresh Reader carrying the adapter's predicate. The
// reader owns no stream until Open is called.
func (a *Adapter[T]) NewReader() *Reader[T] {
	return &Reader[T]{pred: a.pred}
}

// NewSink returns a fresh Sink carrying the adapter's compression, schema,
// and properties. The sink owns no stream until Open is called.
func (a *Adapter[T]) NewSink() *Sink[T] {
	return &Sink[T]{
		compression: a.compression,
		props:       maps.Clone(a.props),
		schema:      a.schema,
	}
}

// Equal reports whether two adapters are interchangeable: same codec, same
// property set regardless of insertion order, and equal predicates.
func (a *Adapter[T]) Equal(other *Adapter[T]) bool {
	if a == nil || other == nil {
		return a == other
	}
	if a.compression != other.compression {
		return false
	}
	if !maps.Equal(a.props, other.props) {
		return false
	}
	return a.pred.Equal(other.pred)
}

// Hash returns a structural hash consistent with Equal: equal adapters hash
// identically regardless of property insertion order.
func (a *Adapter[T]) Hash() uint64 {
	d := xxhash.New()
	_, _ = d.WriteString(a.compression.String())
	_, _ = d.Write([]byte{0})

	keys := make([]string, 0, len(a.props))
	for k := range a.props {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	for _, k := range keys {
		_, _ = d.WriteString(k)
		_, _ = d.Write([]byte{0})
		_, _ = d.WriteString(a.props[k])
		_, _ = d.Write([]byte{0})
	}

	var fp [8]byte
	binary.LittleEndian.PutUint64(fp[:], a.pred.Fingerprint())
	_, _ = d.Write(fp[:])

	return d.Sum64()
}

// Describe returns ordered diagnostic attributes for the adapter: the codec
// name, the schema display name, and the property count.
func (a *Adapter[T]) Describe() []attribute.KeyValue {
	schemaName := a.SchemaName()
	if schemaName == "" {
		schemaName = "(from file)"
	}
	return []attribute.KeyValue{
		attribute.String("compression.codec.name", a.compression.String()),
		attribute.String("schema.name", schemaName),
		attribute.Int("properties.count", len(a.props)),
	}
}
