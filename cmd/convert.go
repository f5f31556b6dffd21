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

package cmd

import (
	"bufio"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"os"
	"strings"

	"github.com/klauspost/compress/gzip"
	"github.com/parquet-go/parquet-go"
	"github.com/spf13/cobra"

	"github.com/cardinalhq/rowio/parquetrow"
)

var convertCompression string

var convertCmd = &cobra.Command{
	Use:   "convert IN OUT",
	Short: "Convert JSON lines into a Parquet file",
	Long:  `Read one JSON object per line from IN (gzip-compressed when the name ends in .gz, "-" for stdin) and write them as Parquet to OUT. The schema is inferred from the first object; keys with unsupported or null values are dropped.`,
	Args:  cobra.ExactArgs(2),
	RunE: func(cmd *cobra.Command, args []string) error {
		return runConvert(cmd, args[0], args[1])
	},
}

func init() {
	convertCmd.Flags().StringVar(&convertCompression, "compression", "",
		"codec: uncompressed, snappy, gzip, zstd, or lz4 (default from config)")
	rootCmd.AddCommand(convertCmd)
}

func runConvert(cmd *cobra.Command, inPath, outPath string) error {
	codecName := convertCompression
	if codecName == "" {
		codecName = cfg.Compression
	}
	codec, err := parquetrow.ParseCompression(codecName)
	if err != nil {
		return err
	}

	in, err := openInput(inPath)
	if err != nil {
		return err
	}
	defer func() { _ = in.Close() }()

	scanner := bufio.NewScanner(in)
	scanner.Buffer(make([]byte, 0, 1024*1024), 16*1024*1024)

	sample, ok, err := nextRow(scanner)
	if err != nil {
		return err
	}
	if !ok {
		return fmt.Errorf("input %s contains no rows", inPath)
	}

	schema, err := inferSchema(sample)
	if err != nil {
		return err
	}

	adapter, err := parquetrow.New[map[string]any](
		parquetrow.WithCompression(codec),
		parquetrow.WithSchema(schema),
	)
	if err != nil {
		return err
	}

	out, err := os.Create(outPath)
	if err != nil {
		return err
	}

	sink := adapter.NewSink()
	if err := sink.Open(out); err != nil {
		_ = out.Close()
		return err
	}

	columns := make(map[string]bool)
	for _, field := range schema.Fields() {
		columns[field.Name()] = true
	}

	ctx := cmd.Context()
	if ctx == nil {
		ctx = context.Background()
	}

	writeErr := writeRows(sink, scanner, sample, columns)
	closeErr := sink.Close(ctx)
	if err := errors.Join(writeErr, closeErr, out.Close()); err != nil {
		return err
	}

	slog.Info("convert complete",
		slog.String("out", outPath),
		slog.Int64("rows", sink.TotalRowsWritten()),
		slog.String("compression", codec.String()))
	return nil
}

func writeRows(sink *parquetrow.Sink[map[string]any], scanner *bufio.Scanner, first map[string]any, columns map[string]bool) error {
	row, ok := first, true
	var err error
	for ok {
		for k := range row {
			if !columns[k] {
				delete(row, k)
			}
		}
		if werr := sink.Write(row); werr != nil {
			return werr
		}
		row, ok, err = nextRow(scanner)
		if err != nil {
			return err
		}
	}
	return nil
}

// nextRow decodes the next non-empty input line.
func nextRow(scanner *bufio.Scanner) (map[string]any, bool, error) {
	for scanner.Scan() {
		line := strings.TrimSpace(scanner.Text())
		if line == "" {
			continue
		}
		var row map[string]any
		if err := json.Unmarshal([]byte(line), &row); err != nil {
			return nil, false, fmt.Errorf("invalid JSON line: %w", err)
		}
		return row, true, nil
	}
	return nil, false, scanner.Err()
}

// inferSchema derives a schema from the first row, dropping keys whose
// values cannot map to a column.
func inferSchema(sample map[string]any) (*parquet.Schema, error) {
	usable := make(map[string]any, len(sample))
	for k, v := range sample {
		if v == nil {
			continue
		}
		if _, err := parquetrow.NodeForValue(v); err != nil {
			slog.Warn("dropping column with unsupported type",
				slog.String("column", k), slog.String("type", fmt.Sprintf("%T", v)))
			continue
		}
		usable[k] = v
	}
	return parquetrow.SchemaFromSample("converted", usable)
}

// openInput opens path for reading, transparently decompressing .gz files.
// "-" reads stdin.
func openInput(path string) (io.ReadCloser, error) {
	if path == "-" {
		return io.NopCloser(os.Stdin), nil
	}
	f, err := os.Open(path)
	if err != nil {
		return nil, err
	}
	if !strings.HasSuffix(path, ".gz") {
		return f, nil
	}
	gz, err := gzip.NewReader(f)
	if err != nil {
		_ = f.Close()
		return nil, err
	}
	return &gzipReadCloser{gz: gz, f: f}, nil
}

type gzipReadCloser struct {
	gz *gzip.Reader
	f  *os.File
}

func (r *gzipReadCloser) Read(p []byte) (int, error) { return r.gz.Read(p) }

func (r *gzipReadCloser) Close() error {
	return errors.Join(r.gz.Close(), r.f.Close())
}
