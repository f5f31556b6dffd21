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
	"fmt"
	"log/slog"
	"os"

	"github.com/spf13/cobra"

	"github.com/cardinalhq/rowio/filter"
	"github.com/cardinalhq/rowio/parquetrow"
)

var catWhere string

var catCmd = &cobra.Command{
	Use:   "cat FILE",
	Short: "Stream rows of a Parquet file as JSON lines",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		return runCat(cmd, args[0], catWhere)
	},
}

func init() {
	catCmd.Flags().StringVar(&catWhere, "where", "", `predicate, e.g. 'id > 1 and name = "a"'`)
	rootCmd.AddCommand(catCmd)
}

func runCat(cmd *cobra.Command, path, where string) error {
	var pred *filter.Predicate
	if where != "" {
		var err error
		pred, err = filter.Parse(where)
		if err != nil {
			return fmt.Errorf("invalid --where expression: %w", err)
		}
	}

	var opts []parquetrow.Option
	if pred != nil {
		opts = append(opts, parquetrow.WithPredicate(pred))
	}
	adapter, err := parquetrow.New[map[string]any](opts...)
	if err != nil {
		return err
	}

	f, err := os.Open(path)
	if err != nil {
		return err
	}
	defer func() { _ = f.Close() }()

	st, err := f.Stat()
	if err != nil {
		return err
	}

	ctx := cmd.Context()
	if ctx == nil {
		ctx = context.Background()
	}
	reader := adapter.NewReader()
	if err := reader.Open(ctx, f, st.Size()); err != nil {
		return err
	}
	defer func() {
		if cerr := reader.Close(); cerr != nil {
			slog.Warn("failed to close reader", slog.Any("error", cerr))
		}
	}()

	out := bufio.NewWriter(os.Stdout)
	defer func() { _ = out.Flush() }()
	enc := json.NewEncoder(out)

	for reader.HasNext() {
		row, err := reader.Next(ctx)
		if err != nil {
			return err
		}
		if err := enc.Encode(row); err != nil {
			return err
		}
	}

	slog.Debug("cat complete",
		slog.Int64("rows", reader.TotalRowsRead()),
		slog.Int64("rowGroupsPruned", reader.RowGroupsPruned()))
	return nil
}
