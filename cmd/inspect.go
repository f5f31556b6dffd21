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
	"fmt"
	"os"

	"github.com/parquet-go/parquet-go"
	"github.com/spf13/cobra"
)

var inspectCmd = &cobra.Command{
	Use:   "inspect FILE",
	Short: "Print the structure of a Parquet file",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		return runInspect(args[0])
	},
}

func init() {
	rootCmd.AddCommand(inspectCmd)
}

func runInspect(path string) error {
	f, err := os.Open(path)
	if err != nil {
		return err
	}
	defer func() { _ = f.Close() }()

	st, err := f.Stat()
	if err != nil {
		return err
	}

	pf, err := parquet.OpenFile(f, st.Size())
	if err != nil {
		return fmt.Errorf("open parquet file: %w", err)
	}

	fmt.Printf("file: %s (%d bytes)\n", path, st.Size())
	fmt.Printf("rows: %d\n", pf.NumRows())
	fmt.Printf("schema: %s\n", pf.Schema())

	groups := pf.RowGroups()
	fmt.Printf("row groups: %d\n", len(groups))
	for i, rg := range groups {
		fmt.Printf("  group %d: %d rows\n", i, rg.NumRows())
	}

	meta := pf.Metadata()
	if meta != nil && len(meta.KeyValueMetadata) > 0 {
		fmt.Println("metadata:")
		for _, kv := range meta.KeyValueMetadata {
			fmt.Printf("  %s = %s\n", kv.Key, kv.Value)
		}
	}
	return nil
}
