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
	"fmt"

	"go.opentelemetry.io/otel"
	otelmetric "go.opentelemetry.io/otel/metric"
)

var (
	rowsReadCounter     otelmetric.Int64Counter
	rowsFilteredCounter otelmetric.Int64Counter
	groupsPrunedCounter otelmetric.Int64Counter
	rowsWrittenCounter  otelmetric.Int64Counter
)

func init() {
	meter := otel.Meter("github.com/cardinalhq/rowio/parquetrow")

	var err error
	rowsReadCounter, err = meter.Int64Counter(
		"rowio.reader.rows",
		otelmetric.WithDescription("Number of rows returned to callers by readers"),
	)
	if err != nil {
		panic(fmt.Errorf("failed to create reader rows counter: %w", err))
	}

	rowsFilteredCounter, err = meter.Int64Counter(
		"rowio.reader.rows.filtered",
		otelmetric.WithDescription("Number of rows decoded but dropped by the predicate"),
	)
	if err != nil {
		panic(fmt.Errorf("failed to create filtered rows counter: %w", err))
	}

	groupsPrunedCounter, err = meter.Int64Counter(
		"rowio.reader.rowgroups.pruned",
		otelmetric.WithDescription("Number of row groups skipped entirely via column statistics"),
	)
	if err != nil {
		panic(fmt.Errorf("failed to create pruned row groups counter: %w", err))
	}

	rowsWrittenCounter, err = meter.Int64Counter(
		"rowio.sink.rows",
		otelmetric.WithDescription("Number of rows written to sinks"),
	)
	if err != nil {
		panic(fmt.Errorf("failed to create sink rows counter: %w", err))
	}
}
