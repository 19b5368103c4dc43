package probe

import (
	"context"
	"log/slog"

	"github.com/pseudomuto/bulkloader/pkg/statement"
)

type (
	// Querier counts the rows of a table through the same execution service
	// statements were loaded with.
	Querier interface {
		QueryCount(context.Context, string) (int64, error)
	}

	// TableCount is the observed row count of one table.
	TableCount struct {
		Table string

		// Rows is the row count, or 0 when it is unknown.
		Rows int64

		// Known is false when the count query failed, e.g. because the table
		// does not exist.
		Known bool

		// Err is the error returned by the count query, if any.
		Err error
	}

	// Counts is the result of a verification run, in the order tables were
	// requested.
	Counts []TableCount
)

// Verify counts the rows of each table. Failures are recorded on the
// corresponding TableCount and logged at warn level; they never cause Verify
// itself to fail.
func Verify(ctx context.Context, q Querier, tables []string) Counts {
	counts := make(Counts, 0, len(tables))
	for _, table := range tables {
		rows, err := q.QueryCount(ctx, table)
		if err != nil {
			slog.Warn("Could not count rows", "table", table, "err", err)
			counts = append(counts, TableCount{Table: table, Err: err})
			continue
		}

		counts = append(counts, TableCount{Table: table, Rows: rows, Known: true})
	}

	return counts
}

// Map returns the counts keyed by table name. Unknown counts map to 0.
func (c Counts) Map() map[string]int64 {
	m := make(map[string]int64, len(c))
	for _, tc := range c {
		m[tc.Table] = tc.Rows
	}

	return m
}

// TablesFrom returns the names of the tables created by stmts, in file order
// and without duplicates.
func TablesFrom(stmts []statement.Statement) []string {
	var (
		tables []string
		seen   = make(map[string]bool)
	)

	for _, stmt := range stmts {
		if stmt.Kind() != statement.TableCreate {
			continue
		}

		target, ok := statement.TargetName(stmt.Text)
		if !ok || seen[target.Name] {
			continue
		}

		seen[target.Name] = true
		tables = append(tables, target.Name)
	}

	return tables
}
