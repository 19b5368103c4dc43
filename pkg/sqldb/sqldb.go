package sqldb

import (
	"context"

	_ "github.com/go-sql-driver/mysql" // registers "mysql"
	_ "github.com/jackc/pgx/v5/stdlib" // registers "pgx"
	"github.com/jmoiron/sqlx"
	"github.com/pkg/errors"
	_ "modernc.org/sqlite" // registers "sqlite"
)

// driverNames maps accepted driver names to the database/sql driver that
// serves them.
var driverNames = map[string]string{
	"postgres": "pgx",
	"pgx":      "pgx",
	"mysql":    "mysql",
	"sqlite":   "sqlite",
}

// DB executes statements through database/sql. It satisfies executor.Runner
// and probe.Querier.
type DB struct {
	db *sqlx.DB
}

// Open connects to a Postgres, MySQL or SQLite database and pings it.
//
// Example:
//
//	db, err := sqldb.Open(ctx, "postgres", "postgres://loader@localhost:5432/sales")
//	if err != nil {
//		log.Fatal(err)
//	}
//	defer db.Close()
func Open(ctx context.Context, driver, dsn string) (*DB, error) {
	name, ok := driverNames[driver]
	if !ok {
		return nil, errors.Errorf("unsupported database/sql driver: %s", driver)
	}

	db, err := sqlx.ConnectContext(ctx, name, dsn)
	if err != nil {
		return nil, errors.Wrapf(err, "failed to connect to %s", driver)
	}

	// every pooled connection to ":memory:" would see its own database
	if name == "sqlite" {
		db.SetMaxOpenConns(1)
	}

	return &DB{db: db}, nil
}

// Supports reports whether driver is served by this package.
func Supports(driver string) bool {
	_, ok := driverNames[driver]
	return ok
}

// Run executes a single statement.
func (d *DB) Run(ctx context.Context, sql string) error {
	_, err := d.db.ExecContext(ctx, sql)
	return err
}

// QueryCount returns the number of rows in table.
func (d *DB) QueryCount(ctx context.Context, table string) (int64, error) {
	var rows int64
	if err := d.db.GetContext(ctx, &rows, "SELECT COUNT(*) FROM "+table); err != nil {
		return 0, errors.Wrapf(err, "failed to count rows in %s", table)
	}

	return rows, nil
}

// Close closes the connection pool.
func (d *DB) Close() error {
	return d.db.Close()
}
