// Package sqldb provides database/sql execution targets.
//
// Postgres (through pgx), MySQL and SQLite are supported. Connections are
// managed with sqlx; each statement is sent with ExecContext exactly as the
// scanner produced it, so the script must already be in the target's dialect.
package sqldb
