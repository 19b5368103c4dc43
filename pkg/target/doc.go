// Package target opens the execution target named by a config.Target.
//
// The clickhouse driver is served by the clickhouse package; postgres, pgx,
// mysql and sqlite are served by the sqldb package.
package target
