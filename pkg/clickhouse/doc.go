// Package clickhouse is the ClickHouse execution target for bulk loads.
//
// A Client wraps a clickhouse-go native connection. It runs one statement at a
// time for the executor and answers row-count queries for the probe package.
//
// Connections are configured with a DSN, either "host:port" or a full
// clickhouse:// URL, plus optional query settings and mTLS files.
//
// Example usage:
//
//	client, err := clickhouse.NewClientWithOptions(ctx, "localhost:9000", clickhouse.ClientOptions{
//		Settings: map[string]any{"async_insert": 1},
//	})
//	if err != nil {
//		log.Fatal(err)
//	}
//	defer client.Close()
//
//	result, err := executor.New(executor.Config{Runner: client}).Execute(ctx, stmts)
//	if err != nil {
//		log.Fatal(err)
//	}
//
//	counts := probe.Verify(ctx, client, probe.TablesFrom(stmts))
package clickhouse
