// Package docker runs disposable ClickHouse servers with testcontainers-go.
//
// A Sandbox backs the `load --sandbox` rehearsal mode, where a script is
// loaded into a fresh server to surface statement failures before touching a
// real target, and the integration tests of the target packages.
//
// # Usage Example
//
//	sandbox := docker.New(docker.Options{Version: "25.7"})
//	if err := sandbox.Start(ctx); err != nil {
//		log.Fatal(err)
//	}
//	defer sandbox.Stop(ctx)
//
//	dsn, err := sandbox.DSN(ctx)
//	if err != nil {
//		log.Fatal(err)
//	}
//
//	client, err := clickhouse.NewClient(ctx, dsn)
//
// Starting a sandbox requires a reachable Docker daemon. Containers are
// removed by Stop and, should the process die first, by the testcontainers
// reaper.
package docker
