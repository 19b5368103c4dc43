package target

import (
	"context"
	"io"

	"github.com/pkg/errors"
	"github.com/pseudomuto/bulkloader/pkg/clickhouse"
	"github.com/pseudomuto/bulkloader/pkg/config"
	"github.com/pseudomuto/bulkloader/pkg/executor"
	"github.com/pseudomuto/bulkloader/pkg/probe"
	"github.com/pseudomuto/bulkloader/pkg/sqldb"
)

// Target is an open connection that can both load statements and count rows.
type Target interface {
	executor.Runner
	probe.Querier
	io.Closer
}

// Open connects to the target described by cfg.
//
// Example:
//
//	t, err := target.Open(ctx, cfg.Target)
//	if err != nil {
//		return err
//	}
//	defer t.Close()
func Open(ctx context.Context, cfg config.Target) (Target, error) {
	if cfg.DSN == "" {
		return nil, errors.Errorf("no DSN configured for %s target", cfg.Driver)
	}

	switch {
	case cfg.Driver == "clickhouse":
		client, err := clickhouse.NewClientWithOptions(ctx, cfg.DSN, clickhouse.ClientOptions{
			Settings: cfg.Settings,
			TLSSettings: clickhouse.TLSSettings{
				CAFile:   cfg.TLS.CAFile,
				CertFile: cfg.TLS.CertFile,
				KeyFile:  cfg.TLS.KeyFile,
			},
		})
		if err != nil {
			return nil, err
		}

		return client, nil
	case sqldb.Supports(cfg.Driver):
		db, err := sqldb.Open(ctx, cfg.Driver, cfg.DSN)
		if err != nil {
			return nil, err
		}

		return db, nil
	default:
		return nil, errors.Errorf("unsupported driver: %s", cfg.Driver)
	}
}
