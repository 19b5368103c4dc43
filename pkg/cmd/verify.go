package cmd

import (
	"context"

	"github.com/pkg/errors"
	"github.com/pseudomuto/bulkloader/pkg/config"
	"github.com/pseudomuto/bulkloader/pkg/probe"
	"github.com/pseudomuto/bulkloader/pkg/target"
	"github.com/urfave/cli/v3"
	"go.uber.org/fx"
)

type verifyParams struct {
	fx.In

	Config *config.Config
}

// verify creates the verify command, which prints the row counts of tables.
//
// Tables are taken from the arguments, or from verify.tables in
// bulkloader.yaml when no arguments are given.
//
// Example usage:
//
//	bulkloader verify people pets
//	bulkloader verify --driver mysql --url 'loader@tcp(localhost:3306)/app' people
func verify(p verifyParams) *cli.Command {
	return &cli.Command{
		Name:      "verify",
		Usage:     "Count the rows of tables in the target database",
		ArgsUsage: "[TABLE...]",
		Before:    requireConfig(p.Config),
		Flags:     targetFlags(),
		Action: func(ctx context.Context, cmd *cli.Command) error {
			tables := cmd.Args().Slice()
			if len(tables) == 0 {
				tables = p.Config.Verify.Tables
			}
			if len(tables) == 0 {
				return errors.New("at least one table is required")
			}

			tc := targetConfig(cmd, p.Config)
			tgt, err := target.Open(ctx, tc)
			if err != nil {
				return errors.Wrapf(err, "failed to connect to %s target", tc.Driver)
			}
			defer func() { _ = tgt.Close() }()

			reportCounts(writer(cmd), probe.Verify(ctx, tgt, tables))
			return nil
		},
	}
}
