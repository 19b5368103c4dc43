package cmd

import (
	"context"
	"io"

	"github.com/pseudomuto/bulkloader/pkg/batch"
	"github.com/pseudomuto/bulkloader/pkg/config"
	"github.com/pseudomuto/bulkloader/pkg/statement"
	"github.com/urfave/cli/v3"
	"go.uber.org/fx"
)

type planParams struct {
	fx.In

	Config *config.Config
}

// plan creates the plan command, a dry run of load.
//
// Example usage:
//
//	# Show the execution plan with the configured batch size
//	bulkloader plan data/seed.sql
//
//	# See how a different batch size fans out
//	bulkloader plan --batch-size 100 data/seed.sql
func plan(p planParams) *cli.Command {
	return &cli.Command{
		Name:      "plan",
		Usage:     "Show how a SQL script would be loaded without connecting to a target",
		ArgsUsage: "SCRIPT",
		Description: `Scan a SQL script and print the statements of both passes in execution
order, together with the number of batches each INSERT would be split into.`,
		Before: requireConfig(p.Config),
		Flags:  []cli.Flag{batchSizeFlag()},
		Action: func(ctx context.Context, cmd *cli.Command) error {
			path, err := scriptArg(cmd)
			if err != nil {
				return err
			}

			maxRows, err := batchSize(cmd, p.Config)
			if err != nil {
				return err
			}

			script, err := readScript(cmd, p.Config, path)
			if err != nil {
				return err
			}

			printPlan(writer(cmd), script.Statements, maxRows)
			return nil
		},
	}
}

func printPlan(w io.Writer, stmts []statement.Statement, maxRows int) {
	schema, data := statement.Partition(stmts)

	printf(w, "Pass 1: schema (%d statements)\n", len(schema))
	for _, stmt := range schema {
		printf(w, "  ▶  #%d %s: %s\n", stmt.Ordinal, stmt.Kind(), stmt.Abbrev(maxDisplayWidth))
	}

	requests := len(schema)

	printf(w, "\nPass 2: data (%d statements)\n", len(data))
	for _, stmt := range data {
		printf(w, "  ▶  #%d %s: %s\n", stmt.Ordinal, stmt.Kind(), stmt.Abbrev(maxDisplayWidth))

		batches := 1
		if rows := batch.CountGroups(stmt.Text); rows > 0 {
			batches = len(batch.Split(stmt, maxRows))
			printf(w, "     %d rows in %d batches\n", rows, batches)
		}

		requests += batches
	}

	printf(w, "\nSummary: %d statements would be sent as %d requests\n", len(stmts), requests)
}
