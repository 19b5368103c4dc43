package cmd

import (
	"bufio"
	"context"
	"io"
	"log/slog"
	"net/url"
	"strings"

	"github.com/pkg/errors"
	"github.com/pseudomuto/bulkloader/pkg/clickhouse"
	"github.com/pseudomuto/bulkloader/pkg/config"
	"github.com/pseudomuto/bulkloader/pkg/docker"
	"github.com/pseudomuto/bulkloader/pkg/executor"
	"github.com/pseudomuto/bulkloader/pkg/probe"
	"github.com/pseudomuto/bulkloader/pkg/statement"
	"github.com/pseudomuto/bulkloader/pkg/target"
	"github.com/urfave/cli/v3"
	"go.uber.org/fx"
)

type loadParams struct {
	fx.In

	Config *config.Config
}

// load creates the load command, which executes a SQL script against a target.
//
// The script is scanned into statements, schema statements are executed
// before data statements, and oversized INSERTs are split into batches.
// Failures are reported per statement; the command exits non-zero when any
// statement failed hard or the connection was lost.
//
// Command flags:
//   - --url, -u: Target connection string
//   - --driver: Target driver (clickhouse, postgres, pgx, mysql, sqlite)
//   - --batch-size, -b: Maximum VALUES groups per INSERT
//   - --yes, -y: Skip the confirmation prompt
//   - --verify: Count the rows of the loaded tables afterwards
//   - --sandbox: Load into a throwaway ClickHouse container instead (no prompt)
//
// Example usage:
//
//	# Load into the configured target
//	bulkloader load data/seed.sql
//
//	# Load into Postgres without prompting, then count rows
//	bulkloader load --driver postgres --url postgres://localhost/app --yes --verify seed.sql
//
//	# Rehearse against a disposable ClickHouse server
//	bulkloader load --sandbox seed.sql
func load(p loadParams) *cli.Command {
	return &cli.Command{
		Name:      "load",
		Usage:     "Load a SQL script into a target database",
		ArgsUsage: "SCRIPT",
		Description: `Load every statement of a SQL script into the target database.

Statements are executed in two passes: first zone, table and index creation and
drops, then inserts and other statements, each pass in file order. INSERTs with
more VALUES groups than --batch-size are split into several INSERTs.

Failing statements do not stop the load. Failures of CREATE ZONE, CREATE INDEX
and DROP are reported as warnings, since they are expected when re-running a
script; all other failures are errors. Use "-" to read the script from stdin
(requires --yes).`,
		Before: requireConfig(p.Config),
		Flags: targetFlags(
			batchSizeFlag(),
			&cli.BoolFlag{
				Name:    "yes",
				Aliases: []string{"y"},
				Usage:   "Do not ask for confirmation",
			},
			&cli.BoolFlag{
				Name:  "verify",
				Usage: "Count the rows of loaded tables after the load",
			},
			&cli.BoolFlag{
				Name:  "sandbox",
				Usage: "Load into a temporary ClickHouse container (requires Docker)",
			},
		),
		Action: func(ctx context.Context, cmd *cli.Command) error {
			return runLoad(ctx, cmd, p)
		},
	}
}

func runLoad(ctx context.Context, cmd *cli.Command, p loadParams) error {
	path, err := scriptArg(cmd)
	if err != nil {
		return err
	}

	maxRows, err := batchSize(cmd, p.Config)
	if err != nil {
		return err
	}

	yes := cmd.Bool("yes")
	if path == "-" && !yes {
		return errors.New("--yes is required when reading the script from stdin")
	}

	script, err := readScript(cmd, p.Config, path)
	if err != nil {
		return err
	}

	w := writer(cmd)
	schema, data := statement.Partition(script.Statements)
	printf(w, "Parsed %d statements (%d schema, %d data)\n", len(script.Statements), len(schema), len(data))
	for _, irr := range script.Irregularities {
		printf(w, "  ⚠️  line %d: %s\n", irr.Line, irr.Reason)
	}

	if len(script.Statements) == 0 {
		printf(w, "Nothing to load.\n")
		return nil
	}

	tc := targetConfig(cmd, p.Config)
	if cmd.Bool("sandbox") {
		sandbox := docker.New(docker.Options{
			Version:   p.Config.Sandbox.Version,
			ConfigDir: p.Config.Sandbox.ConfigDir,
		})

		printf(w, "Starting ClickHouse sandbox (%s)...\n", sandbox.Image())
		if err := sandbox.Start(ctx); err != nil {
			return err
		}
		defer func() {
			if err := sandbox.Stop(context.WithoutCancel(ctx)); err != nil {
				slog.Warn("Could not stop sandbox", "err", err)
			}
		}()

		dsn, err := sandbox.DSN(ctx)
		if err != nil {
			return err
		}

		tc = config.Target{Driver: "clickhouse", DSN: dsn}
	} else if !yes {
		ok, err := confirm(cmd.Root().Reader, w, tc)
		if err != nil {
			return err
		}
		if !ok {
			printf(w, "Aborted.\n")
			return nil
		}
	}

	slog.Info("Connecting to target", "driver", tc.Driver)
	tgt, err := target.Open(ctx, tc)
	if err != nil {
		return errors.Wrapf(err, "failed to connect to %s target", tc.Driver)
	}
	defer func() { _ = tgt.Close() }()

	if client, ok := tgt.(*clickhouse.Client); ok {
		logServerVersion(ctx, client)
	}

	exec := executor.New(executor.Config{
		Runner:          tgt,
		MaxRowsPerBatch: maxRows,
	})

	result, execErr := exec.Execute(ctx, script.Statements)
	reportErr := reportLoad(w, result)

	if execErr != nil {
		return errors.Wrap(execErr, "load aborted")
	}

	if cmd.Bool("verify") {
		tables := p.Config.Verify.Tables
		if len(tables) == 0 {
			tables = probe.TablesFrom(script.Statements)
		}

		reportCounts(w, probe.Verify(ctx, tgt, tables))
	}

	return reportErr
}

func confirm(r io.Reader, w io.Writer, tc config.Target) (bool, error) {
	printf(w, "Load into %s target %s? [y/N] ", tc.Driver, redact(tc.DSN))

	answer, err := bufio.NewReader(r).ReadString('\n')
	if err != nil && !errors.Is(err, io.EOF) {
		return false, errors.Wrap(err, "failed to read confirmation")
	}

	switch strings.ToLower(strings.TrimSpace(answer)) {
	case "y", "yes":
		return true, nil
	default:
		return false, nil
	}
}

// redact hides the password of URL-style DSNs.
func redact(dsn string) string {
	u, err := url.Parse(dsn)
	if err != nil || u.User == nil {
		return dsn
	}

	return u.Redacted()
}

func logServerVersion(ctx context.Context, client *clickhouse.Client) {
	version, err := client.GetVersion(ctx)
	if err != nil {
		slog.Warn("Could not determine ClickHouse version", "err", err)
		return
	}

	slog.Info("Connected to ClickHouse",
		"version", version.String(),
		"async_insert", version.SupportsAsyncInsert(),
	)
}

// reportLoad prints per-statement failures and a summary. It returns an error
// when at least one statement failed hard.
func reportLoad(w io.Writer, result *executor.LoadResult) error {
	printf(w, "\nLoad results:\n\n")

	var hardFailures int
	for _, sr := range result.Statements() {
		if sr.Status == executor.StatusSuccess {
			continue
		}

		icon := "⚠️ "
		if sr.Status == executor.StatusFailed {
			icon = "❌"
			hardFailures++
		}

		printf(w, "  %s statement %d (%s)", icon, sr.Ordinal, sr.Kind)
		if sr.Batches > 1 {
			printf(w, " %d/%d batches failed", sr.Failed, sr.Batches)
		}
		printf(w, "\n")

		if o, ok := firstFailure(result, sr.Ordinal); ok {
			printf(w, "     %s\n", o.Statement.Abbrev(maxDisplayWidth))
			printf(w, "     Error: %v (%s)\n", o.Error, o.Hint)
		}
	}

	printf(w, "\nSummary: %d statements, %d executed, %d succeeded, %d failed (%d warnings) in %v\n",
		result.Total,
		result.Succeeded+result.Failed,
		result.Succeeded,
		result.Failed,
		result.Warnings,
		result.ExecutionTime,
	)

	if hardFailures > 0 {
		printf(w, "\n❌ %d statements failed. Please review the errors above.\n", hardFailures)
		return errors.Errorf("%d statements failed", hardFailures)
	}

	if result.Warnings > 0 {
		printf(w, "\n✅ Load completed with warnings.\n")
		return nil
	}

	printf(w, "\n✅ All statements executed successfully.\n")
	return nil
}

func firstFailure(result *executor.LoadResult, ordinal int) (executor.Outcome, bool) {
	for _, o := range result.Failures() {
		if o.Statement.Ordinal == ordinal {
			return o, true
		}
	}

	return executor.Outcome{}, false
}

func reportCounts(w io.Writer, counts probe.Counts) {
	printf(w, "\nRow counts:\n\n")
	for _, c := range counts {
		if !c.Known {
			printf(w, "  ❓ %s: unknown (%v)\n", c.Table, c.Err)
			continue
		}

		printf(w, "  %s: %d\n", c.Table, c.Rows)
	}
}
