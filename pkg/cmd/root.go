package cmd

import (
	"context"
	"fmt"
	"log/slog"

	"github.com/urfave/cli/v3"
	"go.uber.org/fx"
)

type (
	Params struct {
		fx.In

		Args       []string
		Commands   []*cli.Command `group:"commands"`
		Ctx        context.Context
		Lifecycle  fx.Lifecycle
		Shutdowner fx.Shutdowner
		Version    *Version
	}

	Version struct {
		Version   string
		Commit    string
		Timestamp string
	}
)

// Run builds the bulkloader CLI from the registered commands and runs it once
// the fx application has started. The application is shut down with exit code
// 1 when the command fails and 0 otherwise.
//
// Global Flags:
//   - --verbose: Log at debug level, including every executed statement
func Run(p Params) {
	app := New(p.Version, p.Commands...)

	p.Lifecycle.Append(fx.StartHook(func() {
		go func() {
			if err := app.Run(p.Ctx, p.Args); err != nil {
				slog.Error("Error running command", "err", err)
				_ = p.Shutdowner.Shutdown(fx.ExitCode(1))
				return
			}

			_ = p.Shutdowner.Shutdown(fx.ExitCode(0))
		}()
	}))
}

// New returns the root command with the given subcommands.
func New(version *Version, commands ...*cli.Command) *cli.Command {
	cli.VersionPrinter = func(cmd *cli.Command) {
		fmt.Fprintln(cmd.Writer, "Version:", version.Version)
		fmt.Fprintln(cmd.Writer, "Commit:", version.Commit)
		fmt.Fprintln(cmd.Writer, "Date:", version.Timestamp)
	}

	return &cli.Command{
		Name:  "bulkloader",
		Usage: "Load flat SQL scripts into a database",
		Description: `bulkloader executes SQL scripts that mix schema definitions and bulk
INSERTs. Schema statements run before data statements, oversized INSERTs are
split into batches, and every statement's outcome is reported.`,
		Version: version.Version,
		Flags: []cli.Flag{
			&cli.BoolFlag{
				Name:  "verbose",
				Usage: "Enable debug logging",
			},
		},
		Before: func(ctx context.Context, cmd *cli.Command) (context.Context, error) {
			if cmd.Bool("verbose") {
				slog.SetLogLoggerLevel(slog.LevelDebug)
			}

			return ctx, nil
		},
		Commands: commands,
	}
}
