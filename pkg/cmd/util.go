package cmd

import (
	"context"
	"fmt"
	"io"
	"log/slog"
	"os"
	"strings"

	"github.com/pkg/errors"
	"github.com/pseudomuto/bulkloader/pkg/config"
	"github.com/pseudomuto/bulkloader/pkg/consts"
	"github.com/pseudomuto/bulkloader/pkg/scanner"
	"github.com/urfave/cli/v3"
)

// maxDisplayWidth is the widest a statement is printed in reports.
const maxDisplayWidth = 80

// Flags are built per command; urfave/cli keeps parsed state on them.
func urlFlag() cli.Flag {
	return &cli.StringFlag{
		Name:    "url",
		Aliases: []string{"u"},
		Usage:   "Target connection string (defaults to target.dsn from bulkloader.yaml)",
		Sources: cli.EnvVars(consts.EnvPrefix + "URL"),
		Config: cli.StringConfig{
			TrimSpace: true,
		},
	}
}

func driverFlag() cli.Flag {
	return &cli.StringFlag{
		Name:    "driver",
		Usage:   "Target driver: " + strings.Join(consts.Drivers, ", "),
		Sources: cli.EnvVars(consts.EnvPrefix + "DRIVER"),
		Config: cli.StringConfig{
			TrimSpace: true,
		},
	}
}

func batchSizeFlag() cli.Flag {
	return &cli.IntFlag{
		Name:    "batch-size",
		Aliases: []string{"b"},
		Usage:   "Maximum VALUES groups per INSERT, 0 disables splitting (defaults to loader.max_rows_per_batch)",
		Sources: cli.EnvVars(consts.EnvPrefix + "BATCH_SIZE"),
	}
}

// targetFlags are shared by every command that connects to a target.
func targetFlags(extra ...cli.Flag) []cli.Flag {
	flags := []cli.Flag{urlFlag(), driverFlag()}
	for _, name := range []string{"cafile", "certfile", "keyfile"} {
		flags = append(flags, &cli.StringFlag{
			Name:  name,
			Usage: tlsUsage[name],
			Config: cli.StringConfig{
				TrimSpace: true,
			},
		})
	}

	return append(flags, extra...)
}

var tlsUsage = map[string]string{
	"cafile":   "Certificate authority pem",
	"certfile": "Certificate public key file",
	"keyfile":  "Certificate private key file",
}

// targetConfig overlays the connection flags on the configured target.
func targetConfig(cmd *cli.Command, cfg *config.Config) config.Target {
	t := cfg.Target
	if cmd.IsSet("driver") {
		t.Driver = cmd.String("driver")
		if !cmd.IsSet("url") && t.Driver != cfg.Target.Driver {
			t.DSN = ""
		}
	}
	if cmd.IsSet("url") {
		t.DSN = cmd.String("url")
	}
	if t.DSN == "" && t.Driver == consts.DefaultDriver {
		t.DSN = consts.DefaultDSN
	}
	if cmd.IsSet("cafile") {
		t.TLS.CAFile = cmd.String("cafile")
	}
	if cmd.IsSet("certfile") {
		t.TLS.CertFile = cmd.String("certfile")
	}
	if cmd.IsSet("keyfile") {
		t.TLS.KeyFile = cmd.String("keyfile")
	}

	return t
}

// batchSize returns --batch-size when given and the configured size otherwise.
func batchSize(cmd *cli.Command, cfg *config.Config) (int, error) {
	if !cmd.IsSet("batch-size") {
		return cfg.Loader.MaxRowsPerBatch, nil
	}

	n := cmd.Int("batch-size")
	if n < 0 {
		return 0, errors.Errorf("--batch-size must not be negative, got %d", n)
	}

	return n, nil
}

// scriptArg returns the single script path a command was given.
func scriptArg(cmd *cli.Command) (string, error) {
	if cmd.Args().Len() != 1 {
		return "", errors.New("exactly one script path argument is required")
	}

	return cmd.Args().First(), nil
}

// readScript scans the script at path, or standard input when path is "-",
// applying the configured ignore patterns. Irregularities are logged.
func readScript(cmd *cli.Command, cfg *config.Config, path string) (*scanner.Script, error) {
	ignore, err := cfg.IgnorePatterns()
	if err != nil {
		return nil, err
	}

	var r io.Reader = cmd.Root().Reader
	if path != "-" {
		f, err := os.Open(path)
		if err != nil {
			return nil, errors.Wrapf(err, "failed to open script: %s", path)
		}
		defer func() { _ = f.Close() }()

		r = f
	}

	script, err := scanner.Scan(r, scanner.WithIgnore(ignore...))
	if err != nil {
		return nil, errors.Wrapf(err, "failed to read script: %s", path)
	}

	for _, irr := range script.Irregularities {
		slog.Warn("Script irregularity", "file", path, "line", irr.Line, "reason", irr.Reason)
	}

	return script, nil
}

func writer(cmd *cli.Command) io.Writer {
	return cmd.Root().Writer
}

func printf(w io.Writer, format string, args ...any) {
	_, _ = fmt.Fprintf(w, format, args...)
}

func requireConfig(cfg *config.Config) func(context.Context, *cli.Command) (context.Context, error) {
	return func(ctx context.Context, cmd *cli.Command) (context.Context, error) {
		if cfg == nil {
			return ctx, errors.New("no configuration available")
		}

		return ctx, nil
	}
}
