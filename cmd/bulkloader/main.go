package main

import (
	"context"
	"os"
	"os/signal"
	"syscall"

	"github.com/pseudomuto/bulkloader/pkg/cmd"
	"github.com/pseudomuto/bulkloader/pkg/config"
	"go.uber.org/fx"
)

// NB: These are set by GoReleaser during a build.
var (
	version string
	commit  string
	date    string
)

func main() {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	fx.New(
		fx.NopLogger,
		fx.Supply(&cmd.Version{
			Version:   version,
			Commit:    commit,
			Timestamp: date,
		}),
		fx.Provide(
			func() []string { return os.Args },
			func() context.Context { return ctx },
		),
		config.Module,
		cmd.Module,
	).Run()
}
