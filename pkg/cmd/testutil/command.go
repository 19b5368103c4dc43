package testutil

import (
	"bytes"
	"context"
	"strings"
	"testing"

	"github.com/urfave/cli/v3"
)

// RunCommand executes command as the root of a test app with args, feeding
// stdin to it, and returns everything it wrote.
func RunCommand(t *testing.T, command *cli.Command, stdin string, args ...string) (string, error) {
	t.Helper()
	return RunCommandWithContext(context.Background(), t, command, stdin, args...)
}

// RunCommandWithContext is RunCommand with a custom context.
func RunCommandWithContext(ctx context.Context, t *testing.T, command *cli.Command, stdin string, args ...string) (string, error) {
	t.Helper()

	var out bytes.Buffer
	app := &cli.Command{
		Name:   "test",
		Flags:  command.Flags,
		Before: command.Before,
		Action: command.Action,
		Reader: strings.NewReader(stdin),
		Writer: &out,
	}

	err := app.Run(ctx, append([]string{"test"}, args...))
	return out.String(), err
}
