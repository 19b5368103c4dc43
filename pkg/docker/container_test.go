package docker_test

import (
	"context"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/pseudomuto/bulkloader/pkg/cmd/testutil"
	"github.com/pseudomuto/bulkloader/pkg/consts"
	"github.com/pseudomuto/bulkloader/pkg/docker"
	"github.com/stretchr/testify/require"
)

func TestSandbox_Image(t *testing.T) {
	require.Equal(t, "clickhouse/clickhouse-server:latest-alpine", docker.New(docker.Options{}).Image())
	require.Equal(t, "clickhouse/clickhouse-server:25.7-alpine", docker.New(docker.Options{Version: "25.7"}).Image())
}

func TestSandbox_NotRunning(t *testing.T) {
	sandbox := docker.New(docker.Options{})
	require.False(t, sandbox.IsRunning())
	require.NoError(t, sandbox.Stop(context.Background()))

	_, err := sandbox.DSN(context.Background())
	require.EqualError(t, err, "sandbox is not running")
}

func TestSandbox_StartStop(t *testing.T) {
	if testing.Short() {
		t.Skip("Skipping Docker tests in short mode")
	}
	testutil.SkipIfNoDocker(t)

	configDir := filepath.Join(t.TempDir(), "config.d")
	require.NoError(t, os.MkdirAll(configDir, consts.ModeDir))
	require.NoError(t, os.WriteFile(
		filepath.Join(configDir, "logger.xml"),
		[]byte("<clickhouse><logger><level>warning</level></logger></clickhouse>"),
		consts.ModeFile,
	))

	ctx, cancel := context.WithTimeout(context.Background(), 2*time.Minute)
	defer cancel()

	sandbox := docker.New(docker.Options{Version: "25.7", ConfigDir: configDir})
	require.NoError(t, sandbox.Start(ctx))
	defer func() { _ = sandbox.Stop(ctx) }()

	require.True(t, sandbox.IsRunning())
	require.EqualError(t, sandbox.Start(ctx), "sandbox is already running")

	dsn, err := sandbox.DSN(ctx)
	require.NoError(t, err)
	require.Contains(t, dsn, "clickhouse://")

	require.NoError(t, sandbox.Stop(ctx))
	require.False(t, sandbox.IsRunning())
}
