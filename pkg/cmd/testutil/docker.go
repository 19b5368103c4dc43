package testutil

import (
	"context"
	"os/exec"
	"testing"

	"github.com/pseudomuto/bulkloader/pkg/docker"
	"github.com/stretchr/testify/require"
)

// SkipIfNoDocker skips the test if Docker is not available
func SkipIfNoDocker(t *testing.T) {
	t.Helper()

	if _, err := exec.LookPath("docker"); err != nil {
		t.Skip("Docker not available")
	}

	cmd := exec.CommandContext(t.Context(), "docker", "ps")
	if err := cmd.Run(); err != nil {
		t.Skip("Docker daemon not running")
	}
}

// StartSandbox starts a ClickHouse sandbox for the duration of the test and
// returns its DSN. The test is skipped in short mode or without Docker.
func StartSandbox(t *testing.T) string {
	t.Helper()

	if testing.Short() {
		t.Skip("Skipping integration test in short mode")
	}
	SkipIfNoDocker(t)

	sandbox := docker.New(docker.Options{Version: "25.7"})
	require.NoError(t, sandbox.Start(t.Context()), "Failed to start ClickHouse sandbox")
	t.Cleanup(func() { _ = sandbox.Stop(context.Background()) })

	dsn, err := sandbox.DSN(t.Context())
	require.NoError(t, err)

	return dsn
}
