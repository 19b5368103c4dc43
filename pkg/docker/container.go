package docker

import (
	"context"
	"fmt"
	"path/filepath"
	"time"

	"github.com/docker/docker/api/types/container"
	"github.com/docker/docker/api/types/mount"
	"github.com/docker/go-connections/nat"
	"github.com/pkg/errors"
	"github.com/testcontainers/testcontainers-go"
	"github.com/testcontainers/testcontainers-go/modules/clickhouse"
	"github.com/testcontainers/testcontainers-go/wait"
)

const (
	// DefaultVersion is the ClickHouse image tag used when Options.Version is
	// empty.
	DefaultVersion = "latest"

	httpPort      = nat.Port("8123/tcp")
	startDeadline = 5 * time.Minute
)

type (
	// Options configures a sandbox container.
	Options struct {
		// Version is the clickhouse/clickhouse-server image tag (without the
		// -alpine suffix).
		Version string

		// ConfigDir is an optional directory mounted as the server's config.d.
		// Relative paths are resolved against the working directory.
		ConfigDir string
	}

	// Sandbox is a disposable ClickHouse server used to rehearse a load before
	// running it against a real target.
	Sandbox struct {
		options   Options
		container *clickhouse.ClickHouseContainer
	}
)

// New returns a stopped sandbox.
//
// Example:
//
//	sandbox := docker.New(docker.Options{Version: "25.7"})
//	if err := sandbox.Start(ctx); err != nil {
//		log.Fatal(err)
//	}
//	defer sandbox.Stop(ctx)
//
//	dsn, err := sandbox.DSN(ctx)
func New(opts Options) *Sandbox {
	return &Sandbox{options: opts}
}

// Image returns the image reference the sandbox runs.
func (s *Sandbox) Image() string {
	version := s.options.Version
	if version == "" {
		version = DefaultVersion
	}

	return fmt.Sprintf("clickhouse/clickhouse-server:%s-alpine", version)
}

// Start pulls the image if needed and waits until the HTTP interface answers.
func (s *Sandbox) Start(ctx context.Context) error {
	if s.container != nil {
		return errors.New("sandbox is already running")
	}

	customizers := []testcontainers.ContainerCustomizer{
		clickhouse.WithUsername("default"),
		clickhouse.WithPassword(""),
		testcontainers.WithEnv(map[string]string{"CLICKHOUSE_DEFAULT_ACCESS_MANAGEMENT": "1"}),
		testcontainers.WithWaitStrategyAndDeadline(
			startDeadline,
			wait.NewHTTPStrategy("/").
				WithPort(httpPort).
				WithStatusCodeMatcher(func(status int) bool { return status == 200 }),
		),
	}

	if s.options.ConfigDir != "" {
		dir, err := filepath.Abs(s.options.ConfigDir)
		if err != nil {
			return errors.Wrapf(err, "failed to resolve config dir: %s", s.options.ConfigDir)
		}

		customizers = append(customizers, testcontainers.WithHostConfigModifier(func(hc *container.HostConfig) {
			hc.Mounts = append(hc.Mounts, mount.Mount{
				Type:     mount.TypeBind,
				Source:   dir,
				Target:   "/etc/clickhouse-server/config.d",
				ReadOnly: true,
			})
		}))
	}

	c, err := clickhouse.Run(ctx, s.Image(), customizers...)
	if err != nil {
		return errors.Wrap(err, "failed to start ClickHouse sandbox")
	}

	s.container = c
	return nil
}

// Stop terminates and removes the container. Stopping a sandbox that is not
// running is a no-op.
func (s *Sandbox) Stop(ctx context.Context) error {
	if s.container == nil {
		return nil
	}

	err := s.container.Terminate(ctx)
	s.container = nil

	return errors.Wrap(err, "failed to stop ClickHouse sandbox")
}

// DSN returns a clickhouse:// URL for the native protocol port.
func (s *Sandbox) DSN(ctx context.Context) (string, error) {
	if s.container == nil {
		return "", errors.New("sandbox is not running")
	}

	dsn, err := s.container.ConnectionString(ctx)
	if err != nil {
		return "", errors.Wrap(err, "failed to get sandbox connection string")
	}

	return dsn, nil
}

// IsRunning reports whether Start has succeeded and Stop has not been called.
func (s *Sandbox) IsRunning() bool {
	return s.container != nil
}
