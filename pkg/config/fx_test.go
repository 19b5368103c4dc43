package config_test

import (
	"testing"

	"github.com/pseudomuto/bulkloader/pkg/cmd/testutil"
	. "github.com/pseudomuto/bulkloader/pkg/config"
	"github.com/stretchr/testify/require"
	"go.uber.org/fx"
	"go.uber.org/fx/fxtest"
)

func TestModule(t *testing.T) {
	t.Run("without config file", func(t *testing.T) {
		t.Chdir(t.TempDir())

		var cfg *Config
		app := fxtest.New(t, Module, fx.Populate(&cfg))
		app.RequireStart().RequireStop()

		require.Equal(t, Defaults(), cfg)
	})

	t.Run("with config file", func(t *testing.T) {
		dir := t.TempDir()
		want := testutil.SQLiteConfig(t)
		want.Loader.MaxRowsPerBatch = 42
		want.Verify.Tables = []string{"people"}
		testutil.WriteConfig(t, dir, want)
		t.Chdir(dir)

		var cfg *Config
		app := fxtest.New(t, Module, fx.Populate(&cfg))
		app.RequireStart().RequireStop()

		require.Equal(t, want, cfg)
	})

	t.Run("invalid config file", func(t *testing.T) {
		dir := t.TempDir()
		bad := Defaults()
		bad.Target.Driver = "oracle"
		testutil.WriteConfig(t, dir, bad)
		t.Chdir(dir)

		var cfg *Config
		app := fx.New(fx.NopLogger, Module, fx.Populate(&cfg))
		require.ErrorContains(t, app.Err(), `unsupported driver "oracle"`)
	})
}
