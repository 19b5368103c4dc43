package testutil

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/pseudomuto/bulkloader/pkg/config"
	"github.com/pseudomuto/bulkloader/pkg/consts"
	"github.com/stretchr/testify/require"
	"gopkg.in/yaml.v3"
)

// WriteScript writes sql to a script file in a temporary directory and
// returns its path.
func WriteScript(t *testing.T, sql string) string {
	t.Helper()

	path := filepath.Join(t.TempDir(), "script.sql")
	require.NoError(t, os.WriteFile(path, []byte(sql), consts.ModeFile))

	return path
}

// SQLiteConfig returns the default configuration pointed at a fresh SQLite
// database file.
func SQLiteConfig(t *testing.T) *config.Config {
	t.Helper()

	cfg := config.Defaults()
	cfg.Target = config.Target{
		Driver: "sqlite",
		DSN:    filepath.Join(t.TempDir(), "bulkloader.db"),
	}

	return cfg
}

// WriteConfig marshals cfg into a bulkloader.yaml in dir.
func WriteConfig(t *testing.T, dir string, cfg *config.Config) string {
	t.Helper()

	data, err := yaml.Marshal(cfg)
	require.NoError(t, err)

	path := filepath.Join(dir, consts.ConfigFile)
	require.NoError(t, os.WriteFile(path, data, consts.ModeFile))

	return path
}
