package config

import (
	"io"
	"os"
	"regexp"
	"slices"

	"github.com/pkg/errors"
	"github.com/pseudomuto/bulkloader/pkg/consts"
	"gopkg.in/yaml.v3"
)

type (
	// Config is the contents of bulkloader.yaml.
	Config struct {
		Target  Target  `yaml:"target"`
		Loader  Loader  `yaml:"loader"`
		Verify  Verify  `yaml:"verify"`
		Sandbox Sandbox `yaml:"sandbox"`
	}

	// Target describes the execution target statements are loaded into.
	Target struct {
		// Driver selects the target implementation: clickhouse, postgres, pgx,
		// mysql or sqlite.
		Driver string `yaml:"driver"`

		// DSN is passed to the driver unchanged.
		DSN string `yaml:"dsn"`

		// Settings are ClickHouse query settings applied to every statement.
		// Ignored by the other drivers.
		Settings map[string]any `yaml:"settings,omitempty"`

		TLS TLS `yaml:"tls,omitempty"`
	}

	// TLS locates the PEM files for mTLS ClickHouse connections.
	TLS struct {
		CAFile   string `yaml:"ca_file,omitempty"`
		CertFile string `yaml:"cert_file,omitempty"`
		KeyFile  string `yaml:"key_file,omitempty"`
	}

	// Loader controls how scripts are scanned and executed.
	Loader struct {
		// MaxRowsPerBatch is the largest number of VALUES groups per INSERT.
		// Omitted or zero values fall back to consts.DefaultMaxRowsPerBatch.
		MaxRowsPerBatch int `yaml:"max_rows_per_batch"`

		// Ignore holds regular expressions; statements matching any of them
		// are skipped.
		Ignore []string `yaml:"ignore,omitempty"`
	}

	// Verify lists the tables counted after a load. When empty the tables are
	// taken from the script's CREATE TABLE statements.
	Verify struct {
		Tables []string `yaml:"tables,omitempty"`
	}

	// Sandbox configures the throwaway ClickHouse used by `load --sandbox`.
	Sandbox struct {
		Version   string `yaml:"version,omitempty"`
		ConfigDir string `yaml:"config_dir,omitempty"`
	}
)

// Defaults returns the configuration used when no bulkloader.yaml exists.
func Defaults() *Config {
	cfg := new(Config)
	cfg.applyDefaults()
	return cfg
}

// LoadConfig parses a YAML configuration, fills in defaults for omitted
// values and validates the result. An empty document yields Defaults().
//
// Example:
//
//	cfg, err := config.LoadConfig(strings.NewReader(`
//	target:
//	  driver: postgres
//	  dsn: postgres://loader@localhost/sales
//	loader:
//	  max_rows_per_batch: 1000
//	`))
//	if err != nil {
//		log.Fatal(err)
//	}
func LoadConfig(r io.Reader) (*Config, error) {
	var cfg Config
	if err := yaml.NewDecoder(r).Decode(&cfg); err != nil && !errors.Is(err, io.EOF) {
		return nil, errors.Wrap(err, "failed to unmarshal config")
	}

	cfg.applyDefaults()
	if err := cfg.Validate(); err != nil {
		return nil, err
	}

	return &cfg, nil
}

// LoadConfigFile loads the configuration stored at path.
//
// Example:
//
//	cfg, err := config.LoadConfigFile("bulkloader.yaml")
//	if err != nil {
//		log.Fatal("Failed to load config:", err)
//	}
func LoadConfigFile(path string) (*Config, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, errors.Wrapf(err, "failed to open file: %s", path)
	}
	defer func() { _ = f.Close() }()

	return LoadConfig(f)
}

// Validate checks values that defaults cannot repair.
func (c *Config) Validate() error {
	if !slices.Contains(consts.Drivers, c.Target.Driver) {
		return errors.Errorf("unsupported driver %q (expected one of %v)", c.Target.Driver, consts.Drivers)
	}

	if c.Loader.MaxRowsPerBatch < 0 {
		return errors.Errorf("max_rows_per_batch must not be negative, got %d", c.Loader.MaxRowsPerBatch)
	}

	_, err := c.IgnorePatterns()
	return err
}

// IgnorePatterns compiles Loader.Ignore.
func (c *Config) IgnorePatterns() ([]*regexp.Regexp, error) {
	patterns := make([]*regexp.Regexp, 0, len(c.Loader.Ignore))
	for _, expr := range c.Loader.Ignore {
		re, err := regexp.Compile(expr)
		if err != nil {
			return nil, errors.Wrapf(err, "invalid ignore pattern %q", expr)
		}

		patterns = append(patterns, re)
	}

	return patterns, nil
}

func (c *Config) applyDefaults() {
	if c.Target.Driver == "" {
		c.Target.Driver = consts.DefaultDriver
	}
	if c.Target.DSN == "" && c.Target.Driver == consts.DefaultDriver {
		c.Target.DSN = consts.DefaultDSN
	}
	if c.Loader.MaxRowsPerBatch == 0 {
		c.Loader.MaxRowsPerBatch = consts.DefaultMaxRowsPerBatch
	}
	if c.Sandbox.Version == "" {
		c.Sandbox.Version = consts.DefaultSandboxVersion
	}
}
