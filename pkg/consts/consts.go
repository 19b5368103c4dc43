package consts

import "os"

const (
	// ModeDir is the standard file mode for creating directories
	ModeDir = os.FileMode(0o755)

	// ModeFile is the standard file mode for creating files
	ModeFile = os.FileMode(0o644)

	// ConfigFile is the configuration file looked up in the working directory.
	ConfigFile = "bulkloader.yaml"

	// EnvPrefix prefixes every environment variable read by the CLI.
	EnvPrefix = "BULKLOADER_"

	// DefaultDriver is the execution target used when none is configured.
	DefaultDriver = "clickhouse"

	// DefaultDSN points at a local ClickHouse native port.
	DefaultDSN = "localhost:9000"

	// DefaultMaxRowsPerBatch is the largest number of VALUES groups sent in a
	// single INSERT.
	DefaultMaxRowsPerBatch = 500

	// DefaultSandboxVersion is the ClickHouse image tag used by --sandbox.
	DefaultSandboxVersion = "25.7"
)

// Drivers lists the accepted target driver names.
var Drivers = []string{"clickhouse", "postgres", "pgx", "mysql", "sqlite"}
