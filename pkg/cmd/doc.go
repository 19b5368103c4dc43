// Package cmd provides the CLI commands of bulkloader.
//
// # Available Commands
//
//   - load: Execute a SQL script against a target database
//   - plan: Print the two-pass execution plan of a script without connecting
//   - verify: Count the rows of tables in the target database
//
// # Command Structure
//
// Each command is a function returning a *cli.Command (urfave/cli/v3). The
// functions take an fx parameter struct and are provided into the "commands"
// value group by Module; Run assembles them under the root command and runs
// the application on the fx lifecycle.
//
// # Configuration
//
// Commands read bulkloader.yaml from the working directory when present (see
// the config package). Connection flags override the configured target:
//   - --url, -u: Connection string (BULKLOADER_URL)
//   - --driver: clickhouse, postgres, pgx, mysql or sqlite (BULKLOADER_DRIVER)
//   - --cafile, --certfile, --keyfile: mTLS files for ClickHouse
//
// # Example Usage
//
//	bulkloader plan seed.sql                                  # dry run
//	bulkloader load --yes seed.sql                            # load into localhost:9000
//	bulkloader load --driver sqlite --url app.db --verify seed.sql
//	bulkloader load --sandbox seed.sql                        # rehearse in Docker
//	bulkloader verify people pets
package cmd
