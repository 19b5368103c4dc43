package clickhouse

import (
	"context"
	"fmt"
	"regexp"
	"strconv"
	"strings"

	"github.com/pkg/errors"
)

var versionRegex = regexp.MustCompile(`^(\d+)\.(\d+)(?:\.(\d+))?(?:\.(\d+))?`)

// VersionInfo is a parsed ClickHouse server version.
type VersionInfo struct {
	Major int
	Minor int
	Patch int
	Raw   string
}

// String returns the version as "major.minor.patch".
func (v VersionInfo) String() string {
	return fmt.Sprintf("%d.%d.%d", v.Major, v.Minor, v.Patch)
}

// IsAtLeast reports whether v is major.minor or newer.
func (v VersionInfo) IsAtLeast(major, minor int) bool {
	if v.Major != major {
		return v.Major > major
	}

	return v.Minor >= minor
}

// SupportsAsyncInsert reports whether the server understands the async_insert
// setting, which appeared in 21.11.
func (v VersionInfo) SupportsAsyncInsert() bool {
	return v.IsAtLeast(21, 11)
}

// GetVersion queries and parses the server version.
func (c *Client) GetVersion(ctx context.Context) (*VersionInfo, error) {
	var raw string
	if err := c.conn.QueryRow(ctx, "SELECT version()").Scan(&raw); err != nil {
		return nil, errors.Wrap(err, "failed to query ClickHouse version")
	}

	version, err := parseVersion(raw)
	if err != nil {
		return nil, errors.Wrapf(err, "failed to parse ClickHouse version: %s", raw)
	}

	return version, nil
}

// parseVersion accepts "21.10.3.9", "22.8.2.11-testing", "21.10.3.9 (official
// build)" and shorter "major.minor[.patch]" forms.
func parseVersion(raw string) (*VersionInfo, error) {
	cleaned := strings.TrimSpace(raw)
	if i := strings.IndexAny(cleaned, " -"); i != -1 {
		cleaned = cleaned[:i]
	}

	matches := versionRegex.FindStringSubmatch(cleaned)
	if matches == nil {
		return nil, errors.Errorf("invalid version format: %q", raw)
	}

	// the regex guarantees digits, so Atoi can only fail on overflow
	parts := make([]int, 3)
	for i := range parts {
		if matches[i+1] == "" {
			continue
		}

		n, err := strconv.Atoi(matches[i+1])
		if err != nil {
			return nil, errors.Wrapf(err, "invalid version component %q", matches[i+1])
		}

		parts[i] = n
	}

	return &VersionInfo{
		Major: parts[0],
		Minor: parts[1],
		Patch: parts[2],
		Raw:   raw,
	}, nil
}
