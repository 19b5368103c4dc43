package clickhouse

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestParseVersion(t *testing.T) {
	tests := []struct {
		input   string
		want    string
		wantErr bool
	}{
		{input: "21.10.3.9", want: "21.10.3"},
		{input: "21.10.3.9 (official build)", want: "21.10.3"},
		{input: "22.8.2.11-testing", want: "22.8.2"},
		{input: "20.3", want: "20.3.0"},
		{input: " 25.7.1 ", want: "25.7.1"},
		{input: "invalid", wantErr: true},
		{input: "", wantErr: true},
	}

	for _, tt := range tests {
		t.Run(tt.input, func(t *testing.T) {
			v, err := parseVersion(tt.input)
			if tt.wantErr {
				require.Error(t, err)
				assert.Nil(t, v)
				return
			}

			require.NoError(t, err)
			assert.Equal(t, tt.want, v.String())
			assert.Equal(t, tt.input, v.Raw)
		})
	}
}

func TestVersionInfo_IsAtLeast(t *testing.T) {
	tests := []struct {
		version VersionInfo
		want    bool
	}{
		{version: VersionInfo{Major: 21, Minor: 11}, want: true},
		{version: VersionInfo{Major: 22, Minor: 1}, want: true},
		{version: VersionInfo{Major: 21, Minor: 12}, want: true},
		{version: VersionInfo{Major: 20, Minor: 15}, want: false},
		{version: VersionInfo{Major: 21, Minor: 10, Patch: 9}, want: false},
	}

	for _, tt := range tests {
		t.Run(tt.version.String(), func(t *testing.T) {
			assert.Equal(t, tt.want, tt.version.IsAtLeast(21, 11))
			assert.Equal(t, tt.want, tt.version.SupportsAsyncInsert())
		})
	}
}
