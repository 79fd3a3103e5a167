package store

import (
	"testing"

	"github.com/stretchr/testify/require"
)

func TestSchemaVersionOfMigrateScript(t *testing.T) {
	tests := []struct {
		filePath string
		want     string
		wantErr  bool
	}{
		{"migration/sqlite/LATEST.sql", "", false},
		{"migration/sqlite/0.4/01__add_search_tokens.sql", "0.4.0", false},
		{"migration/postgres/0.5/02__backfill.sql", "0.5.0", false},
		{"migration/sqlite/bogus/extra/01.sql", "", true},
		{"migration/sqlite/0.4.1/01.sql", "", true},
	}
	for _, tt := range tests {
		got, err := schemaVersionOfMigrateScript(tt.filePath)
		if tt.wantErr {
			require.Error(t, err, tt.filePath)
			continue
		}
		require.NoError(t, err, tt.filePath)
		require.Equal(t, tt.want, got, tt.filePath)
	}
}

func TestShouldApplyMigration(t *testing.T) {
	tests := []struct {
		fileVersion      string
		currentDBVersion string
		targetVersion    string
		want             bool
	}{
		// fresh tracking state applies everything up to the target
		{"0.2.0", "", "0.3.0", true},
		{"0.2.0", "0.0.0", "0.3.0", true},
		// already applied versions are skipped
		{"0.2.0", "0.2.0", "0.3.0", false},
		{"0.1.0", "0.2.0", "0.3.0", false},
		// files beyond the target are not applied
		{"0.4.0", "0.2.0", "0.3.0", false},
		// the target's own migrations are included
		{"0.3.0", "0.2.0", "0.3.0", true},
	}
	for _, tt := range tests {
		got := shouldApplyMigration(tt.fileVersion, tt.currentDBVersion, tt.targetVersion)
		require.Equal(t, tt.want, got, "file %s db %s target %s", tt.fileVersion, tt.currentDBVersion, tt.targetVersion)
	}
}

func TestIsVersionEmpty(t *testing.T) {
	require.True(t, isVersionEmpty(""))
	require.True(t, isVersionEmpty("0.0.0"))
	require.False(t, isVersionEmpty("0.3.0"))
}
