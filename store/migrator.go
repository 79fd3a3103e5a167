package store

import (
	"context"
	"database/sql"
	"embed"
	"fmt"
	"io/fs"
	"log/slog"
	"path/filepath"
	"sort"
	"strings"

	"github.com/pkg/errors"

	"github.com/martin635579763/chordsync/internal/version"
)

// Migration system overview:
//
// Schema version is stored in system_setting under "schema_version".
//
// Flow:
// 1. preMigrate: if the DB is uninitialized, apply LATEST.sql and record the
//    current schema version.
// 2. Migrate: apply incremental migrations between the stored version and the
//    target version, in one transaction.
//
// Migration files live in store/migration/{driver}/{version}/NN__description.sql
// and are applied in lexicographic order. LATEST.sql holds the full schema for
// fresh installations.

//go:embed migration
var migrationFS embed.FS

const (
	latestSchemaFileName = "LATEST.sql"
	schemaVersionSetting = "schema_version"

	// defaultSchemaVersion is used for installations without version tracking.
	defaultSchemaVersion = "0.0.0"
)

func isVersionEmpty(schemaVersion string) bool {
	return schemaVersion == "" || schemaVersion == defaultSchemaVersion
}

// Migrate migrates the database schema to the latest version.
func (s *Store) Migrate(ctx context.Context) error {
	if err := s.preMigrate(ctx); err != nil {
		return errors.Wrap(err, "failed to pre-migrate")
	}

	currentSchemaVersion, err := s.getCurrentSchemaVersion(ctx)
	if err != nil {
		return errors.Wrap(err, "failed to get current schema version")
	}
	targetSchemaVersion := version.GetSchemaVersion(version.GetCurrentVersion(s.profile.Mode))

	if !isVersionEmpty(currentSchemaVersion) && version.IsVersionGreaterThan(currentSchemaVersion, targetSchemaVersion) {
		slog.Error("cannot downgrade schema version",
			slog.String("databaseVersion", currentSchemaVersion),
			slog.String("targetVersion", targetSchemaVersion),
		)
		return errors.Errorf("cannot downgrade schema version from %s to %s", currentSchemaVersion, targetSchemaVersion)
	}

	if isVersionEmpty(currentSchemaVersion) || version.IsVersionGreaterThan(targetSchemaVersion, currentSchemaVersion) {
		if err := s.applyMigrations(ctx, currentSchemaVersion, targetSchemaVersion); err != nil {
			return errors.Wrap(err, "failed to apply migrations")
		}
	}
	return nil
}

// preMigrate applies the full latest schema when the database is uninitialized.
func (s *Store) preMigrate(ctx context.Context) error {
	initialized, err := s.driver.IsInitialized(ctx)
	if err != nil {
		return errors.Wrap(err, "failed to check if database is initialized")
	}
	if initialized {
		return nil
	}

	filePath := filepath.Join(s.getMigrationBasePath(), latestSchemaFileName)
	bytes, err := migrationFS.ReadFile(filePath)
	if err != nil {
		return errors.Wrapf(err, "failed to read latest schema file: %s", filePath)
	}

	tx, err := s.driver.GetDB().Begin()
	if err != nil {
		return errors.Wrap(err, "failed to start transaction")
	}
	defer tx.Rollback()

	if _, err := tx.ExecContext(ctx, string(bytes)); err != nil {
		return errors.Wrap(err, "failed to execute latest schema")
	}
	if err := tx.Commit(); err != nil {
		return errors.Wrap(err, "failed to commit latest schema")
	}

	targetSchemaVersion := version.GetSchemaVersion(version.GetCurrentVersion(s.profile.Mode))
	if err := s.updateCurrentSchemaVersion(ctx, targetSchemaVersion); err != nil {
		return errors.Wrap(err, "failed to record schema version")
	}

	slog.Info("database initialized", slog.String("schemaVersion", targetSchemaVersion))
	return nil
}

func shouldApplyMigration(fileVersion, currentDBVersion, targetVersion string) bool {
	if isVersionEmpty(currentDBVersion) {
		currentDBVersion = defaultSchemaVersion
	}
	return version.IsVersionGreaterThan(fileVersion, currentDBVersion) &&
		version.IsVersionGreaterOrEqualThan(targetVersion, fileVersion)
}

// applyMigrations applies all migration files between the current and target
// schema versions in a single transaction.
func (s *Store) applyMigrations(ctx context.Context, currentSchemaVersion, targetSchemaVersion string) error {
	filePaths, err := fs.Glob(migrationFS, fmt.Sprintf("%s*/*.sql", s.getMigrationBasePath()))
	if err != nil {
		return errors.Wrap(err, "failed to read migration files")
	}
	sort.Strings(filePaths)

	tx, err := s.driver.GetDB().Begin()
	if err != nil {
		return errors.Wrap(err, "failed to start transaction")
	}
	defer tx.Rollback()

	slog.Info("start migration",
		slog.String("currentSchemaVersion", currentSchemaVersion),
		slog.String("targetSchemaVersion", targetSchemaVersion))

	migrationsApplied := 0
	for _, filePath := range filePaths {
		fileSchemaVersion, err := schemaVersionOfMigrateScript(filePath)
		if err != nil {
			return errors.Wrap(err, "failed to get schema version of migrate script")
		}
		if fileSchemaVersion == "" {
			// LATEST.sql, only applied by preMigrate.
			continue
		}

		if shouldApplyMigration(fileSchemaVersion, currentSchemaVersion, targetSchemaVersion) {
			slog.Info("applying migration",
				slog.String("file", filePath),
				slog.String("version", fileSchemaVersion))

			bytes, err := migrationFS.ReadFile(filePath)
			if err != nil {
				return errors.Wrapf(err, "failed to read migration file: %s", filePath)
			}
			if _, err := tx.ExecContext(ctx, string(bytes)); err != nil {
				return errors.Wrapf(err, "failed to execute migration %s", filePath)
			}
			migrationsApplied++
		}
	}

	if err := tx.Commit(); err != nil {
		return errors.Wrap(err, "failed to commit migration transaction")
	}

	slog.Info("migration completed", slog.Int("migrationsApplied", migrationsApplied))

	return s.updateCurrentSchemaVersion(ctx, targetSchemaVersion)
}

func (s *Store) getMigrationBasePath() string {
	return fmt.Sprintf("migration/%s/", s.profile.Driver)
}

// schemaVersionOfMigrateScript extracts the version directory from a migration
// file path such as "migration/sqlite/0.4/01__add_column.sql". Returns an empty
// version for files directly under the driver directory (LATEST.sql).
func schemaVersionOfMigrateScript(filePath string) (string, error) {
	parts := strings.Split(filePath, "/")
	if len(parts) == 3 {
		return "", nil
	}
	if len(parts) != 4 {
		return "", errors.Errorf("unexpected migration file path: %s", filePath)
	}
	minorVersion := parts[2]
	if strings.Count(minorVersion, ".") != 1 {
		return "", errors.Errorf("unexpected migration version directory: %s", minorVersion)
	}
	return minorVersion + ".0", nil
}

func (s *Store) getCurrentSchemaVersion(ctx context.Context) (string, error) {
	stmt := "SELECT value FROM system_setting WHERE name = $1"
	if s.profile.Driver == "sqlite" {
		stmt = "SELECT value FROM system_setting WHERE name = ?"
	}

	var value string
	err := s.driver.GetDB().QueryRowContext(ctx, stmt, schemaVersionSetting).Scan(&value)
	if err == sql.ErrNoRows {
		return "", nil
	}
	if err != nil {
		return "", errors.Wrap(err, "failed to query schema version")
	}
	return value, nil
}

func (s *Store) updateCurrentSchemaVersion(ctx context.Context, schemaVersion string) error {
	var stmt string
	switch s.profile.Driver {
	case "sqlite":
		stmt = "INSERT INTO system_setting (name, value) VALUES (?, ?) ON CONFLICT (name) DO UPDATE SET value = excluded.value"
	default:
		stmt = "INSERT INTO system_setting (name, value) VALUES ($1, $2) ON CONFLICT (name) DO UPDATE SET value = EXCLUDED.value"
	}
	if _, err := s.driver.GetDB().ExecContext(ctx, stmt, schemaVersionSetting, schemaVersion); err != nil {
		return errors.Wrap(err, "failed to upsert schema version")
	}
	return nil
}
