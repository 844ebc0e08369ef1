package store

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	entsql "entgo.io/ent/dialect/sql"
	"golang.org/x/mod/semver"
)

// SchemaVersion is the version of the typed store schema written by this
// build. Additive changes bump the patch or minor component.
const SchemaVersion = "v1.0.0"

// ErrSchemaTooNew is returned when a database or export document was
// written by a newer schema than this build understands.
var ErrSchemaTooNew = errors.New("data was written by a newer schema version")

// checkVersion rejects databases stamped with a newer major.minor schema.
// A database without a settings table is treated as fresh.
func (s *Store) checkVersion(ctx context.Context) error {
	var name string
	err := s.db.QueryRowContext(ctx,
		`SELECT name FROM sqlite_master WHERE type = 'table' AND name = ?`, settingsTable,
	).Scan(&name)
	if errors.Is(err, sql.ErrNoRows) {
		return nil
	}
	if err != nil {
		return fmt.Errorf("inspect schema: %w", err)
	}

	stored, ok, err := getSetting(ctx, s.db, settingSchemaVersion)
	if err != nil {
		return fmt.Errorf("read schema version: %w", err)
	}
	if !ok {
		return nil
	}
	return CheckCompatible(stored)
}

// stampVersion records SchemaVersion unless the stored version is already
// newer in its patch component.
func (s *Store) stampVersion(ctx context.Context) error {
	stored, ok, err := getSetting(ctx, s.db, settingSchemaVersion)
	if err != nil {
		return fmt.Errorf("read schema version: %w", err)
	}
	if ok && semver.Compare(stored, SchemaVersion) >= 0 {
		return nil
	}
	if err := putSetting(ctx, s.db, settingSchemaVersion, SchemaVersion); err != nil {
		return fmt.Errorf("stamp schema version: %w", err)
	}
	return nil
}

// StoredVersion returns the schema version recorded in the database.
func (s *Store) StoredVersion(ctx context.Context) (string, error) {
	v, _, err := getSetting(ctx, s.db, settingSchemaVersion)
	return v, err
}

// CheckCompatible reports whether data stamped with version can be read
// by this build. Versions differing only in the patch component are
// compatible in both directions.
func CheckCompatible(version string) error {
	if !semver.IsValid(version) {
		return fmt.Errorf("invalid schema version %q", version)
	}
	if semver.Compare(semver.MajorMinor(version), semver.MajorMinor(SchemaVersion)) > 0 {
		return fmt.Errorf("%w: %s > %s", ErrSchemaTooNew, version, SchemaVersion)
	}
	return nil
}

func getSetting(ctx context.Context, e execer, key string) (string, bool, error) {
	rows, err := query(ctx, e, sqlite().
		Select(colValue).
		From(entsql.Table(settingsTable)).
		Where(entsql.EQ(colKey, key)))
	if err != nil {
		return "", false, err
	}
	defer rows.Close()

	if !rows.Next() {
		return "", false, rows.Err()
	}
	var v string
	if err := rows.Scan(&v); err != nil {
		return "", false, err
	}
	return v, true, rows.Err()
}

func putSetting(ctx context.Context, e execer, key, value string) error {
	return exec(ctx, e, sqlite().
		Insert(settingsTable).
		Columns(colKey, colValue).
		Values(key, value).
		OnConflict(entsql.ConflictColumns(colKey), entsql.ResolveWithNewValues()))
}
