package sqlite

import (
	"context"
	"database/sql"
	"encoding/json"
	"fmt"
	"strings"

	"github.com/martin635579763/chordsync/store"
)

func (d *DB) UpsertFretboardEntry(ctx context.Context, upsert *store.FretboardEntry) (*store.FretboardEntry, error) {
	shape, err := json.Marshal(upsert.Shape)
	if err != nil {
		return nil, fmt.Errorf("failed to marshal shape: %w", err)
	}

	fields := []string{"uid", "key", "chord", "shape", "created_ts"}
	args := []any{upsert.UID, upsert.Key, upsert.Chord, string(shape), upsert.CreatedTs}

	stmt := `INSERT INTO fretboard_cache (` + strings.Join(fields, ", ") + `)
		VALUES (` + placeholders(len(args)) + `)
		ON CONFLICT (key) DO UPDATE SET
			uid = excluded.uid,
			chord = excluded.chord,
			shape = excluded.shape,
			created_ts = excluded.created_ts
		RETURNING id`

	var id int64
	if err := d.db.QueryRowContext(ctx, stmt, args...).Scan(&id); err != nil {
		return nil, fmt.Errorf("failed to upsert fretboard entry: %w", err)
	}

	return upsert, nil
}

func (d *DB) GetFretboardEntry(ctx context.Context, key string) (*store.FretboardEntry, error) {
	stmt := `SELECT uid, key, chord, shape, created_ts FROM fretboard_cache WHERE key = ` + placeholder(1)

	var entry store.FretboardEntry
	var shape string
	err := d.db.QueryRowContext(ctx, stmt, key).Scan(
		&entry.UID,
		&entry.Key,
		&entry.Chord,
		&shape,
		&entry.CreatedTs,
	)
	if err == sql.ErrNoRows {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("failed to get fretboard entry: %w", err)
	}

	entry.Shape = &store.FretboardShape{}
	if err := json.Unmarshal([]byte(shape), entry.Shape); err != nil {
		return nil, fmt.Errorf("failed to unmarshal shape: %w", err)
	}
	return &entry, nil
}

func (d *DB) DeleteFretboardEntry(ctx context.Context, delete *store.DeleteFretboardEntry) error {
	stmt := `DELETE FROM fretboard_cache WHERE key = ` + placeholder(1)
	if _, err := d.db.ExecContext(ctx, stmt, delete.Key); err != nil {
		return fmt.Errorf("failed to delete fretboard entry: %w", err)
	}
	return nil
}
