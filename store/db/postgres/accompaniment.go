package postgres

import (
	"context"
	"database/sql"
	"encoding/json"
	"fmt"
	"strings"

	"github.com/martin635579763/chordsync/store"
)

func (d *DB) UpsertAccompanimentEntry(ctx context.Context, upsert *store.AccompanimentEntry) (*store.AccompanimentEntry, error) {
	suggestion, err := json.Marshal(upsert.Text)
	if err != nil {
		return nil, fmt.Errorf("failed to marshal suggestion: %w", err)
	}

	fields := []string{"uid", "key", "arrangement_style", "suggestion", "created_ts"}
	args := []any{upsert.UID, upsert.Key, upsert.ArrangementStyle, string(suggestion), upsert.CreatedTs}

	stmt := `INSERT INTO accompaniment_cache (` + strings.Join(fields, ", ") + `)
		VALUES (` + placeholders(len(args)) + `)
		ON CONFLICT (key) DO UPDATE SET
			uid = EXCLUDED.uid,
			arrangement_style = EXCLUDED.arrangement_style,
			suggestion = EXCLUDED.suggestion,
			created_ts = EXCLUDED.created_ts
		RETURNING id`

	var id int64
	if err := d.db.QueryRowContext(ctx, stmt, args...).Scan(&id); err != nil {
		return nil, fmt.Errorf("failed to upsert accompaniment entry: %w", err)
	}

	return upsert, nil
}

func (d *DB) GetAccompanimentEntry(ctx context.Context, key string) (*store.AccompanimentEntry, error) {
	stmt := `SELECT uid, key, arrangement_style, suggestion, created_ts FROM accompaniment_cache WHERE key = ` + placeholder(1)

	var entry store.AccompanimentEntry
	var suggestion []byte
	err := d.db.QueryRowContext(ctx, stmt, key).Scan(
		&entry.UID,
		&entry.Key,
		&entry.ArrangementStyle,
		&suggestion,
		&entry.CreatedTs,
	)
	if err == sql.ErrNoRows {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("failed to get accompaniment entry: %w", err)
	}

	entry.Text = &store.Accompaniment{}
	if err := json.Unmarshal(suggestion, entry.Text); err != nil {
		return nil, fmt.Errorf("failed to unmarshal suggestion: %w", err)
	}
	return &entry, nil
}

func (d *DB) DeleteAccompanimentEntry(ctx context.Context, delete *store.DeleteAccompanimentEntry) error {
	stmt := `DELETE FROM accompaniment_cache WHERE key = ` + placeholder(1)
	if _, err := d.db.ExecContext(ctx, stmt, delete.Key); err != nil {
		return fmt.Errorf("failed to delete accompaniment entry: %w", err)
	}
	return nil
}
