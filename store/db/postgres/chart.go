package postgres

import (
	"context"
	"database/sql"
	"encoding/json"
	"fmt"
	"strings"

	"github.com/martin635579763/chordsync/store"
)

func (d *DB) UpsertChartEntry(ctx context.Context, upsert *store.ChartEntry) (*store.ChartEntry, error) {
	tokens, err := json.Marshal(upsert.SearchTokens)
	if err != nil {
		return nil, fmt.Errorf("failed to marshal search tokens: %w", err)
	}
	sheet, err := json.Marshal(upsert.Sheet)
	if err != nil {
		return nil, fmt.Errorf("failed to marshal sheet: %w", err)
	}

	fields := []string{"uid", "key", "song_uri", "arrangement_style", "search_tokens", "sheet", "created_ts"}
	args := []any{upsert.UID, upsert.Key, upsert.SongURI, upsert.ArrangementStyle, string(tokens), string(sheet), upsert.CreatedTs}

	// Forced regeneration overwrites the whole row, including creation time.
	stmt := `INSERT INTO chart_cache (` + strings.Join(fields, ", ") + `)
		VALUES (` + placeholders(len(args)) + `)
		ON CONFLICT (key) DO UPDATE SET
			uid = EXCLUDED.uid,
			song_uri = EXCLUDED.song_uri,
			arrangement_style = EXCLUDED.arrangement_style,
			search_tokens = EXCLUDED.search_tokens,
			sheet = EXCLUDED.sheet,
			created_ts = EXCLUDED.created_ts
		RETURNING id`

	var id int64
	if err := d.db.QueryRowContext(ctx, stmt, args...).Scan(&id); err != nil {
		return nil, fmt.Errorf("failed to upsert chart entry: %w", err)
	}

	return upsert, nil
}

func (d *DB) GetChartEntry(ctx context.Context, key string) (*store.ChartEntry, error) {
	stmt := `SELECT uid, key, song_uri, arrangement_style, search_tokens, sheet, created_ts
		FROM chart_cache WHERE key = ` + placeholder(1)

	entry, err := scanChartEntry(d.db.QueryRowContext(ctx, stmt, key))
	if err == sql.ErrNoRows {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	return entry, nil
}

func (d *DB) ChartEntryExists(ctx context.Context, key string) (bool, error) {
	var exists bool
	stmt := `SELECT EXISTS (SELECT 1 FROM chart_cache WHERE key = ` + placeholder(1) + `)`
	if err := d.db.QueryRowContext(ctx, stmt, key).Scan(&exists); err != nil {
		return false, fmt.Errorf("failed to check chart entry existence: %w", err)
	}
	return exists, nil
}

func (d *DB) DeleteChartEntry(ctx context.Context, delete *store.DeleteChartEntry) error {
	// Deleting an absent key is not an error.
	stmt := `DELETE FROM chart_cache WHERE key = ` + placeholder(1)
	if _, err := d.db.ExecContext(ctx, stmt, delete.Key); err != nil {
		return fmt.Errorf("failed to delete chart entry: %w", err)
	}
	return nil
}

func (d *DB) ListRecentChartEntries(ctx context.Context, limit int) ([]*store.ChartEntry, error) {
	stmt := `SELECT uid, key, song_uri, arrangement_style, search_tokens, sheet, created_ts
		FROM chart_cache ORDER BY created_ts DESC, id DESC`
	if limit > 0 {
		stmt = fmt.Sprintf("%s LIMIT %d", stmt, limit)
	}

	rows, err := d.db.QueryContext(ctx, stmt)
	if err != nil {
		return nil, fmt.Errorf("failed to query recent chart entries: %w", err)
	}
	defer rows.Close()

	return collectChartEntries(rows)
}

func (d *DB) SearchChartEntries(ctx context.Context, token string) ([]*store.ChartEntry, error) {
	// JSONB containment keeps the membership test GIN-indexable.
	stmt := `SELECT uid, key, song_uri, arrangement_style, search_tokens, sheet, created_ts
		FROM chart_cache
		WHERE search_tokens @> to_jsonb(` + placeholder(1) + `::text)
		ORDER BY created_ts DESC, id DESC`

	rows, err := d.db.QueryContext(ctx, stmt, token)
	if err != nil {
		return nil, fmt.Errorf("failed to search chart entries: %w", err)
	}
	defer rows.Close()

	return collectChartEntries(rows)
}

type rowScanner interface {
	Scan(dest ...any) error
}

func scanChartEntry(row rowScanner) (*store.ChartEntry, error) {
	var entry store.ChartEntry
	var tokens, sheet []byte

	if err := row.Scan(
		&entry.UID,
		&entry.Key,
		&entry.SongURI,
		&entry.ArrangementStyle,
		&tokens,
		&sheet,
		&entry.CreatedTs,
	); err != nil {
		return nil, err
	}

	if err := json.Unmarshal(tokens, &entry.SearchTokens); err != nil {
		return nil, fmt.Errorf("failed to unmarshal search tokens: %w", err)
	}
	entry.Sheet = &store.ChartSheet{}
	if err := json.Unmarshal(sheet, entry.Sheet); err != nil {
		return nil, fmt.Errorf("failed to unmarshal sheet: %w", err)
	}
	return &entry, nil
}

func collectChartEntries(rows *sql.Rows) ([]*store.ChartEntry, error) {
	list := make([]*store.ChartEntry, 0)
	for rows.Next() {
		entry, err := scanChartEntry(rows)
		if err != nil {
			return nil, fmt.Errorf("failed to scan chart entry: %w", err)
		}
		list = append(list, entry)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("failed to iterate chart entries: %w", err)
	}
	return list, nil
}
